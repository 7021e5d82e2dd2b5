// Package runtime embeds the LOL runtime ABI header (support.h) into the
// lolc binary so the `support` subcommand can write it out without
// shipping a separate file alongside the compiler.
package runtime

import _ "embed"

//go:embed support.h
var SupportHeader string
