// Package views embeds the page templates and stylesheet.
package views

import "embed"

//go:embed *.html layouts/*.html partials/*.html
var FS embed.FS

//go:embed static
var Static embed.FS
