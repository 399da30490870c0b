package web

import "embed"

// Templates holds the widget page templates.
//
//go:embed templates/*.html
var Templates embed.FS
