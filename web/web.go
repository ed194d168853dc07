// Package web embeds the placeholder HTML views served by the page routes.
package web

import "embed"

//go:embed *.html
var FS embed.FS
