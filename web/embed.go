// Package web embeds the kiosk operator page.
package web

import (
	_ "embed"
)

// IndexHTML is the single-page operator UI served at "/".
//
//go:embed index.html
var IndexHTML []byte
