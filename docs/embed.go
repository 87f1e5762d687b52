// Package docs embeds the sift API documentation so the server can serve
// it at runtime without shipping loose files.
package docs

import "embed"

// FS contains the documentation files. Use embed.FS methods to read them.
//
//go:embed api.md
var FS embed.FS
