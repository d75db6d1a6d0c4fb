package content

import "embed"

// FS contains the deck template and genre card text.
//
//go:embed data/template.json data/genres
var FS embed.FS
