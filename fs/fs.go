// Package appfs embeds the files the binaries need at runtime: migrations, email templates and assets.
package appfs

import "embed"

//go:embed migrations all:templates assets
var FS embed.FS
