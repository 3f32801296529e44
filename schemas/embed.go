// Package schemas provides the embedded SQL files of the book cache.
package schemas

import "embed"

// Migrations contains the SQL files applied in file name order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
