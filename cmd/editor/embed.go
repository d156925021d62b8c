package main

import "embed"

// projectFS holds the sample project used when no project directory is given
//
//go:embed project
var projectFS embed.FS
