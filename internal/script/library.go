package script

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// ErrUnknownClass is returned when no source exists for a script class
var ErrUnknownClass = errors.New("unknown script class")

// Library resolves script classes to Lua source files.
// Class "player" maps to "<dir>/player.lua".
type Library struct {
	fsys fs.FS
	dir  string
}

// NewLibrary creates a library reading scripts from dir inside fsys
func NewLibrary(fsys fs.FS, dir string) *Library {
	return &Library{fsys: fsys, dir: dir}
}

// Source returns the Lua source of a class
func (lib *Library) Source(class string) (string, error) {
	if class == "" {
		return "", fmt.Errorf("%w: empty class name", ErrUnknownClass)
	}

	p := path.Join(lib.dir, class+".lua")
	data, err := fs.ReadFile(lib.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s (%s)", ErrUnknownClass, class, p)
		}
		return "", fmt.Errorf("failed to read script %s: %w", p, err)
	}

	return string(data), nil
}
