package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
)

// ProjectFile is the name of the project configuration at the project root
const ProjectFile = "project.json"

// Loader loads project configuration from JSON files using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// FS returns the project filesystem. Scenes and scripts are read from it.
func (l *Loader) FS() fs.FS {
	return l.fsys
}

// BasePath returns the path the loader was created with
func (l *Loader) BasePath() string {
	return l.basePath
}

// LoadProject loads project.json and fills in defaults
func (l *Loader) LoadProject() (*ProjectConfig, error) {
	data, err := fs.ReadFile(l.fsys, ProjectFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ProjectFile, err)
	}

	var cfg ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
	}
	cfg.applyDefaults()

	if cfg.StartScene != "" && !fs.ValidPath(cfg.StartScene) {
		return nil, fmt.Errorf("invalid startScene %q in %s", cfg.StartScene, ProjectFile)
	}

	return &cfg, nil
}
