package scene

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/younwookim/scenekit/internal/physics"
)

// Decoder fills a scene from serialized bytes
type Decoder interface {
	Deserialize(s *Scene, data []byte) error
}

// Factory creates scenes from a project filesystem
type Factory struct {
	fsys     fs.FS
	decoder  Decoder
	settings physics.Settings
}

// NewFactory creates a scene factory reading scene files from fsys
func NewFactory(fsys fs.FS, decoder Decoder, settings physics.Settings) *Factory {
	return &Factory{
		fsys:     fsys,
		decoder:  decoder,
		settings: settings,
	}
}

// Create returns an empty scene for an empty path, otherwise the scene stored at path
func (f *Factory) Create(p string) (*Scene, error) {
	if p == "" {
		return New("Untitled", f.settings), nil
	}

	data, err := fs.ReadFile(f.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %w", p, err)
	}

	s := New(sceneName(p), f.settings)
	if err := f.decoder.Deserialize(s, data); err != nil {
		return nil, fmt.Errorf("failed to load scene %s: %w", p, err)
	}
	s.Path = p

	return s, nil
}

// sceneName derives a display name from a scene file path
func sceneName(p string) string {
	base := path.Base(p)
	base = strings.TrimSuffix(base, ".yaml")
	return strings.TrimSuffix(base, ".scene")
}
