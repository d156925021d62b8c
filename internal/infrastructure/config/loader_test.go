package config

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/scenekit/internal/ecs"
)

func TestLoader_LoadProject(t *testing.T) {
	loader := NewLoader("../../../cmd/editor/project")

	cfg, err := loader.LoadProject()
	require.NoError(t, err)

	assert.Equal(t, "Demo", cfg.Name)
	assert.Equal(t, 960, cfg.Display.ScreenWidth)
	assert.Equal(t, 540, cfg.Display.ScreenHeight)
	assert.Equal(t, 60, cfg.Display.Framerate)
	assert.Equal(t, 32.0, cfg.Display.PixelsPerUnit)
	assert.Equal(t, -9.8, cfg.Physics.Gravity.Y)
	assert.Equal(t, "scenes/demo.scene.yaml", cfg.StartScene)
	assert.Equal(t, "scripts", cfg.ScriptsDir)
}

func TestLoader_Defaults(t *testing.T) {
	loader := NewFSLoader(fstest.MapFS{
		"project.json": &fstest.MapFile{Data: []byte(`{"physics": {"gravity": {"x": 1}}}`)},
	}, "mem")

	cfg, err := loader.LoadProject()
	require.NoError(t, err)

	def := DefaultProject()
	assert.Equal(t, def.Name, cfg.Name)
	assert.Equal(t, def.Display, cfg.Display)
	assert.Equal(t, def.ScriptsDir, cfg.ScriptsDir)
	assert.Empty(t, cfg.StartScene)

	settings := cfg.SimulationSettings()
	assert.Equal(t, ecs.Vec2{X: 1}, settings.Gravity, "explicit gravity kept, zero y allowed")
	assert.Equal(t, def.Physics.Substeps, settings.Substeps)
	assert.Equal(t, "mem", loader.BasePath())
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{"missing", fstest.MapFS{}, "failed to read project.json"},
		{"malformed", fstest.MapFS{
			"project.json": &fstest.MapFile{Data: []byte(`{"name": `)},
		}, "failed to parse project.json"},
		{"escaping scene path", fstest.MapFS{
			"project.json": &fstest.MapFile{Data: []byte(`{"startScene": "../outside.yaml"}`)},
		}, "invalid startScene"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFSLoader(tt.fsys, ".").LoadProject()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
