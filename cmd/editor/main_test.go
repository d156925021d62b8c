package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/younwookim/scenekit/internal/application/state"
	"github.com/younwookim/scenekit/internal/ecs"
	"github.com/younwookim/scenekit/internal/infrastructure/config"
)

func TestNewEditor_EmbeddedProject(t *testing.T) {
	app, err := newEditor(config.Env{}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "scenekit - Demo", app.title)
	assert.Equal(t, 960, app.display.ScreenWidth)
	assert.Equal(t, "demo", app.ctrl.Scene().Name)
	assert.Equal(t, 4, app.ctrl.Scene().World.Count())

	w, h := app.editor.Layout(0, 0)
	assert.Equal(t, 960, w)
	assert.Equal(t, 540, h)
}

func TestNewEditor_ProjectDir(t *testing.T) {
	app, err := newEditor(config.Env{ProjectDir: "project"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "scenes/demo.scene.yaml", app.ctrl.Scene().Path)
}

func TestNewEditor_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  config.Env
	}{
		{"unknown scene", config.Env{Scene: "scenes/missing.scene.yaml"}},
		{"missing project", config.Env{ProjectDir: "does-not-exist"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEditor(tt.env, zap.NewNop())
			assert.Error(t, err)
		})
	}
}

// The sample scene must survive a full Play, simulate, Stop cycle unchanged
func TestSampleProject_PlayStop(t *testing.T) {
	app, err := newEditor(config.Env{}, zap.NewNop())
	require.NoError(t, err)
	ctrl := app.ctrl
	w := ctrl.Scene().World

	before := make(map[string]ecs.Transform)
	for _, id := range w.Entities() {
		before[w.Tag[id].Name] = w.Transform[id]
	}

	require.NoError(t, ctrl.Play())
	for i := 0; i < 120; i++ {
		require.NoError(t, ctrl.Update(1.0/60.0))
	}

	player, ok := w.FindByTag("player")
	require.True(t, ok)
	assert.NotEqual(t, before["player"], w.Transform[player], "player simulated")

	require.NoError(t, ctrl.Stop())
	assert.Equal(t, state.StateEdit, ctrl.State())

	w = ctrl.Scene().World
	require.Equal(t, len(before), w.Count())
	for _, id := range w.Entities() {
		assert.Equal(t, before[w.Tag[id].Name], w.Transform[id], w.Tag[id].Name)
	}
}
