package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSceneState_String(t *testing.T) {
	tests := []struct {
		state    SceneState
		expected string
	}{
		{StateEdit, "Edit"},
		{StatePlay, "Play"},
		{StatePaused, "Paused"},
		{SceneState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestSceneStateConstants(t *testing.T) {
	// Edit must be the zero value so a fresh controller starts in Edit
	assert.Equal(t, SceneState(0), StateEdit)
	assert.Equal(t, SceneState(1), StatePlay)
	assert.Equal(t, SceneState(2), StatePaused)
}

func TestSceneState_Simulating(t *testing.T) {
	assert.False(t, StateEdit.Simulating())
	assert.True(t, StatePlay.Simulating())
	assert.True(t, StatePaused.Simulating())
}
