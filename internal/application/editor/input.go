package editor

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputState holds the editor commands requested this frame
type InputState struct {
	TogglePlay  bool // F5: Play in Edit, Stop otherwise
	TogglePause bool // F6
	Restart     bool // F7
	NewEntity   bool // N
	Save        bool // Ctrl+S
}

// InputSource reads the editor commands for the current frame
type InputSource interface {
	GetInput() InputState
}

// KeyboardInput reads commands from the ebiten keyboard state
type KeyboardInput struct{}

// GetInput reads the current input state
func (KeyboardInput) GetInput() InputState {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	return InputState{
		TogglePlay:  inpututil.IsKeyJustPressed(ebiten.KeyF5),
		TogglePause: inpututil.IsKeyJustPressed(ebiten.KeyF6),
		Restart:     inpututil.IsKeyJustPressed(ebiten.KeyF7),
		NewEntity:   !ctrl && inpututil.IsKeyJustPressed(ebiten.KeyN),
		Save:        ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS),
	}
}
