// Package editor hosts the active scene in an ebiten window and maps editor
// commands onto scene lifecycle transitions.
package editor

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/younwookim/scenekit/internal/application/lifecycle"
	"github.com/younwookim/scenekit/internal/application/state"
	"github.com/younwookim/scenekit/internal/domain/scene"
	"github.com/younwookim/scenekit/internal/ecs"
	"github.com/younwookim/scenekit/internal/infrastructure/config"
)

// ErrSaveWhileSimulating is returned when saving is requested outside Edit
var ErrSaveWhileSimulating = errors.New("scenes can only be saved in Edit")

// ErrNoProjectDir is returned when saving a project that was not loaded from disk
var ErrNoProjectDir = errors.New("scene saving needs a project directory")

// Colors for rendering
var (
	colorBG       = color.RGBA{26, 26, 46, 255}
	colorCollider = color.RGBA{100, 200, 255, 160}
	colorMarker   = color.RGBA{255, 255, 255, 255}
	colorPlayTint = color.RGBA{0, 60, 0, 40}
	colorPaused   = color.RGBA{0, 0, 0, 96}
	colorError    = color.RGBA{160, 30, 30, 220}
	colorSpawned  = color.RGBA{180, 140, 220, 255}
)

// SceneSaver writes a scene to disk
type SceneSaver interface {
	SaveFile(s *scene.Scene, path string) error
}

// Editor implements ebiten.Game around a lifecycle controller
type Editor struct {
	ctrl    *lifecycle.Controller
	input   InputSource
	saver   SceneSaver
	saveDir string
	log     *zap.Logger

	screenW int
	screenH int
	ppu     float64 // pixels per world unit
	dt      float64

	spawned int
	status  string
	lastErr error
}

// New creates an editor. saveDir is the project directory on disk, or "" if
// the project is read-only.
func New(ctrl *lifecycle.Controller, input InputSource, saver SceneSaver, saveDir string, display config.DisplayConfig, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Editor{
		ctrl:    ctrl,
		input:   input,
		saver:   saver,
		saveDir: saveDir,
		log:     logger.Named("editor"),
		screenW: display.ScreenWidth,
		screenH: display.ScreenHeight,
		ppu:     display.PixelsPerUnit,
		dt:      1.0 / 60.0,
	}
	if display.Framerate > 0 {
		e.dt = 1.0 / float64(display.Framerate)
	}
	ctrl.OnSceneChanged(func(s *scene.Scene) {
		e.status = fmt.Sprintf("%s: %s", s.Name, ctrl.State())
	})
	return e
}

// Update handles editor commands, then advances the simulation by one frame.
// Lifecycle and script errors are shown in the window and do not stop the editor.
// Implements ebiten.Game interface.
func (e *Editor) Update() error {
	in := e.input.GetInput()

	switch {
	case in.TogglePlay:
		if e.ctrl.State() == state.StateEdit {
			e.report(e.ctrl.Play())
		} else {
			e.report(e.ctrl.Stop())
		}
	case in.TogglePause:
		switch e.ctrl.State() {
		case state.StatePlay:
			e.report(e.ctrl.Pause())
		case state.StatePaused:
			e.report(e.ctrl.Resume())
		}
	case in.Restart:
		e.report(e.ctrl.Restart())
	case in.NewEntity:
		e.report(e.spawnEntity())
	case in.Save:
		e.report(e.Save())
	}

	if err := e.ctrl.Update(e.dt); err != nil {
		e.lastErr = err
	}
	return nil
}

// report records the outcome of a command
func (e *Editor) report(err error) {
	e.lastErr = err
}

func (e *Editor) spawnEntity() error {
	e.spawned++
	name := fmt.Sprintf("Entity %d", e.spawned)
	_, err := e.ctrl.CreateEntity(name, func(w *ecs.World, id ecs.EntityID) {
		w.Rigidbody2D[id] = ecs.DefaultRigidbody2D()
		w.BoxCollider2D[id] = ecs.DefaultBoxCollider2D()
		w.SpriteRenderer[id] = ecs.SpriteRenderer{Color: colorSpawned}
	})
	if err == nil {
		e.status = "created " + name
	}
	return err
}

// Save writes the active scene to its file under the project directory.
// Only allowed in Edit, so simulated state never reaches disk.
func (e *Editor) Save() error {
	if e.ctrl.State() != state.StateEdit {
		return ErrSaveWhileSimulating
	}
	if e.saveDir == "" {
		return ErrNoProjectDir
	}

	s := e.ctrl.Scene()
	rel := s.Path
	if rel == "" {
		rel = filepath.Join("scenes", s.Name+".scene.yaml")
	}
	path := filepath.Join(e.saveDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create scene directory: %w", err)
	}

	if err := e.saver.SaveFile(s, path); err != nil {
		return err
	}
	s.Path = filepath.ToSlash(rel)
	e.status = "saved " + s.Path
	e.log.Info("scene saved", zap.String("scene", s.Name), zap.String("path", path))
	return nil
}

// LastError returns the error of the last command or frame, nil if it succeeded
func (e *Editor) LastError() error {
	return e.lastErr
}

// Status returns the last informational message
func (e *Editor) Status() string {
	return e.status
}

// Draw renders the scene and the editor overlay.
// Implements ebiten.Game interface.
func (e *Editor) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)

	s := e.ctrl.Scene()
	if s != nil {
		e.drawEntities(screen, s.World)
	}

	switch e.ctrl.State() {
	case state.StatePlay:
		ebitenutil.DrawRect(screen, 0, 0, float64(e.screenW), float64(e.screenH), colorPlayTint)
	case state.StatePaused:
		ebitenutil.DrawRect(screen, 0, 0, float64(e.screenW), float64(e.screenH), colorPaused)
	}

	e.drawUI(screen)
}

func (e *Editor) drawEntities(screen *ebiten.Image, w *ecs.World) {
	for _, id := range w.Entities() {
		x, y, hw, hh := e.entityRect(w, id)

		if sr, ok := w.SpriteRenderer[id]; ok {
			ebitenutil.DrawRect(screen, x, y, hw*2, hh*2, sr.Color)
		}
		if _, ok := w.BoxCollider2D[id]; ok {
			drawOutline(screen, x, y, hw*2, hh*2, colorCollider)
		}

		cx, cy := e.WorldToScreen(w.Transform[id].Translation.XY())
		ebitenutil.DrawRect(screen, cx-1, cy-1, 2, 2, colorMarker)
	}
}

// entityRect returns the top-left corner and half extents of an entity in screen space
func (e *Editor) entityRect(w *ecs.World, id ecs.EntityID) (x, y, hw, hh float64) {
	tr := w.Transform[id]
	box, ok := w.BoxCollider2D[id]
	if !ok {
		box = ecs.DefaultBoxCollider2D()
	}

	center := tr.Translation.XY().Add(box.Offset)
	cx, cy := e.WorldToScreen(center)
	hw = math.Abs(box.HalfSize.X*tr.Scale.X) * e.ppu
	hh = math.Abs(box.HalfSize.Y*tr.Scale.Y) * e.ppu
	return cx - hw, cy - hh, hw, hh
}

// WorldToScreen maps world units (y up, origin at screen center) to pixels
func (e *Editor) WorldToScreen(p ecs.Vec2) (float64, float64) {
	return float64(e.screenW)/2 + p.X*e.ppu, float64(e.screenH)/2 - p.Y*e.ppu
}

func (e *Editor) drawUI(screen *ebiten.Image) {
	clk := e.ctrl.Clock()
	name := "-"
	count := 0
	if s := e.ctrl.Scene(); s != nil {
		name = s.Name
		count = s.World.Count()
	}

	header := fmt.Sprintf("%s | %s | t=%.2fs x%.1f | %d entities",
		name, e.ctrl.State(), clk.Elapsed(), clk.Scale(), count)
	ebitenutil.DebugPrint(screen, header+"\nF5: Play/Stop | F6: Pause/Resume | F7: Restart | N: New entity | Ctrl+S: Save")

	if e.status != "" {
		ebitenutil.DebugPrintAt(screen, e.status, 4, e.screenH-36)
	}
	if e.lastErr != nil {
		ebitenutil.DrawRect(screen, 0, float64(e.screenH-20), float64(e.screenW), 20, colorError)
		ebitenutil.DebugPrintAt(screen, e.lastErr.Error(), 4, e.screenH-18)
	}
}

func drawOutline(screen *ebiten.Image, x, y, w, h float64, c color.Color) {
	ebitenutil.DrawLine(screen, x, y, x+w, y, c)
	ebitenutil.DrawLine(screen, x+w, y, x+w, y+h, c)
	ebitenutil.DrawLine(screen, x+w, y+h, x, y+h, c)
	ebitenutil.DrawLine(screen, x, y+h, x, y, c)
}

// Layout returns the editor's logical screen dimensions.
// Implements ebiten.Game interface.
func (e *Editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	return e.screenW, e.screenH
}

// SetDT sets the real frame time handed to the clock each update.
// Useful for testing or custom frame rates.
func (e *Editor) SetDT(dt float64) {
	e.dt = dt
}
