package lifecycle

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/younwookim/scenekit/internal/domain/scene"
)

// ScriptRuntime owns per-entity script instances
type ScriptRuntime interface {
	SetCurrentScene(s *scene.Scene)
	Start() error
	Stop() error
	Pause()
	Resume()
	Update(dt float64) error
}

// RuntimeBridge starts and stops the physics world and the script runtime of
// the bound scene. Start and stop calls are idempotent.
//
// Physics always starts before scripts, so on_create sees live bodies, and
// scripts always stop before physics, so on_destroy can still query them.
type RuntimeBridge struct {
	scripts ScriptRuntime
	scene   *scene.Scene
	log     *zap.Logger

	scriptsStarted bool
}

// NewRuntimeBridge creates a bridge around the given script runtime
func NewRuntimeBridge(scripts ScriptRuntime, logger *zap.Logger) *RuntimeBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuntimeBridge{
		scripts: scripts,
		log:     logger.Named("bridge"),
	}
}

// Bind selects the scene to drive. The previous scene must already be stopped.
func (b *RuntimeBridge) Bind(s *scene.Scene) {
	b.scene = s
	b.scripts.SetCurrentScene(s)
}

// PhysicsRunning reports whether the bound scene's physics world is started
func (b *RuntimeBridge) PhysicsRunning() bool {
	return b.scene != nil && b.scene.Physics().Running()
}

// ScriptsRunning reports whether the script runtime has been started by this bridge
func (b *RuntimeBridge) ScriptsRunning() bool {
	return b.scriptsStarted
}

// StartPhysics seeds the physics world from component data
func (b *RuntimeBridge) StartPhysics() error {
	if b.scene == nil {
		return fmt.Errorf("%w: physics: %w", ErrRuntimeStart, ErrNoScene)
	}
	pw := b.scene.Physics()
	if pw.Running() {
		return nil
	}
	if err := pw.Start(b.scene.World); err != nil {
		return fmt.Errorf("%w: physics: %w", ErrRuntimeStart, err)
	}
	b.log.Debug("physics started", zap.Int("bodies", pw.BodyCount()))
	return nil
}

// StopPhysics tears the physics world down. No-op if not started.
func (b *RuntimeBridge) StopPhysics() {
	if !b.PhysicsRunning() {
		return
	}
	b.scene.Physics().Stop()
	b.log.Debug("physics stopped")
}

// StartScripts instantiates scripts for the bound scene
func (b *RuntimeBridge) StartScripts() error {
	if b.scriptsStarted {
		return nil
	}
	if b.scene == nil {
		return fmt.Errorf("%w: scripts: %w", ErrRuntimeStart, ErrNoScene)
	}

	b.scripts.SetCurrentScene(b.scene)
	if err := b.scripts.Start(); err != nil {
		return fmt.Errorf("%w: scripts: %w", ErrRuntimeStart, err)
	}
	b.scriptsStarted = true
	return nil
}

// StopScripts destroys all script instances. No-op if not started.
// The runtime is considered stopped even when a destroy hook fails.
func (b *RuntimeBridge) StopScripts() error {
	if !b.scriptsStarted {
		return nil
	}
	b.scriptsStarted = false
	if err := b.scripts.Stop(); err != nil {
		return fmt.Errorf("%w: scripts: %w", ErrRuntimeStop, err)
	}
	return nil
}

// PauseScripts suspends script updates
func (b *RuntimeBridge) PauseScripts() {
	b.scripts.Pause()
}

// ResumeScripts resumes script updates
func (b *RuntimeBridge) ResumeScripts() {
	b.scripts.Resume()
}

// Update runs one frame: script on_update first, then one physics step.
// dt must come from the simulation clock.
func (b *RuntimeBridge) Update(dt float64) error {
	if b.scene == nil {
		return nil
	}

	var errs []error
	if b.scriptsStarted {
		if err := b.scripts.Update(dt); err != nil {
			errs = append(errs, err)
		}
	}
	b.scene.Physics().Step(b.scene.World, dt)

	return errors.Join(errs...)
}
