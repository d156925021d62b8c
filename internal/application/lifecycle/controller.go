// Package lifecycle switches the active scene between Edit, Play and Paused.
//
// Entering Play captures a snapshot of the scene; leaving it restores that
// snapshot, so simulation never permanently changes the authored scene.
// All transitions run synchronously on the update goroutine and are not
// reentrant.
package lifecycle

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/younwookim/scenekit/internal/application/clock"
	"github.com/younwookim/scenekit/internal/application/state"
	"github.com/younwookim/scenekit/internal/domain/scene"
	"github.com/younwookim/scenekit/internal/ecs"
)

// Controller owns the SceneState of the active scene
type Controller struct {
	state     state.SceneState
	scene     *scene.Scene
	snapshots *SnapshotStore
	clock     *clock.Clock
	bridge    *RuntimeBridge
	log       *zap.Logger

	listeners []func(*scene.Scene)
	busy      bool
}

// NewController creates a controller in Edit state driving s
func NewController(s *scene.Scene, snapshots *SnapshotStore, clk *clock.Clock, bridge *RuntimeBridge, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		state:     state.StateEdit,
		scene:     s,
		snapshots: snapshots,
		clock:     clk,
		bridge:    bridge,
		log:       logger.Named("lifecycle"),
	}
	if s != nil {
		bridge.Bind(s)
	}
	return c
}

// State returns the current scene state
func (c *Controller) State() state.SceneState {
	return c.state
}

// Scene returns the active scene
func (c *Controller) Scene() *scene.Scene {
	return c.scene
}

// Clock returns the simulation clock
func (c *Controller) Clock() *clock.Clock {
	return c.clock
}

// HasSnapshot reports whether a pre-simulation snapshot is held
func (c *Controller) HasSnapshot() bool {
	return c.snapshots.Has()
}

// OnSceneChanged registers fn to be called after the live scene contents
// were swapped (Play, Stop, Restart, SetScene). fn runs after the transition
// completed and may itself request transitions.
func (c *Controller) OnSceneChanged(fn func(*scene.Scene)) {
	c.listeners = append(c.listeners, fn)
}

// Play starts simulation. In Paused it resumes without recapturing.
func (c *Controller) Play() error {
	if c.state == state.StatePaused {
		return c.Resume()
	}
	return c.transition("play", c.play)
}

// Pause freezes the clock and script updates. No-op unless playing.
func (c *Controller) Pause() error {
	return c.transition("pause", c.pause)
}

// Resume continues a paused simulation. No-op unless paused.
func (c *Controller) Resume() error {
	return c.transition("resume", c.resume)
}

// Stop ends simulation and restores the pre-Play scene. No-op in Edit.
// If Stop fails part way, calling it again is safe.
func (c *Controller) Stop() error {
	return c.transition("stop", c.stop)
}

// Restart rolls the scene back to the snapshot and starts simulating again.
// No-op in Edit.
func (c *Controller) Restart() error {
	return c.transition("restart", c.restart)
}

// transition runs fn with the reentrancy guard held, logs the outcome and
// notifies listeners once the guard is released.
func (c *Controller) transition(name string, fn func() (bool, error)) error {
	if c.busy {
		return fmt.Errorf("%w: %s", ErrTransitionInProgress, name)
	}

	from := c.state
	c.busy = true
	changed, err := fn()
	c.busy = false

	if err != nil {
		c.log.Error("scene transition failed",
			zap.String("transition", name),
			zap.Stringer("state", c.state),
			zap.Error(err))
		return err
	}
	if from != c.state || changed {
		c.log.Info("scene transition",
			zap.String("transition", name),
			zap.Stringer("from", from),
			zap.Stringer("to", c.state))
	}
	if changed {
		c.notify()
	}
	return nil
}

func (c *Controller) play() (bool, error) {
	if c.state != state.StateEdit {
		return false, nil
	}
	if c.scene == nil {
		return false, ErrNoScene
	}

	// A previous Play that failed part way may have left a runtime or a
	// snapshot behind. Finish its teardown before starting over.
	if err := c.recoverFailedStart(); err != nil {
		return false, err
	}

	if err := c.snapshots.Capture(c.scene); err != nil {
		return false, err
	}
	c.resetClock()

	if err := c.bridge.StartPhysics(); err != nil {
		// Nothing touched the scene yet
		c.snapshots.Clear()
		return false, err
	}
	if err := c.bridge.StartScripts(); err != nil {
		c.log.Warn("play failed after scripts began; the next play restores the pre-play scene",
			zap.Bool("retry_safe", true),
			zap.Error(err))
		return false, err
	}

	c.state = state.StatePlay
	return true, nil
}

func (c *Controller) recoverFailedStart() error {
	if !c.snapshots.Has() && !c.bridge.ScriptsRunning() && !c.bridge.PhysicsRunning() {
		return nil
	}

	c.log.Warn("cleaning up after failed play")
	if err := c.bridge.StopScripts(); err != nil {
		return err
	}
	c.bridge.StopPhysics()
	if c.snapshots.Has() {
		if err := c.snapshots.Restore(c.scene); err != nil {
			return err
		}
		c.snapshots.Clear()
	}
	return nil
}

func (c *Controller) pause() (bool, error) {
	if c.state != state.StatePlay {
		return false, nil
	}

	_ = c.clock.SetScale(0)
	c.bridge.PauseScripts()

	c.state = state.StatePaused
	return false, nil
}

func (c *Controller) resume() (bool, error) {
	if c.state != state.StatePaused {
		return false, nil
	}

	_ = c.clock.SetScale(1)
	c.bridge.ResumeScripts()

	c.state = state.StatePlay
	return false, nil
}

func (c *Controller) stop() (bool, error) {
	if c.state == state.StateEdit {
		return false, nil
	}

	if err := c.bridge.StopScripts(); err != nil {
		c.logRecoverable("stop scripts", err)
		return false, err
	}
	c.bridge.StopPhysics()

	if err := c.snapshots.Restore(c.scene); err != nil {
		c.logRecoverable("restore snapshot", err)
		return false, err
	}
	c.snapshots.Clear()
	c.resetClock()

	c.state = state.StateEdit
	return true, nil
}

func (c *Controller) restart() (bool, error) {
	if !c.state.Simulating() {
		return false, nil
	}

	if err := c.bridge.StopScripts(); err != nil {
		c.logRecoverable("stop scripts", err)
		return false, err
	}
	c.bridge.StopPhysics()

	if err := c.snapshots.Restore(c.scene); err != nil {
		c.logRecoverable("restore snapshot", err)
		return false, err
	}
	if err := c.snapshots.Capture(c.scene); err != nil {
		return false, err
	}
	c.resetClock()

	if err := c.bridge.StartPhysics(); err != nil {
		c.holdClock()
		return false, err
	}
	if err := c.bridge.StartScripts(); err != nil {
		c.holdClock()
		return false, err
	}

	c.state = state.StatePlay
	return true, nil
}

// holdClock keeps time frozen when a failed restart leaves the scene Paused
func (c *Controller) holdClock() {
	if c.state == state.StatePaused {
		_ = c.clock.SetScale(0)
	}
}

func (c *Controller) resetClock() {
	c.clock.Reset()
	_ = c.clock.SetScale(1)
}

func (c *Controller) logRecoverable(step string, err error) {
	c.log.Warn("scene teardown incomplete; repeating the transition is safe",
		zap.String("step", step),
		zap.Bool("retry_safe", true),
		zap.Error(err))
}

func (c *Controller) notify() {
	for _, fn := range c.listeners {
		fn(c.scene)
	}
}

// Update advances the simulation clock by realDelta seconds and runs one
// frame of scripts and physics with the scaled delta. Nothing runs in Edit.
func (c *Controller) Update(realDelta float64) error {
	if c.busy {
		return fmt.Errorf("%w: update", ErrTransitionInProgress)
	}
	if !c.state.Simulating() {
		return nil
	}

	dt := c.clock.Advance(realDelta)
	if err := c.bridge.Update(dt); err != nil {
		c.log.Error("runtime update failed", zap.Error(err))
		return err
	}
	return nil
}

// SetScene replaces the active scene. A simulating controller is stopped
// first and leftovers of a failed Play are torn down; the previous scene is
// disposed.
func (c *Controller) SetScene(s *scene.Scene) error {
	if c.busy {
		return fmt.Errorf("%w: set scene", ErrTransitionInProgress)
	}
	if s == nil {
		return ErrNoScene
	}
	if c.state.Simulating() {
		if err := c.Stop(); err != nil {
			return fmt.Errorf("stop before scene change: %w", err)
		}
	} else if c.scene != nil {
		c.busy = true
		err := c.recoverFailedStart()
		c.busy = false
		if err != nil {
			return fmt.Errorf("clean up before scene change: %w", err)
		}
	}

	if old := c.scene; old != nil && old != s {
		old.Dispose()
	}
	c.scene = s
	c.bridge.Bind(s)
	c.snapshots.Clear()
	c.clock.Reset()

	c.log.Info("scene changed", zap.String("scene", s.Name))
	c.notify()
	return nil
}

// CreateEntity adds an authored entity to the live scene. build may attach
// components. While simulating, the entity is also added to the snapshot so
// it survives Restart and Stop.
func (c *Controller) CreateEntity(name string, build func(w *ecs.World, id ecs.EntityID)) (uuid.UUID, error) {
	if c.busy {
		return uuid.Nil, fmt.Errorf("%w: create entity", ErrTransitionInProgress)
	}
	if c.scene == nil {
		return uuid.Nil, ErrNoScene
	}

	w := c.scene.World
	id := w.CreateEntity(name)
	if build != nil {
		build(w, id)
	}
	u := w.UUID(id)

	if c.snapshots.Has() {
		err := c.snapshots.Amend(func(scratch *scene.Scene) error {
			w.CopyEntity(scratch.World, id)
			return nil
		})
		if err != nil {
			c.log.Error("failed to record authored entity", zap.Stringer("entity", u), zap.Error(err))
			return u, err
		}
	}

	c.log.Debug("entity created", zap.Stringer("entity", u), zap.String("tag", name))
	return u, nil
}

// DestroyEntity removes an authored entity from the live scene and, while
// simulating, from the snapshot.
func (c *Controller) DestroyEntity(u uuid.UUID) error {
	if c.busy {
		return fmt.Errorf("%w: destroy entity", ErrTransitionInProgress)
	}
	if c.scene == nil {
		return ErrNoScene
	}

	id, ok := c.scene.World.Lookup(u)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, u)
	}
	c.scene.World.DestroyEntity(id)

	if c.snapshots.Has() {
		err := c.snapshots.Amend(func(scratch *scene.Scene) error {
			if sid, found := scratch.World.Lookup(u); found {
				scratch.World.DestroyEntity(sid)
			}
			return nil
		})
		if err != nil {
			c.log.Error("failed to record entity removal", zap.Stringer("entity", u), zap.Error(err))
			return err
		}
	}

	c.log.Debug("entity destroyed", zap.Stringer("entity", u))
	return nil
}
