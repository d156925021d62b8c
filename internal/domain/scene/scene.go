// Package scene defines the Scene edited and simulated by the editor.
//
// A Scene owns its entity/component storage and one physics world.
// Scenes are created by a Factory, either empty or from a scene file.
package scene

import (
	"github.com/younwookim/scenekit/internal/ecs"
	"github.com/younwookim/scenekit/internal/physics"
)

// Scene is a mutable graph of entities and their components
type Scene struct {
	Name string
	Path string // file the scene was loaded from, empty for new scenes

	World *ecs.World

	physics  *physics.World
	disposed bool
}

// New creates an empty scene with its own physics world
func New(name string, settings physics.Settings) *Scene {
	if name == "" {
		name = "Untitled"
	}
	return &Scene{
		Name:    name,
		World:   ecs.NewWorld(),
		physics: physics.NewWorld(settings),
	}
}

// Physics returns the physics world owned by this scene
func (s *Scene) Physics() *physics.World {
	return s.physics
}

// Dispose stops the physics world and drops all entities.
// A disposed scene must not be used again.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	s.physics.Stop()
	s.World.Clear()
	s.disposed = true
}

// Disposed reports whether Dispose has been called
func (s *Scene) Disposed() bool {
	return s.disposed
}
