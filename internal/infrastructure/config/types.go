package config

import (
	"github.com/younwookim/scenekit/internal/ecs"
	"github.com/younwookim/scenekit/internal/physics"
)

// ProjectConfig is the root config for project.json
type ProjectConfig struct {
	Name       string        `json:"name"`
	Display    DisplayConfig `json:"display"`
	Physics    PhysicsConfig `json:"physics"`
	StartScene string        `json:"startScene"` // scene file relative to the project root, "" for an empty scene
	ScriptsDir string        `json:"scriptsDir"`
}

// DisplayConfig configures the editor window and viewport
type DisplayConfig struct {
	ScreenWidth   int     `json:"screenWidth"`
	ScreenHeight  int     `json:"screenHeight"`
	Framerate     int     `json:"framerate"`
	PixelsPerUnit float64 `json:"pixelsPerUnit"` // world units to screen pixels
}

// PhysicsConfig configures every scene's physics world
type PhysicsConfig struct {
	Gravity  Vec2Config `json:"gravity"`
	Substeps int        `json:"substeps"`
}

// Vec2Config is a 2D vector in project.json
type Vec2Config struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DefaultProject returns the settings used when project.json omits a value
func DefaultProject() ProjectConfig {
	return ProjectConfig{
		Name: "Untitled",
		Display: DisplayConfig{
			ScreenWidth:   960,
			ScreenHeight:  540,
			Framerate:     60,
			PixelsPerUnit: 32,
		},
		Physics: PhysicsConfig{
			Gravity:  Vec2Config{Y: -9.8},
			Substeps: 4,
		},
		ScriptsDir: "scripts",
	}
}

// applyDefaults fills zero values from DefaultProject.
// Gravity is left alone: a zero vector is a valid setting.
func (c *ProjectConfig) applyDefaults() {
	def := DefaultProject()
	if c.Name == "" {
		c.Name = def.Name
	}
	if c.Display.ScreenWidth <= 0 {
		c.Display.ScreenWidth = def.Display.ScreenWidth
	}
	if c.Display.ScreenHeight <= 0 {
		c.Display.ScreenHeight = def.Display.ScreenHeight
	}
	if c.Display.Framerate <= 0 {
		c.Display.Framerate = def.Display.Framerate
	}
	if c.Display.PixelsPerUnit <= 0 {
		c.Display.PixelsPerUnit = def.Display.PixelsPerUnit
	}
	if c.Physics.Substeps <= 0 {
		c.Physics.Substeps = def.Physics.Substeps
	}
	if c.ScriptsDir == "" {
		c.ScriptsDir = def.ScriptsDir
	}
}

// SimulationSettings converts the physics section for the physics world
func (c *ProjectConfig) SimulationSettings() physics.Settings {
	return physics.Settings{
		Gravity:  ecs.Vec2{X: c.Physics.Gravity.X, Y: c.Physics.Gravity.Y},
		Substeps: c.Physics.Substeps,
	}
}
