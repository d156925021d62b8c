package ecs

import (
	"image/color"

	"github.com/google/uuid"
)

// Vec2 is a 2D vector in world units
type Vec2 struct {
	X float64
	Y float64
}

// Add returns v+o
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Scale returns v*s
func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

// Vec3 is a 3D vector in world units
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// XY drops the Z component
func (v Vec3) XY() Vec2 { return Vec2{X: v.X, Y: v.Y} }

// ID is the stable identity of an entity.
// It survives serialization, unlike the local EntityID handle.
type ID struct {
	UUID uuid.UUID
}

// Tag is a human-readable entity name
type Tag struct {
	Name string
}

// Transform places an entity in the world.
// Rotation is in radians; only Z is used by the 2D physics world.
type Transform struct {
	Translation Vec3
	Rotation    Vec3
	Scale       Vec3
}

// DefaultTransform is the transform given to freshly created entities
func DefaultTransform() Transform {
	return Transform{Scale: Vec3{X: 1, Y: 1, Z: 1}}
}

// BodyType defines how a rigid body takes part in the simulation
type BodyType int

const (
	BodyStatic BodyType = iota
	BodyDynamic
	BodyKinematic
)

// String returns the string representation of the body type
func (t BodyType) String() string {
	switch t {
	case BodyStatic:
		return "static"
	case BodyDynamic:
		return "dynamic"
	case BodyKinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// ParseBodyType is the inverse of BodyType.String
func ParseBodyType(s string) (BodyType, bool) {
	switch s {
	case "static":
		return BodyStatic, true
	case "dynamic":
		return BodyDynamic, true
	case "kinematic":
		return BodyKinematic, true
	default:
		return BodyStatic, false
	}
}

// Rigidbody2D marks an entity as simulated by the physics world.
// Velocities are authored initial values; the physics world writes the
// simulated values back every step.
type Rigidbody2D struct {
	Type            BodyType
	FixedRotation   bool
	LinearVelocity  Vec2
	AngularVelocity float64 // radians/sec
	GravityScale    float64
}

// DefaultRigidbody2D returns a dynamic body affected by gravity
func DefaultRigidbody2D() Rigidbody2D {
	return Rigidbody2D{Type: BodyDynamic, GravityScale: 1}
}

// BoxCollider2D is an axis-aligned box relative to the entity translation
type BoxCollider2D struct {
	Offset      Vec2
	HalfSize    Vec2 // multiplied by Transform.Scale
	Density     float64
	Friction    float64 // 0-1, fraction of tangential velocity removed on contact
	Restitution float64 // 0-1, fraction of normal velocity kept on contact
}

// DefaultBoxCollider2D returns a unit box
func DefaultBoxCollider2D() BoxCollider2D {
	return BoxCollider2D{HalfSize: Vec2{X: 0.5, Y: 0.5}, Density: 1, Friction: 0.5}
}

// Script binds a script class to an entity
type Script struct {
	Class string
}

// SpriteRenderer is a flat colored quad drawn by the editor viewport
type SpriteRenderer struct {
	Color color.RGBA
}
