// Package physics provides the 2D rigid-body world owned by each scene.
//
// Bodies are seeded from Rigidbody2D/BoxCollider2D components when the world
// starts and are written back to the components after every step, so the
// component data always reflects the simulated state.
package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/younwookim/scenekit/internal/ecs"
)

// ErrInvalidBody is returned by Start when a collider cannot be simulated
var ErrInvalidBody = errors.New("invalid physics body")

// Settings configures the simulation
type Settings struct {
	Gravity  ecs.Vec2
	Substeps int // steps per frame (minimum 1)
}

// DefaultSettings returns earth-like gravity with y pointing up
func DefaultSettings() Settings {
	return Settings{Gravity: ecs.Vec2{X: 0, Y: -9.8}, Substeps: 4}
}

// Body is the simulated state of one entity
type Body struct {
	Entity ecs.EntityID
	Type   ecs.BodyType

	Position        ecs.Vec2 // entity translation
	Rotation        float64  // radians
	Velocity        ecs.Vec2
	AngularVelocity float64
	GravityScale    float64
	FixedRotation   bool

	Offset      ecs.Vec2
	HalfSize    ecs.Vec2 // already scaled by transform
	Friction    float64
	Restitution float64
	invMass     float64
}

// bounds returns the AABB as min/max corners
func (b *Body) bounds() (minX, minY, maxX, maxY float64) {
	cx := b.Position.X + b.Offset.X
	cy := b.Position.Y + b.Offset.Y
	return cx - b.HalfSize.X, cy - b.HalfSize.Y, cx + b.HalfSize.X, cy + b.HalfSize.Y
}

// World is a 2D rigid-body simulation
type World struct {
	settings Settings
	running  bool
	bodies   []*Body
	index    map[ecs.EntityID]*Body
}

// NewWorld creates a stopped world
func NewWorld(settings Settings) *World {
	if settings.Substeps < 1 {
		settings.Substeps = 1
	}
	return &World{settings: settings}
}

// Settings returns the simulation settings
func (pw *World) Settings() Settings {
	return pw.settings
}

// Running reports whether Start has succeeded and Stop has not been called
func (pw *World) Running() bool {
	return pw.running
}

// Start seeds one body per entity with a Rigidbody2D.
// Starting a running world is a no-op.
func (pw *World) Start(w *ecs.World) error {
	if pw.running {
		return nil
	}

	bodies := make([]*Body, 0, len(w.Rigidbody2D))
	index := make(map[ecs.EntityID]*Body, len(w.Rigidbody2D))

	for _, id := range w.Entities() {
		rb, ok := w.Rigidbody2D[id]
		if !ok {
			continue
		}
		tr := w.Transform[id]

		collider, hasCollider := w.BoxCollider2D[id]
		if !hasCollider {
			collider = ecs.DefaultBoxCollider2D()
		}
		half := ecs.Vec2{
			X: collider.HalfSize.X * math.Abs(tr.Scale.X),
			Y: collider.HalfSize.Y * math.Abs(tr.Scale.Y),
		}
		if half.X <= 0 || half.Y <= 0 {
			return fmt.Errorf("%w: entity %q has collider half-size %vx%v",
				ErrInvalidBody, w.Tag[id].Name, half.X, half.Y)
		}

		body := &Body{
			Entity:          id,
			Type:            rb.Type,
			Position:        tr.Translation.XY(),
			Rotation:        tr.Rotation.Z,
			Velocity:        rb.LinearVelocity,
			AngularVelocity: rb.AngularVelocity,
			GravityScale:    rb.GravityScale,
			FixedRotation:   rb.FixedRotation,
			Offset:          collider.Offset,
			HalfSize:        half,
			Friction:        clamp01(collider.Friction),
			Restitution:     clamp01(collider.Restitution),
		}
		if rb.Type == ecs.BodyDynamic {
			density := collider.Density
			if density <= 0 {
				density = 1
			}
			body.invMass = 1 / (density * 4 * half.X * half.Y)
		}

		bodies = append(bodies, body)
		index[id] = body
	}

	pw.bodies = bodies
	pw.index = index
	pw.running = true
	return nil
}

// Stop tears the simulation down. Stopping a stopped world is a no-op.
func (pw *World) Stop() {
	pw.bodies = nil
	pw.index = nil
	pw.running = false
}

// BodyCount returns the number of simulated bodies
func (pw *World) BodyCount() int {
	return len(pw.bodies)
}

// Body returns a copy of the simulated state of an entity
func (pw *World) Body(id ecs.EntityID) (Body, bool) {
	b, ok := pw.index[id]
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// SetTransform teleports a body. Returns false if the entity has no body.
func (pw *World) SetTransform(id ecs.EntityID, pos ecs.Vec2, rotation float64) bool {
	b, ok := pw.index[id]
	if !ok {
		return false
	}
	b.Position = pos
	b.Rotation = rotation
	return true
}

// SetLinearVelocity overrides the velocity of a body. Returns false if the entity has no body.
func (pw *World) SetLinearVelocity(id ecs.EntityID, v ecs.Vec2) bool {
	b, ok := pw.index[id]
	if !ok {
		return false
	}
	b.Velocity = v
	return true
}

// Step advances the simulation by dt seconds and writes the result back to w.
// A zero or negative dt leaves everything untouched.
func (pw *World) Step(w *ecs.World, dt float64) {
	if !pw.running || dt <= 0 {
		return
	}

	h := dt / float64(pw.settings.Substeps)
	for i := 0; i < pw.settings.Substeps; i++ {
		pw.integrate(h)
		pw.resolveContacts()
	}

	pw.writeBack(w)
}

func (pw *World) integrate(h float64) {
	g := pw.settings.Gravity
	for _, b := range pw.bodies {
		switch b.Type {
		case ecs.BodyStatic:
			continue
		case ecs.BodyDynamic:
			b.Velocity = b.Velocity.Add(g.Scale(b.GravityScale * h))
		}

		b.Position = b.Position.Add(b.Velocity.Scale(h))
		if !b.FixedRotation {
			b.Rotation += b.AngularVelocity * h
		}
	}
}

// resolveContacts pushes overlapping bodies apart along the axis of least
// penetration and applies restitution and friction impulses.
func (pw *World) resolveContacts() {
	for i := 0; i < len(pw.bodies); i++ {
		a := pw.bodies[i]
		for j := i + 1; j < len(pw.bodies); j++ {
			b := pw.bodies[j]
			if a.invMass == 0 && b.invMass == 0 {
				continue
			}
			resolvePair(a, b)
		}
	}
}

func resolvePair(a, b *Body) {
	aMinX, aMinY, aMaxX, aMaxY := a.bounds()
	bMinX, bMinY, bMaxX, bMaxY := b.bounds()

	overlapX := math.Min(aMaxX, bMaxX) - math.Max(aMinX, bMinX)
	overlapY := math.Min(aMaxY, bMaxY) - math.Max(aMinY, bMinY)
	if overlapX <= 0 || overlapY <= 0 {
		return
	}

	// Normal points from a to b
	var normal ecs.Vec2
	var depth float64
	if overlapX < overlapY {
		depth = overlapX
		normal.X = 1
		if (bMinX + bMaxX) < (aMinX + aMaxX) {
			normal.X = -1
		}
	} else {
		depth = overlapY
		normal.Y = 1
		if (bMinY + bMaxY) < (aMinY + aMaxY) {
			normal.Y = -1
		}
	}

	totalInv := a.invMass + b.invMass

	// Positional correction
	a.Position = a.Position.Add(normal.Scale(-depth * a.invMass / totalInv))
	b.Position = b.Position.Add(normal.Scale(depth * b.invMass / totalInv))

	// Velocity along the normal
	rel := b.Velocity.Add(a.Velocity.Scale(-1))
	vn := rel.X*normal.X + rel.Y*normal.Y
	if vn >= 0 {
		return // separating
	}

	e := math.Min(a.Restitution, b.Restitution)
	j := -(1 + e) * vn / totalInv
	a.Velocity = a.Velocity.Add(normal.Scale(-j * a.invMass))
	b.Velocity = b.Velocity.Add(normal.Scale(j * b.invMass))

	// Friction damps the tangential component of moving bodies
	mu := math.Sqrt(a.Friction * b.Friction)
	tangent := ecs.Vec2{X: -normal.Y, Y: normal.X}
	for _, body := range [2]*Body{a, b} {
		if body.invMass == 0 {
			continue
		}
		vt := body.Velocity.X*tangent.X + body.Velocity.Y*tangent.Y
		body.Velocity = body.Velocity.Add(tangent.Scale(-vt * mu))
	}
}

func (pw *World) writeBack(w *ecs.World) {
	for _, b := range pw.bodies {
		if !w.Exists(b.Entity) {
			continue
		}

		tr := w.Transform[b.Entity]
		tr.Translation.X = b.Position.X
		tr.Translation.Y = b.Position.Y
		tr.Rotation.Z = b.Rotation
		w.Transform[b.Entity] = tr

		if rb, ok := w.Rigidbody2D[b.Entity]; ok {
			rb.LinearVelocity = b.Velocity
			rb.AngularVelocity = b.AngularVelocity
			w.Rigidbody2D[b.Entity] = rb
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
