package ecs

import (
	"github.com/google/uuid"
)

// EntityID is a local handle for an entity (never recycled within a World).
// Handles are not stable across serialization; use the ID component for that.
type EntityID uint64

// World holds all component maps and the next entity ID
type World struct {
	nextID EntityID

	// order keeps creation order so iteration is deterministic
	order  []EntityID
	byUUID map[uuid.UUID]EntityID

	// Components
	ID             map[EntityID]ID
	Tag            map[EntityID]Tag
	Transform      map[EntityID]Transform
	Rigidbody2D    map[EntityID]Rigidbody2D
	BoxCollider2D  map[EntityID]BoxCollider2D
	Script         map[EntityID]Script
	SpriteRenderer map[EntityID]SpriteRenderer
}

// NewWorld creates a new empty world
func NewWorld() *World {
	w := &World{nextID: 1} // 0 is "nil"
	w.reset()
	return w
}

func (w *World) reset() {
	w.order = nil
	w.byUUID = make(map[uuid.UUID]EntityID)
	w.ID = make(map[EntityID]ID)
	w.Tag = make(map[EntityID]Tag)
	w.Transform = make(map[EntityID]Transform)
	w.Rigidbody2D = make(map[EntityID]Rigidbody2D)
	w.BoxCollider2D = make(map[EntityID]BoxCollider2D)
	w.Script = make(map[EntityID]Script)
	w.SpriteRenderer = make(map[EntityID]SpriteRenderer)
}

// CreateEntity creates an entity with a fresh UUID, a tag and a default transform
func (w *World) CreateEntity(name string) EntityID {
	return w.CreateEntityWithUUID(uuid.New(), name)
}

// CreateEntityWithUUID creates an entity with the given stable identity.
// If the UUID is already in use the existing entity is returned unchanged.
func (w *World) CreateEntityWithUUID(u uuid.UUID, name string) EntityID {
	if id, ok := w.byUUID[u]; ok {
		return id
	}

	id := w.nextID
	w.nextID++

	w.order = append(w.order, id)
	w.byUUID[u] = id
	w.ID[id] = ID{UUID: u}
	if name == "" {
		name = "Entity"
	}
	w.Tag[id] = Tag{Name: name}
	w.Transform[id] = DefaultTransform()

	return id
}

// DestroyEntity removes all components for an entity
func (w *World) DestroyEntity(id EntityID) {
	if !w.Exists(id) {
		return
	}
	delete(w.byUUID, w.ID[id].UUID)
	delete(w.ID, id)
	delete(w.Tag, id)
	delete(w.Transform, id)
	delete(w.Rigidbody2D, id)
	delete(w.BoxCollider2D, id)
	delete(w.Script, id)
	delete(w.SpriteRenderer, id)

	for i, e := range w.order {
		if e == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Clear removes every entity. Handles keep increasing afterwards.
func (w *World) Clear() {
	w.reset()
}

// Exists checks if an entity has an ID component
func (w *World) Exists(id EntityID) bool {
	_, ok := w.ID[id]
	return ok
}

// Lookup finds the local handle of an entity by its UUID
func (w *World) Lookup(u uuid.UUID) (EntityID, bool) {
	id, ok := w.byUUID[u]
	return id, ok
}

// UUID returns the stable identity of an entity
func (w *World) UUID(id EntityID) uuid.UUID {
	return w.ID[id].UUID
}

// Entities returns all entities in creation order.
// The returned slice is a copy and may be kept by the caller.
func (w *World) Entities() []EntityID {
	out := make([]EntityID, len(w.order))
	copy(out, w.order)
	return out
}

// Count returns the number of live entities
func (w *World) Count() int {
	return len(w.order)
}

// CopyEntity copies an entity with all its components into dst, keeping its UUID.
// An entity with the same UUID already in dst is replaced.
func (w *World) CopyEntity(dst *World, id EntityID) EntityID {
	u := w.UUID(id)
	if old, ok := dst.Lookup(u); ok {
		dst.DestroyEntity(old)
	}

	nid := dst.CreateEntityWithUUID(u, w.Tag[id].Name)
	dst.Transform[nid] = w.Transform[id]
	if rb, ok := w.Rigidbody2D[id]; ok {
		dst.Rigidbody2D[nid] = rb
	}
	if bc, ok := w.BoxCollider2D[id]; ok {
		dst.BoxCollider2D[nid] = bc
	}
	if sc, ok := w.Script[id]; ok {
		dst.Script[nid] = sc
	}
	if sr, ok := w.SpriteRenderer[id]; ok {
		dst.SpriteRenderer[nid] = sr
	}
	return nid
}

// FindByTag returns the first entity with the given tag
func (w *World) FindByTag(name string) (EntityID, bool) {
	for _, id := range w.order {
		if w.Tag[id].Name == name {
			return id, true
		}
	}
	return 0, false
}
