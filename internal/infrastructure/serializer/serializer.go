// Package serializer converts scenes to and from YAML documents.
//
// The same document format is used for scene files on disk and for the
// in-memory snapshots taken when simulation starts.
package serializer

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/younwookim/scenekit/internal/domain/scene"
	"github.com/younwookim/scenekit/internal/ecs"
	"github.com/younwookim/scenekit/internal/physics"
)

// ErrInvalidDocument is returned when a scene document cannot be decoded
var ErrInvalidDocument = errors.New("invalid scene document")

type vec2Doc struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type vec3Doc struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type transformDoc struct {
	Translation vec3Doc `yaml:"translation,flow"`
	Rotation    vec3Doc `yaml:"rotation,flow"`
	Scale       vec3Doc `yaml:"scale,flow"`
}

type rigidbodyDoc struct {
	Type            string  `yaml:"type"`
	FixedRotation   bool    `yaml:"fixedRotation"`
	LinearVelocity  vec2Doc `yaml:"linearVelocity,flow"`
	AngularVelocity float64 `yaml:"angularVelocity"`
	GravityScale    float64 `yaml:"gravityScale"`
}

type colliderDoc struct {
	Offset      vec2Doc `yaml:"offset,flow"`
	HalfSize    vec2Doc `yaml:"halfSize,flow"`
	Density     float64 `yaml:"density"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

type scriptDoc struct {
	Class string `yaml:"class"`
}

type colorDoc struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
	A uint8 `yaml:"a"`
}

type spriteDoc struct {
	Color colorDoc `yaml:"color,flow"`
}

type entityDoc struct {
	ID             string        `yaml:"id"`
	Tag            string        `yaml:"tag"`
	Transform      transformDoc  `yaml:"transform"`
	Rigidbody2D    *rigidbodyDoc `yaml:"rigidbody2d,omitempty"`
	BoxCollider2D  *colliderDoc  `yaml:"boxCollider2d,omitempty"`
	Script         *scriptDoc    `yaml:"script,omitempty"`
	SpriteRenderer *spriteDoc    `yaml:"spriteRenderer,omitempty"`
}

type sceneDoc struct {
	Scene    string      `yaml:"scene"`
	Entities []entityDoc `yaml:"entities"`
}

// YAML serializes scenes as YAML documents
type YAML struct{}

// New creates a YAML scene serializer
func New() *YAML {
	return &YAML{}
}

// Serialize encodes every entity of the scene in creation order.
// The scene is not modified.
func (y *YAML) Serialize(s *scene.Scene) ([]byte, error) {
	doc := sceneDoc{
		Scene:    s.Name,
		Entities: make([]entityDoc, 0, s.World.Count()),
	}

	w := s.World
	for _, id := range w.Entities() {
		doc.Entities = append(doc.Entities, encodeEntity(w, id))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode scene %s: %w", s.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode scene %s: %w", s.Name, err)
	}

	return buf.Bytes(), nil
}

// Deserialize replaces the contents of the scene with the decoded document.
// The document is fully validated first, so on error the scene is unchanged.
func (y *YAML) Deserialize(s *scene.Scene, data []byte) error {
	var doc sceneDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	type decoded struct {
		uuid uuid.UUID
		doc  entityDoc
		body ecs.BodyType
	}
	entities := make([]decoded, 0, len(doc.Entities))
	seen := make(map[uuid.UUID]struct{}, len(doc.Entities))

	for i, ed := range doc.Entities {
		u, err := uuid.Parse(ed.ID)
		if err != nil {
			return fmt.Errorf("%w: entity %d (%q): bad id: %v", ErrInvalidDocument, i, ed.Tag, err)
		}
		if _, dup := seen[u]; dup {
			return fmt.Errorf("%w: entity %d (%q): duplicate id %s", ErrInvalidDocument, i, ed.Tag, u)
		}
		seen[u] = struct{}{}

		var bt ecs.BodyType
		if ed.Rigidbody2D != nil {
			var ok bool
			bt, ok = ecs.ParseBodyType(ed.Rigidbody2D.Type)
			if !ok {
				return fmt.Errorf("%w: entity %d (%q): unknown body type %q",
					ErrInvalidDocument, i, ed.Tag, ed.Rigidbody2D.Type)
			}
		}
		entities = append(entities, decoded{uuid: u, doc: ed, body: bt})
	}

	if doc.Scene != "" {
		s.Name = doc.Scene
	}

	w := s.World
	w.Clear()
	for _, e := range entities {
		decodeEntity(w, e.uuid, e.doc, e.body)
	}

	return nil
}

// SaveFile writes the scene to path
func (y *YAML) SaveFile(s *scene.Scene, path string) error {
	data, err := y.Serialize(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scene %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a scene file from disk
func (y *YAML) LoadFile(path string, settings physics.Settings) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %w", path, err)
	}

	s := scene.New("", settings)
	if err := y.Deserialize(s, data); err != nil {
		return nil, fmt.Errorf("failed to load scene %s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

func encodeEntity(w *ecs.World, id ecs.EntityID) entityDoc {
	tr := w.Transform[id]
	ed := entityDoc{
		ID:  w.UUID(id).String(),
		Tag: w.Tag[id].Name,
		Transform: transformDoc{
			Translation: vec3ToDoc(tr.Translation),
			Rotation:    vec3ToDoc(tr.Rotation),
			Scale:       vec3ToDoc(tr.Scale),
		},
	}

	if rb, ok := w.Rigidbody2D[id]; ok {
		ed.Rigidbody2D = &rigidbodyDoc{
			Type:            rb.Type.String(),
			FixedRotation:   rb.FixedRotation,
			LinearVelocity:  vec2ToDoc(rb.LinearVelocity),
			AngularVelocity: rb.AngularVelocity,
			GravityScale:    rb.GravityScale,
		}
	}
	if bc, ok := w.BoxCollider2D[id]; ok {
		ed.BoxCollider2D = &colliderDoc{
			Offset:      vec2ToDoc(bc.Offset),
			HalfSize:    vec2ToDoc(bc.HalfSize),
			Density:     bc.Density,
			Friction:    bc.Friction,
			Restitution: bc.Restitution,
		}
	}
	if sc, ok := w.Script[id]; ok {
		ed.Script = &scriptDoc{Class: sc.Class}
	}
	if sr, ok := w.SpriteRenderer[id]; ok {
		ed.SpriteRenderer = &spriteDoc{Color: colorDoc{R: sr.Color.R, G: sr.Color.G, B: sr.Color.B, A: sr.Color.A}}
	}

	return ed
}

func decodeEntity(w *ecs.World, u uuid.UUID, ed entityDoc, bt ecs.BodyType) {
	id := w.CreateEntityWithUUID(u, ed.Tag)
	w.Transform[id] = ecs.Transform{
		Translation: docToVec3(ed.Transform.Translation),
		Rotation:    docToVec3(ed.Transform.Rotation),
		Scale:       docToVec3(ed.Transform.Scale),
	}

	if rb := ed.Rigidbody2D; rb != nil {
		w.Rigidbody2D[id] = ecs.Rigidbody2D{
			Type:            bt,
			FixedRotation:   rb.FixedRotation,
			LinearVelocity:  docToVec2(rb.LinearVelocity),
			AngularVelocity: rb.AngularVelocity,
			GravityScale:    rb.GravityScale,
		}
	}
	if bc := ed.BoxCollider2D; bc != nil {
		w.BoxCollider2D[id] = ecs.BoxCollider2D{
			Offset:      docToVec2(bc.Offset),
			HalfSize:    docToVec2(bc.HalfSize),
			Density:     bc.Density,
			Friction:    bc.Friction,
			Restitution: bc.Restitution,
		}
	}
	if sc := ed.Script; sc != nil {
		w.Script[id] = ecs.Script{Class: sc.Class}
	}
	if sr := ed.SpriteRenderer; sr != nil {
		w.SpriteRenderer[id] = ecs.SpriteRenderer{
			Color: color.RGBA{R: sr.Color.R, G: sr.Color.G, B: sr.Color.B, A: sr.Color.A},
		}
	}
}

func vec2ToDoc(v ecs.Vec2) vec2Doc { return vec2Doc{X: v.X, Y: v.Y} }
func docToVec2(d vec2Doc) ecs.Vec2 { return ecs.Vec2{X: d.X, Y: d.Y} }
func vec3ToDoc(v ecs.Vec3) vec3Doc { return vec3Doc{X: v.X, Y: v.Y, Z: v.Z} }
func docToVec3(d vec3Doc) ecs.Vec3 { return ecs.Vec3{X: d.X, Y: d.Y, Z: d.Z} }
