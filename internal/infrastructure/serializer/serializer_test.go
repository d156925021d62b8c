package serializer

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/scenekit/internal/domain/scene"
	"github.com/younwookim/scenekit/internal/ecs"
	"github.com/younwookim/scenekit/internal/physics"
)

func createTestScene() *scene.Scene {
	s := scene.New("level", physics.DefaultSettings())
	w := s.World

	player := w.CreateEntity("player")
	w.Transform[player] = ecs.Transform{
		Translation: ecs.Vec3{X: 1.25, Y: -3.5, Z: 0.1},
		Rotation:    ecs.Vec3{Z: 0.7853981633974483},
		Scale:       ecs.Vec3{X: 1, Y: 2, Z: 1},
	}
	w.Rigidbody2D[player] = ecs.Rigidbody2D{
		Type:            ecs.BodyDynamic,
		FixedRotation:   true,
		LinearVelocity:  ecs.Vec2{X: 0.1, Y: -9.81},
		AngularVelocity: 1.5,
		GravityScale:    0.5,
	}
	w.BoxCollider2D[player] = ecs.BoxCollider2D{
		Offset:      ecs.Vec2{Y: 0.25},
		HalfSize:    ecs.Vec2{X: 0.4, Y: 0.9},
		Density:     2,
		Friction:    0.3,
		Restitution: 0.1,
	}
	w.Script[player] = ecs.Script{Class: "player"}
	w.SpriteRenderer[player] = ecs.SpriteRenderer{Color: color.RGBA{R: 100, G: 200, B: 100, A: 255}}

	floor := w.CreateEntity("floor")
	w.Rigidbody2D[floor] = ecs.Rigidbody2D{Type: ecs.BodyStatic}

	w.CreateEntity("empty")

	return s
}

func TestSerialize_RoundTrip(t *testing.T) {
	src := createTestScene()
	y := New()

	data, err := y.Serialize(src)
	require.NoError(t, err)

	dst := scene.New("other", physics.DefaultSettings())
	require.NoError(t, y.Deserialize(dst, data))

	assert.Equal(t, "level", dst.Name)
	require.Equal(t, src.World.Count(), dst.World.Count())

	srcIDs := src.World.Entities()
	dstIDs := dst.World.Entities()
	for i := range srcIDs {
		s, d := srcIDs[i], dstIDs[i]
		assert.Equal(t, src.World.UUID(s), dst.World.UUID(d), "uuid and order survive")
		assert.Equal(t, src.World.Tag[s], dst.World.Tag[d])
		assert.Equal(t, src.World.Transform[s], dst.World.Transform[d])
		assert.Equal(t, src.World.Rigidbody2D[s], dst.World.Rigidbody2D[d])
		assert.Equal(t, src.World.BoxCollider2D[s], dst.World.BoxCollider2D[d])
		assert.Equal(t, src.World.Script[s], dst.World.Script[d])
		assert.Equal(t, src.World.SpriteRenderer[s], dst.World.SpriteRenderer[d])
	}

	// Optional components stay absent
	_, hasCollider := dst.World.BoxCollider2D[dstIDs[1]]
	assert.False(t, hasCollider)
	_, hasBody := dst.World.Rigidbody2D[dstIDs[2]]
	assert.False(t, hasBody)
}

func TestSerialize_DoesNotMutateSource(t *testing.T) {
	src := createTestScene()
	before := src.World.Entities()
	beforeTransform := src.World.Transform[before[0]]

	_, err := New().Serialize(src)
	require.NoError(t, err)

	assert.Equal(t, before, src.World.Entities())
	assert.Equal(t, beforeTransform, src.World.Transform[before[0]])
}

func TestDeserialize_ReplacesContents(t *testing.T) {
	y := New()
	snapshot, err := y.Serialize(createTestScene())
	require.NoError(t, err)

	live := scene.New("level", physics.DefaultSettings())
	require.NoError(t, y.Deserialize(live, snapshot))

	// Mutate and add
	player, ok := live.World.FindByTag("player")
	require.True(t, ok)
	tr := live.World.Transform[player]
	tr.Translation.X = 99
	live.World.Transform[player] = tr
	live.World.CreateEntity("spawned")

	require.NoError(t, y.Deserialize(live, snapshot))

	assert.Equal(t, 3, live.World.Count())
	_, found := live.World.FindByTag("spawned")
	assert.False(t, found, "restore is a wholesale replace, not a merge")

	player, _ = live.World.FindByTag("player")
	assert.Equal(t, 1.25, live.World.Transform[player].Translation.X)
}

func TestDeserialize_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed yaml", "entities: [\n"},
		{"bad uuid", "entities:\n  - id: nope\n    tag: a\n"},
		{"duplicate uuid", "entities:\n" +
			"  - id: 6f1c2d3e-0000-4000-8000-000000000001\n    tag: a\n" +
			"  - id: 6f1c2d3e-0000-4000-8000-000000000001\n    tag: b\n"},
		{"unknown body type", "entities:\n" +
			"  - id: 6f1c2d3e-0000-4000-8000-000000000001\n    tag: a\n    rigidbody2d:\n      type: floaty\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestScene()
			err := New().Deserialize(s, []byte(tt.doc))

			assert.ErrorIs(t, err, ErrInvalidDocument)
			assert.Equal(t, 3, s.World.Count(), "scene must be unchanged on error")
			assert.Equal(t, "level", s.Name)
		})
	}
}

func TestSaveFileLoadFile(t *testing.T) {
	y := New()
	src := createTestScene()
	path := filepath.Join(t.TempDir(), "level.scene.yaml")

	require.NoError(t, y.SaveFile(src, path))

	loaded, err := y.LoadFile(path, physics.DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, path, loaded.Path)
	assert.Equal(t, "level", loaded.Name)
	assert.Equal(t, 3, loaded.World.Count())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := New().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), physics.DefaultSettings())
	assert.Error(t, err)
}
