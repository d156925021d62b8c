package scene_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/scenekit/internal/domain/scene"
	"github.com/younwookim/scenekit/internal/ecs"
	"github.com/younwookim/scenekit/internal/infrastructure/serializer"
	"github.com/younwookim/scenekit/internal/physics"
)

const demoScene = `scene: demo
entities:
  - id: 6f1c2d3e-0000-4000-8000-000000000001
    tag: player
    transform:
      translation: {x: 1, y: 2, z: 0}
      rotation: {x: 0, y: 0, z: 0}
      scale: {x: 1, y: 1, z: 1}
    rigidbody2d:
      type: dynamic
      gravityScale: 1
`

func TestNew(t *testing.T) {
	s := scene.New("", physics.DefaultSettings())

	assert.Equal(t, "Untitled", s.Name)
	assert.NotNil(t, s.World)
	assert.NotNil(t, s.Physics())
	assert.False(t, s.Physics().Running())
	assert.False(t, s.Disposed())
}

func TestDispose(t *testing.T) {
	s := scene.New("level", physics.DefaultSettings())
	id := s.World.CreateEntity("box")
	s.World.Rigidbody2D[id] = ecs.DefaultRigidbody2D()
	require.NoError(t, s.Physics().Start(s.World))

	s.Dispose()
	s.Dispose()

	assert.True(t, s.Disposed())
	assert.False(t, s.Physics().Running())
	assert.Equal(t, 0, s.World.Count())
}

func TestFactory_CreateEmpty(t *testing.T) {
	f := scene.NewFactory(fstest.MapFS{}, serializer.New(), physics.DefaultSettings())

	s, err := f.Create("")
	require.NoError(t, err)

	assert.Equal(t, "Untitled", s.Name)
	assert.Empty(t, s.Path)
	assert.Equal(t, 0, s.World.Count())
}

func TestFactory_CreateFromFile(t *testing.T) {
	fsys := fstest.MapFS{
		"scenes/demo.scene.yaml": &fstest.MapFile{Data: []byte(demoScene)},
	}
	settings := physics.Settings{Gravity: ecs.Vec2{Y: -20}, Substeps: 2}
	f := scene.NewFactory(fsys, serializer.New(), settings)

	s, err := f.Create("scenes/demo.scene.yaml")
	require.NoError(t, err)

	assert.Equal(t, "demo", s.Name)
	assert.Equal(t, "scenes/demo.scene.yaml", s.Path)
	assert.Equal(t, settings, s.Physics().Settings())

	id, ok := s.World.FindByTag("player")
	require.True(t, ok)
	assert.Equal(t, 2.0, s.World.Transform[id].Translation.Y)
}

func TestFactory_CreateErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.scene.yaml": &fstest.MapFile{Data: []byte("entities:\n  - id: bad\n")},
	}
	f := scene.NewFactory(fsys, serializer.New(), physics.DefaultSettings())

	_, err := f.Create("missing.scene.yaml")
	assert.Error(t, err)

	_, err = f.Create("broken.scene.yaml")
	assert.ErrorIs(t, err, serializer.ErrInvalidDocument)
}
