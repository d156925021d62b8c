package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/scenekit/internal/domain/scene"
	"github.com/younwookim/scenekit/internal/ecs"
	"github.com/younwookim/scenekit/internal/infrastructure/serializer"
	"github.com/younwookim/scenekit/internal/physics"
)

// failingSerializer wraps the YAML serializer and fails on demand
type failingSerializer struct {
	inner         Serializer
	failSerialize bool
	failRestore   bool
}

var errInjected = errors.New("injected failure")

func (f *failingSerializer) Serialize(s *scene.Scene) ([]byte, error) {
	if f.failSerialize {
		return nil, errInjected
	}
	return f.inner.Serialize(s)
}

func (f *failingSerializer) Deserialize(s *scene.Scene, data []byte) error {
	if f.failRestore {
		return errInjected
	}
	return f.inner.Deserialize(s, data)
}

func createSnapshotScene() (*scene.Scene, ecs.EntityID) {
	s := scene.New("level", physics.Settings{Substeps: 1})
	id := s.World.CreateEntity("crate")
	s.World.Transform[id] = ecs.Transform{
		Translation: ecs.Vec3{X: 1, Y: 2},
		Scale:       ecs.Vec3{X: 1, Y: 1, Z: 1},
	}
	return s, id
}

func moveX(s *scene.Scene, id ecs.EntityID, x float64) {
	tr := s.World.Transform[id]
	tr.Translation.X = x
	s.World.Transform[id] = tr
}

func TestSnapshotStore_RestoreWithoutCapture(t *testing.T) {
	st := NewSnapshotStore(serializer.New())
	s, _ := createSnapshotScene()

	assert.False(t, st.Has())
	assert.ErrorIs(t, st.Restore(s), ErrNoSnapshot)
	assert.Equal(t, 1, s.World.Count(), "scene untouched")
}

func TestSnapshotStore_CaptureRestore(t *testing.T) {
	st := NewSnapshotStore(serializer.New())
	s, id := createSnapshotScene()

	require.NoError(t, st.Capture(s))
	assert.True(t, st.Has())
	assert.Positive(t, st.Size())

	moveX(s, id, 50)
	s.World.CreateEntity("spawned")
	s.Name = "renamed"

	require.NoError(t, st.Restore(s))

	assert.Equal(t, "level", s.Name)
	assert.Equal(t, 1, s.World.Count())
	restored, ok := s.World.FindByTag("crate")
	require.True(t, ok)
	assert.Equal(t, 1.0, s.World.Transform[restored].Translation.X)

	// Snapshot is kept after Restore
	assert.True(t, st.Has())
	moveX(s, restored, 7)
	require.NoError(t, st.Restore(s))
	restored, _ = s.World.FindByTag("crate")
	assert.Equal(t, 1.0, s.World.Transform[restored].Translation.X)
}

func TestSnapshotStore_CaptureIsIndependentOfLiveScene(t *testing.T) {
	st := NewSnapshotStore(serializer.New())
	s, id := createSnapshotScene()
	require.NoError(t, st.Capture(s))

	size := st.Size()
	for i := 0; i < 10; i++ {
		s.World.CreateEntity("noise")
	}
	moveX(s, id, 3)

	assert.Equal(t, size, st.Size())
}

func TestSnapshotStore_CaptureOverwrites(t *testing.T) {
	st := NewSnapshotStore(serializer.New())
	s, id := createSnapshotScene()

	require.NoError(t, st.Capture(s))
	moveX(s, id, 9)
	require.NoError(t, st.Capture(s))
	moveX(s, id, 0)

	require.NoError(t, st.Restore(s))
	restored, _ := s.World.FindByTag("crate")
	assert.Equal(t, 9.0, s.World.Transform[restored].Translation.X)
}

func TestSnapshotStore_CaptureFailureKeepsPrevious(t *testing.T) {
	ser := &failingSerializer{inner: serializer.New()}
	st := NewSnapshotStore(ser)
	s, id := createSnapshotScene()
	require.NoError(t, st.Capture(s))

	ser.failSerialize = true
	moveX(s, id, 4)
	err := st.Capture(s)
	assert.ErrorIs(t, err, ErrSerialization)
	assert.ErrorIs(t, err, errInjected)

	ser.failSerialize = false
	require.NoError(t, st.Restore(s))
	restored, _ := s.World.FindByTag("crate")
	assert.Equal(t, 1.0, s.World.Transform[restored].Translation.X)
}

func TestSnapshotStore_RestoreFailure(t *testing.T) {
	ser := &failingSerializer{inner: serializer.New()}
	st := NewSnapshotStore(ser)
	s, _ := createSnapshotScene()
	require.NoError(t, st.Capture(s))

	ser.failRestore = true
	err := st.Restore(s)
	assert.ErrorIs(t, err, ErrSerialization)
	assert.True(t, st.Has(), "snapshot kept for retry")
}

func TestSnapshotStore_Amend(t *testing.T) {
	st := NewSnapshotStore(serializer.New())
	s, id := createSnapshotScene()
	require.NoError(t, st.Capture(s))

	added := s.World.CreateEntity("authored")
	moveX(s, id, 42)

	require.NoError(t, st.Amend(func(scratch *scene.Scene) error {
		s.World.CopyEntity(scratch.World, added)
		return nil
	}))

	require.NoError(t, st.Restore(s))
	assert.Equal(t, 2, s.World.Count())
	_, ok := s.World.FindByTag("authored")
	assert.True(t, ok)
	crate, _ := s.World.FindByTag("crate")
	assert.Equal(t, 1.0, s.World.Transform[crate].Translation.X)
}

func TestSnapshotStore_AmendErrors(t *testing.T) {
	st := NewSnapshotStore(serializer.New())
	assert.ErrorIs(t, st.Amend(func(*scene.Scene) error { return nil }), ErrNoSnapshot)

	s, _ := createSnapshotScene()
	require.NoError(t, st.Capture(s))
	before := st.Size()

	err := st.Amend(func(scratch *scene.Scene) error {
		scratch.World.CreateEntity("discarded")
		return errInjected
	})
	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, before, st.Size(), "failed edit leaves the snapshot alone")
}

func TestSnapshotStore_Clear(t *testing.T) {
	st := NewSnapshotStore(serializer.New())
	s, _ := createSnapshotScene()
	require.NoError(t, st.Capture(s))

	st.Clear()
	st.Clear()

	assert.False(t, st.Has())
	assert.Equal(t, 0, st.Size())
	assert.ErrorIs(t, st.Restore(s), ErrNoSnapshot)
}
