package lifecycle

import (
	"fmt"

	"github.com/younwookim/scenekit/internal/domain/scene"
	"github.com/younwookim/scenekit/internal/physics"
)

// noPhysics configures scratch scenes that are never simulated
var noPhysics = physics.Settings{Substeps: 1}

// Serializer converts a scene to and from an opaque blob.
// The same contract is used for scene files on disk.
type Serializer interface {
	Serialize(s *scene.Scene) ([]byte, error)
	Deserialize(s *scene.Scene, data []byte) error
}

// SnapshotStore holds at most one serialized copy of a scene.
// The blob is never shared with the live scene.
type SnapshotStore struct {
	serializer Serializer
	blob       []byte
	name       string // scene name at capture time
}

// NewSnapshotStore creates an empty store
func NewSnapshotStore(serializer Serializer) *SnapshotStore {
	return &SnapshotStore{serializer: serializer}
}

// Has reports whether a snapshot is held
func (st *SnapshotStore) Has() bool {
	return st.blob != nil
}

// Size returns the size of the held snapshot in bytes
func (st *SnapshotStore) Size() int {
	return len(st.blob)
}

// Capture serializes the scene, replacing any previous snapshot.
// On error the previous snapshot is kept.
func (st *SnapshotStore) Capture(s *scene.Scene) error {
	blob, err := st.serializer.Serialize(s)
	if err != nil {
		return fmt.Errorf("%w: capture %s: %w", ErrSerialization, s.Name, err)
	}
	if blob == nil {
		blob = []byte{}
	}
	st.blob = blob
	st.name = s.Name
	return nil
}

// Restore replaces the scene contents with the held snapshot.
// The snapshot is kept so Restore can be retried.
func (st *SnapshotStore) Restore(s *scene.Scene) error {
	if st.blob == nil {
		return ErrNoSnapshot
	}
	if err := st.serializer.Deserialize(s, st.blob); err != nil {
		return fmt.Errorf("%w: restore %s: %w", ErrSerialization, s.Name, err)
	}
	s.Name = st.name
	return nil
}

// Amend applies an authored edit to the held snapshot so it survives Restore.
// edit receives a scratch scene decoded from the snapshot.
func (st *SnapshotStore) Amend(edit func(scratch *scene.Scene) error) error {
	if st.blob == nil {
		return ErrNoSnapshot
	}

	scratch := scene.New(st.name, noPhysics)
	if err := st.serializer.Deserialize(scratch, st.blob); err != nil {
		return fmt.Errorf("%w: amend: %w", ErrSerialization, err)
	}
	if err := edit(scratch); err != nil {
		return err
	}

	blob, err := st.serializer.Serialize(scratch)
	if err != nil {
		return fmt.Errorf("%w: amend: %w", ErrSerialization, err)
	}
	st.blob = blob
	return nil
}

// Clear releases the held snapshot
func (st *SnapshotStore) Clear() {
	st.blob = nil
	st.name = ""
}
