package lifecycle

import "errors"

var (
	// ErrSerialization is returned when a snapshot cannot be captured or restored
	ErrSerialization = errors.New("snapshot serialization failed")
	// ErrNoSnapshot is returned by Restore when nothing has been captured
	ErrNoSnapshot = errors.New("no snapshot captured")
	// ErrRuntimeStart is returned when physics or scripts fail to start
	ErrRuntimeStart = errors.New("runtime start failed")
	// ErrRuntimeStop is returned when physics or scripts fail to stop
	ErrRuntimeStop = errors.New("runtime stop failed")
	// ErrTransitionInProgress is returned when a transition is requested from
	// inside another transition
	ErrTransitionInProgress = errors.New("scene transition already in progress")
	// ErrNoScene is returned when the controller has no active scene
	ErrNoScene = errors.New("no active scene")
)

// ErrUnknownEntity is returned when an authored edit names a missing entity
var ErrUnknownEntity = errors.New("unknown entity")
