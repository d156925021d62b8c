package state

// SceneState is the runtime mode of the active scene
type SceneState int

const (
	// StateEdit is authoring mode: the scene is static and directly editable
	StateEdit SceneState = iota
	// StatePlay is simulation mode: scripts run and physics advances
	StatePlay
	// StatePaused keeps the simulation alive with a zero time scale
	StatePaused
)

// String returns the string representation of the scene state
func (s SceneState) String() string {
	switch s {
	case StateEdit:
		return "Edit"
	case StatePlay:
		return "Play"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Simulating reports whether the state has a live simulation (Play or Paused)
func (s SceneState) Simulating() bool {
	return s == StatePlay || s == StatePaused
}
