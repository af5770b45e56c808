package renderer

import (
	"errors"
	"strconv"
)

// State is the lifecycle state of a Renderer.
type State uint32

// Renderer states.
const (
	StateUninitialized State = iota
	StateReady
	StateRendering
	StateReleased
)

var stateNames = [...]string{"uninitialized", "ready", "rendering", "released"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Lifecycle errors.
var (
	// ErrNotReady is returned when a frame is requested before Setup.
	ErrNotReady = errors.New("renderer: not ready")

	// ErrReleased is returned by every lifecycle call after Release.
	ErrReleased = errors.New("renderer: released")
)
