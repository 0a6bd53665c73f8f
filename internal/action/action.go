// Package action maps stabilized gestures to application actions.
package action

import (
	"fmt"
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// Action is an application command triggered by a gesture.
type Action string

const (
	ScrollDown Action = "scroll_down"
	ScrollUp   Action = "scroll_up"
	Click      Action = "click"
	Pause      Action = "pause"
	Resume     Action = "resume"
)

// DefaultThreshold is the confidence a result must exceed before its action
// fires.
const DefaultThreshold = 0.75

// All returns every known action.
func All() []Action {
	return []Action{ScrollDown, ScrollUp, Click, Pause, Resume}
}

// Parse converts a name to an Action.
func Parse(name string) (Action, error) {
	for _, a := range All() {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", name)
}

// DefaultMappings returns the built-in gesture to action table. None has no
// action.
func DefaultMappings() map[gesture.Gesture]Action {
	return map[gesture.Gesture]Action{
		gesture.ThumbsUp: ScrollDown,
		gesture.Peace:    ScrollUp,
		gesture.Pointing: Click,
		gesture.OpenHand: Pause,
		gesture.Fist:     Resume,
	}
}

// Mapper resolves gestures to actions. It starts from DefaultMappings and
// accepts per-gesture overrides, typically loaded from stored bindings.
// Mapper is safe for concurrent use.
type Mapper struct {
	mu       sync.RWMutex
	mappings map[gesture.Gesture]Action
}

// NewMapper creates a Mapper with the default table.
func NewMapper() *Mapper {
	return &Mapper{mappings: DefaultMappings()}
}

// Lookup returns the action bound to g.
func (m *Mapper) Lookup(g gesture.Gesture) (Action, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.mappings[g]
	return a, ok
}

// Resolve applies the confidence threshold and then Lookup. A result at or
// below threshold resolves to no action.
func (m *Mapper) Resolve(res gesture.Result, threshold float64) (Action, bool) {
	if res.Confidence <= threshold {
		return "", false
	}
	return m.Lookup(res.Gesture)
}

// Set binds g to a. Binding None is ignored.
func (m *Mapper) Set(g gesture.Gesture, a Action) {
	if g == gesture.None {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings[g] = a
}

// Unset removes any action for g, so the gesture triggers nothing.
func (m *Mapper) Unset(g gesture.Gesture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mappings, g)
}

// Reset restores the default table.
func (m *Mapper) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings = DefaultMappings()
}

// Mappings returns a copy of the current table.
func (m *Mapper) Mappings() map[gesture.Gesture]Action {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[gesture.Gesture]Action, len(m.mappings))
	for g, a := range m.mappings {
		out[g] = a
	}
	return out
}
