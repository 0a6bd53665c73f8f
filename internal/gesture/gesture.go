// Package gesture classifies hand landmarks into a fixed gesture vocabulary.
//
// Classification is a three stage pipeline run once per frame:
// Extract turns landmarks into FingerStates, a RuleEngine maps those to a
// Result, and a per-stream Smoother stabilizes results over the last few
// frames. Session bundles the three for one gesture stream.
package gesture

import "fmt"

// Gesture is one label of the closed gesture vocabulary. The string value is
// the wire name used by the HTTP API and the database.
type Gesture string

const (
	ThumbsUp Gesture = "thumbs_up"
	Peace    Gesture = "peace_sign"
	Pointing Gesture = "pointing"
	OpenHand Gesture = "open_hand"
	Fist     Gesture = "fist"
	// None means no rule matched. It is a valid classification, not an error.
	None Gesture = "none"
)

// All returns every gesture in the vocabulary, None last.
func All() []Gesture {
	return []Gesture{ThumbsUp, Peace, Pointing, OpenHand, Fist, None}
}

// String implements fmt.Stringer.
func (g Gesture) String() string {
	return string(g)
}

// Valid reports whether g belongs to the vocabulary.
func (g Gesture) Valid() bool {
	for _, v := range All() {
		if g == v {
			return true
		}
	}
	return false
}

// Parse converts a wire name to a Gesture.
func Parse(name string) (Gesture, error) {
	g := Gesture(name)
	if !g.Valid() {
		return None, fmt.Errorf("unknown gesture %q", name)
	}
	return g, nil
}

// Result is a classification outcome. Confidence is an engineered score in
// [0,1] reflecting how discriminative the matching rule is, not a
// probability.
type Result struct {
	Gesture    Gesture `json:"gesture"`
	Confidence float64 `json:"confidence"`
}

// NoGesture is the Result reported when nothing was classified.
var NoGesture = Result{Gesture: None, Confidence: 0}
