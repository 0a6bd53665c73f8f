package gesture

// Smoothing constants.
const (
	// SmoothingWindow is the number of most recent raw labels kept.
	SmoothingWindow = 3
	// TransitionPenalty scales the confidence when the smoothed label differs
	// from the current frame's own label.
	TransitionPenalty = 0.8
)

// Smoother stabilizes per-frame results with a majority vote over the last
// SmoothingWindow raw labels.
//
// A Smoother belongs to exactly one gesture stream and is not safe for
// concurrent use. Feeding it frames from unrelated streams corrupts the
// history; give every stream its own instance.
type Smoother struct {
	history []Gesture
}

// NewSmoother creates a Smoother with an empty history.
func NewSmoother() *Smoother {
	return &Smoother{
		history: make([]Gesture, 0, SmoothingWindow),
	}
}

// Smooth records raw.Gesture and returns the stabilized result.
//
// With fewer than two labels in the history, raw is returned unchanged.
// Otherwise the most frequent label wins; ties go to the label seen first in
// the window. If the winner is raw.Gesture the confidence is kept, otherwise
// it is multiplied by TransitionPenalty.
func (s *Smoother) Smooth(raw Result) Result {
	if len(s.history) >= SmoothingWindow {
		copy(s.history, s.history[1:])
		s.history = s.history[:SmoothingWindow-1]
	}
	s.history = append(s.history, raw.Gesture)

	if len(s.history) < 2 {
		return raw
	}

	mode := s.mode()
	if mode == raw.Gesture {
		return Result{Gesture: mode, Confidence: raw.Confidence}
	}
	return Result{Gesture: mode, Confidence: raw.Confidence * TransitionPenalty}
}

// mode returns the most frequent label in the history, breaking ties by
// first occurrence.
func (s *Smoother) mode() Gesture {
	var (
		best      Gesture
		bestCount int
	)
	for i, g := range s.history {
		if seenBefore(s.history[:i], g) {
			continue
		}
		count := 0
		for _, h := range s.history[i:] {
			if h == g {
				count++
			}
		}
		// Strictly greater keeps the earliest label on ties.
		if count > bestCount {
			best, bestCount = g, count
		}
	}
	return best
}

func seenBefore(prefix []Gesture, g Gesture) bool {
	for _, p := range prefix {
		if p == g {
			return true
		}
	}
	return false
}

// History returns a copy of the recorded labels, oldest first.
func (s *Smoother) History() []Gesture {
	h := make([]Gesture, len(s.history))
	copy(h, s.history)
	return h
}

// Reset clears the history, as when a stream restarts.
func (s *Smoother) Reset() {
	s.history = s.history[:0]
}
