package gesture

import (
	"fmt"
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// ThumbExtendedThreshold is the horizontal distance, in normalized image
// coordinates, between the thumb tip and the index knuckle above which the
// thumb counts as extended. Tuned empirically.
const ThumbExtendedThreshold = 0.1

// FingerStates is the per-frame summary of which fingers are straightened.
type FingerStates struct {
	ThumbUp        bool `json:"thumb_up"`
	ThumbExtended  bool `json:"thumb_extended"`
	IndexExtended  bool `json:"index_extended"`
	MiddleExtended bool `json:"middle_extended"`
	RingExtended   bool `json:"ring_extended"`
	PinkyExtended  bool `json:"pinky_extended"`
}

// ExtendedCount returns how many of the four non-thumb fingers are extended.
func (s FingerStates) ExtendedCount() int {
	n := 0
	for _, ext := range []bool{s.IndexExtended, s.MiddleExtended, s.RingExtended, s.PinkyExtended} {
		if ext {
			n++
		}
	}
	return n
}

// Extract computes FingerStates from a single hand.
//
// A finger is extended when its tip is higher on screen (smaller Y) than its
// PIP joint. The thumb bends across the palm, so it gets two separate tests:
// "up" when the tip is above both its IP joint and the wrist, and "extended"
// when the tip is horizontally far from the index knuckle.
//
// Degenerate geometry yields a deterministic result. Only a nil hand is
// rejected, with detector.ErrInvalidInput.
func Extract(hand *detector.HandLandmarks) (FingerStates, error) {
	if hand == nil {
		return FingerStates{}, fmt.Errorf("%w: no hand", detector.ErrInvalidInput)
	}

	p := &hand.Points
	tip := p[detector.ThumbTip]

	return FingerStates{
		ThumbUp:        tip.Y < p[detector.ThumbIP].Y && tip.Y < p[detector.Wrist].Y,
		ThumbExtended:  math.Abs(tip.X-p[detector.IndexMCP].X) > ThumbExtendedThreshold,
		IndexExtended:  p[detector.IndexTip].Y < p[detector.IndexPIP].Y,
		MiddleExtended: p[detector.MiddleTip].Y < p[detector.MiddlePIP].Y,
		RingExtended:   p[detector.RingTip].Y < p[detector.RingPIP].Y,
		PinkyExtended:  p[detector.PinkyTip].Y < p[detector.PinkyPIP].Y,
	}, nil
}
