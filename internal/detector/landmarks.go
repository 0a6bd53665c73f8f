// Package detector provides hand detection interfaces and the landmark types
// produced by the upstream hand landmarker.
package detector

import (
	"errors"
	"fmt"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by the landmarker.
const (
	HandLeft    = "Left"
	HandRight   = "Right"
	HandUnknown = "Unknown"
)

// ErrInvalidInput is returned when a hand observation is missing or does not
// carry exactly NumLandmarks points. Callers should treat the frame as
// "no hand detected".
var ErrInvalidInput = errors.New("invalid hand observation")

// Point3D is a landmark in normalized image space. X and Y are in [0,1]
// relative to the frame, Y grows downward. Z is relative depth, more
// negative is closer to the camera.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand: the 21 MediaPipe landmarks, the
// handedness label and the detection confidence.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left", "Right" or "Unknown"
	Score      float64               `json:"score"`
}

// NewHandLandmarks builds a HandLandmarks from a variable-length point list.
// It returns ErrInvalidInput unless exactly NumLandmarks points are given.
// An empty handedness becomes HandUnknown.
func NewHandLandmarks(points []Point3D, handedness string, score float64) (HandLandmarks, error) {
	var h HandLandmarks
	if len(points) != NumLandmarks {
		return h, fmt.Errorf("%w: got %d landmarks, want %d", ErrInvalidInput, len(points), NumLandmarks)
	}

	copy(h.Points[:], points)
	h.Handedness = normalizeHandedness(handedness)
	h.Score = score
	return h, nil
}

// Primary returns the hand the pipeline classifies for a frame, which is the
// first one reported. It returns nil when no hands were detected.
func Primary(hands []HandLandmarks) *HandLandmarks {
	if len(hands) == 0 {
		return nil
	}
	return &hands[0]
}

func normalizeHandedness(label string) string {
	switch label {
	case HandLeft, HandRight:
		return label
	default:
		return HandUnknown
	}
}
