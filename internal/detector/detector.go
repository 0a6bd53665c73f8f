package detector

import "gocv.io/x/gocv"

// Detector finds hands in camera frames.
type Detector interface {
	// Detect returns the landmarks of every hand found in frame, first hand
	// first. A frame without hands yields an empty slice and no error.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close stops the detector and releases its resources.
	Close() error
}

// Config tunes the hand landmark model. The defaults match the MediaPipe
// Hands settings the gesture rules were calibrated with: two hands, and 0.5
// for both detection and tracking confidence.
type Config struct {
	// MaxHands caps how many hands are reported per frame. Only the first
	// is classified; the rest are counted.
	MaxHands int

	// MinConfidence drops hands whose detection score is below it, in
	// [0, 1].
	MinConfidence float64

	// MinTrackingConf is passed to the model as its landmark tracking
	// confidence, in [0, 1].
	MinTrackingConf float64
}

// DefaultConfig returns the 2 / 0.5 / 0.5 hand model settings.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
