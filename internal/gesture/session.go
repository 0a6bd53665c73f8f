package gesture

import "github.com/ayusman/mudra/internal/detector"

// Session runs the full extract, classify, smooth pipeline for one gesture
// stream (one camera or client). It owns the stream's Smoother, so it has the
// same concurrency rule: calls must be serialized by the caller.
type Session struct {
	engine   *RuleEngine
	smoother *Smoother
	last     FingerStates
}

// NewSession creates a Session using the default decision table.
func NewSession() *Session {
	return NewSessionWithRules(DefaultRules())
}

// NewSessionWithRules creates a Session over a custom decision table.
func NewSessionWithRules(rules []Rule) *Session {
	return &Session{
		engine:   NewRuleEngine(rules),
		smoother: NewSmoother(),
	}
}

// Process classifies one frame's hand and returns the smoothed result.
// A nil hand returns detector.ErrInvalidInput and leaves the history
// untouched.
func (s *Session) Process(hand *detector.HandLandmarks) (Result, error) {
	states, err := Extract(hand)
	if err != nil {
		return NoGesture, err
	}
	s.last = states

	return s.smoother.Smooth(s.engine.Classify(states)), nil
}

// LastStates returns the finger states of the most recent processed frame.
func (s *Session) LastStates() FingerStates {
	return s.last
}

// Smoother returns the session's smoother.
func (s *Session) Smoother() *Smoother {
	return s.smoother
}
