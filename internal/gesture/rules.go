package gesture

// Rule is one row of the decision table.
type Rule struct {
	Name       string
	Gesture    Gesture
	Confidence float64
	Match      func(FingerStates) bool
}

// DefaultRules returns the gesture decision table, most distinctive pattern
// first. The order matters: rules are evaluated top to bottom and the first
// match wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "thumbs-up",
			Gesture:    ThumbsUp,
			Confidence: 0.90,
			Match: func(s FingerStates) bool {
				return s.ThumbUp && s.ExtendedCount() == 0
			},
		},
		{
			Name:       "peace",
			Gesture:    Peace,
			Confidence: 0.85,
			Match: func(s FingerStates) bool {
				return s.IndexExtended && s.MiddleExtended && !s.RingExtended && !s.PinkyExtended
			},
		},
		{
			Name:       "pointing",
			Gesture:    Pointing,
			Confidence: 0.88,
			Match: func(s FingerStates) bool {
				return s.IndexExtended && !s.MiddleExtended && !s.RingExtended && !s.PinkyExtended
			},
		},
		{
			// Catch-all for a mostly open hand, not a precise shape.
			Name:       "open-hand",
			Gesture:    OpenHand,
			Confidence: 0.80,
			Match: func(s FingerStates) bool {
				return s.ExtendedCount() >= 4
			},
		},
		{
			Name:       "fist",
			Gesture:    Fist,
			Confidence: 0.85,
			Match: func(s FingerStates) bool {
				return s.ExtendedCount() == 0 && !s.ThumbUp
			},
		},
	}
}

// RuleEngine evaluates an ordered decision table.
type RuleEngine struct {
	rules []Rule
}

// NewRuleEngine creates a RuleEngine over rules. The slice is copied.
func NewRuleEngine(rules []Rule) *RuleEngine {
	r := make([]Rule, len(rules))
	copy(r, rules)
	return &RuleEngine{rules: r}
}

// Rules returns a copy of the engine's decision table.
func (e *RuleEngine) Rules() []Rule {
	r := make([]Rule, len(e.rules))
	copy(r, e.rules)
	return r
}

// Evaluate returns the Result of the first matching rule and that rule's
// name. When nothing matches it returns NoGesture and an empty name.
func (e *RuleEngine) Evaluate(states FingerStates) (Result, string) {
	for _, rule := range e.rules {
		if rule.Match(states) {
			return Result{Gesture: rule.Gesture, Confidence: rule.Confidence}, rule.Name
		}
	}
	return NoGesture, ""
}

// Classify returns the Result for states. It never fails.
func (e *RuleEngine) Classify(states FingerStates) Result {
	res, _ := e.Evaluate(states)
	return res
}

var defaultEngine = NewRuleEngine(DefaultRules())

// Classify runs the default decision table.
func Classify(states FingerStates) Result {
	return defaultEngine.Classify(states)
}
