package gesture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/detector"
)

// flatHand returns a hand whose landmarks all sit at the same point, so every
// finger reads as curled and the thumb as neither up nor extended.
func flatHand() *detector.HandLandmarks {
	h := &detector.HandLandmarks{Handedness: detector.HandRight, Score: 0.9}
	for i := range h.Points {
		h.Points[i] = detector.Point3D{X: 0.5, Y: 0.6, Z: 0}
	}
	return h
}

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("nil hand is invalid input", func(t *testing.T) {
		t.Parallel()
		_, err := Extract(nil)
		assert.True(t, errors.Is(err, detector.ErrInvalidInput))
	})

	t.Run("degenerate hand has nothing extended", func(t *testing.T) {
		t.Parallel()
		states, err := Extract(flatHand())
		require.NoError(t, err)
		assert.Equal(t, FingerStates{}, states)
		assert.Equal(t, 0, states.ExtendedCount())
	})

	t.Run("finger is extended when tip is above PIP", func(t *testing.T) {
		t.Parallel()
		h := flatHand()
		h.Points[detector.IndexTip].Y = 0.10
		h.Points[detector.IndexPIP].Y = 0.30
		h.Points[detector.RingTip].Y = 0.20
		h.Points[detector.RingPIP].Y = 0.40

		states, err := Extract(h)
		require.NoError(t, err)
		assert.True(t, states.IndexExtended)
		assert.False(t, states.MiddleExtended)
		assert.True(t, states.RingExtended)
		assert.False(t, states.PinkyExtended)
		assert.Equal(t, 2, states.ExtendedCount())
	})

	t.Run("thumb up needs tip above IP and wrist", func(t *testing.T) {
		t.Parallel()
		h := flatHand()
		h.Points[detector.ThumbTip].Y = 0.05
		h.Points[detector.ThumbIP].Y = 0.20
		h.Points[detector.Wrist].Y = 0.50
		states, _ := Extract(h)
		assert.True(t, states.ThumbUp)

		h.Points[detector.Wrist].Y = 0.01
		states, _ = Extract(h)
		assert.False(t, states.ThumbUp, "tip below the wrist is not up")
	})

	t.Run("thumb extended uses horizontal distance to index MCP", func(t *testing.T) {
		t.Parallel()
		h := flatHand()
		h.Points[detector.IndexMCP].X = 0.50

		h.Points[detector.ThumbTip].X = 0.65
		states, _ := Extract(h)
		assert.True(t, states.ThumbExtended)

		h.Points[detector.ThumbTip].X = 0.35
		states, _ = Extract(h)
		assert.True(t, states.ThumbExtended, "distance is absolute")

		h.Points[detector.ThumbTip].X = 0.55
		states, _ = Extract(h)
		assert.False(t, states.ThumbExtended)
	})

	t.Run("does not depend on other frames", func(t *testing.T) {
		t.Parallel()
		h := detector.PeaceLandmarks()
		first, _ := Extract(&h)
		second, _ := Extract(&h)
		assert.Equal(t, first, second)
	})
}

func TestExtract_RejectsWrongLandmarkCount(t *testing.T) {
	t.Parallel()

	points := make([]detector.Point3D, 20)
	_, err := detector.NewHandLandmarks(points, detector.HandRight, 0.9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, detector.ErrInvalidInput))
}

// allStates enumerates the full 6-boolean input space.
func allStates() []FingerStates {
	var out []FingerStates
	for mask := 0; mask < 64; mask++ {
		out = append(out, FingerStates{
			ThumbUp:        mask&1 != 0,
			ThumbExtended:  mask&2 != 0,
			IndexExtended:  mask&4 != 0,
			MiddleExtended: mask&8 != 0,
			RingExtended:   mask&16 != 0,
			PinkyExtended:  mask&32 != 0,
		})
	}
	return out
}

func TestClassify_Total(t *testing.T) {
	t.Parallel()

	for _, s := range allStates() {
		res := Classify(s)
		assert.True(t, res.Gesture.Valid(), "states %+v gave %q", s, res.Gesture)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 0.90)
		assert.GreaterOrEqual(t, s.ExtendedCount(), 0)
		assert.LessOrEqual(t, s.ExtendedCount(), 4)
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	engine := NewRuleEngine(rules)

	for _, s := range allStates() {
		res, name := engine.Evaluate(s)

		// The reported rule is the first one whose predicate holds.
		want := ""
		for _, r := range rules {
			if r.Match(s) {
				want = r.Name
				break
			}
		}
		assert.Equal(t, want, name, "states %+v", s)
		if name == "" {
			assert.Equal(t, NoGesture, res)
		}
	}
}

func TestClassify_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		states FingerStates
		want   Result
	}{
		{
			name:   "thumbs up",
			states: FingerStates{ThumbUp: true},
			want:   Result{ThumbsUp, 0.90},
		},
		{
			name:   "thumbs up ignores thumb extension",
			states: FingerStates{ThumbUp: true, ThumbExtended: true},
			want:   Result{ThumbsUp, 0.90},
		},
		{
			name:   "peace",
			states: FingerStates{IndexExtended: true, MiddleExtended: true},
			want:   Result{Peace, 0.85},
		},
		{
			name:   "peace with thumb up",
			states: FingerStates{ThumbUp: true, IndexExtended: true, MiddleExtended: true},
			want:   Result{Peace, 0.85},
		},
		{
			name:   "pointing",
			states: FingerStates{IndexExtended: true},
			want:   Result{Pointing, 0.88},
		},
		{
			name:   "open hand without thumb",
			states: FingerStates{IndexExtended: true, MiddleExtended: true, RingExtended: true, PinkyExtended: true},
			want:   Result{OpenHand, 0.80},
		},
		{
			name:   "fist",
			states: FingerStates{},
			want:   Result{Fist, 0.85},
		},
		{
			name:   "fist with thumb out",
			states: FingerStates{ThumbExtended: true},
			want:   Result{Fist, 0.85},
		},
		{
			name:   "three fingers is none",
			states: FingerStates{IndexExtended: true, MiddleExtended: true, RingExtended: true},
			want:   NoGesture,
		},
		{
			name:   "middle only is none",
			states: FingerStates{MiddleExtended: true},
			want:   NoGesture,
		},
		{
			name:   "pinky only with thumb up is none",
			states: FingerStates{ThumbUp: true, PinkyExtended: true},
			want:   NoGesture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.states))
		})
	}
}

func TestRuleEngine_CustomOrder(t *testing.T) {
	t.Parallel()

	rules := DefaultRules()
	// Swap pointing ahead of peace: a peace hand still matches peace because
	// pointing requires the middle finger to be curled.
	rules[1], rules[2] = rules[2], rules[1]
	engine := NewRuleEngine(rules)

	res, name := engine.Evaluate(FingerStates{IndexExtended: true, MiddleExtended: true})
	assert.Equal(t, Peace, res.Gesture)
	assert.Equal(t, "peace", name)

	// The engine copies its table.
	rules[0].Confidence = 0
	assert.Equal(t, 0.90, engine.Rules()[0].Confidence)
}

func TestClassify_Scenarios(t *testing.T) {
	t.Parallel()

	t.Run("index tip above PIP is pointing", func(t *testing.T) {
		h := flatHand()
		h.Points[detector.IndexTip].Y = 0.10
		h.Points[detector.IndexPIP].Y = 0.30

		res, err := NewSession().Process(h)
		require.NoError(t, err)
		assert.Equal(t, Result{Pointing, 0.88}, res)
	})

	t.Run("all tips above PIPs is open hand", func(t *testing.T) {
		h := flatHand()
		for _, f := range [][2]int{
			{detector.IndexTip, detector.IndexPIP},
			{detector.MiddleTip, detector.MiddlePIP},
			{detector.RingTip, detector.RingPIP},
			{detector.PinkyTip, detector.PinkyPIP},
		} {
			h.Points[f[0]].Y = 0.2
			h.Points[f[1]].Y = 0.4
		}

		states, err := Extract(h)
		require.NoError(t, err)
		assert.False(t, states.ThumbExtended)
		assert.Equal(t, Result{OpenHand, 0.80}, Classify(states))
	})

	t.Run("raised thumb over closed fingers is thumbs up", func(t *testing.T) {
		h := flatHand()
		h.Points[detector.ThumbTip].Y = 0.05
		h.Points[detector.ThumbIP].Y = 0.20
		h.Points[detector.Wrist].Y = 0.50

		states, err := Extract(h)
		require.NoError(t, err)
		assert.Equal(t, Result{ThumbsUp, 0.90}, Classify(states))
	})

	t.Run("fixtures classify as their gesture", func(t *testing.T) {
		fixtures := map[Gesture]detector.HandLandmarks{
			ThumbsUp: detector.ThumbsUpLandmarks(),
			Peace:    detector.PeaceLandmarks(),
			Pointing: detector.PointingLandmarks(),
			OpenHand: detector.OpenPalmLandmarks(),
			Fist:     detector.FistLandmarks(),
		}
		for want, hand := range fixtures {
			states, err := Extract(&hand)
			require.NoError(t, err)
			assert.Equal(t, want, Classify(states).Gesture, "fixture %s", want)
		}
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, g := range All() {
		parsed, err := Parse(g.String())
		require.NoError(t, err)
		assert.Equal(t, g, parsed)
	}

	_, err := Parse("wave")
	assert.Error(t, err)
}
