// Package testdata embeds recorded hand landmarks and recognition scenarios
// shared by integration and end-to-end tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

//go:embed hands/*.json scenarios/*.json
var fixturesFS embed.FS

// Hand is a landmark observation in the shape accepted by
// POST /api/sessions/{id}/landmarks.
type Hand struct {
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
	Landmarks  [][]float64 `json:"landmarks"`
}

// Step is one frame of a Scenario and the result expected for it. An empty
// Hand means a frame without hands; an empty Action means none is expected.
type Step struct {
	Hand       string  `json:"hand"`
	Gesture    string  `json:"gesture"`
	Confidence float64 `json:"confidence"`
	Action     string  `json:"action"`
}

// Scenario is a sequence of frames fed to one recognition stream.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
}

// HandJSON returns the raw fixture for name.
func HandJSON(name string) ([]byte, error) {
	data, err := fixturesFS.ReadFile("hands/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load hand %s: %w", name, err)
	}
	return data, nil
}

// LoadHand loads a hand fixture by name.
func LoadHand(name string) (*Hand, error) {
	data, err := HandJSON(name)
	if err != nil {
		return nil, err
	}

	var h Hand
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode hand %s: %w", name, err)
	}
	return &h, nil
}

// ToLandmarks converts the fixture to detector landmarks. It fails with
// detector.ErrInvalidInput for fixtures without exactly 21 points.
func (h *Hand) ToLandmarks() (detector.HandLandmarks, error) {
	points := make([]detector.Point3D, len(h.Landmarks))
	for i, p := range h.Landmarks {
		if len(p) != 3 {
			return detector.HandLandmarks{}, fmt.Errorf("%w: point %d has %d values", detector.ErrInvalidInput, i, len(p))
		}
		points[i] = detector.Point3D{X: p[0], Y: p[1], Z: p[2]}
	}
	return detector.NewHandLandmarks(points, h.Handedness, h.Score)
}

// LoadScenario loads a scenario by name.
func LoadScenario(name string) (*Scenario, error) {
	data, err := fixturesFS.ReadFile("scenarios/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", name, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", name, err)
	}
	return &s, nil
}

// Scenarios returns the names of all embedded scenarios, sorted.
func Scenarios() ([]string, error) {
	entries, err := fixturesFS.ReadDir("scenarios")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names, nil
}
