// Package main provides a media playback plugin.
// It pauses and resumes playback by tapping the media keys via robotgo.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-vgo/robotgo"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action     string          `json:"action"`
	Gesture    string          `json:"gesture"`
	Confidence float64         `json:"confidence"`
	Handedness string          `json:"handedness,omitempty"`
	Config     json.RawMessage `json:"config,omitempty"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Options are the per-binding settings accepted in Request.Config.
type Options struct {
	// Key replaces the media key tapped for the action, for players that
	// only react to play/pause or to the space bar.
	Key string `json:"key"`
}

// defaultKeys maps action names to robotgo key names.
var defaultKeys = map[string]string{
	"pause":  "audio_pause",
	"resume": "audio_play",
}

// allowedKeys limits Options.Key to keys that control playback.
var allowedKeys = map[string]bool{
	"audio_play":  true,
	"audio_pause": true,
	"audio_stop":  true,
	"space":       true,
}

type tapper func(key string) error

func tapKey(key string) error {
	return robotgo.KeyTap(key)
}

func main() {
	json.NewEncoder(os.Stdout).Encode(run(os.Stdin, tapKey))
}

// run reads one request from r and taps the matching key with tap.
func run(r io.Reader, tap tapper) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return errorResponse(fmt.Sprintf("failed to decode request: %v", err))
	}

	key, ok := defaultKeys[req.Action]
	if !ok {
		return errorResponse(fmt.Sprintf("unknown action: %s", req.Action))
	}

	if len(req.Config) > 0 {
		var opts Options
		if err := json.Unmarshal(req.Config, &opts); err != nil {
			return errorResponse(fmt.Sprintf("invalid config: %v", err))
		}
		if opts.Key != "" {
			if !allowedKeys[opts.Key] {
				return errorResponse(fmt.Sprintf("key %q is not a playback key", opts.Key))
			}
			key = opts.Key
		}
	}

	if err := tap(key); err != nil {
		return errorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
	}

	data, _ := json.Marshal(map[string]string{"key": key})
	return Response{Success: true, Data: data}
}

func errorResponse(errMsg string) Response {
	return Response{
		Success: false,
		Error:   errMsg,
	}
}
