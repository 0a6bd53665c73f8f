// Package main provides a pointer plugin.
// It scrolls and clicks with the system mouse via robotgo.
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
	// Amount is the number of scroll steps.
	Amount int `json:"amount"`
	// Button is "left", "right" or "center".
	Button string `json:"button"`
	Double bool   `json:"double"`
}

func defaultOptions() Options {
	return Options{Amount: 5, Button: "left"}
}

// mouse is the part of the system pointer the plugin drives.
type mouse interface {
	Scroll(amount int, direction string)
	Click(button string, double bool)
}

type robotMouse struct{}

func (robotMouse) Scroll(amount int, direction string) {
	robotgo.ScrollDir(amount, direction)
}

func (robotMouse) Click(button string, double bool) {
	robotgo.Click(button, double)
}

// actionHandler defines a function type for handling specific actions.
type actionHandler func(m mouse, opts Options) error

// actionHandlers maps action names to their handler functions.
var actionHandlers = map[string]actionHandler{
	"scroll_down": func(m mouse, opts Options) error {
		m.Scroll(opts.Amount, "down")
		return nil
	},
	"scroll_up": func(m mouse, opts Options) error {
		m.Scroll(opts.Amount, "up")
		return nil
	},
	"click": func(m mouse, opts Options) error {
		switch opts.Button {
		case "left", "right", "center":
		default:
			return fmt.Errorf("unknown button %q", opts.Button)
		}
		m.Click(opts.Button, opts.Double)
		return nil
	},
}

func main() {
	json.NewEncoder(os.Stdout).Encode(run(os.Stdin, robotMouse{}))
}

// run reads one request from r and performs it with m.
func run(r io.Reader, m mouse) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return errorResponse(fmt.Sprintf("failed to decode request: %v", err))
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		return errorResponse(fmt.Sprintf("unknown action: %s", req.Action))
	}

	opts := defaultOptions()
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &opts); err != nil {
			return errorResponse(fmt.Sprintf("invalid config: %v", err))
		}
	}
	if opts.Amount <= 0 {
		opts.Amount = defaultOptions().Amount
	}

	if err := handler(m, opts); err != nil {
		return errorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
	}
	return Response{Success: true}
}

func errorResponse(errMsg string) Response {
	return Response{
		Success: false,
		Error:   errMsg,
	}
}
