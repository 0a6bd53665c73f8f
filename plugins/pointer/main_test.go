package main

import (
	"strings"
	"testing"
)

type fakeMouse struct {
	scrolls []string
	amount  int
	clicks  []string
	double  bool
}

func (m *fakeMouse) Scroll(amount int, direction string) {
	m.amount = amount
	m.scrolls = append(m.scrolls, direction)
}

func (m *fakeMouse) Click(button string, double bool) {
	m.clicks = append(m.clicks, button)
	m.double = double
}

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantSuccess bool
		check       func(t *testing.T, m *fakeMouse)
	}{
		{
			name:        "scroll down uses default amount",
			input:       `{"action":"scroll_down","gesture":"thumbs_up","confidence":0.9}`,
			wantSuccess: true,
			check: func(t *testing.T, m *fakeMouse) {
				if len(m.scrolls) != 1 || m.scrolls[0] != "down" || m.amount != 5 {
					t.Errorf("unexpected scroll %v amount %d", m.scrolls, m.amount)
				}
			},
		},
		{
			name:        "scroll up with configured amount",
			input:       `{"action":"scroll_up","config":{"amount":12}}`,
			wantSuccess: true,
			check: func(t *testing.T, m *fakeMouse) {
				if m.scrolls[0] != "up" || m.amount != 12 {
					t.Errorf("unexpected scroll %v amount %d", m.scrolls, m.amount)
				}
			},
		},
		{
			name:        "double right click",
			input:       `{"action":"click","config":{"button":"right","double":true}}`,
			wantSuccess: true,
			check: func(t *testing.T, m *fakeMouse) {
				if len(m.clicks) != 1 || m.clicks[0] != "right" || !m.double {
					t.Errorf("unexpected click %v double=%v", m.clicks, m.double)
				}
			},
		},
		{name: "unknown button", input: `{"action":"click","config":{"button":"side"}}`},
		{name: "unknown action", input: `{"action":"teleport"}`},
		{name: "invalid config", input: `{"action":"click","config":"left"}`},
		{name: "invalid request", input: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMouse{}
			resp := run(strings.NewReader(tt.input), m)

			if resp.Success != tt.wantSuccess {
				t.Fatalf("Success = %v, want %v (error %q)", resp.Success, tt.wantSuccess, resp.Error)
			}
			if !tt.wantSuccess {
				if resp.Error == "" {
					t.Error("expected an error message")
				}
				if len(m.scrolls)+len(m.clicks) != 0 {
					t.Error("expected no pointer input on failure")
				}
				return
			}
			tt.check(t, m)
		})
	}
}
