// Package api provides the HTTP handlers of the gesture recognition service.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
)

type errorResponse struct {
	Error string `json:"error"`
}

// recognitionResponse is the body returned for every recognized frame.
// Action is null when the result does not clear the threshold. Handedness
// is omitted when no hand was found.
type recognitionResponse struct {
	Gesture       string  `json:"gesture"`
	Confidence    float64 `json:"confidence"`
	Action        *string `json:"action"`
	HandsDetected int     `json:"hands_detected"`
	Handedness    string  `json:"handedness,omitempty"`
	SessionID     string  `json:"session_id,omitempty"`
}

func toRecognitionResponse(ev app.Event) recognitionResponse {
	resp := recognitionResponse{
		Gesture:       string(ev.Gesture),
		Confidence:    ev.Confidence,
		HandsDetected: ev.HandsDetected,
		SessionID:     ev.SessionID,
	}
	if ev.HandsDetected > 0 {
		resp.Handedness = ev.Handedness
	}
	if ev.Action != "" {
		a := string(ev.Action)
		resp.Action = &a
	}
	return resp
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
