package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/session"
)

// SessionHandler manages remote recognition streams and accepts landmark
// observations for them.
type SessionHandler struct {
	app *app.App
}

// NewSessionHandler creates a SessionHandler backed by a.
func NewSessionHandler(a *app.App) *SessionHandler {
	return &SessionHandler{app: a}
}

type sessionResponse struct {
	ID       string `json:"id"`
	Created  string `json:"created"`
	LastSeen string `json:"last_seen"`
}

type landmarksRequest struct {
	Landmarks  [][]float64 `json:"landmarks"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

// ServeHTTP routes /api/sessions, /api/sessions/{id} and
// /api/sessions/{id}/landmarks.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.create(w, r)
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	switch {
	case rest == "landmarks" && r.Method == http.MethodPost:
		h.landmarks(w, r, id)
	case rest == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case rest == "" && r.Method == http.MethodDelete:
		h.delete(w, r, id)
	case rest == "" || rest == "landmarks":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func toSessionResponse(info session.Info) sessionResponse {
	return sessionResponse{
		ID:       info.ID,
		Created:  info.Created.Format(time.RFC3339),
		LastSeen: info.LastSeen.Format(time.RFC3339),
	}
}

// create handles POST /api/sessions.
func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	id := h.app.Sessions().Create()
	info, err := h.app.Sessions().Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(info))
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	info, err := h.app.Sessions().Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(info))
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.app.Sessions().Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// landmarks handles POST /api/sessions/{id}/landmarks. An observation that
// is not a complete 21-point hand is answered as a frame without hands.
func (h *SessionHandler) landmarks(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.app.Sessions().Get(id); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req landmarksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var hands []detector.HandLandmarks
	hand, err := parseHand(req)
	if err == nil {
		hands = append(hands, hand)
	}

	ev, err := h.app.Recognize(id, hands)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Recognition failed")
		return
	}

	writeJSON(w, http.StatusOK, toRecognitionResponse(ev))
}

// parseHand converts [x, y, z] triples into a hand observation. A missing z
// is taken as 0.
func parseHand(req landmarksRequest) (detector.HandLandmarks, error) {
	points := make([]detector.Point3D, len(req.Landmarks))
	for i, p := range req.Landmarks {
		switch len(p) {
		case 2:
			points[i] = detector.Point3D{X: p[0], Y: p[1]}
		case 3:
			points[i] = detector.Point3D{X: p[0], Y: p[1], Z: p[2]}
		default:
			return detector.HandLandmarks{}, detector.ErrInvalidInput
		}
	}
	return detector.NewHandLandmarks(points, req.Handedness, req.Score)
}
