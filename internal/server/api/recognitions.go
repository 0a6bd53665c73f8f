package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

// maxRecognitionLimit caps the page size of the recognition log.
const maxRecognitionLimit = 500

// RecognitionHandler serves the recognition log and its statistics.
type RecognitionHandler struct {
	store *store.Store
}

// NewRecognitionHandler creates a RecognitionHandler with the given store.
func NewRecognitionHandler(s *store.Store) *RecognitionHandler {
	return &RecognitionHandler{store: s}
}

type recognitionEntry struct {
	ID         string  `json:"id"`
	SessionID  string  `json:"session_id,omitempty"`
	Gesture    string  `json:"gesture"`
	Confidence float64 `json:"confidence"`
	Action     string  `json:"action"`
	Handedness string  `json:"handedness"`
	CreatedAt  string  `json:"created_at"`
}

type listRecognitionsResponse struct {
	Recognitions []recognitionEntry `json:"recognitions"`
}

type statsResponse struct {
	Stats []store.GestureStats `json:"stats"`
}

// ServeHTTP routes GET /api/recognitions and GET /api/recognitions/stats.
func (h *RecognitionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/recognitions")
	switch strings.Trim(path, "/") {
	case "":
		h.list(w, r)
	case "stats":
		h.stats(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *RecognitionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRecognitionLimit)
	}

	recs, err := h.store.Recognitions().ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recognitions")
		return
	}

	response := listRecognitionsResponse{
		Recognitions: make([]recognitionEntry, 0, len(recs)),
	}
	for _, rec := range recs {
		response.Recognitions = append(response.Recognitions, recognitionEntry{
			ID:         rec.ID,
			SessionID:  rec.SessionID,
			Gesture:    rec.Gesture,
			Confidence: rec.Confidence,
			Action:     rec.Action,
			Handedness: rec.Handedness,
			CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *RecognitionHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Recognitions().Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	if stats == nil {
		stats = []store.GestureStats{}
	}
	writeJSON(w, http.StatusOK, statsResponse{Stats: stats})
}
