package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/session"
)

// Uploaded frames larger than this are scaled down before detection.
const (
	maxFrameWidth  = 1280
	maxFrameHeight = 720
)

// maxFrameBody caps the request body of a frame upload.
const maxFrameBody = 10 << 20

// DetectHandler recognizes gestures in uploaded camera frames.
type DetectHandler struct {
	app *app.App
}

// NewDetectHandler creates a DetectHandler backed by a.
func NewDetectHandler(a *app.App) *DetectHandler {
	return &DetectHandler{app: a}
}

type detectRequest struct {
	Frame     string `json:"frame"`
	SessionID string `json:"session_id"`
}

// ServeHTTP handles POST /api/accessibility/detect-gesture.
func (h *DetectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req detectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFrameBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Frame == "" {
		writeError(w, http.StatusBadRequest, "No frame data")
		return
	}

	if req.SessionID != "" {
		if _, err := h.app.Sessions().Get(req.SessionID); err != nil {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
	}

	frame, err := decodeFrame(req.Frame)
	if err != nil {
		log.Printf("Frame decode error: %v", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Decode failed: %v", err))
		return
	}
	defer frame.Close()

	if h.app.Detector() == nil {
		writeError(w, http.StatusInternalServerError, "Detector not initialized")
		return
	}

	// Frames without a session are classified on their own so they never
	// mix into the camera stream's history.
	var ev app.Event
	if req.SessionID == "" {
		ev, err = h.app.RecognizeFrameOnce(&frame)
	} else {
		ev, err = h.app.RecognizeFrame(req.SessionID, &frame)
	}
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoDetector):
			writeError(w, http.StatusInternalServerError, "Detector not initialized")
		case errors.Is(err, session.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "Session not found")
		default:
			log.Printf("Gesture detection failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Detection failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, toRecognitionResponse(ev))
}

// decodeFrame turns a base64 image, optionally wrapped in a data URL, into a
// BGR Mat. EXIF orientation is applied and oversized frames are scaled down.
// The caller must close the returned Mat.
func decodeFrame(data string) (gocv.Mat, error) {
	if i := strings.IndexByte(data, ','); i >= 0 {
		data = data[i+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("invalid base64: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("invalid image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > maxFrameWidth || b.Dy() > maxFrameHeight {
		img = imaging.Fit(img, maxFrameWidth, maxFrameHeight, imaging.Lanczos)
	}

	return gocv.ImageToMatRGB(img)
}
