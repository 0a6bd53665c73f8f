package server

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
)

// streamInterval paces the preview at roughly 15 FPS.
const streamInterval = 66 * time.Millisecond

var overlayColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// StreamHandler serves the latest pipeline frame as MJPEG with the last
// recognized gesture drawn on it.
type StreamHandler struct {
	app *app.App
}

// NewStreamHandler creates a new StreamHandler reading frames from a.
func NewStreamHandler(a *app.App) *StreamHandler {
	return &StreamHandler{app: a}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame, ok := h.app.Frame()
		if !ok {
			continue
		}

		if ev, ok := h.app.LastEvent(); ok {
			drawOverlay(frame, ev)
		}

		buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
		frame.Close()
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		_, err = w.Write(buf.GetBytes())
		buf.Close()
		if err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

// drawOverlay writes the gesture, confidence and action of ev onto frame.
func drawOverlay(frame *gocv.Mat, ev app.Event) {
	text := "no hand"
	if ev.Gesture != gesture.None {
		text = fmt.Sprintf("%s %.2f", ev.Gesture, ev.Confidence)
		if ev.Action != "" {
			text += " -> " + string(ev.Action)
		}
	}
	gocv.PutText(frame, text, image.Pt(10, 30), gocv.FontHersheySimplex, 0.8, overlayColor, 2)
}
