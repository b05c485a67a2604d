package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/tadasana/internal/capture"
)

// streamInterval paces the MJPEG stream at roughly 15 fps.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves MJPEG frames from the camera so the dashboard can
// show what the monitor sees.
type StreamHandler struct {
	camera capture.Camera
}

// NewStreamHandler creates a new StreamHandler with the given camera.
func NewStreamHandler(camera capture.Camera) *StreamHandler {
	return &StreamHandler{camera: camera}
}

// ServeHTTP streams multipart JPEG frames until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)
	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		// Skip the tick on a read or encode failure and try again on the
		// next one.
		if err := h.writeFrame(w); err != nil {
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// writeFrame grabs one camera frame and writes it as a multipart JPEG part.
func (h *StreamHandler) writeFrame(w http.ResponseWriter) error {
	frame, err := h.camera.ReadFrame()
	if err != nil {
		return err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	frame.Close()
	if err != nil {
		return err
	}
	defer buf.Close()

	data := buf.GetBytes()
	fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data))
	w.Write(data)
	fmt.Fprint(w, "\r\n")
	return nil
}
