package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/posture"
)

var _ http.Handler = (*Server)(nil)

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("reports ok with uptime", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/api/health")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}

		var health struct {
			Status string `json:"status"`
			Uptime string `json:"uptime"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
			t.Fatalf("decoding health response: %v", err)
		}
		if health.Status != "ok" {
			t.Errorf("status field = %q, want ok", health.Status)
		}
		if health.Uptime == "" {
			t.Error("uptime field is empty")
		}
	})

	t.Run("rejects non-GET methods", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			rec := doRequest(s, method, "/api/health")
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s status = %d, want %d", method, rec.Code, http.StatusMethodNotAllowed)
			}
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	rec := doRequest(New(Config{}), http.MethodGet, "/api/nonexistent")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServer_OptionalRoutes(t *testing.T) {
	// Without a store or app, the resource endpoints are not registered.
	s := New(Config{})

	for _, path := range []string{"/api/actions", "/api/posture", "/api/calibration", "/api/stream", "/api/landmarks"} {
		rec := doRequest(s, http.MethodGet, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want %d without collaborators", path, rec.Code, http.StatusNotFound)
		}
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	page := "<html><body>dashboard</body></html>"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(Config{StaticDir: dir})

	t.Run("serves the dashboard at the root", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if rec.Body.String() != page {
			t.Errorf("body = %q, want %q", rec.Body.String(), page)
		}
	})

	t.Run("404s for files that do not exist", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/missing.html")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestPostureStream_Broadcast(t *testing.T) {
	stream := NewPostureStream()
	ts := httptest.NewServer(stream)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// The handler registers the client after the handshake completes.
	deadline := time.Now().Add(2 * time.Second)
	for stream.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if stream.ClientCount() != 1 {
		t.Fatal("client never registered with the stream")
	}

	snapshot := posture.Snapshot{
		NeckFlexion: &posture.Metric{Angle: 4.2, Status: posture.StatusGood, Confidence: 0.95},
	}
	stream.Publish(detector.UprightPose(), snapshot)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading broadcast message: %v", err)
	}

	var msg struct {
		Pose      *detector.PoseLandmarks `json:"pose"`
		Snapshot  posture.Snapshot        `json:"snapshot"`
		Timestamp int64                   `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decoding broadcast message: %v", err)
	}

	if msg.Pose == nil || msg.Pose.At(detector.Nose) == nil {
		t.Error("broadcast message missing pose landmarks")
	}
	if msg.Snapshot.NeckFlexion == nil || msg.Snapshot.NeckFlexion.Angle != 4.2 {
		t.Errorf("broadcast snapshot = %+v, want neck flexion angle 4.2", msg.Snapshot)
	}
	if msg.Timestamp == 0 {
		t.Error("broadcast message missing timestamp")
	}
}
