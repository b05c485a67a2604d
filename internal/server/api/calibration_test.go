package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/posture"
)

// memCalibrationStore keeps the offset in memory.
type memCalibrationStore struct {
	value *float64
}

func (m *memCalibrationStore) Load() (*float64, error) { return m.value, nil }

func (m *memCalibrationStore) Save(v float64) error {
	m.value = &v
	return nil
}

func (m *memCalibrationStore) Clear() error {
	m.value = nil
	return nil
}

func newTestEngine() *posture.Engine {
	return posture.NewEngine(&memCalibrationStore{})
}

func TestCalibrationHandler_Get_Uncalibrated(t *testing.T) {
	handler := NewCalibrationHandler(newTestEngine())

	req := httptest.NewRequest(http.MethodGet, "/api/calibration", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response calibrationResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Calibrated {
		t.Error("expected calibrated = false for a fresh engine")
	}
	if response.Offset != nil {
		t.Errorf("expected null offset, got %v", *response.Offset)
	}
}

func TestCalibrationHandler_Post_NoFrame(t *testing.T) {
	handler := NewCalibrationHandler(newTestEngine())

	req := httptest.NewRequest(http.MethodPost, "/api/calibration", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d before any frame, got %d", http.StatusConflict, rec.Code)
	}
}

func TestCalibrationHandler_Post_LandmarksMissing(t *testing.T) {
	engine := newTestEngine()

	// A frame with shoulders but no head landmarks cannot provide a neck
	// flexion baseline.
	pose := &detector.PoseLandmarks{}
	pose.Points[detector.LeftShoulder] = &detector.Landmark{X: 0.4, Y: 0.5, Visibility: 1}
	pose.Points[detector.RightShoulder] = &detector.Landmark{X: 0.6, Y: 0.5, Visibility: 1}
	engine.Evaluate(pose)

	handler := NewCalibrationHandler(engine)

	req := httptest.NewRequest(http.MethodPost, "/api/calibration", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d without head landmarks, got %d", http.StatusConflict, rec.Code)
	}
}

func TestCalibrationHandler_CaptureAndClear(t *testing.T) {
	engine := newTestEngine()
	engine.Evaluate(detector.SlouchedPose())

	handler := NewCalibrationHandler(engine)

	// Capture the current pose as the baseline.
	req := httptest.NewRequest(http.MethodPost, "/api/calibration", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var captured calibrationResponse
	if err := json.NewDecoder(rec.Body).Decode(&captured); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !captured.Calibrated {
		t.Error("expected calibrated = true after capture")
	}
	if captured.Offset == nil {
		t.Fatal("expected an offset after capture")
	}
	if *captured.Offset <= 0 {
		t.Errorf("offset = %v for a slouched pose, want > 0", *captured.Offset)
	}

	// GET reports the same offset.
	req = httptest.NewRequest(http.MethodGet, "/api/calibration", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var read calibrationResponse
	if err := json.NewDecoder(rec.Body).Decode(&read); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if read.Offset == nil || *read.Offset != *captured.Offset {
		t.Errorf("GET offset = %v, want %v", read.Offset, *captured.Offset)
	}

	// DELETE clears it.
	req = httptest.NewRequest(http.MethodDelete, "/api/calibration", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/calibration", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var cleared calibrationResponse
	if err := json.NewDecoder(rec.Body).Decode(&cleared); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if cleared.Calibrated || cleared.Offset != nil {
		t.Errorf("expected uncalibrated state after DELETE, got %+v", cleared)
	}
}

func TestCalibrationHandler_MethodNotAllowed(t *testing.T) {
	handler := NewCalibrationHandler(newTestEngine())

	req := httptest.NewRequest(http.MethodPatch, "/api/calibration", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
