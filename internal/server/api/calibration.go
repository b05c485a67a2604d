package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/tadasana/internal/posture"
)

// CalibrationHandler manages the persisted upright baseline for neck flexion.
type CalibrationHandler struct {
	engine *posture.Engine
}

// NewCalibrationHandler creates a new CalibrationHandler backed by the given engine.
func NewCalibrationHandler(engine *posture.Engine) *CalibrationHandler {
	return &CalibrationHandler{engine: engine}
}

type calibrationResponse struct {
	Calibrated bool     `json:"calibrated"`
	Offset     *float64 `json:"offset"`
}

// ServeHTTP routes calibration requests by method.
func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.capture(w, r)
	case http.MethodDelete:
		h.clear(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// get handles GET /api/calibration and reports the stored offset.
func (h *CalibrationHandler) get(w http.ResponseWriter, r *http.Request) {
	offset := h.engine.Calibration()
	writeJSON(w, http.StatusOK, calibrationResponse{
		Calibrated: offset != nil,
		Offset:     offset,
	})
}

// capture handles POST /api/calibration and records the current pose as upright.
func (h *CalibrationHandler) capture(w http.ResponseWriter, r *http.Request) {
	offset, err := h.engine.Calibrate()
	if err != nil {
		switch {
		case errors.Is(err, posture.ErrNoFrame):
			writeError(w, http.StatusConflict, "No frame available to calibrate from")
		case errors.Is(err, posture.ErrMetricUnavailable):
			writeError(w, http.StatusConflict, "Neck landmarks not visible in the current frame")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to save calibration")
		}
		return
	}

	writeJSON(w, http.StatusOK, calibrationResponse{
		Calibrated: true,
		Offset:     &offset,
	})
}

// clear handles DELETE /api/calibration and removes the stored offset.
func (h *CalibrationHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ClearCalibration(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear calibration")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
