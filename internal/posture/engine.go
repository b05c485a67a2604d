// Package posture computes sitting posture metrics from body pose landmarks
// for the Tadasana posture monitoring system.
package posture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/tadasana/internal/detector"
)

var (
	// ErrNoFrame is returned when calibration is requested before any pose
	// has been evaluated.
	ErrNoFrame = errors.New("no pose frame evaluated yet")

	// ErrMetricUnavailable is returned when the landmarks a metric needs
	// were not visible in the stored frame.
	ErrMetricUnavailable = errors.New("required landmarks not visible")
)

// CalibrationStore persists the neck flexion calibration offset across runs.
// Load returns nil when no offset has ever been saved.
type CalibrationStore interface {
	Load() (*float64, error)
	Save(value float64) error
	Clear() error
}

// Engine evaluates posture metrics frame by frame and carries the calibration
// offset between frames. Safe for concurrent use: reads of the calibration
// state and frame evaluation may run alongside a calibration action.
type Engine struct {
	mu          sync.RWMutex
	store       CalibrationStore
	calibration *float64
	lastPose    *detector.PoseLandmarks
}

// NewEngine creates an engine backed by the given calibration store. The
// stored offset is loaded immediately; a store that cannot be read degrades
// to running uncalibrated rather than failing.
func NewEngine(store CalibrationStore) *Engine {
	e := &Engine{store: store}

	if store != nil {
		if value, err := store.Load(); err == nil {
			e.calibration = value
		}
	}

	return e
}

// Evaluate computes the metric snapshot for one pose frame and remembers the
// frame for a later calibration action. A nil pose (nobody in frame) yields
// an empty snapshot and leaves the remembered frame untouched.
func (e *Engine) Evaluate(pose *detector.PoseLandmarks) Snapshot {
	e.mu.Lock()
	if pose != nil {
		e.lastPose = pose
	}
	calibration := e.calibration
	e.mu.Unlock()

	return Compute(pose, calibration)
}

// Calibrate captures the current raw neck flexion angle as the new
// calibration offset and persists it. The raw angle is recomputed from the
// most recently evaluated frame, not derived from a calibrated reading.
// The offset stays applied for the rest of the run even when persisting it
// fails; the error reports the failed save.
func (e *Engine) Calibrate() (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lastPose == nil {
		return 0, ErrNoFrame
	}

	angle, ok := rawNeckFlexion(ExtractBody(e.lastPose))
	if !ok {
		return 0, ErrMetricUnavailable
	}

	e.calibration = &angle

	if e.store != nil {
		if err := e.store.Save(angle); err != nil {
			return angle, fmt.Errorf("persist calibration: %w", err)
		}
	}

	return angle, nil
}

// Calibration returns the current calibration offset, or nil if none is set.
func (e *Engine) Calibration() *float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.calibration == nil {
		return nil
	}

	value := *e.calibration
	return &value
}

// ClearCalibration removes the calibration offset from the engine and the
// backing store.
func (e *Engine) ClearCalibration() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calibration = nil

	if e.store != nil {
		if err := e.store.Clear(); err != nil {
			return fmt.Errorf("clear calibration: %w", err)
		}
	}

	return nil
}
