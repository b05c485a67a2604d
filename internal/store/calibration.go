package store

import (
	"errors"
	"fmt"
	"strconv"
)

// calibrationKey is the settings key the neck flexion offset lives under.
const calibrationKey = "calibration_offset"

// CalibrationRepository persists the posture calibration offset in the
// settings table. It satisfies the posture engine's calibration store
// contract.
type CalibrationRepository struct {
	settings *SettingsRepository
}

// Calibration returns the calibration repository for this store.
func (s *Store) Calibration() *CalibrationRepository {
	return &CalibrationRepository{settings: s.Settings()}
}

// Load returns the stored offset in degrees, or nil if none has been saved.
func (r *CalibrationRepository) Load() (*float64, error) {
	raw, err := r.settings.Get(calibrationKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("parse calibration %q: %w", raw, err)
	}

	return &value, nil
}

// Save stores the offset in degrees.
func (r *CalibrationRepository) Save(value float64) error {
	return r.settings.Set(calibrationKey, strconv.FormatFloat(value, 'g', -1, 64))
}

// Clear removes the stored offset. Clearing when nothing is stored is not an
// error.
func (r *CalibrationRepository) Clear() error {
	return r.settings.Delete(calibrationKey)
}
