// Package config loads runtime configuration for the Tadasana posture
// monitoring system from a JSON file.
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ayusman/tadasana/internal/capture"
	"github.com/ayusman/tadasana/internal/detector"
)

// Config holds runtime configuration for capture, detection and the local
// API server. Fields may be loaded from a JSON file; anything missing falls
// back to defaults.
type Config struct {
	// Camera
	CameraIndex int `json:"camera_index"`
	IdleFPS     int `json:"idle_fps"`
	ActiveFPS   int `json:"active_fps"`

	// Activity gating
	ActivityThreshold float64 `json:"activity_threshold"`
	QuietAfterSeconds int     `json:"quiet_after_seconds"`

	// Pose estimation
	MinDetectionConfidence float64 `json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence"`
	ModelComplexity        int     `json:"model_complexity"`

	// Local API server
	ListenAddr string `json:"listen_addr"`

	// Paths. Empty values mean "derive from the data directory" for the
	// plugin dir and "no dashboard" for the static dir.
	PluginDir string `json:"plugin_dir"`
	StaticDir string `json:"static_dir"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		CameraIndex:            0,
		IdleFPS:                capture.DefaultFPS,
		ActiveFPS:              capture.ActiveFPS,
		ActivityThreshold:      1.0,
		QuietAfterSeconds:      30,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
		ModelComplexity:        1,
		ListenAddr:             "127.0.0.1:8731",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.CameraIndex < 0 {
		c.CameraIndex = 0
	}
	if c.IdleFPS <= 0 {
		c.IdleFPS = capture.DefaultFPS
	}
	if c.ActiveFPS < c.IdleFPS {
		c.ActiveFPS = c.IdleFPS
	}
	if c.ActivityThreshold <= 0 {
		c.ActivityThreshold = 1.0
	}
	if c.QuietAfterSeconds <= 0 {
		c.QuietAfterSeconds = 30
	}
	if c.MinDetectionConfidence <= 0 || c.MinDetectionConfidence > 1 {
		c.MinDetectionConfidence = 0.5
	}
	if c.MinTrackingConfidence <= 0 || c.MinTrackingConfidence > 1 {
		c.MinTrackingConfidence = 0.5
	}
	if c.ModelComplexity < 0 || c.ModelComplexity > 2 {
		c.ModelComplexity = 1
	}
	if c.ListenAddr == "" {
		c.ListenAddr = "127.0.0.1:8731"
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the
// file does not exist it returns DefaultConfig(). On JSON error it returns
// defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}

	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Detector returns the pose detector settings this configuration describes.
func (c *Config) Detector() detector.Config {
	return detector.Config{
		MinDetectionConf: c.MinDetectionConfidence,
		MinTrackingConf:  c.MinTrackingConfidence,
		ModelComplexity:  c.ModelComplexity,
	}
}

// QuietAfter returns how long the scene must stay still before the pipeline
// drops to the idle capture rate.
func (c *Config) QuietAfter() time.Duration {
	return time.Duration(c.QuietAfterSeconds) * time.Second
}
