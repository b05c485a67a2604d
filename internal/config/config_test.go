package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.CameraIndex != 0 {
			t.Errorf("expected camera index 0, got %d", cfg.CameraIndex)
		}
		if cfg.IdleFPS != 5 || cfg.ActiveFPS != 15 {
			t.Errorf("expected FPS defaults 5/15, got %d/%d", cfg.IdleFPS, cfg.ActiveFPS)
		}
		if cfg.ListenAddr != "127.0.0.1:8731" {
			t.Errorf("expected default listen address, got %s", cfg.ListenAddr)
		}
	})

	t.Run("reads values from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		data := `{"camera_index": 2, "active_fps": 30, "listen_addr": "127.0.0.1:9000", "plugin_dir": "/opt/tadasana/plugins"}`
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.CameraIndex != 2 {
			t.Errorf("expected camera index 2, got %d", cfg.CameraIndex)
		}
		if cfg.ActiveFPS != 30 {
			t.Errorf("expected active FPS 30, got %d", cfg.ActiveFPS)
		}
		if cfg.ListenAddr != "127.0.0.1:9000" {
			t.Errorf("expected listen address from file, got %s", cfg.ListenAddr)
		}
		if cfg.PluginDir != "/opt/tadasana/plugins" {
			t.Errorf("expected plugin dir from file, got %s", cfg.PluginDir)
		}
		// Unspecified fields keep their defaults
		if cfg.IdleFPS != 5 {
			t.Errorf("expected idle FPS default 5, got %d", cfg.IdleFPS)
		}
		if cfg.StaticDir != "" {
			t.Errorf("expected empty static dir default, got %s", cfg.StaticDir)
		}
	})

	t.Run("malformed file returns defaults with error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)

		if err == nil {
			t.Error("expected parse error")
		}
		if cfg == nil || cfg.CameraIndex != 0 || cfg.IdleFPS != 5 {
			t.Errorf("expected defaults on parse error, got %+v", cfg)
		}
	})
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		CameraIndex:            -1,
		IdleFPS:                0,
		ActiveFPS:              2,
		ActivityThreshold:      -0.5,
		QuietAfterSeconds:      0,
		MinDetectionConfidence: 1.5,
		MinTrackingConfidence:  0,
		ModelComplexity:        7,
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CameraIndex != 0 {
		t.Errorf("expected camera index clamped to 0, got %d", cfg.CameraIndex)
	}
	if cfg.IdleFPS != 5 {
		t.Errorf("expected idle FPS 5, got %d", cfg.IdleFPS)
	}
	if cfg.ActiveFPS != 5 {
		t.Errorf("expected active FPS raised to idle FPS, got %d", cfg.ActiveFPS)
	}
	if cfg.ActivityThreshold != 1.0 {
		t.Errorf("expected activity threshold 1.0, got %f", cfg.ActivityThreshold)
	}
	if cfg.QuietAfterSeconds != 30 {
		t.Errorf("expected quiet period 30s, got %d", cfg.QuietAfterSeconds)
	}
	if cfg.MinDetectionConfidence != 0.5 || cfg.MinTrackingConfidence != 0.5 {
		t.Errorf("expected confidences 0.5, got %f/%f", cfg.MinDetectionConfidence, cfg.MinTrackingConfidence)
	}
	if cfg.ModelComplexity != 1 {
		t.Errorf("expected model complexity 1, got %d", cfg.ModelComplexity)
	}
	if cfg.ListenAddr != "127.0.0.1:8731" {
		t.Errorf("expected default listen address, got %s", cfg.ListenAddr)
	}
}

func TestSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.CameraIndex = 1
	cfg.QuietAfterSeconds = 45

	if err := cfg.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loaded.CameraIndex != 1 {
		t.Errorf("expected camera index 1, got %d", loaded.CameraIndex)
	}
	if loaded.QuietAfter() != 45*time.Second {
		t.Errorf("expected quiet period 45s, got %v", loaded.QuietAfter())
	}
}
