package capture

import (
	"testing"
	"time"
)

func TestActivityDetector_Quiet(t *testing.T) {
	t.Run("quiet before any activity", func(t *testing.T) {
		d := NewActivityDetector(1.0)

		if !d.Quiet(time.Second) {
			t.Error("expected quiet with no activity ever observed")
		}
	})

	t.Run("not quiet right after activity", func(t *testing.T) {
		d := NewActivityDetector(1.0)
		d.lastMotion = time.Now()

		if d.Quiet(time.Minute) {
			t.Error("expected not quiet immediately after activity")
		}
	})

	t.Run("quiet once activity is old enough", func(t *testing.T) {
		d := NewActivityDetector(1.0)
		d.lastMotion = time.Now().Add(-2 * time.Minute)

		if !d.Quiet(time.Minute) {
			t.Error("expected quiet two minutes after activity")
		}
	})

	t.Run("reset restarts the activity clock", func(t *testing.T) {
		d := NewActivityDetector(1.0)
		d.lastMotion = time.Now()

		d.Reset()

		if !d.Quiet(time.Hour) {
			t.Error("expected quiet after reset")
		}
	})
}

func TestActivityDetector_SetThreshold(t *testing.T) {
	d := NewActivityDetector(1.0)

	d.SetThreshold(5.0)
	if d.threshold != 5.0 {
		t.Errorf("expected threshold 5.0, got %f", d.threshold)
	}

	d.SetThreshold(0)
	if d.threshold != 5.0 {
		t.Errorf("expected zero threshold ignored, got %f", d.threshold)
	}

	d.SetThreshold(-1)
	if d.threshold != 5.0 {
		t.Errorf("expected negative threshold ignored, got %f", d.threshold)
	}
}

func TestMockCamera(t *testing.T) {
	t.Run("read fails when closed", func(t *testing.T) {
		camera := NewMockCamera(nil, false)

		if _, err := camera.ReadFrame(); err == nil {
			t.Error("expected error reading from closed camera")
		}
	})

	t.Run("tracks open state", func(t *testing.T) {
		camera := NewMockCamera(nil, false)

		if camera.IsOpen() {
			t.Error("expected camera closed before Open")
		}

		if err := camera.Open(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !camera.IsOpen() {
			t.Error("expected camera open after Open")
		}

		if err := camera.Close(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if camera.IsOpen() {
			t.Error("expected camera closed after Close")
		}
	})

	t.Run("records requested FPS", func(t *testing.T) {
		camera := NewMockCamera(nil, false)

		if camera.FPS() != DefaultFPS {
			t.Errorf("expected default FPS %d, got %d", DefaultFPS, camera.FPS())
		}

		camera.SetFPS(ActiveFPS)
		if camera.FPS() != ActiveFPS {
			t.Errorf("expected FPS %d, got %d", ActiveFPS, camera.FPS())
		}

		camera.SetFPS(0)
		if camera.FPS() != ActiveFPS {
			t.Errorf("expected zero FPS ignored, got %d", camera.FPS())
		}
	})

	t.Run("implements Camera interface", func(t *testing.T) {
		var _ Camera = (*MockCamera)(nil)
	})
}
