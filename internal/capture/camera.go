// Package capture provides camera frame capture for the Tadasana posture
// monitoring system.
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Capture defaults. Posture sampling runs at a low rate; the pipeline raises
// the rate only while someone is moving in front of the camera.
const (
	DefaultFPS    = 5
	ActiveFPS     = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that has not
	// been opened.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrReadFailed is returned when the device produced no frame.
	ErrReadFailed = errors.New("failed to read frame from camera")

	// ErrEmptyFrame is returned when the device produced an empty frame.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// device captures frames from a video device through gocv.
type device struct {
	id  int
	fps int

	mu   sync.Mutex
	cap  *gocv.VideoCapture
	open bool
}

// NewCamera creates a Camera for the given device ID. The capture rate
// starts at DefaultFPS.
func NewCamera(deviceID int) Camera {
	return &device{id: deviceID, fps: DefaultFPS}
}

// Open opens the device and applies the default resolution and current rate.
func (d *device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return nil
	}

	cap, err := gocv.OpenVideoCapture(d.id)
	if err != nil {
		return err
	}

	// 640x480 keeps the pose round-trip cheap
	cap.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	cap.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	cap.Set(gocv.VideoCaptureFPS, float64(d.fps))

	d.cap = cap
	d.open = true
	return nil
}

// Close releases the device. Closing an unopened camera is a no-op.
func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open || d.cap == nil {
		d.open = false
		return nil
	}

	err := d.cap.Close()
	d.cap = nil
	d.open = false
	return err
}

// ReadFrame grabs one frame. The caller owns the returned Mat and must close
// it.
func (d *device) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open || d.cap == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := d.cap.Read(&mat); !ok {
		mat.Close()
		return nil, ErrReadFailed
	}
	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}

	return &mat, nil
}

// SetFPS changes the capture rate, on the live device too when it is open.
// Rates of zero or below are ignored.
func (d *device) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.fps = fps
	if d.cap != nil {
		d.cap.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current capture rate.
func (d *device) FPS() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fps
}

// IsOpen reports whether the device is open.
func (d *device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}
