package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Frame differencing parameters: blur kernel applied before the diff, and
// the per-pixel intensity delta that counts a pixel as changed.
const (
	blurKernel    = 21
	diffThreshold = 25
)

// ActivityDetector tracks whether anything is moving in front of the
// camera by differencing consecutive blurred grayscale frames. The
// pipeline uses it to drop the capture rate and skip pose estimation while
// the scene is still.
type ActivityDetector struct {
	mu          sync.Mutex
	threshold   float64
	baseline    gocv.Mat
	hasBaseline bool
	lastMotion  time.Time
}

// NewActivityDetector creates a detector that reports activity when more
// than threshold percent of pixels change between frames.
func NewActivityDetector(threshold float64) *ActivityDetector {
	return &ActivityDetector{threshold: threshold}
}

// Detect compares a frame against the previous one and reports whether the
// scene moved, along with the percentage of pixels that changed. The first
// frame only seeds the comparison baseline.
func (d *ActivityDetector) Detect(frame *gocv.Mat) (bool, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	blurred := prepFrame(frame)
	defer blurred.Close()

	// The baseline Mat is allocated on first use rather than in the
	// constructor so the detector can be created without touching OpenCV.
	if !d.hasBaseline {
		d.baseline = gocv.NewMat()
		blurred.CopyTo(&d.baseline)
		d.hasBaseline = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, d.baseline, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, diffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(mask)
	total := mask.Rows() * mask.Cols()
	changePercent := float64(changed) / float64(total) * 100.0

	blurred.CopyTo(&d.baseline)

	active := changePercent > d.threshold
	if active {
		d.lastMotion = time.Now()
	}
	return active, changePercent
}

// prepFrame converts a frame to blurred grayscale for differencing. The
// caller closes the returned Mat.
func prepFrame(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)
	return blurred
}

// Quiet reports whether no activity has been seen for at least the given
// duration. It is true before any activity has ever been observed.
func (d *ActivityDetector) Quiet(duration time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lastMotion.IsZero() {
		return true
	}
	return time.Since(d.lastMotion) >= duration
}

// dropBaseline releases the comparison frame. Callers hold the lock.
func (d *ActivityDetector) dropBaseline() {
	if d.hasBaseline {
		d.baseline.Close()
		d.hasBaseline = false
	}
}

// Reset clears the baseline and the activity clock so the detector can
// start over on a fresh scene.
func (d *ActivityDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dropBaseline()
	d.lastMotion = time.Time{}
}

// Close releases resources used by the detector.
func (d *ActivityDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dropBaseline()
}

// SetThreshold changes the percent-changed threshold. Values of zero or
// below are ignored.
func (d *ActivityDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.threshold = threshold
}
