package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	pose *PoseLandmarks
	err  error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPose sets the pose that will be returned by Detect.
func (m *MockDetector) SetPose(pose *PoseLandmarks) {
	m.pose = pose
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured pose or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*PoseLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.pose, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// UprightPose returns a preset PoseLandmarks for a well-seated subject viewed
// from the side: head stacked over the shoulders, ears level with each other.
// Expected readings: neck flexion 0°, CVA 90°, forward-shoulder angle 0°.
func UprightPose() *PoseLandmarks {
	pose := &PoseLandmarks{}

	pose.Points[Nose] = &Landmark{X: 0.52, Y: 0.28, Z: -0.15, Visibility: 1.0}

	// Eyes directly above the ears (head level, not pitched)
	pose.Points[LeftEye] = &Landmark{X: 0.505, Y: 0.27, Z: -0.12, Visibility: 1.0}
	pose.Points[RightEye] = &Landmark{X: 0.495, Y: 0.27, Z: -0.12, Visibility: 0.9}

	// Ears stacked over the shoulder midpoint
	pose.Points[LeftEar] = &Landmark{X: 0.505, Y: 0.3, Z: -0.05, Visibility: 1.0}
	pose.Points[RightEar] = &Landmark{X: 0.495, Y: 0.3, Z: -0.05, Visibility: 0.9}

	// Near shoulder slightly above the far one (camera on the subject's left)
	pose.Points[LeftShoulder] = &Landmark{X: 0.5, Y: 0.485, Z: -0.1, Visibility: 1.0}
	pose.Points[RightShoulder] = &Landmark{X: 0.5, Y: 0.515, Z: 0.1, Visibility: 0.9}

	pose.Points[LeftHip] = &Landmark{X: 0.5, Y: 0.78, Z: -0.08, Visibility: 0.8}
	pose.Points[RightHip] = &Landmark{X: 0.5, Y: 0.82, Z: 0.08, Visibility: 0.7}

	return pose
}

// SlouchedPose returns a preset PoseLandmarks for a subject hunched toward a
// screen: head carried forward of the shoulders and pitched down, near
// shoulder rolled forward. Expected readings: neck flexion ~68°, CVA ~35°,
// forward-shoulder angle 45°.
func SlouchedPose() *PoseLandmarks {
	pose := &PoseLandmarks{}

	pose.Points[Nose] = &Landmark{X: 0.68, Y: 0.4, Z: -0.2, Visibility: 1.0}

	// Eyes forward of and barely above the ears (head pitched down)
	pose.Points[LeftEye] = &Landmark{X: 0.66, Y: 0.37, Z: -0.15, Visibility: 0.9}
	pose.Points[RightEye] = &Landmark{X: 0.64, Y: 0.39, Z: -0.15, Visibility: 0.8}

	// Ears well forward of the shoulder midpoint
	pose.Points[LeftEar] = &Landmark{X: 0.61, Y: 0.39, Z: -0.08, Visibility: 0.9}
	pose.Points[RightEar] = &Landmark{X: 0.59, Y: 0.41, Z: -0.08, Visibility: 0.8}

	// Near shoulder rolled forward and up
	pose.Points[LeftShoulder] = &Landmark{X: 0.47, Y: 0.49, Z: -0.12, Visibility: 1.0}
	pose.Points[RightShoulder] = &Landmark{X: 0.45, Y: 0.51, Z: 0.08, Visibility: 0.9}

	pose.Points[LeftHip] = &Landmark{X: 0.44, Y: 0.8, Z: -0.06, Visibility: 0.7}
	pose.Points[RightHip] = &Landmark{X: 0.42, Y: 0.82, Z: 0.06, Visibility: 0.6}

	return pose
}
