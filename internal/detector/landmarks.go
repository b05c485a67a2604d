// Package detector provides body pose detection interfaces and types for posture analysis.
package detector

// Pose landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmark is a single detected body point. X and Y are normalized image
// coordinates in [0,1], Z is relative depth as reported by the model, and
// Visibility in [0,1] is the model's confidence that the point is visible
// and not occluded.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Position returns the landmark's coordinates without the visibility score.
func (l *Landmark) Position() Point3D {
	return Point3D{X: l.X, Y: l.Y, Z: l.Z}
}

// PoseLandmarks represents the 33 body landmarks detected by MediaPipe for
// one video frame. A nil slot means the model did not report that landmark
// this frame. Frames are transient: they are evaluated and dropped.
type PoseLandmarks struct {
	Points [NumLandmarks]*Landmark `json:"points"`
}

// At returns the landmark at the given index, or nil when the index is out
// of range or the landmark was not reported.
func (p *PoseLandmarks) At(index int) *Landmark {
	if p == nil || index < 0 || index >= NumLandmarks {
		return nil
	}
	return p.Points[index]
}

// Midpoint returns the point halfway between two landmarks, averaging each
// coordinate axis independently. Visibility does not carry over to derived
// points. Returns nil when either landmark is absent.
func Midpoint(a, b *Landmark) *Point3D {
	if a == nil || b == nil {
		return nil
	}
	return &Point3D{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}
