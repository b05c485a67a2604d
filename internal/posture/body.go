package posture

import (
	"github.com/ayusman/tadasana/internal/detector"
)

// Body holds the named landmarks posture evaluation works from, pulled out of
// the raw indexed pose array. Any field may be nil when the model could not
// place that landmark in the frame.
type Body struct {
	Nose          *detector.Landmark
	LeftEye       *detector.Landmark
	RightEye      *detector.Landmark
	LeftEar       *detector.Landmark
	RightEar      *detector.Landmark
	LeftShoulder  *detector.Landmark
	RightShoulder *detector.Landmark
	LeftHip       *detector.Landmark
	RightHip      *detector.Landmark

	// Derived midpoints. Position only; visibility is not averaged into them.
	Neck   *detector.Point3D
	MidEar *detector.Point3D
	MidEye *detector.Point3D
}

// ExtractBody pulls the posture-relevant landmarks out of a pose and derives
// the neck (shoulder midpoint), mid-ear and mid-eye points. Missing landmarks
// propagate as nil fields; a nil pose yields an empty Body.
func ExtractBody(pose *detector.PoseLandmarks) Body {
	body := Body{
		Nose:          pose.At(detector.Nose),
		LeftEye:       pose.At(detector.LeftEye),
		RightEye:      pose.At(detector.RightEye),
		LeftEar:       pose.At(detector.LeftEar),
		RightEar:      pose.At(detector.RightEar),
		LeftShoulder:  pose.At(detector.LeftShoulder),
		RightShoulder: pose.At(detector.RightShoulder),
		LeftHip:       pose.At(detector.LeftHip),
		RightHip:      pose.At(detector.RightHip),
	}

	body.Neck = detector.Midpoint(body.LeftShoulder, body.RightShoulder)
	body.MidEar = detector.Midpoint(body.LeftEar, body.RightEar)
	body.MidEye = detector.Midpoint(body.LeftEye, body.RightEye)

	return body
}
