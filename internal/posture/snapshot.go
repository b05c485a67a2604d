package posture

import (
	"github.com/ayusman/tadasana/internal/detector"
)

// Metric is one computed posture indicator: the angle in degrees, its status
// band, and the aggregated visibility confidence of the landmarks it was
// computed from.
type Metric struct {
	Angle      float64 `json:"angle"`
	Status     Status  `json:"status"`
	Confidence float64 `json:"confidence"`
}

// Canonical metric names used in snapshots, stored alert bindings and plugin
// requests.
const (
	MetricNeckFlexion = "neckFlexion"
	MetricCVA         = "cva"
	MetricFSA         = "fsa"
)

// MetricNames lists the canonical metric names in display order.
func MetricNames() []string {
	return []string{MetricNeckFlexion, MetricCVA, MetricFSA}
}

// Snapshot bundles the three posture metrics computed from one frame. A nil
// metric means the landmarks it needs were not all present in that frame;
// a metric is never carried over from an earlier frame.
type Snapshot struct {
	NeckFlexion *Metric `json:"neckFlexion"`
	CVA         *Metric `json:"cva"`
	FSA         *Metric `json:"fsa"`
}

// Metric returns the named metric, or nil when absent or unknown.
func (s Snapshot) Metric(name string) *Metric {
	switch name {
	case MetricNeckFlexion:
		return s.NeckFlexion
	case MetricCVA:
		return s.CVA
	case MetricFSA:
		return s.FSA
	default:
		return nil
	}
}

// Worst returns the worst status band among the metrics present in the
// snapshot. The second return is false when no metric is present.
func (s Snapshot) Worst() (Status, bool) {
	worst := Status("")
	found := false

	for _, m := range []*Metric{s.NeckFlexion, s.CVA, s.FSA} {
		if m == nil {
			continue
		}
		if !found || statusRank(m.Status) > statusRank(worst) {
			worst = m.Status
			found = true
		}
	}

	return worst, found
}

func statusRank(s Status) int {
	switch s {
	case StatusGood:
		return 0
	case StatusWarn:
		return 1
	default:
		return 2
	}
}

// Compute evaluates the three posture metrics for a single pose frame.
// calibration, when non-nil, is subtracted from the raw neck flexion angle
// before classification. Metrics whose landmarks are missing come back nil.
func Compute(pose *detector.PoseLandmarks, calibration *float64) Snapshot {
	body := ExtractBody(pose)

	return Snapshot{
		NeckFlexion: neckFlexionMetric(body, calibration),
		CVA:         cvaMetric(body),
		FSA:         fsaMetric(body),
	}
}

// rawNeckFlexion returns the uncalibrated neck flexion angle: the tilt of the
// mid-ear to mid-eye vector away from vertical. Returns false when either
// midpoint is missing or the two coincide.
func rawNeckFlexion(body Body) (float64, bool) {
	if body.MidEar == nil || body.MidEye == nil {
		return 0, false
	}
	return angleToVertical(*body.MidEar, *body.MidEye)
}

func neckFlexionMetric(body Body, calibration *float64) *Metric {
	angle, ok := rawNeckFlexion(body)
	if !ok {
		return nil
	}

	if calibration != nil {
		angle -= *calibration
	}

	// Confidence always averages over all four head landmarks, counting a
	// missing ear or eye as zero rather than excluding it.
	return &Metric{
		Angle:      angle,
		Status:     classifyFlexion(angle),
		Confidence: fixedMeanVisibility(body.LeftEar, body.RightEar, body.LeftEye, body.RightEye),
	}
}

func cvaMetric(body Body) *Metric {
	if body.Neck == nil || body.MidEar == nil {
		return nil
	}

	angle := cvaAngle(*body.Neck, *body.MidEar)

	return &Metric{
		Angle:      angle,
		Status:     classifyCVA(angle),
		Confidence: presentMeanVisibility(body.LeftEar, body.RightEar, body.LeftShoulder, body.RightShoulder),
	}
}

func fsaMetric(body Body) *Metric {
	if body.Neck == nil || body.LeftShoulder == nil {
		return nil
	}

	angle, ok := angleToVertical(*body.Neck, body.LeftShoulder.Position())
	if !ok {
		return nil
	}

	return &Metric{
		Angle:      angle,
		Status:     classifyFlexion(angle),
		Confidence: presentMeanVisibility(body.LeftShoulder, body.RightShoulder, body.LeftHip),
	}
}
