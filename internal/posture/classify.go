package posture

// Status is the discrete quality band assigned to a posture metric.
type Status string

const (
	StatusGood  Status = "Good"
	StatusWarn  Status = "Warn"
	StatusAlert Status = "Alert"
)

// Classification thresholds in degrees. Boundary values belong to the better
// band.
const (
	flexionGoodMax = 15.0
	flexionWarnMax = 20.0

	cvaGoodMin = 48.0
	cvaWarnMin = 44.0
)

// classifyFlexion maps a flexion-style angle (neck flexion, forward-shoulder)
// to a status band. Lower is better.
func classifyFlexion(angle float64) Status {
	switch {
	case angle <= flexionGoodMax:
		return StatusGood
	case angle <= flexionWarnMax:
		return StatusWarn
	default:
		return StatusAlert
	}
}

// classifyCVA maps a craniovertebral angle to a status band. Higher is
// better: a larger angle means the head sits further back over the spine.
func classifyCVA(angle float64) Status {
	switch {
	case angle >= cvaGoodMin:
		return StatusGood
	case angle >= cvaWarnMin:
		return StatusWarn
	default:
		return StatusAlert
	}
}
