package game

import (
	"time"
)

// RestConfig holds the settle thresholds.
type RestConfig struct {
	StopThreshold float64       // max linear/angular speed counted as at rest
	GracePeriod   time.Duration // minimum wait after a strike before checking
	ConfirmWindow time.Duration // window in which a cue ball that never moved is not trusted
	MinCueSpeed   float64       // peak cue speed that proves the strike took effect
}

// RestDetector decides whether the table has settled after a strike.
//
// Besides the velocity threshold it guards against a light tap: within the
// confirm window a table is only reported settled if the cue ball was seen
// moving faster than MinCueSpeed at some point since the strike. That tells
// "never moved" apart from "moved and stopped".
type RestDetector struct {
	cfg          RestConfig
	armedAt      time.Duration
	peakCueSpeed float64
}

func NewRestDetector(cfg RestConfig) *RestDetector {
	return &RestDetector{cfg: cfg}
}

// Arm starts tracking a new strike.
func (d *RestDetector) Arm(strikeAt time.Duration) {
	d.armedAt = strikeAt
	d.peakCueSpeed = 0
}

// PeakCueSpeed is the fastest the cue ball was seen moving since Arm.
func (d *RestDetector) PeakCueSpeed() float64 { return d.peakCueSpeed }

// AllSettled reports whether every tracked body is at rest. An empty set is
// never settled; the caller is expected to repopulate it first.
func (d *RestDetector) AllSettled(bodies []RigidBody, cue RigidBody, strikeAt, now time.Duration) bool {
	if strikeAt != d.armedAt {
		d.Arm(strikeAt)
	}
	if live(cue) {
		if s := cue.LinearVelocity().Len(); s > d.peakCueSpeed {
			d.peakCueSpeed = s
		}
	}

	if len(bodies) == 0 {
		return false
	}

	elapsed := now - strikeAt
	if elapsed < d.cfg.GracePeriod {
		return false
	}

	for _, b := range bodies {
		if !live(b) {
			continue
		}
		if b.LinearVelocity().Len() > d.cfg.StopThreshold ||
			b.AngularVelocity().Len() > d.cfg.StopThreshold {
			return false
		}
	}

	if live(cue) && elapsed < d.cfg.ConfirmWindow && d.peakCueSpeed <= d.cfg.MinCueSpeed {
		return false
	}
	return true
}

// live reports whether b is a body that can still be queried.
func live(b RigidBody) bool {
	return b != nil && !b.Removed()
}
