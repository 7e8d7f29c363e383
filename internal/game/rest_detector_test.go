package game

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func bodies(speeds ...float64) []RigidBody {
	out := make([]RigidBody, len(speeds))
	for i, s := range speeds {
		out[i] = &fakeBody{vel: mgl64.Vec3{s, 0, 0}}
	}
	return out
}

func TestAllSettled(t *testing.T) {
	const t0 = 10 * time.Second
	moving := &fakeBody{vel: mgl64.Vec3{1, 0, 0}}
	spinning := &fakeBody{ang: mgl64.Vec3{0, 0.5, 0}}
	gone := &fakeBody{vel: mgl64.Vec3{5, 0, 0}, removed: true}

	tests := []struct {
		name    string
		tracked []RigidBody
		cue     RigidBody
		elapsed time.Duration
		want    bool
	}{
		{"empty set", nil, nil, time.Hour, false},
		{"empty slice", []RigidBody{}, nil, time.Hour, false},
		{"inside grace", bodies(0, 0, 0), nil, 300 * time.Millisecond, false},
		{"all below threshold", bodies(0.001, 0.001, 0.001), nil, 600 * time.Millisecond, true},
		{"one moving", append(bodies(0, 0), moving), nil, 2 * time.Second, false},
		{"one spinning", append(bodies(0, 0), spinning), nil, 2 * time.Second, false},
		{"removed body skipped", append(bodies(0, 0), gone), nil, 2 * time.Second, true},
		{"untouched cue inside confirm window", bodies(0, 0), &fakeBody{}, 600 * time.Millisecond, false},
		{"untouched cue after confirm window", bodies(0, 0), &fakeBody{}, 1200 * time.Millisecond, true},
		{"removed cue", bodies(0, 0), &fakeBody{removed: true}, 600 * time.Millisecond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewRestDetector(testRestConfig())
			d.Arm(t0)
			if got := d.AllSettled(tt.tracked, tt.cue, t0, t0+tt.elapsed); got != tt.want {
				t.Errorf("AllSettled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllSettledMovedAndStopped(t *testing.T) {
	const t0 = time.Second
	d := NewRestDetector(testRestConfig())
	d.Arm(t0)
	cue := &fakeBody{}
	tracked := []RigidBody{cue}

	cue.speed(0.8)
	if d.AllSettled(tracked, cue, t0, t0+100*time.Millisecond) {
		t.Fatalf("settled while the cue ball is rolling")
	}
	cue.speed(0)
	if !d.AllSettled(tracked, cue, t0, t0+600*time.Millisecond) {
		t.Errorf("cue ball moved and stopped; want settled inside the confirm window")
	}
	if d.PeakCueSpeed() != 0.8 {
		t.Errorf("peak cue speed = %v, want 0.8", d.PeakCueSpeed())
	}
}

func TestAllSettledRearmsOnNewStrike(t *testing.T) {
	d := NewRestDetector(testRestConfig())
	cue := &fakeBody{}
	tracked := []RigidBody{cue}

	cue.speed(3)
	d.AllSettled(tracked, cue, time.Second, 1100*time.Millisecond)
	cue.speed(0)

	// a different strike timestamp must not inherit the old peak
	if d.AllSettled(tracked, cue, 5*time.Second, 5600*time.Millisecond) {
		t.Errorf("settled on a new strike using the previous strike's peak")
	}
	if d.PeakCueSpeed() != 0 {
		t.Errorf("peak cue speed = %v after re-arm, want 0", d.PeakCueSpeed())
	}
}
