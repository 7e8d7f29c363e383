package game

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func newTestRig(t *testing.T) (*CueRig, *fakePose, *fakeModel, *fakeLine) {
	t.Helper()
	pivot := newFakePose(mgl64.Vec3{})
	model := &fakeModel{}
	line := &fakeLine{}
	rig, err := NewCueRig(testCueConfig(), pivot, model, line)
	if err != nil {
		t.Fatalf("NewCueRig: %v", err)
	}
	return rig, pivot, model, line
}

func TestNewCueRigValidates(t *testing.T) {
	if _, err := NewCueRig(testCueConfig(), nil, nil, nil); !errors.Is(err, ErrNoPivot) {
		t.Errorf("nil pivot: err = %v, want ErrNoPivot", err)
	}
	cfg := testCueConfig()
	cfg.MaxPower = 0
	if _, err := NewCueRig(cfg, newFakePose(mgl64.Vec3{}), nil, nil); err == nil {
		t.Errorf("zero max power accepted")
	}
	cfg = testCueConfig()
	cfg.LineSegments = 1
	if _, err := NewCueRig(cfg, newFakePose(mgl64.Vec3{}), nil, nil); err == nil {
		t.Errorf("single point aim line accepted")
	}
}

func TestChargeClampsAndPullsBack(t *testing.T) {
	rig, _, model, _ := newTestRig(t)

	rig.Charge(1)
	if rig.Power() != 50 || rig.PowerFraction() != 0.5 {
		t.Errorf("power=%v fraction=%v, want 50 and 0.5", rig.Power(), rig.PowerFraction())
	}
	if want := (mgl64.Vec3{0, 0, 0.25}); !model.offset.ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("pull-back offset = %v, want %v", model.offset, want)
	}

	rig.Charge(10)
	if rig.Power() != 100 || rig.PowerFraction() != 1 {
		t.Errorf("power=%v fraction=%v, want clamped to 100 and 1", rig.Power(), rig.PowerFraction())
	}

	rig.ResetPower()
	if rig.Power() != 0 || model.offset != (mgl64.Vec3{}) {
		t.Errorf("reset left power=%v offset=%v", rig.Power(), model.offset)
	}
}

func TestAimLineSamples(t *testing.T) {
	rig, _, _, line := newTestRig(t)
	origin := mgl64.Vec3{1, 0, 2}

	rig.UpdateAimLine(origin)

	if !line.visible || len(line.points) != 50 {
		t.Fatalf("line visible=%v points=%d", line.visible, len(line.points))
	}
	if !line.points[0].ApproxEqualThreshold(origin, 1e-12) {
		t.Errorf("first point = %v, want origin", line.points[0])
	}
	if want := origin.Add(mgl64.Vec3{0, 0, 5}); !line.points[49].ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("last point = %v, want %v", line.points[49], want)
	}
	step := line.points[1].Sub(line.points[0]).Len()
	for i := 2; i < len(line.points); i++ {
		if d := line.points[i].Sub(line.points[i-1]).Len(); math.Abs(d-step) > 1e-9 {
			t.Fatalf("uneven spacing at %d: %v vs %v", i, d, step)
		}
	}
	if got := rig.AimPoints(); len(got) != 50 {
		t.Errorf("AimPoints returned %d points", len(got))
	}
}

func TestRotateDeadZone(t *testing.T) {
	rig, pivot, _, _ := newTestRig(t)

	rig.Rotate(mgl64.Vec3{}, 0.005, 1)
	if !pivot.Forward().ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("tiny pointer delta rotated the cue to %v", pivot.Forward())
	}

	rig.Rotate(mgl64.Vec3{}, 1, 0.1)
	a := mgl64.DegToRad(-10)
	want := mgl64.Vec3{math.Sin(a), 0, math.Cos(a)}
	if !pivot.Forward().ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("forward = %v, want %v", pivot.Forward(), want)
	}
}

func TestStrikeMissingBody(t *testing.T) {
	rig, _, model, _ := newTestRig(t)
	rig.Show(mgl64.Vec3{})
	rig.Charge(0.5)

	for _, b := range []RigidBody{nil, &fakeBody{removed: true}} {
		rig.Charge(0.5)
		if _, err := rig.Strike(b); !errors.Is(err, ErrNoCueBody) {
			t.Errorf("Strike(%v): err = %v, want ErrNoCueBody", b, err)
		}
	}
	if rig.Power() != 0 || rig.Visible() || model.visible {
		t.Errorf("rig not reset after a missed strike")
	}
}

func TestRigWithoutVisuals(t *testing.T) {
	rig, err := NewCueRig(testCueConfig(), newFakePose(mgl64.Vec3{}), nil, nil)
	if err != nil {
		t.Fatalf("NewCueRig: %v", err)
	}
	rig.Show(mgl64.Vec3{})
	rig.UpdateAimLine(mgl64.Vec3{})
	rig.Charge(1)
	body := &fakeBody{}
	impulse, err := rig.Strike(body)
	if err != nil {
		t.Fatalf("Strike: %v", err)
	}
	if impulse.Len() != 500 || len(body.impulses) != 1 {
		t.Errorf("impulse = %v (%d applied), want magnitude 500", impulse, len(body.impulses))
	}
}
