package game

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNoCueBody = errors.New("cue ball rigid body missing")
	ErrNoPivot   = errors.New("cue rig pivot transform is required")
)

// CueConfig tunes the cue rig.
type CueConfig struct {
	MaxPower        float64
	ChargeRate      float64 // power per second
	ForceMultiplier float64
	RotationSpeed   float64 // degrees per second per unit of pointer delta
	MaxPullBack     float64
	LineSegments    int
	LineLength      float64
	RestOffset      mgl64.Vec3 // cue model offset from the pivot when not pulled back
}

func (c CueConfig) validate() error {
	if c.MaxPower <= 0 {
		return errors.New("max power must be positive")
	}
	if c.ChargeRate < 0 {
		return errors.New("charge rate must not be negative")
	}
	if c.LineSegments < 2 {
		return errors.New("aim line needs at least two points")
	}
	return nil
}

// CueRig is the cue stick proxy: a pivot that sits on the cue ball and turns
// around it, an optional cue model that is pulled back while charging, and an
// optional aim line. The strike goes along the pivot's backward axis.
type CueRig struct {
	cfg    CueConfig
	pivot  Transform
	model  CueModel
	line   AimLine
	power  float64
	shown  bool
	lineOn bool
	points []mgl64.Vec3
}

func NewCueRig(cfg CueConfig, pivot Transform, model CueModel, line AimLine) (*CueRig, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if pivot == nil {
		return nil, ErrNoPivot
	}
	r := &CueRig{
		cfg:    cfg,
		pivot:  pivot,
		model:  model,
		line:   line,
		points: make([]mgl64.Vec3, cfg.LineSegments),
	}
	r.Hide()
	return r, nil
}

// Show places the rig on the cue ball and makes the cue visible in its rest pose.
func (r *CueRig) Show(at mgl64.Vec3) {
	r.pivot.SetPosition(at)
	r.shown = true
	if r.model != nil {
		r.model.SetVisible(true)
		r.model.SetLocalOffset(r.cfg.RestOffset)
	}
}

// Hide hides the cue and the aim line.
func (r *CueRig) Hide() {
	r.shown = false
	if r.model != nil {
		r.model.SetVisible(false)
	}
	r.HideLine()
}

func (r *CueRig) HideLine() {
	r.lineOn = false
	if r.line != nil {
		r.line.SetVisible(false)
	}
}

// Follow keeps the pivot on the cue ball.
func (r *CueRig) Follow(at mgl64.Vec3) {
	r.pivot.SetPosition(at)
}

// Rotate turns the rig around the cue ball by the lateral pointer delta.
func (r *CueRig) Rotate(pivot mgl64.Vec3, pointerX float64, dt float64) {
	if math.Abs(pointerX) <= 0.01 {
		return
	}
	r.pivot.RotateAround(pivot, WorldUp, -pointerX*r.cfg.RotationSpeed*dt)
}

// UpdateAimLine samples a straight segment from origin along the pivot's forward axis.
func (r *CueRig) UpdateAimLine(origin mgl64.Vec3) {
	dir := r.pivot.Forward()
	n := len(r.points)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		r.points[i] = origin.Add(dir.Mul(r.cfg.LineLength * t))
	}
	r.lineOn = true
	if r.line != nil {
		r.line.SetVisible(true)
		r.line.SetPoints(r.points)
	}
}

// Charge accumulates power and pulls the cue back proportionally.
func (r *CueRig) Charge(dt float64) {
	r.power = mgl64.Clamp(r.power+r.cfg.ChargeRate*dt, 0, r.cfg.MaxPower)
	if r.model != nil {
		r.model.SetLocalOffset(r.pullBackOffset())
	}
}

// ResetPower zeroes the charge and returns the cue to its rest pose.
func (r *CueRig) ResetPower() {
	r.power = 0
	if r.model != nil {
		r.model.SetLocalOffset(r.cfg.RestOffset)
	}
}

func (r *CueRig) pullBackOffset() mgl64.Vec3 {
	d := r.PowerFraction() * r.cfg.MaxPullBack
	return r.cfg.RestOffset.Add(mgl64.Vec3{0, 0, d})
}

// Impulse is the impulse the current charge would deliver.
func (r *CueRig) Impulse() mgl64.Vec3 {
	return r.pivot.Forward().Mul(-r.power * r.cfg.ForceMultiplier)
}

// Strike applies the charged impulse to body and hides the cue. Power is
// reset whether or not the body was there to receive it.
func (r *CueRig) Strike(body RigidBody) (mgl64.Vec3, error) {
	impulse := r.Impulse()
	r.power = 0
	r.Hide()
	if r.model != nil {
		r.model.SetLocalOffset(r.cfg.RestOffset)
	}
	if !live(body) {
		return mgl64.Vec3{}, ErrNoCueBody
	}
	body.ApplyImpulse(impulse)
	return impulse, nil
}

func (r *CueRig) Power() float64 { return r.power }

// PowerFraction is power/MaxPower in [0,1].
func (r *CueRig) PowerFraction() float64 {
	return mgl64.Clamp(r.power/r.cfg.MaxPower, 0, 1)
}

func (r *CueRig) MaxPower() float64 { return r.cfg.MaxPower }

func (r *CueRig) Visible() bool { return r.shown }
func (r *CueRig) LineVisible() bool { return r.lineOn }

// AimPoints returns a copy of the last sampled aim line.
func (r *CueRig) AimPoints() []mgl64.Vec3 {
	if !r.lineOn {
		return nil
	}
	out := make([]mgl64.Vec3, len(r.points))
	copy(out, r.points)
	return out
}

func (r *CueRig) Pivot() Transform { return r.pivot }
