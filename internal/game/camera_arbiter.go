package game

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// ControlMode says who decides which camera is live.
type ControlMode interface {
	isControlMode()
}

// Automatic follows shot-state transitions. Last is the state most recently
// mapped to a camera.
type Automatic struct {
	Last ShotState
}

// Manual ignores shot-state transitions; only explicit switches move priorities.
type Manual struct{}

func (Automatic) isControlMode() {}
func (Manual) isControlMode() {}

// CameraConfig tunes the arbiter.
type CameraConfig struct {
	HighPriority     int
	LowPriority      int
	MoveSpeed        float64
	RotationSpeed    float64 // degrees per second
	Bounds           mgl64.Vec3
	MovementEnabled  bool
	ManualSwitchKeys bool // honour switch-view / reset-camera actions
}

// CameraPriorities is the aim/overhead priority pair. Exactly one side is
// strictly greater at all times.
type CameraPriorities struct {
	Aim      int `json:"aim"`
	Overhead int `json:"overhead"`
}

// CameraArbiter asserts priority between the aim camera and the overhead
// camera, and flies the overhead camera within bounds while it is live.
type CameraArbiter struct {
	cfg        CameraConfig
	prio       CameraPriorities
	mode       ControlMode
	overhead   Transform
	aim        AimCamera
	cue        *CueBallResolver
	initialPos mgl64.Vec3
	initialRot mgl64.Quat
	debug      bool
}

func NewCameraArbiter(cfg CameraConfig, overhead Transform, aim AimCamera, cue *CueBallResolver, debug bool) (*CameraArbiter, error) {
	if cfg.HighPriority <= cfg.LowPriority {
		return nil, fmt.Errorf("camera priorities must differ: high=%d low=%d", cfg.HighPriority, cfg.LowPriority)
	}
	a := &CameraArbiter{
		cfg:      cfg,
		overhead: overhead,
		aim:      aim,
		cue:      cue,
		mode:     Automatic{Last: StateReady},
		debug:    debug,
	}
	if overhead != nil {
		a.initialPos = overhead.Position()
		a.initialRot = overhead.Rotation()
	}
	a.SwitchToOverhead()
	return a, nil
}

func (a *CameraArbiter) setPriorities(aim, overhead int) {
	a.prio = CameraPriorities{Aim: aim, Overhead: overhead}
	if a.prio.Aim == a.prio.Overhead {
		panic(errors.New("camera priorities tied"))
	}
}

// SwitchToAim makes the aim camera live and points it at the cue ball.
func (a *CameraArbiter) SwitchToAim() {
	if a.aim != nil && a.cue != nil {
		if t := a.cue.transform(); t != nil {
			a.aim.SetLookAt(t)
		}
	}
	a.setPriorities(a.cfg.HighPriority, a.cfg.LowPriority)
	if a.debug {
		log.Printf("[CAMERA] aim camera live")
	}
}

// SwitchToOverhead makes the overhead camera live.
func (a *CameraArbiter) SwitchToOverhead() {
	a.setPriorities(a.cfg.LowPriority, a.cfg.HighPriority)
	if a.debug {
		log.Printf("[CAMERA] overhead camera live")
	}
}

// Toggle flips to whichever camera is not live.
func (a *CameraArbiter) Toggle() {
	if a.ActiveCamera() == CameraAim {
		a.SwitchToOverhead()
	} else {
		a.SwitchToAim()
	}
}

func (a *CameraArbiter) switchTo(c Camera) {
	if c == CameraAim {
		a.SwitchToAim()
	} else {
		a.SwitchToOverhead()
	}
}

func (a *CameraArbiter) ActiveCamera() Camera {
	if a.prio.Aim > a.prio.Overhead {
		return CameraAim
	}
	return CameraOverhead
}

func (a *CameraArbiter) Priorities() CameraPriorities { return a.prio }
func (a *CameraArbiter) Mode() ControlMode { return a.mode }

func (a *CameraArbiter) IsManualControlMode() bool {
	_, ok := a.mode.(Manual)
	return ok
}

// SetManual enters manual mode. Priorities stay where they are.
func (a *CameraArbiter) SetManual() {
	a.mode = Manual{}
}

// SetAutomatic leaves manual mode; current is taken as already mapped so the
// next transition, not this call, moves the cameras.
func (a *CameraArbiter) SetAutomatic(current ShotState) {
	a.mode = Automatic{Last: current}
}

// OnTransition maps the new shot state to a camera unless in manual mode.
func (a *CameraArbiter) OnTransition(_, to ShotState, _ time.Duration) {
	auto, ok := a.mode.(Automatic)
	if !ok || auto.Last == to {
		return
	}
	a.mode = Automatic{Last: to}
	a.switchTo(cameraFor(to))
}

// Reset puts the overhead camera back where it started.
func (a *CameraArbiter) Reset() {
	if a.overhead == nil {
		return
	}
	a.overhead.SetPosition(a.initialPos)
	a.overhead.SetRotation(a.initialRot)
	if a.debug {
		log.Printf("[CAMERA] overhead camera reset")
	}
}

// Update handles the camera actions and free-fly for one tick. It runs after
// the shot machine so it sees this tick's state.
func (a *CameraArbiter) Update(dt time.Duration, in Input) {
	if a.cfg.ManualSwitchKeys {
		if in.Pressed(ActionSwitchView) {
			a.Toggle()
		}
		if in.Pressed(ActionResetCamera) {
			a.Reset()
		}
	}
	a.fly(dt.Seconds(), in)
}

func (a *CameraArbiter) fly(dt float64, in Input) {
	if !a.cfg.MovementEnabled || a.overhead == nil || a.prio.Overhead <= a.prio.Aim {
		return
	}

	var move mgl64.Vec3
	if in.Held(ActionMoveForward) {
		move = move.Add(a.overhead.Forward())
	}
	if in.Held(ActionMoveBack) {
		move = move.Sub(a.overhead.Forward())
	}
	if in.Held(ActionMoveRight) {
		move = move.Add(a.overhead.Right())
	}
	if in.Held(ActionMoveLeft) {
		move = move.Sub(a.overhead.Right())
	}
	if in.Held(ActionMoveUp) {
		move = move.Add(a.overhead.Up())
	}
	if in.Held(ActionMoveDown) {
		move = move.Sub(a.overhead.Up())
	}

	if move.Len() > 1e-9 {
		p := a.overhead.Position().Add(move.Normalize().Mul(a.cfg.MoveSpeed * dt))
		for i := 0; i < 3; i++ {
			p[i] = mgl64.Clamp(p[i], a.initialPos[i]-a.cfg.Bounds[i], a.initialPos[i]+a.cfg.Bounds[i])
		}
		a.overhead.SetPosition(p)
	}

	var yaw, pitch float64
	step := a.cfg.RotationSpeed * dt
	if in.Held(ActionYawLeft) {
		yaw -= step
	}
	if in.Held(ActionYawRight) {
		yaw += step
	}
	if in.Held(ActionPitchUp) {
		pitch -= step
	}
	if in.Held(ActionPitchDown) {
		pitch += step
	}
	if yaw != 0 || pitch != 0 {
		local := mgl64.QuatRotate(mgl64.DegToRad(yaw), mgl64.Vec3{0, 1, 0}).
			Mul(mgl64.QuatRotate(mgl64.DegToRad(pitch), mgl64.Vec3{1, 0, 0}))
		a.overhead.SetRotation(a.overhead.Rotation().Mul(local).Normalize())
	}
}
