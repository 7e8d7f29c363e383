package game

import (
	"errors"
	"log"
	"math/rand"
	"time"
)

// Deps are the host collaborators a Table is built from.
type Deps struct {
	Registry  BallRegistry
	Spawner   Spawner // optional, needed for re-racking
	Pivot     Transform
	CueModel  CueModel  // optional
	AimLine   AimLine   // optional
	Overhead  Transform // optional, free-fly is skipped without it
	AimCamera AimCamera // optional
}

// Settings gathers the tunables of every component.
type Settings struct {
	Cue                  CueConfig
	Rest                 RestConfig
	Camera               CameraConfig
	Rack                 RackLayout
	CueBallCheckInterval time.Duration
	Debug                bool
}

// Table wires the shot machine, cue rig and camera arbiter together and
// dispatches one tick at a time.
type Table struct {
	deps    Deps
	rack    RackLayout
	rng     *rand.Rand
	cue     *CueBallResolver
	rig     *CueRig
	rest    *RestDetector
	machine *ShotMachine
	cameras *CameraArbiter
}

func NewTable(s Settings, d Deps, rng *rand.Rand) (*Table, error) {
	if d.Registry == nil {
		return nil, errors.New("ball registry is required")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	rig, err := NewCueRig(s.Cue, d.Pivot, d.CueModel, d.AimLine)
	if err != nil {
		return nil, err
	}
	cue := NewCueBallResolver(d.Registry, s.CueBallCheckInterval)
	rest := NewRestDetector(s.Rest)
	machine := NewShotMachine(cue, d.Registry, rig, rest, s.Debug)
	cameras, err := NewCameraArbiter(s.Camera, d.Overhead, d.AimCamera, cue, s.Debug)
	if err != nil {
		return nil, err
	}
	machine.AddListener(cameras)

	return &Table{
		deps:    d,
		rack:    s.Rack,
		rng:     rng,
		cue:     cue,
		rig:     rig,
		rest:    rest,
		machine: machine,
		cameras: cameras,
	}, nil
}

// Tick runs one frame: table-level actions, then the shot machine, then the
// cameras, which therefore always see this tick's shot state.
func (t *Table) Tick(now, dt time.Duration, in Input) {
	if in.Pressed(ActionRerack) {
		if err := t.Rerack(); err != nil {
			log.Printf("[TABLE] warning: re-rack skipped: %v", err)
		}
	}
	if in.Pressed(ActionManualToggle) {
		t.ToggleManualControl()
	}
	t.machine.Update(now, dt, in)
	t.cameras.Update(dt, in)
}

// Rerack clears and re-racks the balls, then re-resolves the cue ball and the
// tracked set. Any shot in progress is abandoned.
func (t *Table) Rerack() error {
	if _, err := t.rack.Rack(t.deps.Spawner, t.rng); err != nil {
		return err
	}
	t.machine.ForceReady()
	t.machine.RefreshCueBall()
	t.machine.RefreshBalls()
	log.Printf("[TABLE] balls re-racked")
	return nil
}

// ToggleManualControl decouples the cameras from the shot state, or couples
// them back. Entering needs a cue ball.
func (t *Table) ToggleManualControl() bool {
	if t.cameras.IsManualControlMode() {
		t.machine.ForceReady()
		t.cameras.SwitchToOverhead()
		t.cameras.SetAutomatic(t.machine.State())
		log.Printf("[CAMERA] manual control off")
		return false
	}
	if !t.cue.Found() {
		log.Printf("[CAMERA] warning: cannot enter manual control, cue ball not found")
		return false
	}
	t.cameras.SetManual()
	if t.machine.State() == StateReady {
		t.machine.ForceAiming()
	}
	t.cameras.SwitchToAim()
	log.Printf("[CAMERA] manual control on")
	return true
}

func (t *Table) State() ShotState { return t.machine.State() }
func (t *Table) Power() float64 { return t.machine.Power() }
func (t *Table) PowerFraction() float64 { return t.machine.PowerFraction() }
func (t *Table) IsCueBallFound() bool { return t.cue.Found() }
func (t *Table) RefreshCueBall() bool { return t.machine.RefreshCueBall() }
func (t *Table) ForceAiming() { t.machine.ForceAiming() }
func (t *Table) ForceReady() { t.machine.ForceReady() }

func (t *Table) IsManualControlMode() bool { return t.cameras.IsManualControlMode() }
func (t *Table) SwitchToAimCamera() { t.cameras.SwitchToAim() }
func (t *Table) SwitchToOverheadCamera() { t.cameras.SwitchToOverhead() }
func (t *Table) ResetOverheadCamera() { t.cameras.Reset() }
func (t *Table) ActiveCamera() Camera { return t.cameras.ActiveCamera() }

func (t *Table) CameraPriorities() CameraPriorities { return t.cameras.Priorities() }

func (t *Table) Machine() *ShotMachine { return t.machine }
func (t *Table) Cameras() *CameraArbiter { return t.cameras }
func (t *Table) Rig() *CueRig { return t.rig }
func (t *Table) CueBall() *Ball { return t.cue.Ball() }
