package game

import (
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// TransitionListener is told about every state change, in order, on the tick
// that caused it. Striking is only ever visible through a listener.
type TransitionListener interface {
	OnTransition(from, to ShotState, now time.Duration)
}

// ShotListener is told about strikes and settles.
type ShotListener interface {
	OnStrike(shot Shot)
	OnSettle(shot Shot, settledAt time.Duration)
}

// Shot describes one strike.
type Shot struct {
	Number  int
	Power   float64
	Impulse mgl64.Vec3
	At      time.Duration
	Missed  bool // no cue body was there to hit
}

// ShotMachine owns the shot state and is the only thing that changes it.
type ShotMachine struct {
	state    ShotState
	cue      *CueBallResolver
	registry BallRegistry
	rig      *CueRig
	rest     *RestDetector
	debug    bool

	tracked  []RigidBody
	strikeAt time.Duration
	shots    int
	lastShot Shot
	now      time.Duration

	listeners     []TransitionListener
	shotListeners []ShotListener
}

func NewShotMachine(cue *CueBallResolver, registry BallRegistry, rig *CueRig, rest *RestDetector, debug bool) *ShotMachine {
	m := &ShotMachine{
		state:    StateReady,
		cue:      cue,
		registry: registry,
		rig:      rig,
		rest:     rest,
		debug:    debug,
	}
	rig.Hide()
	return m
}

func (m *ShotMachine) AddListener(l TransitionListener) { m.listeners = append(m.listeners, l) }
func (m *ShotMachine) AddShotListener(l ShotListener) { m.shotListeners = append(m.shotListeners, l) }
func (m *ShotMachine) State() ShotState { return m.state }
func (m *ShotMachine) Power() float64 { return m.rig.Power() }
func (m *ShotMachine) PowerFraction() float64 { return m.rig.PowerFraction() }
func (m *ShotMachine) CueBallFound() bool { return m.cue.Found() }
func (m *ShotMachine) LastShot() Shot { return m.lastShot }
func (m *ShotMachine) StrikeTimestamp() time.Duration { return m.strikeAt }
func (m *ShotMachine) TrackedBalls() []RigidBody { return m.tracked }
func (m *ShotMachine) Rig() *CueRig { return m.rig }

func (m *ShotMachine) debugf(format string, args ...interface{}) {
	if m.debug {
		log.Printf("[SHOT] "+format, args...)
	}
}

func (m *ShotMachine) transition(to ShotState) {
	from := m.state
	m.state = to
	m.debugf("%s -> %s", from, to)
	for _, l := range m.listeners {
		l.OnTransition(from, to, m.now)
	}
}

// Update advances the machine by one tick. At most one input-driven
// transition happens per call.
func (m *ShotMachine) Update(now, dt time.Duration, in Input) {
	m.now = now
	m.cue.Poll(now)

	if t := m.cue.transform(); t != nil && (m.state == StateAiming || m.state == StateCharging) {
		m.rig.Follow(t.Position())
	}

	switch m.state {
	case StateReady:
		if in.Pressed(ActionAimToggle) {
			m.enterAiming()
		}
	case StateAiming:
		m.updateAiming(dt, in)
	case StateCharging:
		m.updateCharging(dt, in)
	case StateWaiting:
		m.updateWaiting(now)
	}
}

func (m *ShotMachine) enterAiming() {
	t := m.cue.transform()
	if t == nil || !live(m.cue.body()) {
		log.Printf("[SHOT] warning: cue ball not on the table, cannot enter aiming")
		return
	}
	m.rig.ResetPower()
	m.rig.Show(t.Position())
	m.transition(StateAiming)
}

func (m *ShotMachine) updateAiming(dt time.Duration, in Input) {
	if in.Pressed(ActionAimToggle) {
		m.rig.Hide()
		m.transition(StateReady)
		return
	}
	if in.Pressed(ActionPrimary) {
		m.rig.ResetPower()
		m.rig.HideLine()
		m.transition(StateCharging)
		return
	}

	t := m.cue.transform()
	if t == nil {
		return
	}
	dx, _ := in.PointerDelta()
	m.rig.Rotate(t.Position(), dx, dt.Seconds())
	m.rig.UpdateAimLine(t.Position())
}

func (m *ShotMachine) updateCharging(dt time.Duration, in Input) {
	// Cancel wins over everything else pressed on the same tick.
	if in.Pressed(ActionAimToggle) {
		m.rig.ResetPower()
		m.transition(StateAiming)
		return
	}
	if in.Released(ActionPrimary) {
		m.strike()
		return
	}
	m.rig.Charge(dt.Seconds())
}

func (m *ShotMachine) strike() {
	power := m.rig.Power()
	m.transition(StateStriking)

	m.shots++
	m.strikeAt = m.now
	m.rest.Arm(m.now)

	impulse, err := m.rig.Strike(m.cue.body())
	shot := Shot{Number: m.shots, Power: power, Impulse: impulse, At: m.now}
	if err != nil {
		shot.Missed = true
		m.lastShot = shot
		log.Printf("[SHOT] error: shot %d abandoned: %v", shot.Number, err)
		m.notifyStrike(shot)
		m.enterReady()
		return
	}

	m.lastShot = shot
	m.debugf("strike %d power=%.1f impulse=%.2f", shot.Number, power, impulse.Len())
	m.notifyStrike(shot)
	m.transition(StateWaiting)
}

func (m *ShotMachine) updateWaiting(now time.Duration) {
	if len(m.tracked) == 0 {
		m.RefreshBalls()
	}
	if !m.rest.AllSettled(m.tracked, m.cue.body(), m.strikeAt, now) {
		return
	}
	m.debugf("table settled %s after strike", now-m.strikeAt)
	for _, l := range m.shotListeners {
		l.OnSettle(m.lastShot, now)
	}
	m.enterReady()
}

func (m *ShotMachine) enterReady() {
	m.rig.ResetPower()
	m.rig.Hide()
	m.transition(StateReady)
}

func (m *ShotMachine) notifyStrike(shot Shot) {
	for _, l := range m.shotListeners {
		l.OnStrike(shot)
	}
}

// RefreshBalls repopulates the tracked set from the registry.
func (m *ShotMachine) RefreshBalls() {
	if m.registry == nil {
		return
	}
	balls := m.registry.FindAllBalls()
	m.tracked = m.tracked[:0]
	for _, b := range balls {
		if b != nil && b.Body != nil {
			m.tracked = append(m.tracked, b.Body)
		}
	}
	m.debugf("tracking %d balls", len(m.tracked))
}

// RefreshCueBall drops the cue-ball reference and tries to resolve it again.
func (m *ShotMachine) RefreshCueBall() bool {
	m.cue.Invalidate()
	return m.cue.Resolve()
}

// ForceAiming puts the machine into Aiming with a zeroed cue, re-resolving the
// cue ball first. It is an administrative override and bypasses the input rules.
func (m *ShotMachine) ForceAiming() {
	m.RefreshCueBall()
	m.rig.ResetPower()
	if t := m.cue.transform(); t != nil {
		m.rig.Show(t.Position())
	} else {
		log.Printf("[SHOT] warning: forcing aiming without a cue ball")
	}
	if m.state != StateAiming {
		m.transition(StateAiming)
	}
}

// ForceReady puts the machine into Ready with the rig hidden and power zeroed,
// the same as a fresh start.
func (m *ShotMachine) ForceReady() {
	m.rig.ResetPower()
	m.rig.Hide()
	if m.state != StateReady {
		m.transition(StateReady)
	}
}
