package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/sim"
)

var (
	ErrBusy      = errors.New("session command queue full")
	ErrStopped   = errors.New("session stopped")
	ErrNoCueBall = errors.New("cue ball not found")
)

// Sink receives events and snapshots. Sinks are called on the tick goroutine
// and must not block.
type Sink interface {
	OnEvent(ev Event)
	OnSnapshot(s Snapshot)
}

type command struct {
	fn   func() error
	done chan error // nil for fire-and-forget
}

// Session owns one table: the simulated world, the shot core on top of it and
// the input buffer. Only the goroutine running Run touches any of them; every
// other caller goes through the command queue and reads snapshots.
type Session struct {
	id    string
	dt    time.Duration
	debug bool

	world    *sim.World
	table    *game.Table
	input    *sim.Input
	model    *sim.CueModel
	line     *sim.AimLine
	overhead *sim.Pose

	now  time.Duration
	tick uint64

	cmds    chan command
	stopped chan struct{}
	once    sync.Once

	mu   sync.RWMutex
	snap Snapshot

	sinkMu sync.RWMutex
	sinks  []Sink
}

// New builds a session and racks the balls.
func New(cfg Config) (*Session, error) {
	if cfg.TickRate <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %d", cfg.TickRate)
	}

	s := &Session{
		id:       uuid.New().String(),
		dt:       time.Second / time.Duration(cfg.TickRate),
		debug:    cfg.Debug,
		world:    sim.NewWorld(cfg.World),
		input:    sim.NewInput(),
		model:    &sim.CueModel{},
		line:     &sim.AimLine{},
		overhead: sim.NewPose(mgl64.Vec3{0, cfg.OverheadHeight, 0}, sim.LookRotation(mgl64.Vec3{0, -1, 0})),
		cmds:     make(chan command, 64),
		stopped:  make(chan struct{}),
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	table, err := game.NewTable(cfg.Table, game.Deps{
		Registry:  s.world,
		Spawner:   rackSpawner{s},
		Pivot:     sim.NewPose(mgl64.Vec3{}, mgl64.QuatIdent()),
		CueModel:  s.model,
		AimLine:   s.line,
		Overhead:  s.overhead,
		AimCamera: &sim.AimCamera{},
	}, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, fmt.Errorf("failed to build table: %w", err)
	}
	s.table = table

	l := listener{s}
	table.Machine().AddListener(l)
	table.Machine().AddShotListener(l)

	if err := table.Rerack(); err != nil {
		return nil, fmt.Errorf("failed to rack: %w", err)
	}
	s.publish()

	log.Printf("[SESSION] %s created (tick=%s seed=%d)", s.id, s.dt, seed)
	return s, nil
}

func (s *Session) ID() string { return s.id }

// AddSink registers a sink for every following event and snapshot.
func (s *Session) AddSink(k Sink) {
	s.sinkMu.Lock()
	s.sinks = append(s.sinks, k)
	s.sinkMu.Unlock()
}

// Snapshot returns the state as of the last tick or command.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Run ticks the session at its fixed rate until ctx is done. Commands are
// executed between ticks on the same goroutine.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.dt)
	defer ticker.Stop()
	defer s.once.Do(func() { close(s.stopped) })

	log.Printf("[SESSION] %s running", s.id)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[SESSION] %s stopped: %v", s.id, ctx.Err())
			return ctx.Err()
		case c := <-s.cmds:
			s.exec(c)
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step runs exactly one tick. It must only be called by the goroutine that
// owns the session, i.e. never concurrently with Run.
func (s *Session) Step() {
	s.now += s.dt
	s.tick++

	for _, c := range s.world.Step(s.dt.Seconds()) {
		s.emit(Event{Type: EventContact, Contact: &c})
	}
	s.table.Tick(s.now, s.dt, s.input)
	s.input.EndTick()
	s.publish()
}

func (s *Session) exec(c command) {
	err := c.fn()
	s.publish()
	if c.done != nil {
		c.done <- err
	}
}

// Do runs fn on the session goroutine and waits for it.
func (s *Session) Do(ctx context.Context, fn func(t *game.Table) error) error {
	done := make(chan error, 1)
	c := command{fn: func() error { return fn(s.table) }, done: done}
	select {
	case s.cmds <- c:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send queues an input change without waiting for it.
func (s *Session) Send(fn func(in *sim.Input)) error {
	select {
	case <-s.stopped:
		return ErrStopped
	default:
	}
	c := command{fn: func() error { fn(s.input); return nil }}
	select {
	case s.cmds <- c:
		return nil
	case <-s.stopped:
		return ErrStopped
	default:
		return ErrBusy
	}
}

// Press, Release and Pointer feed the input buffer from outside the loop.
func (s *Session) Press(a game.Action) error { return s.Send(func(in *sim.Input) { in.Press(a) }) }
func (s *Session) Release(a game.Action) error { return s.Send(func(in *sim.Input) { in.Release(a) }) }

func (s *Session) Pointer(dx, dy float64) error {
	return s.Send(func(in *sim.Input) { in.AddPointer(dx, dy) })
}

func (s *Session) RefreshCueBall(ctx context.Context) (bool, error) {
	var found bool
	err := s.Do(ctx, func(t *game.Table) error {
		found = t.RefreshCueBall()
		return nil
	})
	return found, err
}

func (s *Session) ForceAiming(ctx context.Context) error {
	return s.Do(ctx, func(t *game.Table) error {
		if !t.IsCueBallFound() && !t.RefreshCueBall() {
			return ErrNoCueBall
		}
		t.ForceAiming()
		return nil
	})
}

func (s *Session) ForceReady(ctx context.Context) error {
	return s.Do(ctx, func(t *game.Table) error { t.ForceReady(); return nil })
}

func (s *Session) Rerack(ctx context.Context) error {
	return s.Do(ctx, func(t *game.Table) error { return t.Rerack() })
}

// SwitchCamera makes c the live camera.
func (s *Session) SwitchCamera(ctx context.Context, c game.Camera) error {
	return s.Do(ctx, func(t *game.Table) error {
		switch c {
		case game.CameraAim:
			t.SwitchToAimCamera()
		case game.CameraOverhead:
			t.SwitchToOverheadCamera()
		default:
			return fmt.Errorf("unknown camera %q", c)
		}
		return nil
	})
}

func (s *Session) ResetCamera(ctx context.Context) error {
	return s.Do(ctx, func(t *game.Table) error { t.ResetOverheadCamera(); return nil })
}

// ToggleManualControl flips manual camera control and reports the new mode.
func (s *Session) ToggleManualControl(ctx context.Context) (bool, error) {
	var manual bool
	err := s.Do(ctx, func(t *game.Table) error {
		manual = t.ToggleManualControl()
		return nil
	})
	return manual, err
}

func (s *Session) emit(ev Event) {
	ev.SessionID = s.id
	ev.Tick = s.tick
	ev.At = s.now.Seconds()

	s.sinkMu.RLock()
	defer s.sinkMu.RUnlock()
	for _, k := range s.sinks {
		k.OnEvent(ev)
	}
}

func (s *Session) publish() {
	snap := s.capture()

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.sinkMu.RLock()
	defer s.sinkMu.RUnlock()
	for _, k := range s.sinks {
		k.OnSnapshot(snap)
	}
}

func (s *Session) capture() Snapshot {
	t := s.table
	rig := t.Rig()
	snap := Snapshot{
		SessionID:     s.id,
		Tick:          s.tick,
		Time:          s.now.Seconds(),
		State:         t.State(),
		Power:         t.Power(),
		PowerFraction: t.PowerFraction(),
		CueBallFound:  t.IsCueBallFound(),
		ManualControl: t.IsManualControlMode(),
		ActiveCamera:  t.ActiveCamera(),
		Priorities:    t.CameraPriorities(),
		CueVisible:    s.model.Visible,
		CuePull:       s.model.Offset.Z(),
		AimLine:       rig.AimPoints(),
		Overhead: CameraPose{
			Position: s.overhead.Position(),
			Forward:  s.overhead.Forward(),
		},
		Shots: t.Machine().LastShot().Number,
	}
	for _, b := range s.world.Bodies() {
		snap.Balls = append(snap.Balls, BallState{
			Number:   b.Number(),
			Group:    (&game.Ball{Number: b.Number()}).Group(),
			Position: b.Position(),
			Speed:    b.LinearVelocity().Len(),
		})
	}
	return snap
}

// listener turns core callbacks into session events.
type listener struct{ s *Session }

func (l listener) OnTransition(from, to game.ShotState, _ time.Duration) {
	l.s.emit(Event{Type: EventTransition, From: from.String(), To: to.String()})
}

func (l listener) OnStrike(shot game.Shot) {
	if shot.Missed {
		log.Printf("[SESSION] warning: shot %d missed, no cue ball body", shot.Number)
	}
	l.s.emit(Event{Type: EventStrike, Shot: shotInfo(shot)})
}

func (l listener) OnSettle(shot game.Shot, settledAt time.Duration) {
	info := shotInfo(shot)
	info.SettleSeconds = (settledAt - shot.At).Seconds()
	if l.s.debug {
		log.Printf("[SESSION] shot %d settled after %.2fs", shot.Number, info.SettleSeconds)
	}
	l.s.emit(Event{Type: EventSettle, Shot: info})
}

// rackSpawner is the world's spawner that also reports re-racks.
type rackSpawner struct{ s *Session }

func (r rackSpawner) Clear() {
	r.s.world.Clear()
	r.s.emit(Event{Type: EventRerack})
}

func (r rackSpawner) Spawn(number int, pos mgl64.Vec3) *game.Ball {
	return r.s.world.Spawn(number, pos)
}
