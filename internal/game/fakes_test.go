package game

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

type fakeBody struct {
	vel, ang mgl64.Vec3
	impulses []mgl64.Vec3
	removed  bool
}

func (b *fakeBody) LinearVelocity() mgl64.Vec3 { return b.vel }
func (b *fakeBody) AngularVelocity() mgl64.Vec3 { return b.ang }
func (b *fakeBody) ApplyImpulse(i mgl64.Vec3) { b.impulses = append(b.impulses, i) }
func (b *fakeBody) Removed() bool { return b.removed }

func (b *fakeBody) speed(s float64) { b.vel = mgl64.Vec3{s, 0, 0} }

type fakePose struct {
	pos mgl64.Vec3
	rot mgl64.Quat
}

func newFakePose(pos mgl64.Vec3) *fakePose {
	return &fakePose{pos: pos, rot: mgl64.QuatIdent()}
}

func (p *fakePose) Position() mgl64.Vec3 { return p.pos }
func (p *fakePose) SetPosition(v mgl64.Vec3) { p.pos = v }
func (p *fakePose) Rotation() mgl64.Quat { return p.rot }
func (p *fakePose) SetRotation(q mgl64.Quat) { p.rot = q }
func (p *fakePose) Forward() mgl64.Vec3 { return p.rot.Rotate(mgl64.Vec3{0, 0, 1}) }
func (p *fakePose) Right() mgl64.Vec3 { return p.rot.Rotate(mgl64.Vec3{1, 0, 0}) }
func (p *fakePose) Up() mgl64.Vec3 { return p.rot.Rotate(mgl64.Vec3{0, 1, 0}) }

func (p *fakePose) RotateAround(pivot, axis mgl64.Vec3, degrees float64) {
	q := mgl64.QuatRotate(mgl64.DegToRad(degrees), axis.Normalize())
	p.pos = pivot.Add(q.Rotate(p.pos.Sub(pivot)))
	p.rot = q.Mul(p.rot).Normalize()
}

type fakeRegistry struct {
	cue     *Ball
	balls   []*Ball
	lookups int
}

// newFakeRegistry puts a cue ball at the origin plus n object balls.
func newFakeRegistry(n int) *fakeRegistry {
	r := &fakeRegistry{}
	r.cue = &Ball{Number: CueBallNumber, Body: &fakeBody{}, Transform: newFakePose(mgl64.Vec3{})}
	r.balls = append(r.balls, r.cue)
	for i := 1; i <= n; i++ {
		r.balls = append(r.balls, &Ball{Number: i, Body: &fakeBody{}, Transform: newFakePose(mgl64.Vec3{float64(i), 0, 0})})
	}
	return r
}

func (r *fakeRegistry) FindCueBall() (*Ball, bool) {
	r.lookups++
	return r.cue, r.cue != nil
}

func (r *fakeRegistry) FindAllBalls() []*Ball { return r.balls }

func (r *fakeRegistry) cueBody() *fakeBody { return r.cue.Body.(*fakeBody) }

func (r *fakeRegistry) Clear() {
	r.cue = nil
	r.balls = nil
}

func (r *fakeRegistry) Spawn(number int, pos mgl64.Vec3) *Ball {
	b := &Ball{Number: number, Body: &fakeBody{}, Transform: newFakePose(pos)}
	if number == CueBallNumber {
		r.cue = b
	}
	r.balls = append(r.balls, b)
	return b
}

// fakeInput is one tick's worth of input.
type fakeInput struct {
	pressed  map[Action]bool
	released map[Action]bool
	held     map[Action]bool
	dx, dy   float64
}

func input() *fakeInput {
	return &fakeInput{pressed: map[Action]bool{}, released: map[Action]bool{}, held: map[Action]bool{}}
}

func press(actions ...Action) *fakeInput {
	in := input()
	for _, a := range actions {
		in.pressed[a] = true
		in.held[a] = true
	}
	return in
}

func release(a Action) *fakeInput {
	in := input()
	in.released[a] = true
	return in
}

func hold(actions ...Action) *fakeInput {
	in := input()
	for _, a := range actions {
		in.held[a] = true
	}
	return in
}

func pointer(dx, dy float64) *fakeInput {
	in := input()
	in.dx, in.dy = dx, dy
	return in
}

func (in *fakeInput) Pressed(a Action) bool { return in.pressed[a] }
func (in *fakeInput) Released(a Action) bool { return in.released[a] }
func (in *fakeInput) Held(a Action) bool { return in.held[a] }
func (in *fakeInput) PointerDelta() (float64, float64) { return in.dx, in.dy }

type fakeModel struct {
	visible bool
	offset  mgl64.Vec3
}

func (m *fakeModel) SetVisible(v bool) { m.visible = v }
func (m *fakeModel) SetLocalOffset(o mgl64.Vec3) { m.offset = o }

type fakeLine struct {
	visible bool
	points  []mgl64.Vec3
}

func (l *fakeLine) SetVisible(v bool) { l.visible = v }
func (l *fakeLine) SetPoints(p []mgl64.Vec3) { l.points = append(l.points[:0], p...) }

type fakeAimCam struct{ target Transform }

func (c *fakeAimCam) SetLookAt(t Transform) { c.target = t }

type transition struct{ from, to ShotState }

type recorder struct {
	transitions []transition
	strikes     []Shot
	settles     []time.Duration
}

func (r *recorder) OnTransition(from, to ShotState, _ time.Duration) {
	r.transitions = append(r.transitions, transition{from, to})
}
func (r *recorder) OnStrike(s Shot) { r.strikes = append(r.strikes, s) }
func (r *recorder) OnSettle(_ Shot, at time.Duration) { r.settles = append(r.settles, at) }

func testCueConfig() CueConfig {
	return CueConfig{
		MaxPower:        100,
		ChargeRate:      50,
		ForceMultiplier: 10,
		RotationSpeed:   100,
		MaxPullBack:     0.5,
		LineSegments:    50,
		LineLength:      5,
	}
}

func testRestConfig() RestConfig {
	return RestConfig{
		StopThreshold: 0.01,
		GracePeriod:   500 * time.Millisecond,
		ConfirmWindow: time.Second,
		MinCueSpeed:   0.1,
	}
}

func testCameraConfig() CameraConfig {
	return CameraConfig{
		HighPriority:     20,
		LowPriority:      10,
		MoveSpeed:        5,
		RotationSpeed:    100,
		Bounds:           mgl64.Vec3{10, 5, 10},
		MovementEnabled:  true,
		ManualSwitchKeys: true,
	}
}

// harness is a table built from fakes plus a clock.
type harness struct {
	table    *Table
	registry *fakeRegistry
	pivot    *fakePose
	model    *fakeModel
	line     *fakeLine
	overhead *fakePose
	aimCam   *fakeAimCam
	rec      *recorder
	now      time.Duration
}

const tick = time.Second / 60

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		registry: newFakeRegistry(3),
		pivot:    newFakePose(mgl64.Vec3{}),
		model:    &fakeModel{},
		line:     &fakeLine{},
		overhead: newFakePose(mgl64.Vec3{0, 3, 0}),
		aimCam:   &fakeAimCam{},
		rec:      &recorder{},
	}
	s := Settings{
		Cue:                  testCueConfig(),
		Rest:                 testRestConfig(),
		Camera:               testCameraConfig(),
		Rack:                 RackLayout{Diameter: 0.06, CueSpot: mgl64.Vec3{0, 0, 0.6}, ApexSpot: mgl64.Vec3{0, 0, -0.6}},
		CueBallCheckInterval: time.Second,
	}
	d := Deps{
		Registry:  h.registry,
		Spawner:   h.registry,
		Pivot:     h.pivot,
		CueModel:  h.model,
		AimLine:   h.line,
		Overhead:  h.overhead,
		AimCamera: h.aimCam,
	}
	table, err := NewTable(s, d, nil)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	table.Machine().AddListener(h.rec)
	table.Machine().AddShotListener(h.rec)
	h.table = table
	return h
}

// step advances the clock by dt and runs one tick.
func (h *harness) step(dt time.Duration, in Input) {
	h.now += dt
	h.table.Tick(h.now, dt, in)
}

func (h *harness) machine() *ShotMachine { return h.table.Machine() }
