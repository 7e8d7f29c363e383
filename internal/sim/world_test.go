package sim

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/playmatatu/billiards/internal/game"
)

func body(t *testing.T, b *game.Ball) *Body {
	t.Helper()
	sb, ok := b.Body.(*Body)
	if !ok {
		t.Fatalf("ball %d has body %T, want *Body", b.Number, b.Body)
	}
	return sb
}

func hasEvent(events []Event, typ string) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestStraightShotMovesTargetForward(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	cue := body(t, w.Spawn(game.CueBallNumber, mgl64.Vec3{-0.5, 0, 0}))
	target := body(t, w.Spawn(1, mgl64.Vec3{0, 0, 0}))
	cue.SetVelocity(mgl64.Vec3{2, 0, 0})

	hit := false
	for i := 0; i < 120 && !hit; i++ {
		hit = hasEvent(w.Step(1.0/120), "ball")
	}
	if !hit {
		t.Fatalf("cue ball never reached the target")
	}
	if target.LinearVelocity().X() <= 0 {
		t.Errorf("target did not move right: v=%v", target.LinearVelocity())
	}
	if cue.LinearVelocity().X() >= target.LinearVelocity().X() {
		t.Errorf("cue ball should be slower than target after a full hit: cue=%v target=%v",
			cue.LinearVelocity(), target.LinearVelocity())
	}
}

func TestFrictionStopsBalls(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	b := body(t, w.Spawn(game.CueBallNumber, mgl64.Vec3{0, 0, 0}))
	b.SetVelocity(mgl64.Vec3{0.5, 0, 0})

	for i := 0; i < 120; i++ {
		w.Step(1.0 / 60)
	}
	if !w.AllStopped() {
		t.Fatalf("ball didn't stop: v=%v", b.LinearVelocity())
	}
	if b.AngularVelocity().Len() != 0 {
		t.Errorf("stopped ball still spinning: %v", b.AngularVelocity())
	}
	// v^2/2a = 0.3125, give or take the step size
	if x := b.Position().X(); x < 0.25 || x > 0.35 {
		t.Errorf("ball travelled to x=%.3f, want about 0.31", x)
	}
}

func TestCushionReflects(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	b := body(t, w.Spawn(game.CueBallNumber, mgl64.Vec3{0.2, 0, 1.0}))
	b.SetVelocity(mgl64.Vec3{0, 0, 2})

	bounced := false
	for i := 0; i < 60 && !bounced; i++ {
		bounced = hasEvent(w.Step(1.0/60), "cushion")
	}
	if !bounced {
		t.Fatalf("ball never hit the cushion")
	}
	if b.LinearVelocity().Z() >= 0 {
		t.Errorf("ball still moving into the cushion: v=%v", b.LinearVelocity())
	}
	limit := w.Config().HalfLength - w.Config().BallRadius
	if b.Position().Z() > limit {
		t.Errorf("ball left the table: z=%.3f > %.3f", b.Position().Z(), limit)
	}
}

func TestPocketRemovesBall(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	ball := w.Spawn(3, mgl64.Vec3{0.55, 0, 1.18})
	b := body(t, ball)
	b.SetVelocity(mgl64.Vec3{1, 0, 1})

	potted := false
	for i := 0; i < 60 && !potted; i++ {
		potted = hasEvent(w.Step(1.0/60), "pocket")
	}
	if !potted {
		t.Fatalf("ball was not pocketed, at %v", b.Position())
	}
	if !ball.Body.Removed() {
		t.Errorf("pocketed ball should report Removed")
	}
	if n := len(w.FindAllBalls()); n != 0 {
		t.Errorf("FindAllBalls returned %d balls, want 0", n)
	}
}

func TestClearRemovesHandles(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	cue := w.Spawn(game.CueBallNumber, mgl64.Vec3{})
	w.Spawn(1, mgl64.Vec3{0.5, 0, 0})

	if _, ok := w.FindCueBall(); !ok {
		t.Fatalf("cue ball not found after spawn")
	}
	w.Clear()
	if !cue.Body.Removed() {
		t.Errorf("old cue ball handle should report Removed after Clear")
	}
	if _, ok := w.FindCueBall(); ok {
		t.Errorf("cue ball still found after Clear")
	}
	if n := len(w.FindAllBalls()); n != 0 {
		t.Errorf("FindAllBalls returned %d balls after Clear", n)
	}
}

func TestApplyImpulse(t *testing.T) {
	cfg := DefaultWorldConfig()
	w := NewWorld(cfg)
	b := body(t, w.Spawn(game.CueBallNumber, mgl64.Vec3{}))

	b.ApplyImpulse(mgl64.Vec3{0, 0, 0.34})
	want := 0.34 / cfg.BallMass
	if got := b.LinearVelocity().Z(); math.Abs(got-want) > 1e-9 {
		t.Errorf("velocity after impulse = %.4f, want %.4f", got, want)
	}
	if got := b.AngularVelocity().Len(); math.Abs(got-want/cfg.BallRadius) > 1e-9 {
		t.Errorf("angular speed = %.4f, want rolling %.4f", got, want/cfg.BallRadius)
	}
}

func TestNilBodyIsRemoved(t *testing.T) {
	var b *Body
	if !b.Removed() {
		t.Errorf("nil body should report Removed")
	}
}

func TestRotateAround(t *testing.T) {
	p := NewPose(mgl64.Vec3{0, 0, 1}, mgl64.QuatIdent())
	p.RotateAround(mgl64.Vec3{}, game.WorldUp, 90)

	if !p.Position().ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("position after orbit = %v, want (1,0,0)", p.Position())
	}
	if !p.Forward().ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("forward after orbit = %v, want (1,0,0)", p.Forward())
	}
}

func TestInputEdges(t *testing.T) {
	in := NewInput()
	in.Press(game.ActionPrimary)
	if !in.Pressed(game.ActionPrimary) || !in.Held(game.ActionPrimary) {
		t.Fatalf("press should be visible as pressed and held")
	}
	in.EndTick()
	if in.Pressed(game.ActionPrimary) {
		t.Errorf("pressed edge survived the tick")
	}
	if !in.Held(game.ActionPrimary) {
		t.Errorf("held state lost at end of tick")
	}

	in.Release(game.ActionPrimary)
	in.AddPointer(0.5, -1)
	if !in.Released(game.ActionPrimary) || in.Held(game.ActionPrimary) {
		t.Errorf("release should clear held and set released")
	}
	if dx, dy := in.PointerDelta(); dx != 0.5 || dy != -1 {
		t.Errorf("pointer delta = (%v,%v), want (0.5,-1)", dx, dy)
	}
	in.EndTick()
	if in.Released(game.ActionPrimary) {
		t.Errorf("released edge survived the tick")
	}
	if dx, dy := in.PointerDelta(); dx != 0 || dy != 0 {
		t.Errorf("pointer delta not cleared: (%v,%v)", dx, dy)
	}
}

func TestFastBallDoesNotTunnel(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	cue := body(t, w.Spawn(game.CueBallNumber, mgl64.Vec3{0, 0, 0.5}))
	target := body(t, w.Spawn(1, mgl64.Vec3{0, 0, 0.35}))
	cue.SetVelocity(mgl64.Vec3{0, 0, -6}) // 0.1m per tick, more than a diameter

	hit := false
	for i := 0; i < 10 && !hit; i++ {
		hit = hasEvent(w.Step(1.0/60), "ball")
	}
	if !hit {
		t.Fatalf("fast cue ball passed through the target")
	}
	if target.LinearVelocity().Z() >= 0 {
		t.Errorf("target not pushed along -Z: v=%v", target.LinearVelocity())
	}
}

func TestInputTapSpansTwoTicks(t *testing.T) {
	in := NewInput()
	in.Tap(game.ActionPrimary)
	if !in.Pressed(game.ActionPrimary) || in.Released(game.ActionPrimary) {
		t.Fatalf("first tick should only see the press")
	}

	in.EndTick()
	if !in.Released(game.ActionPrimary) || in.Held(game.ActionPrimary) {
		t.Errorf("release should arrive on the following tick")
	}
	if in.Pressed(game.ActionPrimary) {
		t.Errorf("press edge survived the tick")
	}

	in.EndTick()
	if in.Released(game.ActionPrimary) {
		t.Errorf("deferred release survived a second tick")
	}
}
