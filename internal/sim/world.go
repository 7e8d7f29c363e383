package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/playmatatu/billiards/internal/game"
)

// Body is a ball: a rigid body with a pose. It stands in for the host
// engine's solver and is deliberately simple.
type Body struct {
	Pose
	number  int
	radius  float64
	mass    float64
	vel     mgl64.Vec3
	angVel  mgl64.Vec3
	removed bool
}

func (b *Body) Number() int { return b.number }
func (b *Body) LinearVelocity() mgl64.Vec3 { return b.vel }
func (b *Body) AngularVelocity() mgl64.Vec3 { return b.angVel }
func (b *Body) SetVelocity(v mgl64.Vec3) { b.vel = v; b.roll() }

// ApplyImpulse changes velocity by impulse/mass.
func (b *Body) ApplyImpulse(impulse mgl64.Vec3) {
	if b.removed {
		return
	}
	if b.mass > 0 {
		b.vel = b.vel.Add(impulse.Mul(1 / b.mass))
	} else {
		b.vel = b.vel.Add(impulse)
	}
	b.vel[1] = 0
	b.roll()
}

// Removed reports whether the ball left the table. Safe on a nil body.
func (b *Body) Removed() bool {
	return b == nil || b.removed
}

// roll keeps the angular velocity consistent with rolling without slipping.
func (b *Body) roll() {
	if b.radius <= 0 {
		b.angVel = mgl64.Vec3{}
		return
	}
	b.angVel = game.WorldUp.Cross(b.vel).Mul(1 / b.radius)
}

// WorldConfig describes the table and its very rough physics.
type WorldConfig struct {
	BallRadius         float64
	BallMass           float64
	HalfLength         float64 // along Z
	HalfWidth          float64 // along X
	PocketRadius       float64
	Friction           float64 // speed lost per second
	MinVelocity        float64 // below this a ball stops
	CushionRestitution float64
	BallRestitution    float64
}

// DefaultWorldConfig is a regulation-ish 9ft table in metres.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		BallRadius:         0.03,
		BallMass:           0.17,
		HalfLength:         1.27,
		HalfWidth:          0.635,
		PocketRadius:       0.06,
		Friction:           0.4,
		MinVelocity:        0.005,
		CushionRestitution: 0.6,
		BallRestitution:    0.94,
	}
}

// World owns the bodies on the table. It implements game.BallRegistry and
// game.Spawner.
type World struct {
	cfg     WorldConfig
	bodies  []*Body
	pockets []mgl64.Vec3
	events  []Event
}

// Event is something that happened during a Step.
type Event struct {
	Type   string  `json:"type"` // "ball", "cushion", "pocket"
	Ball   int     `json:"ball"`
	Target int     `json:"target"`
	Speed  float64 `json:"speed"`
}

func NewWorld(cfg WorldConfig) *World {
	l, w := cfg.HalfLength, cfg.HalfWidth
	return &World{
		cfg: cfg,
		pockets: []mgl64.Vec3{
			{-w, 0, -l}, {-w, 0, 0}, {-w, 0, l},
			{w, 0, -l}, {w, 0, 0}, {w, 0, l},
		},
	}
}

func (w *World) Config() WorldConfig { return w.cfg }

// Clear removes every ball. Handles given out earlier report Removed.
func (w *World) Clear() {
	for _, b := range w.bodies {
		b.removed = true
		b.vel = mgl64.Vec3{}
		b.angVel = mgl64.Vec3{}
	}
	w.bodies = nil
}

// Spawn puts a ball on the table at rest.
func (w *World) Spawn(number int, position mgl64.Vec3) *game.Ball {
	position[1] = w.cfg.BallRadius
	b := &Body{
		Pose:   Pose{pos: position, rot: mgl64.QuatIdent()},
		number: number,
		radius: w.cfg.BallRadius,
		mass:   w.cfg.BallMass,
	}
	w.bodies = append(w.bodies, b)
	return &game.Ball{Number: number, Body: b, Transform: b}
}

func (w *World) FindCueBall() (*game.Ball, bool) {
	for _, b := range w.bodies {
		if b.number == game.CueBallNumber && !b.removed {
			return &game.Ball{Number: b.number, Body: b, Transform: b}, true
		}
	}
	return nil, false
}

func (w *World) FindAllBalls() []*game.Ball {
	out := make([]*game.Ball, 0, len(w.bodies))
	for _, b := range w.bodies {
		if b.removed {
			continue
		}
		out = append(out, &game.Ball{Number: b.number, Body: b, Transform: b})
	}
	return out
}

// Bodies returns every body still on the table, in spawn order.
func (w *World) Bodies() []*Body {
	out := make([]*Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		if !b.removed {
			out = append(out, b)
		}
	}
	return out
}

// AllStopped returns true if no ball on the table is moving.
func (w *World) AllStopped() bool {
	for _, b := range w.bodies {
		if !b.removed && !isZero(b.vel) {
			return false
		}
	}
	return true
}

// Step advances the table by dt seconds and returns what happened.
func (w *World) Step(dt float64) []Event {
	w.events = w.events[:0]
	if dt <= 0 {
		return nil
	}

	// No ball may travel more than a radius per substep.
	fastest := 0.0
	for _, b := range w.bodies {
		if !b.removed {
			fastest = math.Max(fastest, b.vel.Len())
		}
	}
	steps := 1
	if w.cfg.BallRadius > 0 {
		steps = int(math.Ceil(fastest * dt / w.cfg.BallRadius))
		steps = min(max(steps, 1), maxSubsteps)
	}
	h := dt / float64(steps)
	for i := 0; i < steps; i++ {
		w.substep(h)
	}

	out := make([]Event, len(w.events))
	copy(out, w.events)
	return out
}

const maxSubsteps = 64

func (w *World) substep(dt float64) {
	for _, b := range w.bodies {
		if b.removed || isZero(b.vel) {
			continue
		}
		b.pos = b.pos.Add(b.vel.Mul(dt))
	}
	w.resolveBalls()
	for _, b := range w.bodies {
		if b.removed {
			continue
		}
		if w.pocket(b) {
			continue
		}
		w.cushions(b)
		w.friction(b, dt)
	}
}

func (w *World) resolveBalls() {
	minDist := 2 * w.cfg.BallRadius
	for i := 0; i < len(w.bodies); i++ {
		a := w.bodies[i]
		if a.removed {
			continue
		}
		for j := i + 1; j < len(w.bodies); j++ {
			b := w.bodies[j]
			if b.removed {
				continue
			}
			delta := b.pos.Sub(a.pos)
			delta[1] = 0
			dist := delta.Len()
			if dist >= minDist || dist < 1e-12 {
				continue
			}
			n := delta.Mul(1 / dist)

			// Push apart so they just touch.
			overlap := (minDist - dist) / 2
			a.pos = a.pos.Sub(n.Mul(overlap))
			b.pos = b.pos.Add(n.Mul(overlap))

			if b.vel.Sub(a.vel).Dot(n) >= 0 {
				continue // already separating
			}

			aNormal := n.Mul(a.vel.Dot(n))
			bNormal := n.Mul(b.vel.Dot(n))
			aTangent := a.vel.Sub(aNormal)
			bTangent := b.vel.Sub(bNormal)

			e := w.cfg.BallRestitution
			a.vel = aTangent.Add(bNormal.Mul(e)).Add(aNormal.Mul(1 - e))
			b.vel = bTangent.Add(aNormal.Mul(e)).Add(bNormal.Mul(1 - e))
			a.roll()
			b.roll()

			w.events = append(w.events, Event{Type: "ball", Ball: a.number, Target: b.number, Speed: a.vel.Len()})
		}
	}
}

func (w *World) cushions(b *Body) {
	r := w.cfg.BallRadius
	limits := [3]float64{w.cfg.HalfWidth - r, 0, w.cfg.HalfLength - r}
	hit := false
	speed := 0.0
	for _, axis := range []int{0, 2} {
		lim := limits[axis]
		if b.pos[axis] > lim && b.vel[axis] > 0 || b.pos[axis] < -lim && b.vel[axis] < 0 {
			speed = math.Max(speed, math.Abs(b.vel[axis]))
			b.pos[axis] = mgl64.Clamp(b.pos[axis], -lim, lim)
			b.vel[axis] = -b.vel[axis] * w.cfg.CushionRestitution
			hit = true
		}
	}
	if hit {
		b.roll()
		w.events = append(w.events, Event{Type: "cushion", Ball: b.number, Target: -1, Speed: speed})
	}
}

func (w *World) pocket(b *Body) bool {
	for i, p := range w.pockets {
		d := b.pos.Sub(p)
		d[1] = 0
		if d.Len() <= w.cfg.PocketRadius {
			speed := b.vel.Len()
			b.removed = true
			b.vel = mgl64.Vec3{}
			b.angVel = mgl64.Vec3{}
			w.events = append(w.events, Event{Type: "pocket", Ball: b.number, Target: i, Speed: speed})
			return true
		}
	}
	return false
}

func (w *World) friction(b *Body, dt float64) {
	speed := b.vel.Len()
	if speed == 0 {
		return
	}
	speed -= w.cfg.Friction * dt
	if speed < w.cfg.MinVelocity {
		b.vel = mgl64.Vec3{}
	} else {
		b.vel = b.vel.Normalize().Mul(speed)
	}
	b.roll()
}

func isZero(v mgl64.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}
