package game

import (
	"log"
	"time"
)

const (
	CueBallNumber   = 0
	BlackBallNumber = 8
	NumBalls        = 16 // 0=cue, 1-7=solids, 8=black, 9-15=stripes
)

// BallGroup is the suit a numbered ball belongs to.
type BallGroup string

const (
	GroupCue     BallGroup = "CUE"
	GroupSolids  BallGroup = "SOLIDS"
	GroupStripes BallGroup = "STRIPES"
	GroupBlack   BallGroup = "8BALL"
)

// Ball is a ball as seen by the core: its identity plus handles into the host.
type Ball struct {
	Number    int
	Body      RigidBody
	Transform Transform
}

func (b *Ball) IsCue() bool { return b.Number == CueBallNumber }
func (b *Ball) IsBlack() bool { return b.Number == BlackBallNumber }

// Group returns the suit of the ball.
func (b *Ball) Group() BallGroup {
	return ballGroup(b.Number)
}

func ballGroup(number int) BallGroup {
	switch {
	case number == CueBallNumber:
		return GroupCue
	case number == BlackBallNumber:
		return GroupBlack
	case number < BlackBallNumber:
		return GroupSolids
	default:
		return GroupStripes
	}
}

// BallRegistry discovers balls in the host scene.
type BallRegistry interface {
	FindCueBall() (*Ball, bool)
	FindAllBalls() []*Ball
}

// CueBallResolver keeps a back-reference to the cue ball. Balls may be spawned
// after the core starts, so resolution is retried on an interval until it
// succeeds. Once resolved the reference goes away through Invalidate or when
// the host removes the ball's body, e.g. after it was pocketed.
type CueBallResolver struct {
	registry    BallRegistry
	interval    time.Duration
	ball        *Ball
	lastAttempt time.Duration
	attempted   bool
}

func NewCueBallResolver(registry BallRegistry, interval time.Duration) *CueBallResolver {
	return &CueBallResolver{registry: registry, interval: interval}
}

// Poll retries resolution when the interval has elapsed since the last attempt.
// It reports whether the cue ball is known afterwards.
func (r *CueBallResolver) Poll(now time.Duration) bool {
	if r.ball != nil && !live(r.ball.Body) {
		log.Printf("[SHOT] warning: cue ball %d left the table", r.ball.Number)
		r.Invalidate()
	}
	if r.ball != nil {
		return true
	}
	if r.attempted && now-r.lastAttempt < r.interval {
		return false
	}
	r.lastAttempt = now
	r.attempted = true
	return r.Resolve()
}

// Resolve asks the registry right away.
func (r *CueBallResolver) Resolve() bool {
	if r.current() != nil {
		return true
	}
	r.ball = nil
	if r.registry == nil {
		return false
	}
	if b, ok := r.registry.FindCueBall(); ok && b != nil && live(b.Body) {
		r.ball = b
		log.Printf("[SHOT] cue ball resolved (ball %d)", b.Number)
		return true
	}
	log.Printf("[SHOT] warning: cue ball not found, will retry every %s", r.interval)
	return false
}

// Invalidate drops the reference, e.g. after the balls were re-racked.
func (r *CueBallResolver) Invalidate() {
	r.ball = nil
	r.attempted = false
}

// current is the resolved cue ball if its body is still on the table.
func (r *CueBallResolver) current() *Ball {
	if r.ball == nil || !live(r.ball.Body) {
		return nil
	}
	return r.ball
}

// Ball returns the resolved cue ball or nil.
func (r *CueBallResolver) Ball() *Ball { return r.current() }

func (r *CueBallResolver) Found() bool { return r.current() != nil }

// body is the cue ball's rigid body, nil if unknown or removed.
func (r *CueBallResolver) body() RigidBody {
	if b := r.current(); b != nil {
		return b.Body
	}
	return nil
}

// transform is the cue ball's transform, nil if unknown or removed.
func (r *CueBallResolver) transform() Transform {
	if b := r.current(); b != nil {
		return b.Transform
	}
	return nil
}
