package sim

import "github.com/playmatatu/billiards/internal/game"

// Input is a per-tick input buffer. Edges pushed between ticks are visible
// for exactly one tick; held state persists until released. A release that
// arrives in the same tick as its press is held back to the next tick, so a
// quick click is seen as a press followed by a release.
type Input struct {
	held     map[game.Action]bool
	pressed  map[game.Action]bool
	released map[game.Action]bool
	deferred map[game.Action]bool
	dx, dy   float64
}

func NewInput() *Input {
	return &Input{
		held:     make(map[game.Action]bool),
		pressed:  make(map[game.Action]bool),
		released: make(map[game.Action]bool),
		deferred: make(map[game.Action]bool),
	}
}

// Press records a key-down. Pressing an already held action is ignored.
func (in *Input) Press(a game.Action) {
	if in.held[a] {
		return
	}
	in.held[a] = true
	in.pressed[a] = true
}

// Release records a key-up. Releasing an action that is not held is ignored.
func (in *Input) Release(a game.Action) {
	if !in.held[a] || in.deferred[a] {
		return
	}
	if in.pressed[a] {
		in.deferred[a] = true
		return
	}
	delete(in.held, a)
	in.released[a] = true
}

// Tap presses now and releases on the next tick.
func (in *Input) Tap(a game.Action) {
	in.Press(a)
	in.Release(a)
}

// AddPointer accumulates pointer movement until the end of the tick.
func (in *Input) AddPointer(dx, dy float64) {
	in.dx += dx
	in.dy += dy
}

// EndTick clears the edges and the pointer delta, then applies releases
// held back from this tick.
func (in *Input) EndTick() {
	clear(in.pressed)
	clear(in.released)
	in.dx, in.dy = 0, 0
	for a := range in.deferred {
		delete(in.held, a)
		in.released[a] = true
	}
	clear(in.deferred)
}

func (in *Input) Pressed(a game.Action) bool { return in.pressed[a] }
func (in *Input) Released(a game.Action) bool { return in.released[a] }
func (in *Input) Held(a game.Action) bool { return in.held[a] }

func (in *Input) PointerDelta() (float64, float64) { return in.dx, in.dy }
