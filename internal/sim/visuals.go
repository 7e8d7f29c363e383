package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/playmatatu/billiards/internal/game"
)

// CueModel records what the core asked the cue stick to look like.
type CueModel struct {
	Visible bool
	Offset  mgl64.Vec3
}

func (c *CueModel) SetVisible(v bool) { c.Visible = v }
func (c *CueModel) SetLocalOffset(offset mgl64.Vec3) { c.Offset = offset }

// AimLine keeps the last polyline it was given.
type AimLine struct {
	Visible bool
	Points  []mgl64.Vec3
}

func (l *AimLine) SetVisible(v bool) { l.Visible = v }

func (l *AimLine) SetPoints(points []mgl64.Vec3) {
	l.Points = append(l.Points[:0], points...)
}

// AimCamera is the aim camera. It only tracks what it is looking at.
type AimCamera struct {
	target game.Transform
}

func (c *AimCamera) SetLookAt(target game.Transform) {
	c.target = target
}

// LookAt returns the tracked target's position, if any.
func (c *AimCamera) LookAt() (mgl64.Vec3, bool) {
	if c.target == nil {
		return mgl64.Vec3{}, false
	}
	return c.target.Position(), true
}
