package sim

import "github.com/go-gl/mathgl/mgl64"

// Pose is a position and orientation in world space. Local +Z is forward,
// +X right, +Y up.
type Pose struct {
	pos mgl64.Vec3
	rot mgl64.Quat
}

func NewPose(pos mgl64.Vec3, rot mgl64.Quat) *Pose {
	return &Pose{pos: pos, rot: rot.Normalize()}
}

// LookRotation builds a rotation whose forward axis points along dir.
func LookRotation(dir mgl64.Vec3) mgl64.Quat {
	if dir.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatBetweenVectors(mgl64.Vec3{0, 0, 1}, dir.Normalize())
}

func (p *Pose) Position() mgl64.Vec3 { return p.pos }
func (p *Pose) SetPosition(v mgl64.Vec3) { p.pos = v }
func (p *Pose) Rotation() mgl64.Quat { return p.rot }
func (p *Pose) SetRotation(q mgl64.Quat) { p.rot = q.Normalize() }

func (p *Pose) Forward() mgl64.Vec3 { return p.rot.Rotate(mgl64.Vec3{0, 0, 1}) }
func (p *Pose) Right() mgl64.Vec3 { return p.rot.Rotate(mgl64.Vec3{1, 0, 0}) }
func (p *Pose) Up() mgl64.Vec3 { return p.rot.Rotate(mgl64.Vec3{0, 1, 0}) }

// RotateAround orbits the pose around pivot and turns it by the same amount.
func (p *Pose) RotateAround(pivot, axis mgl64.Vec3, degrees float64) {
	if axis.Len() < 1e-12 {
		return
	}
	q := mgl64.QuatRotate(mgl64.DegToRad(degrees), axis.Normalize())
	p.pos = pivot.Add(q.Rotate(p.pos.Sub(pivot)))
	p.rot = q.Mul(p.rot).Normalize()
}
