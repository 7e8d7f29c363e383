package game

import "github.com/go-gl/mathgl/mgl64"

// Contracts consumed from the host engine. The core never owns any of these;
// it holds them as references handed in at construction time.

// WorldUp is the axis the cue rig turns around.
var WorldUp = mgl64.Vec3{0, 1, 0}

// RigidBody is a physics body owned by the host's solver.
type RigidBody interface {
	LinearVelocity() mgl64.Vec3
	AngularVelocity() mgl64.Vec3
	ApplyImpulse(impulse mgl64.Vec3)
	// Removed reports whether the host destroyed the body after it was handed out.
	Removed() bool
}

// Transform is a readable/writable pose in world space.
type Transform interface {
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	Rotation() mgl64.Quat
	SetRotation(q mgl64.Quat)
	Forward() mgl64.Vec3
	Right() mgl64.Vec3
	Up() mgl64.Vec3
	RotateAround(pivot, axis mgl64.Vec3, degrees float64)
}

// Action is a logical input binding sampled once per tick.
type Action string

const (
	ActionAimToggle    Action = "aim_toggle"
	ActionPrimary      Action = "primary"
	ActionSwitchView   Action = "switch_view"
	ActionResetCamera  Action = "reset_camera"
	ActionManualToggle Action = "manual_toggle"
	ActionRerack       Action = "rerack"

	ActionMoveForward Action = "move_forward"
	ActionMoveBack    Action = "move_back"
	ActionMoveLeft    Action = "move_left"
	ActionMoveRight   Action = "move_right"
	ActionMoveUp      Action = "move_up"
	ActionMoveDown    Action = "move_down"
	ActionYawLeft     Action = "yaw_left"
	ActionYawRight    Action = "yaw_right"
	ActionPitchUp     Action = "pitch_up"
	ActionPitchDown   Action = "pitch_down"
)

var actions = map[Action]bool{
	ActionAimToggle: true, ActionPrimary: true, ActionSwitchView: true, ActionResetCamera: true,
	ActionManualToggle: true, ActionRerack: true,
	ActionMoveForward: true, ActionMoveBack: true, ActionMoveLeft: true, ActionMoveRight: true,
	ActionMoveUp: true, ActionMoveDown: true,
	ActionYawLeft: true, ActionYawRight: true, ActionPitchUp: true, ActionPitchDown: true,
}

// ParseAction returns the action named s, if there is one.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	return a, actions[a]
}

// Input is the per-tick input sample.
type Input interface {
	Pressed(a Action) bool  // went down this tick
	Released(a Action) bool // went up this tick
	Held(a Action) bool
	PointerDelta() (dx, dy float64)
}

// CueModel is the visible cue stick. Optional.
type CueModel interface {
	SetVisible(v bool)
	SetLocalOffset(offset mgl64.Vec3)
}

// AimLine renders the aiming polyline. Optional.
type AimLine interface {
	SetVisible(v bool)
	SetPoints(points []mgl64.Vec3)
}

// AimCamera is the aim virtual camera; it tracks the cue ball when one is known.
type AimCamera interface {
	SetLookAt(target Transform)
}

// Spawner creates and clears ball bodies in the host scene.
type Spawner interface {
	Clear()
	Spawn(number int, position mgl64.Vec3) *Ball
}
