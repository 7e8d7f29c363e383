package session

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/sim"
)

// Event types fanned out to sinks.
const (
	EventTransition = "transition"
	EventStrike     = "strike"
	EventSettle     = "settle"
	EventRerack     = "rerack"
	EventContact    = "contact"
)

// Event is something that happened on the table.
type Event struct {
	SessionID string     `json:"session_id"`
	Type      string     `json:"type"`
	Tick      uint64     `json:"tick"`
	At        float64    `json:"at"` // seconds since the session started
	From      string     `json:"from,omitempty"`
	To        string     `json:"to,omitempty"`
	Shot      *ShotInfo  `json:"shot,omitempty"`
	Contact   *sim.Event `json:"contact,omitempty"`
}

// ShotInfo describes a strike, and on settle how long the table took to stop.
type ShotInfo struct {
	Number        int        `json:"number"`
	Power         float64    `json:"power"`
	Impulse       mgl64.Vec3 `json:"impulse"`
	Missed        bool       `json:"missed"`
	StrikeAt      float64    `json:"strike_at"`
	SettleSeconds float64    `json:"settle_seconds,omitempty"`
}

func shotInfo(s game.Shot) *ShotInfo {
	return &ShotInfo{
		Number:   s.Number,
		Power:    s.Power,
		Impulse:  s.Impulse,
		Missed:   s.Missed,
		StrikeAt: s.At.Seconds(),
	}
}

// BallState is one ball in a snapshot.
type BallState struct {
	Number   int            `json:"number"`
	Group    game.BallGroup `json:"group"`
	Position mgl64.Vec3     `json:"position"`
	Speed    float64        `json:"speed"`
}

// CameraPose is where the overhead camera is and where it looks.
type CameraPose struct {
	Position mgl64.Vec3 `json:"position"`
	Forward  mgl64.Vec3 `json:"forward"`
}

// Snapshot is the read-only view of the table after a tick. Values are copies;
// holding one never blocks the tick loop.
type Snapshot struct {
	SessionID     string                `json:"session_id"`
	Tick          uint64                `json:"tick"`
	Time          float64               `json:"time"`
	State         game.ShotState        `json:"state"`
	Power         float64               `json:"power"`
	PowerFraction float64               `json:"power_fraction"`
	CueBallFound  bool                  `json:"cue_ball_found"`
	ManualControl bool                  `json:"manual_control"`
	ActiveCamera  game.Camera           `json:"active_camera"`
	Priorities    game.CameraPriorities `json:"priorities"`
	CueVisible    bool                  `json:"cue_visible"`
	CuePull       float64               `json:"cue_pull"`
	AimLine       []mgl64.Vec3          `json:"aim_line,omitempty"`
	Overhead      CameraPose            `json:"overhead"`
	Shots         int                   `json:"shots"`
	Balls         []BallState           `json:"balls"`
}
