package models

import "time"

// Shot is one row of the shot journal. Settle fields stay nil until the
// table comes to rest.
type Shot struct {
	ID            int64      `db:"id" json:"id"`
	SessionID     string     `db:"session_id" json:"session_id"`
	ShotNumber    int        `db:"shot_number" json:"shot_number"`
	Power         float64    `db:"power" json:"power"`
	ImpulseX      float64    `db:"impulse_x" json:"impulse_x"`
	ImpulseY      float64    `db:"impulse_y" json:"impulse_y"`
	ImpulseZ      float64    `db:"impulse_z" json:"impulse_z"`
	Missed        bool       `db:"missed" json:"missed"`
	StrikeAt      float64    `db:"strike_at" json:"strike_at"` // seconds since session start
	SettleSeconds *float64   `db:"settle_seconds" json:"settle_seconds,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	SettledAt     *time.Time `db:"settled_at" json:"settled_at,omitempty"`
}
