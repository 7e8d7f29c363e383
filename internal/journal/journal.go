package journal

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiards/internal/models"
	"github.com/playmatatu/billiards/internal/session"
)

var ErrDisabled = errors.New("shot journal disabled")

const queueCapacity = 128

// Page sizes for Recent.
const (
	DefaultRecent = 20
	MaxRecent     = 200
)

// Journal keeps an audit trail of shots in Postgres. A Journal without a
// database is disabled: it accepts events and drops them.
type Journal struct {
	db    *sqlx.DB
	queue chan session.Event
}

func New(db *sqlx.DB) *Journal {
	return &Journal{db: db, queue: make(chan session.Event, queueCapacity)}
}

func (j *Journal) Enabled() bool { return j != nil && j.db != nil }

// OnEvent queues strike and settle events for Run.
func (j *Journal) OnEvent(ev session.Event) {
	if !j.Enabled() || ev.Shot == nil {
		return
	}
	if ev.Type != session.EventStrike && ev.Type != session.EventSettle {
		return
	}
	select {
	case j.queue <- ev:
	default:
		log.Printf("[JOURNAL] warning: queue full, dropping %s of shot %d", ev.Type, ev.Shot.Number)
	}
}

func (j *Journal) OnSnapshot(session.Snapshot) {}

// Run writes queued events until ctx is done.
func (j *Journal) Run(ctx context.Context) {
	if !j.Enabled() {
		log.Printf("[JOURNAL] disabled (no DATABASE_URL)")
		return
	}
	log.Printf("[JOURNAL] writer started")
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-j.queue:
			var err error
			switch ev.Type {
			case session.EventStrike:
				err = j.RecordShot(ctx, ev)
			case session.EventSettle:
				err = j.RecordSettle(ctx, ev)
			}
			if err != nil && ctx.Err() == nil {
				log.Printf("[JOURNAL] error: %v", err)
			}
		}
	}
}

// shotRow maps a strike event onto a journal row.
func shotRow(ev session.Event) models.Shot {
	s := ev.Shot
	return models.Shot{
		SessionID:  ev.SessionID,
		ShotNumber: s.Number,
		Power:      s.Power,
		ImpulseX:   s.Impulse.X(),
		ImpulseY:   s.Impulse.Y(),
		ImpulseZ:   s.Impulse.Z(),
		Missed:     s.Missed,
		StrikeAt:   s.StrikeAt,
	}
}

// RecordShot inserts a row for a strike event.
func (j *Journal) RecordShot(ctx context.Context, ev session.Event) error {
	if !j.Enabled() {
		return ErrDisabled
	}
	if ev.Shot == nil {
		return fmt.Errorf("strike event without shot")
	}
	_, err := j.db.NamedExecContext(ctx, `
		INSERT INTO shots (session_id, shot_number, power, impulse_x, impulse_y, impulse_z, missed, strike_at, created_at)
		VALUES (:session_id, :shot_number, :power, :impulse_x, :impulse_y, :impulse_z, :missed, :strike_at, NOW())
		ON CONFLICT (session_id, shot_number) DO NOTHING
	`, shotRow(ev))
	if err != nil {
		return fmt.Errorf("failed to record shot %d: %w", ev.Shot.Number, err)
	}
	return nil
}

// RecordSettle stores how long the table took to come to rest.
func (j *Journal) RecordSettle(ctx context.Context, ev session.Event) error {
	if !j.Enabled() {
		return ErrDisabled
	}
	if ev.Shot == nil {
		return fmt.Errorf("settle event without shot")
	}
	_, err := j.db.ExecContext(ctx,
		`UPDATE shots SET settle_seconds=$1, settled_at=NOW() WHERE session_id=$2 AND shot_number=$3`,
		ev.Shot.SettleSeconds, ev.SessionID, ev.Shot.Number)
	if err != nil {
		return fmt.Errorf("failed to record settle of shot %d: %w", ev.Shot.Number, err)
	}
	return nil
}

// Recent returns the latest shots of a session, newest first.
func (j *Journal) Recent(ctx context.Context, sessionID string, limit int) ([]models.Shot, error) {
	if !j.Enabled() {
		return nil, ErrDisabled
	}
	limit = recentLimit(limit)
	var shots []models.Shot
	err := j.db.SelectContext(ctx, &shots, `
		SELECT id, session_id, shot_number, power, impulse_x, impulse_y, impulse_z, missed, strike_at,
		       settle_seconds, created_at, settled_at
		FROM shots WHERE session_id=$1 ORDER BY shot_number DESC LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load shots: %w", err)
	}
	return shots, nil
}

// recentLimit defaults a non-positive limit and caps large ones.
func recentLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecent
	}
	return min(limit, MaxRecent)
}
