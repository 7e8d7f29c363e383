package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/billiards/internal/session"
	"github.com/redis/go-redis/v9"
)

const (
	// EventsChannel carries every table event as JSON.
	EventsChannel = "table_events"

	snapshotTTL   = 30 * time.Second
	queueCapacity = 256
)

// SnapshotKey is where the latest snapshot of a session is mirrored.
func SnapshotKey(sessionID string) string {
	return fmt.Sprintf("table:%s:state", sessionID)
}

type job struct {
	event *session.Event
	snap  *session.Snapshot
}

// Publisher mirrors a session into Redis: events are published on
// EventsChannel and the latest snapshot is kept under SnapshotKey with a TTL.
// Nothing is ever read back.
//
// OnEvent and OnSnapshot only enqueue; Run does the network I/O.
type Publisher struct {
	rdb      *redis.Client
	interval time.Duration
	queue    chan job

	mu       sync.Mutex
	lastSnap time.Time
	dropped  int
}

// NewPublisher mirrors at most one snapshot per interval.
func NewPublisher(rdb *redis.Client, interval time.Duration) *Publisher {
	return &Publisher{
		rdb:      rdb,
		interval: interval,
		queue:    make(chan job, queueCapacity),
	}
}

// OnEvent queues ev for publishing. Contact events are too chatty for the
// channel and are skipped.
func (p *Publisher) OnEvent(ev session.Event) {
	if ev.Type == session.EventContact {
		return
	}
	p.enqueue(job{event: &ev})
}

// OnSnapshot queues s if the last mirrored snapshot is older than the interval.
func (p *Publisher) OnSnapshot(s session.Snapshot) {
	p.mu.Lock()
	now := time.Now()
	due := now.Sub(p.lastSnap) >= p.interval
	if due {
		p.lastSnap = now
	}
	p.mu.Unlock()
	if due {
		p.enqueue(job{snap: &s})
	}
}

func (p *Publisher) enqueue(j job) {
	select {
	case p.queue <- j:
	default:
		p.mu.Lock()
		p.dropped++
		n := p.dropped
		p.mu.Unlock()
		if n == 1 || n%100 == 0 {
			log.Printf("[REDIS] warning: publish queue full, %d messages dropped", n)
		}
	}
}

// Run drains the queue until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	log.Printf("[REDIS] publisher started (channel=%s)", EventsChannel)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.queue:
			var err error
			if j.event != nil {
				err = p.PublishEvent(ctx, *j.event)
			} else if j.snap != nil {
				err = p.SaveSnapshot(ctx, *j.snap)
			}
			if err != nil && ctx.Err() == nil {
				log.Printf("[REDIS] error: %v", err)
			}
		}
	}
}

// PublishEvent publishes ev on EventsChannel.
func (p *Publisher) PublishEvent(ctx context.Context, ev session.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.rdb.Publish(ctx, EventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Type, err)
	}
	return nil
}

// SaveSnapshot stores s under its session's key.
func (p *Publisher) SaveSnapshot(ctx context.Context, s session.Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := p.rdb.Set(ctx, SnapshotKey(s.SessionID), payload, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
