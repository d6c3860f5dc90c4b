// Package presence implements the advisory liveness heartbeat. A beat is
// written immediately when a session mounts and then on a fixed period;
// nothing is ever written on unmount; liveness decays by staleness
// instead, and consumers classify a member offline once the last beat is
// older than twice the heartbeat period.
package presence

import (
	"context"
	"time"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/telemetry"
)

// DefaultInterval is the reference heartbeat period.
const DefaultInterval = 25 * time.Second

// Beat writes {lastSeen: now, online: true} for uid once.
func Beat(uid string) error {
	err := store.MergeProfile(uid, func(p *models.Profile) error {
		p.LastSeen = time.Now().UTC().UnixNano()
		p.Online = true
		return nil
	})
	if err == nil {
		telemetry.HeartbeatsTotal.Inc()
	}
	return err
}

// Heartbeat owns the periodic beat for one mounted session. The component
// that mounted the session cancels it; there is no offline write on stop.
type Heartbeat struct {
	uid      string
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// Start issues an immediate beat and then repeats every interval until
// Stop (or ctx cancellation). A non-positive interval falls back to
// DefaultInterval.
func Start(ctx context.Context, uid string, interval time.Duration) *Heartbeat {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Heartbeat{uid: uid, interval: interval, cancel: cancel, done: make(chan struct{})}
	go h.run(ctx)
	return h
}

func (h *Heartbeat) run(ctx context.Context) {
	defer close(h.done)
	if err := Beat(h.uid); err != nil {
		logger.Warn("heartbeat_write_failed", "uid", h.uid, "error", err)
	}
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := Beat(h.uid); err != nil {
				logger.Warn("heartbeat_write_failed", "uid", h.uid, "error", err)
			}
		}
	}
}

// Stop clears the timer. The last written state stays visible until it
// goes stale.
func (h *Heartbeat) Stop() {
	h.cancel()
	<-h.done
}

// Online classifies a profile's liveness at time now: a beat older than
// twice the heartbeat period is void.
func Online(p *models.Profile, now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if p.LastSeen == 0 {
		return false
	}
	age := now.UTC().UnixNano() - p.LastSeen
	return age <= 2*interval.Nanoseconds()
}
