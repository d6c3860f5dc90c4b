// Package census runs the periodic community census: a read-only sweep of
// all member profiles that refreshes the population gauges and writes a
// summary document. Message logs are append-only and are never touched
// here.
package census

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/config"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/presence"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/telemetry"
)

// Report is the persisted result of one census sweep.
type Report struct {
	Total     int    `json:"total"`
	Online    int    `json:"online"`
	Admins    int    `json:"admins"`
	Joined    int    `json:"joined"`
	DiskBytes uint64 `json:"disk_bytes"`
	TakenAt   int64  `json:"taken_at"`
	Duration  int64  `json:"duration_ns"`
}

// Start launches the census scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, eff config.Effective) (context.CancelFunc, error) {
	c := eff.Config.Census
	if !c.Enabled {
		logger.Info("census_disabled")
		return func() {}, nil
	}

	cronExpr := c.Cron
	if cronExpr == "" {
		cronExpr = "*/5 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("census_invalid_cron", "cron", c.Cron)
		return nil, fmt.Errorf("invalid census cron expression: %s", c.Cron)
	}

	interval := eff.Config.HeartbeatInterval()
	logger.Info("census_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, interval)
	return cancel, nil
}

// RunOnce performs a single sweep and returns the report it persisted.
func RunOnce(interval time.Duration) (Report, error) {
	start := time.Now().UTC()
	profiles, err := store.ListProfiles()
	if err != nil {
		return Report{}, err
	}
	rep := Report{TakenAt: start.UnixNano()}
	for i := range profiles {
		p := &profiles[i]
		rep.Total++
		if presence.Online(p, start, interval) {
			rep.Online++
		}
		if p.Admin {
			rep.Admins++
		}
		if p.JoinedGroup {
			rep.Joined++
		}
	}
	if du, err := store.DiskUsage(); err == nil {
		rep.DiskBytes = du
	}
	rep.Duration = int64(time.Since(start))

	telemetry.MembersTotal.Set(float64(rep.Total))
	telemetry.MembersOnline.Set(float64(rep.Online))

	data, err := json.Marshal(rep)
	if err != nil {
		return rep, err
	}
	if err := store.SaveCensus(data); err != nil {
		logger.Warn("census_save_failed", "error", err)
		return rep, err
	}
	logger.Info("census_done", "total", rep.Total, "online", rep.Online, "took", time.Duration(rep.Duration).String())
	return rep, nil
}

// runScheduler sleeps until the next cron tick and sweeps, repeating until
// ctx is canceled.
func runScheduler(ctx context.Context, cronExpr string, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("census_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("census_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			wait = time.Second
		}
		select {
		case <-time.After(wait):
			if _, err := RunOnce(interval); err != nil {
				logger.Error("census_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("census_scheduler_stopping")
			return
		}
	}
}
