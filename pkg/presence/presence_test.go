package presence

import (
	"context"
	"testing"
	"time"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
)

func openTestStore(t *testing.T) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
}

func TestOnlineClassification(t *testing.T) {
	now := time.Now()
	interval := 25 * time.Second

	fresh := &models.Profile{LastSeen: now.Add(-10 * time.Second).UnixNano()}
	if !Online(fresh, now, interval) {
		t.Fatalf("10s-old beat should be online at 25s interval")
	}

	edge := &models.Profile{LastSeen: now.Add(-49 * time.Second).UnixNano()}
	if !Online(edge, now, interval) {
		t.Fatalf("49s-old beat is within the 2x window")
	}

	stale := &models.Profile{LastSeen: now.Add(-60 * time.Second).UnixNano()}
	if Online(stale, now, interval) {
		t.Fatalf("60s-old beat should classify offline at 25s interval")
	}

	never := &models.Profile{}
	if Online(never, now, interval) {
		t.Fatalf("member with no beat ever is offline")
	}
}

func TestBeatWritesLiveness(t *testing.T) {
	openTestStore(t)
	if err := store.SaveProfile(models.Profile{ID: "u1", Username: "ada"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	before := time.Now().UTC().UnixNano()
	if err := Beat("u1"); err != nil {
		t.Fatalf("beat failed: %v", err)
	}
	p, err := store.GetProfile("u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !p.Online {
		t.Fatalf("beat did not set online flag")
	}
	if p.LastSeen < before {
		t.Fatalf("lastSeen not refreshed: %d < %d", p.LastSeen, before)
	}
}

func TestHeartbeatBeatsImmediatelyAndStops(t *testing.T) {
	openTestStore(t)
	if err := store.SaveProfile(models.Profile{ID: "u1", Username: "ada"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	hb := Start(context.Background(), "u1", time.Hour)
	// first beat happens on start, not after the first tick
	deadline := time.Now().Add(2 * time.Second)
	for {
		p, err := store.GetProfile("u1")
		if err == nil && p.Online {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no immediate beat observed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hb.Stop()

	// stopping must not write an offline flag; staleness is the only
	// offline signal
	p, err := store.GetProfile("u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !p.Online {
		t.Fatalf("stop wrote an offline flag")
	}
}
