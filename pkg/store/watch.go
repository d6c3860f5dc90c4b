package store

import (
	"sync"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
)

// Snapshot listeners: every subscription re-delivers the complete current
// state of its target on each change, never an incremental diff. Channels
// are buffered to one element with latest-wins replacement, so a slow
// consumer only ever sees the freshest snapshot; intermediate states may
// be skipped but each snapshot is internally in store order. Snapshots are
// read and pushed while holding watchMu, which keeps pushes in read order
// so the last one standing covers every completed write. Disposing a
// watch closes its channel, ending consumer range loops.

type roomWatcher struct {
	ch chan []models.Message
}

type profileWatcher struct {
	ch chan models.Profile
}

var (
	watchMu      sync.Mutex
	roomWatch    = map[string]map[*roomWatcher]struct{}{}
	profileWatch = map[string]map[*profileWatcher]struct{}{}
)

// WatchRoom subscribes to a room's message log. The current full ordered
// set is delivered immediately, then again after every append. The
// returned disposer must be called before subscribing with a different
// key, so stale-room snapshots are never delivered into a new context.
func WatchRoom(roomID string) (<-chan []models.Message, func(), error) {
	if db == nil {
		return nil, nil, errNotOpen
	}
	w := &roomWatcher{ch: make(chan []models.Message, 1)}
	watchMu.Lock()
	msgs, err := ListMessages(roomID)
	if err != nil {
		watchMu.Unlock()
		return nil, nil, err
	}
	if roomWatch[roomID] == nil {
		roomWatch[roomID] = map[*roomWatcher]struct{}{}
	}
	roomWatch[roomID][w] = struct{}{}
	w.push(msgs)
	watchMu.Unlock()

	dispose := func() {
		watchMu.Lock()
		if set, ok := roomWatch[roomID]; ok {
			if _, live := set[w]; live {
				delete(set, w)
				close(w.ch)
			}
			if len(set) == 0 {
				delete(roomWatch, roomID)
			}
		}
		watchMu.Unlock()
	}
	return w.ch, dispose, nil
}

// push replaces any undelivered snapshot with the fresh one. Callers hold
// watchMu, which also orders pushes against channel close in dispose.
func (w *roomWatcher) push(snap []models.Message) {
	select {
	case w.ch <- snap:
	default:
		select {
		case <-w.ch:
		default:
		}
		select {
		case w.ch <- snap:
		default:
		}
	}
}

func notifyRoom(roomID string) {
	watchMu.Lock()
	defer watchMu.Unlock()
	if len(roomWatch[roomID]) == 0 {
		return
	}
	msgs, err := ListMessages(roomID)
	if err != nil {
		logger.Warn("watch_snapshot_failed", "room", roomID, "error", err)
		return
	}
	for w := range roomWatch[roomID] {
		w.push(msgs)
	}
}

// WatchProfile subscribes to one profile document, same contract as
// WatchRoom. When the profile does not exist yet nothing is delivered
// until the first write.
func WatchProfile(uid string) (<-chan models.Profile, func(), error) {
	if db == nil {
		return nil, nil, errNotOpen
	}
	w := &profileWatcher{ch: make(chan models.Profile, 1)}
	watchMu.Lock()
	initial, err := GetProfile(uid)
	if err != nil {
		initial = nil // absent profile: first write will deliver
	}
	if profileWatch[uid] == nil {
		profileWatch[uid] = map[*profileWatcher]struct{}{}
	}
	profileWatch[uid][w] = struct{}{}
	if initial != nil {
		w.push(*initial)
	}
	watchMu.Unlock()

	dispose := func() {
		watchMu.Lock()
		if set, ok := profileWatch[uid]; ok {
			if _, live := set[w]; live {
				delete(set, w)
				close(w.ch)
			}
			if len(set) == 0 {
				delete(profileWatch, uid)
			}
		}
		watchMu.Unlock()
	}
	return w.ch, dispose, nil
}

func (w *profileWatcher) push(p models.Profile) {
	select {
	case w.ch <- p:
	default:
		select {
		case <-w.ch:
		default:
		}
		select {
		case w.ch <- p:
		default:
		}
	}
}

func notifyProfile(uid string) {
	watchMu.Lock()
	defer watchMu.Unlock()
	if len(profileWatch[uid]) == 0 {
		return
	}
	p, err := GetProfile(uid)
	if err != nil {
		return
	}
	for w := range profileWatch[uid] {
		w.push(*p)
	}
}
