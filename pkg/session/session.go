// Package session tracks one member's identity and profile and pushes
// {identity, profile, loading} snapshots to subscribers. It is the root
// dependency of presence, streams and the navigation gate: when the
// identity changes, the previous profile subscription is torn down before
// a new one is attached, so another account's profile updates can never
// land in the current context.
package session

import (
	"sync"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/auth"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
)

// State is one snapshot delivered to subscribers. Loading is true from
// the moment an identity appears until its profile document is resolved
// (either loaded, or confirmed absent, which is "incomplete", not an error).
type State struct {
	Identity *models.Identity
	Profile  *models.Profile
	Loading  bool
}

// Session is an explicit object constructed at startup and passed to
// dependents; there is no ambient global. Zero value is not usable; use
// New.
type Session struct {
	boundary *auth.Boundary

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int

	// profile watch lifecycle; gen fences deliveries from a torn-down
	// watch racing a new one
	profileDispose func()
	gen            int
}

// New builds an unauthenticated session over the given auth boundary.
func New(boundary *auth.Boundary) *Session {
	return &Session{
		boundary:  boundary,
		listeners: map[int]func(State){},
	}
}

// Subscribe registers onChange and immediately delivers the current
// snapshot. The returned disposer unregisters.
func (s *Session) Subscribe(onChange func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = onChange
	cur := s.state
	s.mu.Unlock()

	onChange(cur)
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// SignIn authenticates against the boundary and, on success, swaps the
// session identity, cascading a fresh profile subscription.
func (s *Session) SignIn(email, password string) error {
	id, err := s.boundary.SignIn(email, password)
	if err != nil {
		return err
	}
	s.setIdentity(&id)
	return nil
}

// SignOut is fire-and-forget: it emits "no identity", which tears down
// the profile subscription and every dependent.
func (s *Session) SignOut() {
	s.setIdentity(nil)
}

// Resume installs an already-verified identity (token-authenticated
// callers).
func (s *Session) Resume(id models.Identity) {
	s.setIdentity(&id)
}

// Current returns the latest snapshot.
func (s *Session) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close tears the session down; equivalent to SignOut.
func (s *Session) Close() {
	s.setIdentity(nil)
}

func (s *Session) setIdentity(id *models.Identity) {
	s.mu.Lock()
	// tear down the old profile watch before anything else
	if s.profileDispose != nil {
		s.profileDispose()
		s.profileDispose = nil
	}
	s.gen++
	gen := s.gen
	s.state = State{Identity: id, Loading: id != nil}
	s.mu.Unlock()
	s.notify()

	if id == nil {
		return
	}

	ch, dispose, err := store.WatchProfile(id.ID)
	if err != nil {
		logger.Error("profile_watch_failed", "id", id.ID, "error", err)
		return
	}

	s.mu.Lock()
	if s.gen != gen {
		// identity changed again while we were subscribing
		s.mu.Unlock()
		dispose()
		return
	}
	s.profileDispose = dispose
	s.mu.Unlock()

	// resolve "absent = incomplete" without waiting for a first write
	if _, err := store.GetProfile(id.ID); err != nil && errs.IsNotFound(err) {
		s.deliverProfile(gen, nil)
	}

	go func() {
		for p := range ch {
			snapshot := p
			s.deliverProfile(gen, &snapshot)
		}
	}()
}

func (s *Session) deliverProfile(gen int, p *models.Profile) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.state.Profile = p
	s.state.Loading = false
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	s.mu.Lock()
	cur := s.state
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(cur)
	}
}
