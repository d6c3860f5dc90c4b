package session

import (
	"testing"
	"time"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/auth"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
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

func register(t *testing.T, b *auth.Boundary, email, username string) models.Identity {
	t.Helper()
	id, err := b.Register(email, "secret1", username, username)
	if err != nil {
		t.Fatalf("register %s failed: %v", email, err)
	}
	return id
}

func waitFor(t *testing.T, s *Session, cond func(State) bool, what string) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		cur := s.Current()
		if cond(cur) {
			return cur
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; last state: identity=%v loading=%v profile=%v",
				what, cur.Identity, cur.Loading, cur.Profile)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSubscribeDeliversImmediately(t *testing.T) {
	openTestStore(t)
	s := New(auth.NewBoundary("test-secret"))
	defer s.Close()

	got := make(chan State, 1)
	dispose := s.Subscribe(func(st State) {
		select {
		case got <- st:
		default:
		}
	})
	defer dispose()

	select {
	case st := <-got:
		if st.Identity != nil || st.Loading {
			t.Fatalf("expected empty initial snapshot, got %+v", st)
		}
	case <-time.After(time.Second):
		t.Fatalf("no immediate snapshot")
	}
}

func TestSignInCascadesProfile(t *testing.T) {
	openTestStore(t)
	b := auth.NewBoundary("test-secret")
	id := register(t, b, "ada@example.com", "ada")

	s := New(b)
	defer s.Close()

	if err := s.SignIn("ada@example.com", "secret1"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	st := waitFor(t, s, func(st State) bool {
		return st.Identity != nil && !st.Loading && st.Profile != nil
	}, "profile to load")
	if st.Identity.ID != id.ID {
		t.Fatalf("wrong identity: %s", st.Identity.ID)
	}
	if st.Profile.Username != "ada" {
		t.Fatalf("wrong profile: %+v", st.Profile)
	}

	// a profile write flows into the session without re-subscribing
	if err := store.MergeProfile(id.ID, func(p *models.Profile) error {
		p.Bio = "updated"
		return nil
	}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	waitFor(t, s, func(st State) bool {
		return st.Profile != nil && st.Profile.Bio == "updated"
	}, "profile update to arrive")
}

func TestSignInWrongPassword(t *testing.T) {
	openTestStore(t)
	b := auth.NewBoundary("test-secret")
	register(t, b, "ada@example.com", "ada")

	s := New(b)
	defer s.Close()

	err := s.SignIn("ada@example.com", "wrong-pass")
	if errs.AuthKindOf(err) != errs.AuthWrongPassword {
		t.Fatalf("expected wrong-password, got %v", err)
	}
	if cur := s.Current(); cur.Identity != nil {
		t.Fatalf("failed sign-in must not install an identity")
	}

	err = s.SignIn("nobody@example.com", "secret1")
	if errs.AuthKindOf(err) != errs.AuthUserNotFound {
		t.Fatalf("expected user-not-found, got %v", err)
	}
}

func TestSignOutCascades(t *testing.T) {
	openTestStore(t)
	b := auth.NewBoundary("test-secret")
	register(t, b, "ada@example.com", "ada")

	s := New(b)
	defer s.Close()

	if err := s.SignIn("ada@example.com", "secret1"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	waitFor(t, s, func(st State) bool { return st.Profile != nil }, "profile")

	s.SignOut()
	cur := s.Current()
	if cur.Identity != nil || cur.Profile != nil || cur.Loading {
		t.Fatalf("sign out did not clear state: %+v", cur)
	}
}

func TestIdentitySwapTearsDownOldWatch(t *testing.T) {
	openTestStore(t)
	b := auth.NewBoundary("test-secret")
	ada := register(t, b, "ada@example.com", "ada")
	zed := register(t, b, "zed@example.com", "zed")

	s := New(b)
	defer s.Close()

	s.Resume(ada)
	waitFor(t, s, func(st State) bool {
		return st.Profile != nil && st.Profile.ID == ada.ID
	}, "first profile")

	s.Resume(zed)
	waitFor(t, s, func(st State) bool {
		return st.Profile != nil && st.Profile.ID == zed.ID
	}, "second profile")

	// writes to the old profile must never land in the new context
	if err := store.MergeProfile(ada.ID, func(p *models.Profile) error {
		p.Bio = "stale"
		return nil
	}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	cur := s.Current()
	if cur.Profile == nil || cur.Profile.ID != zed.ID {
		t.Fatalf("session lost current profile: %+v", cur.Profile)
	}
	if cur.Profile.Bio == "stale" {
		t.Fatalf("old profile write leaked into swapped session")
	}
}

func TestResumeAbsentProfileIsIncomplete(t *testing.T) {
	openTestStore(t)
	b := auth.NewBoundary("test-secret")
	s := New(b)
	defer s.Close()

	// identity without a profile document: loading resolves with no profile
	s.Resume(models.Identity{ID: "ghost", Email: "g@example.com"})
	st := waitFor(t, s, func(st State) bool {
		return st.Identity != nil && !st.Loading
	}, "absent profile to resolve")
	if st.Profile != nil {
		t.Fatalf("expected incomplete (nil) profile, got %+v", st.Profile)
	}
}
