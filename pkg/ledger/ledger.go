// Package ledger implements the idempotent set-membership toggles for
// follow edges and post likes. Each toggle reads the current snapshot and
// applies the inverse of the observed membership: present removes, absent
// adds, so toggling twice from any starting state is a no-op.
//
// A follow toggle is two independent writes on two documents (the
// follower's following set and the followee's followers set). The pair is
// not atomic: concurrent toggles on the same edge can leave the two sides
// disagreeing. That gap is accepted and documented, not engineered around.
package ledger

import (
	"fmt"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
)

// ToggleFollow flips the follow edge actor→target. Returns the resulting
// state of the edge as observed by the actor's document.
func ToggleFollow(actor, target string) (following bool, err error) {
	if actor == target {
		return false, &errs.ValidationError{Field: "target", Msg: "cannot follow yourself"}
	}
	// decide from the actor's snapshot, then write both sides
	actorProf, err := store.GetProfile(actor)
	if err != nil {
		return false, err
	}
	adding := !actorProf.Follows(target)

	if err := store.MergeProfile(actor, func(p *models.Profile) error {
		p.Following = toggleMember(p.Following, target, adding)
		return nil
	}); err != nil {
		return false, &errs.WriteFailure{Op: fmt.Sprintf("follow %s->%s (following side)", actor, target), Err: err}
	}
	if err := store.MergeProfile(target, func(p *models.Profile) error {
		p.Followers = toggleMember(p.Followers, actor, adding)
		return nil
	}); err != nil {
		// first write already landed; the edge is now half-applied until a
		// later toggle observes it
		logger.Warn("follow_edge_half_applied", "actor", actor, "target", target, "error", err)
		return adding, &errs.WriteFailure{Op: fmt.Sprintf("follow %s->%s (followers side)", actor, target), Err: err}
	}
	logger.Info("follow_toggled", "actor", actor, "target", target, "following", adding)
	return adding, nil
}

// ToggleLike flips actor's membership in the post's likes set. A single
// document write.
func ToggleLike(postID, actor string) (liked bool, err error) {
	var state bool
	err = store.MutatePost(postID, func(p *models.Post) error {
		state = !p.LikedBy(actor)
		p.Likes = toggleMember(p.Likes, actor, state)
		return nil
	})
	if err != nil {
		if errs.IsNotFound(err) {
			return false, err
		}
		return false, &errs.WriteFailure{Op: "like " + postID, Err: err}
	}
	logger.Info("like_toggled", "post", postID, "actor", actor, "liked", state)
	return state, nil
}

// toggleMember adds or removes id, preserving set semantics: no duplicate
// membership is possible by construction.
func toggleMember(set []string, id string, add bool) []string {
	out := set[:0:0]
	for _, m := range set {
		if m != id {
			out = append(out, m)
		}
	}
	if add {
		out = append(out, id)
	}
	return out
}
