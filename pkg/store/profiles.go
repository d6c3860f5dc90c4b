package store

import (
	"encoding/json"
	"fmt"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
)

// SaveProfile writes a profile document whole. Used at registration;
// later mutation goes through MergeProfile.
func SaveProfile(p models.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := set("profile:"+p.ID, data); err != nil {
		logger.Error("save_profile_failed", "id", p.ID, "error", err)
		return err
	}
	notifyProfile(p.ID)
	return nil
}

// GetProfile loads a profile document. Absence is a NotFoundError so
// consumers can treat it as "incomplete" rather than fatal.
func GetProfile(uid string) (*models.Profile, error) {
	v, found, err := get("profile:" + uid)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &errs.NotFoundError{Kind: "profile", ID: uid}
	}
	var p models.Profile
	if err := json.Unmarshal(v, &p); err != nil {
		return nil, fmt.Errorf("invalid profile document %s: %w", uid, err)
	}
	return &p, nil
}

// MergeProfile applies mutate to the current profile snapshot and writes
// the result back. There is deliberately no lock around the
// read-modify-write: concurrent merges land on whichever snapshot each
// caller observed, which is the documented consistency model for
// follower-set and presence writes.
func MergeProfile(uid string, mutate func(*models.Profile) error) error {
	p, err := GetProfile(uid)
	if err != nil {
		return err
	}
	if err := mutate(p); err != nil {
		return err
	}
	p.ID = uid
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := set("profile:"+uid, data); err != nil {
		logger.Error("merge_profile_failed", "id", uid, "error", err)
		return err
	}
	notifyProfile(uid)
	return nil
}

// ListProfiles returns every profile document.
func ListProfiles() ([]models.Profile, error) {
	vals, err := scan("profile:")
	if err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(vals))
	for _, v := range vals {
		var p models.Profile
		if err := json.Unmarshal(v, &p); err != nil {
			return nil, fmt.Errorf("invalid profile document: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// FindProfileByUsername scans for the unique handle.
func FindProfileByUsername(username string) (*models.Profile, error) {
	all, err := ListProfiles()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Username == username {
			return &all[i], nil
		}
	}
	return nil, &errs.NotFoundError{Kind: "profile", ID: username}
}
