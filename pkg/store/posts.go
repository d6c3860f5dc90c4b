package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
)

// SavePost writes a post document whole.
func SavePost(p models.Post) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}
	return set("post:"+p.ID, data)
}

// GetPost loads one post by id.
func GetPost(id string) (*models.Post, error) {
	v, found, err := get("post:" + id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &errs.NotFoundError{Kind: "post", ID: id}
	}
	var p models.Post
	if err := json.Unmarshal(v, &p); err != nil {
		return nil, fmt.Errorf("invalid post document %s: %w", id, err)
	}
	return &p, nil
}

// MutatePost applies mutate to the current post snapshot and writes the
// result back; same lock-free snapshot semantics as MergeProfile.
func MutatePost(id string, mutate func(*models.Post) error) error {
	p, err := GetPost(id)
	if err != nil {
		return err
	}
	if err := mutate(p); err != nil {
		return err
	}
	p.ID = id
	return SavePost(*p)
}

// ListPosts returns all posts, newest first.
func ListPosts() ([]models.Post, error) {
	vals, err := scan("post:")
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(vals))
	for _, v := range vals {
		var p models.Post
		if err := json.Unmarshal(v, &p); err != nil {
			return nil, fmt.Errorf("invalid post document: %w", err)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TS > out[j].TS })
	return out, nil
}
