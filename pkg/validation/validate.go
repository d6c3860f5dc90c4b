// Package validation holds the local input checks that run before any
// store write. Failures here are ValidationErrors and never reach the
// remote boundary.
package validation

import (
	"regexp"
	"strings"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,32}$`)

// MessageContent rejects content that is empty after trimming.
func MessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return &errs.ValidationError{Field: "content", Msg: "empty after trimming"}
	}
	return nil
}

// Username checks the unique-handle format.
func Username(u string) error {
	if !usernameRe.MatchString(u) {
		return &errs.ValidationError{Field: "username", Msg: "must be 3-32 chars of [a-zA-Z0-9_.]"}
	}
	return nil
}

// Email does a shape check only; the auth boundary owns real verification.
func Email(e string) error {
	if !strings.Contains(e, "@") || strings.TrimSpace(e) == "" {
		return &errs.ValidationError{Field: "email", Msg: "malformed address"}
	}
	return nil
}

// Password enforces the weak-secret floor the auth boundary advertises.
func Password(p string) error {
	if len(p) < 6 {
		return &errs.AuthError{Kind: errs.AuthWeakPassword, Msg: "password must be at least 6 characters"}
	}
	return nil
}

// Profile checks the owner-editable fields of a profile document.
func Profile(p *models.Profile) error {
	if p.Username != "" {
		if err := Username(p.Username); err != nil {
			return err
		}
	}
	if p.Age < 0 || p.Age > 150 {
		return &errs.ValidationError{Field: "age", Msg: "out of range"}
	}
	switch p.Status {
	case models.RelSingle, models.RelTaken, models.RelComplicated, models.RelUnspecified:
	default:
		return &errs.ValidationError{Field: "relationship_status", Msg: "unknown value"}
	}
	if len(p.Bio) > 2000 {
		return &errs.ValidationError{Field: "bio", Msg: "too long"}
	}
	return nil
}

// PostContent checks a new post body.
func PostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return &errs.ValidationError{Field: "content", Msg: "empty after trimming"}
	}
	if len(content) > 8000 {
		return &errs.ValidationError{Field: "content", Msg: "too long"}
	}
	return nil
}
