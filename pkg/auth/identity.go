// Package auth is the boundary that issues and validates credentials and
// session tokens, and guards the HTTP surface. The core never stores or
// hashes passwords outside this package.
package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/utils"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/validation"
)

// Boundary issues identities and validates sign-ins against stored
// credentials.
type Boundary struct {
	tokens *TokenSigner
}

// NewBoundary builds the auth boundary with the given token signing
// secret.
func NewBoundary(tokenSecret string) *Boundary {
	return &Boundary{tokens: NewTokenSigner(tokenSecret)}
}

// Tokens exposes the session token signer.
func (b *Boundary) Tokens() *TokenSigner { return b.tokens }

// Register issues a new immutable identity, stores its credential, and
// creates the member profile. Fails with AuthError{emailInUse} when the
// address is already registered, AuthError{weakPassword} below the secret
// floor, and a ValidationError when the username is already held.
func (b *Boundary) Register(email, password, username, displayName string) (models.Identity, error) {
	var id models.Identity
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Email(email); err != nil {
		return id, &errs.AuthError{Kind: errs.AuthInvalidCredential, Msg: err.Error()}
	}
	if err := validation.Password(password); err != nil {
		return id, err
	}
	if err := validation.Username(username); err != nil {
		return id, err
	}
	if _, err := store.LookupEmail(email); err == nil {
		return id, &errs.AuthError{Kind: errs.AuthEmailInUse, Msg: "email already registered: " + email}
	}
	if _, err := store.FindProfileByUsername(username); err == nil {
		return id, &errs.ValidationError{Field: "username", Msg: "already taken: " + username}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return id, err
	}
	id = models.Identity{ID: utils.GenID(), Email: email, DisplayName: displayName}
	if err := store.SaveCredential(store.Credential{Identity: id, Hash: hash}); err != nil {
		return models.Identity{}, &errs.WriteFailure{Op: "register " + email, Err: err}
	}
	if err := store.SaveProfile(models.Profile{ID: id.ID, Username: username}); err != nil {
		return models.Identity{}, &errs.WriteFailure{Op: "create profile " + id.ID, Err: err}
	}
	logger.Info("identity_registered", "id", id.ID, "email", email)
	return id, nil
}

// SignIn validates credentials. Failure kinds: userNotFound for an
// unknown address, wrongPassword for a hash mismatch, invalidCredential
// for malformed input. Provider (bcrypt/store) messages pass through
// verbatim in the error.
func (b *Boundary) SignIn(email, password string) (models.Identity, error) {
	var id models.Identity
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return id, &errs.AuthError{Kind: errs.AuthInvalidCredential, Msg: "email and password required"}
	}
	uid, err := store.LookupEmail(email)
	if err != nil {
		if errs.IsNotFound(err) {
			return id, &errs.AuthError{Kind: errs.AuthUserNotFound, Msg: "no account for " + email}
		}
		return id, err
	}
	cred, err := store.GetCredential(uid)
	if err != nil {
		return id, err
	}
	if err := bcrypt.CompareHashAndPassword(cred.Hash, []byte(password)); err != nil {
		return id, &errs.AuthError{Kind: errs.AuthWrongPassword, Msg: err.Error()}
	}
	logger.Info("sign_in", "id", cred.Identity.ID)
	return cred.Identity, nil
}

// Identity resolves an identity id back to its immutable record.
func (b *Boundary) Identity(uid string) (models.Identity, error) {
	cred, err := store.GetCredential(uid)
	if err != nil {
		return models.Identity{}, err
	}
	return cred.Identity, nil
}
