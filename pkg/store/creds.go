package store

import (
	"encoding/json"
	"fmt"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
)

// Credential is the auth boundary's record: identity plus password hash.
// It never leaves this package and the auth package.
type Credential struct {
	Identity models.Identity `json:"identity"`
	Hash     []byte          `json:"hash"`
}

// SaveCredential writes the credential record and the email lookup index.
// Two independent writes, consistent with the rest of the store.
func SaveCredential(c Credential) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	if err := set("cred:"+c.Identity.ID, data); err != nil {
		return err
	}
	return set("index:email:"+c.Identity.Email, []byte(c.Identity.ID))
}

// GetCredential loads the credential record for an identity id.
func GetCredential(uid string) (Credential, error) {
	var c Credential
	v, found, err := get("cred:" + uid)
	if err != nil {
		return c, err
	}
	if !found {
		return c, &errs.NotFoundError{Kind: "credential", ID: uid}
	}
	if err := json.Unmarshal(v, &c); err != nil {
		return c, fmt.Errorf("invalid credential document %s: %w", uid, err)
	}
	return c, nil
}

// LookupEmail resolves an email address to an identity id.
func LookupEmail(email string) (string, error) {
	v, found, err := get("index:email:" + email)
	if err != nil {
		return "", err
	}
	if !found {
		return "", &errs.NotFoundError{Kind: "email", ID: email}
	}
	return string(v), nil
}
