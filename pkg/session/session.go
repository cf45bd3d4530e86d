// Package session stores the credentials of the octowire CLI.
//
// A [Session] holds a GitHub access token obtained through the device flow
// together with the account it belongs to. Two [Store] backends exist:
//   - [KeyringStore]: the operating system keychain via go-keyring
//   - [FileStore]: JSON files under ~/.config/octowire/sessions/
//
// [CLIStore] combines them for the CLI, preferring the keychain and falling
// back to files when no keychain service is reachable.
//
// # Usage
//
//	store, err := session.NewCLIStore("")
//	if err != nil {
//	    return err
//	}
//	sess, err := session.New(token.AccessToken, user, token.Scope, 0)
//	if err != nil {
//	    return err
//	}
//	store.SaveSession(ctx, sess)
//
//	sess, err = store.GetSession(ctx) // nil, nil when logged out
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/octowire/pkg/integrations/github"
)

// ErrUnavailable is returned when a backend cannot be reached, such as a
// locked keychain or a missing Secret Service.
var ErrUnavailable = errors.New("session backend unavailable")

// Session stores user session data.
type Session struct {
	ID          string       `json:"id"`
	AccessToken string       `json:"access_token"`
	Scope       string       `json:"scope,omitempty"`
	User        *github.User `json:"user"`
	ExpiresAt   time.Time    `json:"expires_at,omitzero"`
	CreatedAt   time.Time    `json:"created_at"`
}

// IsExpired reports whether the session has passed its expiry. Sessions
// without an expiry never expire; GitHub device tokens stay valid until
// revoked.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Login returns the account login, or "" when unknown.
func (s *Session) Login() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.Login
}

// UserID returns a storage-compatible user identifier of the form
// "github:{id}".
func (s *Session) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return fmt.Sprintf("github:%d", s.User.ID)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions where the backend can enumerate them.
	Cleanup(ctx context.Context) error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a session for accessToken. ttl <= 0 means no expiry.
func New(accessToken string, user *github.User, scope string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:          id,
		AccessToken: accessToken,
		Scope:       scope,
		User:        user,
		CreatedAt:   now,
	}
	if ttl > 0 {
		sess.ExpiresAt = now.Add(ttl)
	}
	return sess, nil
}
