package session

import (
	"context"
	"errors"
	"fmt"
)

const defaultCLISessionID = "github"

// CLIStore is the single-session store used by the octowire CLI.
type CLIStore struct {
	primary   Store
	fallback  *FileStore
	sessionID string
}

// NewCLIStore creates the CLI store. Sessions go to the keychain when it is
// available and to files under dir (or [DefaultDir]) otherwise.
func NewCLIStore(dir string) (*CLIStore, error) {
	files, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	c := &CLIStore{fallback: files, sessionID: defaultCLISessionID}
	if kr := NewKeyringStore(""); kr.Available() {
		c.primary = kr
	}
	return c, nil
}

// NewCLIStoreWith creates a CLI store over explicit backends. primary may be
// nil.
func NewCLIStoreWith(primary Store, fallback *FileStore) *CLIStore {
	return &CLIStore{primary: primary, fallback: fallback, sessionID: defaultCLISessionID}
}

// GetSession retrieves the CLI session, consulting the keychain first.
func (c *CLIStore) GetSession(ctx context.Context) (*Session, error) {
	if c.primary != nil {
		sess, err := c.primary.Get(ctx, c.sessionID)
		if err == nil && sess != nil {
			return sess, nil
		}
		if err != nil && !errors.Is(err, ErrUnavailable) {
			return nil, err
		}
	}
	return c.fallback.Get(ctx, c.sessionID)
}

// SaveSession stores the CLI session. It returns the name of the backend
// that took it.
func (c *CLIStore) SaveSession(ctx context.Context, sess *Session) (string, error) {
	sess.ID = c.sessionID
	if c.primary != nil {
		err := c.primary.Set(ctx, sess)
		if err == nil {
			return "keychain", nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return "", err
		}
	}
	if err := c.fallback.Set(ctx, sess); err != nil {
		return "", err
	}
	return c.Path(), nil
}

// DeleteSession removes the CLI session from every backend.
func (c *CLIStore) DeleteSession(ctx context.Context) error {
	var errs []error
	if c.primary != nil {
		if err := c.primary.Delete(ctx, c.sessionID); err != nil && !errors.Is(err, ErrUnavailable) {
			errs = append(errs, fmt.Errorf("keychain: %w", err))
		}
	}
	if err := c.fallback.Delete(ctx, c.sessionID); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Path returns the session file path.
func (c *CLIStore) Path() string {
	return c.fallback.sessionPath(c.sessionID)
}
