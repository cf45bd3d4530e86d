package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name of octowire keychain entries.
const KeyringService = "octowire"

// KeyringStore keeps sessions in the operating system keychain:
//   - macOS: Keychain Access
//   - Linux: Secret Service API (GNOME Keyring, KWallet)
//   - Windows: Credential Manager
//
// Each session is one entry whose secret is the JSON-encoded Session.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keychain store. service defaults to
// [KeyringService].
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = KeyringService
	}
	return &KeyringStore{service: service}
}

// Available probes the keychain with a lookup of a key that never exists.
func (k *KeyringStore) Available() bool {
	_, err := keyring.Get(k.service, "__octowire_availability_probe__")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

func (k *KeyringStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	secret, err := keyring.Get(k.service, sessionID)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, keyringError(err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(secret), &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.IsExpired() {
		_ = keyring.Delete(k.service, sessionID)
		return nil, nil
	}
	return &sess, nil
}

func (k *KeyringStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := keyring.Set(k.service, sess.ID, string(data)); err != nil {
		return keyringError(err)
	}
	return nil
}

func (k *KeyringStore) Delete(ctx context.Context, sessionID string) error {
	if err := keyring.Delete(k.service, sessionID); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return keyringError(err)
	}
	return nil
}

// Cleanup is a no-op: keychains cannot be enumerated through go-keyring.
// Expired entries are removed lazily by Get.
func (k *KeyringStore) Cleanup(ctx context.Context) error { return nil }

func keyringError(err error) error {
	if isKeyringUnavailable(err) {
		return fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
	}
	return fmt.Errorf("keychain error: %w", err)
}

func isKeyringUnavailable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"locked",
		"cannot access",
		"permission denied",
		"failed to unlock",
		"user interaction required",
		"secret service",
		"dbus",
		"user canceled",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

var _ Store = (*KeyringStore)(nil)
