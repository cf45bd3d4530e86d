package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/matzehuels/octowire/pkg/integrations/github"
)

func testSession(t *testing.T, ttl time.Duration) *Session {
	t.Helper()
	sess, err := New("gho_token", &github.User{ID: 583231, Login: "octocat"}, "repo", ttl)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return sess
}

func TestNew(t *testing.T) {
	sess := testSession(t, 0)
	if sess.ID == "" || sess.AccessToken != "gho_token" || sess.Scope != "repo" {
		t.Errorf("New() = %+v", sess)
	}
	if !sess.ExpiresAt.IsZero() || sess.IsExpired() {
		t.Error("session without ttl should never expire")
	}
	if sess.Login() != "octocat" || sess.UserID() != "github:583231" {
		t.Errorf("Login() = %q, UserID() = %q", sess.Login(), sess.UserID())
	}

	other := testSession(t, time.Hour)
	if other.ID == sess.ID {
		t.Error("GenerateID() should not repeat")
	}
	if other.IsExpired() {
		t.Error("fresh session should not be expired")
	}

	var empty *Session
	if empty.Login() != "" || empty.UserID() != "" {
		t.Error("nil session should have no identity")
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "sessions")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	if store.Path() != dir {
		t.Errorf("Path() = %q, want %q", store.Path(), dir)
	}

	sess := testSession(t, 0)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	info, err := os.Stat(store.sessionPath(sess.ID))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file mode = %v, want 0600", perm)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if got.AccessToken != sess.AccessToken || got.Login() != "octocat" {
		t.Errorf("Get() = %+v", got)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("Get() after Delete() should return nil")
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Errorf("second Delete() error: %v", err)
	}
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, _ := NewFileStore(t.TempDir())

	expired := testSession(t, time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	live := testSession(t, time.Hour)
	forever := testSession(t, 0)
	for _, s := range []*Session{expired, live, forever} {
		store.Set(ctx, s)
	}

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if _, err := os.Stat(store.sessionPath(expired.ID)); !os.IsNotExist(err) {
		t.Error("Cleanup() should remove expired sessions")
	}
	for _, s := range []*Session{live, forever} {
		if got, _ := store.Get(ctx, s.ID); got == nil {
			t.Errorf("session %s should survive Cleanup()", s.ID)
		}
	}

	store.Set(ctx, expired)
	if got, err := store.Get(ctx, expired.ID); got != nil || err != nil {
		t.Errorf("Get(expired) = %v, %v, want nil, nil", got, err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	os.WriteFile(store.sessionPath("bad"), []byte("{not json"), 0600)
	if _, err := store.Get(context.Background(), "bad"); err == nil {
		t.Error("Get() of a corrupt file should fail")
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "octowire", "sessions"); dir != want {
		t.Errorf("DefaultDir() = %q, want %q", dir, want)
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()
	store := NewKeyringStore("")

	if !store.Available() {
		t.Fatal("mock keyring should be available")
	}

	sess := testSession(t, 0)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, err := store.Get(ctx, sess.ID)
	if err != nil || got == nil || got.AccessToken != "gho_token" {
		t.Fatalf("Get() = %+v, %v", got, err)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if got, err := store.Get(ctx, sess.ID); got != nil || err != nil {
		t.Errorf("Get() after Delete() = %v, %v", got, err)
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Errorf("Delete() of a missing entry = %v", err)
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Errorf("Cleanup() error: %v", err)
	}
}

func TestKeyringStoreUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("The name org.freedesktop.secrets was not provided by any .service files (dbus)"))
	defer keyring.MockInit()

	store := NewKeyringStore("octowire-test")
	if store.Available() {
		t.Error("Available() should be false")
	}
	_, err := store.Get(context.Background(), "github")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Get() error = %v, want ErrUnavailable", err)
	}
}

func TestCLIStore(t *testing.T) {
	ctx := context.Background()

	t.Run("keychain", func(t *testing.T) {
		keyring.MockInit()
		files, _ := NewFileStore(t.TempDir())
		store := NewCLIStoreWith(NewKeyringStore(""), files)

		where, err := store.SaveSession(ctx, testSession(t, 0))
		if err != nil || where != "keychain" {
			t.Fatalf("SaveSession() = %q, %v", where, err)
		}
		if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
			t.Error("no session file should be written when the keychain works")
		}
		got, err := store.GetSession(ctx)
		if err != nil || got.Login() != "octocat" || got.ID != defaultCLISessionID {
			t.Errorf("GetSession() = %+v, %v", got, err)
		}
		if err := store.DeleteSession(ctx); err != nil {
			t.Fatal(err)
		}
		if got, _ := store.GetSession(ctx); got != nil {
			t.Error("GetSession() after DeleteSession() should be nil")
		}
	})

	t.Run("fallback", func(t *testing.T) {
		keyring.MockInitWithError(errors.New("keychain is locked"))
		defer keyring.MockInit()
		files, _ := NewFileStore(t.TempDir())
		store := NewCLIStoreWith(NewKeyringStore(""), files)

		where, err := store.SaveSession(ctx, testSession(t, 0))
		if err != nil || where != store.Path() {
			t.Fatalf("SaveSession() = %q, %v, want file", where, err)
		}
		got, err := store.GetSession(ctx)
		if err != nil || got == nil {
			t.Fatalf("GetSession() = %v, %v", got, err)
		}
		if err := store.DeleteSession(ctx); err != nil {
			t.Errorf("DeleteSession() error: %v", err)
		}
	})

	t.Run("files only", func(t *testing.T) {
		files, _ := NewFileStore(t.TempDir())
		store := NewCLIStoreWith(nil, files)
		if got, err := store.GetSession(ctx); got != nil || err != nil {
			t.Errorf("GetSession() on empty store = %v, %v", got, err)
		}
	})
}
