package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// runCLI executes octowire against baseURL with an isolated environment and
// returns what the command wrote to its output.
func runCLI(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("GH_TOKEN", "")
	t.Setenv("OCTOWIRE_BASE_URL", baseURL)

	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, &out, &errOut)
	return out.String(), err
}

// apiServer serves handlers keyed by "METHOD /path" and fails the test on
// anything else.
func apiServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL)
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRootCommandTree(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	want := []string{"api", "watch", "auth", "rate-limit", "graphql", "zen", "cache", "config", "completion"}
	for _, name := range want {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{name})
			if err != nil {
				t.Fatalf("Find(%q) error: %v", name, err)
			}
			if cmd.Name() != name {
				t.Errorf("Find(%q) = %q", name, cmd.Name())
			}
		})
	}

	for _, flag := range []string{"config", "token", "no-cache"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestExecuteVersion(t *testing.T) {
	var out bytes.Buffer
	if err := Execute(context.Background(), []string{"--version"}, &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("Execute(--version) error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "octowire version ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	err := Execute(context.Background(), []string{"nope"}, &bytes.Buffer{}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("Execute(nope) error = %v, want unknown command", err)
	}
}

func TestResolveToken(t *testing.T) {
	tests := []struct {
		name       string
		flag       string
		env        string
		wantToken  string
		wantSource string
	}{
		{"flag wins", "from-flag", "from-env", "from-flag", "flag"},
		{"environment", "", "from-env", "from-env", "environment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			t.Setenv("GITHUB_TOKEN", tt.env)
			c := New(&bytes.Buffer{}, LogInfo)
			c.token = tt.flag

			token, source, err := c.resolveToken(context.Background())
			if err != nil {
				t.Fatalf("resolveToken() error: %v", err)
			}
			if token != tt.wantToken || source != tt.wantSource {
				t.Errorf("resolveToken() = %q, %q, want %q, %q", token, source, tt.wantToken, tt.wantSource)
			}
		})
	}
}

func TestAuthToken(t *testing.T) {
	out, err := runCLI(t, "https://api.github.com", "auth", "token")
	if err != nil {
		t.Fatalf("auth token error: %v", err)
	}
	if out != "test-token\n" {
		t.Errorf("auth token = %q, want %q", out, "test-token\n")
	}

	out, err = runCLI(t, "https://api.github.com", "--token", "override", "auth", "token")
	if err != nil {
		t.Fatalf("auth token --token error: %v", err)
	}
	if out != "override\n" {
		t.Errorf("auth token --token = %q, want %q", out, "override\n")
	}
}

func TestZen(t *testing.T) {
	srv := apiServer(t, map[string]http.HandlerFunc{
		"GET /zen": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "token test-token" {
				t.Errorf("Authorization = %q", got)
			}
			if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "octowire/") {
				t.Errorf("User-Agent = %q", ua)
			}
			w.Header().Set("Content-Type", "text/plain;charset=utf-8")
			_, _ = w.Write([]byte("Keep it logically awesome."))
		},
	})

	out, err := runCLI(t, srv.URL, "zen")
	if err != nil {
		t.Fatalf("zen error: %v", err)
	}
	if out != "Keep it logically awesome.\n" {
		t.Errorf("zen = %q", out)
	}
}

func TestConfigCommands(t *testing.T) {
	out, err := runCLI(t, "https://ghe.example.com/api/v3", "config", "show")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	if !strings.Contains(out, `base_url = "https://ghe.example.com/api/v3"`) {
		t.Errorf("config show missing base_url override:\n%s", out)
	}
	if strings.Contains(out, "test-token") {
		t.Error("config show must not print the token")
	}

	out, err = runCLI(t, "https://api.github.com", "--config", "/tmp/octowire.toml", "config", "path")
	if err != nil {
		t.Fatalf("config path error: %v", err)
	}
	if out != "/tmp/octowire.toml\n" {
		t.Errorf("config path = %q", out)
	}
}

func TestCachePathAndClear(t *testing.T) {
	out, err := runCLI(t, "https://api.github.com", "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "octowire/etags") {
		t.Errorf("cache path = %q, want .../octowire/etags", out)
	}

	if _, err := runCLI(t, "https://api.github.com", "cache", "clear"); err != nil {
		t.Errorf("cache clear error: %v", err)
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := runCLI(t, "https://api.github.com", "completion", shell)
			if err != nil {
				t.Fatalf("completion %s error: %v", shell, err)
			}
			if !strings.Contains(out, "octowire") {
				t.Errorf("completion %s does not mention octowire", shell)
			}
		})
	}

	if _, err := runCLI(t, "https://api.github.com", "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}
