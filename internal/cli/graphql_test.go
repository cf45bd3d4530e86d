package cli

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/octowire/pkg/errors"
)

func TestReadQuery(t *testing.T) {
	file := filepath.Join(t.TempDir(), "query.graphql")
	if err := os.WriteFile(file, []byte("query { viewer { login } }\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		q       string
		stdin   string
		want    string
		wantErr string
	}{
		{name: "inline", q: "{ viewer { login } }", want: "{ viewer { login } }"},
		{name: "file", q: "@" + file, want: "query { viewer { login } }\n"},
		{name: "stdin", q: "-", stdin: "{ rateLimit { cost } }", want: "{ rateLimit { cost } }"},
		{name: "empty stdin", q: "-", stdin: "  \n", wantErr: "query is empty"},
		{name: "missing file", q: "@" + file + ".missing", wantErr: "read query"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readQuery(tt.q, strings.NewReader(tt.stdin))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("readQuery() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("readQuery() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("readQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGraphQLCommand(t *testing.T) {
	srv := apiServer(t, map[string]http.HandlerFunc{
		"POST /graphql": func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Query     string         `json:"query"`
				Variables map[string]any `json:"variables"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if !strings.Contains(body.Query, "viewer") {
				writeJSON(w, http.StatusOK, map[string]any{
					"errors": []map[string]any{{"message": "Field 'nope' doesn't exist on type 'Query'"}},
				})
				return
			}
			if want := map[string]any{"first": float64(5)}; !reflect.DeepEqual(body.Variables, want) {
				t.Errorf("variables = %v, want %v", body.Variables, want)
			}
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"viewer": map[string]any{"login": "octocat"}}})
		},
	})

	out, err := runCLI(t, srv.URL, "graphql", "-q", "query($first: Int) { viewer { login } }", "-F", "first=5", "--jq", ".viewer.login")
	if err != nil {
		t.Fatalf("graphql error: %v", err)
	}
	if out != "octocat\n" {
		t.Errorf("graphql --jq = %q, want %q", out, "octocat\n")
	}

	_, err = runCLI(t, srv.URL, "graphql", "-q", "{ nope }")
	if !errors.Is(err, errors.ErrCodeGraphQL) {
		t.Errorf("error = %v, want GRAPHQL_ERROR", err)
	}

	if _, err := runCLI(t, srv.URL, "graphql"); err == nil {
		t.Error("graphql without --query should fail")
	}
}
