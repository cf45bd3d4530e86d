package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/octowire/pkg/cache"
	"github.com/matzehuels/octowire/pkg/errors"
	"github.com/matzehuels/octowire/pkg/integrations"
)

func TestDispatchBuildsRequest(t *testing.T) {
	var got *http.Request
	var body []byte
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		body, _ = io.ReadAll(r.Body)
		jsonReply(http.StatusOK, `{}`)(w, r)
	}), WithToken("secret"))

	_, err := c.Dispatch(context.Background(), "/repos/octocat/hello-world/issues", &RequestOptions{
		Method:  http.MethodPost,
		Query:   map[string]string{"state": "open", "page": "1"},
		Params:  map[string]string{"page": "2"},
		Headers: map[string]string{"Accept": "application/vnd.github.raw"},
		Body:    map[string]string{"title": "hello"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}

	if got.Method != http.MethodPost {
		t.Errorf("Method = %s, want POST", got.Method)
	}
	if got.URL.Path != "/repos/octocat/hello-world/issues" {
		t.Errorf("Path = %s", got.URL.Path)
	}
	q := got.URL.Query()
	if q.Get("state") != "open" || q.Get("page") != "2" {
		t.Errorf("Query = %v, want state=open page=2", q)
	}
	if h := got.Header.Get("Accept"); h != "application/vnd.github.raw" {
		t.Errorf("Accept = %q, want override", h)
	}
	if h := got.Header.Get("Authorization"); h != "token secret" {
		t.Errorf("Authorization = %q", h)
	}
	if h := got.Header.Get("User-Agent"); h != "octowire-test" {
		t.Errorf("User-Agent = %q", h)
	}
	if got.Header.Get("If-None-Match") != "" {
		t.Error("If-None-Match should not be sent without an ETag")
	}
	if string(body) != `{"title":"hello"}` {
		t.Errorf("body = %s", body)
	}
}

func TestDispatchCompareEndpoint(t *testing.T) {
	var path string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		jsonReply(http.StatusOK, `{"status":"ahead","ahead_by":2}`)(w, r)
	}))

	resp, err := c.Dispatch(context.Background(), "/repos/octocat/hello-world/compare/main...feature", nil)
	if err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if path != "/repos/octocat/hello-world/compare/main...feature" {
		t.Errorf("Path = %q", path)
	}
	if data, _ := resp.Data.(map[string]any); data["status"] != "ahead" {
		t.Errorf("Data = %v", resp.Data)
	}
}

func TestDispatchNilTransportResponse(t *testing.T) {
	rt := &recordingTransport{reply: func(*integrations.Request) (*integrations.Response, error) {
		return nil, nil
	}}
	c := New(WithTransport(rt))

	resp, err := c.Dispatch(context.Background(), "/zen", nil)
	if !errors.Is(err, errors.ErrCodeGeneric) {
		t.Fatalf("Dispatch() error = %v, want GENERIC_ERROR", err)
	}
	if resp != nil {
		t.Errorf("Dispatch() response = %+v, want nil", resp)
	}
	if _, ok := c.LastRateLimit(); ok {
		t.Error("LastRateLimit() should stay unknown without a response")
	}
}

func TestDispatchBodyEncoding(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
	}{
		{"nil", nil, ""},
		{"bytes", []byte("raw"), "raw"},
		{"string", "# Title", "# Title"},
		{"reader", strings.NewReader("stream"), "stream"},
		{"struct", struct {
			Text string `json:"text"`
		}{"hi"}, `{"text":"hi"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &recordingTransport{}
			c := New(WithTransport(rt))
			if _, err := c.Dispatch(context.Background(), "/markdown", &RequestOptions{Method: "POST", Body: tt.body}); err != nil {
				t.Fatalf("Dispatch() error: %v", err)
			}
			if got := string(rt.last().Body); got != tt.want {
				t.Errorf("Body = %q, want %q", got, tt.want)
			}
		})
	}

	c := New(WithTransport(&recordingTransport{}))
	_, err := c.Dispatch(context.Background(), "/markdown", &RequestOptions{Body: func() {}})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unencodable body error = %v, want INVALID_INPUT", err)
	}
}

func TestDispatchRejectsInvalidEndpoint(t *testing.T) {
	rt := &recordingTransport{}
	c := New(WithTransport(rt))
	for _, endpoint := range []string{"", "zen", "https://evil.example/zen", "/repos/../admin", "/a b"} {
		t.Run(endpoint, func(t *testing.T) {
			resp, err := c.Dispatch(context.Background(), endpoint, nil)
			if resp != nil || !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Dispatch(%q) = %v, %v, want INVALID_INPUT", endpoint, resp, err)
			}
		})
	}
	if len(rt.reqs) != 0 {
		t.Errorf("transport called %d times, want 0", len(rt.reqs))
	}
}

func TestDispatchPayloads(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(*Response) bool
	}{
		{"json", jsonReply(200, `{"login":"octocat"}`), func(r *Response) bool {
			m, ok := r.Data.(map[string]any)
			return ok && m["login"] == "octocat"
		}},
		{"no content", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}, func(r *Response) bool { return r.Status == 204 && r.Data == nil }},
		{"text", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain;charset=utf-8")
			io.WriteString(w, "Half measures are as bad as nothing at all.")
		}, func(r *Response) bool { return r.Data == "Half measures are as bad as nothing at all." }},
		{"zip", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/zip")
			w.Write([]byte{'P', 'K', 3, 4})
		}, func(r *Response) bool {
			b, ok := r.Data.([]byte)
			return ok && len(b) == 4
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testClient(t, tt.handler)
			resp, err := c.Dispatch(context.Background(), "/zen", nil)
			if err != nil {
				t.Fatalf("Dispatch() error: %v", err)
			}
			if !tt.check(resp) {
				t.Errorf("unexpected response: status=%d data=%#v", resp.Status, resp.Data)
			}
		})
	}
}

func TestDispatchAPIErrors(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		handler  http.HandlerFunc
		want     errors.Code
	}{
		{"bad credentials", "/user", jsonReply(401, `{"message":"Bad credentials"}`), errors.ErrCodeAuthentication},
		{"not found", "/repos/a/missing", jsonReply(404, `{"message":"Not Found"}`), errors.ErrCodeNotFound},
		{"rate limited", "/users/x", jsonReply(403, `{"message":"API rate limit exceeded"}`), errors.ErrCodeRateLimited},
		{"graphql", GraphQLEndpoint, jsonReply(200, `{"errors":[{"message":"a"},{"message":"b"}]}`), errors.ErrCodeGraphQL},
		{"server error", "/zen", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}, errors.ErrCodeGeneric},
		{"undecodable json", "/zen", jsonReply(200, `{"truncated":`), errors.ErrCodeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testClient(t, tt.handler)
			resp, err := c.Dispatch(context.Background(), tt.endpoint, &RequestOptions{Method: http.MethodPost})
			if got := errors.GetCode(err); got != tt.want {
				t.Fatalf("code = %q (%v), want %s", got, err, tt.want)
			}
			if resp == nil {
				t.Fatal("API errors should come with the Response")
			}
		})
	}
}

func TestDispatchTransportErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		c := New(WithBaseURL(server.URL), WithClientName("t"))
		resp, err := c.Dispatch(context.Background(), "/zen", nil)
		if resp != nil || !errors.Is(err, errors.ErrCodeConnection) {
			t.Errorf("Dispatch() = %v, %v, want CONNECTION_ERROR", resp, err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		c := New(WithBaseURL(server.URL), WithClientName("t"))
		_, err := c.Dispatch(context.Background(), "/zen", &RequestOptions{Timeout: 50 * time.Millisecond})
		if !errors.Is(err, errors.ErrCodeConnection) {
			t.Fatalf("error = %v, want CONNECTION_ERROR", err)
		}
		terr, ok := integrations.IsTransportError(err)
		if !ok || terr.Kind != integrations.KindTimeout {
			t.Errorf("transport error = %v, want timeout kind", err)
		}
		if !strings.Contains(err.Error(), "Timeout of 0.05 reached") {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("unexpected", func(t *testing.T) {
		rt := &recordingTransport{reply: func(req *integrations.Request) (*integrations.Response, error) {
			return nil, &integrations.TransportError{Kind: integrations.KindUnexpected, Method: req.Method, URL: req.URL, Cause: io.ErrUnexpectedEOF}
		}}
		c := New(WithTransport(rt))
		_, err := c.Dispatch(context.Background(), "/zen", nil)
		if !errors.Is(err, errors.ErrCodeGeneric) {
			t.Errorf("error = %v, want GENERIC_ERROR", err)
		}
	})

	t.Run("foreign error", func(t *testing.T) {
		rt := &recordingTransport{reply: func(*integrations.Request) (*integrations.Response, error) {
			return nil, io.EOF
		}}
		c := New(WithTransport(rt))
		_, err := c.Dispatch(context.Background(), "/zen", nil)
		if !errors.Is(err, errors.ErrCodeGeneric) {
			t.Errorf("error = %v, want GENERIC_ERROR", err)
		}
	})
}

func TestDispatchETags(t *testing.T) {
	s := &scripted{steps: []http.HandlerFunc{
		jsonReply(200, `[]`, "ETag", `W/"v1"`),
		notModified,
	}}
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c, _ := testClient(t, s, WithETagStore(store))
	ctx := context.Background()

	// First call: nothing stored yet.
	if _, err := c.Dispatch(ctx, "/repos/a/b/events", &RequestOptions{UseStoredETag: true}); err != nil {
		t.Fatalf("first Dispatch() error: %v", err)
	}
	if h := s.request(0).Header.Get("If-None-Match"); h != "" {
		t.Errorf("first If-None-Match = %q, want empty", h)
	}

	// Second call picks the stored validator up.
	_, err = c.Dispatch(ctx, "/repos/a/b/events", &RequestOptions{UseStoredETag: true})
	if !IsNotModified(err) {
		t.Fatalf("second Dispatch() error = %v, want NOT_MODIFIED", err)
	}
	if h := s.request(1).Header.Get("If-None-Match"); h != `W/"v1"` {
		t.Errorf("second If-None-Match = %q", h)
	}

	// An explicit ETag wins over the store.
	c.Dispatch(ctx, "/repos/a/b/events", &RequestOptions{ETag: `"explicit"`, UseStoredETag: true})
	if h := s.request(2).Header.Get("If-None-Match"); h != `"explicit"` {
		t.Errorf("explicit If-None-Match = %q", h)
	}

	// Without UseStoredETag the store is not consulted.
	c.Dispatch(ctx, "/repos/a/b/events", nil)
	if h := s.request(3).Header.Get("If-None-Match"); h != "" {
		t.Errorf("If-None-Match = %q, want empty", h)
	}
}

func TestDispatchDoesNotStoreETagForWrites(t *testing.T) {
	rt := &recordingTransport{reply: func(*integrations.Request) (*integrations.Response, error) {
		h := http.Header{}
		h.Set("ETag", `"w"`)
		return &integrations.Response{StatusCode: 200, Header: h}, nil
	}}
	store, _ := cache.NewFileCache(t.TempDir())
	c := New(WithTransport(rt), WithETagStore(store), WithBaseURL("https://x.test"))
	ctx := context.Background()

	c.Dispatch(ctx, "/markdown", &RequestOptions{Method: http.MethodPost})
	if _, hit, _ := store.Get(ctx, cache.ETagKey("https://x.test/markdown")); hit {
		t.Error("POST response ETag should not be stored")
	}

	c.Dispatch(ctx, "/markdown", nil)
	data, hit, _ := store.Get(ctx, cache.ETagKey("https://x.test/markdown"))
	if !hit || string(data) != `"w"` {
		t.Errorf("GET ETag stored = %q, %v", data, hit)
	}
}

func TestLastRateLimit(t *testing.T) {
	c, _ := testClient(t, jsonReply(200, `{}`,
		"X-RateLimit-Limit", "60",
		"X-RateLimit-Remaining", "59",
		"X-RateLimit-Reset", "1717243200",
	))
	if _, ok := c.LastRateLimit(); ok {
		t.Error("LastRateLimit() before any request should be unknown")
	}
	if _, err := c.Dispatch(context.Background(), "/zen", nil); err != nil {
		t.Fatal(err)
	}
	rl, ok := c.LastRateLimit()
	if !ok || rl.Limit != 60 || rl.Remaining != 59 {
		t.Errorf("LastRateLimit() = %+v, %v", rl, ok)
	}
}

func TestDispatchConcurrent(t *testing.T) {
	c, _ := testClient(t, jsonReply(200, `{"ok":true}`))
	ctx := context.Background()

	errs := make(chan error, 20)
	for range 20 {
		go func() {
			resp, err := c.Dispatch(ctx, "/zen", nil)
			if err == nil {
				var v struct{ OK bool }
				err = json.Unmarshal(resp.Raw, &v)
			}
			errs <- err
		}()
	}
	for range 20 {
		if err := <-errs; err != nil {
			t.Errorf("Dispatch() error: %v", err)
		}
	}
}
