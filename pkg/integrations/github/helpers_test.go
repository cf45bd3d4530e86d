package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/octowire/pkg/clock"
	"github.com/matzehuels/octowire/pkg/integrations"
)

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// testClient creates a Client pointed at a test server.
func testClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithBaseURL(server.URL), WithClientName("octowire-test")}, opts...)
	c := New(opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Close(ctx)
	})
	return c, server
}

// scripted replies to successive requests with the given handlers, repeating
// the last one.
type scripted struct {
	mu       sync.Mutex
	steps    []http.HandlerFunc
	requests []*http.Request
}

func (s *scripted) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(context.Background()))
	i := min(len(s.requests)-1, len(s.steps)-1)
	step := s.steps[i]
	s.mu.Unlock()
	step(w, r)
}

func (s *scripted) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *scripted) request(i int) *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i]
}

func jsonReply(status int, body string, headers ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		for i := 0; i+1 < len(headers); i += 2 {
			w.Header().Set(headers[i], headers[i+1])
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func notModified(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotModified)
}

func fakeClock() *clock.FakeClock { return clock.Fake(epoch) }

// recordingTransport answers every request with reply and records it.
type recordingTransport struct {
	mu    sync.Mutex
	reqs  []*integrations.Request
	reply func(*integrations.Request) (*integrations.Response, error)
}

func (rt *recordingTransport) Send(ctx context.Context, req *integrations.Request) (*integrations.Response, error) {
	rt.mu.Lock()
	rt.reqs = append(rt.reqs, req)
	rt.mu.Unlock()
	if rt.reply == nil {
		return &integrations.Response{StatusCode: http.StatusOK, Header: http.Header{}}, nil
	}
	return rt.reply(req)
}

func (rt *recordingTransport) last() *integrations.Request {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.reqs[len(rt.reqs)-1]
}
