package github

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/octowire/pkg/cache"
	"github.com/matzehuels/octowire/pkg/clock"
	"github.com/matzehuels/octowire/pkg/integrations"
)

// Client is a GitHub REST and GraphQL client. Every call goes through
// Dispatch. A Client is safe for concurrent use.
type Client struct {
	descriptor Descriptor
	transport  integrations.Transport
	logger     *log.Logger
	clock      clock.Clock
	etags      cache.Cache
	last       atomic.Pointer[http.Header]

	repos  *ReposService
	issues *IssuesService
	users  *UsersService
	orgs   *OrgsService
	user   *UserService
}

// New creates a Client.
func New(opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.finish()

	c := &Client{
		descriptor: newDescriptor(o, o.logger),
		transport:  o.transport,
		logger:     o.logger,
		clock:      o.clock,
		etags:      o.etags,
	}
	c.repos = &ReposService{client: c, events: newEventService(c, "repos")}
	c.issues = &IssuesService{client: c}
	c.users = &UsersService{client: c, events: newEventService(c, "users")}
	c.orgs = &OrgsService{client: c, events: newEventService(c, "orgs")}
	c.user = &UserService{client: c}
	return c
}

// Descriptor returns the fixed request configuration.
func (c *Client) Descriptor() Descriptor { return c.descriptor }

func (c *Client) Repos() *ReposService   { return c.repos }
func (c *Client) Issues() *IssuesService { return c.issues }
func (c *Client) Users() *UsersService   { return c.users }
func (c *Client) Orgs() *OrgsService     { return c.orgs }

// User is the authenticated user.
func (c *Client) User() *UserService { return c.user }

// EventsFor returns the event service matching t.Space.
func (c *Client) EventsFor(t Target) *EventService {
	switch t.Space {
	case "users":
		return c.users.events
	case "orgs":
		return c.orgs.events
	default:
		return c.repos.events
	}
}

// LastRateLimit reads the rate limit headers of the most recent response.
// ok is false before any response has been received.
func (c *Client) LastRateLimit() (rl RateLimit, ok bool) {
	h := c.last.Load()
	if h == nil {
		return RateLimit{}, false
	}
	return parseRateLimit(*h), true
}

// Close cancels every event subscription, waits for their loops to exit and
// releases idle transport connections. It returns ctx.Err() if ctx ends
// first; the transport is left open in that case.
func (c *Client) Close(ctx context.Context) error {
	services := []*EventService{c.repos.events, c.users.events, c.orgs.events}
	for _, s := range services {
		s.shutdown()
	}
	for _, s := range services {
		if err := s.Wait(ctx); err != nil {
			return err
		}
	}
	if closer, ok := c.transport.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
	return nil
}

// call dispatches and decodes the JSON body into T, replacing resp.Data.
func call[T any](ctx context.Context, c *Client, endpoint string, opts *RequestOptions) (T, *Response, error) {
	var v T
	resp, err := c.Dispatch(ctx, endpoint, opts)
	if err != nil {
		return v, resp, err
	}
	if err := resp.Decode(&v); err != nil {
		return v, resp, err
	}
	resp.Data = v
	return v, resp, nil
}

// Generic calls any endpoint without typing the result.
func (c *Client) Generic(ctx context.Context, endpoint string, opts *RequestOptions) (*Response, error) {
	return c.Dispatch(ctx, endpoint, opts)
}

// Emojis lists the emoji names and image URLs usable on GitHub.
func (c *Client) Emojis(ctx context.Context) (map[string]string, *Response, error) {
	return call[map[string]string](ctx, c, "/emojis", nil)
}

// Versions lists the supported REST API versions.
func (c *Client) Versions(ctx context.Context) ([]string, *Response, error) {
	return call[[]string](ctx, c, "/versions", nil)
}

// Meta returns information about GitHub's services.
func (c *Client) Meta(ctx context.Context) (*Meta, *Response, error) {
	return call[*Meta](ctx, c, "/meta", nil)
}

// RateLimit fetches the quota overview. It does not count against the limit.
func (c *Client) RateLimit(ctx context.Context) (*RateLimitOverview, *Response, error) {
	return call[*RateLimitOverview](ctx, c, "/rate_limit", nil)
}

// Zen returns a random line of GitHub zen.
func (c *Client) Zen(ctx context.Context) (string, *Response, error) {
	return textCall(ctx, c, "/zen", nil)
}

// Octocat returns ASCII art of the octocat saying s (random if empty).
func (c *Client) Octocat(ctx context.Context, s string) (string, *Response, error) {
	opts := &RequestOptions{}
	if s != "" {
		opts.Params = map[string]string{"s": s}
	}
	return textCall(ctx, c, "/octocat", opts)
}

// Markdown renders text as HTML. When repoContext ("owner/repo") is set the
// text is rendered as GitHub Flavored Markdown with references resolved
// against that repository.
func (c *Client) Markdown(ctx context.Context, text, repoContext string) (string, *Response, error) {
	body := map[string]string{"text": text, "mode": "markdown"}
	if repoContext != "" {
		body["mode"] = "gfm"
		body["context"] = repoContext
	}
	return textCall(ctx, c, "/markdown", &RequestOptions{Method: http.MethodPost, Body: body})
}

func textCall(ctx context.Context, c *Client, endpoint string, opts *RequestOptions) (string, *Response, error) {
	resp, err := c.Dispatch(ctx, endpoint, opts)
	if err != nil {
		return "", resp, err
	}
	if s, ok := resp.Data.(string); ok {
		return s, resp, nil
	}
	return string(resp.Raw), resp, nil
}

// GraphQL posts query with variables to /graphql. On success resp.Data is
// the "data" member of the reply; errors inside the body fail with
// GRAPHQL_ERROR.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	payload := map[string]any{"query": query}
	if variables != nil {
		payload["variables"] = variables
	}
	resp, err := c.Dispatch(ctx, GraphQLEndpoint, &RequestOptions{Method: http.MethodPost, Body: payload})
	if err != nil {
		return resp, err
	}
	if obj, ok := resp.Data.(map[string]any); ok {
		resp.Data = obj["data"]
	}
	return resp, nil
}
