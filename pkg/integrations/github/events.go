package github

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/octowire/pkg/errors"
	"github.com/matzehuels/octowire/pkg/observability"
)

const (
	// DefaultPollInterval is used until the server sends X-Poll-Interval.
	DefaultPollInterval = 60 * time.Second

	// DefaultBackoff is the wait after a transient error.
	DefaultBackoff = 300 * time.Second
)

// EventHandler receives one event. A returned error (or a panic) is
// reported to the ErrorHandler and does not stop the subscription.
type EventHandler func(ctx context.Context, event Event) error

// ErrorHandler receives errors observed by a subscription.
type ErrorHandler func(ctx context.Context, err error)

// EventService polls the events feed of one kind of resource ("repos",
// "users" or "orgs") and owns the subscriptions it creates.
type EventService struct {
	client *Client
	space  string

	mu     sync.Mutex
	subs   map[string]*subscription
	closed bool
	wg     sync.WaitGroup
}

type subscription struct {
	id     string
	name   string
	cancel context.CancelFunc
}

func newEventService(c *Client, space string) *EventService {
	return &EventService{client: c, space: space, subs: make(map[string]*subscription)}
}

// Subscribe starts polling /{space}/{name}/events in the background and
// returns the subscription id. Only events created after the call are
// delivered, oldest first; feed timestamps have second precision, so events
// from the second of the call count as new. onError may be nil. opts are applied to every
// poll; Method and ETag are managed by the subscription.
//
// The subscription ends on Unsubscribe, Client.Close, cancellation of ctx
// or a terminal error (AUTHENTICATION_ERROR, NOT_FOUND, PERMISSION_DENIED).
// After Client.Close it fails with GENERIC_ERROR.
func (s *EventService) Subscribe(ctx context.Context, name string, onEvent EventHandler, onError ErrorHandler, opts *RequestOptions) (string, error) {
	if onEvent == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "event handler is required")
	}
	if err := s.validateName(name); err != nil {
		return "", err
	}

	var base RequestOptions
	if opts != nil {
		base = *opts
	}

	loopCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{id: uuid.NewString(), name: name, cancel: cancel}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return "", errors.New(errors.ErrCodeGeneric, "client is closed")
	}
	s.subs[sub.id] = sub
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.remove(sub.id)
		s.run(loopCtx, sub, base, onEvent, onError)
	}()
	return sub.id, nil
}

// Unsubscribe cancels the given subscriptions, or all of them when no id is
// given. Unknown ids are ignored. It does not wait for loops to exit; an
// in-flight poll completes and its result is discarded.
func (s *EventService) Unsubscribe(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		for id, sub := range s.subs {
			sub.cancel()
			delete(s.subs, id)
		}
		return
	}
	for _, id := range ids {
		if sub, ok := s.subs[id]; ok {
			sub.cancel()
			delete(s.subs, id)
		}
	}
}

// shutdown cancels every subscription and rejects new ones.
func (s *EventService) shutdown() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Unsubscribe()
}

// Active returns the ids of running subscriptions, sorted.
func (s *EventService) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Wait blocks until every subscription loop has exited or ctx ends.
func (s *EventService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *EventService) validateName(name string) error {
	var err error
	if s.space == "repos" {
		_, _, err = ParseRepoRef(name)
	} else {
		err = ValidateOwner(name)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s name %q", s.space, name)
	}
	return nil
}

func (s *EventService) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subs[id]; ok {
		sub.cancel()
		delete(s.subs, id)
	}
}

func (s *EventService) run(ctx context.Context, sub *subscription, base RequestOptions, onEvent EventHandler, onError ErrorHandler) {
	c := s.client
	hooks := observability.Subscription()
	resource := s.space + "/" + sub.name
	endpoint := "/" + resource + "/events"
	logger := c.logger.With("subscription", sub.id, "name", sub.name)

	var (
		lastETag string
		poll     = DefaultPollInterval
		// created_at has second precision; include the current second.
		horizon = c.clock.Now().Truncate(time.Second).Add(-time.Nanosecond)
	)
	logger.Debug("subscription started", "endpoint", endpoint)
	defer logger.Debug("subscription stopped")

	report := func(err error, terminal bool) {
		hooks.OnSubscriptionError(ctx, resource, string(errors.GetCode(err)), terminal)
		if onError != nil {
			safeReport(ctx, onError, err)
		}
	}

	for {
		opts := base
		opts.Method = ""
		opts.ETag = lastETag
		opts.UseStoredETag = lastETag == ""

		resp, err := c.Dispatch(ctx, endpoint, &opts)
		if ctx.Err() != nil {
			return
		}

		wait := poll
		switch {
		case err == nil:
			if etag := resp.ETag(); etag != "" {
				lastETag = etag
			}
			if hint, ok := resp.PollInterval(); ok {
				poll, wait = hint, hint
			}
			events, derr := decodeEvents(resp)
			if derr != nil {
				hooks.OnPoll(ctx, resource, string(errors.GetCode(derr)))
				report(derr, false)
				wait = DefaultBackoff
				break
			}
			hooks.OnPoll(ctx, resource, "ok")
			fresh := newerThan(events, horizon)
			for _, ev := range fresh {
				if ctx.Err() != nil {
					return
				}
				if herr := safeHandle(ctx, onEvent, ev); herr != nil {
					report(herr, false)
				}
				horizon = ev.CreatedAt
			}
			if len(fresh) > 0 {
				hooks.OnEventsDelivered(ctx, resource, len(fresh))
				logger.Debug("events delivered", "count", len(fresh))
			}
		case IsNotModified(err):
			hooks.OnPoll(ctx, resource, "not_modified")
		case isTerminal(err):
			hooks.OnPoll(ctx, resource, string(errors.GetCode(err)))
			logger.Debug("terminal error", "err", err)
			report(err, true)
			return
		default:
			hooks.OnPoll(ctx, resource, string(errors.GetCode(err)))
			logger.Debug("transient error, backing off", "err", err, "backoff", DefaultBackoff)
			report(err, false)
			wait = DefaultBackoff
		}

		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(wait):
		}
	}
}

func decodeEvents(resp *Response) ([]Event, error) {
	if len(resp.Raw) == 0 {
		return nil, nil
	}
	var events []Event
	if err := resp.Decode(&events); err != nil {
		return nil, err
	}
	resp.Data = events
	return events, nil
}

// newerThan returns events created strictly after horizon, oldest first.
// The feed is newest first.
func newerThan(events []Event, horizon time.Time) []Event {
	var fresh []Event
	for _, ev := range events {
		if ev.CreatedAt.After(horizon) {
			fresh = append(fresh, ev)
		}
	}
	slices.Reverse(fresh)
	slices.SortStableFunc(fresh, func(a, b Event) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return fresh
}

func safeHandle(ctx context.Context, fn EventHandler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeGeneric, "event handler panicked on %s %s: %v", ev.Type, ev.ID, r)
		}
	}()
	if herr := fn(ctx, ev); herr != nil {
		return errors.Wrap(errors.ErrCodeGeneric, herr, "event handler failed on %s %s", ev.Type, ev.ID)
	}
	return nil
}

func safeReport(ctx context.Context, fn ErrorHandler, err error) {
	defer func() { _ = recover() }()
	fn(ctx, err)
}
