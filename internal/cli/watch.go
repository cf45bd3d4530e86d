package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/octowire/pkg/archive"
	octoerrors "github.com/matzehuels/octowire/pkg/errors"
	"github.com/matzehuels/octowire/pkg/integrations/github"
)

// closeTimeout bounds how long watch waits for subscriptions to stop.
const closeTimeout = 5 * time.Second

type watchOptions struct {
	tui         bool
	archive     bool
	metricsAddr string
	types       []string
}

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch <owner/repo|user:NAME|org:NAME>...",
		Short: "Stream activity feeds",
		Long: `Poll one or more public event feeds and print new events as they arrive.

Polling uses conditional requests: an unchanged feed costs no rate limit.
The poll interval follows the X-Poll-Interval hint (60s by default) and
backs off for 300s after a transient error. A feed that disappears or
becomes unauthorized stops being watched.`,
		Example: `  octowire watch cli/cli
  octowire watch user:octocat org:github --type PushEvent
  octowire watch cli/cli --tui --metrics-addr :9090`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.tui, "tui", false, "show a live table instead of log lines")
	flags.BoolVar(&opts.archive, "archive", false, "store delivered events in MongoDB ([archive] mongo_uri)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.StringSliceVar(&opts.types, "type", nil, "only show these event types (e.g. PushEvent)")

	return cmd
}

// feedSink receives subscription output.
type feedSink interface {
	event(target string, ev github.Event)
	fail(target string, err error)
}

// lineSink prints one line per event.
type lineSink struct {
	mu     sync.Mutex
	w      io.Writer
	logger *log.Logger
}

func (s *lineSink) event(target string, ev github.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeEvent(s.w, target, ev)
}

func (s *lineSink) fail(target string, err error) {
	s.logger.Warn("Subscription error", "target", target, "code", octoerrors.GetCode(err), "error", octoerrors.UserMessage(err))
}

// programSink forwards subscription output to a bubbletea program.
type programSink struct {
	p *tea.Program
}

func (s programSink) event(target string, ev github.Event) {
	s.p.Send(eventMsg{target: target, event: ev})
}

func (s programSink) fail(target string, err error) {
	s.p.Send(subErrorMsg{target: target, err: err})
}

func (c *CLI) runWatch(ctx context.Context, w io.Writer, args []string, opts watchOptions) error {
	logger := loggerFromContext(ctx)

	targets := make([]github.Target, 0, len(args))
	for _, arg := range args {
		t, err := github.ParseTarget(arg)
		if err != nil {
			return err
		}
		targets = append(targets, t)
	}

	cfg, err := c.config()
	if err != nil {
		return err
	}

	addr := opts.metricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		srv, err := startMetricsServer(addr, logger)
		if err != nil {
			return err
		}
		defer srv.Shutdown(context.WithoutCancel(ctx))
	}

	var arch archive.Archive = archive.NullArchive{}
	if opts.archive {
		ma, err := archive.NewMongoArchive(ctx, archive.MongoConfig{
			URI:        cfg.Archive.MongoURI,
			Database:   cfg.Archive.Database,
			Collection: cfg.Archive.Collection,
		})
		if err != nil {
			return err
		}
		arch = ma
		logger.Info("Archiving events", "database", cfg.Archive.Database, "collection", cfg.Archive.Collection)
	}
	defer arch.Close(context.WithoutCancel(ctx))

	client, cleanup, err := c.newClient(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			logger.Warn("Subscriptions did not stop in time", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sink feedSink = &lineSink{w: w, logger: logger}
	var program *tea.Program
	if opts.tui {
		program = tea.NewProgram(NewFeedModel(feedTargets(targets)), tea.WithContext(ctx), tea.WithAltScreen())
		sink = programSink{p: program}
	}

	services, err := subscribeAll(ctx, client, targets, sink, arch, opts.types)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, s := range services {
			_ = s.Wait(ctx)
		}
	}()

	if program != nil {
		go func() {
			select {
			case <-done:
				program.Send(subsDoneMsg{})
			case <-ctx.Done():
			}
		}()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run feed: %w", err)
		}
		return nil
	}

	select {
	case <-done:
		if ctx.Err() == nil {
			return fmt.Errorf("all subscriptions ended")
		}
	case <-ctx.Done():
		logger.Info("Stopping")
	}
	return nil
}

// subscribeAll starts one subscription per target and returns the event
// services involved.
func subscribeAll(ctx context.Context, client *github.Client, targets []github.Target, sink feedSink, arch archive.Archive, types []string) ([]*github.EventService, error) {
	logger := loggerFromContext(ctx)

	var services []*github.EventService
	for _, t := range targets {
		name := t.String()
		onEvent := func(ctx context.Context, ev github.Event) error {
			if len(types) > 0 && !slices.Contains(types, ev.Type) {
				return nil
			}
			sink.event(name, ev)
			if err := arch.Store(ctx, name, ev); err != nil {
				return fmt.Errorf("archive event %s: %w", ev.ID, err)
			}
			return nil
		}
		onError := func(_ context.Context, err error) {
			sink.fail(name, err)
		}

		svc := client.EventsFor(t)
		id, err := svc.Subscribe(ctx, t.Name, onEvent, onError, nil)
		if err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", name, err)
		}
		logger.Debug("Subscribed", "target", name, "subscription", id)
		if !slices.Contains(services, svc) {
			services = append(services, svc)
		}
	}
	return services, nil
}
