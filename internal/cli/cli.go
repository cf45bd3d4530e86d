package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/octowire/pkg/buildinfo"
	"github.com/matzehuels/octowire/pkg/cache"
	"github.com/matzehuels/octowire/pkg/config"
	"github.com/matzehuels/octowire/pkg/integrations"
	"github.com/matzehuels/octowire/pkg/integrations/github"
	"github.com/matzehuels/octowire/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "octowire"

	// rateLimitBurst is the client-side pacing burst when rate_limit is set.
	rateLimitBurst = 5
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	token      string
	noCache    bool

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Octowire talks to the GitHub API from your terminal",
		Long: `Octowire is a GitHub REST and GraphQL client. It sends raw API requests,
follows pagination, watches activity feeds with conditional polling and
manages a device-flow login.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/octowire/config.toml)")
	flags.StringVar(&c.token, "token", "", "GitHub token (overrides GITHUB_TOKEN and the stored session)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the persistent ETag store")

	root.AddCommand(c.apiCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.rateLimitCommand())
	root.AddCommand(c.graphqlCommand())
	root.AddCommand(c.zenCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration & Client Factory
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// resolveToken returns the token and where it came from: the --token flag,
// the environment or the stored session. An empty token is not an error.
func (c *CLI) resolveToken(ctx context.Context) (token, source string, err error) {
	if c.token != "" {
		return c.token, "flag", nil
	}
	cfg, err := c.config()
	if err != nil {
		return "", "", err
	}
	if cfg.Token != "" {
		return cfg.Token, "environment", nil
	}
	sess, err := loadSession(ctx)
	if err != nil || sess == nil {
		return "", "", nil
	}
	return sess.AccessToken, "session", nil
}

// clientOptions builds the github options shared by every command. The
// returned cleanup closes the ETag store.
func (c *CLI) clientOptions(ctx context.Context) ([]github.Option, func(), error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	token, _, err := c.resolveToken(ctx)
	if err != nil {
		return nil, nil, err
	}

	transport := integrations.NewClient(integrations.WithRateLimit(cfg.RateLimit, rateLimitBurst))
	opts := []github.Option{
		github.WithToken(token),
		github.WithBaseURL(cfg.BaseURL),
		github.WithTimeout(cfg.TimeoutDuration()),
		github.WithHeaders(cfg.Headers),
		github.WithTransport(transport),
		github.WithLogger(c.Logger),
	}
	name := cfg.ClientName
	if name == "" {
		name = buildinfo.UserAgent()
	}
	opts = append(opts, github.WithClientName(name))
	if cfg.APIVersion != "" {
		opts = append(opts, github.WithAPIVersion(cfg.APIVersion))
	}

	store, err := c.newETagStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store = scopeToToken(store, token)
	opts = append(opts, github.WithETagStore(store))
	cleanup := func() {
		if err := store.Close(); err != nil {
			c.Logger.Debug("close etag store", "error", err)
		}
	}
	return opts, cleanup, nil
}

// newClient creates a GitHub client from config, flags and the stored session.
func (c *CLI) newClient(ctx context.Context) (*github.Client, func(), error) {
	opts, cleanup, err := c.clientOptions(ctx)
	if err != nil {
		return nil, nil, err
	}
	return github.New(opts...), cleanup, nil
}

// newETagStore opens the configured ETag backend. Failing to open the file
// backend degrades to no store; an unreachable Redis is an error because it
// was asked for explicitly.
func (c *CLI) newETagStore(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.ETag.Backend {
	case config.BackendFile:
		dir, err := etagDir(cfg)
		if err != nil {
			c.Logger.Warn("etag store disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("etag store disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, redisConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("open etag store: %w", err)
		}
		return rc, nil
	default:
		return cache.NewNullCache(), nil
	}
}

// scopeToToken keeps ETags recorded with one token away from requests made
// with another.
func scopeToToken(store cache.Cache, token string) cache.Cache {
	if token == "" {
		return store
	}
	return cache.NewScoped(store, "token:"+cache.Hash([]byte(token))[:12]+":")
}

func redisConfig(cfg *config.Config) cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/octowire/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// etagDir is the file backend directory: etag.dir or <cacheDir>/etags.
func etagDir(cfg *config.Config) (string, error) {
	if cfg.ETag.Dir != "" {
		return cfg.ETag.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "etags"), nil
}

// =============================================================================
// Session Helpers
// =============================================================================

func openSessionStore() (*session.CLIStore, error) {
	store, err := session.NewCLIStore("")
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}

// loadSession returns the stored session, or nil when not logged in.
func loadSession(ctx context.Context) (*session.Session, error) {
	store, err := openSessionStore()
	if err != nil {
		return nil, err
	}
	sess, err := store.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}
