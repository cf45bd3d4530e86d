package cli

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/octowire/pkg/integrations/github"
	"github.com/matzehuels/octowire/pkg/session"
)

const (
	// defaultScopes are requested by auth login.
	defaultScopes = "repo read:org read:user"

	// loginTimeout bounds the whole device authorization.
	loginTimeout = 15 * time.Minute
)

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage GitHub credentials",
		Long: `Authenticate with GitHub and inspect the stored credentials.

Login uses the OAuth device flow. The token is kept in the system keychain
when one is available and in ~/.config/octowire/sessions/ otherwise.`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authStatusCommand())
	cmd.AddCommand(c.authTokenCommand())

	return cmd
}

// authLoginCommand creates the login subcommand.
func (c *CLI) authLoginCommand() *cobra.Command {
	var (
		scopes    string
		noBrowser bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with GitHub using device flow",
		Long: `Start the GitHub device authorization flow.

You'll be given a code to enter at https://github.com/login/device.
Once authorized, your session will be saved locally for future commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if existing, _ := loadSession(ctx); existing != nil {
				printInfo("Already logged in as @%s", existing.Login())
				printNextStep("Re-authenticate with", "octowire auth logout && octowire auth login")
				return nil
			}

			_, err := c.runLogin(ctx, scopes, !noBrowser)
			return err
		},
	}
	cmd.Flags().StringVar(&scopes, "scopes", defaultScopes, "OAuth scopes to request")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open the verification page")
	return cmd
}

// authLogoutCommand creates the logout subcommand.
func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored GitHub credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore()
			if err != nil {
				return err
			}
			if err := store.DeleteSession(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

// authStatusCommand creates the status subcommand.
func (c *CLI) authStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the authenticated user and token source",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, source, err := c.resolveToken(ctx)
			if err != nil {
				return err
			}
			if token == "" {
				printWarning("Not logged in")
				printNextStep("Authenticate with", "octowire auth login")
				return nil
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Verifying token...")
			spinner.Start()

			client, cleanup, err := c.newClient(ctx)
			if err != nil {
				spinner.Stop()
				return err
			}
			defer cleanup()

			user, resp, err := client.User().Get(ctx)
			if err != nil {
				spinner.StopWithError("Token invalid")
				return fmt.Errorf("verify token: %w", err)
			}
			spinner.Stop()

			printSuccess("GitHub Session")
			printKeyValue("Username", "@"+user.Login)
			if user.Name != "" {
				printKeyValue("Name", user.Name)
			}
			printKeyValue("Source", source)
			if scopes := resp.Header.Get("X-OAuth-Scopes"); scopes != "" {
				printKeyValue("Scopes", scopes)
			}
			if rl := resp.RateLimit(); rl.Known() {
				printKeyValue("Rate limit", fmt.Sprintf("%d/%d remaining", rl.Remaining, rl.Limit))
			}
			if source == "session" {
				if sess, _ := loadSession(ctx); sess != nil {
					printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
				}
			}
			return nil
		},
	}
}

// authTokenCommand creates the token subcommand.
func (c *CLI) authTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print the token octowire would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, _, err := c.resolveToken(cmd.Context())
			if err != nil {
				return err
			}
			if token == "" {
				return fmt.Errorf("not logged in (run 'octowire auth login' first)")
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

// =============================================================================
// Device Flow Login
// =============================================================================

func (c *CLI) runLogin(ctx context.Context, scopes string, browser bool) (*session.Session, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	flow := github.NewDeviceFlow(cfg.ClientID, github.WithLogger(c.Logger))
	defer flow.Close(context.WithoutCancel(ctx))

	loginCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	code, err := flow.Register(loginCtx, scopes)
	if err != nil {
		return nil, fmt.Errorf("request device code: %w", err)
	}

	printNewline()
	fmt.Println(StyleTitle.Render("GitHub Device Authorization"))
	printNewline()
	printKeyValue("Code", StyleNumber.Render(code.UserCode))
	printKeyValue("URL", StyleLink.Render(code.VerificationURI))
	printNewline()

	if !browser {
		printDetail("Open the URL above and enter the code")
	} else if err := openBrowser(code.VerificationURI); err != nil {
		printDetail("Copy the URL above and paste it in your browser")
	} else {
		printDetail("Opening browser...")
	}

	spinner := newSpinnerWithContext(loginCtx, "Waiting for authorization...")
	spinner.Start()
	token, err := flow.Activate(loginCtx, code.DeviceCode)
	if err != nil {
		spinner.StopWithError("Authorization failed")
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	spinner.Stop()

	opts, cleanup, err := c.clientOptions(loginCtx)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	client := github.New(append(opts, github.WithToken(token.AccessToken))...)
	user, _, err := client.User().Get(loginCtx)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	sess, err := session.New(token.AccessToken, user, token.Scope, 0)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	store, err := openSessionStore()
	if err != nil {
		return nil, err
	}
	location, err := store.SaveSession(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	printSuccess("Logged in as @%s", user.Login)
	printDetail("Token stored in %s", location)
	return sess, nil
}

func openBrowser(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
