// Package cli implements adminctl, a terminal client of the dashboard API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"admindash/internal/client"
	"admindash/internal/config"
)

// ErrNotLoggedIn is returned by protected commands without a valid session.
var ErrNotLoggedIn = errors.New("not logged in; run `adminctl login` first")

type globalFlags struct {
	server      string
	sessionFile string
	cookieName  string
	timeout     time.Duration
}

// runtime is the per-invocation state shared by all commands.
type runtime struct {
	flags   *globalFlags
	api     *client.HTTPClient
	session *client.Session
	guard   *client.Guard
}

// NewRootCmd builds the adminctl command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}
	rt := &runtime{flags: flags}

	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Command line client for the admin dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.open()
		},
	}

	root.PersistentFlags().StringVar(&flags.server, "server", envOr("ADMINCTL_SERVER", "http://localhost:8080"), "dashboard API base URL")
	root.PersistentFlags().StringVar(&flags.sessionFile, "session-file", envOr("ADMINCTL_SESSION", defaultSessionFile()), "where the session token is kept")
	root.PersistentFlags().StringVar(&flags.cookieName, "cookie-name", envOr("COOKIE_NAME", config.DefaultCookieName), "session cookie name used by the server")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "per-request timeout")

	root.AddCommand(
		newLoginCmd(rt),
		newLogoutCmd(rt),
		newWhoAmICmd(rt),
		newProductsCmd(rt),
	)
	return root
}

// Execute runs adminctl with os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (rt *runtime) open() error {
	api, err := client.NewHTTPClient(rt.flags.server,
		client.WithCookieName(rt.flags.cookieName),
		client.WithTimeout(rt.flags.timeout),
	)
	if err != nil {
		return err
	}

	token, err := loadToken(rt.flags.sessionFile)
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}
	if token != "" {
		api.SetSessionToken(token)
	}

	rt.api = api
	rt.session = client.NewSession(api)
	rt.guard = client.NewGuard(rt.session, "adminctl login")
	return nil
}

// requireUser resolves the session and fails unless a user is logged in.
func (rt *runtime) requireUser(ctx context.Context) error {
	go rt.session.Init(ctx)

	decision, err := rt.guard.Await(ctx)
	if err != nil {
		return err
	}
	if decision.Action != client.Allow {
		return ErrNotLoggedIn
	}
	return nil
}

// persist stores the current session token, or removes the file when the
// session has ended.
func (rt *runtime) persist() error {
	token := rt.api.SessionToken()
	if token == "" {
		return removeToken(rt.flags.sessionFile)
	}
	return saveToken(rt.flags.sessionFile, token)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
