package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"admindash/internal/model"
)

func newLoginCmd(rt *runtime) *cobra.Command {
	var (
		email         string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			var err error
			if email == "" {
				if email, err = promptLine(in, out, "Email"); err != nil {
					return err
				}
			}

			var password string
			if passwordStdin {
				password, err = in.ReadString('\n')
				if err != nil && err != io.EOF {
					return err
				}
				password = strings.TrimRight(password, "\r\n")
			} else if password, err = promptPassword(out); err != nil {
				return err
			}

			user, err := rt.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := rt.persist(); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			fmt.Fprintf(out, "Logged in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logoutErr := rt.session.Logout(cmd.Context())
			rt.api.SetSessionToken("")
			if err := rt.persist(); err != nil {
				return fmt.Errorf("remove session: %w", err)
			}
			if logoutErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: server logout failed: %v\n", logoutErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoAmICmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireUser(cmd.Context()); err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), rt.session.State().User)
			return nil
		},
	}
}

func printUser(w io.Writer, u *model.User) {
	fmt.Fprintf(w, "ID:     %s\n", u.ID)
	fmt.Fprintf(w, "Name:   %s\n", u.Name)
	fmt.Fprintf(w, "Email:  %s\n", u.Email)
	if u.Role != "" {
		fmt.Fprintf(w, "Role:   %s\n", u.Role)
	}
	if u.LastLogin != nil {
		fmt.Fprintf(w, "Last login: %s\n", u.LastLogin.Format("2006-01-02 15:04:05"))
	}
}
