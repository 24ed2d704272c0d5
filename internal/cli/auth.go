package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jrsteele09/uniassist/googlelogin"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/sessions"
	"github.com/spf13/cobra"
)

func (a *app) newLoginCmd() *cobra.Command {
	var idToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a Google account",
		Long: `Sign in with a Google account.

Without --id-token a browser based Google sign-in is started on a local
loopback address; GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := a.idTokenSource(cmd, idToken)
			if err != nil {
				return err
			}
			raw, err := source.IDToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("google sign-in: %w", err)
			}

			sess, err := a.client.Login(cmd.Context(), raw)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s\n", describeUser(sess.User))
			fmt.Fprintf(out, "Session valid until %s\n", sess.ExpiresAt.In(a.now().Location()).Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().StringVar(&idToken, "id-token", "", "Google ID token to exchange instead of the browser flow")
	return cmd
}

func (a *app) idTokenSource(cmd *cobra.Command, idToken string) (googlelogin.IDTokenSource, error) {
	if idToken != "" {
		return googlelogin.StaticSource(idToken), nil
	}

	clientID := a.cfg.GetGoogleClientID()
	if clientID == "" {
		return nil, fmt.Errorf("%w: GOOGLE_CLIENT_ID is not set, pass --id-token instead", apperrors.ErrInvalidInput)
	}
	verifier, err := googlelogin.NewGoogleVerifier(cmd.Context(), clientID)
	if err != nil {
		return nil, err
	}
	out := cmd.OutOrStdout()
	return googlelogin.NewLoopbackFlow(clientID, a.cfg.GetGoogleClientSecret(),
		googlelogin.WithVerifier(verifier),
		googlelogin.WithLogger(a.log),
		googlelogin.WithBrowser(func(url string) error {
			_, err := fmt.Fprintf(out, "Open this link to sign in:\n\n  %s\n\n", url)
			return err
		}),
	), nil
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.users.Me(cmd.Context())
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), user)
			return nil
		},
	}
}

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the local session state without calling the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) printStatus(ctx context.Context, out io.Writer) error {
	fmt.Fprintf(out, "Backend: %s\n", a.client.BaseURL())

	sess, err := a.client.Session(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Fprintf(out, "State:   %s\n", a.client.State(ctx))
		return nil
	}

	now := a.now()
	fmt.Fprintf(out, "State:   %s\n", a.client.State(ctx))
	fmt.Fprintf(out, "User:    %s\n", describeUser(sess.User))
	fmt.Fprintf(out, "Expires: %s (in %s)\n", sess.ExpiresAt.In(now.Location()).Format(time.RFC1123), sess.ExpiresAt.Sub(now).Round(time.Second))
	if sess.ExpiresWithin(now, a.cfg.GetExpiryBuffer()) {
		fmt.Fprintln(out, "The token will be refreshed on the next request")
	}
	return nil
}

func (a *app) newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the current token for a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.client.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token refreshed, valid until %s\n", sess.ExpiresAt.In(a.now().Location()).Format(time.RFC1123))
			return nil
		},
	}
}

func describeUser(u *sessions.UserProfile) string {
	if u == nil {
		return "unknown user"
	}
	if u.FullName == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.FullName, u.Email)
}

func printProfile(out io.Writer, u *sessions.UserProfile) {
	fmt.Fprintf(out, "Name:  %s\n", u.FullName)
	fmt.Fprintf(out, "Email: %s\n", u.Email)
	if u.GroupNumber != nil {
		fmt.Fprintf(out, "Group: %d\n", *u.GroupNumber)
	} else {
		fmt.Fprintln(out, "Group: not set")
	}
}
