package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yshengliao/antoree/api"
	"github.com/yshengliao/antoree/auth"
)

func newLoginCmd(opts *globalOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			out := cmd.OutOrStdout()
			return withRuntime(ctx, opts, out, func(rt *runtime) error {
				res, err := rt.api.Auth.Login(ctx, api.LoginRequest{Email: email, Password: password})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Logged in as %s <%s> (%s)\n", res.User.Name, res.User.Email, res.User.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			out := cmd.OutOrStdout()
			return withRuntime(ctx, opts, out, func(rt *runtime) error {
				if !rt.session.Authenticated() {
					fmt.Fprintln(out, "Not logged in")
					return nil
				}
				err := rt.api.Auth.Logout(ctx)
				fmt.Fprintln(out, "Logged out")
				return err
			})
		},
	}
}

func newTokenCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored session token",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the claims of the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withRuntime(commandContext(cmd), opts, out, func(rt *runtime) error {
				claims, err := rt.session.Claims()
				if errors.Is(err, auth.ErrNoToken) {
					fmt.Fprintln(out, "No token")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "user:  %s\n", claims.UserID)
				fmt.Fprintf(out, "email: %s\n", claims.Email)
				fmt.Fprintf(out, "role:  %s\n", claims.Role)
				if claims.ExpiresAt != nil {
					state := "valid"
					if claims.Expired(time.Now()) {
						state = "expired"
					}
					fmt.Fprintf(out, "expires: %s (%s)\n", claims.ExpiresAt.Time.Format(time.RFC3339), state)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <token>",
		Short: "Store a token obtained elsewhere",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			return withRuntime(ctx, opts, cmd.OutOrStdout(), func(rt *runtime) error {
				return rt.session.SetToken(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the stored token without calling the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			return withRuntime(ctx, opts, cmd.OutOrStdout(), func(rt *runtime) error {
				return rt.session.Clear(ctx)
			})
		},
	})

	return cmd
}

func newLanguageCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "language [tag]",
		Short: "Show or set the Accept-Language sent with every request",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			out := cmd.OutOrStdout()
			return withRuntime(ctx, opts, out, func(rt *runtime) error {
				if len(args) == 0 {
					fmt.Fprintln(out, rt.client.Language())
					return nil
				}
				if err := rt.session.SetLanguage(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(out, rt.client.Language())
				return nil
			})
		},
	}
}
