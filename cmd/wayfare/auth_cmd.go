// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/wayfare/models"
)

func signInCmd(a func() *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "signin <email>",
		Short: "Sign in, creating the account on first use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a().svc.Users.SignIn(cmd.Context(), models.SignInRequest{Email: args[0], DisplayName: name})
			if err != nil {
				return err
			}
			fmt.Fprintf(a().out, "Signed in as %s <%s>\n", resp.User.DisplayName, resp.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name for a new account")
	return cmd
}

func signOutCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the session and cached personal data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a().svc.Users.SignOut()
			fmt.Fprintln(a().out, "Signed out")
			return nil
		},
	}
}

func meCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a().session.Authenticated() {
				return fmt.Errorf("not signed in")
			}
			u, err := a().svc.Users.Me(cmd.Context())
			if err != nil {
				return err
			}
			out := a().out
			fmt.Fprintf(out, "%s <%s>\n", u.DisplayName, u.Email)
			if u.HomeCity != "" {
				fmt.Fprintf(out, "Home:     %s\n", u.HomeCity)
			}
			fmt.Fprintf(out, "Currency: %s\n", u.Currency)
			fmt.Fprintf(out, "Member:   %s\n", when(u.CreatedAt))
			return nil
		},
	}
}
