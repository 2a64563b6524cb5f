// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"github.com/spf13/cobra"

	"github.com/danielhkuo/wayfare/cliparse"
	"github.com/danielhkuo/wayfare/logging"
)

// newRootCmd builds the command tree. The returned func releases the cache
// database and must be called after Execute, whether or not it failed.
func newRootCmd() (*cobra.Command, func() error) {
	var (
		cfg cliparse.ClientConfig
		a   *app
	)

	root := &cobra.Command{
		Use:   "wayfare",
		Short: "Browse destinations, plan trips and manage your travel wallet",
		Long: `wayfare talks to the Wayfare travel API.

Responses are cached locally, so lists stay readable while offline. Sign in
once with "wayfare signin <email>"; the session is kept in the cache
database until "wayfare signout".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cliparse.LoadDotEnv(); err != nil {
				return err
			}
			if err := cfg.Resolve(); err != nil {
				return err
			}
			logging.Setup(cmd.ErrOrStderr(), cfg.Verbose)

			var err error
			a, err = newApp(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Env, "env", "", "API environment: development, test or production (env WAYFARE_ENV)")
	flags.StringVar(&cfg.BaseURL, "api-url", "", "API base URL, overrides --env (env WAYFARE_API_URL)")
	flags.DurationVar(&cfg.Timeout, "timeout", 0, "Request timeout (env WAYFARE_TIMEOUT, default 30s)")
	flags.BoolVar(&cfg.Credentials, "cookies", false, "Send and store cookies")
	flags.StringVar(&cfg.CacheDB, "cache-db", "", "Cache database URL (env WAYFARE_CACHE_DB)")
	flags.StringVar(&cfg.CacheDBType, "cache-db-type", "", "Cache database type: sqlite or postgres (env WAYFARE_CACHE_DB_TYPE)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Debug logging")

	appFn := func() *app { return a }
	root.AddCommand(
		signInCmd(appFn),
		signOutCmd(appFn),
		meCmd(appFn),
		destinationsCmd(appFn),
		itinerariesCmd(appFn),
		walletCmd(appFn),
	)
	closeApp := func() error {
		if a == nil {
			return nil
		}
		err := a.Close()
		a = nil
		return err
	}
	return root, closeApp
}
