// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/wayfare/models"
	"github.com/danielhkuo/wayfare/services"
	"github.com/danielhkuo/wayfare/syncer"
)

func destinationsCmd(a func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "destinations",
		Aliases: []string{"dest"},
		Short:   "Browse and save destinations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List destinations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dests, err := a().svc.Destinations.List(cmd.Context())
			if err != nil {
				cached, ok := syncer.Get[[]models.Destination](a().cache, syncer.Collection(services.KindDestinations))
				if !offline(err) || !ok {
					return err
				}
				printOfflineNote(a().out)
				dests = cached
			}

			tw := table(a().out)
			row(tw, "ID", "NAME", "COUNTRY", "RATING", "TAGS", "SAVED")
			for _, d := range dests {
				saved := ""
				if d.Saved {
					saved = "♥"
				}
				row(tw, d.ID, d.Name, d.Country, stars(d.Rating), strings.Join(d.Tags, ","), saved)
			}
			return tw.Flush()
		},
	}

	save := &cobra.Command{
		Use:   "save <id>",
		Short: "Toggle whether a destination is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a().svc.Destinations.ToggleSave(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if d.Saved {
				fmt.Fprintf(a().out, "Saved %s\n", d.Name)
			} else {
				fmt.Fprintf(a().out, "Removed %s from saved\n", d.Name)
			}
			return nil
		},
	}

	cmd.AddCommand(list, save)
	return cmd
}
