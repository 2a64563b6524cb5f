// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/wayfare/models"
	"github.com/danielhkuo/wayfare/services"
	"github.com/danielhkuo/wayfare/syncer"
)

func itinerariesCmd(a func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "itineraries",
		Aliases: []string{"trips"},
		Short:   "Plan and manage trips",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your itineraries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			its, err := a().svc.Itineraries.List(cmd.Context())
			if err != nil {
				cached, ok := syncer.Get[[]models.Itinerary](a().cache, syncer.Collection(services.KindItineraries))
				if !offline(err) || !ok {
					return err
				}
				printOfflineNote(a().out)
				its = cached
			}
			if len(its) == 0 {
				fmt.Fprintln(a().out, "No itineraries yet")
				return nil
			}

			tw := table(a().out)
			row(tw, "ID", "TITLE", "DESTINATION", "STATUS", "STARTS", "DAYS")
			for _, it := range its {
				days := int(it.EndDate.Sub(it.StartDate).Hours()/24) + 1
				row(tw, it.ID, it.Title, it.DestinationID, it.Status, when(it.StartDate), fmt.Sprint(days))
			}
			return tw.Flush()
		},
	}

	var (
		title, destination, start, notes string
		days                             int
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Plan a new trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := time.Parse(time.DateOnly, start)
			if err != nil {
				return fmt.Errorf("invalid --start, want YYYY-MM-DD: %w", err)
			}
			it, err := a().svc.Itineraries.Create(cmd.Context(), models.CreateItineraryRequest{
				Title:         title,
				DestinationID: destination,
				StartDate:     startDate,
				EndDate:       startDate.AddDate(0, 0, days-1),
				Notes:         notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a().out, "Created %s (%s)\n", it.Title, it.ID)
			return nil
		},
	}
	create.Flags().StringVar(&title, "title", "", "Trip title")
	create.Flags().StringVar(&destination, "destination", "", "Destination ID")
	create.Flags().StringVar(&start, "start", "", "Start date, YYYY-MM-DD")
	create.Flags().IntVar(&days, "days", 1, "Length in days")
	create.Flags().StringVar(&notes, "notes", "", "Notes")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an itinerary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a().svc.Itineraries.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a().out, "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}
