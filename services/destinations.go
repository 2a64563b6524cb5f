// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"net/url"

	"github.com/danielhkuo/wayfare/apiclient"
	"github.com/danielhkuo/wayfare/models"
	"github.com/danielhkuo/wayfare/syncer"
)

type DestinationService struct {
	*Services
}

func destinationID(d models.Destination) string { return d.ID }

func (s *DestinationService) List(ctx context.Context) ([]models.Destination, error) {
	return syncer.Query(ctx, s.cache, syncer.Collection(KindDestinations), func(ctx context.Context) ([]models.Destination, error) {
		return apiclient.GetJSON[[]models.Destination](ctx, s.client, "/destinations")
	})
}

func (s *DestinationService) Get(ctx context.Context, id string) (models.Destination, error) {
	return syncer.Query(ctx, s.cache, syncer.Entity(KindDestinations, id), func(ctx context.Context) (models.Destination, error) {
		return apiclient.GetJSON[models.Destination](ctx, s.client, "/destinations/"+url.PathEscape(id))
	})
}

// ToggleSave flips the saved flag of a destination. The flag flips in the
// cached list and item immediately; the server's answer replaces it on
// success and the previous value comes back on failure.
func (s *DestinationService) ToggleSave(ctx context.Context, id string) (models.Destination, error) {
	listKey := syncer.Collection(KindDestinations)
	itemKey := syncer.Entity(KindDestinations, id)

	want := !s.currentSaved(ctx, id)

	setSaved := func(d models.Destination) models.Destination {
		d.Saved = want
		return d
	}
	var optimistic []syncer.Update
	if _, ok := syncer.Get[[]models.Destination](s.cache, listKey); ok {
		optimistic = append(optimistic, syncer.Patch(listKey, func(list []models.Destination) []models.Destination {
			out := make([]models.Destination, len(list))
			for i, d := range list {
				if d.ID == id {
					d = setSaved(d)
				}
				out[i] = d
			}
			return out
		}))
	}
	if _, ok := syncer.Get[models.Destination](s.cache, itemKey); ok {
		optimistic = append(optimistic, syncer.Patch(itemKey, setSaved))
	}

	return syncer.Mutate(ctx, s.cache, syncer.Mutation[models.Destination]{
		Resource:     itemKey.String(),
		RequiresAuth: true,
		Optimistic:   optimistic,
		Do: func(ctx context.Context) (models.Destination, error) {
			return apiclient.PostJSON[models.Destination](ctx, s.client,
				"/destinations/"+url.PathEscape(id)+"/save",
				models.SaveDestinationRequest{Saved: &want})
		},
		Reconcile: func(d models.Destination) []syncer.Write {
			return []syncer.Write{
				syncer.Confirm(itemKey, d),
				syncer.Amend(listKey, d.ID, func(list []models.Destination) []models.Destination {
					return replaceByID(list, d.ID, destinationID, d, false)
				}),
			}
		},
		Invalidates: []syncer.Key{listKey, itemKey},
	})
}

// currentSaved returns the saved flag to flip. A fresh cached item or list,
// or one with a toggle still in flight, is trusted; otherwise the item is
// fetched, since a cold or pre-sign-in cache may disagree with the server.
func (s *DestinationService) currentSaved(ctx context.Context, id string) bool {
	itemKey := syncer.Entity(KindDestinations, id)
	listKey := syncer.Collection(KindDestinations)

	cached, found := false, false
	if d, ok := syncer.Get[models.Destination](s.cache, itemKey); ok {
		if s.trusted(itemKey) {
			return d.Saved
		}
		cached, found = d.Saved, true
	}
	if list, ok := syncer.Get[[]models.Destination](s.cache, listKey); ok {
		for _, d := range list {
			if d.ID != id {
				continue
			}
			if s.trusted(listKey) {
				return d.Saved
			}
			if !found {
				cached, found = d.Saved, true
			}
		}
	}
	// The mutation rejects anonymous callers itself.
	if !s.session.Authenticated() {
		return cached
	}

	d, err := s.Get(ctx, id)
	if err != nil {
		// The request that follows fails the same way and is reported then.
		s.logger.Debug("could not refresh destination before toggle", "id", id, "error", err)
		return cached
	}
	return d.Saved
}

func (s *DestinationService) trusted(key syncer.Key) bool {
	return !s.cache.IsStale(key) || s.cache.Pending(key) > 0
}
