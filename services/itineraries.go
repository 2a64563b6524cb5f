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

type ItineraryService struct {
	*Services
}

func itineraryID(it models.Itinerary) string { return it.ID }

func itineraryPath(id string) string { return "/itineraries/" + url.PathEscape(id) }

func (s *ItineraryService) List(ctx context.Context) ([]models.Itinerary, error) {
	return syncer.Query(ctx, s.cache, syncer.Collection(KindItineraries), func(ctx context.Context) ([]models.Itinerary, error) {
		return apiclient.GetJSON[[]models.Itinerary](ctx, s.client, "/itineraries")
	})
}

func (s *ItineraryService) Get(ctx context.Context, id string) (models.Itinerary, error) {
	return syncer.Query(ctx, s.cache, syncer.Entity(KindItineraries, id), func(ctx context.Context) (models.Itinerary, error) {
		return apiclient.GetJSON[models.Itinerary](ctx, s.client, itineraryPath(id))
	})
}

// Create validates req before sending it. The new itinerary is added to
// the cached list once the server has assigned its ID.
func (s *ItineraryService) Create(ctx context.Context, req models.CreateItineraryRequest) (models.Itinerary, error) {
	if err := models.Validate(req); err != nil {
		return models.Itinerary{}, err
	}
	listKey := syncer.Collection(KindItineraries)

	return syncer.Mutate(ctx, s.cache, syncer.Mutation[models.Itinerary]{
		Resource:     listKey.String(),
		RequiresAuth: true,
		Do: func(ctx context.Context) (models.Itinerary, error) {
			return apiclient.PostJSON[models.Itinerary](ctx, s.client, "/itineraries", req)
		},
		Reconcile: func(it models.Itinerary) []syncer.Write {
			return []syncer.Write{
				syncer.Confirm(syncer.Entity(KindItineraries, it.ID), it),
				syncer.Amend(listKey, it.ID, func(list []models.Itinerary) []models.Itinerary {
					return replaceByID(list, it.ID, itineraryID, it, true)
				}),
			}
		},
		Invalidates: []syncer.Key{listKey},
	})
}

// Update applies the fields set in req optimistically.
func (s *ItineraryService) Update(ctx context.Context, id string, req models.UpdateItineraryRequest) (models.Itinerary, error) {
	if err := models.Validate(req); err != nil {
		return models.Itinerary{}, err
	}
	listKey := syncer.Collection(KindItineraries)
	itemKey := syncer.Entity(KindItineraries, id)

	apply := func(it models.Itinerary) models.Itinerary {
		if req.Title != nil {
			it.Title = *req.Title
		}
		if req.Status != nil {
			it.Status = *req.Status
		}
		if req.Notes != nil {
			it.Notes = *req.Notes
		}
		return it
	}

	var optimistic []syncer.Update
	if _, ok := syncer.Get[models.Itinerary](s.cache, itemKey); ok {
		optimistic = append(optimistic, syncer.Patch(itemKey, apply))
	}
	if _, ok := syncer.Get[[]models.Itinerary](s.cache, listKey); ok {
		optimistic = append(optimistic, syncer.Patch(listKey, func(list []models.Itinerary) []models.Itinerary {
			out := make([]models.Itinerary, len(list))
			for i, it := range list {
				if it.ID == id {
					it = apply(it)
				}
				out[i] = it
			}
			return out
		}))
	}

	return syncer.Mutate(ctx, s.cache, syncer.Mutation[models.Itinerary]{
		Resource:     itemKey.String(),
		RequiresAuth: true,
		Optimistic:   optimistic,
		Do: func(ctx context.Context) (models.Itinerary, error) {
			return apiclient.PatchJSON[models.Itinerary](ctx, s.client, itineraryPath(id), req)
		},
		Reconcile: func(it models.Itinerary) []syncer.Write {
			return []syncer.Write{
				syncer.Confirm(itemKey, it),
				syncer.Amend(listKey, it.ID, func(list []models.Itinerary) []models.Itinerary {
					return replaceByID(list, it.ID, itineraryID, it, false)
				}),
			}
		},
		Invalidates: []syncer.Key{listKey, itemKey},
	})
}

// Delete removes the itinerary from the cached list immediately. The
// server answers 204.
func (s *ItineraryService) Delete(ctx context.Context, id string) error {
	listKey := syncer.Collection(KindItineraries)
	itemKey := syncer.Entity(KindItineraries, id)

	var optimistic []syncer.Update
	if _, ok := syncer.Get[[]models.Itinerary](s.cache, listKey); ok {
		optimistic = append(optimistic, syncer.Patch(listKey, func(list []models.Itinerary) []models.Itinerary {
			return removeByID(list, id, itineraryID)
		}))
	}

	_, err := syncer.Mutate(ctx, s.cache, syncer.Mutation[struct{}]{
		Resource:     itemKey.String(),
		RequiresAuth: true,
		Optimistic:   optimistic,
		Do: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.client.Delete(ctx, itineraryPath(id), nil)
		},
		Reconcile: func(struct{}) []syncer.Write {
			return []syncer.Write{
				syncer.Amend(listKey, id, func(list []models.Itinerary) []models.Itinerary {
					return removeByID(list, id, itineraryID)
				}),
			}
		},
		Invalidates: []syncer.Key{listKey},
	})
	if err != nil {
		return err
	}
	s.cache.Remove(ctx, itemKey)
	return nil
}
