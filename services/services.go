// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/wayfare/apiclient"
	"github.com/danielhkuo/wayfare/auth"
	"github.com/danielhkuo/wayfare/syncer"
)

// Cache kinds used by the services.
const (
	KindDestinations syncer.Kind = "destinations"
	KindItineraries  syncer.Kind = "itineraries"
	KindProfile      syncer.Kind = "profile"
	KindWallet       syncer.Kind = "wallet"
	KindTransactions syncer.Kind = "wallet_transactions"
)

// userScoped kinds belong to the signed-in user and are dropped on
// sign-out.
var userScoped = []syncer.Kind{KindItineraries, KindProfile, KindWallet, KindTransactions}

// Services groups the resource services over one client, cache and session.
type Services struct {
	Destinations *DestinationService
	Itineraries  *ItineraryService
	Users        *UserService
	Wallet       *WalletService

	client  *apiclient.Client
	cache   *syncer.Cache
	session *auth.Session
	logger  *slog.Logger
}

// New wires the services. The session must be the cache's Authenticator so
// that sign-in-only mutations are guarded. Signing out, including through
// a 401 response, drops every user-scoped cache entry.
func New(client *apiclient.Client, cache *syncer.Cache, session *auth.Session, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Services{client: client, cache: cache, session: session, logger: logger}
	s.Destinations = &DestinationService{s}
	s.Itineraries = &ItineraryService{s}
	s.Users = &UserService{s}
	s.Wallet = &WalletService{s}

	session.OnChange(func(id auth.Identity, signedIn bool) {
		if signedIn {
			return
		}
		ctx := context.Background()
		for _, kind := range userScoped {
			cache.RemoveKind(ctx, kind)
		}
		// Saved flags are per user.
		cache.InvalidateKind(KindDestinations)
		logger.Info("signed out, cleared user cache", "user_id", id.UserID)
	})
	return s
}

// replaceByID returns a copy of list with the element whose id matches
// replaced by v. When add is set and no element matches, v is appended.
func replaceByID[T any](list []T, id string, idOf func(T) string, v T, add bool) []T {
	out := make([]T, 0, len(list)+1)
	found := false
	for _, item := range list {
		if idOf(item) == id {
			out = append(out, v)
			found = true
			continue
		}
		out = append(out, item)
	}
	if !found && add {
		out = append(out, v)
	}
	return out
}

// removeByID returns a copy of list without the element whose id matches.
func removeByID[T any](list []T, id string, idOf func(T) string) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}
