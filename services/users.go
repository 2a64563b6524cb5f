// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"

	"github.com/danielhkuo/wayfare/apiclient"
	"github.com/danielhkuo/wayfare/auth"
	"github.com/danielhkuo/wayfare/models"
	"github.com/danielhkuo/wayfare/syncer"
)

type UserService struct {
	*Services
}

// SignIn exchanges an email for a token and binds it through the session.
// The request is sent without any previously bound token.
func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.SignInResponse, error) {
	if err := models.Validate(req); err != nil {
		return models.SignInResponse{}, err
	}
	profileKey := syncer.Collection(KindProfile)

	resp, err := syncer.Mutate(ctx, s.cache, syncer.Mutation[models.SignInResponse]{
		Resource: "session",
		Do: func(ctx context.Context) (models.SignInResponse, error) {
			return apiclient.PostJSON[models.SignInResponse](ctx, s.client, "/auth/signin", req, apiclient.NoAuth())
		},
	})
	if err != nil {
		return models.SignInResponse{}, err
	}

	s.session.SignIn(auth.Identity{UserID: resp.User.ID, Email: resp.User.Email, Token: resp.Token})
	// Saved flags depend on who is asking.
	s.cache.InvalidateKind(KindDestinations)
	syncer.Set(s.cache, profileKey, resp.User)
	s.logger.Info("signed in", "user_id", resp.User.ID)
	return resp, nil
}

// SignOut unbinds the token and drops user-scoped cache entries.
func (s *UserService) SignOut() {
	s.session.SignOut()
}

func (s *UserService) Me(ctx context.Context) (models.UserProfile, error) {
	return syncer.Query(ctx, s.cache, syncer.Collection(KindProfile), func(ctx context.Context) (models.UserProfile, error) {
		return apiclient.GetJSON[models.UserProfile](ctx, s.client, "/users/me")
	})
}

func (s *UserService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.UserProfile, error) {
	if err := models.Validate(req); err != nil {
		return models.UserProfile{}, err
	}
	profileKey := syncer.Collection(KindProfile)

	var optimistic []syncer.Update
	if _, ok := syncer.Get[models.UserProfile](s.cache, profileKey); ok {
		optimistic = append(optimistic, syncer.Patch(profileKey, func(u models.UserProfile) models.UserProfile {
			if req.DisplayName != nil {
				u.DisplayName = *req.DisplayName
			}
			if req.HomeCity != nil {
				u.HomeCity = *req.HomeCity
			}
			if req.Currency != nil {
				u.Currency = *req.Currency
			}
			return u
		}))
	}

	return syncer.Mutate(ctx, s.cache, syncer.Mutation[models.UserProfile]{
		Resource:     profileKey.String(),
		RequiresAuth: true,
		Optimistic:   optimistic,
		Do: func(ctx context.Context) (models.UserProfile, error) {
			return apiclient.PatchJSON[models.UserProfile](ctx, s.client, "/users/me", req)
		},
		Reconcile: func(u models.UserProfile) []syncer.Write {
			return []syncer.Write{syncer.Confirm(profileKey, u)}
		},
		Invalidates: []syncer.Key{profileKey},
	})
}
