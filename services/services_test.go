// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/wayfare/apiclient"
	"github.com/danielhkuo/wayfare/auth"
	"github.com/danielhkuo/wayfare/models"
	"github.com/danielhkuo/wayfare/notify"
	"github.com/danielhkuo/wayfare/syncer"
	"github.com/danielhkuo/wayfare/testutil/mockapi"
)

type harness struct {
	client  *apiclient.Client
	cache   *syncer.Cache
	session *auth.Session
	sink    *notify.Recorder
	svc     *Services
}

func newHarness(t *testing.T, baseURL string) *harness {
	t.Helper()
	h := &harness{sink: &notify.Recorder{}}
	h.client = apiclient.New(baseURL,
		apiclient.WithoutTracing(),
		apiclient.WithTimeout(5*time.Second),
		apiclient.OnUnauthorized(func(*apiclient.APIError) { h.session.SignOut() }),
	)
	h.session = auth.NewSession(h.client)
	h.cache = syncer.NewCache(syncer.WithSink(h.sink), syncer.WithAuthenticator(h.session))
	h.svc = New(h.client, h.cache, h.session, nil)
	return h
}

func (h *harness) signIn(t *testing.T, email string) models.SignInResponse {
	t.Helper()
	resp, err := h.svc.Users.SignIn(context.Background(), models.SignInRequest{Email: email})
	require.NoError(t, err)
	return resp
}

func TestDestinations_ListIsCached(t *testing.T) {
	api := mockapi.Start(t)
	h := newHarness(t, api.BaseURL())
	ctx := context.Background()

	list, err := h.svc.Destinations.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, "Bali", list[0].Name)
	assert.False(t, list[0].Saved)

	again, err := h.svc.Destinations.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, again)
	assert.Equal(t, uint64(1), h.cache.Version(syncer.Collection(KindDestinations)))
}

func TestToggleSave_RequiresSignIn(t *testing.T) {
	api := mockapi.Start(t)
	h := newHarness(t, api.BaseURL())

	_, err := h.svc.Destinations.ToggleSave(context.Background(), "d1")
	assert.ErrorIs(t, err, syncer.ErrAuthRequired)
	assert.Equal(t, 1, h.sink.Count(notify.LevelAuthRequired))
}

func TestToggleSave_SignedIn(t *testing.T) {
	api := mockapi.Start(t)
	h := newHarness(t, api.BaseURL())
	ctx := context.Background()
	h.signIn(t, "ana@example.com")

	_, err := h.svc.Destinations.List(ctx)
	require.NoError(t, err)

	d, err := h.svc.Destinations.ToggleSave(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, d.Saved)

	cached, _ := syncer.Get[[]models.Destination](h.cache, syncer.Collection(KindDestinations))
	assert.True(t, cached[0].Saved, "server result is written into the cached list")

	list, err := h.svc.Destinations.List(ctx)
	require.NoError(t, err)
	assert.True(t, list[0].Saved, "refetched list agrees with the server")

	d, err = h.svc.Destinations.ToggleSave(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, d.Saved)
	assert.Equal(t, 3, h.sink.Count(notify.LevelSuccess), "sign-in plus two toggles")
}

func TestToggleSave_FlipsServerStateWithColdCache(t *testing.T) {
	api := mockapi.Start(t)
	ctx := context.Background()

	first := newHarness(t, api.BaseURL())
	first.signIn(t, "ana@example.com")
	d, err := first.svc.Destinations.ToggleSave(ctx, "d1")
	require.NoError(t, err)
	require.True(t, d.Saved)

	// Same user, nothing cached.
	second := newHarness(t, api.BaseURL())
	second.signIn(t, "ana@example.com")
	d, err = second.svc.Destinations.ToggleSave(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, d.Saved)

	// List cached anonymously, then signed in: the cached flags predate
	// the user and must not decide the toggle.
	third := newHarness(t, api.BaseURL())
	_, err = third.svc.Destinations.List(ctx)
	require.NoError(t, err)
	third.signIn(t, "ana@example.com")
	_, err = third.svc.Destinations.ToggleSave(ctx, "d1")
	require.NoError(t, err)
	_, err = third.svc.Destinations.ToggleSave(ctx, "d1")
	require.NoError(t, err)
	d, err = third.svc.Destinations.ToggleSave(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, d.Saved)

	list, err := first.svc.Destinations.List(ctx)
	require.NoError(t, err)
	assert.True(t, list[0].Saved, "server agrees after three flips from false")
}

func TestToggleSave_OfflineRollsBack(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	baseURL := dead.URL
	dead.Close()

	h := newHarness(t, baseURL)
	h.session.SignIn(auth.Identity{UserID: "u1", Token: "tok"})
	listKey := syncer.Collection(KindDestinations)
	syncer.Set(h.cache, listKey, []models.Destination{{ID: "d1", Name: "Bali", Saved: false}})

	_, err := h.svc.Destinations.ToggleSave(context.Background(), "d1")
	require.Error(t, err)
	assert.True(t, apiclient.IsNetwork(err))

	list, _ := syncer.Get[[]models.Destination](h.cache, listKey)
	assert.False(t, list[0].Saved)
	require.Len(t, h.sink.All(), 1)
	assert.Equal(t, notify.LevelError, h.sink.All()[0].Level)
	assert.Equal(t, apiclient.UserMessage(err), h.sink.All()[0].Message)
}

func TestToggleSave_OptimisticWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"d1","name":"Bali","saved":true}`))
	}))
	defer srv.Close()

	h := newHarness(t, srv.URL)
	h.session.SignIn(auth.Identity{UserID: "u1", Token: "tok"})
	listKey := syncer.Collection(KindDestinations)
	syncer.Set(h.cache, listKey, []models.Destination{{ID: "d1", Name: "Bali"}})

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Destinations.ToggleSave(context.Background(), "d1")
		done <- err
	}()

	assert.Eventually(t, func() bool {
		list, _ := syncer.Get[[]models.Destination](h.cache, listKey)
		return list[0].Saved
	}, time.Second, 5*time.Millisecond)

	close(release)
	require.NoError(t, <-done)
	list, _ := syncer.Get[[]models.Destination](h.cache, listKey)
	assert.True(t, list[0].Saved)
	assert.Zero(t, h.cache.Pending(listKey))
}

func TestItineraries_Lifecycle(t *testing.T) {
	api := mockapi.Start(t)
	h := newHarness(t, api.BaseURL())
	ctx := context.Background()
	h.signIn(t, "ana@example.com")

	list, err := h.svc.Itineraries.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	start := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	it, err := h.svc.Itineraries.Create(ctx, models.CreateItineraryRequest{
		Title:         "Reykjavik lights",
		DestinationID: "d4",
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 5),
	})
	require.NoError(t, err)
	require.NotEmpty(t, it.ID)

	cached, _ := syncer.Get[[]models.Itinerary](h.cache, syncer.Collection(KindItineraries))
	require.Len(t, cached, 1, "created itinerary added to the cached list")

	status := models.StatusActive
	updated, err := h.svc.Itineraries.Update(ctx, it.ID, models.UpdateItineraryRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)

	got, err := h.svc.Itineraries.Get(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.Status)

	require.NoError(t, h.svc.Itineraries.Delete(ctx, it.ID))
	cached, _ = syncer.Get[[]models.Itinerary](h.cache, syncer.Collection(KindItineraries))
	assert.Empty(t, cached)

	_, err = h.svc.Itineraries.Get(ctx, it.ID)
	assert.True(t, apiclient.IsNotFound(err))
}

func TestItineraries_CreateValidatesBeforeSending(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	h := newHarness(t, srv.URL)
	h.session.SignIn(auth.Identity{UserID: "u1", Token: "tok"})

	_, err := h.svc.Itineraries.Create(context.Background(), models.CreateItineraryRequest{DestinationID: "d1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
	assert.Zero(t, hits)
	assert.Empty(t, h.sink.All())
}

func TestWallet_RedeemVoucher(t *testing.T) {
	api := mockapi.Start(t)
	h := newHarness(t, api.BaseURL())
	ctx := context.Background()
	h.signIn(t, "ana@example.com")

	w, err := h.svc.Wallet.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, w.BalanceMinor)

	w, err = h.svc.Wallet.RedeemVoucher(ctx, "WELCOME10")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), w.BalanceMinor)

	cached, _ := syncer.Get[models.Wallet](h.cache, syncer.Collection(KindWallet))
	assert.Equal(t, int64(1000), cached.BalanceMinor)

	txns, err := h.svc.Wallet.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "WELCOME10", txns[0].Reference)
}

func TestWallet_UnknownVoucher(t *testing.T) {
	api := mockapi.Start(t)
	h := newHarness(t, api.BaseURL())
	h.signIn(t, "ana@example.com")

	_, err := h.svc.Wallet.RedeemVoucher(context.Background(), "BAD")
	apiErr, ok := apiclient.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Voucher not found", apiErr.Message)

	last := h.sink.All()[len(h.sink.All())-1]
	assert.Equal(t, notify.Notification{Level: notify.LevelError, Resource: "wallet", Message: "Voucher not found"}, last)
}

func TestUsers_ProfileAndSignOut(t *testing.T) {
	api := mockapi.Start(t)
	h := newHarness(t, api.BaseURL())
	ctx := context.Background()
	resp := h.signIn(t, "ana@example.com")
	assert.Equal(t, resp.Token, h.client.Token())

	me, err := h.svc.Users.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", me.Email)

	city := "Porto"
	me, err = h.svc.Users.UpdateProfile(ctx, models.UpdateProfileRequest{HomeCity: &city})
	require.NoError(t, err)
	assert.Equal(t, "Porto", me.HomeCity)

	_, err = h.svc.Wallet.Get(ctx)
	require.NoError(t, err)

	h.svc.Users.SignOut()
	assert.Empty(t, h.client.Token())
	assert.False(t, h.session.Authenticated())
	_, ok := syncer.Get[models.UserProfile](h.cache, syncer.Collection(KindProfile))
	assert.False(t, ok)
	_, ok = syncer.Get[models.Wallet](h.cache, syncer.Collection(KindWallet))
	assert.False(t, ok)
}

func TestUsers_UnauthorizedSignsOut(t *testing.T) {
	api := mockapi.Start(t)
	h := newHarness(t, api.BaseURL())
	h.session.SignIn(auth.Identity{UserID: "u1", Token: auth.IssueToken("u1", "wrong-salt")})

	_, err := h.svc.Users.Me(context.Background())
	assert.True(t, apiclient.IsUnauthorized(err))
	assert.False(t, h.session.Authenticated())
	assert.Empty(t, h.client.Token())
}
