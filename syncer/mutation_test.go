// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncer

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/wayfare/apiclient"
	"github.com/danielhkuo/wayfare/notify"
)

type staticAuth bool

func (a staticAuth) Authenticated() bool { return bool(a) }

var nameKey = Entity("places", "p1")

func setName(name string) func(place) place {
	return func(p place) place {
		p.Name = name
		return p
	}
}

func toggleSaved(p place) place {
	p.Saved = !p.Saved
	return p
}

func TestMutate_RollbackRestoresSnapshot(t *testing.T) {
	var sink notify.Recorder
	cache := NewCache(WithSink(&sink))
	Set(cache, nameKey, place{ID: "p1", Name: "V0"})

	var phases []Phase
	_, err := Mutate(context.Background(), cache, Mutation[place]{
		Optimistic: []Update{Patch(nameKey, setName("V1"))},
		Do: func(ctx context.Context) (place, error) {
			got, _ := Get[place](cache, nameKey)
			assert.Equal(t, "V1", got.Name, "optimistic value must be visible in flight")
			return place{}, &apiclient.APIError{Status: 500, Message: "boom"}
		},
		OnPhase: func(p Phase) { phases = append(phases, p) },
	})

	require.Error(t, err)
	assert.Equal(t, 500, apiclient.StatusOf(err))

	got, ok := Get[place](cache, nameKey)
	require.True(t, ok)
	assert.Equal(t, place{ID: "p1", Name: "V0"}, got)
	assert.Zero(t, cache.Pending(nameKey))
	assert.True(t, cache.IsStale(nameKey))

	assert.Equal(t, []Phase{Snapshotting, OptimisticallyApplied, RolledBack, SettledInvalidated, Idle}, phases)
	require.Len(t, sink.All(), 1)
	assert.Equal(t, notify.Notification{
		Level:    notify.LevelError,
		Resource: "places:p1",
		Message:  "The server had a problem handling the request. Please try again later.",
	}, sink.All()[0])
}

func TestMutate_ReconcileServerTruthWins(t *testing.T) {
	var sink notify.Recorder
	cache := NewCache(WithSink(&sink))
	Set(cache, nameKey, place{ID: "p1", Name: "V0"})

	var phases []Phase
	res, err := Mutate(context.Background(), cache, Mutation[place]{
		Resource:   "place p1",
		Optimistic: []Update{Patch(nameKey, setName("V1"))},
		Do: func(ctx context.Context) (place, error) {
			return place{ID: "p1", Name: "V2"}, nil
		},
		Reconcile: func(p place) []Write {
			return []Write{Confirm(nameKey, p)}
		},
		OnPhase: func(p Phase) { phases = append(phases, p) },
	})
	require.NoError(t, err)
	assert.Equal(t, "V2", res.Name)

	got, _ := Get[place](cache, nameKey)
	assert.Equal(t, "V2", got.Name)
	assert.Equal(t, uint64(2), cache.Version(nameKey))
	assert.True(t, cache.IsStale(nameKey))

	assert.Equal(t, []Phase{Snapshotting, OptimisticallyApplied, Reconciled, SettledInvalidated, Idle}, phases)
	assert.Equal(t, 1, sink.Count(notify.LevelSuccess))
	assert.Equal(t, "place p1", sink.All()[0].Resource)
}

func TestMutate_SuccessWithoutReconcileDropsLayer(t *testing.T) {
	cache := NewCache()
	Set(cache, nameKey, place{ID: "p1", Name: "V0"})

	_, err := Mutate(context.Background(), cache, Mutation[struct{}]{
		Optimistic: []Update{Patch(nameKey, setName("V1"))},
		Do:         func(ctx context.Context) (struct{}, error) { return struct{}{}, nil },
	})
	require.NoError(t, err)

	got, _ := Get[place](cache, nameKey)
	assert.Equal(t, "V0", got.Name)
	assert.True(t, cache.IsStale(nameKey))
}

func TestMutate_RequiresAuth(t *testing.T) {
	var sink notify.Recorder
	cache := NewCache(WithSink(&sink), WithAuthenticator(staticAuth(false)))
	Set(cache, nameKey, place{ID: "p1", Name: "V0"})

	called := false
	var phases []Phase
	_, err := Mutate(context.Background(), cache, Mutation[place]{
		RequiresAuth: true,
		Optimistic:   []Update{Patch(nameKey, setName("V1"))},
		Do: func(ctx context.Context) (place, error) {
			called = true
			return place{}, nil
		},
		OnPhase: func(p Phase) { phases = append(phases, p) },
	})

	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.False(t, called)
	assert.Empty(t, phases)
	assert.False(t, cache.IsStale(nameKey))
	assert.Equal(t, []notify.Notification{{
		Level:    notify.LevelAuthRequired,
		Resource: "places:p1",
		Message:  AuthPromptMessage,
	}}, sink.All())
}

func TestMutate_RequiresAuthSignedIn(t *testing.T) {
	cache := NewCache(WithAuthenticator(staticAuth(true)))
	_, err := Mutate(context.Background(), cache, Mutation[int]{
		RequiresAuth: true,
		Do:           func(ctx context.Context) (int, error) { return 1, nil },
	})
	assert.NoError(t, err)
}

func TestMutate_RollbackOnEmptyKeyLeavesNothing(t *testing.T) {
	cache := NewCache()
	_, err := Mutate(context.Background(), cache, Mutation[place]{
		Optimistic: []Update{Patch(nameKey, setName("draft"))},
		Do: func(ctx context.Context) (place, error) {
			return place{}, errors.New("not an api error")
		},
	})
	require.Error(t, err)

	_, ok := Get[place](cache, nameKey)
	assert.False(t, ok)
}

// runAsync starts a mutation whose request blocks until the returned
// channel receives the outcome.
func runAsync(t *testing.T, cache *Cache, update Update, entered chan<- struct{}) (chan<- result, <-chan error) {
	t.Helper()
	outcome := make(chan result)
	done := make(chan error, 1)
	go func() {
		_, err := Mutate(context.Background(), cache, Mutation[place]{
			Optimistic: []Update{update},
			Do: func(ctx context.Context) (place, error) {
				entered <- struct{}{}
				r := <-outcome
				return r.value, r.err
			},
			Reconcile: func(p place) []Write { return []Write{Confirm(nameKey, p)} },
		})
		done <- err
	}()
	return outcome, done
}

type result struct {
	value place
	err   error
}

func TestMutate_OverlappingRollbackKeepsSiblingReconciliation(t *testing.T) {
	cache := NewCache()
	Set(cache, nameKey, place{ID: "p1", Saved: false})
	entered := make(chan struct{})

	first, firstDone := runAsync(t, cache, Patch(nameKey, toggleSaved), entered)
	<-entered
	got, _ := Get[place](cache, nameKey)
	assert.True(t, got.Saved)

	second, secondDone := runAsync(t, cache, Patch(nameKey, toggleSaved), entered)
	<-entered
	got, _ = Get[place](cache, nameKey)
	assert.False(t, got.Saved, "second toggle applies on top of the first")
	assert.Equal(t, 2, cache.Pending(nameKey))

	first <- result{value: place{ID: "p1", Saved: true}}
	require.NoError(t, <-firstDone)
	got, _ = Get[place](cache, nameKey)
	assert.False(t, got.Saved, "second layer still pending over confirmed true")

	second <- result{err: &apiclient.APIError{Status: 0, Message: "offline"}}
	require.Error(t, <-secondDone)

	got, _ = Get[place](cache, nameKey)
	assert.True(t, got.Saved, "rollback must not undo the first reconciliation")
	assert.Zero(t, cache.Pending(nameKey))
}

func TestMutate_OlderReconciliationIgnored(t *testing.T) {
	cache := NewCache()
	Set(cache, nameKey, place{ID: "p1", Name: "V0"})
	entered := make(chan struct{})

	first, firstDone := runAsync(t, cache, Patch(nameKey, setName("A")), entered)
	<-entered
	second, secondDone := runAsync(t, cache, Patch(nameKey, setName("B")), entered)
	<-entered

	second <- result{value: place{ID: "p1", Name: "B"}}
	require.NoError(t, <-secondDone)
	first <- result{value: place{ID: "p1", Name: "A"}}
	require.NoError(t, <-firstDone)

	got, _ := Get[place](cache, nameKey)
	assert.Equal(t, "B", got.Name)
}

func TestMutate_InvalidatesExtraKeys(t *testing.T) {
	cache := NewCache()
	Set(cache, placesKey, []place{{ID: "p1"}})
	Set(cache, nameKey, place{ID: "p1"})

	_, err := Mutate(context.Background(), cache, Mutation[place]{
		Optimistic:  []Update{Patch(nameKey, toggleSaved)},
		Invalidates: []Key{placesKey},
		Do:          func(ctx context.Context) (place, error) { return place{ID: "p1", Saved: true}, nil },
	})
	require.NoError(t, err)
	assert.True(t, cache.IsStale(placesKey))
	assert.True(t, cache.IsStale(nameKey))
}

func TestMutate_ReconcilePersists(t *testing.T) {
	store := newMemPersister()
	cache := NewCache(WithPersister(store))

	_, err := Mutate(context.Background(), cache, Mutation[place]{
		Do:        func(ctx context.Context) (place, error) { return place{ID: "p1", Name: "Kyoto"}, nil },
		Reconcile: func(p place) []Write { return []Write{Confirm(nameKey, p)} },
	})
	require.NoError(t, err)

	recs, _ := store.LoadAll(context.Background())
	require.Len(t, recs, 1)
	assert.JSONEq(t, `{"id":"p1","name":"Kyoto","saved":false}`, string(recs[0].Data))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "optimistically_applied", OptimisticallyApplied.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

func renameItem(id, name string) func([]place) []place {
	return func(list []place) []place {
		out := slices.Clone(list)
		for i := range out {
			if out[i].ID == id {
				out[i].Name = name
			}
		}
		return out
	}
}

func TestMutate_AmendPartsDoNotSupersedeEachOther(t *testing.T) {
	cache := NewCache()
	Set(cache, placesKey, []place{{ID: "p1", Name: "a"}, {ID: "p2", Name: "b"}})

	entered := make(chan struct{})
	run := func(id, name string) (chan<- struct{}, <-chan error) {
		release := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			_, err := Mutate(context.Background(), cache, Mutation[place]{
				Optimistic: []Update{Patch(placesKey, renameItem(id, name))},
				Do: func(ctx context.Context) (place, error) {
					entered <- struct{}{}
					<-release
					return place{ID: id, Name: name}, nil
				},
				Reconcile: func(p place) []Write {
					return []Write{Amend(placesKey, p.ID, renameItem(p.ID, p.Name))}
				},
			})
			done <- err
		}()
		return release, done
	}

	first, firstDone := run("p1", "A")
	<-entered
	second, secondDone := run("p2", "B")
	<-entered

	close(second)
	require.NoError(t, <-secondDone)
	close(first)
	require.NoError(t, <-firstDone)

	got, _ := Get[[]place](cache, placesKey)
	assert.Equal(t, []place{{ID: "p1", Name: "A"}, {ID: "p2", Name: "B"}}, got)
}

func TestMutate_AmendWithoutConfirmedValue(t *testing.T) {
	cache := NewCache()
	_, err := Mutate(context.Background(), cache, Mutation[place]{
		Do: func(ctx context.Context) (place, error) { return place{ID: "p1"}, nil },
		Reconcile: func(p place) []Write {
			return []Write{Amend(placesKey, p.ID, renameItem(p.ID, "x"))}
		},
	})
	require.NoError(t, err)

	_, ok := Get[[]place](cache, placesKey)
	assert.False(t, ok)
}

func TestMutate_AmendHydratedValue(t *testing.T) {
	store := newMemPersister()
	Set(NewCache(WithPersister(store)), placesKey, []place{{ID: "p1", Name: "a"}})

	cache := NewCache(WithPersister(store))
	_, err := cache.Hydrate(context.Background())
	require.NoError(t, err)

	_, err = Mutate(context.Background(), cache, Mutation[place]{
		Do: func(ctx context.Context) (place, error) { return place{ID: "p1", Name: "z"}, nil },
		Reconcile: func(p place) []Write {
			return []Write{Amend(placesKey, p.ID, renameItem(p.ID, p.Name))}
		},
	})
	require.NoError(t, err)

	got, _ := Get[[]place](cache, placesKey)
	assert.Equal(t, []place{{ID: "p1", Name: "z"}}, got)
}
