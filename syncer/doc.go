// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package syncer is the client-side resource cache with optimistic mutations.

# Keys

Entries are keyed by a typed resource identity:

	syncer.Collection("destinations")     // the list
	syncer.Entity("destinations", "d1")   // one item

# Reads

Query serves a fresh cached value or fetches, sharing one fetch between
concurrent callers of the same key:

	dests, err := syncer.Query(ctx, cache, key, func(ctx context.Context) ([]models.Destination, error) {
		return apiclient.GetJSON[[]models.Destination](ctx, client, "/destinations")
	})

Get reads the visible value without fetching. Invalidate marks keys stale
so the next Query refetches.

# Mutations

Mutate moves one mutation through these phases:

	Idle → Snapshotting → OptimisticallyApplied → Reconciled | RolledBack → SettledInvalidated → Idle

The optimistic updates are visible to every reader as soon as Mutate is
called. A successful result is written back through Reconcile and wins over
the optimistic value. Confirm replaces a whole value; Amend changes one
part of it, such as a single item of a cached list:

	Reconcile: func(d models.Destination) []syncer.Write {
		return []syncer.Write{
			syncer.Confirm(syncer.Entity("destinations", d.ID), d),
			syncer.Amend(syncer.Collection("destinations"), d.ID, replace(d)),
		}
	}

A failure removes the optimistic layer and leaves the
key as it was. Both outcomes notify the configured notify.Sink and then mark
the affected keys stale.

Mutations flagged RequiresAuth are refused with ErrAuthRequired, and a
LevelAuthRequired notification, when the Authenticator reports no identity.

# Persistence

With a Persister, every confirmed value is saved. Hydrate loads the saved
values at startup as stale entries that stay readable offline until the
next Query refetches them. Remove and RemoveKind drop entries from memory
and from the Persister.
*/
package syncer
