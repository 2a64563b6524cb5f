// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielhkuo/wayfare/apiclient"
	"github.com/danielhkuo/wayfare/notify"
)

// ErrAuthRequired is returned, before anything is sent, by a mutation that
// requires a signed-in user when none is bound.
var ErrAuthRequired = errors.New("syncer: sign-in required")

// AuthPromptMessage accompanies LevelAuthRequired notifications.
const AuthPromptMessage = "Please sign in to continue."

var tracer = otel.Tracer("github.com/danielhkuo/wayfare/syncer")

// Phase is a state of one mutation.
type Phase int

const (
	Idle Phase = iota
	Snapshotting
	OptimisticallyApplied
	Reconciled
	RolledBack
	SettledInvalidated
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Snapshotting:
		return "snapshotting"
	case OptimisticallyApplied:
		return "optimistically_applied"
	case Reconciled:
		return "reconciled"
	case RolledBack:
		return "rolled_back"
	case SettledInvalidated:
		return "settled_invalidated"
	default:
		return "unknown"
	}
}

// Update is an optimistic change to one key.
type Update struct {
	key   Key
	apply func(any) any
}

// Patch builds an optimistic Update. fn receives the current visible value
// (the zero V when the key is empty) and must return a new value without
// modifying its argument.
func Patch[V any](key Key, fn func(V) V) Update {
	return Update{
		key: key,
		apply: func(v any) any {
			cur, _ := v.(V)
			return fn(cur)
		},
	}
}

// Write is an authoritative value taken from a server response.
type Write struct {
	key   Key
	part  string
	value any
	amend func(base any, hasBase bool, raw []byte) (any, bool)
}

// Confirm builds a Write that replaces the whole value of key.
func Confirm[V any](key Key, v V) Write {
	return Write{key: key, value: v}
}

// Amend builds a Write that changes one part of the confirmed value of key,
// such as a single item of a collection. fn receives the confirmed value,
// never the optimistic one, and must not modify its argument. Nothing is
// written when key holds no confirmed value.
//
// Results for different parts never supersede each other.
func Amend[V any](key Key, part string, fn func(V) V) Write {
	return Write{
		key:  key,
		part: part,
		amend: func(base any, hasBase bool, raw []byte) (any, bool) {
			var cur V
			switch {
			case raw != nil:
				if err := json.Unmarshal(raw, &cur); err != nil {
					return nil, false
				}
			case hasBase:
				v, ok := base.(V)
				if !ok {
					return nil, false
				}
				cur = v
			default:
				return nil, false
			}
			return fn(cur), true
		},
	}
}

// Mutation describes one server-side change and its local effects.
type Mutation[R any] struct {
	// Resource names the affected resource in notifications. Defaults to
	// the first optimistic key.
	Resource string
	// RequiresAuth rejects the mutation when no identity is bound.
	RequiresAuth bool
	// Optimistic updates are applied before Do is called.
	Optimistic []Update
	// Do performs the request.
	Do func(ctx context.Context) (R, error)
	// Reconcile maps a successful result to confirmed values. Optional.
	Reconcile func(R) []Write
	// Invalidates lists keys marked stale after settlement in addition to
	// the optimistically updated ones.
	Invalidates []Key
	// OnPhase observes every phase transition, in order.
	OnPhase func(Phase)
}

// txn tracks a single run of a Mutation.
type txn struct {
	seq      uint64
	phase    Phase
	onPhase  func(Phase)
	snapshot map[Key]snapshot
}

// snapshot is the rollback target of one key: its confirmed state when the
// mutation was issued. Layers of earlier in-flight mutations sit above it.
type snapshot struct {
	hadBase bool
	version uint64
}

func (t *txn) enter(p Phase) {
	t.phase = p
	if t.onPhase != nil {
		t.onPhase(p)
	}
}

// Mutate runs m through snapshot, optimistic apply, request, reconcile or
// rollback, and invalidation.
//
// Overlapping mutations on one key each own a layer. A later mutation sees
// the earlier one's optimistic value; a rollback removes only its own layer
// and so never undoes a sibling's reconciliation. When two mutations on a
// key both succeed, the result of the one issued last is kept.
//
// On failure the error is returned after a LevelError notification has been
// sent; on success a LevelSuccess notification is sent.
func Mutate[R any](ctx context.Context, c *Cache, m Mutation[R]) (R, error) {
	var zero R
	resource := m.resourceName()

	if m.RequiresAuth && (c.auth == nil || !c.auth.Authenticated()) {
		c.sink.Notify(notify.Notification{
			Level:    notify.LevelAuthRequired,
			Resource: resource,
			Message:  AuthPromptMessage,
		})
		return zero, ErrAuthRequired
	}

	ctx, span := tracer.Start(ctx, "syncer.mutate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("wayfare.resource", resource)),
	)
	defer span.End()

	t := &txn{onPhase: m.OnPhase, snapshot: make(map[Key]snapshot, len(m.Optimistic))}
	t.enter(Snapshotting)

	c.mu.Lock()
	c.seq++
	t.seq = c.seq
	for _, u := range m.Optimistic {
		if _, seen := t.snapshot[u.key]; seen {
			continue
		}
		e := c.entries[u.key]
		var s snapshot
		if e != nil {
			s.hadBase = e.hasBase
			s.version = e.version
		}
		t.snapshot[u.key] = s
	}
	for _, u := range m.Optimistic {
		e := c.entryLocked(u.key)
		e.layers = append(e.layers, layer{seq: t.seq, apply: u.apply})
	}
	c.mu.Unlock()
	t.enter(OptimisticallyApplied)

	result, err := m.Do(ctx)

	if err == nil {
		var writes []Write
		if m.Reconcile != nil {
			writes = m.Reconcile(result)
		}
		recs := c.reconcile(t, writes)
		for _, rec := range recs {
			c.persist(rec)
		}
		t.enter(Reconciled)
		c.sink.Notify(notify.Notification{
			Level:    notify.LevelSuccess,
			Resource: resource,
		})
	} else {
		c.rollback(t)
		t.enter(RolledBack)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("mutation rolled back",
			"resource", resource,
			"status", apiclient.StatusOf(err),
			"error", err,
		)
		c.sink.Notify(notify.Notification{
			Level:    notify.LevelError,
			Resource: resource,
			Message:  apiclient.UserMessage(err),
		})
	}

	keys := make([]Key, 0, len(t.snapshot)+len(m.Invalidates))
	for k := range t.snapshot {
		keys = append(keys, k)
	}
	keys = append(keys, m.Invalidates...)
	c.Invalidate(keys...)
	t.enter(SettledInvalidated)
	t.enter(Idle)

	if err != nil {
		return zero, err
	}
	return result, nil
}

func (m Mutation[R]) resourceName() string {
	switch {
	case m.Resource != "":
		return m.Resource
	case len(m.Optimistic) > 0:
		return m.Optimistic[0].key.String()
	case len(m.Invalidates) > 0:
		return m.Invalidates[0].String()
	}
	return ""
}

// reconcile drops the mutation's layers and writes the server values,
// skipping keys already confirmed by a later-issued mutation.
func (c *Cache) reconcile(t *txn, writes []Write) []*Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropLayersLocked(t)
	var recs []*Record
	for _, w := range writes {
		value := w.value
		if w.amend != nil {
			e := c.entries[w.key]
			if e == nil {
				continue
			}
			var ok bool
			if value, ok = w.amend(e.base, e.hasBase, e.raw); !ok {
				c.logger.Debug("nothing confirmed to amend", "key", w.key.String())
				continue
			}
		}
		e := c.entryLocked(w.key)
		if e.superseded(w.part, t.seq) {
			c.logger.Debug("skipping superseded reconciliation", "key", w.key.String(), "part", w.part, "seq", t.seq)
			continue
		}
		if rec := c.confirmLocked(w.key, value); rec != nil {
			recs = append(recs, rec)
		}
		if e.confirmed == nil {
			e.confirmed = make(map[string]uint64)
		}
		e.confirmed[w.part] = t.seq
	}
	return recs
}

// rollback drops the mutation's layers. With no sibling in flight and no
// confirmed write since the snapshot, the key reads back exactly as before.
func (c *Cache) rollback(t *txn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropLayersLocked(t)
	for k, s := range t.snapshot {
		e := c.entries[k]
		if e == nil || len(e.layers) > 0 || e.version != s.version {
			continue
		}
		// Nothing was there before and nothing confirmed since.
		if !s.hadBase && !e.hasBase && e.raw == nil {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) dropLayersLocked(t *txn) {
	for k := range t.snapshot {
		e := c.entries[k]
		if e == nil {
			continue
		}
		e.layers = slices.DeleteFunc(e.layers, func(l layer) bool { return l.seq == t.seq })
	}
}
