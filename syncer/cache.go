// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncer

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/wayfare/apiclient"
	"github.com/danielhkuo/wayfare/notify"
)

// DefaultStaleTime is how long a fetched value is served before the next
// Query refetches it.
const DefaultStaleTime = 5 * time.Minute

// Kind names a resource type, e.g. "destinations".
type Kind string

// Key identifies a cache entry. An empty ID denotes the whole collection.
type Key struct {
	Kind Kind
	ID   string
}

func Collection(kind Kind) Key { return Key{Kind: kind} }

func Entity(kind Kind, id string) Key { return Key{Kind: kind, ID: id} }

func (k Key) String() string {
	if k.ID == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + ":" + k.ID
}

// Record is the persisted form of a confirmed cache value.
type Record struct {
	Key       Key
	Data      []byte
	Version   uint64
	UpdatedAt time.Time
}

// Persister stores confirmed values so that a later process can start with
// them. Optimistic values are never persisted.
type Persister interface {
	LoadAll(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, rec Record) error
	Delete(ctx context.Context, key Key) error
}

// Authenticator reports whether an identity is currently bound.
type Authenticator interface {
	Authenticated() bool
}

// Cache holds resource values keyed by Key. The visible value of an entry
// is its confirmed value with the optimistic layers of every in-flight
// mutation applied in issue order.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	seq     uint64
	flight  singleflight.Group

	staleTime time.Duration
	sink      notify.Sink
	auth      Authenticator
	persister Persister
	logger    *slog.Logger
	now       func() time.Time
}

type entry struct {
	base    any
	hasBase bool
	// raw is a hydrated value waiting to be decoded by the first typed read.
	raw       []byte
	version   uint64
	updatedAt time.Time
	stale     bool
	layers    []layer
	// confirmed holds, per part, the issue sequence of the newest mutation
	// whose server result was written to base. Part "" is the whole value.
	confirmed map[string]uint64
}

// superseded reports whether a result for part issued at seq is older than
// one already written.
func (e *entry) superseded(part string, seq uint64) bool {
	if e.confirmed[""] > seq {
		return true
	}
	if part != "" {
		return e.confirmed[part] > seq
	}
	for _, s := range e.confirmed {
		if s > seq {
			return true
		}
	}
	return false
}

type layer struct {
	seq   uint64
	apply func(any) any
}

type Option func(*Cache)

// WithStaleTime sets how long fetched values stay fresh. Zero keeps values
// fresh until they are invalidated.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

func WithSink(s notify.Sink) Option {
	return func(c *Cache) {
		if s != nil {
			c.sink = s
		}
	}
}

func WithAuthenticator(a Authenticator) Option {
	return func(c *Cache) { c.auth = a }
}

func WithPersister(p Persister) Option {
	return func(c *Cache) { c.persister = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries:   make(map[Key]*entry),
		staleTime: DefaultStaleTime,
		sink:      notify.Discard,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the visible value for key without fetching. The value must
// be treated as read-only.
func Get[V any](c *Cache, key Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return visible[V](c, key)
}

// Set stores v as the confirmed value for key and marks it fresh.
func Set[V any](c *Cache, key Key, v V) {
	c.mu.Lock()
	rec := c.confirmLocked(key, v)
	c.mu.Unlock()
	c.persist(rec)
}

// Query returns the cached value for key when it is fresh. Otherwise it
// calls fetch, stores the result, and returns the visible value. Concurrent
// queries for the same key share one fetch, which runs without the
// callers' cancellation; a caller whose ctx ends stops waiting with a
// status 0 APIError wrapping ctx.Err().
func Query[V any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (V, error)) (V, error) {
	c.mu.Lock()
	v, ok := visible[V](c, key)
	e := c.entries[key]
	if ok && e.hasBase && !c.staleLocked(e) {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	// The shared fetch outlives any one caller; each caller stops waiting
	// when its own ctx is done. Fetches bound themselves, e.g. through the
	// client timeout.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key.String(), func() (any, error) {
		c.mu.Lock()
		var startVersion uint64
		if e := c.entries[key]; e != nil {
			startVersion = e.version
		}
		c.mu.Unlock()

		fetched, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		var rec *Record
		if e := c.entries[key]; e == nil || e.version == startVersion {
			rec = c.confirmLocked(key, fetched)
		} else {
			c.logger.Debug("discarding fetch older than confirmed value", "key", key.String())
		}
		c.mu.Unlock()
		c.persist(rec)
		return nil, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, apiclient.NetworkError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	v, _ = visible[V](c, key)
	return v, nil
}

// Invalidate marks keys stale so the next Query refetches them. The cached
// values stay readable through Get.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		if e := c.entries[k]; e != nil {
			e.stale = true
		}
	}
}

// InvalidateKind marks every entry of kind stale.
func (c *Cache) InvalidateKind(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if k.Kind == kind {
			e.stale = true
		}
	}
}

// Remove drops key from the cache and the persister.
func (c *Cache) Remove(ctx context.Context, key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	if c.persister != nil {
		if err := c.persister.Delete(ctx, key); err != nil {
			c.logger.Error("failed to delete cache record", "key", key.String(), "error", err)
		}
	}
}

// RemoveKind drops every entry of kind from the cache and the persister.
func (c *Cache) RemoveKind(ctx context.Context, kind Kind) {
	c.mu.Lock()
	var keys []Key
	for k := range c.entries {
		if k.Kind == kind {
			keys = append(keys, k)
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
	if c.persister == nil {
		return
	}
	// Persisted records may exist for keys never hydrated into memory.
	recs, err := c.persister.LoadAll(ctx)
	if err != nil {
		c.logger.Error("failed to list cache records", "kind", string(kind), "error", err)
	}
	for _, rec := range recs {
		if rec.Key.Kind == kind && !slices.Contains(keys, rec.Key) {
			keys = append(keys, rec.Key)
		}
	}
	for _, k := range keys {
		if err := c.persister.Delete(ctx, k); err != nil {
			c.logger.Error("failed to delete cache record", "key", k.String(), "error", err)
		}
	}
}

// IsStale reports whether the next Query for key would fetch.
func (c *Cache) IsStale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[key]
	return e == nil || !e.hasBase && e.raw == nil || c.staleLocked(e)
}

// Version returns the number of confirmed writes to key.
func (c *Cache) Version(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.entries[key]; e != nil {
		return e.version
	}
	return 0
}

// Pending returns the number of in-flight optimistic layers on key.
func (c *Cache) Pending(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.entries[key]; e != nil {
		return len(e.layers)
	}
	return 0
}

// Hydrate loads persisted records. Hydrated entries are readable through
// Get but stale, so the first Query refetches them. Entries already in
// memory keep their value and adopt the stored version when it is higher.
func (c *Cache) Hydrate(ctx context.Context) (int, error) {
	if c.persister == nil {
		return 0, nil
	}
	recs, err := c.persister.LoadAll(ctx)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, rec := range recs {
		if e, exists := c.entries[rec.Key]; exists {
			// Later writes must outrank the stored record.
			if rec.Version > e.version {
				e.version = rec.Version
			}
			continue
		}
		c.entries[rec.Key] = &entry{
			raw:       rec.Data,
			version:   rec.Version,
			updatedAt: rec.UpdatedAt,
			stale:     true,
		}
		n++
	}
	c.logger.Debug("cache hydrated", "entries", n)
	return n, nil
}

func (c *Cache) staleLocked(e *entry) bool {
	if e.stale {
		return true
	}
	return c.staleTime > 0 && c.now().Sub(e.updatedAt) > c.staleTime
}

// confirmLocked writes v as the confirmed value and returns the record to
// persist once the lock is released.
func (c *Cache) confirmLocked(key Key, v any) *Record {
	e := c.entryLocked(key)
	e.base = v
	e.hasBase = true
	e.raw = nil
	e.version++
	e.updatedAt = c.now()
	e.stale = false
	if c.persister == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache value not persistable", "key", key.String(), "error", err)
		return nil
	}
	return &Record{Key: key, Data: data, Version: e.version, UpdatedAt: e.updatedAt}
}

func (c *Cache) persist(rec *Record) {
	if rec == nil || c.persister == nil {
		return
	}
	if err := c.persister.Save(context.Background(), *rec); err != nil {
		c.logger.Error("failed to persist cache record", "key", rec.Key.String(), "error", err)
	}
}

func (c *Cache) entryLocked(key Key) *entry {
	e := c.entries[key]
	if e == nil {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// visible folds the optimistic layers over the confirmed value. Callers
// hold c.mu.
func visible[V any](c *Cache, key Key) (V, bool) {
	var zero V
	e := c.entries[key]
	if e == nil {
		return zero, false
	}
	if e.raw != nil {
		var decoded V
		if err := json.Unmarshal(e.raw, &decoded); err != nil {
			c.logger.Warn("dropping undecodable cache record", "key", key.String(), "error", err)
			e.raw = nil
		} else {
			e.base = decoded
			e.hasBase = true
			e.raw = nil
		}
	}
	if !e.hasBase && len(e.layers) == 0 {
		return zero, false
	}

	cur := e.base
	for _, l := range e.layers {
		cur = l.apply(cur)
	}
	v, ok := cur.(V)
	if !ok && cur != nil {
		c.logger.Error("cache value type mismatch", "key", key.String())
		return zero, false
	}
	return v, true
}
