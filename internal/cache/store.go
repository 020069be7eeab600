// Package cache executes typed network operations against the banking API
// and keeps their results consistent: concurrent identical queries share one
// in-flight call, mutations invalidate tagged entries, and subscribed
// entries re-execute when their tags are invalidated. Refetch is the only
// consistency mechanism; mutation results are never patched into cached
// query results.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brkygngr/banking-client/pkg/logger"
)

// Outcome describes one completed network operation. Every query and every
// mutation produces exactly one Outcome, delivered to every listener.
type Outcome struct {
	// ID uniquely identifies the operation for correlation in logs.
	ID string
	// Family and Endpoint name the operation.
	Family   string
	Endpoint string
	// Method is the HTTP method of the operation.
	Method string
	// Args is the canonical serialization of the call arguments.
	Args string
	// Status is the HTTP status, zero when no response was received.
	Status int
	// Err is nil on fulfillment.
	Err *Problem
}

// Listener observes completed operations.
type Listener interface {
	OperationCompleted(Outcome)
}

// Snapshot is the renderable state of a query subscription.
type Snapshot struct {
	Data      json.RawMessage
	IsLoading bool
	IsError   bool
	Err       *Problem
}

type status int

const (
	statusIdle status = iota
	statusLoading
	statusSuccess
	statusError
)

type entryKey struct {
	family string
	name   string
	args   string
}

type entry struct {
	key          entryKey
	ep           Endpoint
	args         any
	status       status
	data         json.RawMessage
	err          *Problem
	version      uint64
	stale        bool
	inflight     bool
	dropWhenDone bool
	subs         map[uint64]*subscriber
	evict        *time.Timer
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Data:      e.data,
		IsLoading: e.status == statusLoading,
		IsError:   e.status == statusError,
		Err:       e.err,
	}
}

func (e *entry) subscribers() []*subscriber {
	subs := make([]*subscriber, 0, len(e.subs))
	for _, sub := range e.subs {
		subs = append(subs, sub)
	}
	return subs
}

// subscriber delivers snapshots to one callback in version order.
// Deliveries race on goroutines; dropping anything older than the last
// delivered version keeps a late "loading" snapshot from overwriting a
// settled one.
type subscriber struct {
	mu       sync.Mutex
	lastSeen uint64
	cb       func(Snapshot)
}

func (s *subscriber) deliver(version uint64, snap Snapshot) {
	if s.cb == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if version <= s.lastSeen {
		return
	}
	s.lastSeen = version
	s.cb(snap)
}

// Config configures the engine.
type Config struct {
	// Client executes the network operations.
	Client *Client
	// Retention is the grace period an entry without subscribers is kept
	// before being dropped. Zero drops entries immediately.
	Retention time.Duration
	// Metrics is optional.
	Metrics *Metrics
	// Logger is optional.
	Logger *logger.Logger
}

// Store is the cache engine. It is the sole owner of in-flight call
// identity: at most one network call exists per (operation, argument) key.
type Store struct {
	mu        sync.Mutex
	client    *Client
	entries   map[entryKey]*entry
	listeners []Listener
	retention time.Duration
	metrics   *Metrics
	log       *logger.Logger
	nextSubID uint64
}

// NewStore creates an engine backed by the given client.
func NewStore(cfg Config) *Store {
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("request-cache")
	}
	return &Store{
		client:    cfg.Client,
		entries:   make(map[entryKey]*entry),
		retention: cfg.Retention,
		metrics:   cfg.Metrics,
		log:       log,
	}
}

// AddListener registers an outcome listener. Listeners are invoked outside
// the engine lock, in registration order.
func (s *Store) AddListener(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Store) keyFor(ep Endpoint, args any) entryKey {
	return entryKey{family: ep.Family, name: ep.Name, args: canonicalArgs(args)}
}

// canonicalArgs serializes call arguments into the cache key. encoding/json
// sorts map keys and walks struct fields in declaration order, so identical
// arguments always produce identical keys.
func canonicalArgs(args any) string {
	if args == nil {
		return "null"
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return "unserializable"
	}
	return string(encoded)
}

// Subscription ==============================================================

// Subscription is a live handle on a query's cache entry. Its callback is
// invoked on every state transition until Unsubscribe.
type Subscription struct {
	store *Store
	key   entryKey
	id    uint64
}

// Snapshot returns the entry's current renderable state. After the entry
// has been dropped it reports an idle snapshot.
func (sub *Subscription) Snapshot() Snapshot {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()
	e, ok := sub.store.entries[sub.key]
	if !ok {
		return Snapshot{}
	}
	return e.snapshot()
}

// Refetch forces the entry to re-execute. Callers use it when a mutation's
// server-side effects are not covered by declared tags, such as balance
// changes after a transfer.
func (sub *Subscription) Refetch() {
	sub.store.refetch(sub.key)
}

// Unsubscribe detaches the callback. The last unsubscribe schedules the
// entry for eviction after the retention grace period; an in-flight call
// still completes and updates the shared entry first.
func (sub *Subscription) Unsubscribe() {
	s := sub.store
	s.mu.Lock()
	e, ok := s.entries[sub.key]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(e.subs, sub.id)
	if len(e.subs) == 0 && e.evict == nil {
		key := sub.key
		e.evict = time.AfterFunc(s.retention, func() { s.dropIfIdle(key) })
	}
	s.mu.Unlock()
}

func (s *Store) dropIfIdle(key entryKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || len(e.subs) > 0 {
		return
	}
	if e.inflight {
		e.dropWhenDone = true
		return
	}
	delete(s.entries, key)
}

// Queries ===================================================================

// Subscribe attaches a callback to the (endpoint, args) cache entry,
// creating and fetching it when needed. The callback is first invoked with
// the entry's current state. Concurrent subscriptions to the same key share
// one underlying network call.
func (s *Store) Subscribe(ctx context.Context, ep Endpoint, args any, cb func(Snapshot)) *Subscription {
	key := s.keyFor(ep, args)

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{key: key, ep: ep, args: args, version: 1, subs: make(map[uint64]*subscriber)}
		s.entries[key] = e
	}
	if e.evict != nil {
		e.evict.Stop()
		e.evict = nil
	}
	e.dropWhenDone = false

	s.nextSubID++
	id := s.nextSubID
	sub := &subscriber{cb: cb}
	e.subs[id] = sub

	start := false
	switch {
	case e.inflight:
		s.metrics.observeDedupHit()
	case e.status == statusIdle || e.stale:
		e.inflight = true
		e.stale = false
		e.status = statusLoading
		e.version++
		start = true
	}
	version := e.version
	snap := e.snapshot()
	s.mu.Unlock()

	sub.deliver(version, snap)
	if start {
		go s.execute(ctx, key)
	}
	return &Subscription{store: s, key: key, id: id}
}

func (s *Store) refetch(key entryKey) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok || e.inflight {
		if ok {
			e.stale = true
		}
		s.mu.Unlock()
		return
	}
	e.stale = false
	e.inflight = true
	e.status = statusLoading
	e.version++
	subs := e.subscribers()
	version := e.version
	snap := e.snapshot()
	s.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(version, snap)
	}
	go s.execute(context.Background(), key)
}

// execute runs the entry's network call and fans the result out to
// subscribers and listeners. Exactly one execute runs per entry at a time;
// the inflight flag is set by the caller under the lock.
func (s *Store) execute(ctx context.Context, key entryKey) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	ep := e.ep
	args := e.args
	s.mu.Unlock()

	data, httpStatus, err := s.client.Do(ctx, ep, args)
	prob := asProblem(err)

	var subs []*subscriber
	var snap Snapshot
	var version uint64
	again := false

	s.mu.Lock()
	if e, ok = s.entries[key]; ok {
		e.inflight = false
		if prob != nil {
			e.status = statusError
			e.err = prob
		} else {
			e.status = statusSuccess
			e.data = data
			e.err = nil
		}
		e.version++
		switch {
		case e.stale && len(e.subs) > 0:
			// Invalidated mid-flight; run once more now that the
			// superseded call has landed.
			e.stale = false
			e.inflight = true
			e.status = statusLoading
			e.version++
			again = true
		case e.dropWhenDone && len(e.subs) == 0:
			delete(s.entries, key)
		case e.stale && len(e.subs) == 0:
			delete(s.entries, key)
		}
		subs = e.subscribers()
		version = e.version
		snap = e.snapshot()
	}
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(version, snap)
	}

	outcome := Outcome{
		ID:       uuid.NewString(),
		Family:   ep.Family,
		Endpoint: ep.Name,
		Method:   ep.Method,
		Args:     key.args,
		Status:   httpStatus,
		Err:      prob,
	}
	for _, l := range listeners {
		l.OperationCompleted(outcome)
	}
	s.metrics.observeRequest(ep.Family, ep.Name, prob != nil)
	if prob != nil {
		s.log.WithFields(map[string]interface{}{
			"operation": outcome.ID,
			"family":    ep.Family,
			"endpoint":  ep.Name,
			"status":    httpStatus,
		}).Warn("query failed")
	}

	if again {
		go s.execute(context.Background(), key)
	}
}

// Mutations =================================================================

// Mutate executes the endpoint exactly once; repeated calls are never
// deduplicated, so callers retry by calling again. On success the
// endpoint's tags are invalidated; triggered refetches are fire-and-forget
// and do not delay the return.
func (s *Store) Mutate(ctx context.Context, ep Endpoint, args any) (json.RawMessage, error) {
	data, httpStatus, err := s.client.Do(ctx, ep, args)
	prob := asProblem(err)

	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	outcome := Outcome{
		ID:       uuid.NewString(),
		Family:   ep.Family,
		Endpoint: ep.Name,
		Method:   ep.Method,
		Args:     canonicalArgs(args),
		Status:   httpStatus,
		Err:      prob,
	}
	for _, l := range listeners {
		l.OperationCompleted(outcome)
	}
	s.metrics.observeRequest(ep.Family, ep.Name, prob != nil)

	if prob != nil {
		s.log.WithFields(map[string]interface{}{
			"operation": outcome.ID,
			"family":    ep.Family,
			"endpoint":  ep.Name,
			"status":    httpStatus,
		}).Warn("mutation failed")
		return nil, prob
	}

	if len(ep.Invalidates) > 0 {
		s.Invalidate(ep.Invalidates...)
	}
	return data, nil
}

// Invalidation ==============================================================

// Invalidate marks every entry providing one of the tags stale. Entries
// with active subscribers re-execute immediately; entries without
// subscribers are dropped and re-execute lazily on the next subscription.
func (s *Store) Invalidate(tags ...Tag) {
	type pending struct {
		key     entryKey
		subs    []*subscriber
		version uint64
		snap    Snapshot
	}
	var starts []pending

	s.mu.Lock()
	for key, e := range s.entries {
		if !e.ep.providesAny(tags) {
			continue
		}
		s.metrics.observeInvalidation()
		if len(e.subs) == 0 {
			if e.inflight {
				e.stale = true
			} else {
				if e.evict != nil {
					e.evict.Stop()
				}
				delete(s.entries, key)
			}
			continue
		}
		if e.inflight {
			e.stale = true
			continue
		}
		e.stale = false
		e.inflight = true
		e.status = statusLoading
		e.version++
		starts = append(starts, pending{key: key, subs: e.subscribers(), version: e.version, snap: e.snapshot()})
	}
	s.mu.Unlock()

	for _, p := range starts {
		for _, sub := range p.subs {
			sub.deliver(p.version, p.snap)
		}
		s.metrics.observeRefetch()
		go s.execute(context.Background(), p.key)
	}
}

// Reset drops every cache entry. Used by tests and logout flows. In-flight
// calls still complete but no longer update any entry.
func (s *Store) Reset() {
	s.mu.Lock()
	for key, e := range s.entries {
		if e.evict != nil {
			e.evict.Stop()
		}
		delete(s.entries, key)
	}
	s.mu.Unlock()
}

// Len reports the number of live cache entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
