package sync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/roach88/dueline/internal/cache"
	"github.com/roach88/dueline/internal/hydrate"
	"github.com/roach88/dueline/internal/ledger"
	"github.com/roach88/dueline/internal/mutate"
	"github.com/roach88/dueline/internal/remote"
)

// Defaults applied by New when the corresponding option is absent.
const (
	DefaultHydrationTimeout = 10 * time.Second
	DefaultFlushSchedule    = "@every 30s"
	DefaultBackoffBase      = time.Second
	DefaultBackoffMax       = 5 * time.Minute
)

// Config carries the engine's required collaborators.
type Config struct {
	// Workspace is the shared workspace id. Required.
	Workspace string

	// FallbackWorkspace absorbs writes the primary workspace rejects
	// (permissions). Empty disables the fallback path.
	FallbackWorkspace string

	// Profile is the optional currency profile namespace. Empty means
	// the default single-currency layout.
	Profile string

	// Cache is the local durable cache. Required.
	Cache *cache.Cache

	// Remote is the shared workspace store. Required.
	Remote remote.Store
}

// Option configures optional engine parameters.
type Option func(*Engine)

// WithClock replaces the wall clock, freezing modification stamps and
// backoff deadlines in tests.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithIDs replaces the record id generator.
func WithIDs(g mutate.IDGenerator) Option {
	return func(e *Engine) { e.resolver.IDs = g }
}

// WithConfirmer wires the off-plan confirmation prompt.
func WithConfirmer(c mutate.Confirmer) Option {
	return func(e *Engine) { e.resolver.Confirm = c }
}

// WithHydrationTimeout bounds the startup readiness wait.
func WithHydrationTimeout(d time.Duration) Option {
	return func(e *Engine) { e.hydrationTimeout = d }
}

// WithFlushSchedule sets the cron spec driving flush ticks.
func WithFlushSchedule(spec string) Option {
	return func(e *Engine) { e.flushSchedule = spec }
}

// WithFlushBackoff tunes the flush retry backoff curve.
func WithFlushBackoff(base, max time.Duration) Option {
	return func(e *Engine) {
		e.backoffBase = base
		e.backoffMax = max
	}
}

// Engine is the single-writer replication loop. It owns the obligation
// Book and every other replicated category, reconciles inbound remote
// snapshots, and buffers outbound writes across connectivity loss.
//
// Thread-safety model:
//   - Run must be called from exactly one goroutine; it drains the
//     event queue (snapshots, flush ticks, connectivity changes).
//   - Intent methods (AddOccurrence, SetInstruments, ...) are safe from
//     any goroutine; they serialize against the Run loop on the engine
//     mutex.
//   - Subscription callbacks only enqueue and never touch state.
type Engine struct {
	cfg   Config
	log   *slog.Logger
	clock Clock

	queue *eventQueue
	gate  *hydrate.Gate
	cron  *cron.Cron

	hydrationTimeout time.Duration
	flushSchedule    string
	backoffBase      time.Duration
	backoffMax       time.Duration

	mu             stdsync.Mutex
	book           *ledger.Book
	instruments    []ledger.Instrument
	budgets        []ledger.Budget
	openingBalance int64
	openingDate    time.Time
	openingFlag    bool

	online  bool
	states  map[Category]State
	dirty   map[Category]bool
	cancels []func()

	flushAttempts  int
	flushNotBefore time.Time

	resolver *mutate.Resolver

	onTransactions func([]*ledger.Obligation)
	onInstruments  func([]ledger.Instrument)
}

// New creates an Engine. The engine starts offline-capable but idle;
// Start subscribes and Run processes.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if cfg.Workspace == "" {
		return nil, errors.New("sync: workspace is required")
	}
	if cfg.Cache == nil {
		return nil, errors.New("sync: cache is required")
	}
	if cfg.Remote == nil {
		return nil, errors.New("sync: remote store is required")
	}

	e := &Engine{
		cfg:              cfg,
		log:              slog.Default(),
		clock:            SystemClock,
		queue:            newEventQueue(),
		hydrationTimeout: DefaultHydrationTimeout,
		flushSchedule:    DefaultFlushSchedule,
		backoffBase:      DefaultBackoffBase,
		backoffMax:       DefaultBackoffMax,
		book:             ledger.NewBook(),
		states:           make(map[Category]State, len(Categories)),
		dirty:            make(map[Category]bool),
		resolver:         &mutate.Resolver{},
	}
	e.resolver.Instruments = func() []ledger.Instrument { return e.instruments }
	for _, opt := range opts {
		opt(e)
	}
	e.resolver.Now = e.clock.Now
	e.resolver.Today = e.clock.Now
	e.gate = hydrate.New(e.hydrationTimeout, func() {
		e.log.Info("hydration complete", "workspace", e.cfg.Workspace)
	})
	return e, nil
}

// OnTransactions registers the record-change callback. Call before
// Start; the callback runs with the engine mutex released only on the
// caller's stack discipline, so it must not call back into intents.
func (e *Engine) OnTransactions(fn func([]*ledger.Obligation)) {
	e.onTransactions = fn
}

// OnInstruments registers the instrument-change callback. Call before Start.
func (e *Engine) OnInstruments(fn func([]ledger.Instrument)) {
	e.onInstruments = fn
}

// Start loads the cached state, registers the hydration gate, opens the
// category subscriptions and schedules flush ticks. The engine assumes
// it is online until told otherwise.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.online = true
	if err := e.loadCacheLocked(ctx); err != nil {
		return err
	}
	if err := e.recomputeDirtyLocked(ctx); err != nil {
		return err
	}

	e.subscribeLocked()

	e.cron = cron.New()
	if _, err := e.cron.AddFunc(e.flushSchedule, func() {
		e.queue.Enqueue(Event{Type: EventFlushTick})
	}); err != nil {
		return err
	}
	e.cron.Start()
	return nil
}

// subscribeLocked registers the gate targets, arms the fallback timer
// and opens a subscription per category. Caller holds the mutex.
func (e *Engine) subscribeLocked() {
	for _, cat := range Categories {
		e.states[cat] = StateSubscribed
		e.gate.Register(string(cat))
	}
	e.gate.Arm()

	for _, cat := range Categories {
		cat := cat
		path := e.path(cat)
		cancel := e.cfg.Remote.Subscribe(path, func(v remote.Value) {
			e.queue.Enqueue(Event{Type: EventSnapshot, Category: cat, Path: path, Value: v})
		})
		e.cancels = append(e.cancels, cancel)
	}
}

// loadCacheLocked restores the last known state of every category from
// the durable cache. Misses (and corrupt entries) leave the in-memory
// zero state; the remote snapshot repopulates it.
func (e *Engine) loadCacheLocked(ctx context.Context) error {
	var records []*ledger.Obligation
	if found, err := e.cfg.Cache.Get(ctx, e.path(CategoryTransactions), &records); err != nil {
		return newCacheError(CategoryTransactions, err)
	} else if found {
		e.book.Replace(records)
	}
	if _, err := e.cfg.Cache.Get(ctx, e.path(CategoryInstruments), &e.instruments); err != nil {
		return newCacheError(CategoryInstruments, err)
	}
	if _, err := e.cfg.Cache.Get(ctx, e.path(CategoryBudgets), &e.budgets); err != nil {
		return newCacheError(CategoryBudgets, err)
	}
	if _, err := e.cfg.Cache.Get(ctx, e.path(CategoryOpeningBalance), &e.openingBalance); err != nil {
		return newCacheError(CategoryOpeningBalance, err)
	}
	if _, err := e.cfg.Cache.Get(ctx, e.path(CategoryOpeningDate), &e.openingDate); err != nil {
		return newCacheError(CategoryOpeningDate, err)
	}
	if _, err := e.cfg.Cache.Get(ctx, e.path(CategoryOpeningFlag), &e.openingFlag); err != nil {
		return newCacheError(CategoryOpeningFlag, err)
	}
	return nil
}

// Run drains the event queue until ctx is cancelled or Stop closes the
// queue. All snapshot reconciliation and flushing happens here.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if ev, ok := e.queue.TryDequeue(); ok {
			e.handleEvent(ctx, ev)
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-e.queue.Wait():
			if !ok {
				return nil
			}
		}
	}
}

// Stop cancels the subscriptions, stops the flush scheduler and closes
// the event queue, unblocking Run.
func (e *Engine) Stop() {
	e.mu.Lock()
	for _, cancel := range e.cancels {
		cancel()
	}
	e.cancels = nil
	if e.cron != nil {
		e.cron.Stop()
	}
	e.mu.Unlock()
	e.queue.Close()
}

// SetOnline reports a connectivity transition. Reconnecting schedules
// an immediate flush of the dirty queue.
func (e *Engine) SetOnline(online bool) {
	e.queue.Enqueue(Event{Type: EventConnectivity, Online: online})
}

func (e *Engine) handleEvent(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventSnapshot:
		e.handleSnapshot(ctx, ev.Category, ev.Path, ev.Value)
	case EventFlushTick:
		e.mu.Lock()
		if e.online {
			e.flushLocked(ctx)
		}
		e.mu.Unlock()
	case EventConnectivity:
		e.handleConnectivity(ctx, ev.Online)
	}
}

func (e *Engine) handleConnectivity(ctx context.Context, online bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.online == online {
		return
	}
	e.online = online
	e.log.Info("connectivity changed", "online", online)
	if online {
		// Fresh link: retry immediately, the old backoff is stale.
		e.flushAttempts = 0
		e.flushNotBefore = time.Time{}
		e.flushLocked(ctx)
	}
}

// handleSnapshot reconciles one inbound remote snapshot.
//
// Online with a clean queue, the snapshot replaces local state: the
// remote is authoritative and nothing local is unacknowledged. In every
// other case the snapshot is merged, so queued local work survives.
// Either way the category counts toward hydration readiness.
func (e *Engine) handleSnapshot(ctx context.Context, cat Category, path string, v remote.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if path != e.path(cat) {
		// Delivered by a subscription that a workspace switch has since
		// torn down. It belongs to the old workspace; applying it here
		// would leak its records into the new one.
		e.log.Debug("stale snapshot dropped", "category", cat, "path", path)
		return
	}

	dirty := e.dirty[cat]
	replace := e.online && !dirty
	e.states[cat] = StateMergePending

	var err error
	switch cat {
	case CategoryTransactions:
		err = e.applyTransactions(ctx, v, replace)
	case CategoryInstruments:
		err = e.applyInstruments(ctx, v, dirty)
	case CategoryBudgets:
		err = e.applyBudgets(ctx, v, replace)
	case CategoryOpeningBalance:
		err = applyScalar(ctx, e, cat, v, dirty, &e.openingBalance)
	case CategoryOpeningDate:
		err = applyScalar(ctx, e, cat, v, dirty, &e.openingDate)
	case CategoryOpeningFlag:
		err = applyScalar(ctx, e, cat, v, dirty, &e.openingFlag)
	default:
		e.log.Warn("snapshot for unknown category", "category", cat)
		return
	}

	if err != nil {
		// A bad snapshot never clobbers local state. The category still
		// counts as heard-from; hydration must not hang on it.
		e.log.Warn("snapshot rejected", "category", cat, "error", err)
	} else if dirty {
		e.states[cat] = StateMergePending
	} else {
		e.states[cat] = StateSynced
	}
	e.gate.MarkReady(string(cat))
}

func (e *Engine) applyTransactions(ctx context.Context, v remote.Value, replace bool) error {
	var rem []*ledger.Obligation
	if err := json.Unmarshal(v, &rem); err != nil {
		return newSnapshotError(CategoryTransactions, err)
	}

	var next []*ledger.Obligation
	if replace {
		next = rem
	} else {
		tombstones, err := e.cfg.Cache.RemovedIDs(ctx, string(CategoryTransactions))
		if err != nil {
			return newCacheError(CategoryTransactions, err)
		}
		next = mergeRecords(e.book.List(), rem, tombstones)
	}
	e.book.Replace(next)

	if err := e.cfg.Cache.Put(ctx, e.path(CategoryTransactions), next, e.clock.Now().Unix()); err != nil {
		return newCacheError(CategoryTransactions, err)
	}
	if e.onTransactions != nil {
		e.onTransactions(next)
	}
	return nil
}

func (e *Engine) applyInstruments(ctx context.Context, v remote.Value, dirty bool) error {
	// Instruments carry no per-item stamps; a dirty queue means the
	// local definition set is ahead and wins until flushed.
	if dirty {
		return nil
	}
	var rem []ledger.Instrument
	if err := json.Unmarshal(v, &rem); err != nil {
		return newSnapshotError(CategoryInstruments, err)
	}
	e.instruments = rem
	if err := e.cfg.Cache.Put(ctx, e.path(CategoryInstruments), rem, e.clock.Now().Unix()); err != nil {
		return newCacheError(CategoryInstruments, err)
	}
	if e.onInstruments != nil {
		e.onInstruments(rem)
	}
	return nil
}

func (e *Engine) applyBudgets(ctx context.Context, v remote.Value, replace bool) error {
	var rem []ledger.Budget
	if err := json.Unmarshal(v, &rem); err != nil {
		return newSnapshotError(CategoryBudgets, err)
	}
	if replace {
		e.budgets = rem
	} else {
		tombstones, err := e.cfg.Cache.RemovedIDs(ctx, string(CategoryBudgets))
		if err != nil {
			return newCacheError(CategoryBudgets, err)
		}
		e.budgets = mergeBudgets(e.budgets, rem, tombstones)
	}
	if err := e.cfg.Cache.Put(ctx, e.path(CategoryBudgets), e.budgets, e.clock.Now().Unix()); err != nil {
		return newCacheError(CategoryBudgets, err)
	}
	return nil
}

// applyScalar adopts a remote scalar unless queued local writes make
// the local value authoritative.
func applyScalar[T any](ctx context.Context, e *Engine, cat Category, v remote.Value, dirty bool, dst *T) error {
	if dirty {
		return nil
	}
	var val T
	if err := json.Unmarshal(v, &val); err != nil {
		return newSnapshotError(cat, err)
	}
	*dst = val
	if err := e.cfg.Cache.Put(ctx, e.path(cat), val, e.clock.Now().Unix()); err != nil {
		return newCacheError(cat, err)
	}
	return nil
}

// path builds the workspace path of a category. The same string keys
// the cache, so cached state is scoped per workspace and profile.
func (e *Engine) path(cat Category) string {
	return remote.Path(e.cfg.Workspace, e.cfg.Profile, string(cat))
}

// SwitchWorkspace re-homes the engine: subscriptions are torn down,
// the hydration gate re-opens, and the new workspace's cached state is
// loaded while fresh snapshots stream in.
func (e *Engine) SwitchWorkspace(ctx context.Context, workspace string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, cancel := range e.cancels {
		cancel()
	}
	e.cancels = nil
	e.cfg.Workspace = workspace

	e.book.Replace(nil)
	e.instruments = nil
	e.budgets = nil
	e.openingBalance = 0
	e.openingDate = time.Time{}
	e.openingFlag = false
	if err := e.loadCacheLocked(ctx); err != nil {
		return err
	}

	if err := e.recomputeDirtyLocked(ctx); err != nil {
		return err
	}

	e.gate.Reset()
	e.subscribeLocked()
	e.log.Info("workspace switched", "workspace", workspace)
	return nil
}

// recomputeDirtyLocked rebuilds the dirty flags from the queue. Only
// entries addressed at the current workspace count: writes queued for a
// previous workspace still flush to their recorded paths, but they must
// not force merges here.
func (e *Engine) recomputeDirtyLocked(ctx context.Context) error {
	entries, err := e.cfg.Cache.Pending(ctx)
	if err != nil {
		return newCacheError("", err)
	}
	dirty := make(map[Category]bool)
	for _, entry := range entries {
		cat := Category(entry.Category)
		if entry.Path == e.path(cat) {
			dirty[cat] = true
		}
	}
	e.dirty = dirty
	return nil
}

// HydrationDone returns a channel closed when every category has
// reported in (or the fallback timer gave up waiting).
func (e *Engine) HydrationDone() <-chan struct{} {
	return e.gate.Done()
}

// Hydrated reports whether the current hydration cycle has completed.
func (e *Engine) Hydrated() bool {
	return e.gate.Fired()
}

// CategoryState returns the replication state of a category.
func (e *Engine) CategoryState(cat Category) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[cat]
}

// Online reports the engine's current connectivity assumption.
func (e *Engine) Online() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.online
}

// Transactions returns the current record snapshot.
func (e *Engine) Transactions() []*ledger.Obligation {
	return e.book.List()
}

// Book exposes the record collection for read paths (listing,
// occurrence materialization). Callers must treat snapshots as
// immutable and mutate only through engine intents.
func (e *Engine) Book() *ledger.Book {
	return e.book
}

// Instruments returns the current card instrument definitions.
func (e *Engine) Instruments() []ledger.Instrument {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.instruments
}

// Budgets returns the current budget list.
func (e *Engine) Budgets() []ledger.Budget {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.budgets
}

// Opening returns the opening balance, tracking start date and the
// configured flag.
func (e *Engine) Opening() (int64, time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.openingBalance, e.openingDate, e.openingFlag
}
