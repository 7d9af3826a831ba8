package tokenledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/jonboulle/clockwork"

	"github.com/xraph/tokenledger/access"
	"github.com/xraph/tokenledger/asset"
	"github.com/xraph/tokenledger/converter"
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/journal"
	"github.com/xraph/tokenledger/plugin"
	"github.com/xraph/tokenledger/snapshot"
	"github.com/xraph/tokenledger/store"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

// VestingRegistryAddress seeds the escrow addresses of every schedule.
var VestingRegistryAddress = common.BytesToAddress(crypto.Keccak256([]byte("tokenledger.vesting"))[12:])

// Engine is the token ledger engine. It owns every component and runs each
// mutation as one all-or-nothing transaction: on error nothing changes,
// no event is emitted and nothing is written to the store.
type Engine struct {
	mu      sync.RWMutex
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   clockwork.Clock

	// Configuration
	owner             types.Address
	baseURI           string
	burnable          bool
	granularity       snapshot.Granularity
	persistMaxRetries uint64
	persistMaxElapsed time.Duration
	autoMigrate       bool

	// Components
	j          *journal.Journal
	access     *access.Controller
	ledger     *token.Ledger
	snapshots  *snapshot.Index
	assets     asset.Registry
	vesting    *vesting.Registry
	converters map[string]*converter.Converter

	// Commit position
	seq    uint64
	lastTs int64
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:             s,
		plugins:           plugin.NewRegistry(),
		logger:            slog.Default(),
		clock:             clockwork.NewRealClock(),
		granularity:       snapshot.Exact,
		persistMaxRetries: 5,
		persistMaxElapsed: 10 * time.Second,
		autoMigrate:       true,
		burnable:          true,
		assets:            asset.Registry{},
		converters:        make(map[string]*converter.Converter),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.j = journal.New()
	e.access = access.New(e.j, e.owner, access.WithBurnable(e.burnable))
	e.ledger = token.NewLedger(e.j, e.access, e.baseURI)
	e.snapshots = snapshot.New(e.j, e.granularity)
	e.ledger.Observe(e.snapshots)
	e.vesting = vesting.NewRegistry(e.j, VestingRegistryAddress, e.assets)

	if types.IsZero(e.owner) {
		e.logger.Warn("tokenledger engine has no owner; administrative operations will be denied")
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock sets the time source. Transactions read it once.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithOwner sets the controlling owner. The owner holds every standard role.
func WithOwner(owner types.Address) Option {
	return func(e *Engine) {
		e.owner = owner
	}
}

// WithBaseURI sets the metadata URI template. "{id}" is replaced by the
// 64-digit hex id.
func WithBaseURI(uri string) Option {
	return func(e *Engine) {
		e.baseURI = uri
	}
}

// WithBurnable enables or disables burning. When disabled, Burn, BurnBatch
// and SetBurnApproval fail with ErrNotBurnable. Default: enabled.
func WithBurnable(burnable bool) Option {
	return func(e *Engine) {
		e.burnable = burnable
	}
}

// WithSnapshotGranularity sets the rounding of historical queries.
func WithSnapshotGranularity(g snapshot.Granularity) Option {
	return func(e *Engine) {
		e.granularity = g
	}
}

// WithPersistRetry bounds the retries of a failed store write.
func WithPersistRetry(maxRetries uint64, maxElapsed time.Duration) Option {
	return func(e *Engine) {
		e.persistMaxRetries = maxRetries
		e.persistMaxElapsed = maxElapsed
	}
}

// WithAutoMigrate controls whether Start migrates the store.
func WithAutoMigrate(enabled bool) Option {
	return func(e *Engine) {
		e.autoMigrate = enabled
	}
}

// Start migrates the store, resumes the event sequence and initializes
// plugins.
func (e *Engine) Start(ctx context.Context) error {
	if e.autoMigrate {
		if err := e.store.Migrate(ctx); err != nil {
			return err
		}
	}

	last, err := e.store.LastSequence(ctx)
	if err != nil {
		return fmt.Errorf("tokenledger: load last sequence: %w", err)
	}

	e.mu.Lock()
	e.seq = last
	e.mu.Unlock()

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("tokenledger engine started",
		"owner", e.owner.Hex(),
		"granularity", e.granularity.String(),
		"last_seq", last,
		"plugins", e.plugins.Count(),
	)

	return nil
}

// Stop shuts down plugins and closes the store.
func (e *Engine) Stop(ctx context.Context) error {
	e.plugins.EmitShutdown(ctx)
	return e.store.Close()
}

// Store returns the backing store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry.
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Owner returns the controlling owner.
func (e *Engine) Owner() types.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.access.Owner()
}

// ──────────────────────────────────────────────────
// Transactions
// ──────────────────────────────────────────────────

type committed struct {
	txID    id.TxID
	events  []*event.Event
	elapsed time.Duration
}

// exec runs fn as one transaction. Plugins are dispatched after the lock
// is released so hooks may call back into the engine.
func (e *Engine) exec(ctx context.Context, op string, fn func() error) error {
	c, err := e.run(ctx, op, fn)
	if err != nil {
		e.plugins.EmitTxReverted(ctx, op, err)
		return err
	}
	e.plugins.EmitCommitted(ctx, c.txID, op, c.events, c.elapsed)
	return nil
}

func (e *Engine) run(ctx context.Context, op string, fn func() error) (*committed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.clock.Now()
	now := start.Unix()
	if now < e.lastTs {
		now = e.lastTs
	}

	e.j.Begin(now)
	if err := fn(); err != nil {
		e.j.Revert()
		return nil, err
	}

	txID := id.NewTxID()
	batch := e.buildBatch(txID, now)
	if err := e.persist(ctx, op, batch); err != nil {
		touched := e.j.Touched(journal.KindSchedule)
		e.j.Revert()
		e.restore(ctx, op, batch, touched, now)
		return nil, err
	}

	events := e.j.Commit()
	e.seq += uint64(len(events))
	e.lastTs = now

	elapsed := e.clock.Since(start)
	e.logger.Debug("transaction committed",
		"op", op,
		"tx_id", txID.String(),
		"events", len(events),
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return &committed{txID: txID, events: events, elapsed: elapsed}, nil
}

// buildBatch stamps the buffered events and collects the dirty records.
func (e *Engine) buildBatch(txID id.TxID, now int64) *store.Batch {
	ts := time.Unix(now, 0).UTC()
	b := &store.Batch{TxID: txID}

	for i, evt := range e.j.Events() {
		evt.Seq = e.seq + uint64(i) + 1
		evt.TxID = txID
		evt.CreatedAt = ts
		b.Events = append(b.Events, evt)
	}

	for _, k := range e.j.Touched(journal.KindBalance) {
		key, ok := k.(token.BalanceKey)
		if !ok {
			continue
		}
		b.Balances = append(b.Balances, &token.Balance{
			Account:   key.Account,
			TokenID:   key.ID,
			Amount:    e.ledger.BalanceOf(key.Account, key.ID),
			UpdatedAt: ts,
		})
	}

	for _, k := range e.j.Touched(journal.KindSchedule) {
		index, ok := k.(uint64)
		if !ok {
			continue
		}
		// A schedule created and then reverted to a savepoint is gone.
		if s, err := e.vesting.Get(index); err == nil {
			b.Schedules = append(b.Schedules, s)
		}
	}

	return b
}

// restore writes the reverted values of a failed batch's records back to
// the store. Apply is not atomic, so a failed write may have landed some
// balances or schedules; events are never rewritten because the sequence
// only moves once they land.
func (e *Engine) restore(ctx context.Context, op string, failed *store.Batch, schedules []any, now int64) {
	ts := time.Unix(now, 0).UTC()
	b := &store.Batch{TxID: failed.TxID}
	for _, bal := range failed.Balances {
		b.Balances = append(b.Balances, &token.Balance{
			Account:   bal.Account,
			TokenID:   bal.TokenID,
			Amount:    e.ledger.BalanceOf(bal.Account, bal.TokenID),
			UpdatedAt: ts,
		})
	}
	for _, k := range schedules {
		index, ok := k.(uint64)
		if !ok {
			continue
		}
		if s, err := e.vesting.Get(index); err == nil {
			b.Schedules = append(b.Schedules, s)
		} else {
			b.RemovedSchedules = append(b.RemovedSchedules, index)
		}
	}

	if err := e.persist(context.WithoutCancel(ctx), op+".restore", b); err != nil {
		e.logger.Error("read models may hold values of an aborted transaction",
			"op", op,
			"tx_id", failed.TxID.String(),
			"error", err,
		)
	}
}

// persist writes the batch, retrying retryable store errors with
// exponential backoff.
func (e *Engine) persist(ctx context.Context, op string, b *store.Batch) error {
	if b.IsEmpty() {
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = e.persistMaxElapsed

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := e.store.Apply(ctx, b)
		if err == nil {
			return nil
		}
		if !errs.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		e.logger.Warn("persist failed, retrying",
			"op", op,
			"tx_id", b.TxID.String(),
			"attempt", attempt,
			"error", err,
		)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, e.persistMaxRetries), ctx))
	if err != nil {
		e.logger.Error("persist failed",
			"op", op,
			"tx_id", b.TxID.String(),
			"attempts", attempt,
			"error", err,
		)
		return fmt.Errorf("%w: %s: %w", errs.ErrStoreFailed, op, err)
	}
	return nil
}

// now returns the timestamp reads are evaluated at.
func (e *Engine) now() int64 {
	now := e.clock.Now().Unix()
	if now < e.lastTs {
		return e.lastTs
	}
	return now
}

// ListEvents reads the persisted event log.
func (e *Engine) ListEvents(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	return e.store.ListEvents(ctx, opts)
}
