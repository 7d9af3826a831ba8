package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	ledgerstore "github.com/xraph/tokenledger/store"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("tokenledger/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("tokenledger/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Apply ====================

// Apply removes, then upserts the batch's balances and schedules, then
// inserts its events. Re-applying a batch is harmless.
func (s *Store) Apply(ctx context.Context, b *ledgerstore.Batch) error {
	for _, idx := range b.RemovedSchedules {
		_, err := s.sdb.NewDelete((*scheduleModel)(nil)).
			Where("idx = ?", int64(idx)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tokenledger/sqlite: remove schedule %d: %w", idx, err)
		}
	}

	if len(b.Balances) > 0 {
		models := make([]balanceModel, len(b.Balances))
		for i, bal := range b.Balances {
			models[i] = *toBalanceModel(bal)
		}
		_, err := s.sdb.NewInsert(&models).
			OnConflict("(id) DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tokenledger/sqlite: apply balances: %w", err)
		}
	}

	if len(b.Schedules) > 0 {
		models := make([]scheduleModel, len(b.Schedules))
		for i, sch := range b.Schedules {
			models[i] = *toScheduleModel(sch)
		}
		_, err := s.sdb.NewInsert(&models).
			OnConflict(`(id) DO UPDATE SET
				owner = excluded.owner,
				beneficiary = excluded.beneficiary,
				asset = excluded.asset,
				total_amount = excluded.total_amount,
				initial_unlocked = excluded.initial_unlocked,
				claimed_amount = excluded.claimed_amount,
				start_time = excluded.start_time,
				unlock_period = excluded.unlock_period,
				duration = excluded.duration,
				status = excluded.status,
				updated_at = excluded.updated_at`).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tokenledger/sqlite: apply schedules: %w", err)
		}
	}

	if len(b.Events) > 0 {
		models := make([]eventModel, len(b.Events))
		for i, e := range b.Events {
			models[i] = *toEventModel(e)
		}
		_, err := s.sdb.NewInsert(&models).
			OnConflict("(id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tokenledger/sqlite: apply events: %w", err)
		}
	}
	return nil
}

// ==================== Event Store ====================

func (s *Store) ListEvents(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	var models []eventModel
	q := s.sdb.NewSelect(&models).Where("seq > ?", int64(opts.AfterSeq))

	if opts.Type != "" {
		q = q.Where("type = ?", opts.Type)
	}
	if !opts.TxID.IsNil() {
		q = q.Where("tx_id = ?", opts.TxID.String())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	q = q.OrderExpr("seq ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tokenledger/sqlite: list events: %w", err)
	}

	result := make([]*event.Event, len(models))
	for i := range models {
		e, err := fromEventModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

func (s *Store) LastSequence(ctx context.Context) (uint64, error) {
	var last int64
	err := s.sdb.NewRaw(`SELECT COALESCE(MAX(seq), 0) FROM tokenledger_events`).Scan(ctx, &last)
	if err != nil {
		return 0, fmt.Errorf("tokenledger/sqlite: last sequence: %w", err)
	}
	return uint64(last), nil
}

// ==================== Balance Store ====================

func (s *Store) GetBalance(ctx context.Context, account types.Address, id types.TokenID) (*token.Balance, error) {
	key := token.BalanceKey{Account: account, ID: id}.String()
	m := new(balanceModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: balance %s", errs.ErrNotFound, key)
		}
		return nil, fmt.Errorf("tokenledger/sqlite: get balance: %w", err)
	}
	return fromBalanceModel(m)
}

func (s *Store) ListBalances(ctx context.Context, opts token.ListOpts) ([]*token.Balance, error) {
	var models []balanceModel
	q := s.sdb.NewSelect(&models).Where("amount <> ?", "0")

	if opts.Account != nil {
		q = q.Where("account = ?", opts.Account.Hex())
	}
	if opts.TokenID != nil {
		q = q.Where("token_id = ?", opts.TokenID.String())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tokenledger/sqlite: list balances: %w", err)
	}

	result := make([]*token.Balance, len(models))
	for i := range models {
		b, err := fromBalanceModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

// ==================== Schedule Store ====================

func (s *Store) GetSchedule(ctx context.Context, index uint64) (*vesting.Schedule, error) {
	m := new(scheduleModel)
	err := s.sdb.NewSelect(m).
		Where("idx = ?", int64(index)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: index %d", errs.ErrScheduleNotFound, index)
		}
		return nil, fmt.Errorf("tokenledger/sqlite: get schedule: %w", err)
	}
	return fromScheduleModel(m)
}

func (s *Store) ListSchedules(ctx context.Context, opts vesting.ListOpts) ([]*vesting.Schedule, error) {
	var models []scheduleModel
	q := s.sdb.NewSelect(&models)

	if opts.Owner != nil {
		q = q.Where("owner = ?", opts.Owner.Hex())
	}
	if opts.Beneficiary != nil {
		q = q.Where("beneficiary = ?", opts.Beneficiary.Hex())
	}
	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("idx ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tokenledger/sqlite: list schedules: %w", err)
	}

	result := make([]*vesting.Schedule, len(models))
	for i := range models {
		sch, err := fromScheduleModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sch
	}
	return result, nil
}

// ==================== Helpers ====================

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
