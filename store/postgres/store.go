package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
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

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("tokenledger/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("tokenledger/postgres: migration failed: %w", err)
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
		_, err := s.pg.NewDelete((*scheduleModel)(nil)).
			Where("idx = $1", int64(idx)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tokenledger/postgres: remove schedule %d: %w", idx, err)
		}
	}

	if len(b.Balances) > 0 {
		models := make([]balanceModel, len(b.Balances))
		for i, bal := range b.Balances {
			models[i] = *toBalanceModel(bal)
		}
		_, err := s.pg.NewInsert(&models).
			OnConflict("(id) DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tokenledger/postgres: apply balances: %w", err)
		}
	}

	if len(b.Schedules) > 0 {
		models := make([]scheduleModel, len(b.Schedules))
		for i, sch := range b.Schedules {
			models[i] = *toScheduleModel(sch)
		}
		_, err := s.pg.NewInsert(&models).
			OnConflict(`(id) DO UPDATE SET
				owner = EXCLUDED.owner,
				beneficiary = EXCLUDED.beneficiary,
				asset = EXCLUDED.asset,
				total_amount = EXCLUDED.total_amount,
				initial_unlocked = EXCLUDED.initial_unlocked,
				claimed_amount = EXCLUDED.claimed_amount,
				start_time = EXCLUDED.start_time,
				unlock_period = EXCLUDED.unlock_period,
				duration = EXCLUDED.duration,
				status = EXCLUDED.status,
				updated_at = EXCLUDED.updated_at`).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tokenledger/postgres: apply schedules: %w", err)
		}
	}

	if len(b.Events) > 0 {
		models := make([]eventModel, len(b.Events))
		for i, e := range b.Events {
			models[i] = *toEventModel(e)
		}
		_, err := s.pg.NewInsert(&models).
			OnConflict("(id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tokenledger/postgres: apply events: %w", err)
		}
	}
	return nil
}

// ==================== Event Store ====================

func (s *Store) ListEvents(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	var models []eventModel
	q := s.pg.NewSelect(&models).Where("seq > $1", int64(opts.AfterSeq))

	argIdx := 1
	if opts.Type != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("type = $%d", argIdx), opts.Type)
	}
	if !opts.TxID.IsNil() {
		argIdx++
		q = q.Where(fmt.Sprintf("tx_id = $%d", argIdx), opts.TxID.String())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	q = q.OrderExpr("seq ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tokenledger/postgres: list events: %w", err)
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
	err := s.pg.NewRaw(`SELECT COALESCE(MAX(seq), 0) FROM tokenledger_events`).Scan(ctx, &last)
	if err != nil {
		return 0, fmt.Errorf("tokenledger/postgres: last sequence: %w", err)
	}
	return uint64(last), nil
}

// ==================== Balance Store ====================

func (s *Store) GetBalance(ctx context.Context, account types.Address, id types.TokenID) (*token.Balance, error) {
	key := token.BalanceKey{Account: account, ID: id}.String()
	m := new(balanceModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: balance %s", errs.ErrNotFound, key)
		}
		return nil, fmt.Errorf("tokenledger/postgres: get balance: %w", err)
	}
	return fromBalanceModel(m)
}

func (s *Store) ListBalances(ctx context.Context, opts token.ListOpts) ([]*token.Balance, error) {
	var models []balanceModel
	q := s.pg.NewSelect(&models).Where("amount <> $1", "0")

	argIdx := 1
	if opts.Account != nil {
		argIdx++
		q = q.Where(fmt.Sprintf("account = $%d", argIdx), opts.Account.Hex())
	}
	if opts.TokenID != nil {
		argIdx++
		q = q.Where(fmt.Sprintf("token_id = $%d", argIdx), opts.TokenID.String())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tokenledger/postgres: list balances: %w", err)
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
	err := s.pg.NewSelect(m).
		Where("idx = $1", int64(index)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: index %d", errs.ErrScheduleNotFound, index)
		}
		return nil, fmt.Errorf("tokenledger/postgres: get schedule: %w", err)
	}
	return fromScheduleModel(m)
}

func (s *Store) ListSchedules(ctx context.Context, opts vesting.ListOpts) ([]*vesting.Schedule, error) {
	var models []scheduleModel
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if opts.Owner != nil {
		argIdx++
		q = q.Where(fmt.Sprintf("owner = $%d", argIdx), opts.Owner.Hex())
	}
	if opts.Beneficiary != nil {
		argIdx++
		q = q.Where(fmt.Sprintf("beneficiary = $%d", argIdx), opts.Beneficiary.Hex())
	}
	if opts.Status != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("idx ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tokenledger/postgres: list schedules: %w", err)
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
