package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	ledgerstore "github.com/xraph/tokenledger/store"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

// Collection name constants.
const (
	colEvents    = "tokenledger_events"
	colBalances  = "tokenledger_balances"
	colSchedules = "tokenledger_vesting_schedules"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all tokenledger collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("tokenledger/mongo: migrate %s indexes: %w", col, err)
		}
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
// inserts its events. Events already present from an earlier attempt are skipped.
func (s *Store) Apply(ctx context.Context, b *ledgerstore.Batch) error {
	for _, idx := range b.RemovedSchedules {
		_, err := s.mdb.NewDelete((*scheduleModel)(nil)).
			Filter(bson.M{"idx": int64(idx)}).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tokenledger/mongo: remove schedule %d: %w", idx, err)
		}
	}
	for _, bal := range b.Balances {
		m := toBalanceModel(bal)
		if err := s.upsert(ctx, m, m.ID); err != nil {
			return fmt.Errorf("tokenledger/mongo: apply balance %s: %w", m.ID, err)
		}
	}
	for _, sch := range b.Schedules {
		m := toScheduleModel(sch)
		if err := s.upsert(ctx, m, m.ID); err != nil {
			return fmt.Errorf("tokenledger/mongo: apply schedule %d: %w", sch.Index, err)
		}
	}
	for _, e := range b.Events {
		if _, err := s.mdb.NewInsert(toEventModel(e)).Exec(ctx); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("tokenledger/mongo: apply event %d: %w", e.Seq, err)
		}
	}
	return nil
}

// upsert replaces the document with _id key, inserting it when absent.
func (s *Store) upsert(ctx context.Context, model any, key string) error {
	res, err := s.mdb.NewUpdate(model).
		Filter(bson.M{"_id": key}).
		Exec(ctx)
	if err != nil {
		return err
	}
	if res.MatchedCount() > 0 {
		return nil
	}
	_, err = s.mdb.NewInsert(model).Exec(ctx)
	return err
}

// ==================== Event Store ====================

func (s *Store) ListEvents(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	var models []eventModel

	filter := bson.M{"seq": bson.M{"$gt": int64(opts.AfterSeq)}}
	if opts.Type != "" {
		filter["type"] = opts.Type
	}
	if !opts.TxID.IsNil() {
		filter["tx_id"] = opts.TxID.String()
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "seq", Value: 1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tokenledger/mongo: list events: %w", err)
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
	var m eventModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "seq", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("tokenledger/mongo: last sequence: %w", err)
	}
	return uint64(m.Seq), nil
}

// ==================== Balance Store ====================

func (s *Store) GetBalance(ctx context.Context, account types.Address, id types.TokenID) (*token.Balance, error) {
	key := token.BalanceKey{Account: account, ID: id}.String()
	var m balanceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": key}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("%w: balance %s", errs.ErrNotFound, key)
		}
		return nil, fmt.Errorf("tokenledger/mongo: get balance: %w", err)
	}
	return fromBalanceModel(&m)
}

func (s *Store) ListBalances(ctx context.Context, opts token.ListOpts) ([]*token.Balance, error) {
	var models []balanceModel

	filter := bson.M{"amount": bson.M{"$ne": "0"}}
	if opts.Account != nil {
		filter["account"] = opts.Account.Hex()
	}
	if opts.TokenID != nil {
		filter["token_id"] = opts.TokenID.String()
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tokenledger/mongo: list balances: %w", err)
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
	var m scheduleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"idx": int64(index)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("%w: index %d", errs.ErrScheduleNotFound, index)
		}
		return nil, fmt.Errorf("tokenledger/mongo: get schedule: %w", err)
	}
	return fromScheduleModel(&m)
}

func (s *Store) ListSchedules(ctx context.Context, opts vesting.ListOpts) ([]*vesting.Schedule, error) {
	var models []scheduleModel

	filter := bson.M{}
	if opts.Owner != nil {
		filter["owner"] = opts.Owner.Hex()
	}
	if opts.Beneficiary != nil {
		filter["beneficiary"] = opts.Beneficiary.Hex()
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "idx", Value: 1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tokenledger/mongo: list schedules: %w", err)
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all tokenledger collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colEvents: {
			{
				Keys:    bson.D{{Key: "seq", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "seq", Value: 1}}},
			{Keys: bson.D{{Key: "tx_id", Value: 1}}},
		},
		colBalances: {
			{Keys: bson.D{{Key: "account", Value: 1}}},
			{Keys: bson.D{{Key: "token_id", Value: 1}}},
		},
		colSchedules: {
			{
				Keys:    bson.D{{Key: "idx", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "owner", Value: 1}}},
			{Keys: bson.D{{Key: "beneficiary", Value: 1}}},
		},
	}
}
