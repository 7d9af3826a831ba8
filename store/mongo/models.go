package mongo

import (
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

// ==================== Event models ====================

type eventModel struct {
	grove.BaseModel `grove:"table:tokenledger_events"`

	ID         string            `grove:"id,pk" bson:"_id"`
	Seq        int64             `grove:"seq" bson:"seq"`
	TxID       string            `grove:"tx_id" bson:"tx_id"`
	Type       string            `grove:"type" bson:"type"`
	Attributes map[string]string `grove:"attributes" bson:"attributes"`
	Timestamp  int64             `grove:"timestamp" bson:"timestamp"`
	CreatedAt  time.Time         `grove:"created_at" bson:"created_at"`
}

func toEventModel(e *event.Event) *eventModel {
	return &eventModel{
		ID:         e.ID.String(),
		Seq:        int64(e.Seq),
		TxID:       e.TxID.String(),
		Type:       e.Type,
		Attributes: e.Attributes,
		Timestamp:  e.Timestamp,
		CreatedAt:  e.CreatedAt,
	}
}

func fromEventModel(m *eventModel) (*event.Event, error) {
	evtID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}
	txID, err := id.ParseTxID(m.TxID)
	if err != nil {
		return nil, err
	}
	attrs := m.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &event.Event{
		ID:         evtID,
		Seq:        uint64(m.Seq),
		TxID:       txID,
		Type:       m.Type,
		Attributes: attrs,
		Timestamp:  m.Timestamp,
		CreatedAt:  m.CreatedAt,
	}, nil
}

// ==================== Balance models ====================

type balanceModel struct {
	grove.BaseModel `grove:"table:tokenledger_balances"`

	ID        string    `grove:"id,pk" bson:"_id"`
	Account   string    `grove:"account" bson:"account"`
	TokenID   string    `grove:"token_id" bson:"token_id"`
	Amount    string    `grove:"amount" bson:"amount"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func toBalanceModel(b *token.Balance) *balanceModel {
	return &balanceModel{
		ID:        b.Key().String(),
		Account:   b.Account.Hex(),
		TokenID:   b.TokenID.String(),
		Amount:    b.Amount.String(),
		UpdatedAt: b.UpdatedAt,
	}
}

func fromBalanceModel(m *balanceModel) (*token.Balance, error) {
	account, err := types.ParseAddress(m.Account)
	if err != nil {
		return nil, err
	}
	tokenID, err := types.ParseTokenID(m.TokenID)
	if err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("balance %s: %w", m.ID, err)
	}
	return &token.Balance{
		Account:   account,
		TokenID:   tokenID,
		Amount:    amount,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// ==================== Schedule models ====================

type scheduleModel struct {
	grove.BaseModel `grove:"table:tokenledger_vesting_schedules"`

	ID              string    `grove:"id,pk" bson:"_id"`
	Idx             int64     `grove:"idx" bson:"idx"`
	Escrow          string    `grove:"escrow" bson:"escrow"`
	Owner           string    `grove:"owner" bson:"owner"`
	Beneficiary     string    `grove:"beneficiary" bson:"beneficiary"`
	Asset           string    `grove:"asset" bson:"asset"`
	TotalAmount     string    `grove:"total_amount" bson:"total_amount"`
	InitialUnlocked string    `grove:"initial_unlocked" bson:"initial_unlocked"`
	ClaimedAmount   string    `grove:"claimed_amount" bson:"claimed_amount"`
	StartTime       int64     `grove:"start_time" bson:"start_time"`
	UnlockPeriod    int64     `grove:"unlock_period" bson:"unlock_period"`
	Duration        int64     `grove:"duration" bson:"duration"`
	Status          string    `grove:"status" bson:"status"`
	CreatedAt       time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at" bson:"updated_at"`
}

func toScheduleModel(s *vesting.Schedule) *scheduleModel {
	return &scheduleModel{
		ID:              s.ID.String(),
		Idx:             int64(s.Index),
		Escrow:          s.Escrow.Hex(),
		Owner:           s.Owner.Hex(),
		Beneficiary:     s.Beneficiary.Hex(),
		Asset:           s.Asset,
		TotalAmount:     s.TotalAmount.String(),
		InitialUnlocked: s.InitialUnlocked.String(),
		ClaimedAmount:   s.Claimed.String(),
		StartTime:       s.StartTime,
		UnlockPeriod:    int64(s.UnlockPeriod),
		Duration:        int64(s.Duration),
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func fromScheduleModel(m *scheduleModel) (*vesting.Schedule, error) {
	schedID, err := id.ParseScheduleID(m.ID)
	if err != nil {
		return nil, err
	}
	addrs := make([]types.Address, 3)
	for i, s := range []string{m.Escrow, m.Owner, m.Beneficiary} {
		if addrs[i], err = types.ParseAddress(s); err != nil {
			return nil, err
		}
	}
	amounts := make([]types.Amount, 3)
	for i, s := range []string{m.TotalAmount, m.InitialUnlocked, m.ClaimedAmount} {
		if amounts[i], err = types.ParseAmount(s); err != nil {
			return nil, fmt.Errorf("schedule %d: %w", m.Idx, err)
		}
	}
	return &vesting.Schedule{
		Entity:          types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:              schedID,
		Index:           uint64(m.Idx),
		Escrow:          addrs[0],
		Owner:           addrs[1],
		Beneficiary:     addrs[2],
		Asset:           m.Asset,
		TotalAmount:     amounts[0],
		InitialUnlocked: amounts[1],
		Claimed:         amounts[2],
		StartTime:       m.StartTime,
		UnlockPeriod:    uint64(m.UnlockPeriod),
		Duration:        uint64(m.Duration),
		Status:          vesting.Status(m.Status),
	}, nil
}
