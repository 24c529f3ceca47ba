package services

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/asamarket/asafish-gobackend/internal/models"
)

// PayoutService validates payout requests against computed balances and
// drives the administrator approval workflow.
type PayoutService struct {
	store      PayoutStore
	settlement *SettlementService

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-fisher request locks
}

func NewPayoutService(store PayoutStore, settlement *SettlementService) *PayoutService {
	return &PayoutService{
		store:      store,
		settlement: settlement,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockFisher serializes payout requests for one fisher so the balance read
// and the insert behave as a single atomic unit.
func (s *PayoutService) lockFisher(fisherID string) func() {
	s.mu.Lock()
	l, ok := s.locks[fisherID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[fisherID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Request creates a PENDING payout for the fisher after validating the
// amount against the requestable balance. Concurrent requests from the same
// fisher are linearized; at most one of two requests whose combined amount
// exceeds the balance can succeed.
func (s *PayoutService) Request(ctx context.Context, fisherID string, amount float64, method, account, notes string) (*models.Payout, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, models.ErrInvalidAmount
	}
	method = strings.TrimSpace(method)
	account = strings.TrimSpace(account)
	if method == "" || account == "" {
		return nil, models.ErrMissingField
	}

	unlock := s.lockFisher(fisherID)
	defer unlock()

	ceiling, err := s.settlement.Requestable(ctx, fisherID)
	if err != nil {
		return nil, err
	}
	if decimal.NewFromFloat(amount).GreaterThan(ceiling) {
		return nil, models.ErrInsufficientBalance
	}

	payout := &models.Payout{
		ID:        primitive.NewObjectID(),
		FisherID:  fisherID,
		Amount:    amount,
		Method:    method,
		Account:   account,
		Status:    models.PayoutPending,
		Notes:     strings.TrimSpace(notes),
		CreatedAt: time.Now(),
	}
	if err := s.store.Insert(ctx, payout); err != nil {
		return nil, err
	}
	return payout, nil
}

// Transition applies an administrator status change to a payout. The target
// must be one of the four workflow statuses and the edge must be allowed by
// the state machine; PAID and REJECTED are terminal and nothing moves back
// to PENDING. Amount is not re-validated here: the request-time snapshot is
// trusted.
func (s *PayoutService) Transition(ctx context.Context, payoutID, target, notes string) (*models.Payout, error) {
	status, err := models.ParsePayoutStatus(target)
	if err != nil {
		return nil, err
	}

	payout, err := s.store.FindByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	from := payout.Status
	if !from.CanTransition(status) {
		return nil, models.ErrInvalidTransition
	}

	payout.Status = status
	if notes = strings.TrimSpace(notes); notes != "" {
		payout.Notes = notes
	}
	now := time.Now()
	payout.ProcessedAt = &now

	// Compare-and-set on the snapshot status: if another administrator
	// moved the payout first, the write is rejected instead of clobbering
	// the newer state.
	if err := s.store.Update(ctx, payout, from); err != nil {
		return nil, err
	}
	return payout, nil
}

// History returns a fisher's balance (optionally windowed) together with
// every payout the fisher has requested.
func (s *PayoutService) History(ctx context.Context, fisherID string, from, to *time.Time) (*models.Balance, []models.Payout, error) {
	balance, err := s.settlement.AvailableBalance(ctx, fisherID, from, to)
	if err != nil {
		return nil, nil, err
	}
	payouts, err := s.store.ListByFisher(ctx, fisherID)
	if err != nil {
		return nil, nil, err
	}
	return balance, payouts, nil
}

// ListAll returns payouts across all fishers, optionally filtered by status.
func (s *PayoutService) ListAll(ctx context.Context, statusFilter string) ([]models.Payout, error) {
	var status *models.PayoutStatus
	if statusFilter != "" {
		parsed, err := models.ParsePayoutStatus(statusFilter)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}
	return s.store.List(ctx, status)
}
