package services

import (
	"context"
	"sync"
	"time"

	"github.com/asamarket/asafish-gobackend/internal/models"
)

// In-memory store fakes used by the service tests. They mirror the Mongo
// stores' contracts: Append is idempotent on order id, sums and lists filter
// the same fields.

type memEventStore struct {
	mu      sync.Mutex
	events  []models.SettlementEvent
	byOrder map[string]bool
}

func newMemEventStore() *memEventStore {
	return &memEventStore{byOrder: make(map[string]bool)}
}

func (s *memEventStore) Append(ctx context.Context, ev *models.SettlementEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byOrder[ev.OrderID] {
		return nil
	}
	s.byOrder[ev.OrderID] = true
	s.events = append(s.events, *ev)
	return nil
}

func (s *memEventStore) ListByFisher(ctx context.Context, fisherID string, from, to *time.Time) ([]models.SettlementEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SettlementEvent
	for _, ev := range s.events {
		if ev.FisherID != fisherID {
			continue
		}
		if from != nil && ev.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && ev.OccurredAt.After(*to) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

type memPayoutStore struct {
	mu      sync.Mutex
	payouts []*models.Payout
}

func newMemPayoutStore() *memPayoutStore {
	return &memPayoutStore{}
}

func (s *memPayoutStore) Insert(ctx context.Context, p *models.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.payouts = append(s.payouts, &cp)
	return nil
}

func (s *memPayoutStore) FindByID(ctx context.Context, id string) (*models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payouts {
		if p.ID.Hex() == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.ErrPayoutNotFound
}

func (s *memPayoutStore) Update(ctx context.Context, p *models.Payout, from models.PayoutStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.payouts {
		if existing.ID == p.ID {
			if existing.Status != from {
				return models.ErrInvalidTransition
			}
			cp := *p
			s.payouts[i] = &cp
			return nil
		}
	}
	return models.ErrPayoutNotFound
}

func (s *memPayoutStore) ListByFisher(ctx context.Context, fisherID string) ([]models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payout
	for _, p := range s.payouts {
		if p.FisherID == fisherID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memPayoutStore) List(ctx context.Context, status *models.PayoutStatus) ([]models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payout
	for _, p := range s.payouts {
		if status == nil || p.Status == *status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memPayoutStore) SumByStatus(ctx context.Context, fisherID string, statuses []models.PayoutStatus) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, p := range s.payouts {
		if p.FisherID != fisherID {
			continue
		}
		for _, status := range statuses {
			if p.Status == status {
				total += p.Amount
				break
			}
		}
	}
	return total, nil
}

func (s *memPayoutStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payouts)
}
