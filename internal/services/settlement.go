package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/asamarket/asafish-gobackend/internal/models"
	"github.com/asamarket/asafish-gobackend/internal/pricing"
)

// withdrawnStatuses are the payout states that have already consumed revenue.
var withdrawnStatuses = []models.PayoutStatus{models.PayoutApproved, models.PayoutPaid}

// reservedStatuses additionally count PENDING requests, which hold their
// amount until an administrator rejects them. New payout requests are gated
// against this set so two requests can never spend the same revenue.
var reservedStatuses = []models.PayoutStatus{models.PayoutPending, models.PayoutApproved, models.PayoutPaid}

// SettlementService owns the settlement ledger: it records one immutable
// event per completed sale and derives per-fisher earnings and balances by
// summing the log.
type SettlementService struct {
	events         EventStore
	payouts        PayoutStore
	decayThreshold time.Duration
}

func NewSettlementService(events EventStore, payouts PayoutStore, decayThreshold time.Duration) *SettlementService {
	if decayThreshold <= 0 {
		decayThreshold = pricing.DefaultDecayThreshold
	}
	return &SettlementService{events: events, payouts: payouts, decayThreshold: decayThreshold}
}

// RecordSale appends the settlement event for a completed order, pricing the
// catch at completedAt. Amounts are frozen in the event; replays for the same
// order are no-ops.
func (s *SettlementService) RecordSale(ctx context.Context, order *models.Order, catch *models.Catch, completedAt time.Time) (*models.SettlementEvent, error) {
	price := decimal.NewFromFloat(catch.Price)
	effective, decayed := pricing.EffectivePrice(price, catch.Freshness, catch.ListedAt, s.decayThreshold, completedAt)
	split := pricing.SplitFees(effective)

	ev := &models.SettlementEvent{
		OrderID:        order.ID,
		FisherID:       catch.FisherID,
		CatchID:        order.CatchID,
		GrossEffective: effective.InexactFloat64(),
		BuyerFee:       split.BuyerFee.InexactFloat64(),
		FisherFee:      split.FisherFee.InexactFloat64(),
		NetToFisher:    split.NetToFisher.InexactFloat64(),
		DecayApplied:   decayed,
		OccurredAt:     completedAt,
	}
	if err := s.events.Append(ctx, ev); err != nil {
		return nil, err
	}
	log.Printf("Settled order %s: gross=%.2f fisher_fee=%.2f net=%.2f decay=%t",
		order.ID, ev.GrossEffective, ev.FisherFee, ev.NetToFisher, ev.DecayApplied)
	return ev, nil
}

// Aggregate sums a fisher's settlement events, optionally windowed by the
// event's occurred_at (inclusive on both ends). Every amount was rounded
// per event at settlement time, so the sums match an itemized statement.
func (s *SettlementService) Aggregate(ctx context.Context, fisherID string, from, to *time.Time) (*models.LedgerSummary, error) {
	events, err := s.events.ListByFisher(ctx, fisherID, from, to)
	if err != nil {
		return nil, err
	}

	gross, fees, net := decimal.Zero, decimal.Zero, decimal.Zero
	for _, ev := range events {
		gross = gross.Add(decimal.NewFromFloat(ev.GrossEffective))
		fees = fees.Add(decimal.NewFromFloat(ev.FisherFee))
		net = net.Add(decimal.NewFromFloat(ev.NetToFisher))
	}

	return &models.LedgerSummary{
		Gross: gross.InexactFloat64(),
		Fees:  fees.InexactFloat64(),
		Net:   net.InexactFloat64(),
		Count: len(events),
	}, nil
}

// AvailableBalance combines the windowed earnings summary with the lifetime
// withdrawn total (APPROVED and PAID payouts; withdrawals are never
// windowed). Available is net minus withdrawn and may be negative when the
// earnings window is narrower than lifetime.
func (s *SettlementService) AvailableBalance(ctx context.Context, fisherID string, from, to *time.Time) (*models.Balance, error) {
	var (
		summary   *models.LedgerSummary
		withdrawn float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.Aggregate(gctx, fisherID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		withdrawn, err = s.payouts.SumByStatus(gctx, fisherID, withdrawnStatuses)
		if err != nil {
			return fmt.Errorf("failed to sum withdrawn payouts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	available := decimal.NewFromFloat(summary.Net).Sub(decimal.NewFromFloat(withdrawn))
	return &models.Balance{
		Gross:     summary.Gross,
		Fees:      summary.Fees,
		Net:       summary.Net,
		Withdrawn: withdrawn,
		Available: available.InexactFloat64(),
	}, nil
}

// Requestable is the ceiling for a new payout request: lifetime net minus
// every non-rejected payout (PENDING requests hold their amount), floored at
// zero.
func (s *SettlementService) Requestable(ctx context.Context, fisherID string) (decimal.Decimal, error) {
	summary, err := s.Aggregate(ctx, fisherID, nil, nil)
	if err != nil {
		return decimal.Zero, err
	}
	reserved, err := s.payouts.SumByStatus(ctx, fisherID, reservedStatuses)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum reserved payouts: %w", err)
	}

	ceiling := decimal.NewFromFloat(summary.Net).Sub(decimal.NewFromFloat(reserved))
	if ceiling.IsNegative() {
		return decimal.Zero, nil
	}
	return ceiling, nil
}
