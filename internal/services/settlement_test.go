package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asamarket/asafish-gobackend/internal/models"
	"github.com/asamarket/asafish-gobackend/internal/pricing"
)

func newTestSettlement() (*SettlementService, *memEventStore, *memPayoutStore) {
	events := newMemEventStore()
	payouts := newMemPayoutStore()
	return NewSettlementService(events, payouts, 3*time.Hour), events, payouts
}

func TestRecordSaleFreshDecayed(t *testing.T) {
	svc, _, _ := newTestSettlement()
	completedAt := time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC)

	catch := &models.Catch{
		FisherID:  "fisher-1",
		Price:     100,
		Freshness: pricing.Fresh,
		ListedAt:  completedAt.Add(-5 * time.Hour),
	}
	order := &models.Order{ID: "order-1", CatchID: "catch-1"}

	ev, err := svc.RecordSale(context.Background(), order, catch, completedAt)
	require.NoError(t, err)

	assert.InDelta(t, 98.00, ev.GrossEffective, 1e-9)
	assert.InDelta(t, 9.80, ev.BuyerFee, 1e-9)
	assert.InDelta(t, 4.90, ev.FisherFee, 1e-9)
	assert.InDelta(t, 93.10, ev.NetToFisher, 1e-9)
	assert.True(t, ev.DecayApplied)
	assert.Equal(t, "fisher-1", ev.FisherID)
	assert.Equal(t, completedAt, ev.OccurredAt)
}

func TestRecordSalePricesAtCompletionTime(t *testing.T) {
	svc, _, _ := newTestSettlement()

	listedAt := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	orderedAt := listedAt.Add(2 * time.Hour)
	completedAt := listedAt.Add(4 * time.Hour)

	catch := &models.Catch{
		FisherID:  "fisher-1",
		Price:     100,
		Freshness: pricing.Fresh,
		ListedAt:  listedAt,
	}

	// At order time the catch is still under the threshold, so the buyer
	// was charged against the undiscounted price.
	atOrder, decayed := pricing.EffectivePrice(decimal.NewFromFloat(catch.Price), catch.Freshness, listedAt, 3*time.Hour, orderedAt)
	require.False(t, decayed)
	assert.True(t, atOrder.Equal(decimal.NewFromFloat(100)))

	// Settlement reprices at the completion instant, which is past the
	// threshold. The event carries the decayed amounts.
	ev, err := svc.RecordSale(context.Background(), &models.Order{ID: "order-1", CatchID: "catch-1"}, catch, completedAt)
	require.NoError(t, err)
	assert.True(t, ev.DecayApplied)
	assert.InDelta(t, 98.00, ev.GrossEffective, 1e-9)
	assert.InDelta(t, 93.10, ev.NetToFisher, 1e-9)
}

func TestRecordSaleIdempotentOnOrderID(t *testing.T) {
	svc, _, _ := newTestSettlement()
	completedAt := time.Now()

	catch := &models.Catch{FisherID: "fisher-1", Price: 50, Freshness: pricing.Frozen, ListedAt: completedAt}
	order := &models.Order{ID: "order-1", CatchID: "catch-1"}

	_, err := svc.RecordSale(context.Background(), order, catch, completedAt)
	require.NoError(t, err)
	_, err = svc.RecordSale(context.Background(), order, catch, completedAt)
	require.NoError(t, err)

	summary, err := svc.Aggregate(context.Background(), "fisher-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
	assert.InDelta(t, 50.00, summary.Gross, 1e-9)
}

func TestAggregateSumsPerEvent(t *testing.T) {
	svc, _, _ := newTestSettlement()
	completedAt := time.Date(2026, 4, 1, 14, 0, 0, 0, time.UTC)

	fresh := &models.Catch{FisherID: "fisher-1", Price: 100, Freshness: pricing.Fresh, ListedAt: completedAt.Add(-4 * time.Hour)}
	frozen := &models.Catch{FisherID: "fisher-1", Price: 50, Freshness: pricing.Frozen, ListedAt: completedAt.Add(-48 * time.Hour)}

	_, err := svc.RecordSale(context.Background(), &models.Order{ID: "o1", CatchID: "c1"}, fresh, completedAt)
	require.NoError(t, err)
	_, err = svc.RecordSale(context.Background(), &models.Order{ID: "o2", CatchID: "c2"}, frozen, completedAt.Add(time.Hour))
	require.NoError(t, err)

	summary, err := svc.Aggregate(context.Background(), "fisher-1", nil, nil)
	require.NoError(t, err)

	// 98.00 + 50.00 gross, 4.90 + 2.50 fisher fees, 93.10 + 47.50 net
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 148.00, summary.Gross, 1e-9)
	assert.InDelta(t, 7.40, summary.Fees, 1e-9)
	assert.InDelta(t, 140.60, summary.Net, 1e-9)
}

func TestAggregateWindowInclusive(t *testing.T) {
	svc, events, _ := newTestSettlement()
	day := func(d int) time.Time { return time.Date(2026, 4, d, 10, 0, 0, 0, time.UTC) }

	for i, net := range []float64{10, 20, 30} {
		err := events.Append(context.Background(), &models.SettlementEvent{
			OrderID:        string(rune('a' + i)),
			FisherID:       "fisher-1",
			GrossEffective: net,
			NetToFisher:    net,
			OccurredAt:     day(i + 1),
		})
		require.NoError(t, err)
	}

	from, to := day(1), day(2)
	summary, err := svc.Aggregate(context.Background(), "fisher-1", &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 30.0, summary.Net, 1e-9)

	// Boundary timestamps are included on both ends.
	from, to = day(2), day(2)
	summary, err = svc.Aggregate(context.Background(), "fisher-1", &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
}

func TestAggregateDeterministic(t *testing.T) {
	svc, _, _ := newTestSettlement()
	completedAt := time.Now()
	catch := &models.Catch{FisherID: "fisher-1", Price: 77.77, Freshness: pricing.Wasted, ListedAt: completedAt}
	_, err := svc.RecordSale(context.Background(), &models.Order{ID: "o1", CatchID: "c1"}, catch, completedAt)
	require.NoError(t, err)

	first, err := svc.Aggregate(context.Background(), "fisher-1", nil, nil)
	require.NoError(t, err)
	second, err := svc.Aggregate(context.Background(), "fisher-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAvailableBalanceIgnoresPendingAndRejected(t *testing.T) {
	svc, events, payouts := newTestSettlement()
	ctx := context.Background()

	err := events.Append(ctx, &models.SettlementEvent{
		OrderID: "o1", FisherID: "fisher-1", NetToFisher: 500, OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	addPayout := func(amount float64, status models.PayoutStatus) {
		require.NoError(t, payouts.Insert(ctx, &models.Payout{FisherID: "fisher-1", Amount: amount, Status: status}))
	}

	balance, err := svc.AvailableBalance(ctx, "fisher-1", nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, balance.Available, 1e-9)

	addPayout(100, models.PayoutPending)
	addPayout(50, models.PayoutRejected)
	balance, err = svc.AvailableBalance(ctx, "fisher-1", nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, balance.Withdrawn, 1e-9)
	assert.InDelta(t, 500.0, balance.Available, 1e-9)

	addPayout(120, models.PayoutApproved)
	balance, err = svc.AvailableBalance(ctx, "fisher-1", nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 120.0, balance.Withdrawn, 1e-9)
	assert.InDelta(t, 380.0, balance.Available, 1e-9)

	addPayout(80, models.PayoutPaid)
	balance, err = svc.AvailableBalance(ctx, "fisher-1", nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, balance.Withdrawn, 1e-9)
	assert.InDelta(t, 300.0, balance.Available, 1e-9)
}

func TestAvailableBalanceWithdrawnIsLifetime(t *testing.T) {
	svc, events, payouts := newTestSettlement()
	ctx := context.Background()

	old := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, events.Append(ctx, &models.SettlementEvent{OrderID: "o1", FisherID: "fisher-1", NetToFisher: 300, OccurredAt: old}))
	require.NoError(t, events.Append(ctx, &models.SettlementEvent{OrderID: "o2", FisherID: "fisher-1", NetToFisher: 100, OccurredAt: recent}))
	require.NoError(t, payouts.Insert(ctx, &models.Payout{FisherID: "fisher-1", Amount: 250, Status: models.PayoutPaid}))

	// Window only covers the recent event; the withdrawn subtraction stays
	// lifetime, so available goes negative.
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	balance, err := svc.AvailableBalance(ctx, "fisher-1", &from, nil)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, balance.Net, 1e-9)
	assert.InDelta(t, 250.0, balance.Withdrawn, 1e-9)
	assert.InDelta(t, -150.0, balance.Available, 1e-9)
}

func TestRequestableFloorsAtZero(t *testing.T) {
	svc, events, payouts := newTestSettlement()
	ctx := context.Background()

	require.NoError(t, events.Append(ctx, &models.SettlementEvent{OrderID: "o1", FisherID: "fisher-1", NetToFisher: 100, OccurredAt: time.Now()}))
	require.NoError(t, payouts.Insert(ctx, &models.Payout{FisherID: "fisher-1", Amount: 150, Status: models.PayoutPaid}))

	ceiling, err := svc.Requestable(ctx, "fisher-1")
	require.NoError(t, err)
	assert.True(t, ceiling.IsZero(), "ceiling = %s", ceiling)
}
