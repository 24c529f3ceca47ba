package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/asamarket/asafish-gobackend/internal/models"
	"github.com/asamarket/asafish-gobackend/internal/pricing"
)

// OrderService creates orders against the payment gateway and owns the
// completion path that feeds the settlement ledger.
type OrderService struct {
	db         *mongo.Database
	catches    *CatchService
	chapa      *ChapaService
	settlement *SettlementService
	baseURL    string
}

func NewOrderService(db *mongo.Database, catches *CatchService, chapa *ChapaService, settlement *SettlementService, baseURL string) *OrderService {
	return &OrderService{
		db:         db,
		catches:    catches,
		chapa:      chapa,
		settlement: settlement,
		baseURL:    baseURL,
	}
}

// EnsureIndexes creates the orders and deliveries indexes. The unique tx_ref
// index is the gateway idempotency guard; the unique delivery order_id index
// keeps replayed callbacks from duplicating delivery records. Safe to run
// repeatedly.
func (s *OrderService) EnsureIndexes(ctx context.Context) error {
	orderIndexes := []mongo.IndexModel{
		{Keys: bson.M{"tx_ref": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "payment_status", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := s.db.Collection("orders").Indexes().CreateMany(ctx, orderIndexes); err != nil {
		log.Printf("Failed to create orders indexes: %v", err)
		return fmt.Errorf("failed to create orders indexes: %w", err)
	}

	deliveryIndexes := []mongo.IndexModel{
		{Keys: bson.M{"order_id": 1}, Options: options.Index().SetUnique(true)},
	}
	if _, err := s.db.Collection("deliveries").Indexes().CreateMany(ctx, deliveryIndexes); err != nil {
		log.Printf("Failed to create deliveries indexes: %v", err)
		return fmt.Errorf("failed to create deliveries indexes: %w", err)
	}
	return nil
}

// CreateOrder opens a PENDING order for a catch and initializes a gateway
// checkout session. The buyer is charged the effective price at order time
// plus the buyer fee; the catch's settled amounts are fixed later, when the
// payment completes.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID, catchID string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	buyerObjID, err := primitive.ObjectIDFromHex(buyerID)
	if err != nil {
		return nil, fmt.Errorf("invalid buyer_id format: %w", err)
	}
	var buyer models.User
	if err := s.db.Collection("user").FindOne(ctx, bson.M{"_id": buyerObjID}).Decode(&buyer); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("buyer not found")
		}
		return nil, fmt.Errorf("failed to fetch buyer: %w", err)
	}
	if buyer.Email == "" {
		return nil, fmt.Errorf("buyer email required for checkout")
	}

	catch, err := s.catches.GetCatch(ctx, catchID)
	if err != nil {
		return nil, err
	}

	// The charge is priced at order time; settlement reprices at completion
	// time (RecordSale). A Fresh catch that crosses the decay threshold
	// between the two settles at the decayed price while the buyer already
	// paid the listed one. The house absorbs the difference.
	now := time.Now()
	price := decimal.NewFromFloat(catch.Price)
	effective, _ := pricing.EffectivePrice(price, catch.Freshness, catch.ListedAt, s.settlement.decayThreshold, now)
	split := pricing.SplitFees(effective)
	charge := effective.Add(split.BuyerFee)

	order := &models.Order{
		ID:            primitive.NewObjectID().Hex(),
		BuyerID:       buyerID,
		CatchID:       catchID,
		FisherID:      catch.FisherID,
		ChargeAmount:  charge.InexactFloat64(),
		TxRef:         uuid.NewString(),
		PaymentStatus: models.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	checkoutURL, err := s.chapa.InitializeTransaction(ctx, order.TxRef, order.ChargeAmount,
		buyer.Email, buyer.FullName,
		s.baseURL+"/api/payment/verify/"+order.TxRef,
		s.baseURL+"/api/order/"+order.ID)
	if err != nil {
		return nil, err
	}
	order.CheckoutURL = checkoutURL

	if _, err := s.db.Collection("orders").InsertOne(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	log.Printf("Order created: ID=%s, TxRef=%s, Charge=%.2f", order.ID, order.TxRef, order.ChargeAmount)
	return order, nil
}

// CompleteOrder marks the order for txRef COMPLETED exactly once and records
// its settlement event and delivery. A replayed callback for an already
// completed order re-runs only the idempotent downstream writes, so revenue
// is never counted twice.
func (s *OrderService) CompleteOrder(ctx context.Context, txRef string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now()
	var order models.Order
	err := s.db.Collection("orders").FindOneAndUpdate(ctx,
		bson.M{"tx_ref": txRef, "payment_status": models.PaymentPending},
		bson.M{"$set": bson.M{
			"payment_status": models.PaymentCompleted,
			"completed_at":   now,
			"updated_at":     now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)

	if err == mongo.ErrNoDocuments {
		// Not pending anymore, or unknown reference.
		if ferr := s.db.Collection("orders").FindOne(ctx, bson.M{"tx_ref": txRef}).Decode(&order); ferr != nil {
			if ferr == mongo.ErrNoDocuments {
				return nil, models.ErrOrderNotFound
			}
			return nil, fmt.Errorf("failed to fetch order: %w", ferr)
		}
		if order.PaymentStatus != models.PaymentCompleted {
			return nil, fmt.Errorf("order %s is %s, cannot complete", order.ID, order.PaymentStatus)
		}
		log.Printf("Replayed completion for order %s (tx_ref=%s)", order.ID, txRef)
	} else if err != nil {
		return nil, fmt.Errorf("failed to complete order: %w", err)
	}

	return s.settle(ctx, &order)
}

// settle records the settlement event and upserts the delivery for a
// completed order. Both writes are idempotent on the order id.
func (s *OrderService) settle(ctx context.Context, order *models.Order) (*models.Order, error) {
	catch, err := s.catches.GetCatch(ctx, order.CatchID)
	if err != nil {
		return nil, err
	}

	completedAt := order.UpdatedAt
	if order.CompletedAt != nil {
		completedAt = *order.CompletedAt
	}
	if _, err := s.settlement.RecordSale(ctx, order, catch, completedAt); err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = s.db.Collection("deliveries").UpdateOne(ctx,
		bson.M{"order_id": order.ID},
		bson.M{"$setOnInsert": models.Delivery{
			ID:        primitive.NewObjectID(),
			OrderID:   order.ID,
			CatchID:   order.CatchID,
			BuyerID:   order.BuyerID,
			Status:    "PREPARING",
			CreatedAt: now,
			UpdatedAt: now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery: %w", err)
	}
	return order, nil
}

// FailOrder marks a pending order FAILED. Already-completed orders are left
// untouched.
func (s *OrderService) FailOrder(ctx context.Context, txRef string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.db.Collection("orders").UpdateOne(ctx,
		bson.M{"tx_ref": txRef, "payment_status": models.PaymentPending},
		bson.M{"$set": bson.M{
			"payment_status": models.PaymentFailed,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark order failed: %w", err)
	}
	if res.MatchedCount == 0 {
		log.Printf("FailOrder: no pending order for tx_ref %s", txRef)
	}
	return nil
}

// VerifyPayment asks the gateway for the final status of a transaction and
// applies the matching order transition. Used both by the return-URL poll and
// as a fallback when a webhook is lost.
func (s *OrderService) VerifyPayment(ctx context.Context, txRef string) (*models.Order, error) {
	status, err := s.chapa.Verify(ctx, txRef)
	if err != nil {
		return nil, err
	}

	switch status {
	case "success":
		return s.CompleteOrder(ctx, txRef)
	case "failed":
		if err := s.FailOrder(ctx, txRef); err != nil {
			return nil, err
		}
	default:
		log.Printf("Verify: tx_ref %s still %s, no action taken", txRef, status)
	}

	var order models.Order
	if err := s.db.Collection("orders").FindOne(ctx, bson.M{"tx_ref": txRef}).Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &order, nil
}

// GetOrder retrieves a single order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := s.db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &order, nil
}

// OrdersByBuyer lists a buyer's orders, newest first.
func (s *OrderService) OrdersByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	cur, err := s.db.Collection("orders").Find(ctx, bson.M{"buyer_id": buyerID},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}
