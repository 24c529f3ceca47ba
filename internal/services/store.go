package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/asamarket/asafish-gobackend/internal/models"
)

// EventStore is the append-only settlement log. Append is idempotent on the
// order id: recording the same order twice is a no-op.
type EventStore interface {
	Append(ctx context.Context, ev *models.SettlementEvent) error
	ListByFisher(ctx context.Context, fisherID string, from, to *time.Time) ([]models.SettlementEvent, error)
}

// PayoutStore persists payout requests and their workflow state.
type PayoutStore interface {
	Insert(ctx context.Context, p *models.Payout) error
	FindByID(ctx context.Context, id string) (*models.Payout, error)
	// Update writes the payout's new workflow state only if the stored
	// status still equals from, so concurrent admin transitions cannot
	// overwrite each other.
	Update(ctx context.Context, p *models.Payout, from models.PayoutStatus) error
	ListByFisher(ctx context.Context, fisherID string) ([]models.Payout, error)
	List(ctx context.Context, status *models.PayoutStatus) ([]models.Payout, error)
	SumByStatus(ctx context.Context, fisherID string, statuses []models.PayoutStatus) (float64, error)
}

// MongoEventStore keeps settlement events in the settlement_events collection.
type MongoEventStore struct {
	collection *mongo.Collection
}

func NewMongoEventStore(db *mongo.Database) *MongoEventStore {
	return &MongoEventStore{collection: db.Collection("settlement_events")}
}

// EnsureIndexes creates the settlement_events indexes, including the unique
// order_id index that guards against double settlement. Safe to run
// repeatedly.
func (s *MongoEventStore) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.M{"order_id": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "fisher_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
	}
	_, err := s.collection.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		log.Printf("Failed to create settlement_events indexes: %v", err)
		return fmt.Errorf("failed to create settlement_events indexes: %w", err)
	}
	return nil
}

func (s *MongoEventStore) Append(ctx context.Context, ev *models.SettlementEvent) error {
	_, err := s.collection.InsertOne(ctx, ev)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Printf("Settlement event already recorded for order %s", ev.OrderID)
			return nil
		}
		return fmt.Errorf("failed to append settlement event: %w", err)
	}
	return nil
}

func (s *MongoEventStore) ListByFisher(ctx context.Context, fisherID string, from, to *time.Time) ([]models.SettlementEvent, error) {
	query := bson.M{"fisher_id": fisherID}
	window := bson.M{}
	if from != nil {
		window["$gte"] = *from
	}
	if to != nil {
		window["$lte"] = *to
	}
	if len(window) > 0 {
		query["occurred_at"] = window
	}

	cur, err := s.collection.Find(ctx, query, options.Find().SetSort(bson.M{"occurred_at": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch settlement events: %w", err)
	}
	defer cur.Close(ctx)

	var events []models.SettlementEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode settlement events: %w", err)
	}
	return events, nil
}

// MongoPayoutStore keeps payouts in the payouts collection.
type MongoPayoutStore struct {
	collection *mongo.Collection
}

func NewMongoPayoutStore(db *mongo.Database) *MongoPayoutStore {
	return &MongoPayoutStore{collection: db.Collection("payouts")}
}

// EnsureIndexes creates the payouts indexes and the collection-level
// validator enforcing a positive amount and the four workflow statuses.
// Safe to run repeatedly.
func (s *MongoPayoutStore) EnsureIndexes(ctx context.Context) error {
	validator := bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"fisher_id", "amount", "status"},
			"properties": bson.M{
				"amount": bson.M{"bsonType": "double", "exclusiveMinimum": true, "minimum": 0},
				"status": bson.M{"enum": []string{"PENDING", "APPROVED", "PAID", "REJECTED"}},
			},
		},
	}
	res := s.collection.Database().RunCommand(ctx, bson.D{
		{Key: "collMod", Value: s.collection.Name()},
		{Key: "validator", Value: validator},
	})
	if err := res.Err(); err != nil {
		// First run: the collection does not exist yet.
		if cerr := s.collection.Database().CreateCollection(ctx, s.collection.Name(),
			options.CreateCollection().SetValidator(validator)); cerr != nil {
			log.Printf("Failed to create payouts collection: %v", cerr)
			return fmt.Errorf("failed to create payouts collection: %w", cerr)
		}
	}

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "fisher_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := s.collection.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		log.Printf("Failed to create payouts indexes: %v", err)
		return fmt.Errorf("failed to create payouts indexes: %w", err)
	}
	return nil
}

func (s *MongoPayoutStore) Insert(ctx context.Context, p *models.Payout) error {
	if _, err := s.collection.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to save payout: %w", err)
	}
	return nil
}

func (s *MongoPayoutStore) FindByID(ctx context.Context, id string) (*models.Payout, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrPayoutNotFound
	}

	var payout models.Payout
	if err := s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&payout); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to fetch payout: %w", err)
	}
	return &payout, nil
}

func (s *MongoPayoutStore) Update(ctx context.Context, p *models.Payout, from models.PayoutStatus) error {
	update := bson.M{"$set": bson.M{
		"status":       p.Status,
		"notes":        p.Notes,
		"processed_at": p.ProcessedAt,
	}}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": p.ID, "status": from}, update)
	if err != nil {
		return fmt.Errorf("failed to update payout: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the payout is gone or another transition won the race.
		if _, ferr := s.FindByID(ctx, p.ID.Hex()); ferr != nil {
			return ferr
		}
		return models.ErrInvalidTransition
	}
	return nil
}

func (s *MongoPayoutStore) ListByFisher(ctx context.Context, fisherID string) ([]models.Payout, error) {
	return s.find(ctx, bson.M{"fisher_id": fisherID})
}

func (s *MongoPayoutStore) List(ctx context.Context, status *models.PayoutStatus) ([]models.Payout, error) {
	query := bson.M{}
	if status != nil {
		query["status"] = *status
	}
	return s.find(ctx, query)
}

func (s *MongoPayoutStore) find(ctx context.Context, query bson.M) ([]models.Payout, error) {
	cur, err := s.collection.Find(ctx, query, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payouts: %w", err)
	}
	defer cur.Close(ctx)

	var payouts []models.Payout
	if err := cur.All(ctx, &payouts); err != nil {
		return nil, fmt.Errorf("failed to decode payouts: %w", err)
	}
	return payouts, nil
}

func (s *MongoPayoutStore) SumByStatus(ctx context.Context, fisherID string, statuses []models.PayoutStatus) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"fisher_id": fisherID,
			"status":    bson.M{"$in": statuses},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}
	cur, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payouts: %w", err)
	}
	defer cur.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode payout sum: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
