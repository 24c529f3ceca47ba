package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/asamarket/asafish-gobackend/internal/models"
)

type CatchService struct {
	collection *mongo.Collection
}

func NewCatchService(db *mongo.Database) *CatchService {
	return &CatchService{collection: db.Collection("catches")}
}

func (s *CatchService) CreateCatch(ctx context.Context, c *models.Catch) (string, error) {
	c.Species = strings.TrimSpace(c.Species)
	if c.Species == "" {
		return "", models.ErrMissingField
	}
	if c.Price <= 0 {
		return "", models.ErrInvalidAmount
	}
	if !c.Freshness.Valid() {
		return "", models.ErrInvalidFreshness
	}

	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	if c.ListedAt.IsZero() {
		c.ListedAt = c.CreatedAt
	}

	result, err := s.collection.InsertOne(ctx, c)
	if err != nil {
		return "", fmt.Errorf("failed to save catch: %w", err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *CatchService) GetCatch(ctx context.Context, id string) (*models.Catch, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrCatchNotFound
	}

	var c models.Catch
	if err := s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrCatchNotFound
		}
		return nil, fmt.Errorf("failed to fetch catch: %w", err)
	}
	return &c, nil
}

func (s *CatchService) CatchList(ctx context.Context) ([]models.Catch, error) {
	cur, err := s.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.M{"listed_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catches: %w", err)
	}
	defer cur.Close(ctx)

	var catches []models.Catch
	if err := cur.All(ctx, &catches); err != nil {
		return nil, fmt.Errorf("failed to decode catches: %w", err)
	}
	return catches, nil
}
