package models

import (
	"time"

	"github.com/asamarket/asafish-gobackend/internal/pricing"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Catch represents a fish listing in the marketplace. Price and freshness are
// read-only inputs to settlement; a catch is immutable once an order against
// it completes.
type Catch struct {
	ID        primitive.ObjectID        `bson:"_id,omitempty" json:"id"`
	FisherID  string                    `bson:"fisher_id" json:"fisher_id"`
	Species   string                    `bson:"species" json:"species"`
	WeightKg  float64                   `bson:"weight_kg" json:"weight_kg"`
	Price     float64                   `bson:"price" json:"price"` // ETB, > 0
	Freshness pricing.FreshnessCategory `bson:"freshness_category" json:"freshness_category"`
	ListedAt  time.Time                 `bson:"listed_at" json:"listed_at"`
	CreatedAt time.Time                 `bson:"created_at" json:"created_at"`
}
