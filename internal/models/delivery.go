package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery is created once per completed order; the completion path upserts
// it keyed by order id so gateway replays cannot duplicate it.
type Delivery struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID   string             `bson:"order_id" json:"order_id"`
	CatchID   string             `bson:"catch_id" json:"catch_id"`
	BuyerID   string             `bson:"buyer_id" json:"buyer_id"`
	Status    string             `bson:"status" json:"status"` // e.g. "PREPARING", "IN_TRANSIT", "DELIVERED"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
