package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleFisher = "fisher"
	RoleBuyer  = "buyer"
	RoleAdmin  = "admin"
)

// User model
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName  string             `bson:"fullname" json:"fullname"`
	Email     string             `bson:"email" json:"email"`
	Number    string             `bson:"number" json:"number"`
	Role      string             `bson:"role" json:"role"` // fisher, buyer or admin
	HPassword string             `bson:"password" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
