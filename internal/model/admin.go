package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleAdmin is the only role an Admin can hold
const RoleAdmin = "admin"

// Admin is the single credentialed user of an organization
type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"` // Bcrypt hash - never expose
	Role         string             `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

func (a *Admin) GetID() primitive.ObjectID   { return a.ID }
func (a *Admin) SetID(id primitive.ObjectID) { a.ID = id }
