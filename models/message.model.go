package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderMessage is one entry in the per-order customer/admin thread.
// Messages are append-only; there is no edit or delete path.
type OrderMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID   primitive.ObjectID `bson:"order_id" json:"order_id"`
	Message   string             `bson:"message" json:"message"`
	IsAdmin   bool               `bson:"is_admin" json:"is_admin"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// NormalizeMessageBody trims the body and rejects empty messages before
// any write is attempted.
func NormalizeMessageBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", &ValidationError{Field: "message", Message: "Message cannot be empty"}
	}
	return body, nil
}
