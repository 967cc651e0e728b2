package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. Orders never reference products live; they
// snapshot name and price at purchase time.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       Money              `bson:"price" json:"price"`
	Size        string             `bson:"size" json:"size"`
	Category    string             `bson:"category" json:"category"`
	Benefits    []string           `bson:"benefits" json:"benefits"`
	Ingredients []string           `bson:"ingredients" json:"ingredients"`
	HowToUse    []string           `bson:"how_to_use" json:"how_to_use"`
	ImageURL    string             `bson:"image_url" json:"image_url"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
