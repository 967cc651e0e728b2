package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartLine is one (product, quantity) pair in a session cart. Carts are
// serialized as a JSON array of these lines under a single Redis key and
// are discarded entirely on successful checkout.
type CartLine struct {
	ProductID primitive.ObjectID `json:"product_id"`
	Quantity  int                `json:"quantity"`
}

// MergeCartLine adds a line to a cart, merging quantities when the product
// is already present.
func MergeCartLine(lines []CartLine, line CartLine) []CartLine {
	for i, existing := range lines {
		if existing.ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			return lines
		}
	}
	return append(lines, line)
}

// RemoveCartLine drops every line for the given product.
func RemoveCartLine(lines []CartLine, productID primitive.ObjectID) []CartLine {
	kept := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	return kept
}
