package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-storefront/models"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const cartKeyPrefix = "cart:"

// CartStore keeps session carts in Redis, outside the order store. Each
// cart lives under a single well-known key as a JSON array of
// {product_id, quantity} lines. A cart is cleared only by an explicit
// Clear, which checkout calls after the order write succeeds.
type CartStore struct {
	rdb *redis.Client
}

func NewCartStore(rdb *redis.Client) *CartStore {
	return &CartStore{rdb: rdb}
}

func cartKey(userID primitive.ObjectID) string {
	return cartKeyPrefix + userID.Hex()
}

// Get loads a user's cart. A missing key is an empty cart, not an error.
func (s *CartStore) Get(ctx context.Context, userID primitive.ObjectID) ([]models.CartLine, error) {
	raw, err := s.rdb.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cart: %w", err)
	}

	var lines []models.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	return lines, nil
}

// Add puts a line into the cart, merging quantities for a product that is
// already present.
func (s *CartStore) Add(ctx context.Context, userID primitive.ObjectID, line models.CartLine) error {
	if line.Quantity < 1 {
		return &models.ValidationError{Field: "quantity", Message: "Quantity must be at least 1"}
	}
	if line.ProductID.IsZero() {
		return &models.ValidationError{Field: "product_id", Message: "Product is required"}
	}

	lines, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	return s.save(ctx, userID, models.MergeCartLine(lines, line))
}

// Remove drops a product from the cart.
func (s *CartStore) Remove(ctx context.Context, userID primitive.ObjectID, productID primitive.ObjectID) error {
	lines, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	return s.save(ctx, userID, models.RemoveCartLine(lines, productID))
}

// Clear discards the whole cart.
func (s *CartStore) Clear(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.rdb.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}

func (s *CartStore) save(ctx context.Context, userID primitive.ObjectID, lines []models.CartLine) error {
	if len(lines) == 0 {
		return s.Clear(ctx, userID)
	}

	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}

	if err := s.rdb.Set(ctx, cartKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}
