package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductStore owns the catalog. The storefront reads it; the admin
// back-office mutates it.
type ProductStore struct {
	products *mongo.Collection
}

func NewProductStore(client *mongo.Client) *ProductStore {
	return &ProductStore{
		products: client.Database("storefront").Collection("products"),
	}
}

// List returns the whole catalog in creation order.
func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := s.products.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decoding products: %w", err)
	}
	return products, nil
}

// GetByID fetches one product.
func (s *ProductStore) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var product models.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return product, fmt.Errorf("product %s: %w", id.Hex(), ErrNotFound)
		}
		return product, fmt.Errorf("finding product: %w", err)
	}
	return product, nil
}

// GetByIDs fetches several products at once, keyed by id. Missing ids are
// simply absent from the map; the caller decides whether that is an error.
func (s *ProductStore) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	cursor, err := s.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("finding products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make(map[primitive.ObjectID]models.Product, len(ids))
	for cursor.Next(ctx) {
		var product models.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, fmt.Errorf("decoding product: %w", err)
		}
		products[product.ID] = product
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("reading products: %w", err)
	}
	return products, nil
}

// Create inserts a new catalog entry. Admin only.
func (s *ProductStore) Create(ctx context.Context, product models.Product) (primitive.ObjectID, error) {
	product.CreatedAt = time.Now().UTC()

	res, err := s.products.InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("inserting product: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// Update replaces a product's mutable fields. Admin only.
func (s *ProductStore) Update(ctx context.Context, id primitive.ObjectID, product models.Product) error {
	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"size":        product.Size,
		"category":    product.Category,
		"benefits":    product.Benefits,
		"ingredients": product.Ingredients,
		"how_to_use":  product.HowToUse,
		"image_url":   product.ImageURL,
	}}

	result, err := s.products.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// Delete removes a product from the catalog. Placed orders keep their
// name and price snapshots. Admin only.
func (s *ProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("product %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}
