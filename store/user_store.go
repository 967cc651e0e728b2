package store

import (
	"context"
	"errors"
	"fmt"

	"go-storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserStore owns customer and admin accounts.
type UserStore struct {
	users *mongo.Collection
}

func NewUserStore(client *mongo.Client) *UserStore {
	return &UserStore{
		users: client.Database("storefront").Collection("users"),
	}
}

// FindByEmail fetches the account for an email address.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return user, fmt.Errorf("finding user: %w", err)
	}
	return user, nil
}

// EmailExists reports whether an account already uses the address.
func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := s.users.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("counting users: %w", err)
	}
	return count > 0, nil
}

// Insert creates a new account.
func (s *UserStore) Insert(ctx context.Context, user models.User) (primitive.ObjectID, error) {
	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("inserting user: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// VerifyByToken marks the account holding the verification token as
// verified and clears the token.
func (s *UserStore) VerifyByToken(ctx context.Context, token string) error {
	result, err := s.users.UpdateOne(ctx,
		bson.M{"verification_token": token},
		bson.M{"$set": bson.M{
			"is_verified":        true,
			"verification_token": "",
		}},
	)
	if err != nil {
		return fmt.Errorf("verifying user: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("verification token: %w", ErrNotFound)
	}
	return nil
}
