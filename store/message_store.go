package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-storefront/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageStore is the per-order messaging channel: an append-only thread
// between a customer and admin staff, with change events pushed to
// subscribed viewers via a change stream on the messages collection.
type MessageStore struct {
	messages *mongo.Collection
	hub      *ChangeHub
	logger   zerolog.Logger
}

func NewMessageStore(client *mongo.Client, logger zerolog.Logger) *MessageStore {
	return &MessageStore{
		messages: client.Database("storefront").Collection("order_messages"),
		hub:      NewChangeHub(),
		logger:   logger.With().Str("component", "message_store").Logger(),
	}
}

// ListMessages returns the full thread for one order, ascending by
// creation time with _id as tiebreaker so repeated reads are stable.
func (s *MessageStore) ListMessages(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderMessage, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := s.messages.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.OrderMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}

	return messages, nil
}

// PostMessage appends one message to an order's thread. Empty or
// whitespace-only bodies are rejected before any write. Write failures
// propagate to the caller.
func (s *MessageStore) PostMessage(ctx context.Context, orderID primitive.ObjectID, body string, isAdmin bool) error {
	body, err := models.NormalizeMessageBody(body)
	if err != nil {
		return err
	}

	msg := models.OrderMessage{
		OrderID:   orderID,
		Message:   body,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.messages.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	return nil
}

// Subscribe establishes a standing watch on one order's thread. The
// returned cancel func must be called when the viewer closes the thread.
func (s *MessageStore) Subscribe(orderID primitive.ObjectID) (<-chan ChangeEvent, func()) {
	return s.hub.Subscribe(orderID)
}

// Run pumps the collection's change stream into the hub until ctx is
// cancelled. It reopens the stream after transient errors.
func (s *MessageStore) Run(ctx context.Context) {
	defer s.hub.Close()

	for {
		if err := s.pump(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Msg("change stream interrupted, reopening")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (s *MessageStore) pump(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{
				{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}},
			}},
		}}},
	}

	stream, err := s.messages.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return fmt.Errorf("opening change stream: %w", err)
	}
	defer stream.Close(ctx)

	for stream.Next(ctx) {
		var change struct {
			OperationType string              `bson:"operationType"`
			FullDocument  models.OrderMessage `bson:"fullDocument"`
		}
		if err := stream.Decode(&change); err != nil {
			s.logger.Error().Err(err).Msg("decoding change event")
			continue
		}

		// delete events carry no document; nothing to route
		if change.FullDocument.OrderID.IsZero() {
			continue
		}

		s.hub.Publish(ChangeEvent{
			OrderID: change.FullDocument.OrderID,
			Op:      change.OperationType,
			At:      time.Now().UTC(),
		})
	}

	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("reading change stream: %w", err)
	}
	return ctx.Err()
}
