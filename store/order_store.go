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

// ErrNotFound is returned when a requested record has no matching row.
var ErrNotFound = errors.New("not found")

// OrderStore owns reads and writes against the orders and order_items
// collections. Orders are created once at checkout and afterwards mutated
// only through status transitions.
type OrderStore struct {
	client *mongo.Client
	orders *mongo.Collection
	items  *mongo.Collection
	logger zerolog.Logger
}

func NewOrderStore(client *mongo.Client, logger zerolog.Logger) *OrderStore {
	db := client.Database("storefront")
	return &OrderStore{
		client: client,
		orders: db.Collection("orders"),
		items:  db.Collection("order_items"),
		logger: logger.With().Str("component", "order_store").Logger(),
	}
}

// PlaceOrder validates the checkout form, computes the total from the
// snapshotted items and writes the order plus its items inside a single
// transaction. Either everything lands or nothing does; a failed item
// insert never leaves behind an order with zero items.
func (s *OrderStore) PlaceOrder(ctx context.Context, userID primitive.ObjectID, info models.CheckoutInfo, items []models.OrderItem) (primitive.ObjectID, error) {
	if err := info.Validate(); err != nil {
		return primitive.NilObjectID, err
	}
	if len(items) == 0 {
		return primitive.NilObjectID, &models.ValidationError{Field: "cart", Message: "Cart is empty"}
	}

	now := time.Now().UTC()
	order := models.Order{
		UserID:       userID,
		CustomerName: info.Name,
		Email:        info.Email,
		Phone:        info.Phone,
		Address:      info.Address,
		Total:        models.OrderTotal(items),
		Status:       models.StatusProcessing,
		CreatedAt:    now,
	}

	session, err := s.client.StartSession()
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("starting session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := s.orders.InsertOne(sc, order)
		if err != nil {
			return nil, fmt.Errorf("inserting order: %w", err)
		}

		orderID, ok := res.InsertedID.(primitive.ObjectID)
		if !ok {
			return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
		}

		docs := make([]interface{}, 0, len(items))
		for _, item := range items {
			item.OrderID = orderID
			item.CreatedAt = now
			docs = append(docs, item)
		}
		if _, err := s.items.InsertMany(sc, docs); err != nil {
			return nil, fmt.Errorf("inserting order items: %w", err)
		}

		return orderID, nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	orderID := result.(primitive.ObjectID)
	s.logger.Info().
		Str("order_id", orderID.Hex()).
		Str("user_id", userID.Hex()).
		Str("total", order.Total.StringFixed(2)).
		Int("items", len(items)).
		Msg("order placed")

	return orderID, nil
}

// GetOrder fetches one order with its items attached.
func (s *OrderStore) GetOrder(ctx context.Context, orderID primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return order, fmt.Errorf("order %s: %w", orderID.Hex(), ErrNotFound)
		}
		return order, fmt.Errorf("finding order: %w", err)
	}

	items, err := s.itemsForOrder(ctx, orderID)
	if err != nil {
		return order, err
	}
	order.Items = items

	return order, nil
}

// ListOrdersByUser returns a customer's own orders, newest first.
func (s *OrderStore) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.listOrders(ctx, bson.M{"user_id": userID})
}

// ListAllOrders returns every order in the store, newest first. Admin only;
// the caller enforces the role.
func (s *OrderStore) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx, bson.M{})
}

func (s *OrderStore) listOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("finding orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decoding orders: %w", err)
	}

	for i := range orders {
		items, err := s.itemsForOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (s *OrderStore) itemsForOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	cursor, err := s.items.Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("finding order items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.OrderItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decoding order items: %w", err)
	}
	return items, nil
}

// UpdateOrderStatus overwrites the order's status. Any recognized status
// may be set from any current status; unrecognized values are rejected
// before the write. A failed write leaves the stored status untouched.
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, status models.OrderStatus) error {
	if _, err := models.ToOrderStatus(string(status)); err != nil {
		return &models.ValidationError{Field: "status", Message: err.Error()}
	}

	result, err := s.orders.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{
		"$set": bson.M{"status": status},
	})
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("order %s: %w", orderID.Hex(), ErrNotFound)
	}

	s.logger.Info().
		Str("order_id", orderID.Hex()).
		Str("status", string(status)).
		Msg("order status updated")

	return nil
}
