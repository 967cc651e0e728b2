package store_test

import (
	"context"
	"errors"
	"testing"

	"go-storefront/models"
	"go-storefront/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderStoreSuite struct {
	suite.Suite

	client    *mongo.Client
	store     *store.OrderStore
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestOrderStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	suite.Run(t, new(orderStoreSuite))
}

// before all tests in the suite
func (suite *orderStoreSuite) SetupSuite() {
	ctx := context.Background()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startMongo(ctx)
	suite.NoError(err)

	suite.client, err = mongo.Connect(ctx, options.Client().ApplyURI(connStr))
	suite.NoError(err)

	// Collections must exist before the first transactional write.
	db := suite.client.Database("storefront")
	suite.NoError(db.CreateCollection(ctx, "orders"))
	suite.NoError(db.CreateCollection(ctx, "order_items"))

	suite.store = store.NewOrderStore(suite.client, zerolog.Nop())
}

// after all tests in the suite
func (suite *orderStoreSuite) TearDownSuite() {
	ctx := context.Background()

	if suite.client != nil {
		suite.NoError(suite.client.Disconnect(ctx))
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func shippingInfo(email string) models.CheckoutInfo {
	return models.CheckoutInfo{
		Name:    "Jane Doe",
		Email:   email,
		Phone:   "+14155550123",
		Address: "1 Long Enough Street, Springfield",
	}
}

func purchasedItems() []models.OrderItem {
	return []models.OrderItem{
		{
			ProductID:   primitive.NewObjectID(),
			ProductName: "Rose Face Serum",
			Quantity:    2,
			Price:       models.NewMoney(decimal.RequireFromString("24.99")),
		},
		{
			ProductID:   primitive.NewObjectID(),
			ProductName: "Shea Body Butter",
			Quantity:    1,
			Price:       models.NewMoney(decimal.RequireFromString("63.99")),
		},
	}
}

func (suite *orderStoreSuite) TestPlaceOrderRoundTrip() {
	t := suite.T()
	ctx := context.Background()

	userID := primitive.NewObjectID()
	orderID, err := suite.store.PlaceOrder(ctx, userID, shippingInfo("roundtrip@example.com"), purchasedItems())
	require.NoError(t, err)

	order, err := suite.store.GetOrder(ctx, orderID)
	require.NoError(t, err)

	assert.Equal(t, userID, order.UserID)
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.Equal(t, "113.97", order.Total.StringFixed(2))
	require.Len(t, order.Items, 2)
	for _, item := range order.Items {
		assert.Equal(t, orderID, item.OrderID)
	}
}

// An order may move to any recognized status from any current one,
// including backwards, e.g. a delivered order reopening as processing.
func (suite *orderStoreSuite) TestUpdateOrderStatusOverwritesAnyState() {
	t := suite.T()
	ctx := context.Background()

	orderID, err := suite.store.PlaceOrder(ctx, primitive.NewObjectID(), shippingInfo("statuses@example.com"), purchasedItems())
	require.NoError(t, err)

	sequence := []models.OrderStatus{
		models.StatusDelivered,
		models.StatusProcessing,
		models.StatusCancelled,
		models.StatusShipped,
	}

	for _, status := range sequence {
		require.NoError(t, suite.store.UpdateOrderStatus(ctx, orderID, status))

		order, err := suite.store.GetOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, status, order.Status)
	}
}

func (suite *orderStoreSuite) TestUpdateOrderStatusRejectsUnknownValue() {
	t := suite.T()
	ctx := context.Background()

	orderID, err := suite.store.PlaceOrder(ctx, primitive.NewObjectID(), shippingInfo("badstatus@example.com"), purchasedItems())
	require.NoError(t, err)

	err = suite.store.UpdateOrderStatus(ctx, orderID, models.OrderStatus("pending"))

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)

	order, err := suite.store.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, order.Status, "rejected update must not touch the stored status")
}

func (suite *orderStoreSuite) TestUpdateOrderStatusUnknownOrder() {
	t := suite.T()
	ctx := context.Background()

	err := suite.store.UpdateOrderStatus(ctx, primitive.NewObjectID(), models.StatusShipped)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

// A failed item insert aborts the transaction: no order document may be
// left behind without its items.
func (suite *orderStoreSuite) TestPlaceOrderRollsBackOnItemFailure() {
	t := suite.T()
	ctx := context.Background()

	itemsColl := suite.client.Database("storefront").Collection("order_items")

	// Occupy an item id so the transactional insert hits a duplicate key.
	takenID := primitive.NewObjectID()
	_, err := itemsColl.InsertOne(ctx, bson.M{"_id": takenID})
	require.NoError(t, err)

	items := purchasedItems()
	items[0].ID = takenID

	email := "rollback@example.com"
	_, err = suite.store.PlaceOrder(ctx, primitive.NewObjectID(), shippingInfo(email), items)
	require.Error(t, err)

	ordersColl := suite.client.Database("storefront").Collection("orders")
	count, err := ordersColl.CountDocuments(ctx, bson.M{"email": email})
	require.NoError(t, err)
	assert.Zero(t, count, "aborted checkout must not leave an order behind")
}

func (suite *orderStoreSuite) TestPlaceOrderRejectsInvalidForm() {
	t := suite.T()
	ctx := context.Background()

	info := shippingInfo("invalid@example.com")
	info.Address = "too short"

	_, err := suite.store.PlaceOrder(ctx, primitive.NewObjectID(), info, purchasedItems())

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "address", vErr.Field)

	ordersColl := suite.client.Database("storefront").Collection("orders")
	count, err := ordersColl.CountDocuments(ctx, bson.M{"email": info.Email})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func (suite *orderStoreSuite) TestPlaceOrderRejectsEmptyCart() {
	t := suite.T()
	ctx := context.Background()

	_, err := suite.store.PlaceOrder(ctx, primitive.NewObjectID(), shippingInfo("empty@example.com"), nil)

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "cart", vErr.Field)
}

func (suite *orderStoreSuite) TestGetOrderUnknownID() {
	t := suite.T()
	ctx := context.Background()

	_, err := suite.store.GetOrder(ctx, primitive.NewObjectID())
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
