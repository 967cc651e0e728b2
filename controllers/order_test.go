package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderControllerSuite struct {
	suite.Suite

	client *mongo.Client
	rdb    *redis.Client

	mongoContainer testcontainers.Container
	redisContainer testcontainers.Container

	users    *store.UserStore
	products *store.ProductStore
	carts    *store.CartStore
	orders   *store.OrderStore
	oc       *controllers.OrderController
	router   *mux.Router
}

// entry point to run the tests in the suite
func TestOrderControllerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	suite.Run(t, new(orderControllerSuite))
}

// before all tests in the suite
func (suite *orderControllerSuite) SetupSuite() {
	ctx := context.Background()

	var (
		mongoStr, redisStr string
		err                error
	)

	suite.mongoContainer, mongoStr, err = startMongo(ctx)
	suite.NoError(err)
	suite.redisContainer, redisStr, err = startRedis(ctx)
	suite.NoError(err)

	suite.client, err = mongo.Connect(ctx, options.Client().ApplyURI(mongoStr))
	suite.NoError(err)

	opts, err := redis.ParseURL(redisStr)
	suite.NoError(err)
	suite.rdb = redis.NewClient(opts)

	// Collections must exist before the first transactional write.
	db := suite.client.Database("storefront")
	suite.NoError(db.CreateCollection(ctx, "orders"))
	suite.NoError(db.CreateCollection(ctx, "order_items"))

	os.Setenv("POSTMARK_API_TOKEN", "test-token")

	logger := zerolog.Nop()
	suite.users = store.NewUserStore(suite.client)
	suite.products = store.NewProductStore(suite.client)
	suite.carts = store.NewCartStore(suite.rdb)
	suite.orders = store.NewOrderStore(suite.client, logger)
	suite.oc = controllers.NewOrderController(suite.orders, suite.carts, suite.products, suite.users, utils.NewEmailService(), logger)

	suite.router = mux.NewRouter()
	suite.router.HandleFunc("/checkout", suite.oc.Checkout).Methods("POST")
	suite.router.HandleFunc("/orders/track/{id}", suite.oc.TrackOrder).Methods("GET")
}

// after all tests in the suite
func (suite *orderControllerSuite) TearDownSuite() {
	ctx := context.Background()

	if suite.client != nil {
		suite.NoError(suite.client.Disconnect(ctx))
	}
	if suite.rdb != nil {
		suite.NoError(suite.rdb.Close())
	}
	if suite.mongoContainer != nil {
		suite.NoError(suite.mongoContainer.Terminate(ctx))
	}
	if suite.redisContainer != nil {
		suite.NoError(suite.redisContainer.Terminate(ctx))
	}
}

func (suite *orderControllerSuite) seedUser(email, role string) primitive.ObjectID {
	id, err := suite.users.Insert(context.Background(), models.User{
		Name:       "Test User",
		Email:      email,
		Role:       role,
		IsVerified: true,
	})
	suite.NoError(err)
	return id
}

func (suite *orderControllerSuite) seedProduct(name, price string) primitive.ObjectID {
	id, err := suite.products.Create(context.Background(), models.Product{
		Name:  name,
		Price: models.NewMoney(decimal.RequireFromString(price)),
	})
	suite.NoError(err)
	return id
}

// authedRequest attaches verified claims the way AuthMiddleware does.
func authedRequest(method, target string, body []byte, email, role string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	claims := &utils.Claims{Email: email, Role: role}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func checkoutBody(t *testing.T, email string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"name":    "Jane Doe",
		"email":   email,
		"phone":   "+14155550123",
		"address": "1 Long Enough Street, Springfield",
	})
	require.NoError(t, err)
	return body
}

func (suite *orderControllerSuite) TestCheckoutClearsCartOnSuccess() {
	t := suite.T()
	ctx := context.Background()

	email := "success@example.com"
	userID := suite.seedUser(email, "user")
	productID := suite.seedProduct("Rose Face Serum", "24.99")

	require.NoError(t, suite.carts.Add(ctx, userID, models.CartLine{ProductID: productID, Quantity: 2}))

	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/checkout", checkoutBody(t, email), email, "user"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	orderID, err := primitive.ObjectIDFromHex(resp.OrderID)
	require.NoError(t, err)

	order, err := suite.orders.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.Equal(t, "49.98", order.Total.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Rose Face Serum", order.Items[0].ProductName)

	lines, err := suite.carts.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, lines, "successful checkout must clear the cart")
}

func (suite *orderControllerSuite) TestCheckoutRejectedFormLeavesCart() {
	t := suite.T()
	ctx := context.Background()

	email := "rejected@example.com"
	userID := suite.seedUser(email, "user")
	productID := suite.seedProduct("Shea Body Butter", "63.99")

	require.NoError(t, suite.carts.Add(ctx, userID, models.CartLine{ProductID: productID, Quantity: 1}))

	body, err := json.Marshal(map[string]string{
		"name":    "Jane Doe",
		"email":   email,
		"phone":   "+14155550123",
		"address": "too short",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, authedRequest(http.MethodPost, "/checkout", body, email, "user"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	orders, err := suite.orders.ListOrdersByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, orders, "rejected checkout must not write an order")

	lines, err := suite.carts.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1, "rejected checkout must leave the cart untouched")
	assert.Equal(t, 1, lines[0].Quantity)
}

// Tracking mirrors the message thread's access rule: admins see any
// order, customers only their own.
func (suite *orderControllerSuite) TestTrackOrderOwnership() {
	t := suite.T()
	ctx := context.Background()

	ownerEmail := "owner@example.com"
	ownerID := suite.seedUser(ownerEmail, "user")
	suite.seedUser("stranger@example.com", "user")
	suite.seedUser("staff@example.com", "admin")

	items := []models.OrderItem{{
		ProductID:   primitive.NewObjectID(),
		ProductName: "Rose Face Serum",
		Quantity:    1,
		Price:       models.NewMoney(decimal.RequireFromString("24.99")),
	}}
	orderID, err := suite.orders.PlaceOrder(ctx, ownerID, models.CheckoutInfo{
		Name:    "Jane Doe",
		Email:   ownerEmail,
		Phone:   "+14155550123",
		Address: "1 Long Enough Street, Springfield",
	}, items)
	require.NoError(t, err)

	target := "/orders/track/" + orderID.Hex()

	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, authedRequest(http.MethodGet, target, nil, "stranger@example.com", "user"))
	assert.Equal(t, http.StatusForbidden, rec.Code, "another customer must not see the order")

	rec = httptest.NewRecorder()
	suite.router.ServeHTTP(rec, authedRequest(http.MethodGet, target, nil, ownerEmail, "user"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe")

	rec = httptest.NewRecorder()
	suite.router.ServeHTTP(rec, authedRequest(http.MethodGet, target, nil, "staff@example.com", "admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
