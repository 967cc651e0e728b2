// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderController handles checkout, order tracking and the admin
// back-office order views.
type OrderController struct {
	Orders       *store.OrderStore
	Carts        *store.CartStore
	Products     *store.ProductStore
	Users        *store.UserStore
	EmailService *utils.EmailService
	Logger       zerolog.Logger
}

func NewOrderController(orders *store.OrderStore, carts *store.CartStore, products *store.ProductStore, users *store.UserStore, emailService *utils.EmailService, logger zerolog.Logger) *OrderController {
	return &OrderController{
		Orders:       orders,
		Carts:        carts,
		Products:     products,
		Users:        users,
		EmailService: emailService,
		Logger:       logger.With().Str("controller", "order").Logger(),
	}
}

func (oc *OrderController) currentUser(ctx context.Context, r *http.Request) (models.User, bool) {
	claims, ok := middleware.ClaimsFromRequest(r)
	if !ok {
		return models.User{}, false
	}
	user, err := oc.Users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}

// Checkout validates the shipping form, snapshots the cart against the
// catalog and writes the order plus its items in one transaction. The
// cart is cleared only after the write succeeds; any failure leaves it
// untouched.
func (oc *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	var info models.CheckoutInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, ok := oc.currentUser(ctx, r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	lines, err := oc.Carts.Get(ctx, user.ID)
	if err != nil {
		respondError(w, err, "Error fetching cart")
		return
	}
	if len(lines) == 0 {
		http.Error(w, "Cart is empty", http.StatusBadRequest)
		return
	}

	productIDs := make([]primitive.ObjectID, 0, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
	}
	products, err := oc.Products.GetByIDs(ctx, productIDs)
	if err != nil {
		respondError(w, err, "Error fetching products")
		return
	}

	items, err := models.BuildOrderItems(lines, products)
	if err != nil {
		respondError(w, err, "Error preparing order")
		return
	}

	orderID, err := oc.Orders.PlaceOrder(ctx, user.ID, info, items)
	if err != nil {
		respondError(w, err, "Failed to create order")
		return
	}

	// The order is durable; a failed cart clear is logged, not surfaced.
	if err := oc.Carts.Clear(ctx, user.ID); err != nil {
		oc.Logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to clear cart after checkout")
	}

	go func(orderID primitive.ObjectID) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		order, err := oc.Orders.GetOrder(ctx, orderID)
		if err != nil {
			oc.Logger.Error().Err(err).Str("order_id", orderID.Hex()).Msg("failed to load order for confirmation email")
			return
		}
		if err := oc.EmailService.SendOrderConfirmationEmail(order.Email, order); err != nil {
			oc.Logger.Error().Err(err).Str("order_id", orderID.Hex()).Msg("failed to send confirmation email")
		}
	}(orderID)

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"order_id": orderID.Hex(),
		"message":  "Order placed successfully. You can track your order status from your account.",
	})
}

// GetMyOrders retrieves all orders for the authenticated user
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, ok := oc.currentUser(ctx, r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	orders, err := oc.Orders.ListOrdersByUser(ctx, user.ID)
	if err != nil {
		respondError(w, err, "Failed to retrieve orders")
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// TrackOrder retrieves one order for the tracking page. An unknown id
// renders a distinct not-found state. Admins may track any order,
// customers only their own, same as the order's message thread.
func (oc *OrderController) TrackOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.GetOrder(ctx, orderID)
	if err != nil {
		respondError(w, err, "Failed to retrieve order")
		return
	}

	claims, ok := middleware.ClaimsFromRequest(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !claims.IsAdmin() {
		user, ok := oc.currentUser(ctx, r)
		if !ok || order.UserID != user.ID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	respondJSON(w, http.StatusOK, order)
}

// GetAllOrders retrieves every order, newest first (Admin only)
func (oc *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	orders, err := oc.Orders.ListAllOrders(ctx)
	if err != nil {
		respondError(w, err, "Failed to retrieve orders")
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus sets an order's status (Admin only). Any recognized
// status may be set regardless of the current one; a failed write reports
// the error and changes nothing.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromRequest(r)
	if !ok || !claims.IsAdmin() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	var statusUpdate struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&statusUpdate); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status, err := models.ToOrderStatus(statusUpdate.Status)
	if err != nil {
		http.Error(w, "Invalid order status", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := oc.Orders.UpdateOrderStatus(ctx, orderID, status); err != nil {
		respondError(w, err, "Failed to update order status")
		return
	}

	go func(orderID primitive.ObjectID) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		order, err := oc.Orders.GetOrder(ctx, orderID)
		if err != nil {
			oc.Logger.Error().Err(err).Str("order_id", orderID.Hex()).Msg("failed to load order for status email")
			return
		}
		if err := oc.EmailService.SendStatusUpdateEmail(order.Email, order); err != nil {
			oc.Logger.Error().Err(err).Str("order_id", orderID.Hex()).Msg("failed to send status email")
		}
	}(orderID)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Order status updated successfully"})
}
