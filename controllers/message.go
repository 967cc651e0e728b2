package controllers

import (
	"context"
	"encoding/json"
	"fmt"
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

// MessageController handles the per-order customer/admin message thread.
type MessageController struct {
	Messages *store.MessageStore
	Orders   *store.OrderStore
	Users    *store.UserStore
	Logger   zerolog.Logger
}

func NewMessageController(messages *store.MessageStore, orders *store.OrderStore, users *store.UserStore, logger zerolog.Logger) *MessageController {
	return &MessageController{
		Messages: messages,
		Orders:   orders,
		Users:    users,
		Logger:   logger.With().Str("controller", "message").Logger(),
	}
}

// authorizeThread checks that the caller may view the order's thread:
// admins may view any order, customers only their own. The admin flag is
// derived from the verified token, never from the request body.
func (mc *MessageController) authorizeThread(ctx context.Context, r *http.Request, orderID primitive.ObjectID) (*utils.Claims, bool) {
	claims, ok := middleware.ClaimsFromRequest(r)
	if !ok {
		return nil, false
	}
	if claims.IsAdmin() {
		return claims, true
	}

	user, err := mc.Users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, false
	}
	order, err := mc.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, false
	}
	return claims, order.UserID == user.ID
}

// ListMessages returns the full thread for one order, oldest first
func (mc *MessageController) ListMessages(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, ok := mc.authorizeThread(ctx, r, orderID); !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	messages, err := mc.Messages.ListMessages(ctx, orderID)
	if err != nil {
		respondError(w, err, "Failed to retrieve messages")
		return
	}
	if messages == nil {
		messages = []models.OrderMessage{}
	}

	respondJSON(w, http.StatusOK, messages)
}

// PostMessage appends a message to an order's thread. Failures surface
// as errors rather than silently dropping the message.
func (mc *MessageController) PostMessage(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, ok := mc.authorizeThread(ctx, r, orderID)
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := mc.Messages.PostMessage(ctx, orderID, body.Message, claims.IsAdmin()); err != nil {
		respondError(w, err, "Failed to send message")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"message": "Message sent"})
}

// StreamMessages pushes change notifications for one order's thread over
// server-sent events. Events carry no message payload; the client re-lists
// the thread on each one. The subscription is torn down when the client
// disconnects or the server shuts down.
func (mc *MessageController) StreamMessages(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	authCtx, cancelAuth := context.WithTimeout(r.Context(), 10*time.Second)
	_, ok := mc.authorizeThread(authCtx, r, orderID)
	cancelAuth()
	if !ok {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := mc.Messages.Subscribe(orderID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: {\"order_id\":%q,\"op\":%q}\n\n", ev.OrderID.Hex(), ev.Op)
			flusher.Flush()
		}
	}
}
