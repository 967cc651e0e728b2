package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartController handles session-cart requests.
type CartController struct {
	Carts *store.CartStore
	Users *store.UserStore
}

func NewCartController(carts *store.CartStore, users *store.UserStore) *CartController {
	return &CartController{Carts: carts, Users: users}
}

func (cc *CartController) currentUser(ctx context.Context, r *http.Request) (models.User, bool) {
	claims, ok := middleware.ClaimsFromRequest(r)
	if !ok {
		return models.User{}, false
	}
	user, err := cc.Users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, ok := cc.currentUser(ctx, r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	lines, err := cc.Carts.Get(ctx, user.ID)
	if err != nil {
		respondError(w, err, "Error fetching cart")
		return
	}
	if lines == nil {
		lines = []models.CartLine{}
	}

	respondJSON(w, http.StatusOK, lines)
}

// AddToCart adds a product to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var line models.CartLine
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, ok := cc.currentUser(ctx, r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := cc.Carts.Add(ctx, user.ID, line); err != nil {
		respondError(w, err, "Error updating cart")
		return
	}

	respondJSON(w, http.StatusOK, "Item added to cart")
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("product_id"))
	if err != nil {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, ok := cc.currentUser(ctx, r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := cc.Carts.Remove(ctx, user.ID, productID); err != nil {
		respondError(w, err, "Error updating cart")
		return
	}

	respondJSON(w, http.StatusOK, "Item removed from cart")
}
