// routes/routes.go
package routes

import (
	"go-storefront/controllers"
	"go-storefront/middleware"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, productController *controllers.ProductController, cartController *controllers.CartController, orderController *controllers.OrderController, messageController *controllers.MessageController) {
	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/verify", userController.VerifyEmail).Methods("GET")

	// Product routes (catalog is public)
	router.HandleFunc("/products", productController.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")

	// Admin routes. Registered before the catch-all protected subrouter
	// so /admin paths are matched here first.
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/products", productController.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", productController.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", productController.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/orders", orderController.GetAllOrders).Methods("GET")
	admin.HandleFunc("/orders/{id}/status", orderController.UpdateOrderStatus).Methods("PUT")
	admin.HandleFunc("/orders/{id}/messages", messageController.ListMessages).Methods("GET")
	admin.HandleFunc("/orders/{id}/messages", messageController.PostMessage).Methods("POST")
	admin.HandleFunc("/orders/{id}/messages/stream", messageController.StreamMessages).Methods("GET")

	// Protected routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/profile", userController.GetProfile).Methods("GET")

	// Cart routes
	protected.HandleFunc("/cart", cartController.GetCart).Methods("GET")
	protected.HandleFunc("/cart", cartController.AddToCart).Methods("POST")
	protected.HandleFunc("/cart", cartController.RemoveFromCart).Methods("DELETE")

	// Order routes
	protected.HandleFunc("/checkout", orderController.Checkout).Methods("POST")
	protected.HandleFunc("/orders", orderController.GetMyOrders).Methods("GET")
	protected.HandleFunc("/orders/{id}", orderController.TrackOrder).Methods("GET")

	// Order message thread
	protected.HandleFunc("/orders/{id}/messages", messageController.ListMessages).Methods("GET")
	protected.HandleFunc("/orders/{id}/messages", messageController.PostMessage).Methods("POST")
	protected.HandleFunc("/orders/{id}/messages/stream", messageController.StreamMessages).Methods("GET")
}
