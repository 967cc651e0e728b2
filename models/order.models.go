package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order. Admins may set any
// recognized status on any order; there is no transition-graph check.
type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	StatusProcessing: {},
	StatusShipped:    {},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ToOrderStatus validates a raw status string.
func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}
	return "", fmt.Errorf("invalid order status %q", s)
}

// Order represents a placed purchase with shipping details and a status.
// Items live in their own collection and are attached after the order read.
type Order struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	CustomerName string             `bson:"customer_name" json:"customer_name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone" json:"phone"`
	Address      string             `bson:"address" json:"address"`
	Total        Money              `bson:"total" json:"total"`
	Status       OrderStatus        `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`

	Items []OrderItem `bson:"-" json:"items,omitempty"`
}

// OrderItem is one purchased product line. Name and price are snapshots
// taken at purchase time so later catalog edits never change old orders.
type OrderItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID     primitive.ObjectID `bson:"order_id" json:"order_id"`
	ProductID   primitive.ObjectID `bson:"product_id" json:"product_id"`
	ProductName string             `bson:"product_name" json:"product_name"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Price       Money              `bson:"price" json:"price"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// ValidationError reports a rejected checkout or message field. It is
// always handled locally and never reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CheckoutInfo is the shipping form submitted at checkout.
type CheckoutInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

var (
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Validate checks the checkout fields and returns the first violation.
func (c *CheckoutInfo) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)

	if c.Name == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	if len(c.Name) > 100 {
		return &ValidationError{Field: "name", Message: "Name must be less than 100 characters"}
	}
	if len(c.Email) > 255 {
		return &ValidationError{Field: "email", Message: "Email must be less than 255 characters"}
	}
	if !emailPattern.MatchString(c.Email) {
		return &ValidationError{Field: "email", Message: "Invalid email address"}
	}
	if c.Phone == "" {
		return &ValidationError{Field: "phone", Message: "Phone is required"}
	}
	if !phonePattern.MatchString(c.Phone) {
		return &ValidationError{Field: "phone", Message: "Invalid phone number format"}
	}
	if len(c.Address) < 10 {
		return &ValidationError{Field: "address", Message: "Address must be at least 10 characters"}
	}
	if len(c.Address) > 500 {
		return &ValidationError{Field: "address", Message: "Address must be less than 500 characters"}
	}
	return nil
}

// BuildOrderItems snapshots cart lines against the current catalog. Unknown
// products or non-positive quantities reject the whole checkout.
func BuildOrderItems(lines []CartLine, products map[primitive.ObjectID]Product) ([]OrderItem, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Field: "cart", Message: "Cart is empty"}
	}

	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, &ValidationError{Field: "quantity", Message: "Quantity must be at least 1"}
		}
		product, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s not found", line.ProductID.Hex())
		}
		items = append(items, OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price,
		})
	}
	return items, nil
}

// OrderTotal sums price x quantity across items.
func OrderTotal(items []OrderItem) Money {
	var total Money
	for _, item := range items {
		total = total.AddMoney(item.Price.MulInt(item.Quantity))
	}
	return total
}
