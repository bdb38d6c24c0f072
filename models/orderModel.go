package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusCash      OrderStatus = "Cash"
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

// ParseOrderStatus accepts the status case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range []OrderStatus{OrderStatusPaid, OrderStatusCash, OrderStatusPending, OrderStatusShipped, OrderStatusDelivered} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrderStatus, s)
}

// OrderProduct is the subset of a product captured when the order is placed.
type OrderProduct struct {
	ID    string        `json:"id" bson:"id"`
	Name  LocalizedText `json:"name" bson:"name"`
	Price float64       `json:"price" bson:"price"`
	Image string        `json:"image" bson:"image"`
	Unit  Unit          `json:"unit" bson:"unit"`
}

type OrderItem struct {
	Product  OrderProduct `json:"product" bson:"product"`
	Quantity float64      `json:"quantity" bson:"quantity"`
}

type PaymentDetails struct {
	Provider  string `json:"provider" bson:"provider"`
	PaymentID string `json:"paymentId" bson:"paymentId"`
	OrderID   string `json:"orderId,omitempty" bson:"orderId,omitempty"`
	Signature string `json:"signature,omitempty" bson:"signature,omitempty"`
}

type Order struct {
	ID             string                         `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	OrderID        string                         `json:"orderId" gorm:"uniqueIndex;size:32" bson:"orderId"`
	UserID         string                         `json:"userId" gorm:"index;size:36" bson:"userId"`
	Date           time.Time                      `json:"date" gorm:"index" bson:"date"`
	Status         OrderStatus                    `json:"status" gorm:"size:16" bson:"status"`
	Total          float64                        `json:"total" bson:"total"`
	Items          datatypes.JSONSlice[OrderItem] `json:"items" bson:"items"`
	PaymentDetails *PaymentDetails                `json:"paymentDetails,omitempty" gorm:"serializer:json" bson:"paymentDetails,omitempty"`
}

// Check reports whether a stored order decodes to a usable value.
func (o Order) Check() error {
	if o.ID == "" {
		return errors.New("order without id")
	}
	if _, err := ParseOrderStatus(string(o.Status)); err != nil {
		return fmt.Errorf("order %s: %w", o.ID, err)
	}
	for _, it := range o.Items {
		if _, err := ParseUnit(string(it.Product.Unit)); err != nil {
			return fmt.Errorf("order %s item %s: %w", o.ID, it.Product.ID, err)
		}
	}
	return nil
}
