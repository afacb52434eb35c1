// Package domain defines the order read model. Orders are owned by the
// commerce system; the engine reads them as the source of truth for charge
// amounts and currencies.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/payments/internal/errors"
)

// OrderStatus mirrors the commerce system's order lifecycle.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusCanceled OrderStatus = "canceled"
)

// Order holds what the engine needs to charge for an order. TotalAmount is in
// the currency's minor unit.
type Order struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	TotalAmount int64
	Currency    string
	Status      OrderStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ErrOrderNotFound indicates the referenced order does not exist.
var ErrOrderNotFound = errors.Wrap(errors.ErrNotFound, "order not found")
