package orders

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrAddressNotFound   = errors.New("address not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidItems      = errors.New("invalid order items")
)

// StockError reports which product made an order creation fail. Err is either
// ErrProductNotFound or ErrInsufficientStock.
type StockError struct {
	ProductID int64
	Err       error
}

func (e *StockError) Error() string {
	return fmt.Sprintf("product %d: %v", e.ProductID, e.Err)
}

func (e *StockError) Unwrap() error { return e.Err }
