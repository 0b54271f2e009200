package workflow

import (
	"context"
	"log/slog"
	"time"

	"order-backend/internal/audit"
	"order-backend/internal/orders"
)

// OrderStore is the aggregate persistence the engine drives. The pgx
// implementation lives in internal/orders; tests plug in fakes.
type OrderStore interface {
	CreateTx(ctx context.Context, addressID int64, items []orders.ItemInput) (orders.Order, error)
	Get(ctx context.Context, id int64) (orders.Order, error)
	List(ctx context.Context) ([]orders.Order, error)
	ListByStatus(ctx context.Context, status orders.Status) ([]orders.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to orders.Status) (orders.Order, error)
	CancelTx(ctx context.Context, id int64) (orders.Order, error)
	DeleteTx(ctx context.Context, id int64) error
}

// Service orchestrates order creation and status transitions. Stock movements
// and aggregate writes commit atomically in the store; the audit job is the
// only step outside the transaction and is fire-and-forget.
type Service struct {
	log      *slog.Logger
	store    OrderStore
	notifier audit.Notifier
	now      func() time.Time
}

func New(log *slog.Logger, store OrderStore, notifier audit.Notifier) *Service {
	return &Service{log: log, store: store, notifier: notifier, now: time.Now}
}

// CreateOrder validates the request and commits the aggregate with its stock
// reservations, or nothing at all.
func (s *Service) CreateOrder(ctx context.Context, addressID int64, items []orders.ItemInput) (orders.Order, error) {
	if len(items) == 0 {
		return orders.Order{}, orders.ErrInvalidItems
	}
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if it.ProductID <= 0 || it.Quantity <= 0 || seen[it.ProductID] {
			return orders.Order{}, orders.ErrInvalidItems
		}
		seen[it.ProductID] = true
	}

	o, err := s.store.CreateTx(ctx, addressID, items)
	if err != nil {
		s.log.Info("order creation rejected", "address_id", addressID, "err", err)
		return orders.Order{}, err
	}
	s.log.Info("order created", "order_id", o.ID, "items", len(o.Items))
	return o, nil
}

// UpdateStatus persists a validated transition and then submits the audit job.
// A notifier failure is logged and swallowed: the transition is already
// committed and stays committed.
func (s *Service) UpdateStatus(ctx context.Context, id int64, newStatus orders.Status) (orders.Order, error) {
	if !newStatus.Valid() {
		return orders.Order{}, orders.ErrInvalidStatus
	}
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return orders.Order{}, err
	}
	if !orders.CanTransition(current.Status, newStatus) {
		return orders.Order{}, orders.ErrInvalidTransition
	}

	var updated orders.Order
	if newStatus == orders.StatusCancelled {
		// cancellation returns the reserved stock in the same transaction
		updated, err = s.store.CancelTx(ctx, id)
	} else {
		// conditional on the status just read, so a concurrent transition
		// (a cancel that already restocked, say) is never overwritten
		updated, err = s.store.UpdateStatus(ctx, id, current.Status, newStatus)
	}
	if err != nil {
		return orders.Order{}, err
	}

	job := audit.NewJob(id, newStatus, s.now())
	if err := s.notifier.Submit(ctx, job); err != nil {
		s.log.Error("audit submit failed", "order_id", id, "status", newStatus, "err", err)
	}

	s.log.Info("order status updated", "order_id", id, "from", current.Status, "to", newStatus)
	return updated, nil
}

func (s *Service) CancelOrder(ctx context.Context, id int64) (orders.Order, error) {
	return s.UpdateStatus(ctx, id, orders.StatusCancelled)
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.store.DeleteTx(ctx, id); err != nil {
		return err
	}
	s.log.Info("order deleted", "order_id", id)
	return nil
}

func (s *Service) Order(ctx context.Context, id int64) (orders.Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Orders(ctx context.Context) ([]orders.Order, error) {
	return s.store.List(ctx)
}

func (s *Service) OrdersByStatus(ctx context.Context, status orders.Status) ([]orders.Order, error) {
	return s.store.ListByStatus(ctx, status)
}
