package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepo owns the order aggregate: the order row plus its item rows are
// always written in one transaction.
type OrderRepo struct{ DB *pgxpool.Pool }

const fkViolation = "23503"

// CreateTx reserves stock for every requested item and persists the aggregate,
// all inside one transaction. The first item that cannot be reserved aborts
// the whole call; nothing is committed in that case.
func (r *OrderRepo) CreateTx(ctx context.Context, addressID int64, items []ItemInput) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o := Order{Status: StatusPending, AddressID: addressID}
	err = tx.QueryRow(ctx,
		`INSERT INTO orders(status, address_id) VALUES ($1,$2) RETURNING id`,
		StatusPending, addressID).Scan(&o.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return Order{}, ErrAddressNotFound
		}
		return Order{}, err
	}

	for _, it := range items {
		if err := reserveTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return Order{}, err
		}
		item := OrderItem{OrderID: o.ID, ProductID: it.ProductID, Quantity: it.Quantity}
		err = tx.QueryRow(ctx,
			`INSERT INTO order_items(order_id, product_id, quantity) VALUES ($1,$2,$3) RETURNING id`,
			o.ID, it.ProductID, it.Quantity).Scan(&item.ID)
		if err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) Get(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx,
		`SELECT id, status, address_id FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Status, &o.AddressID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}
	o.Items, err = r.itemsFor(ctx, o.ID)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) itemsFor(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, order_id, product_id, quantity FROM order_items WHERE order_id=$1 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *OrderRepo) List(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT id, status, address_id FROM orders ORDER BY id`)
}

// ListByStatus is strict about the filter value: an unrecognized status is an
// ErrInvalidStatus, not an empty result.
func (r *OrderRepo) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return r.list(ctx, `SELECT id, status, address_id FROM orders WHERE status=$1 ORDER BY id`, status)
}

func (r *OrderRepo) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Status, &o.AddressID); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items, err = r.itemsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateStatus persists the status column as a compare-and-set against the
// status the caller read. A zero-row update means the order moved (or vanished)
// since that read; the write never overwrites a concurrent transition.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, from, to Status) (Order, error) {
	ct, err := r.DB.Exec(ctx,
		`UPDATE orders SET status=$3 WHERE id=$1 AND status=$2`, id, from, to)
	if err != nil {
		return Order{}, err
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return Order{}, err
		}
		return Order{}, ErrInvalidTransition
	}
	return r.Get(ctx, id)
}

// CancelTx sets the order to cancelled and restocks every item in one
// transaction. The order row is locked first, so the pending check cannot race
// with a concurrent transition.
func (r *OrderRepo) CancelTx(ctx context.Context, id int64) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(current, StatusCancelled) {
		return Order{}, ErrInvalidTransition
	}

	if err := restockOrderTx(ctx, tx, id); err != nil {
		return Order{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, StatusCancelled); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return r.Get(ctx, id)
}

// DeleteTx removes the order; item rows go with it via ON DELETE CASCADE.
// A still-pending order has its stock returned first, since its reservation
// never shipped.
func (r *OrderRepo) DeleteTx(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if current == StatusPending {
		if err := restockOrderTx(ctx, tx, id); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
