package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InventoryRepo is the only writer of product stock counts. Reserve and
// Release each run in their own transaction; order creation reuses the in-tx
// helpers so reservation and aggregate insert commit or roll back together.
type InventoryRepo struct{ DB *pgxpool.Pool }

// reserveTx locks the product row, checks the count and decrements it. The
// row lock serializes concurrent reservations against the same product, so
// two orders can never both take the last unit.
func reserveTx(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error {
	var stock int
	err := tx.QueryRow(ctx,
		`SELECT inventory FROM products WHERE id=$1 FOR UPDATE`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return &StockError{ProductID: productID, Err: ErrProductNotFound}
	}
	if err != nil {
		return err
	}
	if stock < quantity {
		return &StockError{ProductID: productID, Err: ErrInsufficientStock}
	}
	_, err = tx.Exec(ctx,
		`UPDATE products SET inventory = inventory - $2 WHERE id=$1`, productID, quantity)
	return err
}

func releaseTx(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error {
	ct, err := tx.Exec(ctx,
		`UPDATE products SET inventory = inventory + $2 WHERE id=$1`, productID, quantity)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return &StockError{ProductID: productID, Err: ErrProductNotFound}
	}
	return nil
}

// restockOrderTx returns every reserved quantity of an order to stock.
func restockOrderTx(ctx context.Context, tx pgx.Tx, orderID int64) error {
	rows, err := tx.Query(ctx,
		`SELECT product_id, quantity FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return err
	}
	defer rows.Close()

	type line struct {
		pid int64
		qty int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.pid, &l.qty); err != nil {
			return err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, l := range lines {
		if err := releaseTx(ctx, tx, l.pid, l.qty); err != nil {
			return err
		}
	}
	return nil
}

func (r *InventoryRepo) Reserve(ctx context.Context, productID int64, quantity int) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return reserveTx(ctx, tx, productID, quantity)
	})
}

func (r *InventoryRepo) Release(ctx context.Context, productID int64, quantity int) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return releaseTx(ctx, tx, productID, quantity)
	})
}

func (r *InventoryRepo) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
