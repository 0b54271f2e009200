package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepo struct{ DB *pgxpool.Pool }

func (r *ProductRepo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, color, weight, price, inventory FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Weight, &p.Price, &p.Inventory); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, color, weight, price, inventory FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Color, &p.Weight, &p.Price, &p.Inventory)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, p Product) (Product, error) {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO products(name, color, weight, price, inventory)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		p.Name, p.Color, p.Weight, p.Price, p.Inventory).Scan(&p.ID)
	return p, err
}

// Update applies only the fields present in the patch.
func (r *ProductRepo) Update(ctx context.Context, id int64, patch ProductPatch) (Product, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}
	if patch.Weight != nil {
		p.Weight = *patch.Weight
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Inventory != nil {
		p.Inventory = *patch.Inventory
	}
	_, err = r.DB.Exec(ctx,
		`UPDATE products SET name=$2, color=$3, weight=$4, price=$5, inventory=$6 WHERE id=$1`,
		p.ID, p.Name, p.Color, p.Weight, p.Price, p.Inventory)
	return p, err
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}
