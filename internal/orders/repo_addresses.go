package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AddressRepo struct{ DB *pgxpool.Pool }

func (r *AddressRepo) List(ctx context.Context) ([]Address, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, country, city, street FROM addresses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.Country, &a.City, &a.Street); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AddressRepo) Get(ctx context.Context, id int64) (Address, error) {
	var a Address
	err := r.DB.QueryRow(ctx,
		`SELECT id, country, city, street FROM addresses WHERE id=$1`, id).
		Scan(&a.ID, &a.Country, &a.City, &a.Street)
	if errors.Is(err, pgx.ErrNoRows) {
		return Address{}, ErrAddressNotFound
	}
	return a, err
}

func (r *AddressRepo) Create(ctx context.Context, a Address) (Address, error) {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO addresses(country, city, street) VALUES ($1,$2,$3) RETURNING id`,
		a.Country, a.City, a.Street).Scan(&a.ID)
	return a, err
}

func (r *AddressRepo) Update(ctx context.Context, id int64, patch AddressPatch) (Address, error) {
	a, err := r.Get(ctx, id)
	if err != nil {
		return Address{}, err
	}
	if patch.Country != nil {
		a.Country = *patch.Country
	}
	if patch.City != nil {
		a.City = *patch.City
	}
	if patch.Street != nil {
		a.Street = *patch.Street
	}
	_, err = r.DB.Exec(ctx,
		`UPDATE addresses SET country=$2, city=$3, street=$4 WHERE id=$1`,
		a.ID, a.Country, a.City, a.Street)
	return a, err
}

func (r *AddressRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM addresses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrAddressNotFound
	}
	return nil
}
