package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct{ DB *pgxpool.Pool }

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx,
		`SELECT id, username, password_hash, is_admin FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (r *UserRepo) Get(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx,
		`SELECT id, username, password_hash, is_admin FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (r *UserRepo) Create(ctx context.Context, username, passwordHash string, isAdmin bool) (User, error) {
	u := User{Username: username, PasswordHash: passwordHash, IsAdmin: isAdmin}
	err := r.DB.QueryRow(ctx,
		`INSERT INTO users(username, password_hash, is_admin) VALUES ($1,$2,$3) RETURNING id`,
		username, passwordHash, isAdmin).Scan(&u.ID)
	return u, err
}

func (r *UserRepo) Update(ctx context.Context, id int64, patch UserPatch) (User, error) {
	u, err := r.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.IsAdmin != nil {
		u.IsAdmin = *patch.IsAdmin
	}
	_, err = r.DB.Exec(ctx,
		`UPDATE users SET username=$2, password_hash=$3, is_admin=$4 WHERE id=$1`,
		u.ID, u.Username, u.PasswordHash, u.IsAdmin)
	return u, err
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
