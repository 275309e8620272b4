package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type UsersPG struct{ DB *pgxpool.Pool }

func (r *UsersPG) CreateUser(ctx context.Context, u *User) error {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	_, err := r.DB.Exec(ctx, `
		insert into users(id, email, first_name, last_name, role, password_hash, created_at)
		values ($1::uuid, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Email, u.FirstName, u.LastName, u.Role, u.PasswordHash, u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

func (r *UsersPG) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `
		select id, email, first_name, last_name, role, password_hash, created_at
		from users where email = $1
	`, email)
}

func (r *UsersPG) FindByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	return r.findOne(ctx, `
		select id, email, first_name, last_name, role, password_hash, created_at
		from users where id = $1::uuid
	`, id)
}

func (r *UsersPG) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UsersPG) ListAddresses(ctx context.Context, userID string) ([]Address, error) {
	rows, err := r.DB.Query(ctx, `
		select id, user_id, street, city, state, zip, country, created_at
		from user_addresses
		where user_id = $1::uuid
		order by created_at desc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Street, &a.City, &a.State, &a.Zip, &a.Country, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *UsersPG) AddAddress(ctx context.Context, a *Address) error {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	_, err := r.DB.Exec(ctx, `
		insert into user_addresses(id, user_id, street, city, state, zip, country, created_at)
		values ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.UserID, a.Street, a.City, a.State, a.Zip, a.Country, a.CreatedAt)
	return err
}

func (r *UsersPG) DeleteAddress(ctx context.Context, userID, addressID string) error {
	if _, err := uuid.Parse(addressID); err != nil {
		return ErrAddressNotFound
	}
	ct, err := r.DB.Exec(ctx, `
		delete from user_addresses where id = $1::uuid and user_id = $2::uuid
	`, addressID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrAddressNotFound
	}
	return nil
}
