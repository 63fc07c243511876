package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns = `id, email, password, name, phone, wilaya, address, is_staff, created_at, updated_at`

	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	insertUserQuery = `
		INSERT INTO users (email, password, name, phone, wilaya, address, is_staff, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	updateUserQuery = `
		UPDATE users
		SET name = $1,
			phone = $2,
			wilaya = $3,
			address = $4,
			updated_at = $5
		WHERE id = $6
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, getUserByEmailQuery, strings.TrimSpace(email))
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	err := r.db.QueryRowContext(ctx, insertUserQuery,
		user.Email, user.Password, user.Name, user.Phone, user.Wilaya, user.Address, user.IsStaff, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return user, nil
}

// Update persists profile fields only. Email, password and staff flag are
// not editable through the profile.
func (r *PostgresRepository) Update(ctx context.Context, id int, user User) (User, error) {
	res, err := r.db.ExecContext(ctx, updateUserQuery, user.Name, user.Phone, user.Wilaya, user.Address, user.UpdatedAt, id)
	if err != nil {
		return User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, ErrNotFound
	}
	user.ID = id
	return user, nil
}

func scanUser(s rowScanner) (User, error) {
	var (
		u                            User
		name, phone, wilaya, address sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Email, &u.Password, &name, &phone, &wilaya, &address, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	u.Name = name.String
	u.Phone = phone.String
	u.Wilaya = wilaya.String
	u.Address = address.String
	return u, nil
}
