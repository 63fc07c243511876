package delivery

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listWilayasQuery     = `SELECT id, name, delivery_price FROM wilaya_delivery ORDER BY name`
	getWilayaByIDQuery   = `SELECT id, name, delivery_price FROM wilaya_delivery WHERE id = $1`
	getWilayaByNameQuery = `SELECT id, name, delivery_price FROM wilaya_delivery WHERE name = $1`
	insertWilayaQuery    = `
		INSERT INTO wilaya_delivery (name, delivery_price)
		VALUES ($1, $2)
		RETURNING id
	`
	updateWilayaQuery = `
		UPDATE wilaya_delivery
		SET name = $1, delivery_price = $2
		WHERE id = $3
	`
	deleteWilayaQuery = `DELETE FROM wilaya_delivery WHERE id = $1`

	uniqueViolation = "23505"
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Wilaya, error) {
	rows, err := r.db.QueryContext(ctx, listWilayasQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Wilaya, 0)
	for rows.Next() {
		var w Wilaya
		if err := rows.Scan(&w.ID, &w.Name, &w.DeliveryPrice); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Wilaya, error) {
	return r.getOne(ctx, getWilayaByIDQuery, id)
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (Wilaya, error) {
	return r.getOne(ctx, getWilayaByNameQuery, name)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (Wilaya, error) {
	var w Wilaya
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&w.ID, &w.Name, &w.DeliveryPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Wilaya{}, ErrNotFound
		}
		return Wilaya{}, err
	}
	return w, nil
}

func (r *PostgresRepository) Create(ctx context.Context, w Wilaya) (Wilaya, error) {
	if err := r.db.QueryRowContext(ctx, insertWilayaQuery, w.Name, w.DeliveryPrice).Scan(&w.ID); err != nil {
		return Wilaya{}, mapWriteError(err)
	}
	return w, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, w Wilaya) (Wilaya, error) {
	res, err := r.db.ExecContext(ctx, updateWilayaQuery, w.Name, w.DeliveryPrice, id)
	if err != nil {
		return Wilaya{}, mapWriteError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Wilaya{}, ErrNotFound
	}
	w.ID = id
	return w, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteWilayaQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateName
	}
	return err
}
