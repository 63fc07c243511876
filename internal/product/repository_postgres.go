package product

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `id, category_id, name, description, price, metre_price, poids, image, is_available, created_at`

	getProductByIDQuery = `SELECT ` + productColumns + ` FROM product WHERE id = $1`
	insertProductQuery  = `
		INSERT INTO product (category_id, name, description, price, metre_price, poids, image, is_available)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at
	`
	updateProductQuery = `
		UPDATE product
		SET category_id = $1,
			name = $2,
			description = $3,
			price = $4,
			metre_price = $5,
			poids = $6,
			image = $7,
			is_available = $8
		WHERE id = $9
		RETURNING created_at
	`
	deleteProductQuery = `DELETE FROM product WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	query, args := listQuery(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func listQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		where = append(where, "category_id = $"+strconv.Itoa(len(args)))
	}
	if f.AvailableOnly {
		where = append(where, "is_available")
	}

	q := `SELECT ` + productColumns + ` FROM product`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	return q + ` ORDER BY id`, args
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	err := r.db.QueryRowContext(ctx, insertProductQuery,
		p.CategoryID, p.Name, p.Description, p.Price, nullDecimal(p.MetrePrice), nullDecimal(p.Weight), p.Image, p.IsAvailable,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, p Product) (Product, error) {
	err := r.db.QueryRowContext(ctx, updateProductQuery,
		p.CategoryID, p.Name, p.Description, p.Price, nullDecimal(p.MetrePrice), nullDecimal(p.Weight), p.Image, p.IsAvailable, id,
	).Scan(&p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanProduct reads metre_price and poids as text so a malformed stored value
// degrades to "not set" instead of failing the whole row.
func scanProduct(s scanner) (Product, error) {
	var (
		p                 Product
		metrePrice, poids sql.NullString
		image             sql.NullString
	)
	if err := s.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &metrePrice, &poids, &image, &p.IsAvailable, &p.CreatedAt); err != nil {
		return Product{}, err
	}
	p.MetrePrice = parseDecimal(p.ID, "metre_price", metrePrice)
	p.Weight = parseDecimal(p.ID, "poids", poids)
	if image.Valid && image.String != "" {
		p.Image = &image.String
	}
	return p, nil
}

func parseDecimal(id int, column string, v sql.NullString) *decimal.Decimal {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v.String))
	if err != nil {
		log.Printf("[product] malformed %s %q on product %d: %v", column, v.String, id, err)
		return nil
	}
	return &d
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
