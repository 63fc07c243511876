package order

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	orderColumns = `id, reference, client_id, guest_name, guest_email, guest_phone, guest_wilaya, guest_address, created_at, is_sent, delivery_price, total_price`

	insertOrderQuery = `
		INSERT INTO orders (reference, client_id, guest_name, guest_email, guest_phone, guest_wilaya, guest_address, created_at, is_sent, delivery_price, total_price)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id
	`
	insertItemQuery = `
		INSERT INTO order_items (order_id, position, product_id, quantity, length, color, product_name, price)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`
	updateOrderQuery = `
		UPDATE orders
		SET guest_name = $1,
			guest_email = $2,
			guest_phone = $3,
			guest_wilaya = $4,
			guest_address = $5,
			is_sent = $6
		WHERE id = $7
	`
	deleteItemsQuery  = `DELETE FROM order_items WHERE order_id = $1`
	deleteOrderQuery  = `DELETE FROM orders WHERE id = $1`
	setSentQuery      = `UPDATE orders SET is_sent = $1 WHERE id = ANY($2::int[])`
	getOrderQuery     = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listByClientQuery = `SELECT ` + orderColumns + ` FROM orders WHERE client_id = $1 ORDER BY created_at DESC, id DESC`
	listAllQuery      = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	listBySentQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE is_sent = $1 ORDER BY created_at DESC, id DESC`
	listByIDsQuery    = `SELECT ` + orderColumns + ` FROM orders WHERE id = ANY($1::int[]) ORDER BY array_position($1::int[], id)`

	listItemsQuery = `
		SELECT id, order_id, product_id, quantity, length, color, product_name, price
		FROM order_items
		WHERE order_id = ANY($1::int[])
		ORDER BY order_id, position
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o Order) (Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	var clientID sql.NullInt64
	if o.ClientID != nil {
		clientID = sql.NullInt64{Int64: int64(*o.ClientID), Valid: true}
	}
	err = tx.QueryRowContext(ctx, insertOrderQuery,
		o.Reference, clientID, o.Guest.Name, o.Guest.Email, o.Guest.Phone, o.Guest.Wilaya, o.Guest.Address,
		o.CreatedAt, o.IsSent, o.DeliveryPrice, o.TotalPrice,
	).Scan(&o.ID)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return o, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID int, items []LineItem) error {
	for i := range items {
		it := &items[i]
		var length decimal.NullDecimal
		if it.Length != nil {
			length = decimal.NewNullDecimal(*it.Length)
		}
		err := tx.QueryRowContext(ctx, insertItemQuery,
			orderID, i, it.ProductID, it.Quantity, length, it.Color, it.ProductName, it.Price,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item %d: %w", i, err)
		}
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Order, error) {
	orders, err := r.query(ctx, getOrderQuery, id)
	if err != nil {
		return Order{}, err
	}
	if len(orders) == 0 {
		return Order{}, ErrNotFound
	}
	return orders[0], nil
}

func (r *PostgresRepository) ListByClient(ctx context.Context, clientID int) ([]Order, error) {
	return r.query(ctx, listByClientQuery, clientID)
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Order, error) {
	if f.IsSent != nil {
		return r.query(ctx, listBySentQuery, *f.IsSent)
	}
	return r.query(ctx, listAllQuery)
}

// ListByIDs returns orders matching the given ids, in the order of the ids.
func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]Order, error) {
	if len(ids) == 0 {
		return []Order{}, nil
	}
	return r.query(ctx, listByIDsQuery, pq.Array(ids))
}

func (r *PostgresRepository) Update(ctx context.Context, o Order, replaceItems bool) (Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, updateOrderQuery,
		o.Guest.Name, o.Guest.Email, o.Guest.Phone, o.Guest.Wilaya, o.Guest.Address, o.IsSent, o.ID)
	if err != nil {
		return Order{}, fmt.Errorf("update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Order{}, ErrNotFound
	}

	if replaceItems {
		if _, err := tx.ExecContext(ctx, deleteItemsQuery, o.ID); err != nil {
			return Order{}, fmt.Errorf("delete order items: %w", err)
		}
		if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
			return Order{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) SetSent(ctx context.Context, ids []int, sent bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, setSentQuery, sent, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteOrderQuery, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// query loads order headers and then all their items in one round trip.
func (r *PostgresRepository) query(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var (
			o        Order
			clientID sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &o.Reference, &clientID,
			&o.Guest.Name, &o.Guest.Email, &o.Guest.Phone, &o.Guest.Wilaya, &o.Guest.Address,
			&o.CreatedAt, &o.IsSent, &o.DeliveryPrice, &o.TotalPrice); err != nil {
			return nil, err
		}
		if clientID.Valid {
			id := int(clientID.Int64)
			o.ClientID = &id
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) attachItems(ctx context.Context, orders []Order) error {
	ids := make([]int, len(orders))
	index := make(map[int]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []LineItem{}
	}

	rows, err := r.db.QueryContext(ctx, listItemsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it      LineItem
			orderID int
			length  decimal.NullDecimal
			color   sql.NullString
		)
		if err := rows.Scan(&it.ID, &orderID, &it.ProductID, &it.Quantity, &length, &color, &it.ProductName, &it.Price); err != nil {
			return err
		}
		if length.Valid {
			l := length.Decimal
			it.Length = &l
		}
		it.Color = color.String
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*InMemoryRepository)(nil)
)
