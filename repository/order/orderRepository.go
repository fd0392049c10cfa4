package orderrepo

import (
	"context"
	"database/sql"
	"time"

	"kitabu/model"

	"github.com/shopspring/decimal"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, userID, cartID int64, total decimal.Decimal) (int64, error)
	InsertItem(ctx context.Context, tx *sql.Tx, orderID int64, it model.CartItem) error

	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Order, error)
	SetDecision(ctx context.Context, tx *sql.Tx, id int64, status model.OrderStatus, adminID int64) error
	MarkPaid(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error

	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, userID, cartID int64, total decimal.Decimal) (int64, error) {
	const q = `
		INSERT INTO orders (user_id, cart_id, status, total_amount)
		VALUES ($1, $2, 'pending', $3)
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, q, userID, cartID, total).Scan(&id)
	return id, err
}

func (r *repo) InsertItem(ctx context.Context, tx *sql.Tx, orderID int64, it model.CartItem) error {
	const q = `
		INSERT INTO order_items (order_id, book_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)`
	_, err := tx.ExecContext(ctx, q, orderID, it.BookID, it.Quantity, it.Price)
	return err
}

const orderCols = `id, user_id, cart_id, status, total_amount, approved_by, approved_at, paid_at, created_at`

type scanner interface{ Scan(dest ...any) error }

func scanOrder(s scanner) (*model.Order, error) {
	var o model.Order
	var status string
	if err := s.Scan(&o.ID, &o.UserID, &o.CartID, &status, &o.TotalAmount,
		&o.ApprovedBy, &o.ApprovedAt, &o.PaidAt, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Order, error) {
	return scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1 FOR UPDATE`, id))
}

func (r *repo) SetDecision(ctx context.Context, tx *sql.Tx, id int64, status model.OrderStatus, adminID int64) error {
	const q = `
		UPDATE orders
		SET status = $2,
			approved_by = $3,
			approved_at = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, string(status), adminID)
	return err
}

func (r *repo) MarkPaid(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error {
	const q = `
		UPDATE orders
		SET status = 'completed',
			paid_at = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, at)
	return err
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	orders, err := r.list(ctx, `SELECT `+orderCols+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		items, err := r.items(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *repo) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC, id DESC`)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *repo) items(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	const q = `
		SELECT oi.book_id, b.title, oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN books b ON b.id = oi.book_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.BookID, &it.Title, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
