package cartrepo

import (
	"context"
	"database/sql"

	"kitabu/model"
)

type Repo interface {
	// EnsureOpenCart returns the id of the user's open cart of type t, creating it if absent.
	EnsureOpenCart(ctx context.Context, tx *sql.Tx, userID int64, t model.CartType) (int64, error)
	// UpsertItem adds qty to the line for bookID, creating the line if absent, and returns the new quantity.
	UpsertItem(ctx context.Context, tx *sql.Tx, cartID, bookID, qty int64) (int64, error)

	OpenCart(ctx context.Context, userID int64, t model.CartType) (*model.Cart, error)
	LockOpenCart(ctx context.Context, tx *sql.Tx, userID int64, t model.CartType) (int64, error)
	Items(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartItem, error)
	MarkCheckedOut(ctx context.Context, tx *sql.Tx, cartID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) EnsureOpenCart(ctx context.Context, tx *sql.Tx, userID int64, t model.CartType) (int64, error) {
	// The partial unique index makes the open cart a singleton; the no-op
	// update lets RETURNING yield the existing row on conflict.
	const q = `
		INSERT INTO carts (user_id, cart_type)
		VALUES ($1, $2)
		ON CONFLICT (user_id, cart_type) WHERE NOT checked_out
		DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, q, userID, string(t)).Scan(&id)
	return id, err
}

func (r *repo) UpsertItem(ctx context.Context, tx *sql.Tx, cartID, bookID, qty int64) (int64, error) {
	const q = `
		INSERT INTO cart_items (cart_id, book_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, book_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING quantity`
	var n int64
	err := tx.QueryRowContext(ctx, q, cartID, bookID, qty).Scan(&n)
	return n, err
}

func (r *repo) OpenCart(ctx context.Context, userID int64, t model.CartType) (*model.Cart, error) {
	const q = `
		SELECT id, user_id, cart_type, checked_out, created_at
		FROM carts
		WHERE user_id = $1 AND cart_type = $2 AND NOT checked_out`
	c := &model.Cart{}
	var ct string
	if err := r.db.QueryRowContext(ctx, q, userID, string(t)).
		Scan(&c.ID, &c.UserID, &ct, &c.CheckedOut, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Type = model.CartType(ct)

	items, err := r.items(ctx, r.db, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return c, nil
}

func (r *repo) LockOpenCart(ctx context.Context, tx *sql.Tx, userID int64, t model.CartType) (int64, error) {
	const q = `
		SELECT id
		FROM carts
		WHERE user_id = $1 AND cart_type = $2 AND NOT checked_out
		FOR UPDATE`
	var id int64
	err := tx.QueryRowContext(ctx, q, userID, string(t)).Scan(&id)
	return id, err
}

func (r *repo) Items(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartItem, error) {
	return r.items(ctx, tx, cartID)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *repo) items(ctx context.Context, q querier, cartID int64) ([]model.CartItem, error) {
	const sel = `
		SELECT ci.id, ci.cart_id, ci.book_id, b.title, b.price, ci.quantity
		FROM cart_items ci
		JOIN books b ON b.id = ci.book_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`
	rows, err := q.QueryContext(ctx, sel, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CartItem{}
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.BookID, &it.Title, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) MarkCheckedOut(ctx context.Context, tx *sql.Tx, cartID int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE carts SET checked_out = TRUE WHERE id = $1`, cartID)
	return err
}
