package paymentrepo

import (
	"context"
	"database/sql"

	"kitabu/model"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Payment, error)
	ListAll(ctx context.Context) ([]model.Payment, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) (int64, error) {
	const q = `
		INSERT INTO payments (order_id, user_id, amount, payment_method, paid_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, q, p.OrderID, p.UserID, p.Amount, p.PaymentMethod, p.PaidAt).Scan(&id)
	return id, err
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Payment, error) {
	return r.list(ctx, `
		SELECT id, order_id, user_id, amount, payment_method, paid_at
		FROM payments
		WHERE user_id = $1
		ORDER BY paid_at DESC, id DESC`, userID)
}

func (r *repo) ListAll(ctx context.Context) ([]model.Payment, error) {
	return r.list(ctx, `
		SELECT id, order_id, user_id, amount, payment_method, paid_at
		FROM payments
		ORDER BY paid_at DESC, id DESC`)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Payment{}
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.UserID, &p.Amount, &p.PaymentMethod, &p.PaidAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
