package lendingrepo

import (
	"context"
	"database/sql"
	"time"

	"kitabu/model"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, userID, cartID, bookID int64) (int64, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error)
	MarkBorrowed(ctx context.Context, tx *sql.Tx, id, adminID int64, due time.Time) error
	MarkRejected(ctx context.Context, tx *sql.Tx, id, adminID int64) error
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64) error

	ListByUser(ctx context.Context, userID int64) ([]model.LendingRequest, error)
	ListAll(ctx context.Context) ([]model.LendingRequest, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, userID, cartID, bookID int64) (int64, error) {
	const q = `
		INSERT INTO lending_requests (user_id, cart_id, book_id, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, q, userID, cartID, bookID).Scan(&id)
	return id, err
}

const lendingCols = `l.id, l.user_id, l.cart_id, l.book_id, b.title, l.status,
	l.approved_by, l.approved_at, l.due_date, l.returned_at, l.created_at`

type scanner interface{ Scan(dest ...any) error }

func scanLending(s scanner) (*model.LendingRequest, error) {
	var l model.LendingRequest
	var status string
	if err := s.Scan(&l.ID, &l.UserID, &l.CartID, &l.BookID, &l.BookTitle, &status,
		&l.ApprovedBy, &l.ApprovedAt, &l.DueDate, &l.ReturnedAt, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Status = model.LendingStatus(status)
	return &l, nil
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
	const q = `
		SELECT ` + lendingCols + `
		FROM lending_requests l
		JOIN books b ON b.id = l.book_id
		WHERE l.id = $1
		FOR UPDATE OF l`
	return scanLending(tx.QueryRowContext(ctx, q, id))
}

func (r *repo) MarkBorrowed(ctx context.Context, tx *sql.Tx, id, adminID int64, due time.Time) error {
	const q = `
		UPDATE lending_requests
		SET status = 'borrowed',
			approved_by = $2,
			approved_at = NOW(),
			due_date = $3
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, adminID, due)
	return err
}

func (r *repo) MarkRejected(ctx context.Context, tx *sql.Tx, id, adminID int64) error {
	const q = `
		UPDATE lending_requests
		SET status = 'rejected',
			approved_by = $2,
			approved_at = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, adminID)
	return err
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, id int64) error {
	const q = `
		UPDATE lending_requests
		SET status = 'returned',
			returned_at = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.LendingRequest, error) {
	return r.list(ctx, `
		SELECT `+lendingCols+`
		FROM lending_requests l
		JOIN books b ON b.id = l.book_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC, l.id DESC`, userID)
}

func (r *repo) ListAll(ctx context.Context) ([]model.LendingRequest, error) {
	return r.list(ctx, `
		SELECT `+lendingCols+`
		FROM lending_requests l
		JOIN books b ON b.id = l.book_id
		ORDER BY l.created_at DESC, l.id DESC`)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.LendingRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.LendingRequest{}
	for rows.Next() {
		l, err := scanLending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}
