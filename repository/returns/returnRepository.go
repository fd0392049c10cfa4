package returnrepo

import (
	"context"
	"database/sql"

	"kitabu/model"
)

type Repo interface {
	HasPending(ctx context.Context, tx *sql.Tx, lendingID int64) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, lendingID, userID, bookID int64) (int64, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.ReturnRequest, error)
	Process(ctx context.Context, tx *sql.Tx, id int64, status model.ReturnStatus, adminID int64) error

	ListByUser(ctx context.Context, userID int64) ([]model.ReturnRequest, error)
	ListPending(ctx context.Context) ([]model.ReturnRequest, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) HasPending(ctx context.Context, tx *sql.Tx, lendingID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM returns
			WHERE lending_request_id = $1 AND status = 'pending'
		)`
	var ok bool
	err := tx.QueryRowContext(ctx, q, lendingID).Scan(&ok)
	return ok, err
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, lendingID, userID, bookID int64) (int64, error) {
	const q = `
		INSERT INTO returns (lending_request_id, user_id, book_id, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, q, lendingID, userID, bookID).Scan(&id)
	return id, err
}

const returnCols = `id, lending_request_id, user_id, book_id, status, requested_at, processed_at, processed_by`

type scanner interface{ Scan(dest ...any) error }

func scanReturn(s scanner) (*model.ReturnRequest, error) {
	var rr model.ReturnRequest
	var status string
	if err := s.Scan(&rr.ID, &rr.LendingID, &rr.UserID, &rr.BookID, &status,
		&rr.RequestedAt, &rr.ProcessedAt, &rr.ProcessedBy); err != nil {
		return nil, err
	}
	rr.Status = model.ReturnStatus(status)
	return &rr, nil
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.ReturnRequest, error) {
	return scanReturn(tx.QueryRowContext(ctx, `SELECT `+returnCols+` FROM returns WHERE id = $1 FOR UPDATE`, id))
}

func (r *repo) Process(ctx context.Context, tx *sql.Tx, id int64, status model.ReturnStatus, adminID int64) error {
	const q = `
		UPDATE returns
		SET status = $2,
			processed_at = NOW(),
			processed_by = $3
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, string(status), adminID)
	return err
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.ReturnRequest, error) {
	return r.list(ctx, `SELECT `+returnCols+` FROM returns WHERE user_id = $1 ORDER BY requested_at DESC, id DESC`, userID)
}

func (r *repo) ListPending(ctx context.Context) ([]model.ReturnRequest, error) {
	return r.list(ctx, `SELECT `+returnCols+` FROM returns WHERE status = 'pending' ORDER BY requested_at, id`)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]model.ReturnRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ReturnRequest{}
	for rows.Next() {
		rr, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rr)
	}
	return out, rows.Err()
}
