package requestrepo

import (
	"context"
	"database/sql"

	"kitabu/model"
)

type Repo interface {
	Insert(ctx context.Context, userID, bookID int64, action model.RequestAction) (int64, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.PendingRequest, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.RequestStatus) error
	// List returns every request when userID is nil, else the user's own.
	List(ctx context.Context, userID *int64) ([]model.RequestRow, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, userID, bookID int64, action model.RequestAction) (int64, error) {
	const q = `
		INSERT INTO pending_requests (user_id, book_id, action, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q, userID, bookID, string(action)).Scan(&id)
	return id, err
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.PendingRequest, error) {
	const q = `
		SELECT id, user_id, book_id, action, status, created_at, updated_at
		FROM pending_requests
		WHERE id = $1
		FOR UPDATE`
	p := &model.PendingRequest{}
	var action, status string
	if err := tx.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.UserID, &p.BookID, &action, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Action = model.RequestAction(action)
	p.Status = model.RequestStatus(status)
	return p, nil
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.RequestStatus) error {
	const q = `
		UPDATE pending_requests
		SET status = $2,
			updated_at = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, string(status))
	return err
}

func (r *repo) List(ctx context.Context, userID *int64) ([]model.RequestRow, error) {
	const q = `
		SELECT p.id, p.user_id, p.book_id, p.action, p.status, p.created_at, p.updated_at,
			u.name, b.id, b.title, b.author, b.price::TEXT
		FROM pending_requests p
		JOIN users u ON u.id = p.user_id
		JOIN books b ON b.id = p.book_id
		WHERE ($1::BIGINT IS NULL OR p.user_id = $1)
		ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RequestRow{}
	for rows.Next() {
		var row model.RequestRow
		var action, status string
		if err := rows.Scan(
			&row.ID, &row.UserID, &row.BookID, &action, &status, &row.CreatedAt, &row.UpdatedAt,
			&row.UserName, &row.Book.ID, &row.Book.Title, &row.Book.Author, &row.Book.Price,
		); err != nil {
			return nil, err
		}
		row.Action = model.RequestAction(action)
		row.Status = model.RequestStatus(status)
		out = append(out, row)
	}
	return out, rows.Err()
}
