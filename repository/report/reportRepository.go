package reportrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Dashboard struct {
	TotalBooks      int64           `db:"total_books" json:"total_books"`
	TotalUsers      int64           `db:"total_users" json:"total_users"`
	BorrowedBooks   int64           `db:"borrowed_books" json:"borrowed_books"`
	PendingRequests int64           `db:"pending_requests" json:"pending_requests"`
	Sales           decimal.Decimal `db:"sales" json:"sales"`
}

type MonthCount struct {
	Month string `db:"month" json:"month"`
	Count int64  `db:"count" json:"count"`
}

type Repo interface {
	Dashboard(ctx context.Context, since time.Time) (*Dashboard, error)
	SalesByMonth(ctx context.Context, month string) ([]MonthCount, error)
	BorrowingsByMonth(ctx context.Context, month string) ([]MonthCount, error)
}

type repo struct{ db *sqlx.DB }

// New wraps the shared *sql.DB; driverName only drives sqlx bind-var style.
func New(db *sql.DB) Repo { return &repo{db: sqlx.NewDb(db, "pgx")} }

func (r *repo) Dashboard(ctx context.Context, since time.Time) (*Dashboard, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM books) AS total_books,
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM lending_requests WHERE status = 'borrowed') AS borrowed_books,
			(SELECT COUNT(*) FROM pending_requests WHERE status = 'pending') AS pending_requests,
			(SELECT COALESCE(SUM(p.amount), 0)
				FROM payments p
				WHERE p.paid_at >= $1) AS sales`
	var d Dashboard
	if err := r.db.GetContext(ctx, &d, q, since); err != nil {
		return nil, err
	}
	return &d, nil
}

// month is a three-letter abbreviation ("Jan") or empty for every month.
func (r *repo) SalesByMonth(ctx context.Context, month string) ([]MonthCount, error) {
	const q = `
		SELECT to_char(created_at, 'Mon') AS month, COUNT(*) AS count
		FROM orders
		WHERE status = 'completed'
		AND ($1 = '' OR to_char(created_at, 'Mon') = $1)
		GROUP BY to_char(created_at, 'Mon'), date_part('month', created_at)
		ORDER BY date_part('month', created_at)`
	out := []MonthCount{}
	err := r.db.SelectContext(ctx, &out, q, month)
	return out, err
}

func (r *repo) BorrowingsByMonth(ctx context.Context, month string) ([]MonthCount, error) {
	const q = `
		SELECT to_char(approved_at, 'Mon') AS month, COUNT(*) AS count
		FROM lending_requests
		WHERE status IN ('borrowed', 'returned')
		AND approved_at IS NOT NULL
		AND ($1 = '' OR to_char(approved_at, 'Mon') = $1)
		GROUP BY to_char(approved_at, 'Mon'), date_part('month', approved_at)
		ORDER BY date_part('month', approved_at)`
	out := []MonthCount{}
	err := r.db.SelectContext(ctx, &out, q, month)
	return out, err
}
