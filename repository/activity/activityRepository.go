package activityrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kitabu/model"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

var pg = goqu.Dialect("postgres")

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, l *model.ActivityLog) error
	List(ctx context.Context, f model.ActivityFilter) ([]model.ActivityLog, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, l *model.ActivityLog) error {
	const q = `
		INSERT INTO activity_logs (user_id, action, item)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q, l.UserID, l.Action, l.Item).Scan(&l.ID, &l.CreatedAt)
}

func (r *repo) List(ctx context.Context, f model.ActivityFilter) ([]model.ActivityLog, error) {
	ds := pg.From("activity_logs").Select("id", "user_id", "action", "item", "created_at")
	if f.Action != "" {
		ds = ds.Where(goqu.C("action").Eq(f.Action))
	}
	if f.Date != nil {
		day := f.Date.UTC().Truncate(24 * time.Hour)
		ds = ds.Where(
			goqu.C("created_at").Gte(day),
			goqu.C("created_at").Lt(day.AddDate(0, 0, 1)),
		)
	}
	q, args, err := ds.Order(goqu.C("created_at").Desc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build activity list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ActivityLog{}
	for rows.Next() {
		var l model.ActivityLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Item, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
