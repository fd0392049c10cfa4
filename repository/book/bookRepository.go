package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kitabu/model"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

// ErrNoCopies is returned when an adjustment would take copies below zero.
var ErrNoCopies = errors.New("no copies available")

var pg = goqu.Dialect("postgres")

type Repo interface {
	CreateBook(ctx context.Context, b *model.Book) (int64, error)
	Update(ctx context.Context, id int64, p model.BookPatch) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f model.BookFilter) ([]model.Book, int64, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)

	AdjustCopies(ctx context.Context, tx *sql.Tx, bookID int64, delta int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) CreateBook(ctx context.Context, b *model.Book) (int64, error) {
	const q = `
INSERT INTO books (title, author, genre, description, price,
                   is_available_for_sale, is_available_for_lending, copies_available, uploaded_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.Genre, b.Description, b.Price,
		b.IsAvailableForSale, b.IsAvailableForLending, b.CopiesAvailable, b.UploadedBy,
	).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) Update(ctx context.Context, id int64, p model.BookPatch) error {
	rec := goqu.Record{"updated_at": goqu.L("NOW()")}
	if p.Title != nil {
		rec["title"] = *p.Title
	}
	if p.Author != nil {
		rec["author"] = *p.Author
	}
	if p.Genre != nil {
		rec["genre"] = *p.Genre
	}
	if p.Description != nil {
		rec["description"] = *p.Description
	}
	if p.Price != nil {
		rec["price"] = p.Price.String()
	}
	if p.IsAvailableForSale != nil {
		rec["is_available_for_sale"] = *p.IsAvailableForSale
	}
	if p.IsAvailableForLending != nil {
		rec["is_available_for_lending"] = *p.IsAvailableForLending
	}
	if p.CopiesAvailable != nil {
		rec["copies_available"] = *p.CopiesAvailable
	}

	q, args, err := pg.Update("books").Set(rec).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

var bookCols = []interface{}{
	"id", "title", "author", "genre", "description", "price",
	"is_available_for_sale", "is_available_for_lending", "copies_available",
	"uploaded_by", "uploaded_at", "updated_at",
}

type scanner interface{ Scan(dest ...any) error }

func scanBook(s scanner) (*model.Book, error) {
	var b model.Book
	if err := s.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.Description, &b.Price,
		&b.IsAvailableForSale, &b.IsAvailableForLending, &b.CopiesAvailable,
		&b.UploadedBy, &b.UploadedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) List(ctx context.Context, f model.BookFilter) ([]model.Book, int64, error) {
	ds := pg.From("books")
	if f.Search != "" {
		like := "%" + f.Search + "%"
		ds = ds.Where(goqu.Or(goqu.C("title").ILike(like), goqu.C("author").ILike(like)))
	}
	if f.Genre != "" {
		ds = ds.Where(goqu.C("genre").ILike(f.Genre))
	}
	if f.ForSale != nil {
		ds = ds.Where(goqu.C("is_available_for_sale").Eq(*f.ForSale))
	}
	if f.ForLending != nil {
		ds = ds.Where(goqu.C("is_available_for_lending").Eq(*f.ForLending))
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q, args, err := ds.Select(bookCols...).
		Order(goqu.C("id").Desc()).
		Limit(uint(f.PerPage)).
		Offset(uint((f.Page - 1) * f.PerPage)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	q, args, err := pg.From("books").Select(bookCols...).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build detail: %w", err)
	}
	return scanBook(r.db.QueryRowContext(ctx, q, args...))
}

func (r *repo) AdjustCopies(ctx context.Context, tx *sql.Tx, bookID int64, delta int64) error {
	// Guard: never below zero.
	const q = `
		UPDATE books
		SET copies_available = copies_available + $2,
			updated_at = NOW()
		WHERE id = $1
		AND copies_available + $2 >= 0`
	res, err := tx.ExecContext(ctx, q, bookID, delta)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNoCopies
	}
	return nil
}
