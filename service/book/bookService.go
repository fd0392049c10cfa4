package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"kitabu/model"
	bookrepo "kitabu/repository/book"
	"kitabu/repository/bookcache"
	"kitabu/util/database"
	"kitabu/util/errcode"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/singleflight"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

type Repo interface {
	CreateBook(ctx context.Context, b *model.Book) (int64, error)
	Update(ctx context.Context, id int64, p model.BookPatch) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f model.BookFilter) ([]model.Book, int64, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	AdjustCopies(ctx context.Context, tx *sql.Tx, bookID int64, delta int64) error
}

type Service interface {
	List(ctx context.Context, f model.BookFilter) (model.Page[model.Book], error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, c model.Caller, b *model.Book) (int64, error)
	Update(ctx context.Context, c model.Caller, id int64, p model.BookPatch) error
	Delete(ctx context.Context, c model.Caller, id int64) error
	AdjustCopies(ctx context.Context, c model.Caller, id, delta int64) (*model.Book, error)
	// Invalidate drops the cached copy of a book after its row changed.
	Invalidate(ctx context.Context, id int64)
}

type service struct {
	r     Repo
	tx    database.TxRunner
	cache bookcache.Cache
	sf    singleflight.Group
	log   *slog.Logger
}

func New(r Repo, tx database.TxRunner, cache bookcache.Cache, log *slog.Logger) Service {
	if cache == nil {
		cache = bookcache.Noop()
	}
	if log == nil {
		log = slog.Default()
	}
	return &service{r: r, tx: tx, cache: cache, log: log}
}

func (s *service) List(ctx context.Context, f model.BookFilter) (model.Page[model.Book], error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Genre = strings.TrimSpace(f.Genre)

	items, total, err := s.r.List(ctx, f)
	if err != nil {
		return model.Page[model.Book]{}, err
	}
	return model.NewPage(items, total, f.Page, f.PerPage), nil
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	if b, err := s.cache.Get(ctx, id); err == nil {
		return b, nil
	} else if !errors.Is(err, bookcache.ErrCacheMiss) {
		s.log.Warn("book cache read failed", "err", err, "book_id", id)
	}

	v, err, _ := s.sf.Do(strconv.FormatInt(id, 10), func() (any, error) {
		b, err := s.r.Detail(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, b); err != nil {
			s.log.Warn("book cache write failed", "err", err, "book_id", id)
		}
		return b, nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcode.Newf(errcode.NotFound, "book not found")
	}
	if err != nil {
		return nil, err
	}
	b := *v.(*model.Book)
	return &b, nil
}

func validateBook(b *model.Book) error {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	switch {
	case b.Title == "" || b.Author == "":
		return errcode.Newf(errcode.BadInput, "title and author are required")
	case b.Price.IsNegative():
		return errcode.Newf(errcode.BadInput, "price must not be negative")
	case b.CopiesAvailable < 0:
		return errcode.Newf(errcode.BadInput, "copies must not be negative")
	}
	return nil
}

func (s *service) Create(ctx context.Context, c model.Caller, b *model.Book) (int64, error) {
	if !c.IsAdmin() {
		return 0, errcode.New(errcode.Forbidden)
	}
	if err := validateBook(b); err != nil {
		return 0, err
	}
	uploader := c.UserID
	b.UploadedBy = &uploader
	return s.r.CreateBook(ctx, b)
}

func (s *service) Update(ctx context.Context, c model.Caller, id int64, p model.BookPatch) error {
	if !c.IsAdmin() {
		return errcode.New(errcode.Forbidden)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return errcode.Newf(errcode.BadInput, "title must not be empty")
	}
	if p.Price != nil && p.Price.IsNegative() {
		return errcode.Newf(errcode.BadInput, "price must not be negative")
	}
	if p.CopiesAvailable != nil && *p.CopiesAvailable < 0 {
		return errcode.Newf(errcode.BadInput, "copies must not be negative")
	}
	if err := s.r.Update(ctx, id, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcode.Newf(errcode.NotFound, "book not found")
		}
		return err
	}
	s.Invalidate(ctx, id)
	return nil
}

func (s *service) Delete(ctx context.Context, c model.Caller, id int64) error {
	if !c.IsAdmin() {
		return errcode.New(errcode.Forbidden)
	}
	ok, err := s.r.Delete(ctx, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return errcode.Newf(errcode.Conflict, "book is referenced by carts or orders")
		}
		return err
	}
	if !ok {
		return errcode.Newf(errcode.NotFound, "book not found")
	}
	s.Invalidate(ctx, id)
	return nil
}

func (s *service) AdjustCopies(ctx context.Context, c model.Caller, id, delta int64) (*model.Book, error) {
	if !c.IsAdmin() {
		return nil, errcode.New(errcode.Forbidden)
	}
	if delta == 0 {
		return nil, errcode.Newf(errcode.BadInput, "delta must not be zero")
	}
	if _, err := s.r.Detail(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcode.Newf(errcode.NotFound, "book not found")
		}
		return nil, err
	}
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		return s.r.AdjustCopies(ctx, tx, id, delta)
	})
	if errors.Is(err, bookrepo.ErrNoCopies) {
		return nil, errcode.Newf(errcode.NoStock, "not enough copies")
	}
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx, id)
	return s.r.Detail(ctx, id)
}

func (s *service) Invalidate(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("book cache invalidate failed", "err", err, "book_id", id)
	}
}
