package cartsvc

import (
	"context"
	"database/sql"
	"errors"

	"kitabu/model"
	"kitabu/util/database"
	"kitabu/util/errcode"
)

type Repo interface {
	EnsureOpenCart(ctx context.Context, tx *sql.Tx, userID int64, t model.CartType) (int64, error)
	UpsertItem(ctx context.Context, tx *sql.Tx, cartID, bookID, qty int64) (int64, error)
	OpenCart(ctx context.Context, userID int64, t model.CartType) (*model.Cart, error)
}

// Books is the catalogue lookup the materializer checks availability against.
type Books interface {
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

// Line is the state of a cart line after a materialization.
type Line struct {
	CartID   int64 `json:"cart_id"`
	BookID   int64 `json:"book_id"`
	Quantity int64 `json:"quantity"`
}

type Service interface {
	// Materialize places qty copies of a book in the user's open cart of type t
	// inside an existing transaction. Repeated calls reuse the cart and the line.
	// The book must exist and be flagged for t.
	Materialize(ctx context.Context, tx *sql.Tx, userID, bookID int64, t model.CartType, qty int64) (*Line, error)
	Add(ctx context.Context, c model.Caller, bookID int64, t model.CartType, qty int64) (*Line, error)
	View(ctx context.Context, c model.Caller, t model.CartType) (*model.Cart, error)
}

type service struct {
	r     Repo
	books Books
	tx    database.TxRunner
}

func New(r Repo, books Books, tx database.TxRunner) Service {
	return &service{r: r, books: books, tx: tx}
}

func (s *service) Materialize(ctx context.Context, tx *sql.Tx, userID, bookID int64, t model.CartType, qty int64) (*Line, error) {
	if qty < 1 {
		return nil, errcode.Newf(errcode.BadInput, "quantity must be at least 1")
	}
	b, err := s.books.Detail(ctx, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcode.Newf(errcode.NotFound, "book not found")
	}
	if err != nil {
		return nil, err
	}
	if !b.AvailableFor(t) {
		return nil, errcode.Newf(errcode.BadInput, "book is not available for %s", t)
	}
	cartID, err := s.r.EnsureOpenCart(ctx, tx, userID, t)
	if err != nil {
		return nil, err
	}
	n, err := s.r.UpsertItem(ctx, tx, cartID, bookID, qty)
	if err != nil {
		return nil, err
	}
	return &Line{CartID: cartID, BookID: bookID, Quantity: n}, nil
}

func (s *service) Add(ctx context.Context, c model.Caller, bookID int64, t model.CartType, qty int64) (*Line, error) {
	var line *Line
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		line, err = s.Materialize(ctx, tx, c.UserID, bookID, t, qty)
		return err
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *service) View(ctx context.Context, c model.Caller, t model.CartType) (*model.Cart, error) {
	cart, err := s.r.OpenCart(ctx, c.UserID, t)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.Cart{UserID: c.UserID, Type: t, Items: []model.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return cart, nil
}
