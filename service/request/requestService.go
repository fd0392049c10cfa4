package requestsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kitabu/model"
	bookrepo "kitabu/repository/book"
	cartsvc "kitabu/service/cart"
	"kitabu/util/database"
	"kitabu/util/errcode"
)

type Repo interface {
	Insert(ctx context.Context, userID, bookID int64, action model.RequestAction) (int64, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.PendingRequest, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.RequestStatus) error
	List(ctx context.Context, userID *int64) ([]model.RequestRow, error)
}

type Books interface {
	Detail(ctx context.Context, id int64) (*model.Book, error)
	AdjustCopies(ctx context.Context, tx *sql.Tx, bookID int64, delta int64) error
}

type Carts interface {
	Materialize(ctx context.Context, tx *sql.Tx, userID, bookID int64, t model.CartType, qty int64) (*cartsvc.Line, error)
}

type Activity interface {
	Record(ctx context.Context, tx *sql.Tx, actorID int64, action, item string) (*model.ActivityLog, error)
	Publish(ctx context.Context, l *model.ActivityLog)
}

type Invalidator interface {
	Invalidate(ctx context.Context, id int64)
}

// Result reports the request after a transition and the cart line it produced, if any.
type Result struct {
	ID     int64               `json:"id"`
	Status model.RequestStatus `json:"status"`
	Cart   *cartsvc.Line       `json:"cart,omitempty"`
}

type Service interface {
	Create(ctx context.Context, c model.Caller, bookID int64, action model.RequestAction) (int64, error)
	List(ctx context.Context, c model.Caller) ([]model.RequestRow, error)
	Transition(ctx context.Context, c model.Caller, id int64, to model.RequestStatus) (*Result, error)
}

type service struct {
	tx    database.TxRunner
	r     Repo
	books Books
	carts Carts
	act   Activity
	inv   Invalidator
}

func New(tx database.TxRunner, r Repo, books Books, carts Carts, act Activity, inv Invalidator) Service {
	return &service{tx: tx, r: r, books: books, carts: carts, act: act, inv: inv}
}

func (s *service) Create(ctx context.Context, c model.Caller, bookID int64, action model.RequestAction) (int64, error) {
	b, err := s.books.Detail(ctx, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errcode.Newf(errcode.NotFound, "book not found")
	}
	if err != nil {
		return 0, err
	}
	if !b.AvailableFor(action.CartType()) {
		return 0, errcode.Newf(errcode.BadInput, "book is not available to %s", action)
	}
	return s.r.Insert(ctx, c.UserID, bookID, action)
}

func (s *service) List(ctx context.Context, c model.Caller) ([]model.RequestRow, error) {
	var owner *int64
	if !c.IsAdmin() {
		id := c.UserID
		owner = &id
	}
	rows, err := s.r.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.RequestRow{}
	}
	return rows, nil
}

func (s *service) Transition(ctx context.Context, c model.Caller, id int64, to model.RequestStatus) (*Result, error) {
	var (
		res       = &Result{ID: id, Status: to}
		entry     *model.ActivityLog
		bookID    int64
		inventory bool
	)
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		p, err := s.r.GetForUpdate(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return errcode.Newf(errcode.NotFound, "request not found")
		}
		if err != nil {
			return err
		}
		if err := Check(p, to, c); err != nil {
			return err
		}
		bookID = p.BookID

		b, err := s.books.Detail(ctx, p.BookID)
		if errors.Is(err, sql.ErrNoRows) {
			return errcode.Newf(errcode.NotFound, "book not found")
		}
		if err != nil {
			return err
		}

		switch to {
		case model.RequestApproved:
			if !b.AvailableFor(p.Action.CartType()) {
				return errcode.Newf(errcode.BadInput, "book is no longer available to %s", p.Action)
			}
			// A borrow is tracked on the request itself; only purchases go through a cart.
			if p.Action == model.ActionPurchase {
				line, err := s.carts.Materialize(ctx, tx, p.UserID, p.BookID, model.CartPurchase, 1)
				if err != nil {
					return err
				}
				res.Cart = line
			}
		case model.RequestPurchased, model.RequestBorrowed:
			if err := s.books.AdjustCopies(ctx, tx, p.BookID, -1); err != nil {
				if errors.Is(err, bookrepo.ErrNoCopies) {
					return errcode.Newf(errcode.NoStock, "no copies available")
				}
				return err
			}
			inventory = true
		case model.RequestReturned:
			if err := s.books.AdjustCopies(ctx, tx, p.BookID, 1); err != nil {
				return err
			}
			inventory = true
		}

		if err := s.r.UpdateStatus(ctx, tx, p.ID, to); err != nil {
			return err
		}
		entry, err = s.act.Record(ctx, tx, c.UserID, activityLabel(to),
			fmt.Sprintf("Request %d for book '%s'", p.ID, b.Title))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.act.Publish(ctx, entry)
	if inventory {
		s.inv.Invalidate(ctx, bookID)
	}
	return res, nil
}
