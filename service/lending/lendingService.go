package lendingsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kitabu/model"
	bookrepo "kitabu/repository/book"
	"kitabu/util/database"
	"kitabu/util/errcode"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, userID, cartID, bookID int64) (int64, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error)
	MarkBorrowed(ctx context.Context, tx *sql.Tx, id, adminID int64, due time.Time) error
	MarkRejected(ctx context.Context, tx *sql.Tx, id, adminID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.LendingRequest, error)
	ListAll(ctx context.Context) ([]model.LendingRequest, error)
}

type Carts interface {
	LockOpenCart(ctx context.Context, tx *sql.Tx, userID int64, t model.CartType) (int64, error)
	Items(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartItem, error)
	MarkCheckedOut(ctx context.Context, tx *sql.Tx, cartID int64) error
}

type Inventory interface {
	AdjustCopies(ctx context.Context, tx *sql.Tx, bookID int64, delta int64) error
}

type Activity interface {
	Record(ctx context.Context, tx *sql.Tx, actorID int64, action, item string) (*model.ActivityLog, error)
	Publish(ctx context.Context, l *model.ActivityLog)
}

type Invalidator interface {
	Invalidate(ctx context.Context, id int64)
}

// Decision is the outcome of an admin verdict on a lending request.
type Decision struct {
	ID      int64               `json:"id"`
	Status  model.LendingStatus `json:"status"`
	DueDate *time.Time          `json:"due_date,omitempty"`
}

type Service interface {
	// Checkout turns every line of the caller's open lending cart into a pending lending request.
	Checkout(ctx context.Context, c model.Caller) ([]int64, error)
	Decide(ctx context.Context, c model.Caller, id int64, decision string) (*Decision, error)
	My(ctx context.Context, c model.Caller) ([]model.LendingRequest, error)
	All(ctx context.Context, c model.Caller) ([]model.LendingRequest, error)
}

type service struct {
	tx     database.TxRunner
	r      Repo
	carts  Carts
	inv    Inventory
	act    Activity
	cache  Invalidator
	period time.Duration
	now    func() time.Time
}

func New(tx database.TxRunner, r Repo, carts Carts, inv Inventory, act Activity, cache Invalidator, period time.Duration) Service {
	return &service{tx: tx, r: r, carts: carts, inv: inv, act: act, cache: cache, period: period, now: time.Now}
}

func (s *service) Checkout(ctx context.Context, c model.Caller) ([]int64, error) {
	var ids []int64
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		cartID, err := s.carts.LockOpenCart(ctx, tx, c.UserID, model.CartLending)
		if errors.Is(err, sql.ErrNoRows) {
			return errcode.Newf(errcode.BadInput, "lending cart is empty")
		}
		if err != nil {
			return err
		}
		items, err := s.carts.Items(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return errcode.Newf(errcode.BadInput, "lending cart is empty")
		}
		// one loan per copy
		for _, it := range items {
			for n := int64(0); n < it.Quantity; n++ {
				id, err := s.r.Insert(ctx, tx, c.UserID, cartID, it.BookID)
				if err != nil {
					return fmt.Errorf("insert lending: %w", err)
				}
				ids = append(ids, id)
			}
		}
		return s.carts.MarkCheckedOut(ctx, tx, cartID)
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *service) Decide(ctx context.Context, c model.Caller, id int64, decision string) (*Decision, error) {
	if !c.IsAdmin() {
		return nil, errcode.New(errcode.Forbidden)
	}
	approve, err := model.ParseDecision(decision)
	if err != nil {
		return nil, errcode.Newf(errcode.BadInput, "status must be approved or rejected")
	}

	var (
		out   = &Decision{ID: id}
		entry *model.ActivityLog
		l     *model.LendingRequest
	)
	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		l, err = s.r.GetForUpdate(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return errcode.Newf(errcode.NotFound, "lending request not found")
		}
		if err != nil {
			return err
		}
		if l.Status != model.LendingPending {
			return errcode.Newf(errcode.Conflict, "lending request already processed")
		}

		action := "Declined"
		if approve {
			if err := s.inv.AdjustCopies(ctx, tx, l.BookID, -1); err != nil {
				if errors.Is(err, bookrepo.ErrNoCopies) {
					return errcode.Newf(errcode.NoStock, "no copies available")
				}
				return err
			}
			due := s.now().UTC().Add(s.period)
			if err := s.r.MarkBorrowed(ctx, tx, id, c.UserID, due); err != nil {
				return err
			}
			out.Status, out.DueDate, action = model.LendingBorrowed, &due, "Borrowed"
		} else {
			if err := s.r.MarkRejected(ctx, tx, id, c.UserID); err != nil {
				return err
			}
			out.Status = model.LendingRejected
		}
		entry, err = s.act.Record(ctx, tx, c.UserID, action, fmt.Sprintf("Lending %d for book '%s'", id, l.BookTitle))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.act.Publish(ctx, entry)
	if approve {
		s.cache.Invalidate(ctx, l.BookID)
	}
	return out, nil
}

func (s *service) My(ctx context.Context, c model.Caller) ([]model.LendingRequest, error) {
	return nonNil(s.r.ListByUser(ctx, c.UserID))
}

func (s *service) All(ctx context.Context, c model.Caller) ([]model.LendingRequest, error) {
	if !c.IsAdmin() {
		return nil, errcode.New(errcode.Forbidden)
	}
	return nonNil(s.r.ListAll(ctx))
}

func nonNil(ls []model.LendingRequest, err error) ([]model.LendingRequest, error) {
	if err != nil {
		return nil, err
	}
	if ls == nil {
		ls = []model.LendingRequest{}
	}
	return ls, nil
}
