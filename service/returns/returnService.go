package returnsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kitabu/model"
	"kitabu/util/database"
	"kitabu/util/errcode"
)

type Repo interface {
	HasPending(ctx context.Context, tx *sql.Tx, lendingID int64) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, lendingID, userID, bookID int64) (int64, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.ReturnRequest, error)
	Process(ctx context.Context, tx *sql.Tx, id int64, status model.ReturnStatus, adminID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.ReturnRequest, error)
	ListPending(ctx context.Context) ([]model.ReturnRequest, error)
}

type Lendings interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64) error
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

type Service interface {
	// Request asks for a borrowed book to be taken back.
	Request(ctx context.Context, c model.Caller, lendingID int64) (int64, error)
	Process(ctx context.Context, c model.Caller, id int64, decision string) (model.ReturnStatus, error)
	My(ctx context.Context, c model.Caller) ([]model.ReturnRequest, error)
	Pending(ctx context.Context, c model.Caller) ([]model.ReturnRequest, error)
}

type service struct {
	tx       database.TxRunner
	r        Repo
	lendings Lendings
	inv      Inventory
	act      Activity
	cache    Invalidator
}

func New(tx database.TxRunner, r Repo, lendings Lendings, inv Inventory, act Activity, cache Invalidator) Service {
	return &service{tx: tx, r: r, lendings: lendings, inv: inv, act: act, cache: cache}
}

func (s *service) Request(ctx context.Context, c model.Caller, lendingID int64) (int64, error) {
	var (
		id    int64
		entry *model.ActivityLog
	)
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		l, err := s.lendings.GetForUpdate(ctx, tx, lendingID)
		if errors.Is(err, sql.ErrNoRows) {
			return errcode.Newf(errcode.NotFound, "lending request not found")
		}
		if err != nil {
			return err
		}
		if !c.Owns(l.UserID) {
			return errcode.Newf(errcode.Forbidden, "not your lending")
		}
		if l.Status != model.LendingBorrowed {
			return errcode.Newf(errcode.Conflict, "book is not currently borrowed")
		}
		pending, err := s.r.HasPending(ctx, tx, lendingID)
		if err != nil {
			return err
		}
		if pending {
			return errcode.Newf(errcode.Conflict, "a return is already pending")
		}
		if id, err = s.r.Insert(ctx, tx, lendingID, c.UserID, l.BookID); err != nil {
			return err
		}
		entry, err = s.act.Record(ctx, tx, c.UserID, "Return_pending", fmt.Sprintf("Return %d for book '%s'", id, l.BookTitle))
		return err
	})
	if err != nil {
		return 0, err
	}
	s.act.Publish(ctx, entry)
	return id, nil
}

func (s *service) Process(ctx context.Context, c model.Caller, id int64, decision string) (model.ReturnStatus, error) {
	if !c.IsAdmin() {
		return "", errcode.New(errcode.Forbidden)
	}
	approve, err := model.ParseDecision(decision)
	if err != nil {
		return "", errcode.Newf(errcode.BadInput, "status must be approved or rejected")
	}
	next, action := model.ReturnRejected, "Declined"
	if approve {
		next, action = model.ReturnApproved, "Returned"
	}

	var (
		entry  *model.ActivityLog
		bookID int64
	)
	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		rr, err := s.r.GetForUpdate(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return errcode.Newf(errcode.NotFound, "return request not found")
		}
		if err != nil {
			return err
		}
		if rr.Status != model.ReturnPending {
			return errcode.Newf(errcode.Conflict, "return already processed")
		}
		bookID = rr.BookID

		l, err := s.lendings.GetForUpdate(ctx, tx, rr.LendingID)
		if err != nil {
			return err
		}
		if approve {
			if err := s.lendings.MarkReturned(ctx, tx, rr.LendingID); err != nil {
				return err
			}
			if err := s.inv.AdjustCopies(ctx, tx, rr.BookID, 1); err != nil {
				return err
			}
		}
		if err := s.r.Process(ctx, tx, id, next, c.UserID); err != nil {
			return err
		}
		entry, err = s.act.Record(ctx, tx, c.UserID, action, fmt.Sprintf("Return %d for book '%s'", id, l.BookTitle))
		return err
	})
	if err != nil {
		return "", err
	}

	s.act.Publish(ctx, entry)
	if approve {
		s.cache.Invalidate(ctx, bookID)
	}
	return next, nil
}

func (s *service) My(ctx context.Context, c model.Caller) ([]model.ReturnRequest, error) {
	return nonNil(s.r.ListByUser(ctx, c.UserID))
}

func (s *service) Pending(ctx context.Context, c model.Caller) ([]model.ReturnRequest, error) {
	if !c.IsAdmin() {
		return nil, errcode.New(errcode.Forbidden)
	}
	return nonNil(s.r.ListPending(ctx))
}

func nonNil(rs []model.ReturnRequest, err error) ([]model.ReturnRequest, error) {
	if err != nil {
		return nil, err
	}
	if rs == nil {
		rs = []model.ReturnRequest{}
	}
	return rs, nil
}
