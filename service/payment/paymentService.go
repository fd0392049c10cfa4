package paymentsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"kitabu/model"
	"kitabu/util/database"
	"kitabu/util/errcode"

	"github.com/shopspring/decimal"
)

const defaultMethod = "manual"

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Payment, error)
	ListAll(ctx context.Context) ([]model.Payment, error)
}

type Orders interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Order, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error
}

type Service interface {
	// Pay settles an order the caller owns and completes it.
	Pay(ctx context.Context, c model.Caller, orderID int64, amount decimal.Decimal, method string) (*model.Payment, error)
	My(ctx context.Context, c model.Caller) ([]model.Payment, error)
	All(ctx context.Context, c model.Caller) ([]model.Payment, error)
}

type service struct {
	tx     database.TxRunner
	r      Repo
	orders Orders
	now    func() time.Time
}

func New(tx database.TxRunner, r Repo, orders Orders) Service {
	return &service{tx: tx, r: r, orders: orders, now: time.Now}
}

func (s *service) Pay(ctx context.Context, c model.Caller, orderID int64, amount decimal.Decimal, method string) (*model.Payment, error) {
	if !amount.IsPositive() {
		return nil, errcode.Newf(errcode.BadInput, "amount must be greater than zero")
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = defaultMethod
	}

	p := &model.Payment{OrderID: orderID, UserID: c.UserID, Amount: amount, PaymentMethod: method}
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		o, err := s.orders.GetForUpdate(ctx, tx, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return errcode.Newf(errcode.NotFound, "order not found")
		}
		if err != nil {
			return err
		}
		if !c.Owns(o.UserID) {
			return errcode.Newf(errcode.Forbidden, "not your order")
		}
		switch o.Status {
		case model.OrderPending, model.OrderApproved:
		case model.OrderCompleted:
			return errcode.Newf(errcode.Conflict, "order already paid")
		default:
			return errcode.Newf(errcode.Conflict, "order cannot be paid in status %s", o.Status)
		}

		p.PaidAt = s.now().UTC()
		id, err := s.r.Insert(ctx, tx, p)
		if err != nil {
			return err
		}
		p.ID = id
		return s.orders.MarkPaid(ctx, tx, orderID, p.PaidAt)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) My(ctx context.Context, c model.Caller) ([]model.Payment, error) {
	return nonNil(s.r.ListByUser(ctx, c.UserID))
}

func (s *service) All(ctx context.Context, c model.Caller) ([]model.Payment, error) {
	if !c.IsAdmin() {
		return nil, errcode.New(errcode.Forbidden)
	}
	return nonNil(s.r.ListAll(ctx))
}

func nonNil(ps []model.Payment, err error) ([]model.Payment, error) {
	if err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []model.Payment{}
	}
	return ps, nil
}
