package ordersvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kitabu/model"
	"kitabu/util/database"
	"kitabu/util/errcode"

	"github.com/shopspring/decimal"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, userID, cartID int64, total decimal.Decimal) (int64, error)
	InsertItem(ctx context.Context, tx *sql.Tx, orderID int64, it model.CartItem) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Order, error)
	SetDecision(ctx context.Context, tx *sql.Tx, id int64, status model.OrderStatus, adminID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
}

type Carts interface {
	LockOpenCart(ctx context.Context, tx *sql.Tx, userID int64, t model.CartType) (int64, error)
	Items(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartItem, error)
	MarkCheckedOut(ctx context.Context, tx *sql.Tx, cartID int64) error
}

type Service interface {
	// Checkout turns the caller's open purchase cart into a pending order.
	Checkout(ctx context.Context, c model.Caller) (*model.Order, error)
	My(ctx context.Context, c model.Caller) ([]model.Order, error)
	All(ctx context.Context, c model.Caller) ([]model.Order, error)
	Decide(ctx context.Context, c model.Caller, id int64, decision string) (model.OrderStatus, error)
}

type service struct {
	tx    database.TxRunner
	r     Repo
	carts Carts
}

func New(tx database.TxRunner, r Repo, carts Carts) Service {
	return &service{tx: tx, r: r, carts: carts}
}

func (s *service) Checkout(ctx context.Context, c model.Caller) (*model.Order, error) {
	var out *model.Order
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		cartID, err := s.carts.LockOpenCart(ctx, tx, c.UserID, model.CartPurchase)
		if errors.Is(err, sql.ErrNoRows) {
			return errcode.Newf(errcode.BadInput, "purchase cart is empty")
		}
		if err != nil {
			return err
		}
		items, err := s.carts.Items(ctx, tx, cartID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return errcode.Newf(errcode.BadInput, "purchase cart is empty")
		}

		total := decimal.Zero
		lines := make([]model.OrderItem, 0, len(items))
		for _, it := range items {
			total = total.Add(it.Price.Mul(decimal.NewFromInt(it.Quantity)))
			lines = append(lines, model.OrderItem{BookID: it.BookID, Title: it.Title, Quantity: it.Quantity, UnitPrice: it.Price})
		}

		id, err := s.r.Insert(ctx, tx, c.UserID, cartID, total)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for _, it := range items {
			if err := s.r.InsertItem(ctx, tx, id, it); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		if err := s.carts.MarkCheckedOut(ctx, tx, cartID); err != nil {
			return err
		}
		out = &model.Order{ID: id, UserID: c.UserID, CartID: cartID, Status: model.OrderPending, TotalAmount: total, Items: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) My(ctx context.Context, c model.Caller) ([]model.Order, error) {
	return nonNil(s.r.ListByUser(ctx, c.UserID))
}

func (s *service) All(ctx context.Context, c model.Caller) ([]model.Order, error) {
	if !c.IsAdmin() {
		return nil, errcode.New(errcode.Forbidden)
	}
	return nonNil(s.r.ListAll(ctx))
}

func (s *service) Decide(ctx context.Context, c model.Caller, id int64, decision string) (model.OrderStatus, error) {
	if !c.IsAdmin() {
		return "", errcode.New(errcode.Forbidden)
	}
	approve, err := model.ParseDecision(decision)
	if err != nil {
		return "", errcode.Newf(errcode.BadInput, "status must be approved or rejected")
	}
	next := model.OrderRejected
	if approve {
		next = model.OrderApproved
	}

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		o, err := s.r.GetForUpdate(ctx, tx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return errcode.Newf(errcode.NotFound, "order not found")
		}
		if err != nil {
			return err
		}
		if o.Status != model.OrderPending {
			return errcode.Newf(errcode.Conflict, "order already processed")
		}
		return s.r.SetDecision(ctx, tx, id, next, c.UserID)
	})
	if err != nil {
		return "", err
	}
	return next, nil
}

func nonNil(orders []model.Order, err error) ([]model.Order, error) {
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}
