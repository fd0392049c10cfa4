package ordersvc_test

import (
	"context"
	"database/sql"
	"testing"

	"kitabu/model"
	ordersvc "kitabu/service/order"
	"kitabu/util/database/dbtest"
	"kitabu/util/errcode"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type orderRepo struct {
	orders  map[int64]*model.Order
	items   map[int64][]model.CartItem
	decided model.OrderStatus
}

func (r *orderRepo) Insert(ctx context.Context, tx *sql.Tx, userID, cartID int64, total decimal.Decimal) (int64, error) {
	id := int64(len(r.orders) + 1)
	r.orders[id] = &model.Order{ID: id, UserID: userID, CartID: cartID, TotalAmount: total, Status: model.OrderPending}
	return id, nil
}

func (r *orderRepo) InsertItem(ctx context.Context, tx *sql.Tx, orderID int64, it model.CartItem) error {
	r.items[orderID] = append(r.items[orderID], it)
	return nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return o, nil
}

func (r *orderRepo) SetDecision(ctx context.Context, tx *sql.Tx, id int64, status model.OrderStatus, adminID int64) error {
	r.orders[id].Status = status
	r.decided = status
	return nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) { return nil, nil }
func (r *orderRepo) ListAll(ctx context.Context) ([]model.Order, error)                 { return nil, nil }

type cartStub struct {
	cartID     int64
	items      []model.CartItem
	checkedOut bool
}

func (c *cartStub) LockOpenCart(ctx context.Context, tx *sql.Tx, userID int64, t model.CartType) (int64, error) {
	if c.cartID == 0 || t != model.CartPurchase {
		return 0, sql.ErrNoRows
	}
	return c.cartID, nil
}

func (c *cartStub) Items(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartItem, error) {
	return c.items, nil
}

func (c *cartStub) MarkCheckedOut(ctx context.Context, tx *sql.Tx, cartID int64) error {
	c.checkedOut = true
	return nil
}

var (
	admin    = model.Caller{UserID: 1, Role: model.RoleAdmin}
	customer = model.Caller{UserID: 5, Role: model.RoleCustomer}
)

func newRepo() *orderRepo {
	return &orderRepo{orders: map[int64]*model.Order{}, items: map[int64][]model.CartItem{}}
}

func TestCheckout_TotalsCart(t *testing.T) {
	repo := newRepo()
	carts := &cartStub{cartID: 3, items: []model.CartItem{
		{BookID: 1, Title: "Dune", Price: decimal.RequireFromString("12.50"), Quantity: 2},
		{BookID: 2, Title: "Emma", Price: decimal.RequireFromString("4.25"), Quantity: 1},
	}}
	s := ordersvc.New(&dbtest.Runner{}, repo, carts)

	o, err := s.Checkout(context.Background(), customer)
	require.NoError(t, err)
	require.True(t, o.TotalAmount.Equal(decimal.RequireFromString("29.25")), o.TotalAmount.String())
	require.Equal(t, model.OrderPending, o.Status)
	require.Len(t, o.Items, 2)
	require.Len(t, repo.items[o.ID], 2)
	require.True(t, carts.checkedOut)
}

func TestCheckout_EmptyCart(t *testing.T) {
	s := ordersvc.New(&dbtest.Runner{}, newRepo(), &cartStub{})
	_, err := s.Checkout(context.Background(), customer)
	require.Equal(t, errcode.BadInput, errcode.Of(err))

	carts := &cartStub{cartID: 9}
	s = ordersvc.New(&dbtest.Runner{}, newRepo(), carts)
	_, err = s.Checkout(context.Background(), customer)
	require.Equal(t, errcode.BadInput, errcode.Of(err))
	require.False(t, carts.checkedOut)
}

func TestDecide(t *testing.T) {
	repo := newRepo()
	repo.orders[1] = &model.Order{ID: 1, UserID: customer.UserID, Status: model.OrderPending}
	s := ordersvc.New(&dbtest.Runner{}, repo, &cartStub{})
	ctx := context.Background()

	_, err := s.Decide(ctx, customer, 1, "approved")
	require.Equal(t, errcode.Forbidden, errcode.Of(err))

	_, err = s.Decide(ctx, admin, 1, "shrug")
	require.Equal(t, errcode.BadInput, errcode.Of(err))

	_, err = s.Decide(ctx, admin, 2, "approved")
	require.Equal(t, errcode.NotFound, errcode.Of(err))

	st, err := s.Decide(ctx, admin, 1, "approve")
	require.NoError(t, err)
	require.Equal(t, model.OrderApproved, st)

	_, err = s.Decide(ctx, admin, 1, "rejected")
	require.Equal(t, errcode.Conflict, errcode.Of(err))
	require.Equal(t, model.OrderApproved, repo.decided)
}

func TestLists(t *testing.T) {
	s := ordersvc.New(&dbtest.Runner{}, newRepo(), &cartStub{})
	ctx := context.Background()

	mine, err := s.My(ctx, customer)
	require.NoError(t, err)
	require.NotNil(t, mine)

	_, err = s.All(ctx, customer)
	require.Equal(t, errcode.Forbidden, errcode.Of(err))
	all, err := s.All(ctx, admin)
	require.NoError(t, err)
	require.Empty(t, all)
}
