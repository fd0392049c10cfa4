package lendingsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"kitabu/model"
	bookrepo "kitabu/repository/book"
	"kitabu/util/database/dbtest"
	"kitabu/util/errcode"

	"github.com/stretchr/testify/require"
)

type repoMock struct {
	rows     map[int64]*model.LendingRequest
	inserted []int64
}

func (m *repoMock) Insert(ctx context.Context, tx *sql.Tx, userID, cartID, bookID int64) (int64, error) {
	id := int64(len(m.rows) + 1)
	m.rows[id] = &model.LendingRequest{ID: id, UserID: userID, CartID: cartID, BookID: bookID, Status: model.LendingPending}
	m.inserted = append(m.inserted, bookID)
	return id, nil
}

func (m *repoMock) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.LendingRequest, error) {
	l, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return l, nil
}

func (m *repoMock) MarkBorrowed(ctx context.Context, tx *sql.Tx, id, adminID int64, due time.Time) error {
	m.rows[id].Status = model.LendingBorrowed
	m.rows[id].DueDate = &due
	return nil
}

func (m *repoMock) MarkRejected(ctx context.Context, tx *sql.Tx, id, adminID int64) error {
	m.rows[id].Status = model.LendingRejected
	return nil
}

func (m *repoMock) ListByUser(ctx context.Context, userID int64) ([]model.LendingRequest, error) {
	return nil, nil
}
func (m *repoMock) ListAll(ctx context.Context) ([]model.LendingRequest, error) { return nil, nil }

type cartStub struct {
	items      []model.CartItem
	checkedOut bool
}

func (c *cartStub) LockOpenCart(ctx context.Context, tx *sql.Tx, userID int64, t model.CartType) (int64, error) {
	if t != model.CartLending {
		return 0, sql.ErrNoRows
	}
	return 4, nil
}
func (c *cartStub) Items(ctx context.Context, tx *sql.Tx, cartID int64) ([]model.CartItem, error) {
	return c.items, nil
}
func (c *cartStub) MarkCheckedOut(ctx context.Context, tx *sql.Tx, cartID int64) error {
	c.checkedOut = true
	return nil
}

type stock struct{ copies int64 }

func (s *stock) AdjustCopies(ctx context.Context, tx *sql.Tx, bookID int64, delta int64) error {
	if s.copies+delta < 0 {
		return bookrepo.ErrNoCopies
	}
	s.copies += delta
	return nil
}

type activity struct{ actions []string }

func (a *activity) Record(ctx context.Context, tx *sql.Tx, actorID int64, action, item string) (*model.ActivityLog, error) {
	a.actions = append(a.actions, action)
	return &model.ActivityLog{Action: action, Item: item}, nil
}
func (a *activity) Publish(ctx context.Context, l *model.ActivityLog) {}

type noInvalidate struct{ n int }

func (n *noInvalidate) Invalidate(ctx context.Context, id int64) { n.n++ }

var (
	admin    = model.Caller{UserID: 1, Role: model.RoleAdmin}
	customer = model.Caller{UserID: 5, Role: model.RoleCustomer}
)

func TestCheckout_OneRequestPerLine(t *testing.T) {
	repo := &repoMock{rows: map[int64]*model.LendingRequest{}}
	carts := &cartStub{items: []model.CartItem{{BookID: 10, Quantity: 1}, {BookID: 11, Quantity: 1}}}
	s := New(&dbtest.Runner{}, repo, carts, &stock{}, &activity{}, &noInvalidate{}, 14*24*time.Hour)

	ids, err := s.Checkout(context.Background(), customer)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.Equal(t, []int64{10, 11}, repo.inserted)
	require.True(t, carts.checkedOut)

	s = New(&dbtest.Runner{}, repo, &cartStub{}, &stock{}, &activity{}, &noInvalidate{}, time.Hour)
	_, err = s.Checkout(context.Background(), customer)
	require.Equal(t, errcode.BadInput, errcode.Of(err))
}

func TestCheckout_OneRequestPerCopy(t *testing.T) {
	repo := &repoMock{rows: map[int64]*model.LendingRequest{}}
	carts := &cartStub{items: []model.CartItem{{BookID: 10, Quantity: 2}, {BookID: 11, Quantity: 1}}}
	s := New(&dbtest.Runner{}, repo, carts, &stock{}, &activity{}, &noInvalidate{}, time.Hour)

	ids, err := s.Checkout(context.Background(), customer)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	require.Equal(t, []int64{10, 10, 11}, repo.inserted)
}

func TestDecide_ApproveSetsDueDateAndTakesCopy(t *testing.T) {
	repo := &repoMock{rows: map[int64]*model.LendingRequest{
		1: {ID: 1, UserID: customer.UserID, BookID: 10, BookTitle: "Dune", Status: model.LendingPending},
	}}
	inv := &stock{copies: 1}
	act := &activity{}
	cache := &noInvalidate{}
	svc := New(&dbtest.Runner{}, repo, &cartStub{}, inv, act, cache, 14*24*time.Hour).(*service)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	d, err := svc.Decide(context.Background(), admin, 1, "approved")
	require.NoError(t, err)
	require.Equal(t, model.LendingBorrowed, d.Status)
	require.Equal(t, now.Add(14*24*time.Hour), *d.DueDate)
	require.Equal(t, int64(0), inv.copies)
	require.Equal(t, []string{"Borrowed"}, act.actions)
	require.Equal(t, 1, cache.n)

	_, err = svc.Decide(context.Background(), admin, 1, "rejected")
	require.Equal(t, errcode.Conflict, errcode.Of(err))
}

func TestDecide_Errors(t *testing.T) {
	repo := &repoMock{rows: map[int64]*model.LendingRequest{
		1: {ID: 1, UserID: customer.UserID, BookID: 10, Status: model.LendingPending},
		2: {ID: 2, UserID: customer.UserID, BookID: 10, Status: model.LendingPending},
	}}
	s := New(&dbtest.Runner{}, repo, &cartStub{}, &stock{copies: 0}, &activity{}, &noInvalidate{}, time.Hour)
	ctx := context.Background()

	_, err := s.Decide(ctx, customer, 1, "approved")
	require.Equal(t, errcode.Forbidden, errcode.Of(err))

	_, err = s.Decide(ctx, admin, 1, "approved")
	require.Equal(t, errcode.NoStock, errcode.Of(err))
	require.Equal(t, model.LendingPending, repo.rows[1].Status)

	_, err = s.Decide(ctx, admin, 99, "approved")
	require.Equal(t, errcode.NotFound, errcode.Of(err))

	d, err := s.Decide(ctx, admin, 2, "reject")
	require.NoError(t, err)
	require.Equal(t, model.LendingRejected, d.Status)
	require.Nil(t, d.DueDate)
}
