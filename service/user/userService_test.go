package usersvc_test

import (
	"context"
	"testing"

	"kitabu/model"
	usersvc "kitabu/service/user"
	"kitabu/util/errcode"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type repoMock struct {
	listFn   func(ctx context.Context, search string, page, perPage int) ([]model.UserSummary, int64, error)
	deleteFn func(ctx context.Context, id int64) (bool, error)
}

func (m *repoMock) List(ctx context.Context, search string, page, perPage int) ([]model.UserSummary, int64, error) {
	return m.listFn(ctx, search, page, perPage)
}
func (m *repoMock) Delete(ctx context.Context, id int64) (bool, error) { return m.deleteFn(ctx, id) }

type accountsMock struct{ got model.CreateUserReq }

func (a *accountsMock) CreateAccount(ctx context.Context, req model.CreateUserReq) (*model.User, error) {
	a.got = req
	return &model.User{ID: 9, Email: req.Email, Role: model.Role(req.Role)}, nil
}

var (
	admin    = model.Caller{UserID: 1, Role: model.RoleAdmin}
	customer = model.Caller{UserID: 2, Role: model.RoleCustomer}
)

func TestList(t *testing.T) {
	m := &repoMock{listFn: func(ctx context.Context, search string, page, perPage int) ([]model.UserSummary, int64, error) {
		require.Equal(t, "ana", search)
		require.Equal(t, 1, page)
		require.Equal(t, 10, perPage)
		return []model.UserSummary{{BorrowedCount: 2, Status: "Active"}}, 11, nil
	}}
	s := usersvc.New(m, &accountsMock{})

	p, err := s.List(context.Background(), admin, " ana ", 0, 1000)
	require.NoError(t, err)
	require.Equal(t, 2, p.Pages)
	require.Len(t, p.Items, 1)

	_, err = s.List(context.Background(), customer, "", 1, 10)
	require.Equal(t, errcode.Forbidden, errcode.Of(err))
}

func TestCreate(t *testing.T) {
	acc := &accountsMock{}
	s := usersvc.New(&repoMock{}, acc)

	_, err := s.Create(context.Background(), customer, model.CreateUserReq{Role: "admin"})
	require.Equal(t, errcode.Forbidden, errcode.Of(err))

	u, err := s.Create(context.Background(), admin, model.CreateUserReq{Email: "a@b.c", Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, u.Role)
	require.Equal(t, "a@b.c", acc.got.Email)
}

func TestDelete(t *testing.T) {
	m := &repoMock{deleteFn: func(ctx context.Context, id int64) (bool, error) {
		switch id {
		case 5:
			return true, nil
		case 6:
			return false, &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
		default:
			return false, nil
		}
	}}
	s := usersvc.New(m, &accountsMock{})
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, admin, 5))
	require.Equal(t, errcode.Conflict, errcode.Of(s.Delete(ctx, admin, 6)))
	require.Equal(t, errcode.NotFound, errcode.Of(s.Delete(ctx, admin, 7)))
	require.Equal(t, errcode.BadInput, errcode.Of(s.Delete(ctx, admin, admin.UserID)))
	require.Equal(t, errcode.Forbidden, errcode.Of(s.Delete(ctx, customer, 5)))
}
