package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"kitabu/model"
	"kitabu/util/errcode"
	"kitabu/util/hash"
	jwtutil "kitabu/util/jwt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byEmailFn  func(ctx context.Context, email string) (*model.User, error)
	byIDFn     func(ctx context.Context, id int64) (*model.User, error)
	createFn   func(ctx context.Context, u *model.User) error
	updatePwFn func(ctx context.Context, id int64, hash string) error
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if m.updatePwFn == nil {
		return nil
	}
	return m.updatePwFn(ctx, id, hash)
}

const secret = "test-secret"

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func newSvc(m *mockRepo) Service { return New(m, secret, time.Hour, 15*time.Minute) }

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}

	u, tok, err := newSvc(m).Register(ctx, model.RegisterReq{
		Name:     "Halim Iskandar",
		Email:    "USER@Example.COM",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, "user", u.Username)
	require.Equal(t, model.RoleCustomer, u.Role)
	require.NotEmpty(t, u.PasswordHash)

	c, err := jwtutil.Parse(tok, secret)
	require.NoError(t, err)
	require.Equal(t, "customer", c.Role)
	id, err := c.UserID()
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
}

func TestRegister_BadInput(t *testing.T) {
	_, _, err := newSvc(&mockRepo{}).Register(context.Background(), model.RegisterReq{
		Name:     "x",
		Email:    " ",
		Password: "123",
	})
	require.Equal(t, errcode.BadInput, errcode.Of(err))
}

func TestRegister_EmailTaken(t *testing.T) {
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 9, Email: email}, nil
		},
	}
	_, _, err := newSvc(m).Register(context.Background(), model.RegisterReq{
		Name:     "Halim",
		Email:    "taken@example.com",
		Password: "123456",
	})
	require.Equal(t, errcode.EmailTaken, errcode.Of(err))
}

func TestRegister_UniqueViolationRace(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
		},
	}
	_, _, err := newSvc(m).Register(context.Background(), model.RegisterReq{
		Name:     "Halim",
		Email:    "race@example.com",
		Password: "123456",
	})
	require.Equal(t, errcode.EmailTaken, errcode.Of(err))
}

func TestRegister_CreateError(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return errors.New("db down")
		},
	}
	_, _, err := newSvc(m).Register(context.Background(), model.RegisterReq{
		Name:     "ok",
		Email:    "ok@example.com",
		Password: "123456",
	})
	require.Error(t, err)
	require.Equal(t, errcode.Code(""), errcode.Of(err))
}

func TestCreateAccount_AdminRole(t *testing.T) {
	u, err := newSvc(&mockRepo{}).CreateAccount(context.Background(), model.CreateUserReq{
		Name:     "Root",
		Email:    "root@example.com",
		Password: "123456",
		Role:     "admin",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, u.Role)

	_, err = newSvc(&mockRepo{}).CreateAccount(context.Background(), model.CreateUserReq{
		Name:     "Root",
		Email:    "root@example.com",
		Password: "123456",
		Role:     "superuser",
	})
	require.Equal(t, errcode.BadInput, errcode.Of(err))
}

func TestLogin_Success(t *testing.T) {
	pw := "supersecret"
	hashed := mustHash(t, pw)
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			require.Equal(t, "user@example.com", email)
			return &model.User{ID: 7, Email: email, PasswordHash: hashed, Role: model.RoleAdmin}, nil
		},
	}

	u, tok, err := newSvc(m).Login(context.Background(), model.LoginReq{Email: "User@Example.com", Password: pw})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)

	c, err := jwtutil.Parse("Bearer "+tok, secret)
	require.NoError(t, err)
	require.Equal(t, "admin", c.Role)
	require.False(t, c.Reset)
}

func TestLogin_Failures(t *testing.T) {
	hashed := mustHash(t, "correct-password")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email != "user@example.com" {
				return nil, sql.ErrNoRows
			}
			return &model.User{ID: 101, Email: email, PasswordHash: hashed}, nil
		},
	}
	s := newSvc(m)
	ctx := context.Background()

	_, _, err := s.Login(ctx, model.LoginReq{Email: " ", Password: ""})
	require.Equal(t, errcode.BadInput, errcode.Of(err))

	_, _, err = s.Login(ctx, model.LoginReq{Email: "missing@example.com", Password: "whatever"})
	require.Equal(t, errcode.InvalidCreds, errcode.Of(err))

	_, _, err = s.Login(ctx, model.LoginReq{Email: "user@example.com", Password: "wrong-password"})
	require.Equal(t, errcode.InvalidCreds, errcode.Of(err))
}

func TestPasswordReset(t *testing.T) {
	var stored string
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email != "user@example.com" {
				return nil, sql.ErrNoRows
			}
			return &model.User{ID: 3, Email: email}, nil
		},
		updatePwFn: func(ctx context.Context, id int64, h string) error {
			require.Equal(t, int64(3), id)
			stored = h
			return nil
		},
	}
	s := newSvc(m)
	ctx := context.Background()

	_, err := s.RequestReset(ctx, "nobody@example.com")
	require.Equal(t, errcode.NotFound, errcode.Of(err))

	tok, err := s.RequestReset(ctx, "USER@example.com")
	require.NoError(t, err)

	require.Equal(t, errcode.BadInput, errcode.Of(s.ResetPassword(ctx, tok, "123")))
	require.NoError(t, s.ResetPassword(ctx, tok, "new-password"))
	require.True(t, hash.Check(stored, "new-password"))

	login, err := jwtutil.Issue(secret, 3, "customer", time.Hour)
	require.NoError(t, err)
	require.Equal(t, errcode.Unauthorized, errcode.Of(s.ResetPassword(ctx, login, "new-password")))
}

func TestMe(t *testing.T) {
	m := &mockRepo{byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
		return &model.User{ID: id, Name: "Ana"}, nil
	}}
	u, err := newSvc(m).Me(context.Background(), model.Caller{UserID: 4})
	require.NoError(t, err)
	require.Equal(t, "Ana", u.Name)

	_, err = newSvc(&mockRepo{}).Me(context.Background(), model.Caller{UserID: 4})
	require.Equal(t, errcode.NotFound, errcode.Of(err))
}
