package usersvc

import (
	"context"
	"errors"
	"strings"

	"kitabu/model"
	"kitabu/util/errcode"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repo interface {
	List(ctx context.Context, search string, page, perPage int) ([]model.UserSummary, int64, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Accounts creates users; authsvc.Service satisfies it.
type Accounts interface {
	CreateAccount(ctx context.Context, req model.CreateUserReq) (*model.User, error)
}

type Service interface {
	List(ctx context.Context, c model.Caller, search string, page, perPage int) (model.Page[model.UserSummary], error)
	Create(ctx context.Context, c model.Caller, req model.CreateUserReq) (*model.User, error)
	Delete(ctx context.Context, c model.Caller, id int64) error
}

type service struct {
	r        Repo
	accounts Accounts
}

func New(r Repo, accounts Accounts) Service { return &service{r: r, accounts: accounts} }

func (s *service) List(ctx context.Context, c model.Caller, search string, page, perPage int) (model.Page[model.UserSummary], error) {
	if !c.IsAdmin() {
		return model.Page[model.UserSummary]{}, errcode.New(errcode.Forbidden)
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	items, total, err := s.r.List(ctx, strings.TrimSpace(search), page, perPage)
	if err != nil {
		return model.Page[model.UserSummary]{}, err
	}
	return model.NewPage(items, total, page, perPage), nil
}

func (s *service) Create(ctx context.Context, c model.Caller, req model.CreateUserReq) (*model.User, error) {
	if !c.IsAdmin() {
		return nil, errcode.New(errcode.Forbidden)
	}
	return s.accounts.CreateAccount(ctx, req)
}

func (s *service) Delete(ctx context.Context, c model.Caller, id int64) error {
	if !c.IsAdmin() {
		return errcode.New(errcode.Forbidden)
	}
	if c.Owns(id) {
		return errcode.Newf(errcode.BadInput, "admins cannot delete themselves")
	}
	ok, err := s.r.Delete(ctx, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return errcode.Newf(errcode.Conflict, "user still has orders or payments")
		}
		return err
	}
	if !ok {
		return errcode.Newf(errcode.NotFound, "user not found")
	}
	return nil
}
