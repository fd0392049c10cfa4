package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"kitabu/model"
	"kitabu/util/errcode"
	"kitabu/util/hash"
	jwtutil "kitabu/util/jwt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	// CreateAccount stores a new user with the given role; Register uses it with the customer role.
	CreateAccount(ctx context.Context, req model.CreateUserReq) (*model.User, error)
	RequestReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) error
	Me(ctx context.Context, c model.Caller) (*model.User, error)
}

type service struct {
	ur       Repo
	secret   string
	ttl      time.Duration
	resetTTL time.Duration
}

func New(ur Repo, secret string, ttl, resetTTL time.Duration) Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = 15 * time.Minute
	}
	return &service{ur: ur, secret: secret, ttl: ttl, resetTTL: resetTTL}
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	u, err := s.CreateAccount(ctx, model.CreateUserReq{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     string(model.RoleCustomer),
	})
	if err != nil {
		return nil, "", err
	}
	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), s.ttl)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) CreateAccount(ctx context.Context, req model.CreateUserReq) (*model.User, error) {
	email := normEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if name == "" || !strings.Contains(email, "@") || len(req.Password) < 6 {
		return nil, errcode.Newf(errcode.BadInput, "name, valid email and a password of at least 6 characters are required")
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, errcode.Newf(errcode.BadInput, "%s", err)
	}

	if existing, err := s.ur.ByEmail(ctx, email); err == nil && existing != nil {
		return nil, errcode.Newf(errcode.EmailTaken, "email already registered")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Name:         name,
		Username:     strings.SplitN(email, "@", 2)[0],
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, derr
		}
		return nil, err
	}
	return u, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		if strings.Contains(cn, "users_email") || strings.Contains(strings.ToLower(pgErr.Message), "email") {
			return errcode.Newf(errcode.EmailTaken, "email already registered")
		}
		return errcode.Newf(errcode.Conflict, "duplicate user")
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := normEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", errcode.Newf(errcode.BadInput, "email and password are required")
	}
	u, err := s.ur.ByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, "", errcode.Newf(errcode.InvalidCreds, "invalid credentials")
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", errcode.Newf(errcode.InvalidCreds, "invalid credentials")
	}
	role, err := model.ParseRole(string(u.Role))
	if err != nil {
		return nil, "", err
	}
	u.Role = role
	token, err := jwtutil.Issue(s.secret, u.ID, string(role), s.ttl)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) RequestReset(ctx context.Context, email string) (string, error) {
	u, err := s.ur.ByEmail(ctx, normEmail(email))
	if errors.Is(err, sql.ErrNoRows) || (err == nil && u == nil) {
		return "", errcode.Newf(errcode.NotFound, "no account with that email")
	}
	if err != nil {
		return "", err
	}
	return jwtutil.IssueReset(s.secret, u.ID, s.resetTTL)
}

func (s *service) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < 6 {
		return errcode.Newf(errcode.BadInput, "password must be at least 6 characters")
	}
	claims, err := jwtutil.Parse(token, s.secret)
	if err != nil || !claims.Reset {
		return errcode.Newf(errcode.Unauthorized, "invalid or expired reset token")
	}
	id, err := claims.UserID()
	if err != nil {
		return errcode.Newf(errcode.Unauthorized, "invalid or expired reset token")
	}
	hashed, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.ur.UpdatePassword(ctx, id, hashed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcode.Newf(errcode.NotFound, "user not found")
		}
		return err
	}
	return nil
}

func (s *service) Me(ctx context.Context, c model.Caller) (*model.User, error) {
	u, err := s.ur.ByID(ctx, c.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcode.Newf(errcode.NotFound, "user not found")
	}
	return u, err
}
