package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kitabu/model"
	"kitabu/util/errcode"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type svcStub struct {
	token string
	err   error
}

func (s svcStub) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	return nil, "", nil
}
func (s svcStub) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	return nil, "", nil
}
func (s svcStub) CreateAccount(ctx context.Context, req model.CreateUserReq) (*model.User, error) {
	return nil, nil
}
func (s svcStub) RequestReset(ctx context.Context, email string) (string, error) {
	return s.token, s.err
}
func (s svcStub) ResetPassword(ctx context.Context, token, password string) error { return nil }
func (s svcStub) Me(ctx context.Context, c model.Caller) (*model.User, error)      { return nil, nil }

func forgot(t *testing.T, ct *Controller) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/users/password/forgot", strings.NewReader(`{"email":"admin@kitabu.io"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, ct.ForgotPassword(e.NewContext(req, rec)))
	return rec
}

func TestForgotPassword_ProductionHidesToken(t *testing.T) {
	ct := &Controller{Svc: svcStub{token: "secret-reset-token"}, V: validator.New()}
	rec := forgot(t, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret-reset-token")
	require.NotContains(t, rec.Body.String(), "reset_token")

	// unknown accounts get the same answer
	ct.Svc = svcStub{err: errcode.Newf(errcode.NotFound, "no account with that email")}
	unknown := forgot(t, ct)
	require.Equal(t, http.StatusOK, unknown.Code)
	require.Equal(t, rec.Body.String(), unknown.Body.String())
}

func TestForgotPassword_DevEchoesToken(t *testing.T) {
	ct := &Controller{Svc: svcStub{token: "dev-token"}, V: validator.New(), ExposeResetToken: true}
	rec := forgot(t, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"reset_token":"dev-token"`)

	ct.Svc = svcStub{err: errcode.Newf(errcode.NotFound, "no account with that email")}
	require.Equal(t, http.StatusNotFound, forgot(t, ct).Code)
}
