package echoServer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kitabu/app/echoServer/controller/admin"
	"kitabu/app/echoServer/controller/auth"
	"kitabu/app/echoServer/controller/book"
	"kitabu/app/echoServer/controller/cart"
	"kitabu/app/echoServer/controller/lending"
	"kitabu/app/echoServer/controller/order"
	"kitabu/app/echoServer/controller/payment"
	"kitabu/app/echoServer/controller/request"
	"kitabu/app/echoServer/controller/returns"
	"kitabu/model"
	requestsvc "kitabu/service/request"
	"kitabu/util/errcode"
	jwtutil "kitabu/util/jwt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const secret = "route-secret"

type requestStub struct {
	lastCaller model.Caller
	lastTo     model.RequestStatus
	err        error
}

func (s *requestStub) Create(ctx context.Context, c model.Caller, bookID int64, action model.RequestAction) (int64, error) {
	s.lastCaller = c
	return 3, s.err
}

func (s *requestStub) List(ctx context.Context, c model.Caller) ([]model.RequestRow, error) {
	s.lastCaller = c
	return []model.RequestRow{}, s.err
}

func (s *requestStub) Transition(ctx context.Context, c model.Caller, id int64, to model.RequestStatus) (*requestsvc.Result, error) {
	s.lastCaller, s.lastTo = c, to
	if s.err != nil {
		return nil, s.err
	}
	return &requestsvc.Result{ID: id, Status: to}, nil
}

func newServer(t *testing.T, reqs *requestStub) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.JSONSerializer = JSONSerializer{}
	v := validator.New()
	RegisterMiddlewares(e, nil, NewMetrics())
	Register(e, C{
		Auth:      &auth.Controller{V: v},
		Book:      &book.Controller{V: v},
		Cart:      &cart.Controller{V: v},
		Request:   &request.Controller{Svc: reqs, V: v},
		Order:     &order.Controller{V: v},
		Lending:   &lending.Controller{V: v},
		Payment:   &payment.Controller{V: v},
		Returns:   &returns.Controller{V: v},
		Admin:     &admin.Controller{V: v},
		JWTSecret: secret,
	})
	return e
}

func token(t *testing.T, id int64, role string) string {
	t.Helper()
	tok, err := jwtutil.Issue(secret, id, role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestUpdateStatus_PassesCallerAndNormalisedStatus(t *testing.T) {
	stub := &requestStub{}
	e := newServer(t, stub)

	rec := do(e, http.MethodPatch, "/v1/requests/5/status", token(t, 1, "admin"), `{"status":"approve"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, model.Caller{UserID: 1, Role: model.RoleAdmin}, stub.lastCaller)
	require.Equal(t, model.RequestApproved, stub.lastTo)
	require.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestUpdateStatus_Errors(t *testing.T) {
	stub := &requestStub{}
	e := newServer(t, stub)
	customer := token(t, 7, "customer")

	rec := do(e, http.MethodPatch, "/v1/requests/5/status", customer, `{"status":"teleported"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	stub.err = errcode.Newf(errcode.InvalidTransition, "cannot move borrow request from pending to borrowed")
	rec = do(e, http.MethodPatch, "/v1/requests/5/status", customer, `{"status":"borrowed"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "pending to borrowed")

	stub.err = errcode.New(errcode.Forbidden)
	rec = do(e, http.MethodPatch, "/v1/requests/5/status", customer, `{"status":"approved"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	stub.err = errcode.Newf(errcode.NotFound, "request not found")
	rec = do(e, http.MethodPatch, "/v1/requests/99/status", customer, `{"status":"approved"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPatch, "/v1/requests/abc/status", customer, `{"status":"approved"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth_RejectsMissingAndResetTokens(t *testing.T) {
	e := newServer(t, &requestStub{})

	rec := do(e, http.MethodGet, "/v1/requests", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	reset, err := jwtutil.IssueReset(secret, 7, time.Minute)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/v1/requests", "Bearer "+reset, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := jwtutil.Issue("someone-else", 7, "admin", time.Hour)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/v1/requests", "Bearer "+other, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/v1/requests", token(t, 7, "customer"), "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminGroup_RequiresAdmin(t *testing.T) {
	e := newServer(t, &requestStub{})

	rec := do(e, http.MethodGet, "/v1/admin/logs/actions", token(t, 7, "customer"), "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateRequest_Validation(t *testing.T) {
	stub := &requestStub{}
	e := newServer(t, stub)
	tok := token(t, 7, "customer")

	rec := do(e, http.MethodPost, "/v1/requests", tok, `{"book_id":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/requests", tok, `{"book_id":2,"action":"steal"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/requests", tok, `{"book_id":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"action":"borrow"`)
	require.Equal(t, int64(7), stub.lastCaller.UserID)
}

func TestMetricsEndpoint(t *testing.T) {
	e := echo.New()
	m := NewMetrics()
	e.Use(m.Middleware())
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	e.GET("/metrics", m.Handler())

	do(e, http.MethodGet, "/ping", "", "")
	rec := do(e, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `kitabu_api_http_requests_total{handler="/ping",method="GET",status="200"} 1`)
}
