package auth

import (
	"log/slog"
	"net/http"

	"kitabu/app/echoServer/respond"
	"kitabu/model"
	authsvc "kitabu/service/auth"
	"kitabu/util/errcode"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
	// ExposeResetToken echoes reset tokens in the response. Off in production.
	ExposeResetToken bool
}

// Register a new user
// @Summary      Register user
// @Description  Register a new customer account; email is unique case-insensitively
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email already taken"
// @Failure      500  {object}  map[string]any "internal server error"
// @Router       /v1/users/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := respond.Bind(c, ct.V, &req); err != nil {
		return err
	}

	u, token, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return respond.Error(c, ct.Log, "register", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered",
		"user":    u,
		"token":   token,
	})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns a JWT carrying sub and role
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /v1/users/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := respond.Bind(c, ct.V, &req); err != nil {
		return err
	}

	u, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		return respond.Error(c, ct.Log, "login", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "login success",
		"token":   token,
		"user":    u,
	})
}

type forgotReq struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /v1/users/password/forgot
func (ct *Controller) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := respond.Bind(c, ct.V, &req); err != nil {
		return err
	}
	token, err := ct.Svc.RequestReset(c.Request().Context(), req.Email)
	if !ct.ExposeResetToken {
		// same answer whether or not the account exists
		if err != nil && errcode.Of(err) != errcode.NotFound {
			return respond.Error(c, ct.Log, "password reset request", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "if the account exists, a reset link has been sent"})
	}
	if err != nil {
		return respond.Error(c, ct.Log, "password reset request", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reset token issued", "reset_token": token})
}

type resetReq struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// POST /v1/users/password/reset
func (ct *Controller) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := respond.Bind(c, ct.V, &req); err != nil {
		return err
	}
	if err := ct.Svc.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return respond.Error(c, ct.Log, "password reset", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// GET /v1/users/me
func (ct *Controller) Me(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	u, err := ct.Svc.Me(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, ct.Log, "me", err)
	}
	return c.JSON(http.StatusOK, u)
}
