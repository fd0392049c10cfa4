package lending

import (
	"log/slog"
	"net/http"

	"kitabu/app/echoServer/respond"
	lendingsvc "kitabu/service/lending"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc lendingsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/lendings/checkout
func (h *Controller) Checkout(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	ids, err := h.Svc.Checkout(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "lending checkout", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "lending requested", "ids": ids})
}

// GET /v1/lendings/my
func (h *Controller) My(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Svc.My(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "my lendings", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/admin/lendings
func (h *Controller) All(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Svc.All(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "all lendings", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PATCH /v1/admin/lendings/:id/status
func (h *Controller) Decide(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}
	var req DecisionReq
	if err := respond.Bind(c, h.V, &req); err != nil {
		return err
	}
	d, err := h.Svc.Decide(c.Request().Context(), caller, id, req.Status)
	if err != nil {
		return respond.Error(c, h.Log, "lending decision", err)
	}
	return c.JSON(http.StatusOK, d)
}
