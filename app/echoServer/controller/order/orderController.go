package order

import (
	"log/slog"
	"net/http"

	"kitabu/app/echoServer/respond"
	ordersvc "kitabu/service/order"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ordersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type DecisionReq struct {
	Status string `json:"status" validate:"required"`
}

// POST /v1/orders/checkout
func (h *Controller) Checkout(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	o, err := h.Svc.Checkout(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "checkout", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "order placed", "order": o})
}

// GET /v1/orders/my
func (h *Controller) My(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Svc.My(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "my orders", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/admin/orders
func (h *Controller) All(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Svc.All(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "all orders", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PATCH /v1/admin/orders/:id/status
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
	st, err := h.Svc.Decide(c.Request().Context(), caller, id, req.Status)
	if err != nil {
		return respond.Error(c, h.Log, "order decision", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": st})
}
