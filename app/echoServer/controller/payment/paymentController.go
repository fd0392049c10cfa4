package payment

import (
	"log/slog"
	"net/http"

	"kitabu/app/echoServer/respond"
	paymentsvc "kitabu/service/payment"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type Controller struct {
	Svc paymentsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type PayReq struct {
	OrderID int64           `json:"order_id" validate:"required,gt=0"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
}

// POST /v1/payments
func (h *Controller) Pay(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	var req PayReq
	if err := respond.Bind(c, h.V, &req); err != nil {
		return err
	}
	p, err := h.Svc.Pay(c.Request().Context(), caller, req.OrderID, req.Amount, req.Method)
	if err != nil {
		return respond.Error(c, h.Log, "payment", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "payment recorded", "payment": p})
}

// GET /v1/payments/my
func (h *Controller) My(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Svc.My(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "my payments", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/admin/payments
func (h *Controller) All(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Svc.All(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "all payments", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
