package returns

import (
	"log/slog"
	"net/http"

	"kitabu/app/echoServer/respond"
	returnsvc "kitabu/service/returns"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc returnsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type RequestReq struct {
	LendingID int64 `json:"lending_id" validate:"required,gt=0"`
}

type ProcessReq struct {
	Status string `json:"status" validate:"required"`
}

// POST /v1/returns
func (h *Controller) Request(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	var req RequestReq
	if err := respond.Bind(c, h.V, &req); err != nil {
		return err
	}
	id, err := h.Svc.Request(c.Request().Context(), caller, req.LendingID)
	if err != nil {
		return respond.Error(c, h.Log, "return request", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "status": "pending"})
}

// GET /v1/returns/my
func (h *Controller) My(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Svc.My(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "my returns", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/admin/returns/pending
func (h *Controller) Pending(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Svc.Pending(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "pending returns", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PATCH /v1/admin/returns/:id/status
func (h *Controller) Process(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}
	var req ProcessReq
	if err := respond.Bind(c, h.V, &req); err != nil {
		return err
	}
	st, err := h.Svc.Process(c.Request().Context(), caller, id, req.Status)
	if err != nil {
		return respond.Error(c, h.Log, "return process", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": st})
}
