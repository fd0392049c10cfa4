package request

import (
	"log/slog"
	"net/http"

	"kitabu/app/echoServer/respond"
	"kitabu/model"
	requestsvc "kitabu/service/request"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc requestsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type CreateReq struct {
	BookID int64  `json:"book_id" validate:"required,gt=0"`
	Action string `json:"action" validate:"omitempty,oneof=purchase borrow"`
}

type StatusReq struct {
	Status string `json:"status" validate:"required"`
}

// POST /v1/requests
func (h *Controller) Create(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	var req CreateReq
	if err := respond.Bind(c, h.V, &req); err != nil {
		return err
	}
	action, err := model.ParseRequestAction(req.Action)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := h.Svc.Create(c.Request().Context(), caller, req.BookID, action)
	if err != nil {
		return respond.Error(c, h.Log, "request create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "status": model.RequestPending, "action": action})
}

// GET /v1/requests
func (h *Controller) List(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Svc.List(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "request list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PATCH /v1/requests/:id/status
func (h *Controller) UpdateStatus(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}
	var req StatusReq
	if err := respond.Bind(c, h.V, &req); err != nil {
		return err
	}
	to, err := model.ParseRequestStatus(req.Status)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	res, err := h.Svc.Transition(c.Request().Context(), caller, id, to)
	if err != nil {
		return respond.Error(c, h.Log, "request status", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "request " + string(res.Status), "request": res})
}
