package admin

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kitabu/app/echoServer/respond"
	"kitabu/model"
	activitysvc "kitabu/service/activity"
	reportsvc "kitabu/service/report"
	usersvc "kitabu/service/user"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Reports  reportsvc.Service
	Activity activitysvc.Service
	Users    usersvc.Service
	V        *validator.Validate
	Log      *slog.Logger
}

// GET /v1/admin/dashboard
func (h *Controller) Dashboard(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	d, err := h.Reports.Dashboard(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, h.Log, "dashboard", err)
	}
	return c.JSON(http.StatusOK, d)
}

// GET /v1/admin/reports/sales?month=Jan
func (h *Controller) Sales(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Reports.Sales(c.Request().Context(), caller, c.QueryParam("month"))
	if err != nil {
		return respond.Error(c, h.Log, "sales report", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/admin/reports/borrowing?month=Jan
func (h *Controller) Borrowing(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	rows, err := h.Reports.Borrowing(c.Request().Context(), caller, c.QueryParam("month"))
	if err != nil {
		return respond.Error(c, h.Log, "borrowing report", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/admin/logs?action=Approved&date=2025-01-31
func (h *Controller) Logs(c echo.Context) error {
	f := model.ActivityFilter{Action: strings.TrimSpace(c.QueryParam("action"))}
	if strings.EqualFold(f.Action, "all") {
		f.Action = ""
	}
	if d := strings.TrimSpace(c.QueryParam("date")); d != "" {
		day, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "date must be YYYY-MM-DD"})
		}
		f.Date = &day
	}
	rows, err := h.Activity.List(c.Request().Context(), f)
	if err != nil {
		return respond.Error(c, h.Log, "activity logs", err)
	}
	if rows == nil {
		rows = []model.ActivityLog{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/admin/logs/actions
func (h *Controller) LogActions(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": h.Activity.Actions()})
}

// GET /v1/admin/users?search=&page=&per_page=
func (h *Controller) ListUsers(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	p, err := h.Users.List(c.Request().Context(), caller, c.QueryParam("search"), page, perPage)
	if err != nil {
		return respond.Error(c, h.Log, "user list", err)
	}
	return c.JSON(http.StatusOK, p)
}

// POST /v1/admin/users
func (h *Controller) CreateUser(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	var req model.CreateUserReq
	if err := respond.Bind(c, h.V, &req); err != nil {
		return err
	}
	u, err := h.Users.Create(c.Request().Context(), caller, req)
	if err != nil {
		return respond.Error(c, h.Log, "user create", err)
	}
	return c.JSON(http.StatusCreated, u)
}

// DELETE /v1/admin/users/:id
func (h *Controller) DeleteUser(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Users.Delete(c.Request().Context(), caller, id); err != nil {
		return respond.Error(c, h.Log, "user delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}
