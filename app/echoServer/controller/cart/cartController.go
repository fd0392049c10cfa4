package cart

import (
	"log/slog"
	"net/http"

	"kitabu/app/echoServer/respond"
	"kitabu/model"
	cartsvc "kitabu/service/cart"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc cartsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type AddItemReq struct {
	BookID   int64 `json:"book_id" validate:"required,gt=0"`
	Quantity int64 `json:"quantity" validate:"omitempty,gte=1"`
}

func cartType(c echo.Context) (model.CartType, error) {
	t, err := model.ParseCartType(c.Param("type"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusNotFound, "unknown cart")
	}
	return t, nil
}

// POST /v1/carts/:type/items
func (h *Controller) Add(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	t, err := cartType(c)
	if err != nil {
		return err
	}
	var req AddItemReq
	if err := respond.Bind(c, h.V, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	line, err := h.Svc.Add(c.Request().Context(), caller, req.BookID, t, req.Quantity)
	if err != nil {
		return respond.Error(c, h.Log, "cart add", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "added to " + string(t) + " cart", "item": line})
}

// GET /v1/carts/:type
func (h *Controller) View(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	t, err := cartType(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.View(c.Request().Context(), caller, t)
	if err != nil {
		return respond.Error(c, h.Log, "cart view", err)
	}
	return c.JSON(http.StatusOK, cart)
}
