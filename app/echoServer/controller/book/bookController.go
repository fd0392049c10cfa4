package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"kitabu/app/echoServer/respond"
	"kitabu/model"
	booksvc "kitabu/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func boolParam(c echo.Context, name string) *bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	if err != nil {
		return nil
	}
	return &v
}

// GET /v1/books?search=&genre=&for_sale=&for_lending=&page=&per_page=
func (h *Controller) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	p, err := h.Svc.List(c.Request().Context(), model.BookFilter{
		Search:     c.QueryParam("search"),
		Genre:      c.QueryParam("genre"),
		ForSale:    boolParam(c, "for_sale"),
		ForLending: boolParam(c, "for_lending"),
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		return respond.Error(c, h.Log, "book list", err)
	}
	return c.JSON(http.StatusOK, p)
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return respond.Error(c, h.Log, "book detail", err)
	}
	return c.JSON(http.StatusOK, b)
}

// POST /v1/admin/books
func (h *Controller) Create(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	var req CreateBookReq
	if err := respond.Bind(c, h.V, &req); err != nil {
		return err
	}
	b := &model.Book{
		Title:                 req.Title,
		Author:                req.Author,
		Genre:                 req.Genre,
		Description:           req.Description,
		Price:                 req.Price,
		IsAvailableForSale:    req.IsAvailableForSale == nil || *req.IsAvailableForSale,
		IsAvailableForLending: req.IsAvailableForLending == nil || *req.IsAvailableForLending,
		CopiesAvailable:       req.CopiesAvailable,
	}
	id, err := h.Svc.Create(c.Request().Context(), caller, b)
	if err != nil {
		return respond.Error(c, h.Log, "book create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// PATCH /v1/admin/books/:id
func (h *Controller) Update(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateBookReq
	if err := respond.Bind(c, h.V, &req); err != nil {
		return err
	}
	patch := model.BookPatch{
		Title:                 req.Title,
		Author:                req.Author,
		Genre:                 req.Genre,
		Description:           req.Description,
		Price:                 req.Price,
		IsAvailableForSale:    req.IsAvailableForSale,
		IsAvailableForLending: req.IsAvailableForLending,
		CopiesAvailable:       req.CopiesAvailable,
	}
	if err := h.Svc.Update(c.Request().Context(), caller, id, patch); err != nil {
		return respond.Error(c, h.Log, "book update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// DELETE /v1/admin/books/:id
func (h *Controller) Delete(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), caller, id); err != nil {
		return respond.Error(c, h.Log, "book delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /v1/admin/books/:id/copies
func (h *Controller) AdjustCopies(c echo.Context) error {
	caller, err := respond.Caller(c)
	if err != nil {
		return err
	}
	id, err := respond.ID(c, "id")
	if err != nil {
		return err
	}
	var req AdjustCopiesReq
	if err := respond.Bind(c, h.V, &req); err != nil {
		return err
	}
	b, err := h.Svc.AdjustCopies(c.Request().Context(), caller, id, req.Delta)
	if err != nil {
		return respond.Error(c, h.Log, "adjust copies", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": b.ID, "copies_available": b.CopiesAvailable})
}
