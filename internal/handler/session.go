package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leih-lokal/kiosk-service/internal/model"
	"github.com/leih-lokal/kiosk-service/internal/service/catalog"
	"github.com/leih-lokal/kiosk-service/internal/session"
)

type selectionResponse struct {
	Selection    session.Selection `json:"selection"`
	Items        []model.Item      `json:"items"`
	TotalDeposit float64           `json:"total_deposit"`
}

func (h *Handler) StartSession(c echo.Context) error {
	sel, err := h.sessions.Start(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, sel)
}

// GetSession returns the selection together with its item records and the
// running deposit total shown on the selection bar.
func (h *Handler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	sel, err := h.sessions.Get(ctx, c.Param("sessionId"))
	if err != nil {
		return httpError(err)
	}
	return h.selectionJSON(c, sel, http.StatusOK)
}

type addItemRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

func (h *Handler) AddSessionItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	sel, err := h.sessions.AddItem(c.Request().Context(), c.Param("sessionId"), req.ItemID)
	if err != nil {
		return httpError(err)
	}
	return h.selectionJSON(c, sel, http.StatusOK)
}

type setCopiesRequest struct {
	Copies int `json:"copies" validate:"required,min=1"`
}

func (h *Handler) SetSessionCopies(c echo.Context) error {
	var req setCopiesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	sel, err := h.sessions.SetCopies(c.Request().Context(), c.Param("sessionId"), c.Param("itemId"), req.Copies)
	if err != nil {
		return httpError(err)
	}
	return h.selectionJSON(c, sel, http.StatusOK)
}

func (h *Handler) RemoveSessionItem(c echo.Context) error {
	sel, err := h.sessions.RemoveItem(c.Request().Context(), c.Param("sessionId"), c.Param("itemId"))
	if err != nil {
		return httpError(err)
	}
	return h.selectionJSON(c, sel, http.StatusOK)
}

func (h *Handler) ClearSession(c echo.Context) error {
	if err := h.sessions.Clear(c.Request().Context(), c.Param("sessionId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) selectionJSON(c echo.Context, sel session.Selection, code int) error {
	ctx := c.Request().Context()
	items := make([]model.Item, 0, len(sel.ItemIDs))
	if len(sel.ItemIDs) > 0 {
		if err := h.storeCB.Call(func() error {
			var err error
			items, err = h.catalogSvc.GetItems(ctx, sel.ItemIDs)
			return err
		}); err != nil {
			return httpError(err)
		}
	}
	return c.JSON(code, selectionResponse{
		Selection:    sel,
		Items:        items,
		TotalDeposit: catalog.TotalDeposit(items, sel.CopyCounts),
	})
}
