package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leih-lokal/kiosk-service/internal/model"
	"github.com/leih-lokal/kiosk-service/internal/service/catalog"
)

func (h *Handler) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()
	var items []model.Item
	if err := h.storeCB.Call(func() error {
		var err error
		items, err = h.catalogSvc.SearchItems(ctx,
			c.QueryParam("query"),
			c.QueryParam("category"),
			c.QueryParam("sort"))
		return err
	}); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

type availabilityResponse struct {
	Item         model.Item           `json:"item"`
	Availability catalog.Availability `json:"availability"`
}

func (h *Handler) GetAvailability(c echo.Context) error {
	ctx := c.Request().Context()
	itemID := c.Param("itemId")

	var resp availabilityResponse
	if err := h.storeCB.Call(func() error {
		var err error
		resp.Item, resp.Availability, err = h.catalogSvc.GetAvailability(ctx, itemID)
		return err
	}); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}
