package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leih-lokal/kiosk-service/internal/model"
	"github.com/leih-lokal/kiosk-service/internal/service/customer"
	"github.com/leih-lokal/kiosk-service/pkg/format"
)

type resolveCustomerRequest struct {
	Input string `json:"input" validate:"required"`
}

type resolvedCustomerResponse struct {
	Customer   model.Customer `json:"customer"`
	DisplayIID string         `json:"display_iid"`
}

// ResolveCustomer identifies a patron from kiosk input: a 4-digit display
// number or a full name.
func (h *Handler) ResolveCustomer(c echo.Context) error {
	var req resolveCustomerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	var cust model.Customer
	if err := h.storeCB.Call(func() error {
		var err error
		cust, err = h.customerSvc.Resolve(ctx, req.Input)
		return err
	}); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resolvedCustomerResponse{
		Customer:   cust,
		DisplayIID: format.FormatIID(cust.IID),
	})
}

func (h *Handler) SearchCustomers(c echo.Context) error {
	query := c.QueryParam("query")
	if len(query) < 2 {
		return c.JSON(http.StatusOK, []model.Customer{})
	}
	ctx := c.Request().Context()

	var customers []model.Customer
	if err := h.storeCB.Call(func() error {
		var err error
		customers, err = h.customerSvc.Search(ctx, query)
		return err
	}); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, customers)
}

func (h *Handler) RegisterCustomer(c echo.Context) error {
	var req customer.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	var cust model.Customer
	if err := h.storeCB.Call(func() error {
		var err error
		cust, err = h.customerSvc.Register(ctx, req)
		return err
	}); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, resolvedCustomerResponse{
		Customer:   cust,
		DisplayIID: format.FormatIID(cust.IID),
	})
}
