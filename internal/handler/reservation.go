package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/leih-lokal/kiosk-service/internal/errs"
	"github.com/leih-lokal/kiosk-service/internal/model"
	"github.com/leih-lokal/kiosk-service/internal/service/reservation"
)

type submitReservationRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	// CustomerInput is the text entered at the identification step: a
	// 4-digit display number or a name. For new patrons it is kept as the
	// reservation's free-text name.
	CustomerInput string `json:"customer_input" validate:"required"`
	IsNewCustomer bool   `json:"is_new_customer"`
}

type submitReservationResponse struct {
	Reservation model.Reservation `json:"reservation"`
}

// SubmitReservation turns the session's selection into a persisted
// reservation and clears the session. Creation is single-shot: on failure
// nothing is persisted and the patron retries.
func (h *Handler) SubmitReservation(c echo.Context) error {
	var req submitReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	sel, err := h.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return httpError(err)
	}

	submit := reservation.SubmitRequest{
		FreeTextName:  req.CustomerInput,
		IsNewCustomer: req.IsNewCustomer,
		ItemIDs:       sel.ItemIDs,
		CopyCounts:    sel.CopyCounts,
	}
	if !req.IsNewCustomer {
		var cust model.Customer
		if err := h.storeCB.Call(func() error {
			var err error
			cust, err = h.customerSvc.Resolve(ctx, req.CustomerInput)
			return err
		}); err != nil {
			return httpError(err)
		}
		submit.Customer = &cust
	}

	var created model.Reservation
	if err := h.storeCB.Call(func() error {
		var err error
		created, err = h.reservationSvc.Submit(ctx, submit)
		return err
	}); err != nil {
		return httpError(err)
	}

	// the selection's job is done; an expired-but-uncleared session would
	// only confuse the next patron
	if err := h.sessions.Clear(ctx, req.SessionID); err != nil {
		h.log.Warn("session clear after submit", zap.String("session", req.SessionID), zap.Error(err))
	}

	return c.JSON(http.StatusCreated, submitReservationResponse{Reservation: created})
}

type verifyPickupRequest struct {
	Code string `json:"code" validate:"required"`
}

// VerifyPickupCode is the AwaitingCode step of the pickup flow. An unknown
// code keeps the terminal on code entry; a match returns the resolved
// reservation with its recomputed deposit.
func (h *Handler) VerifyPickupCode(c echo.Context) error {
	var req verifyPickupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	var verified reservation.Verified
	if err := h.storeCB.Call(func() error {
		var err error
		verified, err = h.reservationSvc.VerifyCode(ctx, req.Code)
		return err
	}); err != nil {
		if errors.Is(err, errs.ErrInvalidCode) {
			return echo.NewHTTPError(http.StatusNotFound, "no open reservation for this code")
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, verified)
}

// ConfirmPickup moves a verified pickup to its terminal state. The flow
// always reaches Confirmed: the underlying flag update is best-effort.
func (h *Handler) ConfirmPickup(c echo.Context) error {
	if err := h.reservationSvc.Confirm(c.Request().Context(), c.Param("reservationId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}
