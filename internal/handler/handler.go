package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	cb "github.com/leih-lokal/kiosk-service/pkg/circuit_breaker"
	md "github.com/leih-lokal/kiosk-service/pkg/middleware"
	"github.com/leih-lokal/kiosk-service/pkg/validate"

	"github.com/leih-lokal/kiosk-service/internal/errs"
)

type Handler struct {
	catalogSvc     CatalogService
	customerSvc    CustomerService
	reservationSvc ReservationService
	sessions       SessionStore
	storeCB        cb.CircuitBreaker
	log            *zap.Logger
}

func New(catalogSvc CatalogService, customerSvc CustomerService, reservationSvc ReservationService, sessions SessionStore, log *zap.Logger) *Handler {
	return &Handler{
		catalogSvc:     catalogSvc,
		customerSvc:    customerSvc,
		reservationSvc: reservationSvc,
		sessions:       sessions,
		storeCB:        cb.New(20, 10*time.Second, 0.5, 3),
		log:            log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/items", h.SearchItems)
	api.GET("/items/:itemId/availability", h.GetAvailability)

	api.POST("/customers/resolve", h.ResolveCustomer)
	api.GET("/customers", h.SearchCustomers)
	api.POST("/customers", h.RegisterCustomer)

	api.POST("/sessions", h.StartSession)
	api.GET("/sessions/:sessionId", h.GetSession)
	api.POST("/sessions/:sessionId/items", h.AddSessionItem)
	api.PUT("/sessions/:sessionId/items/:itemId", h.SetSessionCopies)
	api.DELETE("/sessions/:sessionId/items/:itemId", h.RemoveSessionItem)
	api.DELETE("/sessions/:sessionId", h.ClearSession)

	api.POST("/reservations", h.SubmitReservation)
	api.POST("/pickup/verify", h.VerifyPickupCode)
	api.POST("/pickup/:reservationId/confirm", h.ConfirmPickup)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the service error taxonomy onto transport codes. Every
// flow error is recoverable at the terminal: the frontend surfaces a
// dismissable notice and returns to the previous step.
func httpError(err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrSessionNotFound),
		errors.Is(err, errs.ErrInvalidCode):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrNoItemsSelected):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrCapacityExceeded),
		errors.Is(err, errs.ErrItemUnavailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrStoreUnavailable),
		errors.Is(err, cb.ErrOpenCB):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
