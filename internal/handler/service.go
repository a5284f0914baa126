package handler

import (
	"context"

	"github.com/leih-lokal/kiosk-service/internal/model"
	"github.com/leih-lokal/kiosk-service/internal/service/catalog"
	"github.com/leih-lokal/kiosk-service/internal/service/customer"
	"github.com/leih-lokal/kiosk-service/internal/service/reservation"
	"github.com/leih-lokal/kiosk-service/internal/session"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var (
	_ CatalogService     = (*catalog.Service)(nil)
	_ CustomerService    = (*customer.Service)(nil)
	_ ReservationService = (*reservation.Service)(nil)
	_ SessionStore       = (*session.Store)(nil)
)

type CatalogService interface {
	SearchItems(ctx context.Context, query, category, sortBy string) ([]model.Item, error)
	GetAvailability(ctx context.Context, itemID string) (model.Item, catalog.Availability, error)
	GetItems(ctx context.Context, itemIDs []string) ([]model.Item, error)
}

type CustomerService interface {
	Resolve(ctx context.Context, input string) (model.Customer, error)
	Search(ctx context.Context, query string) ([]model.Customer, error)
	Register(ctx context.Context, req customer.RegisterRequest) (model.Customer, error)
}

type ReservationService interface {
	Submit(ctx context.Context, req reservation.SubmitRequest) (model.Reservation, error)
	VerifyCode(ctx context.Context, code string) (reservation.Verified, error)
	Confirm(ctx context.Context, reservationID string) error
}

type SessionStore interface {
	Start(ctx context.Context) (session.Selection, error)
	Get(ctx context.Context, id string) (session.Selection, error)
	AddItem(ctx context.Context, id, itemID string) (session.Selection, error)
	RemoveItem(ctx context.Context, id, itemID string) (session.Selection, error)
	SetCopies(ctx context.Context, id, itemID string, n int) (session.Selection, error)
	Clear(ctx context.Context, id string) error
}
