// Package reservation covers the two kiosk flows that touch the
// reservation collection: submitting a new reservation and confirming a
// pickup by one-time code.
package reservation

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leih-lokal/kiosk-service/config"
	"github.com/leih-lokal/kiosk-service/internal/errs"
	"github.com/leih-lokal/kiosk-service/internal/model"
	"github.com/leih-lokal/kiosk-service/internal/service/catalog"
	"github.com/leih-lokal/kiosk-service/internal/store"
	"github.com/leih-lokal/kiosk-service/pkg/format"
)

type Store interface {
	List(ctx context.Context, collection string, q store.Query, out any) error
	Create(ctx context.Context, collection string, fields, out any) error
	Update(ctx context.Context, collection, id string, fields, out any) error
}

type Catalog interface {
	GetAvailability(ctx context.Context, itemID string) (model.Item, catalog.Availability, error)
}

type Service struct {
	log     *zap.Logger
	store   Store
	catalog Catalog
	cfg     config.Kiosk
	now     func() time.Time
}

func NewService(st Store, cat Catalog, cfg config.Kiosk, log *zap.Logger) *Service {
	return &Service{
		log:     log.Named("reservation"),
		store:   st,
		catalog: cat,
		cfg:     cfg,
		now:     time.Now,
	}
}

type SubmitRequest struct {
	// Customer is set when resolution succeeded; FreeTextName carries the
	// raw entered name for the new-patron path.
	Customer      *model.Customer
	FreeTextName  string
	IsNewCustomer bool
	ItemIDs       []string
	CopyCounts    map[string]int
}

// Submit persists a reservation for the patron's selection. This is a
// single-shot create: on failure nothing is persisted and the patron
// retries from scratch. Availability of every item is re-checked first so
// an over-committed selection fails here instead of at the staff desk; the
// check and the create are still separate store calls, so two terminals
// racing can over-commit - the store offers no conditional write to close
// that window.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (model.Reservation, error) {
	if len(req.ItemIDs) == 0 {
		return model.Reservation{}, errs.ErrNoItemsSelected
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, itemID := range req.ItemIDs {
		itemID := itemID
		g.Go(func() error {
			item, av, err := s.catalog.GetAvailability(gctx, itemID)
			if err != nil {
				return err
			}
			want := req.CopyCounts[itemID]
			if want == 0 {
				want = 1
			}
			if av.Available < want {
				return errors.Wrap(errs.ErrItemUnavailable, item.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Reservation{}, err
	}

	var customerIID *string
	customerName := req.FreeTextName
	if req.Customer != nil {
		iid := strconv.Itoa(req.Customer.IID)
		customerIID = &iid
		customerName = req.Customer.FirstName + " " + req.Customer.LastName
	}

	fields := map[string]any{
		"customer_iid":    customerIID,
		"customer_name":   customerName,
		"customer_phone":  nil,
		"customer_email":  nil,
		"is_new_customer": req.IsNewCustomer,
		"items":           req.ItemIDs,
		"pickup":          s.nextPickupSlot().Format(time.RFC3339),
		"on_premises":     true,
		"done":            false,
		"comments":        nil,
	}
	var created model.Reservation
	if err := s.store.Create(ctx, store.CollectionReservations, fields, &created); err != nil {
		return model.Reservation{}, err
	}
	s.log.Info("reservation created",
		zap.String("id", created.ID),
		zap.Int("items", len(created.Items)))
	return created, nil
}

// nextPickupSlot returns the next occurrence of the configured weekday and
// hour after now. With the defaults that is next Monday 16:00 local time, a
// placeholder until real slot scheduling exists.
func (s *Service) nextPickupSlot() time.Time {
	return NextPickupSlot(s.now(), s.cfg.PickupWeekday, s.cfg.PickupHour)
}

func NextPickupSlot(now time.Time, weekday time.Weekday, hour int) time.Time {
	days := int((weekday - now.Weekday() + 7) % 7)
	if days == 0 {
		days = 7
	}
	d := now.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, now.Location())
}

// Verified is the pickup flow's resolved view: the reservation, its item
// records and the recomputed deposit.
type Verified struct {
	Reservation model.ReservationExpanded `json:"reservation"`
	Deposit     float64                   `json:"deposit"`
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// VerifyCode looks up an unfulfilled reservation by one-time code. Copy
// counts default to one per item when summing the deposit because
// reservations carry no per-item breakdown. Date scoping is off unless
// configured: the shipped kiosk matches on code and done=false alone.
func (s *Service) VerifyCode(ctx context.Context, code string) (Verified, error) {
	if len(code) != s.cfg.OTPLength || !digitsOnly.MatchString(code) {
		return Verified{}, errs.ErrInvalidCode
	}

	filter := store.And(
		store.Eq("otp", code),
		store.Eq("done", false),
	)
	if s.cfg.ScopePickupByDate {
		filter = store.And(filter, store.Gte("pickup", format.DateToLocalString(s.now())))
	}

	var found []model.ReservationExpanded
	q := store.Query{Filter: filter, Expand: "items"}
	if err := s.store.List(ctx, store.CollectionReservations, q, &found); err != nil {
		return Verified{}, err
	}
	if len(found) == 0 {
		return Verified{}, errs.ErrInvalidCode
	}

	rsv := found[0]
	return Verified{
		Reservation: rsv,
		Deposit:     catalog.TotalDeposit(rsv.Expand.Items, nil),
	}, nil
}

// Confirm marks the patron as on premises. The update is best-effort: if
// the store rejects it the pickup still advances, the physical handover
// does not depend on this flag.
func (s *Service) Confirm(ctx context.Context, reservationID string) error {
	fields := map[string]any{"on_premises": true}
	if err := s.store.Update(ctx, store.CollectionReservations, reservationID, fields, nil); err != nil {
		s.log.Warn("on_premises update failed, advancing anyway",
			zap.String("id", reservationID), zap.Error(err))
	}
	return nil
}
