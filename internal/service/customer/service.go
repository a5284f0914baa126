// Package customer resolves patrons at the kiosk, either by their 4-digit
// display number or by name.
package customer

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leih-lokal/kiosk-service/internal/errs"
	"github.com/leih-lokal/kiosk-service/internal/model"
	"github.com/leih-lokal/kiosk-service/internal/store"
	"github.com/leih-lokal/kiosk-service/pkg/format"
)

type Store interface {
	List(ctx context.Context, collection string, q store.Query, out any) error
	Create(ctx context.Context, collection string, fields, out any) error
}

type Service struct {
	log   *zap.Logger
	store Store
}

func NewService(st Store, log *zap.Logger) *Service {
	return &Service{
		log:   log.Named("customer"),
		store: st,
	}
}

var fourDigits = regexp.MustCompile(`^\d{4}$`)

// Resolve identifies a patron from free-form kiosk input. Exactly four
// decimal digits mean an exact display-number lookup; anything else is
// treated as "Firstname Lastname" text. A two-digit number like "42" is
// name input, not a display number.
func (s *Service) Resolve(ctx context.Context, input string) (model.Customer, error) {
	input = strings.TrimSpace(input)
	if fourDigits.MatchString(input) {
		return s.resolveByIID(ctx, input)
	}
	return s.resolveByName(ctx, input)
}

func (s *Service) resolveByIID(ctx context.Context, input string) (model.Customer, error) {
	iid, err := strconv.Atoi(input)
	if err != nil {
		return model.Customer{}, errs.ErrInvalidInput
	}
	var customers []model.Customer
	q := store.Query{Filter: store.Eq("iid", iid)}
	if err := s.store.List(ctx, store.CollectionCustomers, q, &customers); err != nil {
		return model.Customer{}, err
	}
	if len(customers) == 0 {
		return model.Customer{}, errs.ErrNotFound
	}
	// iid is unique; more than one row is a data anomaly and the first wins
	return customers[0], nil
}

// resolveByName scans every possible first/last boundary of the entered
// words. "Ruby Morgan Voigt" is tried as ("Ruby", "Morgan Voigt") and then
// ("Ruby Morgan", "Voigt"); the first split with a match wins. The store
// filter language is case-sensitive, so the full customer list is fetched
// and compared case-insensitively here.
func (s *Service) resolveByName(ctx context.Context, input string) (model.Customer, error) {
	parts := strings.Fields(input)
	if len(parts) < 2 {
		return model.Customer{}, errs.ErrInvalidInput
	}
	for i := 1; i < len(parts); i++ {
		first := strings.Join(parts[:i], " ")
		last := strings.Join(parts[i:], " ")

		var all []model.Customer
		if err := s.store.List(ctx, store.CollectionCustomers, store.Query{}, &all); err != nil {
			return model.Customer{}, err
		}
		for _, c := range all {
			if strings.EqualFold(c.FirstName, first) && strings.EqualFold(c.LastName, last) {
				return c, nil
			}
		}
	}
	return model.Customer{}, errs.ErrNotFound
}

// Search is the staff-facing fuzzy lookup over display number, name and
// phone, newest customers first.
func (s *Service) Search(ctx context.Context, query string) ([]model.Customer, error) {
	filter := store.Or(
		store.Like("iid", query),
		store.Like("firstname", query),
		store.Like("lastname", query),
		store.Like("phone", query),
	)
	customers := make([]model.Customer, 0)
	q := store.Query{Filter: filter, Sort: "-iid"}
	if err := s.store.List(ctx, store.CollectionCustomers, q, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

type RegisterRequest struct {
	FirstName  string `json:"firstname" validate:"required"`
	LastName   string `json:"lastname" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Newsletter bool   `json:"newsletter"`
}

// Register creates a customer record with the next sequential display
// number and today's registration date.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (model.Customer, error) {
	var latest []model.Customer
	q := store.Query{Sort: "-iid"}
	if err := s.store.List(ctx, store.CollectionCustomers, q, &latest); err != nil {
		return model.Customer{}, err
	}
	nextIID := 1
	if len(latest) > 0 {
		nextIID = latest[0].IID + 1
	}

	fields := map[string]any{
		"iid":           nextIID,
		"firstname":     req.FirstName,
		"lastname":      req.LastName,
		"email":         req.Email,
		"phone":         req.Phone,
		"street":        req.Street,
		"postal_code":   req.PostalCode,
		"city":          req.City,
		"newsletter":    req.Newsletter,
		"registered_on": format.DateToLocalString(time.Now()),
	}
	var created model.Customer
	if err := s.store.Create(ctx, store.CollectionCustomers, fields, &created); err != nil {
		return model.Customer{}, err
	}
	s.log.Info("customer registered", zap.Int("iid", created.IID))
	return created, nil
}
