// Package catalog answers what the kiosk may offer: item search, per-item
// copy availability and deposit totals for a selection.
package catalog

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leih-lokal/kiosk-service/internal/model"
	"github.com/leih-lokal/kiosk-service/internal/store"
)

type Store interface {
	Get(ctx context.Context, collection, id string, out any) error
	List(ctx context.Context, collection string, q store.Query, out any) error
}

type Service struct {
	log   *zap.Logger
	store Store
}

func NewService(st Store, log *zap.Logger) *Service {
	return &Service{
		log:   log.Named("catalog"),
		store: st,
	}
}

type Availability struct {
	Total     int `json:"total"`
	Rented    int `json:"rented"`
	Available int `json:"available"`
}

// ComputeAvailability counts how many copies of item are free given the
// rentals currently out. Only rentals that reference the item and have not
// been returned count; a rental without an explicit copy count holds one
// copy. Available never goes negative even when the store over-committed.
func ComputeAvailability(item model.Item, rentals []model.Rental) Availability {
	total := item.Copies
	if total < 1 {
		total = 1
	}
	rented := 0
	for _, r := range rentals {
		if !r.Active() || !references(r, item.ID) {
			continue
		}
		copies := r.RequestedCopies[item.ID]
		if copies == 0 {
			copies = 1
		}
		rented += copies
	}
	available := total - rented
	if available < 0 {
		available = 0
	}
	return Availability{Total: total, Rented: rented, Available: available}
}

// GetAvailability fetches the item and its active rentals fresh from the
// store on every call. Rentals at other terminals can change between
// invocations, so the result must not be cached.
func (s *Service) GetAvailability(ctx context.Context, itemID string) (model.Item, Availability, error) {
	var item model.Item
	if err := s.store.Get(ctx, store.CollectionItems, itemID, &item); err != nil {
		return model.Item{}, Availability{}, err
	}
	var rentals []model.Rental
	q := store.Query{
		Filter: store.And(
			store.Like("items", itemID),
			store.Eq("returned_on", ""),
		),
	}
	if err := s.store.List(ctx, store.CollectionRentals, q, &rentals); err != nil {
		return model.Item{}, Availability{}, err
	}
	return item, ComputeAvailability(item, rentals), nil
}

// TotalDeposit sums deposit times requested copy count over a selection.
// Items absent from copyCounts count once. An empty selection costs zero.
func TotalDeposit(items []model.Item, copyCounts map[string]int) float64 {
	var total float64
	for _, item := range items {
		copies := copyCounts[item.ID]
		if copies == 0 {
			copies = 1
		}
		total += item.Deposit * float64(copies)
	}
	return total
}

// SearchItems lists in-stock items, optionally narrowed by a name/synonym
// substring and a category. sortBy "deposit" orders by deposit descending,
// anything else by name.
func (s *Service) SearchItems(ctx context.Context, query, category, sortBy string) ([]model.Item, error) {
	filter := store.Eq("status", string(model.StatusInStock))
	if query != "" {
		filter = store.And(filter, store.Or(
			store.Like("name", query),
			store.Like("synonyms", query),
		))
	}
	if category != "" && category != "all" {
		filter = store.And(filter, store.Like("category", category))
	}
	sort := "name"
	if sortBy == "deposit" {
		sort = "-deposit"
	}
	items := make([]model.Item, 0)
	if err := s.store.List(ctx, store.CollectionItems, store.Query{Filter: filter, Sort: sort}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItems resolves item records for a selection, in the given order.
func (s *Service) GetItems(ctx context.Context, itemIDs []string) ([]model.Item, error) {
	items := make([]model.Item, len(itemIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range itemIDs {
		i, id := i, id
		g.Go(func() error {
			return s.store.Get(gctx, store.CollectionItems, id, &items[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func references(r model.Rental, itemID string) bool {
	for _, id := range r.Items {
		if id == itemID {
			return true
		}
	}
	return false
}
