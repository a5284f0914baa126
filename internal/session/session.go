// Package session holds the per-terminal selection state: which items the
// patron has picked and how many copies of each. The state lives in redis
// under a TTL and is explicitly created, mutated and cleared by the flow,
// so an abandoned terminal simply expires.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/leih-lokal/kiosk-service/internal/errs"
)

type Selection struct {
	ID         string         `json:"id"`
	ItemIDs    []string       `json:"item_ids"`
	CopyCounts map[string]int `json:"copy_counts"`
	StartedAt  int64          `json:"started_at"`
}

// Add puts an item into the selection. At most maxItems distinct items are
// allowed; a rejected add leaves the selection untouched. Re-adding a
// selected item is a no-op. A fresh item starts at one copy.
func (s *Selection) Add(itemID string, maxItems int) error {
	for _, id := range s.ItemIDs {
		if id == itemID {
			return nil
		}
	}
	if len(s.ItemIDs) >= maxItems {
		return errs.ErrCapacityExceeded
	}
	s.ItemIDs = append(s.ItemIDs, itemID)
	if s.CopyCounts == nil {
		s.CopyCounts = make(map[string]int)
	}
	s.CopyCounts[itemID] = 1
	return nil
}

func (s *Selection) Remove(itemID string) {
	for i, id := range s.ItemIDs {
		if id == itemID {
			s.ItemIDs = append(s.ItemIDs[:i], s.ItemIDs[i+1:]...)
			break
		}
	}
	delete(s.CopyCounts, itemID)
}

// SetCopies sets the requested copy count of an already selected item.
func (s *Selection) SetCopies(itemID string, n int) error {
	if n < 1 {
		return errs.ErrInvalidInput
	}
	for _, id := range s.ItemIDs {
		if id == itemID {
			s.CopyCounts[itemID] = n
			return nil
		}
	}
	return errs.ErrNotFound
}

type Store struct {
	rdb      *redis.Client
	ttl      time.Duration
	maxItems int
}

func NewStore(rdb *redis.Client, ttl time.Duration, maxItems int) *Store {
	return &Store{rdb: rdb, ttl: ttl, maxItems: maxItems}
}

func key(id string) string { return fmt.Sprintf("kiosk:sess:%s", id) }

func (s *Store) Start(ctx context.Context) (Selection, error) {
	sel := Selection{
		ID:         uuid.NewString(),
		ItemIDs:    []string{},
		CopyCounts: map[string]int{},
		StartedAt:  time.Now().Unix(),
	}
	if err := s.save(ctx, sel); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

func (s *Store) Get(ctx context.Context, id string) (Selection, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Selection{}, errs.ErrSessionNotFound
		}
		return Selection{}, err
	}
	var sel Selection
	if err := json.Unmarshal(b, &sel); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

func (s *Store) AddItem(ctx context.Context, id, itemID string) (Selection, error) {
	return s.mutate(ctx, id, func(sel *Selection) error {
		return sel.Add(itemID, s.maxItems)
	})
}

func (s *Store) RemoveItem(ctx context.Context, id, itemID string) (Selection, error) {
	return s.mutate(ctx, id, func(sel *Selection) error {
		sel.Remove(itemID)
		return nil
	})
}

func (s *Store) SetCopies(ctx context.Context, id, itemID string, n int) (Selection, error) {
	return s.mutate(ctx, id, func(sel *Selection) error {
		return sel.SetCopies(itemID, n)
	})
}

func (s *Store) Clear(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, key(id)).Err()
}

func (s *Store) mutate(ctx context.Context, id string, fn func(*Selection) error) (Selection, error) {
	sel, err := s.Get(ctx, id)
	if err != nil {
		return Selection{}, err
	}
	if err := fn(&sel); err != nil {
		return Selection{}, err
	}
	if err := s.save(ctx, sel); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

func (s *Store) save(ctx context.Context, sel Selection) error {
	b, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(sel.ID), b, s.ttl).Err()
}
