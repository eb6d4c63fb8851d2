// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
)

// ErrItemNotFound is returned when no line matches (productId, size)
var ErrItemNotFound = errors.New("item not found in cart")

// Store owns one client's cart and mirrors every mutation to storage
type Store struct {
	mu        sync.RWMutex
	storage   storage.Storage
	key       string
	items     []Item
	updatedAt time.Time
	log       *logrus.Entry
}

// Load restores the cart persisted under key. A missing or corrupt value
// yields an empty cart.
func Load(ctx context.Context, st storage.Storage, key string, log *logrus.Logger) *Store {
	s := &Store{
		storage: st,
		key:     key,
		items:   []Item{},
		log:     log.WithField("slot", key),
	}

	raw, err := st.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.WithError(err).Warn("Failed to load cart, starting empty")
		}
		return s
	}

	var persisted persistedCart
	if err := json.Unmarshal(raw, &persisted); err != nil {
		s.log.WithError(err).Warn("Corrupt cart blob, starting empty")
		return s
	}

	for _, item := range persisted.Items {
		item.Quantity = clamp(item.Quantity, item.MaxStock)
		if item.Quantity > 0 {
			s.items = append(s.items, item)
		}
	}
	s.updatedAt = persisted.UpdatedAt
	return s
}

// Add adds an item, merging with an existing (productId, size) line.
// The resulting quantity is clamped to [0, maxStock]; a line clamped to
// zero is not kept. It returns the quantity now in the cart.
func (s *Store) Add(ctx context.Context, item Item) int {
	s.mu.Lock()

	quantity := 0
	found := false
	for i := range s.items {
		if !s.items[i].matches(item.ProductID, item.Size) {
			continue
		}

		merged := item
		merged.Size = s.items[i].Size
		merged.Quantity = clamp(s.items[i].Quantity+item.Quantity, item.MaxStock)
		quantity = merged.Quantity
		if quantity == 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i] = merged
		}
		found = true
		break
	}

	if !found {
		item.Quantity = clamp(item.Quantity, item.MaxStock)
		quantity = item.Quantity
		if quantity > 0 {
			s.items = append(s.items, item)
		}
	}

	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return quantity
}

// UpdateQuantity sets a line's quantity, clamped to [0, maxStock]. A
// resulting zero removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID, size string, quantity int) (int, error) {
	s.mu.Lock()

	idx := s.indexLocked(productID, size)
	if idx < 0 {
		s.mu.Unlock()
		return 0, ErrItemNotFound
	}

	quantity = clamp(quantity, s.items[idx].MaxStock)
	if quantity == 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	} else {
		s.items[idx].Quantity = quantity
	}

	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return quantity, nil
}

// Remove deletes exactly the line matching (productId, size)
func (s *Store) Remove(ctx context.Context, productID, size string) error {
	s.mu.Lock()

	idx := s.indexLocked(productID, size)
	if idx < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return nil
}

// Clear empties the cart and deletes its persisted copy
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = []Item{}
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.log.WithError(err).Warn("Failed to delete persisted cart")
	}
}

// Items returns a copy of the cart lines
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Count returns the total quantity across all lines
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// UpdatedAt returns when the cart last changed
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func (s *Store) indexLocked(productID, size string) int {
	for i := range s.items {
		if s.items[i].matches(productID, size) {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() persistedCart {
	s.updatedAt = time.Now().UTC()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return persistedCart{Items: items, UpdatedAt: s.updatedAt}
}

func (s *Store) persist(ctx context.Context, cart persistedCart) {
	raw, err := json.Marshal(cart)
	if err != nil {
		s.log.WithError(err).Error("Failed to encode cart")
		return
	}
	if err := s.storage.Save(ctx, s.key, raw); err != nil {
		s.log.WithError(err).Warn("Failed to persist cart")
	}
}

func clamp(quantity, maxStock int) int {
	if quantity < 0 {
		return 0
	}
	if maxStock < 0 {
		maxStock = 0
	}
	if quantity > maxStock {
		return maxStock
	}
	return quantity
}
