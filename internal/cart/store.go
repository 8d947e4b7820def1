package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"go.uber.org/zap"
)

// Store holds the shopper's cart lines. Every mutation writes the whole line
// set to storage first and only then replaces the in-memory copy, so a failed
// write leaves the previous state in place.
type Store struct {
	mu      sync.RWMutex
	storage storage.Storage
	log     *zap.Logger
	lines   []domain.CartLine
}

// NewStore loads persisted lines. Unreadable or malformed data yields an
// empty cart.
func NewStore(ctx context.Context, st storage.Storage, log *zap.Logger) *Store {
	s := &Store{storage: st, log: log}
	s.lines = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []domain.CartLine {
	raw, err := s.storage.Get(ctx, storage.KeyCart)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.log.Warn("cart load failed, starting empty", zap.Error(err))
		return nil
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.log.Warn("persisted cart is malformed, starting empty", zap.Error(err))
		return nil
	}
	seen := make(map[int]struct{}, len(lines))
	for _, l := range lines {
		if _, dup := seen[l.Index]; dup || l.Quantity < 1 || l.UnitPrice.IsNegative() {
			s.log.Warn("persisted cart violates line invariants, starting empty", zap.Int("index", l.Index))
			return nil
		}
		seen[l.Index] = struct{}{}
	}
	return lines
}

func (s *Store) commit(ctx context.Context, next []domain.CartLine) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyCart, raw); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	s.lines = next
	return nil
}

func (s *Store) find(index int) int {
	for i, l := range s.lines {
		if l.Index == index {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []domain.CartLine {
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Add increments the quantity of an existing line with the same index, keeping
// its name, price and image. Otherwise the line is appended with quantity 1.
func (s *Store) Add(ctx context.Context, line domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot()
	if i := s.find(line.Index); i >= 0 {
		next[i].Quantity++
	} else {
		line.Quantity = 1
		next = append(next, line)
	}
	return s.commit(ctx, next)
}

// SetQuantity replaces the quantity of a line. A quantity of zero or less
// removes it. Unknown indexes are ignored.
func (s *Store) SetQuantity(ctx context.Context, index, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, index)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(index)
	if i < 0 {
		return nil
	}
	next := s.snapshot()
	next[i].Quantity = quantity
	return s.commit(ctx, next)
}

func (s *Store) Remove(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(index)
	if i < 0 {
		return nil
	}
	next := make([]domain.CartLine, 0, len(s.lines)-1)
	next = append(next, s.lines[:i]...)
	next = append(next, s.lines[i+1:]...)
	return s.commit(ctx, next)
}

// Clear empties the cart and deletes its persisted representation.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, storage.KeyCart); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	s.lines = nil
	return nil
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) Total() domain.CartTotal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.SumLines(s.lines)
}

func (s *Store) Count() int {
	return s.Total().Count
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// AddProduct adds a catalog product. The line holding line.ProductID gets its
// quantity incremented; otherwise the line is appended under the next free
// index. The index is picked under the same lock as the write.
func (s *Store) AddProduct(ctx context.Context, line domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot()
	free := 0
	for i, l := range next {
		if line.ProductID != "" && l.ProductID == line.ProductID {
			next[i].Quantity++
			return s.commit(ctx, next)
		}
		if l.Index >= free {
			free = l.Index + 1
		}
	}
	line.Index = free
	line.Quantity = 1
	return s.commit(ctx, append(next, line))
}
