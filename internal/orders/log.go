package orders

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

var ErrDuplicateOrder = errors.New("order id already in the log")

// Log is the append-only order history of the shopper.
type Log struct {
	mu      sync.RWMutex
	storage storage.Storage
	log     *zap.Logger
	records []domain.OrderRecord
}

// NewLog loads the persisted history. A corrupt log is discarded.
func NewLog(ctx context.Context, st storage.Storage, log *zap.Logger) *Log {
	l := &Log{storage: st, log: log}
	l.records = l.load(ctx)
	return l
}

func (l *Log) load(ctx context.Context) []domain.OrderRecord {
	raw, err := l.storage.Get(ctx, storage.KeyOrders)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		l.log.Warn("order log load failed, starting empty", zap.Error(err))
		return nil
	}
	var records []domain.OrderRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		l.log.Warn("persisted order log is corrupt, discarding", zap.Error(err))
		return nil
	}
	return records
}

// Append persists the record at the end of the log, then publishes it in
// memory. Order ids are unique within the log.
func (l *Log) Append(ctx context.Context, rec domain.OrderRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range l.records {
		if r.OrderID == rec.OrderID {
			return fmt.Errorf("%w: %s", ErrDuplicateOrder, rec.OrderID)
		}
	}

	next := make([]domain.OrderRecord, len(l.records), len(l.records)+1)
	copy(next, l.records)
	next = append(next, rec)

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal order log: %w", err)
	}
	if err := l.storage.Set(ctx, storage.KeyOrders, raw); err != nil {
		return fmt.Errorf("persist order log: %w", err)
	}
	l.records = next
	l.log.Info("order appended", zap.String("order_id", rec.OrderID), zap.Int("orders", len(next)))
	return nil
}

// List returns every record in append order.
func (l *Log) List() []domain.OrderRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.OrderRecord, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
