package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TaxRate applied to the cart subtotal.
var TaxRate = decimal.RequireFromString("0.08")

// maxFlows bounds the idempotency table; the oldest settled flows go first.
const maxFlows = 256

type Cart interface {
	Lines() []domain.CartLine
	Total() domain.CartTotal
	Clear(ctx context.Context) error
}

type OrderLog interface {
	Append(ctx context.Context, rec domain.OrderRecord) error
}

type Identity interface {
	User() *domain.SessionUser
}

// Summary is what the checkout page shows before submission.
type Summary struct {
	Lines    []domain.CartLine `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Tax      decimal.Decimal   `json:"tax"`
	Total    decimal.Decimal   `json:"total"`
	Count    int               `json:"count"`
	Prefill  Form              `json:"prefill"`
}

type flow struct {
	key    string
	status Status
	order  *domain.OrderRecord
}

type Service struct {
	cart     Cart
	orders   OrderLog
	identity Identity
	log      *zap.Logger
	validate *validator.Validate
	delay    time.Duration

	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	flows   map[string]*flow
	keys    []string
	placing bool // one cart, so at most one order in flight
}

func NewService(cart Cart, orders OrderLog, identity Identity, delay time.Duration, log *zap.Logger) *Service {
	return &Service{
		cart:     cart,
		orders:   orders,
		identity: identity,
		log:      log,
		validate: newValidator(),
		delay:    delay,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		flows:    make(map[string]*flow),
	}
}

// Totals computes tax and total for a subtotal, rounded to cents.
func Totals(subtotal decimal.Decimal) (tax, total decimal.Decimal) {
	tax = subtotal.Mul(TaxRate).Round(2)
	return tax, subtotal.Add(tax)
}

// Begin returns the order summary and a form prefilled from the session.
// An empty cart yields ErrEmptyCart.
func (s *Service) Begin() (*Summary, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	t := domain.SumLines(lines)
	tax, total := Totals(t.Subtotal)
	return &Summary{
		Lines:    lines,
		Subtotal: t.Subtotal,
		Tax:      tax,
		Total:    total,
		Count:    t.Count,
		Prefill:  s.prefill(),
	}, nil
}

func (s *Service) prefill() Form {
	u := s.identity.User()
	if u == nil {
		return Form{}
	}
	first, last, _ := strings.Cut(strings.TrimSpace(u.DisplayName), " ")
	return Form{FirstName: first, LastName: strings.TrimSpace(last), Email: u.Email}
}

// Status reports the state of the flow registered under key.
func (s *Service) Status(key string) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flows[key]
	if !ok {
		return "", false
	}
	return f.status, true
}

// flowFor returns the flow for key, creating it in Editing. Callers hold s.mu.
func (s *Service) flowFor(key string) *flow {
	if f, ok := s.flows[key]; ok {
		return f
	}
	f := &flow{key: key, status: StatusEditing}
	s.flows[key] = f
	s.keys = append(s.keys, key)
	s.evict()
	return f
}

func (s *Service) evict() {
	for len(s.flows) > maxFlows {
		evicted := false
		for i, k := range s.keys {
			if s.flows[k].status == StatusSubmitting {
				continue
			}
			delete(s.flows, k)
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			evicted = true
			break
		}
		if !evicted {
			return
		}
	}
}

func (s *Service) transition(f *flow, to Status) error {
	if !CanTransitionTo(f.status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, f.status, to)
	}
	f.status = to
	return nil
}

// Submit validates the form and places the order. Requests sharing an
// idempotency key share one flow: a flow that is submitting rejects the call
// with ErrSubmissionInProgress, and a completed flow returns its order along
// with ErrAlreadyCompleted. An empty key starts a one-off flow. While any flow
// is placing an order, other submissions get ErrSubmissionInProgress.
func (s *Service) Submit(ctx context.Context, key string, form Form) (*domain.OrderRecord, error) {
	if key == "" {
		key = uuid.NewString()
	}

	s.mu.Lock()
	f := s.flowFor(key)
	switch f.status {
	case StatusSubmitting:
		s.mu.Unlock()
		return nil, ErrSubmissionInProgress
	case StatusDone:
		order := *f.order
		s.mu.Unlock()
		return &order, ErrAlreadyCompleted
	}

	valid, err := validate(s.validate, form)
	if err != nil {
		if f.status == StatusFailed {
			_ = s.transition(f, StatusEditing)
		}
		s.mu.Unlock()
		return nil, err
	}
	if s.placing {
		s.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	if len(s.cart.Lines()) == 0 {
		s.mu.Unlock()
		return nil, ErrEmptyCart
	}
	if err := s.transition(f, StatusSubmitting); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.placing = true
	s.mu.Unlock()

	order, err := s.place(ctx, valid)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.placing = false
	if err != nil {
		_ = s.transition(f, StatusFailed)
		s.log.Warn("checkout failed", zap.String("idempotency_key", key), zap.Error(err))
		return nil, err
	}
	_ = s.transition(f, StatusDone)
	f.order = order
	out := *order
	return &out, nil
}

func (s *Service) place(ctx context.Context, form Form) (*domain.OrderRecord, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	subtotal := domain.SumLines(lines).Subtotal
	tax, total := Totals(subtotal)

	order := &domain.OrderRecord{
		OrderID:         s.newID(),
		CreatedAt:       s.now().UTC(),
		Lines:           lines,
		Subtotal:        subtotal,
		Tax:             tax,
		Total:           total,
		ShippingAddress: form.shippingAddress(),
		Status:          domain.OrderStatusConfirmed,
	}
	if u := s.identity.User(); u != nil {
		order.UserID = u.ID
	}

	if err := s.orders.Append(ctx, *order); err != nil {
		return nil, fmt.Errorf("append order: %w", err)
	}
	if err := s.cart.Clear(context.WithoutCancel(ctx)); err != nil {
		// the order is already recorded; a retry must not place it twice
		s.log.Error("failed to clear cart after checkout", zap.String("order_id", order.OrderID), zap.Error(err))
	}
	s.log.Info("order placed",
		zap.String("order_id", order.OrderID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("lines", len(lines)))
	return order, nil
}
