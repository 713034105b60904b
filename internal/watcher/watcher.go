// Package watcher polls the upstream order list and reports orders that appeared
// since the previous poll.
package watcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"supply-desk/internal/model"

	"github.com/rs/zerolog"
)

// State is the lifecycle state of a Watcher.
type State int32

const (
	StateIdle State = iota
	StatePolling
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Lister fetches the current order list.
type Lister interface {
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.OrderSummary, error)
}

// Notifier receives the outcome of polls that found new orders.
type Notifier interface {
	// NewOrder is called for the latest new order unless an admin created it.
	NewOrder(ctx context.Context, orderID int64) error

	// OrdersChanged is called whenever new orders were found.
	OrdersChanged(ctx context.Context, newOrderIDs []int64) error
}

// Config controls polling.
type Config struct {
	Interval    time.Duration
	PollTimeout time.Duration
	AdminRole   string
	Filter      model.OrderFilter
}

// Transition describes what one successful poll changed.
type Transition struct {
	// Baseline is set when the poll only recorded the initial snapshot.
	Baseline bool

	// Empty is set when the poll returned no orders. The baseline is kept.
	Empty bool

	// NewOrderIDs lists ids absent from the previous snapshot, in list order.
	NewOrderIDs []int64

	// LatestID is the last new id in list order, 0 when there is none.
	LatestID int64

	// Popup is set when LatestID should be announced to the user.
	Popup bool
}

// Changed reports whether the poll found new orders.
func (t Transition) Changed() bool {
	return len(t.NewOrderIDs) > 0
}

// Watcher owns one order-id snapshot. Independent watchers keep independent
// baselines.
type Watcher struct {
	lister   Lister
	notifier Notifier
	cfg      Config
	logger   zerolog.Logger

	mu          sync.Mutex
	known       map[int64]struct{}
	initialized bool

	state atomic.Int32
}

// New creates an idle watcher.
func New(lister Lister, notifier Notifier, cfg Config, logger zerolog.Logger) *Watcher {
	if cfg.AdminRole == "" {
		cfg.AdminRole = "Admin"
	}
	return &Watcher{
		lister:   lister,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With().Str("component", "order-watcher").Logger(),
	}
}

// State returns the current lifecycle state.
func (w *Watcher) State() State {
	return State(w.state.Load())
}

// Observe applies one fetched order list to the snapshot.
func (w *Watcher) Observe(orders []model.OrderSummary) Transition {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(orders) == 0 {
		return Transition{Empty: true}
	}

	current := make(map[int64]struct{}, len(orders))
	for _, o := range orders {
		current[o.ID] = struct{}{}
	}

	if !w.initialized {
		w.known = current
		w.initialized = true
		return Transition{Baseline: true}
	}

	var t Transition
	var latest *model.OrderSummary
	seen := make(map[int64]struct{})
	for i := range orders {
		id := orders[i].ID
		if _, ok := w.known[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		t.NewOrderIDs = append(t.NewOrderIDs, id)
		latest = &orders[i]
	}

	if latest != nil {
		t.LatestID = latest.ID
		t.Popup = !model.IsAdminRole(latest.UserType, w.cfg.AdminRole)
	}

	w.known = current
	return t
}

// Poll fetches the order list once, applies it and notifies. A failed fetch
// leaves the snapshot unchanged.
func (w *Watcher) Poll(ctx context.Context) (Transition, error) {
	if w.cfg.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.PollTimeout)
		defer cancel()
	}

	orders, err := w.lister.ListOrders(ctx, w.cfg.Filter)
	if err != nil {
		return Transition{}, model.NewPollError(err)
	}

	t := w.Observe(orders)
	if !t.Changed() {
		return t, nil
	}

	w.logger.Info().
		Ints64("new_order_ids", t.NewOrderIDs).
		Int64("latest_order_id", t.LatestID).
		Bool("popup", t.Popup).
		Msg("new orders detected")

	if t.Popup {
		if err := w.notifier.NewOrder(ctx, t.LatestID); err != nil {
			w.logger.Error().Err(err).Int64("order_id", t.LatestID).Msg("failed to raise new order notification")
		}
	}
	if err := w.notifier.OrdersChanged(ctx, t.NewOrderIDs); err != nil {
		w.logger.Error().Err(err).Msg("failed to broadcast orders changed")
	}

	return t, nil
}

// Run polls immediately and then on every interval until ctx is cancelled.
// Polls never overlap. Run can only be called once.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.state.CompareAndSwap(int32(StateIdle), int32(StatePolling)) {
		return errors.New("watcher already started")
	}
	defer w.state.Store(int32(StateStopped))

	interval := w.cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	w.logger.Info().Dur("interval", interval).Msg("order watcher started")

	w.pollOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("order watcher stopped")
			return nil
		case <-ticker.C:
			w.pollOnce(ctx)
		}
	}
}

func (w *Watcher) pollOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := w.Poll(ctx); err != nil && ctx.Err() == nil {
		w.logger.Warn().Err(err).Msg("order poll failed, retrying next interval")
	}
}
