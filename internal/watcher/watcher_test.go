package watcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"supply-desk/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLister is a mock implementation of Lister
type MockLister struct {
	mock.Mock
}

func (m *MockLister) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.OrderSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderSummary), args.Error(1)
}

// recordingNotifier records notifications in call order.
type recordingNotifier struct {
	mu      sync.Mutex
	popups  []int64
	changes [][]int64
}

func (r *recordingNotifier) NewOrder(ctx context.Context, orderID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popups = append(r.popups, orderID)
	return nil
}

func (r *recordingNotifier) OrdersChanged(ctx context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, ids)
	return nil
}

func (r *recordingNotifier) Popups() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.popups...)
}

func orders(ids ...int64) []model.OrderSummary {
	out := make([]model.OrderSummary, len(ids))
	for i, id := range ids {
		out[i] = model.OrderSummary{ID: id, UserType: "Rep"}
	}
	return out
}

func newWatcher() *Watcher {
	return New(nil, &recordingNotifier{}, Config{AdminRole: "Admin"}, zerolog.Nop())
}

func TestWatcher_Observe_BaselineSuppression(t *testing.T) {
	w := newWatcher()

	first := w.Observe(orders(1, 2, 3))
	assert.True(t, first.Baseline)
	assert.False(t, first.Changed())
	assert.False(t, first.Popup)

	second := w.Observe(orders(1, 2, 3, 4))
	assert.Equal(t, []int64{4}, second.NewOrderIDs)
	assert.Equal(t, int64(4), second.LatestID)
	assert.True(t, second.Popup)

	third := w.Observe(orders(1, 2, 3, 4))
	assert.False(t, third.Changed())
}

func TestWatcher_Observe_EmptyListDoesNotHideNewOrders(t *testing.T) {
	w := newWatcher()

	w.Observe(orders(1, 2))
	empty := w.Observe(nil)
	assert.True(t, empty.Empty)
	assert.False(t, empty.Changed())

	next := w.Observe(orders(5))
	assert.Equal(t, []int64{5}, next.NewOrderIDs)
	assert.Equal(t, int64(5), next.LatestID)
	assert.True(t, next.Popup)
}

func TestWatcher_Observe_EmptyListThenSameOrders(t *testing.T) {
	w := newWatcher()

	w.Observe(orders(1, 2))
	w.Observe(nil)
	again := w.Observe(orders(1, 2))

	assert.False(t, again.Changed(), "a transient empty response does not make known orders new")
}

func TestWatcher_Observe_FirstPollEmpty(t *testing.T) {
	w := newWatcher()

	assert.True(t, w.Observe(nil).Empty)

	baseline := w.Observe(orders(1, 2))
	assert.True(t, baseline.Baseline)
	assert.False(t, baseline.Changed())
}

func TestWatcher_Observe_AdminSuppression(t *testing.T) {
	tests := []struct {
		name          string
		userType      string
		expectedPopup bool
	}{
		{name: "Rep order pops up", userType: "Rep", expectedPopup: true},
		{name: "Admin order suppressed", userType: "Admin", expectedPopup: false},
		{name: "Admin role is case insensitive", userType: "admin", expectedPopup: false},
		{name: "Numeric admin code suppressed", userType: "0", expectedPopup: false},
		{name: "Missing user type pops up", userType: "", expectedPopup: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWatcher()
			w.Observe(orders(1))

			next := append(orders(1), model.OrderSummary{ID: 2, UserType: tt.userType})
			tr := w.Observe(next)

			assert.True(t, tr.Changed(), "orders changed fires regardless of creator")
			assert.Equal(t, tt.expectedPopup, tr.Popup)
		})
	}
}

func TestWatcher_Observe_LatestIsLastInListOrder(t *testing.T) {
	w := newWatcher()
	w.Observe(orders(10))

	list := []model.OrderSummary{
		{ID: 12, UserType: "Rep"},
		{ID: 10, UserType: "Rep"},
		{ID: 11, UserType: "Admin"},
	}
	tr := w.Observe(list)

	assert.Equal(t, []int64{12, 11}, tr.NewOrderIDs)
	assert.Equal(t, int64(11), tr.LatestID)
	assert.False(t, tr.Popup, "latest new order was created by an admin")
}

func TestWatcher_Observe_DuplicateIDsInList(t *testing.T) {
	w := newWatcher()
	w.Observe(orders(1))

	tr := w.Observe(orders(1, 2, 2))

	assert.Equal(t, []int64{2}, tr.NewOrderIDs)
}

func TestWatcher_Observe_RemovedOrdersAreForgotten(t *testing.T) {
	w := newWatcher()
	w.Observe(orders(1, 2, 3))
	w.Observe(orders(1, 3))

	tr := w.Observe(orders(1, 2, 3))

	assert.Equal(t, []int64{2}, tr.NewOrderIDs)
}

func TestWatcher_IndependentBaselines(t *testing.T) {
	a := newWatcher()
	b := newWatcher()

	a.Observe(orders(1))
	a.Observe(orders(1, 2))

	assert.True(t, b.Observe(orders(1, 2)).Baseline)
}

func TestWatcher_Poll_NotifiesAndRetainsSnapshotOnError(t *testing.T) {
	lister := new(MockLister)
	notifier := &recordingNotifier{}
	filter := model.OrderFilter{Status: "pending"}
	w := New(lister, notifier, Config{Filter: filter}, zerolog.Nop())
	ctx := context.Background()

	lister.On("ListOrders", mock.Anything, filter).Return(orders(1, 2), nil).Once()
	lister.On("ListOrders", mock.Anything, filter).Return(nil, errors.New("connection reset")).Once()
	lister.On("ListOrders", mock.Anything, filter).Return(orders(1, 2, 3), nil).Once()

	tr, err := w.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, tr.Baseline)

	_, err = w.Poll(ctx)
	require.Error(t, err)
	assert.Equal(t, model.KindPoll, model.KindOf(err))

	tr, err = w.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, tr.NewOrderIDs)

	assert.Equal(t, []int64{3}, notifier.Popups())
	assert.Equal(t, [][]int64{{3}}, notifier.changes)
	lister.AssertExpectations(t)
}

func TestWatcher_Poll_AdminOrderBroadcastsOnly(t *testing.T) {
	lister := new(MockLister)
	notifier := &recordingNotifier{}
	w := New(lister, notifier, Config{}, zerolog.Nop())
	ctx := context.Background()

	lister.On("ListOrders", mock.Anything, mock.Anything).Return(orders(1), nil).Once()
	lister.On("ListOrders", mock.Anything, mock.Anything).
		Return(append(orders(1), model.OrderSummary{ID: 2, UserType: "Admin"}), nil).Once()

	_, err := w.Poll(ctx)
	require.NoError(t, err)
	_, err = w.Poll(ctx)
	require.NoError(t, err)

	assert.Empty(t, notifier.Popups())
	assert.Equal(t, [][]int64{{2}}, notifier.changes)
}

func TestWatcher_Run_StopsOnCancel(t *testing.T) {
	lister := new(MockLister)
	notifier := &recordingNotifier{}
	w := New(lister, notifier, Config{Interval: 10 * time.Millisecond}, zerolog.Nop())

	lister.On("ListOrders", mock.Anything, mock.Anything).Return(orders(1), nil).Once()
	lister.On("ListOrders", mock.Anything, mock.Anything).Return(orders(1, 2), nil)

	assert.Equal(t, StateIdle, w.State())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return len(notifier.Popups()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatePolling, w.State())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
	assert.Equal(t, StateStopped, w.State())
	assert.Equal(t, []int64{2}, notifier.Popups(), "unchanged polls do not notify again")

	assert.Error(t, w.Run(context.Background()), "a stopped watcher cannot be restarted")
}

func TestWatcher_Run_PollErrorsDoNotStop(t *testing.T) {
	lister := new(MockLister)
	w := New(lister, &recordingNotifier{}, Config{Interval: 5 * time.Millisecond}, zerolog.Nop())

	var calls atomic.Int32
	lister.On("ListOrders", mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout")).
		Run(func(mock.Arguments) { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatePolling, w.State())

	cancel()
	<-done
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "polling", StatePolling.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "unknown", State(9).String())
}
