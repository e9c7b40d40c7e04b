package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-merchant-orders/internal/bridge"
	"github.com/ariefcatur/go-merchant-orders/internal/orders"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu         sync.Mutex
	backlog    []orders.Order
	backlogErr error
	acceptErr  error
	rejectErr  error
	packErr    error
	packStatus orders.Status
	acceptGate chan struct{}
	acceptResp *orders.Order
	onFetch    func()
	calls      []string
	fetches    int
}

func (f *fakeBackend) call(c string) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) FetchBacklog(context.Context) ([]orders.Order, error) {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.backlog, f.backlogErr
}

func (f *fakeBackend) Accept(ctx context.Context, id string) (orders.Order, error) {
	f.call("accept:" + id)
	if f.acceptGate != nil {
		<-f.acceptGate
	}
	if f.acceptErr != nil {
		return orders.Order{}, f.acceptErr
	}
	if f.acceptResp != nil {
		return *f.acceptResp, nil
	}
	return orders.Order{ID: id, Status: orders.StatusAccepted}, nil
}

func (f *fakeBackend) Reject(ctx context.Context, id, reason string) error {
	f.call("reject:" + id + ":" + reason)
	return f.rejectErr
}

func (f *fakeBackend) Pack(ctx context.Context, id string) (orders.Order, error) {
	f.call("pack:" + id)
	if f.packErr != nil {
		return orders.Order{}, f.packErr
	}
	st := f.packStatus
	if st == "" {
		st = orders.StatusPacked
	}
	return orders.Order{ID: id, Status: st, OTP: "4821"}, nil
}

type memSink struct {
	mu sync.Mutex
	ds []orders.Decision
}

func (m *memSink) Record(_ context.Context, d orders.Decision) error {
	m.mu.Lock()
	m.ds = append(m.ds, d)
	m.mu.Unlock()
	return nil
}

type recorder struct {
	mu sync.Mutex
	cs []Change
}

func (r *recorder) add(c Change) {
	r.mu.Lock()
	r.cs = append(r.cs, c)
	r.mu.Unlock()
}

func (r *recorder) kinds() []ChangeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChangeKind, 0, len(r.cs))
	for _, c := range r.cs {
		out = append(out, c.Kind)
	}
	return out
}

type fixture struct {
	svc   *Service
	be    *fakeBackend
	clk   *fakeClock
	sink  *memSink
	evts  *recorder
	ctx   context.Context
	start time.Time
}

func newFixture() *fixture {
	f := &fixture{be: &fakeBackend{}, clk: newClock(), sink: &memSink{}, evts: &recorder{}, ctx: context.Background()}
	f.start = f.clk.Now()
	f.svc = NewService(Deps{
		Backend:    f.be,
		Sinks:      []DecisionSink{f.sink},
		MerchantID: "m1",
		Now:        f.clk.Now,
		OnChange:   f.evts.add,
	})
	return f
}

func activeID(s Snapshot) string {
	if s.Active == nil {
		return ""
	}
	return s.Active.ID
}

func TestFirstOrderIsPromotedImmediately(t *testing.T) {
	f := newFixture()
	f.svc.HandleNewOrder(placed("o1"))

	snap := f.svc.Snapshot()
	assert.Equal(t, "o1", activeID(snap))
	assert.Empty(t, snap.Queued)
	assert.Equal(t, []orders.Action{orders.ActionAccept, orders.ActionReject}, snap.Active.Actions)
	assert.Contains(t, f.evts.kinds(), ChangeActive)
}

func TestDuplicateNewOrderEventsAreDropped(t *testing.T) {
	f := newFixture()
	f.svc.HandleNewOrder(placed("o1"))
	f.svc.HandleNewOrder(placed("o2"))
	f.svc.HandleNewOrder(placed("o2"))
	f.svc.HandleNewOrder(placed("o1"))
	f.svc.HandleNewOrder(orders.Order{ID: "o3"})

	snap := f.svc.Snapshot()
	assert.Equal(t, "o1", activeID(snap))
	assert.Equal(t, []string{"o2", "o3"}, snap.Queued)
}

func TestAcceptSuccess(t *testing.T) {
	f := newFixture()
	f.svc.HandleNewOrder(placed("o1"))
	f.svc.HandleNewOrder(placed("o2"))
	f.clk.Advance(2 * time.Second)

	o, err := f.svc.Accept(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusAccepted, o.Status)
	require.NotNil(t, o.AcceptedAt)
	assert.Equal(t, f.start.Add(2*time.Second), *o.AcceptedAt)

	snap := f.svc.Snapshot()
	assert.Equal(t, "o2", activeID(snap), "next queued order promoted")
	require.Len(t, snap.Orders, 1)
	cd := snap.Orders[0].Countdown
	require.NotNil(t, cd)
	assert.True(t, cd.Running)
	assert.Equal(t, "5:00", cd.Display)
	assert.Equal(t, []orders.Action{orders.ActionPack}, snap.Orders[0].Actions)

	assert.Equal(t, []string{"accept:o1"}, f.be.Calls())
	assert.Contains(t, f.evts.kinds(), ChangeRefreshOrders)
	require.Len(t, f.sink.ds, 1)
	assert.Equal(t, orders.ActionAccept, f.sink.ds[0].Action)
	assert.True(t, f.sink.ds[0].OK)
	assert.Equal(t, "m1", f.sink.ds[0].MerchantID)
}

func TestAcceptFailureKeepsActiveOrder(t *testing.T) {
	f := newFixture()
	f.be.acceptErr = errors.New("503 upstream")
	f.svc.HandleNewOrder(placed("o1"))
	f.svc.HandleNewOrder(placed("o2"))

	_, err := f.svc.Accept(f.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503 upstream")

	snap := f.svc.Snapshot()
	assert.Equal(t, "o1", activeID(snap))
	assert.Equal(t, orders.StatusPlaced, snap.Active.Status)
	assert.Equal(t, []string{"o2"}, snap.Queued, "no promotion")
	assert.Empty(t, snap.Orders)
	assert.Contains(t, snap.LastError, "503 upstream")
	assert.Contains(t, f.evts.kinds(), ChangeError)
	require.Len(t, f.sink.ds, 1)
	assert.False(t, f.sink.ds[0].OK)

	// operator retries by hand
	f.be.acceptErr = nil
	_, err = f.svc.Accept(f.ctx)
	require.NoError(t, err)
	snap = f.svc.Snapshot()
	assert.Equal(t, "o2", activeID(snap))
	assert.Empty(t, snap.LastError)
}

func TestAcceptWithoutActiveOrder(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Accept(f.ctx)
	assert.ErrorIs(t, err, ErrNoActiveOrder)
	assert.ErrorIs(t, f.svc.Reject(f.ctx, orders.ReasonOther), ErrNoActiveOrder)
	assert.Empty(t, f.be.Calls())
}

func TestAcceptInFlightGuard(t *testing.T) {
	f := newFixture()
	f.be.acceptGate = make(chan struct{})
	f.svc.HandleNewOrder(placed("o1"))

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Accept(f.ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return len(f.svc.Snapshot().InFlight) == 1 }, time.Second, 5*time.Millisecond)

	_, err := f.svc.Accept(f.ctx)
	assert.ErrorIs(t, err, ErrInFlight)
	assert.ErrorIs(t, f.svc.Reject(f.ctx, orders.ReasonOutOfStock), ErrInFlight)

	// push event for the same order while in flight is a no-op
	f.svc.HandleNewOrder(placed("o1"))
	assert.Empty(t, f.svc.Snapshot().Queued)

	close(f.be.acceptGate)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"accept:o1"}, f.be.Calls())
	assert.Empty(t, f.svc.Snapshot().InFlight)
}

func TestRejectValidation(t *testing.T) {
	f := newFixture()
	f.svc.HandleNewOrder(placed("o1"))

	assert.ErrorIs(t, f.svc.Reject(f.ctx, ""), ErrReasonRequired)
	assert.ErrorIs(t, f.svc.Reject(f.ctx, "   "), ErrReasonRequired)
	assert.ErrorIs(t, f.svc.Reject(f.ctx, "felt like it"), ErrUnknownReason)

	assert.Empty(t, f.be.Calls(), "no network call on validation errors")
	assert.Equal(t, "o1", activeID(f.svc.Snapshot()))
	assert.Empty(t, f.sink.ds)
}

func TestRejectSuccessPromotesNext(t *testing.T) {
	f := newFixture()
	f.svc.HandleNewOrder(placed("o1"))
	f.svc.HandleNewOrder(placed("o2"))

	require.NoError(t, f.svc.Reject(f.ctx, orders.ReasonOutOfStock))
	assert.Equal(t, []string{"reject:o1:Out of stock"}, f.be.Calls())

	snap := f.svc.Snapshot()
	assert.Equal(t, "o2", activeID(snap))
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, orders.StatusCancelled, snap.Orders[0].Status)
	assert.Equal(t, orders.ReasonOutOfStock, snap.Orders[0].RejectReason)
	assert.Empty(t, snap.Orders[0].Actions)
	require.Len(t, f.sink.ds, 1)
	assert.Equal(t, orders.ReasonOutOfStock, f.sink.ds[0].Reason)
}

func TestRejectFailureFollowsAcceptPolicy(t *testing.T) {
	f := newFixture()
	f.be.rejectErr = errors.New("timeout")
	f.svc.HandleNewOrder(placed("o1"))
	f.svc.HandleNewOrder(placed("o2"))

	err := f.svc.Reject(f.ctx, orders.ReasonTechnicalIssue)
	require.Error(t, err)

	snap := f.svc.Snapshot()
	assert.Equal(t, "o1", activeID(snap))
	assert.Equal(t, []string{"o2"}, snap.Queued)
	assert.Contains(t, snap.LastError, "timeout")
}

func acceptOne(t *testing.T, f *fixture, id string) {
	t.Helper()
	f.svc.HandleNewOrder(placed(id))
	_, err := f.svc.Accept(f.ctx)
	require.NoError(t, err)
}

func TestPackCancelsCountdownAndStoresOTP(t *testing.T) {
	f := newFixture()
	acceptOne(t, f, "o1")
	f.clk.Advance(time.Minute)
	require.True(t, f.svc.timers.Running("o1"))

	o, err := f.svc.Pack(f.ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPacked, o.Status)
	assert.Equal(t, "4821", o.OTP)
	assert.Nil(t, o.AcceptedAt)
	assert.False(t, f.svc.timers.Running("o1"))

	_, err = f.svc.Countdown("o1")
	assert.ErrorIs(t, err, ErrNoCountdown)

	last := f.sink.ds[len(f.sink.ds)-1]
	assert.Equal(t, orders.ActionPack, last.Action)
	assert.Equal(t, "4821", last.OTP)
}

func TestPackWaitingStatusFromBackend(t *testing.T) {
	f := newFixture()
	f.be.packStatus = orders.StatusPackedWaiting
	acceptOne(t, f, "o1")

	o, err := f.svc.Pack(f.ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPackedWaiting, o.Status)
}

func TestPackErrors(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Pack(f.ctx, "ghost")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	acceptOne(t, f, "o1")
	f.be.packErr = errors.New("bad gateway")
	_, err = f.svc.Pack(f.ctx, "o1")
	require.Error(t, err)
	v, _ := f.svc.Order("o1")
	assert.Equal(t, orders.StatusAccepted, v.Status)
	assert.True(t, f.svc.timers.Running("o1"), "failed pack leaves the countdown alone")

	f.be.packErr = nil
	_, err = f.svc.Pack(f.ctx, "o1")
	require.NoError(t, err)
	_, err = f.svc.Pack(f.ctx, "o1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCountdownExpiresAfterFiveMinutes(t *testing.T) {
	f := newFixture()
	acceptOne(t, f, "o1")

	f.clk.Advance(125 * time.Second)
	f.svc.timers.Tick()
	cd, err := f.svc.Countdown("o1")
	require.NoError(t, err)
	assert.Equal(t, "2:55", cd.Display)
	assert.Equal(t, int64(175000), cd.RemainingMs)

	f.clk.Advance(176 * time.Second)
	f.svc.timers.Tick()
	cd, err = f.svc.Countdown("o1")
	require.NoError(t, err)
	assert.True(t, cd.Expired)
	assert.False(t, cd.Running)
	assert.Equal(t, "0:00", cd.Display)
	assert.Equal(t, 0, f.svc.timers.Len())
	assert.Contains(t, f.evts.kinds(), ChangeExpired)

	// expiry is display-only: packing still works
	_, err = f.svc.Pack(f.ctx, "o1")
	assert.NoError(t, err)
}

func TestOrderUpdateLeavingAcceptedCancelsCountdown(t *testing.T) {
	f := newFixture()
	acceptOne(t, f, "o1")

	f.svc.HandleOrderUpdate(orders.Order{ID: "o1", Status: orders.StatusOutForDelivery})
	assert.False(t, f.svc.timers.Running("o1"))
	v, err := f.svc.Order("o1")
	require.NoError(t, err)
	assert.Nil(t, v.AcceptedAt)
	assert.Equal(t, "orange", v.Display.Color)
}

func TestOrderUpdateEnteringAcceptedStartsCountdown(t *testing.T) {
	f := newFixture()
	at := f.start.Add(-2 * time.Minute)
	f.svc.HandleOrderUpdate(orders.Order{ID: "o9", Status: orders.StatusAccepted, AcceptedAt: &at})

	cd, err := f.svc.Countdown("o9")
	require.NoError(t, err)
	assert.Equal(t, "3:00", cd.Display)
	assert.True(t, cd.Running)

	// later update without accepted_at keeps the original stamp
	f.svc.HandleOrderUpdate(orders.Order{ID: "o9", Status: orders.StatusAccepted, PaymentStatus: "paid"})
	cd, _ = f.svc.Countdown("o9")
	assert.Equal(t, "3:00", cd.Display)
}

func TestOrderUpdateForQueuedAndActiveOrders(t *testing.T) {
	f := newFixture()
	f.svc.HandleNewOrder(placed("o1"))
	f.svc.HandleNewOrder(placed("o2"))
	f.svc.HandleNewOrder(placed("o3"))

	upd := placed("o2")
	upd.PaymentStatus = "paid"
	f.svc.HandleOrderUpdate(upd)
	assert.Equal(t, []string{"o2", "o3"}, f.svc.Snapshot().Queued)

	f.svc.HandleOrderUpdate(orders.Order{ID: "o3", Status: orders.StatusCancelled})
	assert.Equal(t, []string{"o2"}, f.svc.Snapshot().Queued)

	f.svc.HandleOrderUpdate(orders.Order{ID: "o1", Status: orders.StatusCancelled})
	snap := f.svc.Snapshot()
	assert.Equal(t, "o2", activeID(snap))
	assert.Equal(t, "paid", snap.Active.PaymentStatus)
	assert.Empty(t, snap.Queued)

	// missed newOrder arrives as an update
	f.svc.HandleOrderUpdate(placed("o4"))
	assert.Equal(t, []string{"o4"}, f.svc.Snapshot().Queued)

	// a decided order can't come back into the queue
	f.svc.HandleNewOrder(placed("o1"))
	assert.Equal(t, []string{"o4"}, f.svc.Snapshot().Queued)
}

func TestReturnTwoStepFlow(t *testing.T) {
	f := newFixture()
	f.svc.HandleOrderUpdate(orders.Order{ID: "r1", Status: orders.StatusReturned})

	_, err := f.svc.AcceptReturn(f.ctx, "r1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	o, err := f.svc.VerifyReturn(f.ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusVerifiedReturn, o.Status)

	o, err = f.svc.AcceptReturn(f.ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusReturnAccepted, o.Status)

	_, err = f.svc.VerifyReturn(f.ctx, "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Empty(t, f.be.Calls(), "return steps are local")
	require.Len(t, f.sink.ds, 2)
	assert.Equal(t, orders.ActionVerifyReturn, f.sink.ds[0].Action)
	assert.Equal(t, orders.ActionAcceptReturn, f.sink.ds[1].Action)
}

func TestInitReconcilesBacklog(t *testing.T) {
	f := newFixture()
	at := f.start.Add(-2 * time.Minute)
	old := f.start.Add(-10 * time.Minute)
	f.be.backlog = []orders.Order{
		placed("b1"),
		{ID: "b2"},
		placed("p1"),
		{ID: "a1", Status: orders.StatusAccepted, AcceptedAt: &at},
		{ID: "a2", Status: orders.StatusAccepted, AcceptedAt: &old},
		{ID: "d1", Status: orders.StatusDelivered},
		{},
	}

	// push events received before reconciliation keep their place
	f.svc.HandleNewOrder(placed("p1"))
	f.svc.HandleNewOrder(placed("p2"))

	require.NoError(t, f.svc.Init(f.ctx))
	snap := f.svc.Snapshot()
	assert.Equal(t, "p1", activeID(snap))
	assert.Equal(t, []string{"p2", "b1", "b2"}, snap.Queued)
	assert.Len(t, snap.Orders, 3)

	cd, err := f.svc.Countdown("a1")
	require.NoError(t, err)
	assert.Equal(t, "3:00", cd.Display)
	cd, err = f.svc.Countdown("a2")
	require.NoError(t, err)
	assert.True(t, cd.Expired)
	assert.False(t, f.svc.timers.Running("a2"))

	f.svc.HandleNewOrder(placed("p3"))
	assert.Equal(t, []string{"p2", "b1", "b2", "p3"}, f.svc.Snapshot().Queued)

	require.NoError(t, f.svc.Init(f.ctx))
	assert.Equal(t, 1, f.be.fetches, "reconciliation runs once")
}

func TestInitFailureCanBeRetried(t *testing.T) {
	f := newFixture()
	f.be.backlogErr = errors.New("down")
	require.Error(t, f.svc.Init(f.ctx))

	f.svc.HandleNewOrder(placed("live"))
	assert.Equal(t, "live", activeID(f.svc.Snapshot()))

	f.be.backlogErr = nil
	f.be.backlog = []orders.Order{placed("b1")}
	require.NoError(t, f.svc.Init(f.ctx))
	assert.Equal(t, []string{"b1"}, f.svc.Snapshot().Queued)
}

func TestDisposeDropsState(t *testing.T) {
	f := newFixture()
	acceptOne(t, f, "o1")
	f.svc.HandleNewOrder(placed("o2"))
	f.svc.HandleNewOrder(placed("o3"))

	f.svc.Dispose()
	snap := f.svc.Snapshot()
	assert.Nil(t, snap.Active)
	assert.Empty(t, snap.Queued)
	assert.Empty(t, snap.Orders)
	assert.Equal(t, 0, f.svc.timers.Len())
}

type fakeSource struct {
	handlers map[string]bridge.Handler
	offs     int
}

func (s *fakeSource) On(event string, h bridge.Handler) bridge.Subscription {
	s.handlers[event] = h
	return bridge.Subscription{Event: event}
}

func (s *fakeSource) Off(bridge.Subscription) { s.offs++ }

func TestBindRoutesBridgeEvents(t *testing.T) {
	f := newFixture()
	src := &fakeSource{handlers: map[string]bridge.Handler{}}
	unbind := f.svc.Bind(src)

	src.handlers[orders.EventNewOrder](placed("o1"))
	src.handlers[orders.EventOrderUpdate](orders.Order{ID: "o1", Status: orders.StatusCancelled})

	snap := f.svc.Snapshot()
	assert.Nil(t, snap.Active)
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, orders.StatusCancelled, snap.Orders[0].Status)

	unbind()
	assert.Equal(t, 2, src.offs)
}

func TestQueueNeverContainsActiveID(t *testing.T) {
	f := newFixture()
	for _, id := range []string{"a", "b", "a", "c", "b", "a"} {
		f.svc.HandleNewOrder(placed(id))
		snap := f.svc.Snapshot()
		for _, q := range snap.Queued {
			assert.NotEqual(t, activeID(snap), q)
		}
	}
	assert.Equal(t, []string{"b", "c"}, f.svc.Snapshot().Queued)
}

func TestInitKeepsUpdatesPushedDuringFetch(t *testing.T) {
	f := newFixture()
	at := f.start.Add(-time.Minute)
	f.be.backlog = []orders.Order{{ID: "a1", Status: orders.StatusAccepted, AcceptedAt: &at}}
	f.be.onFetch = func() {
		f.svc.HandleOrderUpdate(orders.Order{ID: "a1", Status: orders.StatusPacked, OTP: "7788"})
	}

	require.NoError(t, f.svc.Init(f.ctx))

	v, err := f.svc.Order("a1")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPacked, v.Status)
	assert.Equal(t, "7788", v.OTP)
	assert.Nil(t, v.Countdown)
	assert.False(t, f.svc.timers.Running("a1"))
}

func TestRejectedOrderDoesNotComeBack(t *testing.T) {
	f := newFixture()
	f.be.backlog = []orders.Order{placed("x")}
	f.be.onFetch = func() {
		f.svc.HandleNewOrder(placed("x"))
		require.NoError(t, f.svc.Reject(f.ctx, orders.ReasonOutOfStock))
	}

	require.NoError(t, f.svc.Init(f.ctx))
	snap := f.svc.Snapshot()
	assert.Nil(t, snap.Active)
	assert.Empty(t, snap.Queued)

	// newOrder diulang tanpa event id
	f.svc.HandleNewOrder(placed("x"))
	assert.Nil(t, f.svc.Snapshot().Active)

	v, err := f.svc.Order("x")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, v.Status)
	assert.Equal(t, orders.ReasonOutOfStock, v.RejectReason)
}

func TestAcceptMergesBackendPayload(t *testing.T) {
	f := newFixture()
	later := f.start.Add(time.Hour)
	f.be.acceptResp = &orders.Order{
		ID:              "o1",
		Status:          orders.StatusAccepted,
		AcceptedAt:      &later,
		TotalAmount:     decimal.RequireFromString("125.50"),
		PaymentStatus:   "paid",
		DeliveryAddress: orders.Address{City: "Bandung"},
	}
	f.svc.HandleNewOrder(orders.Order{ID: "o1", Status: orders.StatusPlaced, PaymentStatus: "pending"})

	out, err := f.svc.Accept(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "paid", out.PaymentStatus)
	assert.True(t, out.TotalAmount.Equal(decimal.RequireFromString("125.50")))
	assert.Equal(t, "Bandung", out.DeliveryAddress.City)
	require.NotNil(t, out.AcceptedAt)
	assert.True(t, out.AcceptedAt.Equal(f.start), "countdown starts at local accept time")
}

func TestOrderLooksUpQueuedOrders(t *testing.T) {
	f := newFixture()
	f.svc.HandleNewOrder(placed("o1"))
	f.svc.HandleNewOrder(placed("o2"))

	v, err := f.svc.Order("o2")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPlaced, v.Status)
	assert.Equal(t, []orders.Action{orders.ActionAccept, orders.ActionReject}, v.Actions)

	_, err = f.svc.Order("nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
