package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ariefcatur/go-merchant-orders/internal/bridge"
	"github.com/ariefcatur/go-merchant-orders/internal/orders"
	"github.com/google/uuid"
)

var (
	ErrNoActiveOrder     = errors.New("no active order")
	ErrInFlight          = errors.New("a request for this order is already in flight")
	ErrReasonRequired    = errors.New("reject reason is required")
	ErrUnknownReason     = errors.New("reject reason is not one of the allowed reasons")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoCountdown       = errors.New("order has no countdown")
)

// Backend is the marketplace REST API as seen by the presenter.
type Backend interface {
	FetchBacklog(ctx context.Context) ([]orders.Order, error)
	Accept(ctx context.Context, orderID string) (orders.Order, error)
	Reject(ctx context.Context, orderID, reason string) error
	Pack(ctx context.Context, orderID string) (orders.Order, error)
}

type DecisionSink interface {
	Record(ctx context.Context, d orders.Decision) error
}

// EventSource is the subscribe side of the bridge.
type EventSource interface {
	On(event string, h bridge.Handler) bridge.Subscription
	Off(s bridge.Subscription)
}

type ChangeKind string

const (
	ChangeActive        ChangeKind = "active"
	ChangeQueue         ChangeKind = "queue"
	ChangeOrder         ChangeKind = "order"
	ChangeRefreshOrders ChangeKind = "refresh_orders" // UI balik ke daftar order dan reload
	ChangeExpired       ChangeKind = "countdown_expired"
	ChangeError         ChangeKind = "error"
)

type Change struct {
	Kind    ChangeKind    `json:"kind"`
	OrderID string        `json:"order_id,omitempty"`
	Status  orders.Status `json:"status,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type Deps struct {
	Backend    Backend
	Sinks      []DecisionSink
	MerchantID string
	Now        func() time.Time
	OnChange   func(Change)
}

// Service owns the queue, the active slot and the countdowns for one merchant.
// Backend calls run without the lock held; a failed call never changes local state.
type Service struct {
	backend    Backend
	sinks      []DecisionSink
	merchantID string
	now        func() time.Time
	onChange   func(Change)
	timers     *Countdowns

	mu         sync.Mutex
	queue      *Queue
	active     *orders.Order
	tracked    map[string]*orders.Order
	inflight   map[string]orders.Action
	reconciled bool
	lastErr    string
}

func NewService(d Deps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	s := &Service{
		backend:    d.Backend,
		sinks:      d.Sinks,
		merchantID: d.MerchantID,
		now:        d.Now,
		onChange:   d.OnChange,
		queue:      NewQueue(),
		tracked:    map[string]*orders.Order{},
		inflight:   map[string]orders.Action{},
	}
	s.timers = NewCountdowns(d.Now, s.expired)
	return s
}

// Bind subscribes the service to newOrder/orderUpdate. The returned func unsubscribes.
func (s *Service) Bind(src EventSource) func() {
	subs := []bridge.Subscription{
		src.On(orders.EventNewOrder, s.HandleNewOrder),
		src.On(orders.EventOrderUpdate, s.HandleOrderUpdate),
	}
	return func() {
		for _, sub := range subs {
			src.Off(sub)
		}
	}
}

// Init runs the one-time backlog reconciliation. A failed fetch can be retried.
func (s *Service) Init(ctx context.Context) error {
	s.mu.Lock()
	done := s.reconciled
	s.mu.Unlock()
	if done {
		return nil
	}

	backlog, err := s.backend.FetchBacklog(ctx)
	if err != nil {
		log.Printf("notify: fetch backlog: %v", err)
		return fmt.Errorf("fetch backlog: %w", err)
	}

	s.mu.Lock()
	if s.reconciled {
		s.mu.Unlock()
		return nil
	}
	s.reconciled = true
	var pending []orders.Order
	tracked := 0
	for _, o := range backlog {
		if o.ID == "" {
			continue
		}
		if o.Status.Pending() {
			o.Status = orders.StatusPlaced
			if s.isActiveLocked(o.ID) || s.tracked[o.ID] != nil {
				continue
			}
			pending = append(pending, o)
			continue
		}
		// push yang datang selama fetch lebih baru dari snapshot
		if s.tracked[o.ID] != nil || s.isActiveLocked(o.ID) || s.queue.Contains(o.ID) {
			continue
		}
		s.trackLocked(o)
		tracked++
	}
	added := s.queue.Reconcile(pending)
	next, promoted := s.promoteLocked()
	s.mu.Unlock()

	log.Printf("notify: backlog reconciled: %d queued, %d tracked", added, tracked)
	changes := []Change{{Kind: ChangeQueue}, {Kind: ChangeRefreshOrders}}
	if promoted {
		changes = append(changes, Change{Kind: ChangeActive, OrderID: next})
	}
	s.emit(changes...)
	return nil
}

// Run drives the shared countdown tick until ctx is done.
func (s *Service) Run(ctx context.Context) { s.timers.Run(ctx) }

// Dispose drops every countdown and all in-memory state.
func (s *Service) Dispose() {
	s.timers.StopAll()
	s.mu.Lock()
	s.queue.Reset()
	s.active = nil
	s.tracked = map[string]*orders.Order{}
	s.reconciled = false
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Service) HandleNewOrder(o orders.Order) {
	if o.ID == "" {
		return
	}
	if !o.Status.Pending() {
		s.HandleOrderUpdate(o)
		return
	}
	o.Status = orders.StatusPlaced

	s.mu.Lock()
	if s.isActiveLocked(o.ID) || s.tracked[o.ID] != nil {
		s.mu.Unlock()
		return
	}
	added := s.queue.Enqueue(o)
	next, promoted := s.promoteLocked()
	s.mu.Unlock()

	var changes []Change
	if added {
		changes = append(changes, Change{Kind: ChangeQueue, OrderID: o.ID})
	}
	if promoted {
		changes = append(changes, Change{Kind: ChangeActive, OrderID: next})
	}
	s.emit(changes...)
}

func (s *Service) HandleOrderUpdate(o orders.Order) {
	if o.ID == "" {
		return
	}
	if !o.Status.Pending() && !orders.Known(o.Status) {
		log.Printf("notify: order %s has unknown status %q", o.ID, o.Status)
	}

	s.mu.Lock()
	var changes []Change
	switch {
	case s.isActiveLocked(o.ID):
		if o.Status.Pending() {
			o.Status = orders.StatusPlaced
			s.active = &o
			break
		}
		// diputuskan di tempat lain (mis. customer cancel)
		s.active = nil
		s.trackLocked(o)
		next, _ := s.promoteLocked()
		changes = append(changes, Change{Kind: ChangeActive, OrderID: next})
	case s.queue.Contains(o.ID):
		if o.Status.Pending() {
			o.Status = orders.StatusPlaced
			s.queue.Update(o)
			break
		}
		s.queue.Remove(o.ID)
		s.trackLocked(o)
		changes = append(changes, Change{Kind: ChangeQueue})
	case o.Status.Pending() && s.tracked[o.ID] == nil:
		// newOrder terlewat
		o.Status = orders.StatusPlaced
		s.queue.Enqueue(o)
		changes = append(changes, Change{Kind: ChangeQueue, OrderID: o.ID})
		if next, ok := s.promoteLocked(); ok {
			changes = append(changes, Change{Kind: ChangeActive, OrderID: next})
		}
	default:
		s.trackLocked(o)
	}
	s.mu.Unlock()

	s.emit(append(changes, Change{Kind: ChangeOrder, OrderID: o.ID, Status: o.Status})...)
}

// Accept accepts the active order. On failure the order stays active.
func (s *Service) Accept(ctx context.Context) (orders.Order, error) {
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return orders.Order{}, ErrNoActiveOrder
	}
	id := s.active.ID
	if !orders.Allows(s.active.Status, orders.ActionAccept) {
		s.mu.Unlock()
		return orders.Order{}, fmt.Errorf("%w: %s cannot %s", ErrInvalidTransition, s.active.Status, orders.ActionAccept)
	}
	if err := s.beginLocked(id, orders.ActionAccept); err != nil {
		s.mu.Unlock()
		return orders.Order{}, err
	}
	s.mu.Unlock()

	remote, err := s.backend.Accept(ctx, id)
	now := s.now()

	s.mu.Lock()
	delete(s.inflight, id)
	if err != nil {
		s.lastErr = fmt.Sprintf("accept %s: %v", id, err)
		s.mu.Unlock()
		return orders.Order{}, s.failed(ctx, id, orders.ActionAccept, "", err)
	}

	var o orders.Order
	switch {
	case s.isActiveLocked(id):
		o = *s.active
		s.active = nil
	case s.tracked[id] != nil:
		o = *s.tracked[id]
	default:
		o = orders.Order{ID: id}
	}
	if remote.ID == id {
		o = mergeRemote(o, remote)
	}
	o.Status = orders.StatusAccepted
	o.AcceptedAt = &now
	s.lastErr = ""
	s.trackLocked(o)
	next, _ := s.promoteLocked()
	out := s.tracked[id].Clone()
	s.mu.Unlock()

	log.Printf("notify: order %s accepted, countdown %s", id, Format(CountdownDuration))
	s.record(ctx, orders.Decision{OrderID: id, Action: orders.ActionAccept, OK: true})
	s.emit(
		Change{Kind: ChangeOrder, OrderID: id, Status: orders.StatusAccepted},
		Change{Kind: ChangeRefreshOrders, OrderID: id},
		Change{Kind: ChangeActive, OrderID: next},
	)
	return out, nil
}

// Reject validates the reason locally before any network call. Like Accept,
// a failed call leaves the order active.
func (s *Service) Reject(ctx context.Context, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	if !orders.ValidRejectReason(reason) {
		return ErrUnknownReason
	}

	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return ErrNoActiveOrder
	}
	id := s.active.ID
	if !orders.Allows(s.active.Status, orders.ActionReject) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s cannot %s", ErrInvalidTransition, s.active.Status, orders.ActionReject)
	}
	if err := s.beginLocked(id, orders.ActionReject); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	err := s.backend.Reject(ctx, id, reason)

	s.mu.Lock()
	delete(s.inflight, id)
	if err != nil {
		s.lastErr = fmt.Sprintf("reject %s: %v", id, err)
		s.mu.Unlock()
		return s.failed(ctx, id, orders.ActionReject, reason, err)
	}
	switch {
	case s.isActiveLocked(id):
		o := *s.active
		o.Status = orders.StatusCancelled
		o.RejectReason = reason
		s.active = nil
		s.trackLocked(o)
	case s.tracked[id] == nil:
		s.trackLocked(orders.Order{ID: id, Status: orders.StatusCancelled, RejectReason: reason})
	}
	s.lastErr = ""
	next, _ := s.promoteLocked()
	s.mu.Unlock()

	log.Printf("notify: order %s rejected: %s", id, reason)
	s.record(ctx, orders.Decision{OrderID: id, Action: orders.ActionReject, Reason: reason, OK: true})
	s.emit(Change{Kind: ChangeActive, OrderID: next})
	return nil
}

// Pack marks an accepted order packed, stores the OTP and stops its countdown.
func (s *Service) Pack(ctx context.Context, orderID string) (orders.Order, error) {
	s.mu.Lock()
	t := s.tracked[orderID]
	if t == nil {
		s.mu.Unlock()
		return orders.Order{}, ErrOrderNotFound
	}
	if !orders.Allows(t.Status, orders.ActionPack) || !orders.CanTransition(t.Status, orders.StatusPacked) {
		s.mu.Unlock()
		return orders.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, orders.StatusPacked)
	}
	if err := s.beginLocked(orderID, orders.ActionPack); err != nil {
		s.mu.Unlock()
		return orders.Order{}, err
	}
	s.mu.Unlock()

	packed, err := s.backend.Pack(ctx, orderID)

	s.mu.Lock()
	delete(s.inflight, orderID)
	if err != nil {
		s.lastErr = fmt.Sprintf("pack %s: %v", orderID, err)
		s.mu.Unlock()
		return orders.Order{}, s.failed(ctx, orderID, orders.ActionPack, "", err)
	}
	o := orders.Order{ID: orderID}
	if t := s.tracked[orderID]; t != nil {
		o = *t
	}
	o.Status = orders.StatusPacked
	if packed.Status == orders.StatusPackedWaiting {
		o.Status = orders.StatusPackedWaiting
	}
	o.OTP = packed.OTP
	s.lastErr = ""
	s.trackLocked(o)
	out := s.tracked[orderID].Clone()
	s.mu.Unlock()

	if packed.OTP == "" {
		log.Printf("notify: pack %s: backend returned no otp", orderID)
	}
	s.record(ctx, orders.Decision{OrderID: orderID, Action: orders.ActionPack, OTP: packed.OTP, OK: true})
	s.emit(Change{Kind: ChangeOrder, OrderID: orderID, Status: out.Status})
	return out, nil
}

// VerifyReturn: returned -> verified_return. Local only.
func (s *Service) VerifyReturn(ctx context.Context, orderID string) (orders.Order, error) {
	return s.localTransition(ctx, orderID, orders.StatusVerifiedReturn, orders.ActionVerifyReturn)
}

// AcceptReturn: verified_return -> return_accepted. Local only.
func (s *Service) AcceptReturn(ctx context.Context, orderID string) (orders.Order, error) {
	return s.localTransition(ctx, orderID, orders.StatusReturnAccepted, orders.ActionAcceptReturn)
}

func (s *Service) localTransition(ctx context.Context, orderID string, to orders.Status, a orders.Action) (orders.Order, error) {
	s.mu.Lock()
	t := s.tracked[orderID]
	if t == nil {
		s.mu.Unlock()
		return orders.Order{}, ErrOrderNotFound
	}
	if !orders.Allows(t.Status, a) || !orders.CanTransition(t.Status, to) {
		s.mu.Unlock()
		return orders.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}
	o := *t
	o.Status = to
	s.trackLocked(o)
	out := s.tracked[orderID].Clone()
	s.mu.Unlock()

	s.record(ctx, orders.Decision{OrderID: orderID, Action: a, OK: true})
	s.emit(Change{Kind: ChangeOrder, OrderID: orderID, Status: to})
	return out, nil
}

func (s *Service) beginLocked(id string, a orders.Action) error {
	if cur, busy := s.inflight[id]; busy {
		return fmt.Errorf("%w: %s %s", ErrInFlight, cur, id)
	}
	s.inflight[id] = a
	return nil
}

func (s *Service) failed(ctx context.Context, id string, a orders.Action, reason string, err error) error {
	log.Printf("notify: %s %s failed: %v", a, id, err)
	s.record(ctx, orders.Decision{OrderID: id, Action: a, Reason: reason, Error: err.Error()})
	s.emit(Change{Kind: ChangeError, OrderID: id, Error: err.Error()})
	return fmt.Errorf("%s order %s: %w", a, id, err)
}

func (s *Service) isActiveLocked(id string) bool {
	return s.active != nil && s.active.ID == id
}

// promoteLocked fills an empty active slot from the queue.
func (s *Service) promoteLocked() (string, bool) {
	if s.active != nil {
		return s.active.ID, false
	}
	next, ok := s.queue.DequeueNext()
	if !ok {
		return "", false
	}
	s.active = &next
	return next.ID, true
}

// trackLocked stores o and keeps its countdown in step with its status.
func (s *Service) trackLocked(o orders.Order) {
	prev := s.tracked[o.ID]
	if o.Status == orders.StatusAccepted {
		if o.AcceptedAt == nil && prev != nil && prev.AcceptedAt != nil {
			o.AcceptedAt = prev.AcceptedAt
		}
		if o.AcceptedAt != nil {
			s.timers.Start(o.ID, *o.AcceptedAt)
		}
	} else {
		o.AcceptedAt = nil
		s.timers.Cancel(o.ID)
	}
	if o.OTP == "" && prev != nil {
		o.OTP = prev.OTP
	}
	s.tracked[o.ID] = &o
}

// mergeRemote overlays the fields the backend filled in on top of the local copy.
func mergeRemote(local, remote orders.Order) orders.Order {
	out := local
	if len(remote.Items) > 0 {
		out.Items = remote.Items
	}
	if !remote.TotalAmount.IsZero() {
		out.TotalAmount = remote.TotalAmount
	}
	if remote.PaymentStatus != "" {
		out.PaymentStatus = remote.PaymentStatus
	}
	if remote.DeliveryAddress != (orders.Address{}) {
		out.DeliveryAddress = remote.DeliveryAddress
	}
	if !remote.CreatedAt.IsZero() {
		out.CreatedAt = remote.CreatedAt
	}
	if remote.OTP != "" {
		out.OTP = remote.OTP
	}
	return out
}

func (s *Service) expired(orderID string) {
	log.Printf("notify: countdown for %s expired", orderID)
	s.emit(Change{Kind: ChangeExpired, OrderID: orderID})
}

func (s *Service) record(ctx context.Context, d orders.Decision) {
	result := "ok"
	if !d.OK {
		result = "failed"
	}
	decisionsTotal.WithLabelValues(string(d.Action), result).Inc()
	if len(s.sinks) == 0 {
		return
	}
	d.ID = uuid.NewString()
	d.MerchantID = s.merchantID
	d.DecidedAt = s.now().UTC()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, d); err != nil {
			log.Printf("notify: record %s %s: %v", d.Action, d.OrderID, err)
		}
	}
}

func (s *Service) emit(changes ...Change) {
	s.updateMetrics()
	if s.onChange == nil {
		return
	}
	for _, c := range changes {
		s.onChange(c)
	}
}

type CountdownView struct {
	RemainingMs int64  `json:"remaining_ms"`
	Display     string `json:"display"`
	Running     bool   `json:"running"`
	Expired     bool   `json:"expired"`
}

type OrderView struct {
	orders.Order
	Display   orders.Display  `json:"display"`
	Actions   []orders.Action `json:"actions"`
	Countdown *CountdownView  `json:"countdown,omitempty"`
}

type Snapshot struct {
	Active    *OrderView               `json:"active"`
	Queued    []string                 `json:"queued"`
	Orders    []OrderView              `json:"orders"`
	InFlight  map[string]orders.Action `json:"in_flight"`
	LastError string                   `json:"last_error,omitempty"`
}

func (s *Service) Snapshot() Snapshot {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Queued:    s.queue.IDs(),
		Orders:    make([]OrderView, 0, len(s.tracked)),
		InFlight:  make(map[string]orders.Action, len(s.inflight)),
		LastError: s.lastErr,
	}
	if s.active != nil {
		v := s.viewLocked(*s.active, now)
		snap.Active = &v
	}
	for _, o := range s.tracked {
		snap.Orders = append(snap.Orders, s.viewLocked(*o, now))
	}
	sort.Slice(snap.Orders, func(i, j int) bool {
		a, b := snap.Orders[i], snap.Orders[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	for id, a := range s.inflight {
		snap.InFlight[id] = a
	}
	return snap
}

// Order returns the view of one active, queued or tracked order.
func (s *Service) Order(orderID string) (OrderView, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isActiveLocked(orderID) {
		return s.viewLocked(*s.active, now), nil
	}
	if q, ok := s.queue.Get(orderID); ok {
		return s.viewLocked(q, now), nil
	}
	if t := s.tracked[orderID]; t != nil {
		return s.viewLocked(*t, now), nil
	}
	return OrderView{}, ErrOrderNotFound
}

func (s *Service) Countdown(orderID string) (CountdownView, error) {
	v, err := s.Order(orderID)
	if err != nil {
		return CountdownView{}, err
	}
	if v.Countdown == nil {
		return CountdownView{}, ErrNoCountdown
	}
	return *v.Countdown, nil
}

func (s *Service) viewLocked(o orders.Order, now time.Time) OrderView {
	v := OrderView{
		Order:   o.Clone(),
		Display: orders.DisplayFor(o.Status),
		Actions: orders.Actions(o.Status),
	}
	if o.Status == orders.StatusAccepted && o.AcceptedAt != nil {
		rem := Remaining(*o.AcceptedAt, now)
		v.Countdown = &CountdownView{
			RemainingMs: rem.Milliseconds(),
			Display:     Format(rem),
			Running:     rem > 0 && s.timers.Running(o.ID),
			Expired:     rem == 0,
		}
	}
	return v
}
