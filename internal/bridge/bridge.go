package bridge

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ariefcatur/go-merchant-orders/internal/orders"
	"github.com/google/uuid"
)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return "disconnected"
}

var ErrNoIdentity = errors.New("bridge: merchant id required")

// Identity menandai koneksi: siapa (merchant) dan sebagai apa (role).
type Identity struct {
	MerchantID string `json:"merchant_id"`
	Role       string `json:"role"`
	SessionID  string `json:"session_id,omitempty"`
}

// Conn is one physical connection. Receive blocks until the next envelope.
type Conn interface {
	Receive(ctx context.Context) (orders.Envelope, error)
	Close() error
}

type Transport interface {
	Dial(ctx context.Context, id Identity) (Conn, error)
}

// FlagStore persists the operator's online/offline toggle.
type FlagStore interface {
	SetOnline(ctx context.Context, merchantID string, online bool) error
	Online(ctx context.Context, merchantID string) (bool, error)
}

type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
}

type Handler func(orders.Order)

type Subscription struct {
	Event string
	id    uint64
}

type Options struct {
	Flags          FlagStore
	Dedup          Deduper
	ReconnectDelay time.Duration
}

type subscriber struct {
	id uint64
	h  Handler
}

// Bridge menjaga paling banyak satu koneksi per proses. Subscriber tetap terpasang
// walau transport reconnect.
type Bridge struct {
	transport Transport
	opts      Options

	// opMu serializes Connect/Disconnect/Close including the flag write.
	opMu sync.Mutex

	mu       sync.Mutex
	state    State
	identity Identity
	cancel   context.CancelFunc
	done     chan struct{}

	subMu  sync.RWMutex
	subs   map[string][]subscriber
	nextID uint64
}

func New(t Transport, opts Options) *Bridge {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 3 * time.Second
	}
	return &Bridge{
		transport: t,
		opts:      opts,
		subs:      map[string][]subscriber{},
	}
}

func (b *Bridge) On(event string, h Handler) Subscription {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.nextID++
	b.subs[event] = append(b.subs[event], subscriber{id: b.nextID, h: h})
	return Subscription{Event: event, id: b.nextID}
}

func (b *Bridge) Off(s Subscription) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	list := b.subs[s.Event]
	for i, x := range list {
		if x.id == s.id {
			b.subs[s.Event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Online mirrors the persisted flag: true from Connect until Disconnect.
func (b *Bridge) Online() bool { return b.State() != StateDisconnected }

func (b *Bridge) Identity() Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.identity
}

// Connect starts the connection loop. Already connected (or connecting) -> no-op.
func (b *Bridge) Connect(ctx context.Context, id Identity) error {
	if id.MerchantID == "" {
		return ErrNoIdentity
	}
	b.opMu.Lock()
	defer b.opMu.Unlock()

	b.mu.Lock()
	if b.state != StateDisconnected {
		log.Printf("bridge: already %s as %s, ignoring connect", b.state, b.identity.MerchantID)
		b.mu.Unlock()
		return nil
	}
	if id.SessionID == "" {
		id.SessionID = uuid.NewString()
	}
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.state = StateConnecting
	b.identity = id
	b.cancel = cancel
	b.done = done
	b.mu.Unlock()

	go b.run(runCtx, id, done)
	b.persist(ctx, id.MerchantID, true)
	return nil
}

// Disconnect stops the loop, stores online=false and waits for the loop to exit. Idempotent.
func (b *Bridge) Disconnect(ctx context.Context) error {
	return b.stop(ctx, true)
}

// Close stops the loop but leaves the persisted flag alone, so the next
// process start can Restore the session.
func (b *Bridge) Close(ctx context.Context) error {
	return b.stop(ctx, false)
}

func (b *Bridge) stop(ctx context.Context, offline bool) error {
	b.opMu.Lock()
	defer b.opMu.Unlock()

	b.mu.Lock()
	if b.state == StateDisconnected {
		b.mu.Unlock()
		return nil
	}
	cancel, done, id := b.cancel, b.done, b.identity
	b.mu.Unlock()

	if offline {
		b.persist(ctx, id.MerchantID, false)
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Restore reconnects when the persisted flag says the operator was online.
func (b *Bridge) Restore(ctx context.Context, id Identity) (bool, error) {
	if b.opts.Flags == nil {
		return false, nil
	}
	online, err := b.opts.Flags.Online(ctx, id.MerchantID)
	if err != nil {
		return false, err
	}
	if !online {
		return false, nil
	}
	return true, b.Connect(ctx, id)
}

func (b *Bridge) persist(ctx context.Context, merchantID string, online bool) {
	if b.opts.Flags == nil {
		return
	}
	if err := b.opts.Flags.SetOnline(ctx, merchantID, online); err != nil {
		log.Printf("bridge: persist online=%v for %s: %v", online, merchantID, err)
	}
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

func (b *Bridge) run(ctx context.Context, id Identity, done chan struct{}) {
	defer func() {
		b.mu.Lock()
		b.state = StateDisconnected
		b.cancel = nil
		b.mu.Unlock()
		close(done)
		log.Printf("bridge: disconnected %s", id.MerchantID)
	}()

	for {
		conn, err := b.transport.Dial(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("bridge: dial as %s/%s: %v (retry in %s)", id.MerchantID, id.Role, err, b.opts.ReconnectDelay)
			if !sleep(ctx, b.opts.ReconnectDelay) {
				return
			}
			continue
		}

		b.setState(StateConnected)
		log.Printf("bridge: connected as %s/%s session=%s", id.MerchantID, id.Role, id.SessionID)
		err = b.pump(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		b.setState(StateConnecting)
		log.Printf("bridge: connection lost: %v (retry in %s)", err, b.opts.ReconnectDelay)
		if !sleep(ctx, b.opts.ReconnectDelay) {
			return
		}
	}
}

func (b *Bridge) pump(ctx context.Context, conn Conn) error {
	// ReadMessage di transport tidak kenal ctx; tutup conn supaya Receive balik.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		env, err := conn.Receive(ctx)
		if err != nil {
			return err
		}
		b.dispatch(ctx, env)
	}
}

func (b *Bridge) dispatch(ctx context.Context, env orders.Envelope) {
	if env.EventType != orders.EventNewOrder && env.EventType != orders.EventOrderUpdate {
		return
	}
	if b.opts.Dedup != nil && env.EventID != "" {
		first, err := b.opts.Dedup.FirstSeen(ctx, env.EventID)
		if err != nil {
			log.Printf("bridge: dedup %s: %v", env.EventID, err)
		} else if !first {
			return
		}
	}
	o, err := env.DecodeOrder()
	if err != nil {
		log.Printf("bridge: drop event %s: %v", env.EventID, err)
		return
	}

	b.subMu.RLock()
	list := append([]subscriber(nil), b.subs[env.EventType]...)
	b.subMu.RUnlock()
	for _, s := range list {
		s.h(o.Clone())
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
