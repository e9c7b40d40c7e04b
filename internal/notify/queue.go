package notify

import "github.com/ariefcatur/go-merchant-orders/internal/orders"

// Queue is a FIFO of orders waiting for a decision, deduplicated by id.
// Not safe for concurrent use; Service serializes access.
type Queue struct {
	items []orders.Order
	index map[string]struct{}
}

func NewQueue() *Queue {
	return &Queue{index: map[string]struct{}{}}
}

// Enqueue appends o unless its id is already queued.
func (q *Queue) Enqueue(o orders.Order) bool {
	if _, ok := q.index[o.ID]; ok {
		return false
	}
	q.index[o.ID] = struct{}{}
	q.items = append(q.items, o)
	return true
}

// Reconcile merges a backlog snapshot. Entries already queued keep their position;
// the rest are appended in snapshot order.
func (q *Queue) Reconcile(backlog []orders.Order) int {
	n := 0
	for _, o := range backlog {
		if q.Enqueue(o) {
			n++
		}
	}
	return n
}

func (q *Queue) DequeueNext() (orders.Order, bool) {
	if len(q.items) == 0 {
		return orders.Order{}, false
	}
	o := q.items[0]
	q.items[0] = orders.Order{}
	q.items = q.items[1:]
	delete(q.index, o.ID)
	return o, true
}

func (q *Queue) Remove(id string) bool {
	if _, ok := q.index[id]; !ok {
		return false
	}
	for i := range q.items {
		if q.items[i].ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	delete(q.index, id)
	return true
}

// Update replaces the payload of a queued order in place.
func (q *Queue) Update(o orders.Order) bool {
	if _, ok := q.index[o.ID]; !ok {
		return false
	}
	for i := range q.items {
		if q.items[i].ID == o.ID {
			q.items[i] = o
			return true
		}
	}
	return false
}

func (q *Queue) Get(id string) (orders.Order, bool) {
	if _, ok := q.index[id]; !ok {
		return orders.Order{}, false
	}
	for _, o := range q.items {
		if o.ID == id {
			return o, true
		}
	}
	return orders.Order{}, false
}

func (q *Queue) Contains(id string) bool {
	_, ok := q.index[id]
	return ok
}

func (q *Queue) Len() int { return len(q.items) }

func (q *Queue) IDs() []string {
	out := make([]string, 0, len(q.items))
	for _, o := range q.items {
		out = append(out, o.ID)
	}
	return out
}

func (q *Queue) Reset() {
	q.items = nil
	q.index = map[string]struct{}{}
}
