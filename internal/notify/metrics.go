package notify

import "github.com/prometheus/client_golang/prometheus"

var (
	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "merchant_orders_queue_depth",
			Help: "Number of pending orders waiting behind the active one",
		},
	)

	activeOrders = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "merchant_orders_active",
			Help: "1 while an order is waiting for accept/reject",
		},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "merchant_orders_requests_in_flight",
			Help: "Backend calls currently in flight",
		},
	)

	countdownsRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "merchant_orders_countdowns_running",
			Help: "Accepted orders with a running preparation countdown",
		},
	)

	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merchant_orders_decisions_total",
			Help: "Operator decisions by action and result",
		},
		[]string{"action", "result"},
	)
)

func init() {
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(activeOrders)
	prometheus.MustRegister(requestsInFlight)
	prometheus.MustRegister(countdownsRunning)
	prometheus.MustRegister(decisionsTotal)
}

// updateMetrics copies the current queue state into the gauges.
func (s *Service) updateMetrics() {
	s.mu.Lock()
	depth, inflight := s.queue.Len(), len(s.inflight)
	active := 0
	if s.active != nil {
		active = 1
	}
	s.mu.Unlock()

	queueDepth.Set(float64(depth))
	activeOrders.Set(float64(active))
	requestsInFlight.Set(float64(inflight))
	countdownsRunning.Set(float64(s.timers.Len()))
}
