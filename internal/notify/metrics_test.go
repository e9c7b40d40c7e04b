package notify

import (
	"errors"
	"testing"

	"github.com/ariefcatur/go-merchant-orders/internal/orders"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsFollowQueue(t *testing.T) {
	f := newFixture()
	f.svc.HandleNewOrder(placed("o1"))
	f.svc.HandleNewOrder(placed("o2"))
	f.svc.HandleNewOrder(placed("o3"))

	assert.Equal(t, 2.0, testutil.ToFloat64(queueDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(activeOrders))

	acceptedBefore := testutil.ToFloat64(decisionsTotal.WithLabelValues("accept", "ok"))
	_, err := f.svc.Accept(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, acceptedBefore+1, testutil.ToFloat64(decisionsTotal.WithLabelValues("accept", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(queueDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(countdownsRunning))
	assert.Equal(t, 0.0, testutil.ToFloat64(requestsInFlight))
}

func TestMetricsCountFailedDecisions(t *testing.T) {
	f := newFixture()
	f.be.rejectErr = errors.New("timeout")
	f.svc.HandleNewOrder(placed("o1"))

	before := testutil.ToFloat64(decisionsTotal.WithLabelValues(string(orders.ActionReject), "failed"))
	require.Error(t, f.svc.Reject(f.ctx, orders.ReasonOther))
	assert.Equal(t, before+1, testutil.ToFloat64(decisionsTotal.WithLabelValues(string(orders.ActionReject), "failed")))
}
