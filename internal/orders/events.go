package orders

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	EventNewOrder    = "newOrder"
	EventOrderUpdate = "orderUpdate"

	// keputusan operator, dipublish ke broker
	EventOrderAccepted       = "OrderAccepted"
	EventOrderRejected       = "OrderRejected"
	EventOrderPacked         = "OrderPacked"
	EventReturnVerified      = "ReturnVerified"
	EventReturnAccepted      = "ReturnAccepted"
	EventOrderDecisionFailed = "OrderDecisionFailed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "merchant-dashboard"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

// OrderPayload dipakai newOrder & orderUpdate.
type OrderPayload struct {
	MerchantID string `json:"merchant_id,omitempty"`
	Order      Order  `json:"order"`
}

// DecodeOrder pulls the order out of a newOrder/orderUpdate envelope.
func (e Envelope) DecodeOrder() (Order, error) {
	var p OrderPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return Order{}, fmt.Errorf("decode %s payload: %w", e.EventType, err)
	}
	if p.Order.ID == "" {
		return Order{}, fmt.Errorf("decode %s payload: missing order id", e.EventType)
	}
	return p.Order, nil
}

// DecisionEvent maps an operator decision to its broker event type.
func DecisionEvent(d Decision) string {
	if !d.OK {
		return EventOrderDecisionFailed
	}
	switch d.Action {
	case ActionAccept:
		return EventOrderAccepted
	case ActionReject:
		return EventOrderRejected
	case ActionPack:
		return EventOrderPacked
	case ActionVerifyReturn:
		return EventReturnVerified
	case ActionAcceptReturn:
		return EventReturnAccepted
	}
	return EventOrderDecisionFailed
}
