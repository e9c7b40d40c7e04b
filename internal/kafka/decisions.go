package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/ariefcatur/go-merchant-orders/internal/orders"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type publisher interface {
	Publish(key, value []byte, headers ...kafka.Header)
}

// DecisionPublisher mengirim keputusan operator sebagai envelope v1 ke topic decisions.
type DecisionPublisher struct {
	Producer    publisher
	ServiceName string
}

func (p *DecisionPublisher) Record(_ context.Context, d orders.Decision) error {
	evType := orders.DecisionEvent(d)
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     evType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.ServiceName,
		CorrelationID: d.OrderID,
		Payload:       MustMarshal(d),
	}
	p.Producer.Publish(orders.PartitionKey(d.OrderID), MustMarshal(ev),
		kafka.Header{Key: "x-event-type", Value: []byte(evType)},
		kafka.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
	return nil
}
