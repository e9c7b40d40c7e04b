package bridge

import (
	"context"
	"log"

	kafkax "github.com/ariefcatur/go-merchant-orders/internal/kafka"
	"github.com/ariefcatur/go-merchant-orders/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
)

// Kafka reads push events from the merchant orders topic. Key = merchant_id.
type Kafka struct {
	Brokers []string
	Topic   string
}

func (k *Kafka) Dial(_ context.Context, id Identity) (Conn, error) {
	topic := k.Topic
	if topic == "" {
		topic = orders.TopicMerchantOrders
	}
	c := kafkax.NewConsumer(k.Brokers, "merchant-"+id.MerchantID, topic)
	return &kafkaConn{c: c, merchantID: id.MerchantID}, nil
}

type kafkaConn struct {
	c          *kafkax.Consumer
	merchantID string
	pending    *kafkago.Message
}

// Receive meng-commit pesan sebelumnya dulu: pesan dianggap selesai setelah
// handler bridge kembali (at-least-once, duplikat ditangani dedup).
func (k *kafkaConn) Receive(ctx context.Context) (orders.Envelope, error) {
	for {
		if k.pending != nil {
			if err := k.c.Commit(ctx, *k.pending); err != nil {
				return orders.Envelope{}, err
			}
			k.pending = nil
		}
		m, err := k.c.Fetch(ctx)
		if err != nil {
			return orders.Envelope{}, err
		}
		k.pending = &m
		if string(m.Key) != k.merchantID {
			continue
		}
		var env orders.Envelope
		if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
			log.Printf("bridge kafka: bad message at offset %d: %v", m.Offset, err)
			continue
		}
		if env.EventType == "" {
			env.EventType = kafkax.Header(m, "x-event-type")
		}
		return env, nil
	}
}

func (k *kafkaConn) Close() error { return k.c.Close() }
