package kafka

import (
	"context"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"
)

// Consumer membaca satu topic secara berurutan (tanpa worker pool):
// notifikasi order harus diproses sesuai urutan kedatangan.
type Consumer struct {
	r *kafka.Reader
}

func NewConsumer(brokers []string, group, topic string) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
		StartOffset:    kafka.LastOffset,
	})
	return &Consumer{r: r}
}

// Fetch blocks until the next message arrives or ctx is done.
func (c *Consumer) Fetch(ctx context.Context) (kafka.Message, error) {
	m, err := c.r.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return kafka.Message{}, ctx.Err()
		}
		if errors.Is(err, io.EOF) {
			return kafka.Message{}, io.ErrUnexpectedEOF
		}
		return kafka.Message{}, err
	}
	return m, nil
}

// Commit hanya dipanggil setelah pesan selesai diproses.
func (c *Consumer) Commit(ctx context.Context, m kafka.Message) error {
	return c.r.CommitMessages(ctx, m)
}

func (c *Consumer) Close() error { return c.r.Close() }
