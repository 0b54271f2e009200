package audit

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"

	kafkax "order-backend/internal/kafka"
)

// Notifier accepts a job for out-of-band recording. Implementations must not
// block the caller on delivery.
type Notifier interface {
	Submit(ctx context.Context, job Job) error
}

var ErrQueueFull = errors.New("audit queue full")

// KafkaNotifier hands jobs to the buffered async producer. Submit returns
// immediately; delivery happens on the producer's flush goroutine.
type KafkaNotifier struct {
	Producer *kafkax.Producer
}

func (n *KafkaNotifier) Submit(_ context.Context, job Job) error {
	ok := n.Producer.Publish(job.PartitionKey(), kafkax.MustMarshal(job),
		kafkago.Header{Key: "x-event-id", Value: []byte(job.EventID)},
	)
	if !ok {
		return ErrQueueFull
	}
	return nil
}
