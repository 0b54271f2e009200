package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConsumer(commit func(ctx context.Context, msgs ...kafka.Message) error) *Consumer {
	return &Consumer{
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: 1,
		commit:  commit,
	}
}

func runWork(t *testing.T, c *Consumer, jobs chan kafka.Message, h Handler) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		c.work(context.Background(), jobs, h)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not drain the job channel")
	}
}

func TestWork_CommitsHandledMessages(t *testing.T) {
	var committed []int64
	c := testConsumer(func(_ context.Context, msgs ...kafka.Message) error {
		for _, m := range msgs {
			committed = append(committed, m.Offset)
		}
		return nil
	})

	jobs := make(chan kafka.Message, 4)
	for i := 0; i < 3; i++ {
		jobs <- kafka.Message{Offset: int64(i)}
	}
	close(jobs)

	runWork(t, c, jobs, func(context.Context, kafka.Message) error { return nil })
	assert.Equal(t, []int64{0, 1, 2}, committed)
}

func TestWork_HandlerFailureSkipsCommitAndKeepsDraining(t *testing.T) {
	var committed []int64
	c := testConsumer(func(_ context.Context, msgs ...kafka.Message) error {
		for _, m := range msgs {
			committed = append(committed, m.Offset)
		}
		return nil
	})

	jobs := make(chan kafka.Message, 8)
	for i := 0; i < 8; i++ {
		jobs <- kafka.Message{Offset: int64(i)}
	}
	close(jobs)

	// every odd offset fails; the worker must still reach the end
	runWork(t, c, jobs, func(_ context.Context, m kafka.Message) error {
		if m.Offset%2 == 1 {
			return errors.New("poison message")
		}
		return nil
	})
	assert.Equal(t, []int64{0, 2, 4, 6}, committed, "failed messages stay uncommitted")
}

func TestWork_CommitFailureDoesNotWedgeWorker(t *testing.T) {
	calls := 0
	c := testConsumer(func(context.Context, ...kafka.Message) error {
		calls++
		return errors.New("broker gone")
	})

	jobs := make(chan kafka.Message, 8)
	for i := 0; i < 8; i++ {
		jobs <- kafka.Message{Offset: int64(i)}
	}
	close(jobs)

	runWork(t, c, jobs, func(context.Context, kafka.Message) error { return nil })
	require.Equal(t, 8, calls, "every message gets its commit attempt despite prior failures")
}
