package audit

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "order-backend/internal/kafka"
	"order-backend/internal/orders"
)

func testWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "order_events.txt")
	return &Writer{
		Log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Path:        path,
		ServiceName: "auditor-test",
	}, path
}

func TestWriter_AppendsLines(t *testing.T) {
	w, path := testWriter(t)

	j1 := NewJob(7, orders.StatusCompleted, time.Date(2024, 3, 9, 14, 30, 5, 0, time.Local))
	j2 := NewJob(8, orders.StatusCancelled, time.Date(2024, 3, 9, 14, 31, 0, 0, time.Local))

	require.NoError(t, w.Handle(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(j1)}))
	require.NoError(t, w.Handle(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(j2)}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, j1.Line()+j2.Line(), string(b))
}

func TestWriter_DropsMalformedMessage(t *testing.T) {
	w, path := testWriter(t)

	// returns nil so the offset is committed and the message is not retried
	require.NoError(t, w.Handle(context.Background(), kafkago.Message{Value: []byte("{not json")}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing should be written for a malformed message")
}
