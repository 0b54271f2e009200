package audit

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "order-backend/internal/kafka"
	"order-backend/internal/redisx"
)

// Writer consumes audit jobs and appends them to the audit file. Delivery is
// at-least-once, so jobs are deduplicated by event id in redis before writing.
type Writer struct {
	Log         *slog.Logger
	Redis       *redis.Client
	Path        string
	ServiceName string
}

// Handle is installed as the consumer handler for the audit topic.
func (w *Writer) Handle(ctx context.Context, m kafkago.Message) error {
	job, err := kafkax.Decode[Job](m.Value)
	if err != nil {
		// malformed message: log and commit, retrying cannot fix it
		w.Log.Error("drop malformed audit message", "err", err)
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, w.ServiceName, job.EventID)
	if w.Redis != nil {
		if exists, _ := redisx.Exists(ctx, w.Redis, dkey); exists {
			return nil
		}
	}

	if err := w.append(job); err != nil {
		return err
	}
	if w.Redis != nil {
		_ = w.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	w.Log.Info("audit recorded", "order_id", job.OrderID, "status", job.Status)
	return nil
}

func (w *Writer) append(job Job) error {
	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(job.Line()); err != nil {
		return err
	}
	return f.Sync()
}
