package audit

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"order-backend/internal/orders"
)

const (
	// Topic carries one message per committed order status change.
	Topic = "order.status.changed"

	// TimeLayout is second-precision and human readable; the audit file format
	// depends on it.
	TimeLayout = "2006-01-02 15:04:05"
)

// Job is the fire-and-forget payload recorded for every status change.
type Job struct {
	EventID   string `json:"event_id"`
	OrderID   int64  `json:"order_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func NewJob(orderID int64, status orders.Status, at time.Time) Job {
	return Job{
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		Status:    string(status),
		Timestamp: at.Format(TimeLayout),
	}
}

// Line renders the append-only audit record.
func (j Job) Line() string {
	return fmt.Sprintf("Order %d change status on %s at %s\n", j.OrderID, j.Status, j.Timestamp)
}

// PartitionKey keeps all events of one order on one partition, so the audit
// file preserves per-order ordering.
func (j Job) PartitionKey() []byte {
	return []byte(strconv.FormatInt(j.OrderID, 10))
}
