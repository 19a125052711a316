// Package audit records tenant lifecycle actions performed through the
// console. Publishing is best effort: callers log failures and carry on.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmehdipour/tenant-console/internal/metrics"
	"github.com/jmehdipour/tenant-console/internal/util"
)

const (
	TypeTenantCreated      = "tenant.created"
	TypeTenantAdminCreated = "tenant.admin_created"
)

// Event is the payload written to the audit topic.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	TenantID   string    `json:"tenantId"`
	RequestID  string    `json:"requestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent stamps a new event with a ULID and the current time.
func NewEvent(typ, tenantID, requestID string) Event {
	now := time.Now().UTC()
	return Event{
		ID:         util.NewIDAt(now),
		Type:       typ,
		TenantID:   tenantID,
		RequestID:  requestID,
		OccurredAt: now,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards events. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Writer is the transport a StreamPublisher writes to (kafka.Producer).
type Writer interface {
	Write(ctx context.Context, key, value []byte) error
	Close() error
}

// StreamPublisher serializes events as JSON keyed by tenant id so that all
// events for one tenant land on the same partition.
type StreamPublisher struct {
	w       Writer
	timeout time.Duration
}

func NewStreamPublisher(w Writer, timeout time.Duration) *StreamPublisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &StreamPublisher{w: w, timeout: timeout}
}

func (p *StreamPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.w.Write(ctx, []byte(ev.TenantID), payload); err != nil {
		metrics.AuditEvents.WithLabelValues(ev.Type, "failed").Inc()
		return fmt.Errorf("write audit event %s: %w", ev.ID, err)
	}

	metrics.AuditEvents.WithLabelValues(ev.Type, "published").Inc()
	return nil
}

func (p *StreamPublisher) Close() error { return p.w.Close() }
