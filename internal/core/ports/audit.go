package ports

import (
	"context"

	"github.com/rollertrack/access-api/internal/core/domain"
)

// AuditRecorder accepts audit events for asynchronous persistence.
// Record must not block the caller beyond queue backpressure.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditStore persists audit events.
type AuditStore interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}
