package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rollertrack/access-api/internal/core/domain"
)

const auditCollection = "audit_events"

// AuditRepository persists security audit events.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	EmployeeID string    `bson:"employee_id"`
	Email      string    `bson:"email,omitempty"`
	ActorID    string    `bson:"actor_id,omitempty"`
	Action     string    `bson:"action"`
	Outcome    string    `bson:"outcome"`
	At         time.Time `bson:"at"`
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	doc := auditDoc{
		EmployeeID: event.EmployeeID,
		Email:      event.Email,
		ActorID:    event.ActorID,
		Action:     string(event.Action),
		Outcome:    event.Outcome,
		At:         event.At,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
