package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit actions emitted by the core services.
const (
	ActionLogin               = "login"
	ActionExecuteTask         = "execute_task"
	ActionRequestPostponement = "request_postponement"
	ActionDecidePostponement  = "decide_postponement"
	ActionCreate              = "create"
	ActionUpdate              = "update"
	ActionDelete              = "delete"
)

// AuditEvent records a mutation performed through the API: who did what to
// which entity. Services emit these after their writes commit; handlers
// decide what to do with them.
type AuditEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// ActorID is the user who performed the action
	ActorID uuid.UUID `json:"actor_id"`

	// Action names what happened, e.g. "execute_task"
	Action string `json:"action"`

	// Entity is the kind of entity acted on, e.g. "pm_task"
	Entity string `json:"entity"`

	// EntityID identifies the affected entity
	EntityID string `json:"entity_id"`

	// OccurredAt is the timestamp when the event was created
	OccurredAt time.Time `json:"occurred_at"`
}

// NewAuditEvent creates an AuditEvent stamped with a fresh ID and the
// current time.
func NewAuditEvent(actorID uuid.UUID, action, entity, entityID string) *AuditEvent {
	return &AuditEvent{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		Entity:     entity,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *AuditEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *AuditEvent) error
}
