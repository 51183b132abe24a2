package telemetry

import (
	"context"
	"log"
	"time"
)

// Audit actions emitted by the messaging core.
const (
	ActionSlotBooked        = "slot_booked"
	ActionMessageAnswered   = "message_answered"
	ActionCreditUsed        = "credit_used"
	ActionCreditGranted     = "credit_granted"
	ActionWeeklyCreditReset = "weekly_credit_reset"
	ActionUserReported      = "user_reported"
	ActionUserUnblocked     = "user_unblocked"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AuditEmitter sends audit events to the sink. Emission is strictly
// fire-and-forget: failures are logged and never affect the operation
// that triggered them.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

type AuditEnvelope struct {
	SchemaVersion int    `json:"schema_version"`
	Action        string `json:"action"`
	ActionDetail  string `json:"action_detail,omitempty"`
	OccurredAt    string `json:"occurred_at"`
	Service       string `json:"service"`
	Environment   string `json:"environment"`
	RequestID     string `json:"request_id"`
	UserID        *int   `json:"user_id,omitempty"`
	TargetUserID  *int   `json:"target_user_id,omitempty"`
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// Emit publishes one audit event. userID is the actor, targetUserID the
// affected counterpart where one exists.
func (e *AuditEmitter) Emit(ctx context.Context, action, detail, requestID string, userID, targetUserID *int) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		Action:        action,
		ActionDetail:  detail,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		TargetUserID:  targetUserID,
	}

	if err := e.publisher.Publish(ctx, e.routingKey, envelope); err != nil {
		log.Printf("audit publish failed action=%s: %v", action, err)
	}
}
