package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grwcomm/internal/mocks"
)

func TestEmitBuildsEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.events", "grwcomm", "test")

	actor := 1
	target := 2
	publisher.On("Publish", mock.Anything, "audit.events", mock.MatchedBy(func(event any) bool {
		env, ok := event.(AuditEnvelope)
		return ok &&
			env.SchemaVersion == 1 &&
			env.Action == ActionSlotBooked &&
			env.RequestID == "req-1" &&
			env.UserID != nil && *env.UserID == actor &&
			env.TargetUserID != nil && *env.TargetUserID == target
	})).Return(nil).Once()

	emitter.Emit(context.Background(), ActionSlotBooked, "category 5", "req-1", &actor, &target)

	publisher.AssertExpectations(t)
}

func TestEmitSwallowsPublishError(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.events", "grwcomm", "test")

	publisher.On("Publish", mock.Anything, "audit.events", mock.Anything).
		Return(context.DeadlineExceeded).Once()

	emitter.Emit(context.Background(), ActionCreditUsed, "", "req-2", nil, nil)

	publisher.AssertExpectations(t)
}

func TestEmitNilEmitterIsSafe(t *testing.T) {
	var emitter *AuditEmitter
	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), ActionUserReported, "", "req-3", nil, nil)
	})
}
