package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-service/internal/mocks"
)

func TestEmitPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.social", "social-service", "test")

	uid := "u1"
	publisher.On("Publish", mock.Anything, "audit.social", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(AuditEnvelope)
		return ok &&
			envelope.EventType == "audit_log" &&
			envelope.Service == "social-service" &&
			envelope.RequestID == "req-1" &&
			envelope.UserID != nil && *envelope.UserID == "u1" &&
			envelope.Payload.Level == "info" &&
			envelope.Payload.Action == "post created" &&
			envelope.Payload.Subject == "p1"
	})).Return(nil).Once()

	emitter.Emit(context.Background(), "info", "post created", "p1", "req-1", &uid)

	publisher.AssertExpectations(t)
}

func TestEmitNilEmitterIsNoop(t *testing.T) {
	var emitter *AuditEmitter
	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), "info", "x", "", "req", nil)
	})
}
