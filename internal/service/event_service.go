package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DomainEvent is the envelope published for lifecycle outcomes other
// services and the notification pipeline consume.
type DomainEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	EntityType string                 `json:"entity_type"`
	EntityID   uint                   `json:"entity_id"`
	ActorID    uint                   `json:"actor_id"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Event types emitted by the engine services.
const (
	EventAssignmentPublished = "assignment.published"
	EventAssignmentClosed    = "assignment.closed"
	EventAssignmentReopened  = "assignment.reopened"
	EventSubmissionAccepted  = "submission.accepted"
	EventSubmissionGraded    = "submission.graded"
	EventModerationApplied   = "moderation.applied"
)

// EventPublisher fans domain events out to the message broker. Delivery to
// end users (mail, push) is a downstream consumer's concern.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

type eventService struct {
	nats        *nats.Conn
	natsSubject string
	redis       *redis.Client
	redisStream string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEventService constructs the domain event publisher. Either transport
// may be nil; publication degrades to whichever is configured.
func NewEventService(natsConn *nats.Conn, redisClient *redis.Client, channelBase string, logger zerolog.Logger) EventPublisher {
	subject := ""
	stream := ""
	if channelBase != "" {
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
		stream = channelBase + ":events"
	}

	return &eventService{
		nats:        natsConn,
		natsSubject: subject,
		redis:       redisClient,
		redisStream: stream,
		logger:      logger.With().Str("component", "event_service").Logger(),
		now:         time.Now,
	}
}

func (s *eventService) Publish(ctx context.Context, event DomainEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.nats != nil && s.natsSubject != "" {
		subject := s.natsSubject + "." + event.Type
		if err := s.nats.Publish(subject, payload); err != nil {
			s.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event to nats")
		}
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: s.redisStream,
			Values: map[string]interface{}{"event": string(payload)},
		}).Err(); err != nil {
			s.logger.Warn().Err(err).Str("stream", s.redisStream).Msg("failed to append event to redis stream")
		}
	}

	return nil
}
