package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestEventServicePublishesToRedisStream(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	svc := NewEventService(nil, redisClient, "edustack", testLogger())

	err = svc.Publish(context.Background(), DomainEvent{
		Type:       EventAssignmentPublished,
		EntityType: "assignment",
		EntityID:   1,
		ActorID:    10,
	})
	require.NoError(t, err)

	entries, err := redisClient.XRange(context.Background(), "edustack:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var event DomainEvent
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["event"].(string)), &event))
	require.Equal(t, EventAssignmentPublished, event.Type)
	require.Equal(t, uint(1), event.EntityID)
	require.NotEmpty(t, event.ID)
	require.False(t, event.OccurredAt.IsZero())
}

func TestEventServiceNoTransportsConfigured(t *testing.T) {
	svc := NewEventService(nil, nil, "", testLogger())

	err := svc.Publish(context.Background(), DomainEvent{Type: EventSubmissionAccepted})
	require.NoError(t, err)
}
