package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string
}

func TestQueue_PublishConsume(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[payload](DefaultConfig())

	require.NoError(t, q.Publish(ctx, &payload{Value: "a"}))
	require.NoError(t, q.Publish(ctx, &payload{Value: "b"}))
	assert.Equal(t, 2, q.Size())

	msg, err := q.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", msg.T().Value)
	require.NoError(t, msg.Ack())
	assert.Error(t, msg.Ack(), "double ack must fail")
}

func TestQueue_NackRequeues(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[payload](Config{MaxRetries: 1, RetryDelay: time.Millisecond, QueueBuffer: 4})

	require.NoError(t, q.Publish(ctx, &payload{Value: "retry-me"}))

	msg, err := q.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, msg.Nack(fmt.Errorf("boom")))

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	retried, err := q.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "retry-me", retried.T().Value)
}

func TestQueue_ConsumeHonoursContext(t *testing.T) {
	q := NewQueue[payload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := q.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
