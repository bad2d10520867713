package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/relay/service/dao"
	"github.com/viant/relay/service/status"
)

func TestService_WriteReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	svc := New()

	require.NoError(t, svc.Write(ctx, "t1", status.StatusQueued, []string{"queued"}, 0))
	require.NoError(t, svc.Write(ctx, "t1", status.StatusDone, []string{"sent"}, 1))

	record, err := svc.Load(ctx, "t1")
	require.NoError(t, err)
	assert.EqualValues(t, status.StatusDone, record.Status)
	assert.Equal(t, 1, record.Retries)
	// Write replaces logs; only the last write's entries remain.
	assert.Len(t, record.Logs, 1)
	assert.Contains(t, record.Logs[0], "sent")
	assert.False(t, record.UpdatedAt.IsZero())
}

func TestService_AppendLogWithoutPriorWrite(t *testing.T) {
	ctx := context.Background()
	svc := New()

	require.NoError(t, svc.AppendLog(ctx, "t2", "first message"))
	require.NoError(t, svc.AppendLog(ctx, "t2", "second message"))

	record, err := svc.Load(ctx, "t2")
	require.NoError(t, err)
	assert.EqualValues(t, status.Status(""), record.Status)
	assert.Equal(t, 0, record.Retries)
	assert.Len(t, record.Logs, 2)
	assert.Contains(t, record.Logs[0], "first message")
	assert.Contains(t, record.Logs[1], "second message")
}

func TestService_AppendLogPreservesStatus(t *testing.T) {
	ctx := context.Background()
	svc := New()

	require.NoError(t, svc.Write(ctx, "t3", status.StatusQueued, []string{"queued"}, 0))
	require.NoError(t, svc.AppendLog(ctx, "t3", "retrying once"))

	record, err := svc.Load(ctx, "t3")
	require.NoError(t, err)
	assert.EqualValues(t, status.StatusQueued, record.Status)
	assert.Len(t, record.Logs, 2)
}

func TestService_LoadUnknown(t *testing.T) {
	_, err := New().Load(context.Background(), "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
