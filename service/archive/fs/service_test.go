package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/relay/service/archive"
)

func TestService_SaveAndList(t *testing.T) {
	ctx := context.Background()
	svc, err := New(t.TempDir())
	require.NoError(t, err)

	first := archive.NewResult("t1", map[string]interface{}{"ok": true})
	second := archive.NewResult("t1", "retry response")
	second.Timestamp = first.Timestamp.Add(time.Second)
	failure := archive.NewFailure("t1", "connection refused", map[string]interface{}{"taskId": "t1"})
	other := archive.NewResult("t2", nil)

	require.NoError(t, svc.SaveResult(ctx, first))
	require.NoError(t, svc.SaveResult(ctx, second))
	require.NoError(t, svc.SaveError(ctx, failure))
	require.NoError(t, svc.SaveResult(ctx, other))

	results, err := svc.ListResults(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, archive.OutcomeRelaySuccess, results[0].Outcome)
	assert.True(t, results[0].Timestamp.Before(results[1].Timestamp))

	errors, err := svc.ListErrors(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, errors, 1)
	assert.Equal(t, archive.OutcomeRelayFailed, errors[0].Outcome)
	assert.Equal(t, "connection refused", errors[0].Error)

	// Records for other tasks do not leak across keys.
	results, err = svc.ListResults(ctx, "t2")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestService_ListUnknownTask(t *testing.T) {
	svc, err := New(t.TempDir())
	require.NoError(t, err)
	records, err := svc.ListResults(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, records)
}
