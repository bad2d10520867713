package approval_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/relay/model/task"
	approval "github.com/viant/relay/service/approval"
	memApproval "github.com/viant/relay/service/approval/memory"
)

// TestWaitForDecision verifies that WaitForDecision blocks until a decision
// is recorded and returns the correct decision data.
func TestWaitForDecision(t *testing.T) {
	type testCase struct {
		name        string
		approve     bool
		expectError bool
		timeout     time.Duration
		decideDelay time.Duration
	}

	tests := []testCase{{
		name:        "approved before timeout",
		approve:     true,
		expectError: false,
		timeout:     500 * time.Millisecond,
		decideDelay: 10 * time.Millisecond,
	}, {
		name:        "rejected before timeout",
		approve:     false,
		expectError: false,
		timeout:     500 * time.Millisecond,
		decideDelay: 10 * time.Millisecond,
	}, {
		name:        "timeout waiting for decision",
		approve:     true, // irrelevant - decision never sent
		expectError: true,
		timeout:     50 * time.Millisecond,
		decideDelay: 200 * time.Millisecond, // triggered after timeout
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc := memApproval.New()

			req := &approval.Request{
				ID:        "req-1",
				Task:      &task.Task{ID: "req-1", Type: task.TypeSend},
				CreatedAt: time.Now(),
			}
			require.NoError(t, svc.RequestApproval(ctx, req))

			if tc.decideDelay > 0 {
				go func() {
					time.Sleep(tc.decideDelay)
					_, _ = svc.Decide(ctx, req.ID, tc.approve, "")
				}()
			}

			dec, err := approval.WaitForDecision(ctx, svc, req.ID, tc.timeout)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, req.ID, dec.ID)
			assert.Equal(t, tc.approve, dec.Approved)
		})
	}
}

func TestListPendingExcludesDecided(t *testing.T) {
	ctx := context.Background()
	svc := memApproval.New()

	for _, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, svc.RequestApproval(ctx, &approval.Request{
			ID:   id,
			Task: &task.Task{ID: id, Type: task.TypeSend},
		}))
	}
	_, err := svc.Decide(ctx, "r2", true, "")
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	var ids []string
	for _, r := range pending {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"r1", "r3"}, ids)
}

func TestDecide_Errors(t *testing.T) {
	ctx := context.Background()
	svc := memApproval.New()

	_, err := svc.Decide(ctx, "unknown", true, "")
	assert.Error(t, err)

	require.NoError(t, svc.RequestApproval(ctx, &approval.Request{
		ID: "r1", Task: &task.Task{ID: "r1", Type: task.TypeSend},
	}))
	_, err = svc.Decide(ctx, "r1", false, "no")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, "r1", true, "")
	assert.Error(t, err, "second decision must be rejected")
}

func TestAutoExpire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := memApproval.New()

	expireAt := time.Now().Add(-1 * time.Minute) // already expired
	req := &approval.Request{
		ID:        "exp1",
		Task:      &task.Task{ID: "exp1", Type: task.TypeSend},
		CreatedAt: time.Now(),
		ExpiresAt: &expireAt,
	}
	require.NoError(t, svc.RequestApproval(ctx, req))

	stop := approval.AutoExpire(ctx, svc, "expired", 10*time.Millisecond)
	defer stop()

	dec, err := approval.WaitForDecision(ctx, svc, req.ID, 500*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Equal(t, "expired", dec.Reason)
}
