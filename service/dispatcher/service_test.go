package dispatcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/relay/model/task"
)

// recordingDeliverer captures Deliver invocations.
type recordingDeliverer struct {
	calls    int
	lastTask *task.Task
	payload  interface{}
	err      error
}

func (d *recordingDeliverer) Deliver(_ context.Context, t *task.Task, payload interface{}) error {
	d.calls++
	d.lastTask = t
	d.payload = payload
	return d.err
}

func TestDispatch_ForwardBuildsEnvelope(t *testing.T) {
	deliverer := &recordingDeliverer{}
	svc := New(deliverer)

	aTask := &task.Task{ID: "t1", Type: task.TypeSend, ReplyTo: "http://x/reply"}
	require.NoError(t, svc.Dispatch(context.Background(), aTask))

	assert.Equal(t, 1, deliverer.calls)
	envelope, ok := deliverer.payload.(*task.Envelope)
	require.True(t, ok)
	assert.Equal(t, "received", envelope.Status)
	assert.Same(t, aTask, envelope.Task)
	assert.False(t, envelope.Timestamp.IsZero())
}

func TestDispatch_ConfirmForwards(t *testing.T) {
	deliverer := &recordingDeliverer{}
	svc := New(deliverer)

	aTask := &task.Task{ID: "t1", Type: task.TypeConfirm, ReplyTo: "http://x/reply"}
	require.NoError(t, svc.Dispatch(context.Background(), aTask))
	assert.Equal(t, 1, deliverer.calls)
}

func TestDispatch_InvalidReplyToAbortsWithoutDelivery(t *testing.T) {
	type testCase struct {
		name    string
		replyTo string
	}
	tests := []testCase{
		{name: "missing", replyTo: ""},
		{name: "malformed", replyTo: "not-a-url"},
		{name: "wrong scheme", replyTo: "ftp://x/reply"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deliverer := &recordingDeliverer{}
			svc := New(deliverer)
			aTask := &task.Task{ID: "t1", Type: task.TypeSend, ReplyTo: tc.replyTo}
			require.NoError(t, svc.Dispatch(context.Background(), aTask))
			assert.Equal(t, 0, deliverer.calls)
		})
	}
}

func TestDispatch_UnknownTypeIsWarningOnly(t *testing.T) {
	deliverer := &recordingDeliverer{}
	svc := New(deliverer)

	err := svc.Dispatch(context.Background(), &task.Task{ID: "t1", Type: task.Type("translate")})
	assert.NoError(t, err)
	assert.Equal(t, 0, deliverer.calls)
}

func TestDispatch_LogAndFileTypesDoNotDeliver(t *testing.T) {
	deliverer := &recordingDeliverer{}
	svc := New(deliverer)

	for _, taskType := range []task.Type{task.TypeLog, task.TypeCreateFile, task.TypeUpdateFile} {
		require.NoError(t, svc.Dispatch(context.Background(), &task.Task{ID: "t1", Type: taskType, Filename: "a.txt"}))
	}
	assert.Equal(t, 0, deliverer.calls)
}

func TestRegister_CustomHandler(t *testing.T) {
	svc := New(nil)
	var handled []string
	svc.Register(task.Type("translate"), HandlerFunc(func(_ context.Context, t *task.Task) error {
		handled = append(handled, t.ID)
		return nil
	}))

	require.NoError(t, svc.Dispatch(context.Background(), &task.Task{ID: "t1", Type: task.Type("translate")}))
	assert.EqualValues(t, []string{"t1"}, handled)
}

func TestDispatch_HandlerErrorPropagates(t *testing.T) {
	deliverer := &recordingDeliverer{err: fmt.Errorf("delivery exhausted")}
	svc := New(deliverer)

	err := svc.Dispatch(context.Background(), &task.Task{ID: "t1", Type: task.TypeSend, ReplyTo: "http://x/reply"})
	assert.EqualError(t, err, "delivery exhausted")
}
