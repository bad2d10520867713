package dispatcher

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/viant/relay/internal/clock"
	"github.com/viant/relay/model/task"
)

// logHandler emits the full task payload as diagnostic output; no other
// side effect.
func logHandler(logger *zap.Logger) Handler {
	return HandlerFunc(func(_ context.Context, t *task.Task) error {
		payload, _ := json.Marshal(t)
		logger.Info("task log",
			zap.String("taskId", t.ID),
			zap.ByteString("task", payload))
		return nil
	})
}

// fileIntentHandler records a file-mutation intent. No file mutation happens
// here - that is delegated to an external file-management collaborator.
func fileIntentHandler(logger *zap.Logger) Handler {
	return HandlerFunc(func(_ context.Context, t *task.Task) error {
		logger.Info("file mutation intent recorded",
			zap.String("taskId", t.ID),
			zap.String("taskType", string(t.Type)),
			zap.String("filename", t.Filename))
		return nil
	})
}

// forwardHandler builds the delivery envelope and hands it to the deliverer.
// A missing or malformed replyTo aborts dispatch for this task with a
// warning - delivery is never invoked and nothing is archived.
func forwardHandler(deliverer Deliverer, logger *zap.Logger) Handler {
	return HandlerFunc(func(ctx context.Context, t *task.Task) error {
		if !task.IsValidURL(t.ReplyTo) {
			logger.Warn("dispatch aborted, invalid replyTo URL",
				zap.String("taskId", t.ID),
				zap.String("replyTo", t.ReplyTo))
			return nil
		}
		envelope := task.NewEnvelope(t, clock.Now())
		return deliverer.Deliver(ctx, t, envelope)
	})
}
