package relay

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/viant/relay/model/task"
	"github.com/viant/relay/service/approval"
	"github.com/viant/relay/service/archive"
	"github.com/viant/relay/service/dao"
	"github.com/viant/relay/service/dispatcher"
	"github.com/viant/relay/service/status"
	"github.com/viant/relay/tracing"
)

// Option customizes the relay service.
type Option func(s *Service)

// WithConfig sets the configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTaskDAO sets the task storage.
func WithTaskDAO(dao dao.Service[string, task.Task]) Option {
	return func(s *Service) { s.tasks = dao }
}

// WithStatusStore sets the status store.
func WithStatusStore(store status.Store) Option {
	return func(s *Service) { s.status = store }
}

// WithArchiveService sets the delivery outcome archive.
func WithArchiveService(svc archive.Service) Option {
	return func(s *Service) { s.archive = svc }
}

// WithApprovalService sets the approval gate.
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.approvals = svc }
}

// WithHTTPClient sets the HTTP client used for outbound delivery.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) { s.httpClient = client }
}

// WithDeliveryTimeout sets the per-attempt delivery timeout.
func WithDeliveryTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.deliveryTimeout = timeout }
}

// WithHandler registers an application-defined handler for a task type,
// extending or overriding the built-in dispatch table.
func WithHandler(t task.Type, h dispatcher.Handler) Option {
	return func(s *Service) {
		s.extraHandlers = append(s.extraHandlers, handlerRegistration{taskType: t, handler: h})
	}
}

// WithSynchronousDispatch makes Submit and Approve run dispatch and delivery
// inline instead of on a background goroutine. Intended for tests and
// command-line use.
func WithSynchronousDispatch() Option {
	return func(s *Service) { s.syncDispatch = true }
}

// WithTracing configures OpenTelemetry tracing for the service. If
// outputFile is empty the stdout exporter is used; otherwise traces are
// written to the supplied file path. Safe to call multiple times - the
// first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}
