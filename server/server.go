// Package server exposes the relay pipeline over HTTP. It is a thin
// adapter: request decoding and response encoding live here, every pipeline
// decision lives in the relay package.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"go.uber.org/zap"

	"github.com/viant/relay"
	"github.com/viant/relay/internal/clock"
	"github.com/viant/relay/model/task"
)

// Server adapts the relay service to HTTP.
type Server struct {
	relay    *relay.Service
	logger   *zap.Logger
	fs       afs.Service
	fixesURL string
	mux      *http.ServeMux
}

// Option customizes the server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithFixesURL sets the location where submitted fix files are stored.
func WithFixesURL(URL string) Option {
	return func(s *Server) { s.fixesURL = URL }
}

// New creates an HTTP adapter around the supplied relay service.
func New(service *relay.Service, options ...Option) *Server {
	ret := &Server{
		relay:    service,
		logger:   zap.NewNop(),
		fs:       afs.New(),
		fixesURL: "fixes",
	}
	for _, option := range options {
		option(ret)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", ret.handleHealth)
	mux.HandleFunc("POST /v1/tasks", ret.handleSubmit)
	mux.HandleFunc("POST /v1/tasks/{id}/approve", ret.handleApprove)
	mux.HandleFunc("GET /v1/tasks/{id}/status", ret.handleStatus)
	mux.HandleFunc("POST /v1/confirm", ret.handleConfirm)
	mux.HandleFunc("POST /v1/fixes", ret.handleFix)
	ret.mux = mux
	return ret
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"message":   "relay server is active",
		"timestamp": clock.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.respond(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid JSON payload"})
		return
	}
	receipt, err := s.relay.Submit(r.Context(), raw)
	if err != nil {
		var vErr *task.ValidationError
		if errors.As(err, &vErr) {
			s.respond(w, http.StatusBadRequest, map[string]interface{}{
				"valid":  false,
				"errors": vErr.Messages(),
			})
			return
		}
		s.internalError(w, "submit failed", err)
		return
	}
	s.respond(w, http.StatusAccepted, receipt)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.relay.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		if relay.IsNotFound(err) {
			s.respond(w, http.StatusNotFound, map[string]interface{}{"error": err.Error()})
			return
		}
		s.internalError(w, "approve failed", err)
		return
	}
	s.respond(w, http.StatusOK, receipt)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	record, err := s.relay.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		if relay.IsNotFound(err) {
			s.respond(w, http.StatusNotFound, map[string]interface{}{"error": err.Error()})
			return
		}
		s.internalError(w, "status lookup failed", err)
		return
	}
	s.respond(w, http.StatusOK, record)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respond(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid JSON payload"})
		return
	}
	receipt, err := s.relay.Confirm(r.Context(), payload)
	if err != nil {
		s.internalError(w, "confirm failed", err)
		return
	}
	s.respond(w, http.StatusOK, receipt)
}

// handleFix stores a submitted fix file; the actual application of fixes is
// an external collaborator's concern.
func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Filename string `json:"filename"`
		Code     string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respond(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid JSON payload"})
		return
	}
	if request.Filename == "" || request.Code == "" {
		s.respond(w, http.StatusBadRequest, map[string]interface{}{"error": "filename and code required"})
		return
	}
	target := path.Join(s.fixesURL, path.Clean("/"+request.Filename))
	if err := s.fs.Upload(r.Context(), target, file.DefaultFileOsMode, bytes.NewReader([]byte(request.Code))); err != nil {
		s.internalError(w, "failed to write fix", err)
		return
	}
	s.logger.Info("fix saved", zap.String("filename", request.Filename))
	s.respond(w, http.StatusOK, map[string]interface{}{"message": "fix saved"})
}

func (s *Server) internalError(w http.ResponseWriter, message string, err error) {
	s.logger.Error(message, zap.Error(err))
	s.respond(w, http.StatusInternalServerError, map[string]interface{}{"error": message})
}

func (s *Server) respond(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// ListenAndServe starts an HTTP server on addr with the adapter mounted.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("relay server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
