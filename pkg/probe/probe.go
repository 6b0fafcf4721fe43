// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/iotexproject/pollrush/pkg/lifecycle"
	"github.com/iotexproject/pollrush/pkg/log"
	"github.com/iotexproject/pollrush/pkg/util/httputil"
)

// Server is a http server for service probe, metrics and log level control.
type Server struct {
	lifecycle.Readiness
	server           http.Server
	readinessHandler http.Handler
	ln               net.Listener
}

// Option is used to set probe server's options.
type Option func(*Server)

// WithReadinessHandler sets the handler answering readiness once the server is ready
func WithReadinessHandler(h http.Handler) Option {
	return func(s *Server) {
		s.readinessHandler = h
	}
}

// New creates a new probe server.
func New(port int, opts ...Option) *Server {
	s := &Server{
		readinessHandler: http.HandlerFunc(successHandleFunc),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/liveness", successHandleFunc)
	readiness := func(w http.ResponseWriter, r *http.Request) {
		if !s.IsReady() {
			failureHandleFunc(w, r)
			return
		}
		s.readinessHandler.ServeHTTP(w, r)
	}
	mux.HandleFunc("/readiness", readiness)
	mux.HandleFunc("/health", readiness)
	mux.Handle("/metrics", promhttp.Handler())
	log.RegisterLevelConfigMux(mux)

	s.server = httputil.NewServer(fmt.Sprintf(":%d", port), mux)
	return s
}

// Start listens on the probe port and serves in the background.
func (s *Server) Start(_ context.Context) error {
	ln, err := httputil.LimitListener(s.server.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.L().Error("Probe server stopped.", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address, valid after Start
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.server.Addr
	}
	return s.ln.Addr().String()
}

// Ready makes readiness and health endpoints report success.
func (s *Server) Ready() { _ = s.TurnOn() }

// NotReady makes readiness and health endpoints report failure.
func (s *Server) NotReady() { _ = s.TurnOff() }

// Stop shutdown the probe server.
func (s *Server) Stop(ctx context.Context) error { return s.server.Shutdown(ctx) }

func successHandleFunc(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.L().Warn("Failed to send http response.", zap.Error(err))
	}
}

func failureHandleFunc(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusServiceUnavailable)
	if _, err := w.Write([]byte("FAIL")); err != nil {
		log.L().Warn("Failed to send http response.", zap.Error(err))
	}
}
