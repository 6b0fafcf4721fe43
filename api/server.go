// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Package api serves the poll service and the token ledger as JSON over HTTP, and provides the
// client used to reach a remote node.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/iotexproject/pollrush/ledger"
	"github.com/iotexproject/pollrush/pkg/lifecycle"
	"github.com/iotexproject/pollrush/pkg/log"
	"github.com/iotexproject/pollrush/pkg/tracer"
	"github.com/iotexproject/pollrush/pkg/util/httputil"
	"github.com/iotexproject/pollrush/poll"
	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/protocol"
)

const (
	// CallerHeader carries the textual principal of the caller
	CallerHeader = "X-Caller-Principal"
	// RequestIDHeader echoes the request id
	RequestIDHeader = "X-Request-Id"

	// PollPath is the route of poll methods
	PollPath = "/poll"
	// LedgerPath is the route of ledger methods
	LedgerPath = "/ledger"
)

var _apiMtc = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pollrush_api_requests",
		Help: "API requests per route, method and error kind.",
	},
	[]string{"route", "method", "kind"},
)

func init() {
	prometheus.MustRegister(_apiMtc)
}

var _ lifecycle.StartStopper = (*Server)(nil)

type (
	// Server serves POST /poll and POST /ledger
	Server struct {
		cfg    Config
		svr    http.Server
		mux    *http.ServeMux
		poll   *poll.Service
		ledger *ledger.Ledger
		sem    *semaphore.Weighted
		rate   *callerLimiter
		addr   net.Addr
	}

	// request is a parsed envelope
	request struct {
		method string
		params gjson.Result
	}

	// methodHandler serves one method
	methodHandler func(ctx context.Context, params gjson.Result) (any, error)

	errorBody struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}

	response struct {
		Result any        `json:"result,omitempty"`
		Error  *errorBody `json:"error,omitempty"`
	}
)

// NewServer creates the api server. Either component may be nil, its route is then not served.
func NewServer(cfg Config, pollSvc *poll.Service, l *ledger.Ledger) *Server {
	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		poll:   pollSvc,
		ledger: l,
		sem:    semaphore.NewWeighted(cfg.MaxRequests),
		rate:   newCallerLimiter(cfg),
	}
	if pollSvc != nil {
		s.mux.Handle(PollPath, s.route(PollPath, s.pollMethods()))
	}
	if l != nil {
		s.mux.Handle(LedgerPath, s.route(LedgerPath, s.ledgerMethods()))
	}
	s.svr = httputil.NewServer(":"+strconv.Itoa(cfg.Port), s.mux)
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Addr returns the listening address once started
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Start starts the http server
func (s *Server) Start(_ context.Context) error {
	ln, err := httputil.LimitListener(s.svr.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.svr.Addr)
	}
	s.addr = ln.Addr()
	go func() {
		if err := s.svr.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.L().Fatal("API server failed to serve.", zap.Error(err))
		}
	}()
	log.L().Info("API server started.", zap.Stringer("addr", s.addr))
	return nil
}

// Stop stops the http server
func (s *Server) Stop(ctx context.Context) error {
	return s.svr.Shutdown(ctx)
}

func (s *Server) route(path string, methods map[string]methodHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ctx, span := tracer.NewSpan(req.Context(), "api"+path)
		defer span.End()
		acquireCtx, cancel := context.WithTimeout(ctx, s.cfg.AcquireTimeout)
		defer cancel()
		if err := s.sem.Acquire(acquireCtx, 1); err != nil {
			w.WriteHeader(http.StatusTooManyRequests)
			log.L().Error("Failed to acquire semaphore.", zap.Error(err))
			return
		}
		defer s.sem.Release(1)

		requestID := uuid.New().String()
		w.Header().Set(RequestIDHeader, requestID)
		span.SetAttributes(attribute.String("requestID", requestID))

		var (
			r      *request
			result any
			err    error
		)
		caller, err := callerOf(req)
		if err == nil && !s.rate.Allow(caller) {
			err = errors.Wrapf(ErrRateLimited, "caller %s", caller)
		}
		if err == nil {
			ctx = protocol.WithCallerCtx(ctx, protocol.CallerCtx{Caller: caller, RequestID: requestID})
			r, err = parseRequest(io.LimitReader(req.Body, s.cfg.MaxBodySize))
		}
		method := "unknown"
		if err == nil {
			handler, ok := methods[r.method]
			if !ok {
				err = errors.Wrapf(ErrMethodNotFound, "%s%s", path, "/"+r.method)
			} else {
				method = r.method
				span.SetAttributes(attribute.String("method", method))
				result, err = handler(ctx, r.params)
			}
		}
		kind := "ok"
		if err != nil {
			kind = ErrorKind(err)
			fields := []zap.Field{
				zap.String("requestID", requestID),
				zap.String("method", method),
				zap.String("kind", kind),
				zap.Error(err),
			}
			if kind == KindInternal {
				log.L().Error("Request failed.", fields...)
			} else {
				log.L().Debug("Request rejected.", fields...)
			}
		}
		_apiMtc.WithLabelValues(path, method, kind).Inc()
		writeResponse(w, result, err)
	})
}

func callerOf(req *http.Request) (principal.Principal, error) {
	h := req.Header.Get(CallerHeader)
	if h == "" {
		return principal.Anonymous, nil
	}
	p, err := principal.FromString(h)
	if err != nil {
		return p, errors.Wrap(ErrInvalidRequest, err.Error())
	}
	return p, nil
}

func parseRequest(body io.Reader) (*request, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRequest, err.Error())
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrap(ErrInvalidRequest, "body is not valid json")
	}
	method := gjson.GetBytes(data, "method")
	if method.Type != gjson.String || method.Str == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "missing method")
	}
	params := gjson.GetBytes(data, "params")
	if params.Exists() && !params.IsObject() {
		return nil, errors.Wrap(ErrInvalidRequest, "params must be an object")
	}
	return &request{method: method.Str, params: params}, nil
}

func writeResponse(w http.ResponseWriter, result any, err error) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	resp := response{Result: result}
	if err != nil {
		resp = response{Error: &errorBody{Kind: ErrorKind(err), Message: err.Error()}}
	}
	status := http.StatusOK
	if err != nil {
		status = httpStatus(resp.Error.Kind)
	}
	raw, mErr := json.Marshal(resp)
	if mErr != nil {
		log.L().Error("Failed to marshal response.", zap.Error(mErr))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		log.L().Warn("Failed to write response.", zap.Error(err))
	}
}

func httpStatus(kind string) int {
	switch kind {
	case KindInternal:
		return http.StatusInternalServerError
	case KindPollNotFound, KindMethodNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindTooManyAllowances:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}
