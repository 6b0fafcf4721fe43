// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package pollnode

import (
	"context"
	"net"

	"github.com/pkg/errors"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/iotexproject/pollrush/api"
	"github.com/iotexproject/pollrush/config"
	"github.com/iotexproject/pollrush/db"
	"github.com/iotexproject/pollrush/ledger"
	"github.com/iotexproject/pollrush/pkg/lifecycle"
	"github.com/iotexproject/pollrush/pkg/log"
	"github.com/iotexproject/pollrush/pkg/probe"
	"github.com/iotexproject/pollrush/pkg/tracer"
	"github.com/iotexproject/pollrush/poll"
)

// Server is the pollrush node containing all components.
type Server struct {
	lifecycle.Lifecycle
	cfg        config.Config
	ledger     *ledger.Ledger
	poll       *poll.Service
	reconciler *poll.Reconciler
	api        *api.Server
	tp         *tracesdk.TracerProvider
}

// NewServer creates a new server
func NewServer(cfg config.Config) (*Server, error) {
	svr := &Server{cfg: cfg}
	tp, err := tracer.NewProvider(
		tracer.WithServiceName(cfg.Tracer.ServiceName),
		tracer.WithEndpoint(cfg.Tracer.EndPoint),
		tracer.WithInstanceID(cfg.Tracer.InstanceID),
		tracer.WithSamplingRatio(cfg.Tracer.SamplingRatio),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tracer provider")
	}
	svr.tp = tp

	if cfg.Ledger.Enabled {
		kv, err := db.CreateKVStoreWithCache(cfg.DB, cfg.Ledger.DBPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create ledger store")
		}
		minters, err := cfg.Ledger.MinterPrincipals()
		if err != nil {
			return nil, err
		}
		svr.ledger = ledger.New(kv, ledger.WithMinters(minters...))
		svr.Add(svr.ledger)
	}
	if cfg.Poll.Enabled {
		minter, err := svr.minter()
		if err != nil {
			return nil, err
		}
		kv, err := db.CreateKVStoreWithCache(cfg.DB, cfg.Poll.DBPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create poll store")
		}
		svr.poll = poll.NewService(kv, minter,
			poll.WithMintTimeout(cfg.Poll.MintTimeout),
			poll.WithRewards(cfg.Poll.CreateReward, cfg.Poll.VoteReward),
		)
		svr.reconciler = poll.NewReconciler(svr.poll, cfg.Poll.Reconciler)
		svr.AddModels(svr.poll, svr.reconciler)
	}
	svr.api = api.NewServer(cfg.API, svr.poll, svr.ledger)
	svr.Add(svr.api)
	return svr, nil
}

func (s *Server) minter() (poll.Minter, error) {
	self, err := s.cfg.Poll.ServicePrincipal()
	if err != nil {
		return nil, err
	}
	if s.cfg.Poll.LedgerEndpoint != "" {
		return api.NewLedgerClient(s.cfg.Poll.LedgerEndpoint, self, api.WithTimeout(s.cfg.Poll.MintTimeout)), nil
	}
	if s.ledger == nil {
		return nil, errors.Wrap(config.ErrInvalidCfg, "no ledger to mint rewards on")
	}
	return ledger.NewLocalMinter(s.ledger, self), nil
}

// Start starts all components in order
func (s *Server) Start(ctx context.Context) error {
	if err := s.OnStart(ctx); err != nil {
		return errors.Wrap(err, "failed to start node")
	}
	log.L().Info("Node started.",
		zap.Bool("ledger", s.ledger != nil),
		zap.Bool("poll", s.poll != nil),
		zap.Stringer("api", s.api.Addr()))
	return nil
}

// Stop stops all components in reverse order
func (s *Server) Stop(ctx context.Context) error {
	err := s.OnStop(ctx)
	if s.tp != nil {
		if tpErr := s.tp.Shutdown(ctx); tpErr != nil {
			log.L().Error("Failed to shutdown tracer provider.", zap.Error(tpErr))
		}
	}
	return err
}

// Ledger returns the token ledger, nil when disabled
func (s *Server) Ledger() *ledger.Ledger {
	return s.ledger
}

// PollService returns the poll service, nil when disabled
func (s *Server) PollService() *poll.Service {
	return s.poll
}

// APIAddr returns the address the api listens on
func (s *Server) APIAddr() net.Addr {
	return s.api.Addr()
}

// StartServer starts a node server and blocks until ctx is done
func StartServer(ctx context.Context, svr *Server, probeSvr *probe.Server, cfg config.Config) {
	if err := svr.Start(ctx); err != nil {
		log.L().Fatal("Failed to start server.", zap.Error(err))
		return
	}
	probeSvr.Ready()

	<-ctx.Done()
	probeSvr.NotReady()
	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.System.StopTimeout)
	defer cancel()
	if err := svr.Stop(stopCtx); err != nil {
		log.L().Error("Failed to stop server.", zap.Error(err))
	}
}
