// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Package poll implements the poll service: poll and vote registries, the voting rules and the
// reward minted for each poll created and each vote cast.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iotexproject/pollrush/db"
	"github.com/iotexproject/pollrush/pkg/lifecycle"
	"github.com/iotexproject/pollrush/pkg/log"
	"github.com/iotexproject/pollrush/pkg/util/byteutil"
	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/state"
)

const (
	// PollsNamespace stores polls keyed by big endian id
	PollsNamespace = "Polls"
	// VotesNamespace stores votes keyed by big endian poll id followed by the voter
	VotesNamespace = "Votes"
	// VoterIndexNamespace stores an empty value keyed by voter followed by big endian poll id
	VoterIndexNamespace = "VoterIndex"
	// MetaNamespace stores the id counters
	MetaNamespace = "PollMeta"
	// PendingRewardsNamespace stores rewards waiting for a retry, keyed by big endian sequence
	PendingRewardsNamespace = "PendingRewards"

	// MaxTitleLength is the byte limit of a title
	MaxTitleLength = 256
	// MaxDescriptionLength is the byte limit of a description
	MaxDescriptionLength = 4096
	// MaxOptionLength is the byte limit of one option
	MaxOptionLength = 256
	// MinOptions is the least number of options of a poll
	MinOptions = 2
	// MaxOptions is the most number of options of a poll
	MaxOptions = 20

	_defaultMintTimeout = 10 * time.Second
)

var (
	_nextPollIDKey    = []byte("nextPollID")
	_nextRewardSeqKey = []byte("nextRewardSeq")

	_pollMtc = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollrush_poll_operations",
			Help: "Poll service operations per method and status.",
		},
		[]string{"method", "status"},
	)
	_pendingRewardsMtc = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pollrush_pending_rewards",
			Help: "Number of rewards waiting for a retry.",
		},
	)
)

func init() {
	prometheus.MustRegister(_pollMtc)
	prometheus.MustRegister(_pendingRewardsMtc)
}

var _ lifecycle.StartStopper = (*Service)(nil)

type (
	// Service owns the poll state. Updates are serialized by a single mutex and each one lands as
	// one atomic batch. The reward mint happens after the lock is released.
	Service struct {
		mu            sync.Mutex
		kv            db.KVStore
		minter        Minter
		clk           clock.Clock
		mintTimeout   time.Duration
		createReward  uint64
		voteReward    uint64
		nextPollID    uint64
		nextRewardSeq uint64
		pending       int
	}

	// Option sets a service option
	Option func(*Service)

	// CreatePollArgs are the arguments of CreatePoll
	CreatePollArgs struct {
		Title       string
		Description string
		Options     []string
		// Deadline in nanoseconds, nil keeps the poll open forever
		Deadline *uint64
	}
)

// WithClock sets the clock stamping polls and votes
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clk = c
	}
}

// WithMintTimeout bounds each outbound mint call
func WithMintTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.mintTimeout = d
	}
}

// WithRewards overrides the create and vote rewards
func WithRewards(create, vote uint64) Option {
	return func(s *Service) {
		s.createReward = create
		s.voteReward = vote
	}
}

// NewService creates a poll service on top of kv, minting rewards through minter
func NewService(kv db.KVStore, minter Minter, opts ...Option) *Service {
	s := &Service{
		kv:           kv,
		minter:       minter,
		clk:          clock.New(),
		mintTimeout:  _defaultMintTimeout,
		createReward: CreateReward,
		voteReward:   VoteReward,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and restores the counters
func (s *Service) Start(ctx context.Context) error {
	if err := s.kv.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start poll store")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.nextPollID, err = s.counter(_nextPollIDKey); err != nil {
		return err
	}
	if s.nextRewardSeq, err = s.counter(_nextRewardSeqKey); err != nil {
		return err
	}
	pending, err := s.pendingRewards()
	if err != nil {
		return err
	}
	s.setPending(len(pending))
	log.L().Info("Poll service started.",
		zap.Uint64("nextPollID", s.nextPollID),
		zap.Int("pendingRewards", len(pending)))
	return nil
}

// Stop closes the store
func (s *Service) Stop(ctx context.Context) error {
	return s.kv.Stop(ctx)
}

// counter reads a 1-based counter of the meta namespace
func (s *Service) counter(key []byte) (uint64, error) {
	v, err := s.kv.Get(MetaNamespace, key)
	switch errors.Cause(err) {
	case nil:
		return byteutil.BytesToUint64BigEndian(v), nil
	case db.ErrNotExist:
		return 1, nil
	default:
		return 0, err
	}
}

func (s *Service) setPending(n int) {
	s.pending = n
	_pendingRewardsMtc.Set(float64(n))
}

func (s *Service) now() uint64 {
	return uint64(s.clk.Now().UnixNano())
}

func pollKey(id uint64) []byte {
	return byteutil.Uint64ToBytesBigEndian(id)
}

func voteKey(id uint64, voter principal.Principal) []byte {
	return byteutil.Concat(byteutil.Uint64ToBytesBigEndian(id), voter[:])
}

func voterIndexKey(voter principal.Principal, id uint64) []byte {
	return byteutil.Concat(voter[:], byteutil.Uint64ToBytesBigEndian(id))
}

func (s *Service) loadPoll(id uint64) (*state.Poll, error) {
	data, err := s.kv.Get(PollsNamespace, pollKey(id))
	if err != nil {
		if errors.Cause(err) == db.ErrNotExist {
			return nil, errors.Wrapf(ErrPollNotFound, "poll %d", id)
		}
		return nil, err
	}
	var p state.Poll
	if err := p.Deserialize(data); err != nil {
		return nil, err
	}
	return &p, nil
}

func observe(method string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	_pollMtc.WithLabelValues(method, status).Inc()
}
