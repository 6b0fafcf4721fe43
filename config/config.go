// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	uconfig "go.uber.org/config"

	"github.com/iotexproject/pollrush/api"
	"github.com/iotexproject/pollrush/db"
	"github.com/iotexproject/pollrush/pkg/log"
	"github.com/iotexproject/pollrush/pkg/tracer"
	"github.com/iotexproject/pollrush/poll"
	"github.com/iotexproject/pollrush/principal"
)

// IMPORTANT: to define a config, add a field or a new config type to the existing config types. In addition, provide
// the default value in Default var.

var (
	// Default is the default config
	Default = Config{
		SubLogs: make(map[string]log.GlobalConfig),
		DB:      db.DefaultConfig,
		Ledger: Ledger{
			Enabled: true,
			DBPath:  "/var/data/ledger.db",
			Minters: []string{},
		},
		Poll: Poll{
			Enabled:      true,
			DBPath:       "/var/data/poll.db",
			MintTimeout:  10 * time.Second,
			CreateReward: poll.CreateReward,
			VoteReward:   poll.VoteReward,
			Reconciler:   poll.DefaultReconcilerConfig,
		},
		API: api.DefaultConfig,
		System: System{
			HTTPStatsPort: 8080,
			StopTimeout:   10 * time.Second,
		},
		Tracer: tracer.Config{
			ServiceName:   "pollrush",
			SamplingRatio: "1",
		},
	}

	// ErrInvalidCfg indicates the invalid config value
	ErrInvalidCfg = errors.New("invalid config value")

	// Validates is the collection config validation functions
	Validates = []Validate{
		ValidateDB,
		ValidateLedger,
		ValidatePoll,
		ValidateAPI,
	}
)

type (
	// Ledger is the token ledger config
	Ledger struct {
		// Enabled runs the ledger in this node
		Enabled bool   `yaml:"enabled"`
		DBPath  string `yaml:"dbPath"`
		// Minters are the textual principals allowed to mint
		Minters []string `yaml:"minters"`
	}

	// Poll is the poll service config
	Poll struct {
		// Enabled runs the poll service in this node
		Enabled bool   `yaml:"enabled"`
		DBPath  string `yaml:"dbPath"`
		// Principal is the identity the service mints rewards as
		Principal string `yaml:"principal"`
		// LedgerEndpoint is the url of a remote ledger, empty uses the ledger of this node
		LedgerEndpoint string                `yaml:"ledgerEndpoint"`
		MintTimeout    time.Duration         `yaml:"mintTimeout"`
		CreateReward   uint64                `yaml:"createReward"`
		VoteReward     uint64                `yaml:"voteReward"`
		Reconciler     poll.ReconcilerConfig `yaml:"reconciler"`
	}

	// System is the system config
	System struct {
		HTTPStatsPort int           `yaml:"httpStatsPort"`
		StopTimeout   time.Duration `yaml:"stopTimeout"`
	}

	// Config is the root config struct, each package's config should be put as its sub struct
	Config struct {
		Log     log.GlobalConfig            `yaml:"log"`
		SubLogs map[string]log.GlobalConfig `yaml:"subLogs"`
		DB      db.Config                   `yaml:"db"`
		Ledger  Ledger                      `yaml:"ledger"`
		Poll    Poll                        `yaml:"poll"`
		API     api.Config                  `yaml:"api"`
		System  System                      `yaml:"system"`
		Tracer  tracer.Config               `yaml:"tracer"`
	}

	// Validate is the interface of validating the config
	Validate func(Config) error
)

// New creates a config instance. It first loads the default configs. If the config path is not empty, it will read from
// the file and override the default configs. By default, it will apply all validation functions. To bypass validation,
// use DoNotValidate instead.
func New(configPaths []string, validates ...Validate) (Config, error) {
	opts := make([]uconfig.YAMLOption, 0)
	opts = append(opts, uconfig.Static(Default))
	opts = append(opts, uconfig.Expand(os.LookupEnv))
	for _, path := range configPaths {
		if path != "" {
			opts = append(opts, uconfig.File(path))
		}
	}
	yaml, err := uconfig.NewYAML(opts...)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to init config")
	}

	var cfg Config
	if err := yaml.Get(uconfig.Root).Populate(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal YAML config to struct")
	}

	// By default, the config needs to pass all the validation
	if len(validates) == 0 {
		validates = Validates
	}
	for _, validate := range validates {
		if err := validate(cfg); err != nil {
			return Config{}, errors.Wrap(err, "failed to validate config")
		}
	}
	return cfg, nil
}

// ServicePrincipal returns the principal the poll service mints as
func (p Poll) ServicePrincipal() (principal.Principal, error) {
	sp, err := principal.FromString(p.Principal)
	if err != nil {
		return sp, errors.Wrapf(ErrInvalidCfg, "poll principal: %v", err)
	}
	return sp, nil
}

// MinterPrincipals returns the principals allowed to mint
func (l Ledger) MinterPrincipals() ([]principal.Principal, error) {
	minters := make([]principal.Principal, 0, len(l.Minters))
	for _, m := range l.Minters {
		p, err := principal.FromString(m)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidCfg, "minter %s: %v", m, err)
		}
		minters = append(minters, p)
	}
	return minters, nil
}

// ValidateDB validates the db configs
func ValidateDB(cfg Config) error {
	switch cfg.DB.DBType {
	case db.DBBolt, db.DBPebble, db.DBMemory:
	default:
		return errors.Wrapf(ErrInvalidCfg, "unknown db type %s", cfg.DB.DBType)
	}
	if cfg.DB.MaxCacheSize < 0 {
		return errors.Wrap(ErrInvalidCfg, "db cache size should not be negative")
	}
	return nil
}

// ValidateLedger validates the ledger configs
func ValidateLedger(cfg Config) error {
	if !cfg.Ledger.Enabled {
		return nil
	}
	if cfg.Ledger.DBPath == "" && cfg.DB.DBType != db.DBMemory {
		return errors.Wrap(ErrInvalidCfg, "ledger db path is empty")
	}
	minters, err := cfg.Ledger.MinterPrincipals()
	if err != nil {
		return err
	}
	if len(minters) == 0 {
		return errors.Wrap(ErrInvalidCfg, "ledger has no minter")
	}
	return nil
}

// ValidatePoll validates the poll service configs
func ValidatePoll(cfg Config) error {
	if !cfg.Poll.Enabled {
		return nil
	}
	if cfg.Poll.DBPath == "" && cfg.DB.DBType != db.DBMemory {
		return errors.Wrap(ErrInvalidCfg, "poll db path is empty")
	}
	sp, err := cfg.Poll.ServicePrincipal()
	if err != nil {
		return err
	}
	if cfg.Poll.LedgerEndpoint == "" {
		if !cfg.Ledger.Enabled {
			return errors.Wrap(ErrInvalidCfg, "poll service needs a ledger endpoint when the local ledger is disabled")
		}
		minters, err := cfg.Ledger.MinterPrincipals()
		if err != nil {
			return err
		}
		allowed := false
		for _, m := range minters {
			allowed = allowed || m == sp
		}
		if !allowed {
			return errors.Wrapf(ErrInvalidCfg, "poll principal %s is not a ledger minter", sp)
		}
	}
	rc := cfg.Poll.Reconciler
	if rc.Interval <= 0 || rc.InitialBackoff <= 0 || rc.MaxBackoff < rc.InitialBackoff || rc.Multiplier < 1 {
		return errors.Wrap(ErrInvalidCfg, "reward reconciler needs a positive interval and a non-shrinking backoff")
	}
	return nil
}

// ValidateAPI validates the api configs
func ValidateAPI(cfg Config) error {
	if cfg.API.Port < 0 {
		return errors.Wrap(ErrInvalidCfg, "api port should not be negative")
	}
	if cfg.API.MaxRequests <= 0 {
		return errors.Wrap(ErrInvalidCfg, "api max requests should be positive")
	}
	if cfg.API.RateLimit < 0 {
		return errors.Wrap(ErrInvalidCfg, "api rate limit should not be negative")
	}
	if cfg.API.RateLimit > 0 && cfg.API.RateBurst <= 0 {
		return errors.Wrap(ErrInvalidCfg, "api rate burst should be positive")
	}
	return nil
}

// DoNotValidate validates the given config
func DoNotValidate(cfg Config) error { return nil }
