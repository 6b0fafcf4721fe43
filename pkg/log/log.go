// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package log

import (
	"log"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"go.elastic.co/ecszap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GlobalConfig defines the global logger configurations.
type GlobalConfig struct {
	Zap            *zap.Config `json:"zap" yaml:"zap"`
	RedirectStdLog bool        `json:"stdLogRedirect" yaml:"stdLogRedirect"`
	EcsIntegration bool        `json:"ecsIntegration" yaml:"ecsIntegration"`
}

var (
	_globalCfg        GlobalConfig
	_logMu            sync.RWMutex
	_logServeMux      = http.NewServeMux()
	_subLoggers       = make(map[string]*zap.Logger)
	_registered       = make(map[string]bool)
	_globalLoggerName = "global"
)

func init() {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapCfg.Level.SetLevel(zap.InfoLevel)
	l, err := zapCfg.Build()
	if err != nil {
		log.Println("Failed to init zap global logger, no zap log will be shown till zap is properly initialized: ", err)
		return
	}
	_logMu.Lock()
	_globalCfg.Zap = &zapCfg
	_logMu.Unlock()
	zap.ReplaceGlobals(l)
}

// L wraps zap.L().
func L() *zap.Logger { return zap.L() }

// S wraps zap.S().
func S() *zap.SugaredLogger { return zap.S() }

// Logger returns logger of the given name
func Logger(name string) *zap.Logger {
	_logMu.RLock()
	defer _logMu.RUnlock()
	logger, ok := _subLoggers[name]
	if !ok {
		return L()
	}
	return logger
}

// InitLoggers initializes the global logger and other sub loggers.
// Each name can be registered once, a failed call leaves no logger registered.
func InitLoggers(globalCfg GlobalConfig, subCfgs map[string]GlobalConfig, opts ...zap.Option) error {
	if _, exists := subCfgs[_globalLoggerName]; exists {
		return errors.New("'" + _globalLoggerName + "' is a reserved name for global logger")
	}
	cfgs := map[string]GlobalConfig{_globalLoggerName: globalCfg}
	for name, cfg := range subCfgs {
		cfgs[name] = cfg
	}

	_logMu.Lock()
	defer _logMu.Unlock()
	for name := range cfgs {
		if _registered[name] {
			return errors.Errorf("duplicate logger name: %s", name)
		}
	}
	type built struct {
		logger *zap.Logger
		zapCfg *zap.Config
	}
	loggers := make(map[string]built, len(cfgs))
	for name, cfg := range cfgs {
		logger, zapCfg, err := build(cfg, opts...)
		if err != nil {
			return errors.Wrapf(err, "failed to build logger %s", name)
		}
		loggers[name] = built{logger, zapCfg}
	}
	for name, b := range loggers {
		if name == _globalLoggerName {
			_globalCfg = cfgs[name]
			_globalCfg.Zap = b.zapCfg
			if _globalCfg.RedirectStdLog {
				zap.RedirectStdLog(b.logger)
			}
			zap.ReplaceGlobals(b.logger)
		} else {
			_subLoggers[name] = b.logger
		}
		_registered[name] = true
		_logServeMux.Handle("/"+name, b.zapCfg.Level)
	}
	return nil
}

func build(cfg GlobalConfig, opts ...zap.Option) (*zap.Logger, *zap.Config, error) {
	var zapCfg zap.Config
	if cfg.Zap == nil {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = *cfg.Zap
		zapCfg.EncoderConfig = zap.NewProductionEncoderConfig()
		if zapCfg.Encoding == "" {
			zapCfg.Encoding = "json"
		}
		if len(zapCfg.OutputPaths) == 0 {
			zapCfg.OutputPaths = []string{"stderr"}
		}
		if len(zapCfg.ErrorOutputPaths) == 0 {
			zapCfg.ErrorOutputPaths = []string{"stderr"}
		}
	}
	if zapCfg.Level == (zap.AtomicLevel{}) {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if cfg.EcsIntegration {
		zapCfg.EncoderConfig = ecszap.ECSCompatibleEncoderConfig(zapCfg.EncoderConfig)
		opts = append(opts, zap.AddCaller())
	}
	logger, err := zapCfg.Build(opts...)
	if err != nil {
		return nil, nil, err
	}
	return logger, &zapCfg, nil
}

// RegisterLevelConfigMux registers log's level config http mux, one path per logger under /logging/
func RegisterLevelConfigMux(root *http.ServeMux) {
	_logMu.RLock()
	defer _logMu.RUnlock()
	root.Handle("/logging/", http.StripPrefix("/logging", _logServeMux))
}
