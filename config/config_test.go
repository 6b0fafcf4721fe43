// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/pollrush/db"
	"github.com/iotexproject/pollrush/test/identityset"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	// the default config has no service principal
	_, err := New(nil)
	require.Error(t, err)
	require.Equal(t, ErrInvalidCfg, errors.Cause(err))
}

func TestNewConfigWithoutValidation(t *testing.T) {
	cfg, err := New(nil, DoNotValidate)
	require.NoError(t, err)
	require.Equal(t, Default.Poll, cfg.Poll)
	require.Equal(t, Default.DB, cfg.DB)
	require.Equal(t, Default.API, cfg.API)
}

func TestNewConfigWithWrongConfigPath(t *testing.T) {
	_, err := New([]string{"wrong_path"}, DoNotValidate)
	require.Error(t, err)
}

func TestNewConfigWithOverride(t *testing.T) {
	require := require.New(t)
	sp := identityset.Principal(31).String()
	t.Setenv("POLLRUSH_LEDGER_DB", "/tmp/ledger-from-env.db")
	path := writeConfig(t, fmt.Sprintf(`
db:
    dbType: pebbledb
ledger:
    dbPath: ${POLLRUSH_LEDGER_DB}
    minters:
        - %s
poll:
    principal: %s
    reconciler:
        interval: 5s
api:
    port: 9999
`, sp, sp))

	cfg, err := New([]string{path})
	require.NoError(err)
	require.Equal(db.DBPebble, cfg.DB.DBType)
	require.Equal("/tmp/ledger-from-env.db", cfg.Ledger.DBPath)
	require.Equal(9999, cfg.API.Port)
	require.Equal(5*time.Second, cfg.Poll.Reconciler.Interval)
	require.Equal(Default.Poll.Reconciler.MaxBackoff, cfg.Poll.Reconciler.MaxBackoff)
	p, err := cfg.Poll.ServicePrincipal()
	require.NoError(err)
	require.Equal(identityset.Principal(31), p)
	minters, err := cfg.Ledger.MinterPrincipals()
	require.NoError(err)
	require.Len(minters, 1)
}

func TestValidatePoll(t *testing.T) {
	require := require.New(t)
	sp := identityset.Principal(31).String()
	cfg := Default
	cfg.Poll.Principal = sp
	cfg.Ledger.Minters = []string{identityset.Principal(30).String()}
	require.Equal(ErrInvalidCfg, errors.Cause(ValidatePoll(cfg)))

	cfg.Ledger.Minters = []string{sp}
	require.NoError(ValidatePoll(cfg))
	require.NoError(ValidateLedger(cfg))

	cfg.Ledger.Enabled = false
	require.Equal(ErrInvalidCfg, errors.Cause(ValidatePoll(cfg)))
	cfg.Poll.LedgerEndpoint = "http://ledger:14080"
	require.NoError(ValidatePoll(cfg))

	cfg.Poll.Reconciler.Multiplier = 0.5
	require.Equal(ErrInvalidCfg, errors.Cause(ValidatePoll(cfg)))

	cfg.Poll.Principal = "garbage"
	require.Equal(ErrInvalidCfg, errors.Cause(ValidatePoll(cfg)))
}

func TestValidateDBAndAPI(t *testing.T) {
	require := require.New(t)
	cfg := Default
	require.NoError(ValidateDB(cfg))
	cfg.DB.DBType = "rocksdb"
	require.Equal(ErrInvalidCfg, errors.Cause(ValidateDB(cfg)))

	cfg = Default
	require.NoError(ValidateAPI(cfg))
	cfg.API.MaxRequests = 0
	require.Equal(ErrInvalidCfg, errors.Cause(ValidateAPI(cfg)))
	cfg = Default
	cfg.API.RateLimit = -1
	require.Equal(ErrInvalidCfg, errors.Cause(ValidateAPI(cfg)))
	cfg.API.RateLimit = 10
	cfg.API.RateBurst = 0
	require.Equal(ErrInvalidCfg, errors.Cause(ValidateAPI(cfg)))
	cfg.API.RateLimit = 0
	require.NoError(ValidateAPI(cfg))

	cfg = Default
	cfg.Ledger.Minters = nil
	require.Equal(ErrInvalidCfg, errors.Cause(ValidateLedger(cfg)))
}
