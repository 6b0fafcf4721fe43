// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Package cmd implements the pollctl commands.
package cmd

import (
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iotexproject/pollrush/api"
	"github.com/iotexproject/pollrush/principal"
)

type options struct {
	endpoint string
	caller   string
	timeout  time.Duration
	out      io.Writer
}

// NewRootCmd creates the pollctl root command writing to out
func NewRootCmd(out io.Writer) *cobra.Command {
	o := &options{out: out}
	root := &cobra.Command{
		Use:           "pollctl",
		Short:         "Command-line client of a pollrush node",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&o.endpoint, "endpoint", "http://127.0.0.1:14080", "node api endpoint")
	root.PersistentFlags().StringVar(&o.caller, "caller", "", "principal to call as, empty for anonymous")
	root.PersistentFlags().DurationVar(&o.timeout, "timeout", 10*time.Second, "request timeout")
	root.AddCommand(newPollCmd(o), newLedgerCmd(o))
	return root
}

func (o *options) client() (*api.Client, error) {
	caller, err := o.callerPrincipal()
	if err != nil {
		return nil, err
	}
	return api.NewClient(o.endpoint, caller, api.WithTimeout(o.timeout)), nil
}

func (o *options) ledgerClient() (*api.LedgerClient, error) {
	caller, err := o.callerPrincipal()
	if err != nil {
		return nil, err
	}
	return api.NewLedgerClient(o.endpoint, caller, api.WithTimeout(o.timeout)), nil
}

func (o *options) callerPrincipal() (principal.Principal, error) {
	if o.caller == "" {
		return principal.Anonymous, nil
	}
	p, err := principal.FromString(o.caller)
	if err != nil {
		return p, errors.Wrap(err, "invalid --caller")
	}
	return p, nil
}

func parseUint(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s %s", name, s)
	}
	return v, nil
}
