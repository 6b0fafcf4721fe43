// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/iotexproject/pollrush/api"
	"github.com/iotexproject/pollrush/ledger"
	"github.com/iotexproject/pollrush/principal"
)

func newLedgerCmd(o *options) *cobra.Command {
	c := &cobra.Command{
		Use:   "ledger",
		Short: "Query and move PPs tokens",
	}
	c.AddCommand(
		newBalanceCmd(o),
		newAllowanceCmd(o),
		newInfoCmd(o),
		newLedgerUpdateCmd(o, "transfer TO AMOUNT", "Transfer tokens to a principal", "transfer", "to"),
		newLedgerUpdateCmd(o, "approve SPENDER AMOUNT", "Allow a spender to move tokens", "approve", "spender"),
		newTransferFromCmd(o),
		newMintCmd(o),
	)
	return c
}

func newBalanceCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance PRINCIPAL [PRINCIPAL...]",
		Short: "Show balances",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := o.ledgerClient()
			if err != nil {
				return err
			}
			tb := table.New("Principal", "Balance").WithWriter(cmd.OutOrStdout())
			for _, arg := range args {
				p, err := principal.FromString(arg)
				if err != nil {
					return err
				}
				balance, err := cli.BalanceOf(cmd.Context(), p)
				if err != nil {
					return err
				}
				tb.AddRow(p.String(), formatPPs(balance))
			}
			tb.Print()
			return nil
		},
	}
}

func newAllowanceCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "allowance OWNER SPENDER",
		Short: "Show how much a spender may move from an owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := o.ledgerClient()
			if err != nil {
				return err
			}
			owner, err := principal.FromString(args[0])
			if err != nil {
				return err
			}
			spender, err := principal.FromString(args[1])
			if err != nil {
				return err
			}
			amount, err := cli.Allowance(cmd.Context(), owner, spender)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatPPs(amount))
			return nil
		},
	}
}

func newInfoCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show token metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := o.ledgerClient()
			if err != nil {
				return err
			}
			info, err := cli.TokenInfo(cmd.Context())
			if err != nil {
				return err
			}
			tb := table.New("Name", "Symbol", "Decimals", "TotalSupply").WithWriter(cmd.OutOrStdout())
			tb.AddRow(info.Name, info.Symbol, info.Decimals, formatPPs(info.TotalSupply))
			tb.Print()
			return nil
		},
	}
}

func newLedgerUpdateCmd(o *options, use, short, method, target string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseUint("amount", args[1])
			if err != nil {
				return err
			}
			return o.ack(cmd, method, map[string]any{target: args[0], "amount": amount})
		},
	}
}

func newTransferFromCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer-from FROM TO AMOUNT",
		Short: "Move tokens from an owner who approved the caller",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseUint("amount", args[2])
			if err != nil {
				return err
			}
			return o.ack(cmd, "transfer_from", map[string]any{"from": args[0], "to": args[1], "amount": amount})
		},
	}
}

func newMintCmd(o *options) *cobra.Command {
	var memo string
	c := &cobra.Command{
		Use:   "mint TO AMOUNT",
		Short: "Mint tokens, the caller must be a minter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseUint("amount", args[1])
			if err != nil {
				return err
			}
			return o.ack(cmd, "mint", map[string]any{"to": args[0], "amount": amount, "memo": memo})
		},
	}
	c.Flags().StringVar(&memo, "memo", "", "memo making the mint idempotent")
	return c
}

func (o *options) ack(cmd *cobra.Command, method string, params map[string]any) error {
	if _, err := o.call(cmd, api.LedgerPath, method, params); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

// formatPPs renders base units as PPs
func formatPPs(amount uint64) string {
	return fmt.Sprintf("%d.%08d PPs", amount/ledger.Unit, amount%ledger.Unit)
}
