// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/iotexproject/pollrush/api"
)

func newPollCmd(o *options) *cobra.Command {
	c := &cobra.Command{
		Use:   "poll",
		Short: "Create, vote on and list polls",
	}
	c.AddCommand(
		newCreatePollCmd(o),
		newVoteCmd(o),
		newShowPollCmd(o),
		newListPollsCmd(o),
		newPollQueryCmd(o, "mine [PRINCIPAL]", "List polls created by a principal, the caller by default", "get_my_polls"),
		newPollQueryCmd(o, "attendance [PRINCIPAL]", "List polls a principal voted in, the caller by default", "get_my_attendance"),
		newVotesCmd(o),
		newPendingCmd(o),
	)
	return c
}

func newCreatePollCmd(o *options) *cobra.Command {
	var (
		description string
		duration    time.Duration
	)
	c := &cobra.Command{
		Use:   "create TITLE OPTION OPTION [OPTION...]",
		Short: "Create a poll",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{
				"title":       args[0],
				"description": description,
				"options":     args[1:],
			}
			if duration > 0 {
				params["deadline"] = uint64(time.Now().Add(duration).UnixNano())
			}
			return o.receipt(cmd, "create_poll", params)
		},
	}
	c.Flags().StringVar(&description, "description", "", "poll description")
	c.Flags().DurationVar(&duration, "duration", 0, "voting window from now, 0 keeps the poll open")
	return c
}

func newVoteCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "vote POLL_ID OPTION_INDEX",
		Short: "Vote for an option of a poll",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint("poll id", args[0])
			if err != nil {
				return err
			}
			option, err := parseUint("option index", args[1])
			if err != nil {
				return err
			}
			return o.receipt(cmd, "vote", map[string]any{"pollId": id, "optionIndex": option})
		},
	}
}

func newShowPollCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show POLL_ID",
		Short: "Show a poll and its tally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint("poll id", args[0])
			if err != nil {
				return err
			}
			res, err := o.call(cmd, api.PollPath, "get_poll", map[string]any{"pollId": id})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d %s\n", res.Get("id").Uint(), res.Get("title").String())
			if d := res.Get("description").String(); d != "" {
				fmt.Fprintln(out, d)
			}
			fmt.Fprintf(out, "creator: %s\n", res.Get("creator").String())
			fmt.Fprintf(out, "deadline: %s\n", formatDeadline(res.Get("deadline")))
			tb := table.New("Index", "Option", "Votes").WithWriter(out)
			tally := res.Get("tally").Array()
			for i, opt := range res.Get("options").Array() {
				var votes uint64
				if i < len(tally) {
					votes = tally[i].Uint()
				}
				tb.AddRow(i, opt.String(), votes)
			}
			tb.Print()
			return nil
		},
	}
}

func newListPollsCmd(o *options) *cobra.Command {
	var sortBy string
	c := &cobra.Command{
		Use:   "list",
		Short: "List all polls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := o.call(cmd, api.PollPath, "get_polls", map[string]any{"sortBy": sortBy})
			if err != nil {
				return err
			}
			printPolls(cmd, res)
			return nil
		},
	}
	c.Flags().StringVar(&sortBy, "sort", "", "order by time or popularity, id order when empty")
	return c
}

func newPollQueryCmd(o *options, use, short, method string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{}
			if len(args) == 1 {
				params["principal"] = args[0]
			}
			res, err := o.call(cmd, api.PollPath, method, params)
			if err != nil {
				return err
			}
			printPolls(cmd, res)
			return nil
		},
	}
}

func newVotesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "votes POLL_ID",
		Short: "List the votes of a poll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUint("poll id", args[0])
			if err != nil {
				return err
			}
			res, err := o.call(cmd, api.PollPath, "get_votes", map[string]any{"pollId": id})
			if err != nil {
				return err
			}
			tb := table.New("Voter", "Option", "VotedAt").WithWriter(cmd.OutOrStdout())
			for _, v := range res.Array() {
				tb.AddRow(v.Get("voter").String(), v.Get("optionIndex").Uint(), formatTime(v.Get("votedAt").Uint()))
			}
			tb.Print()
			return nil
		},
	}
}

func newPendingCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List rewards waiting for a retry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := o.call(cmd, api.PollPath, "pending_rewards", nil)
			if err != nil {
				return err
			}
			tb := table.New("Seq", "Memo", "Amount", "Attempts", "NextAttempt", "LastError").WithWriter(cmd.OutOrStdout())
			for _, r := range res.Array() {
				tb.AddRow(
					r.Get("seq").Uint(),
					r.Get("memo").String(),
					formatPPs(r.Get("amount").Uint()),
					r.Get("attempts").Uint(),
					formatTime(r.Get("nextAttemptAt").Uint()),
					r.Get("lastError").String(),
				)
			}
			tb.Print()
			return nil
		},
	}
}

func (o *options) call(cmd *cobra.Command, path, method string, params any) (gjson.Result, error) {
	cli, err := o.client()
	if err != nil {
		return gjson.Result{}, err
	}
	return cli.Call(cmd.Context(), path, method, params)
}

func (o *options) receipt(cmd *cobra.Command, method string, params map[string]any) error {
	res, err := o.call(cmd, api.PollPath, method, params)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "poll %d, reward %s\n", res.Get("pollId").Uint(), formatPPs(res.Get("reward").Uint()))
	if e := res.Get("rewardError"); e.Exists() {
		fmt.Fprintf(out, "reward queued for retry: %s\n", e.Get("message").String())
	}
	return nil
}

func printPolls(cmd *cobra.Command, res gjson.Result) {
	tb := table.New("ID", "Title", "Options", "Votes", "Deadline").WithWriter(cmd.OutOrStdout())
	for _, p := range res.Array() {
		var total uint64
		for _, t := range p.Get("tally").Array() {
			total += t.Uint()
		}
		options := make([]string, 0)
		for _, opt := range p.Get("options").Array() {
			options = append(options, opt.String())
		}
		tb.AddRow(p.Get("id").Uint(), p.Get("title").String(), strings.Join(options, " / "), total, formatDeadline(p.Get("deadline")))
	}
	tb.Print()
}

func formatDeadline(d gjson.Result) string {
	if !d.Exists() {
		return "none"
	}
	return formatTime(d.Uint())
}

func formatTime(ns uint64) string {
	return time.Unix(0, int64(ns)).UTC().Format(time.RFC3339)
}
