// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/iotexproject/pollrush/poll"
	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/state"
)

const _defaultClientTimeout = 10 * time.Second

var _ poll.Minter = (*LedgerClient)(nil)

type (
	// Client calls the methods of a remote node
	Client struct {
		cli *resty.Client
	}

	// ClientOption sets a client option
	ClientOption func(*resty.Client)

	// LedgerClient reaches a remote token ledger
	LedgerClient struct {
		*Client
	}

	envelope struct {
		Method string `json:"method"`
		Params any    `json:"params,omitempty"`
	}
)

// WithTimeout bounds each request
func WithTimeout(d time.Duration) ClientOption {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

// WithRetry retries requests failing at the transport level
func WithRetry(count int, wait time.Duration) ClientOption {
	return func(c *resty.Client) {
		c.SetRetryCount(count).SetRetryWaitTime(wait)
	}
}

// NewClient creates a client of the node at endpoint, calling as caller
func NewClient(endpoint string, caller principal.Principal, opts ...ClientOption) *Client {
	cli := resty.New().
		SetBaseURL(strings.TrimSuffix(endpoint, "/")).
		SetTimeout(_defaultClientTimeout).
		SetHeader("Content-Type", "application/json")
	if caller != principal.Anonymous {
		cli.SetHeader(CallerHeader, caller.String())
	}
	for _, opt := range opts {
		opt(cli)
	}
	return &Client{cli: cli}
}

// NewLedgerClient creates a client of the ledger at endpoint, minting as self
func NewLedgerClient(endpoint string, self principal.Principal, opts ...ClientOption) *LedgerClient {
	return &LedgerClient{Client: NewClient(endpoint, self, opts...)}
}

// Call invokes method at path and returns the result. An error envelope is mapped back to the
// sentinel error of its kind.
func (c *Client) Call(ctx context.Context, path, method string, params any) (gjson.Result, error) {
	resp, err := c.cli.R().
		SetContext(ctx).
		SetBody(envelope{Method: method, Params: params}).
		Post(path)
	if err != nil {
		return gjson.Result{}, errors.Wrapf(err, "failed to call %s %s", path, method)
	}
	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.Wrapf(ErrInternal, "%s %s: status %d", path, method, resp.StatusCode())
	}
	if e := gjson.GetBytes(body, "error"); e.Exists() {
		return gjson.Result{}, errors.Wrap(KindError(e.Get("kind").String()), e.Get("message").String())
	}
	return gjson.GetBytes(body, "result"), nil
}

// Mint credits amount to `to` on the remote ledger
func (c *LedgerClient) Mint(ctx context.Context, to principal.Principal, amount uint64, memo string) error {
	_, err := c.Call(ctx, LedgerPath, "mint", map[string]any{
		"to":     to.String(),
		"amount": amount,
		"memo":   memo,
	})
	return err
}

// BalanceOf returns the balance of owner
func (c *LedgerClient) BalanceOf(ctx context.Context, owner principal.Principal) (uint64, error) {
	res, err := c.Call(ctx, LedgerPath, "balance_of", map[string]any{"owner": owner.String()})
	if err != nil {
		return 0, err
	}
	return res.Get("amount").Uint(), nil
}

// Allowance returns how much spender may move from owner
func (c *LedgerClient) Allowance(ctx context.Context, owner, spender principal.Principal) (uint64, error) {
	res, err := c.Call(ctx, LedgerPath, "allowance", map[string]any{
		"owner":   owner.String(),
		"spender": spender.String(),
	})
	if err != nil {
		return 0, err
	}
	return res.Get("amount").Uint(), nil
}

// TokenInfo returns the token metadata
func (c *LedgerClient) TokenInfo(ctx context.Context) (state.TokenInfo, error) {
	res, err := c.Call(ctx, LedgerPath, "get_token_info", nil)
	if err != nil {
		return state.TokenInfo{}, err
	}
	return state.TokenInfo{
		Name:        res.Get("name").String(),
		Symbol:      res.Get("symbol").String(),
		Decimals:    uint8(res.Get("decimals").Uint()),
		TotalSupply: res.Get("totalSupply").Uint(),
	}, nil
}
