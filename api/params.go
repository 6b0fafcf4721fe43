// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/iotexproject/pollrush/principal"
)

// uint64Param reads a non-negative integer given as a json number or a decimal string
func uint64Param(params gjson.Result, name string) (uint64, error) {
	v := params.Get(name)
	switch v.Type {
	case gjson.Number:
		u, err := strconv.ParseUint(v.Raw, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidRequest, "%s must be an unsigned integer, got %s", name, v.Raw)
		}
		return u, nil
	case gjson.String:
		u, err := strconv.ParseUint(v.Str, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidRequest, "%s must be an unsigned integer, got %q", name, v.Str)
		}
		return u, nil
	case gjson.Null:
		return 0, errors.Wrapf(ErrInvalidRequest, "missing %s", name)
	default:
		return 0, errors.Wrapf(ErrInvalidRequest, "%s must be an unsigned integer", name)
	}
}

func optionalUint64Param(params gjson.Result, name string) (*uint64, error) {
	if v := params.Get(name); !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	u, err := uint64Param(params, name)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func uint32Param(params gjson.Result, name string) (uint32, error) {
	u, err := uint64Param(params, name)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return 0, errors.Wrapf(ErrInvalidRequest, "%s exceeds %d", name, uint32(math.MaxUint32))
	}
	return uint32(u), nil
}

func stringParam(params gjson.Result, name string) (string, error) {
	v := params.Get(name)
	switch v.Type {
	case gjson.String:
		return v.Str, nil
	case gjson.Null:
		return "", nil
	default:
		return "", errors.Wrapf(ErrInvalidRequest, "%s must be a string", name)
	}
}

func stringsParam(params gjson.Result, name string) ([]string, error) {
	v := params.Get(name)
	if !v.Exists() {
		return nil, errors.Wrapf(ErrInvalidRequest, "missing %s", name)
	}
	if !v.IsArray() {
		return nil, errors.Wrapf(ErrInvalidRequest, "%s must be an array of strings", name)
	}
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.String {
			return nil, errors.Wrapf(ErrInvalidRequest, "%s must be an array of strings", name)
		}
		out = append(out, item.Str)
	}
	return out, nil
}

func principalParam(params gjson.Result, name string) (principal.Principal, error) {
	v := params.Get(name)
	if v.Type != gjson.String {
		return principal.Principal{}, errors.Wrapf(ErrInvalidRequest, "missing %s", name)
	}
	p, err := principal.FromString(v.Str)
	if err != nil {
		return p, errors.Wrapf(ErrInvalidRequest, "%s: %v", name, err)
	}
	return p, nil
}

// principalOrCaller reads an optional principal, defaulting to the caller
func principalOrCaller(params gjson.Result, name string, caller principal.Principal) (principal.Principal, error) {
	if v := params.Get(name); !v.Exists() || v.Type == gjson.Null {
		return caller, nil
	}
	return principalParam(params, name)
}
