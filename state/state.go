// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Package state holds the records persisted by the poll service and the token ledger, and their
// binary encoding.
package state

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// MaxPollSize is the upper bound of a serialized poll
	MaxPollSize = 1 << 20
	// MaxVoteSize is the upper bound of a serialized vote
	MaxVoteSize = 1 << 10
	// MaxAccountSize is the upper bound of a serialized account
	MaxAccountSize = 1 << 10
	// MaxPendingRewardSize is the upper bound of a serialized pending reward
	MaxPendingRewardSize = 1 << 10
)

var (
	// ErrStateSerialization is the error that the state marshaling is failed
	ErrStateSerialization = errors.New("failed to marshal state")
	// ErrStateDeserialization is the error that the state un-marshaling is failed
	ErrStateDeserialization = errors.New("failed to unmarshal state")
	// ErrNotEnoughBalance is the error that the balance is not enough
	ErrNotEnoughBalance = errors.New("not enough balance")
	// ErrBalanceOverflow is the error that a credit exceeds the u64 range
	ErrBalanceOverflow = errors.New("balance overflow")
)

type (
	// Serializer has Serialize method to serialize struct to binary data.
	Serializer interface {
		Serialize() ([]byte, error)
	}

	// Deserializer has Deserialize method to deserialize binary data to struct.
	Deserializer interface {
		Deserialize([]byte) error
	}
)

// encode writes v with fields in declaration order, so equal records always encode to equal bytes
func encode(v interface{}, limit int) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(ErrStateSerialization, err.Error())
	}
	if buf.Len() > limit {
		return nil, errors.Wrapf(ErrStateSerialization, "%T is %d bytes, limit %d", v, buf.Len(), limit)
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return errors.Wrap(ErrStateDeserialization, err.Error())
	}
	return nil
}

// SafeAdd returns a+b, or ErrBalanceOverflow if the sum exceeds the u64 range
func SafeAdd(a, b uint64) (uint64, error) {
	s := a + b
	if s < a {
		return 0, errors.Wrapf(ErrBalanceOverflow, "%d + %d", a, b)
	}
	return s, nil
}
