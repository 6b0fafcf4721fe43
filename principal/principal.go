// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Package principal defines the fixed-width caller identity shared by the poll service and the token ledger.
package principal

import (
	"bytes"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"hash/crc32"
	"strings"

	"github.com/pkg/errors"
)

// Length is the byte length of a principal
const Length = 29

const (
	_checksumLength = 4
	_groupSize      = 5
	_selfAuthTag    = 0x02
	_anonymousTag   = 0x04
)

var (
	// ErrInvalidPrincipal indicates a malformed binary or textual principal
	ErrInvalidPrincipal = errors.New("invalid principal")

	// Anonymous is the identity of an unauthenticated caller
	Anonymous = Principal{Length - 1: _anonymousTag}

	_encoding = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// Principal is a 29-byte opaque caller identifier, ordered by its bytes
type Principal [Length]byte

// FromBytes converts a 29-byte slice into a principal
func FromBytes(b []byte) (Principal, error) {
	var p Principal
	if len(b) != Length {
		return p, errors.Wrapf(ErrInvalidPrincipal, "expect %d bytes, got %d", Length, len(b))
	}
	copy(p[:], b)
	return p, nil
}

// FromString parses the textual form produced by String
func FromString(s string) (Principal, error) {
	var p Principal
	raw, err := _encoding.DecodeString(strings.ToUpper(strings.ReplaceAll(s, "-", "")))
	if err != nil {
		return p, errors.Wrapf(ErrInvalidPrincipal, "failed to decode %s: %v", s, err)
	}
	if len(raw) != _checksumLength+Length {
		return p, errors.Wrapf(ErrInvalidPrincipal, "wrong length of %s", s)
	}
	if binary.BigEndian.Uint32(raw[:_checksumLength]) != crc32.ChecksumIEEE(raw[_checksumLength:]) {
		return p, errors.Wrapf(ErrInvalidPrincipal, "checksum mismatch of %s", s)
	}
	copy(p[:], raw[_checksumLength:])
	return p, nil
}

// SelfAuthenticating derives the principal owned by a public key, sha224(key) followed by the self
// authenticating tag
func SelfAuthenticating(pubKey []byte) Principal {
	var p Principal
	h := sha256.Sum224(pubKey)
	copy(p[:], h[:])
	p[Length-1] = _selfAuthTag
	return p
}

// MustFromString is FromString that panics on error, for constants and tests
func MustFromString(s string) Principal {
	p, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes returns a copy of the raw bytes
func (p Principal) Bytes() []byte {
	b := make([]byte, Length)
	copy(b, p[:])
	return b
}

// String returns the checksummed base32 form, lower case, in dash separated groups of five
func (p Principal) String() string {
	raw := make([]byte, _checksumLength, _checksumLength+Length)
	binary.BigEndian.PutUint32(raw, crc32.ChecksumIEEE(p[:]))
	raw = append(raw, p[:]...)
	enc := strings.ToLower(_encoding.EncodeToString(raw))

	var sb strings.Builder
	for i := 0; i < len(enc); i += _groupSize {
		if i > 0 {
			sb.WriteByte('-')
		}
		end := i + _groupSize
		if end > len(enc) {
			end = len(enc)
		}
		sb.WriteString(enc[i:end])
	}
	return sb.String()
}

// IsAnonymous tells whether p is the anonymous sentinel
func (p Principal) IsAnonymous() bool { return p == Anonymous }

// Compare orders principals by byte value
func (p Principal) Compare(o Principal) int { return bytes.Compare(p[:], o[:]) }

// MarshalText implements encoding.TextMarshaler
func (p Principal) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Principal) UnmarshalText(text []byte) error {
	v, err := FromString(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (p Principal) MarshalBinary() ([]byte, error) { return p.Bytes(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (p *Principal) UnmarshalBinary(b []byte) error {
	v, err := FromBytes(b)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
