// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package batch

import "fmt"

const (
	// Put indicate the type of write operation to be Put
	Put WriteType = iota
	// Delete indicate the type of write operation to be Delete
	Delete
)

type (
	// WriteType is the type of write
	WriteType uint8

	// WriteInfo is the struct to store Put/Delete operation info
	WriteInfo struct {
		writeType   WriteType
		namespace   string
		key         []byte
		value       []byte
		errorFormat string
		errorArgs   []interface{}
	}
)

// NewWriteInfo creates a new write info, key and value are copied
func NewWriteInfo(
	writeType WriteType,
	namespace string,
	key,
	value []byte,
	errorFormat string,
	errorArgs []interface{},
) *WriteInfo {
	return &WriteInfo{
		writeType:   writeType,
		namespace:   namespace,
		key:         append([]byte(nil), key...),
		value:       append([]byte(nil), value...),
		errorFormat: errorFormat,
		errorArgs:   errorArgs,
	}
}

// Namespace returns the namespace of a write info
func (wi *WriteInfo) Namespace() string {
	return wi.namespace
}

// WriteType returns the type of a write info
func (wi *WriteInfo) WriteType() WriteType {
	return wi.writeType
}

// Key returns a copy of key
func (wi *WriteInfo) Key() []byte {
	return append([]byte(nil), wi.key...)
}

// Value returns a copy of value
func (wi *WriteInfo) Value() []byte {
	return append([]byte(nil), wi.value...)
}

// Error describes the write for wrapping a failure
func (wi *WriteInfo) Error() string {
	if wi.errorFormat == "" {
		return fmt.Sprintf("failed to write %s/%x", wi.namespace, wi.key)
	}
	return fmt.Sprintf(wi.errorFormat, wi.errorArgs...)
}
