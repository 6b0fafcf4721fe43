// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package identityset

import (
	"fmt"

	"github.com/iotexproject/pollrush/principal"
)

// Size returns the number of identities in the set
func Size() int {
	return 32
}

// PublicKey returns the i-th identity's public key bytes
func PublicKey(i int) []byte {
	if i < 0 || i >= Size() {
		panic(fmt.Sprintf("identity %d out of range", i))
	}
	return []byte(fmt.Sprintf("pollrush-test-identity-%02d", i))
}

// Principal returns the i-th identity's principal
func Principal(i int) principal.Principal {
	return principal.SelfAuthenticating(PublicKey(i))
}
