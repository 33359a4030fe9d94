// SPDX-License-Identifier: MIT

package types

import (
	"encoding/hex"
	"errors"
	"strings"
)

// =========================
// Hash type (32 bytes)
// =========================

type Hash [32]byte

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func ZeroHash() Hash {
	return Hash{}
}

// ParseHash converts a hex string -> Hash.
func ParseHash(s string) (Hash, error) {
	if strings.HasPrefix(s, "0x") {
		s = s[2:]
	}
	if len(s) != 64 {
		return Hash{}, errors.New("invalid hash length")
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, err
	}
	var h Hash
	copy(h[:], data)
	return h, nil
}

// Address.IsZero checks if address is zero address
func (a Address) IsZero() bool {
	return a == Address{}
}
