// SPDX-License-Identifier: MIT

package types

import (
	"encoding/json"
	"errors"
)

// EncodeSettlementRequest serializes a settlement request to bytes
// (JSON-based wire form; this is the proposer's `encodedInput`).
func EncodeSettlementRequest(req *SettlementRequest) ([]byte, error) {
	if req == nil {
		return nil, errors.New("nil settlement request")
	}
	return json.Marshal(req)
}

// DecodeSettlementRequest deserializes a settlement request from bytes.
func DecodeSettlementRequest(data []byte) (*SettlementRequest, error) {
	if len(data) == 0 {
		return nil, errors.New("empty settlement request data")
	}
	var req SettlementRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// EncodeBlockContext serializes a block context to bytes.
func EncodeBlockContext(bc *BlockContext) ([]byte, error) {
	if bc == nil {
		return nil, errors.New("nil block context")
	}
	return json.Marshal(bc)
}

// DecodeBlockContext deserializes a block context from bytes.
func DecodeBlockContext(data []byte) (*BlockContext, error) {
	if len(data) == 0 {
		return nil, errors.New("empty block context data")
	}
	var bc BlockContext
	if err := json.Unmarshal(data, &bc); err != nil {
		return nil, err
	}
	return &bc, nil
}
