/*
 * Cadence - The resource-oriented smart contract programming language
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package rpc implements a module source backed by the JSON-RPC API of a Move VM node.
package rpc

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/source"
	"github.com/movekit/movecall/target/move"
)

const MethodGetModule = "mvm_getModule"

const DefaultTimeout = 30 * time.Second

type Config struct {
	URL     string
	Timeout time.Duration
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	JSONRPC string  `json:"jsonrpc"`
	ID      uint64  `json:"id"`
	Result  *string `json:"result"`
	Error   *Error  `json:"error"`
}

// Error is an error returned by the node
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("RPC error %d: %s: %v", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Source fetches modules with the `mvm_getModule` method.
// The module ID is passed BCS-encoded, and the snapshot as the block hash.
type Source struct {
	url    string
	client *resty.Client
	nextID atomic.Uint64
}

var _ source.ModuleSource = &Source{}

func NewSource(config Config) *Source {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Source{
		url:    config.URL,
		client: client,
	}
}

func encodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}

func (s *Source) call(ctx context.Context, method string, params ...any) (*string, error) {
	id := s.nextID.Add(1)

	var rpcResponse response

	res, err := s.client.R().
		SetContext(ctx).
		SetBody(request{
			JSONRPC: "2.0",
			ID:      id,
			Method:  method,
			Params:  params,
		}).
		SetResult(&rpcResponse).
		SetError(&rpcResponse).
		Post(s.url)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}

	if rpcResponse.Error != nil {
		return nil, rpcResponse.Error
	}

	if res.IsError() {
		return nil, fmt.Errorf("%s request failed: HTTP status %s", method, res.Status())
	}

	if rpcResponse.ID != id {
		return nil, fmt.Errorf("%s response has ID %d, expected %d", method, rpcResponse.ID, id)
	}

	return rpcResponse.Result, nil
}

func (s *Source) GetModule(ctx context.Context, id common.ModuleID, snapshot source.Snapshot) ([]byte, error) {
	var at any
	if snapshot != source.LatestSnapshot {
		at = string(snapshot)
	}

	result, err := s.call(ctx, MethodGetModule, encodeHex(move.EncodeModuleID(id)), at)
	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, source.ModuleNotFoundError{
			ID:       id,
			Snapshot: snapshot,
		}
	}

	code, err := decodeHex(*result)
	if err != nil {
		return nil, fmt.Errorf("%s returned invalid bytes: %w", MethodGetModule, err)
	}

	return code, nil
}
