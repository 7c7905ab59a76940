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

// Package abicache memoizes extracted module ABIs,
// keyed by module ID and the hash of the module bytecode.
package abicache

import (
	"context"

	cacheimpl "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
	"golang.org/x/crypto/sha3"

	"github.com/movekit/movecall/abi"
	"github.com/movekit/movecall/common"
)

type Key struct {
	ModuleID common.ModuleID
	CodeHash [32]byte
}

func NewKey(id common.ModuleID, code []byte) Key {
	return Key{
		ModuleID: id,
		CodeHash: sha3.Sum256(code),
	}
}

// Cache is an LRU cache of module ABIs. It is safe for concurrent use.
// Cached modules are shared, so they must not be mutated.
//
// The cache runs a background janitor, which is stopped by Close.
type Cache struct {
	cache    *cacheimpl.Cache[Key, *abi.Module]
	capacity int
	cancel   context.CancelFunc
}

func New(capacity int) *Cache {
	ctx, cancel := context.WithCancel(context.Background())

	return &Cache{
		cache: cacheimpl.NewContext[Key, *abi.Module](
			ctx,
			cacheimpl.AsLRU[Key, *abi.Module](
				lru.WithCapacity(capacity),
			),
		),
		capacity: capacity,
		cancel:   cancel,
	}
}

// Close stops the janitor of the cache
func (c *Cache) Close() {
	c.cancel()
}

func (c *Cache) Capacity() int {
	return c.capacity
}

func (c *Cache) Get(id common.ModuleID, code []byte) (*abi.Module, bool) {
	return c.cache.Get(NewKey(id, code))
}

func (c *Cache) Set(id common.ModuleID, code []byte, module *abi.Module) {
	c.cache.Set(NewKey(id, code), module)
}

// GetOrExtract returns the cached ABI of the given module,
// or extracts and caches it. Extraction failures are not cached.
func (c *Cache) GetOrExtract(
	id common.ModuleID,
	code []byte,
	extract func(code []byte) (*abi.Module, error),
) (
	module *abi.Module,
	cached bool,
	err error,
) {
	key := NewKey(id, code)

	module, ok := c.cache.Get(key)
	if ok {
		return module, true, nil
	}

	module, err = extract(code)
	if err != nil {
		return nil, false, err
	}

	c.cache.Set(key, module)

	return module, false, nil
}
