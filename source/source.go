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

// Package source provides access to deployed module bytecode.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/errors"
	"github.com/movekit/movecall/typetag"
)

// Snapshot identifies the chain state modules are read from,
// e.g. a block hash. The empty snapshot refers to the latest state.
type Snapshot string

const LatestSnapshot Snapshot = ""

type ModuleSource interface {
	// GetModule returns the bytecode of the given module at the given snapshot.
	// If the module does not exist, a ModuleNotFoundError is returned.
	GetModule(ctx context.Context, id common.ModuleID, snapshot Snapshot) ([]byte, error)
}

// ModuleNotFoundError

type ModuleNotFoundError struct {
	ID       common.ModuleID
	Snapshot Snapshot
}

var _ errors.UserError = ModuleNotFoundError{}

func (ModuleNotFoundError) IsUserError() {}

func (e ModuleNotFoundError) Error() string {
	if e.Snapshot == LatestSnapshot {
		return fmt.Sprintf("module %s not found", e.ID)
	}
	return fmt.Sprintf("module %s not found at %s", e.ID, e.Snapshot)
}

// InMemorySource serves modules from memory, ignoring snapshots.
// It is safe for concurrent use.
type InMemorySource struct {
	mu      sync.RWMutex
	modules map[common.ModuleID][]byte
}

var _ ModuleSource = &InMemorySource{}

func NewInMemorySource() *InMemorySource {
	return &InMemorySource{
		modules: map[common.ModuleID][]byte{},
	}
}

func (s *InMemorySource) SetModule(id common.ModuleID, code []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.modules[id] = code
}

func (s *InMemorySource) GetModule(ctx context.Context, id common.ModuleID, snapshot Snapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	code, ok := s.modules[id]
	if !ok {
		return nil, ModuleNotFoundError{
			ID:       id,
			Snapshot: snapshot,
		}
	}
	return code, nil
}

// ModuleFileExtension is the extension of compiled module files
const ModuleFileExtension = ".mv"

// DirectorySource serves compiled modules from a directory, ignoring snapshots.
//
// The module `<address>::<name>` is read from `<root>/<address>/<name>.mv`,
// where the address is in short hex form with 0x prefix, e.g. `0x1`,
// or from `<root>/<name>.mv`, as produced by the Move compiler.
type DirectorySource struct {
	Root string
}

var _ ModuleSource = DirectorySource{}

func NewDirectorySource(root string) DirectorySource {
	return DirectorySource{
		Root: root,
	}
}

func (s DirectorySource) paths(id common.ModuleID) []string {
	fileName := id.Name + ModuleFileExtension
	return []string{
		filepath.Join(s.Root, id.Address.ShortHexWithPrefix(), fileName),
		filepath.Join(s.Root, fileName),
	}
}

func (s DirectorySource) GetModule(ctx context.Context, id common.ModuleID, snapshot Snapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !typetag.IsValidIdentifier(id.Name) {
		return nil, ModuleNotFoundError{
			ID:       id,
			Snapshot: snapshot,
		}
	}

	for _, path := range s.paths(id) {
		code, err := os.ReadFile(path)
		if err == nil {
			return code, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return nil, ModuleNotFoundError{
		ID:       id,
		Snapshot: snapshot,
	}
}
