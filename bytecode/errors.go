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

package bytecode

import (
	"fmt"

	"github.com/movekit/movecall/errors"
)

// AbiError is an error reported when extracting the ABI of a module
type AbiError interface {
	errors.UserError
	isAbiError()
}

// MalformedModuleError is returned when the module bytecode cannot be deserialized,
// e.g. because it is truncated, has an invalid header, or references
// a table entry which does not exist.
type MalformedModuleError struct {
	Offset int
	Reason string
}

var _ AbiError = MalformedModuleError{}

func (MalformedModuleError) isAbiError() {}

func (MalformedModuleError) IsUserError() {}

func (e MalformedModuleError) Error() string {
	return fmt.Sprintf("malformed module at offset %d: %s", e.Offset, e.Reason)
}

// malformedModuleError is used internally to abort deserialization.
// It is panicked and recovered in ExtractABI.
type malformedModuleError struct {
	MalformedModuleError
}

func newMalformedModuleError(offset int, format string, args ...any) malformedModuleError {
	return malformedModuleError{
		MalformedModuleError{
			Offset: offset,
			Reason: fmt.Sprintf(format, args...),
		},
	}
}
