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

package reference

import (
	"fmt"

	"github.com/movekit/movecall/errors"
)

// ParseError is implemented by all errors returned when parsing a descriptor
type ParseError interface {
	errors.UserError
	isParseError()
}

// MalformedDescriptorError

type MalformedDescriptorError struct {
	Descriptor string
	Reason     string
}

var _ ParseError = MalformedDescriptorError{}
var _ errors.SecondaryError = MalformedDescriptorError{}

func (MalformedDescriptorError) isParseError() {}

func (MalformedDescriptorError) IsUserError() {}

func (e MalformedDescriptorError) Error() string {
	return fmt.Sprintf("malformed function descriptor %q: %s", e.Descriptor, e.Reason)
}

func (MalformedDescriptorError) SecondaryError() string {
	return "expected <address>::<module>::<function>"
}

// InvalidAddressError

type InvalidAddressError struct {
	Descriptor string
	Address    string
	Err        error
}

var _ ParseError = InvalidAddressError{}

func (InvalidAddressError) isParseError() {}

func (InvalidAddressError) IsUserError() {}

func (e InvalidAddressError) Unwrap() error {
	return e.Err
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf(
		"invalid address %q in function descriptor %q: %s",
		e.Address,
		e.Descriptor,
		e.Err,
	)
}

// InconsistentModuleNameError

type InconsistentModuleNameError struct {
	Descriptor       string
	DescriptorModule string
	ModuleName       string
}

var _ ParseError = InconsistentModuleNameError{}

func (InconsistentModuleNameError) isParseError() {}

func (InconsistentModuleNameError) IsUserError() {}

func (e InconsistentModuleNameError) Error() string {
	return fmt.Sprintf(
		"module name %q does not match module %q of function descriptor %q",
		e.ModuleName,
		e.DescriptorModule,
		e.Descriptor,
	)
}

// InconsistentFunctionNameError

type InconsistentFunctionNameError struct {
	Descriptor         string
	DescriptorFunction string
	FunctionName       string
}

var _ ParseError = InconsistentFunctionNameError{}

func (InconsistentFunctionNameError) isParseError() {}

func (InconsistentFunctionNameError) IsUserError() {}

func (e InconsistentFunctionNameError) Error() string {
	return fmt.Sprintf(
		"function name %q does not match function %q of function descriptor %q",
		e.FunctionName,
		e.DescriptorFunction,
		e.Descriptor,
	)
}
