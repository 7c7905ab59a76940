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

package codec

import (
	"fmt"

	"github.com/movekit/movecall/errors"
	"github.com/movekit/movecall/typetag"
)

// CodecError is implemented by all errors returned
// when coercing or encoding arguments and type arguments
type CodecError interface {
	errors.UserError
	isCodecError()
}

// ArityMismatchError

type ArityMismatchError struct {
	Function string
	Expected int
	Actual   int
}

var _ CodecError = ArityMismatchError{}

func (ArityMismatchError) isCodecError() {}

func (ArityMismatchError) IsUserError() {}

func (e ArityMismatchError) Error() string {
	return fmt.Sprintf(
		"incorrect number of arguments for function `%s`: expected %d, got %d",
		e.Function,
		e.Expected,
		e.Actual,
	)
}

// GenericArityMismatchError

type GenericArityMismatchError struct {
	Function string
	Expected int
	Actual   int
}

var _ CodecError = GenericArityMismatchError{}

func (GenericArityMismatchError) isCodecError() {}

func (GenericArityMismatchError) IsUserError() {}

func (e GenericArityMismatchError) Error() string {
	return fmt.Sprintf(
		"incorrect number of type arguments for function `%s`: expected %d, got %d",
		e.Function,
		e.Expected,
		e.Actual,
	)
}

// InvalidArgumentError reports which argument failed to be coerced or encoded

type InvalidArgumentError struct {
	Index int
	Type  typetag.TypeTag
	Err   error
}

var _ CodecError = InvalidArgumentError{}

func (InvalidArgumentError) isCodecError() {}

func (InvalidArgumentError) IsUserError() {}

func (e InvalidArgumentError) Unwrap() error {
	return e.Err
}

func (e InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument at index %d of type `%s`: %s", e.Index, e.Type, e.Err)
}

// InvalidTypeArgumentError

type InvalidTypeArgumentError struct {
	Index   int
	Literal string
	Err     error
}

var _ CodecError = InvalidTypeArgumentError{}

func (InvalidTypeArgumentError) isCodecError() {}

func (InvalidTypeArgumentError) IsUserError() {}

func (e InvalidTypeArgumentError) Unwrap() error {
	return e.Err
}

func (e InvalidTypeArgumentError) Error() string {
	return fmt.Sprintf("invalid type argument %q at index %d: %s", e.Literal, e.Index, e.Err)
}

// InvalidBoolError

type InvalidBoolError struct {
	Literal string
}

var _ CodecError = InvalidBoolError{}
var _ errors.SecondaryError = InvalidBoolError{}

func (InvalidBoolError) isCodecError() {}

func (InvalidBoolError) IsUserError() {}

func (e InvalidBoolError) Error() string {
	return fmt.Sprintf("invalid bool literal %q", e.Literal)
}

func (InvalidBoolError) SecondaryError() string {
	return "expected `true` or `false`"
}

// InvalidNumberError

type InvalidNumberError struct {
	Literal string
	Type    typetag.TypeTag
}

var _ CodecError = InvalidNumberError{}
var _ errors.SecondaryError = InvalidNumberError{}

func (InvalidNumberError) isCodecError() {}

func (InvalidNumberError) IsUserError() {}

func (e InvalidNumberError) Error() string {
	return fmt.Sprintf("invalid %s literal %q", e.Type, e.Literal)
}

func (InvalidNumberError) SecondaryError() string {
	return "expected a decimal number, or a hexadecimal number with 0x prefix"
}

// OutOfRangeError

type OutOfRangeError struct {
	Literal string
	Type    typetag.TypeTag
}

var _ CodecError = OutOfRangeError{}

func (OutOfRangeError) isCodecError() {}

func (OutOfRangeError) IsUserError() {}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("literal %q is out of range for type `%s`", e.Literal, e.Type)
}

// InvalidAddressError

type InvalidAddressError struct {
	Literal string
	Err     error
}

var _ CodecError = InvalidAddressError{}

func (InvalidAddressError) isCodecError() {}

func (InvalidAddressError) IsUserError() {}

func (e InvalidAddressError) Unwrap() error {
	return e.Err
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address literal %q: %s", e.Literal, e.Err)
}

// InvalidVectorError

type InvalidVectorError struct {
	Literal string
	Reason  string
}

var _ CodecError = InvalidVectorError{}
var _ errors.SecondaryError = InvalidVectorError{}

func (InvalidVectorError) isCodecError() {}

func (InvalidVectorError) IsUserError() {}

func (e InvalidVectorError) Error() string {
	return fmt.Sprintf("invalid vector literal %q: %s", e.Literal, e.Reason)
}

func (InvalidVectorError) SecondaryError() string {
	return "expected comma-separated elements enclosed in brackets, e.g. `[1, 2]`"
}

// UnsupportedTypeError

type UnsupportedTypeError struct {
	Type typetag.TypeTag
}

var _ CodecError = UnsupportedTypeError{}

func (UnsupportedTypeError) isCodecError() {}

func (UnsupportedTypeError) IsUserError() {}

func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("values of type `%s` cannot be passed as literal arguments", e.Type)
}
