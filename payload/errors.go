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

package payload

import (
	"fmt"

	"github.com/movekit/movecall/abi"
	"github.com/movekit/movecall/errors"
	"github.com/movekit/movecall/reference"
)

// EncodingError is implemented by all errors returned when encoding a call payload
type EncodingError interface {
	errors.UserError
	isEncodingError()
}

// NotCallableError is returned when the called function is not an entry function
type NotCallableError struct {
	Function   reference.FunctionReference
	Visibility abi.Visibility
}

var _ EncodingError = NotCallableError{}
var _ errors.SecondaryError = NotCallableError{}

func (NotCallableError) isEncodingError() {}

func (NotCallableError) IsUserError() {}

func (e NotCallableError) Error() string {
	return fmt.Sprintf(
		"cannot call %s function `%s`: not an entry function",
		e.Visibility,
		e.Function,
	)
}

func (NotCallableError) SecondaryError() string {
	return "only functions declared with `entry` can be called"
}
