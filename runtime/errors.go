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

package runtime

import (
	"fmt"

	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/errors"
)

// ModuleSourceError is returned when the module source fails
// for a reason other than a missing module, e.g. a network failure
type ModuleSourceError struct {
	ID  common.ModuleID
	Err error
}

var _ errors.UserError = ModuleSourceError{}

func (ModuleSourceError) IsUserError() {}

func (e ModuleSourceError) Unwrap() error {
	return e.Err
}

func (e ModuleSourceError) Error() string {
	return fmt.Sprintf("failed to load module %s: %s", e.ID, e.Err)
}

// ModuleMismatchError is returned when the bytecode provided for a module
// declares a different module
type ModuleMismatchError struct {
	Expected common.ModuleID
	Actual   common.ModuleID
}

var _ errors.UserError = ModuleMismatchError{}

func (ModuleMismatchError) IsUserError() {}

func (e ModuleMismatchError) Error() string {
	return fmt.Sprintf(
		"bytecode loaded for module %s declares module %s",
		e.Expected,
		e.Actual,
	)
}
