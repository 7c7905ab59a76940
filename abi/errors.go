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

package abi

import (
	"fmt"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/errors"
)

// FunctionNotFoundError is returned when a module does not declare the requested function
type FunctionNotFoundError struct {
	ModuleID          common.ModuleID
	Name              string
	SuggestedFunction string
}

var _ errors.UserError = FunctionNotFoundError{}
var _ errors.SecondaryError = FunctionNotFoundError{}

func (FunctionNotFoundError) IsUserError() {}

func (e FunctionNotFoundError) Error() string {
	return fmt.Sprintf(
		"cannot find function `%s` in module `%s`",
		e.Name,
		e.ModuleID,
	)
}

func (e FunctionNotFoundError) SecondaryError() string {
	if e.SuggestedFunction != "" {
		return fmt.Sprintf("did you mean `%s`?", e.SuggestedFunction)
	}
	return "unknown function"
}

func closestName(name string, candidates []string) (closest string) {
	nameRunes := []rune(name)

	closestDistance := len(name)

	for _, candidate := range candidates {
		distance := levenshtein.DistanceForStrings(
			nameRunes,
			[]rune(candidate),
			levenshtein.DefaultOptions,
		)

		// Don't suggest a name which would require replacing all of its text
		if distance < closestDistance && distance < len(candidate) {
			closest = candidate
			closestDistance = distance
		}
	}

	return
}
