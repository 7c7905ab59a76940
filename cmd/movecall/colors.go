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

package main

import (
	goErrors "errors"
	"fmt"
	"io"

	"github.com/logrusorgru/aurora/v4"

	"github.com/movekit/movecall/errors"
)

func colorizeError(au *aurora.Aurora, message string) string {
	return au.Bold(au.Red(message)).String()
}

func colorizeSecondary(au *aurora.Aurora, message string) string {
	return au.Yellow(message).String()
}

// printError writes the error, and its secondary message, if any
func printError(w io.Writer, err error, colors bool) {
	au := aurora.New(aurora.WithColors(colors))

	_, _ = fmt.Fprintf(w, "%s %s\n", colorizeError(au, "error:"), err)

	var secondaryErr errors.SecondaryError
	if goErrors.As(err, &secondaryErr) {
		_, _ = fmt.Fprintf(w, "  %s\n", colorizeSecondary(au, secondaryErr.SecondaryError()))
	}

	if errors.IsInternalError(err) {
		_, _ = fmt.Fprintln(w, "  this is an implementation error, please report it")
	}
}
