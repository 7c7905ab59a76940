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
	"encoding/json"
	"fmt"

	"github.com/movekit/movecall/reference"
)

type parsedReference struct {
	Address  string `json:"address"`
	Module   string `json:"module"`
	Function string `json:"function"`
}

func runParse(env *environment, args []string) error {
	flags := newFlagSet(env, "parse")
	functionName := flags.String("function", "", "expected function name")
	format := flags.String("format", string(OutputFormatText), "output format: text, json or yaml")

	err := parseFlags(flags, args)
	if err != nil {
		return err
	}

	if flags.NArg() != 2 {
		return newUsageError("expected a descriptor and a module name")
	}

	ref, err := reference.ParseWithFunction(flags.Arg(0), flags.Arg(1), *functionName)
	if err != nil {
		return err
	}

	if OutputFormat(*format) == OutputFormatText {
		_, err = fmt.Fprintln(env.stdout, ref)
		return err
	}

	document, err := json.Marshal(parsedReference{
		Address:  ref.ModuleAddress.ShortHexWithPrefix(),
		Module:   ref.ModuleName,
		Function: ref.FunctionName,
	})
	if err != nil {
		return err
	}

	return writeJSON(env.ctx, env.stdout, OutputFormat(*format), document, "", env.colors)
}
