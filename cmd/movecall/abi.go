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
	"fmt"
	"io"
	"strings"

	"github.com/movekit/movecall/abi"
	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/source"
)

func runABI(env *environment, args []string) error {
	flags := newFlagSet(env, "abi")

	var sourceFlags commonFlags
	sourceFlags.register(flags)

	format := flags.String("format", string(OutputFormatText), "output format: text, json, yaml or cbor")
	query := flags.String("query", "", "jq query applied to the JSON ABI")
	snapshot := flags.String("snapshot", "", "block hash of the chain state, latest if empty")

	err := parseFlags(flags, args)
	if err != nil {
		return err
	}

	if flags.NArg() != 1 {
		return newUsageError("expected a module ID, e.g. 0x1::Coin")
	}

	id, err := common.ParseModuleID(flags.Arg(0))
	if err != nil {
		return newUsageError("%s", err)
	}

	outputFormat := OutputFormat(*format)
	if *query != "" && outputFormat == OutputFormatText {
		outputFormat = OutputFormatJSON
	}

	config, err := sourceFlags.load(flags)
	if err != nil {
		return err
	}

	rt, err := config.newRuntime(env.stderr, env.colors)
	if err != nil {
		return err
	}
	defer rt.Close()

	switch outputFormat {
	case OutputFormatText:
		module, err := rt.GetModuleABI(env.ctx, id, source.Snapshot(*snapshot))
		if err != nil {
			return err
		}
		return writeModuleText(env.stdout, module)

	case OutputFormatCBOR:
		module, err := rt.GetModuleABI(env.ctx, id, source.Snapshot(*snapshot))
		if err != nil {
			return err
		}
		encoded, err := abi.EncodeCBOR(module)
		if err != nil {
			return err
		}
		_, err = env.stdout.Write(encoded)
		return err

	default:
		document, err := rt.GetModuleABIJSON(env.ctx, id, source.Snapshot(*snapshot))
		if err != nil {
			return err
		}
		return writeJSON(env.ctx, env.stdout, outputFormat, document, *query, env.colors)
	}
}

// writeModuleText writes the declarations of the module in Move source syntax
func writeModuleText(w io.Writer, module *abi.Module) error {
	var b strings.Builder

	_, _ = fmt.Fprintf(&b, "module %s {\n", module.ID)

	for _, friend := range module.Friends {
		_, _ = fmt.Fprintf(&b, "    friend %s;\n", friend)
	}

	for _, structure := range module.Structs {
		b.WriteString("    ")
		if structure.IsNative {
			b.WriteString("native ")
		}
		_, _ = fmt.Fprintf(&b, "struct %s", structure.Name)
		if structure.Abilities != 0 {
			_, _ = fmt.Fprintf(&b, " has %s", strings.Join(structure.Abilities.Strings(), ", "))
		}
		b.WriteString("\n")

		for _, field := range structure.Fields {
			_, _ = fmt.Fprintf(&b, "        %s: %s\n", field.Name, field.Type)
		}
	}

	for _, function := range module.Functions {
		_, _ = fmt.Fprintf(&b, "    %s\n", function.Signature())
	}

	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}
