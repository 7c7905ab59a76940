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
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/movekit/movecall/codec"
	"github.com/movekit/movecall/runtime"
	"github.com/movekit/movecall/source"
)

type encodedValue struct {
	Type  string `json:"type"`
	Bytes string `json:"bytes"`
}

type encodedSubmission struct {
	Function      string         `json:"function"`
	Signature     string         `json:"signature"`
	TypeArguments []encodedValue `json:"type_arguments"`
	Arguments     []encodedValue `json:"arguments"`
	Payload       string         `json:"payload"`
}

func hexWithPrefix(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func encodedValues(arguments []codec.EncodedArgument) []encodedValue {
	result := make([]encodedValue, len(arguments))
	for i, argument := range arguments {
		result[i] = encodedValue{
			Type:  argument.Type.String(),
			Bytes: hexWithPrefix(argument.Bytes),
		}
	}
	return result
}

func runEncode(env *environment, args []string) error {
	flags := newFlagSet(env, "encode")

	var sourceFlags commonFlags
	sourceFlags.register(flags)

	var typeArguments stringsFlag
	flags.Var(&typeArguments, "type-arg", "type argument, may be repeated")

	functionName := flags.String("function", "", "expected function name")
	format := flags.String("format", string(OutputFormatText), "output format: text, json or yaml")
	query := flags.String("query", "", "jq query applied to the JSON output")
	snapshot := flags.String("snapshot", "", "block hash of the chain state, latest if empty")
	omitSigners := flags.Bool("omit-signers", false, "omit leading signer parameters from the arguments")

	err := parseFlags(flags, args)
	if err != nil {
		return err
	}

	if flags.NArg() < 2 {
		return newUsageError("expected a descriptor, a module name and the arguments")
	}

	outputFormat := OutputFormat(*format)
	switch outputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
	default:
		return newUsageError("unsupported output format: %s", outputFormat)
	}
	if *query != "" && outputFormat == OutputFormatText {
		outputFormat = OutputFormatJSON
	}

	config, err := sourceFlags.load(flags)
	if err != nil {
		return err
	}

	flags.Visit(func(set *flag.Flag) {
		if set.Name == "omit-signers" {
			config.OmitSignerParameters = *omitSigners
		}
	})

	rt, err := config.newRuntime(env.stderr, env.colors)
	if err != nil {
		return err
	}
	defer rt.Close()

	submission, err := rt.EncodeSubmission(
		env.ctx,
		runtime.SubmissionRequest{
			Descriptor:    flags.Arg(0),
			ModuleName:    flags.Arg(1),
			FunctionName:  *functionName,
			TypeArguments: typeArguments,
			Arguments:     flags.Args()[2:],
			Snapshot:      source.Snapshot(*snapshot),
		},
	)
	if err != nil {
		return err
	}

	if outputFormat == OutputFormatText {
		_, err = fmt.Fprintln(env.stdout, hexWithPrefix(submission.Payload))
		return err
	}

	document, err := json.Marshal(encodedSubmission{
		Function:      submission.Reference.String(),
		Signature:     submission.Function.Signature(),
		TypeArguments: encodedValues(submission.Arguments.TypeArguments),
		Arguments:     encodedValues(submission.Arguments.Arguments),
		Payload:       hexWithPrefix(submission.Payload),
	})
	if err != nil {
		return err
	}

	return writeJSON(env.ctx, env.stdout, outputFormat, document, *query, env.colors)
}
