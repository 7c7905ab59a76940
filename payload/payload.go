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

// Package payload assembles the binary payload of an entry function call.
package payload

import (
	"github.com/movekit/movecall/abi"
	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/errors"
	"github.com/movekit/movecall/reference"
	"github.com/movekit/movecall/target"
)

// CallPayload is a call of an entry function,
// with already encoded type arguments and arguments
type CallPayload struct {
	ModuleAddress common.Address
	ModuleName    string
	FunctionName  string
	TypeArguments [][]byte
	Arguments     [][]byte
}

func NewCallPayload(
	ref reference.FunctionReference,
	typeArguments [][]byte,
	arguments [][]byte,
) *CallPayload {
	return &CallPayload{
		ModuleAddress: ref.ModuleAddress,
		ModuleName:    ref.ModuleName,
		FunctionName:  ref.FunctionName,
		TypeArguments: typeArguments,
		Arguments:     arguments,
	}
}

// Encode returns the payload in the byte layout of the given format
func (p *CallPayload) Encode(format target.Format) ([]byte, error) {
	return format.EncodeEntryCall(
		p.ModuleAddress,
		p.ModuleName,
		p.FunctionName,
		p.TypeArguments,
		p.Arguments,
	)
}

type Encoder struct {
	format               target.Format
	omitSignerParameters bool
}

type Option func(*Encoder)

// WithSignerParametersOmitted returns an encoder option which,
// when enabled, expects no arguments for leading signer parameters
func WithSignerParametersOmitted(omitted bool) Option {
	return func(e *Encoder) {
		e.omitSignerParameters = omitted
	}
}

func NewEncoder(format target.Format, options ...Option) *Encoder {
	e := &Encoder{
		format: format,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Encode encodes a call of the referenced function.
//
// The function must be an entry function.
// The type arguments and arguments must have been produced by the codec
// for the same function: their counts are not validated again,
// a mismatch is an internal error.
func (e *Encoder) Encode(
	ref reference.FunctionReference,
	function *abi.Function,
	typeArguments [][]byte,
	arguments [][]byte,
) ([]byte, error) {
	if !function.IsEntry {
		return nil, NotCallableError{
			Function:   ref,
			Visibility: function.Visibility,
		}
	}

	if function.Name != ref.FunctionName {
		panic(errors.NewUnexpectedError(
			"function %s does not match reference %s",
			function.Name,
			ref,
		))
	}

	if len(typeArguments) != function.GenericArity() {
		panic(errors.NewUnexpectedError(
			"function %s expects %d type arguments, got %d",
			ref,
			function.GenericArity(),
			len(typeArguments),
		))
	}

	parameterCount := len(function.Parameters)
	if e.omitSignerParameters {
		parameterCount = len(function.ValueParameters())
	}
	if len(arguments) != parameterCount {
		panic(errors.NewUnexpectedError(
			"function %s expects %d arguments, got %d",
			ref,
			parameterCount,
			len(arguments),
		))
	}

	return NewCallPayload(ref, typeArguments, arguments).Encode(e.format)
}
