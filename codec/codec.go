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

// Package codec coerces argument and type argument literals
// into the binary representation of a target format,
// validated against the ABI of the called function.
package codec

import (
	"github.com/movekit/movecall/abi"
	"github.com/movekit/movecall/target"
	"github.com/movekit/movecall/typetag"
)

// EncodedArgument is an encoded argument or type argument,
// along with the type it was encoded against
type EncodedArgument struct {
	Type  typetag.TypeTag
	Bytes []byte
}

type EncodedArguments struct {
	TypeArguments []EncodedArgument
	Arguments     []EncodedArgument
}

func encodedBytes(arguments []EncodedArgument) [][]byte {
	result := make([][]byte, len(arguments))
	for i, argument := range arguments {
		result[i] = argument.Bytes
	}
	return result
}

// TypeArgumentBytes returns the encoded type arguments, in order
func (a *EncodedArguments) TypeArgumentBytes() [][]byte {
	return encodedBytes(a.TypeArguments)
}

// ArgumentBytes returns the encoded arguments, in order
func (a *EncodedArguments) ArgumentBytes() [][]byte {
	return encodedBytes(a.Arguments)
}

type Codec struct {
	format               target.Format
	omitSignerParameters bool
}

type Option func(*Codec)

// WithSignerParametersOmitted returns a codec option which,
// when enabled, excludes leading signer parameters from the arguments.
func WithSignerParametersOmitted(omitted bool) Option {
	return func(c *Codec) {
		c.omitSignerParameters = omitted
	}
}

func NewCodec(format target.Format, options ...Option) *Codec {
	c := &Codec{
		format: format,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Parameters returns the parameters that arguments for a call of the given function
// are coerced against, in order
func (c *Codec) Parameters(function *abi.Function) []typetag.TypeTag {
	if c.omitSignerParameters {
		return function.ValueParameters()
	}
	return function.Parameters
}

// EncodeArguments parses and encodes the given argument and type argument literals
// for a call of the given function.
//
// There must be one argument per parameter. Signer parameters have no literal form,
// so an argument for one is rejected, unless the codec omits leading signer parameters.
// Parameters with a generic type are coerced against the corresponding type argument.
//
// The counts of arguments and type arguments are checked before any literal is parsed.
// If any literal is invalid, no encoded arguments are returned.
func (c *Codec) EncodeArguments(
	function *abi.Function,
	arguments []string,
	typeArguments []string,
) (
	*EncodedArguments,
	error,
) {
	parameters := c.Parameters(function)

	if len(arguments) != len(parameters) {
		return nil, ArityMismatchError{
			Function: function.Name,
			Expected: len(parameters),
			Actual:   len(arguments),
		}
	}

	if len(typeArguments) != function.GenericArity() {
		return nil, GenericArityMismatchError{
			Function: function.Name,
			Expected: function.GenericArity(),
			Actual:   len(typeArguments),
		}
	}

	result := &EncodedArguments{
		TypeArguments: make([]EncodedArgument, len(typeArguments)),
		Arguments:     make([]EncodedArgument, len(arguments)),
	}

	types := make([]typetag.TypeTag, len(typeArguments))

	for i, literal := range typeArguments {
		encoded, err := c.EncodeTypeArgument(literal)
		if err != nil {
			return nil, InvalidTypeArgumentError{
				Index:   i,
				Literal: literal,
				Err:     err,
			}
		}
		types[i] = encoded.Type
		result.TypeArguments[i] = encoded
	}

	for i, literal := range arguments {
		parameterType := typetag.Instantiate(parameters[i], types)

		encoded, err := c.EncodeArgument(literal, parameterType)
		if err != nil {
			return nil, InvalidArgumentError{
				Index: i,
				Type:  parameterType,
				Err:   err,
			}
		}
		result.Arguments[i] = encoded
	}

	return result, nil
}

// EncodeTypeArgument parses a type argument literal, e.g. `vector<u8>` or `0x1::coin::Coin<u64>`,
// and encodes it
func (c *Codec) EncodeTypeArgument(literal string) (EncodedArgument, error) {
	ty, err := typetag.Parse(literal)
	if err != nil {
		return EncodedArgument{}, err
	}

	b, err := c.format.EncodeTypeTag(ty)
	if err != nil {
		return EncodedArgument{}, err
	}

	return EncodedArgument{
		Type:  ty,
		Bytes: b,
	}, nil
}

// EncodeArgument parses a literal of the given type, and encodes it
func (c *Codec) EncodeArgument(literal string, ty typetag.TypeTag) (EncodedArgument, error) {
	value, err := ParseLiteral(literal, ty)
	if err != nil {
		return EncodedArgument{}, err
	}

	b, err := c.format.EncodeValue(value)
	if err != nil {
		return EncodedArgument{}, err
	}

	return EncodedArgument{
		Type:  ty,
		Bytes: b,
	}, nil
}
