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
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/errors"
	"github.com/movekit/movecall/typetag"
	"github.com/movekit/movecall/values"
)

// ParseLiteral parses a single literal string, that should have the given type.
//
// Booleans are `true` or `false`, in any case.
// Integers are decimal, or hexadecimal with a 0x prefix.
// Addresses are hexadecimal, with an optional 0x prefix.
// Vectors are comma-separated elements enclosed in brackets;
// byte vectors may also be given as a hexadecimal string with a 0x prefix.
func ParseLiteral(literal string, ty typetag.TypeTag) (values.Value, error) {
	literal = strings.TrimSpace(literal)

	switch ty := ty.(type) {
	case typetag.PrimitiveType:
		switch {
		case ty == typetag.BoolType:
			return boolLiteralValue(literal)

		case ty == typetag.AddressType:
			return addressLiteralValue(literal)

		case ty.IsInteger():
			return integerLiteralValue(literal, ty)
		}

	case *typetag.VectorType:
		return vectorLiteralValue(literal, ty.ElementType)
	}

	// Signers, structs, references and uninstantiated type parameters
	return nil, UnsupportedTypeError{
		Type: ty,
	}
}

func boolLiteralValue(literal string) (values.Value, error) {
	switch {
	case strings.EqualFold(literal, "true"):
		return values.NewBool(true), nil
	case strings.EqualFold(literal, "false"):
		return values.NewBool(false), nil
	default:
		return nil, InvalidBoolError{
			Literal: literal,
		}
	}
}

func addressLiteralValue(literal string) (values.Value, error) {
	address, err := common.HexToAddress(literal)
	if err != nil {
		return nil, InvalidAddressError{
			Literal: literal,
			Err:     err,
		}
	}
	return values.NewAddress(address), nil
}

func hasHexPrefix(literal string) bool {
	return strings.HasPrefix(literal, "0x") || strings.HasPrefix(literal, "0X")
}

// splitInteger splits an integer literal into its sign, base and digits.
// The digits are checked to be valid for the base, and leading zeros are removed.
func splitInteger(literal string) (negative bool, base int, digits string, ok bool) {
	digits = literal
	base = 10

	negative = strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	if hasHexPrefix(digits) {
		digits = digits[2:]
		base = 16
	}

	if digits == "" {
		return false, 0, "", false
	}

	for _, r := range digits {
		if !isDigit(r, base) {
			return false, 0, "", false
		}
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}

	return negative, base, digits, true
}

func isDigit(r rune, base int) bool {
	switch {
	case '0' <= r && r <= '9':
		return true
	case base == 16:
		return ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
	default:
		return false
	}
}

// maxDigits returns the number of digits of the largest unsigned integer
// of the given bit size, written in the given base.
func maxDigits(bitSize int, base int) int {
	if base == 16 {
		return (bitSize + 3) / 4
	}
	// log10(2) ~ 0.30103
	return bitSize*30103/100000 + 1
}

func integerLiteralValue(literal string, ty typetag.PrimitiveType) (values.Value, error) {
	negative, base, digits, ok := splitInteger(literal)
	if !ok {
		return nil, InvalidNumberError{
			Literal: literal,
			Type:    ty,
		}
	}

	outOfRange := OutOfRangeError{
		Literal: literal,
		Type:    ty,
	}

	if len(digits) > maxDigits(ty.BitSize(), base) {
		return nil, outOfRange
	}

	value, ok := new(big.Int).SetString(digits, base)
	if !ok {
		panic(errors.NewUnexpectedError("invalid integer digits: %s", digits))
	}

	if (negative && value.Sign() != 0) || value.BitLen() > ty.BitSize() {
		return nil, outOfRange
	}

	switch ty {
	case typetag.U8Type:
		return values.NewUInt8(uint8(value.Uint64())), nil
	case typetag.U16Type:
		return values.NewUInt16(uint16(value.Uint64())), nil
	case typetag.U32Type:
		return values.NewUInt32(uint32(value.Uint64())), nil
	case typetag.U64Type:
		return values.NewUInt64(value.Uint64()), nil
	case typetag.U128Type:
		return values.NewUInt128FromBig(value)
	case typetag.U256Type:
		return values.NewUInt256FromBig(value)
	}

	panic(errors.NewUnreachableError())
}

func vectorLiteralValue(literal string, elementType typetag.TypeTag) (values.Value, error) {
	if elementType == typetag.U8Type && hasHexPrefix(literal) {
		return byteVectorLiteralValue(literal)
	}

	elements, err := splitVectorLiteral(literal)
	if err != nil {
		return nil, err
	}

	vectorValues := make([]values.Value, len(elements))
	for i, element := range elements {
		value, err := ParseLiteral(element, elementType)
		if err != nil {
			return nil, err
		}
		vectorValues[i] = value
	}

	return values.NewVector(elementType, vectorValues), nil
}

func byteVectorLiteralValue(literal string) (values.Value, error) {
	b, err := hex.DecodeString(literal[2:])
	if err != nil {
		return nil, InvalidVectorError{
			Literal: literal,
			Reason:  "invalid hexadecimal byte string",
		}
	}

	elements := make([]values.Value, len(b))
	for i, c := range b {
		elements[i] = values.NewUInt8(c)
	}

	return values.NewVector(typetag.U8Type, elements), nil
}

// splitVectorLiteral returns the elements of a bracket-enclosed vector literal.
// Elements may be nested vectors, only top-level commas separate elements.
func splitVectorLiteral(literal string) ([]string, error) {
	if len(literal) < 2 ||
		literal[0] != '[' ||
		literal[len(literal)-1] != ']' {

		return nil, InvalidVectorError{
			Literal: literal,
			Reason:  "missing brackets",
		}
	}

	inner := literal[1 : len(literal)-1]
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}

	var elements []string
	depth := 0
	start := 0

	addElement := func(end int) error {
		element := strings.TrimSpace(inner[start:end])
		if element == "" {
			return InvalidVectorError{
				Literal: literal,
				Reason:  "empty element",
			}
		}
		elements = append(elements, element)
		return nil
	}

	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[':
			depth++

		case ']':
			depth--
			if depth < 0 {
				return nil, InvalidVectorError{
					Literal: literal,
					Reason:  "unbalanced brackets",
				}
			}

		case ',':
			if depth > 0 {
				continue
			}
			err := addElement(i)
			if err != nil {
				return nil, err
			}
			start = i + 1
		}
	}

	if depth != 0 {
		return nil, InvalidVectorError{
			Literal: literal,
			Reason:  "unbalanced brackets",
		}
	}

	err := addElement(len(inner))
	if err != nil {
		return nil, err
	}

	return elements, nil
}
