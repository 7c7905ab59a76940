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

// Package values contains the format-independent representation
// of call argument values, produced by coercing argument literals.
package values

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/typetag"
)

// Value

type Value interface {
	isValue()
	Type() typetag.TypeTag
	fmt.Stringer
}

// Bool

type Bool bool

func NewBool(b bool) Bool {
	return Bool(b)
}

func (Bool) isValue() {}

func (Bool) Type() typetag.TypeTag {
	return typetag.BoolType
}

func (v Bool) String() string {
	return strconv.FormatBool(bool(v))
}

// UInt8

type UInt8 uint8

func NewUInt8(v uint8) UInt8 {
	return UInt8(v)
}

func (UInt8) isValue() {}

func (UInt8) Type() typetag.TypeTag {
	return typetag.U8Type
}

func (v UInt8) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// UInt16

type UInt16 uint16

func NewUInt16(v uint16) UInt16 {
	return UInt16(v)
}

func (UInt16) isValue() {}

func (UInt16) Type() typetag.TypeTag {
	return typetag.U16Type
}

func (v UInt16) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// UInt32

type UInt32 uint32

func NewUInt32(v uint32) UInt32 {
	return UInt32(v)
}

func (UInt32) isValue() {}

func (UInt32) Type() typetag.TypeTag {
	return typetag.U32Type
}

func (v UInt32) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// UInt64

type UInt64 uint64

func NewUInt64(v uint64) UInt64 {
	return UInt64(v)
}

func (UInt64) isValue() {}

func (UInt64) Type() typetag.TypeTag {
	return typetag.U64Type
}

func (v UInt64) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// UInt128

type UInt128 struct {
	Value *uint256.Int
}

func NewUInt128(v uint64) UInt128 {
	return UInt128{uint256.NewInt(v)}
}

// NewUInt128FromBig returns an error if the value is negative or exceeds 128 bits
func NewUInt128FromBig(i *big.Int) (UInt128, error) {
	value, err := fromBig(i, 128)
	if err != nil {
		return UInt128{}, err
	}
	return UInt128{value}, nil
}

func (UInt128) isValue() {}

func (UInt128) Type() typetag.TypeTag {
	return typetag.U128Type
}

func (v UInt128) String() string {
	return v.Value.Dec()
}

// UInt256

type UInt256 struct {
	Value *uint256.Int
}

func NewUInt256(v uint64) UInt256 {
	return UInt256{uint256.NewInt(v)}
}

// NewUInt256FromBig returns an error if the value is negative or exceeds 256 bits
func NewUInt256FromBig(i *big.Int) (UInt256, error) {
	value, err := fromBig(i, 256)
	if err != nil {
		return UInt256{}, err
	}
	return UInt256{value}, nil
}

func (UInt256) isValue() {}

func (UInt256) Type() typetag.TypeTag {
	return typetag.U256Type
}

func (v UInt256) String() string {
	return v.Value.Dec()
}

func fromBig(i *big.Int, bitSize int) (*uint256.Int, error) {
	if i.Sign() < 0 {
		return nil, fmt.Errorf("invalid negative value for u%d: %s", bitSize, i)
	}

	value, overflow := uint256.FromBig(i)
	if overflow || value.BitLen() > bitSize {
		return nil, fmt.Errorf("value exceeds max of u%d: %s", bitSize, i)
	}

	return value, nil
}

// Address

type Address common.Address

func NewAddress(address common.Address) Address {
	return Address(address)
}

func (Address) isValue() {}

func (Address) Type() typetag.TypeTag {
	return typetag.AddressType
}

func (v Address) String() string {
	return common.Address(v).ShortHexWithPrefix()
}

// Vector

type Vector struct {
	ElementType typetag.TypeTag
	Values      []Value
}

func NewVector(elementType typetag.TypeTag, values []Value) Vector {
	return Vector{
		ElementType: elementType,
		Values:      values,
	}
}

func (Vector) isValue() {}

func (v Vector) Type() typetag.TypeTag {
	return typetag.NewVectorType(v.ElementType)
}

func (v Vector) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, value := range v.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(value.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
