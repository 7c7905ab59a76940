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

// Package typetag models the structural type descriptors of Move values,
// as they appear in module signatures and in entry function call payloads.
package typetag

import (
	"fmt"
	"strings"

	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/errors"
)

// MaxNestingDepth is the maximum depth of nested type tags,
// e.g. `vector<vector<u8>>` has depth 3.
const MaxNestingDepth = 256

// TypeTag is a structural type descriptor.
type TypeTag interface {
	isTypeTag()
	String() string
	Equal(other TypeTag) bool
}

// PrimitiveType

type PrimitiveType uint8

const (
	PrimitiveTypeUnknown PrimitiveType = iota
	BoolType
	U8Type
	U16Type
	U32Type
	U64Type
	U128Type
	U256Type
	AddressType
	SignerType
)

var _ TypeTag = PrimitiveType(0)

func (PrimitiveType) isTypeTag() {}

func (t PrimitiveType) String() string {
	switch t {
	case BoolType:
		return "bool"
	case U8Type:
		return "u8"
	case U16Type:
		return "u16"
	case U32Type:
		return "u32"
	case U64Type:
		return "u64"
	case U128Type:
		return "u128"
	case U256Type:
		return "u256"
	case AddressType:
		return "address"
	case SignerType:
		return "signer"
	}

	panic(errors.NewUnreachableError())
}

func (t PrimitiveType) Equal(other TypeTag) bool {
	otherPrimitive, ok := other.(PrimitiveType)
	return ok && otherPrimitive == t
}

// IsInteger returns true if the type is one of the unsigned integer types
func (t PrimitiveType) IsInteger() bool {
	return t.BitSize() > 0
}

// BitSize returns the width of an unsigned integer type,
// or zero for non-integer types.
func (t PrimitiveType) BitSize() int {
	switch t {
	case U8Type:
		return 8
	case U16Type:
		return 16
	case U32Type:
		return 32
	case U64Type:
		return 64
	case U128Type:
		return 128
	case U256Type:
		return 256
	default:
		return 0
	}
}

// VectorType

type VectorType struct {
	ElementType TypeTag
}

var _ TypeTag = &VectorType{}

func NewVectorType(elementType TypeTag) *VectorType {
	return &VectorType{
		ElementType: elementType,
	}
}

func (*VectorType) isTypeTag() {}

func (t *VectorType) String() string {
	return fmt.Sprintf("vector<%s>", t.ElementType)
}

func (t *VectorType) Equal(other TypeTag) bool {
	otherVector, ok := other.(*VectorType)
	if !ok {
		return false
	}
	return t.ElementType.Equal(otherVector.ElementType)
}

// StructType

type StructType struct {
	Address       common.Address
	Module        string
	Name          string
	TypeArguments []TypeTag
}

var _ TypeTag = &StructType{}

func (*StructType) isTypeTag() {}

// ModuleID returns the ID of the module declaring the struct
func (t *StructType) ModuleID() common.ModuleID {
	return common.NewModuleID(t.Address, t.Module)
}

func (t *StructType) String() string {
	var sb strings.Builder
	sb.WriteString(t.Address.ShortHexWithPrefix())
	sb.WriteString("::")
	sb.WriteString(t.Module)
	sb.WriteString("::")
	sb.WriteString(t.Name)
	writeTypeArguments(&sb, t.TypeArguments)
	return sb.String()
}

func (t *StructType) Equal(other TypeTag) bool {
	otherStruct, ok := other.(*StructType)
	if !ok {
		return false
	}

	if t.Address != otherStruct.Address ||
		t.Module != otherStruct.Module ||
		t.Name != otherStruct.Name {

		return false
	}

	return Equal(t.TypeArguments, otherStruct.TypeArguments)
}

// ReferenceType only occurs in function signatures,
// it can never be the type of a call argument.
type ReferenceType struct {
	Mutable    bool
	Referenced TypeTag
}

var _ TypeTag = &ReferenceType{}

func (*ReferenceType) isTypeTag() {}

func (t *ReferenceType) String() string {
	if t.Mutable {
		return "&mut " + t.Referenced.String()
	}
	return "&" + t.Referenced.String()
}

func (t *ReferenceType) Equal(other TypeTag) bool {
	otherReference, ok := other.(*ReferenceType)
	if !ok {
		return false
	}
	return t.Mutable == otherReference.Mutable &&
		t.Referenced.Equal(otherReference.Referenced)
}

// TypeParameterType refers to a generic type parameter of the enclosing function or struct
type TypeParameterType struct {
	Index uint16
}

var _ TypeTag = TypeParameterType{}

func (TypeParameterType) isTypeTag() {}

func (t TypeParameterType) String() string {
	return fmt.Sprintf("T%d", t.Index)
}

func (t TypeParameterType) Equal(other TypeTag) bool {
	otherParameter, ok := other.(TypeParameterType)
	return ok && otherParameter.Index == t.Index
}

// Equal returns true if the two type tag lists are pairwise equal
func Equal(a, b []TypeTag) bool {
	if len(a) != len(b) {
		return false
	}
	for i, ty := range a {
		if !ty.Equal(b[i]) {
			return false
		}
	}
	return true
}

// Join returns the string representations of the given type tags, separated by commas
func Join(types []TypeTag) string {
	var sb strings.Builder
	for i, ty := range types {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ty.String())
	}
	return sb.String()
}

func writeTypeArguments(sb *strings.Builder, typeArguments []TypeTag) {
	if len(typeArguments) == 0 {
		return
	}
	sb.WriteByte('<')
	sb.WriteString(Join(typeArguments))
	sb.WriteByte('>')
}

// Instantiate replaces type parameters in ty with the given type arguments.
// Indices outside of typeArguments are left untouched.
func Instantiate(ty TypeTag, typeArguments []TypeTag) TypeTag {
	switch ty := ty.(type) {
	case TypeParameterType:
		if int(ty.Index) < len(typeArguments) {
			return typeArguments[ty.Index]
		}
		return ty

	case *VectorType:
		return NewVectorType(Instantiate(ty.ElementType, typeArguments))

	case *ReferenceType:
		return &ReferenceType{
			Mutable:    ty.Mutable,
			Referenced: Instantiate(ty.Referenced, typeArguments),
		}

	case *StructType:
		if len(ty.TypeArguments) == 0 {
			return ty
		}
		instantiated := make([]TypeTag, len(ty.TypeArguments))
		for i, typeArgument := range ty.TypeArguments {
			instantiated[i] = Instantiate(typeArgument, typeArguments)
		}
		return &StructType{
			Address:       ty.Address,
			Module:        ty.Module,
			Name:          ty.Name,
			TypeArguments: instantiated,
		}

	default:
		return ty
	}
}
