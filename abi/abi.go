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

// Package abi describes the callable surface of a deployed Move module:
// its functions with their typed signatures, and its struct declarations.
//
// A Module is derived purely from bytecode and never mutated after construction.
package abi

import (
	"strings"

	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/errors"
	"github.com/movekit/movecall/typetag"
)

// Ability

type Ability uint8

const (
	AbilityCopy  Ability = 0x1
	AbilityDrop  Ability = 0x2
	AbilityStore Ability = 0x4
	AbilityKey   Ability = 0x8
)

var allAbilities = []Ability{
	AbilityCopy,
	AbilityDrop,
	AbilityStore,
	AbilityKey,
}

func (a Ability) String() string {
	switch a {
	case AbilityCopy:
		return "copy"
	case AbilityDrop:
		return "drop"
	case AbilityStore:
		return "store"
	case AbilityKey:
		return "key"
	}

	panic(errors.NewUnreachableError())
}

// AbilitySet is a set of abilities, e.g. the constraints of a type parameter
type AbilitySet uint8

const EmptyAbilitySet AbilitySet = 0

// AllAbilitiesMask has every known ability bit set
const AllAbilitiesMask = AbilitySet(AbilityCopy | AbilityDrop | AbilityStore | AbilityKey)

func NewAbilitySet(abilities ...Ability) AbilitySet {
	var set AbilitySet
	for _, ability := range abilities {
		set |= AbilitySet(ability)
	}
	return set
}

func (s AbilitySet) Has(ability Ability) bool {
	return s&AbilitySet(ability) != 0
}

// Abilities returns the abilities in the set, in declaration order
func (s AbilitySet) Abilities() []Ability {
	abilities := make([]Ability, 0, len(allAbilities))
	for _, ability := range allAbilities {
		if s.Has(ability) {
			abilities = append(abilities, ability)
		}
	}
	return abilities
}

func (s AbilitySet) Strings() []string {
	abilities := s.Abilities()
	result := make([]string, len(abilities))
	for i, ability := range abilities {
		result[i] = ability.String()
	}
	return result
}

func (s AbilitySet) String() string {
	return strings.Join(s.Strings(), " + ")
}

// Visibility

type Visibility uint8

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
	VisibilityFriend
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPrivate:
		return "private"
	case VisibilityPublic:
		return "public"
	case VisibilityFriend:
		return "friend"
	}

	panic(errors.NewUnreachableError())
}

// Function

type Function struct {
	Name       string
	Visibility Visibility
	// IsEntry is true if the function may be the target of a call payload
	IsEntry        bool
	IsNative       bool
	TypeParameters []AbilitySet
	Parameters     []typetag.TypeTag
	Returns        []typetag.TypeTag
}

// GenericArity returns the number of type parameters of the function
func (f *Function) GenericArity() int {
	return len(f.TypeParameters)
}

// ValueParameters returns the parameters following the leading signer
// (or signer reference) parameters, which some hosts supply from the transaction sender
func (f *Function) ValueParameters() []typetag.TypeTag {
	parameters := f.Parameters
	for len(parameters) > 0 && isSignerParameter(parameters[0]) {
		parameters = parameters[1:]
	}
	return parameters
}

func isSignerParameter(ty typetag.TypeTag) bool {
	if reference, ok := ty.(*typetag.ReferenceType); ok {
		ty = reference.Referenced
	}
	return ty == typetag.SignerType
}

// Struct

type StructTypeParameter struct {
	Constraints AbilitySet
	IsPhantom   bool
}

type Field struct {
	Name string
	Type typetag.TypeTag
}

type Struct struct {
	Name           string
	IsNative       bool
	Abilities      AbilitySet
	TypeParameters []StructTypeParameter
	Fields         []Field
}

// Module

type Module struct {
	ID        common.ModuleID
	Friends   []common.ModuleID
	Functions []*Function
	Structs   []*Struct
}

// Function returns the function with the given name.
// If there is no such function, a FunctionNotFoundError is returned,
// suggesting the closest function name, if any.
func (m *Module) Function(name string) (*Function, error) {
	for _, function := range m.Functions {
		if function.Name == name {
			return function, nil
		}
	}

	functionNames := make([]string, len(m.Functions))
	for i, function := range m.Functions {
		functionNames[i] = function.Name
	}

	return nil, FunctionNotFoundError{
		ModuleID:          m.ID,
		Name:              name,
		SuggestedFunction: closestName(name, functionNames),
	}
}

// EntryFunctions returns the functions which can be the target of a call payload
func (m *Module) EntryFunctions() []*Function {
	var result []*Function
	for _, function := range m.Functions {
		if function.IsEntry {
			result = append(result, function)
		}
	}
	return result
}

// Struct returns the struct with the given name, if any
func (m *Module) Struct(name string) (*Struct, bool) {
	for _, structure := range m.Structs {
		if structure.Name == name {
			return structure, true
		}
	}
	return nil, false
}
