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

// Package bytecode extracts the ABI of a Move module from its binary representation.
package bytecode

import (
	"github.com/movekit/movecall/abi"
	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/typetag"
)

// ExtractABI deserializes the given module bytecode and returns the ABI of the module.
//
// All functions are part of the ABI, including non-entry functions.
// If the bytecode is malformed, a MalformedModuleError is returned, and no ABI.
func ExtractABI(code []byte) (module *abi.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			malformedErr, ok := r.(malformedModuleError)
			if !ok {
				panic(r)
			}
			module = nil
			err = malformedErr.MalformedModuleError
		}
	}()

	compiled := deserialize(code)
	return compiled.resolve(), nil
}

func (m *compiledModule) resolve() *abi.Module {
	m.checkHandles()

	if int(m.selfModuleHandle) >= len(m.moduleHandles) {
		panic(newMalformedModuleError(
			m.selfOffset,
			"module: self module handle %d out of range",
			m.selfModuleHandle,
		))
	}

	module := &abi.Module{
		ID: m.moduleID(m.moduleHandles[m.selfModuleHandle]),
	}

	module.Friends = make([]common.ModuleID, len(m.friendDeclarations))
	for i, friend := range m.friendDeclarations {
		module.Friends[i] = m.moduleID(friend)
	}

	module.Structs = make([]*abi.Struct, len(m.structDefinitions))
	for i, definition := range m.structDefinitions {
		module.Structs[i] = m.resolveStruct(definition)
	}

	module.Functions = make([]*abi.Function, len(m.functionDefinitions))
	seenNames := make(map[string]struct{}, len(m.functionDefinitions))
	for i, definition := range m.functionDefinitions {
		function := m.resolveFunction(definition)

		if _, ok := seenNames[function.Name]; ok {
			panic(newMalformedModuleError(
				definition.offset,
				"function definitions: duplicate function %q",
				function.Name,
			))
		}
		seenNames[function.Name] = struct{}{}

		module.Functions[i] = function
	}

	return module
}

// checkHandles validates the indices of all handles,
// including those which are not referenced by any definition
func (m *compiledModule) checkHandles() {
	for _, handle := range m.moduleHandles {
		m.checkModuleHandle(handle)
	}
	for _, handle := range m.friendDeclarations {
		m.checkModuleHandle(handle)
	}

	for _, handle := range m.structHandles {
		m.checkIndex(handle.module, len(m.moduleHandles), handle.offset, "module handle")
		m.checkIndex(handle.name, len(m.identifiers), handle.offset, "identifier")
	}

	for _, handle := range m.functionHandles {
		m.checkIndex(handle.module, len(m.moduleHandles), handle.offset, "module handle")
		m.checkIndex(handle.name, len(m.identifiers), handle.offset, "identifier")
		m.checkIndex(handle.parameters, len(m.signatures), handle.offset, "signature")
		m.checkIndex(handle.returns, len(m.signatures), handle.offset, "signature")
	}

	for _, sig := range m.signatures {
		for _, token := range sig.tokens {
			m.checkToken(token)
		}
	}
}

func (m *compiledModule) checkModuleHandle(handle moduleHandle) {
	m.checkIndex(handle.address, len(m.addressIdentifiers), handle.offset, "address identifier")
	m.checkIndex(handle.name, len(m.identifiers), handle.offset, "identifier")
}

func (m *compiledModule) checkToken(token *signatureToken) {
	switch token.kind {
	case SignatureTokenStruct, SignatureTokenStructInstance:
		m.checkIndex(token.index, len(m.structHandles), token.offset, "struct handle")
	}
	for _, typeArgument := range token.typeArguments {
		m.checkToken(typeArgument)
	}
}

func (m *compiledModule) checkIndex(index uint16, length int, offset int, what string) {
	if int(index) >= length {
		panic(newMalformedModuleError(
			offset,
			"%s index %d out of range, table has %d entries",
			what,
			index,
			length,
		))
	}
}

func (m *compiledModule) moduleID(handle moduleHandle) common.ModuleID {
	return common.NewModuleID(
		m.addressIdentifiers[handle.address],
		m.identifiers[handle.name],
	)
}

func (m *compiledModule) resolveStruct(definition structDefinition) *abi.Struct {
	m.checkIndex(definition.handle, len(m.structHandles), definition.offset, "struct handle")
	handle := m.structHandles[definition.handle]

	if handle.module != m.selfModuleHandle {
		panic(newMalformedModuleError(
			definition.offset,
			"struct definitions: struct %q is declared in another module",
			m.identifiers[handle.name],
		))
	}

	typeParameters := make([]abi.StructTypeParameter, len(handle.typeParameters))
	for i, typeParameter := range handle.typeParameters {
		typeParameters[i] = abi.StructTypeParameter{
			Constraints: abi.AbilitySet(typeParameter.constraints),
			IsPhantom:   typeParameter.isPhantom,
		}
	}

	fields := make([]abi.Field, len(definition.fields))
	for i, field := range definition.fields {
		m.checkIndex(field.name, len(m.identifiers), field.offset, "identifier")
		m.checkToken(field.token)

		fields[i] = abi.Field{
			Name: m.identifiers[field.name],
			Type: m.typeTag(field.token, len(handle.typeParameters), false),
		}
	}

	return &abi.Struct{
		Name:           m.identifiers[handle.name],
		IsNative:       definition.isNative,
		Abilities:      abi.AbilitySet(handle.abilities),
		TypeParameters: typeParameters,
		Fields:         fields,
	}
}

func (m *compiledModule) resolveFunction(definition functionDefinition) *abi.Function {
	m.checkIndex(definition.handle, len(m.functionHandles), definition.offset, "function handle")
	handle := m.functionHandles[definition.handle]

	name := m.identifiers[handle.name]

	if handle.module != m.selfModuleHandle {
		panic(newMalformedModuleError(
			definition.offset,
			"function definitions: function %q is declared in another module",
			name,
		))
	}

	for _, acquired := range definition.acquires {
		m.checkIndex(acquired, len(m.structDefinitions), definition.offset, "struct definition")
	}

	if !definition.isNative {
		m.checkIndex(definition.locals, len(m.signatures), definition.offset, "signature")
	}

	typeParameterCount := len(handle.typeParameters)

	typeParameters := make([]abi.AbilitySet, typeParameterCount)
	for i, constraints := range handle.typeParameters {
		typeParameters[i] = abi.AbilitySet(constraints)
	}

	return &abi.Function{
		Name:           name,
		Visibility:     definition.visibility,
		IsEntry:        definition.isEntry,
		IsNative:       definition.isNative,
		TypeParameters: typeParameters,
		Parameters:     m.typeTags(m.signatures[handle.parameters], typeParameterCount),
		Returns:        m.typeTags(m.signatures[handle.returns], typeParameterCount),
	}
}

func (m *compiledModule) typeTags(sig signature, typeParameterCount int) []typetag.TypeTag {
	types := make([]typetag.TypeTag, len(sig.tokens))
	for i, token := range sig.tokens {
		types[i] = m.typeTag(token, typeParameterCount, true)
	}
	return types
}

// typeTag resolves a signature token.
// References are only allowed at the top level of function signatures.
func (m *compiledModule) typeTag(
	token *signatureToken,
	typeParameterCount int,
	allowReference bool,
) typetag.TypeTag {
	switch token.kind {
	case SignatureTokenBool:
		return typetag.BoolType
	case SignatureTokenU8:
		return typetag.U8Type
	case SignatureTokenU16:
		return typetag.U16Type
	case SignatureTokenU32:
		return typetag.U32Type
	case SignatureTokenU64:
		return typetag.U64Type
	case SignatureTokenU128:
		return typetag.U128Type
	case SignatureTokenU256:
		return typetag.U256Type
	case SignatureTokenAddress:
		return typetag.AddressType
	case SignatureTokenSigner:
		return typetag.SignerType

	case SignatureTokenVector:
		return typetag.NewVectorType(
			m.typeTag(token.typeArguments[0], typeParameterCount, false),
		)

	case SignatureTokenReference, SignatureTokenMutableReference:
		if !allowReference {
			panic(newMalformedModuleError(token.offset, "signatures: nested reference type"))
		}
		return &typetag.ReferenceType{
			Mutable:    token.kind == SignatureTokenMutableReference,
			Referenced: m.typeTag(token.typeArguments[0], typeParameterCount, false),
		}

	case SignatureTokenTypeParameter:
		if int(token.index) >= typeParameterCount {
			panic(newMalformedModuleError(
				token.offset,
				"signatures: type parameter %d out of range, %d declared",
				token.index,
				typeParameterCount,
			))
		}
		return typetag.TypeParameterType{
			Index: token.index,
		}

	case SignatureTokenStruct, SignatureTokenStructInstance:
		handle := m.structHandles[token.index]

		if len(token.typeArguments) != len(handle.typeParameters) {
			panic(newMalformedModuleError(
				token.offset,
				"signatures: struct %q expects %d type arguments, got %d",
				m.identifiers[handle.name],
				len(handle.typeParameters),
				len(token.typeArguments),
			))
		}

		var typeArguments []typetag.TypeTag
		if len(token.typeArguments) > 0 {
			typeArguments = make([]typetag.TypeTag, len(token.typeArguments))
			for i, typeArgument := range token.typeArguments {
				typeArguments[i] = m.typeTag(typeArgument, typeParameterCount, false)
			}
		}

		moduleID := m.moduleID(m.moduleHandles[handle.module])

		return &typetag.StructType{
			Address:       moduleID.Address,
			Module:        moduleID.Name,
			Name:          m.identifiers[handle.name],
			TypeArguments: typeArguments,
		}
	}

	panic(newMalformedModuleError(token.offset, "signatures: unknown type 0x%x", uint8(token.kind)))
}
