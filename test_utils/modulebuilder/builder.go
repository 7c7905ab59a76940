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

// Package modulebuilder assembles Move module binaries for tests.
package modulebuilder

import (
	"encoding/binary"

	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/encoding/bcs"
)

// Token is an encoded signature token
type Token []byte

var (
	Bool    = Token{0x1}
	U8      = Token{0x2}
	U64     = Token{0x3}
	U128    = Token{0x4}
	Address = Token{0x5}
	Signer  = Token{0xC}
	U16     = Token{0xD}
	U32     = Token{0xE}
	U256    = Token{0xF}
)

func Reference(token Token) Token {
	return append(Token{0x6}, token...)
}

func MutableReference(token Token) Token {
	return append(Token{0x7}, token...)
}

func Vector(token Token) Token {
	return append(Token{0xA}, token...)
}

func TypeParameter(index uint16) Token {
	return bcs.AppendULEB128(Token{0x9}, uint64(index))
}

func Struct(handle uint16) Token {
	return bcs.AppendULEB128(Token{0x8}, uint64(handle))
}

func StructInstance(handle uint16, typeArguments ...Token) Token {
	token := bcs.AppendULEB128(Token{0xB}, uint64(handle))
	token = bcs.AppendULEB128(token, uint64(len(typeArguments)))
	for _, typeArgument := range typeArguments {
		token = append(token, typeArgument...)
	}
	return token
}

// Instruction is an encoded instruction: the opcode followed by its operands
type Instruction []byte

var (
	Pop     = Instruction{0x01}
	Ret     = Instruction{0x02}
	LdTrue  = Instruction{0x08}
	LdFalse = Instruction{0x09}
	Add     = Instruction{0x16}
	Abort   = Instruction{0x27}
)

func LdU8(v uint8) Instruction {
	return Instruction{0x31, v}
}

func LdU64(v uint64) Instruction {
	return binary.LittleEndian.AppendUint64(Instruction{0x06}, v)
}

func LdU128(low, high uint64) Instruction {
	instruction := binary.LittleEndian.AppendUint64(Instruction{0x32}, low)
	return binary.LittleEndian.AppendUint64(instruction, high)
}

func LdU256(limbs [4]uint64) Instruction {
	instruction := Instruction{0x4A}
	for _, limb := range limbs {
		instruction = binary.LittleEndian.AppendUint64(instruction, limb)
	}
	return instruction
}

func LdConst(index uint16) Instruction {
	return bcs.AppendULEB128(Instruction{0x07}, uint64(index))
}

func CopyLoc(index uint8) Instruction {
	return Instruction{0x0A, index}
}

func MoveLoc(index uint8) Instruction {
	return Instruction{0x0B, index}
}

func BrTrue(target uint16) Instruction {
	return bcs.AppendULEB128(Instruction{0x03}, uint64(target))
}

func Branch(target uint16) Instruction {
	return bcs.AppendULEB128(Instruction{0x05}, uint64(target))
}

func Call(functionHandle uint16) Instruction {
	return bcs.AppendULEB128(Instruction{0x11}, uint64(functionHandle))
}

func VecPack(signature uint16, count uint64) Instruction {
	instruction := bcs.AppendULEB128(Instruction{0x40}, uint64(signature))
	return binary.LittleEndian.AppendUint64(instruction, count)
}

func VecLen(signature uint16) Instruction {
	return bcs.AppendULEB128(Instruction{0x41}, uint64(signature))
}

// Visibility as serialized

const (
	VisibilityPrivate uint8 = 0x0
	VisibilityPublic  uint8 = 0x1
	VisibilityScript  uint8 = 0x2
	VisibilityFriend  uint8 = 0x3
)

type FunctionDefinition struct {
	Name       string
	Visibility uint8
	// Entry sets the entry flag (version 5 and later),
	// or script visibility (before version 5)
	Entry          bool
	Native         bool
	TypeParameters []uint8
	Parameters     []Token
	Returns        []Token
	Acquires       []uint16
	Locals         []Token
	// Code defaults to a single return instruction
	Code []Instruction
}

type StructTypeParameter struct {
	Constraints uint8
	IsPhantom   bool
}

type Field struct {
	Name string
	Type Token
}

type StructDefinition struct {
	Name           string
	Abilities      uint8
	TypeParameters []StructTypeParameter
	Native         bool
	Fields         []Field
}

type table struct {
	kind uint8
	data []byte
}

// Builder assembles a module binary.
// Identifiers, addresses, module handles and signatures are deduplicated.
type Builder struct {
	Version uint32

	identifiers     []byte
	identifierIndex map[string]uint16

	addresses    []byte
	addressIndex map[common.Address]uint16

	moduleHandles     []byte
	moduleHandleIndex map[[2]uint16]uint16

	signatures     []byte
	signatureIndex map[string]uint16

	structHandles     []byte
	structHandleCount uint16

	functionHandles     []byte
	functionHandleCount uint16

	structDefinitions   []byte
	functionDefinitions []byte
	friendDeclarations  []byte

	extraTables []table

	selfModuleHandle uint16
}

// New returns a builder for the module with the given address and name,
// producing the latest supported version.
func New(address common.Address, name string) *Builder {
	b := &Builder{
		Version:           6,
		identifierIndex:   map[string]uint16{},
		addressIndex:      map[common.Address]uint16{},
		moduleHandleIndex: map[[2]uint16]uint16{},
		signatureIndex:    map[string]uint16{},
	}
	b.selfModuleHandle = b.ModuleHandle(address, name)
	return b
}

func (b *Builder) SelfModuleHandle() uint16 {
	return b.selfModuleHandle
}

func (b *Builder) Identifier(name string) uint16 {
	if index, ok := b.identifierIndex[name]; ok {
		return index
	}
	index := uint16(len(b.identifierIndex))
	b.identifiers = bcs.AppendULEB128(b.identifiers, uint64(len(name)))
	b.identifiers = append(b.identifiers, name...)
	b.identifierIndex[name] = index
	return index
}

func (b *Builder) Address(address common.Address) uint16 {
	if index, ok := b.addressIndex[address]; ok {
		return index
	}
	index := uint16(len(b.addressIndex))
	b.addresses = append(b.addresses, address[:]...)
	b.addressIndex[address] = index
	return index
}

func (b *Builder) ModuleHandle(address common.Address, name string) uint16 {
	key := [2]uint16{b.Address(address), b.Identifier(name)}
	if index, ok := b.moduleHandleIndex[key]; ok {
		return index
	}
	index := uint16(len(b.moduleHandleIndex))
	b.moduleHandles = bcs.AppendULEB128(b.moduleHandles, uint64(key[0]))
	b.moduleHandles = bcs.AppendULEB128(b.moduleHandles, uint64(key[1]))
	b.moduleHandleIndex[key] = index
	return index
}

func (b *Builder) Signature(tokens ...Token) uint16 {
	encoded := bcs.AppendULEB128(nil, uint64(len(tokens)))
	for _, token := range tokens {
		encoded = append(encoded, token...)
	}

	key := string(encoded)
	if index, ok := b.signatureIndex[key]; ok {
		return index
	}
	index := uint16(len(b.signatureIndex))
	b.signatures = append(b.signatures, encoded...)
	b.signatureIndex[key] = index
	return index
}

// StructHandle declares a struct of the given module, and returns its handle index
func (b *Builder) StructHandle(
	moduleHandle uint16,
	name string,
	abilities uint8,
	typeParameters ...StructTypeParameter,
) uint16 {
	nameIndex := b.Identifier(name)

	b.structHandles = bcs.AppendULEB128(b.structHandles, uint64(moduleHandle))
	b.structHandles = bcs.AppendULEB128(b.structHandles, uint64(nameIndex))
	b.structHandles = append(b.structHandles, abilities)
	b.structHandles = bcs.AppendULEB128(b.structHandles, uint64(len(typeParameters)))
	for _, typeParameter := range typeParameters {
		b.structHandles = append(b.structHandles, typeParameter.Constraints)
		if b.Version >= 3 {
			var phantom byte
			if typeParameter.IsPhantom {
				phantom = 1
			}
			b.structHandles = append(b.structHandles, phantom)
		}
	}

	index := b.structHandleCount
	b.structHandleCount++
	return index
}

// AddStruct declares and defines a struct of the module, and returns its handle index
func (b *Builder) AddStruct(s StructDefinition) uint16 {
	handle := b.StructHandle(b.selfModuleHandle, s.Name, s.Abilities, s.TypeParameters...)

	b.structDefinitions = bcs.AppendULEB128(b.structDefinitions, uint64(handle))
	if s.Native {
		b.structDefinitions = append(b.structDefinitions, 0x1)
		return handle
	}

	b.structDefinitions = append(b.structDefinitions, 0x2)
	b.structDefinitions = bcs.AppendULEB128(b.structDefinitions, uint64(len(s.Fields)))
	for _, field := range s.Fields {
		b.structDefinitions = bcs.AppendULEB128(b.structDefinitions, uint64(b.Identifier(field.Name)))
		b.structDefinitions = append(b.structDefinitions, field.Type...)
	}

	return handle
}

// FunctionHandle declares a function of the given module, and returns its handle index
func (b *Builder) FunctionHandle(
	moduleHandle uint16,
	name string,
	parameters []Token,
	returns []Token,
	typeParameters []uint8,
) uint16 {
	nameIndex := b.Identifier(name)
	parametersIndex := b.Signature(parameters...)
	returnsIndex := b.Signature(returns...)

	b.functionHandles = bcs.AppendULEB128(b.functionHandles, uint64(moduleHandle))
	b.functionHandles = bcs.AppendULEB128(b.functionHandles, uint64(nameIndex))
	b.functionHandles = bcs.AppendULEB128(b.functionHandles, uint64(parametersIndex))
	b.functionHandles = bcs.AppendULEB128(b.functionHandles, uint64(returnsIndex))
	b.functionHandles = bcs.AppendULEB128(b.functionHandles, uint64(len(typeParameters)))
	b.functionHandles = append(b.functionHandles, typeParameters...)

	index := b.functionHandleCount
	b.functionHandleCount++
	return index
}

// AddFunction declares and defines a function of the module, and returns its handle index
func (b *Builder) AddFunction(f FunctionDefinition) uint16 {
	handle := b.FunctionHandle(
		b.selfModuleHandle,
		f.Name,
		f.Parameters,
		f.Returns,
		f.TypeParameters,
	)

	visibility := f.Visibility
	var flags byte
	if f.Native {
		flags |= 0x2
	}
	if f.Entry {
		if b.Version >= 5 {
			flags |= 0x4
		} else {
			visibility = VisibilityScript
		}
	}

	definitions := bcs.AppendULEB128(b.functionDefinitions, uint64(handle))
	definitions = append(definitions, visibility, flags)
	definitions = bcs.AppendULEB128(definitions, uint64(len(f.Acquires)))
	for _, acquired := range f.Acquires {
		definitions = bcs.AppendULEB128(definitions, uint64(acquired))
	}

	if !f.Native {
		locals := b.Signature(f.Locals...)
		definitions = bcs.AppendULEB128(definitions, uint64(locals))

		code := f.Code
		if code == nil {
			code = []Instruction{Ret}
		}
		definitions = bcs.AppendULEB128(definitions, uint64(len(code)))
		for _, instruction := range code {
			definitions = append(definitions, instruction...)
		}
	}

	b.functionDefinitions = definitions

	return handle
}

func (b *Builder) AddFriend(address common.Address, name string) {
	b.friendDeclarations = bcs.AppendULEB128(b.friendDeclarations, uint64(b.Address(address)))
	b.friendDeclarations = bcs.AppendULEB128(b.friendDeclarations, uint64(b.Identifier(name)))
}

// AddTable adds a table which is not otherwise supported by the builder,
// e.g. a constant pool
func (b *Builder) AddTable(kind uint8, data []byte) {
	b.extraTables = append(b.extraTables, table{kind: kind, data: data})
}

// Build returns the module binary
func (b *Builder) Build() []byte {
	tables := []table{
		{kind: 0x1, data: b.moduleHandles},
		{kind: 0x2, data: b.structHandles},
		{kind: 0x3, data: b.functionHandles},
		{kind: 0x5, data: b.signatures},
		{kind: 0x7, data: b.identifiers},
		{kind: 0x8, data: b.addresses},
		{kind: 0xA, data: b.structDefinitions},
		{kind: 0xC, data: b.functionDefinitions},
		{kind: 0xF, data: b.friendDeclarations},
	}
	tables = append(tables, b.extraTables...)

	var headers []byte
	var contents []byte
	var count int

	for _, t := range tables {
		if len(t.data) == 0 {
			continue
		}
		headers = append(headers, t.kind)
		headers = bcs.AppendULEB128(headers, uint64(len(contents)))
		headers = bcs.AppendULEB128(headers, uint64(len(t.data)))
		contents = append(contents, t.data...)
		count++
	}

	result := []byte{0xA1, 0x1C, 0xEB, 0x0B}
	result = binary.LittleEndian.AppendUint32(result, b.Version)
	result = bcs.AppendULEB128(result, uint64(count))
	result = append(result, headers...)
	result = append(result, contents...)
	result = bcs.AppendULEB128(result, uint64(b.selfModuleHandle))

	return result
}

// HeaderLength returns the length of the binary up to the table contents
func HeaderLength(code []byte) int {
	decoder := bcs.NewDecoder(code[8:])
	count, err := decoder.DecodeLength()
	if err != nil {
		panic(err)
	}
	for i := 0; i < count; i++ {
		_, _ = decoder.DecodeU8()
		_, _ = decoder.DecodeLength()
		_, _ = decoder.DecodeLength()
	}
	return 8 + decoder.Offset()
}
