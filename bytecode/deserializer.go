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

package bytecode

import (
	"bytes"
	"cmp"
	"math"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/movekit/movecall/abi"
	"github.com/movekit/movecall/common"
)

type tableHeader struct {
	kind   TableKind
	offset uint32
	length uint32
	// headerOffset is the position of the table header in the binary
	headerOffset int
}

type moduleHandle struct {
	address uint16
	name    uint16
	offset  int
}

type structTypeParameter struct {
	constraints uint8
	isPhantom   bool
}

type structHandle struct {
	module         uint16
	name           uint16
	abilities      uint8
	typeParameters []structTypeParameter
	offset         int
}

type functionHandle struct {
	module         uint16
	name           uint16
	parameters     uint16
	returns        uint16
	typeParameters []uint8
	offset         int
}

type signatureToken struct {
	kind SignatureToken
	// index is the struct handle index for struct tokens,
	// and the type parameter index for type parameter tokens
	index         uint16
	typeArguments []*signatureToken
	offset        int
}

type signature struct {
	tokens []*signatureToken
	offset int
}

type fieldDefinition struct {
	name   uint16
	token  *signatureToken
	offset int
}

type structDefinition struct {
	handle   uint16
	isNative bool
	fields   []fieldDefinition
	offset   int
}

type functionDefinition struct {
	handle     uint16
	visibility abi.Visibility
	isEntry    bool
	isNative   bool
	acquires   []uint16
	locals     uint16
	offset     int
}

// compiledModule is the deserialized, but not yet resolved, content of a module binary.
// Indices between tables are only validated when the module is resolved.
type compiledModule struct {
	version             uint32
	selfModuleHandle    uint16
	selfOffset          int
	moduleHandles       []moduleHandle
	structHandles       []structHandle
	functionHandles     []functionHandle
	signatures          []signature
	identifiers         []string
	addressIdentifiers  []common.Address
	structDefinitions   []structDefinition
	functionDefinitions []functionDefinition
	friendDeclarations  []moduleHandle
}

// deserialize parses the binary layout of a module:
//
//	magic | version: u32 | table count: uleb128 | table headers | table contents | self module handle: uleb128
//
// Each table header is `kind: u8 | offset: uleb128 | length: uleb128`,
// the offsets are relative to the start of the table contents,
// and the tables must be contiguous.
func deserialize(code []byte) *compiledModule {
	r := newReader(code, 0, "header")

	magic, err := r.decoder.DecodeFixedBytes(len(Magic))
	r.check(err)
	if !bytes.Equal(magic, Magic) {
		panic(newMalformedModuleError(0, "header: invalid magic %x", magic))
	}

	versionOffset := r.offset()
	version := r.u32()
	if version < VersionMin || version > VersionMax {
		panic(newMalformedModuleError(
			versionOffset,
			"header: unsupported version %d, supported versions are %d to %d",
			version,
			VersionMin,
			VersionMax,
		))
	}

	module := &compiledModule{
		version: version,
	}

	tableCount := r.count(tableCountMax)
	headers := make([]tableHeader, tableCount)

	seenKinds := bitset.New(uint(tableKindMax) + 1)

	for i := range headers {
		headerOffset := r.offset()

		kind := TableKind(r.u8())
		if !kind.isValid() {
			panic(newMalformedModuleError(headerOffset, "header: unknown table kind 0x%x", uint8(kind)))
		}
		if seenKinds.Test(uint(kind)) {
			panic(newMalformedModuleError(headerOffset, "header: duplicate table kind 0x%x", uint8(kind)))
		}
		seenKinds.Set(uint(kind))

		offset := r.uleb(math.MaxUint32)
		length := r.uleb(math.MaxUint32)

		headers[i] = tableHeader{
			kind:         kind,
			offset:       uint32(offset),
			length:       uint32(length),
			headerOffset: headerOffset,
		}
	}

	contentStart := r.offset()

	sortedHeaders := slices.Clone(headers)
	slices.SortFunc(sortedHeaders, func(a, b tableHeader) int {
		return cmp.Compare(a.offset, b.offset)
	})

	var contentLength uint64
	for _, header := range sortedHeaders {
		if uint64(header.offset) != contentLength {
			panic(newMalformedModuleError(
				header.headerOffset,
				"header: table 0x%x is not contiguous",
				uint8(header.kind),
			))
		}
		contentLength += uint64(header.length)
	}

	if uint64(r.decoder.Remaining()) < contentLength {
		panic(newMalformedModuleError(
			contentStart,
			"header: tables need %d bytes, only %d remaining",
			contentLength,
			r.decoder.Remaining(),
		))
	}

	contents := code[contentStart : contentStart+int(contentLength)]
	r.skip(int(contentLength))

	r.what = "module"
	module.selfOffset = r.offset()
	module.selfModuleHandle = r.index()

	if !r.done() {
		r.fail("%d trailing bytes", r.decoder.Remaining())
	}

	for _, header := range headers {
		start := int(header.offset)
		end := start + int(header.length)
		module.loadTable(
			header.kind,
			contents[start:end],
			contentStart+start,
		)
	}

	return module
}

func (m *compiledModule) loadTable(kind TableKind, data []byte, base int) {
	switch kind {
	case TableKindModuleHandles:
		r := newReader(data, base, "module handles")
		m.moduleHandles = loadModuleHandles(r)

	case TableKindFriendDeclarations:
		r := newReader(data, base, "friend declarations")
		m.friendDeclarations = loadModuleHandles(r)

	case TableKindStructHandles:
		m.loadStructHandles(newReader(data, base, "struct handles"))

	case TableKindFunctionHandles:
		m.loadFunctionHandles(newReader(data, base, "function handles"))

	case TableKindSignatures:
		m.loadSignatures(newReader(data, base, "signatures"))

	case TableKindIdentifiers:
		r := newReader(data, base, "identifiers")
		for !r.done() {
			m.identifiers = append(m.identifiers, r.identifier())
		}

	case TableKindAddressIdentifiers:
		r := newReader(data, base, "address identifiers")
		for !r.done() {
			m.addressIdentifiers = append(m.addressIdentifiers, r.address())
		}

	case TableKindStructDefinitions:
		m.loadStructDefinitions(newReader(data, base, "struct definitions"))

	case TableKindFunctionDefinitions:
		m.loadFunctionDefinitions(newReader(data, base, "function definitions"))

	default:
		// Constants, instantiations, field handles and metadata
		// do not contribute to the ABI. Their range was validated with the header.
	}
}

func loadModuleHandles(r *reader) []moduleHandle {
	var handles []moduleHandle
	for !r.done() {
		offset := r.offset()
		handles = append(handles, moduleHandle{
			address: r.index(),
			name:    r.index(),
			offset:  offset,
		})
	}
	return handles
}

func (m *compiledModule) loadStructHandles(r *reader) {
	for !r.done() {
		handle := structHandle{
			offset: r.offset(),
		}
		handle.module = r.index()
		handle.name = r.index()
		handle.abilities = r.abilitySet()

		count := r.count(typeParameterCountMax)
		handle.typeParameters = make([]structTypeParameter, count)
		for i := range handle.typeParameters {
			typeParameter := structTypeParameter{
				constraints: r.abilitySet(),
			}
			if m.version >= Version3 {
				typeParameter.isPhantom = r.bool()
			}
			handle.typeParameters[i] = typeParameter
		}

		m.structHandles = append(m.structHandles, handle)
	}
}

func (m *compiledModule) loadFunctionHandles(r *reader) {
	for !r.done() {
		handle := functionHandle{
			offset: r.offset(),
		}
		handle.module = r.index()
		handle.name = r.index()
		handle.parameters = r.index()
		handle.returns = r.index()

		count := r.count(typeParameterCountMax)
		handle.typeParameters = make([]uint8, count)
		for i := range handle.typeParameters {
			handle.typeParameters[i] = r.abilitySet()
		}

		m.functionHandles = append(m.functionHandles, handle)
	}
}

func (m *compiledModule) loadSignatures(r *reader) {
	for !r.done() {
		offset := r.offset()
		count := r.count(signatureSizeMax)
		tokens := make([]*signatureToken, count)
		for i := range tokens {
			tokens[i] = m.loadSignatureToken(r, 1)
		}
		m.signatures = append(m.signatures, signature{
			tokens: tokens,
			offset: offset,
		})
	}
}

func (m *compiledModule) loadSignatureToken(r *reader, depth int) *signatureToken {
	if depth > signatureDepthMax {
		r.fail("type nesting exceeds maximum depth %d", signatureDepthMax)
	}

	token := &signatureToken{
		offset: r.offset(),
		kind:   SignatureToken(r.u8()),
	}

	switch token.kind {
	case SignatureTokenBool,
		SignatureTokenU8,
		SignatureTokenU64,
		SignatureTokenU128,
		SignatureTokenAddress,
		SignatureTokenSigner:

		// no payload

	case SignatureTokenU16,
		SignatureTokenU32,
		SignatureTokenU256:

		if m.version < Version6 {
			panic(newMalformedModuleError(
				token.offset,
				"%s: type 0x%x requires version %d",
				r.what,
				uint8(token.kind),
				Version6,
			))
		}

	case SignatureTokenReference,
		SignatureTokenMutableReference,
		SignatureTokenVector:

		token.typeArguments = []*signatureToken{
			m.loadSignatureToken(r, depth+1),
		}

	case SignatureTokenStruct,
		SignatureTokenTypeParameter:

		token.index = r.index()

	case SignatureTokenStructInstance:
		token.index = r.index()
		count := r.count(signatureSizeMax)
		if count == 0 {
			r.fail("struct instantiation without type arguments")
		}
		token.typeArguments = make([]*signatureToken, count)
		for i := range token.typeArguments {
			token.typeArguments[i] = m.loadSignatureToken(r, depth+1)
		}

	default:
		panic(newMalformedModuleError(
			token.offset,
			"%s: unknown type 0x%x",
			r.what,
			uint8(token.kind),
		))
	}

	return token
}

func (m *compiledModule) loadStructDefinitions(r *reader) {
	for !r.done() {
		definition := structDefinition{
			offset: r.offset(),
			handle: r.index(),
		}

		switch information := r.u8(); information {
		case structFieldInformationNative:
			definition.isNative = true

		case structFieldInformationDeclared:
			count := r.count(fieldCountMax)
			definition.fields = make([]fieldDefinition, count)
			for i := range definition.fields {
				offset := r.offset()
				definition.fields[i] = fieldDefinition{
					offset: offset,
					name:   r.index(),
					token:  m.loadSignatureToken(r, 1),
				}
			}

		default:
			r.fail("invalid field information 0x%x", information)
		}

		m.structDefinitions = append(m.structDefinitions, definition)
	}
}

func (m *compiledModule) loadFunctionDefinitions(r *reader) {
	for !r.done() {
		definition := functionDefinition{
			offset: r.offset(),
			handle: r.index(),
		}

		visibility := r.u8()
		flags := r.u8()

		switch visibility {
		case visibilityPrivate:
			definition.visibility = abi.VisibilityPrivate
		case visibilityPublic:
			definition.visibility = abi.VisibilityPublic
		case visibilityFriend:
			definition.visibility = abi.VisibilityFriend
		case visibilityDeprecatedScript:
			if m.version >= Version5 {
				r.fail("script visibility is not supported in version %d", m.version)
			}
			definition.visibility = abi.VisibilityPublic
			definition.isEntry = true
		default:
			r.fail("invalid visibility 0x%x", visibility)
		}

		allowedFlags := uint8(functionFlagNative)
		if m.version >= Version5 {
			allowedFlags |= functionFlagEntry
		}
		if flags&^allowedFlags != 0 {
			r.fail("invalid function flags 0x%x", flags)
		}

		if flags&functionFlagEntry != 0 {
			definition.isEntry = true
		}
		definition.isNative = flags&functionFlagNative != 0

		count := r.count(acquiresCountMax)
		definition.acquires = make([]uint16, count)
		for i := range definition.acquires {
			definition.acquires[i] = r.index()
		}

		if !definition.isNative {
			definition.locals = r.index()
			m.skipCode(r)
		}

		m.functionDefinitions = append(m.functionDefinitions, definition)
	}
}
