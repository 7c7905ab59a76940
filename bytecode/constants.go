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

// Magic is the prefix of every serialized module
var Magic = []byte{0xA1, 0x1C, 0xEB, 0x0B}

const (
	VersionMin uint32 = 2
	// Version3 introduced phantom type parameters
	Version3 uint32 = 3
	// Version4 introduced vector instructions
	Version4 uint32 = 4
	// Version5 introduced the entry function flag
	Version5 uint32 = 5
	// Version6 introduced u16, u32 and u256
	Version6   uint32 = 6
	VersionMax uint32 = Version6
)

// Limits of the binary format
const (
	tableCountMax         = 255
	tableIndexMax         = 65535
	identifierSizeMax     = 65535
	signatureSizeMax      = 255
	typeParameterCountMax = 255
	fieldCountMax         = 255
	acquiresCountMax      = 255
	bytecodeCountMax      = 65535
	signatureDepthMax     = 256
)

// TableKind identifies a table of the module binary

type TableKind uint8

const (
	TableKindModuleHandles       TableKind = 0x1
	TableKindStructHandles       TableKind = 0x2
	TableKindFunctionHandles     TableKind = 0x3
	TableKindFunctionInstances   TableKind = 0x4
	TableKindSignatures          TableKind = 0x5
	TableKindConstantPool        TableKind = 0x6
	TableKindIdentifiers         TableKind = 0x7
	TableKindAddressIdentifiers  TableKind = 0x8
	TableKindStructDefinitions   TableKind = 0xA
	TableKindStructInstances     TableKind = 0xB
	TableKindFunctionDefinitions TableKind = 0xC
	TableKindFieldHandles        TableKind = 0xD
	TableKindFieldInstances      TableKind = 0xE
	TableKindFriendDeclarations  TableKind = 0xF
	TableKindMetadata            TableKind = 0x10

	tableKindMax = TableKindMetadata
)

func (k TableKind) isValid() bool {
	switch k {
	case TableKindModuleHandles,
		TableKindStructHandles,
		TableKindFunctionHandles,
		TableKindFunctionInstances,
		TableKindSignatures,
		TableKindConstantPool,
		TableKindIdentifiers,
		TableKindAddressIdentifiers,
		TableKindStructDefinitions,
		TableKindStructInstances,
		TableKindFunctionDefinitions,
		TableKindFieldHandles,
		TableKindFieldInstances,
		TableKindFriendDeclarations,
		TableKindMetadata:

		return true
	}
	return false
}

// SignatureToken is the discriminant of a type in a signature

type SignatureToken uint8

const (
	SignatureTokenBool             SignatureToken = 0x1
	SignatureTokenU8               SignatureToken = 0x2
	SignatureTokenU64              SignatureToken = 0x3
	SignatureTokenU128             SignatureToken = 0x4
	SignatureTokenAddress          SignatureToken = 0x5
	SignatureTokenReference        SignatureToken = 0x6
	SignatureTokenMutableReference SignatureToken = 0x7
	SignatureTokenStruct           SignatureToken = 0x8
	SignatureTokenTypeParameter    SignatureToken = 0x9
	SignatureTokenVector           SignatureToken = 0xA
	SignatureTokenStructInstance   SignatureToken = 0xB
	SignatureTokenSigner           SignatureToken = 0xC
	SignatureTokenU16              SignatureToken = 0xD
	SignatureTokenU32              SignatureToken = 0xE
	SignatureTokenU256             SignatureToken = 0xF
)

// Struct field information

const (
	structFieldInformationNative   = 0x1
	structFieldInformationDeclared = 0x2
)

// Function visibility, as serialized

const (
	visibilityPrivate = 0x0
	visibilityPublic  = 0x1
	// visibilityDeprecatedScript only exists before Version5,
	// it is equivalent to a public entry function
	visibilityDeprecatedScript = 0x2
	visibilityFriend           = 0x3
)

// Function definition flags

const (
	functionFlagNative = 0x2
	functionFlagEntry  = 0x4
)

// Opcode

type Opcode uint8

const (
	OpcodePop                    Opcode = 0x01
	OpcodeRet                    Opcode = 0x02
	OpcodeBrTrue                 Opcode = 0x03
	OpcodeBrFalse                Opcode = 0x04
	OpcodeBranch                 Opcode = 0x05
	OpcodeLdU64                  Opcode = 0x06
	OpcodeLdConst                Opcode = 0x07
	OpcodeLdTrue                 Opcode = 0x08
	OpcodeLdFalse                Opcode = 0x09
	OpcodeCopyLoc                Opcode = 0x0A
	OpcodeMoveLoc                Opcode = 0x0B
	OpcodeStLoc                  Opcode = 0x0C
	OpcodeMutBorrowLoc           Opcode = 0x0D
	OpcodeImmBorrowLoc           Opcode = 0x0E
	OpcodeMutBorrowField         Opcode = 0x0F
	OpcodeImmBorrowField         Opcode = 0x10
	OpcodeCall                   Opcode = 0x11
	OpcodePack                   Opcode = 0x12
	OpcodeUnpack                 Opcode = 0x13
	OpcodeReadRef                Opcode = 0x14
	OpcodeWriteRef               Opcode = 0x15
	OpcodeAdd                    Opcode = 0x16
	OpcodeSub                    Opcode = 0x17
	OpcodeMul                    Opcode = 0x18
	OpcodeMod                    Opcode = 0x19
	OpcodeDiv                    Opcode = 0x1A
	OpcodeBitOr                  Opcode = 0x1B
	OpcodeBitAnd                 Opcode = 0x1C
	OpcodeXor                    Opcode = 0x1D
	OpcodeOr                     Opcode = 0x1E
	OpcodeAnd                    Opcode = 0x1F
	OpcodeNot                    Opcode = 0x20
	OpcodeEq                     Opcode = 0x21
	OpcodeNeq                    Opcode = 0x22
	OpcodeLt                     Opcode = 0x23
	OpcodeGt                     Opcode = 0x24
	OpcodeLe                     Opcode = 0x25
	OpcodeGe                     Opcode = 0x26
	OpcodeAbort                  Opcode = 0x27
	OpcodeNop                    Opcode = 0x28
	OpcodeExists                 Opcode = 0x29
	OpcodeMutBorrowGlobal        Opcode = 0x2A
	OpcodeImmBorrowGlobal        Opcode = 0x2B
	OpcodeMoveFrom               Opcode = 0x2C
	OpcodeMoveTo                 Opcode = 0x2D
	OpcodeFreezeRef              Opcode = 0x2E
	OpcodeShl                    Opcode = 0x2F
	OpcodeShr                    Opcode = 0x30
	OpcodeLdU8                   Opcode = 0x31
	OpcodeLdU128                 Opcode = 0x32
	OpcodeCastU8                 Opcode = 0x33
	OpcodeCastU64                Opcode = 0x34
	OpcodeCastU128               Opcode = 0x35
	OpcodeMutBorrowFieldGeneric  Opcode = 0x36
	OpcodeImmBorrowFieldGeneric  Opcode = 0x37
	OpcodeCallGeneric            Opcode = 0x38
	OpcodePackGeneric            Opcode = 0x39
	OpcodeUnpackGeneric          Opcode = 0x3A
	OpcodeExistsGeneric          Opcode = 0x3B
	OpcodeMutBorrowGlobalGeneric Opcode = 0x3C
	OpcodeImmBorrowGlobalGeneric Opcode = 0x3D
	OpcodeMoveFromGeneric        Opcode = 0x3E
	OpcodeMoveToGeneric          Opcode = 0x3F
	OpcodeVecPack                Opcode = 0x40
	OpcodeVecLen                 Opcode = 0x41
	OpcodeVecImmBorrow           Opcode = 0x42
	OpcodeVecMutBorrow           Opcode = 0x43
	OpcodeVecPushBack            Opcode = 0x44
	OpcodeVecPopBack             Opcode = 0x45
	OpcodeVecUnpack              Opcode = 0x46
	OpcodeVecSwap                Opcode = 0x47
	OpcodeLdU16                  Opcode = 0x48
	OpcodeLdU32                  Opcode = 0x49
	OpcodeLdU256                 Opcode = 0x4A
	OpcodeCastU16                Opcode = 0x4B
	OpcodeCastU32                Opcode = 0x4C
	OpcodeCastU256               Opcode = 0x4D
)

// operandKind describes the immediate operands following an opcode
type operandKind uint8

const (
	operandNone operandKind = iota
	// operandCodeOffset is a ULEB128 branch target
	operandCodeOffset
	// operandIndex is a ULEB128 table index
	operandIndex
	// operandIndexAndU64 is a ULEB128 signature index followed by a u64 element count
	operandIndexAndU64
	operandU8
	operandU16
	operandU32
	operandU64
	operandU128
	operandU256
)

type opcodeInfo struct {
	operand    operandKind
	minVersion uint32
}

// opcodeInfos describes the operands of each opcode.
// Opcodes not in the table are invalid.
var opcodeInfos = func() map[Opcode]opcodeInfo {
	infos := map[Opcode]opcodeInfo{}

	set := func(operand operandKind, minVersion uint32, opcodes ...Opcode) {
		for _, opcode := range opcodes {
			infos[opcode] = opcodeInfo{
				operand:    operand,
				minVersion: minVersion,
			}
		}
	}

	set(operandNone, VersionMin,
		OpcodePop, OpcodeRet, OpcodeLdTrue, OpcodeLdFalse,
		OpcodeReadRef, OpcodeWriteRef,
		OpcodeAdd, OpcodeSub, OpcodeMul, OpcodeMod, OpcodeDiv,
		OpcodeBitOr, OpcodeBitAnd, OpcodeXor, OpcodeOr, OpcodeAnd, OpcodeNot,
		OpcodeEq, OpcodeNeq, OpcodeLt, OpcodeGt, OpcodeLe, OpcodeGe,
		OpcodeAbort, OpcodeNop, OpcodeFreezeRef, OpcodeShl, OpcodeShr,
		OpcodeCastU8, OpcodeCastU64, OpcodeCastU128,
	)
	set(operandCodeOffset, VersionMin,
		OpcodeBrTrue, OpcodeBrFalse, OpcodeBranch,
	)
	set(operandU8, VersionMin,
		OpcodeLdU8,
		OpcodeCopyLoc, OpcodeMoveLoc, OpcodeStLoc, OpcodeMutBorrowLoc, OpcodeImmBorrowLoc,
	)
	set(operandU64, VersionMin, OpcodeLdU64)
	set(operandU128, VersionMin, OpcodeLdU128)
	set(operandIndex, VersionMin,
		OpcodeLdConst,
		OpcodeMutBorrowField, OpcodeImmBorrowField,
		OpcodeMutBorrowFieldGeneric, OpcodeImmBorrowFieldGeneric,
		OpcodeCall, OpcodeCallGeneric,
		OpcodePack, OpcodeUnpack, OpcodePackGeneric, OpcodeUnpackGeneric,
		OpcodeExists, OpcodeMutBorrowGlobal, OpcodeImmBorrowGlobal, OpcodeMoveFrom, OpcodeMoveTo,
		OpcodeExistsGeneric, OpcodeMutBorrowGlobalGeneric, OpcodeImmBorrowGlobalGeneric,
		OpcodeMoveFromGeneric, OpcodeMoveToGeneric,
	)
	set(operandIndex, Version4,
		OpcodeVecLen, OpcodeVecImmBorrow, OpcodeVecMutBorrow,
		OpcodeVecPushBack, OpcodeVecPopBack, OpcodeVecSwap,
	)
	set(operandIndexAndU64, Version4,
		OpcodeVecPack, OpcodeVecUnpack,
	)
	set(operandU16, Version6, OpcodeLdU16)
	set(operandU32, Version6, OpcodeLdU32)
	set(operandU256, Version6, OpcodeLdU256)
	set(operandNone, Version6,
		OpcodeCastU16, OpcodeCastU32, OpcodeCastU256,
	)

	return infos
}()
