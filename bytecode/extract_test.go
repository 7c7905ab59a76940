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

package bytecode_test

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movekit/movecall/abi"
	"github.com/movekit/movecall/bytecode"
	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/errors"
	. "github.com/movekit/movecall/test_utils/common_utils"
	mb "github.com/movekit/movecall/test_utils/modulebuilder"
	"github.com/movekit/movecall/typetag"
)

var coinAddress = common.MustHexToAddress("0x1")

func coinModule(version uint32) []byte {
	builder := mb.New(coinAddress, "Coin")
	builder.Version = version

	coin := builder.AddStruct(mb.StructDefinition{
		Name:      "Coin",
		Abilities: uint8(abi.AbilityStore),
		TypeParameters: []mb.StructTypeParameter{
			{IsPhantom: version >= bytecode.Version3},
		},
		Fields: []mb.Field{
			{Name: "value", Type: mb.U64},
		},
	})

	builder.AddFunction(mb.FunctionDefinition{
		Name:       "transfer",
		Visibility: mb.VisibilityPublic,
		Entry:      true,
		Parameters: []mb.Token{
			mb.Reference(mb.Signer),
			mb.Address,
			mb.U64,
		},
		Locals: []mb.Token{mb.U64},
		Code: []mb.Instruction{
			mb.MoveLoc(2),
			mb.LdU64(1),
			mb.Add,
			mb.Pop,
			mb.Ret,
		},
	})

	builder.AddFunction(mb.FunctionDefinition{
		Name:           "zero",
		Visibility:     mb.VisibilityFriend,
		TypeParameters: []uint8{uint8(abi.AbilityStore)},
		Returns: []mb.Token{
			mb.StructInstance(coin, mb.TypeParameter(0)),
		},
		Acquires: []uint16{0},
		Code: []mb.Instruction{
			mb.LdTrue,
			mb.BrTrue(3),
			mb.Branch(0),
			mb.LdConst(0),
			mb.Abort,
		},
	})

	builder.AddFunction(mb.FunctionDefinition{
		Name:   "hash",
		Native: true,
		Parameters: []mb.Token{
			mb.Vector(mb.U8),
		},
		Returns: []mb.Token{
			mb.Vector(mb.U8),
		},
	})

	builder.AddFriend(coinAddress, "Genesis")

	// constant pool: a single u64 constant
	builder.AddTable(0x6, []byte{0x3, 0x8, 1, 0, 0, 0, 0, 0, 0, 0})

	return builder.Build()
}

func expectedCoinModule(phantom bool) *abi.Module {
	coinType := &typetag.StructType{
		Address:       coinAddress,
		Module:        "Coin",
		Name:          "Coin",
		TypeArguments: []typetag.TypeTag{typetag.TypeParameterType{Index: 0}},
	}

	return &abi.Module{
		ID: common.NewModuleID(coinAddress, "Coin"),
		Friends: []common.ModuleID{
			common.NewModuleID(coinAddress, "Genesis"),
		},
		Functions: []*abi.Function{
			{
				Name:           "transfer",
				Visibility:     abi.VisibilityPublic,
				IsEntry:        true,
				TypeParameters: []abi.AbilitySet{},
				Parameters: []typetag.TypeTag{
					&typetag.ReferenceType{Referenced: typetag.SignerType},
					typetag.AddressType,
					typetag.U64Type,
				},
				Returns: []typetag.TypeTag{},
			},
			{
				Name:       "zero",
				Visibility: abi.VisibilityFriend,
				TypeParameters: []abi.AbilitySet{
					abi.NewAbilitySet(abi.AbilityStore),
				},
				Parameters: []typetag.TypeTag{},
				Returns:    []typetag.TypeTag{coinType},
			},
			{
				Name:           "hash",
				Visibility:     abi.VisibilityPrivate,
				IsNative:       true,
				TypeParameters: []abi.AbilitySet{},
				Parameters: []typetag.TypeTag{
					typetag.NewVectorType(typetag.U8Type),
				},
				Returns: []typetag.TypeTag{
					typetag.NewVectorType(typetag.U8Type),
				},
			},
		},
		Structs: []*abi.Struct{
			{
				Name:      "Coin",
				Abilities: abi.NewAbilitySet(abi.AbilityStore),
				TypeParameters: []abi.StructTypeParameter{
					{IsPhantom: phantom},
				},
				Fields: []abi.Field{
					{Name: "value", Type: typetag.U64Type},
				},
			},
		},
	}
}

func requireMalformed(t *testing.T, code []byte) bytecode.MalformedModuleError {
	t.Helper()

	module, err := bytecode.ExtractABI(code)
	RequireError(t, err)
	require.Nil(t, module)

	var malformedErr bytecode.MalformedModuleError
	require.ErrorAs(t, err, &malformedErr)
	require.True(t, errors.IsUserError(err))

	return malformedErr
}

func TestExtractABI(t *testing.T) {

	t.Parallel()

	for _, version := range []uint32{
		bytecode.Version5,
		bytecode.Version6,
	} {
		module, err := bytecode.ExtractABI(coinModule(version))
		require.NoError(t, err)

		AssertEqualWithDiff(t, expectedCoinModule(true), module)
	}
}

func TestExtractABI_DeprecatedScriptVisibility(t *testing.T) {

	t.Parallel()

	// Before version 5, entry functions are encoded with script visibility
	module, err := bytecode.ExtractABI(coinModule(bytecode.Version4))
	require.NoError(t, err)

	AssertEqualWithDiff(t, expectedCoinModule(true), module)

	builder := mb.New(coinAddress, "Coin")
	builder.Version = bytecode.Version5
	builder.AddFunction(mb.FunctionDefinition{
		Name:       "main",
		Visibility: mb.VisibilityScript,
	})
	malformedErr := requireMalformed(t, builder.Build())
	assert.Contains(t, malformedErr.Reason, "script visibility")
}

func TestExtractABI_Version2(t *testing.T) {

	t.Parallel()

	// Version 2 has no phantom type parameters
	module, err := bytecode.ExtractABI(coinModule(bytecode.VersionMin))
	require.NoError(t, err)

	AssertEqualWithDiff(t, expectedCoinModule(false), module)
}

func TestExtractABI_Idempotent(t *testing.T) {

	t.Parallel()

	tokens := []mb.Token{
		mb.Bool, mb.U8, mb.U16, mb.U32, mb.U64, mb.U128, mb.U256,
		mb.Address, mb.Signer,
		mb.Vector(mb.U8),
		mb.Vector(mb.Vector(mb.Address)),
		mb.Reference(mb.U64),
		mb.MutableReference(mb.Vector(mb.Bool)),
	}

	properties := gopter.NewProperties(nil)

	properties.Property("extraction is deterministic", prop.ForAll(
		func(indices []int, entry bool) bool {
			parameters := make([]mb.Token, len(indices))
			for i, index := range indices {
				parameters[i] = tokens[index]
			}

			builder := mb.New(coinAddress, "Coin")
			builder.AddFunction(mb.FunctionDefinition{
				Name:       "f",
				Visibility: mb.VisibilityPublic,
				Entry:      entry,
				Parameters: parameters,
			})
			code := builder.Build()

			first, err := bytecode.ExtractABI(code)
			if err != nil {
				return false
			}

			second, err := bytecode.ExtractABI(code)
			if err != nil {
				return false
			}

			function := first.Functions[0]

			return reflect.DeepEqual(first, second) &&
				function.IsEntry == entry &&
				len(function.Parameters) == len(indices)
		},
		gen.SliceOf(gen.IntRange(0, len(tokens)-1)),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestExtractABI_Truncated(t *testing.T) {

	t.Parallel()

	code := coinModule(bytecode.Version6)

	t.Run("after header", func(t *testing.T) {

		t.Parallel()

		requireMalformed(t, code[:mb.HeaderLength(code)])
	})

	t.Run("every prefix", func(t *testing.T) {

		t.Parallel()

		for length := 0; length < len(code); length++ {
			module, err := bytecode.ExtractABI(code[:length])
			require.Error(t, err, length)
			require.Nil(t, module, length)
			require.IsType(t, bytecode.MalformedModuleError{}, err, length)
		}
	})
}

func TestExtractABI_InvalidHeader(t *testing.T) {

	t.Parallel()

	code := coinModule(bytecode.Version6)

	t.Run("magic", func(t *testing.T) {

		t.Parallel()

		invalid := append([]byte{}, code...)
		invalid[0] = 0xA2

		malformedErr := requireMalformed(t, invalid)
		assert.Equal(t, 0, malformedErr.Offset)
	})

	for _, version := range []byte{0, 1, 7, 0xff} {
		version := version

		t.Run("version", func(t *testing.T) {

			t.Parallel()

			invalid := append([]byte{}, code...)
			invalid[4] = version

			malformedErr := requireMalformed(t, invalid)
			assert.Equal(t, 4, malformedErr.Offset)
			assert.Contains(t, malformedErr.Reason, "unsupported version")
		})
	}

	t.Run("trailing bytes", func(t *testing.T) {

		t.Parallel()

		invalid := append(append([]byte{}, code...), 0x0)

		malformedErr := requireMalformed(t, invalid)
		assert.Contains(t, malformedErr.Reason, "trailing bytes")
	})

	t.Run("empty", func(t *testing.T) {

		t.Parallel()

		requireMalformed(t, nil)
	})
}

func TestExtractABI_InvalidTables(t *testing.T) {

	t.Parallel()

	t.Run("duplicate table", func(t *testing.T) {

		t.Parallel()

		builder := mb.New(coinAddress, "Coin")
		builder.AddTable(0x7, []byte{0x1, 'x'})

		malformedErr := requireMalformed(t, builder.Build())
		assert.Contains(t, malformedErr.Reason, "duplicate table")
	})

	t.Run("unknown table", func(t *testing.T) {

		t.Parallel()

		builder := mb.New(coinAddress, "Coin")
		builder.AddTable(0x9, []byte{0x0})

		malformedErr := requireMalformed(t, builder.Build())
		assert.Contains(t, malformedErr.Reason, "unknown table kind")
	})

	t.Run("not contiguous", func(t *testing.T) {

		t.Parallel()

		code := mb.New(coinAddress, "Coin").Build()

		// first table header: kind, offset, length.
		// Moving the first table's offset leaves a gap.
		require.Equal(t, byte(0x1), code[9])
		code[10] = 0x1

		malformedErr := requireMalformed(t, code)
		assert.Contains(t, malformedErr.Reason, "not contiguous")
	})

	t.Run("invalid identifier", func(t *testing.T) {

		t.Parallel()

		builder := mb.New(coinAddress, "Coin")
		builder.Identifier("no-dashes")

		malformedErr := requireMalformed(t, builder.Build())
		assert.Contains(t, malformedErr.Reason, "invalid identifier")
	})

	t.Run("self module handle out of range", func(t *testing.T) {

		t.Parallel()

		code := mb.New(coinAddress, "Coin").Build()
		code[len(code)-1] = 0x5

		malformedErr := requireMalformed(t, code)
		assert.Contains(t, malformedErr.Reason, "self module handle")
	})
}

func TestExtractABI_InvalidSignatures(t *testing.T) {

	t.Parallel()

	build := func(version uint32, parameters ...mb.Token) []byte {
		builder := mb.New(coinAddress, "Coin")
		builder.Version = version
		builder.AddFunction(mb.FunctionDefinition{
			Name:       "f",
			Visibility: mb.VisibilityPublic,
			Entry:      true,
			Parameters: parameters,
		})
		return builder.Build()
	}

	t.Run("unknown type", func(t *testing.T) {

		t.Parallel()

		malformedErr := requireMalformed(t, build(bytecode.Version6, mb.Token{0x10}))
		assert.Contains(t, malformedErr.Reason, "unknown type")
	})

	t.Run("u256 before version 6", func(t *testing.T) {

		t.Parallel()

		malformedErr := requireMalformed(t, build(bytecode.Version5, mb.U256))
		assert.Contains(t, malformedErr.Reason, "requires version")
	})

	t.Run("type parameter out of range", func(t *testing.T) {

		t.Parallel()

		malformedErr := requireMalformed(t, build(bytecode.Version6, mb.TypeParameter(0)))
		assert.Contains(t, malformedErr.Reason, "type parameter 0 out of range")
	})

	t.Run("nested reference", func(t *testing.T) {

		t.Parallel()

		malformedErr := requireMalformed(t, build(bytecode.Version6, mb.Vector(mb.Reference(mb.U8))))
		assert.Contains(t, malformedErr.Reason, "nested reference")
	})

	t.Run("struct handle out of range", func(t *testing.T) {

		t.Parallel()

		malformedErr := requireMalformed(t, build(bytecode.Version6, mb.Struct(3)))
		assert.Contains(t, malformedErr.Reason, "struct handle index 3 out of range")
	})

	t.Run("missing struct type arguments", func(t *testing.T) {

		t.Parallel()

		builder := mb.New(coinAddress, "Coin")
		coin := builder.AddStruct(mb.StructDefinition{
			Name: "Coin",
			TypeParameters: []mb.StructTypeParameter{
				{},
			},
			Fields: []mb.Field{
				{Name: "value", Type: mb.U64},
			},
		})
		builder.AddFunction(mb.FunctionDefinition{
			Name:       "f",
			Parameters: []mb.Token{mb.Struct(coin)},
		})

		malformedErr := requireMalformed(t, builder.Build())
		assert.Contains(t, malformedErr.Reason, "expects 1 type arguments, got 0")
	})

	t.Run("too deep", func(t *testing.T) {

		t.Parallel()

		token := mb.U8
		for i := 0; i < 256; i++ {
			token = mb.Vector(token)
		}

		malformedErr := requireMalformed(t, build(bytecode.Version6, token))
		assert.Contains(t, malformedErr.Reason, "maximum depth")
	})
}

func TestExtractABI_InvalidCode(t *testing.T) {

	t.Parallel()

	build := func(version uint32, code ...mb.Instruction) []byte {
		builder := mb.New(coinAddress, "Coin")
		builder.Version = version
		builder.AddFunction(mb.FunctionDefinition{
			Name:       "f",
			Visibility: mb.VisibilityPublic,
			Code:       code,
		})
		return builder.Build()
	}

	t.Run("valid", func(t *testing.T) {

		t.Parallel()

		_, err := bytecode.ExtractABI(build(
			bytecode.Version6,
			mb.LdU8(1),
			mb.LdU128(1, 2),
			mb.LdU256([4]uint64{1, 2, 3, 4}),
			mb.CopyLoc(0),
			mb.VecPack(0, 2),
			mb.VecLen(0),
			mb.Call(0),
			mb.LdFalse,
			mb.Ret,
		))
		require.NoError(t, err)
	})

	t.Run("unknown opcode", func(t *testing.T) {

		t.Parallel()

		malformedErr := requireMalformed(t, build(bytecode.Version6, mb.Instruction{0xFF}))
		assert.Contains(t, malformedErr.Reason, "unknown opcode 0xff")
	})

	t.Run("u256 before version 6", func(t *testing.T) {

		t.Parallel()

		malformedErr := requireMalformed(t, build(bytecode.Version5, mb.LdU256([4]uint64{})))
		assert.Contains(t, malformedErr.Reason, "requires version 6")
	})

	t.Run("vector instruction before version 4", func(t *testing.T) {

		t.Parallel()

		malformedErr := requireMalformed(t, build(bytecode.Version3, mb.VecLen(0)))
		assert.Contains(t, malformedErr.Reason, "requires version 4")
	})

	t.Run("branch target out of range", func(t *testing.T) {

		t.Parallel()

		malformedErr := requireMalformed(t, build(bytecode.Version6, mb.Branch(2), mb.Ret))
		assert.Contains(t, malformedErr.Reason, "branch target 2 out of range")
	})

	t.Run("truncated operand", func(t *testing.T) {

		t.Parallel()

		malformedErr := requireMalformed(t, build(bytecode.Version6, mb.Instruction{0x06, 0x1}))
		assert.Contains(t, malformedErr.Reason, "function definitions")
	})
}

func TestExtractABI_InvalidDefinitions(t *testing.T) {

	t.Parallel()

	t.Run("duplicate function", func(t *testing.T) {

		t.Parallel()

		builder := mb.New(coinAddress, "Coin")
		builder.AddFunction(mb.FunctionDefinition{Name: "f"})
		builder.AddFunction(mb.FunctionDefinition{Name: "f", Parameters: []mb.Token{mb.U8}})

		malformedErr := requireMalformed(t, builder.Build())
		assert.Contains(t, malformedErr.Reason, `duplicate function "f"`)
	})

	t.Run("imported function", func(t *testing.T) {

		t.Parallel()

		builder := mb.New(coinAddress, "Coin")
		other := builder.ModuleHandle(coinAddress, "Other")
		builder.FunctionHandle(other, "f", nil, nil, nil)
		builder.AddFunction(mb.FunctionDefinition{Name: "g"})

		module, err := bytecode.ExtractABI(builder.Build())
		require.NoError(t, err)
		require.Len(t, module.Functions, 1)
		assert.Equal(t, "g", module.Functions[0].Name)
	})

	t.Run("invalid ability set", func(t *testing.T) {

		t.Parallel()

		builder := mb.New(coinAddress, "Coin")
		builder.AddFunction(mb.FunctionDefinition{
			Name:           "f",
			TypeParameters: []uint8{0x10},
		})

		malformedErr := requireMalformed(t, builder.Build())
		assert.Contains(t, malformedErr.Reason, "invalid ability set")
	})

	t.Run("acquires out of range", func(t *testing.T) {

		t.Parallel()

		builder := mb.New(coinAddress, "Coin")
		builder.AddFunction(mb.FunctionDefinition{
			Name:     "f",
			Acquires: []uint16{1},
		})

		malformedErr := requireMalformed(t, builder.Build())
		assert.Contains(t, malformedErr.Reason, "struct definition index 1 out of range")
	})
}
