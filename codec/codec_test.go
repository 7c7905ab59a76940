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

package codec_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movekit/movecall/abi"
	"github.com/movekit/movecall/codec"
	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/target/move"
	. "github.com/movekit/movecall/test_utils/common_utils"
	"github.com/movekit/movecall/typetag"
)

func transferFunction() *abi.Function {
	return &abi.Function{
		Name:       "transfer",
		Visibility: abi.VisibilityPublic,
		IsEntry:    true,
		Parameters: []typetag.TypeTag{
			typetag.AddressType,
			typetag.U64Type,
		},
	}
}

func signerTransferFunction() *abi.Function {
	function := transferFunction()
	function.Parameters = append(
		[]typetag.TypeTag{
			&typetag.ReferenceType{Referenced: typetag.SignerType},
		},
		function.Parameters...,
	)
	return function
}

func TestCodec_EncodeArguments(t *testing.T) {

	t.Parallel()

	c := codec.NewCodec(move.NewFormat())

	encoded, err := c.EncodeArguments(transferFunction(), []string{"0x2", "100"}, nil)
	require.NoError(t, err)

	recipient := common.MustHexToAddress("0x2")

	AssertEqualWithDiff(t,
		&codec.EncodedArguments{
			TypeArguments: []codec.EncodedArgument{},
			Arguments: []codec.EncodedArgument{
				{
					Type:  typetag.AddressType,
					Bytes: recipient[:],
				},
				{
					Type:  typetag.U64Type,
					Bytes: []byte{100, 0, 0, 0, 0, 0, 0, 0},
				},
			},
		},
		encoded,
	)

	assert.Equal(t, [][]byte{}, encoded.TypeArgumentBytes())
	assert.Equal(t,
		[][]byte{
			recipient[:],
			{100, 0, 0, 0, 0, 0, 0, 0},
		},
		encoded.ArgumentBytes(),
	)
}

func TestCodec_EncodeArguments_AddressForms(t *testing.T) {

	t.Parallel()

	c := codec.NewCodec(move.NewFormat())

	short, err := c.EncodeArguments(
		transferFunction(),
		[]string{"0x1", "1"},
		nil,
	)
	require.NoError(t, err)

	padded, err := c.EncodeArguments(
		transferFunction(),
		[]string{"0x0000000000000000000000000000000000000000000000000000000000000001", "1"},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, short.ArgumentBytes(), padded.ArgumentBytes())
}

func TestCodec_EncodeArguments_ArityMismatch(t *testing.T) {

	t.Parallel()

	c := codec.NewCodec(move.NewFormat())

	t.Run("too few", func(t *testing.T) {

		t.Parallel()

		encoded, err := c.EncodeArguments(transferFunction(), []string{"0x2"}, nil)
		RequireError(t, err)
		assert.Nil(t, encoded)

		assert.Equal(t,
			codec.ArityMismatchError{
				Function: "transfer",
				Expected: 2,
				Actual:   1,
			},
			err,
		)
	})

	t.Run("checked before coercion", func(t *testing.T) {

		t.Parallel()

		_, err := c.EncodeArguments(transferFunction(), []string{"not an address"}, nil)
		require.IsType(t, codec.ArityMismatchError{}, err)
	})

	t.Run("signer is a parameter", func(t *testing.T) {

		t.Parallel()

		encoded, err := c.EncodeArguments(signerTransferFunction(), []string{"0x2", "100"}, nil)
		RequireError(t, err)
		assert.Nil(t, encoded)

		assert.Equal(t,
			codec.ArityMismatchError{
				Function: "transfer",
				Expected: 3,
				Actual:   2,
			},
			err,
		)
	})

	t.Run("signer omitted", func(t *testing.T) {

		t.Parallel()

		omitting := codec.NewCodec(
			move.NewFormat(),
			codec.WithSignerParametersOmitted(true),
		)

		_, err := omitting.EncodeArguments(signerTransferFunction(), []string{"0x1", "0x2", "100"}, nil)
		assert.Equal(t,
			codec.ArityMismatchError{
				Function: "transfer",
				Expected: 2,
				Actual:   3,
			},
			err,
		)
	})

	t.Run("generic", func(t *testing.T) {

		t.Parallel()

		function := &abi.Function{
			Name: "mint",
			TypeParameters: []abi.AbilitySet{
				abi.NewAbilitySet(abi.AbilityStore),
			},
			Parameters: []typetag.TypeTag{typetag.U64Type},
		}

		encoded, err := c.EncodeArguments(function, []string{"1"}, nil)
		RequireError(t, err)
		assert.Nil(t, encoded)

		assert.Equal(t,
			codec.GenericArityMismatchError{
				Function: "mint",
				Expected: 1,
				Actual:   0,
			},
			err,
		)

		_, err = c.EncodeArguments(function, []string{"1"}, []string{"u8", "u8"})
		require.IsType(t, codec.GenericArityMismatchError{}, err)
	})
}

func TestCodec_EncodeArguments_ArityProperty(t *testing.T) {

	t.Parallel()

	c := codec.NewCodec(move.NewFormat())

	properties := gopter.NewProperties(nil)

	properties.Property("one argument more or less fails", prop.ForAll(
		func(parameterCount int, more bool, leadingSigner bool) bool {
			parameters := make([]typetag.TypeTag, parameterCount)
			for i := range parameters {
				parameters[i] = typetag.U64Type
			}
			if leadingSigner {
				parameters[0] = typetag.SignerType
			}

			function := &abi.Function{
				Name:       "f",
				IsEntry:    true,
				Parameters: parameters,
			}

			argumentCount := parameterCount - 1
			if more {
				argumentCount = parameterCount + 1
			}

			arguments := make([]string, argumentCount)
			for i := range arguments {
				arguments[i] = "1"
			}

			encoded, err := c.EncodeArguments(function, arguments, nil)

			_, ok := err.(codec.ArityMismatchError)
			return ok && encoded == nil
		},
		gen.IntRange(1, 32),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestCodec_EncodeArguments_SignerParameter(t *testing.T) {

	t.Parallel()

	function := &abi.Function{
		Name:    "deposit",
		IsEntry: true,
		Parameters: []typetag.TypeTag{
			typetag.SignerType,
			typetag.U64Type,
		},
	}

	t.Run("one literal", func(t *testing.T) {

		t.Parallel()

		c := codec.NewCodec(move.NewFormat())

		encoded, err := c.EncodeArguments(function, []string{"1"}, nil)
		RequireError(t, err)
		assert.Nil(t, encoded)

		assert.Equal(t,
			codec.ArityMismatchError{
				Function: "deposit",
				Expected: 2,
				Actual:   1,
			},
			err,
		)
	})

	t.Run("literal for signer", func(t *testing.T) {

		t.Parallel()

		c := codec.NewCodec(move.NewFormat())

		encoded, err := c.EncodeArguments(function, []string{"0x1", "1"}, nil)
		RequireError(t, err)
		assert.Nil(t, encoded)

		assert.Equal(t,
			codec.InvalidArgumentError{
				Index: 0,
				Type:  typetag.SignerType,
				Err: codec.UnsupportedTypeError{
					Type: typetag.SignerType,
				},
			},
			err,
		)
	})

	t.Run("omitted", func(t *testing.T) {

		t.Parallel()

		c := codec.NewCodec(
			move.NewFormat(),
			codec.WithSignerParametersOmitted(true),
		)

		assert.Equal(t,
			[]typetag.TypeTag{typetag.U64Type},
			c.Parameters(function),
		)

		encoded, err := c.EncodeArguments(function, []string{"1"}, nil)
		require.NoError(t, err)

		assert.Equal(t,
			[][]byte{{1, 0, 0, 0, 0, 0, 0, 0}},
			encoded.ArgumentBytes(),
		)
	})
}

func TestCodec_EncodeArguments_Generic(t *testing.T) {

	t.Parallel()

	c := codec.NewCodec(move.NewFormat())

	function := &abi.Function{
		Name:    "store",
		IsEntry: true,
		TypeParameters: []abi.AbilitySet{
			abi.EmptyAbilitySet,
		},
		Parameters: []typetag.TypeTag{
			typetag.NewVectorType(typetag.TypeParameterType{Index: 0}),
		},
	}

	encoded, err := c.EncodeArguments(function, []string{"0x0102"}, []string{"u8"})
	require.NoError(t, err)

	assert.Equal(t, [][]byte{{1}}, encoded.TypeArgumentBytes())
	assert.Equal(t, [][]byte{{2, 1, 2}}, encoded.ArgumentBytes())
	assert.Equal(t,
		typetag.NewVectorType(typetag.U8Type),
		encoded.Arguments[0].Type,
	)

	encoded, err = c.EncodeArguments(function, []string{"[true]"}, []string{"bool"})
	require.NoError(t, err)

	assert.Equal(t, [][]byte{{0}}, encoded.TypeArgumentBytes())
	assert.Equal(t, [][]byte{{1, 1}}, encoded.ArgumentBytes())
}

func TestCodec_EncodeArguments_StructTypeArgument(t *testing.T) {

	t.Parallel()

	c := codec.NewCodec(move.NewFormat())

	function := &abi.Function{
		Name:    "register",
		IsEntry: true,
		TypeParameters: []abi.AbilitySet{
			abi.EmptyAbilitySet,
		},
	}

	encoded, err := c.EncodeArguments(function, nil, []string{"0x1::Coin::Coin<u64>"})
	require.NoError(t, err)

	require.Len(t, encoded.TypeArguments, 1)
	assert.Equal(t, "0x1::Coin::Coin<u64>", encoded.TypeArguments[0].Type.String())

	coinAddress := common.MustHexToAddress("0x1")

	var expected []byte
	expected = append(expected, 7)
	expected = append(expected, coinAddress[:]...)
	expected = append(expected, 4, 'C', 'o', 'i', 'n')
	expected = append(expected, 4, 'C', 'o', 'i', 'n')
	expected = append(expected, 1, 2)

	assert.Equal(t, expected, encoded.TypeArguments[0].Bytes)
}

func TestCodec_EncodeArguments_Invalid(t *testing.T) {

	t.Parallel()

	c := codec.NewCodec(move.NewFormat())

	t.Run("argument", func(t *testing.T) {

		t.Parallel()

		encoded, err := c.EncodeArguments(transferFunction(), []string{"0x2", "abc"}, nil)
		RequireError(t, err)
		assert.Nil(t, encoded)

		var argumentErr codec.InvalidArgumentError
		require.ErrorAs(t, err, &argumentErr)
		assert.Equal(t, 1, argumentErr.Index)
		assert.Equal(t, typetag.U64Type, argumentErr.Type)

		var numberErr codec.InvalidNumberError
		require.ErrorAs(t, err, &numberErr)
		assert.Equal(t, "abc", numberErr.Literal)
	})

	t.Run("address", func(t *testing.T) {

		t.Parallel()

		_, err := c.EncodeArguments(transferFunction(), []string{"0xzz", "1"}, nil)
		RequireError(t, err)

		var addressErr codec.InvalidAddressError
		require.ErrorAs(t, err, &addressErr)
	})

	t.Run("type argument", func(t *testing.T) {

		t.Parallel()

		function := &abi.Function{
			Name: "f",
			TypeParameters: []abi.AbilitySet{
				abi.EmptyAbilitySet,
				abi.EmptyAbilitySet,
			},
		}

		encoded, err := c.EncodeArguments(function, nil, []string{"u8", "vector<"})
		RequireError(t, err)
		assert.Nil(t, encoded)

		var typeArgumentErr codec.InvalidTypeArgumentError
		require.ErrorAs(t, err, &typeArgumentErr)
		assert.Equal(t, 1, typeArgumentErr.Index)
		assert.Equal(t, "vector<", typeArgumentErr.Literal)

		var syntaxErr typetag.SyntaxError
		require.ErrorAs(t, err, &syntaxErr)
	})

	t.Run("unsupported parameter", func(t *testing.T) {

		t.Parallel()

		function := &abi.Function{
			Name: "f",
			Parameters: []typetag.TypeTag{
				&typetag.StructType{
					Address: common.MustHexToAddress("0x1"),
					Module:  "Coin",
					Name:    "Coin",
				},
			},
		}

		_, err := c.EncodeArguments(function, []string{"1"}, nil)
		RequireError(t, err)

		var unsupportedErr codec.UnsupportedTypeError
		require.ErrorAs(t, err, &unsupportedErr)
	})
}
