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

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/errors"
)

var coinID = common.NewModuleID(common.MustHexToAddress("0x1"), "Coin")

func TestInMemorySource(t *testing.T) {

	t.Parallel()

	source := NewInMemorySource()
	source.SetModule(coinID, []byte{1, 2, 3})

	code, err := source.GetModule(context.Background(), coinID, LatestSnapshot)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, code)

	otherID := common.NewModuleID(common.MustHexToAddress("0x2"), "Coin")

	_, err = source.GetModule(context.Background(), otherID, "0xabc")
	require.Error(t, err)
	assert.Equal(t,
		ModuleNotFoundError{
			ID:       otherID,
			Snapshot: "0xabc",
		},
		err,
	)
	assert.Equal(t, "module 0x2::Coin not found at 0xabc", err.Error())
	assert.True(t, errors.IsUserError(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = source.GetModule(ctx, coinID, LatestSnapshot)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDirectorySource(t *testing.T) {

	t.Parallel()

	root := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "Coin.mv"), []byte{1}, 0o600))

	require.NoError(t, os.Mkdir(filepath.Join(root, "0x2"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(root, "0x2", "Coin.mv"), []byte{2}, 0o600))

	source := NewDirectorySource(root)

	t.Run("flat layout", func(t *testing.T) {

		t.Parallel()

		code, err := source.GetModule(context.Background(), coinID, LatestSnapshot)
		require.NoError(t, err)
		assert.Equal(t, []byte{1}, code)
	})

	t.Run("address layout", func(t *testing.T) {

		t.Parallel()

		id := common.NewModuleID(common.MustHexToAddress("0x2"), "Coin")

		code, err := source.GetModule(context.Background(), id, LatestSnapshot)
		require.NoError(t, err)
		assert.Equal(t, []byte{2}, code)
	})

	t.Run("not found", func(t *testing.T) {

		t.Parallel()

		id := common.NewModuleID(common.MustHexToAddress("0x1"), "Token")

		_, err := source.GetModule(context.Background(), id, LatestSnapshot)
		require.Error(t, err)
		assert.IsType(t, ModuleNotFoundError{}, err)
		assert.Equal(t, "module 0x1::Token not found", err.Error())
	})

	t.Run("invalid name", func(t *testing.T) {

		t.Parallel()

		id := common.NewModuleID(common.MustHexToAddress("0x2"), "../Coin")

		_, err := source.GetModule(context.Background(), id, LatestSnapshot)
		require.Error(t, err)
		assert.IsType(t, ModuleNotFoundError{}, err)
	})
}
