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

package runtime

import (
	"bytes"
	"context"
	goErrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/movekit/movecall/abi"
	"github.com/movekit/movecall/codec"
	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/errors"
	"github.com/movekit/movecall/payload"
	"github.com/movekit/movecall/reference"
	"github.com/movekit/movecall/source"
	. "github.com/movekit/movecall/test_utils/common_utils"
	mb "github.com/movekit/movecall/test_utils/modulebuilder"
	"github.com/movekit/movecall/typetag"
)

var coinID = common.NewModuleID(common.MustHexToAddress("0x1"), "Coin")

func coinModule() []byte {
	builder := mb.New(coinID.Address, coinID.Name)

	builder.AddFunction(mb.FunctionDefinition{
		Name:       "transfer",
		Visibility: mb.VisibilityPublic,
		Entry:      true,
		Parameters: []mb.Token{
			mb.Address,
			mb.U64,
		},
		Code: []mb.Instruction{mb.Ret},
	})

	builder.AddFunction(mb.FunctionDefinition{
		Name:       "mint",
		Visibility: mb.VisibilityPublic,
		Parameters: []mb.Token{mb.U64},
		Code:       []mb.Instruction{mb.Ret},
	})

	builder.AddFunction(mb.FunctionDefinition{
		Name:           "register",
		Visibility:     mb.VisibilityPrivate,
		Entry:          true,
		TypeParameters: []uint8{uint8(abi.AbilityStore)},
		Parameters: []mb.Token{
			mb.Signer,
			mb.Vector(mb.TypeParameter(0)),
		},
		Code: []mb.Instruction{mb.Ret},
	})

	return builder.Build()
}

func newTestRuntime(t *testing.T, config Config) *Runtime {
	if config.Source == nil {
		moduleSource := source.NewInMemorySource()
		moduleSource.SetModule(coinID, coinModule())
		config.Source = moduleSource
	}

	runtime := NewRuntime(config)
	t.Cleanup(runtime.Close)
	return runtime
}

func transferPayload() []byte {
	moduleAddress := common.MustHexToAddress("0x1")
	argumentAddress := common.MustHexToAddress("0x2")

	var expected []byte

	expected = append(expected, moduleAddress[:]...)
	// module name, function name
	expected = append(expected, 4, 'C', 'o', 'i', 'n')
	expected = append(expected, 8, 't', 'r', 'a', 'n', 's', 'f', 'e', 'r')
	// no type arguments
	expected = append(expected, 0)
	// two arguments
	expected = append(expected, 2)
	expected = append(expected, 32)
	expected = append(expected, argumentAddress[:]...)
	expected = append(expected, 8, 100, 0, 0, 0, 0, 0, 0, 0)

	return expected
}

type failingSource struct {
	err error
}

func (s failingSource) GetModule(_ context.Context, _ common.ModuleID, _ source.Snapshot) ([]byte, error) {
	return nil, s.err
}

type panickingSource struct{}

func (panickingSource) GetModule(_ context.Context, _ common.ModuleID, _ source.Snapshot) ([]byte, error) {
	panic("source failed")
}

func TestRuntimeEncodeSubmission(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t, Config{})

	submission, err := runtime.EncodeSubmission(
		context.Background(),
		SubmissionRequest{
			Descriptor: "0x1::Coin::transfer",
			ModuleName: "Coin",
			Arguments:  []string{"0x2", "100"},
		},
	)
	require.NoError(t, err)

	AssertEqualWithDiff(t, transferPayload(), submission.Payload)
	assert.Equal(t,
		reference.NewFunctionReference(coinID.Address, "Coin", "transfer"),
		submission.Reference,
	)
	assert.Equal(t, "transfer", submission.Function.Name)
	assert.Len(t, submission.Arguments.Arguments, 2)
}

func TestRuntimeEncodeSubmissionTypeArguments(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t, Config{
		OmitSignerParameters: true,
	})

	submission, err := runtime.EncodeSubmission(
		context.Background(),
		SubmissionRequest{
			Descriptor:    "0x1::Coin::register",
			ModuleName:    "Coin",
			FunctionName:  "register",
			TypeArguments: []string{"u8"},
			Arguments:     []string{"0x0102"},
		},
	)
	require.NoError(t, err)

	require.Len(t, submission.Arguments.TypeArguments, 1)
	assert.Equal(t, []byte{1}, submission.Arguments.TypeArguments[0].Bytes)

	require.Len(t, submission.Arguments.Arguments, 1)
	assert.Equal(t, []byte{2, 1, 2}, submission.Arguments.Arguments[0].Bytes)
}

func TestRuntimeEncodeSubmissionErrors(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t, Config{})

	encode := func(t *testing.T, request SubmissionRequest) error {
		_, err := runtime.EncodeSubmission(context.Background(), request)
		RequireError(t, err)
		assert.True(t, errors.IsUserError(err))
		return err
	}

	t.Run("malformed descriptor", func(t *testing.T) {

		t.Parallel()

		err := encode(t, SubmissionRequest{
			Descriptor: "0x1::Coin",
			ModuleName: "Coin",
		})

		var parseErr reference.ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("inconsistent function name", func(t *testing.T) {

		t.Parallel()

		err := encode(t, SubmissionRequest{
			Descriptor:   "0x1::Coin::transfer",
			ModuleName:   "Coin",
			FunctionName: "mint",
		})

		require.ErrorAs(t, err, &reference.InconsistentFunctionNameError{})
	})

	t.Run("module not found", func(t *testing.T) {

		t.Parallel()

		err := encode(t, SubmissionRequest{
			Descriptor: "0x2::Coin::transfer",
			ModuleName: "Coin",
		})

		var notFoundErr source.ModuleNotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t,
			common.NewModuleID(common.MustHexToAddress("0x2"), "Coin"),
			notFoundErr.ID,
		)
	})

	t.Run("function not found", func(t *testing.T) {

		t.Parallel()

		err := encode(t, SubmissionRequest{
			Descriptor: "0x1::Coin::transfr",
			ModuleName: "Coin",
		})

		var notFoundErr abi.FunctionNotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "transfer", notFoundErr.SuggestedFunction)
	})

	t.Run("not an entry function", func(t *testing.T) {

		t.Parallel()

		err := encode(t, SubmissionRequest{
			Descriptor: "0x1::Coin::mint",
			ModuleName: "Coin",
			Arguments:  []string{"1"},
		})

		var notCallableErr payload.NotCallableError
		require.ErrorAs(t, err, &notCallableErr)
		assert.Equal(t, abi.VisibilityPublic, notCallableErr.Visibility)
	})

	t.Run("not an entry function, invalid arguments", func(t *testing.T) {

		t.Parallel()

		err := encode(t, SubmissionRequest{
			Descriptor: "0x1::Coin::mint",
			ModuleName: "Coin",
			Arguments:  []string{"x", "y"},
		})

		require.ErrorAs(t, err, &payload.NotCallableError{})
	})

	t.Run("too few arguments", func(t *testing.T) {

		t.Parallel()

		err := encode(t, SubmissionRequest{
			Descriptor: "0x1::Coin::transfer",
			ModuleName: "Coin",
			Arguments:  []string{"0x2"},
		})

		var arityErr codec.ArityMismatchError
		require.ErrorAs(t, err, &arityErr)
		assert.Equal(t, 2, arityErr.Expected)
		assert.Equal(t, 1, arityErr.Actual)
	})

	t.Run("invalid argument", func(t *testing.T) {

		t.Parallel()

		err := encode(t, SubmissionRequest{
			Descriptor: "0x1::Coin::transfer",
			ModuleName: "Coin",
			Arguments:  []string{"0x2", "-1"},
		})

		var argumentErr codec.InvalidArgumentError
		require.ErrorAs(t, err, &argumentErr)
		assert.Equal(t, 1, argumentErr.Index)
	})

	t.Run("signer parameter", func(t *testing.T) {

		t.Parallel()

		err := encode(t, SubmissionRequest{
			Descriptor:    "0x1::Coin::register",
			ModuleName:    "Coin",
			TypeArguments: []string{"u8"},
			Arguments:     []string{"0x0102"},
		})

		var arityErr codec.ArityMismatchError
		require.ErrorAs(t, err, &arityErr)
		assert.Equal(t, 2, arityErr.Expected)
		assert.Equal(t, 1, arityErr.Actual)
	})

	t.Run("signer literal", func(t *testing.T) {

		t.Parallel()

		err := encode(t, SubmissionRequest{
			Descriptor:    "0x1::Coin::register",
			ModuleName:    "Coin",
			TypeArguments: []string{"u8"},
			Arguments:     []string{"0x1", "0x0102"},
		})

		var argumentErr codec.InvalidArgumentError
		require.ErrorAs(t, err, &argumentErr)
		assert.Equal(t, 0, argumentErr.Index)

		var unsupportedErr codec.UnsupportedTypeError
		require.ErrorAs(t, err, &unsupportedErr)
		assert.Equal(t, typetag.SignerType, unsupportedErr.Type)
	})
}

func TestRuntimeGetModule(t *testing.T) {

	t.Parallel()

	t.Run("found", func(t *testing.T) {

		t.Parallel()

		runtime := newTestRuntime(t, Config{})

		code, err := runtime.GetModule(context.Background(), coinID, source.LatestSnapshot)
		require.NoError(t, err)
		assert.Equal(t, coinModule(), code)
	})

	t.Run("source failure", func(t *testing.T) {

		t.Parallel()

		sourceErr := goErrors.New("connection refused")

		runtime := newTestRuntime(t, Config{
			Source: failingSource{err: sourceErr},
		})

		_, err := runtime.GetModule(context.Background(), coinID, source.LatestSnapshot)
		RequireError(t, err)

		var moduleSourceErr ModuleSourceError
		require.ErrorAs(t, err, &moduleSourceErr)
		assert.Equal(t, coinID, moduleSourceErr.ID)
		assert.ErrorIs(t, err, sourceErr)
	})

	t.Run("cancelled", func(t *testing.T) {

		t.Parallel()

		runtime := newTestRuntime(t, Config{})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := runtime.GetModule(ctx, coinID, source.LatestSnapshot)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("panicking source", func(t *testing.T) {

		t.Parallel()

		runtime := newTestRuntime(t, Config{
			Source: panickingSource{},
		})

		var err error
		require.NotPanics(t, func() {
			_, err = runtime.GetModule(context.Background(), coinID, source.LatestSnapshot)
		})
		require.Error(t, err)

		externalErr, ok := errors.GetExternalError(err)
		require.True(t, ok)
		assert.Equal(t, "source failed", externalErr.Recovered)
	})
}

func TestRuntimeGetModuleABI(t *testing.T) {

	t.Parallel()

	t.Run("ABI", func(t *testing.T) {

		t.Parallel()

		runtime := newTestRuntime(t, Config{})

		module, err := runtime.GetModuleABI(context.Background(), coinID, source.LatestSnapshot)
		require.NoError(t, err)

		assert.Equal(t, coinID, module.ID)
		require.Len(t, module.Functions, 3)

		entryFunctions := module.EntryFunctions()
		require.Len(t, entryFunctions, 2)
		assert.Equal(t, "transfer", entryFunctions[0].Name)
		assert.Equal(t, "register", entryFunctions[1].Name)
	})

	t.Run("JSON", func(t *testing.T) {

		t.Parallel()

		runtime := newTestRuntime(t, Config{})

		encoded, err := runtime.GetModuleABIJSON(context.Background(), coinID, source.LatestSnapshot)
		require.NoError(t, err)

		assert.Contains(t, string(encoded), `"name":"transfer"`)
		assert.Contains(t, string(encoded), `"is_entry":true`)
	})

	t.Run("malformed", func(t *testing.T) {

		t.Parallel()

		moduleSource := source.NewInMemorySource()
		moduleSource.SetModule(coinID, []byte{0xa1, 0x1c, 0xeb})

		runtime := newTestRuntime(t, Config{
			Source: moduleSource,
		})

		_, err := runtime.GetModuleABI(context.Background(), coinID, source.LatestSnapshot)
		RequireError(t, err)
		assert.True(t, errors.IsUserError(err))
	})

	t.Run("mismatch", func(t *testing.T) {

		t.Parallel()

		otherID := common.NewModuleID(coinID.Address, "Other")

		moduleSource := source.NewInMemorySource()
		moduleSource.SetModule(otherID, coinModule())

		runtime := newTestRuntime(t, Config{
			Source: moduleSource,
		})

		_, err := runtime.GetModuleABI(context.Background(), otherID, source.LatestSnapshot)
		RequireError(t, err)

		assert.Equal(t,
			ModuleMismatchError{
				Expected: otherID,
				Actual:   coinID,
			},
			err,
		)
	})
}

type traceRecorder struct {
	mu     sync.Mutex
	traces []string
	cached []bool
}

func (r *traceRecorder) record(operationName string, _ time.Duration, attrs []attribute.KeyValue) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.traces = append(r.traces, operationName)
	for _, attr := range attrs {
		if attr.Key == "cached" {
			r.cached = append(r.cached, attr.Value.AsBool())
		}
	}
}

func TestRuntimeTracing(t *testing.T) {

	t.Parallel()

	t.Run("enabled", func(t *testing.T) {

		t.Parallel()

		recorder := &traceRecorder{}

		runtime := newTestRuntime(t, Config{
			ABICacheCapacity: 10,
			TracingEnabled:   true,
			OnRecordTrace:    recorder.record,
		})

		request := SubmissionRequest{
			Descriptor: "0x1::Coin::transfer",
			ModuleName: "Coin",
			Arguments:  []string{"0x2", "100"},
		}

		for i := 0; i < 2; i++ {
			_, err := runtime.EncodeSubmission(context.Background(), request)
			require.NoError(t, err)
		}

		assert.Equal(t,
			[]string{
				"getModule", "extractABI", "encodeSubmission",
				"getModule", "extractABI", "encodeSubmission",
			},
			recorder.traces,
		)
		assert.Equal(t, []bool{false, true}, recorder.cached)
	})

	t.Run("disabled", func(t *testing.T) {

		t.Parallel()

		recorder := &traceRecorder{}

		runtime := newTestRuntime(t, Config{
			OnRecordTrace: recorder.record,
		})

		_, err := runtime.GetModuleABI(context.Background(), coinID, source.LatestSnapshot)
		require.NoError(t, err)

		assert.Empty(t, recorder.traces)
	})
}

func TestRuntimeLogging(t *testing.T) {

	t.Parallel()

	var output bytes.Buffer

	runtime := newTestRuntime(t, Config{
		Logger: zerolog.New(&output).Level(zerolog.DebugLevel),
	})

	_, err := runtime.EncodeSubmission(
		context.Background(),
		SubmissionRequest{
			Descriptor: "0x1::Coin::transfer",
			ModuleName: "Coin",
			Arguments:  []string{"0x2", "100"},
		},
	)
	require.NoError(t, err)

	_, err = runtime.GetModule(
		context.Background(),
		common.NewModuleID(coinID.Address, "Missing"),
		source.LatestSnapshot,
	)
	require.Error(t, err)

	logs := output.String()
	assert.Contains(t, logs, `"message":"loaded module"`)
	assert.Contains(t, logs, `"message":"encoded submission"`)
	assert.Contains(t, logs, `"level":"warn"`)
	assert.Contains(t, logs, `"module":"0x1::Missing"`)
}

func TestRuntimeConcurrentSubmissions(t *testing.T) {

	t.Parallel()

	runtime := newTestRuntime(t, Config{
		ABICacheCapacity: 1,
	})

	const goroutines = 16

	results := make([][]byte, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()

			submission, err := runtime.EncodeSubmission(
				context.Background(),
				SubmissionRequest{
					Descriptor: "0x1::Coin::transfer",
					ModuleName: "Coin",
					Arguments:  []string{"0x2", "100"},
				},
			)
			errs[i] = err
			if submission != nil {
				results[i] = submission.Payload
			}
		}(i)
	}

	wg.Wait()

	expected := transferPayload()
	for i := 0; i < goroutines; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, expected, results[i])
	}
}
