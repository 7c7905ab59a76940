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

// Package runtime ties the components together:
// it loads module bytecode from a module source, extracts and caches module ABIs,
// and encodes submissions of entry function calls.
package runtime

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/movekit/movecall/abi"
	"github.com/movekit/movecall/abicache"
	"github.com/movekit/movecall/codec"
	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/errors"
	"github.com/movekit/movecall/payload"
	"github.com/movekit/movecall/reference"
	"github.com/movekit/movecall/source"
	"github.com/movekit/movecall/target"
)

// SubmissionRequest is a request to encode a call of an entry function.
type SubmissionRequest struct {
	// Descriptor is the fully qualified function, e.g. `0x1::Coin::transfer`
	Descriptor string
	// ModuleName must match the module name of the descriptor
	ModuleName string
	// FunctionName is optional. If set, it must match the function name of the descriptor
	FunctionName  string
	TypeArguments []string
	Arguments     []string
	Snapshot      source.Snapshot
}

// Submission is an encoded entry function call
type Submission struct {
	Reference reference.FunctionReference
	Function  *abi.Function
	Arguments *codec.EncodedArguments
	Payload   []byte
}

// Runtime is safe for concurrent use.
type Runtime struct {
	config  Config
	format  target.Format
	codec   *codec.Codec
	encoder *payload.Encoder
	cache   *abicache.Cache
}

func NewRuntime(config Config) *Runtime {
	if config.Source == nil {
		panic(errors.NewUnexpectedError("runtime requires a module source"))
	}

	format := config.format()

	r := &Runtime{
		config:  config,
		format:  format,
		codec: codec.NewCodec(
			format,
			codec.WithSignerParametersOmitted(config.OmitSignerParameters),
		),
		encoder: payload.NewEncoder(
			format,
			payload.WithSignerParametersOmitted(config.OmitSignerParameters),
		),
	}

	if config.ABICacheCapacity > 0 {
		r.cache = abicache.New(config.ABICacheCapacity)
	}

	return r
}

// Close releases the resources of the runtime, i.e. the ABI cache
func (r *Runtime) Close() {
	if r.cache != nil {
		r.cache.Close()
	}
}

// recoverErrors recovers panics of the components and reports them as errors.
// Components only panic on internal errors, which indicate an implementation error.
func (r *Runtime) recoverErrors(onError func(error)) {
	recovered := recover()
	if recovered == nil {
		return
	}

	var err error
	switch recovered := recovered.(type) {
	case errors.InternalError:
		err = recovered
	case error:
		err = errors.NewUnexpectedErrorFromCause(recovered)
	default:
		err = errors.NewExternalError(recovered)
	}

	r.config.Logger.Error().
		Err(err).
		Msg("recovered from panic")

	onError(err)
}

func (r *Runtime) recordTrace(operationName string, start time.Time, attrs ...attribute.KeyValue) {
	if !r.config.TracingEnabled || r.config.OnRecordTrace == nil {
		return
	}
	r.config.OnRecordTrace(operationName, time.Since(start), attrs)
}

// GetModule returns the bytecode of the given module.
// If the module does not exist, a source.ModuleNotFoundError is returned.
func (r *Runtime) GetModule(
	ctx context.Context,
	id common.ModuleID,
	snapshot source.Snapshot,
) (
	code []byte,
	err error,
) {
	defer r.recoverErrors(func(internalErr error) {
		err = internalErr
	})

	return r.getModule(ctx, id, snapshot)
}

func (r *Runtime) getModule(
	ctx context.Context,
	id common.ModuleID,
	snapshot source.Snapshot,
) ([]byte, error) {
	start := time.Now()

	code, err := r.config.Source.GetModule(ctx, id, snapshot)
	if err != nil {
		r.config.Logger.Warn().
			Err(err).
			Str("module", id.String()).
			Str("snapshot", string(snapshot)).
			Msg("failed to load module")

		if !errors.IsUserError(err) {
			err = ModuleSourceError{
				ID:  id,
				Err: err,
			}
		}
		return nil, err
	}

	r.config.Logger.Debug().
		Str("module", id.String()).
		Int("size", len(code)).
		Msg("loaded module")

	r.recordTrace(
		"getModule",
		start,
		attribute.String("module", id.String()),
		attribute.Int("size", len(code)),
	)

	return code, nil
}

// GetModuleABI loads the given module and returns its ABI.
func (r *Runtime) GetModuleABI(
	ctx context.Context,
	id common.ModuleID,
	snapshot source.Snapshot,
) (
	module *abi.Module,
	err error,
) {
	defer r.recoverErrors(func(internalErr error) {
		err = internalErr
	})

	return r.getModuleABI(ctx, id, snapshot)
}

func (r *Runtime) getModuleABI(
	ctx context.Context,
	id common.ModuleID,
	snapshot source.Snapshot,
) (*abi.Module, error) {
	code, err := r.getModule(ctx, id, snapshot)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	var module *abi.Module
	var cached bool
	if r.cache != nil {
		module, cached, err = r.cache.GetOrExtract(id, code, r.format.ExtractABI)
	} else {
		module, err = r.format.ExtractABI(code)
	}
	if err != nil {
		r.config.Logger.Warn().
			Err(err).
			Str("module", id.String()).
			Msg("failed to extract module ABI")
		return nil, err
	}

	if module.ID != id {
		return nil, ModuleMismatchError{
			Expected: id,
			Actual:   module.ID,
		}
	}

	r.config.Logger.Debug().
		Str("module", id.String()).
		Bool("cached", cached).
		Int("functions", len(module.Functions)).
		Int("structs", len(module.Structs)).
		Msg("extracted module ABI")

	r.recordTrace(
		"extractABI",
		start,
		attribute.String("module", id.String()),
		attribute.Bool("cached", cached),
	)

	return module, nil
}

// GetModuleABIJSON loads the given module and returns its ABI encoded as JSON.
func (r *Runtime) GetModuleABIJSON(
	ctx context.Context,
	id common.ModuleID,
	snapshot source.Snapshot,
) (
	encoded []byte,
	err error,
) {
	defer r.recoverErrors(func(internalErr error) {
		err = internalErr
	})

	module, err := r.getModuleABI(ctx, id, snapshot)
	if err != nil {
		return nil, err
	}

	return abi.EncodeJSON(module)
}

// EncodeSubmission encodes a call of the entry function referenced by the request.
//
// The descriptor is parsed, the ABI of the referenced module is loaded,
// and the argument literals are encoded against the function's parameters.
// Non-entry functions are rejected before any argument is parsed.
func (r *Runtime) EncodeSubmission(
	ctx context.Context,
	request SubmissionRequest,
) (
	submission *Submission,
	err error,
) {
	defer r.recoverErrors(func(internalErr error) {
		err = internalErr
	})

	ref, err := reference.ParseWithFunction(
		request.Descriptor,
		request.ModuleName,
		request.FunctionName,
	)
	if err != nil {
		return nil, err
	}

	module, err := r.getModuleABI(ctx, ref.ModuleID(), request.Snapshot)
	if err != nil {
		return nil, err
	}

	function, err := module.Function(ref.FunctionName)
	if err != nil {
		return nil, err
	}

	if !function.IsEntry {
		return nil, payload.NotCallableError{
			Function:   ref,
			Visibility: function.Visibility,
		}
	}

	start := time.Now()

	arguments, err := r.codec.EncodeArguments(
		function,
		request.Arguments,
		request.TypeArguments,
	)
	if err != nil {
		return nil, err
	}

	encoded, err := r.encoder.Encode(
		ref,
		function,
		arguments.TypeArgumentBytes(),
		arguments.ArgumentBytes(),
	)
	if err != nil {
		return nil, err
	}

	r.config.Logger.Debug().
		Str("function", ref.String()).
		Int("arguments", len(arguments.Arguments)).
		Int("typeArguments", len(arguments.TypeArguments)).
		Int("size", len(encoded)).
		Msg("encoded submission")

	r.recordTrace(
		"encodeSubmission",
		start,
		attribute.String("function", ref.String()),
		attribute.Int("size", len(encoded)),
	)

	return &Submission{
		Reference: ref,
		Function:  function,
		Arguments: arguments,
		Payload:   encoded,
	}, nil
}
