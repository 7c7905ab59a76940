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
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/movekit/movecall/source"
	"github.com/movekit/movecall/target"
	"github.com/movekit/movecall/target/move"
)

// OnRecordTraceFunc receives the timing of a runtime operation
// when tracing is enabled
type OnRecordTraceFunc func(
	operationName string,
	duration time.Duration,
	attrs []attribute.KeyValue,
)

// Config is the configuration of a Runtime
type Config struct {
	// Format is the virtual machine format. Defaults to Move
	Format target.Format
	// Source provides the bytecode of deployed modules
	Source source.ModuleSource
	// ABICacheCapacity is the number of extracted module ABIs kept in memory.
	// Zero disables the cache
	ABICacheCapacity int
	// OmitSignerParameters excludes leading signer parameters from the arguments of a call,
	// for hosts which supply them from the transaction sender
	OmitSignerParameters bool
	// TracingEnabled enables reporting of operation timings to OnRecordTrace
	TracingEnabled bool
	OnRecordTrace  OnRecordTraceFunc
	// Logger is used for debug and warning output. The zero value discards all output
	Logger zerolog.Logger
}

func (c Config) format() target.Format {
	if c.Format == nil {
		return move.NewFormat()
	}
	return c.Format
}
