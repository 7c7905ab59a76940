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
	"unicode/utf8"

	"github.com/movekit/movecall/common"
	"github.com/movekit/movecall/encoding/bcs"
	"github.com/movekit/movecall/typetag"
)

// reader reads the entries of a table.
// All failures are panicked as malformedModuleError,
// with offsets relative to the start of the whole module binary.
type reader struct {
	decoder *bcs.Decoder
	base    int
	what    string
}

func newReader(data []byte, base int, what string) *reader {
	return &reader{
		decoder: bcs.NewDecoder(data),
		base:    base,
		what:    what,
	}
}

func (r *reader) offset() int {
	return r.base + r.decoder.Offset()
}

func (r *reader) done() bool {
	return r.decoder.Remaining() == 0
}

func (r *reader) fail(format string, args ...any) {
	panic(newMalformedModuleError(r.offset(), r.what+": "+format, args...))
}

func (r *reader) check(err error) {
	if err == nil {
		return
	}
	if decodingErr, ok := err.(bcs.DecodingError); ok {
		panic(newMalformedModuleError(
			r.base+decodingErr.Offset,
			"%s: %s",
			r.what,
			decodingErr.Message,
		))
	}
	r.fail("%s", err)
}

func (r *reader) u8() uint8 {
	v, err := r.decoder.DecodeU8()
	r.check(err)
	return v
}

func (r *reader) bool() bool {
	v, err := r.decoder.DecodeBool()
	r.check(err)
	return v
}

func (r *reader) u32() uint32 {
	v, err := r.decoder.DecodeU32()
	r.check(err)
	return v
}

func (r *reader) u64() uint64 {
	v, err := r.decoder.DecodeU64()
	r.check(err)
	return v
}

func (r *reader) skip(n int) {
	_, err := r.decoder.DecodeFixedBytes(n)
	r.check(err)
}

// uleb reads a ULEB128 value which must not exceed max
func (r *reader) uleb(max uint64) uint64 {
	v, err := r.decoder.DecodeULEB128(max)
	r.check(err)
	return v
}

func (r *reader) index() uint16 {
	return uint16(r.uleb(tableIndexMax))
}

func (r *reader) count(max uint64) int {
	return int(r.uleb(max))
}

func (r *reader) abilitySet() uint8 {
	v := r.u8()
	if v&^0xF != 0 {
		r.fail("invalid ability set 0x%x", v)
	}
	return v
}

func (r *reader) identifier() string {
	length := r.count(identifierSizeMax)
	start := r.offset()
	b, err := r.decoder.DecodeFixedBytes(length)
	r.check(err)

	if !utf8.Valid(b) {
		panic(newMalformedModuleError(start, "%s: invalid UTF-8 identifier", r.what))
	}

	identifier := string(b)
	if !typetag.IsValidIdentifier(identifier) && identifier != "<SELF>" {
		panic(newMalformedModuleError(start, "%s: invalid identifier %q", r.what, identifier))
	}

	return identifier
}

func (r *reader) address() common.Address {
	b, err := r.decoder.DecodeFixedBytes(common.AddressLength)
	r.check(err)
	return common.Address(b)
}
