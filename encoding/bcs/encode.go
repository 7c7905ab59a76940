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

// Package bcs implements the Binary Canonical Serialization primitives
// used by Move: fixed-width little-endian integers, ULEB128 lengths,
// and length-prefixed sequences.
package bcs

import (
	"bytes"
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/movekit/movecall/errors"
)

// MaxSequenceLength is the largest length a BCS sequence may declare.
const MaxSequenceLength = 1<<31 - 1

// An Encoder appends BCS-encoded values to an in-memory buffer.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the bytes encoded so far
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

func (e *Encoder) Len() int {
	return e.buf.Len()
}

func (e *Encoder) EncodeBool(b bool) {
	if b {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

func (e *Encoder) EncodeU8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *Encoder) EncodeU16(v uint16) {
	e.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
}

func (e *Encoder) EncodeU32(v uint32) {
	e.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}

func (e *Encoder) EncodeU64(v uint64) {
	e.buf.Write(binary.LittleEndian.AppendUint64(nil, v))
}

// EncodeU128 writes the low 128 bits of v, little-endian
func (e *Encoder) EncodeU128(v *uint256.Int) {
	e.encodeLimbs(v, 2)
}

// EncodeU256 writes all 256 bits of v, little-endian
func (e *Encoder) EncodeU256(v *uint256.Int) {
	e.encodeLimbs(v, 4)
}

func (e *Encoder) encodeLimbs(v *uint256.Int, count int) {
	// uint256.Int stores its limbs least significant first
	for i := 0; i < count; i++ {
		e.EncodeU64(v[i])
	}
}

// EncodeULEB128 writes v as an unsigned LEB128 varint
func (e *Encoder) EncodeULEB128(v uint64) {
	e.buf.Write(AppendULEB128(nil, v))
}

// EncodeLength writes a sequence length.
// Lengths beyond MaxSequenceLength cannot be represented and indicate a programming error.
func (e *Encoder) EncodeLength(length int) {
	if length < 0 || length > MaxSequenceLength {
		panic(errors.NewUnexpectedError("invalid BCS sequence length: %d", length))
	}
	e.EncodeULEB128(uint64(length))
}

// EncodeFixedBytes writes b without a length prefix
func (e *Encoder) EncodeFixedBytes(b []byte) {
	e.buf.Write(b)
}

// EncodeBytes writes b with a ULEB128 length prefix
func (e *Encoder) EncodeBytes(b []byte) {
	e.EncodeLength(len(b))
	e.buf.Write(b)
}

// EncodeString writes the UTF-8 bytes of s with a ULEB128 length prefix
func (e *Encoder) EncodeString(s string) {
	e.EncodeLength(len(s))
	e.buf.WriteString(s)
}

// AppendULEB128 appends the unsigned LEB128 encoding of v to b
func AppendULEB128(b []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if c&0x80 == 0 {
			return b
		}
	}
}
