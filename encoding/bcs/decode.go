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

package bcs

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/holiman/uint256"
)

// DecodingError is returned when the input is truncated or not canonical.
type DecodingError struct {
	Offset  int
	Message string
}

func (e DecodingError) Error() string {
	return fmt.Sprintf("bcs: %s at offset %d", e.Message, e.Offset)
}

// A Decoder reads BCS-encoded values from a byte slice.
// It keeps track of its offset, so errors can point at the offending byte.
type Decoder struct {
	data   []byte
	offset int
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		data: data,
	}
}

func (d *Decoder) Offset() int {
	return d.offset
}

func (d *Decoder) Remaining() int {
	return len(d.data) - d.offset
}

func (d *Decoder) errorf(format string, args ...any) DecodingError {
	return DecodingError{
		Offset:  d.offset,
		Message: fmt.Sprintf(format, args...),
	}
}

// DecodeFixedBytes reads exactly n bytes
func (d *Decoder) DecodeFixedBytes(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, d.errorf("unexpected end of input: need %d bytes, have %d", n, d.Remaining())
	}
	b := d.data[d.offset : d.offset+n]
	d.offset += n
	return b, nil
}

func (d *Decoder) DecodeBool() (bool, error) {
	b, err := d.DecodeU8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		d.offset--
		return false, d.errorf("invalid boolean value: %d", b)
	}
}

func (d *Decoder) DecodeU8() (uint8, error) {
	b, err := d.DecodeFixedBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) DecodeU16() (uint16, error) {
	b, err := d.DecodeFixedBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) DecodeU32() (uint32, error) {
	b, err := d.DecodeFixedBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) DecodeU64() (uint64, error) {
	b, err := d.DecodeFixedBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) DecodeU128() (*uint256.Int, error) {
	return d.decodeLimbs(2)
}

func (d *Decoder) DecodeU256() (*uint256.Int, error) {
	return d.decodeLimbs(4)
}

func (d *Decoder) decodeLimbs(count int) (*uint256.Int, error) {
	v := new(uint256.Int)
	for i := 0; i < count; i++ {
		limb, err := d.DecodeU64()
		if err != nil {
			return nil, err
		}
		v[i] = limb
	}
	return v, nil
}

// DecodeULEB128 reads an unsigned LEB128 varint that must fit into max.
// Non-canonical encodings (redundant trailing zero groups) are rejected.
func (d *Decoder) DecodeULEB128(max uint64) (uint64, error) {
	start := d.offset

	var value uint64
	var shift uint

	for {
		if d.offset >= len(d.data) {
			d.offset = start
			return 0, d.errorf("unexpected end of input in ULEB128")
		}

		b := d.data[d.offset]
		d.offset++

		digit := uint64(b & 0x7f)

		if shift >= 64 || (shift == 63 && digit > 1) {
			d.offset = start
			return 0, d.errorf("ULEB128 overflows 64 bits")
		}

		value |= digit << shift

		if b&0x80 == 0 {
			if shift > 0 && digit == 0 {
				d.offset = start
				return 0, d.errorf("non-canonical ULEB128")
			}
			break
		}

		shift += 7
	}

	if value > max {
		d.offset = start
		return 0, d.errorf("ULEB128 value %d exceeds maximum %d", value, max)
	}

	return value, nil
}

// DecodeLength reads a sequence length
func (d *Decoder) DecodeLength() (int, error) {
	length, err := d.DecodeULEB128(MaxSequenceLength)
	if err != nil {
		return 0, err
	}
	return int(length), nil
}

// DecodeBytes reads a length-prefixed byte string
func (d *Decoder) DecodeBytes() ([]byte, error) {
	length, err := d.DecodeLength()
	if err != nil {
		return nil, err
	}
	return d.DecodeFixedBytes(length)
}

// DecodeString reads a length-prefixed UTF-8 string
func (d *Decoder) DecodeString() (string, error) {
	b, err := d.DecodeBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeU16ULEB128 reads a ULEB128 varint that must fit into 16 bits
func (d *Decoder) DecodeU16ULEB128() (uint16, error) {
	v, err := d.DecodeULEB128(math.MaxUint16)
	return uint16(v), err
}

// DecodeU32ULEB128 reads a ULEB128 varint that must fit into 32 bits
func (d *Decoder) DecodeU32ULEB128() (uint32, error) {
	v, err := d.DecodeULEB128(math.MaxUint32)
	return uint32(v), err
}
