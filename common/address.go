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

package common

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const AddressLength = 32

// Address is an account address.
// Short forms are left-padded with zeros, so 0x1 and its 64-digit form are the same address.
type Address [AddressLength]byte

var ZeroAddress = Address{}

// AddressOverflowError is returned when bytes or a hex string
// do not fit into an address.
type AddressOverflowError struct {
	Length int
}

func (e AddressOverflowError) Error() string {
	return fmt.Sprintf(
		"address too large: %d bytes, at most %d allowed",
		e.Length,
		AddressLength,
	)
}

// InvalidAddressHexError is returned when a string is not a valid hex address.
type InvalidAddressHexError struct {
	Hex string
}

func (e InvalidAddressHexError) Error() string {
	return fmt.Sprintf("invalid hex address: %q", e.Hex)
}

// BytesToAddress returns an address from the given bytes.
// Shorter inputs are left-padded with zeros.
func BytesToAddress(b []byte) (Address, error) {
	if len(b) > AddressLength {
		return Address{}, AddressOverflowError{Length: len(b)}
	}

	var address Address
	copy(address[AddressLength-len(b):], b)
	return address, nil
}

func MustBytesToAddress(b []byte) Address {
	address, err := BytesToAddress(b)
	if err != nil {
		panic(err)
	}
	return address
}

// HexToAddress parses an address from a hex string.
// The 0x prefix is optional and digits are case-insensitive.
// Between one and 64 digits are accepted; odd-length forms are allowed.
func HexToAddress(h string) (Address, error) {
	digits := h
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}

	if len(digits) == 0 {
		return Address{}, InvalidAddressHexError{Hex: h}
	}

	if len(digits) > AddressLength*2 {
		return Address{}, AddressOverflowError{Length: (len(digits) + 1) / 2}
	}

	if len(digits)%2 == 1 {
		digits = "0" + digits
	}

	b, err := hex.DecodeString(digits)
	if err != nil {
		return Address{}, InvalidAddressHexError{Hex: h}
	}

	return BytesToAddress(b)
}

func MustHexToAddress(h string) Address {
	address, err := HexToAddress(h)
	if err != nil {
		panic(err)
	}
	return address
}

// Bytes returns the address bytes without leading zeros
func (a Address) Bytes() []byte {
	i := 0
	for i < AddressLength && a[i] == 0 {
		i++
	}
	return a[i:]
}

// Hex returns the full-length hex representation, without prefix
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// HexWithPrefix returns the full-length hex representation, with 0x prefix
func (a Address) HexWithPrefix() string {
	return "0x" + a.Hex()
}

// ShortHexWithPrefix returns the hex representation without leading zeros, with 0x prefix
func (a Address) ShortHexWithPrefix() string {
	hexString := strings.TrimLeft(a.Hex(), "0")
	if hexString == "" {
		hexString = "0"
	}
	return "0x" + hexString
}

func (a Address) String() string {
	return a.ShortHexWithPrefix()
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.ShortHexWithPrefix()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	address, err := HexToAddress(string(text))
	if err != nil {
		return err
	}
	*a = address
	return nil
}
