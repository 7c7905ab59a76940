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
	"fmt"
	"strings"
)

// ModuleID identifies a deployed module: the publishing account and the module name.
type ModuleID struct {
	Address Address
	Name    string
}

func NewModuleID(address Address, name string) ModuleID {
	return ModuleID{
		Address: address,
		Name:    name,
	}
}

func (id ModuleID) String() string {
	return fmt.Sprintf("%s::%s", id.Address.ShortHexWithPrefix(), id.Name)
}

// ParseModuleID parses a module ID of the form `<address>::<name>`
func ParseModuleID(s string) (ModuleID, error) {
	parts := strings.Split(s, "::")
	if len(parts) != 2 || parts[1] == "" {
		return ModuleID{}, fmt.Errorf("invalid module ID %q: expected <address>::<name>", s)
	}

	address, err := HexToAddress(parts[0])
	if err != nil {
		return ModuleID{}, fmt.Errorf("invalid module ID %q: %w", s, err)
	}

	return NewModuleID(address, parts[1]), nil
}
