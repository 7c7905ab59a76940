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

// Package reference parses function descriptors of the form `<address>::<module>::<function>`.
package reference

import (
	"fmt"
	"strings"

	"github.com/movekit/movecall/common"
)

const separator = "::"

// FunctionReference identifies a function of a deployed module
type FunctionReference struct {
	ModuleAddress common.Address
	ModuleName    string
	FunctionName  string
}

func NewFunctionReference(address common.Address, moduleName, functionName string) FunctionReference {
	return FunctionReference{
		ModuleAddress: address,
		ModuleName:    moduleName,
		FunctionName:  functionName,
	}
}

// ModuleID returns the ID of the module declaring the function
func (r FunctionReference) ModuleID() common.ModuleID {
	return common.NewModuleID(r.ModuleAddress, r.ModuleName)
}

func (r FunctionReference) String() string {
	return fmt.Sprintf(
		"%s%s%s%s%s",
		r.ModuleAddress.ShortHexWithPrefix(),
		separator,
		r.ModuleName,
		separator,
		r.FunctionName,
	)
}

// Parse parses the given descriptor.
//
// The module name is passed separately by callers,
// and must be consistent with the module name component of the descriptor.
// The descriptor is the source of truth, the module name is only checked.
func Parse(descriptor string, moduleName string) (FunctionReference, error) {
	parts := strings.Split(descriptor, separator)
	if len(parts) != 3 {
		return FunctionReference{}, MalformedDescriptorError{
			Descriptor: descriptor,
			Reason:     fmt.Sprintf("expected 3 components, got %d", len(parts)),
		}
	}

	for i, part := range parts {
		if part == "" {
			return FunctionReference{}, MalformedDescriptorError{
				Descriptor: descriptor,
				Reason:     fmt.Sprintf("component %d is empty", i+1),
			}
		}
	}

	address, err := common.HexToAddress(parts[0])
	if err != nil {
		return FunctionReference{}, InvalidAddressError{
			Descriptor: descriptor,
			Address:    parts[0],
			Err:        err,
		}
	}

	if moduleName != parts[1] {
		return FunctionReference{}, InconsistentModuleNameError{
			Descriptor:       descriptor,
			DescriptorModule: parts[1],
			ModuleName:       moduleName,
		}
	}

	return NewFunctionReference(address, parts[1], parts[2]), nil
}

// ParseWithFunction is like Parse,
// but also checks the descriptor against a separately passed function name.
// An empty function name is not checked.
func ParseWithFunction(descriptor string, moduleName string, functionName string) (FunctionReference, error) {
	reference, err := Parse(descriptor, moduleName)
	if err != nil {
		return FunctionReference{}, err
	}

	if functionName != "" && functionName != reference.FunctionName {
		return FunctionReference{}, InconsistentFunctionNameError{
			Descriptor:         descriptor,
			DescriptorFunction: reference.FunctionName,
			FunctionName:       functionName,
		}
	}

	return reference, nil
}
