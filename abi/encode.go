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

package abi

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"

	"github.com/movekit/movecall/typetag"
)

// The serialized form of a module ABI.
// Types are rendered in Move source syntax, e.g. `vector<u8>` or `&signer`.

type jsonModule struct {
	Address   string         `json:"address"`
	Name      string         `json:"name"`
	Friends   []string       `json:"friends"`
	Functions []jsonFunction `json:"exposed_functions"`
	Structs   []jsonStruct   `json:"structs"`
}

type jsonFunction struct {
	Name              string                 `json:"name"`
	Visibility        string                 `json:"visibility"`
	IsEntry           bool                   `json:"is_entry"`
	IsNative          bool                   `json:"is_native"`
	GenericTypeParams []jsonGenericTypeParam `json:"generic_type_params"`
	Params            []string               `json:"params"`
	Return            []string               `json:"return"`
}

type jsonGenericTypeParam struct {
	Constraints []string `json:"constraints"`
	IsPhantom   bool     `json:"is_phantom,omitempty"`
}

type jsonStruct struct {
	Name              string                 `json:"name"`
	IsNative          bool                   `json:"is_native"`
	Abilities         []string               `json:"abilities"`
	GenericTypeParams []jsonGenericTypeParam `json:"generic_type_params"`
	Fields            []jsonField            `json:"fields"`
}

type jsonField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func typeStrings(types []typetag.TypeTag) []string {
	result := make([]string, len(types))
	for i, ty := range types {
		result[i] = ty.String()
	}
	return result
}

func prepareModule(module *Module) jsonModule {
	friends := make([]string, len(module.Friends))
	for i, friend := range module.Friends {
		friends[i] = friend.String()
	}

	functions := make([]jsonFunction, len(module.Functions))
	for i, function := range module.Functions {
		functions[i] = prepareFunction(function)
	}

	structs := make([]jsonStruct, len(module.Structs))
	for i, structure := range module.Structs {
		structs[i] = prepareStruct(structure)
	}

	return jsonModule{
		Address:   module.ID.Address.ShortHexWithPrefix(),
		Name:      module.ID.Name,
		Friends:   friends,
		Functions: functions,
		Structs:   structs,
	}
}

func prepareFunction(function *Function) jsonFunction {
	typeParameters := make([]jsonGenericTypeParam, len(function.TypeParameters))
	for i, constraints := range function.TypeParameters {
		typeParameters[i] = jsonGenericTypeParam{
			Constraints: constraints.Strings(),
		}
	}

	return jsonFunction{
		Name:              function.Name,
		Visibility:        function.Visibility.String(),
		IsEntry:           function.IsEntry,
		IsNative:          function.IsNative,
		GenericTypeParams: typeParameters,
		Params:            typeStrings(function.Parameters),
		Return:            typeStrings(function.Returns),
	}
}

func prepareStruct(structure *Struct) jsonStruct {
	typeParameters := make([]jsonGenericTypeParam, len(structure.TypeParameters))
	for i, typeParameter := range structure.TypeParameters {
		typeParameters[i] = jsonGenericTypeParam{
			Constraints: typeParameter.Constraints.Strings(),
			IsPhantom:   typeParameter.IsPhantom,
		}
	}

	fields := make([]jsonField, len(structure.Fields))
	for i, field := range structure.Fields {
		fields[i] = jsonField{
			Name: field.Name,
			Type: field.Type.String(),
		}
	}

	return jsonStruct{
		Name:              structure.Name,
		IsNative:          structure.IsNative,
		Abilities:         structure.Abilities.Strings(),
		GenericTypeParams: typeParameters,
		Fields:            fields,
	}
}

// EncodeJSON returns the JSON representation of the module ABI
func EncodeJSON(module *Module) ([]byte, error) {
	return json.Marshal(prepareModule(module))
}

// CBOREncMode
//
// See https://github.com/fxamacker/cbor:
// "For best performance, reuse EncMode and DecMode after creating them."
var CBOREncMode = func() cbor.EncMode {
	options := cbor.CoreDetEncOptions()
	encMode, err := options.EncMode()
	if err != nil {
		panic(err)
	}
	return encMode
}()

// EncodeCBOR returns the deterministic CBOR representation of the module ABI.
// It has the same structure as the JSON representation.
func EncodeCBOR(module *Module) ([]byte, error) {
	return CBOREncMode.Marshal(prepareModule(module))
}
