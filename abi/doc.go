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
	"fmt"
	"strings"

	"github.com/turbolent/prettier"

	"github.com/movekit/movecall/typetag"
)

const maxLineWidth = 80

var listSeparatorDoc prettier.Doc = prettier.Concat{
	prettier.Text(","),
	prettier.Line{},
}

func typeDocs(types []typetag.TypeTag) []prettier.Doc {
	docs := make([]prettier.Doc, len(types))
	for i, ty := range types {
		docs[i] = prettier.Text(ty.String())
	}
	return docs
}

func typeParameterDocs(typeParameters []AbilitySet) []prettier.Doc {
	docs := make([]prettier.Doc, len(typeParameters))
	for i, constraints := range typeParameters {
		name := fmt.Sprintf("T%d", i)
		if constraints == EmptyAbilitySet {
			docs[i] = prettier.Text(name)
		} else {
			docs[i] = prettier.Text(name + ": " + constraints.String())
		}
	}
	return docs
}

// Doc returns the declaration of the function in Move source syntax,
// e.g. `public entry fun transfer<T0: store>(&signer, address, u64)`
func (f *Function) Doc() prettier.Doc {
	var result prettier.Concat

	if f.Visibility != VisibilityPrivate {
		result = append(result,
			prettier.Text(f.Visibility.String()),
			prettier.Space,
		)
	}

	if f.IsEntry {
		result = append(result,
			prettier.Text("entry"),
			prettier.Space,
		)
	}

	if f.IsNative {
		result = append(result,
			prettier.Text("native"),
			prettier.Space,
		)
	}

	result = append(result,
		prettier.Text("fun"),
		prettier.Space,
		prettier.Text(f.Name),
	)

	if len(f.TypeParameters) > 0 {
		result = append(result,
			prettier.Wrap(
				prettier.Text("<"),
				prettier.Join(listSeparatorDoc, typeParameterDocs(f.TypeParameters)...),
				prettier.Text(">"),
				prettier.SoftLine{},
			),
		)
	}

	if len(f.Parameters) == 0 {
		result = append(result, prettier.Text("()"))
	} else {
		result = append(result,
			prettier.WrapParentheses(
				prettier.Join(listSeparatorDoc, typeDocs(f.Parameters)...),
				prettier.SoftLine{},
			),
		)
	}

	switch len(f.Returns) {
	case 0:
		break

	case 1:
		result = append(result,
			prettier.Text(": "),
			prettier.Text(f.Returns[0].String()),
		)

	default:
		result = append(result,
			prettier.Text(": "),
			prettier.WrapParentheses(
				prettier.Join(listSeparatorDoc, typeDocs(f.Returns)...),
				prettier.SoftLine{},
			),
		)
	}

	return prettier.Group{
		Doc: result,
	}
}

// Signature returns the pretty-printed declaration of the function
func (f *Function) Signature() string {
	var b strings.Builder
	prettier.Prettier(&b, f.Doc(), maxLineWidth, "    ")
	return b.String()
}

// Doc returns the declarations of all functions of the module, one per line
func (m *Module) Doc() prettier.Doc {
	result := prettier.Concat{
		prettier.Text("module " + m.ID.String()),
	}

	for _, function := range m.Functions {
		result = append(result,
			prettier.Indent{
				Doc: prettier.Concat{
					prettier.HardLine{},
					function.Doc(),
				},
			},
		)
	}

	return result
}

// Signatures returns the pretty-printed declarations of all functions of the module
func (m *Module) Signatures() string {
	var b strings.Builder
	prettier.Prettier(&b, m.Doc(), maxLineWidth, "    ")
	return b.String()
}
