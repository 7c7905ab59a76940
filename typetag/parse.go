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

package typetag

import (
	"fmt"

	"github.com/SaveTheRbtz/mph"

	"github.com/movekit/movecall/common"
)

const keywordVector = "vector"

var primitiveTypes = []PrimitiveType{
	BoolType,
	U8Type,
	U16Type,
	U32Type,
	U64Type,
	U128Type,
	U256Type,
	AddressType,
	SignerType,
}

var primitiveKeywords = func() []string {
	keywords := make([]string, len(primitiveTypes))
	for i, ty := range primitiveTypes {
		keywords[i] = ty.String()
	}
	return keywords
}()

var primitiveKeywordsTable = mph.Build(primitiveKeywords)

// PrimitiveTypeFromKeyword returns the primitive type for the given keyword, e.g. `u64`
func PrimitiveTypeFromKeyword(keyword string) (PrimitiveType, bool) {
	index, ok := primitiveKeywordsTable.Lookup(keyword)
	if !ok || primitiveKeywords[index] != keyword {
		return PrimitiveTypeUnknown, false
	}
	return primitiveTypes[index], true
}

// SyntaxError is returned when a type literal cannot be parsed
type SyntaxError struct {
	Input   string
	Offset  int
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("invalid type %q at offset %d: %s", e.Input, e.Offset, e.Message)
}

type tokenKind uint8

const (
	tokenEOF tokenKind = iota
	tokenIdentifier
	tokenLess
	tokenGreater
	tokenComma
	tokenDoubleColon
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenIdentifier:
		return "identifier"
	case tokenLess:
		return "'<'"
	case tokenGreater:
		return "'>'"
	case tokenComma:
		return "','"
	case tokenDoubleColon:
		return "'::'"
	}
	return "unknown token"
}

type token struct {
	kind   tokenKind
	text   string
	offset int
}

func isIdentifierCharacter(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func isIdentifierStart(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}

// IsValidIdentifier returns true if s is a valid Move identifier
func IsValidIdentifier(s string) bool {
	if len(s) == 0 || !isIdentifierStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentifierCharacter(s[i]) {
			return false
		}
	}
	// a lone underscore is not an identifier
	return s != "_"
}

type parser struct {
	input  string
	tokens []token
	pos    int
	depth  int
}

// Parse parses a type literal, e.g. `u64`, `vector<address>`,
// or `0x1::coin::Coin<0x1::aptos_coin::AptosCoin>`.
func Parse(input string) (TypeTag, error) {
	p := &parser{input: input}

	err := p.lex()
	if err != nil {
		return nil, err
	}

	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}

	if current := p.current(); current.kind != tokenEOF {
		return nil, p.errorf(current.offset, "unexpected %s after type", current.kind)
	}

	return ty, nil
}

func (p *parser) errorf(offset int, format string, args ...any) SyntaxError {
	return SyntaxError{
		Input:   p.input,
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) lex() error {
	input := p.input
	i := 0

	for i < len(input) {
		c := input[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '<':
			p.tokens = append(p.tokens, token{kind: tokenLess, offset: i})
			i++

		case c == '>':
			p.tokens = append(p.tokens, token{kind: tokenGreater, offset: i})
			i++

		case c == ',':
			p.tokens = append(p.tokens, token{kind: tokenComma, offset: i})
			i++

		case c == ':':
			if i+1 >= len(input) || input[i+1] != ':' {
				return p.errorf(i, "expected '::'")
			}
			p.tokens = append(p.tokens, token{kind: tokenDoubleColon, offset: i})
			i += 2

		case isIdentifierCharacter(c):
			start := i
			for i < len(input) && isIdentifierCharacter(input[i]) {
				i++
			}
			p.tokens = append(p.tokens, token{
				kind:   tokenIdentifier,
				text:   input[start:i],
				offset: start,
			})

		default:
			return p.errorf(i, "unexpected character %q", c)
		}
	}

	p.tokens = append(p.tokens, token{kind: tokenEOF, offset: len(input)})

	return nil
}

func (p *parser) current() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, p.errorf(tok.offset, "expected %s, got %s", kind, tok.kind)
	}
	return tok, nil
}

func (p *parser) parseType() (TypeTag, error) {
	tok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}

	p.depth++
	defer func() {
		p.depth--
	}()

	if p.depth > MaxNestingDepth {
		return nil, p.errorf(tok.offset, "type nesting exceeds maximum depth %d", MaxNestingDepth)
	}

	if p.current().kind == tokenDoubleColon {
		return p.parseStructType(tok)
	}

	if tok.text == keywordVector {
		return p.parseVectorType()
	}

	if primitiveType, ok := PrimitiveTypeFromKeyword(tok.text); ok {
		return primitiveType, nil
	}

	return nil, p.errorf(tok.offset, "unknown type %q", tok.text)
}

func (p *parser) parseVectorType() (TypeTag, error) {
	_, err := p.expect(tokenLess)
	if err != nil {
		return nil, err
	}

	elementType, err := p.parseType()
	if err != nil {
		return nil, err
	}

	_, err = p.expect(tokenGreater)
	if err != nil {
		return nil, err
	}

	return NewVectorType(elementType), nil
}

func (p *parser) parseStructType(addressToken token) (TypeTag, error) {
	address, err := common.HexToAddress(addressToken.text)
	if err != nil {
		return nil, p.errorf(addressToken.offset, "invalid address %q", addressToken.text)
	}

	moduleName, err := p.parseQualifiedNamePart()
	if err != nil {
		return nil, err
	}

	structName, err := p.parseQualifiedNamePart()
	if err != nil {
		return nil, err
	}

	var typeArguments []TypeTag

	if p.current().kind == tokenLess {
		p.next()

		for {
			typeArgument, err := p.parseType()
			if err != nil {
				return nil, err
			}
			typeArguments = append(typeArguments, typeArgument)

			tok := p.next()
			if tok.kind == tokenGreater {
				break
			}
			if tok.kind != tokenComma {
				return nil, p.errorf(tok.offset, "expected ',' or '>', got %s", tok.kind)
			}
		}
	}

	return &StructType{
		Address:       address,
		Module:        moduleName,
		Name:          structName,
		TypeArguments: typeArguments,
	}, nil
}

// parseQualifiedNamePart parses `:: <identifier>`
func (p *parser) parseQualifiedNamePart() (string, error) {
	_, err := p.expect(tokenDoubleColon)
	if err != nil {
		return "", err
	}

	tok, err := p.expect(tokenIdentifier)
	if err != nil {
		return "", err
	}

	if !IsValidIdentifier(tok.text) {
		return "", p.errorf(tok.offset, "invalid identifier %q", tok.text)
	}

	return tok.text, nil
}
