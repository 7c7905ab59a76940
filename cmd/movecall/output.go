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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/itchyny/gojq"
	"github.com/tidwall/pretty"
)

type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCBOR OutputFormat = "cbor"
)

// QueryError is returned when a jq query fails to parse or to run
type QueryError struct {
	Query string
	Err   error
}

func (e QueryError) Unwrap() error {
	return e.Err
}

func (e QueryError) Error() string {
	return fmt.Sprintf("query `%s` failed: %s", e.Query, e.Err)
}

// runQuery runs the jq query on the given JSON document
// and returns each result as a JSON document
func runQuery(ctx context.Context, query string, document []byte) ([][]byte, error) {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, QueryError{
			Query: query,
			Err:   err,
		}
	}

	var input any
	err = json.Unmarshal(document, &input)
	if err != nil {
		return nil, err
	}

	var results [][]byte

	iter := parsed.RunWithContext(ctx, input)
	for {
		value, ok := iter.Next()
		if !ok {
			break
		}

		if err, ok := value.(error); ok {
			if haltErr, ok := err.(*gojq.HaltError); ok && haltErr.Value() == nil {
				break
			}
			return nil, QueryError{
				Query: query,
				Err:   err,
			}
		}

		result, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// writeJSON writes a JSON document, optionally filtered by a jq query,
// in the given format
func writeJSON(
	ctx context.Context,
	w io.Writer,
	format OutputFormat,
	document []byte,
	query string,
	colors bool,
) error {
	documents := [][]byte{document}

	if query != "" {
		var err error
		documents, err = runQuery(ctx, query, document)
		if err != nil {
			return err
		}
	}

	for _, document := range documents {
		var output []byte

		switch format {
		case OutputFormatJSON:
			output = pretty.Pretty(document)
			if colors {
				output = pretty.Color(output, nil)
			}

		case OutputFormatYAML:
			var err error
			output, err = yaml.JSONToYAML(document)
			if err != nil {
				return err
			}
			if query != "" {
				output = append([]byte("---\n"), output...)
			}

		default:
			return fmt.Errorf("output format %s does not support structured output", format)
		}

		_, err := w.Write(output)
		if err != nil {
			return err
		}
	}

	return nil
}
