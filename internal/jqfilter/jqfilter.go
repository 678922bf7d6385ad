// Package jqfilter applies a jq expression to an arbitrary JSON-shaped Go
// value, letting CLI list commands support an optional --query flag without
// hand-rolling a filter grammar.
package jqfilter

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// Apply runs expr against v (marshalled to JSON and back to interface{}) and
// returns every emitted result. An empty expr is rejected by the caller
// before Apply is reached; "." returns v unchanged.
func Apply(expr string, v interface{}) ([]interface{}, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshalling input: %w", err)
	}
	var input interface{}
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("unmarshalling input: %w", err)
	}

	iter := query.Run(input)
	var out []interface{}
	for {
		res, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := res.(error); ok {
			return nil, fmt.Errorf("running query: %w", err)
		}
		out = append(out, res)
	}
	return out, nil
}
