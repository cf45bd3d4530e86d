package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/itchyny/gojq"
)

// jqTimeout bounds a single filter evaluation.
const jqTimeout = 5 * time.Second

// jqFilter is a compiled jq expression.
type jqFilter struct {
	code *gojq.Code
}

// compileJQ parses and compiles expr.
func compileJQ(expr string) (*jqFilter, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile jq expression: %w", err)
	}
	return &jqFilter{code: code}, nil
}

// Run evaluates the filter against input and returns every emitted value.
func (f *jqFilter) Run(ctx context.Context, input any) ([]any, error) {
	ctx, cancel := context.WithTimeout(ctx, jqTimeout)
	defer cancel()

	var out []any
	iter := f.code.RunWithContext(ctx, normalizeJSON(input))
	for {
		v, ok := iter.Next()
		if !ok {
			return out, nil
		}
		if err, isErr := v.(error); isErr {
			if haltErr, ok := err.(*gojq.HaltError); ok && haltErr.Value() == nil {
				return out, nil
			}
			return nil, fmt.Errorf("jq: %w", err)
		}
		out = append(out, v)
	}
}

// normalizeJSON converts v into the plain JSON types gojq accepts.
func normalizeJSON(v any) any {
	switch x := v.(type) {
	case nil, bool, float64, string, map[string]any, []any:
		return v
	case []byte:
		return string(x)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// writeJQValue prints a jq result the way jq -r does: strings raw, everything
// else as compact JSON.
func writeJQValue(w io.Writer, v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	data, err := gojq.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
