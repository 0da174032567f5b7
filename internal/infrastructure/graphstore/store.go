// Package graphstore is the single point of contact with the graph database.
//
// Callers hand over one parameterized Cypher statement and get back plain Go
// records. Sessions are opened per statement and always closed before the call
// returns, so nothing driver-specific leaks past this package.
package graphstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned when the store refuses work, e.g. while the
// circuit breaker is open.
var ErrUnavailable = errors.New("graph store unavailable")

// Store runs Cypher statements.
type Store interface {
	// Read runs a statement in a read transaction.
	Read(ctx context.Context, cypher string, params map[string]interface{}) ([]Record, error)
	// Write runs a statement in a write transaction.
	Write(ctx context.Context, cypher string, params map[string]interface{}) ([]Record, error)
	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying driver.
	Close(ctx context.Context) error
}

// Record is one result row keyed by the RETURN aliases. Values are already
// converted to plain Go types: nodes become property maps, lists become
// []interface{}.
type Record map[string]interface{}

// Value returns the raw value stored under key.
func (r Record) Value(key string) (interface{}, bool) {
	v, ok := r[key]
	return v, ok
}

// String returns the value under key when it is a string.
func (r Record) String(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// OptionalString distinguishes a missing or null value from an empty string.
func (r Record) OptionalString(key string) *string {
	s, ok := r[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// Int returns the value under key as an int64. Floats are truncated.
func (r Record) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Map returns the value under key when it is a property map.
func (r Record) Map(key string) map[string]interface{} {
	if m, ok := r[key].(map[string]interface{}); ok {
		return m
	}
	return nil
}

// List returns the value under key when it is a list.
func (r Record) List(key string) []interface{} {
	switch v := r[key].(type) {
	case []interface{}:
		return v
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

// Strings returns the string entries of the list under key.
func (r Record) Strings(key string) []string {
	list := r.List(key)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// operationName derives a short label ("MATCH", "MERGE", ...) from the first
// keyword of a statement, for metrics and span names.
func operationName(cypher string) string {
	fields := strings.Fields(cypher)
	if len(fields) == 0 {
		return "EMPTY"
	}
	return strings.ToUpper(fields[0])
}

func wrapQueryError(mode string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("graphstore %s: %w", mode, err)
}
