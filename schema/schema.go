/*
Package schema implements the field-name-to-semantic-type lookup loaded
from configuration. The semantic-type-to-parser-kind table lives in package
registry.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package schema

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'logpar.schema'.
func tracer() tracing.Trace {
	return tracing.Select("logpar.schema")
}

// Type is a semantic field type named in the schema configuration.
type Type string

// The fixed set of semantic types a schema field may name.
const (
	Long        Type = "long"
	Double      Type = "double"
	Float       Type = "float"
	ScaledFloat Type = "scaled_float"
	Byte        Type = "byte"
	Keyword     Type = "keyword"
	Text        Type = "text"
	Object      Type = "object"
	GeoPoint    Type = "geo_point"
	Nested      Type = "nested"
	Boolean     Type = "boolean"
	IP          Type = "ip"
	Date        Type = "date"
	UserAgent   Type = "user_agent"
	URL         Type = "url"
)

var knownTypes = map[Type]bool{
	Long: true, Double: true, Float: true, ScaledFloat: true, Byte: true,
	Keyword: true, Text: true, Object: true, GeoPoint: true, Nested: true,
	Boolean: true, IP: true, Date: true, UserAgent: true, URL: true,
}

// ConfigError reports a malformed schema configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("schema configuration error for field %q: %s", e.Field, e.Reason)
}

// Schema maps schema field names to their semantic type. It is immutable
// once loaded.
type Schema struct {
	fields map[string]Type
}

// Lookup returns the semantic type registered for name, or false if name is
// not a schema field.
func (s Schema) Lookup(name string) (Type, bool) {
	t, ok := s.fields[name]
	return t, ok
}

type document struct {
	Fields map[string]string `json:"fields"`
}

// Load reads a JSON configuration document with a top-level "fields" object
// mapping field names to type names, per the external schema-configuration
// contract. Any other structure, an unknown type name, or an empty mapping
// is a fatal ConfigError.
func Load(r io.Reader) (Schema, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Schema{}, &ConfigError{Reason: fmt.Sprintf("configuration file must be an object with a 'fields' object: %v", err)}
	}
	if len(doc.Fields) == 0 {
		return Schema{}, &ConfigError{Reason: "schema fields must not be empty"}
	}
	fields := make(map[string]Type, len(doc.Fields))
	for name, typeName := range doc.Fields {
		t := Type(typeName)
		if !knownTypes[t] {
			return Schema{}, &ConfigError{Field: name, Reason: fmt.Sprintf("type %q is not supported", typeName)}
		}
		fields[name] = t
	}
	tracer().Infof("loaded schema with %d fields", len(fields))
	return Schema{fields: fields}, nil
}
