package modelclient

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// CompileSchema compiles a literal JSON Schema document (as produced by a
// Go raw string literal in a pipeline package) into a *jsonschema.Schema,
// the shape InvokeStructured expects. Grounded on goadesign-goa-ai
// registry/service.go's validatePayloadJSONAgainstSchema compile-once
// pattern (NewCompiler + AddResource + Compile), promoted here into a
// reusable helper since every structured-output call site needs it.
func CompileSchema(name string, doc []byte) (*jsonschema.Schema, error) {
	var schemaDoc any
	if err := json.Unmarshal(doc, &schemaDoc); err != nil {
		return nil, fmt.Errorf("modelclient: unmarshal schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, schemaDoc); err != nil {
		return nil, fmt.Errorf("modelclient: add schema resource %s: %w", name, err)
	}
	schema, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("modelclient: compile schema %s: %w", name, err)
	}
	return schema, nil
}

// MustCompileSchema is CompileSchema for package-level var initialization
// where a malformed literal schema is a programming error that should
// panic at process start rather than surface at request time.
func MustCompileSchema(name string, doc []byte) *jsonschema.Schema {
	schema, err := CompileSchema(name, doc)
	if err != nil {
		panic(err)
	}
	return schema
}
