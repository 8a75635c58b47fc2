package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/document.schema.json
var documentSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("document.schema.json", bytes.NewReader(documentSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("document.schema.json")
	})

	return compiledSchema, schemaErr
}

// SchemaIssue is one leaf failure from schema validation.
type SchemaIssue struct {
	Location string
	Message  string
}

func (i SchemaIssue) String() string {
	location := i.Location
	if location == "" {
		location = "#"
	} else if !strings.HasPrefix(location, "#") {
		location = "#" + location
	}

	return fmt.Sprintf("%s: %s", location, i.Message)
}

// validateShape checks a decoded document against the embedded schema and
// returns the leaf issues, if any.
func validateShape(doc any) ([]SchemaIssue, error) {
	schema, err := documentValidator()
	if err != nil {
		return nil, fmt.Errorf("compiling document schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, err
		}

		return collectIssues(verr), nil
	}

	return nil, nil
}

func collectIssues(err *jsonschema.ValidationError) []SchemaIssue {
	var issues []SchemaIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, SchemaIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)

	return issues
}
