// Package schema validates application manifests against the embedded JSON
// Schema. Validation is a separate, optional step: the assembler always
// writes its document, and callers decide whether non-conformance fails the
// run.
package schema

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed application-manifest.schema.json
var schemaJSON string

// Validate checks a serialized manifest against the schema and returns one
// message per violation, "{path}: {message}", sorted by path. An empty slice
// means the manifest conforms. The error return covers malformed input, not
// violations.
func Validate(manifest []byte) ([]string, error) {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(manifest)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		field := violation.Field()
		if field == "(root)" {
			field = "root"
		}
		messages = append(messages, fmt.Sprintf("%s: %s", field, violation.Description()))
	}
	sort.Strings(messages)
	return messages, nil
}
