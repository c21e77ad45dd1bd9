// Package payload loads POST bodies and validates JSON bodies against a schema.
package payload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrSchemaMismatch = errors.New("body does not match schema")

// Load resolves a body argument. "@path" reads a file, "@-" reads stdin,
// anything else is used literally.
func Load(arg string, stdin io.Reader) (string, error) {
	if !strings.HasPrefix(arg, "@") {
		return arg, nil
	}

	path := arg[1:]
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read body from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read body file: %w", err)
	}
	return string(data), nil
}

// FilePath returns the file behind an "@path" argument, or "" for literals and stdin.
func FilePath(arg string) string {
	if !strings.HasPrefix(arg, "@") || arg == "@-" {
		return ""
	}
	return arg[1:]
}

// ValidateJSON checks body against the JSON schema stored at schemaPath.
func ValidateJSON(body, schemaPath string) error {
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	documentLoader := gojsonschema.NewStringLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(problems, "; "))
}
