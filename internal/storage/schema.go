package storage

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskman/internal/utils"
)

const schemaURL = "https://github.com/nibzard/taskman/tasks.schema.json"

//go:embed tasks.schema.json
var schemaSource string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// FormatError reports a persisted file whose content does not match the task
// file schema.
type FormatError struct {
	Path string // JSON path to the error location
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid task file format: %s: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid task file format: %s", e.Err)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

func taskSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaSource)); err != nil {
			schemaErr = fmt.Errorf("load task schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile task schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// validateDocument checks a decoded document against the task file schema.
// Every leaf violation is joined into the returned error.
func validateDocument(doc any) error {
	if _, ok := doc.([]any); !ok {
		return &FormatError{Err: fmt.Errorf("root must be an array, got %s", describe(doc))}
	}

	schema, err := taskSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return &FormatError{Err: err}
		}
		var errs []error
		collectSchemaErrors(&errs, ve)
		return errors.Join(errs...)
	}
	return nil
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		*errs = append(*errs, &FormatError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
