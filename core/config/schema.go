package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const configSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"log_level": {"type": "string"},
		"ingestion": {
			"type": "object",
			"properties": {
				"source": {"type": "string", "minLength": 1},
				"raw_path": {"type": "string", "minLength": 1},
				"train_path": {"type": "string", "minLength": 1},
				"test_path": {"type": "string", "minLength": 1},
				"seed": {"type": "integer"},
				"test_size": {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1},
				"delimiter": {"type": "string", "minLength": 1, "maxLength": 1, "not": {"enum": ["\"", "\r", "\n"]}}
			},
			"required": ["source", "raw_path", "train_path", "test_path", "seed", "test_size", "delimiter"]
		},
		"transformation": {
			"type": "object",
			"properties": {
				"target": {"type": "string", "minLength": 1},
				"numeric_columns": {"type": ["array", "null"], "items": {"type": "string"}, "uniqueItems": true},
				"categorical_columns": {"type": ["array", "null"], "items": {"type": "string"}, "uniqueItems": true},
				"preprocessor_path": {"type": "string"}
			},
			"required": ["target"]
		},
		"trainer": {
			"type": "object",
			"properties": {
				"model_path": {"type": "string"},
				"min_score": {"type": "number", "maximum": 1},
				"alphas": {"type": "array", "minItems": 1, "items": {"type": "number", "exclusiveMinimum": 0}}
			},
			"required": ["alphas"]
		},
		"watch": {
			"type": "object",
			"properties": {
				"debounce_ms": {"type": "integer", "minimum": 0},
				"max_wait_ms": {"type": "integer", "minimum": 0}
			}
		},
		"output": {
			"type": "object",
			"properties": {
				"metrics_textfile": {"type": "string"},
				"history_path": {"type": "string"},
				"status_path": {"type": "string"}
			}
		}
	},
	"required": ["ingestion", "transformation", "trainer"]
}`

// ValidationResult collects every schema violation found in a configuration.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

func validateSchema(c *Config) ValidationResult {
	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	documentLoader := gojsonschema.NewGoLoader(c)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return ValidationResult{Errors: []string{fmt.Sprintf("schema validation error: %v", err)}}
	}

	var errs []string
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// FormatValidationErrors renders one violation per line.
func FormatValidationErrors(result ValidationResult) string {
	if result.Valid {
		return ""
	}
	return strings.Join(result.Errors, "\n")
}
