package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	dateLayout              = "2006-01-02"
	invalidDateRangeMessage = "Invalid date range. Start date must be before end date."

	schemaDateRange     = "date_range"
	schemaTabSelection  = "tab_selection"
	schemaKeywordFilter = "keyword_filter"
)

var inputSchemas = map[string]map[string]any{
	schemaDateRange: {
		"type":     "object",
		"required": []string{"start_date", "end_date"},
		"properties": map[string]any{
			"start_date": map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"end_date":   map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		},
	},
	schemaTabSelection: {
		"type":     "object",
		"required": []string{"category"},
		"properties": map[string]any{
			"category": map[string]any{"enum": categoryNames(tabCategories)},
		},
	},
	schemaKeywordFilter: {
		"type":     "object",
		"required": []string{"category"},
		"properties": map[string]any{
			"category": map[string]any{"enum": append(categoryNames(stressCategories), defaultKeywordFilter)},
		},
	},
}

// InputValidator checks user input against a named schema.
type InputValidator interface {
	Validate(schema string, payload any) error
}

// JSONSchemaValidator compiles the input schemas and validates payloads.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	schemas  map[string]map[string]any
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		schemas:  inputSchemas,
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures payload satisfies the named schema. Unknown names pass.
func (v *JSONSchemaValidator) Validate(name string, payload any) error {
	raw, ok := v.schemas[name]
	if !ok {
		return nil
	}
	schema, err := v.schemaFor(name, raw)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("dashboard: marshal %s input: %w", name, err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("dashboard: normalize %s input: %w", name, err)
	}
	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("dashboard: %s input failed validation: %w", name, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(name string, raw map[string]any) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// ValidateDateRange rejects empty, malformed or inverted ranges. Equal start
// and end dates are accepted.
func ValidateDateRange(validator InputValidator, dates DateRange) error {
	invalid := func(err error) error {
		return &ValidationError{Field: "date_range", Message: invalidDateRangeMessage, Err: err}
	}
	if dates.Start == "" || dates.End == "" {
		return invalid(fmt.Errorf("start and end dates are required"))
	}
	if validator != nil {
		if err := validator.Validate(schemaDateRange, dates); err != nil {
			return invalid(err)
		}
	}
	start, err := time.Parse(dateLayout, dates.Start)
	if err != nil {
		return invalid(err)
	}
	end, err := time.Parse(dateLayout, dates.End)
	if err != nil {
		return invalid(err)
	}
	if start.After(end) {
		return invalid(fmt.Errorf("start %s is after end %s", dates.Start, dates.End))
	}
	return nil
}

func categoryNames(categories []Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}
