package cards

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const cardSchemaURL = "custom-card.json"

const cardSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "field", "operation", "selectedProducts"],
  "properties": {
    "id": {"type": "string"},
    "title": {"type": "string", "minLength": 1, "maxLength": 120},
    "field": {"type": "string", "minLength": 1},
    "operation": {"enum": ["sum", "average", "min", "max", "count", "percentage", "difference", "custom"]},
    "formula": {"type": "string", "maxLength": 500},
    "selectedProducts": {"type": "array", "items": {"type": "string"}},
    "color": {"type": "string"},
    "icon": {"type": "string"},
    "isVisible": {"type": "boolean"},
    "computedValue": {"type": "number"}
  },
  "if": {"properties": {"operation": {"const": "custom"}}},
  "then": {"required": ["formula"], "properties": {"formula": {"minLength": 1}}}
}`

// Validator checks card drafts before they are stored.
type Validator interface {
	Validate(card CustomCard) error
}

// SchemaValidator validates cards against the custom card JSON schema.
type SchemaValidator struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// NewSchemaValidator builds a validator backed by jsonschema v5.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

func (v *SchemaValidator) compiled() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(cardSchemaURL, strings.NewReader(cardSchema)); err != nil {
			v.err = fmt.Errorf("cards: load schema: %w", err)
			return
		}
		v.schema, v.err = compiler.Compile(cardSchemaURL)
		if v.err != nil {
			v.err = fmt.Errorf("cards: compile schema: %w", v.err)
		}
	})
	return v.schema, v.err
}

// Validate reports ErrInvalidCard wrapped with the schema violation.
func (v *SchemaValidator) Validate(card CustomCard) error {
	schema, err := v.compiled()
	if err != nil {
		return err
	}
	if card.SelectedProducts == nil {
		card.SelectedProducts = []string{}
	}
	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("cards: marshal card: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("cards: normalize card: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}
	return nil
}

type noopValidator struct{}

func (noopValidator) Validate(CustomCard) error { return nil }
