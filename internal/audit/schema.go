package audit

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/shesha-tools/mcpinject/internal/document"
	mcperrors "github.com/shesha-tools/mcpinject/internal/errors"
)

// SchemaValidator is the optional enhanced validation tier: it checks the
// document about to be written against an external JSON Schema. It plugs in
// behind the same Auditor interface as the structural check; a missing or
// unconfigured schema simply means this auditor is never constructed.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the schema at the given location.
func NewSchemaValidator(location string) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(location)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling schema %s", location)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Audit implements Auditor. Violations surface as schema drift; the old
// document is not consulted.
func (v *SchemaValidator) Audit(_, newDoc *document.Document) error {
	data, err := json.Marshal(newDoc)
	if err != nil {
		return errors.Wrap(err, "marshaling document for schema validation")
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return errors.Wrap(err, "decoding document for schema validation")
	}

	if err := v.schema.Validate(value); err != nil {
		return mcperrors.WithKind(errors.Wrap(err, "schema validation"), mcperrors.KindSchemaDrift)
	}
	return nil
}
