// Package schema wraps github.com/santhosh-tekuri/jsonschema/v6 and reports
// violations as single-line sentences of the form
//
//	The property '#/items/0/url' of type integer did not match the following type: string in schema file:///srv/schema.json#
//
// which is the phrasing the message cleaner rewrites into field-qualified text.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Validator validates decoded JSON documents against a compiled schema.
// It is read-only after construction and safe for concurrent use.
type Validator struct {
	schema   *jsonschema.Schema
	location string
	printer  *message.Printer
}

func newValidator(sch *jsonschema.Schema, location string) *Validator {
	return &Validator{
		schema:   sch,
		location: location,
		printer:  message.NewPrinter(language.English),
	}
}

// Location returns the URL the schema was compiled from.
func (v *Validator) Location() string {
	return v.location
}

// Validate returns one raw violation per failing leaf of the validation
// tree, depth first. A valid document yields nil.
func (v *Validator) Validate(doc any) []string {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{fmt.Sprintf("The property '#/' %s in schema %s", err.Error(), v.location)}
	}

	var violations []string
	walkLeaves(verr, func(leaf *jsonschema.ValidationError) {
		pointer := instancePointer(leaf.InstanceLocation)
		for _, desc := range describe(leaf.ErrorKind, v.printer) {
			violations = append(violations, fmt.Sprintf("The property '%s' %s in schema %s", pointer, desc, leaf.SchemaURL))
		}
	})
	return violations
}

func walkLeaves(e *jsonschema.ValidationError, visit func(*jsonschema.ValidationError)) {
	if len(e.Causes) == 0 {
		visit(e)
		return
	}
	for _, cause := range e.Causes {
		walkLeaves(cause, visit)
	}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// instancePointer renders an instance location as a "#/"-prefixed JSON
// pointer; the document root is "#/".
func instancePointer(tokens []string) string {
	escaped := make([]string, len(tokens))
	for i, tok := range tokens {
		escaped[i] = pointerEscaper.Replace(tok)
	}
	return "#/" + strings.Join(escaped, "/")
}

// ParseDocument decodes a fetched feed body. Numbers are kept as
// json.Number so they round-trip unchanged into the pretty-printed report.
func ParseDocument(data []byte) (any, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: unexpected end of JSON input", ErrDocumentParse)
		}
		return nil, fmt.Errorf("%w: %v", ErrDocumentParse, err)
	}
	return doc, nil
}
