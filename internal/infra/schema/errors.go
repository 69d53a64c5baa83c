package schema

import "errors"

var (
	// ErrSchemaLoad indicates the schema could not be read or compiled.
	ErrSchemaLoad = errors.New("schema load failed")

	// ErrDocumentParse indicates the fetched document is not valid JSON.
	ErrDocumentParse = errors.New("document is not valid JSON")
)
