package dish

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiYAML []byte

// OpenAPI loads the embedded document with every path mounted below prefix
// and validates the result. prefix must already be normalised.
func OpenAPI(prefix string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("dish: load openapi document: %w", err)
	}

	if prefix != "" {
		mounted := openapi3.NewPaths()
		for path, item := range doc.Paths.Map() {
			mounted.Set(prefix+path, item)
		}
		doc.Paths = mounted
	}

	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("dish: invalid openapi document: %w", err)
	}
	return doc, nil
}

// OpenAPIJSON renders the document for prefix as JSON.
func OpenAPIJSON(prefix string) ([]byte, error) {
	doc, err := OpenAPI(prefix)
	if err != nil {
		return nil, err
	}
	return doc.MarshalJSON()
}
