package info

import (
	_ "embed"
	"html/template"
	"strings"
)

// UIType names an OpenAPI documentation viewer.
type UIType string

const (
	UIStoplight UIType = "stoplight"
	UIScalar    UIType = "scalar"
)

// ParseUIType maps a configuration value onto a UIType. The second result is
// false for unsupported names.
func ParseUIType(name string) (UIType, bool) {
	switch UIType(strings.ToLower(strings.TrimSpace(name))) {
	case UIStoplight, "":
		return UIStoplight, true
	case UIScalar:
		return UIScalar, true
	default:
		return UIStoplight, false
	}
}

// OpenAPISpecURL is where the viewers fetch the JSON document from.
func OpenAPISpecURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/openapi.json"
}

//go:embed assets/stoplight.html
var openapiHTMLStoplight string

//go:embed assets/scalar.html
var openapiHTMLScalar string

var (
	templateStoplight = template.Must(template.New("openapi-stoplight").Parse(openapiHTMLStoplight))
	templateScalar    = template.Must(template.New("openapi-scalar").Parse(openapiHTMLScalar))
)

func templateFor(uiType UIType) *template.Template {
	if uiType == UIScalar {
		return templateScalar
	}
	return templateStoplight
}
