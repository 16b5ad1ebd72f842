package info

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/drblury/dishweaver/probe"
	"github.com/drblury/dishweaver/responder"
)

// DefaultWelcomeMessage is served by GetWelcome unless overridden.
const DefaultWelcomeMessage = "Welcome to the API!"

// InfoProvider returns the payload that will be exposed by the version endpoint.
type InfoProvider func() any

// SwaggerProvider returns the raw OpenAPI document that should be rendered by
// the documentation endpoints.
type SwaggerProvider func() ([]byte, error)

// InfoOption follows the functional options pattern used by NewInfoHandler.
type InfoOption func(*InfoHandler)

// TemplateDataProvider allows callers to customise the data payload passed to
// the OpenAPI HTML template at render time.
type TemplateDataProvider func(r *http.Request, baseURL string) any

const defaultProbeTimeout = 2 * time.Second

// ProbeFunc is executed to determine the outcome of liveness or readiness
// probes. Returning a non-nil error marks the probe as failed.
type ProbeFunc = probe.Func

// InfoHandler serves the service-level endpoints that sit next to the dish
// resource: the welcome banner, health and readiness probes, build
// information and the OpenAPI document with its HTML viewer.
type InfoHandler struct {
	*responder.Responder
	baseURL         string
	welcomeMessage  string
	infoProvider    InfoProvider
	swaggerProvider SwaggerProvider
	openapiTemplate *template.Template
	dataProvider    TemplateDataProvider
	probeTimeout    time.Duration
	livenessChecks  []ProbeFunc
	readinessChecks []ProbeFunc
	uiType          UIType
}

// NewInfoHandler constructs an InfoHandler with sensible defaults.
func NewInfoHandler(opts ...InfoOption) *InfoHandler {
	ih := &InfoHandler{
		Responder:      responder.NewResponder(),
		welcomeMessage: DefaultWelcomeMessage,
		infoProvider: func() any {
			return map[string]string{}
		},
		swaggerProvider: func() ([]byte, error) {
			return nil, errors.New("api swagger provider not configured")
		},
		openapiTemplate: templateStoplight,
		dataProvider:    defaultTemplateDataProvider,
		probeTimeout:    defaultProbeTimeout,
		uiType:          UIStoplight,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ih)
		}
	}
	return ih
}

// WithInfoResponder replaces the responder used to craft JSON responses and
// handle error reporting.
func WithInfoResponder(responder *responder.Responder) InfoOption {
	return func(ih *InfoHandler) {
		if responder != nil {
			ih.Responder = responder
		}
	}
}

// WithBaseURL sets the URL prefix under which the OpenAPI JSON endpoint is
// reachable. The viewer fetches BaseURL + "/openapi.json".
func WithBaseURL(baseURL string) InfoOption {
	return func(ih *InfoHandler) {
		ih.baseURL = baseURL
	}
}

// WithWelcomeMessage overrides the text returned by GetWelcome.
func WithWelcomeMessage(message string) InfoOption {
	return func(ih *InfoHandler) {
		if message != "" {
			ih.welcomeMessage = message
		}
	}
}

// WithInfoProvider swaps the default metadata provider.
func WithInfoProvider(provider InfoProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.infoProvider = provider
		}
	}
}

// WithSwaggerProvider sets the source of the OpenAPI JSON document.
func WithSwaggerProvider(provider SwaggerProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.swaggerProvider = provider
		}
	}
}

// WithOpenAPITemplate injects a custom html/template used to render the
// OpenAPI viewer page.
func WithOpenAPITemplate(tmpl *template.Template) InfoOption {
	return func(ih *InfoHandler) {
		if tmpl != nil {
			ih.openapiTemplate = tmpl
		}
	}
}

// WithOpenAPITemplateData overrides the template data provider that runs for
// each request to the HTML endpoint.
func WithOpenAPITemplateData(provider TemplateDataProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.dataProvider = provider
		}
	}
}

// WithProbeTimeout adjusts the maximum duration allowed for probe checks.
func WithProbeTimeout(timeout time.Duration) InfoOption {
	return func(ih *InfoHandler) {
		if timeout > 0 {
			ih.probeTimeout = timeout
		}
	}
}

// WithLivenessChecks replaces the liveness checks with the supplied functions.
func WithLivenessChecks(checks ...ProbeFunc) InfoOption {
	return func(ih *InfoHandler) {
		ih.livenessChecks = compactChecks(checks)
	}
}

// WithReadinessChecks replaces the readiness checks with the supplied functions.
func WithReadinessChecks(checks ...ProbeFunc) InfoOption {
	return func(ih *InfoHandler) {
		ih.readinessChecks = compactChecks(checks)
	}
}

// WithUIType selects the documentation viewer. Unknown values fall back to
// Stoplight Elements.
func WithUIType(uiType UIType) InfoOption {
	return func(ih *InfoHandler) {
		ih.uiType = uiType
		ih.openapiTemplate = templateFor(uiType)
	}
}

func defaultTemplateDataProvider(_ *http.Request, baseURL string) any {
	return map[string]any{
		"BaseURL": baseURL,
		"SpecURL": OpenAPISpecURL(baseURL),
	}
}
