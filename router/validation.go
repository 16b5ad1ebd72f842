package router

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	oapiMW "github.com/oapi-codegen/nethttp-middleware"

	"github.com/drblury/dishweaver/responder"
)

// oapiMiddleware validates requests against swagger. Request errors are
// reported as 422 with one invalid param per offending input so they line
// up with handler-side validation. Unknown routes surface as 404 and known
// routes called with another method as 405.
func oapiMiddleware(swagger *openapi3.T, validateBodies bool, writeProblem ProblemWriter) Middleware {
	return func(next http.Handler) http.Handler {
		validatorOptions := &oapiMW.Options{
			Options: openapi3filter.Options{
				ExcludeRequestBody: !validateBodies,
				MultiError:         true,
				AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error {
					return nil
				},
			},
			// We don't know how this thing will be run, so skip matching
			// the request host against the document's servers.
			DoNotValidateServers: true,
			ErrorHandlerWithOpts: func(_ context.Context, err error, w http.ResponseWriter, r *http.Request, opts oapiMW.ErrorHandlerOpts) {
				status := opts.StatusCode
				switch {
				case errors.Is(err, routers.ErrMethodNotAllowed):
					status = http.StatusMethodNotAllowed
				case status == http.StatusBadRequest:
					status = http.StatusUnprocessableEntity
					err = newRequestValidationError(err)
				}
				writeProblem(w, r, status, err)
			},
		}

		return oapiMW.OapiRequestValidatorWithOptions(swagger, validatorOptions)(next)
	}
}

// RequestValidationError lists every input the validator rejected.
type RequestValidationError struct {
	err    error
	params []responder.InvalidParam
}

func newRequestValidationError(err error) *RequestValidationError {
	return &RequestValidationError{err: err, params: collectInvalidParams(err, "")}
}

// Error returns the first line of the validator's message.
func (e *RequestValidationError) Error() string {
	msg, _, _ := strings.Cut(e.err.Error(), "\n")
	return msg
}

func (e *RequestValidationError) Unwrap() error {
	return e.err
}

// InvalidParams exposes the rejected inputs to the responder.
func (e *RequestValidationError) InvalidParams() []responder.InvalidParam {
	return e.params
}

// collectInvalidParams flattens validator errors. name is the input the
// error belongs to: a parameter name, or "" for the request body, whose
// entries are named by their JSON pointer instead.
func collectInvalidParams(err error, name string) []responder.InvalidParam {
	switch e := err.(type) {
	case openapi3.MultiError:
		var params []responder.InvalidParam
		for _, inner := range e {
			params = append(params, collectInvalidParams(inner, name)...)
		}
		return params
	case *openapi3filter.RequestError:
		if e.Parameter != nil {
			name = e.Parameter.Name
		}
		if e.Err == nil {
			return []responder.InvalidParam{{Name: inputName(name, nil), Reason: e.Reason, Type: "invalid"}}
		}
		return collectInvalidParams(e.Err, name)
	case *openapi3.SchemaError:
		typ := e.SchemaField
		if typ == "required" {
			typ = "missing"
		}
		return []responder.InvalidParam{{Name: inputName(name, e.JSONPointer()), Reason: e.Reason, Type: typ}}
	case *openapi3filter.ParseError:
		reason := e.Reason
		if reason == "" {
			reason = e.Error()
		}
		return []responder.InvalidParam{{Name: inputName(name, nil), Reason: reason, Type: "parsing"}}
	}
	return []responder.InvalidParam{{Name: inputName(name, nil), Reason: err.Error(), Type: "invalid"}}
}

func inputName(name string, pointer []string) string {
	parts := make([]string, 0, len(pointer)+1)
	if name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, pointer...)
	if len(parts) == 0 {
		return "body"
	}
	return strings.Join(parts, ".")
}
