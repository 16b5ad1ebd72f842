package dish

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/drblury/dishweaver/jsonutil"
	"github.com/drblury/dishweaver/responder"
)

// Issue types reported in FieldError.Type.
const (
	IssueMissing      = "missing"
	IssueJSONInvalid  = "json_invalid"
	IssueIntParsing   = "int_parsing"
	IssueIntFromFloat = "int_from_float"
	IssueIntType      = "int_type"
	IssueFloatParsing = "float_parsing"
	IssueFloatType    = "float_type"
	IssueStringType   = "string_type"
)

// Wire names of the dish fields.
const (
	FieldID    = "id"
	FieldName  = "name"
	FieldPrice = "precio"
)

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ValidationError collects every problem found in a payload.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// InvalidParams exposes the field errors to the responder.
func (e *ValidationError) InvalidParams() []responder.InvalidParam {
	params := make([]responder.InvalidParam, 0, len(e.Errors))
	for _, fe := range e.Errors {
		params = append(params, responder.InvalidParam{
			Name:   fe.Field,
			Reason: fe.Message,
			Type:   fe.Type,
		})
	}
	return params
}

func (e *ValidationError) add(field, typ, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Type: typ, Message: msg})
}

func invalidBody(msg string) *ValidationError {
	verr := &ValidationError{}
	verr.add("body", IssueJSONInvalid, msg)
	return verr
}

// Decode reads a body holding exactly one JSON object and coerces it into a
// Dish. All fields are required; unknown fields are ignored.
func Decode(r io.Reader) (Dish, error) {
	if r == nil {
		return Dish{}, invalidBody("request body is required")
	}

	var raw any
	if err := jsonutil.DecodeNumberStrict(r, &raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Dish{}, invalidBody("request body is required")
		}
		return Dish{}, invalidBody(fmt.Sprintf("invalid JSON: %v", err))
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Dish{}, invalidBody("request body must be a JSON object")
	}
	return FromMap(obj)
}

// FromMap applies the coercion rules to an already decoded JSON object.
// Numbers may be json.Number or float64.
func FromMap(obj map[string]any) (Dish, error) {
	var (
		d    Dish
		verr ValidationError
	)

	if v, ok := present(obj, FieldID); !ok {
		verr.add(FieldID, IssueMissing, "field required")
	} else if id, typ, msg := coerceInt(v); typ != "" {
		verr.add(FieldID, typ, msg)
	} else {
		d.ID = id
	}

	if v, ok := present(obj, FieldName); !ok {
		verr.add(FieldName, IssueMissing, "field required")
	} else if s, isString := v.(string); !isString {
		verr.add(FieldName, IssueStringType, "input should be a valid string")
	} else {
		d.Name = s
	}

	if v, ok := present(obj, FieldPrice); !ok {
		verr.add(FieldPrice, IssueMissing, "field required")
	} else if price, typ, msg := coerceFloat(v); typ != "" {
		verr.add(FieldPrice, typ, msg)
	} else {
		d.Price = price
	}

	if len(verr.Errors) > 0 {
		return Dish{}, &verr
	}
	return d, nil
}

// ParseID converts a path segment into a dish id.
func ParseID(raw string) (int64, error) {
	id, typ, msg := coerceInt(raw)
	if typ != "" {
		verr := &ValidationError{}
		verr.add("dish_id", typ, msg)
		return 0, verr
	}
	return id, nil
}

// present treats explicit nulls the same as absent keys.
func present(obj map[string]any, key string) (any, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func coerceInt(v any) (int64, string, string) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, "", ""
		}
		f, err := t.Float64()
		if err != nil {
			return 0, IssueIntParsing, "input should be a valid integer"
		}
		return intFromFloat(f)
	case float64:
		return intFromFloat(t)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, IssueIntParsing, "input should be a valid integer, unable to parse string as an integer"
		}
		return i, "", ""
	}
	return 0, IssueIntType, "input should be a valid integer"
}

func intFromFloat(f float64) (int64, string, string) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, IssueIntParsing, "input should be a valid integer"
	}
	if f != math.Trunc(f) {
		return 0, IssueIntFromFloat, "input should be a valid integer, got a number with a fractional part"
	}
	return int64(f), "", ""
}

func coerceFloat(v any) (float64, string, string) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, IssueFloatType, "input should be a valid number"
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, IssueFloatParsing, "input should be a valid number, unable to parse as a finite number"
	}
	return f, "", ""
}
