package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request errors. All of them are the caller's fault.
var (
	ErrMalformed    = errors.New("malformed request")
	ErrMissingField = errors.New("missing field")
	ErrUnknownField = errors.New("unknown field")
	ErrFieldType    = errors.New("field is not a number")
	ErrArity        = errors.New("wrong number of values")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// IsBadRequest reports whether err was caused by the request body
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrFieldType) ||
		errors.Is(err, ErrArity)
}

// Decode parses a single JSON value from body into v and checks the
// required fields. When v is a struct its field names are matched exactly,
// case included, and may not repeat. With strict set, fields v does not
// declare are rejected.
func Decode(body []byte, v interface{}, strict bool) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformed)
	}

	if fields := jsonFields(v); fields != nil {
		if err := CheckKeys(body, fields, strict); err != nil {
			return err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return classify(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after JSON value", ErrMalformed)
	}

	return Validate(v)
}

// Validate runs the struct's validate tags and names every missing field.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Field())
	}
	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(names, ", "))
}

func classify(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return fmt.Errorf("%w: body must be a JSON %s, got %s", ErrMalformed, kindName(typeErr.Type), typeErr.Value)
		}
		return fmt.Errorf("%w: %s (got %s)", ErrFieldType, typeErr.Field, typeErr.Value)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return fmt.Errorf("%w: %s", ErrUnknownField, strings.TrimPrefix(err.Error(), "json: unknown field "))
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return t.Kind().String()
	}
}
