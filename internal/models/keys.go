package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// CheckKeys walks the top-level keys of the JSON object in body. Every name in
// fields must appear exactly once, spelled exactly. No key may repeat. With
// exact set no other key is allowed; otherwise other keys pass unless they
// differ from one of fields only by case.
func CheckKeys(body []byte, fields []string, exact bool) error {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: body must be a JSON object", ErrMalformed)
	}

	known := make(map[string]bool, len(fields))
	for _, name := range fields {
		known[name] = true
	}

	seen := make(map[string]bool, len(fields))
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: object key is not a string", ErrMalformed)
		}
		if seen[key] {
			return fmt.Errorf("%w: duplicate field %q", ErrMalformed, key)
		}
		seen[key] = true

		if !known[key] {
			if exact {
				return fmt.Errorf("%w: %q", ErrUnknownField, key)
			}
			if name, ok := foldMatch(key, fields); ok {
				return fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownField, key, name)
			}
		}

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var missing []string
	for _, name := range fields {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

func foldMatch(key string, fields []string) (string, bool) {
	for _, name := range fields {
		if strings.EqualFold(key, name) {
			return name, true
		}
	}
	return "", false
}

// jsonFields lists the JSON names of the fields of the struct v points to.
// It returns nil for anything that is not a struct.
func jsonFields(v interface{}) []string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if !fld.IsExported() {
			continue
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			continue
		case "":
			name = fld.Name
		}
		names = append(names, name)
	}
	return names
}
