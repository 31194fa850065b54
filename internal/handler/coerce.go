package handler

import (
	"encoding/json"
	"math"
	"strings"

	"catalog-api/internal/model"
	"catalog-api/internal/service"

	"github.com/spf13/cast"
)

// The helpers below turn loosely typed request fields into the typed
// commands the services accept. Each returns whether the key was present.

func (p *payload) has(key string) bool {
	_, ok := p.fields[key]
	return ok
}

// text returns the field as a string. A null field is the empty string.
func (p *payload) text(key string) (string, bool) {
	v, ok := p.fields[key]
	if !ok || v == nil {
		return "", ok
	}
	return cast.ToString(v), true
}

// optionalText returns nil for a missing, null, empty or "null" field.
func (p *payload) optionalText(key string) (*string, bool) {
	s, ok := p.text(key)
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil, ok
	}
	return &s, ok
}

// number parses a numeric field. Falsy values (null, "", 0, false) are
// absent and come back as nil; the string "0" is a real zero.
func (p *payload) number(key string) (*float64, bool, error) {
	v, ok := p.fields[key]
	if !ok {
		return nil, false, nil
	}

	var f float64
	switch x := v.(type) {
	case nil:
		return nil, true, nil
	case bool:
		if !x {
			return nil, true, nil
		}
		return nil, true, fieldError(key, key+" must be a number")
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, true, nil
		}
		parsed, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, true, fieldError(key, key+" must be a number")
		}
		f = parsed
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil, true, fieldError(key, key+" must be a number")
		}
		if parsed == 0 {
			return nil, true, nil
		}
		f = parsed
	default:
		parsed, err := cast.ToFloat64E(x)
		if err != nil {
			return nil, true, fieldError(key, key+" must be a number")
		}
		if parsed == 0 {
			return nil, true, nil
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, true, fieldError(key, key+" must be a finite number")
	}
	return &f, true, nil
}

// flag is true only for the boolean true or the string "true".
func (p *payload) flag(key string) (bool, bool) {
	v, ok := p.fields[key]
	return v == true || v == "true", ok
}

// features accepts a comma separated string or a list.
func (p *payload) features(key string) ([]string, bool) {
	v, ok := p.fields[key]
	if !ok {
		return nil, false
	}

	switch x := v.(type) {
	case nil:
		return []string{}, true
	case string:
		return splitList(x), true
	default:
		list, err := cast.ToStringSliceE(x)
		if err != nil {
			return []string{cast.ToString(x)}, true
		}
		return list, true
	}
}

// stringList accepts a list, a JSON array string, or a comma separated string.
func (p *payload) stringList(key string) ([]string, bool) {
	v, ok := p.fields[key]
	if !ok {
		return nil, false
	}
	return toStringList(v), true
}

// categoryIDs resolves every supported shape of category id input to a
// normalized list.
func (p *payload) categoryIDs(key string) ([]string, bool) {
	ids, ok := p.stringList(key)
	return service.NormalizeCategoryIDs(ids), ok
}

func toStringList(v any) []string {
	switch x := v.(type) {
	case nil:
		return []string{}
	case string:
		s := strings.TrimSpace(x)
		if strings.HasPrefix(s, "[") {
			var decoded []any
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				return cast.ToStringSlice(decoded)
			}
		}
		return splitList(s)
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			out = append(out, toStringList(item)...)
		}
		return out
	case []string:
		return x
	default:
		return []string{cast.ToString(x)}
	}
}

// status is inactive only for the literal "inactive".
func (p *payload) status(key string) (model.ProductStatus, bool) {
	v, ok := p.fields[key]
	if cast.ToString(v) == string(model.StatusInactive) {
		return model.StatusInactive, ok
	}
	return model.StatusActive, ok
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fieldError(field, message string) error {
	return model.ErrValidation.
		WithMessage(message).
		WithDetails(map[string]any{"fields": map[string]any{field: message}})
}
