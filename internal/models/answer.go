package models

import (
	"encoding/json"
	"sort"

	"gorm.io/datatypes"
)

// AnswerShape names the JSON shape a submitted answer must take for a question type.
type AnswerShape string

const (
	ShapeString         AnswerShape = "string"
	ShapeStringSet      AnswerShape = "string_set"
	ShapeStringSequence AnswerShape = "string_sequence"
	ShapeStringMap      AnswerShape = "string_map"
)

// AnswerSheet maps question id to the learner's raw answer. Values come either
// from decoded JSON (string, []any, map[string]any) or from typed Go values.
type AnswerSheet map[uint]any

// AnswerShapeFor returns the answer contract of a question type.
func AnswerShapeFor(t QuestionType) (AnswerShape, error) {
	switch t {
	case SingleChoice:
		return ShapeString, nil
	case MultipleChoice:
		return ShapeStringSet, nil
	case DragDrop:
		return ShapeStringSequence, nil
	case Matching:
		return ShapeStringMap, nil
	}
	return "", ErrUnknownQuestionType
}

// IsAnswerWellFormed reports whether candidate has the shape expected for t.
// It says nothing about correctness.
func IsAnswerWellFormed(t QuestionType, candidate any) bool {
	shape, err := AnswerShapeFor(t)
	if err != nil || candidate == nil {
		return false
	}

	switch shape {
	case ShapeString:
		_, ok := AsString(candidate)
		return ok
	case ShapeStringSet, ShapeStringSequence:
		_, ok := AsStringSlice(candidate)
		return ok
	case ShapeStringMap:
		_, ok := AsStringMap(candidate)
		return ok
	}
	return false
}

// AsString extracts a string answer. Raw JSON is decoded first.
func AsString(v any) (string, bool) {
	v, ok := unwrapRaw(v)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// AsStringSlice extracts a list of strings. Any non-string element fails the
// whole conversion.
func AsStringSlice(v any) ([]string, bool) {
	v, ok := unwrapRaw(v)
	if !ok {
		return nil, false
	}

	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// AsStringMap extracts a string to string mapping.
func AsStringMap(v any) (map[string]string, bool) {
	v, ok := unwrapRaw(v)
	if !ok {
		return nil, false
	}

	switch val := v.(type) {
	case map[string]string:
		return val, true
	case map[string]any:
		out := make(map[string]string, len(val))
		for k, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// AsMap extracts an object answer without constraining its values.
func AsMap(v any) (map[string]any, bool) {
	v, ok := unwrapRaw(v)
	if !ok {
		return nil, false
	}

	switch val := v.(type) {
	case map[string]any:
		return val, true
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out, true
	}
	return nil, false
}

// SortedCopy returns a sorted copy of items without touching the input.
func SortedCopy(items []string) []string {
	out := append([]string(nil), items...)
	sort.Strings(out)
	return out
}

func unwrapRaw(v any) (any, bool) {
	var raw []byte
	switch val := v.(type) {
	case nil:
		return nil, false
	case json.RawMessage:
		raw = val
	case datatypes.JSON:
		raw = val
	case []byte:
		raw = val
	default:
		return v, true
	}

	if len(raw) == 0 {
		return nil, false
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded == nil {
		return nil, false
	}
	return decoded, true
}
