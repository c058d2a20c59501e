package itf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Variant tags recognised in single-key objects.
const (
	TagBigInt         = "#bigint"
	TagMap            = "#map"
	TagSet            = "#set"
	TagTuple          = "#tup"
	TagUnserializable = "#unserializable"
)

// DecodeError locates a malformed value inside a document.
type DecodeError struct {
	// Pointer is the JSON pointer (RFC 6901) of the offending value.
	Pointer string
	Err     error
}

func (e *DecodeError) Error() string {
	ptr := e.Pointer
	if ptr == "" {
		ptr = "/"
	}
	return fmt.Sprintf("at %s: %v", ptr, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses a JSON document into a Value tree.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %v", ErrMalformedValue, err)}
	}
	if dec.More() {
		return nil, &DecodeError{Err: fmt.Errorf("%w: trailing data after document", ErrMalformedValue)}
	}
	return FromJSON(raw)
}

// FromJSON converts a value produced by encoding/json (decoded with
// UseNumber) into a Value tree.
func FromJSON(raw any) (Value, error) {
	return convert(raw, "")
}

func convert(raw any, ptr string) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return nil, &DecodeError{Pointer: ptr, Err: fmt.Errorf("%w: null is not an ITF value", ErrMalformedValue)}
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		return convertNumber(v, ptr)
	case float64:
		return nil, &DecodeError{Pointer: ptr, Err: fmt.Errorf("%w: float %v (decode with UseNumber)", ErrMalformedValue, v)}
	case []any:
		elems, err := convertElems(v, ptr)
		if err != nil {
			return nil, err
		}
		return List(elems), nil
	case map[string]any:
		if len(v) == 1 {
			for tag, payload := range v {
				if strings.HasPrefix(tag, "#") && tag != "#meta" {
					return convertTagged(tag, payload, ptr)
				}
			}
		}
		rec := make(Record, len(v))
		for k, elem := range v {
			val, err := convert(elem, ptr+"/"+escapePointer(k))
			if err != nil {
				return nil, err
			}
			rec[k] = val
		}
		return rec, nil
	default:
		return nil, &DecodeError{Pointer: ptr, Err: fmt.Errorf("%w: unsupported type %T", ErrMalformedValue, raw)}
	}
}

// convertNumber accepts plain JSON integers as BigInt and rejects anything
// with a fraction or exponent.
func convertNumber(n json.Number, ptr string) (Value, error) {
	s := string(n)
	if strings.ContainsAny(s, ".eE") {
		return nil, &DecodeError{Pointer: ptr, Err: fmt.Errorf("%w: floats are not allowed: %s", ErrMalformedValue, s)}
	}
	b, err := ParseBigInt(s)
	if err != nil {
		return nil, &DecodeError{Pointer: ptr, Err: err}
	}
	return b, nil
}

func convertTagged(tag string, payload any, ptr string) (Value, error) {
	at := ptr + "/" + escapePointer(tag)

	switch tag {
	case TagBigInt:
		s, ok := payload.(string)
		if !ok {
			return nil, &DecodeError{Pointer: at, Err: fmt.Errorf("%w: payload must be a string, got %T", ErrMalformedBigInt, payload)}
		}
		b, err := ParseBigInt(s)
		if err != nil {
			return nil, &DecodeError{Pointer: at, Err: err}
		}
		return b, nil

	case TagUnserializable:
		s, ok := payload.(string)
		if !ok {
			return nil, &DecodeError{Pointer: at, Err: fmt.Errorf("%w: %s payload must be a string", ErrMalformedValue, tag)}
		}
		return Unserializable(s), nil

	case TagTuple, TagSet:
		list, ok := payload.([]any)
		if !ok {
			return nil, &DecodeError{Pointer: at, Err: fmt.Errorf("%w: %s payload must be a list", ErrMalformedValue, tag)}
		}
		elems, err := convertElems(list, at)
		if err != nil {
			return nil, err
		}
		if tag == TagTuple {
			return Tuple(elems), nil
		}
		return Set(elems), nil

	case TagMap:
		list, ok := payload.([]any)
		if !ok {
			return nil, &DecodeError{Pointer: at, Err: fmt.Errorf("%w: %s payload must be a list of pairs", ErrMalformedValue, tag)}
		}
		m := make(Map, 0, len(list))
		for i, item := range list {
			itemPtr := fmt.Sprintf("%s/%d", at, i)
			pair, ok := item.([]any)
			if !ok || len(pair) != 2 {
				return nil, &DecodeError{Pointer: itemPtr, Err: fmt.Errorf("%w: map entry must be a [key, value] pair", ErrMalformedValue)}
			}
			key, err := convert(pair[0], itemPtr+"/0")
			if err != nil {
				return nil, err
			}
			val, err := convert(pair[1], itemPtr+"/1")
			if err != nil {
				return nil, err
			}
			m = append(m, MapEntry{Key: key, Value: val})
		}
		return m, nil

	default:
		// Unknown tags are kept as ordinary single-field records.
		val, err := convert(payload, at)
		if err != nil {
			return nil, err
		}
		return Record{tag: val}, nil
	}
}

func convertElems(list []any, ptr string) ([]Value, error) {
	elems := make([]Value, len(list))
	for i, elem := range list {
		val, err := convert(elem, fmt.Sprintf("%s/%d", ptr, i))
		if err != nil {
			return nil, err
		}
		elems[i] = val
	}
	return elems, nil
}

// escapePointer escapes a key for use as a JSON pointer token.
func escapePointer(key string) string {
	key = strings.ReplaceAll(key, "~", "~0")
	return strings.ReplaceAll(key, "/", "~1")
}
