package store

import (
	"fmt"

	"github.com/roach88/bankmbt/internal/itf"
)

// marshalValue converts an ITF value to canonical JSON TEXT for storage.
func marshalValue(v itf.Value) (string, error) {
	data, err := itf.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return string(data), nil
}

// marshalArgs stores nil args as an empty record.
func marshalArgs(args itf.Record) (string, error) {
	if args == nil {
		return "{}", nil
	}
	data, err := itf.MarshalCanonical(args)
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(data), nil
}

func unmarshalValue(data string) (itf.Value, error) {
	v, err := itf.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return v, nil
}

func unmarshalArgs(data string) (itf.Record, error) {
	if data == "" || data == "{}" {
		return itf.Record{}, nil
	}
	v, err := itf.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	rec, ok := v.(itf.Record)
	if !ok {
		return nil, fmt.Errorf("unmarshal args: want record, got %s", itf.KindOf(v))
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
