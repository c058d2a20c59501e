package itf

import (
	"bytes"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces the canonical ITF JSON of v.
//
// Differences from encoding/json:
//  1. Record keys sorted by UTF-16 code units (RFC 8785)
//  2. No HTML escaping; only quote, backslash and control characters are escaped
//  3. Strings are NFC normalised
//  4. Map entries are deduplicated (last write wins) and sorted by key
//  5. Set elements are deduplicated and sorted
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("%w: cannot encode a missing value", ErrMalformedValue)
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case String:
		writeString(buf, string(val))
	case BigInt:
		writeTagged(buf, TagBigInt, func() error {
			writeString(buf, val.String())
			return nil
		})
	case Unserializable:
		writeTagged(buf, TagUnserializable, func() error {
			writeString(buf, string(val))
			return nil
		})
	case List:
		return writeArray(buf, val)
	case Tuple:
		return writeTaggedErr(buf, TagTuple, func() error { return writeArray(buf, val) })
	case Set:
		return writeTaggedErr(buf, TagSet, func() error { return writeSet(buf, val) })
	case Map:
		return writeTaggedErr(buf, TagMap, func() error { return writeMap(buf, val) })
	case Record:
		return writeRecord(buf, val)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrMalformedValue, v)
	}
	return nil
}

func writeTagged(buf *bytes.Buffer, tag string, body func() error) {
	_ = writeTaggedErr(buf, tag, body)
}

func writeTaggedErr(buf *bytes.Buffer, tag string, body func() error) error {
	buf.WriteByte('{')
	writeString(buf, tag)
	buf.WriteByte(':')
	if err := body(); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeArray(buf *bytes.Buffer, elems []Value) error {
	buf.WriteByte('[')
	for i, elem := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonical(buf, elem); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeSet(buf *bytes.Buffer, set Set) error {
	encoded := make([][]byte, 0, len(set))
	for i, elem := range set {
		b, err := MarshalCanonical(elem)
		if err != nil {
			return fmt.Errorf("set[%d]: %w", i, err)
		}
		encoded = append(encoded, b)
	}
	slices.SortFunc(encoded, bytes.Compare)
	encoded = slices.CompactFunc(encoded, bytes.Equal)

	buf.WriteByte('[')
	for i, b := range encoded {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return nil
}

type encodedEntry struct {
	key     Value
	keyJSON []byte
	valJSON []byte
}

func writeMap(buf *bytes.Buffer, m Map) error {
	byKey := make(map[string]int, len(m))
	entries := make([]encodedEntry, 0, len(m))
	for i, e := range m {
		k, err := MarshalCanonical(e.Key)
		if err != nil {
			return fmt.Errorf("map[%d] key: %w", i, err)
		}
		v, err := MarshalCanonical(e.Value)
		if err != nil {
			return fmt.Errorf("map[%d] value: %w", i, err)
		}
		entry := encodedEntry{key: e.Key, keyJSON: k, valJSON: v}
		if at, dup := byKey[string(k)]; dup {
			entries[at] = entry
			continue
		}
		byKey[string(k)] = len(entries)
		entries = append(entries, entry)
	}
	slices.SortFunc(entries, compareEntries)

	buf.WriteByte('[')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		buf.Write(e.keyJSON)
		buf.WriteByte(',')
		buf.Write(e.valJSON)
		buf.WriteByte(']')
	}
	buf.WriteByte(']')
	return nil
}

// compareEntries orders integer keys numerically and everything else by
// canonical bytes.
func compareEntries(a, b encodedEntry) int {
	ai, aok := a.key.(BigInt)
	bi, bok := b.key.(BigInt)
	if aok && bok {
		return ai.Big().Cmp(bi.Big())
	}
	return bytes.Compare(a.keyJSON, b.keyJSON)
}

func writeRecord(buf *bytes.Buffer, rec Record) error {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, k)
		buf.WriteByte(':')
		if err := writeCanonical(buf, rec[k]); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
// Go's default string comparison uses UTF-8 bytes, which orders
// supplementary-plane characters differently.
func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

const hexDigits = "0123456789abcdef"

// writeString writes s as an NFC normalised JSON string.
func writeString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[r>>4])
				buf.WriteByte(hexDigits[r&0xf])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
