package itf

import (
	"errors"
	"fmt"
	"math/big"
)

// Value is a sealed interface over the ITF variants.
// Only Bool, String, BigInt, List, Record, Tuple, Set, Map and
// Unserializable implement it.
type Value interface {
	itfValue()
}

// Bool is a JSON boolean.
type Bool bool

func (Bool) itfValue() {}

// String is a JSON string.
type String string

func (String) itfValue() {}

// BigInt is an integer of any size. The zero BigInt is 0.
type BigInt struct {
	n *big.Int
}

func (BigInt) itfValue() {}

// NewBigInt wraps n.
func NewBigInt(n int64) BigInt {
	return BigInt{n: big.NewInt(n)}
}

// ParseBigInt parses a base-10 integer with an optional sign.
func ParseBigInt(s string) (BigInt, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return BigInt{}, fmt.Errorf("%w: %q is not a base-10 integer", ErrMalformedBigInt, s)
	}
	return BigInt{n: n}, nil
}

// Big returns the integer as a *big.Int. The result must not be modified.
func (b BigInt) Big() *big.Int {
	if b.n == nil {
		return new(big.Int)
	}
	return b.n
}

// Int64 returns the integer if it fits in an int64.
func (b BigInt) Int64() (int64, error) {
	n := b.Big()
	if !n.IsInt64() {
		return 0, fmt.Errorf("%w: %s is out of int64 range", ErrMalformedBigInt, n)
	}
	return n.Int64(), nil
}

func (b BigInt) String() string {
	return b.Big().String()
}

// List is a JSON array.
type List []Value

func (List) itfValue() {}

// Record is a JSON object with no variant tag.
type Record map[string]Value

func (Record) itfValue() {}

// Tuple is a fixed-length sequence, encoded as {"#tup": [...]}.
type Tuple []Value

func (Tuple) itfValue() {}

// Set is encoded as {"#set": [...]}. Element order carries no meaning.
type Set []Value

func (Set) itfValue() {}

// MapEntry is one [key, value] pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is an association list encoded as {"#map": [[k, v], ...]}.
// Entries keep their wire order and may repeat a key.
type Map []MapEntry

func (Map) itfValue() {}

// Lookup returns the value bound to key. When the key repeats, the last
// entry wins.
func (m Map) Lookup(key Value) (Value, bool) {
	for i := len(m) - 1; i >= 0; i-- {
		if Equal(m[i].Key, key) {
			return m[i].Value, true
		}
	}
	return nil, false
}

// Unserializable is a placeholder the generator emits for values it cannot
// encode.
type Unserializable string

func (Unserializable) itfValue() {}

// Sentinel errors wrapped by decode and conversion failures.
var (
	ErrMalformedBigInt = errors.New("malformed bigint")
	ErrMalformedValue  = errors.New("malformed value")
	ErrWrongType       = errors.New("wrong value type")
)

// AsString returns v as a Go string.
func AsString(v Value) (string, error) {
	s, ok := v.(String)
	if !ok {
		return "", fmt.Errorf("%w: want string, got %s", ErrWrongType, KindOf(v))
	}
	return string(s), nil
}

// AsInt64 returns v as an int64. BigInt and nothing else is accepted.
func AsInt64(v Value) (int64, error) {
	b, ok := v.(BigInt)
	if !ok {
		return 0, fmt.Errorf("%w: want bigint, got %s", ErrWrongType, KindOf(v))
	}
	return b.Int64()
}

// AsBool returns v as a Go bool.
func AsBool(v Value) (bool, error) {
	b, ok := v.(Bool)
	if !ok {
		return false, fmt.Errorf("%w: want bool, got %s", ErrWrongType, KindOf(v))
	}
	return bool(b), nil
}

// KindOf names the variant of v for error messages.
func KindOf(v Value) string {
	switch v.(type) {
	case nil:
		return "nothing"
	case Bool:
		return "bool"
	case String:
		return "string"
	case BigInt:
		return "bigint"
	case List:
		return "list"
	case Record:
		return "record"
	case Tuple:
		return "tuple"
	case Set:
		return "set"
	case Map:
		return "map"
	case Unserializable:
		return "unserializable"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Equal reports whether a and b denote the same value. Maps and sets are
// compared as collections, not as sequences.
func Equal(a, b Value) bool {
	if ab, ok := a.(BigInt); ok {
		bb, ok := b.(BigInt)
		return ok && ab.Big().Cmp(bb.Big()) == 0
	}
	ca, err := MarshalCanonical(a)
	if err != nil {
		return false
	}
	cb, err := MarshalCanonical(b)
	if err != nil {
		return false
	}
	return string(ca) == string(cb)
}
