// Package itf decodes and encodes the tagged JSON values found in trace
// fixtures.
//
// Plain JSON carries strings, booleans, lists and records. Everything else
// is wrapped in a single-key object whose key names the variant:
//
//	{"#bigint": "-42"}                      arbitrary precision integer
//	{"#map": [[key, value], ...]}           map as an association list
//	{"#set": [v, ...]}                      set
//	{"#tup": [v, ...]}                      tuple
//	{"#unserializable": "<text>"}           value the generator could not encode
//
// Decode turns a document into a Value tree eagerly so callers never see
// raw JSON. MarshalCanonical writes a Value back out with sorted record keys,
// sorted and deduplicated map entries and set elements, and NFC-normalised
// strings, so two equal values always produce identical bytes.
//
// Key design constraints:
//   - No floats: fractional JSON numbers are rejected at decode time
//   - No null: JSON null is not an ITF value
//   - Maps keep their wire order; duplicate keys resolve last-write-wins
package itf
