// Package trace decodes trace fixtures into ledger states and typed actions.
//
// A fixture is one JSON document produced by a model checker:
//
//	{
//	  "#meta": {...},
//	  "vars": ["bank_state", ...],
//	  "states": [
//	    {
//	      "bank_state": {"balances": {"#map": [...]}, "investments": {"#map": [...]}, "next_id": {"#bigint": "0"}},
//	      "mbt::actionTaken": "init",
//	      "mbt::nondetPicks": {},
//	      "error": {"tag": "None", "value": {"#tup": []}}
//	    },
//	    {
//	      "bank_state": {...},
//	      "mbt::actionTaken": "deposit_action",
//	      "mbt::nondetPicks": {"depositor": {"tag": "Some", "value": "alice"}, "amount": {"tag": "Some", "value": {"#bigint": "50"}}},
//	      "error": {"tag": "None", "value": {"#tup": []}}
//	    }
//	  ]
//	}
//
// Decoding happens in three passes: the bytes are parsed into itf values,
// the document shape is checked against an embedded CUE schema, and the
// states are converted into bank.State values and Action values. Tagged
// values never leave this package.
//
// Failures are reported as *DecodeError (bad content) or *LoadError (the
// file could not be read). Both are harness errors, never conformance
// mismatches.
package trace
