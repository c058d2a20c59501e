package trace

import (
	"fmt"
	"os"

	"github.com/roach88/bankmbt/internal/bank"
	"github.com/roach88/bankmbt/internal/itf"
)

// Keys read from each recorded state. The generator writes the
// double-colon form; the underscore form is accepted as an alias.
const (
	keyBankState   = "bank_state"
	keyActionTaken = "mbt::actionTaken"
	keyNondetPicks = "mbt::nondetPicks"
	keyError       = "error"

	aliasActionTaken = "mbt_actionTaken"
	aliasNondetPicks = "mbt_nondetPicks"
)

// Decoder turns fixture documents into Fixtures.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	schema *Schema
}

// NewDecoder compiles the fixture schema and returns a Decoder.
func NewDecoder() (*Decoder, error) {
	schema, err := NewSchema()
	if err != nil {
		return nil, err
	}
	return &Decoder{schema: schema}, nil
}

// Load reads and decodes the fixture at entry.Path. A Missing entry
// fails with a LoadError wrapping os.ErrNotExist.
func (d *Decoder) Load(entry Entry) (*Fixture, error) {
	if entry.Missing {
		return nil, &LoadError{Index: entry.Index, Path: entry.Path, Err: os.ErrNotExist}
	}
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return nil, &LoadError{Index: entry.Index, Path: entry.Path, Err: err}
	}
	f, err := d.Decode(data, entry.Path)
	if err != nil {
		return nil, err
	}
	f.Index = entry.Index
	return f, nil
}

// Decode decodes one fixture document. path is used in error messages.
func (d *Decoder) Decode(data []byte, path string) (*Fixture, error) {
	doc, err := itf.Decode(data)
	if err != nil {
		return nil, &DecodeError{Kind: kindFor(err), Path: path, Step: -1, Err: err}
	}

	if d.schema != nil {
		if err := d.schema.Validate(data, path); err != nil {
			return nil, err
		}
	}

	root, ok := doc.(itf.Record)
	if !ok {
		return nil, &DecodeError{Kind: KindMalformedFixture, Path: path, Step: -1,
			Message: fmt.Sprintf("document must be a record, got %s", itf.KindOf(doc))}
	}
	rawStates, ok := root["states"].(itf.List)
	if !ok || len(rawStates) == 0 {
		return nil, &DecodeError{Kind: KindMalformedFixture, Path: path, Step: -1, Field: "states",
			Message: "must be a non-empty list"}
	}

	f := &Fixture{Path: path, Steps: make([]Step, 0, len(rawStates))}
	for i, raw := range rawStates {
		step, err := decodeStep(raw, path, i)
		if err != nil {
			return nil, err
		}
		f.Steps = append(f.Steps, step)
	}
	return f, nil
}

func decodeStep(raw itf.Value, path string, i int) (Step, error) {
	rec, ok := raw.(itf.Record)
	if !ok {
		return Step{}, &DecodeError{Kind: KindMalformedFixture, Path: path, Step: i,
			Message: fmt.Sprintf("state must be a record, got %s", itf.KindOf(raw))}
	}

	bankState, ok := rec[keyBankState]
	if !ok {
		return Step{}, &DecodeError{Kind: KindMalformedFixture, Path: path, Step: i, Field: keyBankState, Message: "missing"}
	}
	expected, err := DecodeState(bankState)
	if err != nil {
		return Step{}, stepError(path, i, keyBankState, err)
	}

	expectedErr, err := decodeOutcome(rec[keyError])
	if err != nil {
		return Step{}, stepError(path, i, keyError, err)
	}

	action, err := decodeAction(rec, path, i)
	if err != nil {
		return Step{}, err
	}

	return Step{
		Index:         i,
		Action:        action,
		Expected:      expected,
		ExpectedError: expectedErr,
	}, nil
}

// DecodeState converts a bank_state record into a ledger state.
// Map entries are applied in wire order, so a repeated key keeps its
// last value.
func DecodeState(v itf.Value) (*bank.State, error) {
	rec, ok := v.(itf.Record)
	if !ok {
		return nil, fmt.Errorf("%w: bank state must be a record, got %s", itf.ErrWrongType, itf.KindOf(v))
	}

	s := bank.NewState()

	balances, err := mapField(rec, "balances")
	if err != nil {
		return nil, err
	}
	for i, e := range balances {
		account, err := itf.AsString(e.Key)
		if err != nil {
			return nil, fmt.Errorf("balances[%d] key: %w", i, err)
		}
		amount, err := itf.AsInt64(e.Value)
		if err != nil {
			return nil, fmt.Errorf("balances[%q]: %w", account, err)
		}
		s.Balances[account] = amount
	}

	investments, err := mapField(rec, "investments")
	if err != nil {
		return nil, err
	}
	for i, e := range investments {
		id, err := itf.AsInt64(e.Key)
		if err != nil {
			return nil, fmt.Errorf("investments[%d] key: %w", i, err)
		}
		inv, err := decodeInvestment(e.Value)
		if err != nil {
			return nil, fmt.Errorf("investments[%d]: %w", id, err)
		}
		s.Investments[id] = inv
	}

	nextID, ok := rec["next_id"]
	if !ok {
		return nil, fmt.Errorf("%w: next_id is missing", itf.ErrMalformedValue)
	}
	if s.NextID, err = itf.AsInt64(nextID); err != nil {
		return nil, fmt.Errorf("next_id: %w", err)
	}

	return s, nil
}

func mapField(rec itf.Record, name string) (itf.Map, error) {
	v, ok := rec[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s is missing", itf.ErrMalformedValue, name)
	}
	m, ok := v.(itf.Map)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a map, got %s", itf.ErrWrongType, name, itf.KindOf(v))
	}
	return m, nil
}

func decodeInvestment(v itf.Value) (bank.Investment, error) {
	rec, ok := v.(itf.Record)
	if !ok {
		return bank.Investment{}, fmt.Errorf("%w: investment must be a record, got %s", itf.ErrWrongType, itf.KindOf(v))
	}
	owner, err := itf.AsString(rec["owner"])
	if err != nil {
		return bank.Investment{}, fmt.Errorf("owner: %w", err)
	}
	amount, err := itf.AsInt64(rec["amount"])
	if err != nil {
		return bank.Investment{}, fmt.Errorf("amount: %w", err)
	}
	return bank.Investment{Owner: owner, Amount: amount}, nil
}

// decodeOutcome reads the optional error of a step. An absent field and a
// None option both mean no error; Some carries the message text.
func decodeOutcome(v itf.Value) (bank.Outcome, error) {
	if v == nil {
		return bank.OK, nil
	}
	payload, present, err := decodeOption(v)
	if err != nil || !present {
		return bank.OK, err
	}
	msg, err := itf.AsString(payload)
	if err != nil {
		return bank.OK, err
	}
	return bank.Outcome(msg), nil
}

// decodeOption reads {tag: "Some"|"None", value: ...}. A record without a
// tag but with a value, as nondeterministic picks sometimes are, counts as
// present.
func decodeOption(v itf.Value) (itf.Value, bool, error) {
	rec, ok := v.(itf.Record)
	if !ok {
		return nil, false, fmt.Errorf("%w: option must be a record, got %s", itf.ErrWrongType, itf.KindOf(v))
	}
	payload, hasValue := rec["value"]

	tag, hasTag := rec["tag"]
	if !hasTag {
		return payload, hasValue, nil
	}
	name, err := itf.AsString(tag)
	if err != nil {
		return nil, false, fmt.Errorf("tag: %w", err)
	}
	switch name {
	case "None":
		return nil, false, nil
	case "Some":
		if !hasValue {
			return nil, false, fmt.Errorf("%w: Some without a value", itf.ErrMalformedValue)
		}
		return payload, true, nil
	default:
		return nil, false, fmt.Errorf("%w: unknown option tag %q", itf.ErrMalformedValue, name)
	}
}

// field returns rec[key], falling back to rec[alias].
func field(rec itf.Record, key, alias string) (itf.Value, bool) {
	if v, ok := rec[key]; ok {
		return v, true
	}
	v, ok := rec[alias]
	return v, ok
}
