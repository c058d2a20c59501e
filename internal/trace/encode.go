package trace

import (
	"maps"
	"slices"

	"github.com/roach88/bankmbt/internal/bank"
	"github.com/roach88/bankmbt/internal/itf"
)

// StateHashDomain separates ledger state hashes from other hashes.
const StateHashDomain = "bankmbt/state/v1"

// EncodeState converts a ledger state into its bank_state form.
// Keys are emitted in sorted order.
func EncodeState(s *bank.State) itf.Value {
	balances := make(itf.Map, 0, len(s.Balances))
	for _, account := range slices.Sorted(maps.Keys(s.Balances)) {
		balances = append(balances, itf.MapEntry{
			Key:   itf.String(account),
			Value: itf.NewBigInt(s.Balances[account]),
		})
	}

	investments := make(itf.Map, 0, len(s.Investments))
	for _, id := range slices.Sorted(maps.Keys(s.Investments)) {
		inv := s.Investments[id]
		investments = append(investments, itf.MapEntry{
			Key: itf.NewBigInt(id),
			Value: itf.Record{
				"owner":  itf.String(inv.Owner),
				"amount": itf.NewBigInt(inv.Amount),
			},
		})
	}

	return itf.Record{
		"balances":    balances,
		"investments": investments,
		"next_id":     itf.NewBigInt(s.NextID),
	}
}

// StateHash returns a content hash of s. Equal states hash equally.
func StateHash(s *bank.State) (string, error) {
	return itf.Hash(StateHashDomain, EncodeState(s))
}

// EncodeArgs converts the resolved arguments of a into an ITF record.
func EncodeArgs(a Action) itf.Record {
	args := a.Args()
	rec := make(itf.Record, len(args))
	for name, v := range args {
		switch v := v.(type) {
		case string:
			rec[name] = itf.String(v)
		case int64:
			rec[name] = itf.NewBigInt(v)
		}
	}
	return rec
}
