package bank

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Investment is a purchased position. It is never removed once created.
type Investment struct {
	Owner  string `json:"owner"`
	Amount int64  `json:"amount"`
}

// State is the mutable ledger for one trace.
type State struct {
	Balances    map[string]int64     `json:"balances"`
	Investments map[int64]Investment `json:"investments"`
	NextID      int64                `json:"next_id"`
}

// NewState returns an empty ledger with NextID 0.
func NewState() *State {
	return &State{
		Balances:    make(map[string]int64),
		Investments: make(map[int64]Investment),
	}
}

// Balance returns the balance of account. An absent account is created
// with balance 0 before it is read.
func (s *State) Balance(account string) int64 {
	if s.Balances == nil {
		s.Balances = make(map[string]int64)
	}
	bal, ok := s.Balances[account]
	if !ok {
		s.Balances[account] = 0
	}
	return bal
}

// fits reports whether delta can be added to the balance of account
// without leaving the int64 range. It creates the account if absent.
func (s *State) fits(account string, delta int64) bool {
	bal := s.Balance(account)
	sum := bal + delta
	return !(delta > 0 && sum < bal) && !(delta < 0 && sum > bal)
}

// adjust adds delta to the balance of account, creating it if absent. On
// overflow it reports false and leaves the balance unchanged.
func (s *State) adjust(account string, delta int64) bool {
	if !s.fits(account, delta) {
		return false
	}
	s.Balances[account] += delta
	return true
}

// HasInvestment reports whether id is present. It never creates a record.
func (s *State) HasInvestment(id int64) bool {
	_, ok := s.Investments[id]
	return ok
}

// Equal reports whether both ledgers hold exactly the same balances
// (including zero-balance keys), investments and next id.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.NextID == other.NextID &&
		maps.Equal(s.Balances, other.Balances) &&
		maps.Equal(s.Investments, other.Investments)
}

// Clone returns a deep copy of the ledger.
func (s *State) Clone() *State {
	c := &State{
		Balances:    make(map[string]int64, len(s.Balances)),
		Investments: make(map[int64]Investment, len(s.Investments)),
		NextID:      s.NextID,
	}
	maps.Copy(c.Balances, s.Balances)
	maps.Copy(c.Investments, s.Investments)
	return c
}

// String renders the ledger with keys in ascending order, e.g.
//
//	balances: {alice: 40}; investments: {0: {owner: alice, amount: 10}}; next_id: 1
func (s *State) String() string {
	if s == nil {
		return "<nil>"
	}
	var b strings.Builder

	b.WriteString("balances: {")
	for i, account := range slices.Sorted(maps.Keys(s.Balances)) {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %d", account, s.Balances[account])
	}

	b.WriteString("}; investments: {")
	for i, id := range slices.Sorted(maps.Keys(s.Investments)) {
		if i > 0 {
			b.WriteString(", ")
		}
		inv := s.Investments[id]
		fmt.Fprintf(&b, "%d: {owner: %s, amount: %d}", id, inv.Owner, inv.Amount)
	}

	fmt.Fprintf(&b, "}; next_id: %d", s.NextID)
	return b.String()
}
