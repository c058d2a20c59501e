package bank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerWith(balances map[string]int64) *State {
	s := NewState()
	for k, v := range balances {
		s.Balances[k] = v
	}
	return s
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		name     string
		start    map[string]int64
		amount   int64
		outcome  Outcome
		balances map[string]int64
	}{
		{"new account", nil, 50, OK, map[string]int64{"alice": 50}},
		{"existing account", map[string]int64{"alice": 5}, 50, OK, map[string]int64{"alice": 55}},
		{"zero amount", nil, 0, AmountNotPositive, map[string]int64{}},
		{"negative amount", map[string]int64{"alice": 5}, -3, AmountNotPositive, map[string]int64{"alice": 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ledgerWith(tt.start)
			assert.Equal(t, tt.outcome, Deposit(s, "alice", tt.amount))
			assert.Equal(t, tt.balances, s.Balances)
		})
	}
}

func TestWithdraw(t *testing.T) {
	tests := []struct {
		name     string
		start    map[string]int64
		amount   int64
		outcome  Outcome
		balances map[string]int64
	}{
		{"sufficient", map[string]int64{"alice": 50}, 20, OK, map[string]int64{"alice": 30}},
		{"exact", map[string]int64{"alice": 50}, 50, OK, map[string]int64{"alice": 0}},
		{"too low", map[string]int64{"alice": 10}, 20, InsufficientBalance, map[string]int64{"alice": 10}},
		{"unknown account materialised", nil, 20, InsufficientBalance, map[string]int64{"alice": 0}},
		{"zero from unknown account", nil, 0, OK, map[string]int64{"alice": 0}},
		{"negative amount credits", map[string]int64{"alice": 10}, -5, OK, map[string]int64{"alice": 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ledgerWith(tt.start)
			assert.Equal(t, tt.outcome, Withdraw(s, "alice", tt.amount))
			assert.Equal(t, tt.balances, s.Balances)
		})
	}
}

func TestTransfer(t *testing.T) {
	tests := []struct {
		name     string
		start    map[string]int64
		sender   string
		receiver string
		amount   int64
		outcome  Outcome
		balances map[string]int64
	}{
		{
			name: "moves funds", start: map[string]int64{"alice": 50},
			sender: "alice", receiver: "bob", amount: 20,
			outcome: OK, balances: map[string]int64{"alice": 30, "bob": 20},
		},
		{
			name: "non-positive amount touches nothing", start: map[string]int64{},
			sender: "alice", receiver: "bob", amount: 0,
			outcome: AmountNotPositive, balances: map[string]int64{},
		},
		{
			name: "insufficient materialises sender only", start: map[string]int64{},
			sender: "alice", receiver: "bob", amount: 5,
			outcome: InsufficientBalance, balances: map[string]int64{"alice": 0},
		},
		{
			name: "self transfer", start: map[string]int64{"alice": 50},
			sender: "alice", receiver: "alice", amount: 50,
			outcome: OK, balances: map[string]int64{"alice": 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ledgerWith(tt.start)
			assert.Equal(t, tt.outcome, Transfer(s, tt.sender, tt.receiver, tt.amount))
			assert.Equal(t, tt.balances, s.Balances)
		})
	}
}

func TestBuyInvestment(t *testing.T) {
	s := ledgerWith(map[string]int64{"alice": 100})

	require.Equal(t, OK, BuyInvestment(s, "alice", 30))
	require.Equal(t, OK, BuyInvestment(s, "alice", 20))

	assert.Equal(t, int64(50), s.Balances["alice"])
	assert.Equal(t, int64(2), s.NextID)
	assert.Equal(t, map[int64]Investment{
		0: {Owner: "alice", Amount: 30},
		1: {Owner: "alice", Amount: 20},
	}, s.Investments)
}

func TestBuyInvestmentFailures(t *testing.T) {
	s := ledgerWith(map[string]int64{"alice": 10})

	assert.Equal(t, AmountNotPositive, BuyInvestment(s, "alice", 0))
	assert.Equal(t, InsufficientBalance, BuyInvestment(s, "alice", 11))
	assert.Equal(t, InsufficientBalance, BuyInvestment(s, "bob", 1))

	assert.Empty(t, s.Investments)
	assert.Equal(t, int64(0), s.NextID)
	assert.Equal(t, map[string]int64{"alice": 10, "bob": 0}, s.Balances)
}

func TestSellInvestment(t *testing.T) {
	s := ledgerWith(map[string]int64{"alice": 100})
	require.Equal(t, OK, BuyInvestment(s, "alice", 40))

	assert.Equal(t, OK, SellInvestment(s, "alice", 0))
	assert.Equal(t, int64(100), s.Balances["alice"])
	assert.True(t, s.HasInvestment(0), "sold investment stays in the ledger")
}

// The reference model never guards resales or ownership. Reselling the same
// id credits the seller again, and a stranger can sell someone else's
// investment. Both are asserted by recorded traces.
func TestSellInvestmentResaleQuirk(t *testing.T) {
	s := ledgerWith(map[string]int64{"alice": 100})
	require.Equal(t, OK, BuyInvestment(s, "alice", 40))

	require.Equal(t, OK, SellInvestment(s, "alice", 0))
	require.Equal(t, OK, SellInvestment(s, "alice", 0))
	require.Equal(t, OK, SellInvestment(s, "mallory", 0))

	assert.Equal(t, int64(140), s.Balances["alice"])
	assert.Equal(t, int64(40), s.Balances["mallory"])
	assert.Equal(t, int64(1), s.NextID)
}

func TestSellInvestmentUnknown(t *testing.T) {
	s := ledgerWith(map[string]int64{"alice": 100})

	assert.Equal(t, UnknownInvestment, SellInvestment(s, "alice", 7))
	assert.Equal(t, UnknownInvestment, SellInvestment(s, "bob", 0))
	assert.Equal(t, map[string]int64{"alice": 100}, s.Balances)
	assert.Empty(t, s.Investments)
}

func TestOutcomeMessages(t *testing.T) {
	assert.Equal(t, "Amount should be greater than zero", string(AmountNotPositive))
	assert.Equal(t, "Balance is too low", string(InsufficientBalance))
	assert.Equal(t, "No investment with this id", string(UnknownInvestment))
	assert.Equal(t, "Balance would overflow", string(BalanceOverflow))
	assert.False(t, OK.Failed())
	assert.True(t, InsufficientBalance.Failed())
}

func TestTransitionsOnZeroState(t *testing.T) {
	var s State

	assert.Equal(t, OK, Deposit(&s, "alice", 10))
	assert.Equal(t, OK, BuyInvestment(&s, "alice", 10))
	assert.Equal(t, map[string]int64{"alice": 0}, s.Balances)
	assert.Len(t, s.Investments, 1)
}

// Balances are int64. A transition whose result leaves that range is
// refused and the ledger is left as it was.
func TestBalanceOverflow(t *testing.T) {
	tests := []struct {
		name  string
		start map[string]int64
		apply func(s *State) Outcome
	}{
		{"deposit", map[string]int64{"alice": math.MaxInt64}, func(s *State) Outcome {
			return Deposit(s, "alice", 1)
		}},
		{"withdraw negative amount", map[string]int64{"alice": math.MaxInt64}, func(s *State) Outcome {
			return Withdraw(s, "alice", -1)
		}},
		{"withdraw min int64", map[string]int64{"alice": 0}, func(s *State) Outcome {
			return Withdraw(s, "alice", math.MinInt64)
		}},
		{"transfer to full receiver", map[string]int64{"alice": 10, "bob": math.MaxInt64 - 5}, func(s *State) Outcome {
			return Transfer(s, "alice", "bob", 10)
		}},
		{"sell onto full seller", map[string]int64{"alice": math.MaxInt64}, func(s *State) Outcome {
			s.Investments[0] = Investment{Owner: "bob", Amount: 1}
			s.NextID = 1
			return SellInvestment(s, "alice", 0)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ledgerWith(tt.start)
			assert.Equal(t, BalanceOverflow, tt.apply(s))
			assert.Equal(t, tt.start, s.Balances)
		})
	}
}

func TestDepositUpToMaxInt64(t *testing.T) {
	s := ledgerWith(map[string]int64{"alice": math.MaxInt64 - 1})
	assert.Equal(t, OK, Deposit(s, "alice", 1))
	assert.Equal(t, int64(math.MaxInt64), s.Balances["alice"])
	assert.Equal(t, BalanceOverflow, Deposit(s, "alice", 1))
	assert.Equal(t, int64(math.MaxInt64), s.Balances["alice"])
}

func TestSelfTransferAtMaxInt64(t *testing.T) {
	s := ledgerWith(map[string]int64{"alice": math.MaxInt64})
	assert.Equal(t, OK, Transfer(s, "alice", "alice", 5))
	assert.Equal(t, int64(math.MaxInt64), s.Balances["alice"])
}
