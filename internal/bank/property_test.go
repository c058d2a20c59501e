package bank

import (
	"maps"
	"testing"

	"pgregory.net/rapid"
)

var accounts = []string{"alice", "bob", "charlie", "eve"}

func genAccount() *rapid.Generator[string] {
	return rapid.SampledFrom(accounts)
}

func genState() *rapid.Generator[*State] {
	return rapid.Custom(func(t *rapid.T) *State {
		s := NewState()
		maps.Copy(s.Balances, rapid.MapOf(genAccount(), rapid.Int64Range(0, 1_000)).Draw(t, "balances"))
		n := rapid.IntRange(0, 4).Draw(t, "investments")
		for i := 0; i < n; i++ {
			s.Investments[int64(i)] = Investment{
				Owner:  genAccount().Draw(t, "owner"),
				Amount: rapid.Int64Range(1, 500).Draw(t, "amount"),
			}
		}
		s.NextID = int64(n)
		return s
	})
}

func TestPropertyDepositAddsExactly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genState().Draw(t, "state")
		a := genAccount().Draw(t, "account")
		n := rapid.Int64Range(1, 1_000).Draw(t, "n")
		before := s.Balances[a]

		if got := Deposit(s, a, n); got != OK {
			t.Fatalf("deposit(%s, %d) = %q, want no error", a, n, got)
		}
		if s.Balances[a] != before+n {
			t.Fatalf("balance %d, want %d", s.Balances[a], before+n)
		}
	})
}

func TestPropertyDepositRejectsNonPositive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genState().Draw(t, "state")
		before := s.Clone()
		a := rapid.SampledFrom(append(accounts, "zed")).Draw(t, "account")
		n := rapid.Int64Range(-1_000, 0).Draw(t, "n")

		if got := Deposit(s, a, n); got != AmountNotPositive {
			t.Fatalf("deposit(%s, %d) = %q", a, n, got)
		}
		if !s.Equal(before) {
			t.Fatalf("state changed: %s -> %s", before, s)
		}
	})
}

func TestPropertyWithdrawTooMuchLeavesBalance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genState().Draw(t, "state")
		a := genAccount().Draw(t, "account")
		before := s.Balances[a]
		n := before + rapid.Int64Range(1, 1_000).Draw(t, "excess")

		if got := Withdraw(s, a, n); got != InsufficientBalance {
			t.Fatalf("withdraw(%s, %d) = %q", a, n, got)
		}
		if s.Balances[a] != before {
			t.Fatalf("balance %d, want %d", s.Balances[a], before)
		}
	})
}

func TestPropertyTransferConservesSum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genState().Draw(t, "state")
		from := genAccount().Draw(t, "sender")
		to := genAccount().Draw(t, "receiver")
		n := rapid.Int64Range(-10, 1_500).Draw(t, "n")
		sum := s.Balances[from] + s.Balances[to]
		if from == to {
			sum = s.Balances[from]
		}
		sufficient := n > 0 && s.Balances[from] >= n

		got := Transfer(s, from, to, n)

		after := s.Balances[from] + s.Balances[to]
		if from == to {
			after = s.Balances[from]
		}
		if after != sum {
			t.Fatalf("sum %d -> %d (outcome %q)", sum, after, got)
		}
		if sufficient != (got == OK) {
			t.Fatalf("transfer(%s, %s, %d) = %q", from, to, n, got)
		}
	})
}

func TestPropertyBuyThenSellRestoresBalance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genState().Draw(t, "state")
		b := genAccount().Draw(t, "buyer")
		s.Balances[b] += 1
		n := rapid.Int64Range(1, s.Balances[b]).Draw(t, "n")
		before := s.Balances[b]
		id := s.NextID

		if got := BuyInvestment(s, b, n); got != OK {
			t.Fatalf("buy(%s, %d) = %q", b, n, got)
		}
		if s.NextID != id+1 {
			t.Fatalf("next_id %d, want %d", s.NextID, id+1)
		}
		if got := SellInvestment(s, b, id); got != OK {
			t.Fatalf("sell(%s, %d) = %q", b, id, got)
		}
		if s.Balances[b] != before {
			t.Fatalf("balance %d, want %d", s.Balances[b], before)
		}
		if !s.HasInvestment(id) {
			t.Fatalf("investment %d removed by sale", id)
		}

		// Reselling pays out again.
		if got := SellInvestment(s, b, id); got != OK || s.Balances[b] != before+n {
			t.Fatalf("resell = %q, balance %d, want %d", got, s.Balances[b], before+n)
		}
	})
}

func TestPropertySellUnknownLeavesBalances(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genState().Draw(t, "state")
		before := s.Clone()
		id := rapid.Int64Range(s.NextID, s.NextID+100).Draw(t, "id")
		seller := genAccount().Draw(t, "seller")

		if got := SellInvestment(s, seller, id); got != UnknownInvestment {
			t.Fatalf("sell(%s, %d) = %q", seller, id, got)
		}
		if !s.Equal(before) {
			t.Fatalf("state changed: %s -> %s", before, s)
		}
	})
}

func TestPropertyNextIDExceedsEveryKey(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genState().Draw(t, "state")
		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			a := genAccount().Draw(t, "account")
			n := rapid.Int64Range(-5, 300).Draw(t, "n")
			switch rapid.IntRange(0, 4).Draw(t, "op") {
			case 0:
				Deposit(s, a, n)
			case 1:
				Withdraw(s, a, n)
			case 2:
				Transfer(s, a, genAccount().Draw(t, "receiver"), n)
			case 3:
				BuyInvestment(s, a, n)
			case 4:
				SellInvestment(s, a, rapid.Int64Range(0, s.NextID).Draw(t, "id"))
			}
		}
		for id := range s.Investments {
			if id >= s.NextID {
				t.Fatalf("investment %d not below next_id %d", id, s.NextID)
			}
		}
	})
}
