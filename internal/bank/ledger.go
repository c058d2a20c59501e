package bank

import "math"

// Outcome is the error signal of a transition. The zero value means the
// transition succeeded; the other values are compared byte for byte with
// recorded expectations.
type Outcome string

// Outcomes produced by the transition functions.
const (
	OK                  Outcome = ""
	AmountNotPositive   Outcome = "Amount should be greater than zero"
	InsufficientBalance Outcome = "Balance is too low"
	UnknownInvestment   Outcome = "No investment with this id"

	// BalanceOverflow is returned when a balance would leave the int64
	// range. Recorded traces never expect it: a fixture holding such a
	// balance is rejected when decoded.
	BalanceOverflow Outcome = "Balance would overflow"
)

// Failed reports whether the outcome carries an error message.
func (o Outcome) Failed() bool {
	return o != OK
}

// Deposit credits amount to depositor. Non-positive amounts are rejected
// before the account is touched.
func Deposit(s *State, depositor string, amount int64) Outcome {
	if amount <= 0 {
		return AmountNotPositive
	}
	if !s.adjust(depositor, amount) {
		return BalanceOverflow
	}
	return OK
}

// Withdraw debits amount from withdrawer. The amount is not checked for
// sign: only the balance comparison guards the debit, and that comparison
// creates the account if it is absent.
func Withdraw(s *State, withdrawer string, amount int64) Outcome {
	if s.Balance(withdrawer) < amount {
		return InsufficientBalance
	}
	if amount == math.MinInt64 || !s.adjust(withdrawer, -amount) {
		return BalanceOverflow
	}
	return OK
}

// Transfer moves amount from sender to receiver.
func Transfer(s *State, sender, receiver string, amount int64) Outcome {
	if amount <= 0 {
		return AmountNotPositive
	}
	if s.Balance(sender) < amount {
		return InsufficientBalance
	}
	if sender != receiver && !s.fits(receiver, amount) {
		return BalanceOverflow
	}
	s.adjust(sender, -amount)
	s.adjust(receiver, amount)
	return OK
}

// BuyInvestment debits amount from buyer and records a new investment
// under NextID, then advances NextID.
func BuyInvestment(s *State, buyer string, amount int64) Outcome {
	if amount <= 0 {
		return AmountNotPositive
	}
	if s.Balance(buyer) < amount {
		return InsufficientBalance
	}
	s.adjust(buyer, -amount)
	if s.Investments == nil {
		s.Investments = make(map[int64]Investment)
	}
	s.Investments[s.NextID] = Investment{Owner: buyer, Amount: amount}
	s.NextID++
	return OK
}

// SellInvestment credits the amount of investment id to seller.
// Neither ownership nor prior sales are checked, and the investment stays
// in the ledger.
func SellInvestment(s *State, seller string, id int64) Outcome {
	inv, ok := s.Investments[id]
	if !ok {
		return UnknownInvestment
	}
	if !s.adjust(seller, inv.Amount) {
		return BalanceOverflow
	}
	return OK
}
