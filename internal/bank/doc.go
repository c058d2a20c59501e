// Package bank is the ledger model replayed by the conformance runner.
//
// The model holds account balances, investments and the next investment id,
// and exposes five transition functions: Deposit, Withdraw, Transfer,
// BuyInvestment and SellInvestment. Each takes the State by pointer, mutates
// it in place and returns an Outcome. The zero Outcome means success; every
// other Outcome is one of the exact messages the reference model produces.
//
// # Lazy Accounts
//
// Reading the balance of an unknown account creates it with balance 0, the
// way the reference model's balance lookup does. The runner compares whole
// states structurally, so the materialised key is observable and must be
// reproduced:
//
//	s := bank.NewState()
//	bank.Withdraw(s, "bob", 10) // InsufficientBalance
//	s.Balances                  // map[bob:0]
//
// # Investments
//
// BuyInvestment assigns ids from NextID, which only ever grows. Selling an
// investment credits its amount to the seller but leaves the record in place,
// so the same id can be sold again, by anyone.
//
// # Overflow
//
// Balances are int64. A transition that would carry a balance outside that
// range returns BalanceOverflow and changes nothing.
package bank
