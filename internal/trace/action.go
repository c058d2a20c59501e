package trace

import (
	"fmt"

	"github.com/roach88/bankmbt/internal/bank"
)

// Action names recorded under mbt::actionTaken.
const (
	ActionInit           = "init"
	ActionDeposit        = "deposit_action"
	ActionWithdraw       = "withdraw_action"
	ActionTransfer       = "transfer_action"
	ActionBuyInvestment  = "buy_investment_action"
	ActionSellInvestment = "sell_investment_action"
)

// Action is one decoded step action.
type Action interface {
	// Name is the action name as recorded in the fixture.
	Name() string
	// Args returns the resolved arguments keyed by parameter name.
	Args() map[string]any
	String() string
}

// Transition is an Action the ledger model implements.
// Unknown is the only Action that is not a Transition.
type Transition interface {
	Action
	Apply(s *bank.State) bank.Outcome
}

// Init marks the initial state. Applying it changes nothing.
type Init struct{}

func (Init) Name() string                   { return ActionInit }
func (Init) Args() map[string]any           { return map[string]any{} }
func (Init) String() string                 { return "init()" }
func (Init) Apply(*bank.State) bank.Outcome { return bank.OK }

// Deposit invokes bank.Deposit.
type Deposit struct {
	Depositor string
	Amount    int64
}

func (Deposit) Name() string { return ActionDeposit }

func (a Deposit) Args() map[string]any {
	return map[string]any{"depositor": a.Depositor, "amount": a.Amount}
}

func (a Deposit) String() string {
	return fmt.Sprintf("deposit(%s, %d)", a.Depositor, a.Amount)
}

func (a Deposit) Apply(s *bank.State) bank.Outcome {
	return bank.Deposit(s, a.Depositor, a.Amount)
}

// Withdraw invokes bank.Withdraw.
type Withdraw struct {
	Withdrawer string
	Amount     int64
}

func (Withdraw) Name() string { return ActionWithdraw }

func (a Withdraw) Args() map[string]any {
	return map[string]any{"withdrawer": a.Withdrawer, "amount": a.Amount}
}

func (a Withdraw) String() string {
	return fmt.Sprintf("withdraw(%s, %d)", a.Withdrawer, a.Amount)
}

func (a Withdraw) Apply(s *bank.State) bank.Outcome {
	return bank.Withdraw(s, a.Withdrawer, a.Amount)
}

// Transfer invokes bank.Transfer.
type Transfer struct {
	Sender   string
	Receiver string
	Amount   int64
}

func (Transfer) Name() string { return ActionTransfer }

func (a Transfer) Args() map[string]any {
	return map[string]any{"sender": a.Sender, "receiver": a.Receiver, "amount": a.Amount}
}

func (a Transfer) String() string {
	return fmt.Sprintf("transfer(%s, %s, %d)", a.Sender, a.Receiver, a.Amount)
}

func (a Transfer) Apply(s *bank.State) bank.Outcome {
	return bank.Transfer(s, a.Sender, a.Receiver, a.Amount)
}

// BuyInvestment invokes bank.BuyInvestment.
type BuyInvestment struct {
	Buyer  string
	Amount int64
}

func (BuyInvestment) Name() string { return ActionBuyInvestment }

func (a BuyInvestment) Args() map[string]any {
	return map[string]any{"buyer": a.Buyer, "amount": a.Amount}
}

func (a BuyInvestment) String() string {
	return fmt.Sprintf("buy_investment(%s, %d)", a.Buyer, a.Amount)
}

func (a BuyInvestment) Apply(s *bank.State) bank.Outcome {
	return bank.BuyInvestment(s, a.Buyer, a.Amount)
}

// SellInvestment invokes bank.SellInvestment.
type SellInvestment struct {
	Seller string
	ID     int64
}

func (SellInvestment) Name() string { return ActionSellInvestment }

func (a SellInvestment) Args() map[string]any {
	return map[string]any{"seller": a.Seller, "id": a.ID}
}

func (a SellInvestment) String() string {
	return fmt.Sprintf("sell_investment(%s, %d)", a.Seller, a.ID)
}

func (a SellInvestment) Apply(s *bank.State) bank.Outcome {
	return bank.SellInvestment(s, a.Seller, a.ID)
}

// Unknown is an action name the model does not implement. The runner
// skips it: no error is produced and no state is compared.
type Unknown struct {
	Action string
}

func (a Unknown) Name() string       { return a.Action }
func (Unknown) Args() map[string]any { return map[string]any{} }
func (a Unknown) String() string     { return fmt.Sprintf("%s(?)", a.Action) }
