package trace

import (
	"fmt"

	"github.com/roach88/bankmbt/internal/itf"
)

// picks resolves the nondeterministic choices of one step.
type picks struct {
	rec  itf.Record
	path string
	step int
}

func (p picks) field(name string) string {
	return keyNondetPicks + "." + name
}

// value returns the picked payload for name. An absent pick and a None
// pick are both reported as a missing argument.
func (p picks) value(name string) (itf.Value, error) {
	raw, ok := p.rec[name]
	if !ok {
		return nil, &DecodeError{Kind: KindMissingArgument, Path: p.path, Step: p.step, Field: p.field(name), Message: "not picked"}
	}
	payload, present, err := decodeOption(raw)
	if err != nil {
		return nil, stepError(p.path, p.step, p.field(name), err)
	}
	if !present {
		return nil, &DecodeError{Kind: KindMissingArgument, Path: p.path, Step: p.step, Field: p.field(name), Message: "picked None"}
	}
	return payload, nil
}

func (p picks) str(name string) (string, error) {
	v, err := p.value(name)
	if err != nil {
		return "", err
	}
	s, err := itf.AsString(v)
	if err != nil {
		return "", stepError(p.path, p.step, p.field(name), err)
	}
	return s, nil
}

func (p picks) int(name string) (int64, error) {
	v, err := p.value(name)
	if err != nil {
		return 0, err
	}
	n, err := itf.AsInt64(v)
	if err != nil {
		return 0, stepError(p.path, p.step, p.field(name), err)
	}
	return n, nil
}

// decodeAction builds the Action of step i. The first state may omit the
// action name, in which case it is taken to be init.
func decodeAction(rec itf.Record, path string, i int) (Action, error) {
	rawName, ok := field(rec, keyActionTaken, aliasActionTaken)
	if !ok {
		if i == 0 {
			return Init{}, nil
		}
		return nil, &DecodeError{Kind: KindMalformedFixture, Path: path, Step: i, Field: keyActionTaken, Message: "missing"}
	}
	name, err := itf.AsString(rawName)
	if err != nil {
		return nil, stepError(path, i, keyActionTaken, err)
	}

	p := picks{path: path, step: i}
	if rawPicks, ok := field(rec, keyNondetPicks, aliasNondetPicks); ok {
		r, ok := rawPicks.(itf.Record)
		if !ok {
			return nil, &DecodeError{Kind: KindMalformedFixture, Path: path, Step: i, Field: keyNondetPicks,
				Message: fmt.Sprintf("must be a record, got %s", itf.KindOf(rawPicks))}
		}
		p.rec = r
	}

	switch name {
	case ActionInit:
		return Init{}, nil
	case ActionDeposit:
		return decodeDeposit(p)
	case ActionWithdraw:
		return decodeWithdraw(p)
	case ActionTransfer:
		return decodeTransfer(p)
	case ActionBuyInvestment:
		return decodeBuyInvestment(p)
	case ActionSellInvestment:
		return decodeSellInvestment(p)
	default:
		return Unknown{Action: name}, nil
	}
}

func decodeDeposit(p picks) (Action, error) {
	depositor, err := p.str("depositor")
	if err != nil {
		return nil, err
	}
	amount, err := p.int("amount")
	if err != nil {
		return nil, err
	}
	return Deposit{Depositor: depositor, Amount: amount}, nil
}

func decodeWithdraw(p picks) (Action, error) {
	withdrawer, err := p.str("withdrawer")
	if err != nil {
		return nil, err
	}
	amount, err := p.int("amount")
	if err != nil {
		return nil, err
	}
	return Withdraw{Withdrawer: withdrawer, Amount: amount}, nil
}

func decodeTransfer(p picks) (Action, error) {
	sender, err := p.str("sender")
	if err != nil {
		return nil, err
	}
	receiver, err := p.str("receiver")
	if err != nil {
		return nil, err
	}
	amount, err := p.int("amount")
	if err != nil {
		return nil, err
	}
	return Transfer{Sender: sender, Receiver: receiver, Amount: amount}, nil
}

func decodeBuyInvestment(p picks) (Action, error) {
	buyer, err := p.str("buyer")
	if err != nil {
		return nil, err
	}
	amount, err := p.int("amount")
	if err != nil {
		return nil, err
	}
	return BuyInvestment{Buyer: buyer, Amount: amount}, nil
}

func decodeSellInvestment(p picks) (Action, error) {
	seller, err := p.str("seller")
	if err != nil {
		return nil, err
	}
	id, err := p.int("id")
	if err != nil {
		return nil, err
	}
	return SellInvestment{Seller: seller, ID: id}, nil
}
