package rootnet

import (
	"github.com/pkg/errors"

	"github.com/rootnet/rootd/util/accountid"
)

// MapStakeLedger is an in-memory StakeLedger. The daemon wires it as the
// default stake source; tests use it as a fixture.
type MapStakeLedger struct {
	stakes map[accountid.AccountID]uint64
}

// NewMapStakeLedger creates an empty MapStakeLedger.
func NewMapStakeLedger() *MapStakeLedger {
	return &MapStakeLedger{stakes: make(map[accountid.AccountID]uint64)}
}

// SetStake sets the total stake bound to the given hotkey.
func (l *MapStakeLedger) SetStake(hotkey *accountid.AccountID, amount uint64) {
	l.stakes[*hotkey] = amount
}

// TotalStakeFor implements the StakeLedger interface.
func (l *MapStakeLedger) TotalStakeFor(hotkey *accountid.AccountID) uint64 {
	return l.stakes[*hotkey]
}

// MapBalanceLedger is an in-memory BalanceLedger.
type MapBalanceLedger struct {
	balances map[accountid.AccountID]uint64
}

// NewMapBalanceLedger creates an empty MapBalanceLedger.
func NewMapBalanceLedger() *MapBalanceLedger {
	return &MapBalanceLedger{balances: make(map[accountid.AccountID]uint64)}
}

// Credit adds amount to the coldkey's balance.
func (l *MapBalanceLedger) Credit(coldkey *accountid.AccountID, amount uint64) {
	l.balances[*coldkey] += amount
}

// Balance returns the coldkey's spendable balance.
func (l *MapBalanceLedger) Balance(coldkey *accountid.AccountID) uint64 {
	return l.balances[*coldkey]
}

// CanWithdraw implements the BalanceLedger interface.
func (l *MapBalanceLedger) CanWithdraw(coldkey *accountid.AccountID, amount uint64) bool {
	return l.balances[*coldkey] >= amount
}

// Withdraw implements the BalanceLedger interface.
func (l *MapBalanceLedger) Withdraw(coldkey *accountid.AccountID, amount uint64) error {
	balance := l.balances[*coldkey]
	if balance < amount {
		return errors.Errorf("cannot withdraw %d from a balance of %d", amount, balance)
	}
	l.balances[*coldkey] = balance - amount
	return nil
}
