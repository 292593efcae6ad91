package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// pairKey identifies one ordered debtor -> creditor relation.
type pairKey struct {
	ower  uuid.UUID
	payee uuid.UUID
}

// accumulate folds every shared expense into directional obligations:
// each participant other than the payer owes the payer their split share.
// Opposite-direction debts between the same two members are netted when read
// back out, so the map only ever grows by distinct ordered pairs.
func accumulate(expenses []SharedExpense) map[pairKey]Money {
	owed := make(map[pairKey]Money)
	for _, e := range expenses {
		for member, share := range e.Splits {
			if member == e.PaidBy || share == 0 {
				continue
			}
			owed[pairKey{ower: member, payee: e.PaidBy}] += share
		}
	}
	return owed
}

// BalancesFor nets all shared expenses down to one signed amount per
// counterparty of the acting member. Positive means the counterparty owes the
// acting member; negative means the acting member owes them. Counterparties
// with a zero net position are omitted. The result is ordered by member id so
// repeated calls render identically.
func BalancesFor(member uuid.UUID, expenses []SharedExpense) []MemberBalance {
	owed := accumulate(expenses)

	net := make(map[uuid.UUID]Money)
	for pair, amount := range owed {
		switch member {
		case pair.payee:
			net[pair.ower] += amount
		case pair.ower:
			net[pair.payee] -= amount
		}
	}

	balances := make([]MemberBalance, 0, len(net))
	for other, amount := range net {
		if amount == 0 {
			continue
		}
		balances = append(balances, MemberBalance{Member: other, Amount: amount})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Member.String() < balances[j].Member.String()
	})
	return balances
}

// NetPositions returns every member's overall net position across the flat:
// total owed to them minus total they owe. The positions of a closed expense
// set always sum to zero, since every debit has a matching credit.
func NetPositions(expenses []SharedExpense) map[uuid.UUID]Money {
	positions := make(map[uuid.UUID]Money)
	for pair, amount := range accumulate(expenses) {
		positions[pair.payee] += amount
		positions[pair.ower] -= amount
	}
	return positions
}
