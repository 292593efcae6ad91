package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// Transfer is one suggested repayment: From pays To.
type Transfer struct {
	From   uuid.UUID
	To     uuid.UUID
	Amount Money
}

type settleStake struct {
	member uuid.UUID
	amount Money
}

// settleQueues splits the net positions into creditors (owed money) and
// debtors (owing money), both largest first with ties broken by member id so
// the plan is deterministic.
func settleQueues(positions map[uuid.UUID]Money) (creditors, debtors []settleStake) {
	for member, amount := range positions {
		switch {
		case amount > 0:
			creditors = append(creditors, settleStake{member, amount})
		case amount < 0:
			debtors = append(debtors, settleStake{member, -amount})
		}
	}

	byAmountDesc := func(s []settleStake) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].amount == s[j].amount {
				return s[i].member.String() < s[j].member.String()
			}
			return s[i].amount > s[j].amount
		}
	}
	sort.SliceStable(creditors, byAmountDesc(creditors))
	sort.SliceStable(debtors, byAmountDesc(debtors))
	return creditors, debtors
}

// SettleUp turns the members' net positions into a short list of transfers
// that zeroes every balance: the largest debtor pays the largest creditor,
// whichever side has a remainder stays at the head of its queue. Positions of
// a closed expense set sum to zero, so every debt finds a creditor.
func SettleUp(positions map[uuid.UUID]Money) []Transfer {
	creditors, debtors := settleQueues(positions)

	var transfers []Transfer
	ci, di := 0, 0
	for ci < len(creditors) && di < len(debtors) {
		amount := creditors[ci].amount
		if debtors[di].amount < amount {
			amount = debtors[di].amount
		}
		transfers = append(transfers, Transfer{
			From:   debtors[di].member,
			To:     creditors[ci].member,
			Amount: amount,
		})

		creditors[ci].amount -= amount
		debtors[di].amount -= amount
		if creditors[ci].amount == 0 {
			ci++
		}
		if debtors[di].amount == 0 {
			di++
		}
	}
	return transfers
}
