package ledger

import (
	"testing"

	"github.com/google/uuid"
)

func TestBalancesForThreeEqualExpenses(t *testing.T) {
	// Three shared $30 expenses split equally among A, B and C, all paid by A.
	// B and C each owe A $20; A's net is +$40.
	split := map[uuid.UUID]Money{memberA: 1000, memberB: 1000, memberC: 1000}
	expenses := []SharedExpense{
		{PaidBy: memberA, Splits: split},
		{PaidBy: memberA, Splits: split},
		{PaidBy: memberA, Splits: split},
	}

	balances := BalancesFor(memberA, expenses)
	if len(balances) != 2 {
		t.Fatalf("BalancesFor(A) returned %d counterparties, want 2", len(balances))
	}
	for _, b := range balances {
		if b.Amount != 2000 {
			t.Errorf("counterparty %s owes %d, want 2000", b.Member, b.Amount)
		}
	}

	positions := NetPositions(expenses)
	if positions[memberA] != 4000 {
		t.Errorf("A's net position = %d, want 4000", positions[memberA])
	}
	if positions[memberB] != -2000 || positions[memberC] != -2000 {
		t.Errorf("B, C net positions = %d, %d, want -2000 each", positions[memberB], positions[memberC])
	}
}

func TestBalancesForNetsOppositeDebts(t *testing.T) {
	// A pays $60 split A/B; B pays $40 split A/B. B owes A 30, A owes B 20,
	// so B's netted position against A is +10 owed to A.
	expenses := []SharedExpense{
		{PaidBy: memberA, Splits: map[uuid.UUID]Money{memberA: 3000, memberB: 3000}},
		{PaidBy: memberB, Splits: map[uuid.UUID]Money{memberA: 2000, memberB: 2000}},
	}

	balances := BalancesFor(memberA, expenses)
	if len(balances) != 1 {
		t.Fatalf("BalancesFor(A) returned %d counterparties, want 1", len(balances))
	}
	if balances[0].Member != memberB || balances[0].Amount != 1000 {
		t.Errorf("got %s: %d, want %s: 1000", balances[0].Member, balances[0].Amount, memberB)
	}

	fromB := BalancesFor(memberB, expenses)
	if len(fromB) != 1 || fromB[0].Amount != -1000 {
		t.Errorf("BalancesFor(B) = %+v, want A: -1000", fromB)
	}
}

func TestBalancesForOmitsSettledCounterparties(t *testing.T) {
	// Mirror-image expenses cancel exactly: no balances remain.
	expenses := []SharedExpense{
		{PaidBy: memberA, Splits: map[uuid.UUID]Money{memberA: 500, memberB: 500}},
		{PaidBy: memberB, Splits: map[uuid.UUID]Money{memberA: 500, memberB: 500}},
	}
	if got := BalancesFor(memberA, expenses); len(got) != 0 {
		t.Errorf("BalancesFor(A) = %+v, want empty", got)
	}
}

func TestNetPositionsSumToZero(t *testing.T) {
	tests := []struct {
		name     string
		expenses []SharedExpense
	}{
		{
			name:     "Empty set",
			expenses: nil,
		},
		{
			name: "Uneven splits across four members",
			expenses: []SharedExpense{
				{PaidBy: memberA, Splits: map[uuid.UUID]Money{memberA: 334, memberB: 333, memberC: 333}},
				{PaidBy: memberB, Splits: map[uuid.UUID]Money{memberB: 1250, memberC: 1250, memberD: 1250, memberA: 1250}},
				{PaidBy: memberC, Splits: map[uuid.UUID]Money{memberD: 99}},
				{PaidBy: memberD, Splits: map[uuid.UUID]Money{memberA: 2401, memberD: 2400}},
			},
		},
		{
			name: "Payer not in own split map",
			expenses: []SharedExpense{
				{PaidBy: memberA, Splits: map[uuid.UUID]Money{memberB: 700, memberC: 300}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sum Money
			for _, amount := range NetPositions(tt.expenses) {
				sum += amount
			}
			if sum != 0 {
				t.Errorf("net positions sum to %d, want 0", sum)
			}
		})
	}
}
