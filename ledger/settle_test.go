package ledger

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestSettleUp(t *testing.T) {
	tests := []struct {
		name      string
		positions map[uuid.UUID]Money
		want      []Transfer
	}{
		{
			name:      "empty",
			positions: map[uuid.UUID]Money{},
			want:      nil,
		},
		{
			name: "all settled",
			positions: map[uuid.UUID]Money{
				memberA: 0,
				memberB: 0,
			},
			want: nil,
		},
		{
			name: "single debt",
			positions: map[uuid.UUID]Money{
				memberA: 2000,
				memberB: -2000,
			},
			want: []Transfer{
				{From: memberB, To: memberA, Amount: 2000},
			},
		},
		{
			name: "two debtors one creditor",
			positions: map[uuid.UUID]Money{
				memberA: 3000,
				memberB: -1000,
				memberC: -2000,
			},
			want: []Transfer{
				{From: memberC, To: memberA, Amount: 2000},
				{From: memberB, To: memberA, Amount: 1000},
			},
		},
		{
			name: "debt split across creditors",
			positions: map[uuid.UUID]Money{
				memberA: 5000,
				memberB: 1000,
				memberC: -4000,
				memberD: -2000,
			},
			want: []Transfer{
				{From: memberC, To: memberA, Amount: 4000},
				{From: memberD, To: memberA, Amount: 1000},
				{From: memberD, To: memberB, Amount: 1000},
			},
		},
		{
			name: "equal amounts break ties by member id",
			positions: map[uuid.UUID]Money{
				memberD: 1500,
				memberA: 1500,
				memberB: -1500,
				memberC: -1500,
			},
			want: []Transfer{
				{From: memberB, To: memberA, Amount: 1500},
				{From: memberC, To: memberD, Amount: 1500},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SettleUp(tt.positions)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SettleUp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettleUpZeroesEveryBalance(t *testing.T) {
	positions := map[uuid.UUID]Money{
		memberA: 7337,
		memberB: -1201,
		memberC: -4099,
		memberD: -2037,
	}

	remaining := make(map[uuid.UUID]Money, len(positions))
	for member, amount := range positions {
		remaining[member] = amount
	}
	for _, tr := range SettleUp(positions) {
		if tr.Amount <= 0 {
			t.Fatalf("transfer %v has non-positive amount", tr)
		}
		remaining[tr.From] += tr.Amount
		remaining[tr.To] -= tr.Amount
	}
	for member, amount := range remaining {
		if amount != 0 {
			t.Errorf("member %s left with balance %d after settlement", member, amount)
		}
	}
}
