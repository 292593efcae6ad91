package ledger

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// sortedMembers returns the participants in the stable ordering used to place
// rounding remainders: ascending by member id.
func sortedMembers(participants []uuid.UUID) []uuid.UUID {
	sorted := make([]uuid.UUID, len(participants))
	copy(sorted, participants)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})
	return sorted
}

// EqualSplit divides total among the participants. Every share is within one
// minor unit of total/N and the shares sum exactly to total: the first
// (total mod N) participants in stable ordering carry one extra minor unit.
// Duplicate participant ids are rejected so a member cannot absorb two shares.
func EqualSplit(total Money, participants []uuid.UUID) (map[uuid.UUID]Money, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: total %s", ErrInvalidAmount, total)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: no participants", ErrInvalidMembership)
	}

	sorted := sortedMembers(participants)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("%w: duplicate participant %s", ErrInvalidMembership, sorted[i])
		}
	}

	n := Money(len(sorted))
	base := total / n
	extra := total % n

	splits := make(map[uuid.UUID]Money, len(sorted))
	for i, member := range sorted {
		share := base
		if Money(i) < extra {
			share++
		}
		splits[member] = share
	}
	return splits, nil
}

// CustomSplit validates caller-supplied shares against the total. Shares must
// cover exactly the participant set and sum to total within Tolerance; a
// one-minor-unit residue is folded into the first participant in stable
// ordering so the returned map reconciles exactly. Anything further off fails
// with ErrSplitMismatch. The input map is never mutated.
func CustomSplit(total Money, participants []uuid.UUID, shares map[uuid.UUID]Money) (map[uuid.UUID]Money, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: total %s", ErrInvalidAmount, total)
	}
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares supplied", ErrSplitMismatch)
	}

	members := make(map[uuid.UUID]bool, len(participants))
	for _, p := range participants {
		members[p] = true
	}

	var sum Money
	for member, share := range shares {
		if !members[member] {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMembership, member)
		}
		if share < 0 {
			return nil, fmt.Errorf("%w: negative share for %s", ErrInvalidAmount, member)
		}
		sum += share
	}

	residue := total - sum
	if residue.Abs() > Tolerance {
		return nil, fmt.Errorf("%w: shares sum to %s, total is %s", ErrSplitMismatch, sum, total)
	}

	out := make(map[uuid.UUID]Money, len(shares))
	for member, share := range shares {
		out[member] = share
	}
	if residue != 0 {
		for _, member := range sortedMembers(participants) {
			if _, ok := out[member]; ok {
				out[member] += residue
				break
			}
		}
	}
	return out, nil
}
