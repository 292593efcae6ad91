package ledger

// LedgerError is a sentinel error in the aggregation core.
type LedgerError string

func (e LedgerError) Error() string {
	return string(e)
}

const (
	// ErrInvalidAmount reports a non-positive or malformed monetary amount.
	ErrInvalidAmount LedgerError = "invalid amount"
	// ErrSplitMismatch reports custom split shares that do not reconcile to
	// the expense total within Tolerance.
	ErrSplitMismatch LedgerError = "split does not reconcile to total"
	// ErrInvalidMembership reports a split share for someone outside the
	// participant set.
	ErrInvalidMembership LedgerError = "split references a non-member"
)
