package sync

// Category names one replicated slice of workspace state. Each category
// is stored as a whole JSON value at its own workspace path and
// replicated independently of the others.
type Category string

const (
	// CategoryTransactions holds the obligation records (masters,
	// overrides, plain records).
	CategoryTransactions Category = "transactions"
	// CategoryInstruments holds the card instrument definitions.
	CategoryInstruments Category = "instruments"
	// CategoryBudgets holds the per-tag spending budgets.
	CategoryBudgets Category = "budgets"
	// CategoryOpeningBalance is the scalar opening balance in minor units.
	CategoryOpeningBalance Category = "opening-balance"
	// CategoryOpeningDate is the scalar tracking start date.
	CategoryOpeningDate Category = "opening-date"
	// CategoryOpeningFlag is the scalar "opening configured" marker.
	CategoryOpeningFlag Category = "opening-flag"
)

// Categories lists every replicated category in registration order.
var Categories = []Category{
	CategoryTransactions,
	CategoryInstruments,
	CategoryBudgets,
	CategoryOpeningBalance,
	CategoryOpeningDate,
	CategoryOpeningFlag,
}

// State is the per-category replication state.
type State int

const (
	// StateSubscribed means the subscription is registered but no remote
	// snapshot has been reconciled yet.
	StateSubscribed State = iota + 1
	// StateMergePending means local and remote may diverge: either a
	// snapshot is being reconciled or queued local writes await flushing.
	StateMergePending
	// StateSynced means local state matches the last exchanged snapshot.
	StateSynced
)

func (s State) String() string {
	switch s {
	case StateSubscribed:
		return "subscribed"
	case StateMergePending:
		return "merge-pending"
	case StateSynced:
		return "synced"
	}
	return "unknown"
}
