package ledger

import "fmt"

// CashInstrument is the reserved instrument name for cash operations.
// Cash obligations settle on their operation date.
const CashInstrument = "cash"

// Instrument is a card-based payment instrument with a monthly billing
// cycle. Operations up to and including ClosingDay settle on the same
// month's DueDay; later operations roll to the next cycle.
type Instrument struct {
	Name       string `json:"name"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}

// Validate checks the billing-cycle day invariants:
// 1 <= ClosingDay < DueDay <= 31.
func (i Instrument) Validate() error {
	if i.Name == "" {
		return &ValidationError{Field: "name", Message: "instrument name is required"}
	}
	if i.ClosingDay < 1 || i.ClosingDay > 31 {
		return &ValidationError{Field: "closing_day", Message: fmt.Sprintf("closing day %d out of range [1,31]", i.ClosingDay)}
	}
	if i.DueDay < 1 || i.DueDay > 31 {
		return &ValidationError{Field: "due_day", Message: fmt.Sprintf("due day %d out of range [1,31]", i.DueDay)}
	}
	if i.ClosingDay >= i.DueDay {
		return &ValidationError{Field: "due_day", Message: fmt.Sprintf("due day %d must be after closing day %d", i.DueDay, i.ClosingDay)}
	}
	return nil
}

// FindInstrument returns the instrument with the given name, or false
// when no such instrument exists. The cash instrument is implicit and
// never part of the list.
func FindInstrument(instruments []Instrument, name string) (Instrument, bool) {
	for _, in := range instruments {
		if in.Name == name {
			return in, true
		}
	}
	return Instrument{}, false
}
