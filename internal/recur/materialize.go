package recur

import (
	"sort"
	"time"

	"github.com/roach88/dueline/internal/billing"
	"github.com/roach88/dueline/internal/ledger"
)

// Occurrence is one materialized obligation instance inside a window.
// For generated instances Record is the master; for overrides and plain
// records it is the record itself.
type Occurrence struct {
	Date       time.Time
	Settlement time.Time
	Record     *ledger.Obligation
}

// Materialize expands a record list into the concrete occurrences
// falling inside [from, to], sorted by date (record id breaks ties).
// Masters contribute their generated dates minus exceptions; overrides
// and plain records contribute their own operation date.
//
// Settlement dates of generated instances are resolved against the
// given instruments per occurrence; a master paid by card settles each
// occurrence in that occurrence's billing cycle, not the anchor's.
func Materialize(records []*ledger.Obligation, instruments []ledger.Instrument, from, to time.Time) []Occurrence {
	from, to = ledger.DateOf(from), ledger.DateOf(to)

	var out []Occurrence
	for _, o := range records {
		if o.IsMaster() {
			for _, d := range Enumerate(o, from, to) {
				settlement, err := billing.ResolveSettlementDate(d, o.Instrument, instruments)
				if err != nil {
					// Dangling instrument reference: show the occurrence
					// rather than hide it.
					settlement = d
				}
				out = append(out, Occurrence{Date: d, Settlement: settlement, Record: o})
			}
			continue
		}
		d := ledger.DateOf(o.OperationDate)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, Occurrence{Date: d, Settlement: ledger.DateOf(o.SettlementDate), Record: o})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Record.ID < out[j].Record.ID
	})
	return out
}
