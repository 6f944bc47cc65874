package cli

import (
	"time"

	"github.com/roach88/dueline/internal/ledger"
	"github.com/roach88/dueline/internal/recur"
)

// RecordPayload is the JSON projection of one obligation record.
type RecordPayload struct {
	ID             string   `json:"id"`
	Description    string   `json:"description"`
	Amount         int64    `json:"amount"`
	AmountText     string   `json:"amount_text"`
	Instrument     string   `json:"instrument"`
	OperationDate  string   `json:"operation_date"`
	SettlementDate string   `json:"settlement_date"`
	Rule           string   `json:"rule,omitempty"`
	RuleEnd        string   `json:"rule_end,omitempty"`
	Installments   int      `json:"installments,omitempty"`
	ParentID       string   `json:"parent_id,omitempty"`
	Exceptions     []string `json:"exceptions,omitempty"`
	Planned        bool     `json:"planned"`
	Tag            string   `json:"tag,omitempty"`
}

func recordView(o *ledger.Obligation, currency string) RecordPayload {
	p := RecordPayload{
		ID:             o.ID,
		Description:    o.Description,
		Amount:         o.Amount,
		AmountText:     formatAmount(o.Amount, currency),
		Instrument:     o.Instrument,
		OperationDate:  o.OperationDate.Format(time.DateOnly),
		SettlementDate: o.SettlementDate.Format(time.DateOnly),
		Rule:           string(o.Rule),
		Installments:   o.Installments,
		ParentID:       o.ParentID,
		Planned:        o.Planned,
		Tag:            o.Tag,
	}
	if !o.RuleEnd.IsZero() {
		p.RuleEnd = o.RuleEnd.Format(time.DateOnly)
	}
	for _, e := range o.Exceptions {
		p.Exceptions = append(p.Exceptions, e.Format(time.DateOnly))
	}
	return p
}

// OccurrencePayload is the JSON projection of one materialized
// occurrence inside a listing window.
type OccurrencePayload struct {
	Date        string `json:"date"`
	Settlement  string `json:"settlement"`
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	AmountText  string `json:"amount_text"`
	Instrument  string `json:"instrument"`
	Planned     bool   `json:"planned"`
	Tag         string `json:"tag,omitempty"`
}

func occurrenceView(occ recur.Occurrence, currency string) OccurrencePayload {
	return OccurrencePayload{
		Date:        occ.Date.Format(time.DateOnly),
		Settlement:  occ.Settlement.Format(time.DateOnly),
		ID:          occ.Record.ID,
		Description: occ.Record.Description,
		Amount:      occ.Record.Amount,
		AmountText:  formatAmount(occ.Record.Amount, currency),
		Instrument:  occ.Record.Instrument,
		Planned:     occ.Record.Planned,
		Tag:         occ.Record.Tag,
	}
}
