package harness

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roach88/dueline/internal/ledger"
	"github.com/roach88/dueline/internal/mutate"
	"github.com/roach88/dueline/internal/recur"
	"github.com/roach88/dueline/internal/testutil"
)

// StepEvent records the outcome of one scenario step.
type StepEvent struct {
	Step    int      `json:"step"`
	Action  string   `json:"action"`
	Target  string   `json:"target,omitempty"`
	Created string   `json:"created,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// RecordView is the stable projection of a record for traces. Creation
// and modification stamps are deliberately absent; they would churn the
// goldens without adding signal.
type RecordView struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	Amount       int64    `json:"amount"`
	Instrument   string   `json:"instrument,omitempty"`
	Date         string   `json:"date"`
	Settlement   string   `json:"settlement"`
	Rule         string   `json:"rule,omitempty"`
	RuleEnd      string   `json:"rule_end,omitempty"`
	Installments int      `json:"installments,omitempty"`
	Parent       string   `json:"parent,omitempty"`
	Exceptions   []string `json:"exceptions,omitempty"`
	Planned      bool     `json:"planned,omitempty"`
	Tag          string   `json:"tag,omitempty"`
}

// OccurrenceView is one materialized occurrence in the trace window.
type OccurrenceView struct {
	Date        string `json:"date"`
	Settlement  string `json:"settlement"`
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	Pass        bool             `json:"pass"`
	Events      []StepEvent      `json:"events"`
	Records     []RecordView     `json:"records"`
	Occurrences []OccurrenceView `json:"occurrences,omitempty"`
	Errors      []string         `json:"errors,omitempty"`
}

// Run executes a scenario with a frozen clock and sequential ids.
func Run(s *Scenario) (*Result, error) {
	today, err := parseDate(s.Today)
	if err != nil {
		return nil, err
	}
	clock := testutil.NewClock(today)

	instruments := make([]ledger.Instrument, 0, len(s.Instruments))
	for _, def := range s.Instruments {
		in := ledger.Instrument{Name: def.Name, ClosingDay: def.ClosingDay, DueDay: def.DueDay}
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %s: instrument %s: %w", s.Name, def.Name, err)
		}
		instruments = append(instruments, in)
	}

	resolver := &mutate.Resolver{
		Instruments: func() []ledger.Instrument { return instruments },
		IDs:         testutil.NewSeqIDGenerator("r"),
		Now:         clock.Now,
		Today:       clock.Now,
	}
	book := ledger.NewBook()

	result := &Result{Pass: true}
	for i, step := range s.Steps {
		ev := StepEvent{Step: i + 1}
		var stepErr error

		switch {
		case step.Add != nil:
			ev.Action = "add"
			var created *ledger.Obligation
			created, stepErr = runAdd(resolver, book, step.Add)
			if created != nil {
				ev.Created = created.ID
			}
		case step.Edit != nil:
			ev.Action = "edit"
			ev.Target = step.Edit.Target
			stepErr = runEdit(resolver, book, step.Edit)
		case step.Delete != nil:
			ev.Action = "delete"
			ev.Target = step.Delete.Target
			ev.Removed, stepErr = runDelete(resolver, book, step.Delete)
		case step.Advance != "":
			ev.Action = "advance"
			var d time.Duration
			d, stepErr = time.ParseDuration(step.Advance)
			if stepErr == nil {
				clock.Advance(d)
			}
		}

		if stepErr != nil {
			ev.Error = stepErr.Error()
		}
		result.Events = append(result.Events, ev)

		switch {
		case step.ExpectError != "" && stepErr == nil:
			result.addError(fmt.Sprintf("step %d: expected error containing %q, got none", i+1, step.ExpectError))
		case step.ExpectError != "" && !strings.Contains(stepErr.Error(), step.ExpectError):
			result.addError(fmt.Sprintf("step %d: error %q does not contain %q", i+1, stepErr, step.ExpectError))
		case step.ExpectError == "" && stepErr != nil:
			result.addError(fmt.Sprintf("step %d: %v", i+1, stepErr))
		}
	}

	result.Records = recordViews(book.List())
	if s.Window != nil {
		from, _ := parseDate(s.Window.From)
		to, _ := parseDate(s.Window.To)
		for _, occ := range recur.Materialize(book.List(), instruments, from, to) {
			result.Occurrences = append(result.Occurrences, OccurrenceView{
				Date:        occ.Date.Format(time.DateOnly),
				Settlement:  occ.Settlement.Format(time.DateOnly),
				ID:          occ.Record.ID,
				Description: occ.Record.Description,
				Amount:      occ.Record.Amount,
			})
		}
	}
	return result, nil
}

func (r *Result) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

func runAdd(resolver *mutate.Resolver, book *ledger.Book, step *AddStep) (*ledger.Obligation, error) {
	date, err := parseDate(step.Date)
	if err != nil {
		return nil, err
	}
	f := mutate.Fields{
		Description:   mutate.String(step.Description),
		Amount:        mutate.Int64(step.Amount),
		OperationDate: mutate.DateP(date),
	}
	if step.Rule != "" {
		f.Rule = mutate.RuleP(ledger.RuleCode(step.Rule))
	}
	if step.Instrument != "" {
		f.Instrument = mutate.String(step.Instrument)
	}
	if step.Installments != 0 {
		f.Installments = mutate.Int(step.Installments)
	}
	if step.Planned != nil {
		f.Planned = step.Planned
	}
	if step.Tag != "" {
		f.Tag = mutate.String(step.Tag)
	}
	return resolver.Add(book, f)
}

func runEdit(resolver *mutate.Resolver, book *ledger.Book, step *EditStep) error {
	scope, err := mutate.ParseScope(step.Scope)
	if err != nil {
		return err
	}
	var date time.Time
	if step.Date != "" {
		if date, err = parseDate(step.Date); err != nil {
			return err
		}
	}
	f, err := step.Fields.toFields()
	if err != nil {
		return err
	}
	return resolver.Edit(book, scope, step.Target, date, f)
}

func runDelete(resolver *mutate.Resolver, book *ledger.Book, step *DeleteStep) ([]string, error) {
	scope, err := mutate.ParseScope(step.Scope)
	if err != nil {
		return nil, err
	}
	var date time.Time
	if step.Date != "" {
		if date, err = parseDate(step.Date); err != nil {
			return nil, err
		}
	}
	return resolver.Delete(book, scope, step.Target, date)
}

func (d FieldsDef) toFields() (mutate.Fields, error) {
	f := mutate.Fields{
		Description:  d.Description,
		Amount:       d.Amount,
		Instrument:   d.Instrument,
		Installments: d.Installments,
		Planned:      d.Planned,
		Tag:          d.Tag,
	}
	if d.Date != nil {
		date, err := parseDate(*d.Date)
		if err != nil {
			return f, err
		}
		f.OperationDate = mutate.DateP(date)
	}
	if d.Rule != nil {
		f.Rule = mutate.RuleP(ledger.RuleCode(*d.Rule))
	}
	return f, nil
}

// recordViews projects records for the trace, sorted by id for a
// stable output order.
func recordViews(records []*ledger.Obligation) []RecordView {
	out := make([]RecordView, 0, len(records))
	for _, o := range records {
		v := RecordView{
			ID:           o.ID,
			Description:  o.Description,
			Amount:       o.Amount,
			Instrument:   o.Instrument,
			Date:         o.OperationDate.Format(time.DateOnly),
			Settlement:   o.SettlementDate.Format(time.DateOnly),
			Rule:         string(o.Rule),
			Installments: o.Installments,
			Parent:       o.ParentID,
			Planned:      o.Planned,
			Tag:          o.Tag,
		}
		if !o.RuleEnd.IsZero() {
			v.RuleEnd = o.RuleEnd.Format(time.DateOnly)
		}
		for _, e := range o.Exceptions {
			v.Exceptions = append(v.Exceptions, e.Format(time.DateOnly))
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
