// Package profile compiles CUE workspace profiles: declarative files
// naming a workspace's card instruments and default budgets.
//
// Profiles go through two layers of validation: the embedded CUE schema
// enforces types and day-range constraints (including dueDay >
// closingDay) at unification time, and the Go side re-checks the
// invariants the ledger types define. Compile errors carry CUE source
// positions.
package profile

import (
	_ "embed"
	"os"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/dueline/internal/ledger"
)

//go:embed schema.cue
var schemaCUE string

// BudgetSpec is a default budget declared by a profile.
type BudgetSpec struct {
	Tag       string
	Amount    int64
	Recurring bool
}

// Profile is a compiled workspace profile.
type Profile struct {
	Name        string
	Currency    string
	Instruments []ledger.Instrument
	Budgets     []BudgetSpec
}

// Load reads and compiles a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError("schema", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError("", err)
	}

	root := v.LookupPath(cue.ParsePath("profile"))
	if !root.Exists() {
		return nil, &CompileError{
			Field:   "profile",
			Message: "top-level profile struct is required",
			Pos:     v.Pos(),
		}
	}

	unified := root.Unify(schema.LookupPath(cue.ParsePath("#Profile")))
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, formatCUEError("profile", err)
	}
	return Compile(unified)
}

// Compile parses a CUE value into a Profile. The value should be the
// profile struct itself, already unified with the schema.
func Compile(v cue.Value) (*Profile, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("", err)
	}

	p := &Profile{}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError("name", err)
	}
	p.Name = name

	currencyVal := v.LookupPath(cue.ParsePath("currency"))
	if currencyVal.Exists() {
		currency, err := currencyVal.String()
		if err != nil {
			return nil, formatCUEError("currency", err)
		}
		p.Currency = currency
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}

	if p.Instruments, err = parseInstruments(v); err != nil {
		return nil, err
	}
	if p.Budgets, err = parseBudgets(v); err != nil {
		return nil, err
	}
	return p, nil
}

// parseInstruments extracts the instrument map, keyed by name, into a
// sorted slice. Sorting keeps profile application deterministic.
func parseInstruments(v cue.Value) ([]ledger.Instrument, error) {
	instVal := v.LookupPath(cue.ParsePath("instrument"))
	if !instVal.Exists() {
		return nil, nil
	}
	iter, err := instVal.Fields()
	if err != nil {
		return nil, formatCUEError("instrument", err)
	}

	var out []ledger.Instrument
	for iter.Next() {
		item := iter.Value()
		// Labels may be quoted in CUE ("gold visa"); strip the quotes.
		in := ledger.Instrument{Name: strings.Trim(iter.Selector().String(), `"`)}

		closing, err := item.LookupPath(cue.ParsePath("closingDay")).Int64()
		if err != nil {
			return nil, formatCUEError("instrument."+in.Name+".closingDay", err)
		}
		due, err := item.LookupPath(cue.ParsePath("dueDay")).Int64()
		if err != nil {
			return nil, formatCUEError("instrument."+in.Name+".dueDay", err)
		}
		in.ClosingDay = int(closing)
		in.DueDay = int(due)

		if err := in.Validate(); err != nil {
			return nil, &CompileError{
				Field:   "instrument." + in.Name,
				Message: err.Error(),
				Pos:     item.Pos(),
			}
		}
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// parseBudgets extracts the budget map, keyed by classification tag.
func parseBudgets(v cue.Value) ([]BudgetSpec, error) {
	budgetVal := v.LookupPath(cue.ParsePath("budget"))
	if !budgetVal.Exists() {
		return nil, nil
	}
	iter, err := budgetVal.Fields()
	if err != nil {
		return nil, formatCUEError("budget", err)
	}

	var out []BudgetSpec
	for iter.Next() {
		item := iter.Value()
		b := BudgetSpec{Tag: strings.Trim(iter.Selector().String(), `"`)}

		amount, err := item.LookupPath(cue.ParsePath("amount")).Int64()
		if err != nil {
			return nil, formatCUEError("budget."+b.Tag+".amount", err)
		}
		if amount <= 0 {
			return nil, &CompileError{
				Field:   "budget." + b.Tag + ".amount",
				Message: "budget amount must be positive",
				Pos:     item.Pos(),
			}
		}
		b.Amount = amount

		recurringVal := item.LookupPath(cue.ParsePath("recurring"))
		if recurringVal.Exists() {
			recurring, err := recurringVal.Bool()
			if err != nil {
				return nil, formatCUEError("budget."+b.Tag+".recurring", err)
			}
			b.Recurring = recurring
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out, nil
}
