package harness

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is one declarative test case over the obligation core.
type Scenario struct {
	// Name uniquely identifies the scenario; golden files use it.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description,omitempty"`

	// Today freezes the clock at the given civil date (2006-01-02).
	Today string `yaml:"today"`

	// Instruments seeds the card instruments available to every step.
	Instruments []InstrumentDef `yaml:"instruments,omitempty"`

	// Steps run in order against the same record book.
	Steps []Step `yaml:"steps"`

	// Window materializes occurrences for the final trace. Optional.
	Window *WindowDef `yaml:"window,omitempty"`
}

// InstrumentDef declares a card instrument.
type InstrumentDef struct {
	Name       string `yaml:"name"`
	ClosingDay int    `yaml:"closing_day"`
	DueDay     int    `yaml:"due_day"`
}

// Step is one mutation. Exactly one of Add, Edit, Delete or Advance
// must be set.
type Step struct {
	Add     *AddStep    `yaml:"add,omitempty"`
	Edit    *EditStep   `yaml:"edit,omitempty"`
	Delete  *DeleteStep `yaml:"delete,omitempty"`
	Advance string      `yaml:"advance,omitempty"`

	// ExpectError marks a step that must fail; the value is matched as
	// a substring of the error message.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// AddStep creates a record.
type AddStep struct {
	Description  string `yaml:"description"`
	Amount       int64  `yaml:"amount"`
	Date         string `yaml:"date"`
	Rule         string `yaml:"rule,omitempty"`
	Instrument   string `yaml:"instrument,omitempty"`
	Installments int    `yaml:"installments,omitempty"`
	Planned      *bool  `yaml:"planned,omitempty"`
	Tag          string `yaml:"tag,omitempty"`
}

// EditStep applies a scoped edit to an occurrence.
type EditStep struct {
	Target string    `yaml:"target"`
	Scope  string    `yaml:"scope,omitempty"`
	Date   string    `yaml:"date,omitempty"`
	Fields FieldsDef `yaml:"fields"`
}

// FieldsDef mirrors mutate.Fields: absent keys mean "left blank".
type FieldsDef struct {
	Description  *string `yaml:"description,omitempty"`
	Amount       *int64  `yaml:"amount,omitempty"`
	Date         *string `yaml:"date,omitempty"`
	Rule         *string `yaml:"rule,omitempty"`
	Instrument   *string `yaml:"instrument,omitempty"`
	Installments *int    `yaml:"installments,omitempty"`
	Planned      *bool   `yaml:"planned,omitempty"`
	Tag          *string `yaml:"tag,omitempty"`
}

// DeleteStep applies a scoped delete to an occurrence.
type DeleteStep struct {
	Target string `yaml:"target"`
	Scope  string `yaml:"scope,omitempty"`
	Date   string `yaml:"date,omitempty"`
}

// WindowDef is the materialization window of the final trace.
type WindowDef struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if _, err := parseDate(s.Today); err != nil {
		return fmt.Errorf("scenario %s: invalid today: %w", s.Name, err)
	}
	for i, step := range s.Steps {
		set := 0
		if step.Add != nil {
			set++
		}
		if step.Edit != nil {
			set++
		}
		if step.Delete != nil {
			set++
		}
		if step.Advance != "" {
			set++
		}
		if set != 1 {
			return fmt.Errorf("scenario %s: step %d must set exactly one of add/edit/delete/advance", s.Name, i+1)
		}
	}
	if s.Window != nil {
		if _, err := parseDate(s.Window.From); err != nil {
			return fmt.Errorf("scenario %s: invalid window.from: %w", s.Name, err)
		}
		if _, err := parseDate(s.Window.To); err != nil {
			return fmt.Errorf("scenario %s: invalid window.to: %w", s.Name, err)
		}
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(time.DateOnly, raw)
}
