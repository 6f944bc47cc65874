package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_Full(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: sample
description: a sample
today: 2025-03-10
instruments:
  - name: visa
    closing_day: 10
    due_day: 20
steps:
  - add:
      description: rent
      amount: -120000
      date: 2025-01-31
      rule: M
  - edit:
      target: r-1
      scope: single
      date: 2025-02-28
      fields:
        amount: -110000
  - delete:
      target: r-1
      scope: future
      date: 2025-04-30
window:
  from: 2025-01-01
  to: 2025-06-30
`))
	require.NoError(t, err)
	assert.Equal(t, "sample", s.Name)
	require.Len(t, s.Instruments, 1)
	assert.Equal(t, 10, s.Instruments[0].ClosingDay)
	require.Len(t, s.Steps, 3)
	require.NotNil(t, s.Steps[1].Edit)
	require.NotNil(t, s.Steps[1].Edit.Fields.Amount)
	assert.Equal(t, int64(-110000), *s.Steps[1].Edit.Fields.Amount)
	assert.Nil(t, s.Steps[1].Edit.Fields.Description, "absent fields stay nil")
	require.NotNil(t, s.Window)
}

func TestParseScenario_NameRequired(t *testing.T) {
	_, err := ParseScenario([]byte("today: 2025-01-01\nsteps: []\n"))
	assert.ErrorContains(t, err, "name")
}

func TestParseScenario_TodayRequired(t *testing.T) {
	_, err := ParseScenario([]byte("name: x\nsteps: []\n"))
	assert.Error(t, err)
}

func TestParseScenario_StepMustBeSingleAction(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: x
today: 2025-01-01
steps:
  - add:
      description: a
      amount: 1
      date: 2025-01-01
    delete:
      target: r-1
`))
	assert.ErrorContains(t, err, "exactly one")

	_, err = ParseScenario([]byte(`
name: x
today: 2025-01-01
steps:
  - expect_error: boom
`))
	assert.ErrorContains(t, err, "exactly one")
}

func TestParseScenario_BadWindow(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: x
today: 2025-01-01
steps: []
window:
  from: yesterday
  to: 2025-06-30
`))
	assert.ErrorContains(t, err, "window.from")
}

func TestLoadScenario_FromFile(t *testing.T) {
	s, err := LoadScenario("testdata/monthly_clamp_single_edit.yaml")
	require.NoError(t, err)
	assert.Equal(t, "monthly-clamp-single-edit", s.Name)
	assert.Len(t, s.Steps, 2)
}
