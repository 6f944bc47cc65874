package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoad_FullProfile(t *testing.T) {
	path := writeProfile(t, `
profile: {
	name:     "personal"
	currency: "EUR"
	instrument: {
		visa:         {closingDay: 10, dueDay: 20}
		"gold master": {closingDay: 5, dueDay: 15}
	}
	budget: {
		food: {amount: 50000, recurring: true}
		fun:  {amount: 20000}
	}
}
`)
	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "personal", p.Name)
	assert.Equal(t, "EUR", p.Currency)

	require.Len(t, p.Instruments, 2)
	assert.Equal(t, "gold master", p.Instruments[0].Name, "instruments sorted by name")
	assert.Equal(t, "visa", p.Instruments[1].Name)
	assert.Equal(t, 10, p.Instruments[1].ClosingDay)
	assert.Equal(t, 20, p.Instruments[1].DueDay)

	require.Len(t, p.Budgets, 2)
	assert.Equal(t, "food", p.Budgets[0].Tag)
	assert.True(t, p.Budgets[0].Recurring)
	assert.Equal(t, int64(20000), p.Budgets[1].Amount)
	assert.False(t, p.Budgets[1].Recurring, "recurring defaults to false")
}

func TestLoad_CurrencyDefaults(t *testing.T) {
	path := writeProfile(t, `profile: name: "minimal"`)
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "USD", p.Currency)
	assert.Empty(t, p.Instruments)
	assert.Empty(t, p.Budgets)
}

func TestLoad_DueDayMustFollowClosingDay(t *testing.T) {
	path := writeProfile(t, `
profile: {
	name: "broken"
	instrument: visa: {closingDay: 20, dueDay: 10}
}
`)
	_, err := Load(path)
	require.Error(t, err)
	var ce *CompileError
	assert.True(t, errors.As(err, &ce))
}

func TestLoad_MissingProfileStruct(t *testing.T) {
	path := writeProfile(t, `something: else: true`)
	_, err := Load(path)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "profile", ce.Field)
}

func TestLoad_SyntaxErrorCarriesPosition(t *testing.T) {
	path := writeProfile(t, "profile: {\n\tname: \"x\"\n\tbad syntax here\n")
	_, err := Load(path)
	require.Error(t, err)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.True(t, ce.Pos.IsValid(), "syntax errors point at the file")
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.cue"))
	assert.Error(t, err)
}

func TestCompile_DirectValue(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`{name: "direct", instrument: amex: {closingDay: 1, dueDay: 28}}`)
	require.NoError(t, v.Err())

	p, err := Compile(v)
	require.NoError(t, err)
	assert.Equal(t, "direct", p.Name)
	require.Len(t, p.Instruments, 1)
	assert.Equal(t, "amex", p.Instruments[0].Name)
}

func TestCompile_MissingName(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`{currency: "USD"}`)

	_, err := Compile(v)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "name", ce.Field)
}

func TestCompile_BudgetAmountMustBePositive(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`{name: "p", budget: food: {amount: -5}}`)

	_, err := Compile(v)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "budget.food.amount", ce.Field)
}
