package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_ProfileNamespacing(t *testing.T) {
	assert.Equal(t, "workspaces/w1/transactions", Path("w1", "", "transactions"))
	assert.Equal(t, "workspaces/w1/eur/transactions", Path("w1", "eur", "transactions"))
}

func TestMemory_ReadWriteRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Read(ctx, "p")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Write(ctx, "p", Value(`{"a":1}`)))

	got, err := m.Read(ctx, "p")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
}

func TestMemory_SubscribeReceivesWrites(t *testing.T) {
	m := NewMemory()
	var got []string

	cancel := m.Subscribe("p", func(v Value) { got = append(got, string(v)) })
	defer cancel()

	require.NoError(t, m.Write(context.Background(), "p", Value(`1`)))
	require.NoError(t, m.Write(context.Background(), "p", Value(`2`)))

	assert.Equal(t, []string{"1", "2"}, got)
}

func TestMemory_SubscribeFiresWithCurrentValue(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Write(context.Background(), "p", Value(`"existing"`)))

	var got []string
	cancel := m.Subscribe("p", func(v Value) { got = append(got, string(v)) })
	defer cancel()

	assert.Equal(t, []string{`"existing"`}, got, "initial value pushed on subscribe")
}

func TestMemory_CancelStopsDelivery(t *testing.T) {
	m := NewMemory()
	var got int

	cancel := m.Subscribe("p", func(Value) { got++ })
	require.NoError(t, m.Write(context.Background(), "p", Value(`1`)))
	cancel()
	require.NoError(t, m.Write(context.Background(), "p", Value(`2`)))

	assert.Equal(t, 1, got)
}

func TestMemory_PushNotifiesLikeARemoteDevice(t *testing.T) {
	m := NewMemory()
	m.SetWriteErr(errors.New("offline"))

	var got []string
	cancel := m.Subscribe("p", func(v Value) { got = append(got, string(v)) })
	defer cancel()

	m.Push("p", Value(`"from-elsewhere"`))

	assert.Equal(t, []string{`"from-elsewhere"`}, got, "push bypasses the write error hook")
}

func TestMemory_WriteErrHook(t *testing.T) {
	m := NewMemory()
	boom := errors.New("offline")
	m.SetWriteErr(boom)

	err := m.Write(context.Background(), "p", Value(`1`))
	assert.ErrorIs(t, err, boom)

	m.SetWriteErr(nil)
	assert.NoError(t, m.Write(context.Background(), "p", Value(`1`)))
}

func TestMemory_DenyPrefix(t *testing.T) {
	m := NewMemory()
	m.DenyPrefix("workspaces/locked/")

	err := m.Write(context.Background(), "workspaces/locked/transactions", Value(`[]`))
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.NoError(t, m.Write(context.Background(), "workspaces/open/transactions", Value(`[]`)))
}
