package csv

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/txledger/internal/domain"
)

func TestWriter_WriteAccounts(t *testing.T) {
	var buf bytes.Buffer

	err := NewWriter(&buf).WriteAccounts([]domain.AccountSnapshot{
		{
			Client:    1,
			Available: decimal.RequireFromString("1.5"),
			Held:      decimal.Zero,
			Total:     decimal.RequireFromString("1.5"),
		},
		{
			Client:    2,
			Available: decimal.RequireFromString("-2"),
			Held:      decimal.RequireFromString("3.1234"),
			Total:     decimal.RequireFromString("1.1234"),
			Locked:    true,
		},
	})
	require.NoError(t, err)

	want := "client,available,held,total,locked\n" +
		"1,1.5000,0.0000,1.5000,false\n" +
		"2,-2.0000,3.1234,1.1234,true\n"
	assert.Equal(t, want, buf.String())
}

func TestWriter_EmptyLedgerWritesHeader(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewWriter(&buf).WriteAccounts(nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_PropagatesWriteError(t *testing.T) {
	err := NewWriter(failingWriter{}).WriteAccounts(nil)
	assert.EqualError(t, err, "disk full")
}
