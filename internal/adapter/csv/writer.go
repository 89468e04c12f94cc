package csv

import (
	stdcsv "encoding/csv"
	"io"
	"strconv"

	"github.com/iho/txledger/internal/domain"
)

// OutputHeader is the header of the account table.
var OutputHeader = []string{"client", "available", "held", "total", "locked"}

// Writer serializes account snapshots.
type Writer struct {
	w *stdcsv.Writer
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: stdcsv.NewWriter(w)}
}

// WriteAccounts writes the header followed by one row per account in the given order.
func (w *Writer) WriteAccounts(accounts []domain.AccountSnapshot) error {
	if err := w.w.Write(OutputHeader); err != nil {
		return err
	}

	row := make([]string, len(OutputHeader))
	for _, acc := range accounts {
		row[0] = strconv.FormatUint(uint64(acc.Client), 10)
		row[1] = acc.Available.StringFixed(domain.AmountPrecision)
		row[2] = acc.Held.StringFixed(domain.AmountPrecision)
		row[3] = acc.Total.StringFixed(domain.AmountPrecision)
		row[4] = strconv.FormatBool(acc.Locked)
		if err := w.w.Write(row); err != nil {
			return err
		}
	}

	w.w.Flush()
	return w.w.Error()
}
