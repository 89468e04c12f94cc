// Package csv reads transaction records from and writes account balances to
// comma separated streams.
package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

// Header is the expected input header.
var Header = []string{"type", "client", "tx", "amount"}

// Reader yields transactions from a CSV stream in file order.
type Reader struct {
	r    *stdcsv.Reader
	line int
}

// NewReader reads and validates the header. Header cells are compared
// ignoring case and surrounding whitespace.
func NewReader(r io.Reader) (*Reader, error) {
	cr := stdcsv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	reader := &Reader{r: cr}

	header, err := reader.read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", domain.ErrInvalidHeader)
	}
	if err != nil {
		return nil, err
	}

	if !matchHeader(header) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidHeader, header)
	}

	return reader, nil
}

func matchHeader(cells []string) bool {
	if len(cells) != len(Header) {
		return false
	}
	for i, cell := range cells {
		if strings.ToLower(cell) != Header[i] {
			return false
		}
	}
	return true
}

// Next returns the next transaction, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (domain.Transaction, error) {
	cells, err := r.read()
	if err != nil {
		return domain.Transaction{}, err
	}

	tx, err := parseRecord(cells)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("line %d: %w", r.line, err)
	}
	return tx, nil
}

// Line returns the input line of the last record read.
func (r *Reader) Line() int {
	return r.line
}

// read returns the next non-blank record with trimmed cells.
func (r *Reader) read() ([]string, error) {
	for {
		record, err := r.r.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			var parseErr *stdcsv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
			}
			return nil, err
		}
		r.line, _ = r.r.FieldPos(0)

		blank := true
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
			if record[i] != "" {
				blank = false
			}
		}
		if !blank {
			return record, nil
		}
	}
}

func parseRecord(cells []string) (domain.Transaction, error) {
	// Trailing empty cells past the amount column are tolerated.
	for len(cells) > len(Header) && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	if len(cells) < 3 || len(cells) > len(Header) {
		return domain.Transaction{}, fmt.Errorf("%w: expected 3 or 4 fields, got %d", domain.ErrMalformedRecord, len(cells))
	}

	kind, err := domain.ParseTransactionKind(cells[0])
	if err != nil {
		return domain.Transaction{}, err
	}

	client, err := strconv.ParseUint(cells[1], 10, 16)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: client %q", domain.ErrMalformedRecord, cells[1])
	}

	tx, err := strconv.ParseUint(cells[2], 10, 32)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: tx %q", domain.ErrMalformedRecord, cells[2])
	}

	var amount *decimal.Decimal
	if kind.HasAmount() && len(cells) == 4 && cells[3] != "" {
		d, err := decimal.NewFromString(cells[3])
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("%w: amount %q", domain.ErrMalformedRecord, cells[3])
		}
		amount = &d
	}

	return domain.NewTransaction(kind, domain.ClientID(client), domain.TxID(tx), amount)
}
