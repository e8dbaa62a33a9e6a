package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedInput marks a structurally broken CSV (unterminated quoting,
// inconsistent column counts, missing header). The whole upload is aborted on
// this error, no partial ingestion of a corrupt file.
var ErrMalformedInput = errors.New("malformed csv input")

// Row is one record keyed by its header column name.
type Row map[string]string

// RowReader yields header-keyed rows from delimited text, one at a time and in
// file order. The header line is consumed on construction.
type RowReader struct {
	csv    *csv.Reader
	header []string
}

func NewRowReader(r io.Reader) (*RowReader, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header line", ErrMalformedInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &RowReader{csv: cr, header: header}, nil
}

// Next returns the next row, or io.EOF once the input is exhausted. Any other
// error wraps ErrMalformedInput; the reader must not be used after one.
func (r *RowReader) Next() (Row, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	row := make(Row, len(r.header))
	for i, name := range r.header {
		row[name] = record[i]
	}
	return row, nil
}
