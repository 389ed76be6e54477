package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// csvRow binds the folded header names. gocsv matches headers exactly, so
// foldingReader lower-cases the header record before it is matched.
type csvRow struct {
	Date     string `csv:"date"`
	Merchant string `csv:"merchant"`
	Amount   string `csv:"amount"`
	Category string `csv:"category"`
	Payment  string `csv:"payment"`
}

type foldingReader struct {
	r         *csv.Reader
	seen      bool
	headerErr error
}

func (f *foldingReader) fold(rec []string) {
	f.seen = true
	for i := range rec {
		rec[i] = foldHeader(rec[i])
	}
	_, f.headerErr = columnIndex(rec)
}

func (f *foldingReader) Read() ([]string, error) {
	rec, err := f.r.Read()
	if err == nil && !f.seen {
		f.fold(rec)
	}
	return rec, err
}

func (f *foldingReader) ReadAll() ([][]string, error) {
	recs, err := f.r.ReadAll()
	if err == nil && len(recs) > 0 && !f.seen {
		f.fold(recs[0])
	}
	return recs, err
}

// ParseCSV reads a comma-separated file with a header row.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	in := &foldingReader{r: cr}

	var parsed []csvRow
	err := gocsv.UnmarshalCSV(in, &parsed)
	if in.headerErr != nil {
		return nil, in.headerErr
	}
	if err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) || !in.seen {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	rows := make([]Row, 0, len(parsed))
	for i, p := range parsed {
		row := Row{
			Number:   i + 2,
			Date:     strings.TrimSpace(p.Date),
			Merchant: cleanMerchant(p.Merchant),
			Amount:   strings.TrimSpace(p.Amount),
			Category: strings.TrimSpace(p.Category),
			Payment:  strings.TrimSpace(p.Payment),
		}
		if row.blank() {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}
