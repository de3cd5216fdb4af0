// Package dataset loads and persists delimited tables as gota data frames.
//
// Every column is read as a string series so that cell text round-trips
// unchanged: no type detection, no NaN rewriting, no synthetic index column.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultDelimiter is the field separator used when none is configured.
const DefaultDelimiter = ','

var errNoHeader = errors.New("parse table: no header row")

// Table is a data frame together with the header exactly as it was read.
// gota renames blank and duplicate column names (",a,a" becomes "X0,a_0,a_1");
// Header keeps the original cells and is what Encode writes back. Columns are
// matched to Header by position.
type Table struct {
	Header []string
	dataframe.DataFrame
}

// Read loads the delimited file at path. The first record is the header.
func Read(path string, delimiter rune) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	return Decode(bufio.NewReader(f), delimiter)
}

// Decode loads a delimited table from r. A header without rows yields a
// zero-row table.
func Decode(r io.Reader, delimiter rune) (Table, error) {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse table: %w", err)
	}
	if len(records) == 0 {
		return Table{}, errNoHeader
	}
	header := append([]string(nil), records[0]...)
	if len(records) == 1 {
		return Table{Header: header, DataFrame: empty(header)}, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return Table{}, fmt.Errorf("parse table: %w", df.Err)
	}
	return Table{Header: header, DataFrame: df}, nil
}

// Write persists t to path with a header row, truncating any existing file.
// The parent directory must already exist.
func Write(path string, t Table, delimiter rune) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, t, delimiter); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes t to w, header first. Cell values round-trip exactly; the
// bytes may not, since fields with a leading space or a delimiter are quoted.
func Encode(w io.Writer, t Table, delimiter rune) error {
	if t.Err != nil {
		return t.Err
	}
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	header := t.Header
	if header == nil {
		header = t.Names()
	}
	if len(header) != t.Ncol() {
		return fmt.Errorf("header has %d fields, table has %d columns", len(header), t.Ncol())
	}

	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	if err := cw.Write(header); err != nil {
		return err
	}
	return cw.WriteAll(Rows(t))
}

// Rows returns the table body as string records, without the header.
func Rows(t Table) [][]string {
	return t.Records()[1:]
}

// Subset returns the rows at the given positions, in that order. The header
// is carried over unchanged.
func Subset(t Table, rows []int) (Table, error) {
	if len(rows) == 0 {
		return Table{Header: t.Header, DataFrame: empty(t.Names())}, nil
	}
	sub := t.DataFrame.Subset(rows)
	if sub.Err != nil {
		return Table{}, sub.Err
	}
	return Table{Header: t.Header, DataFrame: sub}, nil
}

func empty(names []string) dataframe.DataFrame {
	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = series.New([]string{}, series.String, name)
	}
	return dataframe.New(cols...)
}
