package batch

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/turtacn/TextCoder/pkg/errors"
)

// Table is a header plus data records. Records shorter than the header are
// padded with empty cells on read.
type Table struct {
	Header  []string
	Records [][]string
}

// ReadTable parses CSV from r. A leading UTF-8 BOM is dropped.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "malformed CSV")
	}
	return newTable(all, "CSV")
}

// ReadWorkbook parses the first sheet of an .xlsx workbook from r.
func ReadWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "malformed workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "workbook has no sheets")
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "read sheet "+sheets[0])
	}
	return newTable(all, "sheet")
}

func newTable(all [][]string, kind string) (*Table, error) {
	if len(all) == 0 || len(all[0]) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, kind+" has no header row")
	}

	header := all[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	t := &Table{Header: header, Records: make([][]string, 0, len(all)-1)}
	for _, rec := range all[1:] {
		if isBlank(rec) && len(header) > 1 {
			continue
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// isBlank reports an empty line: excelize returns nil for blank rows, csv a
// single empty field.
func isBlank(rec []string) bool {
	return len(rec) == 0 || (len(rec) == 1 && rec[0] == "")
}

// Column returns the index of name in the header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// WriteTable writes header and records as CSV.
func WriteTable(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "write CSV header")
	}
	if err := cw.WriteAll(records); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "write CSV records")
	}
	return nil
}

//Personal.AI order the ending
