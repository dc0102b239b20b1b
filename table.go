package wordquiz

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column names expected in the first row of a word list workbook.
const (
	ColumnWord    = "word"
	ColumnMeaning = "meaning"
	ColumnNumber  = "number"
	ColumnSection = "section"
)

// Table is a validated, typed word list. Records with an empty word or
// meaning never make it in.
type Table struct {
	Records []WordRecord

	// HasNumber / HasSection report column presence, which decides the
	// selection modes a request may use.
	HasNumber  bool
	HasSection bool

	// MultiSource is set when the table was pooled from more than one
	// workbook.
	MultiSource bool
}

// LoadTable parses one workbook's raw bytes into a Table. The first sheet is
// read; its first row must name the columns. word and meaning are required,
// number and section optional. A number cell that cannot be coerced to an
// integer leaves that record without a number rather than failing the load;
// real spreadsheets carry blank and annotation rows.
func LoadTable(data []byte, sourceLabel string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", sourceLabel, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, sourceLabel, err)
	}
	if len(rows) == 0 {
		return nil, &SchemaError{Source: sourceLabel, Missing: []string{ColumnWord, ColumnMeaning}}
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(h))
		if name != "" {
			cols[name] = i
		}
	}

	var missing []string
	for _, required := range []string{ColumnWord, ColumnMeaning} {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Source: sourceLabel, Missing: missing}
	}

	t := &Table{}
	_, t.HasNumber = cols[ColumnNumber]
	_, t.HasSection = cols[ColumnSection]

	for _, row := range rows[1:] {
		word := cell(row, cols[ColumnWord])
		meaning := cell(row, cols[ColumnMeaning])
		if word == "" || meaning == "" {
			continue
		}
		r := WordRecord{Word: word, Meaning: meaning, SourceLabel: sourceLabel}
		if t.HasNumber {
			if n, ok := coerceInt(cell(row, cols[ColumnNumber])); ok {
				r.Number = n
				r.HasNumber = true
			}
		}
		if t.HasSection {
			r.Section = cell(row, cols[ColumnSection])
		}
		t.Records = append(t.Records, r)
	}

	VerboseLog("Loaded %d records from %s (number=%v section=%v)",
		len(t.Records), sourceLabel, t.HasNumber, t.HasSection)
	return t, nil
}

// PoolTables concatenates tables into one pool. Each record keeps the source
// label it was loaded with. A column counts as present only when every input
// table carries it.
func PoolTables(tables ...*Table) *Table {
	pooled := &Table{HasNumber: true, HasSection: true}
	for _, t := range tables {
		pooled.Records = append(pooled.Records, t.Records...)
		pooled.HasNumber = pooled.HasNumber && t.HasNumber
		pooled.HasSection = pooled.HasSection && t.HasSection
	}
	if len(tables) == 0 {
		pooled.HasNumber = false
		pooled.HasSection = false
	}
	pooled.MultiSource = len(tables) > 1
	return pooled
}

// Sections returns the distinct section values in encounter order.
func (t *Table) Sections() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range t.Records {
		if r.Section == "" || seen[r.Section] {
			continue
		}
		seen[r.Section] = true
		out = append(out, r.Section)
	}
	return out
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// coerceInt accepts integers and float spellings like "3.0"; everything else
// fails the coercion.
func coerceInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
