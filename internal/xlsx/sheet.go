package xlsx

import "strconv"

type Kind uint8

const (
	KindText Kind = iota
	KindNumber
)

// Cell is a single spreadsheet value, either text or a number.
type Cell struct {
	kind Kind
	text string
	num  float64
}

func Text(s string) Cell {
	return Cell{kind: KindText, text: s}
}

func Number(f float64) Cell {
	return Cell{kind: KindNumber, num: f}
}

func (c Cell) Kind() Kind {
	return c.kind
}

// String renders the cell the way a spreadsheet would show a general-format value.
func (c Cell) String() string {
	if c.kind == KindNumber {
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	}

	return c.text
}

// Float returns the numeric value of the cell and false for text cells.
func (c Cell) Float() (float64, bool) {
	if c.kind != KindNumber {
		return 0, false
	}

	return c.num, true
}

func (c Cell) value() interface{} {
	if c.kind == KindNumber {
		return c.num
	}

	return c.text
}

type Row []Cell

// TextRow builds a row of text cells.
func TextRow(values ...string) Row {
	r := make(Row, len(values))
	for i, v := range values {
		r[i] = Text(v)
	}
	return r
}

// Sheet is a named, ordered table of rows.
type Sheet struct {
	Name string
	Rows []Row
}

// NewSheet creates a sheet whose first row is the given header.
func NewSheet(name string, header ...string) Sheet {
	return Sheet{Name: name, Rows: []Row{TextRow(header...)}}
}

func (s *Sheet) Append(r Row) {
	s.Rows = append(s.Rows, r)
}

// Header returns row 0, or nil for an empty sheet.
func (s Sheet) Header() Row {
	if len(s.Rows) == 0 {
		return nil
	}

	return s.Rows[0]
}

func (s Sheet) Len() int {
	return len(s.Rows)
}
