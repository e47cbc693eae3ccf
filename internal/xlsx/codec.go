// Package xlsx encodes single-sheet workbooks in the Office Open XML
// spreadsheet format and decodes them back into rows of text and number cells.
package xlsx

import (
	"bytes"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var ErrCorruptData = errors.New("corrupt workbook data")
var ErrInvalidSheet = errors.New("invalid sheet")
var ErrInvalidCell = errors.New("invalid cell text")

// the sheet every new workbook starts with
const defaultSheet = "Sheet1"

// CheckText reports whether s can be stored in a text cell unchanged. The
// workbook format cannot carry invalid UTF-8 or characters outside the XML
// character range, and it truncates text longer than excelize.TotalCellChars
// UTF-16 units.
func CheckText(s string) error {
	if !utf8.ValidString(s) {
		return errors.Wrap(ErrInvalidCell, "text is not valid UTF-8")
	}

	units := 0
	for i, r := range s {
		if !xmlChar(r) {
			return errors.Wrapf(ErrInvalidCell, "character %U at byte %d is not allowed", r, i)
		}
		units += utf16.RuneLen(r)
	}

	if units > excelize.TotalCellChars {
		return errors.Wrapf(ErrInvalidCell, "text is %d characters long, the limit is %d", units, excelize.TotalCellChars)
	}

	return nil
}

func xmlChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= utf8.MaxRune:
		return true
	default:
		return false
	}
}

// Encode writes s as the only sheet of a fresh workbook. Text cells that
// CheckText rejects fail the whole encode.
func Encode(s Sheet) ([]byte, error) {
	if s.Name == "" {
		return nil, errors.Wrap(ErrInvalidSheet, "sheet name is empty")
	}

	f := excelize.NewFile()
	defer f.Close()

	if s.Name != defaultSheet {
		if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
			return nil, errors.Wrapf(ErrInvalidSheet, "could not name sheet %q: %v", s.Name, err)
		}
	}

	for i, row := range s.Rows {
		if len(row) == 0 {
			continue
		}

		values := make([]interface{}, len(row))
		for j, c := range row {
			if c.kind == KindText {
				if err := CheckText(c.text); err != nil {
					return nil, errors.Wrapf(err, "row %d column %d", i+1, j+1)
				}
			}
			values[j] = c.value()
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d is out of range", i+1)
		}

		if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
			return nil, errors.Wrapf(err, "could not write row %d of sheet %s", i+1, s.Name)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrapf(err, "could not serialize workbook with sheet %s", s.Name)
	}

	return buf.Bytes(), nil
}

// Decode reads the sheet called name out of a workbook. Anything that is not a
// readable workbook containing that sheet yields ErrCorruptData.
func Decode(b []byte, name string) (Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return Sheet{}, errors.Wrapf(ErrCorruptData, "could not open workbook: %v", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(name)
	if err != nil || idx == -1 {
		return Sheet{}, errors.Wrapf(ErrCorruptData, "sheet %s is absent", name)
	}

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, errors.Wrapf(ErrCorruptData, "could not read rows of sheet %s: %v", name, err)
	}

	s := Sheet{Name: name, Rows: make([]Row, 0, len(raw))}
	for i, values := range raw {
		row := make(Row, 0, len(values))
		for j, v := range values {
			c, err := decodeCell(f, name, j+1, i+1, v)
			if err != nil {
				return Sheet{}, err
			}
			row = append(row, c)
		}
		s.Rows = append(s.Rows, row)
	}

	return s, nil
}

func decodeCell(f *excelize.File, sheet string, col, row int, v string) (Cell, error) {
	if v == "" {
		return Text(""), nil
	}

	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{}, errors.Wrapf(ErrCorruptData, "cell %d:%d is out of range", col, row)
	}

	ct, err := f.GetCellType(sheet, axis)
	if err != nil {
		return Cell{}, errors.Wrapf(ErrCorruptData, "could not resolve type of cell %s: %v", axis, err)
	}

	// numeric cells carry no explicit type attribute when written by excelize
	if ct == excelize.CellTypeNumber || ct == excelize.CellTypeUnset {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return Number(n), nil
		}
	}

	return Text(v), nil
}
