package sheet

import (
	"fmt"
	"strings"

	"github.com/soderasen-au/go-common/util"
	"github.com/xuri/excelize/v2"
)

// Workbook wraps one excelize document. A template workbook is opened once
// and treated as read-only; the output workbook owns all mutation.
type Workbook struct {
	f *excelize.File
}

func OpenWorkbook(path string) (*Workbook, *util.Result) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, util.Error("OpenFile", err)
	}
	return &Workbook{f: f}, nil
}

func NewWorkbook() *Workbook {
	return &Workbook{f: excelize.NewFile()}
}

func (w *Workbook) File() *excelize.File { return w.f }

func (w *Workbook) Save(path string) *util.Result {
	if err := w.f.SaveAs(path); err != nil {
		return util.Error("SaveAs", err)
	}
	return nil
}

func (w *Workbook) Close() *util.Result {
	if err := w.f.Close(); err != nil {
		return util.Error("Close", err)
	}
	return nil
}

// Sheet returns a handle on an existing worksheet.
func (w *Workbook) Sheet(name string) (*Sheet, *util.Result) {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil {
		return nil, util.Error("GetSheetIndex", err)
	}
	if idx < 0 {
		return nil, util.MsgError("GetSheetIndex", fmt.Sprintf("sheet `%s` does not exist", name))
	}
	return &Sheet{f: w.f, name: name}, nil
}

// EnsureSheet returns a handle on a worksheet, creating it when missing.
func (w *Workbook) EnsureSheet(name string) (*Sheet, *util.Result) {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil {
		return nil, util.Error("GetSheetIndex", err)
	}
	if idx < 0 {
		if _, err := w.f.NewSheet(name); err != nil {
			return nil, util.Error("NewSheet", err)
		}
	}
	return &Sheet{f: w.f, name: name}, nil
}

// Sheet exposes the six primitives the table engine depends on (read cell,
// insert rows, set value, set formula, merge, row height) plus the unmerge
// pass row insertion needs.
type Sheet struct {
	f    *excelize.File
	name string
}

func (s *Sheet) Name() string         { return s.name }
func (s *Sheet) File() *excelize.File { return s.f }

// CellName renders 1-based (row, col) coordinates as an A1 reference.
func CellName(row, col int) (string, *util.Result) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", util.Error("CoordinatesToCellName", err)
	}
	return name, nil
}

// ColumnLetter renders a 1-based column index as its letter name.
func ColumnLetter(col int) (string, *util.Result) {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return "", util.Error("ColumnNumberToName", err)
	}
	return name, nil
}

// CellValue reads a cell's rendered value.
func (s *Sheet) CellValue(row, col int) (string, *util.Result) {
	cell, res := CellName(row, col)
	if res != nil {
		return "", res.With("CellName")
	}
	v, err := s.f.GetCellValue(s.name, cell)
	if err != nil {
		return "", util.Error("GetCellValue", err)
	}
	return v, nil
}

// Rows returns all populated rows as rendered strings.
func (s *Sheet) Rows() ([][]string, *util.Result) {
	rows, err := s.f.GetRows(s.name)
	if err != nil {
		return nil, util.Error("GetRows", err)
	}
	return rows, nil
}

// SetValue writes a scalar cell value.
func (s *Sheet) SetValue(row, col int, v any) *util.Result {
	cell, res := CellName(row, col)
	if res != nil {
		return res.With("CellName")
	}
	if err := s.f.SetCellValue(s.name, cell, v); err != nil {
		return util.Error("SetCellValue", err)
	}
	return nil
}

// SetFormula writes a formula cell. A leading `=` is accepted and stripped;
// excelize stores formulas without it.
func (s *Sheet) SetFormula(row, col int, formula string) *util.Result {
	cell, res := CellName(row, col)
	if res != nil {
		return res.With("CellName")
	}
	formula = strings.TrimPrefix(formula, "=")
	if err := s.f.SetCellFormula(s.name, cell, formula); err != nil {
		return util.Error("SetCellFormula", err)
	}
	return nil
}

// Formula reads back a cell's formula (empty for scalar cells).
func (s *Sheet) Formula(row, col int) (string, *util.Result) {
	cell, res := CellName(row, col)
	if res != nil {
		return "", res.With("CellName")
	}
	v, err := s.f.GetCellFormula(s.name, cell)
	if err != nil {
		return "", util.Error("GetCellFormula", err)
	}
	return v, nil
}

// InsertRows inserts n rows before the anchor row in one structural
// operation.
func (s *Sheet) InsertRows(anchor, n int) *util.Result {
	if anchor < 1 {
		return util.MsgError("InsertRows", fmt.Sprintf("invalid anchor row %d", anchor))
	}
	if n < 1 {
		return util.MsgError("InsertRows", fmt.Sprintf("invalid row count %d", n))
	}
	if err := s.f.InsertRows(s.name, anchor, n); err != nil {
		return util.Error("InsertRows", err)
	}
	return nil
}

// Merge merges the rectangle (r1,c1)-(r2,c2).
func (s *Sheet) Merge(r1, c1, r2, c2 int) *util.Result {
	hCell, res := CellName(r1, c1)
	if res != nil {
		return res.With("CellName")
	}
	vCell, res := CellName(r2, c2)
	if res != nil {
		return res.With("CellName")
	}
	if err := s.f.MergeCell(s.name, hCell, vCell); err != nil {
		return util.Error("MergeCell", err)
	}
	return nil
}

// SetRowHeight sets one row's height.
func (s *Sheet) SetRowHeight(row int, height float64) *util.Result {
	if err := s.f.SetRowHeight(s.name, row, height); err != nil {
		return util.Error("SetRowHeight", err)
	}
	return nil
}

// MergedRanges lists the sheet's merge ranges as `A1:B2` strings.
func (s *Sheet) MergedRanges() ([]string, *util.Result) {
	merges, err := s.f.GetMergeCells(s.name)
	if err != nil {
		return nil, util.Error("GetMergeCells", err)
	}
	ranges := make([]string, 0, len(merges))
	for _, m := range merges {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	return ranges, nil
}

// UnmergeBlock removes every merge range overlapping rows [r1, r2] within
// columns [1, numCols]. Freshly inserted rows inherit merge spans from the
// rows they displaced; the block is cleared before any cell is written.
func (s *Sheet) UnmergeBlock(r1, r2, numCols int) *util.Result {
	if r1 < 1 || r2 < r1 {
		return nil
	}
	merges, err := s.f.GetMergeCells(s.name)
	if err != nil {
		return util.Error("GetMergeCells", err)
	}
	for _, m := range merges {
		c1, mr1, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			return util.Error("CellNameToCoordinates", err)
		}
		c2, mr2, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			return util.Error("CellNameToCoordinates", err)
		}
		rowOverlap := mr1 <= r2 && mr2 >= r1
		colOverlap := c1 <= numCols && c2 >= 1
		if rowOverlap && colOverlap {
			if err := s.f.UnmergeCell(s.name, m.GetStartAxis(), m.GetEndAxis()); err != nil {
				return util.Error("UnmergeCell", err)
			}
		}
	}
	return nil
}

// SetColWidth sets one column's width.
func (s *Sheet) SetColWidth(col int, width float64) *util.Result {
	letter, res := ColumnLetter(col)
	if res != nil {
		return res.With("ColumnLetter")
	}
	if err := s.f.SetColWidth(s.name, letter, letter, width); err != nil {
		return util.Error("SetColWidth", err)
	}
	return nil
}

// SetStyle applies a style id over the rectangle (r1,c1)-(r2,c2).
func (s *Sheet) SetStyle(r1, c1, r2, c2, styleID int) *util.Result {
	hCell, res := CellName(r1, c1)
	if res != nil {
		return res.With("CellName")
	}
	vCell, res := CellName(r2, c2)
	if res != nil {
		return res.With("CellName")
	}
	if err := s.f.SetCellStyle(s.name, hCell, vCell, styleID); err != nil {
		return util.Error("SetCellStyle", err)
	}
	return nil
}
