package table

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/recipe"
	"github.com/soderasen-au/go-invoice/sheet"
	"github.com/soderasen-au/go-invoice/styling"
)

// ColumnIndex resolves ColumnRefs to 1-based column indices. It is built
// once per table during header construction; every later component resolves
// through it and never re-derives positions.
type ColumnIndex struct {
	ByRef      map[recipe.ColumnRef]int
	Titles     map[int]string
	NumColumns int
}

func (ci ColumnIndex) Resolve(ref recipe.ColumnRef) (int, bool) {
	col, ok := ci.ByRef[ref]
	return col, ok
}

// Letter resolves a ColumnRef straight to its column letter.
func (ci ColumnIndex) Letter(ref recipe.ColumnRef) (string, *util.Result) {
	col, ok := ci.ByRef[ref]
	if !ok {
		return "", util.MsgError("ResolveColumn", fmt.Sprintf("unknown column ref `%s`", ref))
	}
	letter, res := sheet.ColumnLetter(col)
	if res != nil {
		return "", res.With("ColumnLetter")
	}
	return letter, nil
}

// HeaderInfo is the result of building one table header.
type HeaderInfo struct {
	FirstRow int
	LastRow  int
	Columns  ColumnIndex
}

// BuildHeader writes the header grid from the recipe's structural section,
// merges its spans, and returns the ColumnRef->index map the rest of the
// table build resolves against. Positional aliases `#N` (1-based) are
// registered for every occupied column so legacy recipes can address columns
// by number.
func BuildHeader(ws *sheet.Sheet, startRow int, cells []recipe.HeaderCell, styler *styling.Applier, logger *zerolog.Logger) (*HeaderInfo, *util.Result) {
	if len(cells) == 0 {
		return nil, LayoutError(ws.Name(), "no header cells to write")
	}
	if startRow < 1 {
		return nil, LayoutError(ws.Name(), fmt.Sprintf("invalid header start row %d", startRow))
	}

	// Clear merges the template may carry over the header block before
	// writing into it.
	numRows, numCols := headerDims(cells)
	if res := ws.UnmergeBlock(startRow, startRow+numRows-1, numCols); res != nil {
		return nil, res.With("UnmergeBlock")
	}

	info := HeaderInfo{
		FirstRow: startRow,
		LastRow:  startRow,
		Columns: ColumnIndex{
			ByRef:  make(map[recipe.ColumnRef]int),
			Titles: make(map[int]string),
		},
	}

	for _, cell := range cells {
		rowSpan, colSpan := cell.RowSpan, cell.ColSpan
		if rowSpan < 1 {
			rowSpan = 1
		}
		if colSpan < 1 {
			colSpan = 1
		}
		row := startRow + cell.Row
		col := 1 + cell.Col

		if row+rowSpan-1 > info.LastRow {
			info.LastRow = row + rowSpan - 1
		}
		if col+colSpan-1 > info.Columns.NumColumns {
			info.Columns.NumColumns = col + colSpan - 1
		}

		logger.Debug().Msgf("header cell (%d, %d): `%s`", row, col, cell.Text)
		if res := ws.SetValue(row, col, cell.Text); res != nil {
			return nil, res.With("SetValue")
		}

		if cell.ID != "" {
			info.Columns.ByRef[cell.ID] = col
			info.Columns.Titles[col] = cell.Text
		}

		if rowSpan > 1 || colSpan > 1 {
			if res := ws.Merge(row, col, row+rowSpan-1, col+colSpan-1); res != nil {
				return nil, res.With("Merge")
			}
		}
	}

	for col := 1; col <= info.Columns.NumColumns; col++ {
		alias := recipe.ColumnRef(fmt.Sprintf("#%d", col))
		if _, taken := info.Columns.ByRef[alias]; !taken {
			info.Columns.ByRef[alias] = col
		}
	}

	if styler != nil {
		if res := styler.ApplyHeader(info.FirstRow, info.LastRow, info.Columns.NumColumns); res != nil {
			return nil, res.With("ApplyHeader")
		}
		headerRows := make([]int, 0, info.LastRow-info.FirstRow+1)
		for r := info.FirstRow; r <= info.LastRow; r++ {
			headerRows = append(headerRows, r)
		}
		if res := styler.ApplyRowHeights(styling.RegionHeader, headerRows...); res != nil {
			return nil, res.With("ApplyRowHeights")
		}
		if res := styler.ApplyColumnWidths(info.Columns.ByRef); res != nil {
			return nil, res.With("ApplyColumnWidths")
		}
	}

	return &info, nil
}

func headerDims(cells []recipe.HeaderCell) (rows, cols int) {
	for _, c := range cells {
		rs, cs := c.RowSpan, c.ColSpan
		if rs < 1 {
			rs = 1
		}
		if cs < 1 {
			cs = 1
		}
		if c.Row+rs > rows {
			rows = c.Row + rs
		}
		if c.Col+cs > cols {
			cols = c.Col + cs
		}
	}
	return rows, cols
}
