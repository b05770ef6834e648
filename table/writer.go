package table

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/recipe"
	"github.com/soderasen-au/go-invoice/sheet"
	"github.com/soderasen-au/go-invoice/styling"
)

// Writer drives the row-by-row write of one planned table: rotating label
// column, projected scalars, row-relative formulas, then the merge pass and
// the reserved pad rows. It only writes; the plan owns all coordinates.
type Writer struct {
	Sheet        *sheet.Sheet
	Cols         ColumnIndex
	Rules        *ResolvedRules
	AfterHeader  *recipe.RowSlot
	BeforeFooter *recipe.RowSlot
	MergeColumns []recipe.ColumnRef
	Styler       *styling.Applier
	Logger       *zerolog.Logger
}

// WriteResult reports a completed table write. Truncation is the one
// anomaly that coexists with success.
type WriteResult struct {
	RowsWritten   int
	MergeSpans    int
	Truncated     bool
	TruncatedRows int
}

// Write fills the planned data range from the projection. A failed cell
// write aborts the build; rows already written stay (the caller discards the
// output document, since insertion already reshaped it).
func (w *Writer) Write(plan *LayoutPlan, proj *Projection) (*WriteResult, *util.Result) {
	ret := WriteResult{Truncated: plan.Truncated, TruncatedRows: plan.TruncatedRows}
	sheetName := w.Sheet.Name()

	rows := plan.DataRowCount()
	for i := 0; i < rows; i++ {
		r := plan.DataStart + i

		if ini := w.Rules.InitialStatic; ini != nil && len(ini.Values) > 0 {
			label := ini.Values[i%len(ini.Values)]
			if res := w.Sheet.SetValue(r, ini.Column, label); res != nil {
				return nil, WriteError(sheetName, r, ini.Column, ini.Field, res.Error())
			}
		}

		if i >= len(proj.Rows) {
			continue
		}
		row := proj.Rows[i]

		cols := make([]int, 0, len(row))
		for c := range row {
			cols = append(cols, c)
		}
		sort.Ints(cols)

		for _, c := range cols {
			cell := row[c]
			if c < 1 || c > w.Cols.NumColumns {
				return nil, WriteError(sheetName, r, c, w.fieldAt(c), fmt.Sprintf("column index out of range (1..%d)", w.Cols.NumColumns))
			}
			switch cell.Kind {
			case CellFormula:
				formula, res := w.buildFormula(cell, r)
				if res != nil {
					return nil, WriteError(sheetName, r, c, w.fieldAt(c), res.Error())
				}
				if res := w.Sheet.SetFormula(r, c, formula); res != nil {
					return nil, WriteError(sheetName, r, c, w.fieldAt(c), res.Error())
				}
			default:
				if cell.Value == nil {
					continue
				}
				if res := w.Sheet.SetValue(r, c, cell.Value); res != nil {
					return nil, WriteError(sheetName, r, c, w.fieldAt(c), res.Error())
				}
			}
		}
		ret.RowsWritten++
	}

	spans, res := w.mergeContiguousColumns(plan, proj)
	if res != nil {
		return nil, res.With("mergeContiguousColumns")
	}
	ret.MergeSpans = spans

	if plan.RowAfterHeader > 0 {
		if res := w.writeSlotRow(plan.RowAfterHeader, w.AfterHeader, styling.RegionAfterHeader); res != nil {
			return nil, res.With("writeSlotRow")
		}
	}
	if plan.RowBeforeFooter > 0 {
		if res := w.writeSlotRow(plan.RowBeforeFooter, w.BeforeFooter, styling.RegionBeforeFooter); res != nil {
			return nil, res.With("writeSlotRow")
		}
	}

	if w.Styler != nil {
		if res := w.Styler.ApplyData(plan.DataStart, plan.DataEnd, w.Cols.NumColumns, w.Cols.ByRef); res != nil {
			return nil, res.With("ApplyData")
		}
		dataRows := make([]int, 0, rows)
		for r := plan.DataStart; r <= plan.DataEnd; r++ {
			dataRows = append(dataRows, r)
		}
		if res := w.Styler.ApplyRowHeights(styling.RegionData, dataRows...); res != nil {
			return nil, res.With("ApplyRowHeights")
		}
	}

	w.Logger.Debug().Msgf("sheet `%s`: wrote %d data rows, %d merge spans", sheetName, ret.RowsWritten, ret.MergeSpans)
	return &ret, nil
}

func (w *Writer) fieldAt(col int) string {
	if w.Rules == nil {
		return ""
	}
	return w.Rules.targets[col]
}

// buildFormula expands a formula placeholder for one concrete row:
// `{col_ref_N}` becomes the Nth input's column letter, `{row}` the row
// number, and the result carries a leading `=`.
func (w *Writer) buildFormula(cell CellValue, row int) (string, *util.Result) {
	formula := cell.Template
	for i, input := range cell.Inputs {
		letter, res := w.Cols.Letter(input)
		if res != nil {
			return "", res.With("Letter")
		}
		formula = strings.ReplaceAll(formula, fmt.Sprintf("{col_ref_%d}", i), letter)
	}
	formula = strings.ReplaceAll(formula, "{row}", strconv.Itoa(row))
	if strings.Contains(formula, "{") {
		return "", util.MsgError("buildFormula", fmt.Sprintf("unresolved placeholder in formula `%s`", formula))
	}
	if !strings.HasPrefix(formula, "=") {
		formula = "=" + formula
	}
	return formula, nil
}

// writeSlotRow fills a reserved pad row with its static content and applies
// its horizontal merges.
func (w *Writer) writeSlotRow(row int, slot *recipe.RowSlot, region styling.RowRegion) *util.Result {
	if slot != nil {
		cols := make([]int, 0, len(slot.Content))
		for c := range slot.Content {
			cols = append(cols, c)
		}
		sort.Ints(cols)
		for _, c := range cols {
			if c < 1 || c > w.Cols.NumColumns {
				w.Logger.Warn().Msgf("sheet `%s`: static content column %d out of range, ignore", w.Sheet.Name(), c)
				continue
			}
			if res := w.Sheet.SetValue(row, c, slot.Content[c]); res != nil {
				return WriteError(w.Sheet.Name(), row, c, "", res.Error())
			}
		}
		if res := applyRowMerges(w.Sheet, row, w.Cols.NumColumns, slot.Merges); res != nil {
			return res.With("applyRowMerges")
		}
	}
	if w.Styler != nil {
		if res := w.Styler.ApplyRowHeights(region, row); res != nil {
			return res.With("ApplyRowHeights")
		}
	}
	return nil
}
