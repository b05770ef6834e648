package table

import (
	"reflect"
	"sort"

	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/sheet"
)

// mergeContiguousColumns merges vertical runs of equal values in the
// configured columns. Runs are strictly contiguous: a differing value, an
// absent cell or a formula cell ends the run, and equal values separated by
// a break are never merged across it.
func (w *Writer) mergeContiguousColumns(plan *LayoutPlan, proj *Projection) (int, *util.Result) {
	if len(w.MergeColumns) == 0 || plan.DataRowCount() < 2 {
		return 0, nil
	}

	spans := 0
	for _, ref := range w.MergeColumns {
		col, ok := w.Cols.Resolve(ref)
		if !ok {
			return 0, ConfigError(w.Sheet.Name(), "merge column ref `"+string(ref)+"` not found in header")
		}

		runStart := -1
		var runValue any
		flush := func(endRow int) *util.Result {
			if runStart < 0 || endRow <= runStart {
				return nil
			}
			if res := w.Sheet.Merge(runStart, col, endRow, col); res != nil {
				return res.With("Merge")
			}
			spans++
			return nil
		}

		for i := 0; i < plan.DataRowCount(); i++ {
			r := plan.DataStart + i

			var cell CellValue
			present := false
			if i < len(proj.Rows) {
				cell, present = proj.Rows[i][col]
			}
			mergeable := present && cell.Kind == CellScalar && cell.Value != nil

			if mergeable && runStart >= 0 && reflect.DeepEqual(cell.Value, runValue) {
				continue
			}
			if res := flush(r - 1); res != nil {
				return 0, res
			}
			if mergeable {
				runStart, runValue = r, cell.Value
			} else {
				runStart = -1
			}
		}
		if res := flush(plan.DataEnd); res != nil {
			return 0, res
		}
	}
	return spans, nil
}

// applyRowMerges merges horizontal spans within one row. Keys are 1-based
// start columns, values the span width; spans are clamped to the table.
func applyRowMerges(ws *sheet.Sheet, row, numCols int, merges map[int]int) *util.Result {
	if len(merges) == 0 {
		return nil
	}
	starts := make([]int, 0, len(merges))
	for c := range merges {
		starts = append(starts, c)
	}
	sort.Ints(starts)

	for _, start := range starts {
		span := merges[start]
		if start < 1 || span < 2 {
			continue
		}
		end := start + span - 1
		if end > numCols {
			end = numCols
		}
		if end <= start {
			continue
		}
		if res := ws.Merge(row, start, row, end); res != nil {
			return res.With("Merge")
		}
	}
	return nil
}
