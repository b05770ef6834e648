package table

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/data"
	"github.com/soderasen-au/go-invoice/recipe"
	"github.com/soderasen-au/go-invoice/sheet"
	"github.com/soderasen-au/go-invoice/styling"
)

const (
	netWeightLabel   = "NW(KGS)"
	grossWeightLabel = "GW(KGS):"
)

// WeightTotals is the net/gross weight sum of a table's rows.
type WeightTotals struct {
	Net   decimal.Decimal
	Gross decimal.Decimal
}

func (t *WeightTotals) Add(o WeightTotals) {
	t.Net = t.Net.Add(o.Net)
	t.Gross = t.Gross.Add(o.Gross)
}

// SumWeights folds the weight columns' scalar cells over the rows that made
// it into the table, so a truncated build sums the truncated range.
// Non-numeric cells are skipped, not errors.
func SumWeights(cols ColumnIndex, cfg *recipe.WeightSummaryConfig, plan *LayoutPlan, proj *Projection) WeightTotals {
	var totals WeightTotals
	if cfg == nil || !cfg.Enabled {
		return totals
	}
	netCol, hasNet := cols.Resolve(cfg.NetColumn)
	grossCol, hasGross := cols.Resolve(cfg.GrossColumn)
	if !hasNet && !hasGross {
		return totals
	}

	n := plan.DataRowCount()
	if n > len(proj.Rows) {
		n = len(proj.Rows)
	}
	for i := 0; i < n; i++ {
		row := proj.Rows[i]
		if hasNet {
			if cv, ok := row[netCol]; ok && cv.Kind == CellScalar {
				if d, ok := data.AsDecimal(cv.Value); ok {
					totals.Net = totals.Net.Add(d)
				}
			}
		}
		if hasGross {
			if cv, ok := row[grossCol]; ok && cv.Kind == CellScalar {
				if d, ok := data.AsDecimal(cv.Value); ok {
					totals.Gross = totals.Gross.Add(d)
				}
			}
		}
	}
	return totals
}

// WriteWeightSummary inserts two rows at `row` and writes the net and gross
// weight total rows below the footer, styled like it. Returns the first row
// under the summary. A label or value column missing from the header skips
// the summary with a warning and leaves the row unchanged.
func WriteWeightSummary(ws *sheet.Sheet, cols ColumnIndex, row int, cfg *recipe.WeightSummaryConfig, totals WeightTotals, styler *styling.Applier, logger *zerolog.Logger) (int, *util.Result) {
	if cfg == nil || !cfg.Enabled {
		return row, nil
	}
	sheetName := ws.Name()

	labelCol, okLabel := cols.Resolve(cfg.LabelColumn)
	valueCol, okValue := cols.Resolve(cfg.ValueColumn)
	if !okLabel || !okValue {
		logger.Warn().Msgf("sheet `%s`: weight summary label/value column not found in header, skip", sheetName)
		return row, nil
	}

	if res := ws.InsertRows(row, 2); res != nil {
		return row, res.With("InsertRows")
	}
	// The inserted rows inherit merges from the displaced content.
	if res := ws.UnmergeBlock(row, row+1, cols.NumColumns); res != nil {
		return row, res.With("UnmergeBlock")
	}

	net, _ := totals.Net.Float64()
	gross, _ := totals.Gross.Float64()
	if res := ws.SetValue(row, labelCol, netWeightLabel); res != nil {
		return row, WriteError(sheetName, row, labelCol, "weight_net_label", res.Error())
	}
	if res := ws.SetValue(row, valueCol, net); res != nil {
		return row, WriteError(sheetName, row, valueCol, "weight_net", res.Error())
	}
	if res := ws.SetValue(row+1, labelCol, grossWeightLabel); res != nil {
		return row, WriteError(sheetName, row+1, labelCol, "weight_gross_label", res.Error())
	}
	if res := ws.SetValue(row+1, valueCol, gross); res != nil {
		return row, WriteError(sheetName, row+1, valueCol, "weight_gross", res.Error())
	}

	if styler != nil {
		for r := row; r <= row+1; r++ {
			if res := styler.ApplyFooter(r, cols.NumColumns); res != nil {
				return row, res.With("ApplyFooter")
			}
		}
		if res := styler.ApplyRowHeights(styling.RegionFooter, row, row+1); res != nil {
			return row, res.With("ApplyRowHeights")
		}
	}

	logger.Debug().Msgf("sheet `%s`: weight summary at rows %d-%d (net %s, gross %s)",
		sheetName, row, row+1, totals.Net, totals.Gross)
	return row + 2, nil
}
