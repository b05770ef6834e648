package table

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/recipe"
	"github.com/soderasen-au/go-invoice/sheet"
	"github.com/soderasen-au/go-invoice/styling"
)

// FooterTracker accumulates table placements on a multi-table sheet: each
// finished table advances the anchor for the next one and feeds the running
// pallet total the grand-total row reports.
type FooterTracker struct {
	Tables       int
	TotalPallets int
	NextAnchor   int // 0 until the first table lands
}

// Advance records one finished table.
func (t *FooterTracker) Advance(plan *LayoutPlan, pallets int) {
	t.Tables++
	t.TotalPallets += pallets
	t.NextAnchor = plan.NextRow
}

// Placement is the derived coordinate and pallet summary of one finished
// table. Downstream consumers read coordinates from here and never recompute
// them.
type Placement struct {
	DataStart    int
	DataEnd      int
	FooterRow    int
	NextRow      int
	TotalPallets int
}

// FooterPlacement derives a table's placement from its plan and projection.
// The pallet total covers only the rows that made it into the table, so a
// truncated build reports the truncated total.
func FooterPlacement(plan *LayoutPlan, proj *Projection) Placement {
	p := Placement{
		DataStart: plan.DataStart,
		DataEnd:   plan.DataEnd,
		FooterRow: plan.FooterRow,
		NextRow:   plan.NextRow,
	}
	n := plan.DataRowCount()
	if n > len(proj.PalletCounts) {
		n = len(proj.PalletCounts)
	}
	for i := 0; i < n; i++ {
		p.TotalPallets += proj.PalletCounts[i]
	}
	return p
}

func palletText(n int) string {
	return fmt.Sprintf("%d PALLET(S)", n)
}

// WriteFooter fills the planned footer row: the total label, the pallet
// count text, one SUM formula per configured column spanning exactly the
// data range, then the footer merges.
func WriteFooter(ws *sheet.Sheet, cols ColumnIndex, plan *LayoutPlan, cfg *recipe.FooterConfig, rowMerges map[int]int, pallets int, styler *styling.Applier, logger *zerolog.Logger) *util.Result {
	if cfg == nil {
		return nil
	}
	row := plan.FooterRow
	sheetName := ws.Name()

	if cfg.TotalTextColumn != "" {
		col, ok := cols.Resolve(cfg.TotalTextColumn)
		if !ok {
			return ConfigError(sheetName, fmt.Sprintf("footer total text column `%s` not found in header", cfg.TotalTextColumn))
		}
		text := cfg.TotalText
		if text == "" {
			text = "TOTAL"
		}
		if res := ws.SetValue(row, col, text); res != nil {
			return WriteError(sheetName, row, col, "footer_total_text", res.Error())
		}
	}

	if cfg.PalletCountColumn != "" {
		col, ok := cols.Resolve(cfg.PalletCountColumn)
		if !ok {
			return ConfigError(sheetName, fmt.Sprintf("footer pallet column `%s` not found in header", cfg.PalletCountColumn))
		}
		if res := ws.SetValue(row, col, palletText(pallets)); res != nil {
			return WriteError(sheetName, row, col, "footer_pallets", res.Error())
		}
	}

	for _, ref := range cfg.SumColumns {
		col, ok := cols.Resolve(ref)
		if !ok {
			return ConfigError(sheetName, fmt.Sprintf("footer sum column `%s` not found in header", ref))
		}
		if plan.DataRowCount() == 0 {
			continue
		}
		letter, res := sheet.ColumnLetter(col)
		if res != nil {
			return res.With("ColumnLetter")
		}
		formula := fmt.Sprintf("=SUM(%s%d:%s%d)", letter, plan.DataStart, letter, plan.DataEnd)
		if res := ws.SetFormula(row, col, formula); res != nil {
			return WriteError(sheetName, row, col, "footer_sum", res.Error())
		}
	}

	for _, m := range cfg.MergeRules {
		col, ok := cols.Resolve(m.StartColumn)
		if !ok {
			return ConfigError(sheetName, fmt.Sprintf("footer merge column `%s` not found in header", m.StartColumn))
		}
		if m.ColSpan < 2 {
			continue
		}
		end := col + m.ColSpan - 1
		if end > cols.NumColumns {
			end = cols.NumColumns
		}
		if res := ws.Merge(row, col, row, end); res != nil {
			return res.With("Merge")
		}
	}
	if res := applyRowMerges(ws, row, cols.NumColumns, rowMerges); res != nil {
		return res.With("applyRowMerges")
	}

	if styler != nil {
		if res := styler.ApplyFooter(row, cols.NumColumns); res != nil {
			return res.With("ApplyFooter")
		}
		if res := styler.ApplyRowHeights(styling.RegionFooter, row); res != nil {
			return res.With("ApplyRowHeights")
		}
	}

	logger.Debug().Msgf("sheet `%s`: footer at row %d (%d pallets)", sheetName, row, pallets)
	return nil
}

// WriteGrandTotal appends the sheet-level pallet summary row below the last
// table of a multi-table sheet.
func WriteGrandTotal(ws *sheet.Sheet, cols ColumnIndex, row int, cfg *recipe.FooterConfig, tracker *FooterTracker, styler *styling.Applier, logger *zerolog.Logger) *util.Result {
	if cfg == nil || cfg.Type != recipe.FooterTypeGrandTotal {
		return nil
	}
	sheetName := ws.Name()

	if cfg.TotalTextColumn != "" {
		col, ok := cols.Resolve(cfg.TotalTextColumn)
		if !ok {
			return ConfigError(sheetName, fmt.Sprintf("grand total text column `%s` not found in header", cfg.TotalTextColumn))
		}
		text := cfg.GrandTotalText
		if text == "" {
			text = "GRAND TOTAL"
		}
		if res := ws.SetValue(row, col, text); res != nil {
			return WriteError(sheetName, row, col, "grand_total_text", res.Error())
		}
	}

	if cfg.PalletCountColumn != "" {
		col, ok := cols.Resolve(cfg.PalletCountColumn)
		if !ok {
			return ConfigError(sheetName, fmt.Sprintf("grand total pallet column `%s` not found in header", cfg.PalletCountColumn))
		}
		if res := ws.SetValue(row, col, palletText(tracker.TotalPallets)); res != nil {
			return WriteError(sheetName, row, col, "grand_total_pallets", res.Error())
		}
	}

	if styler != nil {
		if res := styler.ApplyFooter(row, cols.NumColumns); res != nil {
			return res.With("ApplyFooter")
		}
		if res := styler.ApplyRowHeights(styling.RegionFooter, row); res != nil {
			return res.With("ApplyRowHeights")
		}
	}

	logger.Debug().Msgf("sheet `%s`: grand total at row %d (%d tables, %d pallets)", sheetName, row, tracker.Tables, tracker.TotalPallets)
	return nil
}
