package workbook

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/data"
	"github.com/soderasen-au/go-invoice/recipe"
	"github.com/soderasen-au/go-invoice/sheet"
	"github.com/soderasen-au/go-invoice/styling"
	"github.com/soderasen-au/go-invoice/table"
)

// buildMultiTable writes several tables one below another on a packing-list
// style sheet. The first table writes over the template's header area; every
// following table is anchored at the previous table's NextRow and gets its
// own header rows reserved inside the insertion, so displaced template
// content keeps moving down instead of being overwritten. A grand-total
// pallet row lands below the last table when more than one was written.
func buildMultiTable(ws *sheet.Sheet, name string, cfg *recipe.SheetConfig, sources []*data.Source, compound bool, styler *styling.Applier, logger *zerolog.Logger) ([]*tableResult, *util.Result) {
	if len(sources) == 0 {
		return nil, table.ConfigError(name, "multi-table sheet has no sources")
	}

	results := make([]*tableResult, 0, len(sources))
	tracker := table.FooterTracker{}
	var first *tableResult

	for ti, src := range sources {
		tableLogger := logger.With().Int("table", ti).Logger()

		if ti == 0 {
			tr, res := buildSingleTable(ws, name, cfg, src, compound, styler, &tableLogger)
			if res != nil {
				return nil, res.With(fmt.Sprintf("table[%d]", ti))
			}
			first = tr
			results = append(results, tr)
			tracker.Advance(tr.Plan, tr.Placement.TotalPallets)
			continue
		}

		// Continuation tables share the first table's column index; the
		// header grid is identical so rules and projection can run before
		// the header cells exist on the sheet.
		rules, res := table.ResolveMappingRules(name, cfg.Mappings, first.Header.Columns)
		if res != nil {
			return nil, res.With("ResolveMappingRules")
		}
		proj, res := table.ProjectRows(name, src, rules, table.ProjectOptions{CompoundMode: compound})
		if res != nil {
			return nil, res.With("ProjectRows")
		}

		opt := layoutOptions(cfg)
		opt.FooterOffset = tracker.NextAnchor
		opt.HeaderRows = first.Header.LastRow - first.Header.FirstRow + 1
		plan, res := table.PlanLayout(ws, tracker.NextAnchor-1, len(proj.Rows), first.Header.Columns.NumColumns, opt, &tableLogger)
		if res != nil {
			return nil, res.With("PlanLayout")
		}

		hdr, res := table.BuildHeader(ws, tracker.NextAnchor, cfg.Header, styler, &tableLogger)
		if res != nil {
			return nil, res.With("BuildHeader")
		}

		tr, res := writeTable(ws, name, cfg, hdr, rules, plan, proj, styler, &tableLogger)
		if res != nil {
			return nil, res.With(fmt.Sprintf("table[%d]", ti))
		}
		results = append(results, tr)
		tracker.Advance(tr.Plan, tr.Placement.TotalPallets)
	}

	if len(results) > 1 && cfg.Footer.Type == recipe.FooterTypeGrandTotal {
		last := results[len(results)-1]
		if res := table.WriteGrandTotal(ws, last.Header.Columns, tracker.NextAnchor, &cfg.Footer, &tracker, styler, logger); res != nil {
			return nil, res.With("WriteGrandTotal")
		}
	}

	return results, nil
}
