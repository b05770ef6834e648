package workbook

import (
	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/data"
	"github.com/soderasen-au/go-invoice/recipe"
	"github.com/soderasen-au/go-invoice/sheet"
	"github.com/soderasen-au/go-invoice/styling"
	"github.com/soderasen-au/go-invoice/table"
)

// tableResult collects everything one table build produced; the builder folds
// it into the document summary.
type tableResult struct {
	Header    *table.HeaderInfo
	Plan      *table.LayoutPlan
	Proj      *table.Projection
	Written   *table.WriteResult
	Placement table.Placement
}

func layoutOptions(cfg *recipe.SheetConfig) table.LayoutOptions {
	opt := table.LayoutOptions{
		AddBlankAfterHeader:  cfg.AddBlankAfterHeader || cfg.AfterHeader != nil,
		AddBlankBeforeFooter: cfg.AddBlankBeforeFooter || cfg.BeforeFooter != nil,
	}
	if cfg.MaxRowsToFill != nil {
		opt.MaxRowsToFill = *cfg.MaxRowsToFill
	}
	return opt
}

func hasFooter(cfg *recipe.FooterConfig) bool {
	return cfg.TotalTextColumn != "" || cfg.PalletCountColumn != "" ||
		len(cfg.SumColumns) > 0 || len(cfg.MergeRules) > 0
}

// writeTable runs the write phase shared by single and multi table builds:
// data rows, merges, pad rows, then the per-table footer.
func writeTable(ws *sheet.Sheet, name string, cfg *recipe.SheetConfig, hdr *table.HeaderInfo, rules *table.ResolvedRules, plan *table.LayoutPlan, proj *table.Projection, styler *styling.Applier, logger *zerolog.Logger) (*tableResult, *util.Result) {
	w := table.Writer{
		Sheet:        ws,
		Cols:         hdr.Columns,
		Rules:        rules,
		AfterHeader:  cfg.AfterHeader,
		BeforeFooter: cfg.BeforeFooter,
		MergeColumns: cfg.MergeColumns,
		Styler:       styler,
		Logger:       logger,
	}
	wr, res := w.Write(plan, proj)
	if res != nil {
		return nil, res.With("Write")
	}

	placement := table.FooterPlacement(plan, proj)
	if hasFooter(&cfg.Footer) {
		if res := table.WriteFooter(ws, hdr.Columns, plan, &cfg.Footer, cfg.FooterMergeRules, placement.TotalPallets, styler, logger); res != nil {
			return nil, res.With("WriteFooter")
		}
	}

	return &tableResult{Header: hdr, Plan: plan, Proj: proj, Written: wr, Placement: placement}, nil
}

// buildSingleTable is the full pipeline for a one-table sheet: header, rule
// resolution, projection, layout reservation, write, footer.
func buildSingleTable(ws *sheet.Sheet, name string, cfg *recipe.SheetConfig, src *data.Source, compound bool, styler *styling.Applier, logger *zerolog.Logger) (*tableResult, *util.Result) {
	hdr, res := table.BuildHeader(ws, cfg.StartRow, cfg.Header, styler, logger)
	if res != nil {
		return nil, res.With("BuildHeader")
	}
	rules, res := table.ResolveMappingRules(name, cfg.Mappings, hdr.Columns)
	if res != nil {
		return nil, res.With("ResolveMappingRules")
	}
	proj, res := table.ProjectRows(name, src, rules, table.ProjectOptions{CompoundMode: compound})
	if res != nil {
		return nil, res.With("ProjectRows")
	}
	plan, res := table.PlanLayout(ws, hdr.LastRow, len(proj.Rows), hdr.Columns.NumColumns, layoutOptions(cfg), logger)
	if res != nil {
		return nil, res.With("PlanLayout")
	}
	return writeTable(ws, name, cfg, hdr, rules, plan, proj, styler, logger)
}
