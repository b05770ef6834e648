package workbook

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/loggers"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/data"
	"github.com/soderasen-au/go-invoice/recipe"
	"github.com/soderasen-au/go-invoice/sheet"
	"github.com/soderasen-au/go-invoice/styling"
	"github.com/soderasen-au/go-invoice/table"
)

// Job describes one document build: a recipe, a template workbook, and the
// sources feeding each sheet. Sources are keyed by SheetConfig.DataSource;
// multi-table sheets take one source per table from MultiSources.
type Job struct {
	Name         string                    `json:"name,omitempty" yaml:"name,omitempty"`
	TemplatePath string                    `json:"template,omitempty" yaml:"template,omitempty"`
	OutputPath   string                    `json:"output,omitempty" yaml:"output,omitempty"`
	Recipe       *recipe.Recipe            `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	Sources      map[string]*data.Source   `json:"-" yaml:"-"`
	MultiSources map[string][]*data.Source `json:"-" yaml:"-"`
	CompoundMode bool                      `json:"compound_mode,omitempty" yaml:"compound_mode,omitempty"`
	Logger       *zerolog.Logger           `json:"-" yaml:"-"`
}

func (j *Job) Validate() *util.Result {
	if j.Recipe == nil {
		return util.MsgError("ConfigError", "job has no recipe")
	}
	if res := j.Recipe.Validate(); res != nil {
		return res.With("ValidateRecipe")
	}
	return nil
}

// BuildResult reports one finished document. Truncation is a warning on a
// successful result, never an error.
type BuildResult struct {
	ID            uuid.UUID
	Name          string
	OutputPath    string
	Summary       data.Summary
	Truncated     bool
	TruncatedRows int
	Warnings      []string
}

// Build renders one document: open the template, replace metadata
// placeholders, build every configured sheet in recipe order, save.
func Build(job *Job) (*BuildResult, *util.Result) {
	if res := job.Validate(); res != nil {
		return nil, res.With("Validate")
	}

	buildID := uuid.New()
	base := job.Logger
	if base == nil {
		base = loggers.NullLogger
	}
	logger := base.With().Str("build", buildID.String()).Str("job", job.Name).Logger()

	var wb *sheet.Workbook
	if job.TemplatePath != "" {
		var res *util.Result
		wb, res = sheet.OpenWorkbook(job.TemplatePath)
		if res != nil {
			return nil, res.With("OpenWorkbook")
		}
	} else {
		wb = sheet.NewWorkbook()
	}
	defer wb.Close()

	ret := BuildResult{ID: buildID, Name: job.Name, OutputPath: job.OutputPath}
	replacer := NewTextReplacer()

	for _, name := range job.Recipe.OrderedSheets() {
		cfg := job.Recipe.Sheets[name]
		sheetLogger := logger.With().Str("sheet", name).Logger()

		var ws *sheet.Sheet
		var res *util.Result
		if job.TemplatePath != "" {
			// The template defines the document; a recipe naming a sheet
			// the template lacks is a config mistake, not a request for a
			// blank sheet.
			ws, res = wb.Sheet(name)
			if res != nil {
				return nil, table.ConfigError(name, fmt.Sprintf("template `%s` has no sheet named `%s`", job.TemplatePath, name))
			}
		} else {
			ws, res = wb.EnsureSheet(name)
			if res != nil {
				return nil, res.With("EnsureSheet")
			}
		}

		if len(job.Recipe.Metadata) > 0 {
			if _, res := replacer.ReplaceSheet(ws, cfg.StartRow-1, job.Recipe.Metadata, &sheetLogger); res != nil {
				return nil, res.With("ReplaceSheet")
			}
		}

		var styler *styling.Applier
		if cfg.Styling != nil {
			styler = styling.NewApplier(ws, cfg.Styling, &sheetLogger)
		}

		var results []*tableResult
		if cfg.MultiTable {
			sources, ok := job.MultiSources[cfg.DataSource]
			if !ok {
				return nil, table.ConfigError(name, fmt.Sprintf("no sources named `%s` for multi-table sheet", cfg.DataSource))
			}
			results, res = buildMultiTable(ws, name, cfg, sources, job.CompoundMode, styler, &sheetLogger)
		} else {
			src, ok := job.Sources[cfg.DataSource]
			if !ok {
				return nil, table.ConfigError(name, fmt.Sprintf("no source named `%s`", cfg.DataSource))
			}
			var tr *tableResult
			tr, res = buildSingleTable(ws, name, cfg, src, job.CompoundMode, styler, &sheetLogger)
			if tr != nil {
				results = []*tableResult{tr}
			}
		}
		if res != nil {
			return nil, res.With(fmt.Sprintf("sheet `%s`", name))
		}

		if !cfg.MultiTable && cfg.WeightSummary != nil && cfg.WeightSummary.Enabled && len(results) == 1 {
			tr := results[0]
			totals := table.SumWeights(tr.Header.Columns, cfg.WeightSummary, tr.Plan, tr.Proj)
			if _, res := table.WriteWeightSummary(ws, tr.Header.Columns, tr.Placement.NextRow, cfg.WeightSummary, totals, styler, &sheetLogger); res != nil {
				return nil, res.With("WriteWeightSummary")
			}
		}

		for _, tr := range results {
			ret.Summary.AddTable(tr.Written.RowsWritten, tr.Placement.TotalPallets)
			accumulateTotals(tr, &ret.Summary)
			if tr.Written.Truncated {
				ret.Truncated = true
				ret.TruncatedRows += tr.Written.TruncatedRows
				ret.Warnings = append(ret.Warnings,
					fmt.Sprintf("sheet `%s`: dropped %d rows over the fill cap", name, tr.Written.TruncatedRows))
			}
		}
	}

	if job.OutputPath != "" {
		if res := wb.Save(job.OutputPath); res != nil {
			return nil, res.With("Save")
		}
	}

	logger.Info().Msgf("built %d tables, %d rows, %d pallets", ret.Summary.Tables, ret.Summary.Rows, ret.Summary.TotalPallets)
	return &ret, nil
}

// accumulateTotals folds a table's amount and quantity columns into the
// document summary. Only scalar cells count; formula cells have no value
// until the spreadsheet application evaluates them.
func accumulateTotals(tr *tableResult, sum *data.Summary) {
	amountCol, hasAmount := tr.Header.Columns.Resolve("amount")
	qtyCol, hasQty := tr.Header.Columns.Resolve("qty")
	if !hasQty {
		qtyCol, hasQty = tr.Header.Columns.Resolve("quantity")
	}
	if !hasAmount && !hasQty {
		return
	}

	n := tr.Plan.DataRowCount()
	if n > len(tr.Proj.Rows) {
		n = len(tr.Proj.Rows)
	}
	for i := 0; i < n; i++ {
		row := tr.Proj.Rows[i]
		if hasAmount {
			if cv, ok := row[amountCol]; ok && cv.Kind == table.CellScalar {
				sum.AddAmount(cv.Value)
			}
		}
		if hasQty {
			if cv, ok := row[qtyCol]; ok && cv.Kind == table.CellScalar {
				sum.AddQuantity(cv.Value)
			}
		}
	}
}
