package table

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/sheet"
)

// LayoutPlan is the reconciled row geometry of one table. All rows are
// absolute 1-based sheet coordinates, fixed after the single bulk insertion;
// no component may recompute them.
type LayoutPlan struct {
	HeaderEnd       int
	RowAfterHeader  int // 0 when no blank row is reserved
	DataStart       int
	DataEnd         int // DataStart-1 when the table has no data rows
	RowBeforeFooter int // 0 when no blank row is reserved
	FooterRow       int
	NextRow         int // first row below the footer, anchor for a following table

	RowsInserted  int
	Truncated     bool
	TruncatedRows int
}

// DataRowCount is the number of data rows the plan reserves.
func (p *LayoutPlan) DataRowCount() int {
	if p.DataEnd < p.DataStart {
		return 0
	}
	return p.DataEnd - p.DataStart + 1
}

// LayoutOptions enumerates the geometry switches of one table.
type LayoutOptions struct {
	AddBlankAfterHeader  bool
	AddBlankBeforeFooter bool
	// MaxRowsToFill caps the data rows when positive; zero or negative
	// means no cap. Capping drops trailing projections only and is
	// reported, never silent.
	MaxRowsToFill int
	// FooterOffset anchors a continuation table at an explicit row instead
	// of header-relative math (multi-table sheets). 0 disables it.
	FooterOffset int
	// HeaderRows reserves rows for a continuation table's own header inside
	// the insertion. The first table writes over the template's header area
	// and leaves this 0. Requires FooterOffset.
	HeaderRows int
}

// PlanLayout computes the row geometry for projCount data rows below the
// header ending at headerEnd, and reserves the space with exactly one bulk
// row insertion. Rows below the anchor shift by the inserted amount, so this
// must run before any downstream coordinate is cached; the returned plan is
// the only source of row numbers for the rest of the build.
func PlanLayout(ws *sheet.Sheet, headerEnd, projCount, numCols int, opt LayoutOptions, logger *zerolog.Logger) (*LayoutPlan, *util.Result) {
	if headerEnd < 1 {
		return nil, LayoutError(ws.Name(), fmt.Sprintf("header end row %d: template header could not be located", headerEnd))
	}
	if projCount < 0 {
		return nil, LayoutError(ws.Name(), fmt.Sprintf("negative projection count %d", projCount))
	}

	anchor := headerEnd + 1
	if opt.FooterOffset > 0 {
		if opt.FooterOffset <= headerEnd {
			return nil, LayoutError(ws.Name(), fmt.Sprintf("footer offset %d overlaps header ending at %d", opt.FooterOffset, headerEnd))
		}
		anchor = opt.FooterOffset
	}

	plan := LayoutPlan{HeaderEnd: headerEnd}

	capped := projCount
	if opt.MaxRowsToFill > 0 && projCount > opt.MaxRowsToFill {
		capped = opt.MaxRowsToFill
		plan.Truncated = true
		plan.TruncatedRows = projCount - capped
		logger.Warn().Msgf("sheet `%s`: %d source rows exceed cap %d, dropping trailing %d",
			ws.Name(), projCount, opt.MaxRowsToFill, plan.TruncatedRows)
	}

	offset := 0
	if opt.HeaderRows > 0 {
		if opt.FooterOffset <= 0 {
			return nil, LayoutError(ws.Name(), "header row reservation needs an explicit anchor")
		}
		plan.HeaderEnd = anchor + opt.HeaderRows - 1
		offset += opt.HeaderRows
	}

	if opt.AddBlankAfterHeader {
		plan.RowAfterHeader = anchor + offset
		offset++
	}

	plan.DataStart = anchor + offset
	plan.DataEnd = plan.DataStart + capped - 1
	offset += capped

	if opt.AddBlankBeforeFooter {
		plan.RowBeforeFooter = anchor + offset
		offset++
	}

	plan.FooterRow = anchor + offset
	plan.RowsInserted = offset + 1
	plan.NextRow = plan.FooterRow + 1

	if res := ws.InsertRows(anchor, plan.RowsInserted); res != nil {
		return nil, res.With("InsertRows").With("LayoutError")
	}
	// Inserted rows inherit merges from the displaced footer region; clear
	// them before anything is written.
	if res := ws.UnmergeBlock(anchor, plan.FooterRow-1, numCols); res != nil {
		return nil, res.With("UnmergeBlock").With("LayoutError")
	}

	logger.Debug().Msgf("sheet `%s`: inserted %d rows at %d (data %d..%d, footer %d)",
		ws.Name(), plan.RowsInserted, anchor, plan.DataStart, plan.DataEnd, plan.FooterRow)

	return &plan, nil
}
