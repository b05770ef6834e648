package styling

import (
	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"
	"github.com/xuri/excelize/v2"

	"github.com/soderasen-au/go-invoice/recipe"
	"github.com/soderasen-au/go-invoice/sheet"
)

// Applier paints fonts, borders, number formats, row heights and column
// widths after the table's structural writes are done. The table engine calls
// it and checks success, nothing more.
type Applier struct {
	ws     *sheet.Sheet
	cfg    *recipe.StylingConfig
	logger *zerolog.Logger
}

func NewApplier(ws *sheet.Sheet, cfg *recipe.StylingConfig, logger *zerolog.Logger) *Applier {
	return &Applier{ws: ws, cfg: cfg, logger: logger}
}

func fontOf(fc *recipe.FontConfig) *excelize.Font {
	if fc == nil {
		return nil
	}
	return &excelize.Font{
		Bold:   fc.Bold,
		Italic: fc.Italic,
		Size:   fc.Size,
		Family: fc.Name,
		Color:  fc.Color,
	}
}

func alignmentOf(ac *recipe.AlignmentConfig) *excelize.Alignment {
	if ac == nil {
		return nil
	}
	return &excelize.Alignment{
		Horizontal: ac.Horizontal,
		Vertical:   ac.Vertical,
		WrapText:   ac.WrapText,
	}
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func (a *Applier) newStyle(style *excelize.Style) (int, *util.Result) {
	id, err := a.ws.File().NewStyle(style)
	if err != nil {
		return 0, util.Error("NewStyle", err)
	}
	return id, nil
}

// ApplyHeader styles the header block. Header cells default to a bold
// centered look when the recipe does not override it.
func (a *Applier) ApplyHeader(startRow, endRow, numCols int) *util.Result {
	style := excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	}
	if a.cfg != nil {
		if f := fontOf(a.cfg.HeaderFont); f != nil {
			style.Font = f
		}
		if al := alignmentOf(a.cfg.HeaderAlignment); al != nil {
			style.Alignment = al
		}
	}
	id, res := a.newStyle(&style)
	if res != nil {
		return res.With("newStyle")
	}
	if res := a.ws.SetStyle(startRow, 1, endRow, numCols, id); res != nil {
		return res.With("SetStyle")
	}
	return nil
}

// ApplyData styles the data range: base font/alignment/border plus per-column
// number formats keyed by ColumnRef.
func (a *Applier) ApplyData(dataStart, dataEnd, numCols int, colIndex map[recipe.ColumnRef]int) *util.Result {
	if dataEnd < dataStart {
		return nil
	}

	base := excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}
	border := true
	if a.cfg != nil {
		if f := fontOf(a.cfg.DataFont); f != nil {
			base.Font = f
		}
		if al := alignmentOf(a.cfg.DataAlignment); al != nil {
			base.Alignment = al
		}
		border = a.cfg.DataBorder
	}
	if border {
		base.Border = thinBorder()
	}

	baseID, res := a.newStyle(&base)
	if res != nil {
		return res.With("newStyle")
	}
	if res := a.ws.SetStyle(dataStart, 1, dataEnd, numCols, baseID); res != nil {
		return res.With("SetStyle")
	}

	if a.cfg == nil || len(a.cfg.NumberFormats) == 0 {
		return nil
	}
	for ref, numFmt := range a.cfg.NumberFormats {
		col, ok := colIndex[ref]
		if !ok {
			if a.logger != nil {
				a.logger.Warn().Msgf("number format for unknown column `%s`, ignore", ref)
			}
			continue
		}
		fmtStyle := base
		nf := numFmt
		fmtStyle.CustomNumFmt = &nf
		id, res := a.newStyle(&fmtStyle)
		if res != nil {
			return res.With("newStyle")
		}
		if res := a.ws.SetStyle(dataStart, col, dataEnd, col, id); res != nil {
			return res.With("SetStyle")
		}
	}
	return nil
}

// ApplyFooter styles the footer row.
func (a *Applier) ApplyFooter(row, numCols int) *util.Result {
	style := excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	}
	if a.cfg != nil {
		if f := fontOf(a.cfg.FooterFont); f != nil {
			style.Font = f
		}
	}
	id, res := a.newStyle(&style)
	if res != nil {
		return res.With("newStyle")
	}
	if res := a.ws.SetStyle(row, 1, row, numCols, id); res != nil {
		return res.With("SetStyle")
	}
	return nil
}

// RowRegion names the table region a row belongs to for height lookup.
type RowRegion int

const (
	RegionHeader RowRegion = iota
	RegionData
	RegionFooter
	RegionAfterHeader
	RegionBeforeFooter
)

func (a *Applier) heightFor(region RowRegion) float64 {
	if a.cfg == nil || a.cfg.RowHeights == nil {
		return 0
	}
	h := a.cfg.RowHeights
	switch region {
	case RegionHeader:
		return h.Header
	case RegionData:
		return h.Data
	case RegionFooter:
		return h.Footer
	case RegionAfterHeader:
		return h.AfterHeader
	case RegionBeforeFooter:
		return h.BeforeFooter
	}
	return 0
}

// ApplyRowHeights sets heights for all rows of one region; zero height in
// config leaves the template's heights alone.
func (a *Applier) ApplyRowHeights(region RowRegion, rows ...int) *util.Result {
	h := a.heightFor(region)
	if h <= 0 {
		return nil
	}
	for _, row := range rows {
		if row < 1 {
			continue
		}
		if res := a.ws.SetRowHeight(row, h); res != nil {
			return res.With("SetRowHeight")
		}
	}
	return nil
}

// ApplyColumnWidths sets configured widths for resolved columns.
func (a *Applier) ApplyColumnWidths(colIndex map[recipe.ColumnRef]int) *util.Result {
	if a.cfg == nil || len(a.cfg.ColumnWidths) == 0 {
		return nil
	}
	for ref, width := range a.cfg.ColumnWidths {
		col, ok := colIndex[ref]
		if !ok || width <= 0 {
			continue
		}
		if res := a.ws.SetColWidth(col, width); res != nil {
			return res.With("SetColWidth")
		}
	}
	return nil
}
