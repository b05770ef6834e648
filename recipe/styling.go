package recipe

// FontConfig mirrors the subset of font properties recipes may set.
type FontConfig struct {
	Bold   bool    `json:"bold,omitempty" yaml:"bold,omitempty" bson:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty" yaml:"italic,omitempty" bson:"italic,omitempty"`
	Size   float64 `json:"size,omitempty" yaml:"size,omitempty" bson:"size,omitempty"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Color  string  `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
}

// AlignmentConfig mirrors cell alignment.
type AlignmentConfig struct {
	Horizontal string `json:"horizontal,omitempty" yaml:"horizontal,omitempty" bson:"horizontal,omitempty"`
	Vertical   string `json:"vertical,omitempty" yaml:"vertical,omitempty" bson:"vertical,omitempty"`
	WrapText   bool   `json:"wrap_text,omitempty" yaml:"wrap_text,omitempty" bson:"wrap_text,omitempty"`
}

// RowHeights configures per-region row heights; zero means leave as is.
type RowHeights struct {
	Header       float64 `json:"header,omitempty" yaml:"header,omitempty" bson:"header,omitempty"`
	Data         float64 `json:"data,omitempty" yaml:"data,omitempty" bson:"data,omitempty"`
	Footer       float64 `json:"footer,omitempty" yaml:"footer,omitempty" bson:"footer,omitempty"`
	AfterHeader  float64 `json:"after_header,omitempty" yaml:"after_header,omitempty" bson:"after_header,omitempty"`
	BeforeFooter float64 `json:"before_footer,omitempty" yaml:"before_footer,omitempty" bson:"before_footer,omitempty"`
}

// StylingConfig is passed through to the style applier; the table engine does
// not interpret it beyond handing it over after structural writes.
type StylingConfig struct {
	HeaderFont      *FontConfig      `json:"header_font,omitempty" yaml:"header_font,omitempty" bson:"header_font,omitempty"`
	HeaderAlignment *AlignmentConfig `json:"header_alignment,omitempty" yaml:"header_alignment,omitempty" bson:"header_alignment,omitempty"`
	DataFont        *FontConfig      `json:"data_font,omitempty" yaml:"data_font,omitempty" bson:"data_font,omitempty"`
	DataAlignment   *AlignmentConfig `json:"data_alignment,omitempty" yaml:"data_alignment,omitempty" bson:"data_alignment,omitempty"`
	FooterFont      *FontConfig      `json:"footer_font,omitempty" yaml:"footer_font,omitempty" bson:"footer_font,omitempty"`

	// NumberFormats maps column ids to excel number format strings
	// (`#,##0`, `#,##0.00`, `@`).
	NumberFormats map[ColumnRef]string `json:"number_formats,omitempty" yaml:"number_formats,omitempty" bson:"number_formats,omitempty"`

	// ColumnWidths maps column ids to widths in excel units.
	ColumnWidths map[ColumnRef]float64 `json:"column_widths,omitempty" yaml:"column_widths,omitempty" bson:"column_widths,omitempty"`

	RowHeights *RowHeights `json:"row_heights,omitempty" yaml:"row_heights,omitempty" bson:"row_heights,omitempty"`

	// DataBorder draws a thin grid over the data range when set.
	DataBorder bool `json:"data_border,omitempty" yaml:"data_border,omitempty" bson:"data_border,omitempty"`
}
