package recipe

import (
	"fmt"
	"strings"

	"github.com/soderasen-au/go-common/util"
)

// ColumnRef is a symbolic, sheet-scoped column identifier. It is resolved to a
// concrete 1-based column index when the header is built.
type ColumnRef string

const (
	RuleTypeFormula       string = "formula"
	RuleTypeInitialStatic string = "initial_static_rows"

	FooterTypeRegular    string = "regular"
	FooterTypeGrandTotal string = "grand_total"

	SourceAggregation string = "aggregation"
	SourceFlat        string = "flat"
	SourceCustom      string = "custom"
)

// HeaderCell describes one cell of the header grid, positioned by zero-based
// offsets from the table's start row and column 1.
type HeaderCell struct {
	Row     int       `json:"row" yaml:"row" bson:"row"`
	Col     int       `json:"col" yaml:"col" bson:"col"`
	Text    string    `json:"text" yaml:"text" bson:"text"`
	ID      ColumnRef `json:"id,omitempty" yaml:"id,omitempty" bson:"id,omitempty"`
	RowSpan int       `json:"rowspan,omitempty" yaml:"rowspan,omitempty" bson:"rowspan,omitempty"`
	ColSpan int       `json:"colspan,omitempty" yaml:"colspan,omitempty" bson:"colspan,omitempty"`
}

// MappingRule describes where one logical field goes. The populated fields
// decide the variant:
//   - Type == "formula": FormulaTemplate + Inputs, target column ID.
//   - Type == "initial_static_rows": rotating Values in column ColumnHeaderID.
//   - StaticValue != nil: fixed value (or rotating list) in column ID.
//   - otherwise: dynamic rule extracting from each source record via
//     KeyIndex (tuple/flat position) or ValueKey (named lookup).
type MappingRule struct {
	ID   ColumnRef `json:"id,omitempty" yaml:"id,omitempty" bson:"id,omitempty"`
	Type string    `json:"type,omitempty" yaml:"type,omitempty" bson:"type,omitempty"`

	KeyIndex    *int    `json:"key_index,omitempty" yaml:"key_index,omitempty" bson:"key_index,omitempty"`
	ValueKey    *string `json:"value_key,omitempty" yaml:"value_key,omitempty" bson:"value_key,omitempty"`
	Fallback    *string `json:"fallback,omitempty" yaml:"fallback,omitempty" bson:"fallback,omitempty"`
	FallbackAlt *string `json:"fallback_alt,omitempty" yaml:"fallback_alt,omitempty" bson:"fallback_alt,omitempty"`
	Numeric     bool    `json:"numeric,omitempty" yaml:"numeric,omitempty" bson:"numeric,omitempty"`

	StaticValue any `json:"static_value,omitempty" yaml:"static_value,omitempty" bson:"static_value,omitempty"`

	FormulaTemplate string      `json:"formula_template,omitempty" yaml:"formula_template,omitempty" bson:"formula_template,omitempty"`
	Inputs          []ColumnRef `json:"inputs,omitempty" yaml:"inputs,omitempty" bson:"inputs,omitempty"`

	ColumnHeaderID ColumnRef `json:"column_header_id,omitempty" yaml:"column_header_id,omitempty" bson:"column_header_id,omitempty"`
	Values         []string  `json:"values,omitempty" yaml:"values,omitempty" bson:"values,omitempty"`
}

func (r MappingRule) IsFormula() bool       { return r.Type == RuleTypeFormula }
func (r MappingRule) IsInitialStatic() bool { return r.Type == RuleTypeInitialStatic }
func (r MappingRule) IsStatic() bool        { return r.Type == "" && r.StaticValue != nil }
func (r MappingRule) IsDynamic() bool {
	return r.Type == "" && r.StaticValue == nil
}

// MappingRules maps logical field names to their rules.
type MappingRules map[string]MappingRule

// RowSlot is the static content and horizontal merges of one reserved row
// (after-header or before-footer). Keys are 1-based column indices.
type RowSlot struct {
	Content map[int]any `json:"content,omitempty" yaml:"content,omitempty" bson:"content,omitempty"`
	Merges  map[int]int `json:"merges,omitempty" yaml:"merges,omitempty" bson:"merges,omitempty"`
}

// FooterMerge is one horizontal merge on the footer row.
type FooterMerge struct {
	StartColumn ColumnRef `json:"start_column_id" yaml:"start_column_id" bson:"start_column_id"`
	ColSpan     int       `json:"colspan" yaml:"colspan" bson:"colspan"`
}

// FooterConfig describes the table footer row.
type FooterConfig struct {
	Type              string        `json:"type,omitempty" yaml:"type,omitempty" bson:"type,omitempty"`
	TotalText         string        `json:"total_text,omitempty" yaml:"total_text,omitempty" bson:"total_text,omitempty"`
	GrandTotalText    string        `json:"grand_total_text,omitempty" yaml:"grand_total_text,omitempty" bson:"grand_total_text,omitempty"`
	TotalTextColumn   ColumnRef     `json:"total_text_column_id,omitempty" yaml:"total_text_column_id,omitempty" bson:"total_text_column_id,omitempty"`
	PalletCountColumn ColumnRef     `json:"pallet_count_column_id,omitempty" yaml:"pallet_count_column_id,omitempty" bson:"pallet_count_column_id,omitempty"`
	SumColumns        []ColumnRef   `json:"sum_column_ids,omitempty" yaml:"sum_column_ids,omitempty" bson:"sum_column_ids,omitempty"`
	MergeRules        []FooterMerge `json:"merge_rules,omitempty" yaml:"merge_rules,omitempty" bson:"merge_rules,omitempty"`
}

// WeightSummaryConfig enables the two net/gross weight rows appended below
// the footer. Totals are decimal sums of the weight columns' written values;
// both summary rows share the label and value columns.
type WeightSummaryConfig struct {
	Enabled     bool      `json:"enabled,omitempty" yaml:"enabled,omitempty" bson:"enabled,omitempty"`
	LabelColumn ColumnRef `json:"label_column_id,omitempty" yaml:"label_column_id,omitempty" bson:"label_column_id,omitempty"`
	ValueColumn ColumnRef `json:"value_column_id,omitempty" yaml:"value_column_id,omitempty" bson:"value_column_id,omitempty"`
	NetColumn   ColumnRef `json:"net_column_id,omitempty" yaml:"net_column_id,omitempty" bson:"net_column_id,omitempty"`
	GrossColumn ColumnRef `json:"gross_column_id,omitempty" yaml:"gross_column_id,omitempty" bson:"gross_column_id,omitempty"`
}

// SheetConfig is the full recipe of one output sheet.
type SheetConfig struct {
	StartRow   int          `json:"start_row,omitempty" yaml:"start_row,omitempty" bson:"start_row,omitempty"`
	Header     []HeaderCell `json:"header_to_write,omitempty" yaml:"header_to_write,omitempty" bson:"header_to_write,omitempty"`
	Mappings   MappingRules `json:"mappings,omitempty" yaml:"mappings,omitempty" bson:"mappings,omitempty"`
	DataSource string       `json:"data_source,omitempty" yaml:"data_source,omitempty" bson:"data_source,omitempty"`

	AddBlankAfterHeader bool     `json:"add_blank_after_header,omitempty" yaml:"add_blank_after_header,omitempty" bson:"add_blank_after_header,omitempty"`
	AfterHeader         *RowSlot `json:"after_header,omitempty" yaml:"after_header,omitempty" bson:"after_header,omitempty"`

	AddBlankBeforeFooter bool     `json:"add_blank_before_footer,omitempty" yaml:"add_blank_before_footer,omitempty" bson:"add_blank_before_footer,omitempty"`
	BeforeFooter         *RowSlot `json:"before_footer,omitempty" yaml:"before_footer,omitempty" bson:"before_footer,omitempty"`

	Footer           FooterConfig `json:"footer_configurations,omitempty" yaml:"footer_configurations,omitempty" bson:"footer_configurations,omitempty"`
	FooterMergeRules map[int]int  `json:"merge_rules_footer,omitempty" yaml:"merge_rules_footer,omitempty" bson:"merge_rules_footer,omitempty"`

	WeightSummary *WeightSummaryConfig `json:"weight_summary_config,omitempty" yaml:"weight_summary_config,omitempty" bson:"weight_summary_config,omitempty"`

	// MergeColumns lists the data columns scanned for contiguous-value
	// merging after the table is written (description, pallet, code).
	MergeColumns []ColumnRef `json:"merge_columns,omitempty" yaml:"merge_columns,omitempty" bson:"merge_columns,omitempty"`

	// MaxRowsToFill caps the data rows when positive; zero or absent
	// means no cap.
	MaxRowsToFill *int `json:"max_rows_to_fill,omitempty" yaml:"max_rows_to_fill,omitempty" bson:"max_rows_to_fill,omitempty"`

	// MultiTable marks a packing-list style sheet: the source holds several
	// tables written one below another, each with its own header and footer.
	MultiTable bool `json:"multi_table,omitempty" yaml:"multi_table,omitempty" bson:"multi_table,omitempty"`

	Styling *StylingConfig `json:"styling,omitempty" yaml:"styling,omitempty" bson:"styling,omitempty"`
}

// Recipe is the normalized configuration both loaders produce. The engine is
// agnostic to whether it came from a bundled yaml recipe or a legacy JSON one.
type Recipe struct {
	Name       string                  `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	SheetOrder []string                `json:"sheet_order,omitempty" yaml:"sheet_order,omitempty" bson:"sheet_order,omitempty"`
	Sheets     map[string]*SheetConfig `json:"sheets,omitempty" yaml:"sheets,omitempty" bson:"sheets,omitempty"`

	// Metadata feeds `${...}` text replacement in the template's header
	// region (invoice number, consignee, dates).
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty" bson:"metadata,omitempty"`
}

// OrderedSheets returns sheet names in SheetOrder, appending any configured
// sheet the order list misses.
func (r *Recipe) OrderedSheets() []string {
	names := make([]string, 0, len(r.Sheets))
	seen := make(map[string]bool)
	for _, n := range r.SheetOrder {
		if _, ok := r.Sheets[n]; ok && !seen[n] {
			names = append(names, n)
			seen[n] = true
		}
	}
	for n := range r.Sheets {
		if !seen[n] {
			names = append(names, n)
		}
	}
	return names
}

func (c *SheetConfig) Validate(sheet string) *util.Result {
	if c.StartRow < 1 {
		c.StartRow = 1
	}
	if len(c.Header) == 0 {
		return util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: header_to_write is empty", sheet))
	}

	ids := make(map[ColumnRef]bool)
	for _, cell := range c.Header {
		if cell.Row < 0 || cell.Col < 0 {
			return util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: header cell `%s` has negative offset", sheet, cell.Text))
		}
		if cell.ID != "" {
			if ids[cell.ID] {
				return util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: duplicate header column id `%s`", sheet, cell.ID))
			}
			ids[cell.ID] = true
		}
	}

	for field, rule := range c.Mappings {
		switch {
		case rule.IsInitialStatic():
			if rule.ColumnHeaderID == "" {
				return util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: field `%s`: initial_static_rows needs column_header_id", sheet, field))
			}
		case rule.IsFormula():
			if rule.ID == "" || strings.TrimSpace(rule.FormulaTemplate) == "" {
				return util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: field `%s`: formula rule needs id and formula_template", sheet, field))
			}
		default:
			if rule.ID == "" {
				return util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: field `%s`: rule has no target column id", sheet, field))
			}
		}
	}

	if c.MaxRowsToFill != nil && *c.MaxRowsToFill < 0 {
		return util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: max_rows_to_fill must not be negative", sheet))
	}

	if w := c.WeightSummary; w != nil && w.Enabled {
		if w.LabelColumn == "" || w.ValueColumn == "" || w.NetColumn == "" || w.GrossColumn == "" {
			return util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: weight summary needs label, value, net and gross column ids", sheet))
		}
	}

	if t := c.Footer.Type; t != "" && t != FooterTypeRegular && t != FooterTypeGrandTotal {
		return util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: unknown footer type `%s`", sheet, t))
	}

	return nil
}

func (r *Recipe) Validate() *util.Result {
	if len(r.Sheets) == 0 {
		return util.MsgError("ConfigError", "recipe has no sheets")
	}
	for name, sc := range r.Sheets {
		if sc == nil {
			return util.MsgError("ConfigError", fmt.Sprintf("sheet `%s` has no configuration", name))
		}
		if res := sc.Validate(name); res != nil {
			return res.With("ValidateSheet")
		}
	}
	return nil
}
