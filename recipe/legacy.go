package recipe

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/soderasen-au/go-common/util"
)

// Legacy recipes are JSON files produced by the first generation of the
// config tooling. They carry the same information with a slightly different
// shape: sheet configs at the top level, row-slot content and merges keyed by
// stringified column numbers, and footer merges that may name a start column
// either by id or by zero-based index. LoadLegacy adapts them into the same
// normalized Recipe the bundled loader produces.

type legacySheet struct {
	StartRow                  int            `json:"start_row"`
	HeaderToWrite             []HeaderCell   `json:"header_to_write"`
	Mappings                  MappingRules   `json:"mappings"`
	DataSource                string         `json:"data_source"`
	AddBlankAfterHeader       bool           `json:"add_blank_after_header"`
	StaticContentAfterHeader  map[string]any `json:"static_content_after_header"`
	MergeRulesAfterHeader     map[string]int `json:"merge_rules_after_header"`
	AddBlankBeforeFooter      bool           `json:"add_blank_before_footer"`
	StaticContentBeforeFooter map[string]any `json:"static_content_before_footer"`
	MergeRulesBeforeFooter    map[string]int `json:"merge_rules_before_footer"`
	MergeRulesFooter          map[string]int `json:"merge_rules_footer"`
	FooterConfigurations      legacyFooter   `json:"footer_configurations"`
	DataCellMergingRule       []ColumnRef    `json:"data_cell_merging_rule"`
	MaxRowsToFill             *int           `json:"max_rows_to_fill"`
	MultiTable                bool           `json:"multi_table"`
	Styling                   *StylingConfig `json:"styling"`
}

type legacyFooter struct {
	Type              string        `json:"type"`
	TotalText         string        `json:"total_text"`
	TotalTextColumn   any           `json:"total_text_column_id"`
	PalletCountColumn any           `json:"pallet_count_column_id"`
	SumColumnIDs      []ColumnRef   `json:"sum_column_ids"`
	MergeRules        []legacyMerge `json:"merge_rules"`
}

type legacyMerge struct {
	StartColumnID any `json:"start_column_id"`
	ColSpan       int `json:"colspan"`
}

type legacyRecipe struct {
	Name       string                  `json:"name"`
	SheetOrder []string                `json:"sheet_order"`
	Sheets     map[string]*legacySheet `json:"sheets"`
	Metadata   map[string]any          `json:"metadata"`
}

// LoadLegacy reads a legacy JSON recipe file and adapts it.
func LoadLegacy(path string) (*Recipe, *util.Result) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, util.Error("ReadFile", err)
	}
	return ParseLegacy(buf)
}

// ParseLegacy parses legacy JSON recipe bytes into a normalized Recipe.
func ParseLegacy(buf []byte) (*Recipe, *util.Result) {
	var lr legacyRecipe
	if err := json.Unmarshal(buf, &lr); err != nil {
		return nil, util.Error("UnmarshalJson", err)
	}

	r := Recipe{
		Name:       lr.Name,
		SheetOrder: lr.SheetOrder,
		Sheets:     make(map[string]*SheetConfig, len(lr.Sheets)),
		Metadata:   lr.Metadata,
	}

	for name, ls := range lr.Sheets {
		if ls == nil {
			continue
		}
		sc, res := ls.normalize(name)
		if res != nil {
			return nil, res.With("NormalizeSheet")
		}
		r.Sheets[name] = sc
	}

	if res := r.Validate(); res != nil {
		return nil, res.With("Validate")
	}
	return &r, nil
}

func (ls *legacySheet) normalize(sheet string) (*SheetConfig, *util.Result) {
	sc := SheetConfig{
		StartRow:             ls.StartRow,
		Header:               ls.HeaderToWrite,
		Mappings:             ls.Mappings,
		DataSource:           ls.DataSource,
		AddBlankAfterHeader:  ls.AddBlankAfterHeader,
		AddBlankBeforeFooter: ls.AddBlankBeforeFooter,
		MergeColumns:         ls.DataCellMergingRule,
		MaxRowsToFill:        ls.MaxRowsToFill,
		MultiTable:           ls.MultiTable,
		Styling:              ls.Styling,
	}

	var res *util.Result
	if sc.AfterHeader, res = legacySlot(sheet, ls.StaticContentAfterHeader, ls.MergeRulesAfterHeader); res != nil {
		return nil, res
	}
	if sc.BeforeFooter, res = legacySlot(sheet, ls.StaticContentBeforeFooter, ls.MergeRulesBeforeFooter); res != nil {
		return nil, res
	}
	if len(ls.MergeRulesFooter) > 0 {
		m, res := legacyIntKeys(sheet, ls.MergeRulesFooter)
		if res != nil {
			return nil, res
		}
		sc.FooterMergeRules = m
	}

	sc.Footer = FooterConfig{
		Type:       ls.FooterConfigurations.Type,
		TotalText:  ls.FooterConfigurations.TotalText,
		SumColumns: ls.FooterConfigurations.SumColumnIDs,
	}
	sc.Footer.TotalTextColumn = legacyColumnRef(ls.FooterConfigurations.TotalTextColumn)
	sc.Footer.PalletCountColumn = legacyColumnRef(ls.FooterConfigurations.PalletCountColumn)
	for _, lm := range ls.FooterConfigurations.MergeRules {
		sc.Footer.MergeRules = append(sc.Footer.MergeRules, FooterMerge{
			StartColumn: legacyColumnRef(lm.StartColumnID),
			ColSpan:     lm.ColSpan,
		})
	}

	return &sc, nil
}

func legacySlot(sheet string, content map[string]any, merges map[string]int) (*RowSlot, *util.Result) {
	if len(content) == 0 && len(merges) == 0 {
		return nil, nil
	}
	slot := RowSlot{}
	if len(content) > 0 {
		slot.Content = make(map[int]any, len(content))
		for k, v := range content {
			col, err := strconv.Atoi(k)
			if err != nil || col < 1 {
				return nil, util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: invalid static content column key `%s`", sheet, k))
			}
			slot.Content[col] = v
		}
	}
	if len(merges) > 0 {
		m, res := legacyIntKeys(sheet, merges)
		if res != nil {
			return nil, res
		}
		slot.Merges = m
	}
	return &slot, nil
}

func legacyIntKeys(sheet string, in map[string]int) (map[int]int, *util.Result) {
	out := make(map[int]int, len(in))
	for k, v := range in {
		col, err := strconv.Atoi(k)
		if err != nil || col < 1 {
			return nil, util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: invalid merge rule column key `%s`", sheet, k))
		}
		out[col] = v
	}
	return out, nil
}

// legacyColumnRef maps a legacy column reference (id string, or zero-based
// numeric index as number or string) onto a ColumnRef. Numeric references are
// rendered as `#N` with a 1-based index; the header builder registers these
// aliases for every column it writes.
func legacyColumnRef(v any) ColumnRef {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return ColumnRef(fmt.Sprintf("#%d", n+1))
		}
		return ColumnRef(t)
	case float64:
		return ColumnRef(fmt.Sprintf("#%d", int(t)+1))
	case int:
		return ColumnRef(fmt.Sprintf("#%d", t+1))
	default:
		return ""
	}
}
