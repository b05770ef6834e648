package table

import (
	"fmt"

	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/data"
	"github.com/soderasen-au/go-invoice/recipe"
)

// CellKind tags a projected cell value.
type CellKind int

const (
	CellScalar CellKind = iota
	CellFormula
)

// CellValue is either a resolved scalar or a deferred formula placeholder.
// Placeholders keep the unexpanded template and input refs; expansion needs
// the concrete row number and happens at write time.
type CellValue struct {
	Kind     CellKind
	Value    any
	Template string
	Inputs   []recipe.ColumnRef
}

func Scalar(v any) CellValue { return CellValue{Kind: CellScalar, Value: v} }

func Formula(template string, inputs []recipe.ColumnRef) CellValue {
	return CellValue{Kind: CellFormula, Template: template, Inputs: inputs}
}

// RowProjection maps 1-based output column indices to cell values for one
// output row.
type RowProjection map[int]CellValue

// Projection is the ordered result of projecting a source: one row per
// record, in source iteration order (never re-sorted), plus the per-record
// pallet counts used for the running total.
type Projection struct {
	Rows         []RowProjection
	PalletCounts []int
	// SourceRows is the record count before any label padding.
	SourceRows int
}

// ProjectOptions tweaks projection behaviour.
type ProjectOptions struct {
	// CompoundMode selects the alternate per-rule fallback when a dynamic
	// extraction comes up empty (compounded shipment builds).
	CompoundMode bool
}

// ProjectRows normalizes source records into row projections using the
// resolved rules. The normalization path is selected once by the source's
// declared type. Absent dynamic values fall back to the rule's declared
// fallback (alternate fallback in compound mode) or stay empty; absence is
// never fatal. Static lists rotate by row position. Formula rules become
// placeholders.
func ProjectRows(sheetName string, src *data.Source, rr *ResolvedRules, opt ProjectOptions) (*Projection, *util.Result) {
	if res := src.Validate(); res != nil {
		return nil, res.With("ValidateSource")
	}

	extract, res := extractorFor(sheetName, src.Type)
	if res != nil {
		return nil, res
	}

	proj := Projection{SourceRows: len(src.Records)}

	for i, rec := range src.Records {
		row := make(RowProjection)

		for col, dyn := range rr.Dynamic {
			v := extract(rec, dyn.Rule)
			if data.IsEmptyValue(v) {
				if fb := fallbackFor(dyn.Rule, opt.CompoundMode); fb != nil {
					row[col] = Scalar(*fb)
				}
				continue
			}
			if dyn.Rule.Numeric {
				v = data.ToNumeric(v)
			}
			row[col] = Scalar(v)
		}

		for col, st := range rr.Static {
			if _, taken := row[col]; taken {
				continue
			}
			row[col] = Scalar(rotateStatic(st.Value, i))
		}

		for col, f := range rr.Formulas {
			row[col] = Formula(f.Template, f.Inputs)
		}

		proj.Rows = append(proj.Rows, row)
		proj.PalletCounts = append(proj.PalletCounts, rec.PalletCount())
	}

	// A label list longer than the data still occupies rows; pad with empty
	// projections so the rotating label column gets all its values.
	if rr.InitialStatic != nil {
		for len(proj.Rows) < len(rr.InitialStatic.Values) {
			proj.Rows = append(proj.Rows, RowProjection{})
			proj.PalletCounts = append(proj.PalletCounts, 0)
		}
	}

	return &proj, nil
}

type extractFunc func(rec data.Record, rule recipe.MappingRule) any

// extractorFor returns the one normalization function for the declared
// source type; record shapes are never inspected per row.
func extractorFor(sheetName string, t data.SourceType) (extractFunc, *util.Result) {
	switch t {
	case data.SourceTupleKeyed:
		return func(rec data.Record, rule recipe.MappingRule) any {
			if rule.KeyIndex != nil {
				if ix := *rule.KeyIndex; ix >= 0 && ix < len(rec.Key) {
					return rec.Key[ix]
				}
				return nil
			}
			if rule.ValueKey != nil {
				return rec.Aggregates[*rule.ValueKey]
			}
			return nil
		}, nil
	case data.SourceFlatList:
		return func(rec data.Record, rule recipe.MappingRule) any {
			if rule.KeyIndex == nil {
				return nil
			}
			if ix := *rule.KeyIndex; ix >= 0 && ix < len(rec.Fields) {
				return rec.Fields[ix]
			}
			return nil
		}, nil
	case data.SourceNestedCustom:
		return func(rec data.Record, rule recipe.MappingRule) any {
			if rule.ValueKey == nil {
				return nil
			}
			return rec.Nested[*rule.ValueKey]
		}, nil
	default:
		return nil, ConfigError(sheetName, fmt.Sprintf("unknown source type `%s`", t))
	}
}

func fallbackFor(rule recipe.MappingRule, compound bool) *string {
	if compound && rule.FallbackAlt != nil {
		return rule.FallbackAlt
	}
	return rule.Fallback
}

// rotateStatic picks the row's value from a static rule: lists rotate by
// row position modulo length, scalars repeat.
func rotateStatic(v any, rowPos int) any {
	switch list := v.(type) {
	case []any:
		if len(list) == 0 {
			return nil
		}
		return list[rowPos%len(list)]
	case []string:
		if len(list) == 0 {
			return nil
		}
		return list[rowPos%len(list)]
	default:
		return v
	}
}
