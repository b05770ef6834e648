package table

import (
	"fmt"
	"sort"

	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/recipe"
)

// StaticSpec is a resolved static-value rule; Value may be a scalar or a
// list that rotates across rows.
type StaticSpec struct {
	Field string
	Value any
}

// DynamicSpec is a resolved source-indexed rule.
type DynamicSpec struct {
	Field string
	Rule  recipe.MappingRule
}

// FormulaSpec is a resolved formula rule; the template stays unexpanded
// until write time, when the concrete row number is known.
type FormulaSpec struct {
	Field    string
	Template string
	Inputs   []recipe.ColumnRef
}

// InitialStatic is the rotating label column (mark & number labels): values
// assigned by row position, independent of source data.
type InitialStatic struct {
	Field  string
	Column int
	Values []string
}

// ResolvedRules is the output of mapping-rule resolution: three disjoint
// rule sets keyed by target column index, plus the rotating label column.
type ResolvedRules struct {
	Static        map[int]StaticSpec
	Dynamic       map[int]DynamicSpec
	Formulas      map[int]FormulaSpec
	InitialStatic *InitialStatic

	// targets records which rule claimed each column, for duplicate
	// detection and formula input validation.
	targets map[int]string
}

// ResolveMappingRules partitions a sheet's mapping rules against the built
// column index. It is a pure validation pass: it fails before any sheet
// mutation when a rule references an unknown column, two rules claim the
// same column, or a formula input is not defined by another rule.
func ResolveMappingRules(sheetName string, rules recipe.MappingRules, cols ColumnIndex) (*ResolvedRules, *util.Result) {
	rr := ResolvedRules{
		Static:   make(map[int]StaticSpec),
		Dynamic:  make(map[int]DynamicSpec),
		Formulas: make(map[int]FormulaSpec),
		targets:  make(map[int]string),
	}

	// Deterministic order keeps duplicate-target errors stable.
	fields := make([]string, 0, len(rules))
	for f := range rules {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	claim := func(field string, ref recipe.ColumnRef) (int, *util.Result) {
		col, ok := cols.Resolve(ref)
		if !ok {
			return 0, ConfigError(sheetName, fmt.Sprintf("field `%s` references unknown column `%s`", field, ref))
		}
		if prev, taken := rr.targets[col]; taken {
			return 0, ConfigError(sheetName, fmt.Sprintf("field `%s` targets column %d already claimed by field `%s`", field, col, prev))
		}
		rr.targets[col] = field
		return col, nil
	}

	for _, field := range fields {
		rule := rules[field]
		switch {
		case rule.IsInitialStatic():
			col, res := claim(field, rule.ColumnHeaderID)
			if res != nil {
				return nil, res
			}
			if rr.InitialStatic != nil {
				return nil, ConfigError(sheetName, fmt.Sprintf("field `%s`: more than one initial_static_rows rule", field))
			}
			rr.InitialStatic = &InitialStatic{Field: field, Column: col, Values: rule.Values}

		case rule.IsFormula():
			col, res := claim(field, rule.ID)
			if res != nil {
				return nil, res
			}
			rr.Formulas[col] = FormulaSpec{Field: field, Template: rule.FormulaTemplate, Inputs: rule.Inputs}

		case rule.IsStatic():
			col, res := claim(field, rule.ID)
			if res != nil {
				return nil, res
			}
			rr.Static[col] = StaticSpec{Field: field, Value: rule.StaticValue}

		default:
			col, res := claim(field, rule.ID)
			if res != nil {
				return nil, res
			}
			rr.Dynamic[col] = DynamicSpec{Field: field, Rule: rule}
		}
	}

	for col, f := range rr.Formulas {
		for _, input := range f.Inputs {
			inputCol, ok := cols.Resolve(input)
			if !ok {
				return nil, ConfigError(sheetName, fmt.Sprintf("formula field `%s` input references unknown column `%s`", f.Field, input))
			}
			if _, defined := rr.targets[inputCol]; !defined || inputCol == col {
				return nil, ConfigError(sheetName, fmt.Sprintf("formula field `%s` input `%s` is not defined by another rule", f.Field, input))
			}
		}
	}

	return &rr, nil
}
