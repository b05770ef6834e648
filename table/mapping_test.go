package table

import (
	"strings"
	"testing"

	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/recipe"
)

func testColumns() ColumnIndex {
	return ColumnIndex{
		ByRef: map[recipe.ColumnRef]int{
			"marks": 1, "desc": 2, "qty": 3, "price": 4, "amount": 5,
		},
		Titles:     map[int]string{},
		NumColumns: 5,
	}
}

func TestResolveMappingRules(t *testing.T) {
	rules, res := ResolveMappingRules("Sheet1", invoiceMappings(), testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}
	if len(rules.Dynamic) != 4 {
		t.Errorf("len(Dynamic) = %d, want 4", len(rules.Dynamic))
	}
	if len(rules.Formulas) != 1 {
		t.Errorf("len(Formulas) = %d, want 1", len(rules.Formulas))
	}
	if f, ok := rules.Formulas[5]; !ok {
		t.Errorf("formula not resolved to column 5")
	} else if f.Field != "amount" {
		t.Errorf("formula field = %q, want amount", f.Field)
	}
	if rules.InitialStatic != nil {
		t.Errorf("unexpected initial static rule")
	}
}

func TestResolveMappingRulesInitialStatic(t *testing.T) {
	mappings := recipe.MappingRules{
		"labels": {Type: recipe.RuleTypeInitialStatic, ColumnHeaderID: "marks", Values: []string{"N/M", "AS ADDR"}},
		"desc":   {ID: "desc", KeyIndex: util.Ptr(1)},
	}
	rules, res := ResolveMappingRules("Sheet1", mappings, testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}
	if rules.InitialStatic == nil {
		t.Fatal("initial static rule not resolved")
	}
	if rules.InitialStatic.Column != 1 || len(rules.InitialStatic.Values) != 2 {
		t.Errorf("initial static = %+v", rules.InitialStatic)
	}
}

func TestResolveMappingRulesErrors(t *testing.T) {
	cases := []struct {
		name     string
		mappings recipe.MappingRules
		want     string
	}{
		{
			name: "unknown column",
			mappings: recipe.MappingRules{
				"desc": {ID: "nope", KeyIndex: util.Ptr(0)},
			},
			want: "unknown column",
		},
		{
			name: "duplicate target",
			mappings: recipe.MappingRules{
				"a": {ID: "desc", KeyIndex: util.Ptr(0)},
				"b": {ID: "desc", KeyIndex: util.Ptr(1)},
			},
			want: "already claimed",
		},
		{
			name: "formula input unknown",
			mappings: recipe.MappingRules{
				"amount": {ID: "amount", Type: recipe.RuleTypeFormula, FormulaTemplate: "{col_ref_0}{row}", Inputs: []recipe.ColumnRef{"nope"}},
			},
			want: "unknown column",
		},
		{
			name: "formula input undefined",
			mappings: recipe.MappingRules{
				"amount": {ID: "amount", Type: recipe.RuleTypeFormula, FormulaTemplate: "{col_ref_0}{row}", Inputs: []recipe.ColumnRef{"qty"}},
			},
			want: "not defined by another rule",
		},
		{
			name: "formula references itself",
			mappings: recipe.MappingRules{
				"amount": {ID: "amount", Type: recipe.RuleTypeFormula, FormulaTemplate: "{col_ref_0}{row}", Inputs: []recipe.ColumnRef{"amount"}},
			},
			want: "not defined by another rule",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, res := ResolveMappingRules("Sheet1", c.mappings, testColumns())
			if res == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(res.Error(), c.want) {
				t.Errorf("error = %q, want substring %q", res.Error(), c.want)
			}
		})
	}
}
