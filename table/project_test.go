package table

import (
	"testing"

	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/data"
	"github.com/soderasen-au/go-invoice/recipe"
)

func TestProjectRowsOrder(t *testing.T) {
	rules, res := ResolveMappingRules("Sheet1", recipe.MappingRules{
		"desc": {ID: "desc", KeyIndex: util.Ptr(0)},
	}, testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}

	src := flatSource([]any{"zebra"}, []any{"apple"}, []any{"mango"}, []any{"apple"})
	proj, res := ProjectRows("Sheet1", src, rules, ProjectOptions{})
	if res != nil {
		t.Fatalf("ProjectRows: %s", res.Error())
	}
	if len(proj.Rows) != 4 || proj.SourceRows != 4 {
		t.Fatalf("rows = %d source = %d, want 4/4", len(proj.Rows), proj.SourceRows)
	}
	want := []string{"zebra", "apple", "mango", "apple"}
	for i, w := range want {
		if got := proj.Rows[i][2].Value; got != w {
			t.Errorf("row %d = %v, want %q", i, got, w)
		}
	}
}

func TestProjectRowsFallback(t *testing.T) {
	rules, res := ResolveMappingRules("Sheet1", recipe.MappingRules{
		"desc": {ID: "desc", KeyIndex: util.Ptr(0), Fallback: util.Ptr("PO TBA"), FallbackAlt: util.Ptr("COMPOUND")},
		"qty":  {ID: "qty", KeyIndex: util.Ptr(1)},
	}, testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}
	src := flatSource([]any{"", "10"})

	proj, res := ProjectRows("Sheet1", src, rules, ProjectOptions{})
	if res != nil {
		t.Fatalf("ProjectRows: %s", res.Error())
	}
	if got := proj.Rows[0][2].Value; got != "PO TBA" {
		t.Errorf("fallback = %v, want PO TBA", got)
	}

	proj, res = ProjectRows("Sheet1", src, rules, ProjectOptions{CompoundMode: true})
	if res != nil {
		t.Fatalf("ProjectRows compound: %s", res.Error())
	}
	if got := proj.Rows[0][2].Value; got != "COMPOUND" {
		t.Errorf("compound fallback = %v, want COMPOUND", got)
	}
}

func TestProjectRowsAbsentWithoutFallback(t *testing.T) {
	rules, res := ResolveMappingRules("Sheet1", recipe.MappingRules{
		"desc": {ID: "desc", KeyIndex: util.Ptr(5)},
	}, testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}
	proj, res := ProjectRows("Sheet1", flatSource([]any{"only one field"}), rules, ProjectOptions{})
	if res != nil {
		t.Fatalf("ProjectRows: %s", res.Error())
	}
	if _, ok := proj.Rows[0][2]; ok {
		t.Errorf("absent value without fallback should leave the cell empty")
	}
}

func TestProjectRowsNumeric(t *testing.T) {
	rules, res := ResolveMappingRules("Sheet1", recipe.MappingRules{
		"qty":   {ID: "qty", KeyIndex: util.Ptr(0), Numeric: true},
		"price": {ID: "price", KeyIndex: util.Ptr(1), Numeric: true},
	}, testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}
	proj, res := ProjectRows("Sheet1", flatSource([]any{"1,234", "12.50"}), rules, ProjectOptions{})
	if res != nil {
		t.Fatalf("ProjectRows: %s", res.Error())
	}
	if got := proj.Rows[0][3].Value; got != int64(1234) {
		t.Errorf("qty = %v (%T), want int64 1234", got, got)
	}
	if got := proj.Rows[0][4].Value; got != 12.5 {
		t.Errorf("price = %v (%T), want 12.5", got, got)
	}
}

func TestProjectRowsSourceShapes(t *testing.T) {
	cases := []struct {
		name string
		src  *data.Source
		rule recipe.MappingRule
		want any
	}{
		{
			name: "tuple key index",
			src: &data.Source{Type: data.SourceTupleKeyed, Records: []data.Record{
				{Key: []any{"PO-1", "ITEM-9"}, Aggregates: map[string]any{"qty": 7}},
			}},
			rule: recipe.MappingRule{ID: "desc", KeyIndex: util.Ptr(1)},
			want: "ITEM-9",
		},
		{
			name: "tuple value key",
			src: &data.Source{Type: data.SourceTupleKeyed, Records: []data.Record{
				{Key: []any{"PO-1"}, Aggregates: map[string]any{"qty": 7}},
			}},
			rule: recipe.MappingRule{ID: "desc", ValueKey: util.Ptr("qty")},
			want: 7,
		},
		{
			name: "nested custom",
			src: &data.Source{Type: data.SourceNestedCustom, Records: []data.Record{
				{Nested: map[string]any{"consignee": "ACME LTD"}},
			}},
			rule: recipe.MappingRule{ID: "desc", ValueKey: util.Ptr("consignee")},
			want: "ACME LTD",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rules, res := ResolveMappingRules("Sheet1", recipe.MappingRules{"f": c.rule}, testColumns())
			if res != nil {
				t.Fatalf("ResolveMappingRules: %s", res.Error())
			}
			proj, res := ProjectRows("Sheet1", c.src, rules, ProjectOptions{})
			if res != nil {
				t.Fatalf("ProjectRows: %s", res.Error())
			}
			if got := proj.Rows[0][2].Value; got != c.want {
				t.Errorf("value = %v, want %v", got, c.want)
			}
		})
	}
}

func TestProjectRowsLabelPadding(t *testing.T) {
	rules, res := ResolveMappingRules("Sheet1", recipe.MappingRules{
		"labels": {Type: recipe.RuleTypeInitialStatic, ColumnHeaderID: "marks", Values: []string{"a", "b", "c", "d", "e"}},
		"desc":   {ID: "desc", KeyIndex: util.Ptr(0)},
	}, testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}
	proj, res := ProjectRows("Sheet1", flatSource([]any{"x"}, []any{"y"}), rules, ProjectOptions{})
	if res != nil {
		t.Fatalf("ProjectRows: %s", res.Error())
	}
	if len(proj.Rows) != 5 {
		t.Fatalf("rows = %d, want 5 (padded to label count)", len(proj.Rows))
	}
	if proj.SourceRows != 2 {
		t.Errorf("SourceRows = %d, want 2", proj.SourceRows)
	}
	for i := 2; i < 5; i++ {
		if len(proj.Rows[i]) != 0 {
			t.Errorf("padded row %d not empty: %v", i, proj.Rows[i])
		}
	}
}

func TestProjectRowsPalletCounts(t *testing.T) {
	rules, res := ResolveMappingRules("Sheet1", recipe.MappingRules{
		"desc": {ID: "desc", KeyIndex: util.Ptr(0)},
	}, testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}
	src := flatSource([]any{"a"}, []any{"b"})
	src.Records[0].Pallets = []int{2, 1}
	src.Records[1].Pallets = []int{4}

	proj, res := ProjectRows("Sheet1", src, rules, ProjectOptions{})
	if res != nil {
		t.Fatalf("ProjectRows: %s", res.Error())
	}
	if len(proj.PalletCounts) != 2 || proj.PalletCounts[0] != 3 || proj.PalletCounts[1] != 4 {
		t.Errorf("PalletCounts = %v, want [3 4]", proj.PalletCounts)
	}
}
