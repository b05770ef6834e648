package table

import (
	"fmt"
	"testing"

	"github.com/soderasen-au/go-common/loggers"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/recipe"
)

func TestWriteRotatingLabels(t *testing.T) {
	ws := newTestSheet(t)
	labels := []string{"N/M", "AS ADDRESSED", "SEE PACKING"}
	rules, res := ResolveMappingRules("Sheet1", recipe.MappingRules{
		"labels": {Type: recipe.RuleTypeInitialStatic, ColumnHeaderID: "marks", Values: labels},
		"desc":   {ID: "desc", KeyIndex: util.Ptr(0)},
	}, testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}

	src := flatSource([]any{"a"}, []any{"b"}, []any{"c"}, []any{"d"}, []any{"e"}, []any{"f"}, []any{"g"})
	proj, res := ProjectRows("Sheet1", src, rules, ProjectOptions{})
	if res != nil {
		t.Fatalf("ProjectRows: %s", res.Error())
	}

	plan, res := PlanLayout(ws, 1, len(proj.Rows), 5, LayoutOptions{MaxRowsToFill: -1}, loggers.NullLogger)
	if res != nil {
		t.Fatalf("PlanLayout: %s", res.Error())
	}
	w := Writer{Sheet: ws, Cols: testColumns(), Rules: rules, Logger: loggers.NullLogger}
	if _, res := w.Write(plan, proj); res != nil {
		t.Fatalf("Write: %s", res.Error())
	}

	for i := 0; i < 7; i++ {
		want := labels[i%len(labels)]
		if got := cellValue(t, ws, plan.DataStart+i, 1); got != want {
			t.Errorf("label row %d = %q, want %q", plan.DataStart+i, got, want)
		}
	}
}

func TestWriteFormulaRowRelative(t *testing.T) {
	ws := newTestSheet(t)
	rules, res := ResolveMappingRules("Sheet1", invoiceMappings(), testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}
	src := flatSource(
		[]any{"m", "d", "10", "2"},
		[]any{"m", "d", "20", "3"},
	)
	proj, res := ProjectRows("Sheet1", src, rules, ProjectOptions{})
	if res != nil {
		t.Fatalf("ProjectRows: %s", res.Error())
	}

	// Anchor the table deep in the sheet so the expanded row numbers are
	// unmistakably absolute.
	plan, res := PlanLayout(ws, 20, len(proj.Rows), 5, LayoutOptions{MaxRowsToFill: -1}, loggers.NullLogger)
	if res != nil {
		t.Fatalf("PlanLayout: %s", res.Error())
	}
	if plan.DataStart != 21 {
		t.Fatalf("DataStart = %d, want 21", plan.DataStart)
	}
	w := Writer{Sheet: ws, Cols: testColumns(), Rules: rules, Logger: loggers.NullLogger}
	if _, res := w.Write(plan, proj); res != nil {
		t.Fatalf("Write: %s", res.Error())
	}

	for i, want := range []string{"C21*D21", "C22*D22"} {
		if got := cellFormula(t, ws, 21+i, 5); got != want {
			t.Errorf("formula row %d = %q, want %q", 21+i, got, want)
		}
	}
}

func TestWriteTruncated(t *testing.T) {
	ws := newTestSheet(t)
	rules, res := ResolveMappingRules("Sheet1", recipe.MappingRules{
		"desc": {ID: "desc", KeyIndex: util.Ptr(0)},
	}, testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}

	rows := make([][]any, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, []any{fmt.Sprintf("row-%02d", i)})
	}
	proj, res := ProjectRows("Sheet1", flatSource(rows...), rules, ProjectOptions{})
	if res != nil {
		t.Fatalf("ProjectRows: %s", res.Error())
	}

	plan, res := PlanLayout(ws, 1, len(proj.Rows), 5, LayoutOptions{MaxRowsToFill: 15}, loggers.NullLogger)
	if res != nil {
		t.Fatalf("PlanLayout: %s", res.Error())
	}
	w := Writer{Sheet: ws, Cols: testColumns(), Rules: rules, Logger: loggers.NullLogger}
	wr, res := w.Write(plan, proj)
	if res != nil {
		t.Fatalf("Write: %s", res.Error())
	}
	if wr.RowsWritten != 15 {
		t.Errorf("RowsWritten = %d, want 15", wr.RowsWritten)
	}
	if !wr.Truncated || wr.TruncatedRows != 5 {
		t.Errorf("truncation = %v/%d, want true/5", wr.Truncated, wr.TruncatedRows)
	}
	if got := cellValue(t, ws, plan.DataEnd, 2); got != "row-14" {
		t.Errorf("last data row = %q, want row-14", got)
	}
	if got := cellValue(t, ws, plan.DataEnd+1, 2); got != "" {
		t.Errorf("row below data = %q, want blank", got)
	}
}

func TestWriteContiguousMerges(t *testing.T) {
	ws := newTestSheet(t)
	rules, res := ResolveMappingRules("Sheet1", recipe.MappingRules{
		"marks": {ID: "marks", KeyIndex: util.Ptr(0)},
		"qty":   {ID: "qty", KeyIndex: util.Ptr(1)},
	}, testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}

	// A A B A: only the leading pair merges; the trailing A is separated by
	// the break and stays single.
	src := flatSource([]any{"A", "1"}, []any{"A", "2"}, []any{"B", "3"}, []any{"A", "4"})
	proj, res := ProjectRows("Sheet1", src, rules, ProjectOptions{})
	if res != nil {
		t.Fatalf("ProjectRows: %s", res.Error())
	}
	plan, res := PlanLayout(ws, 1, len(proj.Rows), 5, LayoutOptions{MaxRowsToFill: -1}, loggers.NullLogger)
	if res != nil {
		t.Fatalf("PlanLayout: %s", res.Error())
	}
	w := Writer{
		Sheet:        ws,
		Cols:         testColumns(),
		Rules:        rules,
		MergeColumns: []recipe.ColumnRef{"marks"},
		Logger:       loggers.NullLogger,
	}
	wr, res := w.Write(plan, proj)
	if res != nil {
		t.Fatalf("Write: %s", res.Error())
	}
	if wr.MergeSpans != 1 {
		t.Errorf("MergeSpans = %d, want 1", wr.MergeSpans)
	}

	ranges, res2 := ws.MergedRanges()
	if res2 != nil {
		t.Fatalf("MergedRanges: %s", res2.Error())
	}
	if len(ranges) != 1 || ranges[0] != "A2:A3" {
		t.Errorf("merges = %v, want [A2:A3]", ranges)
	}
}

func TestWriteSlotRows(t *testing.T) {
	ws := newTestSheet(t)
	rules, res := ResolveMappingRules("Sheet1", recipe.MappingRules{
		"desc": {ID: "desc", KeyIndex: util.Ptr(0)},
	}, testColumns())
	if res != nil {
		t.Fatalf("ResolveMappingRules: %s", res.Error())
	}
	proj, res := ProjectRows("Sheet1", flatSource([]any{"x"}), rules, ProjectOptions{})
	if res != nil {
		t.Fatalf("ProjectRows: %s", res.Error())
	}

	opt := LayoutOptions{AddBlankAfterHeader: true, AddBlankBeforeFooter: true, MaxRowsToFill: -1}
	plan, res := PlanLayout(ws, 1, len(proj.Rows), 5, opt, loggers.NullLogger)
	if res != nil {
		t.Fatalf("PlanLayout: %s", res.Error())
	}

	w := Writer{
		Sheet: ws,
		Cols:  testColumns(),
		Rules: rules,
		AfterHeader: &recipe.RowSlot{
			Content: map[int]any{1: "AS PER CONTRACT NO. 123"},
			Merges:  map[int]int{1: 5},
		},
		BeforeFooter: &recipe.RowSlot{Content: map[int]any{2: "SAY TOTAL ONLY"}},
		Logger:       loggers.NullLogger,
	}
	if _, res := w.Write(plan, proj); res != nil {
		t.Fatalf("Write: %s", res.Error())
	}

	if got := cellValue(t, ws, plan.RowAfterHeader, 1); got != "AS PER CONTRACT NO. 123" {
		t.Errorf("after-header row = %q", got)
	}
	if got := cellValue(t, ws, plan.RowBeforeFooter, 2); got != "SAY TOTAL ONLY" {
		t.Errorf("before-footer row = %q", got)
	}

	ranges, res2 := ws.MergedRanges()
	if res2 != nil {
		t.Fatalf("MergedRanges: %s", res2.Error())
	}
	want := fmt.Sprintf("A%d:E%d", plan.RowAfterHeader, plan.RowAfterHeader)
	found := false
	for _, r := range ranges {
		if r == want {
			found = true
		}
	}
	if !found {
		t.Errorf("after-header merge %s missing in %v", want, ranges)
	}
}
