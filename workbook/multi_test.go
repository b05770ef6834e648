package workbook

import (
	"path/filepath"
	"testing"

	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/data"
	"github.com/soderasen-au/go-invoice/recipe"
	"github.com/soderasen-au/go-invoice/sheet"
)

func packingRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		Name:       "packing-list",
		SheetOrder: []string{"PACKING"},
		Sheets: map[string]*recipe.SheetConfig{
			"PACKING": {
				StartRow: 1,
				Header: []recipe.HeaderCell{
					{Row: 0, Col: 0, Text: "ITEM", ID: "item"},
					{Row: 0, Col: 1, Text: "CARTONS", ID: "cartons"},
				},
				Mappings: recipe.MappingRules{
					"item":    {ID: "item", KeyIndex: util.Ptr(0)},
					"cartons": {ID: "cartons", KeyIndex: util.Ptr(1), Numeric: true},
				},
				DataSource: "pallets",
				MultiTable: true,
				Footer: recipe.FooterConfig{
					Type:              recipe.FooterTypeGrandTotal,
					TotalText:         "TOTAL",
					TotalTextColumn:   "item",
					PalletCountColumn: "cartons",
				},
			},
		},
	}
}

func TestBuildMultiTable(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "packing.xlsx")

	sources := []*data.Source{
		{Type: data.SourceFlatList, Records: []data.Record{
			{Fields: []any{"SOFA", "12"}, Pallets: []int{2}},
			{Fields: []any{"CHAIR", "30"}, Pallets: []int{3}},
		}},
		{Type: data.SourceFlatList, Records: []data.Record{
			{Fields: []any{"TABLE", "8"}, Pallets: []int{4}},
		}},
	}

	job := Job{
		Name:         "pl-001",
		OutputPath:   out,
		Recipe:       packingRecipe(),
		MultiSources: map[string][]*data.Source{"pallets": sources},
	}
	ret, res := Build(&job)
	if res != nil {
		t.Fatalf("Build: %s", res.Error())
	}
	if ret.Summary.Tables != 2 {
		t.Errorf("Tables = %d, want 2", ret.Summary.Tables)
	}
	if ret.Summary.TotalPallets != 9 {
		t.Errorf("TotalPallets = %d, want 9", ret.Summary.TotalPallets)
	}

	wb, res := sheet.OpenWorkbook(out)
	if res != nil {
		t.Fatalf("OpenWorkbook: %s", res.Error())
	}
	defer wb.Close()
	ws, res := wb.Sheet("PACKING")
	if res != nil {
		t.Fatalf("Sheet: %s", res.Error())
	}

	checkCell := func(row, col int, want string) {
		t.Helper()
		v, res := ws.CellValue(row, col)
		if res != nil {
			t.Fatalf("CellValue(%d, %d): %s", row, col, res.Error())
		}
		if v != want {
			t.Errorf("cell (%d, %d) = %q, want %q", row, col, v, want)
		}
	}

	// Table 1: header row 1, data 2..3, footer 4.
	checkCell(1, 1, "ITEM")
	checkCell(2, 1, "SOFA")
	checkCell(3, 1, "CHAIR")
	checkCell(4, 1, "TOTAL")
	checkCell(4, 2, "5 PALLET(S)")

	// Table 2 continues at the tracked anchor: header 5, data 6, footer 7.
	checkCell(5, 1, "ITEM")
	checkCell(6, 1, "TABLE")
	checkCell(7, 1, "TOTAL")
	checkCell(7, 2, "4 PALLET(S)")

	// Grand total pallet summary below the last table.
	checkCell(8, 1, "GRAND TOTAL")
	checkCell(8, 2, "9 PALLET(S)")
}

func TestBuildMultiTableSingleSourceSkipsGrandTotal(t *testing.T) {
	sources := []*data.Source{
		{Type: data.SourceFlatList, Records: []data.Record{
			{Fields: []any{"SOFA", "12"}, Pallets: []int{2}},
		}},
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "single.xlsx")
	job := Job{
		OutputPath:   out,
		Recipe:       packingRecipe(),
		MultiSources: map[string][]*data.Source{"pallets": sources},
	}
	if _, res := Build(&job); res != nil {
		t.Fatalf("Build: %s", res.Error())
	}

	wb, res := sheet.OpenWorkbook(out)
	if res != nil {
		t.Fatalf("OpenWorkbook: %s", res.Error())
	}
	defer wb.Close()
	ws, res := wb.Sheet("PACKING")
	if res != nil {
		t.Fatalf("Sheet: %s", res.Error())
	}
	// Footer at row 3, nothing after it.
	v, res2 := ws.CellValue(4, 1)
	if res2 != nil {
		t.Fatalf("CellValue: %s", res2.Error())
	}
	if v != "" {
		t.Errorf("row 4 = %q, want blank (no grand total for one table)", v)
	}
}
