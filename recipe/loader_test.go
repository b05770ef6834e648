package recipe

import (
	"strings"
	"testing"
)

const bundledYaml = `
name: commercial-invoice
sheet_order: [INVOICE, PACKING]
metadata:
  invoice_no: INV-7
sheets:
  INVOICE:
    start_row: 3
    header_to_write:
      - {row: 0, col: 0, text: "DESCRIPTION", id: desc}
      - {row: 0, col: 1, text: "QUANTITY", id: qty, colspan: 2}
      - {row: 0, col: 3, text: "AMOUNT", id: amount}
    mappings:
      desc:
        id: desc
        key_index: 0
      qty:
        id: qty
        key_index: 1
        numeric: true
      amount:
        id: amount
        type: formula
        formula_template: "{col_ref_0}{row}*2"
        inputs: [qty]
    data_source: lines
    footer_configurations:
      total_text: TOTAL
      total_text_column_id: desc
      sum_column_ids: [qty]
  PACKING:
    start_row: 1
    multi_table: true
    header_to_write:
      - {row: 0, col: 0, text: "ITEM", id: item}
    mappings:
      item:
        id: item
        key_index: 0
    data_source: pallets
`

func TestParseBundled(t *testing.T) {
	r, res := ParseBundled([]byte(bundledYaml))
	if res != nil {
		t.Fatalf("ParseBundled: %s", res.Error())
	}
	if r.Name != "commercial-invoice" {
		t.Errorf("Name = %q", r.Name)
	}
	if got := r.OrderedSheets(); len(got) != 2 || got[0] != "INVOICE" || got[1] != "PACKING" {
		t.Errorf("OrderedSheets = %v", got)
	}

	inv := r.Sheets["INVOICE"]
	if inv.StartRow != 3 {
		t.Errorf("StartRow = %d, want 3", inv.StartRow)
	}
	if len(inv.Header) != 3 || inv.Header[1].ColSpan != 2 {
		t.Errorf("header = %+v", inv.Header)
	}
	if !inv.Mappings["amount"].IsFormula() {
		t.Errorf("amount rule should be a formula")
	}
	if !inv.Mappings["qty"].Numeric {
		t.Errorf("qty rule should be numeric")
	}
	if inv.Footer.TotalTextColumn != "desc" || len(inv.Footer.SumColumns) != 1 {
		t.Errorf("footer = %+v", inv.Footer)
	}
	if !r.Sheets["PACKING"].MultiTable {
		t.Errorf("PACKING should be multi-table")
	}
	if r.Metadata["invoice_no"] != "INV-7" {
		t.Errorf("metadata = %v", r.Metadata)
	}
}

func TestParseBundledInvalid(t *testing.T) {
	cases := []struct {
		name string
		yml  string
		want string
	}{
		{"no sheets", `name: x`, "no sheets"},
		{
			"empty header",
			"sheets:\n  S:\n    mappings: {}\n",
			"header_to_write is empty",
		},
		{
			"duplicate header id",
			"sheets:\n  S:\n    header_to_write:\n      - {row: 0, col: 0, text: A, id: a}\n      - {row: 0, col: 1, text: B, id: a}\n",
			"duplicate header column id",
		},
		{
			"rule without target",
			"sheets:\n  S:\n    header_to_write:\n      - {row: 0, col: 0, text: A, id: a}\n    mappings:\n      f:\n        key_index: 0\n",
			"no target column id",
		},
		{
			"bad footer type",
			"sheets:\n  S:\n    header_to_write:\n      - {row: 0, col: 0, text: A, id: a}\n    footer_configurations:\n      type: bogus\n",
			"unknown footer type",
		},
		{
			"negative cap",
			"sheets:\n  S:\n    header_to_write:\n      - {row: 0, col: 0, text: A, id: a}\n    max_rows_to_fill: -2\n",
			"must not be negative",
		},
		{
			"weight summary without columns",
			"sheets:\n  S:\n    header_to_write:\n      - {row: 0, col: 0, text: A, id: a}\n    weight_summary_config:\n      enabled: true\n      label_column_id: a\n",
			"weight summary needs",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, res := ParseBundled([]byte(c.yml))
			if res == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(res.Error(), c.want) {
				t.Errorf("error = %q, want substring %q", res.Error(), c.want)
			}
		})
	}
}
