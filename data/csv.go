package data

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/soderasen-au/go-common/util"
)

// ShipmentRow is one line of a shipment CSV export, the flat-list source the
// generator most often consumes.
type ShipmentRow struct {
	PONumber    string `csv:"po_number"`
	ItemNumber  string `csv:"item_number"`
	Description string `csv:"description"`
	QuantityPcs string `csv:"quantity_pcs"`
	QuantitySF  string `csv:"quantity_sf"`
	UnitPrice   string `csv:"unit_price"`
	Amount      string `csv:"amount"`
	NetWeight   string `csv:"net_weight"`
	GrossWeight string `csv:"gross_weight"`
	CBM         string `csv:"cbm"`
	PalletCount int    `csv:"pallet_count"`
}

// Fields returns the row as an ordered flat list; key_index in dynamic
// mapping rules addresses this order.
func (r ShipmentRow) AsFields() []any {
	return []any{
		r.PONumber, r.ItemNumber, r.Description,
		r.QuantityPcs, r.QuantitySF, r.UnitPrice, r.Amount,
		r.NetWeight, r.GrossWeight, r.CBM,
	}
}

// ReadShipmentCSV loads a shipment CSV file into a flat-list Source,
// preserving file order.
func ReadShipmentCSV(file string) (*Source, *util.Result) {
	rows := make([]ShipmentRow, 0)

	f, err := os.Open(file)
	if err != nil {
		return nil, util.Error("OpenFile", err)
	}
	defer f.Close()

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		return r
	})

	if err = gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, util.Error("UnmarshalCsvFile", err)
	}

	src := Source{Type: SourceFlatList}
	for _, row := range rows {
		rec := Record{Fields: row.AsFields()}
		if row.PalletCount > 0 {
			rec.Pallets = []int{row.PalletCount}
		}
		src.Records = append(src.Records, rec)
	}
	return &src, nil
}

// SourceName normalizes a recipe's data_source indicator for lookup in a
// provider map (trim + lower, matching how sheet configs spell them).
func SourceName(indicator string) string {
	return strings.ToLower(strings.TrimSpace(indicator))
}
