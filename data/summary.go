package data

import (
	"github.com/shopspring/decimal"
)

// Summary accumulates build-wide totals across tables. Amount and quantity
// sums use decimals so repeated float addition cannot drift invoice totals.
type Summary struct {
	Tables       int
	Rows         int
	TotalPallets int
	Amount       decimal.Decimal
	Quantity     decimal.Decimal
}

// AddTable folds one written table into the summary.
func (s *Summary) AddTable(rows int, pallets int) {
	s.Tables++
	s.Rows += rows
	s.TotalPallets += pallets
}

// AddAmount accumulates an amount cell value when it is numeric.
func (s *Summary) AddAmount(v any) {
	if d, ok := AsDecimal(v); ok {
		s.Amount = s.Amount.Add(d)
	}
}

// AddQuantity accumulates a quantity cell value when it is numeric.
func (s *Summary) AddQuantity(v any) {
	if d, ok := AsDecimal(v); ok {
		s.Quantity = s.Quantity.Add(d)
	}
}
