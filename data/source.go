package data

import (
	"fmt"
	"sort"

	"github.com/soderasen-au/go-common/util"
)

// SourceType selects which normalization rule the row projector applies.
// It is declared once per source; the engine never inspects record shapes at
// runtime.
type SourceType string

const (
	// SourceTupleKeyed: each record is an ordered tuple of dimension values
	// plus a map of aggregate name -> aggregate value.
	SourceTupleKeyed SourceType = "aggregation"
	// SourceFlatList: each record is an ordered list of scalars addressed by
	// position.
	SourceFlatList SourceType = "flat"
	// SourceNestedCustom: each record is a map of arbitrary identifiers to
	// values, addressed by name.
	SourceNestedCustom SourceType = "custom"
)

func (t SourceType) IsValid() bool {
	return t == SourceTupleKeyed || t == SourceFlatList || t == SourceNestedCustom
}

// Record is one raw unit of input data. Exactly one of Key/Aggregates,
// Fields, or Nested is populated, according to the owning Source's type.
// Pallets is an optional pallet-count attribute kept separate from cell
// content; it only feeds the running pallet total.
type Record struct {
	Key        []any          `json:"key,omitempty" yaml:"key,omitempty"`
	Aggregates map[string]any `json:"aggregates,omitempty" yaml:"aggregates,omitempty"`
	Fields     []any          `json:"fields,omitempty" yaml:"fields,omitempty"`
	Nested     map[string]any `json:"nested,omitempty" yaml:"nested,omitempty"`
	Pallets    []int          `json:"pallets,omitempty" yaml:"pallets,omitempty"`
}

// PalletCount sums the record's pallet attribute.
func (r Record) PalletCount() int {
	n := 0
	for _, p := range r.Pallets {
		n += p
	}
	return n
}

// Source is an ordered collection of records of one declared shape. Record
// order is significant: it determines output row order.
type Source struct {
	Type    SourceType `json:"type" yaml:"type"`
	Records []Record   `json:"records,omitempty" yaml:"records,omitempty"`
}

func (s *Source) Validate() *util.Result {
	if s == nil {
		return util.MsgError("ConfigError", "nil data source")
	}
	if !s.Type.IsValid() {
		return util.MsgError("ConfigError", fmt.Sprintf("unknown source type `%s`", s.Type))
	}
	return nil
}

// NewTupleKeyedSource builds an aggregation source from a key-tuple ->
// aggregates map. Map iteration order is not stable, so records are ordered
// by their rendered key tuple; callers needing a bespoke order should build
// the record slice themselves.
func NewTupleKeyedSource(agg map[string]map[string]any, keys map[string][]any) *Source {
	names := make([]string, 0, len(agg))
	for k := range agg {
		names = append(names, k)
	}
	sort.Strings(names)

	s := Source{Type: SourceTupleKeyed}
	for _, name := range names {
		s.Records = append(s.Records, Record{
			Key:        keys[name],
			Aggregates: agg[name],
		})
	}
	return &s
}
