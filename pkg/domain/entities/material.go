package entities

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MaterialRequirement is the accumulated demand for one fabric colour
type MaterialRequirement struct {
	FabricColourCode string
	FabricName       string
	FabricUnit       string
	ColourName       string
	CostPerUnit      decimal.Decimal
	RequiredQty      float64
}

// MaterialDemand accumulates fabric colour requirements across every
// contributing product, size and variation path. Contributions merge
// additively, so the final per-colour total is independent of the order in
// which paths are exploded.
type MaterialDemand struct {
	requirements map[string]*MaterialRequirement
}

// NewMaterialDemand creates an empty MaterialDemand accumulator
func NewMaterialDemand() *MaterialDemand {
	return &MaterialDemand{requirements: make(map[string]*MaterialRequirement)}
}

// Add merges one contribution into the accumulator. The first contribution
// for a colour establishes its descriptive fields; later contributions only
// add quantity.
func (d *MaterialDemand) Add(contribution MaterialRequirement) {
	if existing, ok := d.requirements[contribution.FabricColourCode]; ok {
		existing.RequiredQty += contribution.RequiredQty
		return
	}
	copied := contribution
	d.requirements[contribution.FabricColourCode] = &copied
}

// Merge folds every requirement of other into this accumulator
func (d *MaterialDemand) Merge(other *MaterialDemand) {
	if other == nil {
		return
	}
	for _, req := range other.requirements {
		d.Add(*req)
	}
}

// Get returns the requirement for a fabric colour code, or nil
func (d *MaterialDemand) Get(code string) *MaterialRequirement {
	return d.requirements[code]
}

// Codes returns all fabric colour codes in deterministic order
func (d *MaterialDemand) Codes() []string {
	codes := make([]string, 0, len(d.requirements))
	for code := range d.requirements {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of distinct fabric colours
func (d *MaterialDemand) Len() int {
	return len(d.requirements)
}

// StockSnapshot maps fabric colour codes to current on-hand balances.
// Colours absent from the snapshot have zero stock.
type StockSnapshot map[string]float64

// Balance returns the on-hand balance for a fabric colour code
func (s StockSnapshot) Balance(code string) float64 {
	return s[code]
}

// ShortfallOrder is a recommended purchase for a fabric colour whose
// forecast requirement exceeds the on-hand balance
type ShortfallOrder struct {
	FabricColourCode string
	FabricName       string
	FabricUnit       string
	ColourName       string
	RequiredQty      float64
	InStock          float64
	ToOrder          float64
	CostPerUnit      decimal.Decimal
	EstimatedCost    decimal.Decimal
}
