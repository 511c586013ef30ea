package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BomLine maps a (variation, size) configuration to one fabric colour it
// consumes, with the quantity per finished unit and the cutting wastage
// percentage. A non-positive WastagePercent means the line carries no
// explicit wastage and the configured default applies.
type BomLine struct {
	ProductName      string
	VariationID      string
	Size             string
	FabricColourCode string
	FabricName       string
	FabricUnit       string
	ColourName       string
	CostPerUnit      decimal.Decimal
	QtyPerUnit       float64
	WastagePercent   float64
}

// NewBomLine creates a validated BomLine
func NewBomLine(productName, variationID, size, fabricColourCode, fabricName, fabricUnit, colourName string, costPerUnit decimal.Decimal, qtyPerUnit, wastagePercent float64) (*BomLine, error) {
	if variationID == "" {
		return nil, fmt.Errorf("variation id cannot be empty")
	}
	if size == "" {
		return nil, fmt.Errorf("size cannot be empty")
	}
	if fabricColourCode == "" {
		return nil, fmt.Errorf("fabric colour code cannot be empty")
	}
	if qtyPerUnit <= 0 {
		return nil, fmt.Errorf("quantity per unit must be positive, got %v", qtyPerUnit)
	}

	return &BomLine{
		ProductName:      productName,
		VariationID:      variationID,
		Size:             size,
		FabricColourCode: fabricColourCode,
		FabricName:       fabricName,
		FabricUnit:       fabricUnit,
		ColourName:       colourName,
		CostPerUnit:      costPerUnit,
		QtyPerUnit:       qtyPerUnit,
		WastagePercent:   wastagePercent,
	}, nil
}

// EffectiveWastage returns the line's wastage percentage, substituting the
// given default when the line carries none
func (l *BomLine) EffectiveWastage(defaultPercent float64) float64 {
	if l.WastagePercent > 0 {
		return l.WastagePercent
	}
	return defaultPercent
}

// Proportion is a normalized share table over a demand-driving key
// (variation id or size). Shares over the observed keys sum to 1; keys
// absent from the source window are excluded rather than zero-filled.
type Proportion map[string]float64

// NormalizeProportions converts raw unit counts into shares of the total.
// Returns nil when there is nothing to normalize (no keys, or zero total).
func NormalizeProportions(unitCounts map[string]float64) Proportion {
	total := 0.0
	for _, units := range unitCounts {
		total += units
	}
	if total <= 0 {
		return nil
	}
	shares := make(Proportion, len(unitCounts))
	for key, units := range unitCounts {
		shares[key] = units / total
	}
	return shares
}
