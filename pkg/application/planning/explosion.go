package planning

import (
	"github.com/coherp/demandplan/pkg/domain/entities"
)

// Mode selects how the explosion engine derives material demand
type Mode int

const (
	// AllocationMode derives material demand from unit forecasts through
	// variation and size proportions
	AllocationMode Mode = iota
	// DirectMode forecasts fabric-colour consumption itself, bypassing
	// product allocation
	DirectMode
)

// String method for Mode enum
func (m Mode) String() string {
	switch m {
	case AllocationMode:
		return "allocation"
	case DirectMode:
		return "direct"
	default:
		return "unknown"
	}
}

// ExplosionEngine turns demand forecasts into fabric-colour requirements
// through the BOM. Contributions from every product, size and variation
// path merge additively, so final per-colour totals are independent of
// traversal order.
type ExplosionEngine struct {
	defaultWastage float64
	lines          map[bomKey][]*entities.BomLine
	colourInfo     map[string]*entities.BomLine
	bomProducts    map[string]bool
}

type bomKey struct {
	variationID string
	size        string
}

// NewExplosionEngine indexes BOM lines for explosion
func NewExplosionEngine(defaultWastagePercent float64, lines []*entities.BomLine) *ExplosionEngine {
	engine := &ExplosionEngine{
		defaultWastage: defaultWastagePercent,
		lines:          make(map[bomKey][]*entities.BomLine),
		colourInfo:     make(map[string]*entities.BomLine),
		bomProducts:    make(map[string]bool),
	}
	for _, line := range lines {
		key := bomKey{variationID: line.VariationID, size: line.Size}
		engine.lines[key] = append(engine.lines[key], line)
		if _, ok := engine.colourInfo[line.FabricColourCode]; !ok {
			engine.colourInfo[line.FabricColourCode] = line
		}
		if line.ProductName != "" {
			engine.bomProducts[line.ProductName] = true
		}
	}
	return engine
}

// HasProduct reports whether any BOM line belongs to the named product
func (e *ExplosionEngine) HasProduct(productName string) bool {
	return e.bomProducts[productName]
}

// Allocate distributes a product's total forecast units over its variation
// and size proportions and accumulates the fabric consumed at every
// (variation, size) node. Combinations absent from the BOM contribute
// nothing. The result is empty when either proportion table is empty.
func (e *ExplosionEngine) Allocate(totalUnits float64, variationShares, sizeShares entities.Proportion) *entities.MaterialDemand {
	demand := entities.NewMaterialDemand()
	if len(variationShares) == 0 || len(sizeShares) == 0 {
		return demand
	}

	for variationID, variationShare := range variationShares {
		variationUnits := totalUnits * variationShare
		for size, sizeShare := range sizeShares {
			nodeUnits := variationUnits * sizeShare
			for _, line := range e.lines[bomKey{variationID: variationID, size: size}] {
				wastage := line.EffectiveWastage(e.defaultWastage)
				demand.Add(entities.MaterialRequirement{
					FabricColourCode: line.FabricColourCode,
					FabricName:       line.FabricName,
					FabricUnit:       line.FabricUnit,
					ColourName:       line.ColourName,
					CostPerUnit:      line.CostPerUnit,
					RequiredQty:      nodeUnits * line.QtyPerUnit * (1 + wastage/100),
				})
			}
		}
	}
	return demand
}

// DirectRequirement builds a MaterialRequirement for a fabric colour whose
// consumption was forecast directly. The quantity already includes wastage
// (it was applied upstream when weekly consumption was derived through the
// BOM). Returns false when the colour has no BOM metadata at all.
func (e *ExplosionEngine) DirectRequirement(fabricColourCode string, qty float64) (entities.MaterialRequirement, bool) {
	info, ok := e.colourInfo[fabricColourCode]
	if !ok {
		return entities.MaterialRequirement{}, false
	}
	return entities.MaterialRequirement{
		FabricColourCode: fabricColourCode,
		FabricName:       info.FabricName,
		FabricUnit:       info.FabricUnit,
		ColourName:       info.ColourName,
		CostPerUnit:      info.CostPerUnit,
		RequiredQty:      qty,
	}, true
}
