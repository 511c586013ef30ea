package repositories

import "github.com/coherp/demandplan/pkg/domain/entities"

// HistoryRepository provides access to historical order activity
type HistoryRepository interface {
	// WeeklyTotals returns one row per calendar week with at least one order
	WeeklyTotals() ([]*entities.WeeklyTotal, error)

	// WeeklyProductUnits returns weekly unit sales per product
	WeeklyProductUnits() ([]*entities.ProductUnits, error)

	// SizeMix returns trailing-window unit counts per (product, size)
	SizeMix() ([]*entities.MixEntry, error)

	// VariationMix returns trailing-window unit counts per (product, variation)
	VariationMix() ([]*entities.MixEntry, error)

	// WeeklyFabricConsumption returns weekly BOM-derived consumption per
	// fabric colour, wastage included
	WeeklyFabricConsumption() ([]*entities.FabricConsumption, error)

	// ProductFabricConsumption returns short trailing-window consumption per
	// (product, fabric colour) for driver attribution
	ProductFabricConsumption() ([]*entities.ProductFabricUse, error)
}
