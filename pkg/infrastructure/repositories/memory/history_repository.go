package memory

import (
	"github.com/coherp/demandplan/pkg/domain/entities"
	"github.com/coherp/demandplan/pkg/domain/repositories"
)

// HistoryRepository provides in-memory order history storage
type HistoryRepository struct {
	weeklyTotals      []*entities.WeeklyTotal
	productUnits      []*entities.ProductUnits
	sizeMix           []*entities.MixEntry
	variationMix      []*entities.MixEntry
	fabricConsumption []*entities.FabricConsumption
	productFabricUse  []*entities.ProductFabricUse
}

// NewHistoryRepository creates an empty in-memory history repository
func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

// Verify interface compliance
var _ repositories.HistoryRepository = (*HistoryRepository)(nil)

// LoadWeeklyTotals replaces the stored weekly totals
func (r *HistoryRepository) LoadWeeklyTotals(totals []*entities.WeeklyTotal) {
	r.weeklyTotals = totals
}

// LoadProductUnits replaces the stored weekly product units
func (r *HistoryRepository) LoadProductUnits(units []*entities.ProductUnits) {
	r.productUnits = units
}

// LoadSizeMix replaces the stored size mix entries
func (r *HistoryRepository) LoadSizeMix(entries []*entities.MixEntry) {
	r.sizeMix = entries
}

// LoadVariationMix replaces the stored variation mix entries
func (r *HistoryRepository) LoadVariationMix(entries []*entities.MixEntry) {
	r.variationMix = entries
}

// LoadFabricConsumption replaces the stored weekly fabric consumption
func (r *HistoryRepository) LoadFabricConsumption(rows []*entities.FabricConsumption) {
	r.fabricConsumption = rows
}

// LoadProductFabricUse replaces the stored product fabric attribution
func (r *HistoryRepository) LoadProductFabricUse(rows []*entities.ProductFabricUse) {
	r.productFabricUse = rows
}

// WeeklyTotals returns the stored weekly totals
func (r *HistoryRepository) WeeklyTotals() ([]*entities.WeeklyTotal, error) {
	return r.weeklyTotals, nil
}

// WeeklyProductUnits returns the stored weekly product units
func (r *HistoryRepository) WeeklyProductUnits() ([]*entities.ProductUnits, error) {
	return r.productUnits, nil
}

// SizeMix returns the stored size mix entries
func (r *HistoryRepository) SizeMix() ([]*entities.MixEntry, error) {
	return r.sizeMix, nil
}

// VariationMix returns the stored variation mix entries
func (r *HistoryRepository) VariationMix() ([]*entities.MixEntry, error) {
	return r.variationMix, nil
}

// WeeklyFabricConsumption returns the stored weekly fabric consumption
func (r *HistoryRepository) WeeklyFabricConsumption() ([]*entities.FabricConsumption, error) {
	return r.fabricConsumption, nil
}

// ProductFabricConsumption returns the stored product fabric attribution
func (r *HistoryRepository) ProductFabricConsumption() ([]*entities.ProductFabricUse, error) {
	return r.productFabricUse, nil
}
