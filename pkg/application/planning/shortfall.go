package planning

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/coherp/demandplan/pkg/domain/entities"
)

// ShortfallReport reconciles material demand against the stock snapshot
type ShortfallReport struct {
	// Orders lists colours whose requirement exceeds stock, sorted
	// descending by required quantity (stable over encounter order)
	Orders []entities.ShortfallOrder
	// CoveredByStock counts colours whose balance meets the requirement
	CoveredByStock int
	// TotalEstimatedCost sums the estimated purchase cost of all orders
	TotalEstimatedCost decimal.Decimal
}

// PlanShortfalls computes the purchase recommendation for every material
// requirement: gap = required - in stock, order = max(0, gap), estimated
// cost = order quantity times cost per unit (zero when cost is unknown).
func PlanShortfalls(demand *entities.MaterialDemand, stock entities.StockSnapshot) *ShortfallReport {
	report := &ShortfallReport{TotalEstimatedCost: decimal.Zero}

	for _, code := range demand.Codes() {
		requirement := demand.Get(code)
		inStock := stock.Balance(code)
		gap := requirement.RequiredQty - inStock
		if gap <= 0 {
			report.CoveredByStock++
			continue
		}

		estimated := decimal.Zero
		if requirement.CostPerUnit.IsPositive() {
			estimated = requirement.CostPerUnit.Mul(decimal.NewFromFloat(gap)).Round(0)
		}

		report.Orders = append(report.Orders, entities.ShortfallOrder{
			FabricColourCode: code,
			FabricName:       requirement.FabricName,
			FabricUnit:       requirement.FabricUnit,
			ColourName:       requirement.ColourName,
			RequiredQty:      requirement.RequiredQty,
			InStock:          inStock,
			ToOrder:          gap,
			CostPerUnit:      requirement.CostPerUnit,
			EstimatedCost:    estimated,
		})
		report.TotalEstimatedCost = report.TotalEstimatedCost.Add(estimated)
	}

	sort.SliceStable(report.Orders, func(i, j int) bool {
		return report.Orders[i].RequiredQty > report.Orders[j].RequiredQty
	})

	return report
}
