package postgres

import (
	"database/sql"
	"fmt"

	"github.com/coherp/demandplan/pkg/domain/entities"
	"github.com/coherp/demandplan/pkg/domain/repositories"
)

// HistoryRepository reads historical order activity from the ERP database
type HistoryRepository struct {
	db             *sql.DB
	defaultWastage float64
}

// NewHistoryRepository creates a postgres-backed history repository. The
// wastage default is applied in-query when deriving fabric consumption for
// BOM lines without an explicit wastage percentage.
func NewHistoryRepository(db *sql.DB, defaultWastagePercent float64) *HistoryRepository {
	return &HistoryRepository{db: db, defaultWastage: defaultWastagePercent}
}

// Verify interface compliance
var _ repositories.HistoryRepository = (*HistoryRepository)(nil)

// WeeklyTotals returns one row per calendar week with at least one order
func (r *HistoryRepository) WeeklyTotals() ([]*entities.WeeklyTotal, error) {
	rows, err := r.db.Query(`
		SELECT date_trunc('week', "orderDate")::date AS week,
		       COUNT(*) AS orders,
		       COALESCE(SUM("totalAmount"), 0) AS revenue,
		       COUNT(DISTINCT "customerId") AS unique_customers,
		       COALESCE(AVG("totalAmount"), 0) AS aov
		FROM "Order"
		WHERE "orderDate" IS NOT NULL
		GROUP BY 1
		ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("querying weekly totals: %w", err)
	}
	defer rows.Close()

	var totals []*entities.WeeklyTotal
	for rows.Next() {
		total := &entities.WeeklyTotal{}
		if err := rows.Scan(&total.Week, &total.Orders, &total.Revenue, &total.UniqueCustomers, &total.AvgOrderValue); err != nil {
			return nil, fmt.Errorf("scanning weekly total: %w", err)
		}
		totals = append(totals, total)
	}
	return totals, rows.Err()
}

// WeeklyProductUnits returns weekly unit sales per product
func (r *HistoryRepository) WeeklyProductUnits() ([]*entities.ProductUnits, error) {
	rows, err := r.db.Query(`
		SELECT date_trunc('week', o."orderDate")::date AS week,
		       p.name AS product_name,
		       SUM(ol.qty) AS units
		FROM "OrderLine" ol
		JOIN "Order" o ON o.id = ol."orderId"
		JOIN "Sku" s ON s.id = ol."skuId"
		JOIN "Variation" v ON v.id = s."variationId"
		JOIN "Product" p ON p.id = v."productId"
		WHERE o."orderDate" IS NOT NULL
		GROUP BY 1, 2`)
	if err != nil {
		return nil, fmt.Errorf("querying weekly product units: %w", err)
	}
	defer rows.Close()

	var units []*entities.ProductUnits
	for rows.Next() {
		row := &entities.ProductUnits{}
		if err := rows.Scan(&row.Week, &row.ProductName, &row.Units); err != nil {
			return nil, fmt.Errorf("scanning product units: %w", err)
		}
		units = append(units, row)
	}
	return units, rows.Err()
}

// SizeMix returns trailing-six-month unit counts per (product, size)
func (r *HistoryRepository) SizeMix() ([]*entities.MixEntry, error) {
	rows, err := r.db.Query(`
		SELECT p.name AS product_name, s.size, SUM(ol.qty) AS units
		FROM "OrderLine" ol
		JOIN "Order" o ON o.id = ol."orderId"
		JOIN "Sku" s ON s.id = ol."skuId"
		JOIN "Variation" v ON v.id = s."variationId"
		JOIN "Product" p ON p.id = v."productId"
		WHERE o."orderDate" >= NOW() - INTERVAL '6 months'
		GROUP BY 1, 2`)
	if err != nil {
		return nil, fmt.Errorf("querying size mix: %w", err)
	}
	defer rows.Close()

	var entries []*entities.MixEntry
	for rows.Next() {
		entry := &entities.MixEntry{}
		if err := rows.Scan(&entry.ProductName, &entry.Key, &entry.Units); err != nil {
			return nil, fmt.Errorf("scanning size mix: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// VariationMix returns trailing-six-month unit counts per (product,
// variation) with the variation's colour name as label
func (r *HistoryRepository) VariationMix() ([]*entities.MixEntry, error) {
	rows, err := r.db.Query(`
		SELECT p.name AS product_name,
		       v.id::text AS variation_id,
		       v."colorName" AS colour,
		       SUM(ol.qty) AS units
		FROM "OrderLine" ol
		JOIN "Order" o ON o.id = ol."orderId"
		JOIN "Sku" s ON s.id = ol."skuId"
		JOIN "Variation" v ON v.id = s."variationId"
		JOIN "Product" p ON p.id = v."productId"
		WHERE o."orderDate" >= NOW() - INTERVAL '6 months'
		GROUP BY 1, 2, 3`)
	if err != nil {
		return nil, fmt.Errorf("querying variation mix: %w", err)
	}
	defer rows.Close()

	var entries []*entities.MixEntry
	for rows.Next() {
		entry := &entities.MixEntry{}
		if err := rows.Scan(&entry.ProductName, &entry.Key, &entry.Label, &entry.Units); err != nil {
			return nil, fmt.Errorf("scanning variation mix: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// WeeklyFabricConsumption derives weekly fabric colour consumption through
// the BOM, with wastage applied in-query
func (r *HistoryRepository) WeeklyFabricConsumption() ([]*entities.FabricConsumption, error) {
	rows, err := r.db.Query(`
		SELECT date_trunc('week', o."orderDate")::date AS week,
		       fc.code AS fc_code,
		       SUM(ol.qty * sbl.quantity *
		           (1 + COALESCE(NULLIF(sbl."wastagePercent", 0), $1) / 100.0)) AS qty
		FROM "OrderLine" ol
		JOIN "Order" o ON o.id = ol."orderId"
		JOIN "Sku" s ON s.id = ol."skuId"
		JOIN "Variation" v ON v.id = s."variationId"
		JOIN "SkuBomLine" sbl ON sbl."skuId" = s.id
		JOIN "VariationBomLine" vbl ON vbl."variationId" = v.id AND vbl."roleId" = sbl."roleId"
		JOIN "FabricColour" fc ON fc.id = vbl."fabricColourId"
		WHERE o."orderDate" IS NOT NULL
		  AND sbl.quantity IS NOT NULL AND sbl.quantity > 0
		GROUP BY 1, 2`, r.defaultWastage)
	if err != nil {
		return nil, fmt.Errorf("querying fabric consumption: %w", err)
	}
	defer rows.Close()

	var consumption []*entities.FabricConsumption
	for rows.Next() {
		row := &entities.FabricConsumption{}
		if err := rows.Scan(&row.Week, &row.FabricColourCode, &row.Qty); err != nil {
			return nil, fmt.Errorf("scanning fabric consumption: %w", err)
		}
		consumption = append(consumption, row)
	}
	return consumption, rows.Err()
}

// ProductFabricConsumption attributes trailing-eight-week fabric colour
// consumption to products for driver ranking
func (r *HistoryRepository) ProductFabricConsumption() ([]*entities.ProductFabricUse, error) {
	rows, err := r.db.Query(`
		SELECT p.name AS product_name,
		       fc.code AS fc_code,
		       SUM(ol.qty * sbl.quantity *
		           (1 + COALESCE(NULLIF(sbl."wastagePercent", 0), $1) / 100.0)) AS qty
		FROM "OrderLine" ol
		JOIN "Order" o ON o.id = ol."orderId"
		JOIN "Sku" s ON s.id = ol."skuId"
		JOIN "Variation" v ON v.id = s."variationId"
		JOIN "Product" p ON p.id = v."productId"
		JOIN "SkuBomLine" sbl ON sbl."skuId" = s.id
		JOIN "VariationBomLine" vbl ON vbl."variationId" = v.id AND vbl."roleId" = sbl."roleId"
		JOIN "FabricColour" fc ON fc.id = vbl."fabricColourId"
		WHERE o."orderDate" >= NOW() - INTERVAL '8 weeks'
		  AND sbl.quantity IS NOT NULL AND sbl.quantity > 0
		GROUP BY 1, 2`, r.defaultWastage)
	if err != nil {
		return nil, fmt.Errorf("querying product fabric consumption: %w", err)
	}
	defer rows.Close()

	var uses []*entities.ProductFabricUse
	for rows.Next() {
		use := &entities.ProductFabricUse{}
		if err := rows.Scan(&use.ProductName, &use.FabricColourCode, &use.Qty); err != nil {
			return nil, fmt.Errorf("scanning product fabric consumption: %w", err)
		}
		uses = append(uses, use)
	}
	return uses, rows.Err()
}
