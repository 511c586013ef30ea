package postgres

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/coherp/demandplan/pkg/domain/entities"
	"github.com/coherp/demandplan/pkg/domain/repositories"
)

// BomRepository reads bill-of-materials lines from the ERP database
type BomRepository struct {
	db *sql.DB
}

// NewBomRepository creates a postgres-backed BOM repository
func NewBomRepository(db *sql.DB) *BomRepository {
	return &BomRepository{db: db}
}

// Verify interface compliance
var _ repositories.BomRepository = (*BomRepository)(nil)

// Lines returns every BOM line with a positive quantity per unit, joined
// through variation fabric roles down to fabric colours
func (r *BomRepository) Lines() ([]*entities.BomLine, error) {
	rows, err := r.db.Query(`
		SELECT p.name AS product_name,
		       v.id::text AS variation_id,
		       s.size,
		       fc.code AS fc_code,
		       f.name AS fabric_name,
		       f.unit AS fabric_unit,
		       fc."colourName" AS fabric_colour,
		       fc."costPerUnit",
		       sbl.quantity AS qty_per_unit,
		       sbl."wastagePercent"
		FROM "SkuBomLine" sbl
		JOIN "Sku" s ON s.id = sbl."skuId"
		JOIN "Variation" v ON v.id = s."variationId"
		JOIN "VariationBomLine" vbl ON vbl."variationId" = v.id AND vbl."roleId" = sbl."roleId"
		JOIN "FabricColour" fc ON fc.id = vbl."fabricColourId"
		JOIN "Fabric" f ON f.id = fc."fabricId"
		JOIN "Product" p ON p.id = v."productId"
		WHERE sbl.quantity IS NOT NULL AND sbl.quantity > 0`)
	if err != nil {
		return nil, fmt.Errorf("querying bom lines: %w", err)
	}
	defer rows.Close()

	var lines []*entities.BomLine
	for rows.Next() {
		var (
			productName, variationID, size    string
			code, fabricName, unit, colour    string
			costPerUnit                       sql.NullFloat64
			qtyPerUnit                        float64
			wastagePercent                    sql.NullFloat64
		)
		if err := rows.Scan(&productName, &variationID, &size, &code, &fabricName, &unit, &colour, &costPerUnit, &qtyPerUnit, &wastagePercent); err != nil {
			return nil, fmt.Errorf("scanning bom line: %w", err)
		}

		line, err := entities.NewBomLine(
			productName, variationID, size, code, fabricName, unit, colour,
			decimal.NewFromFloat(costPerUnit.Float64),
			qtyPerUnit,
			wastagePercent.Float64,
		)
		if err != nil {
			return nil, fmt.Errorf("invalid bom line for %s/%s: %w", variationID, size, err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
