package postgres

import (
	"database/sql"
	"fmt"

	"github.com/coherp/demandplan/pkg/domain/entities"
	"github.com/coherp/demandplan/pkg/domain/repositories"
)

// StockRepository reads fabric stock balances from the ERP database
type StockRepository struct {
	db *sql.DB
}

// NewStockRepository creates a postgres-backed stock repository
func NewStockRepository(db *sql.DB) *StockRepository {
	return &StockRepository{db: db}
}

// Verify interface compliance
var _ repositories.StockRepository = (*StockRepository)(nil)

// Balances returns the current balance per fabric colour code. Colours
// with a null balance are omitted and treated as zero stock downstream.
func (r *StockRepository) Balances() (entities.StockSnapshot, error) {
	rows, err := r.db.Query(`
		SELECT fc.code, fc."currentBalance"
		FROM "FabricColour" fc
		WHERE fc."currentBalance" IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("querying stock balances: %w", err)
	}
	defer rows.Close()

	snapshot := make(entities.StockSnapshot)
	for rows.Next() {
		var code string
		var balance float64
		if err := rows.Scan(&code, &balance); err != nil {
			return nil, fmt.Errorf("scanning stock balance: %w", err)
		}
		snapshot[code] += balance
	}
	return snapshot, rows.Err()
}
