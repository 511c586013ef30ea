package memory

import (
	"github.com/coherp/demandplan/pkg/domain/entities"
	"github.com/coherp/demandplan/pkg/domain/repositories"
)

// StockRepository provides in-memory stock balance storage
type StockRepository struct {
	balances entities.StockSnapshot
}

// NewStockRepository creates an empty in-memory stock repository
func NewStockRepository() *StockRepository {
	return &StockRepository{balances: make(entities.StockSnapshot)}
}

// Verify interface compliance
var _ repositories.StockRepository = (*StockRepository)(nil)

// SetBalance records the balance for a fabric colour code
func (r *StockRepository) SetBalance(code string, balance float64) {
	r.balances[code] = balance
}

// Balances returns a copy of the stored snapshot
func (r *StockRepository) Balances() (entities.StockSnapshot, error) {
	snapshot := make(entities.StockSnapshot, len(r.balances))
	for code, balance := range r.balances {
		snapshot[code] = balance
	}
	return snapshot, nil
}
