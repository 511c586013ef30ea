package repositories

import "github.com/coherp/demandplan/pkg/domain/entities"

// StockRepository provides access to fabric stock balances
type StockRepository interface {
	// Balances returns the current on-hand balance per fabric colour code.
	// Colours with no recorded balance are absent from the snapshot.
	Balances() (entities.StockSnapshot, error)
}
