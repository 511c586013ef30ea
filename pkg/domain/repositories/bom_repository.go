package repositories

import "github.com/coherp/demandplan/pkg/domain/entities"

// BomRepository provides access to bill-of-materials data
type BomRepository interface {
	// Lines returns every BOM line with a positive quantity per unit
	Lines() ([]*entities.BomLine, error)
}
