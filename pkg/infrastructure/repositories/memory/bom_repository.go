package memory

import (
	"github.com/coherp/demandplan/pkg/domain/entities"
	"github.com/coherp/demandplan/pkg/domain/repositories"
)

// BomRepository provides in-memory BOM line storage
type BomRepository struct {
	lines []*entities.BomLine
}

// NewBomRepository creates an empty in-memory BOM repository
func NewBomRepository() *BomRepository {
	return &BomRepository{}
}

// Verify interface compliance
var _ repositories.BomRepository = (*BomRepository)(nil)

// LoadLines replaces the stored BOM lines
func (r *BomRepository) LoadLines(lines []*entities.BomLine) {
	r.lines = lines
}

// Lines returns the stored BOM lines
func (r *BomRepository) Lines() ([]*entities.BomLine, error) {
	return r.lines, nil
}
