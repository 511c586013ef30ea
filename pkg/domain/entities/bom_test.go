package entities

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBomLine_Validation(t *testing.T) {
	validLine, err := NewBomLine("Tee", "VAR1", "M", "FC-RED", "Linen", "m", "Red", decimal.NewFromInt(12), 1.5, 5)
	if err != nil {
		t.Fatalf("Expected valid BOM line creation to succeed: %v", err)
	}
	if validLine.FabricColourCode != "FC-RED" {
		t.Errorf("Expected fabric colour code FC-RED, got %s", validLine.FabricColourCode)
	}

	testCases := []struct {
		name        string
		variationID string
		size        string
		colourCode  string
		qtyPerUnit  float64
		expectError string
	}{
		{"empty variation", "", "M", "FC-RED", 1.5, "variation id cannot be empty"},
		{"empty size", "VAR1", "", "FC-RED", 1.5, "size cannot be empty"},
		{"empty colour code", "VAR1", "M", "", 1.5, "fabric colour code cannot be empty"},
		{"zero quantity", "VAR1", "M", "FC-RED", 0, "quantity per unit must be positive, got 0"},
		{"negative quantity", "VAR1", "M", "FC-RED", -1, "quantity per unit must be positive, got -1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBomLine("Tee", tc.variationID, tc.size, tc.colourCode, "Linen", "m", "Red", decimal.Zero, tc.qtyPerUnit, 0)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error %q, got %q", tc.expectError, err.Error())
			}
		})
	}
}

func TestBomLine_EffectiveWastage(t *testing.T) {
	explicit := &BomLine{WastagePercent: 8}
	if got := explicit.EffectiveWastage(5); got != 8 {
		t.Errorf("Expected explicit wastage 8, got %v", got)
	}

	missing := &BomLine{WastagePercent: 0}
	if got := missing.EffectiveWastage(5); got != 5 {
		t.Errorf("Expected default wastage 5, got %v", got)
	}
}

func TestNormalizeProportions(t *testing.T) {
	shares := NormalizeProportions(map[string]float64{"M": 30, "L": 50, "XL": 20})
	if shares == nil {
		t.Fatal("Expected non-nil shares for positive counts")
	}

	total := 0.0
	for _, s := range shares {
		total += s
	}
	if math.Abs(total-1) > 1e-6 {
		t.Errorf("Expected shares to sum to 1, got %v", total)
	}
	if math.Abs(shares["L"]-0.5) > 1e-9 {
		t.Errorf("Expected L share 0.5, got %v", shares["L"])
	}

	if NormalizeProportions(nil) != nil {
		t.Error("Expected nil shares for empty counts")
	}
	if NormalizeProportions(map[string]float64{"M": 0}) != nil {
		t.Error("Expected nil shares for zero total")
	}
}
