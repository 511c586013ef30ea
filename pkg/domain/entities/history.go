package entities

import "time"

// WeeklyTotal is one week of overall order activity
type WeeklyTotal struct {
	Week            time.Time
	Orders          float64
	Revenue         float64
	UniqueCustomers int
	AvgOrderValue   float64
}

// ProductUnits is one week of unit sales for a single product
type ProductUnits struct {
	Week        time.Time
	ProductName string
	Units       float64
}

// MixEntry is a trailing-window unit count for one demand-driving key of a
// product: a size, or a variation (colour). Label carries the display name
// for variation keys and is empty for sizes.
type MixEntry struct {
	ProductName string
	Key         string
	Label       string
	Units       float64
}

// FabricConsumption is one week of BOM-derived consumption for a single
// fabric colour, already marked up for wastage upstream
type FabricConsumption struct {
	Week             time.Time
	FabricColourCode string
	Qty              float64
}

// ProductFabricUse attributes a short trailing window of fabric colour
// consumption to the product that drove it
type ProductFabricUse struct {
	ProductName      string
	FabricColourCode string
	Qty              float64
}
