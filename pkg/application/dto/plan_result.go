package dto

import "time"

// PlanResult is the complete output of one planning run, consumed verbatim
// by the presentation layer
type PlanResult struct {
	RunID          string    `json:"runId"`
	GeneratedAt    time.Time `json:"generatedAt"`
	Mode           string    `json:"mode"`
	ForecastWeeks  int       `json:"forecastWeeks"`
	WastagePercent float64   `json:"wastagePercent"`

	Overall         OverallStats    `json:"overall"`
	WeeklyHistory   []WeekHistory   `json:"weeklyHistory"`
	OverallForecast []ForecastPoint `json:"overallForecast"`
	RevenueForecast []ForecastPoint `json:"revenueForecast"`

	Products           []ProductForecast `json:"products"`
	FabricRequirements []FabricGroup     `json:"fabricRequirements"`
	PurchaseOrders     []PurchaseOrder   `json:"purchaseOrders"`
	Summary            Summary           `json:"summary"`
}

// OverallStats summarizes overall order activity
type OverallStats struct {
	TotalOrders      int          `json:"totalOrders"`
	WeeksOfData      int          `json:"weeksOfData"`
	DateRange        DateRange    `json:"dateRange"`
	Recent12wAvg     float64      `json:"recent12wAvg"`
	Prev12wAvg       float64      `json:"prev12wAvg"`
	RecentAov        float64      `json:"recentAov"`
	PrevAov          float64      `json:"prevAov"`
	YoySamePeriodAvg *float64     `json:"yoySameperiodAvg,omitempty"`
	Seasonality      []MonthIndex `json:"seasonality"`
}

// DateRange bounds the history window
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// MonthIndex is a monthly seasonality index: month average over overall
// average, times 100
type MonthIndex struct {
	Month string  `json:"month"`
	Index float64 `json:"index"`
}

// WeekHistory is one week of observed activity for charting
type WeekHistory struct {
	Week    string  `json:"week"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
	Aov     float64 `json:"aov"`
}

// ForecastPoint is one forecast step in presentation form
type ForecastPoint struct {
	Week     string  `json:"week"`
	Forecast float64 `json:"forecast"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
}

// ProductForecast is one product's forecast with its size and colour
// breakdowns
type ProductForecast struct {
	Name            string          `json:"name"`
	Last12moUnits   int             `json:"last12moUnits"`
	Recent8wAvg     float64         `json:"recent8wAvg"`
	ForecastTotal   float64         `json:"forecastTotal"`
	Method          string          `json:"method"`
	Forecasts       []ForecastPoint `json:"forecasts"`
	SizeBreakdown   []ShareLine     `json:"sizeBreakdown"`
	ColourBreakdown []ShareLine     `json:"colourBreakdown"`
	History         []ProductWeek   `json:"history"`
}

// ShareLine is one entry of a size or colour breakdown
type ShareLine struct {
	Key   string  `json:"key"`
	Pct   float64 `json:"pct"`
	Units float64 `json:"units"`
}

// ProductWeek is one week of a product's unit history
type ProductWeek struct {
	Week  string  `json:"week"`
	Units float64 `json:"units"`
}

// FabricGroup aggregates colour requirements under one fabric type
type FabricGroup struct {
	Name     string             `json:"name"`
	Unit     string             `json:"unit"`
	TotalQty float64            `json:"totalQty"`
	Colours  []FabricColourLine `json:"colours"`
}

// FabricColourLine is the requirement line for one fabric colour
type FabricColourLine struct {
	Code        string   `json:"code"`
	Colour      string   `json:"colour"`
	Required    float64  `json:"required"`
	InStock     float64  `json:"inStock"`
	Gap         float64  `json:"gap"`
	Method      string   `json:"method,omitempty"`
	CostPerUnit float64  `json:"costPerUnit"`
	OrderCost   float64  `json:"orderCost"`
	Drivers     []Driver `json:"drivers,omitempty"`
}

// Driver attributes a share of a colour's recent consumption to a product
type Driver struct {
	Product  string  `json:"product"`
	SharePct float64 `json:"sharePct"`
}

// PurchaseOrder is one ranked shortfall recommendation
type PurchaseOrder struct {
	Code        string  `json:"code"`
	Fabric      string  `json:"fabric"`
	Colour      string  `json:"colour"`
	Unit        string  `json:"unit"`
	Required    float64 `json:"required"`
	InStock     float64 `json:"inStock"`
	ToOrder     float64 `json:"toOrder"`
	CostPerUnit float64 `json:"costPerUnit"`
	EstCost     float64 `json:"estCost"`
}

// Summary carries the run-level counters
type Summary struct {
	TotalForecastUnits    float64        `json:"totalForecastUnits"`
	ProductsForecasted    int            `json:"productsForecasted"`
	FabricTypesNeeded     int            `json:"fabricTypesNeeded"`
	FabricColoursNeeded   int            `json:"fabricColoursNeeded"`
	ShortfallCount        int            `json:"shortfallCount"`
	CoveredByStock        int            `json:"coveredByStock"`
	EstimatedPurchaseCost float64        `json:"estimatedPurchaseCost"`
	MethodCounts          map[string]int `json:"methodCounts"`
}
