package planning

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/coherp/demandplan/pkg/domain/entities"
	"github.com/coherp/demandplan/pkg/infrastructure/repositories/memory"
)

// planWeek returns the start of the week ending offset*7 days before now,
// so trailing-window cutoffs relative to the current date behave as in
// production
func planWeek(offset int) time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -7*offset)
}

func loadAllocationFixture(t *testing.T) (*memory.HistoryRepository, *memory.BomRepository, *memory.StockRepository) {
	t.Helper()

	history := memory.NewHistoryRepository()

	// 90 weeks of steady activity: 25 orders and 2500 revenue per week
	var totals []*entities.WeeklyTotal
	for i := 89; i >= 0; i-- {
		totals = append(totals, &entities.WeeklyTotal{
			Week:          planWeek(i),
			Orders:        25,
			Revenue:       2500,
			AvgOrderValue: 100,
		})
	}
	history.LoadWeeklyTotals(totals)

	var units []*entities.ProductUnits
	for i := 89; i >= 0; i-- {
		units = append(units, &entities.ProductUnits{
			Week:        planWeek(i),
			ProductName: "Classic Tee",
			Units:       10,
		})
	}
	history.LoadProductUnits(units)

	history.LoadSizeMix([]*entities.MixEntry{
		{ProductName: "Classic Tee", Key: "M", Units: 50},
		{ProductName: "Classic Tee", Key: "L", Units: 50},
	})
	history.LoadVariationMix([]*entities.MixEntry{
		{ProductName: "Classic Tee", Key: "VAR1", Label: "Red", Units: 60},
		{ProductName: "Classic Tee", Key: "VAR2", Label: "Blue", Units: 40},
	})

	bom := memory.NewBomRepository()
	bom.LoadLines(testBomLines(t))

	stock := memory.NewStockRepository()
	stock.SetBalance("FC-RED", 100)

	return history, bom, stock
}

func newTestPipeline(history *memory.HistoryRepository, bom *memory.BomRepository, stock *memory.StockRepository) *Pipeline {
	config := DefaultConfig()
	config.Workers = 2
	return NewPipeline(config, history, bom, stock, zerolog.Nop())
}

func TestPipeline_AllocationMode(t *testing.T) {
	pipeline := newTestPipeline(loadAllocationFixture(t))

	result, err := pipeline.Run(context.Background(), AllocationMode)
	if err != nil {
		t.Fatalf("Expected allocation run to succeed: %v", err)
	}

	if result.RunID == "" {
		t.Error("Expected a run id")
	}
	if result.Mode != "allocation" {
		t.Errorf("Expected mode allocation, got %s", result.Mode)
	}

	// Overall statistics over the trimmed 88 weeks
	if result.Overall.WeeksOfData != 88 {
		t.Errorf("Expected 88 weeks after trimming, got %d", result.Overall.WeeksOfData)
	}
	if result.Overall.TotalOrders != 88*25 {
		t.Errorf("Expected %d total orders, got %d", 88*25, result.Overall.TotalOrders)
	}
	if result.Overall.Recent12wAvg != 25 {
		t.Errorf("Expected recent 12w average 25, got %v", result.Overall.Recent12wAvg)
	}
	if result.Overall.RecentAov != 100 {
		t.Errorf("Expected recent AOV 100, got %v", result.Overall.RecentAov)
	}
	if result.Overall.YoySamePeriodAvg == nil || *result.Overall.YoySamePeriodAvg != 25 {
		t.Error("Expected year-over-year average 25 with over 56 weeks of data")
	}
	if len(result.Overall.Seasonality) != 12 {
		t.Errorf("Expected 12 seasonality indices, got %d", len(result.Overall.Seasonality))
	}
	if len(result.WeeklyHistory) != 52 {
		t.Errorf("Expected 52 weeks of chart history, got %d", len(result.WeeklyHistory))
	}

	// Constant 25-order history forecasts 25 per week, 2500 revenue
	if len(result.OverallForecast) != 8 {
		t.Fatalf("Expected 8 overall forecast points, got %d", len(result.OverallForecast))
	}
	for i, p := range result.OverallForecast {
		if math.Abs(p.Forecast-25) > 0.1 {
			t.Errorf("Overall step %d: expected 25 orders, got %v", i, p.Forecast)
		}
		if math.Abs(result.RevenueForecast[i].Forecast-2500) > 10 {
			t.Errorf("Revenue step %d: expected 2500, got %v", i, result.RevenueForecast[i].Forecast)
		}
	}

	if len(result.Products) != 1 {
		t.Fatalf("Expected 1 forecast product, got %d", len(result.Products))
	}
	product := result.Products[0]
	if product.Name != "Classic Tee" {
		t.Errorf("Expected Classic Tee, got %s", product.Name)
	}
	if product.Method != "ensemble" {
		t.Errorf("Expected ensemble method, got %s", product.Method)
	}
	if math.Abs(product.ForecastTotal-80) > 1 {
		t.Errorf("Expected forecast total 80, got %v", product.ForecastTotal)
	}
	if len(product.SizeBreakdown) != 2 || product.SizeBreakdown[0].Key != "M" {
		t.Errorf("Expected size breakdown in display order starting with M, got %+v", product.SizeBreakdown)
	}
	if len(product.ColourBreakdown) != 2 || product.ColourBreakdown[0].Key != "Red" {
		t.Errorf("Expected colour breakdown led by Red, got %+v", product.ColourBreakdown)
	}
	if len(product.History) != 26 {
		t.Errorf("Expected 26 weeks of product history, got %d", len(product.History))
	}

	// 80 units explode to 83.16 FC-RED, 55.44 FC-BLUE and 5.28 FC-TRIM
	if len(result.FabricRequirements) != 1 {
		t.Fatalf("Expected a single fabric group, got %d", len(result.FabricRequirements))
	}
	group := result.FabricRequirements[0]
	if group.Name != "Linen" {
		t.Errorf("Expected fabric Linen, got %s", group.Name)
	}
	required := make(map[string]float64)
	for _, colour := range group.Colours {
		required[colour.Code] = colour.Required
	}
	if math.Abs(required["FC-RED"]-83.2) > 1.5 {
		t.Errorf("Expected FC-RED requirement near 83.2, got %v", required["FC-RED"])
	}
	if math.Abs(required["FC-BLUE"]-55.4) > 1.5 {
		t.Errorf("Expected FC-BLUE requirement near 55.4, got %v", required["FC-BLUE"])
	}

	// FC-RED is covered by stock; FC-BLUE and FC-TRIM need orders
	if result.Summary.CoveredByStock != 1 {
		t.Errorf("Expected 1 colour covered by stock, got %d", result.Summary.CoveredByStock)
	}
	if result.Summary.ShortfallCount != 2 {
		t.Errorf("Expected 2 shortfalls, got %d", result.Summary.ShortfallCount)
	}
	if len(result.PurchaseOrders) != 2 || result.PurchaseOrders[0].Code != "FC-BLUE" {
		t.Errorf("Expected FC-BLUE as the largest purchase order, got %+v", result.PurchaseOrders)
	}
	if result.Summary.FabricColoursNeeded != 3 {
		t.Errorf("Expected 3 colours needed, got %d", result.Summary.FabricColoursNeeded)
	}
	if result.Summary.MethodCounts["ensemble"] != 1 {
		t.Errorf("Expected one ensemble forecast in method counts, got %v", result.Summary.MethodCounts)
	}
	if math.Abs(result.Summary.TotalForecastUnits-80) > 1 {
		t.Errorf("Expected 80 total forecast units, got %v", result.Summary.TotalForecastUnits)
	}
}

func TestPipeline_AllocationIsRepeatable(t *testing.T) {
	pipeline := newTestPipeline(loadAllocationFixture(t))

	first, err := pipeline.Run(context.Background(), AllocationMode)
	if err != nil {
		t.Fatalf("Expected first run to succeed: %v", err)
	}
	second, err := pipeline.Run(context.Background(), AllocationMode)
	if err != nil {
		t.Fatalf("Expected second run to succeed: %v", err)
	}

	if first.Summary.TotalForecastUnits != second.Summary.TotalForecastUnits {
		t.Errorf("Expected identical totals across runs, got %v vs %v",
			first.Summary.TotalForecastUnits, second.Summary.TotalForecastUnits)
	}
	if len(first.PurchaseOrders) != len(second.PurchaseOrders) {
		t.Fatalf("Expected identical order counts, got %d vs %d",
			len(first.PurchaseOrders), len(second.PurchaseOrders))
	}
	for i := range first.PurchaseOrders {
		if first.PurchaseOrders[i] != second.PurchaseOrders[i] {
			t.Errorf("Order %d differs across runs: %+v vs %+v",
				i, first.PurchaseOrders[i], second.PurchaseOrders[i])
		}
	}
}

func TestPipeline_DirectMode(t *testing.T) {
	history := memory.NewHistoryRepository()

	var totals []*entities.WeeklyTotal
	for i := 49; i >= 0; i-- {
		totals = append(totals, &entities.WeeklyTotal{
			Week:          planWeek(i),
			Orders:        20,
			Revenue:       2000,
			AvgOrderValue: 100,
		})
	}
	history.LoadWeeklyTotals(totals)

	// FC-RED has 40 weeks of steady consumption, FC-TRIM only 10
	var consumption []*entities.FabricConsumption
	for i := 39; i >= 0; i-- {
		consumption = append(consumption, &entities.FabricConsumption{
			Week:             planWeek(i),
			FabricColourCode: "FC-RED",
			Qty:              12,
		})
	}
	for i := 9; i >= 0; i-- {
		consumption = append(consumption, &entities.FabricConsumption{
			Week:             planWeek(i),
			FabricColourCode: "FC-TRIM",
			Qty:              2,
		})
	}
	// A colour without BOM metadata is silently dropped
	consumption = append(consumption, &entities.FabricConsumption{
		Week:             planWeek(0),
		FabricColourCode: "FC-UNKNOWN",
		Qty:              5,
	})
	history.LoadFabricConsumption(consumption)

	history.LoadProductFabricUse([]*entities.ProductFabricUse{
		{ProductName: "Classic Tee", FabricColourCode: "FC-RED", Qty: 30},
		{ProductName: "Summer Dress", FabricColourCode: "FC-RED", Qty: 10},
	})

	bom := memory.NewBomRepository()
	bom.LoadLines(testBomLines(t))
	stock := memory.NewStockRepository()

	pipeline := newTestPipeline(history, bom, stock)
	result, err := pipeline.Run(context.Background(), DirectMode)
	if err != nil {
		t.Fatalf("Expected direct run to succeed: %v", err)
	}

	if result.Mode != "direct" {
		t.Errorf("Expected mode direct, got %s", result.Mode)
	}
	if len(result.Products) != 0 {
		t.Errorf("Expected no product entries in direct mode, got %d", len(result.Products))
	}

	if len(result.FabricRequirements) != 1 {
		t.Fatalf("Expected a single fabric group, got %d", len(result.FabricRequirements))
	}
	colours := make(map[string]*struct {
		required float64
		method   string
		drivers  int
	})
	for _, colour := range result.FabricRequirements[0].Colours {
		colours[colour.Code] = &struct {
			required float64
			method   string
			drivers  int
		}{colour.Required, colour.Method, len(colour.Drivers)}
	}

	red, ok := colours["FC-RED"]
	if !ok {
		t.Fatal("Expected FC-RED requirement")
	}
	if math.Abs(red.required-96) > 1 {
		t.Errorf("Expected FC-RED requirement near 96, got %v", red.required)
	}
	if red.method != "seasonal" {
		t.Errorf("Expected seasonal method for FC-RED, got %s", red.method)
	}
	if red.drivers != 2 {
		t.Errorf("Expected 2 drivers for FC-RED, got %d", red.drivers)
	}

	trim, ok := colours["FC-TRIM"]
	if !ok {
		t.Fatal("Expected FC-TRIM requirement")
	}
	if math.Abs(trim.required-16) > 1e-9 {
		t.Errorf("Expected FC-TRIM requirement 16, got %v", trim.required)
	}
	if trim.method != "average-fallback" {
		t.Errorf("Expected average-fallback method for FC-TRIM, got %s", trim.method)
	}

	if _, ok := colours["FC-UNKNOWN"]; ok {
		t.Error("Expected the unknown colour to be dropped")
	}

	if result.Summary.FabricColoursNeeded != 2 {
		t.Errorf("Expected 2 colours needed, got %d", result.Summary.FabricColoursNeeded)
	}
	// No stock loaded, so every colour is a shortfall
	if result.Summary.ShortfallCount != 2 {
		t.Errorf("Expected 2 shortfalls, got %d", result.Summary.ShortfallCount)
	}
}

func TestPipeline_UpstreamFaultsAreFatal(t *testing.T) {
	history := memory.NewHistoryRepository()
	bom := memory.NewBomRepository()
	stock := memory.NewStockRepository()
	pipeline := newTestPipeline(history, bom, stock)

	// Empty history aborts the run before any output
	_, err := pipeline.Run(context.Background(), AllocationMode)
	if err == nil {
		t.Fatal("Expected a run without history to fail")
	}
	if err.Error() != "no order history available" {
		t.Errorf("Unexpected error: %v", err)
	}

	history.LoadWeeklyTotals([]*entities.WeeklyTotal{{Week: planWeek(0), Orders: 10}})
	failing := &failingHistory{HistoryRepository: history}
	pipeline = NewPipeline(DefaultConfig(), failing, bom, stock, zerolog.Nop())
	_, err = pipeline.Run(context.Background(), AllocationMode)
	if err == nil {
		t.Fatal("Expected a failing repository to abort the run")
	}
	if !strings.Contains(err.Error(), "loading product units") {
		t.Errorf("Expected a wrapped load error, got %v", err)
	}
}

// failingHistory fails on product unit loads and delegates everything else
type failingHistory struct {
	*memory.HistoryRepository
}

func (f *failingHistory) WeeklyProductUnits() ([]*entities.ProductUnits, error) {
	return nil, fmt.Errorf("connection reset")
}

func TestDriverAttribution_TopThree(t *testing.T) {
	history := memory.NewHistoryRepository()
	history.LoadProductFabricUse([]*entities.ProductFabricUse{
		{ProductName: "A", FabricColourCode: "FC-RED", Qty: 40},
		{ProductName: "B", FabricColourCode: "FC-RED", Qty: 30},
		{ProductName: "C", FabricColourCode: "FC-RED", Qty: 20},
		{ProductName: "D", FabricColourCode: "FC-RED", Qty: 10},
	})

	pipeline := newTestPipeline(history, memory.NewBomRepository(), memory.NewStockRepository())
	drivers, err := pipeline.driverAttribution()
	if err != nil {
		t.Fatalf("Expected attribution to succeed: %v", err)
	}

	red := drivers["FC-RED"]
	if len(red) != 3 {
		t.Fatalf("Expected top 3 drivers, got %d", len(red))
	}
	if red[0].Product != "A" || red[0].SharePct != 40 {
		t.Errorf("Expected A at 40%%, got %s at %v%%", red[0].Product, red[0].SharePct)
	}
	if red[2].Product != "C" {
		t.Errorf("Expected C third, got %s", red[2].Product)
	}
}
