package planning

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/coherp/demandplan/pkg/application/dto"
	"github.com/coherp/demandplan/pkg/application/forecast"
	"github.com/coherp/demandplan/pkg/domain/entities"
	"github.com/coherp/demandplan/pkg/domain/repositories"
	"github.com/coherp/demandplan/pkg/infrastructure/workerpool"
)

// sizeOrder is the display ordering for garment sizes
var sizeOrder = []string{"XS", "S", "M", "L", "XL", "2XL", "3XL"}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Pipeline runs the full forecasting-and-requirements flow: overall
// statistics and forecast, per-entity forecasts, requirements explosion,
// stock reconciliation and shortfall ranking
type Pipeline struct {
	config  Config
	history repositories.HistoryRepository
	bom     repositories.BomRepository
	stock   repositories.StockRepository
	logger  zerolog.Logger
}

// NewPipeline wires a pipeline to its data sources
func NewPipeline(config Config, history repositories.HistoryRepository, bom repositories.BomRepository, stock repositories.StockRepository, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		config:  config,
		history: history,
		bom:     bom,
		stock:   stock,
		logger:  logger,
	}
}

// Run executes one planning run. Upstream data faults are fatal and abort
// the run before any output; model failures and missing BOM paths degrade
// silently through method tags.
func (p *Pipeline) Run(ctx context.Context, mode Mode) (*dto.PlanResult, error) {
	started := time.Now()

	weeklyTotals, err := p.history.WeeklyTotals()
	if err != nil {
		return nil, fmt.Errorf("loading weekly totals: %w", err)
	}
	if len(weeklyTotals) == 0 {
		return nil, fmt.Errorf("no order history available")
	}
	bomLines, err := p.bom.Lines()
	if err != nil {
		return nil, fmt.Errorf("loading bom lines: %w", err)
	}
	stock, err := p.stock.Balances()
	if err != nil {
		return nil, fmt.Errorf("loading stock balances: %w", err)
	}

	p.logger.Info().
		Int("weeks", len(weeklyTotals)).
		Int("bomLines", len(bomLines)).
		Str("mode", mode.String()).
		Msg("planning run started")

	engine := NewExplosionEngine(p.config.DefaultWastagePercent, bomLines)

	result := &dto.PlanResult{
		RunID:          uuid.NewString(),
		GeneratedAt:    started,
		Mode:           mode.String(),
		ForecastWeeks:  p.config.HorizonWeeks,
		WastagePercent: p.config.DefaultWastagePercent,
	}

	trimmed := trimTotals(weeklyTotals)
	result.Overall = overallStats(trimmed)
	result.WeeklyHistory = weeklyHistory(trimmed, 52)

	ordersSeries, err := totalsSeries(trimmed)
	if err != nil {
		return nil, fmt.Errorf("building overall series: %w", err)
	}

	overallEnsemble := forecast.NewEnsemble(p.config.ProductForecastConfig())
	overallPoints, _ := overallEnsemble.Forecast(ordersSeries, p.config.HorizonWeeks)
	result.OverallForecast = toDTOPoints(overallPoints)
	result.RevenueForecast = revenueForecast(overallPoints, result.Overall.RecentAov)

	demand := entities.NewMaterialDemand()
	methodCounts := make(map[string]int)
	colourMethods := make(map[string]string)
	var totalForecastUnits float64

	switch mode {
	case AllocationMode:
		products, err := p.runAllocation(ctx, engine, demand, methodCounts)
		if err != nil {
			return nil, err
		}
		result.Products = products
		for _, product := range products {
			totalForecastUnits += product.ForecastTotal
		}
	case DirectMode:
		colours, err := p.runDirect(ctx, engine, demand, methodCounts, colourMethods)
		if err != nil {
			return nil, err
		}
		totalForecastUnits = colours
	default:
		return nil, fmt.Errorf("unsupported mode %v", mode)
	}

	drivers := map[string][]dto.Driver{}
	if mode == DirectMode {
		drivers, err = p.driverAttribution()
		if err != nil {
			return nil, err
		}
	}

	result.FabricRequirements = fabricGroups(demand, stock, colourMethods, drivers)

	report := PlanShortfalls(demand, stock)
	result.PurchaseOrders = toPurchaseOrders(report.Orders)

	result.Summary = dto.Summary{
		TotalForecastUnits:    math.Round(totalForecastUnits),
		ProductsForecasted:    len(result.Products),
		FabricTypesNeeded:     len(result.FabricRequirements),
		FabricColoursNeeded:   demand.Len(),
		ShortfallCount:        len(report.Orders),
		CoveredByStock:        report.CoveredByStock,
		EstimatedPurchaseCost: report.TotalEstimatedCost.InexactFloat64(),
		MethodCounts:          methodCounts,
	}

	p.logger.Info().
		Dur("elapsed", time.Since(started)).
		Int("shortfalls", len(report.Orders)).
		Int("colours", demand.Len()).
		Msg("planning run finished")

	return result, nil
}

// runAllocation forecasts product unit sales and explodes them through
// variation and size proportions into material demand
func (p *Pipeline) runAllocation(ctx context.Context, engine *ExplosionEngine, demand *entities.MaterialDemand, methodCounts map[string]int) ([]dto.ProductForecast, error) {
	productUnits, err := p.history.WeeklyProductUnits()
	if err != nil {
		return nil, fmt.Errorf("loading product units: %w", err)
	}
	sizeMix, err := p.history.SizeMix()
	if err != nil {
		return nil, fmt.Errorf("loading size mix: %w", err)
	}
	variationMix, err := p.history.VariationMix()
	if err != nil {
		return nil, fmt.Errorf("loading variation mix: %w", err)
	}

	series := make(map[string]*entities.WeeklySeries)
	grouped := make(map[string][]entities.WeekValue)
	for _, row := range productUnits {
		grouped[row.ProductName] = append(grouped[row.ProductName], entities.WeekValue{Week: row.Week, Value: row.Units})
	}
	for name, observations := range grouped {
		s, err := entities.NewWeeklySeries(observations)
		if err != nil {
			continue
		}
		series[name] = s
	}

	sizeCounts, sizeLabels := mixTables(sizeMix)
	variationCounts, variationLabels := mixTables(variationMix)

	last12mo := trailingUnits(productUnits, 365)
	topProducts := rankProducts(last12mo, p.config.TopProducts)

	selector := forecast.NewSelector(p.config.SelectorConfig(), forecast.NewEnsemble(p.config.ProductForecastConfig()))

	var (
		mu       sync.Mutex
		products []dto.ProductForecast
		handled  = make(map[string]bool)
	)

	pool := workerpool.New(p.config.Workers)
	pool.Start()
	for _, name := range topProducts {
		name := name
		productSeries, ok := series[name]
		if !ok {
			continue
		}
		mu.Lock()
		handled[name] = true
		mu.Unlock()

		if err := pool.Submit(func() error {
			sf, ok := selector.Forecast(productSeries, p.config.HorizonWeeks)
			if !ok {
				// Recently inactive: excluded from every output
				return nil
			}
			if len(sf.Points) == 0 && sf.Total < 1 {
				return nil
			}

			variationShares := entities.NormalizeProportions(variationCounts[name])
			sizeShares := entities.NormalizeProportions(sizeCounts[name])
			contribution := engine.Allocate(sf.Total, variationShares, sizeShares)

			mu.Lock()
			defer mu.Unlock()
			methodCounts[sf.Method.String()]++
			demand.Merge(contribution)
			if len(sf.Points) > 0 {
				products = append(products, productEntry(name, last12mo[name], productSeries, sf, sizeShares, variationShares, sizeLabels, variationLabels))
			}
			return nil
		}); err != nil {
			return nil, fmt.Errorf("submitting forecast for %s: %w", name, err)
		}
	}
	pool.Wait()

	// Remaining products with BOM coverage contribute through the trailing
	// average, without full product entries
	remaining := remainingProducts(sizeCounts, variationCounts, engine, handled)
	for _, name := range remaining {
		productSeries, ok := series[name]
		if !ok {
			continue
		}
		if productSeries.ActiveWeeks(p.config.ActivityWindow) < p.config.MinActiveWeeks {
			continue
		}
		total := productSeries.TrailingMean(p.config.ActivityWindow) * float64(p.config.HorizonWeeks)
		if total < 1 {
			continue
		}
		contribution := engine.Allocate(total,
			entities.NormalizeProportions(variationCounts[name]),
			entities.NormalizeProportions(sizeCounts[name]))
		if contribution.Len() == 0 {
			continue
		}
		demand.Merge(contribution)
		methodCounts[entities.MethodAverageFallback.String()]++
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Last12moUnits > products[j].Last12moUnits
	})
	return products, nil
}

// runDirect forecasts each fabric colour's own weekly consumption and adds
// the totals to material demand directly. Returns the summed forecast
// quantity across colours.
func (p *Pipeline) runDirect(ctx context.Context, engine *ExplosionEngine, demand *entities.MaterialDemand, methodCounts map[string]int, colourMethods map[string]string) (float64, error) {
	consumption, err := p.history.WeeklyFabricConsumption()
	if err != nil {
		return 0, fmt.Errorf("loading fabric consumption: %w", err)
	}

	grouped := make(map[string][]entities.WeekValue)
	for _, row := range consumption {
		grouped[row.FabricColourCode] = append(grouped[row.FabricColourCode], entities.WeekValue{Week: row.Week, Value: row.Qty})
	}

	selector := forecast.NewSelector(p.config.SelectorConfig(), forecast.NewEnsemble(p.config.FabricForecastConfig()))

	var (
		mu    sync.Mutex
		total float64
	)
	pool := workerpool.New(p.config.Workers)
	pool.Start()
	for code, observations := range grouped {
		code, observations := code, observations
		if err := pool.Submit(func() error {
			colourSeries, err := entities.NewWeeklySeries(observations)
			if err != nil {
				return nil
			}
			sf, ok := selector.Forecast(colourSeries, p.config.HorizonWeeks)
			if !ok {
				return nil
			}
			requirement, ok := engine.DirectRequirement(code, sf.Total)
			if !ok {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			demand.Add(requirement)
			methodCounts[sf.Method.String()]++
			colourMethods[code] = sf.Method.String()
			total += sf.Total
			return nil
		}); err != nil {
			return 0, fmt.Errorf("submitting forecast for %s: %w", code, err)
		}
	}
	pool.Wait()

	return total, nil
}

// driverAttribution ranks the products behind each colour's recent
// consumption
func (p *Pipeline) driverAttribution() (map[string][]dto.Driver, error) {
	uses, err := p.history.ProductFabricConsumption()
	if err != nil {
		return nil, fmt.Errorf("loading product fabric consumption: %w", err)
	}

	byColour := make(map[string][]*entities.ProductFabricUse)
	totals := make(map[string]float64)
	for _, use := range uses {
		byColour[use.FabricColourCode] = append(byColour[use.FabricColourCode], use)
		totals[use.FabricColourCode] += use.Qty
	}

	drivers := make(map[string][]dto.Driver, len(byColour))
	for code, colourUses := range byColour {
		if totals[code] <= 0 {
			continue
		}
		sort.SliceStable(colourUses, func(i, j int) bool { return colourUses[i].Qty > colourUses[j].Qty })
		limit := len(colourUses)
		if limit > 3 {
			limit = 3
		}
		for _, use := range colourUses[:limit] {
			drivers[code] = append(drivers[code], dto.Driver{
				Product:  use.ProductName,
				SharePct: round1(use.Qty / totals[code] * 100),
			})
		}
	}
	return drivers, nil
}

// productEntry assembles the presentation record for one forecast product
func productEntry(name string, last12mo float64, series *entities.WeeklySeries, sf forecast.SeriesForecast, sizeShares, variationShares entities.Proportion, sizeLabels, variationLabels map[string]string) dto.ProductForecast {
	entry := dto.ProductForecast{
		Name:          name,
		Last12moUnits: int(last12mo),
		Recent8wAvg:   round1(series.TrailingMean(8)),
		ForecastTotal: math.Round(sf.Total),
		Method:        sf.Method.String(),
		Forecasts:     toDTOPoints(sf.Points),
	}

	for _, size := range sizeOrder {
		share, ok := sizeShares[size]
		if !ok {
			continue
		}
		entry.SizeBreakdown = append(entry.SizeBreakdown, dto.ShareLine{
			Key:   size,
			Pct:   round1(share * 100),
			Units: math.Round(sf.Total * share),
		})
	}

	type ranked struct {
		key   string
		share float64
	}
	var variations []ranked
	for key, share := range variationShares {
		variations = append(variations, ranked{key: key, share: share})
	}
	sort.SliceStable(variations, func(i, j int) bool {
		if variations[i].share != variations[j].share {
			return variations[i].share > variations[j].share
		}
		return variations[i].key < variations[j].key
	})
	for _, v := range variations {
		label := variationLabels[v.key]
		if label == "" {
			label = v.key
		}
		entry.ColourBreakdown = append(entry.ColourBreakdown, dto.ShareLine{
			Key:   label,
			Pct:   round1(v.share * 100),
			Units: math.Round(sf.Total * v.share),
		})
	}

	for _, point := range series.Tail(26) {
		entry.History = append(entry.History, dto.ProductWeek{
			Week:  point.Week.Format("2006-01-02"),
			Units: point.Value,
		})
	}
	return entry
}

// fabricGroups groups the accumulated demand by fabric type, ranked by
// total quantity with colours ranked by requirement
func fabricGroups(demand *entities.MaterialDemand, stock entities.StockSnapshot, colourMethods map[string]string, drivers map[string][]dto.Driver) []dto.FabricGroup {
	groups := make(map[string]*dto.FabricGroup)
	for _, code := range demand.Codes() {
		requirement := demand.Get(code)
		group, ok := groups[requirement.FabricName]
		if !ok {
			group = &dto.FabricGroup{Name: requirement.FabricName, Unit: requirement.FabricUnit}
			groups[requirement.FabricName] = group
		}
		group.TotalQty += requirement.RequiredQty

		inStock := stock.Balance(code)
		gap := requirement.RequiredQty - inStock
		orderCost := 0.0
		if gap > 0 && requirement.CostPerUnit.IsPositive() {
			orderCost = requirement.CostPerUnit.Mul(decimal.NewFromFloat(gap)).Round(0).InexactFloat64()
		}
		group.Colours = append(group.Colours, dto.FabricColourLine{
			Code:        code,
			Colour:      requirement.ColourName,
			Required:    round1(requirement.RequiredQty),
			InStock:     round1(inStock),
			Gap:         round1(gap),
			Method:      colourMethods[code],
			CostPerUnit: requirement.CostPerUnit.InexactFloat64(),
			OrderCost:   orderCost,
			Drivers:     drivers[code],
		})
	}

	list := make([]dto.FabricGroup, 0, len(groups))
	for _, group := range groups {
		sort.SliceStable(group.Colours, func(i, j int) bool { return group.Colours[i].Required > group.Colours[j].Required })
		group.TotalQty = round1(group.TotalQty)
		list = append(list, *group)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].TotalQty > list[j].TotalQty })
	return list
}

// trimTotals drops the first and last week of the extract; boundary weeks
// are usually partial
func trimTotals(totals []*entities.WeeklyTotal) []*entities.WeeklyTotal {
	sorted := make([]*entities.WeeklyTotal, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Week.Before(sorted[j].Week) })
	if len(sorted) > 2 {
		return sorted[1 : len(sorted)-1]
	}
	return sorted
}

// overallStats computes the run-level descriptive statistics
func overallStats(totals []*entities.WeeklyTotal) dto.OverallStats {
	stats := dto.OverallStats{WeeksOfData: len(totals)}
	if len(totals) == 0 {
		return stats
	}

	for _, row := range totals {
		stats.TotalOrders += int(row.Orders)
	}
	stats.DateRange = dto.DateRange{
		From: totals[0].Week.Format("2006-01-02"),
		To:   totals[len(totals)-1].Week.Format("2006-01-02"),
	}

	recent := tailTotals(totals, 12)
	prev := sliceTotals(totals, len(totals)-24, len(totals)-12)
	stats.Recent12wAvg = round1(meanOrders(recent))
	stats.Prev12wAvg = round1(meanOrders(prev))
	stats.RecentAov = math.Round(meanAov(recent))
	stats.PrevAov = math.Round(meanAov(prev))

	if len(totals) > 56 {
		yoy := round1(meanOrders(sliceTotals(totals, len(totals)-56, len(totals)-48)))
		stats.YoySamePeriodAvg = &yoy
	}

	monthSums := make(map[int]float64)
	monthCounts := make(map[int]int)
	for _, row := range totals {
		m := int(row.Week.Month())
		monthSums[m] += row.Orders
		monthCounts[m]++
	}
	overall := 0.0
	observed := 0
	for m := 1; m <= 12; m++ {
		if monthCounts[m] > 0 {
			overall += monthSums[m] / float64(monthCounts[m])
			observed++
		}
	}
	if observed > 0 {
		overall /= float64(observed)
	}
	for m := 1; m <= 12; m++ {
		index := 0.0
		if monthCounts[m] > 0 && overall > 0 {
			index = math.Round(monthSums[m] / float64(monthCounts[m]) / overall * 100)
		}
		stats.Seasonality = append(stats.Seasonality, dto.MonthIndex{Month: monthNames[m-1], Index: index})
	}
	return stats
}

func weeklyHistory(totals []*entities.WeeklyTotal, weeks int) []dto.WeekHistory {
	tail := tailTotals(totals, weeks)
	history := make([]dto.WeekHistory, 0, len(tail))
	for _, row := range tail {
		history = append(history, dto.WeekHistory{
			Week:    row.Week.Format("2006-01-02"),
			Orders:  int(row.Orders),
			Revenue: math.Round(row.Revenue),
			Aov:     math.Round(row.AvgOrderValue),
		})
	}
	return history
}

func totalsSeries(totals []*entities.WeeklyTotal) (*entities.WeeklySeries, error) {
	observations := make([]entities.WeekValue, 0, len(totals))
	for _, row := range totals {
		observations = append(observations, entities.WeekValue{Week: row.Week, Value: row.Orders})
	}
	return entities.NewWeeklySeries(observations)
}

// revenueForecast converts the order forecast to revenue using the recent
// average order value
func revenueForecast(points []entities.ForecastPoint, recentAov float64) []dto.ForecastPoint {
	out := make([]dto.ForecastPoint, 0, len(points))
	for _, p := range points {
		out = append(out, dto.ForecastPoint{
			Week:     p.Week.Format("2006-01-02"),
			Forecast: math.Round(p.Forecast * recentAov),
			Low:      math.Round(p.Low * recentAov),
			High:     math.Round(p.High * recentAov),
		})
	}
	return out
}

func toDTOPoints(points []entities.ForecastPoint) []dto.ForecastPoint {
	out := make([]dto.ForecastPoint, 0, len(points))
	for _, p := range points {
		out = append(out, dto.ForecastPoint{
			Week:     p.Week.Format("2006-01-02"),
			Forecast: p.Forecast,
			Low:      p.Low,
			High:     p.High,
		})
	}
	return out
}

func toPurchaseOrders(orders []entities.ShortfallOrder) []dto.PurchaseOrder {
	out := make([]dto.PurchaseOrder, 0, len(orders))
	for _, order := range orders {
		out = append(out, dto.PurchaseOrder{
			Code:        order.FabricColourCode,
			Fabric:      order.FabricName,
			Colour:      order.ColourName,
			Unit:        order.FabricUnit,
			Required:    round1(order.RequiredQty),
			InStock:     round1(order.InStock),
			ToOrder:     round1(order.ToOrder),
			CostPerUnit: order.CostPerUnit.InexactFloat64(),
			EstCost:     order.EstimatedCost.InexactFloat64(),
		})
	}
	return out
}

// mixTables splits mix entries into per-product unit counts and key labels
func mixTables(entries []*entities.MixEntry) (map[string]map[string]float64, map[string]string) {
	counts := make(map[string]map[string]float64)
	labels := make(map[string]string)
	for _, entry := range entries {
		if counts[entry.ProductName] == nil {
			counts[entry.ProductName] = make(map[string]float64)
		}
		counts[entry.ProductName][entry.Key] += entry.Units
		if entry.Label != "" {
			labels[entry.Key] = entry.Label
		}
	}
	return counts, labels
}

// trailingUnits sums per-product units over the trailing window in days
func trailingUnits(rows []*entities.ProductUnits, days int) map[string]float64 {
	cutoff := time.Now().AddDate(0, 0, -days)
	totals := make(map[string]float64)
	for _, row := range rows {
		if row.Week.Before(cutoff) {
			continue
		}
		totals[row.ProductName] += row.Units
	}
	return totals
}

// rankProducts returns the top n product names by trailing units
func rankProducts(totals map[string]float64, n int) []string {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

// remainingProducts lists products with both mix tables and BOM coverage
// that were not already handled by the model-forecast loop
func remainingProducts(sizeCounts, variationCounts map[string]map[string]float64, engine *ExplosionEngine, handled map[string]bool) []string {
	var names []string
	for name := range sizeCounts {
		if handled[name] {
			continue
		}
		if len(variationCounts[name]) == 0 {
			continue
		}
		if !engine.HasProduct(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func tailTotals(totals []*entities.WeeklyTotal, n int) []*entities.WeeklyTotal {
	if len(totals) <= n {
		return totals
	}
	return totals[len(totals)-n:]
}

func sliceTotals(totals []*entities.WeeklyTotal, from, to int) []*entities.WeeklyTotal {
	if from < 0 {
		from = 0
	}
	if to > len(totals) {
		to = len(totals)
	}
	if from >= to {
		return nil
	}
	return totals[from:to]
}

func meanOrders(totals []*entities.WeeklyTotal) float64 {
	if len(totals) == 0 {
		return 0
	}
	sum := 0.0
	for _, row := range totals {
		sum += row.Orders
	}
	return sum / float64(len(totals))
}

func meanAov(totals []*entities.WeeklyTotal) float64 {
	if len(totals) == 0 {
		return 0
	}
	sum := 0.0
	for _, row := range totals {
		sum += row.AvgOrderValue
	}
	return sum / float64(len(totals))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
