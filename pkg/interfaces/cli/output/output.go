package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/coherp/demandplan/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format string
	Writer io.Writer
}

// Generate renders the plan result in the requested format
func Generate(result *dto.PlanResult, config Config) error {
	switch config.Format {
	case "json":
		return generateJSON(result, config.Writer)
	case "text", "":
		return generateText(result, config.Writer)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func generateJSON(result *dto.PlanResult, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

func generateText(result *dto.PlanResult, w io.Writer) error {
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}

	line("")
	line("#################################################################")
	line("  DEMAND FORECAST - %s", result.GeneratedAt.Format("2006-01-02"))
	line("#################################################################")
	line("")
	line("  Data: %d orders over %d weeks", result.Overall.TotalOrders, result.Overall.WeeksOfData)
	line("  Recent 12w avg: %.1f/wk | AOV: %.0f", result.Overall.Recent12wAvg, result.Overall.RecentAov)

	for _, product := range result.Products {
		line("")
		line("  ------------------------------------------------------------")
		line("  %s - %.0f units (%dwk, %s)", product.Name, product.ForecastTotal, result.ForecastWeeks, product.Method)
		for _, point := range product.Forecasts {
			line("    %s  %6.0f  (%.0f-%.0f)", point.Week, point.Forecast, point.Low, point.High)
		}
	}

	line("")
	line("")
	line("  FABRIC REQUIREMENTS:")
	for _, fabric := range result.FabricRequirements {
		line("")
		line("  %s - %.1f %s", fabric.Name, fabric.TotalQty, fabric.Unit)
		for _, colour := range fabric.Colours {
			status := fmt.Sprintf("OK (+%.1f)", -colour.Gap)
			if colour.Gap > 0 {
				status = fmt.Sprintf("ORDER %.1f", colour.Gap)
			}
			line("    %-16s %-20s need:%7.1f  stock:%7.1f  %s",
				colour.Code, colour.Colour, colour.Required, colour.InStock, status)
		}
	}

	line("")
	line("  SUMMARY: %.0f units | %d fabrics to order", result.Summary.TotalForecastUnits, result.Summary.ShortfallCount)
	if result.Summary.EstimatedPurchaseCost > 0 {
		line("  Est. purchase: %.0f", result.Summary.EstimatedPurchaseCost)
	}
	return nil
}
