package accounting

import "github.com/shopspring/decimal"

// ModelPrice is the USD cost per one million tokens.
type ModelPrice struct {
	Input  float64
	Output float64
}

// DefaultPricingModel is charged for model ids missing from PriceTable.
const DefaultPricingModel = "gpt-4o-mini"

// PriceTable holds per-model token prices.
var PriceTable = map[string]ModelPrice{
	"gpt-4o-mini":              {Input: 0.15, Output: 0.60},
	"gpt-4.1-mini":             {Input: 0.10, Output: 0.40},
	"gpt-4o":                   {Input: 2.50, Output: 10.00},
	"claude-sonnet-4-20250514": {Input: 3.00, Output: 15.00},
	"gemini-2.0-flash":         {Input: 0.10, Output: 0.40},
}

var perMillion = decimal.NewFromInt(1_000_000)

// PriceFor returns the price entry for model, falling back to the default.
func PriceFor(model string) ModelPrice {
	if p, ok := PriceTable[model]; ok {
		return p
	}
	return PriceTable[DefaultPricingModel]
}

// EstimateCost returns (in/1e6)×inputRate + (out/1e6)×outputRate in USD.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	p := PriceFor(model)
	in := decimal.NewFromInt(int64(inputTokens)).Div(perMillion).Mul(decimal.NewFromFloat(p.Input))
	out := decimal.NewFromInt(int64(outputTokens)).Div(perMillion).Mul(decimal.NewFromFloat(p.Output))
	f, _ := in.Add(out).Float64()
	return f
}
