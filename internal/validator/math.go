package validator

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fisbench/internal/accounting"
)

// Rule keys for arithmetic checks.
const (
	FlagTotalMismatch        = "TOTAL_MISMATCH"
	FlagVATBreakdownMismatch = "VAT_BREAKDOWN_MISMATCH"
	FlagDiscountInconsistent = "DISCOUNT_INCONSISTENT"
)

var mathTolerance = decimal.NewFromFloat(0.01)

// mathValidator checks arithmetic relationships between fields.
type mathValidator struct {
	ruleKey  string
	ruleName string
	validate func(*accounting.Document) []Result
}

func (v *mathValidator) RuleKey() string    { return v.ruleKey }
func (v *mathValidator) RuleName() string   { return v.ruleName }
func (v *mathValidator) Severity() Severity { return SeverityWarning }

func (v *mathValidator) Validate(_ context.Context, doc *accounting.Document) []Result {
	return v.validate(doc)
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(mathTolerance)
}

func mathResult(key, name, fieldPath string, expected, actual decimal.Decimal) Result {
	passed := withinTolerance(expected, actual)
	msg := fmt.Sprintf("%s: %s matches", name, fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s: %s mismatch (expected %s, got %s)",
			name, fieldPath, expected.StringFixed(2), actual.StringFixed(2))
	}
	return Result{
		RuleKey: key, Passed: passed, FieldPath: fieldPath,
		ExpectedValue: expected.StringFixed(2), ActualValue: actual.StringFixed(2),
		Message: msg,
	}
}

// MathValidators returns the arithmetic consistency rules. Each one skips
// silently when the printed figure it compares against is absent.
func MathValidators() []Validator {
	return []Validator{
		&mathValidator{
			ruleKey: FlagTotalMismatch, ruleName: "Items gross sum vs total",
			validate: func(d *accounting.Document) []Result {
				if d.Totals.TotalAmount == nil || len(d.Items) == 0 {
					return nil
				}
				sum := decimal.Zero
				for i := range d.Items {
					sum = sum.Add(accounting.ItemGross(d.Items[i]))
				}
				return []Result{mathResult(FlagTotalMismatch, "Items gross sum vs total",
					"totals.totalAmount", sum, decimal.NewFromFloat(*d.Totals.TotalAmount))}
			},
		},
		&mathValidator{
			ruleKey: FlagVATBreakdownMismatch, ruleName: "VAT breakdown sum vs total VAT",
			validate: func(d *accounting.Document) []Result {
				if d.Totals.TotalVAT == nil || len(d.Totals.VATBreakdown) == 0 {
					return nil
				}
				sum := decimal.Zero
				for _, row := range d.Totals.VATBreakdown {
					sum = sum.Add(decimal.NewFromFloat(row.VATAmount))
				}
				return []Result{mathResult(FlagVATBreakdownMismatch, "VAT breakdown sum vs total VAT",
					"totals.totalVat", sum, decimal.NewFromFloat(*d.Totals.TotalVAT))}
			},
		},
		&mathValidator{
			ruleKey: FlagDiscountInconsistent, ruleName: "Item discount consistency",
			validate: func(d *accounting.Document) []Result {
				var results []Result
				for i := range d.Items {
					item := d.Items[i]
					if item.DiscountAmount <= 0 {
						continue
					}
					fp := fmt.Sprintf("items[%d].discountAmount", i)
					passed := accounting.DiscountConsistent(item)
					msg := fmt.Sprintf("Item discount consistency: %s matches gross", fp)
					if !passed {
						msg = fmt.Sprintf("Item discount consistency: %s matches neither pre nor post discount gross", fp)
					}
					results = append(results, Result{
						RuleKey: FlagDiscountInconsistent, Passed: passed, FieldPath: fp,
						ActualValue: decimal.NewFromFloat(item.GrossAmount).StringFixed(2),
						Message:     msg,
					})
				}
				return results
			},
		},
	}
}
