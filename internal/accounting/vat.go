package accounting

import (
	"sort"

	"github.com/shopspring/decimal"

	"fisbench/internal/logger"
)

var (
	hundred         = decimal.NewFromInt(100)
	discountEpsilon = decimal.RequireFromString("0.01")
	defaultQuantity = decimal.NewFromInt(1)
	outputPrecision = int32(2)
)

// Reconciliation is the VAT breakdown and totals derived from line items alone.
type Reconciliation struct {
	Breakdown  []LegacyVATRow
	Subtotal   float64
	TotalVAT   float64
	GrandTotal float64
}

// Reconciler derives VAT independently of the LLM-reported totals.
type Reconciler struct {
	log *logger.Logger
}

func NewReconciler(log *logger.Logger) *Reconciler {
	return &Reconciler{log: log}
}

// Reconcile groups items by VAT rate, sums each group's gross amounts, and
// extracts VAT once per group as gross × rate / (100 + rate). Summing before
// dividing keeps per-item rounding from accumulating. Values are rounded to
// two decimals only in the returned result.
func (r *Reconciler) Reconcile(items []LegacyLineItem) Reconciliation {
	groups := map[int]decimal.Decimal{}
	for i := range items {
		rate := 0
		if items[i].VATRate != nil {
			rate = *items[i].VATRate
		}
		groups[rate] = groups[rate].Add(r.grossContribution(i, &items[i]))
	}

	rates := make([]int, 0, len(groups))
	for rate := range groups {
		rates = append(rates, rate)
	}
	sort.Ints(rates)

	out := Reconciliation{Breakdown: []LegacyVATRow{}}
	var totalVAT, grand decimal.Decimal
	for _, rate := range rates {
		gross := groups[rate]
		vat := decimal.Zero
		base := gross
		if rate != 0 {
			rateD := decimal.NewFromInt(int64(rate))
			vat = gross.Mul(rateD).Div(hundred.Add(rateD))
			base = gross.Sub(vat)
		}
		out.Breakdown = append(out.Breakdown, LegacyVATRow{
			Rate:        rate,
			BaseAmount:  round2(base),
			VATAmount:   round2(vat),
			TotalAmount: round2(gross),
		})
		totalVAT = totalVAT.Add(vat)
		grand = grand.Add(gross)
		r.log.Debug("vat group", "rate", rate, "gross", gross.String(), "vat", vat.StringFixed(4))
	}

	out.TotalVAT = round2(totalVAT)
	out.GrandTotal = round2(grand)
	out.Subtotal = round2(grand.Sub(totalVAT))
	return out
}

// ReconcileItems reconciles canonical items through their legacy projection.
func (r *Reconciler) ReconcileItems(items []LineItem) Reconciliation {
	return r.Reconcile(toLegacyItems(items))
}

// grossContribution resolves the VAT-inclusive amount an item contributes,
// logging how its discount was treated.
func (r *Reconciler) grossContribution(idx int, item *LegacyLineItem) decimal.Decimal {
	g := resolveGross(item.TotalPrice, item.DiscountAmount, item.UnitPrice, item.Quantity)
	switch {
	case g.pending:
		r.log.Debug("applying discount", "item", idx,
			"before", g.before.StringFixed(2), "after", g.after.StringFixed(2))
	case g.ambiguous:
		r.log.Warn("discount inconsistent, keeping reported gross", "item", idx,
			"expected", g.after.StringFixed(2), "reported", g.amount.StringFixed(2))
	}
	return g.amount
}

// ItemGross is the amount item contributes to the grand total once its
// discount is accounted for.
func ItemGross(item LineItem) decimal.Decimal {
	return resolveGross(item.GrossAmount, item.DiscountAmount, item.UnitPrice, item.Quantity).amount
}

// DiscountConsistent reports whether an item's gross matches either the
// pre-discount or post-discount amount. Items without a discount are consistent.
func DiscountConsistent(item LineItem) bool {
	return !resolveGross(item.GrossAmount, item.DiscountAmount, item.UnitPrice, item.Quantity).ambiguous
}

type grossResolution struct {
	amount decimal.Decimal
	before decimal.Decimal
	after  decimal.Decimal
	// pending: gross was unitPrice × quantity and the discount was subtracted.
	pending bool
	// ambiguous: gross matched neither side of the discount and was kept.
	ambiguous bool
}

// resolveGross applies a discount to gross. With a discount, a gross equal to
// unitPrice × quantity means the discount has not been applied yet; a gross
// equal to that minus the discount is taken as is. Anything else is
// ambiguous and the reported gross is kept.
func resolveGross(gross, discount float64, unitPrice, quantity *float64) grossResolution {
	g := grossResolution{amount: decimal.NewFromFloat(gross)}
	d := decimal.NewFromFloat(discount)
	if !d.IsPositive() {
		return g
	}

	unit := decimal.Zero
	if unitPrice != nil {
		unit = decimal.NewFromFloat(*unitPrice)
	}
	qty := defaultQuantity
	if quantity != nil && *quantity != 0 {
		qty = decimal.NewFromFloat(*quantity)
	}
	g.before = unit.Mul(qty)
	g.after = g.before.Sub(d)

	switch {
	case g.amount.Sub(g.before).Abs().LessThan(discountEpsilon):
		g.pending = true
		g.amount = g.after
	case g.amount.Sub(g.after).Abs().LessThan(discountEpsilon):
	default:
		g.ambiguous = true
	}
	return g
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(outputPrecision).Float64()
	return f
}
