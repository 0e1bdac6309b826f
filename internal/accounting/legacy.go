package accounting

import (
	"github.com/shopspring/decimal"

	"fisbench/internal/logger"
)

// LegacyDocument is the flat v1 projection read by older consumers. The _gpt
// fields carry the LLM-reported values and the _calculated fields the values
// derived from line items; both are kept so divergence stays visible.
type LegacyDocument struct {
	VKN           *string `json:"vkn"`
	CompanyName   *string `json:"company_name"`
	Plate         *string `json:"plate"`
	Date          *string `json:"date"`
	ReceiptNumber *string `json:"receipt_number"`

	LineItems []LegacyLineItem `json:"line_items"`

	VATBreakdown           []LegacyVATRow `json:"vat_breakdown"`
	VATBreakdownGPT        []LegacyVATRow `json:"vat_breakdown_gpt"`
	VATBreakdownCalculated []LegacyVATRow `json:"vat_breakdown_calculated"`

	TotalVAT           *float64 `json:"total_vat"`
	TotalVATGPT        *float64 `json:"total_vat_gpt"`
	TotalVATCalculated float64  `json:"total_vat_calculated"`

	GrandTotal           *float64 `json:"grand_total"`
	GrandTotalGPT        *float64 `json:"grand_total_gpt"`
	GrandTotalCalculated float64  `json:"grand_total_calculated"`

	Subtotal           *float64 `json:"subtotal,omitempty"`
	SubtotalGPT        *float64 `json:"subtotal_gpt,omitempty"`
	SubtotalCalculated float64  `json:"subtotal_calculated"`

	PaymentMethod *string `json:"payment_method,omitempty"`
}

type LegacyLineItem struct {
	Name           string   `json:"name"`
	Quantity       *float64 `json:"quantity"`
	UnitPrice      *float64 `json:"unit_price"`
	TotalPrice     float64  `json:"total_price"`
	VATRate        *int     `json:"vat_rate"`
	VATAmount      *float64 `json:"vat_amount"`
	DiscountAmount float64  `json:"discount_amount"`
}

type LegacyVATRow struct {
	Rate        int     `json:"rate"`
	BaseAmount  float64 `json:"base_amount"`
	VATAmount   float64 `json:"vat_amount"`
	TotalAmount float64 `json:"total_amount"`
}

// Converter projects canonical documents onto the legacy shape.
type Converter struct {
	reconciler *Reconciler
	log        *logger.Logger
}

func NewConverter(reconciler *Reconciler, log *logger.Logger) *Converter {
	return &Converter{reconciler: reconciler, log: log}
}

// ToLegacy builds the legacy projection of doc. doc is only read.
func (c *Converter) ToLegacy(doc *Document) *LegacyDocument {
	out := &LegacyDocument{
		VKN:           copyString(doc.Document.MerchantVKN),
		CompanyName:   copyString(doc.Document.MerchantName),
		Plate:         copyString(doc.Document.Plate),
		Date:          copyString(doc.Document.Date),
		ReceiptNumber: copyString(doc.Document.ReceiptNo),
		LineItems:     toLegacyItems(doc.Items),
	}

	gptRows := make([]LegacyVATRow, 0, len(doc.Totals.VATBreakdown))
	for _, b := range doc.Totals.VATBreakdown {
		gptRows = append(gptRows, LegacyVATRow{
			Rate:        b.VATRate,
			BaseAmount:  b.TaxBase,
			VATAmount:   b.VATAmount,
			TotalAmount: addMoney(b.TaxBase, b.VATAmount),
		})
	}
	out.VATBreakdown = gptRows
	out.VATBreakdownGPT = append([]LegacyVATRow{}, gptRows...)

	rec := c.reconciler.Reconcile(out.LineItems)
	out.VATBreakdownCalculated = rec.Breakdown
	out.TotalVATCalculated = rec.TotalVAT
	out.GrandTotalCalculated = rec.GrandTotal
	out.SubtotalCalculated = rec.Subtotal

	out.TotalVAT = copyFloat(doc.Totals.TotalVAT)
	out.TotalVATGPT = copyFloat(doc.Totals.TotalVAT)
	out.GrandTotal = copyFloat(doc.Totals.TotalAmount)
	out.GrandTotalGPT = copyFloat(doc.Totals.TotalAmount)
	if nonZero(doc.Totals.TotalAmount) && nonZero(doc.Totals.TotalVAT) {
		sub := subMoney(*doc.Totals.TotalAmount, *doc.Totals.TotalVAT)
		out.Subtotal = &sub
		out.SubtotalGPT = ptr(sub)
	}

	if len(doc.PaymentLines) > 0 {
		out.PaymentMethod = ptr(doc.PaymentLines[0].Method)
	}

	c.log.Debug("converted to legacy shape",
		"items", len(out.LineItems), "gpt_rates", len(gptRows), "calculated_rates", len(rec.Breakdown))
	return out
}

func toLegacyItems(items []LineItem) []LegacyLineItem {
	out := make([]LegacyLineItem, 0, len(items))
	for _, it := range items {
		out = append(out, LegacyLineItem{
			Name:           it.Description,
			Quantity:       copyFloat(it.Quantity),
			UnitPrice:      copyFloat(it.UnitPrice),
			TotalPrice:     it.GrossAmount,
			VATRate:        copyInt(it.VATRate),
			VATAmount:      copyFloat(it.VATAmount),
			DiscountAmount: it.DiscountAmount,
		})
	}
	return out
}

func addMoney(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Float64()
	return f
}

func subMoney(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Float64()
	return f
}

func nonZero(f *float64) bool {
	return f != nil && *f != 0
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	return ptr(*s)
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	return ptr(*f)
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	return ptr(*i)
}
