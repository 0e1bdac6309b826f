package accounting_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisbench/internal/accounting"
	"fisbench/internal/logger"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestLegacyParser_MapsFlatFields(t *testing.T) {
	p := accounting.NewLegacyParser(logger.Nop())
	raw := decode(t, `{
		"source": "paddle_ocr",
		"vkn": "1234567890",
		"company_name": "ABC Petrol A.Ş.",
		"plate": "34ABC123",
		"date": "14/09/2023",
		"receipt_number": "0040",
		"line_items": [
			{"name": "Motorin", "quantity": 50.5, "unit_price": 34.5, "total_price": 1742.25, "vat_rate": 20, "vat_amount": 290.38},
			{"name": "Su"},
			"garbage"
		],
		"vat_breakdown": [{"rate": 20, "base_amount": 1451.87, "vat_amount": 290.38}],
		"total_vat": 290.38,
		"grand_total": 1742.25,
		"payment_method": "Kredi Kartı",
		"stats": {"itemCount": 99}
	}`)

	doc := p.Parse(raw)

	assert.Equal(t, "paddle_ocr", doc.Metadata.Source)
	assert.Equal(t, "unknown", doc.Metadata.Classification)
	assert.Equal(t, accounting.VATIncluded, doc.Metadata.VATTreatment)
	assert.Equal(t, "1234567890", *doc.Document.MerchantVKN)
	assert.Equal(t, "ABC Petrol A.Ş.", *doc.Document.MerchantName)
	assert.Equal(t, "0040", *doc.Document.ReceiptNo)
	assert.Nil(t, doc.Document.MerchantTCKN)

	require.Len(t, doc.Items, 2)
	assert.Equal(t, "Motorin", doc.Items[0].Description)
	assert.Equal(t, 1742.25, doc.Items[0].GrossAmount)
	assert.Equal(t, 20, *doc.Items[0].VATRate)
	assert.Nil(t, doc.Items[0].NetAmount)
	assert.Equal(t, "unknown", doc.Items[0].ItemType)
	assert.Zero(t, doc.Items[0].DiscountAmount)
	assert.Zero(t, doc.Items[1].GrossAmount)
	assert.Nil(t, doc.Items[1].Quantity)

	require.Len(t, doc.Totals.VATBreakdown, 1)
	assert.Equal(t, 1451.87, doc.Totals.VATBreakdown[0].TaxBase)
	assert.Equal(t, 1742.25, *doc.Totals.TotalAmount)
	assert.Equal(t, "TRY", doc.Totals.Currency)

	require.Len(t, doc.PaymentLines, 1)
	assert.Equal(t, "kredi_kartı", doc.PaymentLines[0].Method)
	assert.Equal(t, "108", *doc.PaymentLines[0].AccountCode)
	assert.Equal(t, 1742.25, *doc.PaymentLines[0].Amount)

	assert.Equal(t, 2, doc.Stats.ItemCount)
}

func TestLegacyParser_MissingOptionalKeys(t *testing.T) {
	doc := accounting.NewLegacyParser(logger.Nop()).Parse(map[string]any{})

	assert.NotNil(t, doc.Items)
	assert.Empty(t, doc.Items)
	assert.Empty(t, doc.PaymentLines)
	assert.Nil(t, doc.Totals.TotalAmount)
	assert.Zero(t, doc.Stats.ItemCount)
}

func TestPaymentAccountCode(t *testing.T) {
	tests := map[string]string{
		"NAKİT":         "100",
		"nakit":         "100",
		"Cash":          "100",
		"Kredi Kartı":   "108",
		"KREDİ KARTI":   "108",
		"credit card":   "108",
		"Banka Havale":  "102",
		"EFT":           "102",
		"wire transfer": "102",
		"yemek çeki":    "100",
	}
	for method, want := range tests {
		assert.Equal(t, want, accounting.PaymentAccountCode(method), method)
	}
}

func TestCanonicalParser_DefaultsMissingSections(t *testing.T) {
	p := accounting.NewCanonicalParser(logger.Nop())

	doc := p.Parse(map[string]any{"document": map[string]any{"merchantName": "Market"}})

	assert.NotNil(t, doc.Items)
	assert.Empty(t, doc.Items)
	assert.NotNil(t, doc.Totals.VATBreakdown)
	assert.Empty(t, doc.Totals.VATBreakdown)
	assert.Equal(t, "TRY", doc.Totals.Currency)
	assert.Equal(t, "unknown", doc.Metadata.Classification)
	assert.Equal(t, accounting.VATIncluded, doc.Metadata.VATTreatment)

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))
	for _, key := range []string{"metadata", "document", "items", "extraTaxes", "totals", "paymentLines",
		"entryLines", "unprocessedLines", "validationFlags", "errorFlags", "stats"} {
		assert.NotNil(t, generic[key], key)
	}
	totals := generic["totals"].(map[string]any)
	assert.Equal(t, []any{}, totals["vatBreakdown"])
	assert.Equal(t, []any{}, generic["items"])
}

func TestCanonicalParser_FillsItemDefaultsAndCoerces(t *testing.T) {
	p := accounting.NewCanonicalParser(logger.Nop())
	raw := decode(t, `{
		"metadata": {"source": "google_docai", "ocrQualityScore": "0,82"},
		"document": {"merchantVKN": 1234567890, "date": "N/A", "address": ""},
		"items": [
			{"description": "Kahve", "grossAmount": "1.234,56", "vatRate": "%10", "quantity": null},
			{},
			42
		],
		"totals": {
			"vatBreakdown": [{"vatRate": 10}, {"taxBase": "100.5", "vatAmount": 10.05}],
			"totalAmount": "1234.56",
			"currency": null
		},
		"paymentLines": [{"method": "cash", "amount": 10}],
		"validationFlags": ["ROUNDING_APPLIED", 3],
		"stats": {"itemCount": 40, "parsedLines": 12},
		"extra": {"ignored": true}
	}`)

	doc := p.Parse(raw)

	assert.Equal(t, 0.82, doc.Metadata.OCRQualityScore)
	assert.Equal(t, "1234567890", *doc.Document.MerchantVKN)
	assert.Nil(t, doc.Document.Date)
	assert.Nil(t, doc.Document.Address)

	require.Len(t, doc.Items, 2)
	first := doc.Items[0]
	assert.Equal(t, 1234.56, first.GrossAmount)
	assert.Equal(t, 10, *first.VATRate)
	assert.Nil(t, first.Quantity, "explicit null stays null")
	assert.Equal(t, 0.0, *first.UnitPrice, "absent numeric defaults to zero")
	assert.Equal(t, "unknown", first.ItemType)
	assert.Nil(t, first.AccountCode)

	empty := doc.Items[1]
	assert.Equal(t, "", empty.Description)
	assert.Equal(t, 0, *empty.VATRate)
	assert.Equal(t, 0.0, *empty.NetAmount)

	require.Len(t, doc.Totals.VATBreakdown, 2)
	assert.Equal(t, 10, doc.Totals.VATBreakdown[0].VATRate)
	assert.Zero(t, doc.Totals.VATBreakdown[0].TaxBase)
	assert.Equal(t, 100.5, doc.Totals.VATBreakdown[1].TaxBase)
	assert.Equal(t, 1234.56, *doc.Totals.TotalAmount)
	assert.Nil(t, doc.Totals.TotalVAT)
	assert.Equal(t, "TRY", doc.Totals.Currency)

	assert.Equal(t, []string{"ROUNDING_APPLIED", "3"}, doc.ValidationFlags)
	assert.Equal(t, 2, doc.Stats.ItemCount, "item count is recomputed")
	assert.Equal(t, 12, doc.Stats.ParsedLines)
}

func TestCanonicalParser_Idempotent(t *testing.T) {
	p := accounting.NewCanonicalParser(logger.Nop())
	raw := decode(t, `{"items": [{"description": "Çay", "grossAmount": 20, "vatRate": 10}], "totals": {"totalAmount": 20}}`)

	first := p.Parse(raw)
	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	second := p.Parse(decode(t, string(encoded)))

	assert.Equal(t, first, second)
}
