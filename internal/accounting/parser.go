package accounting

import (
	"strings"

	"fisbench/internal/domain"
	"fisbench/internal/logger"
)

// Parser converts one historical LLM JSON shape into the canonical document.
// Parse never fails: missing or malformed optional fields are defaulted.
type Parser interface {
	SchemaVersion() domain.SchemaVersion
	Parse(raw map[string]any) *Document
}

type legacyParser struct {
	log *logger.Logger
}

// NewLegacyParser returns the parser for the flat v1 shape
// (vkn, company_name, line_items, vat_breakdown, ...).
func NewLegacyParser(log *logger.Logger) Parser {
	return &legacyParser{log: log}
}

func (p *legacyParser) SchemaVersion() domain.SchemaVersion { return domain.SchemaV1 }

func (p *legacyParser) Parse(raw map[string]any) *Document {
	doc := EmptyDocument()
	doc.Metadata.Source = stringOr(raw["source"], "")

	doc.Document = DocumentInfo{
		MerchantName: stringPtr(raw["company_name"]),
		MerchantVKN:  stringPtr(raw["vkn"]),
		Date:         stringPtr(raw["date"]),
		ReceiptNo:    stringPtr(raw["receipt_number"]),
		Plate:        stringPtr(raw["plate"]),
	}

	for i, e := range listAt(raw, "line_items") {
		item, ok := e.(map[string]any)
		if !ok {
			p.log.Debug("skipping non-object line item", "index", i)
			continue
		}
		doc.Items = append(doc.Items, LineItem{
			Description: stringOr(item["name"], ""),
			Quantity:    floatPtr(item["quantity"]),
			UnitPrice:   floatPtr(item["unit_price"]),
			GrossAmount: floatOr(item["total_price"], 0),
			VATRate:     intPtr(item["vat_rate"]),
			VATAmount:   floatPtr(item["vat_amount"]),
			ItemType:    DefaultItemType,
		})
	}

	for i, e := range listAt(raw, "vat_breakdown") {
		row, ok := e.(map[string]any)
		if !ok {
			p.log.Debug("skipping non-object vat breakdown row", "index", i)
			continue
		}
		doc.Totals.VATBreakdown = append(doc.Totals.VATBreakdown, VATBreakdown{
			VATRate:   intOr(row["rate"], 0),
			TaxBase:   floatOr(row["base_amount"], 0),
			VATAmount: floatOr(row["vat_amount"], 0),
		})
	}

	doc.Totals.TotalVAT = floatPtr(raw["total_vat"])
	doc.Totals.TotalAmount = floatPtr(raw["grand_total"])

	if method := stringPtr(raw["payment_method"]); method != nil {
		doc.PaymentLines = append(doc.PaymentLines, PaymentLine{
			Method:      strings.ReplaceAll(strings.ToLower(*method), " ", "_"),
			Amount:      doc.Totals.TotalAmount,
			AccountCode: ptr(PaymentAccountCode(*method)),
		})
	}

	doc.Stats.ItemCount = len(doc.Items)
	p.log.Debug("parsed v1 document", "items", len(doc.Items))
	return doc
}

// Uniform chart-of-accounts codes for payment methods.
const (
	AccountCash = "100"
	AccountBank = "102"
	AccountCard = "108"
)

// PaymentAccountCode maps a free-form payment method to its account code by
// case-insensitive keyword match. Unknown methods book to cash.
func PaymentAccountCode(method string) string {
	m := strings.ToUpper(method)
	switch {
	case strings.Contains(m, "NAKİT"), strings.Contains(m, "NAKIT"), strings.Contains(m, "CASH"):
		return AccountCash
	case strings.Contains(m, "KREDİ"), strings.Contains(m, "KREDI"), strings.Contains(m, "CARD"):
		return AccountCard
	case strings.Contains(m, "BANKA"), strings.Contains(m, "EFT"), strings.Contains(m, "TRANSFER"):
		return AccountBank
	default:
		return AccountCash
	}
}

type canonicalParser struct {
	log *logger.Logger
}

// NewCanonicalParser returns the parser for the nested v2 shape. Parsing is an
// idempotent defaulting pass; unknown keys are dropped.
func NewCanonicalParser(log *logger.Logger) Parser {
	return &canonicalParser{log: log}
}

func (p *canonicalParser) SchemaVersion() domain.SchemaVersion { return domain.SchemaV2 }

func (p *canonicalParser) Parse(raw map[string]any) *Document {
	doc := EmptyDocument()

	if md, ok := objectAt(raw, "metadata"); ok {
		doc.Metadata = Metadata{
			Source:          stringOr(md["source"], ""),
			OCRQualityScore: floatOr(md["ocrQualityScore"], 0),
			Classification:  stringOr(md["classification"], DefaultClassification),
			VATTreatment:    stringOr(md["vatTreatment"], VATIncluded),
			Notes:           stringOr(md["notes"], ""),
		}
	} else {
		p.log.Info("metadata missing, using defaults")
	}

	if d, ok := objectAt(raw, "document"); ok {
		doc.Document = DocumentInfo{
			MerchantName: stringPtr(d["merchantName"]),
			MerchantVKN:  stringPtr(d["merchantVKN"]),
			MerchantTCKN: stringPtr(d["merchantTCKN"]),
			Address:      stringPtr(d["address"]),
			Date:         stringPtr(d["date"]),
			Time:         stringPtr(d["time"]),
			ReceiptNo:    stringPtr(d["receiptNo"]),
			Plate:        stringPtr(d["plate"]),
			InvoiceNo:    stringPtr(d["invoiceNo"]),
			MersisNo:     stringPtr(d["mersisNo"]),
		}
	}

	for i, e := range listAt(raw, "items") {
		item, ok := e.(map[string]any)
		if !ok {
			p.log.Debug("skipping non-object item", "index", i)
			continue
		}
		doc.Items = append(doc.Items, LineItem{
			Description:    stringOr(item["description"], ""),
			Quantity:       numberOrDefault(item, "quantity", 0),
			UnitPrice:      numberOrDefault(item, "unitPrice", 0),
			GrossAmount:    floatOr(item["grossAmount"], 0),
			NetAmount:      numberOrDefault(item, "netAmount", 0),
			VATRate:        intOrDefault(item, "vatRate", 0),
			VATAmount:      numberOrDefault(item, "vatAmount", 0),
			DiscountAmount: floatOr(item["discountAmount"], 0),
			AccountCode:    stringPtr(item["accountCode"]),
			ItemType:       stringOr(item["itemType"], DefaultItemType),
			Confidence:     floatOr(item["confidence"], 0),
		})
	}

	for i, e := range listAt(raw, "extraTaxes") {
		t, ok := e.(map[string]any)
		if !ok {
			p.log.Debug("skipping non-object extra tax", "index", i)
			continue
		}
		doc.ExtraTaxes = append(doc.ExtraTaxes, ExtraTax{
			Type:   stringOr(t["type"], ""),
			Amount: floatOr(t["amount"], 0),
		})
	}

	if t, ok := objectAt(raw, "totals"); ok {
		for i, e := range listAt(t, "vatBreakdown") {
			row, ok := e.(map[string]any)
			if !ok {
				p.log.Debug("skipping non-object vat breakdown row", "index", i)
				continue
			}
			doc.Totals.VATBreakdown = append(doc.Totals.VATBreakdown, VATBreakdown{
				VATRate:   intOr(row["vatRate"], 0),
				TaxBase:   floatOr(row["taxBase"], 0),
				VATAmount: floatOr(row["vatAmount"], 0),
			})
		}
		doc.Totals.TotalVAT = floatPtr(t["totalVat"])
		doc.Totals.TotalAmount = floatPtr(t["totalAmount"])
		doc.Totals.PaymentAccountCode = stringPtr(t["paymentAccountCode"])
		doc.Totals.Currency = stringOr(t["currency"], DefaultCurrency)
	} else {
		p.log.Info("totals missing, using defaults")
	}

	for i, e := range listAt(raw, "paymentLines") {
		pl, ok := e.(map[string]any)
		if !ok {
			p.log.Debug("skipping non-object payment line", "index", i)
			continue
		}
		doc.PaymentLines = append(doc.PaymentLines, PaymentLine{
			Method:      stringOr(pl["method"], ""),
			Amount:      floatPtr(pl["amount"]),
			AccountCode: stringPtr(pl["accountCode"]),
		})
	}

	for i, e := range listAt(raw, "entryLines") {
		el, ok := e.(map[string]any)
		if !ok {
			p.log.Debug("skipping non-object entry line", "index", i)
			continue
		}
		doc.EntryLines = append(doc.EntryLines, EntryLine{
			AccountCode: stringOr(el["accountCode"], ""),
			Debit:       floatOr(el["debit"], 0),
			Credit:      floatOr(el["credit"], 0),
			Description: stringOr(el["description"], ""),
		})
	}

	doc.UnprocessedLines = stringList(raw["unprocessedLines"])
	doc.ValidationFlags = stringList(raw["validationFlags"])
	doc.ErrorFlags = stringList(raw["errorFlags"])

	if s, ok := objectAt(raw, "stats"); ok {
		doc.Stats.ParsedLines = intOr(s["parsedLines"], 0)
		doc.Stats.UnprocessedCount = intOr(s["unprocessedCount"], 0)
	}
	doc.Stats.ItemCount = len(doc.Items)

	p.log.Debug("parsed v2 document", "items", len(doc.Items))
	return doc
}
