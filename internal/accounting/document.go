// Package accounting turns LLM-emitted receipt JSON into the canonical
// nested accounting document, reconciles its VAT arithmetic, and projects it
// back onto the flat legacy shape older consumers read.
package accounting

// Defaults applied when a field is absent from LLM output.
const (
	DefaultCurrency       = "TRY"
	DefaultClassification = "unknown"
	DefaultItemType       = "unknown"
	VATIncluded           = "VAT included"
	VATExcluded           = "VAT excluded"
)

// Document is the canonical nested accounting document. Slices are never nil
// after parsing so they encode as [] rather than null.
type Document struct {
	Metadata         Metadata      `json:"metadata"`
	Document         DocumentInfo  `json:"document"`
	Items            []LineItem    `json:"items"`
	ExtraTaxes       []ExtraTax    `json:"extraTaxes"`
	Totals           Totals        `json:"totals"`
	PaymentLines     []PaymentLine `json:"paymentLines"`
	EntryLines       []EntryLine   `json:"entryLines"`
	UnprocessedLines []string      `json:"unprocessedLines"`
	ValidationFlags  []string      `json:"validationFlags"`
	ErrorFlags       []string      `json:"errorFlags"`
	Stats            Stats         `json:"stats"`
}

type Metadata struct {
	Source          string  `json:"source"`
	OCRQualityScore float64 `json:"ocrQualityScore"`
	Classification  string  `json:"classification"`
	VATTreatment    string  `json:"vatTreatment"`
	Notes           string  `json:"notes"`
}

type DocumentInfo struct {
	MerchantName *string `json:"merchantName"`
	MerchantVKN  *string `json:"merchantVKN"`
	MerchantTCKN *string `json:"merchantTCKN"`
	Address      *string `json:"address"`
	Date         *string `json:"date"`
	Time         *string `json:"time"`
	ReceiptNo    *string `json:"receiptNo"`
	Plate        *string `json:"plate"`
	InvoiceNo    *string `json:"invoiceNo"`
	MersisNo     *string `json:"mersisNo"`
}

// LineItem is one purchased product or service. GrossAmount is VAT-inclusive.
type LineItem struct {
	Description    string   `json:"description"`
	Quantity       *float64 `json:"quantity"`
	UnitPrice      *float64 `json:"unitPrice"`
	GrossAmount    float64  `json:"grossAmount"`
	NetAmount      *float64 `json:"netAmount"`
	VATRate        *int     `json:"vatRate"`
	VATAmount      *float64 `json:"vatAmount"`
	DiscountAmount float64  `json:"discountAmount"`
	AccountCode    *string  `json:"accountCode"`
	ItemType       string   `json:"itemType"`
	Confidence     float64  `json:"confidence"`
}

type ExtraTax struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

type VATBreakdown struct {
	VATRate   int     `json:"vatRate"`
	TaxBase   float64 `json:"taxBase"`
	VATAmount float64 `json:"vatAmount"`
}

type Totals struct {
	VATBreakdown       []VATBreakdown `json:"vatBreakdown"`
	TotalVAT           *float64       `json:"totalVat"`
	TotalAmount        *float64       `json:"totalAmount"`
	PaymentAccountCode *string        `json:"paymentAccountCode"`
	Currency           string         `json:"currency"`
}

type PaymentLine struct {
	Method      string   `json:"method"`
	Amount      *float64 `json:"amount"`
	AccountCode *string  `json:"accountCode"`
}

// EntryLine is one double-entry bookkeeping row.
type EntryLine struct {
	AccountCode string  `json:"accountCode"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
	Description string  `json:"description"`
}

type Stats struct {
	ItemCount        int `json:"itemCount"`
	ParsedLines      int `json:"parsedLines"`
	UnprocessedCount int `json:"unprocessedCount"`
}

// EmptyDocument returns a fully defaulted document with no content.
func EmptyDocument() *Document {
	return &Document{
		Metadata: Metadata{
			Classification: DefaultClassification,
			VATTreatment:   VATIncluded,
		},
		Items:      []LineItem{},
		ExtraTaxes: []ExtraTax{},
		Totals: Totals{
			VATBreakdown: []VATBreakdown{},
			Currency:     DefaultCurrency,
		},
		PaymentLines:     []PaymentLine{},
		EntryLines:       []EntryLine{},
		UnprocessedLines: []string{},
		ValidationFlags:  []string{},
		ErrorFlags:       []string{},
	}
}

// AddValidationFlag appends flag unless it is already present.
func (d *Document) AddValidationFlag(flag string) {
	d.ValidationFlags = appendUnique(d.ValidationFlags, flag)
}

// AddErrorFlag appends flag unless it is already present.
func (d *Document) AddErrorFlag(flag string) {
	d.ErrorFlags = appendUnique(d.ErrorFlags, flag)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
