// Package export renders labeled prompt tests as CSV or XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fisbench/internal/accounting"
	"fisbench/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the header row shared by both formats.
var columns = []string{
	"Test ID",
	"Receipt ID",
	"Provider",
	"Prompt Version",
	"Schema Version",
	"Label",
	"Error Type",
	"LLM Model",
	"OCR Confidence",
	"OCR Time (ms)",
	"OCR Cost",
	"LLM Time (ms)",
	"LLM Cost",
	"VKN",
	"Company Name",
	"Receipt Date",
	"Line Item Count",
	"Grand Total (LLM)",
	"Grand Total (Calculated)",
	"Total VAT (LLM)",
	"Total VAT (Calculated)",
	"User Notes",
	"Created At",
	"Labeled At",
}

// Columns returns a copy of the header row.
func Columns() []string {
	return append([]string(nil), columns...)
}

// Writer wraps csv.Writer for exporting prompt tests as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteTests converts a batch of prompt tests to CSV rows and writes them.
func (w *Writer) WriteTests(tests []domain.PromptTest) error {
	for i := range tests {
		if err := w.csv.Write(testToRow(&tests[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes BOM, header and every test to out.
func WriteCSV(out io.Writer, tests []domain.PromptTest) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteTests(tests); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// testToRow converts a single prompt test to a row. Accounting columns stay
// empty when the stored accounting data is missing or unreadable.
func testToRow(t *domain.PromptTest) []string {
	row := make([]string, len(columns))

	row[0] = t.ID.String()
	if t.ReceiptID != nil {
		row[1] = t.ReceiptID.String()
	}
	row[2] = string(t.Provider)
	row[3] = strconv.Itoa(t.PromptVersion)
	row[4] = string(t.SchemaVersion)
	if t.Label != nil {
		row[5] = string(*t.Label)
	}
	if t.ErrorType != nil {
		row[6] = string(*t.ErrorType)
	}
	row[7] = deref(t.LLMModel)
	row[8] = formatOptional(t.OCRConfidence, 4)
	row[9] = formatOptional(t.OCRProcessingTimeMs, 0)
	row[10] = formatOptional(t.OCRCost, 6)
	row[11] = formatOptional(t.LLMProcessingTimeMs, 0)
	row[12] = formatOptional(t.LLMCost, 6)
	row[21] = deref(t.UserNotes)
	row[22] = t.CreatedAt.Format(time.RFC3339)
	row[23] = formatTime(t.LabeledAt)

	if len(t.AccountingData) == 0 {
		return row
	}
	var doc accounting.LegacyDocument
	if err := json.Unmarshal(t.AccountingData, &doc); err != nil {
		return row
	}
	row[13] = deref(doc.VKN)
	row[14] = deref(doc.CompanyName)
	row[15] = deref(doc.Date)
	row[16] = strconv.Itoa(len(doc.LineItems))
	row[17] = formatOptional(doc.GrandTotalGPT, 2)
	row[18] = formatMoney(doc.GrandTotalCalculated)
	row[19] = formatOptional(doc.TotalVATGPT, 2)
	row[20] = formatMoney(doc.TotalVATCalculated)
	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptional(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns "{sanitized base}_{YYYY-MM-DD}.{format}".
func BuildFilename(base string, format domain.ExportFormat) string {
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(base), date, format)
}

// ContentType returns the MIME type for format.
func ContentType(format domain.ExportFormat) string {
	if format == domain.ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
