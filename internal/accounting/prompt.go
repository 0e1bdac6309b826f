package accounting

import (
	"encoding/json"
	"fmt"
	"strings"

	"fisbench/internal/domain"
)

// GenericInstructions is used for providers without dedicated instructions.
const GenericInstructions = "OCR metnini dikkatli analiz et ve yapılandırılmış muhasebe verisi çıkar."

// DefaultInstructions holds the built-in provider-specific guidance that seeds
// the prompt store.
var DefaultInstructions = map[domain.ProviderID]string{
	domain.ProviderPaddleOCR: `KRİTİK - PaddleOCR ÖZEL TALİMATLAR:
Bu OCR çıktısı yerel bir açık kaynak model tarafından üretildi ve yüksek hata oranı içerir.

BİLİNEN SORUNLAR:
1. Türkçe karakter hataları: ı→i, İ→I, ş→s, ğ→g, ü→u, ö→o, ç→c ("Icecek" aslında "İçecek").
2. Satır tekrarları: aynı isim ve aynı fiyat tek satır yapılmalı.
3. Sayı okuma hataları: 0/O, 5/S, 8/B, 1/I karışmaları, virgül ve nokta kayıpları.
4. Satır sırası karışık olabilir; TOPLAM, VKN ve TARİH bilgilerini dikkatle ara.

STRATEJİN:
- Yakın isimleri birleştir, Türkçe kelime bilgisiyle düzelt.
- Kalem toplamı ile genel toplamı karşılaştır (±%2).
- Anlamsız değerleri null bırak.

ÖNCELİK: VKN, toplam tutar, tarih, KDV oranları, ürün isimleri.`,

	domain.ProviderOpenAIVision: `YÜKSEK KALİTE - OpenAI Vision ÖZEL TALİMATLAR:
Bu OCR çıktısı sistemin en doğru modeli tarafından üretildi.

GÜÇLÜ YÖNLER: bağlam anlama, doğru Türkçe karakterler, sayı/tarih/VKN doğruluğu, tablo ve liste yapılarını tanıma.

STRATEJİN:
- Çıktıya güvenerek parse et, minimal düzeltme yap.
- "Toplam", "Genel Toplam", "Ödenecek" gibi ifadelerden genel toplamı bağlama göre bul.
- KDV oranları açıkça yazılmışsa kesin çıkar, yoksa tutar bazlı hesapla.

DİKKAT: Bu model de hata yapabilir; kalem toplamı ile genel toplamı mutlaka karşılaştır.`,

	domain.ProviderGoogleDocAI: `PROFESYONEL KALİTE - Google Document AI ÖZEL TALİMATLAR:
Bu OCR çıktısı yapı ve tablo tanımada güçlü bir servis tarafından üretildi.

ÖZEL FORMAT: Çıkarılmış entity'ler (VKN, tarih, tutar) ve tablolar ayrıca verilebilir.

STRATEJİN:
- Yapısal veri varsa önce ona bak; VKN için tax_id veya vkn entity'lerini kullan.
- Tablolarda sütun başlıklarına göre (Ürün, Miktar, Fiyat, Toplam) parse et.
- Düşük güvenli entity'lere şüpheyle yaklaş; bulunamayanları ham metinden çıkar.

HESAPLAMA: genel toplam = ara toplam + toplam KDV eşitliğini kontrol et.`,

	domain.ProviderAmazonTextract: `HIZLI ve GÜVENİLİR - Amazon Textract ÖZEL TALİMATLAR:
Bu OCR çıktısı satır bazlı, minimal yapıda metin içerir.

STRATEJİN:
- Metni satır satır işle; VKN (10 hane), tarih ve tutar desenlerine odaklan.
- "TOPLAM", "KDV", "ARA TOPLAM", "VKN" anahtar kelimelerini ara.
- "Motorin 50.5 Lt 34.50 1742.25" gibi satırlarda ad, miktar, birim fiyat ve toplamı ayır.

DİKKAT: Türkçe karakter desteği sınırlıdır; satırlar eksik veya karışık olabilir.`,
}

// InstructionsFor returns the built-in instructions for provider.
func InstructionsFor(provider domain.ProviderID) string {
	if s, ok := DefaultInstructions[provider]; ok {
		return s
	}
	return GenericInstructions
}

// SystemPrompt returns the system message sent with every normalization call.
func SystemPrompt(provider domain.ProviderID) string {
	return fmt.Sprintf(`Sen elit seviye bir Türk muhasebe ve finansal analiz uzmanısın.

GÖREVİN:
1. OCR metnini dikkatlice oku (kaynak: %s).
2. VKN, firma, tarih, ürünler ve tutarları çıkar.
3. Her KDV oranı için ayrı döküm oluştur.
4. Matematiksel tutarlılığı kontrol et.
5. Belirtilen şemaya uygun JSON döndür.

KRİTİK KURALLAR:
- Sayısal değerler number tipinde olmalı ("123.45" yanlış, 123.45 doğru).
- Bulunamayan değerler için null kullan, boş string kullanma.
- Tutarlar TL cinsinden ondalık sayı olmalı.
- Kullanıcı mesajındaki modele özel talimatlar genel kurallardan önceliklidir.`, provider)
}

// PromptInput is everything needed to build the user message for one
// provider's OCR output.
type PromptInput struct {
	Provider      domain.ProviderID
	Instructions  string
	SchemaVersion domain.SchemaVersion
	Hints         json.RawMessage
	OCRText       string
}

// BuildUserPrompt assembles provider instructions, structured OCR hints, the
// full OCR text and the output schema matching the prompt's schema version.
func BuildUserPrompt(in PromptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FİŞ ANALİZİ GÖREVİ\n\nOCR KAYNAK: %s\n\n", in.Provider)

	instructions := strings.TrimSpace(in.Instructions)
	if instructions == "" {
		instructions = InstructionsFor(in.Provider)
	}
	b.WriteString(instructions)
	b.WriteString("\n\n")

	if hints := compactHints(in.Hints); hints != "" {
		b.WriteString("ÇIKARILMIŞ YAPISAL VERİ (OCR servisi tarafından otomatik algılandı):\n")
		b.WriteString(hints)
		b.WriteString("\nTarih, tutar ve firma adı için öncelikle bu değerlere bak.\n\n")
	}

	b.WriteString("OCR METNİ:\n")
	b.WriteString(in.OCRText)
	b.WriteString("\n\nZORUNLU JSON ŞEMASI:\n")
	if in.SchemaVersion == domain.SchemaV1 {
		b.WriteString(schemaV1)
	} else {
		b.WriteString(schemaV2)
	}
	b.WriteString("\n\n")
	b.WriteString(outputRules)
	return b.String()
}

func compactHints(h json.RawMessage) string {
	s := strings.TrimSpace(string(h))
	if s == "" || s == "null" || s == "{}" || s == "[]" {
		return ""
	}
	return s
}

const schemaV1 = `{
  "vkn": "string | null",
  "company_name": "string | null",
  "plate": "string | null",
  "date": "DD/MM/YYYY | null",
  "receipt_number": "string | null",
  "line_items": [
    {"name": "string", "quantity": number, "unit_price": number, "total_price": number, "vat_rate": integer, "vat_amount": number}
  ],
  "vat_breakdown": [
    {"rate": integer, "base_amount": number, "vat_amount": number}
  ],
  "total_vat": number,
  "grand_total": number,
  "payment_method": "string | null"
}`

const schemaV2 = `{
  "metadata": {"source": "string", "ocrQualityScore": number, "classification": "string", "vatTreatment": "VAT included | VAT excluded", "notes": "string"},
  "document": {"merchantName": "string | null", "merchantVKN": "string | null", "merchantTCKN": "string | null", "address": "string | null", "date": "DD/MM/YYYY | null", "time": "HH:MM | null", "receiptNo": "string | null", "plate": "string | null", "invoiceNo": "string | null", "mersisNo": "string | null"},
  "items": [
    {"description": "string", "quantity": number, "unitPrice": number, "grossAmount": number, "netAmount": number, "vatRate": integer, "vatAmount": number, "discountAmount": number, "accountCode": "string", "itemType": "string", "confidence": number}
  ],
  "extraTaxes": [{"type": "string", "amount": number}],
  "totals": {"vatBreakdown": [{"vatRate": integer, "taxBase": number, "vatAmount": number}], "totalVat": number, "totalAmount": number, "paymentAccountCode": "string", "currency": "TRY"},
  "paymentLines": [{"method": "string", "amount": number, "accountCode": "100 | 102 | 108"}],
  "entryLines": [{"accountCode": "string", "debit": number, "credit": number, "description": "string"}],
  "unprocessedLines": ["string"],
  "validationFlags": ["string"],
  "errorFlags": ["string"],
  "stats": {"itemCount": integer, "parsedLines": integer, "unprocessedCount": integer}
}`

const outputRules = `KURALLAR:
- Diziler boş olabilir ([]) ama asla null olamaz.
- Her kalem: toplam ≈ birim fiyat × miktar; indirim varsa discountAmount = birim fiyat × miktar − toplam.
- KDV dahil tutardan KDV: tutar × oran / (100 + oran).
- Tarih DD/MM/YYYY, VKN 10 haneli ve boşluksuz.
- Sadece saf JSON döndür: açıklama ve Markdown kod bloğu kullanma.`
