package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"fisbench/internal/accounting"
)

// Rule keys for identifier and date format checks.
const (
	FlagInvalidVKN        = "INVALID_VKN"
	FlagInvalidTCKN       = "INVALID_TCKN"
	FlagInvalidDateFormat = "INVALID_DATE_FORMAT"
)

var (
	vknPattern  = regexp.MustCompile(`^\d{10}$`)
	tcknPattern = regexp.MustCompile(`^[1-9]\d{10}$`)
)

// Receipt dates as printed by Turkish fiscal printers, plus ISO.
var dateLayouts = []string{"02.01.2006", "02/01/2006", "02-01-2006", "2006-01-02"}

// formatValidator checks a single document field.
type formatValidator struct {
	ruleKey   string
	ruleName  string
	fieldPath string
	value     func(*accounting.Document) *string
	valid     func(string) bool
}

func (v *formatValidator) RuleKey() string    { return v.ruleKey }
func (v *formatValidator) RuleName() string   { return v.ruleName }
func (v *formatValidator) Severity() Severity { return SeverityError }

func (v *formatValidator) Validate(_ context.Context, doc *accounting.Document) []Result {
	p := v.value(doc)
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	value := strings.TrimSpace(*p)
	passed := v.valid(value)
	msg := fmt.Sprintf("%s: %s matches expected format", v.ruleName, v.fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s: %s has invalid value %q", v.ruleName, v.fieldPath, value)
	}
	return []Result{{
		RuleKey: v.ruleKey, Passed: passed, FieldPath: v.fieldPath,
		ActualValue: value, Message: msg,
	}}
}

// FormatValidators returns the identifier and date rules. Empty fields pass.
func FormatValidators() []Validator {
	return []Validator{
		&formatValidator{
			ruleKey: FlagInvalidVKN, ruleName: "Merchant VKN", fieldPath: "document.merchantVKN",
			value: func(d *accounting.Document) *string { return d.Document.MerchantVKN },
			valid: ValidVKN,
		},
		&formatValidator{
			ruleKey: FlagInvalidTCKN, ruleName: "Merchant TCKN", fieldPath: "document.merchantTCKN",
			value: func(d *accounting.Document) *string { return d.Document.MerchantTCKN },
			valid: ValidTCKN,
		},
		&formatValidator{
			ruleKey: FlagInvalidDateFormat, ruleName: "Receipt date", fieldPath: "document.date",
			value: func(d *accounting.Document) *string { return d.Document.Date },
			valid: ValidDate,
		},
	}
}

// ValidVKN reports whether s is a 10-digit tax number with a valid check digit.
func ValidVKN(s string) bool {
	if !vknPattern.MatchString(s) {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		tmp := (int(s[i]-'0') + 9 - i) % 10
		v := (tmp * (1 << (9 - i))) % 9
		if tmp != 0 && v == 0 {
			v = 9
		}
		sum += v
	}
	return (10-sum%10)%10 == int(s[9]-'0')
}

// ValidTCKN reports whether s is an 11-digit national id with valid check digits.
func ValidTCKN(s string) bool {
	if !tcknPattern.MatchString(s) {
		return false
	}
	var d [11]int
	for i := range d {
		d[i] = int(s[i] - '0')
	}
	odd := d[0] + d[2] + d[4] + d[6] + d[8]
	even := d[1] + d[3] + d[5] + d[7]
	if ((odd*7-even)%10+10)%10 != d[9] {
		return false
	}
	sum := 0
	for i := 0; i < 10; i++ {
		sum += d[i]
	}
	return sum%10 == d[10]
}

// ValidDate reports whether s parses under one of the accepted receipt layouts.
func ValidDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
