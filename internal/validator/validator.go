// Package validator runs consistency and format rules over a canonical
// receipt document and records failures as document flags.
package validator

import (
	"context"

	"fisbench/internal/accounting"
)

// Severity decides which flag list a failed rule lands in.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Result is the outcome of one rule check at one field path.
type Result struct {
	RuleKey       string `json:"rule_key"`
	Passed        bool   `json:"passed"`
	FieldPath     string `json:"field_path"`
	ExpectedValue string `json:"expected_value,omitempty"`
	ActualValue   string `json:"actual_value,omitempty"`
	Message       string `json:"message"`
}

// Validator is the interface for a single built-in validation rule. The
// rule key doubles as the flag written to the document on failure.
type Validator interface {
	Validate(ctx context.Context, doc *accounting.Document) []Result
	RuleKey() string
	RuleName() string
	Severity() Severity
}
