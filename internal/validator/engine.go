package validator

import (
	"context"

	"fisbench/internal/accounting"
	"fisbench/internal/logger"
)

// Report is the outcome of one validation run.
type Report struct {
	Results []Result                `json:"results"`
	Fields  map[string]*FieldStatus `json:"fields"`
}

// Failed returns the results that did not pass.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

// Engine runs every registered rule over a document.
type Engine struct {
	registry *Registry
	log      *logger.Logger
}

// NewEngine creates a new validation engine.
func NewEngine(registry *Registry, log *logger.Logger) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Engine{registry: registry, log: log}
}

// Apply validates doc and appends the key of every failed rule to its flag
// lists: warnings go to validationFlags, errors to errorFlags. It never
// rejects the document.
func (e *Engine) Apply(ctx context.Context, doc *accounting.Document) *Report {
	report := &Report{Results: []Result{}}
	if doc == nil {
		report.Fields = map[string]*FieldStatus{}
		return report
	}

	severities := make(map[string]Severity)
	for _, v := range e.registry.All() {
		severities[v.RuleKey()] = v.Severity()
		for _, res := range v.Validate(ctx, doc) {
			if res.RuleKey == "" {
				res.RuleKey = v.RuleKey()
			}
			report.Results = append(report.Results, res)
			if res.Passed {
				continue
			}
			if v.Severity() == SeverityError {
				doc.AddErrorFlag(v.RuleKey())
			} else {
				doc.AddValidationFlag(v.RuleKey())
			}
			e.log.Warn("receipt validation failed",
				"rule", v.RuleKey(), "field", res.FieldPath, "message", res.Message)
		}
	}

	report.Fields = ComputeFieldStatuses(report.Results, severities)
	return report
}
