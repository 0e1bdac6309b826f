package validator

// Field validation states.
const (
	FieldValid   = "valid"
	FieldInvalid = "invalid"
	FieldUnsure  = "unsure"
)

// FieldStatus represents the computed validation state for a single field path.
type FieldStatus struct {
	Status   string   `json:"status"`
	Messages []string `json:"messages"`
}

// ComputeFieldStatuses derives per-field statuses from rule results. A failed
// error-severity rule makes the field invalid; a failed warning makes it
// unsure unless something already marked it invalid.
func ComputeFieldStatuses(results []Result, severities map[string]Severity) map[string]*FieldStatus {
	statuses := make(map[string]*FieldStatus)
	for _, r := range results {
		fs, ok := statuses[r.FieldPath]
		if !ok {
			fs = &FieldStatus{Status: FieldValid, Messages: []string{}}
			statuses[r.FieldPath] = fs
		}
		if r.Passed {
			continue
		}
		if severities[r.RuleKey] == SeverityError {
			fs.Status = FieldInvalid
		} else if fs.Status != FieldInvalid {
			fs.Status = FieldUnsure
		}
		fs.Messages = append(fs.Messages, r.Message)
	}
	return statuses
}
