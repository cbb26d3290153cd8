package types

// IssueKind categorizes a data-quality finding on a single field.
type IssueKind string

const (
	// IssueMissing means the field is absent entirely.
	IssueMissing IssueKind = "missing"
	// IssueInsufficient means the field is present but fails a semantic
	// adequacy check (landmark-only address, generic commodity, time
	// without date).
	IssueInsufficient IssueKind = "insufficient"
	// IssueInvalid means the field is present and adequate in kind but
	// fails a format or range rule.
	IssueInvalid IssueKind = "invalid"
)

// ValidationIssue is one data-quality finding. Issues are never mutated
// after creation; the same field may appear more than once in a pass (the
// international-crossing rule intentionally re-flags commodity).
type ValidationIssue struct {
	Field        string    `json:"field"`
	CurrentValue string    `json:"currentValue,omitempty"`
	Kind         IssueKind `json:"kind"`
	Reason       string    `json:"reason"`
}

// Blocking reports whether the issue prevents completeness when it targets
// a required field.
func (i ValidationIssue) Blocking() bool {
	return i.Kind == IssueMissing || i.Kind == IssueInsufficient || i.Kind == IssueInvalid
}

// ValidationReport is the sole output contract of a validation pass.
// Downstream routing (load creation vs. clarification email) is a pure
// function of this value. Issue order is stable: syntactic issues in
// required-field declaration order, then semantic issues in rule order.
type ValidationReport struct {
	Category   FreightCategory   `json:"category"`
	IsComplete bool              `json:"isComplete"`
	Issues     []ValidationIssue `json:"issues"`
	Warnings   []string          `json:"warnings"`
}

// IssuesForField returns every issue recorded against the named field, in
// emission order.
func (r *ValidationReport) IssuesForField(field string) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Field == field {
			out = append(out, issue)
		}
	}
	return out
}
