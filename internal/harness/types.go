package harness

// CaseResult is the outcome of one conversion case.
type CaseResult struct {
	Name   string         `json:"name"`
	Pass   bool           `json:"pass"`
	Errors []string       `json:"errors,omitempty"`
	Output map[string]any `json:"output"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every case met its expectations.
	Pass bool `json:"pass"`

	// Cases holds per-case results in scenario order.
	Cases []CaseResult `json:"cases"`

	// Errors contains every expectation failure, prefixed with its case name.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCase records a case result, folding its failures into the overall result.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	for _, e := range c.Errors {
		r.AddError(c.Name + ": " + e)
	}
}
