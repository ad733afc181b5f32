package core

// CompileResult is the outcome of one compile. Code is empty whenever
// Errors is non-empty.
type CompileResult struct {
	Code     string           `json:"code"`
	Errors   []CompileError   `json:"errors"`
	Warnings []CompileWarning `json:"warnings"`
}

// HasErrors reports whether the compile failed.
func (r *CompileResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Diagnostics returns errors followed by warnings.
func (r *CompileResult) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, 0, len(r.Errors)+len(r.Warnings))
	for i := range r.Errors {
		out = append(out, r.Errors[i])
	}
	for i := range r.Warnings {
		out = append(out, r.Warnings[i])
	}
	return out
}

// Diagnostic is either a CompileError or a CompileWarning.
type Diagnostic interface {
	Severity() Severity
	Text() string
	Location() (line, column int)
}

// CompileError describes a failed compile.
type CompileError struct {
	Message       string `json:"message"`
	Line          int    `json:"line"`
	Column        int    `json:"column"`
	SourceSnippet string `json:"source_snippet,omitempty"`
}

// Severity implements Diagnostic.
func (e CompileError) Severity() Severity { return SeverityError }

// Text implements Diagnostic.
func (e CompileError) Text() string { return e.Message }

// Location implements Diagnostic.
func (e CompileError) Location() (int, int) { return e.Line, e.Column }

// CompileWarning describes a problem that did not stop compilation.
type CompileWarning struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	// Code identifies the warning kind, e.g. "unused-variable"
	Code string `json:"code"`
}

// Severity implements Diagnostic.
func (w CompileWarning) Severity() Severity { return SeverityWarning }

// Text implements Diagnostic.
func (w CompileWarning) Text() string { return w.Message }

// Location implements Diagnostic.
func (w CompileWarning) Location() (int, int) { return w.Line, w.Column }
