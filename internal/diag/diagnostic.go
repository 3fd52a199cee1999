package diag

import (
	"github.com/bsl-gradual/bsl-gradual/internal/ast"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	CodeArityMismatch          Code = "ARITY_MISMATCH"
	CodeUseBeforeDeclaration   Code = "USE_BEFORE_DECLARATION"
	CodeIncompatibleAssignment Code = "INCOMPATIBLE_ASSIGNMENT"
	CodeOperandTypeMismatch    Code = "OPERAND_TYPE_MISMATCH"
	CodeUnknownFunction        Code = "UNKNOWN_FUNCTION"
)

// Diagnostic is a checker finding surfaced to end-users. Diagnostics
// never abort analysis; the checker accumulates them and keeps going.
type Diagnostic struct {
	Severity   Severity
	Code       Code
	Message    string
	Location   ast.SourceLocation
	Suggestion string // Optional suggestion for fixing the problem
	Notes      []string
}

// WithSuggestion returns a new diagnostic with the given suggestion.
func (d Diagnostic) WithSuggestion(suggestion string) Diagnostic {
	d.Suggestion = suggestion
	return d
}

// WithNote adds a note to the diagnostic.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// Error builds an error-severity diagnostic.
func Error(code Code, message string, loc ast.SourceLocation) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: code, Message: message, Location: loc}
}

// Warning builds a warning-severity diagnostic.
func Warning(code Code, message string, loc ast.SourceLocation) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Location: loc}
}

// Info builds an info-severity diagnostic.
func Info(code Code, message string, loc ast.SourceLocation) Diagnostic {
	return Diagnostic{Severity: SeverityInfo, Code: code, Message: message, Location: loc}
}

// Hint builds a hint-severity diagnostic.
func Hint(code Code, message string, loc ast.SourceLocation) Diagnostic {
	return Diagnostic{Severity: SeverityHint, Code: code, Message: message, Location: loc}
}
