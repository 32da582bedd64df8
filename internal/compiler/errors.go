package compiler

import (
	"fmt"

	"github.com/ATSOTECK/chrc/internal/model"
)

// CompileError is a single-line parse/semantic diagnostic (spec.md §7's
// "single line with file, line, column, severity, message"), following the
// teacher's plain CompileError{Pos, Message} idiom
// (_examples/ATSOTECK-rage/internal/compiler/compiler.go) rather than
// introducing a structured-errors dependency the teacher itself has none
// of.
type CompileError struct {
	Pos      model.Position
	Severity Severity
	Message  string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Severity, e.Message)
}

// Severity classifies a CompileError (spec.md §7's three non-runtime kinds).
type Severity int

const (
	SevError Severity = iota
	SevWarning
)

func (s Severity) String() string {
	if s == SevWarning {
		return "warning"
	}
	return "error"
}
