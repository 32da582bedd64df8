// Package driver implements the compiler CLI knobs of spec.md §6.2 as a
// Go API: it parses CHR surface source, runs the full pipeline (occurrence
// expansion, reordering, abstract lowering, host rendering) honoring each
// named toggle, and returns per-program outputs plus diagnostics. It plays
// the role the teacher's internal/compiler.CompileSource entrypoint plays
// (_examples/ATSOTECK-rage/internal/compiler/compiler.go: one function that
// owns "parse, then run every pass, then return code-or-errors") but split
// out from the parser package since this repo's driver also owns file
// splitting and CLI-option policy that the teacher bundles into its single
// compiler package.
package driver

// Version is the compiler's MAJOR.MINOR version string, printed by the
// CLI's `version` knob (spec.md §6.2).
const Version = "1.0"

// Options mirrors spec.md §6.2's named knobs one field at a time. Flags not
// listed there (spec.md §1's "Option plumbing beyond the named knobs listed
// in §6" is an explicit Non-goal) have no corresponding field.
type Options struct {
	Version            bool
	ChrPrgNamesOnly    bool
	ChrOutputFilesOnly bool
	Trace              bool
	Stdin              bool
	Stdout             bool
	OutputDir          string

	WarnUnusedRuleEnabled       bool
	NeverStoredEnabled          bool
	HeadReorderEnabled          bool
	GuardReorderEnabled         bool
	OccurrencesReorderEnabled   bool
	ConstraintStoreIndexEnabled bool
	LineErrorEnabled            bool
}

// DefaultOptions matches spec.md §6.2's implied defaults: every optional
// analysis/optimization on, no file-splitting/tracing behavior active until
// asked for.
func DefaultOptions() Options {
	return Options{
		WarnUnusedRuleEnabled:       true,
		NeverStoredEnabled:          true,
		HeadReorderEnabled:          true,
		GuardReorderEnabled:         true,
		OccurrencesReorderEnabled:   true,
		ConstraintStoreIndexEnabled: true,
		LineErrorEnabled:            true,
	}
}
