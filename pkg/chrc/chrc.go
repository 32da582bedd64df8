// Package chrc is the thin embedding API for the CHR compiler, mirroring
// the teacher's pkg/rage role: a small wrapper a host program imports
// instead of reaching into internal/ directly
// (_examples/ATSOTECK-rage/pkg/rage/rage.go exposes the same
// Compile/Run-shaped surface over internal/compiler + internal/runtime).
package chrc

import (
	"github.com/ATSOTECK/chrc/internal/analysis"
	"github.com/ATSOTECK/chrc/internal/compiler"
	"github.com/ATSOTECK/chrc/internal/driver"
)

// Options re-exports internal/driver.Options so callers never need to
// import an internal package to configure a compile.
type Options = driver.Options

// DefaultOptions re-exports internal/driver.DefaultOptions.
func DefaultOptions() Options { return driver.DefaultOptions() }

// Diagnostic re-exports internal/compiler.CompileError under the public
// name a caller of this package should reach for.
type Diagnostic = compiler.CompileError

// Warning re-exports internal/analysis.UnusedRuleWarning.
type Warning = analysis.UnusedRuleWarning

// Program is one compiled <chr> block's result.
type Program struct {
	Name     string
	Rendered string
	Warnings []Warning
}

// Result is the outcome of compiling one source file.
type Result struct {
	Programs     []Program
	StrippedHost string
	Diagnostics  []Diagnostic
}

// Compile parses and lowers source (named filename for diagnostics) under
// opts, running every analysis/optimization pass opts enables. It always
// returns a Result — per spec.md §7, one program's failure does not abort
// compiling its siblings — so callers should still check Diagnostics for
// errors before trusting Result.Programs.
func Compile(source, filename string, opts Options) Result {
	res := driver.Compile(source, filename, opts)
	out := Result{StrippedHost: res.StrippedHost, Diagnostics: res.Errors}
	for _, p := range res.Programs {
		out.Programs = append(out.Programs, Program{Name: p.Name, Rendered: p.Rendered, Warnings: p.Warnings})
	}
	return out
}

// HasErrors reports whether any diagnostic in r is an error (as opposed to
// only warnings), the condition spec.md §6.2 ties to a non-zero exit code.
func (r Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == compiler.SevError {
			return true
		}
	}
	return false
}
