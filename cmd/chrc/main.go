// Command chrc is the CLI entrypoint for the CHR compiler (spec.md §6.2).
// Like the teacher's cmd/rage and cmd/oink
// (_examples/ATSOTECK-rage/cmd/rage/main.go,
// _examples/ATSOTECK-rage/cmd/oink/main.go), it parses flags with the
// standard library's flag package — the teacher uses no CLI framework
// anywhere, so none is introduced here either.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/ATSOTECK/chrc/internal/compiler"
	"github.com/ATSOTECK/chrc/internal/driver"
)

func main() {
	opts := driver.DefaultOptions()

	version := flag.Bool("version", false, "print version and exit")
	prgNamesOnly := flag.Bool("chr_prg_names_only", false, "print CHR program names found in input and exit")
	outputFilesOnly := flag.Bool("chr_output_files_only", false, "print output filenames that would be produced and exit")
	flag.BoolVar(&opts.Trace, "trace", false, "emit runtime trace statements")
	useStdin := flag.Bool("stdin", false, "read input from stdin")
	useStdout := flag.Bool("stdout", false, "write all output to stdout")
	flag.StringVar(&opts.OutputDir, "output_dir", "", "destination directory for generated files")

	flag.BoolVar(&opts.WarnUnusedRuleEnabled, "warning_unused_rule", opts.WarnUnusedRuleEnabled, "warn about potentially-unused rules")
	flag.BoolVar(&opts.NeverStoredEnabled, "never_stored", opts.NeverStoredEnabled, "enable never-stored analysis")
	flag.BoolVar(&opts.HeadReorderEnabled, "head_reorder", opts.HeadReorderEnabled, "enable head reordering")
	flag.BoolVar(&opts.GuardReorderEnabled, "guard_reorder", opts.GuardReorderEnabled, "enable guard reordering")
	flag.BoolVar(&opts.OccurrencesReorderEnabled, "occurrences_reorder", opts.OccurrencesReorderEnabled, "enable occurrence reordering")
	flag.BoolVar(&opts.ConstraintStoreIndexEnabled, "constraint_store_index", opts.ConstraintStoreIndexEnabled, "enable constraint store index inference")
	flag.BoolVar(&opts.LineErrorEnabled, "line_error", opts.LineErrorEnabled, "emit source-position directives in output")
	flag.Parse()

	if *version {
		fmt.Println(driver.Version)
		os.Exit(0)
	}

	var source []byte
	var filename string
	var err error
	if *useStdin {
		filename = "<stdin>"
		source, err = io.ReadAll(bufio.NewReader(os.Stdin))
	} else {
		args := flag.Args()
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "usage: chrc [flags] <file.chr>")
			os.Exit(1)
		}
		filename = args[0]
		source, err = os.ReadFile(filename)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
		os.Exit(1)
	}

	res := driver.Compile(string(source), filename, opts)

	if *prgNamesOnly {
		fmt.Println(strings.Join(driver.ProgramNames(res), " "))
		os.Exit(0)
	}

	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if *outputFilesOnly {
		for _, f := range driver.OutputFilenames(res, stem) {
			fmt.Println(f)
		}
		os.Exit(0)
	}

	printDiagnostics(res.Errors)

	hasError := false
	for _, e := range res.Errors {
		if e.Severity == compiler.SevError {
			hasError = true
		}
	}
	if hasError {
		os.Exit(1)
	}

	if err := writeOutputs(res, stem, opts, *useStdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
		os.Exit(1)
	}
}

// writeOutputs emits the stripped host file plus each program's rendered
// host-code text, either to opts.OutputDir (one file per program) or, when
// stdout is requested, concatenated to os.Stdout.
func writeOutputs(res *driver.Result, stem string, opts driver.Options, toStdout bool) error {
	if toStdout {
		fmt.Println(res.StrippedHost)
		for _, p := range res.Programs {
			fmt.Println(p.Rendered)
		}
		return nil
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, stem+".host"), []byte(res.StrippedHost), 0o644); err != nil {
		return err
	}
	for _, p := range res.Programs {
		name := fmt.Sprintf("%s.%s.chr.out", stem, p.Name)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(p.Rendered), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// printDiagnostics writes one line per diagnostic to stderr (spec.md §7's
// "single line with file, line, column, severity, message"), colorizing
// severity when stderr is a terminal. golang.org/x/term is the teacher's
// own declared-but-unused go.mod dependency
// (_examples/ATSOTECK-rage/go.mod); this is where it earns a real import.
func printDiagnostics(errs []compiler.CompileError) {
	colorize := term.IsTerminal(int(os.Stderr.Fd()))
	for _, e := range errs {
		if colorize {
			color := "\x1b[33m" // warning: yellow
			if e.Severity == compiler.SevError {
				color = "\x1b[31m" // error: red
			}
			fmt.Fprintf(os.Stderr, "%s%s\x1b[0m\n", color, e.Error())
		} else {
			fmt.Fprintln(os.Stderr, e.Error())
		}
	}
}
