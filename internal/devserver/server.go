// Package devserver is an optional HTTP service that exposes the compile
// pipeline for interactive/tooling use (SPEC_FULL.md §6.4). It is grounded
// on the teacher's own separate-module stress-test harness
// (_examples/ATSOTECK-rage/test/stress_test/go.mod), which drives the
// compiler+VM over HTTP using labstack/echo — this package promotes that
// pattern from a test-only harness into a first-class optional package,
// using the same library.
package devserver

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/ATSOTECK/chrc/internal/driver"
	"github.com/ATSOTECK/chrc/internal/lower/abstract"
)

// compileRequest is the body of POST /compile: raw CHR source text plus the
// §6.2 knobs relevant to a one-shot compile, as query parameters.
type compileRequest struct {
	Trace               bool `query:"trace"`
	WarnUnusedRule      bool `query:"warning_unused_rule"`
	NeverStored         bool `query:"never_stored"`
	HeadReorder         bool `query:"head_reorder"`
	GuardReorder        bool `query:"guard_reorder"`
	OccurrencesReorder  bool `query:"occurrences_reorder"`
	ConstraintStoreIndex bool `query:"constraint_store_index"`
	LineError           bool `query:"line_error"`
}

type compileResponse struct {
	Programs     []programResponse `json:"programs"`
	StrippedHost string             `json:"stripped_host"`
	Diagnostics  []string           `json:"diagnostics"`
}

type programResponse struct {
	Name         string               `json:"name"`
	Rendered     string               `json:"rendered"`
	Warnings     []string             `json:"warnings"`
	AbstractDump []abstract.BlockDump `json:"abstract_dump"`
}

// New builds the echo.Echo instance serving /compile and /healthz, with
// gommon's colored request logger — the same logging dependency the
// teacher's stress-test harness already pulls in transitively through
// echo.
func New() *echo.Echo {
	e := echo.New()
	e.Logger.SetLevel(log.INFO)
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/healthz", handleHealthz)
	e.POST("/compile", handleCompile)
	return e
}

func handleHealthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func handleCompile(c echo.Context) error {
	// Bind query params only — the request body is raw CHR source text, not
	// a structured payload, so the generic c.Bind's body-decoding branch
	// would be the wrong tool here.
	var req compileRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer c.Request().Body.Close()

	opts := optionsFromRequest(req)
	res := driver.Compile(string(rawBody), "<http>", opts)

	resp := compileResponse{StrippedHost: res.StrippedHost}
	for _, d := range res.Errors {
		resp.Diagnostics = append(resp.Diagnostics, d.Error())
	}
	for _, p := range res.Programs {
		pr := programResponse{Name: p.Name, Rendered: p.Rendered, AbstractDump: p.AbstractDump}
		for _, w := range p.Warnings {
			pr.Warnings = append(pr.Warnings, w.String())
		}
		resp.Programs = append(resp.Programs, pr)
	}
	return c.JSON(http.StatusOK, resp)
}

func optionsFromRequest(req compileRequest) driver.Options {
	return driver.Options{
		Trace:                       req.Trace,
		WarnUnusedRuleEnabled:       req.WarnUnusedRule,
		NeverStoredEnabled:          req.NeverStored,
		HeadReorderEnabled:          req.HeadReorder,
		GuardReorderEnabled:         req.GuardReorder,
		OccurrencesReorderEnabled:   req.OccurrencesReorder,
		ConstraintStoreIndexEnabled: req.ConstraintStoreIndex,
		LineErrorEnabled:            req.LineError,
	}
}
