package devserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthzReturnsOK(t *testing.T) {
	e := New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCompileEndpointRendersProgram(t *testing.T) {
	src := `<chr name="LEQ">
chr_constraint leq(? int, ? int);
transitivity @ leq(X,Y), leq(Y,Z) ==> leq(X,Z) ;;
</chr>`
	e := New()
	req := httptest.NewRequest(http.MethodPost, "/compile?head_reorder=true&guard_reorder=true&occurrences_reorder=true&constraint_store_index=true&never_stored=true&warning_unused_rule=true", strings.NewReader(src))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "do_leq")
	assert.Contains(t, rec.Body.String(), `"name":"LEQ"`)
	assert.Contains(t, rec.Body.String(), `"abstract_dump"`)
	assert.Contains(t, rec.Body.String(), `"kind":"HISTORY_CHECK"`)
}
