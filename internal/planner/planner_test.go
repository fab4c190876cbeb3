package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	facterrors "factotum/internal/errors"
)

func TestPlanReturnsNamesInDocumentOrder(t *testing.T) {
	raw := "CALL_FUNCTION:fetch_data_from_api\nCALL_FUNCTION:run_sql_query\n"

	plan, err := Plan(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"fetch_data_from_api", "run_sql_query"}, plan)
}

func TestPlanIgnoresExplanatoryText(t *testing.T) {
	raw := `Sure, I can help with that.

CALL_FUNCTION:scrape_website

The function above extracts the data you asked for.
Some CALL_FUNCTION:not_at_line_start mention mid-sentence stays, because the
line itself does not start with the marker.`

	plan, err := Plan(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"scrape_website"}, plan)
}

func TestPlanTrimsWhitespaceAroundMarkerAndName(t *testing.T) {
	raw := "   CALL_FUNCTION:  convert_markdown_to_html  \n"

	plan, err := Plan(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"convert_markdown_to_html"}, plan)
}

func TestPlanFiltersNoneSentinelOnly(t *testing.T) {
	raw := "CALL_FUNCTION:fetch_data_from_api\nCALL_FUNCTION:None\nCALL_FUNCTION:run_sql_query\n"

	plan, err := Plan(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"fetch_data_from_api", "run_sql_query"}, plan)
}

func TestPlanOnlyNoneIsNoActionableFunction(t *testing.T) {
	_, err := Plan("CALL_FUNCTION:None\n")
	assert.ErrorIs(t, err, facterrors.ErrNoActionableFunction)
}

func TestPlanEmptyResponseIsNoActionableFunction(t *testing.T) {
	_, err := Plan("")
	assert.ErrorIs(t, err, facterrors.ErrNoActionableFunction)

	_, err = Plan("the model rambled with no markers at all")
	assert.ErrorIs(t, err, facterrors.ErrNoActionableFunction)
}

func TestPlanMarkerIsCaseSensitive(t *testing.T) {
	_, err := Plan("call_function:fetch_data_from_api\n")
	assert.ErrorIs(t, err, facterrors.ErrNoActionableFunction)
}

func TestPlanNoneSentinelIsCaseSensitive(t *testing.T) {
	// "none" is not the sentinel; it passes through as a candidate name and
	// will fail registry lookup downstream instead of being filtered here.
	plan, err := Plan("CALL_FUNCTION:none\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"none"}, plan)
}

func TestPlanDuplicateNamesPreserved(t *testing.T) {
	raw := "CALL_FUNCTION:run_sql_query\nCALL_FUNCTION:run_sql_query\n"

	plan, err := Plan(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"run_sql_query", "run_sql_query"}, plan)
}

func TestScanKeepsSentinel(t *testing.T) {
	names := Scan("CALL_FUNCTION:None\nCALL_FUNCTION:x\n")
	assert.Equal(t, []string{"None", "x"}, names)
}

func TestPlanIgnoresMarkerWithEmptyName(t *testing.T) {
	_, err := Plan("CALL_FUNCTION:\nCALL_FUNCTION:   \n")
	assert.ErrorIs(t, err, facterrors.ErrNoActionableFunction)
}
