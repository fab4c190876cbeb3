package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factotum/internal/capability"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFilterCSVExtraction(t *testing.T) {
	cap := NewFilterCSV(Config{}.withDefaults())
	args, err := capability.Extract(cap.Descriptor(),
		`Filter users.csv where region=EU, status=active`)
	require.NoError(t, err)
	assert.Equal(t, "users.csv", args["file"])
	assert.Equal(t, map[string]string{"region": "EU", "status": "active"}, args["filters"])
}

func TestFilterCSVSelectsMatchingRows(t *testing.T) {
	path := writeCSV(t, "users.csv",
		"name,region,status\nada,EU,active\nbob,US,active\ncarol,EU,inactive\ndan,eu,ACTIVE\n")

	cap := NewFilterCSV(Config{}.withDefaults())
	payload, err := cap.Execute(context.Background(), map[string]any{
		"file":    path,
		"filters": map[string]string{"region": "EU", "status": "active"},
	})
	require.NoError(t, err)

	result := payload.(map[string]any)
	assert.Equal(t, 4, result["rows_total"])
	assert.Equal(t, 2, result["rows_matched"])

	out, err := os.ReadFile(result["output"].(string))
	require.NoError(t, err)
	assert.Contains(t, string(out), "ada")
	assert.Contains(t, string(out), "dan")
	assert.NotContains(t, string(out), "bob")
	assert.NotContains(t, string(out), "carol")
}

func TestFilterCSVUnknownColumn(t *testing.T) {
	path := writeCSV(t, "users.csv", "name,region\nada,EU\n")

	cap := NewFilterCSV(Config{}.withDefaults())
	_, err := cap.Execute(context.Background(), map[string]any{
		"file":    path,
		"filters": map[string]string{"planet": "earth"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "planet"`)
}

func TestFilterCSVMalformedRowFailsInsteadOfTruncating(t *testing.T) {
	// Second data row has the wrong field count; the capability must error
	// rather than report success over a partial output file.
	path := writeCSV(t, "users.csv",
		"name,region\nada,EU\nbob,US,extra,fields\ncarol,EU\n")

	cap := NewFilterCSV(Config{}.withDefaults())
	_, err := cap.Execute(context.Background(), map[string]any{
		"file":    path,
		"filters": map[string]string{"region": "EU"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read csv row")
}

func TestFilterCSVNoMatchesStillWritesHeader(t *testing.T) {
	path := writeCSV(t, "users.csv", "name,region\nada,EU\n")

	cap := NewFilterCSV(Config{}.withDefaults())
	payload, err := cap.Execute(context.Background(), map[string]any{
		"file":    path,
		"filters": map[string]string{"region": "MARS"},
	})
	require.NoError(t, err)

	result := payload.(map[string]any)
	assert.Equal(t, 0, result["rows_matched"])
	out, err := os.ReadFile(result["output"].(string))
	require.NoError(t, err)
	assert.Equal(t, "name,region\n", string(out))
}
