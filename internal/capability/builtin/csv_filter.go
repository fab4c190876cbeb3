package builtin

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"factotum/internal/capability"
	"factotum/internal/logging"
)

// FilterCSV selects rows of a CSV file where named columns equal given
// values, writing the matching rows (plus header) to a sibling file.
type FilterCSV struct {
	logger logging.Logger
}

func NewFilterCSV(cfg Config) *FilterCSV {
	return &FilterCSV{logger: cfg.Logger}
}

func (f *FilterCSV) Descriptor() capability.Descriptor {
	return capability.Descriptor{
		Name:        "filter_csv",
		Description: "Filters rows of a CSV file by column=value conditions.",
		PathParams:  []string{"file"},
		Rules: []capability.Rule{
			capability.MustRule("file", `([\w./-]+\.csv)`, true, nil, capability.TypeString),
			capability.MustRule("filters", `where ([^.;]+=[^.;]+)`, true, nil, capability.TypeKeyValueMap),
		},
	}
}

func (f *FilterCSV) Execute(ctx context.Context, args map[string]any) (any, error) {
	path := args["file"].(string)
	filters := args["filters"].(map[string]string)

	source, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = source.Close() }()

	reader := csv.NewReader(source)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	// Filter keys bind to header columns case-insensitively.
	columnIndex := make(map[string]int, len(filters))
	for key := range filters {
		idx := -1
		for i, col := range header {
			if strings.EqualFold(strings.TrimSpace(col), key) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("column %q not present in %s", key, filepath.Base(path))
		}
		columnIndex[key] = idx
	}

	output := strings.TrimSuffix(path, filepath.Ext(path)) + "_filtered.csv"
	out, err := os.Create(output)
	if err != nil {
		return nil, fmt.Errorf("create output csv: %w", err)
	}
	defer func() { _ = out.Close() }()

	writer := csv.NewWriter(out)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	total := 0
	matched := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", total+2, err)
		}
		total++
		if matchesFilters(record, filters, columnIndex) {
			matched++
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush output: %w", err)
	}

	f.logger.Info("filter_csv: %d/%d rows matched -> %s", matched, total, output)
	return map[string]any{
		"source":       path,
		"output":       output,
		"rows_total":   total,
		"rows_matched": matched,
		"filters":      filters,
	}, nil
}

func matchesFilters(record []string, filters map[string]string, columnIndex map[string]int) bool {
	for key, want := range filters {
		idx := columnIndex[key]
		if idx >= len(record) {
			return false
		}
		if !strings.EqualFold(strings.TrimSpace(record[idx]), want) {
			return false
		}
	}
	return true
}
