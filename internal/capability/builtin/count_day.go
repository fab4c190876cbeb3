package builtin

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"factotum/internal/capability"
	"factotum/internal/logging"
)

// dateLayouts are tried in order when parsing each line of a dates file.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// CountSpecificDay counts how many dates in a text file fall on a given
// weekday. One date per line; unparseable lines are skipped and reported.
type CountSpecificDay struct {
	logger logging.Logger
}

func NewCountSpecificDay(cfg Config) *CountSpecificDay {
	return &CountSpecificDay{logger: cfg.Logger}
}

func (c *CountSpecificDay) Descriptor() capability.Descriptor {
	return capability.Descriptor{
		Name:        "count_specific_day",
		Description: "Counts occurrences of a weekday among the dates listed in a text file.",
		PathParams:  []string{"file"},
		Rules: []capability.Rule{
			capability.MustRule("day", `count the number of ([a-z]+?)s?\b`, true, nil, capability.TypeString),
			capability.MustRule("file", `in (?:the file )?([\w./-]+\.txt)`, true, nil, capability.TypeString),
		},
	}
}

func (c *CountSpecificDay) Execute(ctx context.Context, args map[string]any) (any, error) {
	dayName := args["day"].(string)
	path := args["file"].(string)

	weekday, err := parseWeekday(dayName)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dates file: %w", err)
	}
	defer f.Close()

	count := 0
	skipped := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parsed, ok := parseDate(line)
		if !ok {
			skipped++
			continue
		}
		if parsed.Weekday() == weekday {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dates file: %w", err)
	}
	if skipped > 0 {
		c.logger.Warn("count_specific_day: skipped %d unparseable lines in %s", skipped, path)
	}

	return map[string]any{
		"day":           dayName,
		"count":         count,
		"skipped_lines": skipped,
	}, nil
}

func parseDate(line string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, line); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%q is not a weekday", name)
}
