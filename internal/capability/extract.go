package capability

import (
	"fmt"
	"strconv"
	"strings"

	facterrors "factotum/internal/errors"
)

// Extract binds a full parameter set for one capability from the original
// task text. The model only ever supplies capability names, so every
// capability re-derives its arguments here from its own phrasing grammar.
//
// A missing required parameter or a coercion failure yields an
// ExtractionError, never a fault.
func Extract(desc Descriptor, taskText string) (map[string]any, error) {
	args := make(map[string]any, len(desc.Rules))

	for _, rule := range desc.Rules {
		match := rule.Pattern.FindStringSubmatch(taskText)
		if match == nil || len(match) < 2 || strings.TrimSpace(match[1]) == "" {
			if rule.Required {
				return nil, &facterrors.ExtractionError{
					Capability: desc.Name,
					Param:      rule.Param,
					Reason:     "required parameter not found in task text",
				}
			}
			if rule.Default != nil {
				args[rule.Param] = rule.Default
			}
			continue
		}

		value, err := coerce(strings.TrimSpace(match[1]), rule.Type)
		if err != nil {
			return nil, &facterrors.ExtractionError{
				Capability: desc.Name,
				Param:      rule.Param,
				Reason:     err.Error(),
			}
		}
		args[rule.Param] = value
	}

	return args, nil
}

func coerce(raw string, valueType ValueType) (any, error) {
	switch valueType {
	case TypeString:
		return raw, nil

	case TypeInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, nil

	case TypeDimensions:
		parts := strings.SplitN(strings.ToLower(raw), "x", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%q is not a WxH dimension pair", raw)
		}
		width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("width %q is not an integer", parts[0])
		}
		height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("height %q is not an integer", parts[1])
		}
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("dimensions must be positive, got %dx%d", width, height)
		}
		return Dimensions{Width: width, Height: height}, nil

	case TypeKeyValueMap:
		pairs := map[string]string{}
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			key, value, found := strings.Cut(part, "=")
			if !found || strings.TrimSpace(key) == "" {
				return nil, fmt.Errorf("%q is not a key=value pair", part)
			}
			pairs[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
		}
		if len(pairs) == 0 {
			return nil, fmt.Errorf("%q contains no key=value pairs", raw)
		}
		return pairs, nil

	default:
		return nil, fmt.Errorf("unknown value type %d", valueType)
	}
}
