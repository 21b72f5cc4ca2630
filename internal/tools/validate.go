package tools

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError reports why a tool call was rejected before execution. The
// message is phrased for relay back to the model, which is expected to ask
// the user for the missing information.
type ValidationError struct {
	Tool    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// validate checks a tool call against the spec's Required and Positive
// parameter lists. All violations are aggregated into a single message so the
// model sees every problem at once.
func validate(spec *Spec, args map[string]any) *ValidationError {
	var missing []string
	for _, param := range spec.Required {
		if _, ok := args[param]; !ok {
			missing = append(missing, param)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Tool:    spec.Name,
			Message: "Missing required parameters: " + strings.Join(missing, ", "),
		}
	}

	var invalid []string
	for _, param := range spec.Positive {
		v, ok := args[param]
		if !ok {
			continue
		}
		if f, isNum := floatArg(args, param); !isNum || f <= 0 {
			invalid = append(invalid, fmt.Sprintf("%s (got %v, must be positive)", param, v))
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{
			Tool: spec.Name,
			Message: "Cannot execute tool: Invalid parameter values - " + strings.Join(invalid, ", ") +
				". Please ask the user for missing information before calling this tool.",
		}
	}
	return nil
}

// CoerceNumbers walks a decoded argument tree and converts numeric strings
// into numbers: integers first, then floats. Models frequently quote numbers
// ("property_price": "3000000") despite the schema saying otherwise; rather
// than reject the call, the dispatcher repairs it. Non-numeric strings and
// all other values pass through unchanged.
func CoerceNumbers(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = coerceValue(v)
	}
	return out
}

func coerceValue(v any) any {
	switch val := v.(type) {
	case string:
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return int(i)
		}
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
		return val
	case map[string]any:
		return CoerceNumbers(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = coerceValue(item)
		}
		return out
	default:
		return v
	}
}
