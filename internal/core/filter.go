// Package core provides filtering of navigation trace events.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmylchreest/navstack/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // Field name: kind, screen, direction, detail, step, seq, at, animated
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	// Cached parsed values
	regex   *regexp.Regexp // Compiled regex for ~= operator
	intVal  int64          // Parsed value for numeric fields
	boolVal bool           // Parsed bool value
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies simple criteria for filtering events.
type FilterOptions struct {
	Kinds  []model.EventKind // Keep only these kinds (empty = all)
	Screen string            // Exact match on screen id
	Limit  int               // Maximum results (0 = unlimited)
}

// Filter filters events based on the provided options.
func Filter(events []model.Event, opts FilterOptions) []model.Event {
	result := make([]model.Event, 0, len(events))

	for _, e := range events {
		if len(opts.Kinds) > 0 && !containsKind(opts.Kinds, e.Kind) {
			continue
		}
		if opts.Screen != "" && e.Screen != opts.Screen {
			continue
		}
		result = append(result, e)
	}

	// Apply limit
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result
}

func containsKind(kinds []model.EventKind, k model.EventKind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}

// ParseKind parses an event kind name. Accepts will, did, will_show,
// did_show, transition, step.
func ParseKind(s string) (model.EventKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "will", "will_show", "willshow":
		return model.EventWillShow, nil
	case "did", "did_show", "didshow":
		return model.EventDidShow, nil
	case "transition", "tx":
		return model.EventTransition, nil
	case "step":
		return model.EventStep, nil
	default:
		return "", fmt.Errorf("invalid event kind: %s (use will_show, did_show, transition, or step)", s)
	}
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: kind, screen, direction, detail, step, seq, at, animated
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "kind=did_show" - only did_show notifications
//   - "screen=detail,animated=true" - animated events for detail
//   - "step>=3" - events from the third step on
//   - "detail~rejected" - rejected steps
//   - "at>350" - events after 350ms of virtual time
func ParseFilter(expr string) (*FilterExpr, error) {
	if expr == "" {
		return &FilterExpr{}, nil
	}

	filter := &FilterExpr{
		Conditions: make([]FilterCondition, 0),
	}

	// Split by comma
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

// parseCondition parses a single condition like "kind=step" or "detail~ok"
func parseCondition(s string) (FilterCondition, error) {
	// Try operators in order of specificity (longest first)
	operators := []FilterOp{
		FilterOpNotEqual,  // != (must be before =)
		FilterOpGreaterEq, // >= (must be before >)
		FilterOpLessEq,    // <= (must be before <)
		FilterOpRegex,     // ~= (must be before ~)
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}

			if err := cond.init(); err != nil {
				return FilterCondition{}, err
			}

			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init pre-parses and validates the condition value.
func (c *FilterCondition) init() error {
	switch c.Field {
	case "kind", "type":
		c.Field = "kind"
		k, err := ParseKind(c.Value)
		if err != nil {
			return err
		}
		c.Value = string(k)
	case "screen", "id":
		c.Field = "screen"
	case "direction", "dir":
		c.Field = "direction"
	case "detail":
	case "step", "seq", "at", "at_ms":
		if c.Field == "at_ms" {
			c.Field = "at"
		}
		v, err := strconv.ParseInt(c.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value: %s", c.Field, c.Value)
		}
		c.intVal = v
	case "animated":
		c.boolVal = parseBool(c.Value)
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	// Compile regex if needed
	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

// parseBool parses various boolean representations.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y", "t":
		return true
	default:
		return false
	}
}

// Match tests if an event matches the filter expression.
// All conditions must match (AND logic).
func (f *FilterExpr) Match(e model.Event) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(e) {
			return false
		}
	}
	return true
}

// Match tests if an event matches this single condition.
func (c *FilterCondition) Match(e model.Event) bool {
	switch c.Field {
	case "kind":
		return c.matchString(string(e.Kind))
	case "screen":
		return c.matchString(e.Screen)
	case "direction":
		return c.matchString(e.Direction)
	case "detail":
		return c.matchString(e.Detail)
	case "step":
		return c.matchInt(int64(e.Step))
	case "seq":
		return c.matchInt(int64(e.Seq))
	case "at":
		return c.matchInt(e.AtMillis)
	case "animated":
		return c.matchBool(e.Animated)
	default:
		return false
	}
}

// matchString matches a string field.
func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

// matchInt matches a numeric field.
func (c *FilterCondition) matchInt(fieldValue int64) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.intVal
	case FilterOpNotEqual:
		return fieldValue != c.intVal
	case FilterOpGreater:
		return fieldValue > c.intVal
	case FilterOpLess:
		return fieldValue < c.intVal
	case FilterOpGreaterEq:
		return fieldValue >= c.intVal
	case FilterOpLessEq:
		return fieldValue <= c.intVal
	default:
		return false
	}
}

// matchBool matches a boolean field.
func (c *FilterCondition) matchBool(fieldValue bool) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.boolVal
	case FilterOpNotEqual:
		return fieldValue != c.boolVal
	default:
		return false
	}
}

// FilterWithExpr filters events using a filter expression.
func FilterWithExpr(events []model.Event, expr *FilterExpr) []model.Event {
	if expr == nil || len(expr.Conditions) == 0 {
		return events
	}

	result := make([]model.Event, 0, len(events))
	for _, e := range events {
		if expr.Match(e) {
			result = append(result, e)
		}
	}
	return result
}
