package config

import (
	"fmt"
	"strings"
)

// CustomAttribute is a span attribute computed by an expression.
type CustomAttribute struct {
	Name       string
	Expression string
}

// ParseCustomAttribute parses a NAME=EXPR pair. The expression may itself
// contain '='.
func ParseCustomAttribute(s string) (CustomAttribute, error) {
	name, expression, ok := strings.Cut(s, "=")
	if !ok {
		return CustomAttribute{}, fmt.Errorf("invalid attribute format %q, expected NAME=EXPR", s)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return CustomAttribute{}, fmt.Errorf("invalid attribute %q: name cannot be empty", s)
	}
	if strings.TrimSpace(expression) == "" {
		return CustomAttribute{}, fmt.Errorf("invalid attribute %q: expression cannot be empty", s)
	}
	return CustomAttribute{Name: name, Expression: expression}, nil
}

// ParseCustomAttributes parses every NAME=EXPR pair.
func ParseCustomAttributes(pairs []string) ([]CustomAttribute, error) {
	attrs := make([]CustomAttribute, 0, len(pairs))
	for _, s := range pairs {
		attr, err := ParseCustomAttribute(s)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}
