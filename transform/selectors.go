// Package transform contains tree rewriting stages which run between parsing
// and formatting: nested rule flattening and custom property resolution.
package transform

import (
	"fmt"
	"strings"
)

// splitSelectors splits selector list on top level commas. Commas inside
// parentheses, brackets and strings do not separate selectors.
func splitSelectors(list string) ([]string, error) {
	var (
		selectors []string
		depth     int
		quote     byte
		start     int
	)
	for i := 0; i < len(list); i++ {
		c := list[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\\':
			i++
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth == 0 {
				return nil, fmt.Errorf("malformed selector %q: unbalanced %q", list, c)
			}
			depth--
		case c == ',' && depth == 0:
			selectors = append(selectors, strings.TrimSpace(list[start:i]))
			start = i + 1
		}
	}
	if depth != 0 || quote != 0 {
		return nil, fmt.Errorf("malformed selector %q: unterminated group", list)
	}
	if s := strings.TrimSpace(list[start:]); s != "" || len(selectors) > 0 {
		selectors = append(selectors, s)
	}
	return selectors, nil
}

// joinSelectors combines every parent selector with every child selector.
// "&" in a child is replaced by the parent, otherwise the child becomes a
// descendant of the parent.
func joinSelectors(parent, child string) (string, error) {
	parents, err := splitSelectors(parent)
	if err != nil {
		return "", err
	}
	children, err := splitSelectors(child)
	if err != nil {
		return "", err
	}
	if len(parents) == 0 {
		return child, nil
	}

	result := make([]string, 0, len(parents)*len(children))
	for _, p := range parents {
		for _, c := range children {
			if strings.Contains(c, "&") {
				result = append(result, strings.ReplaceAll(c, "&", p))
			} else {
				result = append(result, p+" "+c)
			}
		}
	}
	return strings.Join(result, ", "), nil
}
