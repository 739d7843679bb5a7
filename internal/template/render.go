// Package template substitutes {{key}} placeholders in template strings.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {{key}} tokens. Keys may carry surrounding
// whitespace inside the braces; it is trimmed before lookup.
var placeholderPattern = regexp.MustCompile(`\{\{[^{}]*\}\}`)

// Render replaces every {{key}} token in s with the string form of
// data[key]. Tokens whose trimmed key is absent from data (or maps to nil)
// are left verbatim in the output. Substitution is a single linear pass:
// no recursion, no escaping, no nested expressions.
func Render(s string, data map[string]any) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		key := strings.TrimSpace(token[2 : len(token)-2])
		if key == "" {
			return token
		}
		v, ok := data[key]
		if !ok || v == nil {
			return token
		}
		return fmt.Sprint(v)
	})
}
