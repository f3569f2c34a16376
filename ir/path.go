package ir

import "strings"

// DataPath renders a dotted data reference (e.g. []string{"a", "b"}) as the
// bracket-notation JSONPath ASL expects: "$['a']['b']".
func DataPath(parts []string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, p := range parts {
		b.WriteString("['")
		b.WriteString(p)
		b.WriteString("']")
	}
	return b.String()
}
