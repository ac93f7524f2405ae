package models

import "strings"

// ParseLabels splits a comma separated list into clean labels
func ParseLabels(s string) []string {
	return CleanLabels(strings.Split(s, ","))
}

// CleanLabels trims each label and drops empties and repeats, keeping
// first-seen order
func CleanLabels(in []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(in))
	for _, l := range in {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
