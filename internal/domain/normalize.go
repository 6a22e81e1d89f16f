package domain

import "strings"

// NormalizeSkillKey trims, collapses internal whitespace runs and lower-cases a skill name.
// It is used for catalog lookups only; prompts always carry the caller's text verbatim.
func NormalizeSkillKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
