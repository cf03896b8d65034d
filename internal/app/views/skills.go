package views

import "strings"

// ParseSkills splits a comma-separated skill list, trimming entries and dropping blanks.
func ParseSkills(q string) []string {
	skills := []string{}
	for _, part := range strings.Split(q, ",") {
		if s := strings.TrimSpace(part); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
