// Package classify routes an event's display text to a reminder category.
package classify

import (
	"strings"

	"gitea.jw6.us/james/syllacal/internal/reminders"
)

// rules is a first-match priority list, not a set of independent matchers.
// Order matters: "Midterm Lecture" is an exam, not a lecture.
var rules = []struct {
	keywords []string
	category reminders.Category
}{
	{keywords: []string{"exam", "midterm"}, category: reminders.CategoryExam},
	{keywords: []string{"lecture", "class"}, category: reminders.CategoryLecture},
	{keywords: []string{"quiz"}, category: reminders.CategoryQuiz},
	{keywords: []string{"project"}, category: reminders.CategoryProject},
	{keywords: []string{"assignment", "homework"}, category: reminders.CategoryAssignment},
	{keywords: []string{"break"}, category: reminders.CategoryBreak},
}

// Classify returns the first category whose keyword group matches a
// substring of the lower-cased summary, or ("", false) when nothing matches
// and no reminders should be attached.
func Classify(summary string) (reminders.Category, bool) {
	lower := strings.ToLower(summary)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category, true
			}
		}
	}
	return "", false
}
