package classify

import (
	"testing"

	"gitea.jw6.us/james/syllacal/internal/reminders"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		summary string
		want    reminders.Category
		wantOK  bool
	}{
		{summary: "EXAM: Linear Algebra Final", want: reminders.CategoryExam, wantOK: true},
		{summary: "Midterm review session", want: reminders.CategoryExam, wantOK: true},
		{summary: "LECTURE: Week 3", want: reminders.CategoryLecture, wantOK: true},
		{summary: "First class of the semester", want: reminders.CategoryLecture, wantOK: true},
		{summary: "Pop quiz on chapter 4", want: reminders.CategoryQuiz, wantOK: true},
		{summary: "PROJECT DEADLINE: Compiler phase 2", want: reminders.CategoryProject, wantOK: true},
		{summary: "ASSIGNMENT: Problem set 5", want: reminders.CategoryAssignment, wantOK: true},
		{summary: "Homework 3 due", want: reminders.CategoryAssignment, wantOK: true},
		{summary: "Spring Break", want: reminders.CategoryBreak, wantOK: true},
		{summary: "Study group", wantOK: false},
		{summary: "", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.summary, func(t *testing.T) {
			got, ok := Classify(tc.summary)
			if ok != tc.wantOK {
				t.Fatalf("Classify(%q) ok = %v, want %v", tc.summary, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("Classify(%q) = %q, want %q", tc.summary, got, tc.want)
			}
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	// Exam keywords outrank lecture keywords regardless of word order.
	testCases := []struct {
		summary string
		want    reminders.Category
	}{
		{summary: "Midterm Exam Review Lecture", want: reminders.CategoryExam},
		{summary: "Lecture before the midterm", want: reminders.CategoryExam},
		{summary: "Quiz during class", want: reminders.CategoryLecture},
		{summary: "Project homework", want: reminders.CategoryProject},
	}

	for _, tc := range testCases {
		got, ok := Classify(tc.summary)
		if !ok || got != tc.want {
			t.Errorf("Classify(%q) = %q (ok=%v), want %q", tc.summary, got, ok, tc.want)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	for _, summary := range []string{"EXAM", "exam", "ExAm week"} {
		if got, ok := Classify(summary); !ok || got != reminders.CategoryExam {
			t.Errorf("Classify(%q) = %q (ok=%v), want exam", summary, got, ok)
		}
	}
}
