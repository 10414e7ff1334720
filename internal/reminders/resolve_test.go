package reminders

import "testing"

func TestResolveConversion(t *testing.T) {
	testCases := []struct {
		name        string
		rule        Rule
		wantMinutes int
	}{
		{name: "minutes", rule: Rule{Amount: 5, Unit: UnitMinutes}, wantMinutes: 5},
		{name: "hours", rule: Rule{Amount: 2, Unit: UnitHours}, wantMinutes: 120},
		{name: "days", rule: Rule{Amount: 3, Unit: UnitDays}, wantMinutes: 4320},
		{name: "weeks", rule: Rule{Amount: 1, Unit: UnitWeeks}, wantMinutes: 10080},
		{name: "unknown unit passes amount through", rule: Rule{Amount: 42, Unit: "fortnights"}, wantMinutes: 42},
		{name: "zero amount", rule: Rule{Amount: 0, Unit: UnitDays}, wantMinutes: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := Defaults()
			s.Categories[CategoryExam] = []Rule{tc.rule}

			got := Resolve(s, CategoryExam)
			if got == nil || len(got.Items) != 1 {
				t.Fatalf("Resolve = %+v, want one override", got)
			}
			if got.UseDefault {
				t.Error("UseDefault = true, want false")
			}
			if got.Items[0].Method != "popup" {
				t.Errorf("method = %q, want popup", got.Items[0].Method)
			}
			if got.Items[0].Minutes != tc.wantMinutes {
				t.Errorf("minutes = %d, want %d", got.Items[0].Minutes, tc.wantMinutes)
			}
		})
	}
}

func TestResolveOrderPreservingWithDuplicates(t *testing.T) {
	s := Defaults()
	s.Categories[CategoryAssignment] = []Rule{
		{Amount: 1, Unit: UnitWeeks},
		{Amount: 30, Unit: UnitMinutes},
		{Amount: 30, Unit: UnitMinutes},
		{Amount: 1, Unit: UnitDays},
	}

	got := Resolve(s, CategoryAssignment)
	want := []int{10080, 30, 30, 1440}
	if len(got.Items) != len(want) {
		t.Fatalf("got %d overrides, want %d", len(got.Items), len(want))
	}
	for i, minutes := range want {
		if got.Items[i].Minutes != minutes {
			t.Errorf("override[%d] = %d minutes, want %d", i, got.Items[i].Minutes, minutes)
		}
	}
}

func TestResolveNone(t *testing.T) {
	s := Defaults()
	s.Categories[CategoryExam] = []Rule{{Amount: 1, Unit: UnitDays}}

	if got := Resolve(s, ""); got != nil {
		t.Errorf("Resolve with no category = %+v, want nil", got)
	}
	if got := Resolve(s, CategoryBreak); got != nil {
		t.Errorf("Resolve of empty category = %+v, want nil", got)
	}
	if got := Resolve(nil, CategoryExam); got != nil {
		t.Errorf("Resolve of nil settings = %+v, want nil", got)
	}
}
