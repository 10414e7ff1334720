package colors

import (
	"math/rand"
	"testing"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func existingWithColors(ids ...string) []EventSummary {
	var out []EventSummary
	for i, id := range ids {
		out = append(out, EventSummary{ID: string(rune('a' + i)), ColorID: id})
	}
	return out
}

func TestPickExplicitChoiceWins(t *testing.T) {
	p := NewPicker(existingWithColors("7"), newTestRand())
	if got := p.Pick("7"); got != "7" {
		t.Errorf("Pick(7) = %q, want the explicit choice even when in use", got)
	}
}

func TestPickLastAvailableColor(t *testing.T) {
	// Ten of eleven colors are taken; random must always land on the gap.
	existing := existingWithColors("1", "2", "3", "4", "5", "6", "7", "8", "9", "10")
	p := NewPicker(existing, newTestRand())

	for i := 0; i < 50; i++ {
		if got := p.Pick(Random); got != "11" {
			t.Fatalf("draw %d: Pick(random) = %q, want 11", i, got)
		}
	}
}

func TestPickAvoidsUsedColors(t *testing.T) {
	existing := existingWithColors("2", "4", "6")
	p := NewPicker(existing, newTestRand())

	used := map[string]bool{"2": true, "4": true, "6": true}
	for i := 0; i < 100; i++ {
		if got := p.Pick(Random); used[got] {
			t.Fatalf("draw %d: Pick(random) = %q, which is already in use", i, got)
		}
	}
}

func TestPickExhaustedPaletteFallsBack(t *testing.T) {
	p := NewPicker(existingWithColors(Palette()...), newTestRand())

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		got := p.Pick(Random)
		seen[got] = true
	}
	// Graceful degradation: draws come from the full palette.
	if len(seen) != len(Palette()) {
		t.Errorf("exhausted palette produced %d distinct colors, want %d", len(seen), len(Palette()))
	}
}

func TestPickIgnoresColorlessEvents(t *testing.T) {
	existing := []EventSummary{
		{ID: "a", ColorID: ""},
		{ID: "b", ColorID: "3"},
	}
	p := NewPicker(existing, newTestRand())

	for i := 0; i < 100; i++ {
		if got := p.Pick(Random); got == "3" {
			t.Fatalf("draw %d: picked used color 3", i)
		}
	}
}

func TestSnapshotNotUpdatedWithinBatch(t *testing.T) {
	// Two draws from a picker with one available color both get that color;
	// the snapshot does not shrink as colors are handed out.
	existing := existingWithColors("1", "2", "3", "4", "5", "6", "7", "8", "9", "10")
	p := NewPicker(existing, newTestRand())

	first := p.Pick(Random)
	second := p.Pick(Random)
	if first != "11" || second != "11" {
		t.Errorf("draws = %q, %q; want both 11 from the fixed snapshot", first, second)
	}
}
