package chapters

import (
	"testing"

	"economist-podcast/internal/models"
)

func titles(chaps []models.Chapter) []string {
	out := make([]string, len(chaps))
	for i, c := range chaps {
		out[i] = c.Title
	}
	return out
}

func TestSequenceEditorialOrder(t *testing.T) {
	input := []models.Chapter{
		{Title: "Briefing", Duration: 1800},
		{Title: "Business", Duration: 200},
		{Title: "The World This Week", Duration: 500},
		{Title: "Finance and economics", Duration: 300},
		{Title: "Letters", Duration: 120},
		{Title: "Business", Duration: 90},
		{Title: "Asia", Duration: 400},
		{Title: "Europe", Duration: 250},
	}

	got := titles(Sequence(input))
	want := []string{
		"The World This Week",
		"Letters",
		"Business", // 90s before 200s
		"Business",
		"Finance and economics",
		"Europe", // 250s before 400s
		"Asia",
		"Briefing",
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %q (full order %v)", i, want[i], got[i], got)
		}
	}
	if Sequence(input)[2].Duration != 90 {
		t.Fatalf("expected the shorter business chapter first")
	}
}

func TestSequenceIsStableForEqualKeys(t *testing.T) {
	input := []models.Chapter{
		{Title: "Asia first", Duration: 300},
		{Title: "Asia second", Duration: 300},
		{Title: "Asia third", Duration: 300},
		{Title: "Briefing one", Duration: 900},
		{Title: "Briefing two", Duration: 1200},
	}

	got := titles(Sequence(input))
	want := []string{"Asia first", "Asia second", "Asia third", "Briefing one", "Briefing two"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected extraction order preserved for equal keys, got %v", got)
		}
	}
}

func TestSequenceBriefingsIgnoreDuration(t *testing.T) {
	// The longer briefing was extracted first; both must sort after
	// everything else and keep that extraction order.
	input := []models.Chapter{
		{Title: "Briefing long", Duration: 2000},
		{Title: "Briefing short", Duration: 700},
		{Title: "Asia", Duration: 3000},
	}

	got := titles(Sequence(input))
	want := []string{"Asia", "Briefing long", "Briefing short"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSequenceRuleOrderWinsForAmbiguousTitles(t *testing.T) {
	// "Business Briefing" matches both the business and briefing rules; the
	// business rule is evaluated first and must win.
	input := []models.Chapter{
		{Title: "Briefing", Duration: 1800},
		{Title: "Business Briefing", Duration: 400},
		{Title: "Asia", Duration: 100},
	}

	got := titles(Sequence(input))
	want := []string{"Business Briefing", "Asia", "Briefing"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSequenceMatchesAreCaseInsensitive(t *testing.T) {
	input := []models.Chapter{
		{Title: "asia", Duration: 100},
		{Title: "THE WORLD THIS WEEK", Duration: 500},
	}

	got := titles(Sequence(input))
	if got[0] != "THE WORLD THIS WEEK" {
		t.Fatalf("expected case-insensitive match to place the digest first, got %v", got)
	}
}

func TestSequenceDoesNotMutateInput(t *testing.T) {
	input := []models.Chapter{
		{Title: "Briefing", Duration: 1800},
		{Title: "Letters", Duration: 120},
	}

	Sequence(input)

	if input[0].Title != "Briefing" || input[1].Title != "Letters" {
		t.Fatalf("expected input untouched, got %v", titles(input))
	}
}

func TestSequenceEmpty(t *testing.T) {
	if got := Sequence(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
