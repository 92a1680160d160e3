package schedule

import (
	"testing"

	"github.com/askmyrace/backend/internal/docstore"
	"github.com/askmyrace/backend/internal/pdftext"
)

func TestExtractTextFallback(t *testing.T) {
	text := "EVENT SCHEDULE\nSATURDAY 13TH SEPTEMBER\n09:00 Registration Opens\n17:00 Registration Closes"
	pages := []pdftext.Page{{Number: 1, Text: text}}
	chunks := []docstore.PageChunk{{
		ID:      "c1",
		Text:    text,
		Page:    1,
		Section: "Event Schedule",
		Order:   0,
	}}

	days := Extract(pages, chunks)
	if len(days) != 1 {
		t.Fatalf("got %d days, want 1", len(days))
	}
	day := days[0]
	if day.Title != "Saturday 13Th September" {
		t.Fatalf("got title %q, want %q", day.Title, "Saturday 13Th September")
	}
	if len(day.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(day.Items))
	}

	want := []struct {
		time     string
		activity string
	}{
		{"09:00", "Registration Opens"},
		{"17:00", "Registration Closes"},
	}
	for i, item := range day.Items {
		if item.Time != want[i].time || item.Activity != want[i].activity {
			t.Errorf("item %d = {%q, %q}, want {%q, %q}", i, item.Time, item.Activity, want[i].time, want[i].activity)
		}
		if item.Location != nil {
			t.Errorf("item %d has unexpected location %q", i, *item.Location)
		}
	}
}

func TestExtractSkipsNonScheduleSections(t *testing.T) {
	text := "SATURDAY 13TH SEPTEMBER\n09:00 Registration Opens"
	chunks := []docstore.PageChunk{{
		ID:      "c1",
		Text:    text,
		Page:    1,
		Section: "Pro Race Schedule",
		Order:   0,
	}}

	if days := Extract(nil, chunks); len(days) != 0 {
		t.Fatalf("blocklisted section produced %d days", len(days))
	}
}

func TestExtractItemsBeforeDayLabelDropped(t *testing.T) {
	text := "09:00 Orphan Item\nFRIDAY 12TH SEPTEMBER\n10:00 Expo Opens"
	pages := []pdftext.Page{{Number: 1, Text: text}}
	chunks := []docstore.PageChunk{{
		ID:      "c1",
		Text:    text,
		Page:    1,
		Section: "Event Schedule",
		Order:   0,
	}}

	days := Extract(pages, chunks)
	if len(days) != 1 {
		t.Fatalf("got %d days, want 1", len(days))
	}
	if len(days[0].Items) != 1 || days[0].Items[0].Activity != "Expo Opens" {
		t.Fatalf("unexpected items: %+v", days[0].Items)
	}
}

func TestParseDayLabel(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"SATURDAY 13TH SEPTEMBER", "Saturday 13Th September"},
		{"Friday 12 September", "Friday 12 September"},
		{"Sunday", ""},
		{"Saturday race briefing", ""},
		{"Registration Opens", ""},
	}
	for _, tc := range cases {
		if got := parseDayLabel(tc.line); got != tc.want {
			t.Errorf("parseDayLabel(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestParseTimeAndActivityRejectsDayRemainder(t *testing.T) {
	if _, _, ok := parseTimeAndActivity("09:00 Saturday 13th September"); ok {
		t.Fatal("day-label remainder should be rejected")
	}

	timeValue, activity, ok := parseTimeAndActivity("06:30 - 07:15 Swim Warm Up")
	if !ok {
		t.Fatal("expected a parsed item")
	}
	if timeValue != "06:30 - 07:15" {
		t.Fatalf("got time %q", timeValue)
	}
	if activity != "Swim Warm Up" {
		t.Fatalf("got activity %q", activity)
	}
}

func TestShouldSkipLine(t *testing.T) {
	skip := []string{
		"* wave starts may change",
		"12 t100triathlon.com",
		"PAGE 4",
		"TIME ACTIVITY LOCATION",
	}
	for _, line := range skip {
		if !shouldSkipLine(line) {
			t.Errorf("expected %q to be skipped", line)
		}
	}
	if shouldSkipLine("09:00 Registration Opens") {
		t.Error("schedule line should not be skipped")
	}
}
