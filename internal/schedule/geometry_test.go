package schedule

import (
	"testing"

	"github.com/askmyrace/backend/internal/pdftext"
)

func word(text string, top, x0, x1 float64) pdftext.Word {
	return pdftext.Word{Text: text, Top: top, X0: x0, X1: x1}
}

func headingWords(day, date, month string, top float64) []pdftext.Word {
	return []pdftext.Word{
		word(day, top, 10, 60),
		word(date, top, 65, 85),
		word(month, top, 90, 150),
	}
}

func TestDaySegmentAssignment(t *testing.T) {
	var words []pdftext.Word
	words = append(words, headingWords("Saturday", "13th", "September", 10)...)
	words = append(words, headingWords("Sunday", "14th", "September", 50)...)
	words = append(words, headingWords("Monday", "15th", "September", 90)...)
	words = append(words,
		word("08:00", 60, 10, 40),
		word("Swim", 60, 50, 75),
		word("Start", 60, 80, 105),
	)

	days := parseScheduleWords(words)
	if len(days) != 1 {
		t.Fatalf("got %d days with items, want 1", len(days))
	}
	if days[0].Title != "Sunday 14Th September" {
		t.Fatalf("item assigned to day %q, want the segment opened at position 50", days[0].Title)
	}
	if len(days[0].Items) != 1 {
		t.Fatalf("got %d items, want 1", len(days[0].Items))
	}
	item := days[0].Items[0]
	if item.Time != "08:00" || item.Activity != "Swim Start" {
		t.Fatalf("got item {%q, %q}", item.Time, item.Activity)
	}
}

func TestDuplicateItemsCollapse(t *testing.T) {
	var words []pdftext.Word
	words = append(words, headingWords("Saturday", "13th", "September", 10)...)
	for _, top := range []float64{30, 62} {
		words = append(words,
			word("09:00", top, 10, 35),
			word("Registration", top, 45, 100),
			word("Opens", top, 105, 130),
		)
	}

	days := parseScheduleWords(words)
	if len(days) != 1 {
		t.Fatalf("got %d days, want 1", len(days))
	}
	if len(days[0].Items) != 1 {
		t.Fatalf("duplicate rows produced %d items, want 1", len(days[0].Items))
	}
	if days[0].Items[0].Activity != "Registration Opens" {
		t.Fatalf("got activity %q", days[0].Items[0].Activity)
	}
}

func TestTimeGroupExtendsOverGluedDash(t *testing.T) {
	// Word assembly can fuse a range dash onto the closing time,
	// producing tokens like "-06:00"; the group must still extend.
	var words []pdftext.Word
	words = append(words, headingWords("Sunday", "14th", "September", 10)...)
	words = append(words,
		word("04:30", 30, 10, 35),
		word("-06:00", 30, 40, 70),
		word("Transition", 30, 80, 130),
		word("Opens", 30, 135, 160),
	)

	days := parseScheduleWords(words)
	if len(days) != 1 || len(days[0].Items) != 1 {
		t.Fatalf("got days %+v, want one day with one item", days)
	}
	item := days[0].Items[0]
	if item.Time != "04:30 - 06:00" {
		t.Fatalf("time group truncated: got %q, want %q", item.Time, "04:30 - 06:00")
	}
	if item.Activity != "Transition Opens" {
		t.Fatalf("got activity %q", item.Activity)
	}
}

func TestSplitColumnsWideGap(t *testing.T) {
	words := []pdftext.Word{
		word("Race", 20, 50, 70),
		word("Briefing", 20, 75, 110),
		word("Town", 20, 200, 225),
		word("Hall", 20, 230, 250),
	}

	activity, location := splitColumns(words)
	if joinWordTexts(activity) != "Race Briefing" {
		t.Fatalf("activity column = %q", joinWordTexts(activity))
	}
	if joinWordTexts(location) != "Town Hall" {
		t.Fatalf("location column = %q", joinWordTexts(location))
	}
}

func TestSplitColumnsNarrowGapStaysSingle(t *testing.T) {
	words := []pdftext.Word{
		word("Race", 20, 50, 70),
		word("Briefing", 20, 75, 110),
		word("Tent", 20, 100, 120),
	}

	activity, location := splitColumns(words)
	if location != nil {
		t.Fatalf("narrow gap split into location %q", joinWordTexts(location))
	}
	if joinWordTexts(activity) != "Race Briefing Tent" {
		t.Fatalf("activity column = %q", joinWordTexts(activity))
	}
}

func TestSplitColumnsInsufficientClearanceStaysSingle(t *testing.T) {
	// Start positions gap clears the split threshold but the first
	// column's right edge crowds the second column.
	words := []pdftext.Word{
		word("Race", 20, 50, 140),
		word("Hall", 20, 150, 180),
	}

	activity, location := splitColumns(words)
	if location != nil {
		t.Fatalf("crowded columns split into location %q", joinWordTexts(location))
	}
	if len(activity) != 2 {
		t.Fatalf("got %d activity words, want 2", len(activity))
	}
}
