package ingestion

import (
	"strings"
	"testing"

	"github.com/askmyrace/backend/internal/pdftext"
)

func TestChunkPagesDeterministic(t *testing.T) {
	chunker := NewChunker(100, 20)
	pages := []pdftext.Page{
		{Number: 1, Text: "RACE WEEK\n" + strings.Repeat("The swim course opens early. ", 20)},
		{Number: 2, Text: "COURSE MAPS\n" + strings.Repeat("Follow the marked bike route. ", 20)},
	}

	first := chunker.ChunkPages(pages)
	second := chunker.ChunkPages(pages)

	if len(first) == 0 {
		t.Fatal("expected chunks, got none")
	}
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text {
			t.Errorf("chunk %d text differs between runs", i)
		}
		if first[i].Page != second[i].Page || first[i].Section != second[i].Section || first[i].Order != second[i].Order {
			t.Errorf("chunk %d metadata differs between runs", i)
		}
	}
}

func TestChunkPagesOrderStrictlyIncreasing(t *testing.T) {
	chunker := NewChunker(80, 10)
	pages := []pdftext.Page{
		{Number: 1, Text: strings.Repeat("First page text with several sentences. ", 10)},
		{Number: 2, Text: "   "},
		{Number: 3, Text: strings.Repeat("Third page text with more sentences. ", 10)},
	}

	chunks := chunker.ChunkPages(pages)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Order != i {
			t.Errorf("chunk %d has order %d", i, chunk.Order)
		}
		if chunk.Page == 2 {
			t.Errorf("empty page should not produce chunks, got chunk %d", i)
		}
	}
}

func TestChunkPagesRespectsSizeTarget(t *testing.T) {
	chunker := NewChunker(120, 30)
	text := strings.Repeat("Athletes must attend the race briefing before collecting numbers. ", 15)

	chunks := chunker.ChunkPages([]pdftext.Page{{Number: 1, Text: text}})
	if len(chunks) < 2 {
		t.Fatalf("expected text to split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk.Text) > 120 {
			t.Errorf("chunk %d length %d exceeds size target", i, len(chunk.Text))
		}
	}
}

func TestInferSectionTitlePicksUppercaseLine(t *testing.T) {
	text := "some preamble sentence\nEVENT SCHEDULE\nmore body text follows here"
	if got := InferSectionTitle(text); got != "Event Schedule" {
		t.Fatalf("got %q, want %q", got, "Event Schedule")
	}
}

func TestInferSectionTitleFallsBackToFirstLine(t *testing.T) {
	text := "Welcome to race week\nthis line is lower case\nso is this one"
	if got := InferSectionTitle(text); got != "Welcome To Race Week" {
		t.Fatalf("got %q, want %q", got, "Welcome To Race Week")
	}
}

func TestInferSectionTitleSkipsLongAndNumericLines(t *testing.T) {
	long := strings.ToUpper(strings.Repeat("VERY LONG HEADING ", 10))
	text := long + "\n12:00 13:00 14:00 15:00\nRACE DAY\nbody"
	if got := InferSectionTitle(text); got != "Race Day" {
		t.Fatalf("got %q, want %q", got, "Race Day")
	}
}

func TestTitleCaseAfterDigits(t *testing.T) {
	if got := titleCase("SATURDAY 13TH SEPTEMBER"); got != "Saturday 13Th September" {
		t.Fatalf("got %q, want %q", got, "Saturday 13Th September")
	}
}
