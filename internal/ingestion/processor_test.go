package ingestion

import (
	"testing"

	"github.com/askmyrace/backend/internal/docstore"
)

func TestLooksLikeRaceGuide(t *testing.T) {
	guide := []docstore.PageChunk{
		{Text: "Welcome to the triathlon. The swim starts at the marina."},
		{Text: "Bike check in opens Friday. Transition 1 is next to the lake."},
	}
	if !looksLikeRaceGuide(guide) {
		t.Fatal("a guide mentioning triathlon, swim, bike and transition should pass")
	}

	unrelated := []docstore.PageChunk{
		{Text: "Quarterly financial report for the board of directors."},
		{Text: "Revenue grew by twelve percent year over year."},
	}
	if looksLikeRaceGuide(unrelated) {
		t.Fatal("an unrelated document should be rejected")
	}
}

func TestLooksLikeRaceGuideSamplesEarlyChunksOnly(t *testing.T) {
	chunks := make([]docstore.PageChunk, 0, 12)
	for i := 0; i < 11; i++ {
		chunks = append(chunks, docstore.PageChunk{Text: "general page text"})
	}
	chunks = append(chunks, docstore.PageChunk{Text: "triathlon swim bike run transition"})

	if looksLikeRaceGuide(chunks) {
		t.Fatal("keywords beyond the sample window should not count")
	}
}
