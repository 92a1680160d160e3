package schedule

import (
	"strings"
	"testing"

	"github.com/askmyrace/backend/internal/docstore"
)

func textChunk(id string, order int, text string) docstore.Chunk {
	return docstore.Chunk{
		PageChunk: docstore.PageChunk{
			ID:    id,
			Text:  text,
			Page:  1,
			Order: order,
		},
	}
}

func TestTransitionNotesPreRaceAndRaceMorning(t *testing.T) {
	chunks := []docstore.Chunk{
		textChunk("t1", 0,
			"Transition 1 bike racking Friday 12th September 09:00 - 17:00 at the lake. "+
				"Transition 1 Sunday 14th September 04:30 - 06:00 final preparation before the start."),
	}

	notes := TransitionNotes("When can I rack my bike in T1?", chunks)
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2: %v", len(notes), notes)
	}

	preRace := notes[0]
	if !strings.Contains(preRace, "09:00 - 17:00") || !strings.Contains(preRace, "Friday") {
		t.Errorf("pre-race note missing Friday window: %q", preRace)
	}

	morning := notes[1]
	if !strings.Contains(morning, "04:30 - 06:00") || !strings.Contains(morning, "Sunday") {
		t.Errorf("race-morning note missing Sunday window: %q", morning)
	}
	if !strings.Contains(morning, "final checks only") {
		t.Errorf("race-morning note not marked for final checks only: %q", morning)
	}
	if !strings.Contains(morning, "cannot be racked") {
		t.Errorf("race-morning note must not read as a racking window: %q", morning)
	}
}

func TestTransitionNotesRaceDayLabel(t *testing.T) {
	// Guides that label the window "Race Day" instead of a weekday
	// still get a race-morning note, even past the early-hour cutoff.
	chunks := []docstore.Chunk{
		textChunk("t1", 0, "Transition 1 Race Day 07:00 - 08:15 final checks before the start."),
	}

	notes := TransitionNotes("When is T1 open on race morning?", chunks)
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1: %v", len(notes), notes)
	}
	if !strings.Contains(notes[0], "Race Day") || !strings.Contains(notes[0], "07:00 - 08:15") {
		t.Errorf("note missing the race-day window: %q", notes[0])
	}
	if !strings.Contains(notes[0], "final checks only") {
		t.Errorf("race-day note not marked for final checks only: %q", notes[0])
	}
}

func TestTransitionNotesIgnoreUnrelatedQuestions(t *testing.T) {
	chunks := []docstore.Chunk{
		textChunk("t1", 0, "Transition 1 opens Friday 09:00 - 17:00 for bike racking."),
	}

	if notes := TransitionNotes("What time does the swim start?", chunks); len(notes) != 0 {
		t.Fatalf("unrelated question produced notes: %v", notes)
	}
}

func TestTransitionNotesDegradeWithoutTimeRanges(t *testing.T) {
	chunks := []docstore.Chunk{
		textChunk("t1", 0, "Transition 1 is located next to the swim exit."),
	}

	if notes := TransitionNotes("Where is transition 1?", chunks); len(notes) != 0 {
		t.Fatalf("chunk without time range produced notes: %v", notes)
	}
}

func TestTransitionTwoNotesCollectBothCheckIns(t *testing.T) {
	chunks := []docstore.Chunk{
		textChunk("t2", 0,
			"Transition 2 red bag check in Friday 12th September 10:00 - 18:00. "+
				"Transition 2 red bag check in Saturday 13th September 08:00 - 12:00."),
	}

	notes := TransitionNotes("When do I drop off my red bag?", chunks)
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2: %v", len(notes), notes)
	}
	if !strings.Contains(notes[0], "Friday") || !strings.Contains(notes[0], "10:00 - 18:00") {
		t.Errorf("first note should cover Friday: %q", notes[0])
	}
	if !strings.Contains(notes[1], "Saturday") || !strings.Contains(notes[1], "08:00 - 12:00") {
		t.Errorf("second note should cover Saturday: %q", notes[1])
	}
}

func TestAugmentTransitionChunksSpliceFront(t *testing.T) {
	qualifying := textChunk("sched", 0, "Transition 1 bike check in 09:00 - 17:00 on Friday.")
	other := textChunk("other", 1, "The run course follows the promenade.")
	all := []docstore.Chunk{other, qualifying}
	retrieved := []docstore.Chunk{other}

	got := AugmentTransitionChunks("What time does transition 1 open?", all, retrieved)
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	if got[0].ID != "sched" {
		t.Fatalf("transition 1 chunk should be spliced to the front, got %q first", got[0].ID)
	}
}

func TestAugmentTransitionChunksSpliceEnd(t *testing.T) {
	qualifying := textChunk("sched", 0, "Transition 2 run bag check in 10:00 - 16:00 Saturday.")
	other := textChunk("other", 1, "The swim start is at the marina.")
	all := []docstore.Chunk{other, qualifying}
	retrieved := []docstore.Chunk{other}

	got := AugmentTransitionChunks("Where do I leave my run gear?", all, retrieved)
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	if got[1].ID != "sched" {
		t.Fatalf("transition 2 chunk should be appended, got %q last", got[1].ID)
	}
}

func TestAugmentTransitionChunksNoDuplicate(t *testing.T) {
	qualifying := textChunk("sched", 0, "Transition 1 bike check in 09:00 - 17:00 on Friday.")
	all := []docstore.Chunk{qualifying}
	retrieved := []docstore.Chunk{qualifying}

	got := AugmentTransitionChunks("When does T1 open for bike check?", all, retrieved)
	if len(got) != 1 {
		t.Fatalf("qualifying chunk spliced twice: %d chunks", len(got))
	}
}

func TestAugmentTransitionChunksUnrelatedQuestion(t *testing.T) {
	all := []docstore.Chunk{textChunk("sched", 0, "Transition 1 bike check in 09:00 - 17:00.")}
	var retrieved []docstore.Chunk

	if got := AugmentTransitionChunks("How long is the run?", all, retrieved); len(got) != 0 {
		t.Fatalf("unrelated question augmented retrieval: %d chunks", len(got))
	}
}
