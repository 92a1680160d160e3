package retrieval

import (
	"fmt"
	"math"
	"testing"

	"github.com/askmyrace/backend/internal/docstore"
)

func makeChunk(id string, page, order int, embedding []float32) docstore.Chunk {
	return docstore.Chunk{
		PageChunk: docstore.PageChunk{
			ID:    id,
			Text:  "chunk " + id,
			Page:  page,
			Order: order,
		},
		Embedding: embedding,
	}
}

func TestCosineSimilarityZeroNormIsFinite(t *testing.T) {
	zero := []float32{0, 0, 0}
	query := []float32{1, 0, 0}

	score := CosineSimilarity(zero, query)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		t.Fatalf("similarity against zero vector is not finite: %v", score)
	}
}

func TestSearchEmptyChunks(t *testing.T) {
	if got := Search(nil, []float32{1, 0}, 5); got != nil {
		t.Fatalf("expected nil result, got %d chunks", len(got))
	}
}

func TestSearchAnchorsAndNeighbors(t *testing.T) {
	chunks := []docstore.Chunk{
		makeChunk("a", 1, 0, []float32{1, 0}),
		makeChunk("b", 1, 1, []float32{0, 1}),
		makeChunk("c", 2, 2, []float32{0.9, 0.1}),
		makeChunk("d", 3, 3, []float32{0, 1}),
	}

	got := Search(chunks, []float32{1, 0}, 2)

	wantIDs := []string{"a", "b", "c"}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d chunks, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("result[%d] = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestSearchBoundedAndDeduplicated(t *testing.T) {
	var chunks []docstore.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, makeChunk(fmt.Sprintf("c%d", i), i%3+1, i, []float32{float32(i + 1), 1}))
	}

	topK := 3
	got := Search(chunks, []float32{1, 0.5}, topK)

	if len(got) > 2*topK {
		t.Fatalf("got %d chunks, want at most %d", len(got), 2*topK)
	}
	seen := make(map[string]bool)
	for _, chunk := range got {
		if seen[chunk.ID] {
			t.Fatalf("duplicate chunk id %q in result", chunk.ID)
		}
		seen[chunk.ID] = true
	}
}

func TestSearchAnchorSimilarityDominatesUnselected(t *testing.T) {
	chunks := []docstore.Chunk{
		makeChunk("best", 1, 0, []float32{1, 0}),
		makeChunk("good", 2, 1, []float32{0.8, 0.2}),
		makeChunk("poor", 3, 2, []float32{0, 1}),
		makeChunk("worst", 4, 3, []float32{-1, 0}),
	}
	query := []float32{1, 0}

	got := Search(chunks, query, 2)

	returned := make(map[string]bool)
	for _, chunk := range got {
		returned[chunk.ID] = true
	}

	var minReturned, maxUnselected float64 = math.Inf(1), math.Inf(-1)
	for _, chunk := range chunks {
		score := CosineSimilarity(chunk.Embedding, query)
		if returned[chunk.ID] {
			if score < minReturned {
				minReturned = score
			}
		} else if score > maxUnselected {
			maxUnselected = score
		}
	}
	if minReturned < maxUnselected {
		t.Fatalf("returned similarity %v below unselected similarity %v", minReturned, maxUnselected)
	}
}

func TestSearchTieBreaksByOrderIndex(t *testing.T) {
	embedding := []float32{1, 0}
	chunks := []docstore.Chunk{
		makeChunk("later", 2, 5, embedding),
		makeChunk("earlier", 1, 1, embedding),
	}

	got := Search(chunks, []float32{1, 0}, 1)
	if len(got) == 0 {
		t.Fatal("expected results")
	}
	if got[0].ID != "earlier" {
		t.Fatalf("tie broke to %q, want %q", got[0].ID, "earlier")
	}
}
