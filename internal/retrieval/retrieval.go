package retrieval

import (
	"math"
	"sort"

	"github.com/askmyrace/backend/internal/docstore"
)

// normEpsilon stands in for a zero vector norm so that similarity
// against an all-zero embedding stays finite.
const normEpsilon = 1e-10

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths compare only the shared prefix.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		denom = normEpsilon
	}
	return dot / denom
}

// Search ranks chunks by cosine similarity to the query embedding and
// returns the topK anchors, each followed by its first same-page
// neighbor that has not been emitted yet. Ties in similarity break on
// the chunk's original order index so results are reproducible. The
// result holds at most 2*topK chunks with no duplicate ids.
func Search(chunks []docstore.Chunk, queryEmbedding []float32, topK int) []docstore.Chunk {
	if len(chunks) == 0 || topK <= 0 {
		return nil
	}

	type scored struct {
		idx   int
		score float64
	}

	ranked := make([]scored, len(chunks))
	for i, chunk := range chunks {
		ranked[i] = scored{idx: i, score: CosineSimilarity(chunk.Embedding, queryEmbedding)}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return chunks[ranked[i].idx].Order < chunks[ranked[j].idx].Order
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}

	selected := make([]docstore.Chunk, 0, 2*topK)
	seen := make(map[string]bool, 2*topK)

	for _, anchor := range ranked[:topK] {
		chunk := chunks[anchor.idx]
		if seen[chunk.ID] {
			continue
		}
		selected = append(selected, chunk)
		seen[chunk.ID] = true

		// Widen context with the first unseen chunk from the same page.
		for _, candidate := range chunks {
			if candidate.Page != chunk.Page || seen[candidate.ID] {
				continue
			}
			selected = append(selected, candidate)
			seen[candidate.ID] = true
			break
		}
	}

	return selected
}
