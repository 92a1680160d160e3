package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askmyrace/backend/internal/docstore"
	"github.com/askmyrace/backend/internal/metrics"
	"github.com/askmyrace/backend/internal/pdftext"
	"github.com/askmyrace/backend/internal/schedule"
	"github.com/askmyrace/backend/pkg/logger"
)

var (
	// ErrNoText means the PDF parsed but yielded no extractable text.
	ErrNoText = errors.New("could not extract text from the PDF")

	// ErrNotRaceGuide means the content check rejected the document.
	ErrNotRaceGuide = errors.New("the uploaded PDF does not appear to describe a triathlon athlete guide")
)

// raceGuideKeywords gate ingestion: a sample of the document must
// mention at least minKeywordMatches of these before it is accepted.
var raceGuideKeywords = []string{
	"triathlon",
	"triathlete",
	"swim",
	"bike",
	"run",
	"transition",
	"t1",
	"t2",
	"split",
	"race brief",
	"cut off",
	"ironman",
	"70.3",
	"half iron",
	"age group",
	"relay",
}

const (
	minKeywordMatches = 3
	keywordSampleSize = 10
)

// Embedder is the slice of the LLM client ingestion needs.
type Embedder interface {
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

type Processor struct {
	embedder Embedder
	store    *docstore.Store
	chunker  *Chunker
}

func NewProcessor(embedder Embedder, store *docstore.Store, chunker *Chunker) *Processor {
	return &Processor{
		embedder: embedder,
		store:    store,
		chunker:  chunker,
	}
}

// IngestPDF runs the full pipeline: text extraction, chunking, the
// race-guide content check, embedding, schedule extraction, and
// registration in the store.
func (p *Processor) IngestPDF(ctx context.Context, filename string, data []byte) (*docstore.DocumentEntry, error) {
	start := time.Now()

	entry, err := p.ingest(ctx, filename, data)
	if err != nil {
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.IngestTotal.WithLabelValues("success").Inc()
	metrics.IngestDuration.Observe(time.Since(start).Seconds())
	metrics.GuidePages.Observe(float64(entry.PageCount))
	metrics.GuideChunks.Observe(float64(len(entry.Chunks)))

	return entry, nil
}

func (p *Processor) ingest(ctx context.Context, filename string, data []byte) (*docstore.DocumentEntry, error) {
	logger.Info("Ingesting guide", zap.String("filename", filename), zap.Int("bytes", len(data)))

	pages, pageCount, err := pdftext.ExtractPages(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	pageChunks := p.chunker.ChunkPages(pages)
	if len(pageChunks) == 0 {
		return nil, ErrNoText
	}

	if !looksLikeRaceGuide(pageChunks) {
		return nil, ErrNotRaceGuide
	}

	texts := make([]string, len(pageChunks))
	for i, chunk := range pageChunks {
		texts[i] = chunk.Text
	}

	embeddings, err := p.embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(pageChunks) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(pageChunks))
	}

	chunks := make([]docstore.Chunk, len(pageChunks))
	for i, pageChunk := range pageChunks {
		chunks[i] = docstore.Chunk{
			PageChunk: pageChunk,
			Embedding: embeddings[i],
		}
	}

	days := schedule.Extract(pages, pageChunks)
	items := 0
	for _, day := range days {
		items += len(day.Items)
	}
	metrics.ScheduleItems.Observe(float64(items))

	entry := &docstore.DocumentEntry{
		ID:         uuid.NewString(),
		Filename:   filename,
		PageCount:  pageCount,
		UploadedAt: time.Now().UTC(),
		Chunks:     chunks,
		Schedule:   days,
	}
	p.store.Put(entry)

	logger.Info("Guide ingested",
		zap.String("document_id", entry.ID),
		zap.Int("pages", pageCount),
		zap.Int("chunks", len(chunks)),
		zap.Int("schedule_days", len(days)),
		zap.Int("schedule_items", items),
	)

	return entry, nil
}

// looksLikeRaceGuide samples the first chunks and counts distinct
// keyword hits over the combined lowercased text.
func looksLikeRaceGuide(chunks []docstore.PageChunk) bool {
	sample := chunks
	if len(sample) > keywordSampleSize {
		sample = sample[:keywordSampleSize]
	}

	var builder strings.Builder
	for i, chunk := range sample {
		if i > 0 {
			builder.WriteString(" ")
		}
		builder.WriteString(chunk.Text)
	}
	lowered := strings.ToLower(builder.String())

	matches := 0
	for _, keyword := range raceGuideKeywords {
		if strings.Contains(lowered, keyword) {
			matches++
		}
	}
	return matches >= minKeywordMatches
}
