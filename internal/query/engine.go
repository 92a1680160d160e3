package query

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	rediscache "github.com/askmyrace/backend/internal/cache/redis"
	"github.com/askmyrace/backend/internal/docstore"
	"github.com/askmyrace/backend/internal/llm"
	"github.com/askmyrace/backend/internal/metrics"
	"github.com/askmyrace/backend/internal/retrieval"
	"github.com/askmyrace/backend/internal/schedule"
	"github.com/askmyrace/backend/pkg/logger"
	"github.com/askmyrace/backend/pkg/utils"
)

// excerptRunes caps citation excerpt length.
const excerptRunes = 240

type Engine struct {
	store     *docstore.Store
	llmClient *llm.Client
	cache     *rediscache.Client // nil when caching is disabled
	topK      int
	cacheTTL  time.Duration
}

type AskRequest struct {
	DocumentID string
	Question   string
	Context    string
}

type Citation struct {
	Section string `json:"section"`
	Page    int    `json:"page"`
	Excerpt string `json:"excerpt"`
}

type AskResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

func NewEngine(store *docstore.Store, llmClient *llm.Client, cache *rediscache.Client, topK int, cacheTTL time.Duration) *Engine {
	return &Engine{
		store:     store,
		llmClient: llmClient,
		cache:     cache,
		topK:      topK,
		cacheTTL:  cacheTTL,
	}
}

// Ask retrieves the most relevant guide passages, augments them with
// transition logistics when the question calls for it, and asks the
// model for a grounded answer.
func (e *Engine) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	startTime := time.Now()

	entry, err := e.store.Require(req.DocumentID)
	if err != nil {
		metrics.AskTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	cacheKey := utils.HashKey(req.DocumentID, req.Question, req.Context)
	if e.cache != nil {
		var cached AskResponse
		hit, err := e.cache.GetAnswer(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn("Answer cache lookup failed", zap.Error(err))
		}
		if hit {
			metrics.CacheHits.WithLabelValues("answer").Inc()
			metrics.AskTotal.WithLabelValues("success").Inc()
			metrics.AskDuration.WithLabelValues("true").Observe(time.Since(startTime).Seconds())
			return &cached, nil
		}
		metrics.CacheMisses.WithLabelValues("answer").Inc()
	}

	combined := req.Question
	if req.Context != "" {
		combined = fmt.Sprintf("%s\n\nPrevious conversation context:\n%s", req.Question, req.Context)
	}

	queryEmbedding, err := e.embedQuery(ctx, combined)
	if err != nil {
		metrics.AskTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	retrieved := retrieval.Search(entry.Chunks, queryEmbedding, e.topK)
	retrieved = schedule.AugmentTransitionChunks(req.Question, entry.Chunks, retrieved)
	notes := schedule.TransitionNotes(req.Question, entry.Chunks)

	metrics.RetrievedChunks.Observe(float64(len(retrieved)))
	if len(notes) > 0 {
		metrics.TransitionNotes.Add(float64(len(notes)))
	}

	answer, err := e.llmClient.AnswerQuestion(ctx, req.Question, retrieved, notes)
	if err != nil {
		metrics.AskTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LLMTokensUsed.WithLabelValues("chat", "prompt").Add(float64(answer.Usage.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues("chat", "completion").Add(float64(answer.Usage.CompletionTokens))

	citations := make([]Citation, 0, len(retrieved))
	for _, chunk := range retrieved {
		citations = append(citations, Citation{
			Section: chunk.Section,
			Page:    chunk.Page,
			Excerpt: excerpt(chunk.Text),
		})
	}

	response := &AskResponse{
		Answer:    answer.Content,
		Citations: citations,
	}

	if e.cache != nil {
		if err := e.cache.SetAnswer(ctx, cacheKey, response, e.cacheTTL); err != nil {
			logger.Warn("Failed to cache answer", zap.Error(err))
		}
	}

	metrics.AskTotal.WithLabelValues("success").Inc()
	metrics.AskDuration.WithLabelValues("false").Observe(time.Since(startTime).Seconds())

	logger.Info("Question answered",
		zap.String("document_id", req.DocumentID),
		zap.Int("retrieved", len(retrieved)),
		zap.Int("transition_notes", len(notes)),
		zap.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	return response, nil
}

// embedQuery checks the embedding cache before calling the model.
func (e *Engine) embedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.cache == nil {
		return e.llmClient.GenerateEmbedding(ctx, text)
	}

	textHash := utils.HashKey(text)
	embedding, hit, err := e.cache.GetEmbedding(ctx, textHash)
	if err != nil {
		logger.Warn("Embedding cache lookup failed", zap.Error(err))
	}
	if hit {
		metrics.CacheHits.WithLabelValues("embedding").Inc()
		return embedding, nil
	}
	metrics.CacheMisses.WithLabelValues("embedding").Inc()

	embedding, err = e.llmClient.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := e.cache.SetEmbedding(ctx, textHash, embedding, e.cacheTTL); err != nil {
		logger.Warn("Failed to cache embedding", zap.Error(err))
	}
	return embedding, nil
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes])
}
