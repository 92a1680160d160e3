package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "race_guide_ask_duration_seconds",
			Help:    "Question answering duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"cached"},
	)

	AskTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "race_guide_ask_total",
			Help: "Total number of questions answered",
		},
		[]string{"status"},
	)

	IngestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "race_guide_ingest_duration_seconds",
			Help:    "Guide ingestion duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	IngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "race_guide_ingest_total",
			Help: "Total guide ingestion attempts",
		},
		[]string{"status"},
	)

	GuidePages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "race_guide_pages",
			Help:    "Pages per ingested guide",
			Buckets: []float64{1, 5, 10, 20, 40, 80},
		},
	)

	GuideChunks = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "race_guide_chunks",
			Help:    "Chunks per ingested guide",
			Buckets: []float64{1, 10, 25, 50, 100, 250, 500},
		},
	)

	RetrievedChunks = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "race_guide_retrieved_chunks",
			Help:    "Number of chunks retrieved per question",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		},
	)

	ScheduleItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "race_guide_schedule_items",
			Help:    "Schedule items extracted per guide",
			Buckets: []float64{0, 5, 10, 20, 40, 80},
		},
	)

	TransitionNotes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "race_guide_transition_notes_total",
			Help: "Total transition notes attached to answers",
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "race_guide_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "race_guide_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "race_guide_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(AskDuration)
	prometheus.MustRegister(AskTotal)
	prometheus.MustRegister(IngestDuration)
	prometheus.MustRegister(IngestTotal)
	prometheus.MustRegister(GuidePages)
	prometheus.MustRegister(GuideChunks)
	prometheus.MustRegister(RetrievedChunks)
	prometheus.MustRegister(ScheduleItems)
	prometheus.MustRegister(TransitionNotes)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
