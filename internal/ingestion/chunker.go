package ingestion

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/askmyrace/backend/internal/docstore"
	"github.com/askmyrace/backend/internal/pdftext"
)

const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 200

	// Section titles are only inferred from the first few prominent lines
	// of a page.
	titleScanLines     = 5
	maxTitleLength     = 80
	minTitleAlphaRatio = 0.5
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	sentenceEndRe = regexp.MustCompile(`[.!?]\s`)
)

// Chunker splits page text into overlapping passages, preferring to cut
// at paragraph boundaries, then line breaks, then sentence ends, then
// whitespace, before resorting to a hard character cut.
type Chunker struct {
	chunkSize int
	overlap   int
}

func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = defaultChunkOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 4
		}
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// ChunkPages converts extracted pages into ordered chunks. Order indices
// increase strictly across the whole document in emission order. Pages
// without extractable text yield nothing.
func (c *Chunker) ChunkPages(pages []pdftext.Page) []docstore.PageChunk {
	var chunks []docstore.PageChunk
	for _, page := range pages {
		text := strings.TrimSpace(page.Text)
		if text == "" {
			continue
		}
		section := InferSectionTitle(text)
		for _, piece := range c.splitText(text) {
			chunks = append(chunks, docstore.PageChunk{
				ID:      uuid.NewString(),
				Text:    piece,
				Page:    page.Number,
				Section: section,
				Order:   len(chunks),
			})
		}
	}
	return chunks
}

func (c *Chunker) splitText(text string) []string {
	var pieces []string
	start := 0
	for start < len(text) {
		end := start + c.chunkSize
		if end >= len(text) {
			if piece := strings.TrimSpace(text[start:]); piece != "" {
				pieces = append(pieces, piece)
			}
			break
		}

		cut := c.findCut(text, start, end)
		if piece := strings.TrimSpace(text[start:cut]); piece != "" {
			pieces = append(pieces, piece)
		}

		next := cut - c.overlap
		if next <= start {
			next = cut
		}
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return pieces
}

// findCut picks the best break position inside the window [start, end).
func (c *Chunker) findCut(text string, start, end int) int {
	window := text[start:end]

	if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
		return start + idx + 2
	}
	if idx := strings.LastIndex(window, "\n"); idx > 0 {
		return start + idx + 1
	}
	if locs := sentenceEndRe.FindAllStringIndex(window, -1); len(locs) > 0 {
		last := locs[len(locs)-1]
		if last[0] > 0 {
			return start + last[1]
		}
	}
	if idx := strings.LastIndexFunc(window, unicode.IsSpace); idx > 0 {
		return start + idx + 1
	}

	// Hard cut, pulled back onto a rune boundary.
	for end > start+1 && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

// InferSectionTitle guesses a heading for a page from its earliest
// prominent line: short, mostly alphabetic, and fully upper-case. The
// first non-empty line is the fallback.
func InferSectionTitle(pageText string) string {
	var lines []string
	for _, raw := range strings.Split(pageText, "\n") {
		line := strings.TrimSpace(raw)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "Unknown Section"
	}

	limit := titleScanLines
	if limit > len(lines) {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		if len(line) > maxTitleLength {
			continue
		}
		if alphaRatio(line) <= minTitleAlphaRatio {
			continue
		}
		if line == strings.ToUpper(line) {
			return normalizeTitle(line)
		}
	}
	return normalizeTitle(lines[0])
}

func alphaRatio(line string) float64 {
	if line == "" {
		return 0
	}
	var alpha int
	runes := []rune(line)
	for _, r := range runes {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	return float64(alpha) / float64(len(runes))
}

func normalizeTitle(title string) string {
	cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(title), " ")
	return titleCase(cleaned)
}

// titleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "SATURDAY 13TH" becomes "Saturday 13Th".
func titleCase(value string) string {
	var builder strings.Builder
	builder.Grow(len(value))
	prevLetter := false
	for _, r := range value {
		if unicode.IsLetter(r) {
			if prevLetter {
				builder.WriteRune(unicode.ToLower(r))
			} else {
				builder.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			builder.WriteRune(r)
			prevLetter = false
		}
	}
	return builder.String()
}
