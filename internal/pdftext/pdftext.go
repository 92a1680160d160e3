package pdftext

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/askmyrace/backend/pkg/logger"
)

// Word is a positioned token on a page. Top grows downward: a larger
// value means the word sits lower on the page.
type Word struct {
	Text string
	Top  float64
	X0   float64
	X1   float64
}

// Page carries the extracted text of one page together with its
// positioned words. Words may be empty when the page yielded no usable
// layout data; callers must treat that as text-only input.
type Page struct {
	Number int
	Text   string
	Words  []Word
}

// ExtractPages reads every page of the PDF and returns per-page text
// and word positions plus the total page count. Pages that cannot be
// parsed are skipped rather than failing the document.
func ExtractPages(data []byte) ([]Page, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open pdf: %w", err)
	}

	pageCount := reader.NumPage()
	pages := make([]Page, 0, pageCount)

	for number := 1; number <= pageCount; number++ {
		page := reader.Page(number)
		if page.V.IsNull() {
			continue
		}

		extracted, ok := extractPage(page, number)
		if !ok || strings.TrimSpace(extracted.Text) == "" {
			continue
		}
		pages = append(pages, extracted)
	}

	return pages, pageCount, nil
}

// extractPage recovers rows of text from one page. The underlying
// library panics on some malformed content streams, so the whole page
// is sacrificed when that happens.
func extractPage(page pdf.Page, number int) (result Page, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Skipping unreadable pdf page",
				zap.Int("page", number),
				zap.Any("cause", r),
			)
			ok = false
		}
	}()

	rows, err := page.GetTextByRow()
	if err != nil || len(rows) == 0 {
		return Page{}, false
	}

	// Row positions are in PDF space where Y grows upward; flip them so
	// Top grows downward like reading order.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})
	maxPosition := rows[0].Position

	var lines []string
	var words []Word
	for _, row := range rows {
		top := float64(maxPosition - row.Position)
		rowWords := assembleWords(row.Content, top)
		if len(rowWords) == 0 {
			continue
		}

		texts := make([]string, len(rowWords))
		for i, word := range rowWords {
			texts[i] = word.Text
		}
		lines = append(lines, strings.Join(texts, " "))
		words = append(words, rowWords...)
	}

	if len(lines) == 0 {
		return Page{}, false
	}

	return Page{
		Number: number,
		Text:   strings.Join(lines, "\n"),
		Words:  words,
	}, true
}

// assembleWords merges adjacent glyph runs on one row into words.
// Fragments separated by less than a fraction of the font size belong
// to the same word.
func assembleWords(fragments []pdf.Text, top float64) []Word {
	sorted := make([]pdf.Text, 0, len(fragments))
	for _, fragment := range fragments {
		if strings.TrimSpace(fragment.S) == "" {
			continue
		}
		sorted = append(sorted, fragment)
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var words []Word
	current := Word{
		Text: sorted[0].S,
		Top:  top,
		X0:   sorted[0].X,
		X1:   sorted[0].X + sorted[0].W,
	}

	for _, fragment := range sorted[1:] {
		gap := fragment.X - current.X1
		threshold := fragment.FontSize * 0.3
		if threshold < 1 {
			threshold = 1
		}

		if gap <= threshold {
			current.Text += fragment.S
			if fragment.X+fragment.W > current.X1 {
				current.X1 = fragment.X + fragment.W
			}
			continue
		}

		words = append(words, current)
		current = Word{
			Text: fragment.S,
			Top:  top,
			X0:   fragment.X,
			X1:   fragment.X + fragment.W,
		}
	}
	words = append(words, current)

	return words
}
