// Package schedule recovers day-grouped timetables from race guide
// pages and augments retrieval with transition check-in guidance.
package schedule

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/askmyrace/backend/internal/docstore"
	"github.com/askmyrace/backend/internal/pdftext"
)

var scheduleSectionKeywords = []string{
	"schedule",
	"time activity",
}

var blocklistedSectionPhrases = []string{
	"location",
	"broadcast",
	"pro race",
	"cut-off",
}

var dayNames = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

var monthNames = map[string]bool{
	"JANUARY":   true,
	"FEBRUARY":  true,
	"MARCH":     true,
	"APRIL":     true,
	"MAY":       true,
	"JUNE":      true,
	"JULY":      true,
	"AUGUST":    true,
	"SEPTEMBER": true,
	"OCTOBER":   true,
	"NOVEMBER":  true,
	"DECEMBER":  true,
}

var headerStrings = map[string]bool{
	"TIME ACTIVITY":          true,
	"TIME ACTIVITY LOCATION": true,
	"EVENT SCHEDULE":         true,
	"RACE START TIMES":       true,
	"PRIZE-GIVING TIMES":     true,
}

var locationHints = []string{
	"park", "parks", "gardens", "garden", "dock", "docks", "museum",
	"room", "rooms", "car park", "church", "beach", "hall", "arena",
	"centre", "center", "quay", "harbour", "harbor", "street", "road",
	"school", "club", "pool", "stadium", "village", "pavilion", "plaza",
	"hotel", "promenade", "bay", "pier", "marina", "college", "square",
}

var (
	timeLeadRe   = regexp.MustCompile(`(?i)^(\d{1,2}:\d{2}(?:\s*[-–—]\s*\d{1,2}:\d{2})?(?:\s*(?:AM|PM))?)`)
	timeWordRe   = regexp.MustCompile(`^\d{1,2}:\d{2}(?:[-–—]\d{1,2}:\d{2})?$`)
	timeTokenRe  = regexp.MustCompile(`(?i)^(?:[-–—]?\d{1,2}:\d{2}(?:[-–—]\d{1,2}:\d{2})?|[-–—]|to)$`)
	ordinalRe    = regexp.MustCompile(`(?i)^\d{1,2}(?:st|nd|rd|th)$`)
	dayLineRe    = regexp.MustCompile(`(?i)^(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s+(.+)$`)
	dashRangeRe  = regexp.MustCompile(`\s*[-–—]\s*`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	wordTokenRe  = regexp.MustCompile(`[A-Za-z0-9]+`)
)

// Extract rebuilds the event schedule from the pages whose chunks carry
// a schedule-like section title. Positioned words drive the geometry
// parser; pages without them, or pages the geometry parser recovers
// nothing from, fall back to line-oriented text parsing. Only days with
// at least one item are returned, in first-seen order.
func Extract(pages []pdftext.Page, chunks []docstore.PageChunk) []docstore.ScheduleDay {
	candidates := candidatePages(chunks)
	if len(candidates) == 0 {
		return nil
	}

	collected := newDayCollector()
	for _, page := range pages {
		if !candidates[page.Number] || len(page.Words) == 0 {
			continue
		}
		for _, day := range parseScheduleWords(page.Words) {
			collected.merge(day)
		}
	}

	schedule := collected.days()
	if len(schedule) == 0 {
		schedule = extractFromText(chunks)
	}
	return schedule
}

func candidatePages(chunks []docstore.PageChunk) map[int]bool {
	pages := make(map[int]bool)
	for _, chunk := range chunks {
		if sectionLooksLikeSchedule(chunk.Section) {
			pages[chunk.Page] = true
		}
	}
	return pages
}

func sectionLooksLikeSchedule(section string) bool {
	if section == "" {
		return false
	}
	lowered := strings.ToLower(section)
	squashed := strings.ReplaceAll(lowered, " ", "")
	for _, phrase := range blocklistedSectionPhrases {
		if strings.Contains(lowered, phrase) || strings.Contains(squashed, phrase) {
			return false
		}
	}
	for _, keyword := range scheduleSectionKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// dayCollector accumulates schedule days across pages, merging days
// that share a title and dropping duplicate items inside a day.
type dayCollector struct {
	order   []string
	byTitle map[string]*docstore.ScheduleDay
	seen    map[string]map[string]bool
}

func newDayCollector() *dayCollector {
	return &dayCollector{
		byTitle: make(map[string]*docstore.ScheduleDay),
		seen:    make(map[string]map[string]bool),
	}
}

func (c *dayCollector) merge(day docstore.ScheduleDay) {
	existing, ok := c.byTitle[day.Title]
	if !ok {
		c.order = append(c.order, day.Title)
		copied := day
		c.byTitle[day.Title] = &copied
		keys := make(map[string]bool, len(day.Items))
		for _, item := range day.Items {
			keys[itemKey(item.Time, item.Activity, item.Location)] = true
		}
		c.seen[day.Title] = keys
		return
	}

	keys := c.seen[day.Title]
	for _, item := range day.Items {
		key := itemKey(item.Time, item.Activity, item.Location)
		if keys[key] {
			continue
		}
		keys[key] = true
		existing.Items = append(existing.Items, item)
	}
}

func (c *dayCollector) days() []docstore.ScheduleDay {
	var schedule []docstore.ScheduleDay
	for _, title := range c.order {
		day := c.byTitle[title]
		if len(day.Items) == 0 {
			continue
		}
		schedule = append(schedule, *day)
	}
	return schedule
}

func itemKey(timeText, activity string, location *string) string {
	loc := ""
	if location != nil {
		loc = *location
	}
	return strings.ToLower(timeText) + "\x00" + strings.ToLower(activity) + "\x00" + strings.ToLower(loc)
}

func normalizeTitle(value string) string {
	cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(value), " ")
	return titleCase(cleaned)
}

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

func normalizeTimeText(value string) string {
	normalized := dashRangeRe.ReplaceAllString(value, " - ")
	normalized = whitespaceRe.ReplaceAllString(normalized, " ")
	return strings.ToUpper(strings.TrimSpace(normalized))
}
