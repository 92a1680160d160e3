package schedule

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/askmyrace/backend/internal/docstore"
)

var (
	pageNumberPrefix = "PAGE "
	headerTailRe     = regexp.MustCompile(`(?i)(EVENT|PRO|RACE)\s+SCHEDULE.*$`)
)

// extractFromText parses schedule rows out of plain chunk text, line by
// line, for pages where no positional data was usable. Items found
// before any day label are dropped.
func extractFromText(chunks []docstore.PageChunk) []docstore.ScheduleDay {
	collected := newDayCollector()
	seen := make(map[string]bool)
	currentTitle := ""

	for _, chunk := range chunks {
		if !sectionLooksLikeSchedule(chunk.Section) || chunk.Text == "" {
			continue
		}
		for _, rawLine := range strings.Split(chunk.Text, "\n") {
			line := strings.TrimSpace(rawLine)
			if line == "" || shouldSkipLine(line) {
				continue
			}

			if label := parseDayLabel(line); label != "" {
				currentTitle = label
				collected.merge(docstore.ScheduleDay{Title: label})
				continue
			}

			timeValue, activityRaw, ok := parseTimeAndActivity(line)
			if !ok || currentTitle == "" {
				continue
			}
			activity := cleanActivityText(activityRaw)
			if activity == "" {
				continue
			}

			activity, inferred := splitActivityLocation(activity)
			var location *string
			if inferred != nil {
				location = cleanLocationText(*inferred)
			}

			key := strings.ToLower(currentTitle) + "\x00" + itemKey(timeValue, activity, location)
			if seen[key] {
				continue
			}
			seen[key] = true
			collected.merge(docstore.ScheduleDay{
				Title: currentTitle,
				Items: []docstore.ScheduleItem{{
					Time:     timeValue,
					Activity: activity,
					Location: location,
				}},
			})
		}
	}

	return collected.days()
}

// shouldSkipLine filters decorative lines before parsing: footnotes,
// site-domain boilerplate, page numbers, and known table headers.
func shouldSkipLine(line string) bool {
	cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(line), " ")
	if cleaned == "" {
		return true
	}
	if strings.HasPrefix(cleaned, "*") {
		return true
	}
	if strings.Contains(strings.ToLower(cleaned), "t100triathlon.com") {
		return true
	}
	upper := strings.ToUpper(cleaned)
	if strings.HasPrefix(upper, pageNumberPrefix) {
		return true
	}
	if headerStrings[upper] {
		return true
	}
	return false
}

// parseDayLabel recognizes lines that open with a weekday name followed
// by date detail and returns the normalized day title, or "" when the
// line is not a day label. The weekday may arrive split across tokens.
func parseDayLabel(line string) string {
	tokens := wordTokenRe.FindAllString(line, -1)
	if len(tokens) == 0 {
		return ""
	}
	upperTokens := make([]string, len(tokens))
	for i, token := range tokens {
		upperTokens[i] = strings.ToUpper(token)
	}

	limit := len(tokens)
	if limit > 3 {
		limit = 3
	}
	for index := 1; index <= limit; index++ {
		candidate := strings.Join(upperTokens[:index], "")
		for _, dayName := range dayNames {
			if candidate != strings.ToUpper(dayName) {
				continue
			}
			if label := assembleDayLabel(dayName, tokens[index:]); label != "" {
				return label
			}
		}
	}
	return ""
}

// assembleDayLabel extends a weekday with the date tokens that follow
// it, stopping at the first token that is not a digit, ordinal, or
// month name. Labels with no date detail at all are rejected.
func assembleDayLabel(dayName string, remainder []string) string {
	parts := []string{dayName}
	hasDetail := false
	for _, token := range remainder {
		upper := strings.ToUpper(token)
		switch {
		case isDigits(token) || ordinalRe.MatchString(token):
			parts = append(parts, token)
			hasDetail = true
		case monthNames[upper]:
			parts = append(parts, titleCase(token))
			hasDetail = true
		default:
			return finishDayLabel(parts, hasDetail)
		}
	}
	return finishDayLabel(parts, hasDetail)
}

func finishDayLabel(parts []string, hasDetail bool) string {
	if !hasDetail {
		return ""
	}
	return normalizeTitle(strings.Join(parts, " "))
}

// parseTimeAndActivity splits a "09:00 Registration Opens" style line
// into its time and description. Lines whose remainder reads as a day
// label are rejected so headings never become activities.
func parseTimeAndActivity(line string) (timeValue, activity string, ok bool) {
	match := timeLeadRe.FindStringSubmatch(line)
	if match == nil {
		return "", "", false
	}
	timeValue = normalizeTimeText(match[1])

	remainder := strings.TrimSpace(line[len(match[0]):])
	remainder = strings.Trim(remainder, "-–—")
	if remainder == "" {
		return "", "", false
	}
	remainder = strings.ReplaceAll(remainder, "*", "")
	remainder = headerTailRe.ReplaceAllString(remainder, "")
	remainder = whitespaceRe.ReplaceAllString(strings.TrimSpace(remainder), " ")
	if remainder == "" {
		return "", "", false
	}
	if parseDayLabel(remainder) != "" {
		return "", "", false
	}
	return timeValue, splitCamelRuns(remainder), true
}

func isDigits(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// splitCamelRuns inserts a space where a lower-case letter runs into an
// upper-case one, undoing words that extraction glued together.
func splitCamelRuns(value string) string {
	var builder strings.Builder
	builder.Grow(len(value) + 4)
	var prev rune
	for i, r := range value {
		if i > 0 && unicode.IsLower(prev) && unicode.IsUpper(r) {
			builder.WriteByte(' ')
		}
		builder.WriteRune(r)
		prev = r
	}
	return builder.String()
}
