package schedule

import (
	"regexp"
	"strings"
	"unicode"
)

// Trailing boilerplate that creeps into activity cells: footnote
// markers, the event site domain, and wave-start disclaimers.
var (
	footnoteSplitRe     = regexp.MustCompile(`\s+\*\s+`)
	siteDomainTailRe    = regexp.MustCompile(`(?i)\s*\d+\s+t100triathlon\.com$`)
	waveStartTailRe     = regexp.MustCompile(`(?i)\s*your wave start time.*$`)
	startTimesTailRe    = regexp.MustCompile(`(?i)\s*start times will also be listed.*$`)
	trailingNumberRe    = regexp.MustCompile(`\s+\d+$`)
	trailingAsterisksRe = regexp.MustCompile(`\s*\*+$`)
	trailingShortNumRe  = regexp.MustCompile(`\s*\d{1,2}$`)
	trailingCapsRe      = regexp.MustCompile(`^(.+?)\s+([A-Z][A-Za-z0-9\s()'&\-/.,]+)$`)
)

const maxLocationWords = 12

// cleanActivityText normalizes an activity cell: collapsed whitespace,
// truncated footnotes, and stripped boilerplate tails.
func cleanActivityText(value string) string {
	cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(value), " ")
	if cleaned == "" {
		return ""
	}
	cleaned = footnoteSplitRe.Split(cleaned, 2)[0]
	cleaned = siteDomainTailRe.ReplaceAllString(cleaned, "")
	cleaned = waveStartTailRe.ReplaceAllString(cleaned, "")
	cleaned = startTimesTailRe.ReplaceAllString(cleaned, "")
	cleaned = trailingNumberRe.ReplaceAllString(cleaned, "")
	cleaned = strings.Trim(cleaned, " -")
	return strings.TrimSpace(cleaned)
}

// cleanLocationText normalizes an optional location cell and filters
// noise; nil means no usable location survived.
func cleanLocationText(value string) *string {
	cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(value), " ")
	cleaned = strings.Trim(cleaned, "-,:")
	cleaned = trailingAsterisksRe.ReplaceAllString(cleaned, "")
	cleaned = trailingShortNumRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || !looksLikeLocationText(cleaned) {
		return nil
	}
	return &cleaned
}

// looksLikeLocationText rejects strings too short, placeholder values,
// letter-free noise, and over-long phrases.
func looksLikeLocationText(value string) bool {
	text := strings.TrimSpace(value)
	if len(text) < 3 {
		return false
	}
	lowered := strings.ToLower(text)
	if lowered == "tbc" || lowered == "tba" {
		return false
	}
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}
	if len(strings.Fields(text)) > maxLocationWords {
		return false
	}
	return true
}

// splitActivityLocation tries to pull a trailing location out of
// combined activity text. Separators are tried in priority order:
// a literal " at ", spaced dash variants, then a colon. When none
// produce a plausible location, a trailing capitalized phrase is
// matched and refined against the location hint vocabulary.
func splitActivityLocation(value string) (string, *string) {
	text := strings.TrimSpace(value)
	if text == "" {
		return "", nil
	}

	type candidate struct {
		left  string
		right string
	}
	var candidates []candidate

	lowered := strings.ToLower(text)
	if idx := strings.LastIndex(lowered, " at "); idx != -1 {
		left := strings.Trim(text[:idx], " -,:")
		right := strings.Trim(text[idx+4:], " -,:")
		if looksLikeLocationText(right) {
			candidates = append(candidates, candidate{left, right})
		}
	}

	for _, sep := range []string{" - ", " – ", " — "} {
		idx := strings.LastIndex(text, sep)
		if idx == -1 {
			continue
		}
		left := strings.Trim(text[:idx], " -,:")
		right := strings.Trim(text[idx+len(sep):], " -,:")
		if looksLikeLocationText(right) {
			candidates = append(candidates, candidate{left, right})
		}
	}

	if idx := strings.LastIndex(text, ":"); idx != -1 {
		left := strings.TrimSpace(text[:idx])
		right := strings.Trim(text[idx+1:], " -,:")
		if looksLikeLocationText(right) {
			candidates = append(candidates, candidate{left, right})
		}
	}

	for _, c := range candidates {
		left := strings.TrimSpace(c.left)
		right := strings.TrimSpace(c.right)
		if left != "" && right != "" {
			return left, &right
		}
	}

	return splitOnTrailingCaps(text)
}

// splitOnTrailingCaps matches a trailing capitalized phrase and keeps
// it as a location only when it contains a known location hint; words
// before the hint flow back into the activity, except one capitalized
// word carried into the location ("Palace Pier" stays together).
func splitOnTrailingCaps(text string) (string, *string) {
	match := trailingCapsRe.FindStringSubmatch(text)
	if match == nil {
		return text, nil
	}
	activityPart := strings.TrimSpace(match[1])
	locationPart := strings.Trim(match[2], "-,: ")
	if activityPart == "" || locationPart == "" {
		return text, nil
	}

	loweredLocation := strings.ToLower(locationPart)
	firstIndex := -1
	for _, hint := range locationHints {
		idx := strings.Index(loweredLocation, hint)
		if idx == -1 {
			continue
		}
		if firstIndex == -1 || idx < firstIndex {
			firstIndex = idx
		}
	}
	if firstIndex == -1 {
		return text, nil
	}

	prefix := strings.TrimRight(locationPart[:firstIndex], " ")
	suffix := strings.TrimSpace(locationPart[firstIndex:])
	if prefix != "" {
		parts := strings.Fields(prefix)
		if len(parts) > 0 && startsUpper(parts[len(parts)-1]) {
			carry := parts[len(parts)-1]
			parts = parts[:len(parts)-1]
			suffix = strings.TrimSpace(carry + " " + suffix)
		}
		if len(parts) > 0 {
			activityPart = strings.TrimSpace(activityPart + " " + strings.Join(parts, " "))
		}
	}

	if !looksLikeLocationText(suffix) {
		return text, nil
	}
	return activityPart, &suffix
}

func startsUpper(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}
