package schedule

import (
	"math"
	"sort"
	"strings"

	"github.com/askmyrace/backend/internal/docstore"
	"github.com/askmyrace/backend/internal/pdftext"
)

// Tuning constants for the positional parser. The values were settled
// empirically against real guides; treat them as a set.
const (
	// lineTolerance is the vertical drift allowed between tokens that
	// still count as the same time expression.
	lineTolerance = 1.2
	// descBandAbove/Below bound the vertical band, relative to a time
	// group's mean position, that description tokens are gathered from.
	descBandAbove = 12.0
	descBandBelow = 16.0
	// descMinGap keeps description collection to the right of the time
	// group's trailing edge.
	descMinGap = 4.0
	// columnSplitGap is the smallest horizontal gap between token start
	// positions that is read as an activity/location column boundary.
	columnSplitGap = 35.0
	// columnClearance is the minimum clear space between the activity
	// column's right edge and the location column's left edge.
	columnClearance = 25.0
)

type textLine struct {
	top   float64
	words []pdftext.Word
}

type dayRow struct {
	title string
	top   float64
}

// parseScheduleWords reconstructs day-grouped schedule rows from the
// positioned words of a single page.
func parseScheduleWords(words []pdftext.Word) []docstore.ScheduleDay {
	lines := groupWordsByLine(words)
	rows := detectDayRows(lines)
	if len(rows) == 0 {
		return nil
	}

	var days []docstore.ScheduleDay
	for i, row := range rows {
		endTop := math.Inf(1)
		if i+1 < len(rows) {
			endTop = rows[i+1].top
		}
		items := collectItemsBetween(lines, row.top, endTop)
		if len(items) == 0 {
			continue
		}
		days = append(days, docstore.ScheduleDay{Title: row.title, Items: items})
	}
	return days
}

// groupWordsByLine clusters words that share a baseline, within a
// coarse rounding bucket, into top-to-bottom ordered lines.
func groupWordsByLine(words []pdftext.Word) []textLine {
	buckets := make(map[float64][]pdftext.Word)
	for _, word := range words {
		key := math.Round(word.Top*10) / 10
		buckets[key] = append(buckets[key], word)
	}

	lines := make([]textLine, 0, len(buckets))
	for _, bucket := range buckets {
		top := bucket[0].Top
		for _, word := range bucket[1:] {
			if word.Top < top {
				top = word.Top
			}
		}
		sorted := append([]pdftext.Word(nil), bucket...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].X0 < sorted[j].X0
		})
		lines = append(lines, textLine{top: top, words: sorted})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].top < lines[j].top
	})
	return lines
}

// detectDayRows finds lines that read as "<weekday> <date phrase>" day
// headings. A repeated title keeps only its first occurrence.
func detectDayRows(lines []textLine) []dayRow {
	var rows []dayRow
	seenTitles := make(map[string]bool)
	for _, line := range lines {
		texts := make([]string, len(line.words))
		for i, word := range line.words {
			texts[i] = word.Text
		}
		text := strings.TrimSpace(strings.Join(texts, " "))

		match := dayLineRe.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		title := normalizeTitle(match[1] + " " + strings.TrimSpace(match[2]))
		if title == "" || seenTitles[title] {
			continue
		}
		seenTitles[title] = true
		rows = append(rows, dayRow{title: title, top: line.top})
	}
	return rows
}

// collectItemsBetween gathers the schedule items of one day segment:
// the vertical span strictly between two day headings.
func collectItemsBetween(lines []textLine, startTop, endTop float64) []docstore.ScheduleItem {
	entries := entriesBetween(lines, startTop, endTop)
	if len(entries) == 0 {
		return nil
	}

	used := make([]bool, len(entries))
	seen := make(map[string]bool)
	var items []docstore.ScheduleItem

	for idx := range entries {
		if used[idx] || !timeWordRe.MatchString(entries[idx].Text) {
			continue
		}

		group := expandTimeGroup(entries, idx)
		for _, g := range group {
			used[g] = true
		}
		groupWords := make([]pdftext.Word, len(group))
		texts := make([]string, len(group))
		for i, g := range group {
			groupWords[i] = entries[g]
			texts[i] = entries[g].Text
		}
		timeText := normalizeTimeText(strings.Join(texts, " "))

		activityWords, locationWords, descIndices := collectDescription(entries, groupWords, used)
		if len(activityWords) == 0 {
			continue
		}
		for _, d := range descIndices {
			used[d] = true
		}

		activity := cleanActivityText(joinWordTexts(activityWords))
		if activity == "" {
			continue
		}

		var location *string
		if len(locationWords) > 0 {
			location = cleanLocationText(joinWordTexts(locationWords))
		}
		if location == nil {
			activity, location = splitActivityLocation(activity)
		}

		key := itemKey(timeText, activity, location)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, docstore.ScheduleItem{
			Time:     timeText,
			Activity: activity,
			Location: location,
		})
	}

	return items
}

// entriesBetween flattens the words of lines falling strictly inside
// the segment into a single (top, x0)-ordered slice.
func entriesBetween(lines []textLine, startTop, endTop float64) []pdftext.Word {
	var entries []pdftext.Word
	for _, line := range lines {
		if line.top <= startTop || line.top >= endTop {
			continue
		}
		entries = append(entries, line.words...)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Top != entries[j].Top {
			return entries[i].Top < entries[j].Top
		}
		return entries[i].X0 < entries[j].X0
	})
	return entries
}

// expandTimeGroup grows a seed time token rightward over adjoining
// tokens that continue the time expression (more times, dashes, "to").
func expandTimeGroup(entries []pdftext.Word, start int) []int {
	group := []int{start}
	base := entries[start]
	for idx := start + 1; idx < len(entries); idx++ {
		candidate := entries[idx]
		if math.Abs(candidate.Top-base.Top) > lineTolerance {
			break
		}
		if !timeTokenRe.MatchString(strings.TrimSpace(candidate.Text)) {
			break
		}
		group = append(group, idx)
	}
	return group
}

// collectDescription picks the unclaimed tokens in a vertical band
// around the time group and to the right of it, then splits them into
// activity and location columns.
func collectDescription(entries []pdftext.Word, timeGroup []pdftext.Word, used []bool) (activity, location []pdftext.Word, indices []int) {
	var topSum, maxX1 float64
	for _, word := range timeGroup {
		topSum += word.Top
		if word.X1 > maxX1 {
			maxX1 = word.X1
		}
	}
	timeTop := topSum / float64(len(timeGroup))
	minTop := timeTop - descBandAbove
	maxTop := timeTop + descBandBelow
	minX := maxX1 + descMinGap

	var collected []pdftext.Word
	for idx, entry := range entries {
		if used[idx] {
			continue
		}
		if entry.Top < minTop || entry.Top > maxTop {
			continue
		}
		if entry.X0 < minX {
			continue
		}
		collected = append(collected, entry)
		indices = append(indices, idx)
	}

	if len(collected) == 0 {
		return nil, nil, nil
	}

	sort.SliceStable(collected, func(i, j int) bool {
		if collected[i].Top != collected[j].Top {
			return collected[i].Top < collected[j].Top
		}
		return collected[i].X0 < collected[j].X0
	})

	activity, location = splitColumns(collected)
	return activity, location, indices
}

// splitColumns divides description tokens into activity and location
// columns at the widest horizontal gap, provided the gap is wide enough
// and the columns stay clearly apart. Anything less reads as a single
// activity column.
func splitColumns(words []pdftext.Word) (activity, location []pdftext.Word) {
	if len(words) == 0 {
		return nil, nil
	}

	positionSet := make(map[float64]bool)
	for _, word := range words {
		positionSet[math.Round(word.X0*10)/10] = true
	}
	positions := make([]float64, 0, len(positionSet))
	for position := range positionSet {
		positions = append(positions, position)
	}
	sort.Float64s(positions)
	if len(positions) <= 1 {
		return words, nil
	}

	var largestGap, splitX float64
	for i := 1; i < len(positions); i++ {
		gap := positions[i] - positions[i-1]
		if gap > largestGap {
			largestGap = gap
			splitX = (positions[i-1] + positions[i]) / 2
		}
	}
	if largestGap < columnSplitGap {
		return words, nil
	}

	for _, word := range words {
		if word.X0 >= splitX {
			location = append(location, word)
		} else {
			activity = append(activity, word)
		}
	}
	if len(activity) == 0 || len(location) == 0 {
		return words, nil
	}

	activityMaxX := activity[0].X1
	for _, word := range activity[1:] {
		if word.X1 > activityMaxX {
			activityMaxX = word.X1
		}
	}
	locationMinX := location[0].X0
	for _, word := range location[1:] {
		if word.X0 < locationMinX {
			locationMinX = word.X0
		}
	}
	if locationMinX-activityMaxX < columnClearance {
		return words, nil
	}

	sortByReadingOrder(activity)
	sortByReadingOrder(location)
	return activity, location
}

func sortByReadingOrder(words []pdftext.Word) {
	sort.SliceStable(words, func(i, j int) bool {
		if words[i].Top != words[j].Top {
			return words[i].Top < words[j].Top
		}
		return words[i].X0 < words[j].X0
	})
}

func joinWordTexts(words []pdftext.Word) string {
	texts := make([]string, len(words))
	for i, word := range words {
		texts[i] = word.Text
	}
	return strings.Join(texts, " ")
}
