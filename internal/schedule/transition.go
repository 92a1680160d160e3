package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/askmyrace/backend/internal/docstore"
)

// Question phrasings that signal the athlete is asking about a
// transition area: the number itself, abbreviations, the color-coded
// bag names, and the check-in verbs specific to each transition.
var (
	transitionOneNeedRe = regexp.MustCompile(`(?i)\b(?:transition\s*(?:1|one)|t1|blue\s+bag|bike\s+bag|bike\s+check(?:\s*-?\s*in)?|rack(?:ing|ed)?)\b`)
	transitionTwoNeedRe = regexp.MustCompile(`(?i)\b(?:transition\s*(?:2|two)|t2|red\s+bag|run\s+bag|run\s+gear)\b`)

	transitionOnePhraseRe = regexp.MustCompile(`(?i)\btransition\s*(?:1|one)\b`)
	transitionTwoPhraseRe = regexp.MustCompile(`(?i)\btransition\s*(?:2|two)\b`)
	transitionMentionRe   = regexp.MustCompile(`(?i)\btransition\s*([12])\b`)

	bareTimeRe  = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
	timeRangeRe = regexp.MustCompile(`\d{1,2}:\d{2}\s*[-–—]\s*\d{1,2}:\d{2}`)
	dayPhraseRe = regexp.MustCompile(`(?i)\b(?:(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b(?:\s+\d{1,2}(?:st|nd|rd|th)?)?(?:\s+(?:january|february|march|april|may|june|july|august|september|october|november|december))?|race\s+(?:day|morning)\b)`)
)

// noteLookahead bounds how far past a transition mention the note
// synthesizer searches for a time range and day phrase.
const noteLookahead = 800

// raceMorningLatestHour is the latest opening hour that still reads as
// a race-morning window when no day phrase identifies it.
const raceMorningLatestHour = 6

var transitionSupportKeywords = map[int][]string{
	1: {"bike", "bag", "check", "rack", "open"},
	2: {"run", "bag", "check", "open"},
}

// AugmentTransitionChunks splices a qualifying schedule chunk into the
// retrieved set when the question concerns a transition but no
// retrieved chunk covers its check-in times. Transition 1 context goes
// to the front, Transition 2 to the end; at most one chunk is added per
// transition.
func AugmentTransitionChunks(question string, all, retrieved []docstore.Chunk) []docstore.Chunk {
	needOne := transitionOneNeedRe.MatchString(question)
	needTwo := transitionTwoNeedRe.MatchString(question)
	if !needOne && !needTwo {
		return retrieved
	}

	out := append([]docstore.Chunk(nil), retrieved...)
	present := make(map[string]bool, len(out))
	for _, chunk := range out {
		present[chunk.ID] = true
	}

	if needOne && !anyChunkQualifies(out, 1) {
		if chunk, ok := firstQualifying(all, 1, present); ok {
			out = append([]docstore.Chunk{chunk}, out...)
			present[chunk.ID] = true
		}
	}
	if needTwo && !anyChunkQualifies(out, 2) {
		if chunk, ok := firstQualifying(all, 2, present); ok {
			out = append(out, chunk)
			present[chunk.ID] = true
		}
	}
	return out
}

// chunkQualifies requires the transition phrase, a bare time token, and
// at least one supporting keyword in the same chunk.
func chunkQualifies(text string, transition int) bool {
	phraseRe := transitionOnePhraseRe
	if transition == 2 {
		phraseRe = transitionTwoPhraseRe
	}
	if !phraseRe.MatchString(text) || !bareTimeRe.MatchString(text) {
		return false
	}
	lowered := strings.ToLower(text)
	for _, keyword := range transitionSupportKeywords[transition] {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func anyChunkQualifies(chunks []docstore.Chunk, transition int) bool {
	for _, chunk := range chunks {
		if chunkQualifies(chunk.Text, transition) {
			return true
		}
	}
	return false
}

func firstQualifying(chunks []docstore.Chunk, transition int, exclude map[string]bool) (docstore.Chunk, bool) {
	for _, chunk := range chunks {
		if exclude[chunk.ID] {
			continue
		}
		if chunkQualifies(chunk.Text, transition) {
			return chunk, true
		}
	}
	return docstore.Chunk{}, false
}

// transitionWindow is one transition mention resolved to a check-in
// time range, with whatever day phrase could be attributed to it.
type transitionWindow struct {
	transition int
	day        string // lower-cased day phrase, "" when unknown
	dayTitle   string
	timeRange  string
	startHour  int // -1 when unparseable
}

func (w transitionWindow) key() string {
	return fmt.Sprintf("%d|%s|%s", w.transition, w.day, w.timeRange)
}

// TransitionNotes synthesizes short guidance strings for the
// transitions the question asks about. It never fails; when nothing in
// the document matches, no notes are produced.
func TransitionNotes(question string, chunks []docstore.Chunk) []string {
	needOne := transitionOneNeedRe.MatchString(question)
	needTwo := transitionTwoNeedRe.MatchString(question)
	if !needOne && !needTwo {
		return nil
	}

	windows := collectTransitionWindows(chunks)
	if len(windows) == 0 {
		return nil
	}

	var notes []string
	if needOne {
		notes = append(notes, transitionOneNotes(windows)...)
	}
	if needTwo {
		notes = append(notes, transitionTwoNotes(windows)...)
	}
	return notes
}

// collectTransitionWindows scans raw chunk text for transition mentions
// paired with a time range inside the lookahead window. The day phrase
// is taken from between the mention and the time range when present,
// otherwise from the nearest preceding day heading.
func collectTransitionWindows(chunks []docstore.Chunk) []transitionWindow {
	var windows []transitionWindow
	seen := make(map[string]bool)

	for _, chunk := range chunks {
		text := chunk.Text
		for _, match := range transitionMentionRe.FindAllStringSubmatchIndex(text, -1) {
			transition, err := strconv.Atoi(text[match[2]:match[3]])
			if err != nil {
				continue
			}

			end := match[1] + noteLookahead
			if end > len(text) {
				end = len(text)
			}
			segment := text[match[1]:end]

			rangeLoc := timeRangeRe.FindStringIndex(segment)
			if rangeLoc == nil {
				continue
			}
			timeRange := normalizeTimeText(segment[rangeLoc[0]:rangeLoc[1]])

			dayPhrase := dayPhraseRe.FindString(segment[:rangeLoc[0]])
			if dayPhrase == "" {
				if preceding := dayPhraseRe.FindAllString(text[:match[0]], -1); len(preceding) > 0 {
					dayPhrase = preceding[len(preceding)-1]
				}
			}
			dayPhrase = whitespaceRe.ReplaceAllString(strings.TrimSpace(dayPhrase), " ")

			window := transitionWindow{
				transition: transition,
				day:        strings.ToLower(dayPhrase),
				dayTitle:   titleCase(dayPhrase),
				timeRange:  timeRange,
				startHour:  parseStartHour(timeRange),
			}
			if seen[window.key()] {
				continue
			}
			seen[window.key()] = true
			windows = append(windows, window)
		}
	}
	return windows
}

func parseStartHour(timeRange string) int {
	colon := strings.Index(timeRange, ":")
	if colon <= 0 {
		return -1
	}
	hour, err := strconv.Atoi(strings.TrimSpace(timeRange[:colon]))
	if err != nil {
		return -1
	}
	return hour
}

// transitionOneNotes emits a pre-race racking note and a race-morning
// final-checks note. The race-morning window must never be described
// as a racking opportunity.
func transitionOneNotes(windows []transitionWindow) []string {
	wins := filterTransition(windows, 1)
	if len(wins) == 0 {
		return nil
	}

	var notes []string

	preRace := pickByDay(wins, "saturday")
	if preRace == nil {
		preRace = pickByDay(wins, "friday")
	}
	if preRace != nil {
		if preRace.day != "" {
			notes = append(notes, fmt.Sprintf(
				"Transition 1 opens for bike racking on %s between %s; bikes must be checked in during this window.",
				preRace.dayTitle, preRace.timeRange))
		} else {
			notes = append(notes, fmt.Sprintf(
				"Transition 1 opens for bike racking between %s; bikes must be checked in during this window.",
				preRace.timeRange))
		}
	}

	morning := pickByDay(wins, "sunday")
	if morning == nil {
		morning = pickByDay(wins, "race")
	}
	if morning == nil {
		morning = pickEarliestMorning(wins)
	}
	if morning != nil && (preRace == nil || morning.key() != preRace.key()) {
		if morning.day != "" {
			notes = append(notes, fmt.Sprintf(
				"On race morning (%s) Transition 1 is open %s for final checks only; bikes cannot be racked in this window.",
				morning.dayTitle, morning.timeRange))
		} else {
			notes = append(notes, fmt.Sprintf(
				"On race morning Transition 1 is open %s for final checks only; bikes cannot be racked in this window.",
				morning.timeRange))
		}
	}

	return notes
}

// transitionTwoNotes prefers the Friday and Saturday red-bag check-in
// windows, both when present, else the first two distinct windows.
func transitionTwoNotes(windows []transitionWindow) []string {
	wins := filterTransition(windows, 2)
	if len(wins) == 0 {
		return nil
	}

	var picked []*transitionWindow
	if friday := pickByDay(wins, "friday"); friday != nil {
		picked = append(picked, friday)
	}
	if saturday := pickByDay(wins, "saturday"); saturday != nil {
		if len(picked) == 0 || picked[0].key() != saturday.key() {
			picked = append(picked, saturday)
		}
	}
	if len(picked) == 0 {
		for i := range wins {
			picked = append(picked, &wins[i])
			if len(picked) == 2 {
				break
			}
		}
	}

	var notes []string
	for _, window := range picked {
		if window.day != "" {
			notes = append(notes, fmt.Sprintf(
				"Transition 2 run bags (red bags) can be checked in on %s between %s.",
				window.dayTitle, window.timeRange))
		} else {
			notes = append(notes, fmt.Sprintf(
				"Transition 2 run bags (red bags) can be checked in between %s.",
				window.timeRange))
		}
	}
	return notes
}

func filterTransition(windows []transitionWindow, transition int) []transitionWindow {
	var wins []transitionWindow
	for _, window := range windows {
		if window.transition == transition {
			wins = append(wins, window)
		}
	}
	return wins
}

func pickByDay(windows []transitionWindow, token string) *transitionWindow {
	for i := range windows {
		if strings.Contains(windows[i].day, token) {
			return &windows[i]
		}
	}
	return nil
}

func pickEarliestMorning(windows []transitionWindow) *transitionWindow {
	var best *transitionWindow
	for i := range windows {
		hour := windows[i].startHour
		if hour < 0 || hour > raceMorningLatestHour {
			continue
		}
		if best == nil || hour < best.startHour {
			best = &windows[i]
		}
	}
	return best
}
