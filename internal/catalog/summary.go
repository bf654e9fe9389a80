package catalog

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/coherentnotebook/entropy/internal/notebook"
)

// extractFirstSentence returns the first sentence of content, terminated
// by '.', '!', or '?' followed by a space or newline, capped at
// MaxSummaryChars and word-boundary truncated with a trailing "..." when
// the content runs past the cap before any terminator is found.
func extractFirstSentence(content string) string {
	runes := []rune(content)
	for i := 0; i < len(runes); i++ {
		if isSentenceEnd(runes[i]) {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				sentence := strings.TrimSpace(string(runes[:i+1]))
				if len(sentence) <= MaxSummaryChars {
					return sentence
				}
				return truncateAtWordBoundary(sentence, MaxSummaryChars)
			}
		}
	}

	trimmed := strings.TrimSpace(content)
	if len([]rune(trimmed)) <= MaxSummaryChars {
		return trimmed
	}
	return truncateAtWordBoundary(trimmed, MaxSummaryChars)
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// truncateAtWordBoundary cuts s to at most limit runes, backing off to the
// last preceding space so no word is cut in half, and appends "...".
func truncateAtWordBoundary(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = limit
	}
	return strings.TrimSpace(string(runes[:cut])) + "..."
}

// firstTextEntry returns the first member entry (in cluster member order)
// whose content type is text, or nil if none qualifies.
func firstTextEntry(memberIDs []notebook.EntryID, entries map[notebook.EntryID]*notebook.Entry) *notebook.Entry {
	for _, id := range memberIDs {
		if e, ok := entries[id]; ok && e.IsText() {
			return e
		}
	}
	return nil
}

// buildSummaryText implements the summary fallback ladder: first-sentence
// extraction from the first text entry, else a fallback mentioning the
// first topic keyword, else a bare entry-count fallback.
func buildSummaryText(memberIDs []notebook.EntryID, entries map[notebook.EntryID]*notebook.Entry, keywords []string) string {
	if e := firstTextEntry(memberIDs, entries); e != nil {
		return extractFirstSentence(string(e.Content))
	}
	count := len(memberIDs)
	if len(keywords) > 0 {
		return bracketedFallback(count, "entries about "+keywords[0])
	}
	return bracketedFallback(count, "entries")
}

func bracketedFallback(count int, suffix string) string {
	return "[" + strconv.Itoa(count) + " " + suffix + "]"
}

// buildTopic joins the first MaxTopicKeywords keywords with ", ".
func buildTopic(keywords []string) string {
	n := len(keywords)
	if n > MaxTopicKeywords {
		n = MaxTopicKeywords
	}
	return strings.Join(keywords[:n], ", ")
}
