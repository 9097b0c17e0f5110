package indexer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)
	chapterPattern = regexp.MustCompile(`(Chapter|CHAPTER|CHAP\.)\s+([IVXLCDM\d]+|[A-Za-z ]+)`)
)

// SplitParagraphs splits text at blank lines and drops whitespace-only paragraphs.
// Kept paragraphs are returned as-is. Line endings are normalized to "\n" first.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := paragraphBreak.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitSentences splits a paragraph after '.', '!' or '?' when followed by whitespace.
// The whitespace run is consumed; whitespace-only sentences are dropped.
func SplitSentences(paragraph string) []string {
	var out []string
	add := func(s string) {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	start, i := 0, 0
	for i < len(paragraph) {
		r, size := utf8.DecodeRuneInString(paragraph[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i
		for i < len(paragraph) {
			ws, n := utf8.DecodeRuneInString(paragraph[i:])
			if !unicode.IsSpace(ws) {
				break
			}
			i += n
		}
		if i > end {
			add(paragraph[start:end])
			start = i
		}
	}
	add(paragraph[start:])
	return out
}

// CharacterSafetySplit cuts text into windows of size characters, each starting
// size-overlap characters after the previous one, until a window start reaches the
// end of the text. Text no longer than size is returned whole.
func CharacterSafetySplit(text string, size, overlap int) []string {
	runes := []rune(text)
	if size <= 0 || len(runes) <= size {
		return []string{text}
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// MatchChapter returns the chapter heading found within the first scan characters
// of text, or "" when there is none.
func MatchChapter(text string, scan int) string {
	if scan > 0 {
		if runes := []rune(text); len(runes) > scan {
			text = string(runes[:scan])
		}
	}
	return strings.TrimSpace(chapterPattern.FindString(text))
}

// Preprocess normalizes text for keyword indexing (trim, collapse whitespace).
func Preprocess(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
