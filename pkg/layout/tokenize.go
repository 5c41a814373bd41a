package layout

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/width"
)

// ParseToWords splits the box's text into words according to its
// white-space and word-break modes. Preserved whitespace becomes its own
// word in pre and pre-wrap; elsewhere it only sets the space flags of the
// neighbouring words. Newlines become line-break words whenever the mode
// preserves them.
func (b *Box) ParseToWords() {
	b.wordsStale = false
	if !b.hasText {
		return
	}
	b.Words = nil
	b.measured = false

	ws := b.WhiteSpace()
	preserveSpaces := ws == WhiteSpacePre || ws == WhiteSpacePreWrap
	keepNewlines := preserveSpaces || ws == WhiteSpacePreLine
	breakAll := b.WordBreak() == "break-all"

	isSpace := func(r rune) bool {
		return unicode.IsSpace(r) && !(keepNewlines && r == '\n')
	}

	runes := []rune(b.text)
	spaceBefore := false
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\r':
			i++

		case r == '\n' && keepNewlines:
			b.Words = append(b.Words, newWord(b, "\n", false, false))
			i++

		case isSpace(r):
			var sb strings.Builder
			for i < len(runes) && isSpace(runes[i]) {
				if runes[i] != '\r' {
					sb.WriteRune(runes[i])
				}
				i++
			}
			switch {
			case preserveSpaces:
				if sb.Len() > 0 {
					b.Words = append(b.Words, newWord(b, sb.String(), false, false))
				}
			case len(b.Words) > 0:
				b.Words[len(b.Words)-1].HasSpaceAfter = true
			default:
				spaceBefore = true
			}

		default:
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) && !breaksAfter(runes[i], breakAll) {
				i++
			}
			// The breaking character closes the run.
			if i < len(runes) && !unicode.IsSpace(runes[i]) {
				i++
			}
			text := string(runes[start:i])
			if strings.IndexByte(text, '&') >= 0 {
				text = html.UnescapeString(text)
			}
			w := newWord(b, text, spaceBefore && len(b.Words) == 0, false)
			spaceBefore = false
			b.Words = append(b.Words, w)
		}
	}
}

// breaksAfter reports characters that end a word: hyphens, every character
// under break-all and wide East Asian characters.
func breaksAfter(r rune, breakAll bool) bool {
	if r == '-' || breakAll {
		return true
	}
	return isWide(r)
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}
