package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseToWords(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		whiteSpace string
		wordBreak  string
		want       []string
	}{
		{"collapse spaces", "hello   world", "normal", "", []string{"hello", "world"}},
		{"newline collapses", "a\nb", "normal", "", []string{"a", "b"}},
		{"pre keeps spaces and newlines", "a  b\nc", "pre", "", []string{"a", "  ", "b", "\n", "c"}},
		{"pre-wrap keeps spaces", "a  b", "pre-wrap", "", []string{"a", "  ", "b"}},
		{"pre-line keeps newlines only", "a  b\nc", "pre-line", "", []string{"a", "b", "\n", "c"}},
		{"nowrap collapses", "a  b", "nowrap", "", []string{"a", "b"}},
		{"carriage return skipped", "a\r\nb", "pre", "", []string{"a", "\n", "b"}},
		{"hyphen ends word", "well-known", "normal", "", []string{"well-", "known"}},
		{"break-all splits every rune", "abc", "normal", "break-all", []string{"a", "b", "c"}},
		{"wide runes break", "日本語", "normal", "", []string{"日", "本", "語"}},
		{"mixed latin and wide", "ab日c", "normal", "", []string{"ab日", "c"}},
		{"character reference", "fish&amp;chips", "normal", "", []string{"fish&chips"}},
		{"only spaces", "   ", "normal", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := CreateTextBox(nil, tt.text)
			b.SetProperty("white-space", tt.whiteSpace)
			if tt.wordBreak != "" {
				b.SetProperty("word-break", tt.wordBreak)
			}
			b.ParseToWords()
			got := wordTexts(b.Words)
			if len(got) == 0 {
				got = nil
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("words mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseToWordsSpaceFlags(t *testing.T) {
	b := CreateTextBox(nil, " lead mid trail ")
	b.ParseToWords()
	if !assert.Len(t, b.Words, 3) {
		return
	}
	assert.True(t, b.Words[0].HasSpaceBefore)
	assert.True(t, b.Words[0].HasSpaceAfter)
	assert.False(t, b.Words[1].HasSpaceBefore, "before-space is only set on the first word")
	assert.True(t, b.Words[2].HasSpaceAfter)
}

func TestParseToWordsLineBreakFlags(t *testing.T) {
	b := CreateTextBox(nil, "x\ny")
	b.SetProperty("white-space", "pre")
	b.ParseToWords()
	if !assert.Len(t, b.Words, 3) {
		return
	}
	assert.True(t, b.Words[1].IsLineBreak())
	assert.False(t, b.Words[1].IsSpaces())
	assert.False(t, b.Words[0].IsLineBreak())
}

func TestWhiteSpaceChangeRetokenizes(t *testing.T) {
	_, root := newTestDocument(t)
	txt := CreateTextBox(root, "a  b")
	g := &testGraphics{}

	txt.measureWordsSize(g)
	assert.Equal(t, []string{"a", "b"}, wordTexts(txt.Words))

	root.SetProperty("white-space", "pre")
	txt.measureWordsSize(g)
	assert.Equal(t, []string{"a", "  ", "b"}, wordTexts(txt.Words))
}
