package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// containsFold reports whether the lowercase form of s contains the
// lowercase form of substr. An empty substr matches everything.
func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// foldedText is a per-rune lowercase view of a string that remembers the
// byte offset of every rune in the source, so matches found on the folded
// form can be cut from the original text with its casing intact.
type foldedText struct {
	runes   []rune
	offsets []int // offsets[i] is the byte index of runes[i]; offsets[len] == len(src)
}

func foldText(s string) foldedText {
	ft := foldedText{
		runes:   make([]rune, 0, len(s)),
		offsets: make([]int, 0, len(s)+1),
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		ft.runes = append(ft.runes, unicode.ToLower(r))
		ft.offsets = append(ft.offsets, i)
		i += size
	}
	ft.offsets = append(ft.offsets, len(s))
	return ft
}

// indexFrom returns the rune index of the first occurrence of needle in
// ft at or after start, or -1.
func (ft foldedText) indexFrom(needle []rune, start int) int {
	n := len(needle)
	for i := start; i+n <= len(ft.runes); i++ {
		match := true
		for j := 0; j < n; j++ {
			if ft.runes[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// foldRunes lowercases s rune by rune.
func foldRunes(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return out
}
