package util

import (
	"strings"
	"unicode/utf8"
)

// SliceString returns s[start:end] clamped to the bounds of s. Fixed width
// records are frequently shorter than their layout, so out of range offsets
// give a truncated or empty string instead of panicking.
func SliceString(s string, start int, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return ""
	}

	return s[start:end]
}

// SliceTrimmed is SliceString followed by strings.TrimSpace
func SliceTrimmed(s string, start int, end int) string {
	return strings.TrimSpace(SliceString(s, start, end))
}

// StorableText replaces invalid UTF-8 and characters XML cannot carry with
// U+FFFD, so the value reads back unchanged from a saved workbook
func StorableText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case r < 0x20, r >= 0xD800 && r <= 0xDFFF, r == 0xFFFE, r == 0xFFFF:
			return utf8.RuneError
		}

		return r
	}, strings.ToValidUTF8(s, string(utf8.RuneError)))
}

func ContainsString(s []string, str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}

	return false
}

// DuplicateStrings returns every value that occurs more than once, in the order
// of its second occurrence.
func DuplicateStrings(strings []string) []string {
	seen := make(map[string]int)
	var duplicates []string

	for _, item := range strings {
		seen[item]++
		if seen[item] == 2 {
			duplicates = append(duplicates, item)
		}
	}

	return duplicates
}

func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// SplitList splits a recipient style list on ';' or ',' dropping blanks
func SplitList(s string) []string {
	var list []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' }) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}

	return list
}
