// Package textclean normalizes raw document text before detection and
// extraction. PDF extractors leave ligatures, soft hyphens, and repeated
// page furniture behind; the regex extractors downstream assume none of it.
package textclean

import (
	"regexp"
	"strings"
)

var ligatures = strings.NewReplacer(
	"ﬀ", "ff",
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"‐", "-",
	"‑", "-",
	"‒", "-",
	"–", "-",
	"—", "-",
	"−", "-",
)

var quotes = strings.NewReplacer(
	" ", " ",
	"‘", "'",
	"’", "'",
	"“", "\"",
	"”", "\"",
)

var (
	hyphenBreakRe = regexp.MustCompile(`(\w)-\s*\n\s*(\w)`)
	pageNumberRe  = regexp.MustCompile(`(?i)\bPage\s+\d+\s+(of|/)\s+\d+\b`)
	spaceRunRe    = regexp.MustCompile(`[ \t]+`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
)

// Prenormalize folds unicode quotes, dashes, and NBSP into ASCII and
// collapses horizontal whitespace. The detector and the legacy extractors
// expect text in this form.
func Prenormalize(s string) string {
	if s == "" {
		return ""
	}
	s = quotes.Replace(s)
	s = ligatures.Replace(s)
	return spaceRunRe.ReplaceAllString(s, " ")
}

// Clean prepares text for LLM extraction: prenormalize, strip repeated
// headers/footers when per-page text is available, join words broken
// across line breaks, drop "Page N of M" markers, collapse whitespace.
func Clean(raw string, pages []string) string {
	s := Prenormalize(raw)

	if len(pages) > 1 {
		s = stripCommonHeadersFooters(pages)
		s = Prenormalize(s)
	} else if len(pages) == 1 {
		s = Prenormalize(pages[0])
	}

	s = hyphenBreakRe.ReplaceAllString(s, "$1$2")
	s = pageNumberRe.ReplaceAllString(s, "")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// stripCommonHeadersFooters removes first/last lines that repeat on more
// than 60% of pages.
func stripCommonHeadersFooters(pages []string) string {
	tops := map[string]int{}
	bottoms := map[string]int{}
	for _, p := range pages {
		lines := nonEmptyLines(p)
		if len(lines) == 0 {
			continue
		}
		tops[truncate(lines[0], 120)]++
		bottoms[truncate(lines[len(lines)-1], 120)]++
	}
	threshold := func(count int) bool {
		return float64(count)/float64(len(pages)) > 0.6
	}

	cleaned := make([]string, 0, len(pages))
	for _, p := range pages {
		lines := strings.Split(p, "\n")
		if len(lines) > 0 && threshold(tops[truncate(strings.TrimSpace(lines[0]), 120)]) {
			lines = lines[1:]
		}
		if len(lines) > 0 && threshold(bottoms[truncate(strings.TrimSpace(lines[len(lines)-1]), 120)]) {
			lines = lines[:len(lines)-1]
		}
		cleaned = append(cleaned, strings.Join(lines, "\n"))
	}
	return strings.Join(cleaned, "\n\n")
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
