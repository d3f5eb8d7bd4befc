package text

import (
	"strings"
	"unicode"

	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StyleFilteredText underlines the runes of haystack that match needles, so a
// listing shows why an asset matched the search box.
func StyleFilteredText(haystack, needles string, defaultStyle, matchedStyle termenv.Style) string {
	if needles == "" {
		return defaultStyle.Styled(haystack)
	}

	normalizedNeedles, err := Normalize(needles)
	if err != nil {
		return defaultStyle.Styled(haystack)
	}

	// Fold each rune of haystack on its own and remember which bytes of the
	// folded text it produced, so matches land back on the original runes.
	type span struct{ start, end int }
	var (
		folded strings.Builder
		spans  []span
		orig   = []rune(haystack)
	)
	for _, r := range orig {
		f, err := Normalize(string(r))
		if err != nil {
			return defaultStyle.Styled(haystack)
		}
		start := folded.Len()
		folded.WriteString(strings.ToLower(f))
		spans = append(spans, span{start, folded.Len()})
	}

	matches := fuzzy.Find(strings.ToLower(normalizedNeedles), []string{folded.String()})
	if len(matches) == 0 {
		return defaultStyle.Styled(haystack)
	}

	// MatchedIndexes are byte offsets into the folded string
	matched := map[int]bool{}
	for _, mi := range matches[0].MatchedIndexes {
		matched[mi] = true
	}

	b := strings.Builder{}
	for i, r := range orig {
		hit := false
		for o := spans[i].start; o < spans[i].end; o++ {
			if matched[o] {
				hit = true
				break
			}
		}
		if hit {
			b.WriteString(matchedStyle.Styled(string(r)))
		} else {
			b.WriteString(defaultStyle.Styled(string(r)))
		}
	}
	return b.String()
}

// Normalize text to aid in the filtering process. In particular, we remove
// diacritics, "ö" becomes "o". Note that Mn is the unicode key for nonspacing
// marks.
func Normalize(in string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, in)
	return out, err
}

func TruncateWithTail(txt string, width uint, ellipsis string) string {
	return truncate.StringWithTail(txt, width, ellipsis)
}

// Indent is a lightweight version of reflow's indent function.
func Indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for j, v := range l {
		b.WriteString(i + v)
		if j < len(l)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
