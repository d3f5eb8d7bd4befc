package text

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/enescakir/emoji"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	Ellipsis = "…"
)

var (
	EmojiNew       = emoji.Sparkles.String()
	EmojiLikeNew   = emoji.GemStone.String()
	EmojiGood      = emoji.Star.String()
	EmojiFair      = emoji.Wrench.String()
	EmojiPoor      = emoji.Warning.String()
	EmojiUnknown   = emoji.QuestionMark.String()
	EmojiVerified  = emoji.CheckMarkButton.String()
	EmojiLocation  = emoji.RoundPushpin.String()
	EmojiViews     = emoji.Eyes.String()
	EmojiSoldOut   = emoji.NoEntry.String()
	EmojiInterest  = emoji.Envelope.String()
	EmojiSearching = emoji.MagnifyingGlassTiltedLeft.String()
)

var (
	tagColorHashSalt uint32 = 6969420
	// NOTE: changing these dimensions uncovers some awkward indexing issues in the color
	// selection algo for tags. avoid if you can help it
	tagColors = colorGrid(4, 4)
)

// ConditionIcon maps the marketplace's condition labels to an icon.
func ConditionIcon(condition string) string {
	switch strings.ToLower(strings.TrimSpace(condition)) {
	case "new":
		return EmojiNew
	case "like new", "like-new":
		return EmojiLikeNew
	case "good":
		return EmojiGood
	case "fair":
		return EmojiFair
	case "poor", "for parts":
		return EmojiPoor
	}
	return EmojiUnknown
}

// Price renders an amount with thousands separators and at most two decimals.
func Price(amount float64) string {
	return "$" + humanize.CommafWithDigits(amount, 2)
}

// Count renders view and sales counters, e.g. "1.2k".
func Count(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	v, unit := humanize.ComputeSI(float64(n))
	return fmt.Sprintf("%s%s", humanize.FtoaWithDigits(v, 1), strings.ToLower(unit))
}

// Return the time in a human-readable format relative to the current time.
func RelativeTime(then time.Time) string {
	if then.IsZero() {
		return ""
	}
	now := time.Now()
	ago := now.Sub(then)
	if ago < time.Minute {
		return "just now"
	} else if ago < humanize.Week {
		return humanize.CustomRelTime(then, now, "ago", "from now", magnitudes)
	}
	return then.Format("02 Jan 2006")
}

// Magnitudes for relative time.
var magnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "now", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 second %s", DivBy: 1},
	{D: time.Minute, Format: "%d seconds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: humanize.Day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 day %s", DivBy: 1},
	{D: humanize.Week, Format: "%d days %s", DivBy: humanize.Day},
	{D: math.MaxInt64, Format: "a long while %s", DivBy: 1},
}

// CategoryColor picks a stable color for a category name so the same
// category always renders the same way.
func CategoryColor(category string) lipgloss.Color {
	colorRangeX := len(tagColors)
	colorRangeY := len(tagColors[0])

	hasher := fnv.New32a()
	hasher.Write([]byte(strings.ToLower(category)))
	hash := hasher.Sum32() + tagColorHashSalt
	n := colorRangeX * colorRangeY
	idx := int(hash % uint32(n))
	x := idx / colorRangeY
	y := idx % colorRangeY
	return lipgloss.Color(tagColors[x][y])
}

func ColoredCategory(category string) string {
	if category == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(CategoryColor(category)).Render(category)
}

func colorGrid(xSteps, ySteps int) [][]string {
	x0y0, _ := colorful.Hex("#F25D94")
	x1y0, _ := colorful.Hex("#EDFF82")
	x0y1, _ := colorful.Hex("#643AFF")
	x1y1, _ := colorful.Hex("#14F9D5")

	x0 := make([]colorful.Color, ySteps)
	for i := range x0 {
		x0[i] = x0y0.BlendLuv(x0y1, float64(i)/float64(ySteps))
	}

	x1 := make([]colorful.Color, ySteps)
	for i := range x1 {
		x1[i] = x1y0.BlendLuv(x1y1, float64(i)/float64(ySteps))
	}

	grid := make([][]string, ySteps)
	for x := 0; x < ySteps; x++ {
		y0 := x0[x]
		grid[x] = make([]string, xSteps)
		for y := 0; y < xSteps; y++ {
			grid[x][y] = y0.BlendLuv(x1[x], float64(y)/float64(xSteps)).Hex()
		}
	}

	return grid
}
