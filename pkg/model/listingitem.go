package model

import (
	"fmt"
	"strings"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/trusttrade/trusttrade/pkg/text"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
	"github.com/trusttrade/trusttrade/pkg/ui"
)

const (
	verticalLine = "│"
)

// listingItemView renders one asset as two lines: the title with its price
// flush right, then the details.
func listingItemView(b *strings.Builder, m listingModel, index int, a v1.Asset) {
	var (
		width    = max(0, m.common.width-listingViewHorizontalPadding*2)
		price    = text.Price(a.Price)
		icon     = text.ConditionIcon(a.Condition) + " "
		search   = m.common.feedState.Applied.Search
		selected = index == m.index
		title    string
		gutter   string
	)

	// room left for the title once the icon, price and a gap are placed
	room := width - runewidth.StringWidth(icon) - runewidth.StringWidth(price) - 2
	rawTitle := truncate.StringWithTail(a.Title, uint(max(0, room)), text.Ellipsis)
	pad := strings.Repeat(" ", max(1, room-runewidth.StringWidth(rawTitle)+1))

	switch {
	case selected && m.common.confirm.Open:
		gutter = ui.FaintRedFg(verticalLine)
		title = ui.RedFg(rawTitle)
		price = ui.FaintRedFg(price)
	case selected:
		gutter = ui.DullFuchsiaFg(verticalLine)
		title = text.StyleFilteredText(rawTitle, search, selectedTitleStyle, selectedTitleStyle.Underline())
		price = ui.FuchsiaFg(price)
	default:
		gutter = " "
		title = text.StyleFilteredText(rawTitle, search, normalTitleStyle, normalTitleStyle.Underline())
		price = ui.GreenFg(price)
	}

	details := detailsLine(a, selected)
	if _, ok := m.common.contacted(a.ID); ok {
		details += dividerDot + ui.DimGreenFg("contacted")
	}
	details = truncate.StringWithTail(details, uint(width), text.Ellipsis)

	fmt.Fprintf(b, "%s %s%s%s%s\n", gutter, icon, title, pad, price)
	fmt.Fprintf(b, "%s %s", gutter, details)
}

func detailsLine(a v1.Asset, focused bool) string {
	dim := ui.DimGrayFg
	if focused {
		dim = ui.GrayFg
	}

	var parts []string
	if a.Category != "" {
		parts = append(parts, text.ColoredCategory(a.Category))
	}
	if a.Location != "" {
		parts = append(parts, dim(text.EmojiLocation+" "+a.Location))
	}

	seller := a.Seller.DisplayName()
	if a.Seller.Verified {
		seller += " " + text.EmojiVerified
	}
	parts = append(parts, dim(seller))
	if a.Seller.TrustScore > 0 {
		parts = append(parts, ui.TrustBadge(a.Seller.TrustScore))
	}

	if !a.InStock() {
		parts = append(parts, ui.RedFg(text.EmojiSoldOut+" sold out"))
	}
	if a.Views > 0 {
		parts = append(parts, dim(text.EmojiViews+" "+text.Count(a.Views)))
	}
	if t := text.RelativeTime(a.CreatedAt); t != "" {
		parts = append(parts, dim(t))
	}

	s := strings.Join(parts, dividerDot)
	if ansi.PrintableRuneWidth(s) == 0 {
		return dim("no details")
	}
	return s
}
