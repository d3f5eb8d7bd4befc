package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/trusttrade/trusttrade/pkg/text"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
	"github.com/trusttrade/trusttrade/pkg/ui"
	"github.com/trusttrade/trusttrade/pkg/version"
)

const (
	listingIndent                = 1
	listingViewItemHeight        = 3 // height of a listing entry, including gap
	listingViewTopPadding        = 5 // logo, status bar, gaps
	listingViewBottomPadding     = 3 // pagination and gaps, but not help
	listingViewHorizontalPadding = 6

	filterCharacterLimit = v1.MaxFilterLength
)

// filterState is the current filter editing state in the listing.
type filterState int

const (
	filterIdle    filterState = iota
	filterEditing             // user is typing into one of the filter fields
)

// filterField is the filter the text input is editing.
type filterField int

const (
	fieldSearch filterField = iota
	fieldMinPrice
	fieldMaxPrice
)

func (f filterField) prompt() string {
	return map[filterField]string{
		fieldSearch:   "Search: ",
		fieldMinPrice: "Min price: ",
		fieldMaxPrice: "Max price: ",
	}[f]
}

func (f filterField) patch(value string) v1.FilterPatch {
	switch f {
	case fieldMinPrice:
		return v1.WithMinPrice(value)
	case fieldMaxPrice:
		return v1.WithMaxPrice(value)
	default:
		return v1.WithSearch(value)
	}
}

func (f filterField) current(filters v1.Filters) string {
	switch f {
	case fieldMinPrice:
		return filters.MinPrice
	case fieldMaxPrice:
		return filters.MaxPrice
	default:
		return filters.Search
	}
}

type listingModel struct {
	common       *commonModel
	spinner      spinner.Model
	spinning     bool
	paginator    paginator.Model
	filterInput  textinput.Model
	filterState  filterState
	filterField  filterField
	showFullHelp bool

	// index of the selected asset across everything loaded so far
	index int
}

func newListingModel(common *commonModel) listingModel {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Line),
		spinner.WithStyle(spinnerStyle),
	)

	fi := textinput.New()
	fi.PromptStyle = filterPromptStyle
	fi.Cursor.Style = cursorStyle
	fi.CharLimit = filterCharacterLimit

	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = ui.BrightGrayFg("•")
	p.InactiveDot = ui.DarkGrayFg("•")

	return listingModel{
		common:      common,
		spinner:     sp,
		paginator:   p,
		filterInput: fi,
	}
}

func (m listingModel) items() []v1.Asset {
	return m.common.feedState.Items
}

// currentAsset returns the selected asset, or nil when nothing is loaded.
func (m listingModel) currentAsset() *v1.Asset {
	items := m.items()
	if m.index < 0 || m.index >= len(items) {
		return nil
	}
	a := items[m.index]
	return &a
}

func (m *listingModel) setSize(width, height int) {
	m.filterInput.Width = width - listingViewHorizontalPadding*2 - ansi.PrintableRuneWidth(m.filterInput.Prompt)
	m.updatePagination()
}

// Update pagination according to the amount of assets loaded.
func (m *listingModel) updatePagination() {
	_, helpHeight := m.helpView()

	availableHeight := m.common.height -
		listingViewTopPadding -
		helpHeight -
		listingViewBottomPadding

	m.paginator.PerPage = max(1, availableHeight/listingViewItemHeight)
	m.paginator.SetTotalPages(max(1, len(m.items())))
	m.paginator.Page = m.index / m.paginator.PerPage
}

// clampIndex keeps the selection on a loaded asset after the feed changed.
func (m *listingModel) clampIndex() {
	if n := len(m.items()); m.index >= n {
		m.index = max(0, n-1)
	}
	m.updatePagination()
}

func (m *listingModel) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *listingModel) moveCursorUp() {
	m.index = max(0, m.index-1)
	m.updatePagination()
}

// moveCursorDown selects the next asset. Stepping past the last loaded asset
// asks the feed for the next page.
func (m *listingModel) moveCursorDown() tea.Cmd {
	st := m.common.feedState
	if m.index+1 < len(st.Items) {
		m.index++
		m.updatePagination()
		return nil
	}
	if st.HasMore && !st.IsLoading() {
		return m.common.loadMoreCmd()
	}
	return nil
}

func (m *listingModel) startEditing(f filterField) tea.Cmd {
	m.filterState = filterEditing
	m.filterField = f
	m.filterInput.Prompt = f.prompt()
	m.filterInput.SetValue(f.current(m.common.feedState.Filters))
	m.filterInput.CursorEnd()
	m.setSize(m.common.width, m.common.height)
	return tea.Batch(m.filterInput.Focus(), textinput.Blink)
}

func (m *listingModel) stopEditing() {
	m.filterState = filterIdle
	m.filterInput.Blur()
	m.filterInput.Reset()
}

// cycle returns the option after current, where "" stands for "any".
func cycle(options []string, current string) string {
	all := append([]string{""}, options...)
	for i, o := range all {
		if strings.EqualFold(o, current) {
			return all[(i+1)%len(all)]
		}
	}
	return ""
}

// applyFilter merges p into the feed's filters and reloads from page one.
func (m *listingModel) applyFilter(p v1.FilterPatch) tea.Cmd {
	m.common.feed.UpdateFilters(p)
	// a second keypress may arrive before the store's change message does
	m.common.feedState = m.common.feed.State()
	m.index = 0
	m.updatePagination()
	return m.common.refreshCmd()
}

// UPDATE

func (m listingModel) update(msg tea.Msg) (listingModel, tea.Cmd) {
	var cmds []tea.Cmd

	if msg, ok := msg.(spinner.TickMsg); ok {
		if m.common.feedState.IsLoading() {
			newSpinnerModel, cmd := m.spinner.Update(msg)
			m.spinner = newSpinnerModel
			cmds = append(cmds, cmd)
		} else {
			m.spinning = false
		}
		return m, tea.Batch(cmds...)
	}

	if m.filterState == filterEditing {
		return m, m.handleFilterEditing(msg)
	}
	return m, m.handleBrowsing(msg)
}

// Updates for when a user is browsing the asset listing.
func (m *listingModel) handleBrowsing(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	st := m.common.feedState
	cfg := m.common.cfg

	switch key.String() {
	case "k", "ctrl+k", "up":
		m.moveCursorUp()

	case "j", "ctrl+j", "down":
		return m.moveCursorDown()

	// Go to the very start
	case "home", "g":
		m.index = 0
		m.updatePagination()

	// Go to the very end of what is loaded
	case "end", "G":
		m.index = max(0, len(st.Items)-1)
		m.updatePagination()

	// Page through the loaded assets
	case "b", "u", "pgup":
		m.index = max(0, m.index-m.paginator.PerPage)
		m.updatePagination()
	case "f", "d", "pgdown":
		if m.index+m.paginator.PerPage < len(st.Items) {
			m.index += m.paginator.PerPage
			m.updatePagination()
			break
		}
		m.index = max(0, len(st.Items)-1)
		m.updatePagination()
		if st.HasMore && !st.IsLoading() {
			return m.common.loadMoreCmd()
		}

	// Open asset
	case "enter", "v", "l", "right":
		if a := m.currentAsset(); a != nil {
			asset := *a
			return func() tea.Msg { return openAssetMsg(asset) }
		}

	case "/":
		return m.startEditing(fieldSearch)
	case "[":
		return m.startEditing(fieldMinPrice)
	case "]":
		return m.startEditing(fieldMaxPrice)

	case "c":
		return m.applyFilter(v1.WithCategory(cycle(cfg.Categories, st.Filters.Category)))
	case "o":
		return m.applyFilter(v1.WithCondition(cycle(cfg.Conditions, st.Filters.Condition)))

	// Clear filters
	case "x", "esc":
		if st.Filters.IsEmpty() && st.Applied.IsEmpty() {
			break
		}
		m.index = 0
		m.updatePagination()
		return m.common.clearFiltersCmd()

	case "r":
		return m.common.refreshCmd()

	case "i":
		if a := m.currentAsset(); a != nil {
			return m.common.expressInterest(*a)
		}

	// Toggle full help
	case "?":
		m.showFullHelp = !m.showFullHelp
		m.updatePagination()
	}

	return nil
}

// Updates for when a user is typing into a filter field.
func (m *listingModel) handleFilterEditing(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.stopEditing()
			return nil

		case "enter":
			p := m.filterField.patch(strings.TrimSpace(m.filterInput.Value()))
			if err := m.common.feedState.Filters.Merge(p).Validate(); err != nil {
				m.common.notify.ShowSnackbar(invalidFilterMessage(m.filterField), v1.SnackbarWarning)
				return nil
			}
			m.stopEditing()
			return m.applyFilter(p)
		}
	}

	// Update the filter text input component
	newFilterInputModel, cmd := m.filterInput.Update(msg)
	m.filterInput = newFilterInputModel
	return cmd
}

func invalidFilterMessage(f filterField) string {
	switch f {
	case fieldMinPrice, fieldMaxPrice:
		return "Prices must be numbers, and the minimum can’t exceed the maximum"
	}
	return "That search can’t be used"
}

func (c *commonModel) expressInterest(a v1.Asset) tea.Cmd {
	if !a.InStock() {
		c.notify.ShowSnackbar(fmt.Sprintf("“%s” is sold out", a.Title), v1.SnackbarWarning)
		return nil
	}
	return expressInterestCmd(c, a)
}

// VIEW

func (m listingModel) view() string {
	st := m.common.feedState

	loadingIndicator := " "
	if st.IsLoading() {
		loadingIndicator = m.spinner.View()
	}

	// The prompt takes over the header while a confirmation is open.
	header := promptView(m.common.confirm, m.common.width-listingViewHorizontalPadding)
	if header == "" {
		header = m.headerView()
	}

	// Rules for the logo, filter and snackbar.
	logoOrFilter := " "
	if m.filterState == filterEditing {
		logoOrFilter += m.filterInput.View()
	} else {
		logoOrFilter += logoView(fmt.Sprintf(" TrustTrade (version %s) ", version.Version))
	}
	if sb := snackbarView(m.common.snackbar); sb != "" {
		logoOrFilter += "  " + sb
	}
	logoOrFilter = truncate.StringWithTail(logoOrFilter, uint(max(0, m.common.width-1)), text.Ellipsis)

	help, helpHeight := m.helpView()

	populatedView := m.populatedView()
	populatedViewHeight := strings.Count(populatedView, "\n") + 2

	// We need to fill any empty height with newlines so the footer reaches
	// the bottom.
	availHeight := m.common.height -
		listingViewTopPadding -
		populatedViewHeight -
		helpHeight -
		listingViewBottomPadding
	blankLines := strings.Repeat("\n", max(0, availHeight))

	s := fmt.Sprintf(
		"%s%s\n\n  %s\n\n%s\n\n%s  %s\n\n%s",
		loadingIndicator,
		logoOrFilter,
		header,
		populatedView,
		blankLines,
		m.footerView(),
		help,
	)
	return "\n" + text.Indent(s, listingIndent)
}

func logoView(text string) string {
	return ui.LogoStyle.Render(text)
}

// headerView summarises the loaded listing and the filters it was loaded
// with.
func (m listingModel) headerView() string {
	st := m.common.feedState

	count := fmt.Sprintf("%d assets", len(st.Items))
	if len(st.Items) == 1 {
		count = "1 asset"
	}
	if st.HasMore {
		count += "+"
	}

	sections := []string{ui.GrayFg(count)}
	if st.Applied.IsEmpty() {
		sections = append(sections, ui.GrayFg("all categories"))
	}
	for _, f := range describeFilters(st.Applied) {
		sections = append(sections, ui.DullFuchsiaFg(f))
	}

	s := strings.Join(sections, dividerBar)
	if st.Filters != st.Applied {
		s += dividerDot + ui.YellowFg("edited, r to apply")
	}
	return s
}

func describeFilters(f v1.Filters) []string {
	var out []string
	if f.Search != "" {
		out = append(out, fmt.Sprintf("“%s”", f.Search))
	}
	if f.Category != "" {
		out = append(out, f.Category)
	}
	if f.Condition != "" {
		out = append(out, text.ConditionIcon(f.Condition)+" "+f.Condition)
	}
	switch {
	case f.MinPrice != "" && f.MaxPrice != "":
		out = append(out, fmt.Sprintf("$%s–$%s", f.MinPrice, f.MaxPrice))
	case f.MinPrice != "":
		out = append(out, fmt.Sprintf("from $%s", f.MinPrice))
	case f.MaxPrice != "":
		out = append(out, fmt.Sprintf("up to $%s", f.MaxPrice))
	}
	return out
}

func (m listingModel) populatedView() string {
	st := m.common.feedState
	items := st.Items

	var b strings.Builder

	// Empty states
	if len(items) == 0 {
		switch {
		case st.IsInitialLoading:
			b.WriteString("  " + ui.GrayFg("Loading assets..."))
		case st.Err == nil:
			b.WriteString("  " + ui.GrayFg("No assets found."))
		}
	}

	if len(items) > 0 {
		start, end := m.paginator.GetSliceBounds(len(items))
		for i, a := range items[start:end] {
			listingItemView(&b, m, start+i, a)
			if start+i != end-1 {
				fmt.Fprintf(&b, "\n\n")
			}
		}
	}

	// If there aren't enough items to fill up this page (always the last page)
	// then we need to add some newlines to fill up the space where items
	// would have been.
	itemsOnPage := m.paginator.ItemsOnPage(len(items))
	if itemsOnPage < m.paginator.PerPage {
		n := (m.paginator.PerPage - itemsOnPage) * listingViewItemHeight
		if len(items) == 0 {
			n -= listingViewItemHeight - 1
		}
		b.WriteString(strings.Repeat("\n", max(0, n)))
	}

	return b.String()
}

// footerView shows pagination, the load-more state and the last fetch error.
func (m listingModel) footerView() string {
	st := m.common.feedState

	var parts []string
	if m.paginator.TotalPages > 1 {
		pagination := m.paginator.View()

		// If the dot pagination is wider than the width of the window
		// use the arabic paginator.
		if ansi.PrintableRuneWidth(pagination) > m.common.width-listingViewHorizontalPadding {
			p := m.paginator
			p.Type = paginator.Arabic
			pagination = ui.GrayFg(p.View())
		}
		parts = append(parts, pagination)
	}

	switch {
	case st.IsLoadingMore:
		parts = append(parts, m.spinner.View()+ui.GrayFg(" Loading more..."))
	case st.Err != nil:
		parts = append(parts, ui.RedFg("Couldn’t load assets: "+st.Err.Error())+ui.FaintRedFg(" (r to retry)"))
	case st.HasMore && m.index == len(st.Items)-1:
		parts = append(parts, ui.GrayFg("↓ for more"))
	}

	return strings.Join(parts, "  ")
}

func (m listingModel) helpView() (string, int) {
	h := []string{"enter", "open", "i", "interested"}
	if m.filterState == filterEditing {
		h = []string{"enter", "apply", "esc", "cancel"}
	} else if m.showFullHelp {
		h = append(h,
			"j/k ↑/↓", "choose",
			"/", "search",
			"[ ]", "min/max price",
			"c", "category",
			"o", "condition",
			"x", "clear filters",
			"r", "refresh",
			"b/f", "page",
		)
	}
	if m.showFullHelp {
		h = append(h, "?", "less", "q", "quit")
	} else {
		h = append(h, "?", "more", "q", "quit")
	}
	s := renderHelp(h, m.common.width)
	return s, 1 + strings.Count(s, "\n")
}

// renderHelp lays key/description pairs out in a single wrapped row.
func renderHelp(pairs []string, width int) string {
	var (
		s        string
		line     string
		sep      = dividerDot
		lineUsed int
	)
	for i := 0; i+1 < len(pairs); i += 2 {
		item := ui.GrayFg(pairs[i]) + " " + ui.DarkGrayFg(pairs[i+1])
		w := ansi.PrintableRuneWidth(item)
		if line != "" && width > 0 && lineUsed+w+3 > width-listingViewHorizontalPadding {
			s += line + "\n"
			line, lineUsed = "", 0
		}
		if line != "" {
			line += sep
			lineUsed += 3
		}
		line += item
		lineUsed += w
	}
	return text.Indent(s+line, 2)
}
