package model

// The asset pager follows the layout of glow's document pager: a viewport
// with a one line status bar and an optional help panel.

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/trusttrade/trusttrade/pkg/text"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
	"go.uber.org/zap"
)

const statusBarHeight = 1

var pagerHelpHeight int

type contentRenderedMsg struct {
	id      v1.ID
	content string
}

type pagerModel struct {
	common   *commonModel
	viewport viewport.Model
	showHelp bool

	// Asset being shown, sans-glamour rendering. We keep it so we can
	// re-render on resize.
	asset *v1.Asset
}

func newPagerModel(common *commonModel) *pagerModel {
	return &pagerModel{
		common:   common,
		viewport: viewport.New(0, 0),
	}
}

func (m *pagerModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h - statusBarHeight

	if m.showHelp {
		if pagerHelpHeight == 0 {
			pagerHelpHeight = strings.Count(m.helpView(), "\n")
		}
		m.viewport.Height -= (statusBarHeight + pagerHelpHeight)
	}
}

func (m *pagerModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize(m.common.width, m.common.height)
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
}

// load shows a and starts rendering it.
func (m *pagerModel) load(a *v1.Asset) tea.Cmd {
	m.asset = a
	m.viewport.GotoTop()
	return renderWithGlamour(m, a)
}

func (m *pagerModel) unload() {
	if m.showHelp {
		m.toggleHelp()
	}
	m.asset = nil
	m.viewport.SetContent("")
	m.viewport.GotoTop()
}

func (m *pagerModel) update(msg tea.Msg) (*pagerModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "home", "g":
			m.viewport.GotoTop()
		case "end", "G":
			m.viewport.GotoBottom()
		case "i":
			if m.asset != nil {
				cmds = append(cmds, m.common.expressInterest(*m.asset))
			}
		case "?":
			m.toggleHelp()
		}

	case contentRenderedMsg:
		if m.asset != nil && m.asset.ID == msg.id {
			m.viewport.SetContent(msg.content)
		}

	// A fresher copy of the asset arrived from the API.
	case assetLoadedMsg:
		if m.asset != nil && msg != nil && m.asset.ID == msg.ID {
			m.asset = msg
			cmds = append(cmds, renderWithGlamour(m, m.asset))
		}

	// We've received terminal dimensions, either for the first time or
	// after a resize
	case tea.WindowSizeMsg:
		if m.asset != nil {
			cmds = append(cmds, renderWithGlamour(m, m.asset))
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m pagerModel) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")

	// Footer
	if prompt := promptView(m.common.confirm, m.common.width); prompt != "" {
		fmt.Fprint(&b, prompt)
	} else {
		m.statusBarView(&b)
	}

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}

	return b.String()
}

func (m pagerModel) statusBarView(b *strings.Builder) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	logo := statusBarLogoStyle(" Asset ")

	// Scroll percent
	percent := math.Max(minPercent, math.Min(maxPercent, m.viewport.ScrollPercent()))
	scrollPercent := statusBarScrollPosStyle(fmt.Sprintf(" %3.f%% ", percent*percentToStringMagnitude))

	helpNote := statusBarHelpStyle(" ? Help ")

	// Note: the snackbar when one is showing, the asset title otherwise
	var note string
	sb := snackbarView(m.common.snackbar)
	if sb == "" && m.asset != nil {
		note = m.asset.Title
	}
	room := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(sb)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	note = statusBarNoteStyle(truncate.StringWithTail(" "+note+" ", uint(room), text.Ellipsis))

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(sb)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := statusBarNoteStyle(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s%s",
		logo,
		sb,
		note,
		emptySpace,
		scrollPercent,
		helpNote,
	)
}

func (m pagerModel) helpView() (s string) {
	col1 := []string{
		"g/home  go to top",
		"G/end   go to bottom",
		"i       express interest",
		"esc     back to listing",
		"q       quit",
	}

	s += "\n"
	s += "k/↑      up                  " + col1[0] + "\n"
	s += "j/↓      down                " + col1[1] + "\n"
	s += "b/pgup   page up             " + col1[2] + "\n"
	s += "f/pgdn   page down           " + col1[3] + "\n"
	s += "u        ½ page up           " + col1[4] + "\n"
	s += "d        ½ page down         "

	s = text.Indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := runewidth.StringWidth(lines[i])
			n := max(m.common.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}

		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}

// assetMarkdown lays an asset out as a markdown document for glamour.
func assetMarkdown(a *v1.Asset) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", a.Title)
	fmt.Fprintf(&b, "**%s**", text.Price(a.Price))
	if a.InStock() {
		fmt.Fprintf(&b, " · %d available", a.Quantity)
	} else {
		b.WriteString(" · sold out")
	}
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Category", a.Category},
		{"Condition", strings.TrimSpace(text.ConditionIcon(a.Condition) + " " + a.Condition)},
		{"Location", a.Location},
		{"Listed", text.RelativeTime(a.CreatedAt)},
		{"Views", text.Count(a.Views)},
		{"Sales", text.Count(a.Sales)},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "- **%s:** %s\n", r[0], r[1])
	}
	b.WriteString("\n")

	b.WriteString("## Seller\n\n")
	b.WriteString(a.Seller.DisplayName())
	if a.Seller.Verified {
		b.WriteString(" " + text.EmojiVerified + " verified")
	}
	if a.Seller.TrustScore > 0 {
		fmt.Fprintf(&b, " · trust score %.0f/100", a.Seller.TrustScore)
	}
	b.WriteString("\n\n")

	if desc := text.PlainDescription(a.Description); desc != "" {
		b.WriteString("## Description\n\n")
		b.WriteString(desc)
		b.WriteString("\n\n")
	}

	if len(a.Images) > 0 {
		fmt.Fprintf(&b, "## Photos\n\n")
		for _, img := range a.Images {
			fmt.Fprintf(&b, "- %s\n", img)
		}
	}

	return b.String()
}

// COMMANDS

func renderWithGlamour(m *pagerModel, a *v1.Asset) tea.Cmd {
	id := a.ID
	md := assetMarkdown(a)
	width := m.viewport.Width
	style := m.common.glamourStyle
	log := m.common.log

	return func() tea.Msg {
		s, err := glamourRender(md, width, style)
		if err != nil {
			log.Error("error rendering with glamour", zap.String("id", id.String()), zap.Error(err))
			return errMsg{err}
		}
		return contentRenderedMsg{id: id, content: s}
	}
}

func glamourRender(markdown string, width int, style string) (string, error) {
	gs := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		gs = glamour.WithStandardStyle(style)
	}

	r, err := glamour.NewTermRenderer(gs, glamour.WithWordWrap(max(0, width)))
	if err != nil {
		return "", err
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", err
	}

	// trim lines
	lines := strings.Split(out, "\n")
	for i, s := range lines {
		lines[i] = strings.TrimRight(s, " ")
	}
	return strings.Join(lines, "\n"), nil
}
