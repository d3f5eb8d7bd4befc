package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/trusttrade/trusttrade/pkg/text"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
	"github.com/trusttrade/trusttrade/pkg/ui"
)

// snackbarView renders the snackbar, or nothing when it is closed.
func snackbarView(sb v1.Snackbar) string {
	if !sb.Open || sb.Message == "" {
		return ""
	}
	return ui.SnackbarStyle(sb.Kind).Render(sb.Message)
}

// promptView renders the open confirmation on a single line, e.g.
//
//	Express interest? Seller will be told... [y] Send  [n] Not now  (+1 waiting)
//
// It returns "" when nothing is being asked.
func promptView(c v1.Confirmation, width int) string {
	if !c.Open {
		return ""
	}

	title, body := ui.YellowFg, ui.GrayFg
	if c.IsDangerous {
		title, body = ui.RedFg, ui.FaintRedFg
	}

	buttons := ui.GreenFg("[y] "+c.ConfirmText) + "  " + ui.GrayFg("[n] "+c.CancelText)
	if c.Queued > 0 {
		buttons += "  " + ui.DimGrayFg(fmt.Sprintf("(+%d waiting)", c.Queued))
	}

	s := title(c.Title)
	if c.Message != "" {
		s += " " + body(c.Message)
	}
	if width > 0 {
		s = truncate.StringWithTail(s, uint(max(0, width-lipgloss.Width(buttons)-1)), text.Ellipsis)
	}
	return s + " " + buttons
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%s\n\n%s",
		ui.RedFg("Error"),
		wordwrap.String(err.Error(), 60),
		ui.GrayFg(exitMsg),
	)
	return "\n" + text.Indent(s, 3) + strings.Repeat("\n", 2)
}
