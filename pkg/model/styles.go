package model

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/trusttrade/trusttrade/pkg/ui"
)

var (
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}

	statusBarNoteStyle      = lipgloss.NewStyle().Foreground(statusBarNoteFg).Background(statusBarBg).Render
	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render
	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render
	statusBarLogoStyle = lipgloss.NewStyle().
				Foreground(ui.Cream).
				Background(ui.Indigo).
				Render
	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render

	filterPromptStyle = lipgloss.NewStyle().Foreground(ui.Yellow)
	cursorStyle       = lipgloss.NewStyle().Foreground(ui.Fuchsia)
	spinnerStyle      = lipgloss.NewStyle().Foreground(ui.Fuchsia)

	dividerDot = ui.DarkGrayFg(" • ")
	dividerBar = ui.DarkGrayFg(" │ ")

	// termenv styles feed the fuzzy match highlighter
	selectedTitleStyle = termenv.Style{}.Foreground(termenv.RGBColor("#EE6FF8"))
	normalTitleStyle   = termenv.Style{}.Foreground(termenv.RGBColor("#DDDDDD"))
)
