package ui

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
)

type StyleFunc func(...string) string

const (
	DarkGrayHex = "#333333"
)

var (
	Fuchsia     = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	DullFuchsia = lipgloss.AdaptiveColor{Light: "#F793FF", Dark: "#AD58B4"}
	Green       = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	DimGreen    = lipgloss.AdaptiveColor{Light: "#72D2B0", Dark: "#0B5137"}
	Red         = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	FaintRed    = lipgloss.AdaptiveColor{Light: "#FF6F91", Dark: "#C74665"}
	Yellow      = lipgloss.AdaptiveColor{Light: "#A49000", Dark: "#ECFD65"}
	Indigo      = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	Cream       = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}

	NormalFg     = fg(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"})
	DimNormalFg  = fg(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"})
	BrightGrayFg = fg(lipgloss.AdaptiveColor{Light: "#847A85", Dark: "#979797"})
	DimGrayFg    = fg(lipgloss.AdaptiveColor{Light: "#C2B8C2", Dark: "#4D4D4D"})
	GrayFg       = fg(lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"})
	DarkGrayFg   = fg(lipgloss.AdaptiveColor{Light: "#DDDADA", Dark: "#3C3C3C"})

	FuchsiaFg     = fg(Fuchsia)
	DullFuchsiaFg = fg(DullFuchsia)
	GreenFg       = fg(Green)
	DimGreenFg    = fg(DimGreen)
	RedFg         = fg(Red)
	FaintRedFg    = fg(FaintRed)
	YellowFg      = fg(Yellow)
	IndigoFg      = fg(Indigo)

	LogoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ECFD65")).
			Background(Fuchsia).
			Padding(0, 1)

	snackbarStyles = map[v1.SnackbarKind]lipgloss.Style{
		v1.SnackbarInfo:    lipgloss.NewStyle().Foreground(Cream).Background(Indigo).Padding(0, 1),
		v1.SnackbarSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#89F0CB")).Background(lipgloss.Color("#1C8760")).Padding(0, 1),
		v1.SnackbarWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#1a1a1a")).Background(lipgloss.Color("#FFC107")).Padding(0, 1),
		v1.SnackbarError:   lipgloss.NewStyle().Foreground(Cream).Background(lipgloss.Color("#E53935")).Padding(0, 1),
	}

	trustLow, _  = colorful.Hex("#E53935")
	trustMid, _  = colorful.Hex("#FFC107")
	trustHigh, _ = colorful.Hex("#04B575")
)

func fg(c lipgloss.TerminalColor) StyleFunc {
	return lipgloss.NewStyle().Foreground(c).Render
}

// SnackbarStyle returns the style for a snackbar of the given kind.
func SnackbarStyle(kind v1.SnackbarKind) lipgloss.Style {
	if s, ok := snackbarStyles[kind]; ok {
		return s
	}
	return snackbarStyles[v1.SnackbarInfo]
}

// TrustColor blends from red through amber to green as score goes from 0 to
// 100.
func TrustColor(score float64) lipgloss.Color {
	t := math.Max(0, math.Min(100, score)) / 100
	var c colorful.Color
	if t < 0.5 {
		c = trustLow.BlendLuv(trustMid, t*2)
	} else {
		c = trustMid.BlendLuv(trustHigh, (t-0.5)*2)
	}
	return lipgloss.Color(c.Clamped().Hex())
}

// TrustBadge renders a seller's trust score, e.g. "trust 87".
func TrustBadge(score float64) string {
	return lipgloss.NewStyle().Foreground(TrustColor(score)).Render(fmt.Sprintf("trust %.0f", score))
}
