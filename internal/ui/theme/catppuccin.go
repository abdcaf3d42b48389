package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha colors, see https://github.com/catppuccin/catppuccin
const (
	mochaText     = lipgloss.Color("#cdd6f4")
	mochaSubtext0 = lipgloss.Color("#a6adc8")
	mochaOverlay0 = lipgloss.Color("#6c7086")
	mochaSurface1 = lipgloss.Color("#45475a")
	mochaSurface0 = lipgloss.Color("#313244")
	mochaLavender = lipgloss.Color("#b4befe")
	mochaBlue     = lipgloss.Color("#89b4fa")
	mochaSky      = lipgloss.Color("#89dceb")
	mochaTeal     = lipgloss.Color("#94e2d5")
	mochaGreen    = lipgloss.Color("#a6e3a1")
	mochaYellow   = lipgloss.Color("#f9e2af")
	mochaMaroon   = lipgloss.Color("#eba0ac")
	mochaRed      = lipgloss.Color("#f38ba8")
	mochaMauve    = lipgloss.Color("#cba6f7")
)

// CatppuccinMochaTheme returns the Catppuccin Mocha theme
func CatppuccinMochaTheme() Theme {
	return Theme{
		Name: "catppuccin-mocha",

		Foreground:    mochaText,
		Metadata:      mochaSubtext0,
		Border:        mochaSurface1,
		BorderFocused: mochaBlue,
		Selection:     mochaSurface0,

		Success: mochaGreen,
		Warning: mochaYellow,
		Error:   mochaRed,
		Info:    mochaSky,

		Connector: mochaMauve,
		Negation:  mochaMaroon,
		Field:     mochaBlue,
		Operator:  mochaTeal,
		Value:     mochaGreen,
		Preview:   mochaOverlay0,

		TableHeader:      mochaLavender,
		TableRowSelected: mochaSurface0,
	}
}
