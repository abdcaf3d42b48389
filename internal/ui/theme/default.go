package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme returns the default dark theme using 256-color codes
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		Foreground:    lipgloss.Color("252"),
		Metadata:      lipgloss.Color("244"),
		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),

		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		Connector: lipgloss.Color("75"),
		Negation:  lipgloss.Color("203"),
		Field:     lipgloss.Color("117"),
		Operator:  lipgloss.Color("220"),
		Value:     lipgloss.Color("180"),
		Preview:   lipgloss.Color("65"),

		TableHeader:      lipgloss.Color("105"),
		TableRowSelected: lipgloss.Color("25"),
	}
}
