package ui

import "github.com/charmbracelet/lipgloss"

// MinLeftWidth is the minimum character width for the list pane.
const MinLeftWidth = 28

// FavoriteMarker is shown next to favorite contacts.
const FavoriteMarker = "★"

var (
	accentColor  = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	dimColor     = lipgloss.AdaptiveColor{Light: "240", Dark: "240"}
	errorColor   = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
	successColor = lipgloss.AdaptiveColor{Light: "2", Dark: "10"}
	starColor    = lipgloss.AdaptiveColor{Light: "3", Dark: "11"}

	titleText   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	labelText   = lipgloss.NewStyle().Bold(true)
	mutedText   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	errorText   = lipgloss.NewStyle().Foreground(errorColor)
	starText    = lipgloss.NewStyle().Foreground(starColor)
	activeTab   = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(accentColor)
	inactiveTab = lipgloss.NewStyle().Foreground(dimColor)
)

// FocusedBorder returns a lipgloss style with an accent-colored rounded border.
func FocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor)
}

// UnfocusedBorder returns a lipgloss style with a dim rounded border.
func UnfocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor)
}

// AvatarBadge renders contact initials as a small inverted badge.
// Contacts without a name get "?".
func AvatarBadge(initials string) string {
	if initials == "" {
		initials = "?"
	}
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.AdaptiveColor{Light: "15", Dark: "0"}).
		Background(accentColor).
		Render(initials)
}

// SnackbarStyle returns the style for a snackbar of the given kind.
func SnackbarStyle(kind SnackbarKind) lipgloss.Style {
	bg := successColor
	if kind == SnackbarError {
		bg = errorColor
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(lipgloss.AdaptiveColor{Light: "15", Dark: "0"}).
		Background(bg)
}

// PaneWidths calculates the left and right pane widths from a total width.
// Left pane gets 1/3 (minimum MinLeftWidth), right pane gets the rest.
func PaneWidths(totalWidth int) (left, right int) {
	if totalWidth <= 0 {
		return 0, 0
	}
	left = totalWidth / 3
	if left < MinLeftWidth {
		left = MinLeftWidth
	}
	right = totalWidth - left
	if right < 0 {
		right = 0
	}
	return left, right
}
