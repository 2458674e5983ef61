package ui

import "github.com/charmbracelet/bubbles/help"

// HelpBindings returns the help.KeyMap for the given screen and list mode,
// providing context-aware help bar content.
func HelpBindings(screen Screen, mode Mode, hasSuggestion bool) help.KeyMap {
	switch screen {
	case ScreenLogin:
		return LoginKeyMap()
	case ScreenForm:
		return FormKeyMap()
	}

	switch mode {
	case ModeSearch:
		return SearchKeyMap()
	case ModeConfirm:
		return ConfirmKeyMap()
	default:
		return BrowseKeyMap(hasSuggestion)
	}
}
