package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/rolodex/internal/contact"
)

// CursorMarker is the prefix shown on the selected contact row.
const CursorMarker = "▸ "

// Messages the list emits for the root model to act on.
type (
	newContactMsg     struct{}
	logoutMsg         struct{}
	toggleFavoriteMsg struct{ id string }
	deleteContactMsg  struct {
		id   string
		name string
	}
	// queryChangedMsg asks the root model to refresh the suggestion.
	queryChangedMsg struct{}
)

// listState manages the contact list, search box, tabs and cursor for the
// list screen's left pane.
type listState struct {
	all     []contact.Contact
	visible []contact.Contact
	cursor  int
	tab     Tab
	mode    Mode
	search  textinput.Model
	loaded  bool

	suggestion    contact.Contact
	hasSuggestion bool

	pendingDelete contact.Contact
}

func newListState() listState {
	search := textinput.New()
	search.Placeholder = "Search..."
	search.Prompt = "/ "
	search.CharLimit = 64
	return listState{search: search}
}

// waitForContacts blocks on the store subscription and wraps the next
// snapshot in a ContactsMsg. It returns nil once the subscription closes.
func waitForContacts(updates <-chan []contact.Contact) tea.Cmd {
	return func() tea.Msg {
		cs, ok := <-updates
		if !ok {
			return nil
		}
		return ContactsMsg{Contacts: cs}
	}
}

// setContacts replaces the snapshot, keeping the cursor on the same contact
// when it is still visible.
func (ls listState) setContacts(cs []contact.Contact) listState {
	ls.loaded = true
	ls.all = cs
	return ls.refilter()
}

// query returns the current search text.
func (ls listState) query() string {
	return ls.search.Value()
}

// refilter recomputes the visible rows from the snapshot, query and tab.
func (ls listState) refilter() listState {
	selected := ls.SelectedID()

	vis := contact.Filter(ls.all, ls.query())
	if ls.tab == TabFavorites {
		favs := vis[:0]
		for _, c := range vis {
			if c.Favorite {
				favs = append(favs, c)
			}
		}
		vis = favs
	}
	ls.visible = vis

	ls.cursor = 0
	for i, c := range vis {
		if c.ID == selected {
			ls.cursor = i
			break
		}
	}
	return ls
}

// setSuggestion records the closest name for an empty result set.
func (ls listState) setSuggestion(c contact.Contact, ok bool) listState {
	ls.suggestion, ls.hasSuggestion = c, ok
	return ls
}

// wantsSuggestion reports whether a non-blank query matched nothing.
func (ls listState) wantsSuggestion() bool {
	return ls.loaded && len(ls.visible) == 0 && strings.TrimSpace(ls.query()) != ""
}

// SelectedID returns the contact ID at the cursor, or "" if nothing is shown.
func (ls listState) SelectedID() string {
	c, ok := ls.Selected()
	if !ok {
		return ""
	}
	return c.ID
}

// Selected returns the contact at the cursor.
func (ls listState) Selected() (contact.Contact, bool) {
	if ls.cursor < 0 || ls.cursor >= len(ls.visible) {
		return contact.Contact{}, false
	}
	return ls.visible[ls.cursor], true
}

// Update processes key input for the list screen.
func (ls listState) Update(msg tea.KeyMsg) (listState, tea.Cmd) {
	switch ls.mode {
	case ModeSearch:
		return ls.handleSearchKey(msg)
	case ModeConfirm:
		return ls.handleConfirmKey(msg)
	default:
		return ls.handleBrowseKey(msg)
	}
}

func (ls listState) handleBrowseKey(msg tea.KeyMsg) (listState, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if len(ls.visible) > 0 {
			ls.cursor--
			if ls.cursor < 0 {
				ls.cursor = len(ls.visible) - 1
			}
		}
		return ls, nil

	case "down", "j":
		if len(ls.visible) > 0 {
			ls.cursor++
			if ls.cursor >= len(ls.visible) {
				ls.cursor = 0
			}
		}
		return ls, nil

	case "/":
		ls.mode = ModeSearch
		return ls, ls.search.Focus()

	case "esc":
		if ls.query() == "" {
			return ls, nil
		}
		ls.search.SetValue("")
		return ls.refilter(), queryChanged

	case "tab":
		if ls.tab == TabAll {
			ls.tab = TabFavorites
		} else {
			ls.tab = TabAll
		}
		return ls.refilter(), queryChanged

	case "s":
		if !ls.hasSuggestion {
			return ls, nil
		}
		ls.search.SetValue(ls.suggestion.FirstName)
		ls.tab = TabAll
		ls = ls.refilter()
		for i, c := range ls.visible {
			if c.ID == ls.suggestion.ID {
				ls.cursor = i
			}
		}
		return ls, queryChanged

	case "f":
		if id := ls.SelectedID(); id != "" {
			return ls, func() tea.Msg { return toggleFavoriteMsg{id: id} }
		}
		return ls, nil

	case "d":
		if c, ok := ls.Selected(); ok {
			ls.pendingDelete = c
			ls.mode = ModeConfirm
		}
		return ls, nil

	case "n":
		return ls, func() tea.Msg { return newContactMsg{} }

	case "L":
		return ls, func() tea.Msg { return logoutMsg{} }
	}
	return ls, nil
}

func (ls listState) handleSearchKey(msg tea.KeyMsg) (listState, tea.Cmd) {
	switch msg.String() {
	case "enter":
		ls.mode = ModeBrowse
		ls.search.Blur()
		return ls, nil
	case "esc":
		ls.mode = ModeBrowse
		ls.search.Blur()
		ls.search.SetValue("")
		return ls.refilter(), queryChanged
	}

	before := ls.query()
	var cmd tea.Cmd
	ls.search, cmd = ls.search.Update(msg)
	if ls.query() != before {
		ls = ls.refilter()
		return ls, tea.Batch(cmd, queryChanged)
	}
	return ls, cmd
}

func (ls listState) handleConfirmKey(msg tea.KeyMsg) (listState, tea.Cmd) {
	switch msg.String() {
	case "enter", "y":
		target := ls.pendingDelete
		ls.pendingDelete = contact.Contact{}
		ls.mode = ModeBrowse
		return ls, func() tea.Msg {
			return deleteContactMsg{id: target.ID, name: target.FullName()}
		}
	case "esc", "n":
		ls.pendingDelete = contact.Contact{}
		ls.mode = ModeBrowse
	}
	return ls, nil
}

func queryChanged() tea.Msg { return queryChangedMsg{} }

// View renders the list pane: search box, tabs and rows.
func (ls listState) View() string {
	var b strings.Builder
	b.WriteString(ls.search.View())
	b.WriteString("\n")
	b.WriteString(ls.viewTabs())
	b.WriteString("\n\n")
	b.WriteString(ls.viewRows())
	return b.String()
}

func (ls listState) viewTabs() string {
	all, favs := inactiveTab, inactiveTab
	if ls.tab == TabAll {
		all = activeTab
	} else {
		favs = activeTab
	}
	return all.Render("Contacts") + "  " + favs.Render("Favorites")
}

func (ls listState) viewRows() string {
	if !ls.loaded {
		return "Loading contacts..."
	}

	if len(ls.visible) == 0 {
		return ls.viewEmpty()
	}

	var b strings.Builder
	for i, c := range ls.visible {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i == ls.cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}
		b.WriteString(c.FullName())
		if c.Favorite {
			b.WriteString(" " + starText.Render(FavoriteMarker))
		}
	}
	return b.String()
}

func (ls listState) viewEmpty() string {
	searching := strings.TrimSpace(ls.query()) != ""
	switch {
	case searching && ls.hasSuggestion:
		return fmt.Sprintf("No contacts found\n\n%s",
			mutedText.Render(fmt.Sprintf("Did you mean %s? Press s", ls.suggestion.FullName())))
	case searching:
		return "No contacts found\n\n" + mutedText.Render("Try another search term")
	case ls.tab == TabFavorites:
		return "No favorites\n\n" + mutedText.Render("Contacts marked as favorite appear here")
	default:
		return "No contacts\n\n" + mutedText.Render("Press n to add a contact")
	}
}

// ViewDetail renders the right pane for the selected contact, or the delete
// confirmation when one is pending.
func (ls listState) ViewDetail() string {
	if ls.mode == ModeConfirm {
		return viewConfirmDelete(ls.pendingDelete)
	}

	c, ok := ls.Selected()
	if !ok {
		return mutedText.Render("No contact selected")
	}

	var b strings.Builder
	b.WriteString(AvatarBadge(c.Initials()))
	b.WriteString(" ")
	b.WriteString(titleText.Render(c.FullName()))
	if c.Favorite {
		b.WriteString(" " + starText.Render(FavoriteMarker))
	}
	b.WriteString("\n")

	writeDetail(&b, "Phone", c.Phone)
	writeDetail(&b, "Email", c.Email)
	writeDetail(&b, "Company", c.Company)
	writeDetail(&b, "Address", c.Address)
	return b.String()
}

func writeDetail(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "\n%s %s", labelText.Render(label+":"), value)
}

func viewConfirmDelete(c contact.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Delete %s?\n", c.FullName())
	if c.Phone != "" {
		fmt.Fprintf(&b, "\n  %s\n", c.Phone)
	}
	b.WriteString("\n  This cannot be undone.")
	b.WriteString("\n\n  [Enter] Confirm   [Esc] Cancel")
	return b.String()
}

// resetView clears the query, tab and any pending action. The snapshot is kept.
func (ls listState) resetView() listState {
	ls.search.Blur()
	ls.search.SetValue("")
	ls.mode = ModeBrowse
	ls.tab = TabAll
	ls.pendingDelete = contact.Contact{}
	ls.hasSuggestion = false
	return ls.refilter()
}
