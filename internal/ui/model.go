package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/smileynet/rolodex/internal/contact"
	"github.com/smileynet/rolodex/internal/session"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// headerHeight covers the title line and the snackbar line.
const headerHeight = 2

// loginBoxWidth is the maximum width of the login form box.
const loginBoxWidth = 44

// Options configures a Model.
type Options struct {
	Store  ContactStore
	Auth   Authenticator
	Logger zerolog.Logger
	// SnackbarDuration overrides how long snackbars stay visible.
	SnackbarDuration time.Duration
}

// Model is the root Bubble Tea model for the rolodex TUI.
// It routes messages by screen and owns the store subscription.
type Model struct {
	screen Screen
	width  int
	height int

	store       ContactStore
	auth        Authenticator
	log         zerolog.Logger
	updates     <-chan []contact.Contact
	unsubscribe func()

	login    loginState
	list     listState
	form     formState
	snack    snackbar
	snackFor time.Duration
	spinner  spinner.Model
	help     help.Model
	user     string
}

// NewModel creates a Model on the login screen and subscribes to the store.
// Call Close when the program exits.
func NewModel(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	snackFor := opts.SnackbarDuration
	if snackFor <= 0 {
		snackFor = SnackbarDuration
	}

	updates, cancel := opts.Store.Subscribe()
	return Model{
		screen:      ScreenLogin,
		store:       opts.Store,
		auth:        opts.Auth,
		log:         opts.Logger,
		updates:     updates,
		unsubscribe: cancel,
		login:       newLoginState(),
		list:        newListState(),
		form:        newFormState(),
		snackFor:    snackFor,
		spinner:     s,
		help:        help.New(),
	}
}

// Close releases the store subscription. It is safe to call more than once.
func (m Model) Close() {
	m.unsubscribe()
}

// Init starts listening for store snapshots and the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForContacts(m.updates), textinput.Blink)
}

// Update handles incoming messages with screen-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ContactsMsg:
		m.list = m.list.setContacts(msg.Contacts)
		m.list = m.refreshSuggestion(m.list)
		return m, waitForContacts(m.updates)

	case spinner.TickMsg:
		if !m.login.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitLoginMsg:
		if m.login.pending {
			return m, nil
		}
		m.login.pending = true
		return m, tea.Batch(submitLogin(m.auth, m.login.username()), m.spinner.Tick)

	case LoginResultMsg:
		return m.handleLoginResult(msg)

	case ShowSnackbarMsg:
		var cmd tea.Cmd
		m.snack, cmd = m.snack.show(msg, m.snackFor)
		return m, cmd

	case snackbarExpiredMsg:
		m.snack = m.snack.expire(msg)
		return m, nil

	case queryChangedMsg:
		m.list = m.refreshSuggestion(m.list)
		return m, nil

	case newContactMsg:
		m.screen = ScreenForm
		m.form = newFormState()
		return m, textinput.Blink

	case cancelFormMsg:
		m.screen = ScreenList
		return m, nil

	case saveContactMsg:
		id := m.store.Add(msg.contact)
		m.log.Info().Str("id", id).Msg("contact saved from form")
		m.screen = ScreenList
		m.form = newFormState()
		return m, showSnackbar("Contact saved", SnackbarSuccess)

	case toggleFavoriteMsg:
		return m.handleToggleFavorite(msg.id)

	case deleteContactMsg:
		if !m.store.Delete(msg.id) {
			return m, showSnackbar("Contact no longer exists", SnackbarError)
		}
		return m, showSnackbar(fmt.Sprintf("Deleted %s", msg.name), SnackbarSuccess)

	case logoutMsg:
		m.auth.Logout()
		m.log.Info().Str("user", m.user).Msg("logged out")
		m.user = ""
		m.screen = ScreenLogin
		m.login = m.login.reset()
		m.list = m.list.resetView()
		return m, showSnackbar("Signed out", SnackbarSuccess)
	}

	return m, nil
}

// handleKey processes key messages with global and screen-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	var cmd tea.Cmd
	switch m.screen {
	case ScreenLogin:
		if msg.String() == "esc" {
			return m.quit()
		}
		m.login, cmd = m.login.Update(msg, m.auth)

	case ScreenList:
		if msg.String() == "q" && m.list.mode == ModeBrowse {
			return m.quit()
		}
		m.list, cmd = m.list.Update(msg)

	case ScreenForm:
		m.form, cmd = m.form.Update(msg)
	}
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.unsubscribe()
	return m, tea.Quit
}

func (m Model) handleLoginResult(msg LoginResultMsg) (tea.Model, tea.Cmd) {
	m.login = m.login.applyResult(msg)

	if msg.State != session.Authenticated {
		if msg.Err != nil && !errors.Is(msg.Err, session.ErrLoggedOut) {
			m.log.Info().Str("user", msg.Username).Err(msg.Err).Msg("login failed")
		}
		return m, nil
	}

	m.log.Info().Str("user", msg.Username).Msg("logged in")
	m.user = msg.Username
	m.screen = ScreenList
	m.login = m.login.reset()
	return m, showSnackbar("Login successful", SnackbarSuccess)
}

func (m Model) handleToggleFavorite(id string) (tea.Model, tea.Cmd) {
	var was bool
	for _, c := range m.list.all {
		if c.ID == id {
			was = c.Favorite
			break
		}
	}
	if !m.store.ToggleFavorite(id) {
		return m, showSnackbar("Contact no longer exists", SnackbarError)
	}
	if was {
		return m, showSnackbar("Removed from favorites", SnackbarSuccess)
	}
	return m, showSnackbar("Added to favorites", SnackbarSuccess)
}

// refreshSuggestion looks up a near match when the query found nothing.
func (m Model) refreshSuggestion(ls listState) listState {
	if !ls.wantsSuggestion() {
		return ls.setSuggestion(contact.Contact{}, false)
	}
	c, ok := m.store.Suggest(ls.query())
	return ls.setSuggestion(c, ok)
}

// contentHeight returns the usable height for pane content,
// accounting for border chrome, the header and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - helpBarHeight - headerHeight
	if h < 1 {
		return 1
	}
	return h
}

// View renders the current screen with the snackbar and help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch m.screen {
	case ScreenLogin:
		body = m.viewLogin()
	case ScreenForm:
		body = FocusedBorder().
			Width(m.width - borderChrome).
			Height(m.contentHeight()).
			Render(m.form.View())
	default:
		body = m.viewList()
	}

	helpView := m.help.View(HelpBindings(m.screen, m.list.mode, m.list.hasSuggestion))
	return lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(), m.snack.View(), body, helpView)
}

func (m Model) viewHeader() string {
	title := titleText.Render("Rolodex")
	if m.user == "" {
		return title
	}
	count := len(m.list.all)
	noun := "contacts"
	if count == 1 {
		noun = "contact"
	}
	return title + mutedText.Render(fmt.Sprintf("  %s · %d %s", m.user, count, noun))
}

func (m Model) viewLogin() string {
	width := loginBoxWidth
	if m.width-borderChrome < width {
		width = m.width - borderChrome
	}
	box := FocusedBorder().
		Width(width).
		Padding(0, 1).
		Render(m.login.View(m.spinner.View()))
	return lipgloss.Place(m.width, m.contentHeight()+borderChrome, lipgloss.Center, lipgloss.Center, box)
}

// viewList renders the two-pane list layout. The pane holding the active
// interaction gets the focused border.
func (m Model) viewList() string {
	leftWidth, rightWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	leftStyle, rightStyle := FocusedBorder(), UnfocusedBorder()
	if m.list.mode == ModeConfirm {
		leftStyle, rightStyle = UnfocusedBorder(), FocusedBorder()
	}

	leftPane := leftStyle.
		Width(leftWidth - borderChrome).
		Height(contentHeight).
		Render(m.list.View())
	rightPane := rightStyle.
		Width(rightWidth - borderChrome).
		Height(contentHeight).
		Render(m.list.ViewDetail())
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

// Screen returns the screen currently shown.
func (m Model) Screen() Screen {
	return m.screen
}
