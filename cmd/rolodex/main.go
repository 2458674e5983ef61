package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/smileynet/rolodex"
	"github.com/smileynet/rolodex/internal/config"
	"github.com/smileynet/rolodex/internal/contact"
	"github.com/smileynet/rolodex/internal/logger"
	"github.com/smileynet/rolodex/internal/output"
	"github.com/smileynet/rolodex/internal/session"
	"github.com/smileynet/rolodex/internal/ui"
	"github.com/smileynet/rolodex/internal/validate"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are flags shared by every command.
type Globals struct {
	Config  string           `help:"Extra config file, applied after user and project config." type:"path"`
	Version kong.VersionFlag `help:"Show version." short:"V"`
}

// CLI is the top-level command structure for rolodex.
type CLI struct {
	Globals

	UI       UICmd       `cmd:"" default:"1" help:"Open the interactive contacts TUI."`
	Search   SearchCmd   `cmd:"" help:"Search the seed contacts."`
	Validate ValidateCmd `cmd:"" help:"Check contact fields the way the new-contact form does."`
	Login    LoginCmd    `cmd:"" help:"Run one login attempt against the mock gate."`
}

var (
	// errInvalidContact is returned by validate when any field fails.
	errInvalidContact = errors.New("contact is invalid")
	// errLoginFailed is returned by login when the gate does not authenticate.
	errLoginFailed = errors.New("login failed")
)

// env holds the dependencies built from configuration.
type env struct {
	cfg      *config.Config
	log      zerolog.Logger
	closeLog func()
}

// loadConfig loads layered config from user, project and --config paths
// with env overrides, then validates the result.
func loadConfig(extra string) (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/rolodex/config.yaml"),
		".rolodex/config.yaml",
		extra,
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads config and opens the log file. The TUI owns the terminal,
// so without log.file logs are discarded.
func setup(g *Globals) (*env, error) {
	cfg, err := loadConfig(g.Config)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: zerolog.Nop(), closeLog: func() {}}
	if cfg.Log.File != "" {
		f, err := logger.OpenFile(cfg.Log.File)
		if err != nil {
			return nil, err
		}
		e.log = logger.New(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Output: f})
		e.closeLog = func() { _ = f.Close() }
	}
	return e, nil
}

// newStore builds the contact store, loading the seed contacts when enabled.
func newStore(cfg *config.Config, log zerolog.Logger) (*contact.Store, error) {
	store := contact.NewStore(contact.WithLogger(log))
	if !cfg.Store.Seed {
		return store, nil
	}
	cs, err := rolodex.SeedContacts(".rolodex", cfg.Store.SeedFile)
	if err != nil {
		return nil, err
	}
	store.Seed(cs)
	return store, nil
}

// newGate builds the login gate from the built-in users plus configured ones.
func newGate(cfg *config.Config, log zerolog.Logger, extra ...session.Option) *session.Gate {
	users := make([]session.Credential, 0, len(cfg.Session.Users))
	for _, u := range cfg.Session.Users {
		users = append(users, session.Credential{Username: u.Username, PasswordHash: []byte(u.PasswordHash)})
	}
	opts := []session.Option{
		session.WithAllowList(session.DefaultAllowList().With(users...)),
		session.WithDelay(cfg.Session.LoginDelay),
		session.WithLogger(log),
	}
	return session.NewGate(append(opts, extra...)...)
}

// --- ui ---

// UICmd opens the TUI.
type UICmd struct {
	NoAltScreen bool `help:"Render inline instead of on the alternate screen."`
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the TUI.
func (c *UICmd) Run(g *Globals) error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	e, err := setup(g)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	defer e.closeLog()

	store, err := newStore(e.cfg, e.log)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}

	m := ui.NewModel(ui.Options{
		Store:  store,
		Auth:   newGate(e.cfg, e.log),
		Logger: e.log,
	})
	defer m.Close()

	var popts []tea.ProgramOption
	if e.cfg.UI.AltScreen && !c.NoAltScreen {
		popts = append(popts, tea.WithAltScreen())
	}
	return c.run(isTTY, tea.NewProgram(m, popts...))
}

// run executes the tea program, enabling testable wiring.
func (c *UICmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("ui: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

// --- search ---

// SearchCmd prints contacts matching a query.
type SearchCmd struct {
	Query string `arg:"" optional:"" help:"Text matched against first name, last name and phone. Empty lists everything."`
	Plain bool   `help:"Force tab-separated output even if stdout is a TTY."`
}

// Run executes the search command.
func (c *SearchCmd) Run(g *Globals) error {
	e, err := setup(g)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer e.closeLog()

	store, err := newStore(e.cfg, e.log)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return c.run(output.New(output.Options{Writer: os.Stdout, ForcePlain: c.Plain}), store)
}

func (c *SearchCmd) run(p *output.Printer, store *contact.Store) error {
	matches := store.Search(c.Query)
	if err := p.Contacts(matches); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(matches) == 0 {
		if s, ok := store.Suggest(c.Query); ok {
			if err := p.Suggestion(s); err != nil {
				return fmt.Errorf("search: %w", err)
			}
		}
	}
	return nil
}

// --- validate ---

// ValidateCmd checks contact fields.
type ValidateCmd struct {
	First string `help:"First name."`
	Last  string `help:"Last name."`
	Phone string `help:"Phone number."`
	Email string `help:"Email address (optional)."`
	Plain bool   `help:"Force tab-separated output even if stdout is a TTY."`
}

// Run executes the validate command. It needs no config.
func (c *ValidateCmd) Run() error {
	return c.run(output.New(output.Options{Writer: os.Stdout, ForcePlain: c.Plain}))
}

func (c *ValidateCmd) run(p *output.Printer) error {
	res := validate.ValidateForm(validate.Fields{
		FirstName: c.First,
		LastName:  c.Last,
		Phone:     c.Phone,
		Email:     c.Email,
	})
	if err := p.Validation(res); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if !res.Valid {
		return fmt.Errorf("validate: %w", errInvalidContact)
	}
	return nil
}

// --- login ---

// LoginCmd runs the login gate once.
type LoginCmd struct {
	Username string         `help:"Username." short:"u"`
	Password string         `help:"Password." short:"p"`
	Delay    *time.Duration `help:"Override session.login_delay."`
	Plain    bool           `help:"Force plain output even if stdout is a TTY."`
}

// Run executes the login command.
func (c *LoginCmd) Run(g *Globals) error {
	e, err := setup(g)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer e.closeLog()

	if c.Delay != nil {
		e.cfg.Session.LoginDelay = *c.Delay
	}
	gate := newGate(e.cfg, e.log)
	return c.run(output.New(output.Options{Writer: os.Stdout, ForcePlain: c.Plain}), gate)
}

func (c *LoginCmd) run(p *output.Printer, gate *session.Gate) error {
	state, err := gate.AttemptLogin(c.Username, c.Password)
	if perr := p.Login(c.Username, state, err); perr != nil {
		return fmt.Errorf("login: %w", perr)
	}
	if state != session.Authenticated {
		if err != nil {
			return fmt.Errorf("login: %w: %w", errLoginFailed, err)
		}
		return fmt.Errorf("login: %w", errLoginFailed)
	}
	return nil
}

const (
	exitSuccess = 0
	exitFailure = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errors.Is(err, errInvalidContact) || errors.Is(err, errLoginFailed) {
		return exitFailure
	}
	return exitSetup
}

func run(args []string, stderr io.Writer, exit func(int)) {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("rolodex"),
		kong.Description("A small contacts book with a terminal UI."),
		kong.Vars{"version": version + " " + commit + " " + date},
		kong.Exit(exit),
	)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		exit(exitSetup)
		return
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		parser.FatalIfErrorf(err)
		return
	}
	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		exit(exitCode(err))
	}
}

func main() {
	run(os.Args[1:], os.Stderr, os.Exit)
}
