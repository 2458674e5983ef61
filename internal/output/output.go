// Package output renders command results for the non-interactive CLI
// commands. Terminals get aligned, styled text; pipes get tab-separated
// lines that are easy to cut and grep.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/rolodex/internal/contact"
	"github.com/smileynet/rolodex/internal/session"
	"github.com/smileynet/rolodex/internal/validate"
)

// Options configures printer creation.
type Options struct {
	Writer     io.Writer // Output destination (default: os.Stdout).
	ForcePlain bool      // Force plain text even if TTY.
}

// Printer writes command results to a single writer.
type Printer struct {
	w      io.Writer
	pretty bool
	re     *lipgloss.Renderer
}

// New returns a pretty printer when the writer is a TTY, or a plain one
// otherwise. ForcePlain overrides TTY detection.
func New(opts Options) *Printer {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &Printer{
		w:      opts.Writer,
		pretty: !opts.ForcePlain && IsTTY(opts.Writer),
		re:     lipgloss.NewRenderer(opts.Writer),
	}
}

// IsTTY reports whether w is connected to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Pretty reports whether the printer styles its output.
func (p *Printer) Pretty() bool {
	return p.pretty
}

// Contacts prints one line per contact. Plain output is
// name, phone, email, company, favorite separated by tabs.
func (p *Printer) Contacts(cs []contact.Contact) error {
	if !p.pretty {
		for _, c := range cs {
			fav := ""
			if c.Favorite {
				fav = "favorite"
			}
			if _, err := fmt.Fprintf(p.w, "%s\t%s\t%s\t%s\t%s\n", c.FullName(), c.Phone, c.Email, c.Company, fav); err != nil {
				return err
			}
		}
		return nil
	}

	if len(cs) == 0 {
		_, err := fmt.Fprintln(p.w, p.muted("No contacts found"))
		return err
	}

	rows := make([][]string, 0, len(cs))
	for _, c := range cs {
		star := " "
		if c.Favorite {
			star = p.re.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "3", Dark: "11"}).Render("★")
		}
		rows = append(rows, []string{star + " " + p.bold(c.FullName()), c.Phone, c.Email, p.muted(c.Company)})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == len(rows[0])-1 {
				return p.re.NewStyle()
			}
			return p.re.NewStyle().PaddingRight(2)
		}).
		Rows(rows...)
	_, err := fmt.Fprintln(p.w, t.Render())
	return err
}

// Suggestion prints a "did you mean" hint. It prints nothing in plain mode
// so scripts only ever see result lines.
func (p *Printer) Suggestion(c contact.Contact) error {
	if !p.pretty {
		return nil
	}
	_, err := fmt.Fprintln(p.w, p.muted(fmt.Sprintf("Did you mean %s?", c.FullName())))
	return err
}

// Validation prints the outcome of a form check: "ok" or one line per
// failing field in form order.
func (p *Printer) Validation(res validate.Result) error {
	if res.Valid {
		_, err := fmt.Fprintln(p.w, p.success("ok"))
		return err
	}
	for _, f := range res.Failures {
		var line string
		if p.pretty {
			line = p.failure("✗ " + Capitalize(f.Message()))
		} else {
			line = fmt.Sprintf("%s\t%s\t%s", f.Field, f.Reason, f.Message())
		}
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
	}
	return nil
}

// Login prints the gate state after an attempt and the failure reason, if any.
func (p *Printer) Login(username string, state session.State, err error) error {
	var ae *session.AuthError
	switch {
	case state == session.Authenticated:
		if p.pretty {
			_, werr := fmt.Fprintln(p.w, p.success(fmt.Sprintf("✓ Logged in as %s", username)))
			return werr
		}
		_, werr := fmt.Fprintln(p.w, state)
		return werr
	case errors.As(err, &ae):
		if p.pretty {
			_, werr := fmt.Fprintln(p.w, p.failure("✗ "+Capitalize(ae.Reason)))
			return werr
		}
		_, werr := fmt.Fprintf(p.w, "%s\t%s\n", state, ae.Reason)
		return werr
	default:
		_, werr := fmt.Fprintln(p.w, state)
		return werr
	}
}

func (p *Printer) style(s string, fg lipgloss.TerminalColor, bold bool) string {
	if !p.pretty {
		return s
	}
	return p.re.NewStyle().Foreground(fg).Bold(bold).Render(s)
}

func (p *Printer) bold(s string) string {
	if !p.pretty {
		return s
	}
	return p.re.NewStyle().Bold(true).Render(s)
}

func (p *Printer) muted(s string) string {
	return p.style(s, lipgloss.AdaptiveColor{Light: "240", Dark: "245"}, false)
}

func (p *Printer) success(s string) string {
	return p.style(s, lipgloss.AdaptiveColor{Light: "2", Dark: "10"}, true)
}

func (p *Printer) failure(s string) string {
	return p.style(s, lipgloss.AdaptiveColor{Light: "1", Dark: "9"}, true)
}

// Capitalize upper-cases the first rune of s for display.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
