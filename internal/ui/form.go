package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/rolodex/internal/contact"
	"github.com/smileynet/rolodex/internal/output"
	"github.com/smileynet/rolodex/internal/validate"
)

// formField describes one input of the new-contact form.
type formField struct {
	field       validate.Field
	label       string
	placeholder string
	required    bool
}

// formFields lists the inputs in display order. The last two are optional
// and never validated.
var formFields = []formField{
	{validate.FieldFirstName, "First name", "Juan", true},
	{validate.FieldLastName, "Last name", "Perez", true},
	{validate.FieldPhone, "Phone", "+54 11 1234-5678", true},
	{validate.FieldEmail, "Email", "juan.perez@email.com", false},
	{"company", "Company", "Tech Solutions", false},
	{"address", "Address", "Av. Corrientes 1234", false},
}

// Messages the form emits for the root model to act on.
type (
	saveContactMsg struct{ contact contact.Contact }
	cancelFormMsg  struct{}
)

// formState holds the new-contact inputs and the per-field errors from the
// last save attempt.
type formState struct {
	inputs []textinput.Model
	focus  int
	errors map[validate.Field]string
}

func newFormState() formState {
	inputs := make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		in := textinput.New()
		in.Placeholder = f.placeholder
		in.Prompt = "> "
		in.CharLimit = 128
		inputs[i] = in
	}
	inputs[0].Focus()
	return formState{inputs: inputs, errors: map[validate.Field]string{}}
}

// fields collects the raw input values.
func (fs formState) fields() validate.Fields {
	return validate.Fields{
		FirstName: fs.inputs[0].Value(),
		LastName:  fs.inputs[1].Value(),
		Phone:     fs.inputs[2].Value(),
		Email:     fs.inputs[3].Value(),
		Company:   fs.inputs[4].Value(),
		Address:   fs.inputs[5].Value(),
	}
}

// Update processes key input for the form.
func (fs formState) Update(msg tea.KeyMsg) (formState, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return fs.setFocus((fs.focus + 1) % len(fs.inputs)), nil
	case "shift+tab", "up":
		return fs.setFocus((fs.focus + len(fs.inputs) - 1) % len(fs.inputs)), nil
	case "enter":
		if fs.focus < len(fs.inputs)-1 {
			return fs.setFocus(fs.focus + 1), nil
		}
		return fs.save()
	case "ctrl+s":
		return fs.save()
	case "esc":
		return fs, func() tea.Msg { return cancelFormMsg{} }
	}

	before := fs.inputs[fs.focus].Value()
	var cmd tea.Cmd
	fs.inputs[fs.focus], cmd = fs.inputs[fs.focus].Update(msg)
	if after := fs.inputs[fs.focus].Value(); after != before && strings.TrimSpace(after) != "" {
		fs.errors = withoutKey(fs.errors, formFields[fs.focus].field)
	}
	return fs, cmd
}

// save validates the whole form. On failure every field error is shown and
// focus moves to the first failing field.
func (fs formState) save() (formState, tea.Cmd) {
	input := fs.fields()
	res := validate.ValidateForm(input)
	if !res.Valid {
		fs.errors = res.Errors
		for i, f := range formFields {
			if _, bad := res.Errors[f.field]; bad {
				fs = fs.setFocus(i)
				break
			}
		}
		return fs, showSnackbar("Please fix the highlighted fields", SnackbarError)
	}

	fs.errors = map[validate.Field]string{}
	c := input.Contact()
	return fs, func() tea.Msg { return saveContactMsg{contact: c} }
}

func (fs formState) setFocus(i int) formState {
	for j := range fs.inputs {
		if j == i {
			fs.inputs[j].Focus()
		} else {
			fs.inputs[j].Blur()
		}
	}
	fs.focus = i
	return fs
}

// View renders the form with an initials preview and inline errors.
func (fs formState) View() string {
	preview := fs.fields().Contact()

	var b strings.Builder
	b.WriteString(titleText.Render("New contact"))
	b.WriteString("  ")
	b.WriteString(AvatarBadge(preview.Initials()))
	b.WriteString("\n")

	for i, f := range formFields {
		if i == 4 {
			b.WriteString("\n")
			b.WriteString(mutedText.Render("Additional information (optional)"))
			b.WriteString("\n")
		}
		label := f.label
		if f.required {
			label += " *"
		}
		b.WriteString("\n")
		b.WriteString(labelText.Render(label))
		b.WriteString("\n")
		b.WriteString(fs.inputs[i].View())
		if msg := fs.errors[f.field]; msg != "" {
			b.WriteString("\n")
			b.WriteString(errorText.Render(output.Capitalize(msg)))
		}
	}
	return b.String()
}

func withoutKey(m map[validate.Field]string, k validate.Field) map[validate.Field]string {
	if _, ok := m[k]; !ok {
		return m
	}
	out := make(map[validate.Field]string, len(m))
	for key, v := range m {
		if key != k {
			out[key] = v
		}
	}
	return out
}
