package input

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#6BCB77"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD479"))
)

// Form answers prompts interactively in the terminal, one small program
// per request.
type Form struct{}

// Ask implements Provider. The program honors ctx cancellation.
func (Form) Ask(ctx context.Context, req Request) (string, error) {
	m := newPromptModel(req)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt %q: %w", req.Label, err)
	}
	pm := final.(promptModel)
	if pm.cancelled {
		return "", fmt.Errorf("prompt %q cancelled", req.Label)
	}
	return pm.answer(), nil
}

type promptModel struct {
	req       Request
	text      textinput.Model
	area      textarea.Model
	cursor    int
	checked   bool
	done      bool
	cancelled bool
}

func newPromptModel(req Request) promptModel {
	m := promptModel{req: req}
	switch req.Kind {
	case KindArea:
		m.area = textarea.New()
		m.area.SetValue(req.Default)
		m.area.Focus()
	case KindCheck:
		m.checked = strings.EqualFold(req.Default, "true")
	case KindSelect:
		for i, opt := range req.Options {
			if opt == req.Default {
				m.cursor = i
			}
		}
	default:
		m.text = textinput.New()
		m.text.SetValue(m.initialText())
		m.text.Focus()
	}
	return m
}

func (m promptModel) initialText() string {
	if m.req.Kind == KindDate {
		if m.req.Default == "" || strings.EqualFold(m.req.Default, "today") {
			return FormatDate(time.Now(), m.req.Format)
		}
	}
	return m.req.Default
}

func (m promptModel) Init() tea.Cmd {
	if m.req.Kind == KindArea {
		return textarea.Blink
	}
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			// The textarea needs enter for newlines; finish with ctrl+d.
			if m.req.Kind != KindArea {
				m.done = true
				return m, tea.Quit
			}
		case "ctrl+d":
			m.done = true
			return m, tea.Quit
		case "up", "k":
			if m.req.Kind == KindSelect && m.cursor > 0 {
				m.cursor--
				return m, nil
			}
		case "down", "j":
			if m.req.Kind == KindSelect && m.cursor < len(m.req.Options)-1 {
				m.cursor++
				return m, nil
			}
		case " ":
			if m.req.Kind == KindCheck {
				m.checked = !m.checked
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.req.Kind {
	case KindArea:
		m.area, cmd = m.area.Update(msg)
	case KindSelect, KindCheck:
		// Keyboard handled above.
	default:
		m.text, cmd = m.text.Update(msg)
	}
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render(m.req.Label))
	b.WriteString("\n")
	switch m.req.Kind {
	case KindArea:
		b.WriteString(m.area.View())
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("ctrl+d to finish, esc to cancel"))
	case KindSelect:
		for i, opt := range m.req.Options {
			marker := "  "
			line := opt
			if i == m.cursor {
				marker = cursorStyle.Render("> ")
				line = cursorStyle.Render(opt)
			}
			b.WriteString(marker + line + "\n")
		}
		b.WriteString(hintStyle.Render("enter to choose, esc to cancel"))
	case KindCheck:
		box := "[ ]"
		if m.checked {
			box = "[x]"
		}
		b.WriteString(cursorStyle.Render(box) + "\n")
		b.WriteString(hintStyle.Render("space to toggle, enter to confirm"))
	default:
		b.WriteString(m.text.View())
		b.WriteString("\n")
		hint := "enter to confirm, esc to cancel"
		if m.req.Kind == KindDate {
			hint = fmt.Sprintf("format %s, enter to confirm", m.req.Format)
		}
		b.WriteString(hintStyle.Render(hint))
	}
	return b.String()
}

func (m promptModel) answer() string {
	switch m.req.Kind {
	case KindArea:
		return m.area.Value()
	case KindSelect:
		if m.cursor >= 0 && m.cursor < len(m.req.Options) {
			return m.req.Options[m.cursor]
		}
		return ""
	case KindCheck:
		if m.checked {
			return "true"
		}
		return "false"
	default:
		return m.text.Value()
	}
}
