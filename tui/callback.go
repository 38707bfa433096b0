package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"custodash/session"
	"custodash/styles"
)

type callbackModel struct {
	deps     Deps
	provider string

	input   textinput.Model
	spinner spinner.Model
	busy    bool
	errText string
	seq     int
}

type codeExchangedMsg struct {
	seq  int
	demo bool
	err  error
}

func newCallbackModel(deps Deps) callbackModel {
	t := textinput.New()
	t.Placeholder = "paste authorization code"
	t.CharLimit = 512
	t.Width = 50
	t.Prompt = "› "
	t.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return callbackModel{deps: deps, input: t, spinner: s}
}

func (c callbackModel) init() tea.Cmd {
	return tea.Batch(textinput.Blink, c.spinner.Tick)
}

func (c callbackModel) update(msg tea.Msg) (callbackModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd

	case codeExchangedMsg:
		if msg.seq != c.seq {
			return c, nil
		}
		c.busy = false
		if msg.err != nil {
			c.errText = msg.err.Error()
			return c, nil
		}
		demo := msg.demo
		return c, func() tea.Msg { return loggedInMsg{demo: demo} }

	case tea.KeyMsg:
		if c.busy {
			return c, nil
		}
		if msg.String() == "enter" {
			code := strings.TrimSpace(c.input.Value())
			if code == "" {
				c.errText = "Authorization code is required"
				return c, nil
			}
			c.busy = true
			c.errText = ""
			c.seq++
			return c, exchangeCode(c.deps.SSO, code, c.provider, c.seq)
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func exchangeCode(mgr *session.Manager, code, provider string, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		redirect, err := mgr.ExchangeCode(ctx, code, provider)
		if err != nil {
			return codeExchangedMsg{seq: seq, err: err}
		}
		return codeExchangedMsg{seq: seq, demo: redirect.Demo}
	}
}

func (c callbackModel) view() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Complete SSO sign-in") + "\n\n")
	b.WriteString(styles.TextStyle.Render("Finish signing in with "+c.provider+" in your browser,") + "\n")
	b.WriteString(styles.TextStyle.Render("then paste the authorization code below.") + "\n\n")
	b.WriteString(c.input.View() + "\n")

	if c.busy {
		b.WriteString("\n" + c.spinner.View() + " Exchanging code...")
	}
	if c.errText != "" {
		b.WriteString("\n" + styles.ErrorStyle.Render(c.errText))
	}

	b.WriteString("\n" + styles.HelpStyle.Render("enter submit · esc back to login"))
	return b.String()
}
