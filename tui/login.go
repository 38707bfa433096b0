package tui

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"custodash/api"
	"custodash/session"
	"custodash/styles"
	"custodash/utils"
)

const (
	loginFieldAccessKey = iota
	loginFieldSecretKey
	loginFieldSessionToken
	loginFieldRegion
	loginFieldSubmit
)

var loginLabels = []string{
	"Access Key:",
	"Secret Key:",
	"Session Token (optional):",
	"Region:",
}

type loginModel struct {
	deps Deps

	inputs     []textinput.Model
	focusIndex int
	spinner    spinner.Model

	checking bool
	busy     bool
	errText  string

	providerIdx int
	seq         int
}

type credentialsCheckedMsg struct {
	seq   int
	valid bool
	err   error
}

type profileLoadedMsg struct {
	seq   int
	creds api.Credentials
	err   error
}

type ssoStartedMsg struct {
	seq      int
	redirect session.LoginRedirect
	err      error
}

func newLoginModel(deps Deps) loginModel {
	inputs := make([]textinput.Model, 4)
	for i := range inputs {
		t := textinput.New()
		t.CharLimit = 128
		t.Width = 44
		t.Prompt = "› "
		t.PromptStyle = lipgloss.NewStyle().Foreground(styles.Primary)
		inputs[i] = t
	}

	inputs[loginFieldAccessKey].Placeholder = "AKIA..."
	inputs[loginFieldAccessKey].Focus()
	inputs[loginFieldSecretKey].Placeholder = "secret access key"
	inputs[loginFieldSecretKey].EchoMode = textinput.EchoPassword
	inputs[loginFieldSessionToken].Placeholder = "session token"
	inputs[loginFieldSessionToken].EchoMode = textinput.EchoPassword
	inputs[loginFieldRegion].Placeholder = api.DefaultRegion
	inputs[loginFieldRegion].SetValue(deps.Config.Region)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return loginModel{
		deps:     deps,
		inputs:   inputs,
		spinner:  s,
		checking: true,
	}
}

func (l loginModel) init() tea.Cmd {
	return l.spinner.Tick
}

func (l *loginModel) ssoReady() {
	l.checking = false
}

func (l loginModel) typing() bool {
	return l.focusIndex < len(l.inputs)
}

func (l loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd

	case credentialsCheckedMsg:
		if msg.seq != l.seq {
			return l, nil
		}
		l.busy = false
		if msg.err != nil {
			l.errText = msg.err.Error()
			return l, nil
		}
		if !msg.valid {
			l.errText = "Invalid AWS credentials"
			return l, nil
		}
		l.deps.Creds.Set(l.credentials())
		return l, func() tea.Msg { return loggedInMsg{} }

	case profileLoadedMsg:
		if msg.seq != l.seq {
			return l, nil
		}
		l.busy = false
		if msg.err != nil {
			l.errText = "Could not load local AWS profile"
			logrus.WithError(msg.err).Debugln("profile prefill failed")
			return l, nil
		}
		l.inputs[loginFieldAccessKey].SetValue(msg.creds.AccessKey)
		l.inputs[loginFieldSecretKey].SetValue(msg.creds.SecretKey)
		l.inputs[loginFieldSessionToken].SetValue(msg.creds.SessionToken)
		if msg.creds.Region != "" {
			l.inputs[loginFieldRegion].SetValue(msg.creds.Region)
		}
		return l, nil

	case ssoStartedMsg:
		if msg.seq != l.seq {
			return l, nil
		}
		l.busy = false
		if msg.err != nil {
			l.errText = msg.err.Error()
			return l, nil
		}
		if msg.redirect.Demo {
			return l, func() tea.Msg { return loggedInMsg{demo: true} }
		}
		if err := utils.OpenBrowser(msg.redirect.URL); err != nil {
			l.errText = "Open this URL to sign in: " + msg.redirect.URL
		}
		return l, func() tea.Msg { return startCallbackMsg{} }

	case tea.KeyMsg:
		if l.busy || l.checking {
			return l, nil
		}

		switch msg.String() {
		case "tab", "shift+tab", "up", "down", "enter":
			if msg.String() == "enter" && l.focusIndex == loginFieldSubmit {
				return l.submit()
			}

			if msg.String() == "up" || msg.String() == "shift+tab" {
				l.focusIndex--
			} else {
				l.focusIndex++
			}
			if l.focusIndex > loginFieldSubmit {
				l.focusIndex = 0
			} else if l.focusIndex < 0 {
				l.focusIndex = loginFieldSubmit
			}

			for i := range l.inputs {
				if i == l.focusIndex {
					cmds = append(cmds, l.inputs[i].Focus())
				} else {
					l.inputs[i].Blur()
				}
			}
			return l, tea.Batch(cmds...)

		case "ctrl+l":
			l.busy = true
			l.errText = ""
			l.seq++
			return l, loadLocalProfile(l.seq)

		case "ctrl+s":
			if !l.deps.SSO.Config().Enabled {
				l.errText = "SSO is not enabled on this server"
				return l, nil
			}
			l.busy = true
			l.errText = ""
			l.seq++
			return l, startSSO(l.deps.SSO, l.provider(), l.seq)

		case "left", "right":
			if l.focusIndex == loginFieldSubmit {
				providers := l.deps.SSO.Config().Providers
				if len(providers) > 0 {
					if msg.String() == "left" {
						l.providerIdx--
					} else {
						l.providerIdx++
					}
					l.providerIdx = (l.providerIdx + len(providers)) % len(providers)
				}
				return l, nil
			}
		}
	}

	if l.focusIndex < len(l.inputs) {
		var cmd tea.Cmd
		l.inputs[l.focusIndex], cmd = l.inputs[l.focusIndex].Update(msg)
		cmds = append(cmds, cmd)
	}

	return l, tea.Batch(cmds...)
}

func (l loginModel) credentials() api.Credentials {
	return api.Credentials{
		AccessKey:    strings.TrimSpace(l.inputs[loginFieldAccessKey].Value()),
		SecretKey:    strings.TrimSpace(l.inputs[loginFieldSecretKey].Value()),
		SessionToken: strings.TrimSpace(l.inputs[loginFieldSessionToken].Value()),
		Region:       strings.TrimSpace(l.inputs[loginFieldRegion].Value()),
	}
}

func (l loginModel) submit() (loginModel, tea.Cmd) {
	creds := l.credentials()
	if creds.AccessKey == "" || creds.SecretKey == "" {
		l.errText = "Access key and secret key are required"
		return l, nil
	}

	l.busy = true
	l.errText = ""
	l.seq++
	return l, checkCredentials(l.deps.Client, creds, l.seq)
}

// provider returns the backend identifier of the selected SSO provider.
func (l loginModel) provider() string {
	cfg := l.deps.SSO.Config()
	if len(cfg.Providers) > 0 {
		return cfg.Providers[l.providerIdx%len(cfg.Providers)].ID
	}
	return cfg.DefaultProvider
}

func (l loginModel) providerName() string {
	cfg := l.deps.SSO.Config()
	if len(cfg.Providers) > 0 {
		return cfg.Providers[l.providerIdx%len(cfg.Providers)].Name
	}
	return cfg.DefaultProvider
}

func checkCredentials(client *api.Client, creds api.Credentials, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		valid, err := client.ValidateCredentials(ctx, creds)
		return credentialsCheckedMsg{seq: seq, valid: valid, err: err}
	}
}

func loadLocalProfile(seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return profileLoadedMsg{seq: seq, err: err}
		}

		var retrieved aws.Credentials
		retrieved, err = cfg.Credentials.Retrieve(ctx)
		if err != nil {
			return profileLoadedMsg{seq: seq, err: err}
		}

		return profileLoadedMsg{seq: seq, creds: api.Credentials{
			AccessKey:    retrieved.AccessKeyID,
			SecretKey:    retrieved.SecretAccessKey,
			SessionToken: retrieved.SessionToken,
			Region:       cfg.Region,
		}}
	}
}

func startSSO(mgr *session.Manager, provider string, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		redirect, err := mgr.InitiateSSOLogin(ctx, provider)
		return ssoStartedMsg{seq: seq, redirect: redirect, err: err}
	}
}

func (l loginModel) view() string {
	if l.checking {
		return styles.BoxStyle.Render(l.spinner.View() + " Checking for an existing session...")
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("AWS Console Dashboard") + "\n\n")

	for i, label := range loginLabels {
		if i == l.focusIndex {
			b.WriteString(styles.FocusedInputStyle.Render(label) + "\n")
		} else {
			b.WriteString(styles.MutedStyle.Render(label) + "\n")
		}
		b.WriteString(l.inputs[i].View() + "\n\n")
	}

	button := "[ Sign in ]"
	if l.focusIndex == loginFieldSubmit {
		button = styles.FocusedInputStyle.Render(button)
	}
	b.WriteString(button + "\n")

	if cfg := l.deps.SSO.Config(); cfg.Enabled {
		b.WriteString("\n" + styles.MutedStyle.Render("SSO provider: ") + styles.TextStyle.Render(l.providerName()))
		b.WriteString("\n" + styles.HelpStyle.Render("ctrl+s sign in with SSO · ←/→ switch provider"))
	}

	if l.busy {
		b.WriteString("\n" + l.spinner.View() + " Validating...")
	}
	if l.errText != "" {
		b.WriteString("\n" + styles.ErrorStyle.Render(l.errText))
	}

	b.WriteString("\n" + styles.HelpStyle.Render("tab next field · ctrl+l load local AWS profile · ctrl+c quit"))

	return b.String()
}
