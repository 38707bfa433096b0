package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"custodash/api"
	"custodash/session"
	"custodash/styles"
)

type policyRunModel struct {
	deps   Deps
	policy api.Policy

	yamlErr error

	running bool
	dryRun  bool
	result  *api.PolicyRunResult
	spinner spinner.Model
	errText string
	seq     int
}

type runResultMsg struct {
	seq    int
	dry    bool
	result *api.PolicyRunResult
	err    error
}

func newPolicyRunModel(deps Deps) policyRunModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle
	return policyRunModel{deps: deps, spinner: s}
}

func (p *policyRunModel) show(policy api.Policy) {
	p.policy = policy
	p.result = nil
	p.errText = ""
	p.running = false

	var parsed any
	p.yamlErr = yaml.Unmarshal([]byte(policy.Content), &parsed)
}

// canRun reports whether the current session may execute policies.
// Key-based sessions carry no role, so they are not restricted.
func (p policyRunModel) canRun() bool {
	if !p.deps.SSO.Authenticated() {
		return true
	}
	return p.deps.SSO.HasPermission(session.PermissionRunPolicy)
}

func (p policyRunModel) update(msg tea.Msg) (policyRunModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case runResultMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		p.running = false
		if msg.err != nil {
			p.errText = msg.err.Error()
			return p, notifyError(msg.err)
		}
		p.result = msg.result
		p.dryRun = msg.dry
		return p, nil

	case tea.KeyMsg:
		if p.running {
			return p, nil
		}
		switch msg.String() {
		case "d", "x":
			dry := msg.String() == "d"
			if !p.canRun() {
				return p, func() tea.Msg {
					return noticeMsg{text: "Your role does not allow running policies", level: toastError}
				}
			}
			if p.yamlErr != nil {
				p.errText = "Policy content is not valid YAML"
				return p, nil
			}
			p.running = true
			p.errText = ""
			p.seq++
			return p, tea.Batch(p.spinner.Tick,
				runPolicy(p.deps.Client, p.policy.ID, p.deps.credentials(), dry, p.seq))
		}
	}
	return p, nil
}

func runPolicy(client *api.Client, id string, creds api.Credentials, dry bool, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var result *api.PolicyRunResult
		var err error
		if dry {
			result, err = client.DryRunPolicy(ctx, id, creds)
		} else {
			result, err = client.RunPolicy(ctx, id, creds)
		}
		return runResultMsg{seq: seq, dry: dry, result: result, err: err}
	}
}

func (p policyRunModel) view() string {
	meta := fmt.Sprintf("%s%s\n%s%s\n%s%s",
		styles.MutedStyle.Render(pad("Category", 14)), p.policy.Category,
		styles.MutedStyle.Render(pad("Resource", 14)), p.policy.ResourceType,
		styles.MutedStyle.Render(pad("Description", 14)), p.policy.Description)

	sections := []string{
		"",
		styles.TitleStyle.Render("Policy: " + p.policy.Name),
		styles.BoxStyle.Render(meta),
	}

	content := strings.TrimRight(p.policy.Content, "\n")
	if p.yamlErr != nil {
		sections = append(sections, styles.ErrorStyle.Render("Invalid YAML: "+p.yamlErr.Error()))
	}
	sections = append(sections, styles.MutedStyle.Render(content))

	switch {
	case p.running:
		sections = append(sections, "\n"+p.spinner.View()+" Running policy...")
	case p.errText != "":
		sections = append(sections, styles.ErrorBox.Render(p.errText))
	case p.result != nil:
		sections = append(sections, p.resultView())
	}

	help := "d dry run · x run · esc back"
	if !p.canRun() {
		help = "read-only role, runs disabled · esc back"
	}
	sections = append(sections, styles.HelpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (p policyRunModel) resultView() string {
	label := "Run"
	if p.dryRun {
		label = "Dry run"
	}

	var b strings.Builder
	if p.result.Success {
		b.WriteString(styles.SuccessStyle.Render(label+" succeeded") + "\n")
	} else {
		b.WriteString(styles.ErrorStyle.Render(label+" failed") + "\n")
	}
	if p.result.Message != "" {
		b.WriteString(p.result.Message + "\n")
	}
	b.WriteString(fmt.Sprintf("%d matching resources\n", p.result.ResourcesCount))

	for i, res := range p.result.Resources {
		if i >= 10 {
			b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("... and %d more\n", len(p.result.Resources)-i)))
			break
		}
		name := res.Str("id")
		if name == "" {
			name = res.Str("name")
		}
		b.WriteString("  " + name + "\n")
	}

	for _, e := range p.result.Errors {
		b.WriteString(styles.ErrorStyle.Render("  "+e) + "\n")
	}

	return styles.BoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
